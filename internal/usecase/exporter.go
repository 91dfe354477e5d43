package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"resume-export/internal/cvtemplate"
	"resume-export/internal/domain"
	"resume-export/internal/model"
	"resume-export/internal/pdfclean"
)

var (
	// ErrMissingCV is returned when a request carries neither a CV nor a CV id.
	ErrMissingCV = errors.New("cv or cvId is required")
	// ErrNoCVSource is returned for stored CV lookups without storage.
	ErrNoCVSource = errors.New("stored cvs are not available")
	// ErrRender wraps the last renderer failure after all attempts.
	ErrRender = errors.New("pdf rendering failed")
)

type Renderer interface {
	RenderHTMLToPDF(ctx context.Context, html string, opts domain.PageOptions) ([]byte, error)
}

type ExportsRepo interface {
	Save(ctx context.Context, e *domain.CVExport) error
}

type EventPublisher interface {
	PublishExportCompleted(ctx context.Context, event domain.ExportCompletedEvent) error
}

// CVSource loads stored CV documents owned by a user.
type CVSource interface {
	Get(ctx context.Context, userID, cvID uuid.UUID) (json.RawMessage, error)
}

// BlankPageRemover post-processes rendered PDFs. *pdfclean.Remover
// satisfies it.
type BlankPageRemover interface {
	Run(pdfBytes []byte) pdfclean.Report
}

type ExportRequest struct {
	UserID      uuid.UUID
	Template    string
	CV          json.RawMessage
	CVID        *uuid.UUID
	PageOptions *domain.PageOptions
}

type ExportResult struct {
	Export  *domain.CVExport
	PDF     []byte
	HTML    string
	Cleanup *pdfclean.Report
}

// ExporterOption configures an Exporter.
type ExporterOption func(*Exporter)

func WithExportsRepo(r ExportsRepo) ExporterOption { return func(e *Exporter) { e.repo = r } }

func WithPublisher(p EventPublisher) ExporterOption { return func(e *Exporter) { e.publisher = p } }

func WithCVSource(s CVSource) ExporterOption { return func(e *Exporter) { e.cvs = s } }

// WithRemover replaces the blank page remover. nil disables removal.
func WithRemover(r BlankPageRemover) ExporterOption { return func(e *Exporter) { e.remover = r } }

func WithRenderAttempts(n int) ExporterOption {
	return func(e *Exporter) {
		if n > 0 {
			e.attempts = n
		}
	}
}

// WithArtifactsDir keeps a copy of every rendered HTML and PDF under dir.
func WithArtifactsDir(dir string) ExporterOption { return func(e *Exporter) { e.artifactsDir = dir } }

// WithBackoff sets the wait before retry number attempt (zero based).
func WithBackoff(f func(attempt int) time.Duration) ExporterOption {
	return func(e *Exporter) { e.backoff = f }
}

func WithLogger(l zerolog.Logger) ExporterOption { return func(e *Exporter) { e.log = l } }

// Exporter turns a CV into a PDF: template rendering, headless printing and
// blank page removal, followed by best-effort bookkeeping.
type Exporter struct {
	catalog      *cvtemplate.Catalog
	renderer     Renderer
	remover      BlankPageRemover
	repo         ExportsRepo
	publisher    EventPublisher
	cvs          CVSource
	attempts     int
	artifactsDir string
	backoff      func(attempt int) time.Duration
	log          zerolog.Logger
}

func NewExporter(catalog *cvtemplate.Catalog, renderer Renderer, opts ...ExporterOption) *Exporter {
	e := &Exporter{
		catalog:  catalog,
		renderer: renderer,
		remover:  pdfclean.NewRemover(),
		attempts: 3,
		backoff:  exponentialBackoff,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(1<<attempt) * time.Second
}

func (e *Exporter) Export(ctx context.Context, req ExportRequest) (*ExportResult, error) {
	now := time.Now().UTC()
	export := &domain.CVExport{
		ID:        uuid.New(),
		UserID:    req.UserID,
		CVID:      req.CVID,
		Template:  req.Template,
		Metadata:  map[string]interface{}{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	log := e.log.With().Str("export_id", export.ID.String()).Logger()

	tpl, err := e.catalog.Get(req.Template)
	if err != nil {
		return nil, err
	}
	export.Template = tpl.Name

	cv, err := e.loadCV(ctx, req)
	if err != nil {
		return nil, err
	}

	html, _, err := e.catalog.Render(tpl.Name, cv)
	if err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	// saved before printing so it survives a renderer failure
	if p := e.writeArtifact(log, export, "html", []byte(html)); p != "" {
		export.Metadata["generated_html"] = p
	}

	pdf, attempts, err := e.renderWithRetry(ctx, log, html, tpl.Page.Merge(req.PageOptions))
	export.Metadata["render_attempts"] = attempts
	if err != nil {
		export.Status = domain.StatusFailed
		export.Metadata["pdf_render_error"] = err.Error()
		e.save(log, export)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w after %d attempts: %v", ErrRender, attempts, err)
	}

	result := &ExportResult{Export: export, PDF: pdf, HTML: html}
	if e.remover != nil {
		rep := e.remover.Run(pdf)
		result.Cleanup = &rep
		result.PDF = rep.Output
		export.PagesRendered = rep.PageCount
		export.PagesReturned = len(rep.Kept)
		export.RemovedPages = rep.Removed
		export.Metadata["cleanup_state"] = string(rep.State)
		if rep.Err != nil {
			export.Metadata["cleanup_error"] = rep.Err.Error()
		}
	} else {
		export.Metadata["cleanup_state"] = "disabled"
	}
	if export.RemovedPages == nil {
		export.RemovedPages = []int{}
	}

	if p := e.writeArtifact(log, export, "pdf", result.PDF); p != "" {
		export.Metadata["generated_pdf"] = p
	}
	export.Metadata["bytes"] = len(result.PDF)
	export.Status = domain.StatusCompleted
	export.UpdatedAt = time.Now().UTC()

	e.save(log, export)
	e.publish(ctx, log, export)

	log.Info().
		Str("template", export.Template).
		Int("pages_rendered", export.PagesRendered).
		Int("pages_returned", export.PagesReturned).
		Ints("removed_pages", export.RemovedPages).
		Msg("export completed")
	return result, nil
}

func (e *Exporter) loadCV(ctx context.Context, req ExportRequest) (*model.CV, error) {
	raw := req.CV
	if len(raw) == 0 {
		if req.CVID == nil {
			return nil, ErrMissingCV
		}
		if e.cvs == nil {
			return nil, ErrNoCVSource
		}
		var err error
		if raw, err = e.cvs.Get(ctx, req.UserID, *req.CVID); err != nil {
			return nil, err
		}
	}
	return model.Decode(raw)
}

// renderWithRetry produces a PDF with retry and signature validation.
func (e *Exporter) renderWithRetry(ctx context.Context, log zerolog.Logger, html string, opts domain.PageOptions) ([]byte, int, error) {
	var lastErr error
	for i := 0; i < e.attempts; i++ {
		pdf, err := e.renderer.RenderHTMLToPDF(ctx, html, opts)
		if err == nil {
			if bytes.HasPrefix(pdf, []byte("%PDF")) {
				return pdf, i + 1, nil
			}
			err = fmt.Errorf("invalid PDF output (len=%d)", len(pdf))
		}
		lastErr = err
		log.Warn().Err(err).Int("attempt", i+1).Msg("render attempt failed")

		if i < e.attempts-1 {
			select {
			case <-time.After(e.backoff(i)):
			case <-ctx.Done():
				return nil, i + 1, ctx.Err()
			}
		}
	}
	return nil, e.attempts, lastErr
}

func (e *Exporter) writeArtifact(log zerolog.Logger, export *domain.CVExport, ext string, data []byte) string {
	if e.artifactsDir == "" {
		return ""
	}
	dir := filepath.Join(e.artifactsDir, export.UserID.String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Warn().Err(err).Msg("unable to create artifacts dir (non-fatal)")
		return ""
	}
	path := filepath.Join(dir, export.ID.String()+"."+ext)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("unable to write artifact (non-fatal)")
		return ""
	}
	return path
}

// save and publish must not fail an export whose PDF is already in hand.
func (e *Exporter) save(log zerolog.Logger, export *domain.CVExport) {
	if e.repo == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.repo.Save(ctx, export); err != nil {
		log.Warn().Err(err).Msg("failed to save export (non-fatal)")
	}
}

func (e *Exporter) publish(ctx context.Context, log zerolog.Logger, export *domain.CVExport) {
	if e.publisher == nil {
		return
	}
	event := domain.ExportCompletedEvent{
		ExportID:      export.ID,
		UserID:        export.UserID,
		Template:      export.Template,
		PagesRendered: export.PagesRendered,
		PagesReturned: export.PagesReturned,
		RemovedPages:  export.RemovedPages,
		CompletedAt:   export.UpdatedAt,
	}
	if err := e.publisher.PublishExportCompleted(ctx, event); err != nil {
		log.Warn().Err(err).Msg("failed to publish export event (non-fatal)")
	}
}
