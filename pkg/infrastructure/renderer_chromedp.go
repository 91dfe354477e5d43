package infrastructure

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"resume-export/internal/domain"
)

// DefaultRenderTimeout bounds a single browser run.
const DefaultRenderTimeout = 60 * time.Second

// RendererConfig configures ChromedpRenderer.
type RendererConfig struct {
	ChromePath    string
	Timeout       time.Duration
	MaxConcurrent int
	Logger        zerolog.Logger
}

// ChromedpRenderer prints HTML to PDF with headless Chrome. Each call starts
// its own browser; at most MaxConcurrent run at once.
type ChromedpRenderer struct {
	chromePath string
	timeout    time.Duration
	sem        *semaphore.Weighted
	log        zerolog.Logger
}

func NewChromedpRenderer(cfg RendererConfig) *ChromedpRenderer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultRenderTimeout
	}
	if cfg.MaxConcurrent < 1 {
		cfg.MaxConcurrent = 1
	}
	return &ChromedpRenderer{
		chromePath: cfg.ChromePath,
		timeout:    cfg.Timeout,
		sem:        semaphore.NewWeighted(int64(cfg.MaxConcurrent)),
		log:        cfg.Logger,
	}
}

func (r *ChromedpRenderer) RenderHTMLToPDF(ctx context.Context, html string, opts domain.PageOptions) ([]byte, error) {
	if err := r.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("acquire render slot: %w", err)
	}
	defer r.sem.Release(1)

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if r.chromePath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(r.chromePath))
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancelAlloc()

	cctx, cancelCtx := chromedp.NewContext(allocCtx)
	defer cancelCtx()

	// file:// navigation keeps large documents out of the URL
	tmpDir, err := os.MkdirTemp("", "cv-export-")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	htmlPath := filepath.Join(tmpDir, "index.html")
	if err := os.WriteFile(htmlPath, []byte(html), 0o644); err != nil {
		return nil, fmt.Errorf("write html: %w", err)
	}

	start := time.Now()
	var pdfBuf []byte
	err = chromedp.Run(cctx,
		chromedp.Navigate("file://"+filepath.ToSlash(htmlPath)),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdfBuf, _, err = printParams(opts).Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("chromedp run: %w", err)
	}

	r.log.Debug().
		Int("bytes", len(pdfBuf)).
		Dur("elapsed", time.Since(start)).
		Msg("pdf printed")
	return pdfBuf, nil
}

func printParams(opts domain.PageOptions) *page.PrintToPDFParams {
	if opts.PaperWidth <= 0 || opts.PaperHeight <= 0 {
		opts = domain.A4.Merge(&opts)
	}
	return page.PrintToPDF().
		WithPrintBackground(opts.PrintBackground).
		WithPaperWidth(opts.PaperWidth).
		WithPaperHeight(opts.PaperHeight).
		WithMarginTop(opts.MarginTop).
		WithMarginBottom(opts.MarginBottom).
		WithMarginLeft(opts.MarginLeft).
		WithMarginRight(opts.MarginRight).
		WithPreferCSSPageSize(opts.PreferCSSPageSize)
}
