// Package pdfclean removes blank pages from freshly rendered PDFs.
//
// The renderer that produces CV exports sometimes emits trailing or
// intermediate pages with nothing visible on them. Remover inspects each
// page's content stream, decides whether anything was drawn, and splices the
// remaining pages into a new document. The step is strictly best-effort: on
// any failure the original bytes are returned.
package pdfclean

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var (
	ErrParse         = errors.New("pdfclean: parse failed")
	ErrNoContent     = errors.New("pdfclean: page has no content stream")
	ErrSerialize     = errors.New("pdfclean: serialize failed")
	ErrAllPagesBlank = errors.New("pdfclean: every page classified blank")
	ErrPanic         = errors.New("pdfclean: panic during processing")
)

var configDirOnce sync.Once

// pdfConfiguration returns a relaxed pdfcpu configuration that never touches
// the user's config directory.
func pdfConfiguration() *model.Configuration {
	configDirOnce.Do(api.DisableConfigDir)
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// SourceDocument is a parsed PDF together with the bytes it was parsed from.
type SourceDocument struct {
	ctx  *model.Context
	raw  []byte
	conf *model.Configuration
}

// Parse reads and validates pdfBytes. The object graph is left as read:
// optimizing would drop empty content streams before ExtractPage sees them.
func Parse(pdfBytes []byte) (*SourceDocument, error) {
	if len(pdfBytes) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrParse)
	}
	conf := pdfConfiguration()
	ctx, err := api.ReadAndValidate(bytes.NewReader(pdfBytes), conf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return &SourceDocument{ctx: ctx, raw: pdfBytes, conf: conf}, nil
}

// PageCount returns the number of pages in the document.
func (d *SourceDocument) PageCount() int {
	return d.ctx.PageCount
}

// OutputDocument is the ordered subset of a SourceDocument's pages that
// survived filtering. Page indexes are zero-based.
type OutputDocument struct {
	source *SourceDocument
	pages  []int
}

// Pages returns the zero-based indexes of the kept pages in output order.
func (o *OutputDocument) Pages() []int {
	return append([]int(nil), o.pages...)
}

// PageCount returns the number of kept pages.
func (o *OutputDocument) PageCount() int {
	return len(o.pages)
}

// Bytes serializes the kept pages, with every resource they reference, into
// a new PDF.
func (o *OutputDocument) Bytes() ([]byte, error) {
	if len(o.pages) == 0 {
		return nil, fmt.Errorf("%w: no pages to write", ErrSerialize)
	}
	selected := make([]string, 0, len(o.pages))
	for _, idx := range o.pages {
		selected = append(selected, fmt.Sprintf("%d", idx+1))
	}
	var buf bytes.Buffer
	// Trim parses the raw bytes a second time; CV exports are a few pages.
	if err := api.Trim(bytes.NewReader(o.source.raw), &buf, selected, o.source.conf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialize, err)
	}
	return buf.Bytes(), nil
}
