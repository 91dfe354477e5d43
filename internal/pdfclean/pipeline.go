package pdfclean

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// State is the last pipeline state an invocation reached.
type State string

const (
	StateStart        State = "start"
	StateParsed       State = "parsed"
	StateShortCircuit State = "short-circuit"
	StateFiltering    State = "filtering"
	StateSerialized   State = "serialized"
	StateError        State = "error"
)

// Report describes one invocation. Output is always a usable PDF buffer:
// either the cleaned document or the unmodified input.
type Report struct {
	Output    []byte
	PageCount int
	Kept      []int
	Removed   []int
	Pages     []Classification
	State     State
	Err       error
}

// Changed reports whether Output differs from the input.
func (r Report) Changed() bool {
	return r.Err == nil && len(r.Removed) > 0
}

// Options configures a Remover.
type Options struct {
	TextOperators    []string
	MinContentLength int
	Logger           zerolog.Logger
}

// Option is a functional option for NewRemover.
type Option func(*Options)

// WithTextOperators overrides the operator tokens that mark a page as text.
func WithTextOperators(ops ...string) Option {
	return func(o *Options) { o.TextOperators = ops }
}

// WithMinContentLength overrides the length threshold of the fallback rule.
func WithMinContentLength(n int) Option {
	return func(o *Options) { o.MinContentLength = n }
}

// WithLogger sets the logger used for per-page and per-run diagnostics.
func WithLogger(l zerolog.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// Remover is the blank-page removal pipeline. It holds no per-document state
// and is safe for concurrent use.
type Remover struct {
	classifier *Classifier
	filter     func(*SourceDocument) (*OutputDocument, []Classification)
	log        zerolog.Logger
}

// NewRemover builds a Remover. Without options it uses the default operator
// list, the default threshold and a no-op logger.
func NewRemover(opts ...Option) *Remover {
	o := &Options{
		TextOperators:    DefaultTextOperators,
		MinContentLength: DefaultMinContentLength,
		Logger:           zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	c := NewClassifier(o.TextOperators, o.MinContentLength)
	return &Remover{
		classifier: c,
		filter:     c.Filter,
		log:        o.Logger,
	}
}

var defaultRemover = NewRemover()

// RemoveBlankPages runs the default Remover. See Remover.RemoveBlankPages.
func RemoveBlankPages(pdfBytes []byte) []byte {
	return defaultRemover.RemoveBlankPages(pdfBytes)
}

// RemoveBlankPages returns pdfBytes without its blank pages. It never fails:
// if anything goes wrong, or if every page looks blank, the input is
// returned unchanged.
func (r *Remover) RemoveBlankPages(pdfBytes []byte) []byte {
	return r.Run(pdfBytes).Output
}

// Run is RemoveBlankPages with a report of what happened.
func (r *Remover) Run(pdfBytes []byte) Report {
	rep, out, err := r.process(pdfBytes)
	if err != nil {
		rep.Output = pdfBytes
		rep.Err = err
		rep.State = StateError
		rep.Kept = allPages(rep.PageCount)
		rep.Removed = nil
		if errors.Is(err, ErrAllPagesBlank) {
			r.log.Warn().Int("pages", rep.PageCount).Msg("pdfclean: every page looks blank, keeping original")
		} else {
			r.log.Warn().Err(err).Int("pages", rep.PageCount).Msg("pdfclean: falling back to original document")
		}
		return rep
	}

	rep.Output = out
	r.log.Debug().
		Int("pages", rep.PageCount).
		Ints("removed", rep.Removed).
		Str("state", string(rep.State)).
		Msg("pdfclean: done")
	return rep
}

// process is the single error boundary of the pipeline. out is only assigned
// once the new document has been serialized in full.
func (r *Remover) process(pdfBytes []byte) (rep Report, out []byte, err error) {
	rep.State = StateStart
	defer func() {
		if p := recover(); p != nil {
			out = nil
			err = fmt.Errorf("%w in state %s: %v", ErrPanic, rep.State, p)
		}
	}()

	doc, err := Parse(pdfBytes)
	if err != nil {
		return rep, nil, err
	}
	rep.State = StateParsed
	rep.PageCount = doc.PageCount()

	if rep.PageCount <= 1 {
		rep.State = StateShortCircuit
		rep.Kept = allPages(rep.PageCount)
		return rep, pdfBytes, nil
	}

	rep.State = StateFiltering
	filtered, pages := r.filter(doc)
	rep.Pages = pages
	rep.Kept = filtered.Pages()
	for _, p := range pages {
		r.log.Debug().
			Int("page", p.Page).
			Str("verdict", p.Verdict.String()).
			Interface("signals", p.Signals).
			Str("detail", p.Detail).
			Msg("pdfclean: page classified")
		if p.Verdict == Blank {
			rep.Removed = append(rep.Removed, p.Page)
		}
	}

	if filtered.PageCount() == 0 {
		return rep, nil, ErrAllPagesBlank
	}
	if filtered.PageCount() == rep.PageCount {
		rep.State = StateSerialized
		return rep, pdfBytes, nil
	}

	b, err := filtered.Bytes()
	if err != nil {
		return rep, nil, err
	}
	rep.State = StateSerialized
	return rep, b, nil
}

func allPages(n int) []int {
	pages := make([]int, n)
	for i := range pages {
		pages[i] = i
	}
	return pages
}
