package pdfclean

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
)

// Verdict is the outcome of classifying one page.
type Verdict int

const (
	Blank Verdict = iota
	HasContent
)

func (v Verdict) String() string {
	if v == HasContent {
		return "has-content"
	}
	return "blank"
}

// Signal names the evidence behind a verdict.
type Signal string

const (
	SignalNoContent       Signal = "no-content"
	SignalEmptyStream     Signal = "empty-stream"
	SignalTextOperator    Signal = "text-operator"
	SignalLiteralString   Signal = "literal-string"
	SignalHexString       Signal = "hex-string"
	SignalContentLength   Signal = "content-length"
	SignalClassifierError Signal = "classifier-error"
)

// Classification is the verdict for one page plus the signals that led to it.
type Classification struct {
	Page    int
	Verdict Verdict
	Signals []Signal
	Detail  string
}

// DefaultTextOperators are the operators whose presence marks a page as
// carrying text.
var DefaultTextOperators = []string{"Tj", "TJ", "'", `"`, "Td", "TD", "Tm"}

// DefaultMinContentLength is the trimmed stream length above which a page is
// assumed to draw something even without text.
const DefaultMinContentLength = 50

var (
	literalStringRe = regexp.MustCompile(`\([^)]+\)`)
	hexStringRe     = regexp.MustCompile(`<[0-9A-Fa-f\s]*[0-9A-Fa-f][0-9A-Fa-f\s]*>`)
)

// pdfWhitespace is the PDF whitespace set (NUL, HT, LF, FF, CR, SP).
const pdfWhitespace = "\x00\t\n\f\r "

// Classifier decides whether a page's content stream paints anything. Rules
// run in order and the first one that fires wins; a page nobody vouches for
// is blank.
type Classifier struct {
	operators        map[string]struct{}
	minContentLength int
	// findOp is the operator rule; tests swap it to exercise the panic guard.
	findOp func(text string) (string, bool)
}

// NewClassifier returns a classifier using the given operator tokens and
// length threshold. Empty operators or a negative threshold fall back to the
// defaults.
func NewClassifier(operators []string, minContentLength int) *Classifier {
	if len(operators) == 0 {
		operators = DefaultTextOperators
	}
	if minContentLength < 0 {
		minContentLength = DefaultMinContentLength
	}
	set := make(map[string]struct{}, len(operators))
	for _, op := range operators {
		if op = strings.TrimSpace(op); op != "" {
			set[op] = struct{}{}
		}
	}
	c := &Classifier{operators: set, minContentLength: minContentLength}
	c.findOp = c.findOperator
	return c
}

// Classify classifies a page from its extracted content. A non-nil
// extractErr means the page had no usable content reference.
func (c *Classifier) Classify(pc PageContent, extractErr error) Classification {
	if extractErr != nil {
		return Classification{Page: pc.Index, Verdict: Blank, Signals: []Signal{SignalNoContent}, Detail: extractErr.Error()}
	}
	res := c.ClassifyBytes(pc.Bytes())
	res.Page = pc.Index
	return res
}

// ClassifyBytes classifies a raw operator sequence. It never panics: any
// failure while matching yields HasContent.
func (c *Classifier) ClassifyBytes(content []byte) (res Classification) {
	if len(content) == 0 {
		return Classification{Verdict: Blank, Signals: []Signal{SignalEmptyStream}}
	}

	defer func() {
		if p := recover(); p != nil {
			res = Classification{
				Verdict: HasContent,
				Signals: []Signal{SignalClassifierError},
				Detail:  fmt.Sprint(p),
			}
		}
	}()

	text := latin1(content)

	if op, ok := c.findOp(text); ok {
		return Classification{Verdict: HasContent, Signals: []Signal{SignalTextOperator}, Detail: op}
	}
	if m := literalStringRe.FindString(text); m != "" {
		return Classification{Verdict: HasContent, Signals: []Signal{SignalLiteralString}, Detail: m}
	}
	if m := hexStringRe.FindString(text); m != "" {
		return Classification{Verdict: HasContent, Signals: []Signal{SignalHexString}, Detail: m}
	}
	if n := len(bytes.Trim(content, pdfWhitespace)); n > c.minContentLength {
		return Classification{Verdict: HasContent, Signals: []Signal{SignalContentLength}, Detail: fmt.Sprintf("%d bytes", n)}
	}
	return Classification{Verdict: Blank}
}

// findOperator reports the first configured operator that appears as a
// token. Tokens are split on PDF whitespace and delimiters, so both
// "(x) Tj" and "(x)Tj" are recognised. The name /Tj also yields the token Tj,
// which keeps the page.
func (c *Classifier) findOperator(text string) (string, bool) {
	for _, tok := range strings.FieldsFunc(text, isTokenBoundary) {
		if _, ok := c.operators[tok]; ok {
			return tok, true
		}
	}
	return "", false
}

func isTokenBoundary(r rune) bool {
	switch r {
	case 0, '\t', '\n', '\f', '\r', ' ',
		'(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

// latin1 maps every byte to the rune of the same value, so the result keeps
// one character per input byte.
func latin1(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))
	for _, c := range b {
		sb.WriteRune(rune(c))
	}
	return sb.String()
}
