package main

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// pagePreviews extracts the plain text of every page with an independent PDF
// reader, truncated to limit runes. Pages that fail to decode yield "".
func pagePreviews(data []byte, limit int) ([]string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	n := r.NumPage()
	out := make([]string, n)
	for i := 1; i <= n; i++ {
		text := plainText(r, i)
		text = strings.Join(strings.Fields(text), " ")
		if runes := []rune(text); len(runes) > limit {
			text = string(runes[:limit]) + "…"
		}
		out[i-1] = text
	}
	return out, nil
}

// plainText recovers from reader panics on malformed pages.
func plainText(r *pdf.Reader, i int) (text string) {
	defer func() {
		if recover() != nil {
			text = ""
		}
	}()
	p := r.Page(i)
	if p.V.IsNull() {
		return ""
	}
	text, err := p.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return text
}
