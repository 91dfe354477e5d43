// Package pdftest builds small, well-formed PDFs for tests.
package pdftest

import (
	"bytes"
	"fmt"
	"strings"
)

// Page describes one page of a fixture document.
//
// Streams holds the page's content streams. A nil Streams slice produces a
// page without a /Contents entry; a single stream is referenced directly;
// more than one stream is referenced through a /Contents array, unless
// Array is set, which forces the array form for a single stream too.
type Page struct {
	Streams []string
	Array   bool
}

// Text returns a page that shows s with Helvetica.
func Text(s string) Page {
	return Page{Streams: []string{fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", s)}}
}

// Stream returns a page with a single content stream.
func Stream(content string) Page {
	return Page{Streams: []string{content}}
}

// NoContents returns a page without a /Contents entry.
func NoContents() Page {
	return Page{}
}

// Streams returns a page whose content is split over an array of streams.
func Streams(contents ...string) Page {
	return Page{Streams: contents, Array: true}
}

// Build writes an uncompressed PDF 1.4 document with the given pages. Object
// 1 is the catalog, 2 the page tree and 3 a shared Helvetica font.
func Build(pages ...Page) []byte {
	w := &writer{}
	w.buf.WriteString("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")

	type pageObjs struct {
		page    int
		streams []int
	}
	next := 4
	layout := make([]pageObjs, len(pages))
	for i, p := range pages {
		layout[i].page = next
		next++
		for range p.Streams {
			layout[i].streams = append(layout[i].streams, next)
			next++
		}
	}

	kids := make([]string, len(pages))
	for i, l := range layout {
		kids[i] = fmt.Sprintf("%d 0 R", l.page)
	}

	w.object(1, "<< /Type /Catalog /Pages 2 0 R >>")
	w.object(2, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)))
	w.object(3, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")

	for i, p := range pages {
		l := layout[i]
		dict := "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >>"
		switch {
		case len(l.streams) == 0:
		case len(l.streams) == 1 && !p.Array:
			dict += fmt.Sprintf(" /Contents %d 0 R", l.streams[0])
		default:
			refs := make([]string, len(l.streams))
			for j, n := range l.streams {
				refs[j] = fmt.Sprintf("%d 0 R", n)
			}
			dict += fmt.Sprintf(" /Contents [%s]", strings.Join(refs, " "))
		}
		dict += " >>"
		w.object(l.page, dict)
		for j, n := range l.streams {
			w.stream(n, p.Streams[j])
		}
	}

	return w.finish(next, 1)
}

type writer struct {
	buf     bytes.Buffer
	offsets map[int]int
}

func (w *writer) object(num int, body string) {
	if w.offsets == nil {
		w.offsets = map[int]int{}
	}
	w.offsets[num] = w.buf.Len()
	fmt.Fprintf(&w.buf, "%d 0 obj\n%s\nendobj\n", num, body)
}

func (w *writer) stream(num int, content string) {
	w.object(num, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))
}

func (w *writer) finish(size, root int) []byte {
	xref := w.buf.Len()
	fmt.Fprintf(&w.buf, "xref\n0 %d\n", size)
	w.buf.WriteString("0000000000 65535 f \n")
	for i := 1; i < size; i++ {
		fmt.Fprintf(&w.buf, "%010d 00000 n \n", w.offsets[i])
	}
	fmt.Fprintf(&w.buf, "trailer\n<< /Size %d /Root %d 0 R >>\nstartxref\n%d\n%%%%EOF\n", size, root, xref)
	return w.buf.Bytes()
}
