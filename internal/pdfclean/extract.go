package pdfclean

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// ContentKind tells how a page references its content.
type ContentKind int

const (
	ContentAbsent ContentKind = iota
	ContentSingle
	ContentArray
)

func (k ContentKind) String() string {
	switch k {
	case ContentSingle:
		return "single"
	case ContentArray:
		return "array"
	default:
		return "absent"
	}
}

// PageContent is the decoded content of one page.
type PageContent struct {
	Index   int
	Kind    ContentKind
	Streams [][]byte
}

// Bytes returns the page's operator sequence. Streams of an array are joined
// in order with a newline so the last token of one stream never fuses with
// the first token of the next.
func (pc PageContent) Bytes() []byte {
	switch len(pc.Streams) {
	case 0:
		return nil
	case 1:
		return pc.Streams[0]
	}
	return bytes.Join(pc.Streams, []byte{'\n'})
}

// ExtractPage resolves and decodes the content of the page at the zero-based
// pageIndex. A page without a usable content reference yields an error
// wrapping ErrNoContent.
func ExtractPage(doc *SourceDocument, pageIndex int) (PageContent, error) {
	pc := PageContent{Index: pageIndex}
	if pageIndex < 0 || pageIndex >= doc.PageCount() {
		return pc, fmt.Errorf("%w: page index %d out of range", ErrNoContent, pageIndex)
	}

	pageDict, _, _, err := doc.ctx.PageDict(pageIndex+1, false)
	if err != nil || pageDict == nil {
		return pc, fmt.Errorf("%w: page %d: no page dict: %v", ErrNoContent, pageIndex, err)
	}

	ref, found := pageDict.Find("Contents")
	if !found || ref == nil {
		return pc, fmt.Errorf("%w: page %d", ErrNoContent, pageIndex)
	}

	obj, err := doc.ctx.Dereference(ref)
	if err != nil || obj == nil {
		return pc, fmt.Errorf("%w: page %d: %v", ErrNoContent, pageIndex, err)
	}

	switch o := obj.(type) {
	case types.StreamDict:
		b, err := decodeStream(o)
		if err != nil {
			return pc, fmt.Errorf("%w: page %d: %v", ErrNoContent, pageIndex, err)
		}
		pc.Kind = ContentSingle
		pc.Streams = [][]byte{b}

	case types.Array:
		pc.Kind = ContentArray
		for i, elem := range o {
			so, err := doc.ctx.Dereference(elem)
			if err != nil {
				return pc, fmt.Errorf("%w: page %d stream %d: %v", ErrNoContent, pageIndex, i, err)
			}
			sd, ok := so.(types.StreamDict)
			if !ok {
				return pc, fmt.Errorf("%w: page %d stream %d is %T", ErrNoContent, pageIndex, i, so)
			}
			b, err := decodeStream(sd)
			if err != nil {
				return pc, fmt.Errorf("%w: page %d stream %d: %v", ErrNoContent, pageIndex, i, err)
			}
			pc.Streams = append(pc.Streams, b)
		}

	default:
		return pc, fmt.Errorf("%w: page %d: unexpected /Contents %T", ErrNoContent, pageIndex, obj)
	}

	return pc, nil
}

// decodeStream works on a copy so the document's object graph is never
// touched.
func decodeStream(sd types.StreamDict) ([]byte, error) {
	if err := sd.Decode(); err != nil {
		return nil, err
	}
	return append([]byte(nil), sd.Content...), nil
}
