package pdfclean

import "fmt"

// Filter classifies every page of doc in order and returns the document made
// of the pages that carry content, together with the per-page
// classifications. The result may hold zero pages; the caller decides what
// to do with that.
func (c *Classifier) Filter(doc *SourceDocument) (*OutputDocument, []Classification) {
	n := doc.PageCount()
	out := &OutputDocument{source: doc, pages: make([]int, 0, n)}
	results := make([]Classification, 0, n)

	for i := 0; i < n; i++ {
		pc, err := safeExtract(doc, i)
		res := c.Classify(pc, err)
		res.Page = i
		results = append(results, res)
		if res.Verdict == HasContent {
			out.pages = append(out.pages, i)
		}
	}
	return out, results
}

// safeExtract turns a panic inside the object graph walk into ErrNoContent
// for that page only.
func safeExtract(doc *SourceDocument, i int) (pc PageContent, err error) {
	defer func() {
		if p := recover(); p != nil {
			pc = PageContent{Index: i}
			err = fmt.Errorf("%w: page %d: %v", ErrNoContent, i, p)
		}
	}()
	return ExtractPage(doc, i)
}
