package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-export/internal/pdfclean"
	"resume-export/internal/pdfclean/pdftest"
)

func TestPagePreviews(t *testing.T) {
	doc := pdftest.Build(pdftest.Text("Hello"), pdftest.Stream(""), pdftest.Text("World"))

	previews, err := pagePreviews(doc, 80)
	require.NoError(t, err)
	require.Len(t, previews, 3)
	assert.Contains(t, previews[0], "Hello")
	assert.Empty(t, previews[1])
	assert.Contains(t, previews[2], "World")
}

func TestPagePreviews_NotAPDF(t *testing.T) {
	_, err := pagePreviews([]byte("plain text"), 80)
	assert.Error(t, err)
}

func TestPrintReport(t *testing.T) {
	rep := pdfclean.NewRemover().Run(pdftest.Build(pdftest.Text("Hello"), pdftest.Stream("")))

	var buf bytes.Buffer
	printReport(&buf, rep)

	out := buf.String()
	assert.Contains(t, out, "state=serialized pages=2 kept=[0] removed=[1]")
	assert.Contains(t, out, "page 1: has-content")
	assert.Contains(t, out, "page 2: blank")
}

func TestPrintPreviews_LabelsInputAndOutput(t *testing.T) {
	in := pdftest.Build(pdftest.Text("Hello"), pdftest.Stream(""), pdftest.Text("World"))
	rep := pdfclean.NewRemover().Run(in)
	require.True(t, rep.Changed())

	var buf bytes.Buffer
	printPreviews(&buf, "input", in)
	printPreviews(&buf, "output", rep.Output)

	out := buf.String()
	assert.Contains(t, out, "input page 3 text:")
	assert.Contains(t, out, "output page 2 text:")
	assert.NotContains(t, out, "output page 3")
}
