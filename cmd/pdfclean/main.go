// Command pdfclean removes blank pages from a PDF file and prints what it
// decided for every page.
//
//	pdfclean -in cv.pdf -out cv.clean.pdf [-inspect] [-min-length 50] [-ops Tj,TJ]
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"resume-export/internal/logger"
	"resume-export/internal/pdfclean"
)

func main() {
	in := flag.String("in", "", "input PDF (required)")
	out := flag.String("out", "", "output PDF (default: <in>.clean.pdf)")
	inspect := flag.Bool("inspect", false, "print a text preview of every page")
	minLen := flag.Int("min-length", pdfclean.DefaultMinContentLength, "content length above which a page counts as non-blank")
	ops := flag.String("ops", "", "comma separated text operators (default: built-in list)")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	if *in == "" {
		flag.Usage()
		os.Exit(2)
	}
	if *out == "" {
		*out = strings.TrimSuffix(*in, ".pdf") + ".clean.pdf"
	}

	level := "warn"
	if *verbose {
		level = "debug"
	}
	log, err := logger.New(level, "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(2)
	}

	src, err := os.ReadFile(*in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read input: %v\n", err)
		os.Exit(2)
	}

	var operators []string
	if *ops != "" {
		operators = strings.Split(*ops, ",")
	}
	rep := pdfclean.NewRemover(
		pdfclean.WithTextOperators(operators...),
		pdfclean.WithMinContentLength(*minLen),
		pdfclean.WithLogger(log.Logger),
	).Run(src)

	printReport(os.Stdout, rep)

	if *inspect {
		printPreviews(os.Stdout, "input", src)
		if rep.Changed() {
			printPreviews(os.Stdout, "output", rep.Output)
		}
	}

	if err := os.WriteFile(*out, rep.Output, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "write output: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s (%d -> %d pages)\n", *out, rep.PageCount, len(rep.Kept))
}

// printPreviews lists the text of every page of data under label.
func printPreviews(w io.Writer, label string, data []byte) {
	previews, err := pagePreviews(data, 80)
	if err != nil {
		fmt.Fprintf(os.Stderr, "inspect %s: %v\n", label, err)
		return
	}
	fmt.Fprintf(w, "%s pages:\n", label)
	for i, p := range previews {
		fmt.Fprintf(w, "  %s page %d text: %q\n", label, i+1, p)
	}
}

func printReport(w io.Writer, rep pdfclean.Report) {
	fmt.Fprintf(w, "state=%s pages=%d kept=%v removed=%v\n", rep.State, rep.PageCount, rep.Kept, rep.Removed)
	if rep.Err != nil {
		fmt.Fprintf(w, "  original kept: %v\n", rep.Err)
	}
	for _, c := range rep.Pages {
		signals := make([]string, len(c.Signals))
		for i, s := range c.Signals {
			signals[i] = string(s)
		}
		fmt.Fprintf(w, "  page %d: %-11s %s %s\n", c.Page+1, c.Verdict, strings.Join(signals, ","), c.Detail)
	}
}
