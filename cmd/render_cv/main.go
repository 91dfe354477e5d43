// Command render_cv renders a CV JSON file with a catalog template. It writes
// the HTML, and with -pdf also prints it through headless Chrome and strips
// blank pages.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"resume-export/internal/cvtemplate"
	"resume-export/internal/model"
	"resume-export/internal/pdfclean"
	infra "resume-export/pkg/infrastructure"
)

func main() {
	in := flag.String("cv", "cv.json", "CV document")
	tplDir := flag.String("templates", "templates", "templates directory")
	tplName := flag.String("template", "", "template name (default: catalog default)")
	outDir := flag.String("out", filepath.Join("resume-data", "generated"), "output directory")
	asPDF := flag.Bool("pdf", false, "also render a PDF")
	flag.Parse()

	b, err := os.ReadFile(*in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read cv: %v\n", err)
		os.Exit(2)
	}
	cv, err := model.Decode(b)
	if err != nil {
		fmt.Fprintf(os.Stderr, "decode cv: %v\n", err)
		os.Exit(2)
	}

	catalog, err := cvtemplate.Load(*tplDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load templates: %v\n", err)
		os.Exit(2)
	}
	html, tpl, err := catalog.Render(*tplName, cv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "render: %v\n", err)
		os.Exit(2)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "create out: %v\n", err)
		os.Exit(2)
	}
	base := filepath.Join(*outDir, strings.TrimSuffix(filepath.Base(*in), filepath.Ext(*in))+"_"+tpl.Name)
	if err := os.WriteFile(base+".html", []byte(html), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "write html: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s.html\n", base)

	if !*asPDF {
		return
	}

	renderer := infra.NewChromedpRenderer(infra.RendererConfig{
		ChromePath:    os.Getenv("CHROME_PATH"),
		Timeout:       90 * time.Second,
		MaxConcurrent: 1,
	})
	pdf, err := renderer.RenderHTMLToPDF(context.Background(), html, tpl.Page)
	if err != nil {
		fmt.Fprintf(os.Stderr, "render pdf: %v\n", err)
		os.Exit(1)
	}
	rep := pdfclean.NewRemover().Run(pdf)
	if err := os.WriteFile(base+".pdf", rep.Output, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "write pdf: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s.pdf (%d pages, removed %v)\n", base, len(rep.Kept), rep.Removed)
}
