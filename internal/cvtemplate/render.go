package cvtemplate

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/publicsuffix"

	"resume-export/internal/model"
)

var funcs = template.FuncMap{
	"urlLabel": URLLabel,
	"join":     strings.Join,
}

// Render executes the named template for cv and returns a standalone HTML
// document with the template stylesheet inlined into <head>.
func (c *Catalog) Render(name string, cv *model.CV) (string, Template, error) {
	t, err := c.Get(name)
	if err != nil {
		return "", Template{}, err
	}

	tplPath := filepath.Join(c.dir, t.HTML)
	tpl, err := template.New(filepath.Base(tplPath)).Funcs(funcs).ParseFiles(tplPath)
	if err != nil {
		return "", t, fmt.Errorf("parse template %s: %w", t.Name, err)
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, map[string]interface{}{"CV": cv}); err != nil {
		return "", t, fmt.Errorf("execute template %s: %w", t.Name, err)
	}
	html := buf.String()

	if t.CSS != "" {
		css, err := os.ReadFile(filepath.Join(c.dir, t.CSS))
		if err != nil {
			return "", t, fmt.Errorf("read stylesheet %s: %w", t.Name, err)
		}
		html = inlineCSS(html, string(css))
	}
	return html, t, nil
}

// inlineCSS injects the stylesheet at the top of <head>, or prepends it when
// the document has none.
func inlineCSS(html, css string) string {
	block := "<style>" + css + "</style>"
	if i := strings.Index(strings.ToLower(html), "<head>"); i >= 0 {
		i += len("<head>")
		return html[:i] + block + html[i:]
	}
	return block + html
}

// URLLabel shortens a link to its registrable domain, e.g.
// "https://www.coursera.org/verify/X" becomes "coursera.org".
func URLLabel(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	candidate := raw
	if !strings.HasPrefix(candidate, "http://") && !strings.HasPrefix(candidate, "https://") {
		candidate = "https://" + candidate
	}
	parsed, err := url.Parse(candidate)
	if err != nil || parsed.Hostname() == "" {
		return raw
	}
	host := parsed.Hostname()
	if etld, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return strings.TrimPrefix(etld, "www.")
	}
	return strings.TrimPrefix(host, "www.")
}
