// Package cvtemplate loads the HTML template catalog and renders CVs into
// self-contained HTML documents ready for printing.
package cvtemplate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"resume-export/internal/domain"
)

// CatalogFile is the catalog index inside the templates directory.
const CatalogFile = "templates.yaml"

// ErrUnknownTemplate is returned for names absent from the catalog.
var ErrUnknownTemplate = errors.New("unknown template")

// Template is one catalog entry.
type Template struct {
	Name        string             `yaml:"name" json:"name"`
	Description string             `yaml:"description" json:"description,omitempty"`
	HTML        string             `yaml:"html" json:"-"`
	CSS         string             `yaml:"css" json:"-"`
	Page        domain.PageOptions `yaml:"page" json:"page"`
}

type catalogFile struct {
	Default   string     `yaml:"default"`
	Templates []Template `yaml:"templates"`
}

// Catalog holds every template found in templates.yaml.
type Catalog struct {
	dir         string
	defaultName string
	order       []string
	byName      map[string]Template
}

// Load reads dir/templates.yaml. Template and stylesheet paths are relative
// to dir.
func Load(dir string) (*Catalog, error) {
	raw, err := os.ReadFile(filepath.Join(dir, CatalogFile))
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var f catalogFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(f.Templates) == 0 {
		return nil, fmt.Errorf("catalog %s lists no templates", dir)
	}

	c := &Catalog{dir: dir, byName: make(map[string]Template, len(f.Templates))}
	for _, t := range f.Templates {
		if t.Name == "" || t.HTML == "" {
			return nil, fmt.Errorf("catalog entry %q: name and html are required", t.Name)
		}
		if _, dup := c.byName[t.Name]; dup {
			return nil, fmt.Errorf("catalog entry %q listed twice", t.Name)
		}
		if t.Page.PaperWidth == 0 || t.Page.PaperHeight == 0 {
			t.Page = domain.A4.Merge(&t.Page)
		}
		c.byName[t.Name] = t
		c.order = append(c.order, t.Name)
	}

	c.defaultName = f.Default
	if c.defaultName == "" {
		c.defaultName = c.order[0]
	}
	if _, ok := c.byName[c.defaultName]; !ok {
		return nil, fmt.Errorf("default template %q: %w", c.defaultName, ErrUnknownTemplate)
	}
	return c, nil
}

// List returns the templates in catalog order.
func (c *Catalog) List() []Template {
	out := make([]Template, 0, len(c.order))
	for _, n := range c.order {
		out = append(out, c.byName[n])
	}
	return out
}

// Default returns the name used when a request names no template.
func (c *Catalog) Default() string { return c.defaultName }

// Get looks up a template by name; the empty name selects the default.
func (c *Catalog) Get(name string) (Template, error) {
	if name == "" {
		name = c.defaultName
	}
	t, ok := c.byName[name]
	if !ok {
		return Template{}, fmt.Errorf("%w: %q", ErrUnknownTemplate, name)
	}
	return t, nil
}
