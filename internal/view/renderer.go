// Package view renders the dashboard regions with html/template and keeps
// the current content of each region of a page.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
)

//go:embed templates/*
var templateFS embed.FS

// Renderer executes region and page templates. It is safe for concurrent use.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer creates a renderer over the embedded templates.
func NewRenderer() (*Renderer, error) {
	return NewRendererWithFS(TemplateFS())
}

// NewRendererWithFS creates a renderer over the templates found in fsys.
// This is useful for testing or custom template sources.
func NewRendererWithFS(fsys fs.FS) (*Renderer, error) {
	tmpl, err := template.New("").Funcs(Funcs()).ParseFS(fsys, "*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}
	for _, region := range RegionIDs {
		if tmpl.Lookup(region) == nil {
			return nil, fmt.Errorf("template for region %q not found", region)
		}
	}
	return &Renderer{tmpl: tmpl}, nil
}

// TemplateFS returns the embedded template filesystem for external use.
func TemplateFS() fs.FS {
	subFS, err := fs.Sub(templateFS, "templates")
	if err != nil {
		// This should never happen with valid embed directive
		return templateFS
	}
	return subFS
}

// Fragment executes the template of region with data.
func (r *Renderer) Fragment(region string, data any) (template.HTML, error) {
	if r.tmpl.Lookup(region) == nil {
		return "", fmt.Errorf("no template for region %q", region)
	}
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, region, data); err != nil {
		return "", fmt.Errorf("rendering %s: %w", region, err)
	}
	// Content produced by html/template is already escaped.
	return template.HTML(buf.String()), nil
}

// Render executes the region template for t and commits it to regions.
// It reports whether the content was stored; a superseded token is dropped.
func (r *Renderer) Render(regions *Regions, t Token, data any) (bool, error) {
	html, err := r.Fragment(t.Region, data)
	if err != nil {
		return false, err
	}
	return regions.Commit(t, html), nil
}

// Page writes the full page.
func (r *Renderer) Page(w io.Writer, data PageData) error {
	if err := r.tmpl.ExecuteTemplate(w, "layout", data); err != nil {
		return fmt.Errorf("rendering page: %w", err)
	}
	return nil
}

// OOB wraps region content for an out-of-band swap of the region's inner HTML.
func OOB(region string, html template.HTML) template.HTML {
	tag := "div"
	if region == RegionIndicatorStock {
		tag = "select"
	}
	return template.HTML(fmt.Sprintf(`<%s id="%s" hx-swap-oob="innerHTML">%s</%s>`,
		tag, template.HTMLEscapeString(region), html, tag))
}
