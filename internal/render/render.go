// Package render turns records into the HTML fragments of the grid: the full page,
// the table body, a single row and a single cell in display or edit mode.
//
// Every fragment is a complete element (page, tbody, tr or td) so it can replace the
// region it was requested for without leaving malformed markup behind.
package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
)

// Template names.
const (
	TemplatePage     = "page"
	TemplateRecords  = "records"
	TemplateRow      = "row"
	TemplateCell     = "cell"
	TemplateCellEdit = "cell-edit"
	TemplateBanner   = "banner"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Renderer holds the parsed grid templates.
type Renderer struct {
	tmpl *template.Template
}

// New parses the embedded templates.
func New() (*Renderer, error) {
	tmpl, err := template.New("grid").ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse grid templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// MustNew is New for package initialization and tests.
func MustNew() *Renderer {
	r, err := New()
	if err != nil {
		panic(err)
	}
	return r
}

// Template exposes the template set, e.g. for gin's SetHTMLTemplate.
func (r *Renderer) Template() *template.Template {
	return r.tmpl
}

// Execute writes the named fragment for data to w.
func (r *Renderer) Execute(w io.Writer, name string, data any) error {
	return r.tmpl.ExecuteTemplate(w, name, data)
}

// StaticFS serves the grid's client-side assets.
func StaticFS() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}
