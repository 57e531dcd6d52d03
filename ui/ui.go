// Package ui holds the portal HTML templates.
package ui

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"os"
	"time"
)

//go:embed templates/*.html
var files embed.FS

// Pages are rendered inside the layout template.
var Pages = []string{"inbox", "dashboard", "timeline", "window"}

// FS returns the embedded templates, or dir when it is set.
func FS(dir string) fs.FS {
	if dir != "" {
		return os.DirFS(dir)
	}
	sub, err := fs.Sub(files, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}

func toJSON(v any) template.JS {
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return template.JS(b)
}

var funcs = template.FuncMap{
	"json": toJSON,
	"date": func(t time.Time) string { return t.Format("02/01/2006") },
	"pct":  func(v float64) string { return fmt.Sprintf("%.2f%%", v) },
}

// Renderer executes pages and partials parsed once at start-up.
type Renderer struct {
	pages map[string]*template.Template
}

func NewRenderer(fsys fs.FS) (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template, len(Pages))}
	for _, page := range Pages {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(fsys, "layout.html", "partials.html", page+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s templates: %w", page, err)
		}
		r.pages[page] = t
	}
	return r, nil
}

// Render writes page wrapped in the layout.
func (r *Renderer) Render(w io.Writer, page string, data any) error {
	t, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}
	return t.ExecuteTemplate(w, "layout", data)
}

// Partial writes one of the shared fragments in partials.html.
func (r *Renderer) Partial(w io.Writer, name string, data any) error {
	return r.pages[Pages[0]].ExecuteTemplate(w, name, data)
}
