package views

import (
	"embed"
	"html/template"
	"io"
	"io/fs"
	"path/filepath"
	"time"
)

//go:embed *.html site/*.html
var templatesFS embed.FS

var funcs = template.FuncMap{
	"formatTime": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("2006-01-02 15:04")
	},
	"formatDate": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("2006-01-02")
	},
}

type Engine struct {
	templates map[string]*template.Template
}

func New() (*Engine, error) {
	e := &Engine{
		templates: make(map[string]*template.Template),
	}

	// Parse layout
	layoutTmpl, err := template.New("layout.html").Funcs(funcs).ParseFS(templatesFS, "layout.html")
	if err != nil {
		return nil, err
	}

	// Parse each admin page template against a clone of the layout
	entries, err := fs.ReadDir(templatesFS, ".")
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		if entry.IsDir() || entry.Name() == "layout.html" {
			continue
		}

		name := entry.Name()
		baseName := name[:len(name)-len(filepath.Ext(name))]

		tmpl, err := layoutTmpl.Clone()
		if err != nil {
			return nil, err
		}

		_, err = tmpl.ParseFS(templatesFS, name)
		if err != nil {
			return nil, err
		}

		e.templates[baseName] = tmpl
	}

	return e, nil
}

func (e *Engine) Render(w io.Writer, name string, data any) error {
	tmpl, ok := e.templates[name]
	if !ok {
		// Standalone templates (the public site pages) carry their own
		// document shell and skip the admin layout.
		tmpl, err := template.New(filepath.Base(name) + ".html").Funcs(funcs).ParseFS(templatesFS, name+".html")
		if err != nil {
			return err
		}
		return tmpl.Execute(w, data)
	}
	return tmpl.Execute(w, data)
}

// RenderPartial renders a template without the admin layout.
func (e *Engine) RenderPartial(w io.Writer, name string, data any) error {
	tmpl, err := template.New(filepath.Base(name) + ".html").Funcs(funcs).ParseFS(templatesFS, name+".html")
	if err != nil {
		return err
	}
	return tmpl.Execute(w, data)
}
