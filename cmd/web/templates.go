package main

import (
	"html/template"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/mabego/authify/internal/models"
	"github.com/mabego/authify/ui"
)

// templateData holds dynamic data to pass to HTML templates.
type templateData struct {
	IsAuthenticated bool
	IsVerified      bool
	CurrentYear     int
	Flash           string
	CSRFToken       string
	User            *models.User
	Form            any
}

func humanDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("Jan 02 2006 at 15:04")
}

// inc turns a zero-based range index into a one-based position.
func inc(i int) int {
	return i + 1
}

var functions = template.FuncMap{
	"humanDate": humanDate,
	"inc":       inc,
}

func newTemplateCache() (map[string]*template.Template, error) {
	cache := map[string]*template.Template{}

	// Use fs.Glob to get a slice of all the 'page' files in the ui.Files embedded filesystem.
	pages, err := fs.Glob(ui.Files, "html/*.page.tmpl")
	if err != nil {
		return nil, err
	}

	for _, page := range pages {
		name := filepath.Base(page)

		patterns := []string{
			"html/base.layout.tmpl",
			"html/*.partial.tmpl",
			page,
		}

		ts, err := template.New(name).Funcs(functions).ParseFS(ui.Files, patterns...)
		if err != nil {
			return nil, err
		}

		cache[name] = ts
	}

	return cache, nil
}
