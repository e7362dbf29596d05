package server

import (
	"embed"
	"html/template"
	"io/fs"

	"github.com/jrsteele09/go-taskmaster/tasks"
)

const contentTypeHTML = "text/html; charset=utf-8"

//go:embed templates/*
var templateFiles embed.FS

var templateFuncs = template.FuncMap{
	// dateInput formats a due date for <input type="date">.
	"dateInput": func(d tasks.Date) string {
		if d.IsZero() {
			return ""
		}
		return d.String()
	},
	"dateLabel": func(d tasks.Date) string {
		if d.IsZero() {
			return "No due date"
		}
		return d.Time().Format("Jan 2, 2006")
	},
}

func TemplateFilesFS() fs.FS {
	subFS, err := fs.Sub(templateFiles, "templates")
	if err != nil {
		panic("Failed to create templates sub filesystem: " + err.Error())
	}
	return subFS
}

// ParseTemplate parses a template from the embedded filesystem
func ParseTemplate(name string) (*template.Template, error) {
	content, err := fs.ReadFile(TemplateFilesFS(), name)
	if err != nil {
		return nil, err
	}
	return template.New(name).Funcs(templateFuncs).Parse(string(content))
}

func mustParseTemplate(name string) *template.Template {
	tmpl, err := ParseTemplate(name)
	if err != nil {
		panic("Failed to parse " + name + " template: " + err.Error())
	}
	return tmpl
}
