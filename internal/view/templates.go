package view

import (
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gridpulse/console/internal/shared"
	"github.com/gridpulse/console/web"
)

// Engine renders HTML templates.
type Engine struct {
	templates *template.Template
}

// NavItem is one sidebar entry.
type NavItem struct {
	Label  string
	Path   string
	Active bool
}

// Chrome is the header and sidebar frame around guarded pages.
type Chrome struct {
	Show      bool
	UserLabel string
	UserEmail string
	Nav       []NavItem
}

// TemplateData contains values shared across templates.
type TemplateData struct {
	Title       string
	CSRFToken   string
	Flash       *shared.FlashMessage
	CurrentPath string
	Chrome      Chrome
	Data        any
}

var printer = message.NewPrinter(language.English)

// NewEngine parses templates at build-time.
func NewEngine() (*Engine, error) {
	funcMap := template.FuncMap{
		"formatDate": formatDate,
		"number":     number,
		"percent": func(v float64) string {
			return printer.Sprintf("%.2f%%", v)
		},
		"join": strings.Join,
	}
	tpl, err := template.New("root").Funcs(funcMap).ParseFS(web.Templates, "templates/layouts/*.html", "templates/partials/*.html", "templates/pages/*.html")
	if err != nil {
		return nil, err
	}
	return &Engine{templates: tpl}, nil
}

// Execute writes a named template to any writer.
func (e *Engine) Execute(w io.Writer, name string, data TemplateData) error {
	if e == nil {
		return fmt.Errorf("template engine not initialised")
	}
	return e.templates.ExecuteTemplate(w, name, data)
}

// formatDate accepts a time or a backend timestamp string.
func formatDate(v any) string {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return ""
		}
		return t.Format("02 Jan 2006 15:04")
	case string:
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02T15:04:05", "2006-01-02"} {
			if parsed, err := time.Parse(layout, t); err == nil {
				if layout == "2006-01-02" {
					return parsed.Format("02 Jan 2006")
				}
				return parsed.Format("02 Jan 2006 15:04")
			}
		}
		return t
	default:
		return ""
	}
}

// number groups thousands, e.g. 10000 becomes 10,000.
func number(v any) string {
	switch n := v.(type) {
	case int:
		return printer.Sprintf("%d", n)
	case int64:
		return printer.Sprintf("%d", n)
	case float64:
		if n == float64(int64(n)) {
			return printer.Sprintf("%d", int64(n))
		}
		return printer.Sprintf("%.1f", n)
	default:
		return fmt.Sprint(v)
	}
}
