// Package web holds the embedded HTML templates of the shop and the staff dashboards.
package web

import (
	"embed"
	"html/template"
	"time"

	"github.com/shopspring/decimal"
)

//go:embed templates/*.html
var templateFS embed.FS

// Funcs are the helpers available to every template
var Funcs = template.FuncMap{
	"money": func(d decimal.Decimal) string { return d.StringFixed(2) },
	"clock": func(t time.Time) string { return t.Format("2006-01-02 15:04") },
}

// Templates parses all embedded templates into one set, named by file name
func Templates() (*template.Template, error) {
	return template.New("").Funcs(Funcs).ParseFS(templateFS, "templates/*.html")
}
