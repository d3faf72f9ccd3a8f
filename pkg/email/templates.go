package email

import (
	"embed"
	"html/template"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	"date": func(t time.Time) string { return t.Format("2006-01-02") },
	"datetime": func(t time.Time) string {
		return t.Format("2006-01-02 15:04")
	},
}

func loadTemplates() (*template.Template, error) {
	return template.New("email").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
}
