package output

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

var reportTemplate = template.Must(template.ParseFS(templateFS, "templates/report.html"))

// TemplateData is what templates/report.html renders
type TemplateData struct {
	Title       string
	Header      []string
	Rows        [][]string
	Footer      []string
	GeneratedAt string
}

func writeHTML(w io.Writer, t table) error {
	data := &TemplateData{
		Title:       t.title,
		Header:      t.header,
		Rows:        t.rows,
		Footer:      t.footer,
		GeneratedAt: time.Now().Format("2006-01-02 15:04:05"),
	}
	if err := reportTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}
	return nil
}
