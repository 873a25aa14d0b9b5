// Package render turns a domain.Report into client-facing documents.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/bank-ledger/internal/domain"
)

const (
	dateLayout     = "02/01/2006"
	dateTimeLayout = "02/01/2006 15:04"
)

//go:embed templates/*.tmpl
var templates embed.FS

var funcs = template.FuncMap{
	"money":    money,
	"date":     func(t time.Time) string { return t.Format(dateLayout) },
	"datetime": func(t time.Time) string { return t.Format(dateTimeLayout) },
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// Renderer produces HTML and PDF statements.
type Renderer struct {
	statement *template.Template
}

func New() (*Renderer, error) {
	tmpl, err := template.New("statement.html.tmpl").Funcs(funcs).ParseFS(templates, "templates/statement.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("render.New: %w", err)
	}
	return &Renderer{statement: tmpl}, nil
}

func (r *Renderer) HTML(report *domain.Report) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.statement.Execute(&buf, report); err != nil {
		return nil, fmt.Errorf("HTML: %w", err)
	}
	return buf.Bytes(), nil
}
