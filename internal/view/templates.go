package view

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/genuino/cotizaciones/web"
)

// Engine renders HTML templates.
type Engine struct {
	templates *template.Template
}

var printer = message.NewPrinter(language.Spanish)

// NewEngine parses the embedded document templates.
func NewEngine() (*Engine, error) {
	funcMap := template.FuncMap{
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("02/01/2006")
		},
		"money": FormatAmount,
	}
	tpl, err := template.New("root").Funcs(funcMap).ParseFS(web.Templates, "templates/documents/*.html")
	if err != nil {
		return nil, err
	}
	return &Engine{templates: tpl}, nil
}

// Execute writes the named template to w.
func (e *Engine) Execute(w io.Writer, name string, data any) error {
	if e == nil {
		return fmt.Errorf("template engine not initialised")
	}
	return e.templates.ExecuteTemplate(w, name, data)
}

// RenderString executes the named template into a string.
func (e *Engine) RenderString(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := e.Execute(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// FormatAmount prints a money amount with Spanish grouping, e.g. 12.500,50.
func FormatAmount(d decimal.Decimal) string {
	fixed := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign = "-"
		fixed = fixed[1:]
	}
	whole, frac, _ := strings.Cut(fixed, ".")
	units, err := decimal.NewFromString(whole)
	if err != nil {
		return sign + fixed
	}
	return sign + printer.Sprintf("%d", units.IntPart()) + "," + frac
}
