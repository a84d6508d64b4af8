// Package renderer turns the terminal's data into markdown documents.
//
// Tables are built with github.com/nao1215/markdown. Cards made of free text
// (a quote, the metadata of a series) are text/template files embedded in the
// package: an assembly template, e.g. quote.md, includes partials named after
// it, e.g. quote_title.md.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"

	"github.com/etnz/fterm"
	"github.com/etnz/fterm/fred"
)

//go:embed *.md
var templates embed.FS

// funcs are available in every template.
var funcs = template.FuncMap{
	"num":    Number,
	"int":    Integer,
	"signed": SignedNumber,
}

// Quote renders a quote card.
func Quote(q fterm.Quote) string {
	partials := map[string]string{
		"quote_title":   "quote_title.md",
		"quote_session": "quote_session.md",
	}
	return renderTemplate("quote", "quote.md", partials, q)
}

// SeriesInfo renders the metadata of an economic series.
func SeriesInfo(s fred.Series) string {
	partials := map[string]string{
		"series_title": "series_title.md",
		"series_notes": "series_notes.md",
	}
	return renderTemplate("series", "series.md", partials, s)
}

// renderTemplate renders a main template that depends on several partials.
//
// Errors are rendered in place of the document.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Funcs(funcs).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		content, err := fs.ReadFile(templates, file)
		if err != nil {
			return fmt.Sprintf("error reading partial template %q: %v", file, err)
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
