package renderer

import (
	"bytes"
	"strconv"

	"github.com/etnz/fterm"
	"github.com/etnz/fterm/fred"
	md "github.com/nao1215/markdown"
)

// SeriesList renders series search results.
func SeriesList(title string, series []fred.Series) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1(title)
	if len(series) == 0 {
		doc.PlainText("No match.")
		return doc.String()
	}
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignLeft, md.AlignLeft, md.AlignLeft, md.AlignRight},
		Header:    []string{"ID", "Title", "Frequency", "Units", "Last Updated", "Popularity"},
		Rows:      [][]string{},
	}
	for _, s := range series {
		table.Rows = append(table.Rows, []string{
			s.ID,
			s.Title,
			s.Frequency,
			s.Units,
			s.LastUpdated,
			strconv.Itoa(s.Popularity),
		})
	}
	doc.Table(table)
	return doc.String()
}

// Observations renders the last n values of a series, with the change from
// the previous observation.
func Observations(title string, h *fterm.History[float64], n int) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1(title)

	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight},
		Header:    []string{"Date", "Value", "Change"},
		Rows:      [][]string{},
	}
	var prev float64
	first := true
	skip := h.Len() - n
	i := 0
	for day, v := range h.Values() {
		change := ""
		if !first {
			change = SignedNumber(v - prev)
		}
		if n <= 0 || i >= skip {
			table.Rows = append(table.Rows, []string{day.String(), Number(v), change})
		}
		prev, first = v, false
		i++
	}
	doc.Table(table)
	return doc.String()
}
