// Package insee reads time series from the INSEE macro-economic database (BDM).
//
// Series are downloaded as a zip archive holding a semicolon separated CSV
// file, most recent period first. No key is required.
package insee

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/etnz/fterm"
	"github.com/etnz/fterm/fetch"
)

const DefaultBaseURL = "https://bdm.insee.fr"

// Well known series.
const (
	CPI          = "001763852" // consumer price index, all households
	Unemployment = "001688527" // unemployment rate, ILO definition
)

// Client downloads INSEE series.
type Client struct {
	c *fetch.Client
}

// New returns an INSEE client.
func New(opts ...fetch.Option) *Client {
	return &Client{c: fetch.NewClient("insee", DefaultBaseURL, opts...)}
}

// Series is an INSEE time series. Each value is dated at the end of its period.
type Series struct {
	Title      string
	IDBank     string
	LastUpdate time.Time
	Values     *fterm.History[float64]
}

// Series downloads the series idBank over the quarters covering r.
func (c *Client) Series(ctx context.Context, idBank string, r fterm.Range) (Series, error) {
	params := url.Values{}
	params.Set("lang", "fr")
	params.Set("ordre", "chronologique")
	params.Set("transposition", "donneescolonne")
	params.Set("periodeDebut", strconv.Itoa(quarter(r.From)))
	params.Set("anneeDebut", strconv.Itoa(r.From.Year()))
	params.Set("periodeFin", strconv.Itoa(quarter(r.To)))
	params.Set("anneeFin", strconv.Itoa(r.To.Year()))
	params.Set("revision", "sansrevisions")

	body, err := c.c.GetBytes(ctx, "/series/"+url.PathEscape(idBank)+"/csv", params)
	if err != nil {
		return Series{}, err
	}
	return unzip(idBank, body)
}

func quarter(d fterm.Date) int { return int(d.Month()-1)/3 + 1 }

// unzip finds the values file in the downloaded archive and parses it.
func unzip(idBank string, body []byte) (Series, error) {
	archive, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return Series{}, fmt.Errorf("insee %s: invalid archive: %w", idBank, err)
	}
	var found []string
	for _, f := range archive.File {
		found = append(found, f.Name)
		if f.Name != "valeurs_trimestrielles.csv" && f.Name != "valeurs_mensuelles.csv" && f.Name != "valeurs_annuelles.csv" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return Series{}, fmt.Errorf("insee %s: cannot open %s: %w", idBank, f.Name, err)
		}
		defer rc.Close()
		return parseSeries(rc)
	}
	return Series{}, fmt.Errorf("insee %s: %w, no values file in archive (found: %s)", idBank, fetch.ErrNoData, strings.Join(found, ", "))
}

// parseDate parses "2025-T2", "2025-08" or "2025" into the last day of that period.
func parseDate(s string) (fterm.Date, error) {
	year, rest, _ := strings.Cut(s, "-")
	y, err := strconv.Atoi(year)
	if err != nil {
		return fterm.Date{}, fmt.Errorf("invalid year in date %q: %w", s, err)
	}
	switch {
	case rest == "":
		return fterm.NewDate(y, time.December, 31), nil
	case strings.HasPrefix(rest, "T"):
		q, err := strconv.Atoi(rest[1:])
		if err != nil || q < 1 || q > 4 {
			return fterm.Date{}, fmt.Errorf("invalid quarter in quarterly date %q", s)
		}
		return fterm.NewDate(y, time.Month(q*3)+1, 0), nil
	default:
		m, err := strconv.Atoi(rest)
		if err != nil || m < 1 || m > 12 {
			return fterm.Date{}, fmt.Errorf("invalid month in monthly date %q", s)
		}
		return fterm.NewDate(y, time.Month(m)+1, 0), nil
	}
}

// parseSeries reads the INSEE CSV format: three header lines (title, idBank,
// last update), a column header, then one period per line. Periods without a
// value are skipped.
func parseSeries(r io.Reader) (Series, error) {
	reader := csv.NewReader(r)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return Series{}, fmt.Errorf("failed to read csv: %w", err)
	}
	if len(records) < 4 {
		return Series{}, fmt.Errorf("not enough records in csv to parse series")
	}
	for i := range 3 {
		if len(records[i]) < 2 {
			return Series{}, fmt.Errorf("invalid header line %d", i+1)
		}
	}

	series := Series{
		Title:  records[0][1],
		IDBank: records[1][1],
		Values: new(fterm.History[float64]),
	}
	series.LastUpdate, err = time.Parse("02/01/2006 15:04", records[2][1])
	if err != nil {
		return Series{}, fmt.Errorf("failed to parse last update date %q: %w", records[2][1], err)
	}

	for _, record := range records[4:] {
		if len(record) < 2 || record[1] == "" {
			continue
		}
		on, err := parseDate(record[0])
		if err != nil {
			return Series{}, err
		}
		v, err := strconv.ParseFloat(strings.ReplaceAll(record[1], ",", "."), 64)
		if err != nil {
			return Series{}, fmt.Errorf("failed to parse value %q for date %q: %w", record[1], record[0], err)
		}
		series.Values.Append(on, v)
	}
	if series.Values.Len() == 0 {
		return Series{}, fmt.Errorf("insee %s: %w", series.IDBank, fetch.ErrNoData)
	}
	return series, nil
}
