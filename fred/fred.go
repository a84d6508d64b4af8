// Package fred reads economic series from the Federal Reserve Economic Data API.
package fred

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/etnz/fterm"
	"github.com/etnz/fterm/fetch"
)

const DefaultBaseURL = "https://api.stlouisfed.org/fred"

// Well known series.
const (
	GDP      = "GDP"
	CPI      = "CPIAUCSL"
	UnRate   = "UNRATE"
	FedFunds = "FEDFUNDS"
)

// Client reads the FRED API.
type Client struct {
	c *fetch.Client
}

// New returns a FRED client. The key is mandatory.
func New(apiKey string, opts ...fetch.Option) (*Client, error) {
	if apiKey == "" {
		return nil, fetch.MissingKey("fred", "FRED_API_KEY")
	}
	base := []fetch.Option{
		fetch.WithQuery("api_key", apiKey),
		fetch.WithQuery("file_type", "json"),
	}
	return &Client{c: fetch.NewClient("fred", DefaultBaseURL, append(base, opts...)...)}, nil
}

// Series is the metadata of an economic series.
type Series struct {
	ID                 string `json:"id"`
	Title              string `json:"title"`
	ObservationStart   string `json:"observation_start"`
	ObservationEnd     string `json:"observation_end"`
	Frequency          string `json:"frequency"`
	Units              string `json:"units"`
	SeasonalAdjustment string `json:"seasonal_adjustment"`
	LastUpdated        string `json:"last_updated"`
	Popularity         int    `json:"popularity"`
	Notes              string `json:"notes"`
}

// Search returns at most limit series matching text, most popular first.
func (f *Client) Search(ctx context.Context, text string, limit int) ([]Series, error) {
	params := url.Values{}
	params.Set("search_text", text)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("order_by", "popularity")
	params.Set("sort_order", "desc")
	var resp struct {
		Series []Series `json:"seriess"`
	}
	if err := f.c.GetJSON(ctx, "/series/search", params, &resp); err != nil {
		return nil, err
	}
	return resp.Series, nil
}

// Info returns the metadata of the series id.
func (f *Client) Info(ctx context.Context, id string) (Series, error) {
	var resp struct {
		Series []Series `json:"seriess"`
	}
	if err := f.c.GetJSON(ctx, "/series", url.Values{"series_id": {strings.ToUpper(id)}}, &resp); err != nil {
		return Series{}, err
	}
	if len(resp.Series) == 0 {
		return Series{}, fmt.Errorf("fred: series %s: %w", id, fetch.ErrNoData)
	}
	return resp.Series[0], nil
}

// Observations returns the observations of the series id within r.
//
// Missing values (reported as ".") are skipped.
func (f *Client) Observations(ctx context.Context, id string, r fterm.Range) (*fterm.History[float64], error) {
	params := url.Values{}
	params.Set("series_id", strings.ToUpper(id))
	if !r.From.IsZero() {
		params.Set("observation_start", r.From.String())
	}
	if !r.To.IsZero() {
		params.Set("observation_end", r.To.String())
	}
	var resp struct {
		Observations []struct {
			Date  string `json:"date"`
			Value string `json:"value"`
		} `json:"observations"`
	}
	if err := f.c.GetJSON(ctx, "/series/observations", params, &resp); err != nil {
		return nil, err
	}
	h := new(fterm.History[float64])
	for _, o := range resp.Observations {
		if o.Value == "." {
			continue
		}
		v, err := strconv.ParseFloat(o.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("fred: series %s on %s: invalid value %q: %w", id, o.Date, o.Value, err)
		}
		on, err := fterm.ParseDate(o.Date)
		if err != nil {
			return nil, fmt.Errorf("fred: series %s: %w", id, err)
		}
		h.Append(on, v)
	}
	if h.Len() == 0 {
		return nil, fmt.Errorf("fred: series %s: %w", id, fetch.ErrNoData)
	}
	return h, nil
}
