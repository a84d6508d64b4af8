// Package eodhd reads instrument search results and end of day prices from EOD Historical Data.
package eodhd

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/etnz/fterm"
	"github.com/etnz/fterm/fetch"
)

const DefaultBaseURL = "https://eodhd.com/api"

// Client reads the EODHD API.
type Client struct {
	c *fetch.Client
}

// New returns an EODHD client. The key is mandatory ("demo" works for a few tickers).
func New(apiKey string, opts ...fetch.Option) (*Client, error) {
	if apiKey == "" {
		return nil, fetch.MissingKey("eodhd", "EODHD_API_KEY")
	}
	base := []fetch.Option{
		fetch.WithQuery("api_token", apiKey),
		fetch.WithQuery("fmt", "json"),
	}
	return &Client{c: fetch.NewClient("eodhd", DefaultBaseURL, append(base, opts...)...)}, nil
}

// SearchResult matches the structure of a single item in the EODHD search API response.
type SearchResult struct {
	Code              string  `json:"Code"`
	Exchange          string  `json:"Exchange"`
	Name              string  `json:"Name"`
	Type              string  `json:"Type"`
	Country           string  `json:"Country"`
	Currency          string  `json:"Currency"`
	ISIN              string  `json:"ISIN"`
	PreviousClose     float64 `json:"previousClose"`
	PreviousCloseDate string  `json:"previousCloseDate"`
}

// Ticker returns the CODE.EXCHANGE form used by EODHD, and understood by Yahoo for US listings.
func (r SearchResult) Ticker() string {
	if r.Exchange == "" {
		return r.Code
	}
	return r.Code + "." + r.Exchange
}

// Search types accepted by the API.
const (
	AllTypes = "all"
	Stock    = "stock"
	ETF      = "etf"
	Fund     = "fund"
	Bond     = "bond"
	Index    = "index"
	Crypto   = "crypto"
)

// Search searches for instruments matching term, restricted to kind (AllTypes for any).
func (e *Client) Search(ctx context.Context, term, kind string, limit int) ([]SearchResult, error) {
	params := url.Values{}
	if kind != "" && kind != AllTypes {
		params.Set("type", kind)
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	var results []SearchResult
	if err := e.c.GetJSON(ctx, "/search/"+url.PathEscape(term), params, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// Candles returns end of day candles for ticker (CODE.EXCHANGE) within r.
func (e *Client) Candles(ctx context.Context, ticker string, r fterm.Range) ([]fterm.Candle, error) {
	params := url.Values{}
	params.Set("period", "d")
	params.Set("order", "a")
	params.Set("from", r.From.String())
	params.Set("to", r.To.String())
	var bars []struct {
		Date          fterm.Date `json:"date"`
		Open          float64    `json:"open"`
		High          float64    `json:"high"`
		Low           float64    `json:"low"`
		Close         float64    `json:"close"`
		AdjustedClose float64    `json:"adjusted_close"`
		Volume        int64      `json:"volume"`
	}
	if err := e.c.GetJSON(ctx, "/eod/"+url.PathEscape(strings.ToUpper(ticker)), params, &bars); err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("eodhd %s: %w", ticker, fetch.ErrNoData)
	}
	res := make([]fterm.Candle, len(bars))
	for i, b := range bars {
		res[i] = fterm.Candle{Date: b.Date, Open: b.Open, High: b.High, Low: b.Low, Close: b.Close, AdjClose: b.AdjustedClose, Volume: b.Volume}
	}
	return res, nil
}
