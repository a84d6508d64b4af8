// Package finviz scrapes the Finviz stock screener.
package finviz

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/etnz/fterm/fetch"
)

const DefaultBaseURL = "https://finviz.com"

// Signal is a built-in Finviz screener signal.
type Signal struct {
	Name        string // as typed in the terminal
	Code        string // finviz "s" parameter
	Description string
}

// Signals lists the supported screener presets.
var Signals = []Signal{
	{"top_gainers", "ta_topgainers", "stocks with the highest % price gain today"},
	{"top_losers", "ta_toplosers", "stocks with the highest % price loss today"},
	{"new_high", "ta_newhigh", "stocks making 52-week high today"},
	{"new_low", "ta_newlow", "stocks making 52-week low today"},
	{"most_volatile", "ta_mostvolatile", "stocks with the highest widest high/low trading range today"},
	{"most_active", "ta_mostactive", "stocks with the highest trading volume today"},
	{"unusual_volume", "ta_unusualvolume", "stocks with unusually high volume today"},
	{"overbought", "ta_overbought", "stocks with RSI above 70"},
	{"oversold", "ta_oversold", "stocks with RSI below 30"},
	{"upgrades", "n_upgrades", "stocks upgraded by analysts today"},
	{"downgrades", "n_downgrades", "stocks downgraded by analysts today"},
	{"earnings_before", "n_earningsbefore", "companies reporting earnings today, before market open"},
	{"earnings_after", "n_earningsafter", "companies reporting earnings today, after market close"},
}

// LookupSignal returns the signal named name.
func LookupSignal(name string) (Signal, bool) {
	name = strings.ToLower(strings.ReplaceAll(name, "-", "_"))
	for _, s := range Signals {
		if s.Name == name || s.Code == name {
			return s, true
		}
	}
	return Signal{}, false
}

// Row is one line of the overview screener.
type Row struct {
	Ticker    string
	Company   string
	Sector    string
	Industry  string
	Country   string
	MarketCap string
	PE        string
	Price     string
	Change    string
	Volume    string
}

// Client scrapes finviz.com.
type Client struct {
	c *fetch.Client
}

// New returns a Finviz client.
func New(opts ...fetch.Option) *Client {
	return &Client{c: fetch.NewClient("finviz", DefaultBaseURL, append([]fetch.Option{fetch.WithRateLimit(1)}, opts...)...)}
}

// Screen returns at most n rows of the overview screener for the signal.
func (f *Client) Screen(ctx context.Context, signal Signal, n int) ([]Row, error) {
	params := url.Values{}
	params.Set("v", "111")
	params.Set("s", signal.Code)
	body, err := f.c.Live().GetBytes(ctx, "/screener.ashx", params)
	if err != nil {
		return nil, err
	}
	rows, err := Parse(body)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("finviz: %s: %w", signal.Name, fetch.ErrNoData)
	}
	if n > 0 && len(rows) > n {
		rows = rows[:n]
	}
	return rows, nil
}

// Parse extracts rows from a screener page.
//
// The result table is located by its header row, columns are mapped by header name.
func Parse(page []byte) ([]Row, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("finviz: cannot parse page: %w", err)
	}

	var rows []Row
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		trs := table.ChildrenFiltered("tbody, thead").ChildrenFiltered("tr")
		if trs.Length() == 0 {
			trs = table.ChildrenFiltered("tr")
		}
		if trs.Length() < 2 {
			return true
		}
		columns := map[string]int{}
		trs.First().Children().Each(func(i int, cell *goquery.Selection) {
			columns[strings.ToLower(strings.TrimSpace(cell.Text()))] = i
		})
		if _, ok := columns["ticker"]; !ok {
			return true
		}
		trs.Slice(1, trs.Length()).Each(func(_ int, tr *goquery.Selection) {
			cells := tr.Children()
			get := func(name string) string {
				i, ok := columns[name]
				if !ok || i >= cells.Length() {
					return ""
				}
				return strings.TrimSpace(cells.Eq(i).Text())
			}
			r := Row{
				Ticker:    get("ticker"),
				Company:   get("company"),
				Sector:    get("sector"),
				Industry:  get("industry"),
				Country:   get("country"),
				MarketCap: get("market cap"),
				PE:        get("p/e"),
				Price:     get("price"),
				Change:    get("change"),
				Volume:    get("volume"),
			}
			if r.Ticker != "" {
				rows = append(rows, r)
			}
		})
		return false
	})
	return rows, nil
}
