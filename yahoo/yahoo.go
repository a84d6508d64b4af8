// Package yahoo reads candles and quotes from the Yahoo Finance chart API.
package yahoo

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/fterm"
	"github.com/etnz/fterm/fetch"
)

const DefaultBaseURL = "https://query1.finance.yahoo.com"

// Intervals supported by Load.
var Intervals = []string{"1d", "1wk", "1mo"}

// Client reads the Yahoo Finance chart API. No key is required.
type Client struct {
	c *fetch.Client
}

// New returns a Yahoo Finance client.
func New(opts ...fetch.Option) *Client {
	return &Client{c: fetch.NewClient("yahoo", DefaultBaseURL, opts...)}
}

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta struct {
		GMTOffset int64 `json:"gmtoffset"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Open   []*float64 `json:"open"`
			High   []*float64 `json:"high"`
			Low    []*float64 `json:"low"`
			Close  []*float64 `json:"close"`
			Volume []*int64   `json:"volume"`
		} `json:"quote"`
		AdjClose []struct {
			AdjClose []*float64 `json:"adjclose"`
		} `json:"adjclose"`
	} `json:"indicators"`
}

// Candles returns the candles of symbol between from and to (included) at the given interval.
func (y *Client) Candles(ctx context.Context, symbol string, from, to fterm.Date, interval string) ([]fterm.Candle, error) {
	if !validInterval(interval) {
		return nil, fmt.Errorf("invalid interval %q, want one of %s", interval, strings.Join(Intervals, ", "))
	}
	params := url.Values{}
	params.Set("period1", strconv.FormatInt(from.Time().Unix(), 10))
	params.Set("period2", strconv.FormatInt(to.Add(1).Time().Unix(), 10))
	params.Set("interval", interval)
	params.Set("events", "div,split")

	var resp chartResponse
	if err := y.c.GetJSON(ctx, chartPath(symbol), params, &resp); err != nil {
		return nil, err
	}
	if e := resp.Chart.Error; e != nil {
		return nil, fmt.Errorf("yahoo %s: %s", symbol, e.Description)
	}
	if len(resp.Chart.Result) == 0 || len(resp.Chart.Result[0].Timestamp) == 0 {
		return nil, fmt.Errorf("yahoo %s: %w", symbol, fetch.ErrNoData)
	}
	return candles(resp.Chart.Result[0]), nil
}

func candles(r chartResult) []fterm.Candle {
	if len(r.Indicators.Quote) == 0 {
		return nil
	}
	q := r.Indicators.Quote[0]
	var adj []*float64
	if len(r.Indicators.AdjClose) > 0 {
		adj = r.Indicators.AdjClose[0].AdjClose
	}
	res := make([]fterm.Candle, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		// null closes are days without trading
		if at(q.Close, i) == 0 {
			continue
		}
		on := fterm.DateOf(time.Unix(ts+r.Meta.GMTOffset, 0).UTC())
		c := fterm.Candle{
			Date:     on,
			Open:     at(q.Open, i),
			High:     at(q.High, i),
			Low:      at(q.Low, i),
			Close:    at(q.Close, i),
			AdjClose: at(adj, i),
			Volume:   at(q.Volume, i),
		}
		// intraday duplicates: the last one wins.
		if n := len(res); n > 0 && res[n-1].Date == on {
			res[n-1] = c
			continue
		}
		res = append(res, c)
	}
	return res
}

func at[T float64 | int64](values []*T, i int) T {
	if i >= len(values) || values[i] == nil {
		return 0
	}
	return *values[i]
}

// Quote returns the latest quote of symbol, read from the chart metadata.
func (y *Client) Quote(ctx context.Context, symbol string) (fterm.Quote, error) {
	params := url.Values{}
	params.Set("range", "1d")
	params.Set("interval", "1d")
	v, err := y.c.Live().GetAny(ctx, chartPath(symbol), params)
	if err != nil {
		return fterm.Quote{}, err
	}
	meta, err := jsonpath.Get("$.chart.result[0].meta", v)
	if err != nil {
		return fterm.Quote{}, fmt.Errorf("yahoo %s: %w", symbol, fetch.ErrNoData)
	}

	var q fterm.Quote
	q.Symbol = str(meta, "$.symbol", symbol)
	q.Name = str(meta, "$.longName", str(meta, "$.shortName", ""))
	q.Currency = str(meta, "$.currency", "")
	q.Exchange = str(meta, "$.fullExchangeName", str(meta, "$.exchangeName", ""))
	q.Price = num(meta, "$.regularMarketPrice")
	q.PreviousClose = num(meta, "$.previousClose")
	if q.PreviousClose == 0 {
		q.PreviousClose = num(meta, "$.chartPreviousClose")
	}
	q.DayHigh = num(meta, "$.regularMarketDayHigh")
	q.DayLow = num(meta, "$.regularMarketDayLow")
	q.Volume = int64(num(meta, "$.regularMarketVolume"))
	if ts := num(meta, "$.regularMarketTime"); ts > 0 {
		q.Time = time.Unix(int64(ts), 0)
	}
	if q.Price == 0 {
		return q, fmt.Errorf("yahoo %s: %w", symbol, fetch.ErrNoData)
	}
	return q, nil
}

func chartPath(symbol string) string {
	return "/v8/finance/chart/" + url.PathEscape(strings.ToUpper(symbol))
}

func validInterval(interval string) bool { return slices.Contains(Intervals, interval) }

// str evaluates a jsonpath expression expecting a string.
func str(v any, path, def string) string {
	res, err := jsonpath.Get(path, v)
	if err != nil {
		return def
	}
	if s, ok := res.(string); ok && s != "" {
		return s
	}
	return def
}

// num evaluates a jsonpath expression expecting a number, 0 otherwise.
func num(v any, path string) float64 {
	res, err := jsonpath.Get(path, v)
	if err != nil {
		return 0
	}
	f, _ := res.(float64)
	return f
}

// IsNotFound reports whether err is Yahoo's answer to an unknown symbol.
func IsNotFound(err error) bool {
	var apiErr *fetch.APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 404
}
