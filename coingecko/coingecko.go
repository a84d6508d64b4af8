// Package coingecko reads crypto market data from the CoinGecko public API.
package coingecko

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/fterm"
	"github.com/etnz/fterm/fetch"
)

const DefaultBaseURL = "https://api.coingecko.com/api/v3"

// Client reads the CoinGecko API. The key is optional (demo plan).
type Client struct {
	c *fetch.Client
}

// New returns a CoinGecko client. An empty key uses the anonymous public rate.
func New(apiKey string, opts ...fetch.Option) *Client {
	// public api is limited to a few calls per minute
	base := []fetch.Option{fetch.WithRateLimit(0.5)}
	if apiKey != "" {
		base = append(base, fetch.WithHeader("x-cg-demo-api-key", apiKey))
	}
	return &Client{c: fetch.NewClient("coingecko", DefaultBaseURL, append(base, opts...)...)}
}

// Coin is a search result.
type Coin struct {
	ID            string `json:"id"`
	Symbol        string `json:"symbol"`
	Name          string `json:"name"`
	MarketCapRank int    `json:"market_cap_rank"`
}

// Search searches coins by name or symbol.
func (g *Client) Search(ctx context.Context, query string) ([]Coin, error) {
	var resp struct {
		Coins []Coin `json:"coins"`
	}
	if err := g.c.GetJSON(ctx, "/search", url.Values{"query": {query}}, &resp); err != nil {
		return nil, err
	}
	return resp.Coins, nil
}

// Resolve returns the coin id for an id or a symbol: an exact id match wins,
// then the best ranked exact symbol match.
func (g *Client) Resolve(ctx context.Context, idOrSymbol string) (string, error) {
	coins, err := g.Search(ctx, idOrSymbol)
	if err != nil {
		return "", err
	}
	needle := strings.ToLower(idOrSymbol)
	for _, c := range coins {
		if c.ID == needle {
			return c.ID, nil
		}
	}
	for _, c := range coins {
		if strings.ToLower(c.Symbol) == needle {
			// search results are sorted by market cap rank
			return c.ID, nil
		}
	}
	return "", fmt.Errorf("coingecko: coin %q: %w", idOrSymbol, fetch.ErrNoData)
}

// Price is a simple price with its 24h change.
type Price struct {
	ID        string
	VS        string
	Price     float64
	Change24h fterm.Percent
}

// Prices returns the simple price of each coin id against vs.
func (g *Client) Prices(ctx context.Context, ids []string, vs string) ([]Price, error) {
	vs = strings.ToLower(vs)
	params := url.Values{}
	params.Set("ids", strings.Join(ids, ","))
	params.Set("vs_currencies", vs)
	params.Set("include_24hr_change", "true")
	v, err := g.c.Live().GetAny(ctx, "/simple/price", params)
	if err != nil {
		return nil, err
	}
	res := make([]Price, 0, len(ids))
	for _, id := range ids {
		price, err := jsonpath.Get(fmt.Sprintf("$[%q][%q]", id, vs), v)
		if err != nil {
			// unknown ids are silently omitted by the API
			continue
		}
		p := Price{ID: id, VS: vs}
		p.Price, _ = price.(float64)
		if change, err := jsonpath.Get(fmt.Sprintf("$[%q][%q]", id, vs+"_24h_change"), v); err == nil {
			c, _ := change.(float64)
			p.Change24h = fterm.Percent(c)
		}
		res = append(res, p)
	}
	if len(res) == 0 {
		return nil, fmt.Errorf("coingecko: %s: %w", strings.Join(ids, ","), fetch.ErrNoData)
	}
	return res, nil
}

// Market is a coin with its market data.
type Market struct {
	ID                       string  `json:"id"`
	Symbol                   string  `json:"symbol"`
	Name                     string  `json:"name"`
	CurrentPrice             float64 `json:"current_price"`
	MarketCap                float64 `json:"market_cap"`
	MarketCapRank            int     `json:"market_cap_rank"`
	TotalVolume              float64 `json:"total_volume"`
	PriceChangePercentage24h float64 `json:"price_change_percentage_24h"`
}

// Top returns the first n coins by market capitalization.
func (g *Client) Top(ctx context.Context, n int, vs string) ([]Market, error) {
	params := url.Values{}
	params.Set("vs_currency", strings.ToLower(vs))
	params.Set("order", "market_cap_desc")
	params.Set("per_page", strconv.Itoa(n))
	params.Set("page", "1")
	var res []Market
	if err := g.c.Live().GetJSON(ctx, "/coins/markets", params, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// Trending returns the coins trending on CoinGecko in the last 24 hours.
func (g *Client) Trending(ctx context.Context) ([]Coin, error) {
	var resp struct {
		Coins []struct {
			Item Coin `json:"item"`
		} `json:"coins"`
	}
	if err := g.c.Live().GetJSON(ctx, "/search/trending", nil, &resp); err != nil {
		return nil, err
	}
	res := make([]Coin, len(resp.Coins))
	for i, c := range resp.Coins {
		res[i] = c.Item
	}
	return res, nil
}

// Point is one sample of a market chart.
type Point struct {
	Date      fterm.Date
	Price     float64
	MarketCap float64
	Volume    float64
}

// Chart returns daily prices of a coin over the last days.
func (g *Client) Chart(ctx context.Context, id, vs string, days int) ([]Point, error) {
	params := url.Values{}
	params.Set("vs_currency", strings.ToLower(vs))
	params.Set("days", strconv.Itoa(days))
	params.Set("interval", "daily")
	var resp struct {
		Prices       [][2]float64 `json:"prices"`
		MarketCaps   [][2]float64 `json:"market_caps"`
		TotalVolumes [][2]float64 `json:"total_volumes"`
	}
	if err := g.c.GetJSON(ctx, "/coins/"+url.PathEscape(id)+"/market_chart", params, &resp); err != nil {
		return nil, err
	}
	if len(resp.Prices) == 0 {
		return nil, fmt.Errorf("coingecko: chart %s: %w", id, fetch.ErrNoData)
	}
	res := make([]Point, 0, len(resp.Prices))
	for i, p := range resp.Prices {
		pt := Point{
			Date:  fterm.DateOf(time.UnixMilli(int64(p[0])).UTC()),
			Price: p[1],
		}
		if i < len(resp.MarketCaps) {
			pt.MarketCap = resp.MarketCaps[i][1]
		}
		if i < len(resp.TotalVolumes) {
			pt.Volume = resp.TotalVolumes[i][1]
		}
		// the last sample is the live price of today, it replaces the daily one.
		if n := len(res); n > 0 && res[n-1].Date == pt.Date {
			res[n-1] = pt
			continue
		}
		res = append(res, pt)
	}
	return res, nil
}

// Candles converts chart points into close-only candles, for indicators and statistics.
func Candles(points []Point) []fterm.Candle {
	res := make([]fterm.Candle, len(points))
	for i, p := range points {
		res[i] = fterm.Candle{Date: p.Date, Open: p.Price, High: p.Price, Low: p.Price, Close: p.Price, AdjClose: p.Price, Volume: int64(p.Volume)}
	}
	return res
}
