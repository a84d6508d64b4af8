// Package tradier reads option expirations and chains from the Tradier brokerage API.
package tradier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/etnz/fterm"
	"github.com/etnz/fterm/fetch"
)

const DefaultBaseURL = "https://api.tradier.com/v1"

// Client reads the Tradier market data API.
type Client struct {
	c *fetch.Client
}

// New returns a Tradier client. The token is mandatory.
func New(token string, opts ...fetch.Option) (*Client, error) {
	if token == "" {
		return nil, fetch.MissingKey("tradier", "TRADIER_TOKEN")
	}
	base := []fetch.Option{
		fetch.WithHeader("Authorization", "Bearer "+token),
		fetch.WithHeader("Accept", "application/json"),
	}
	return &Client{c: fetch.NewClient("tradier", DefaultBaseURL, append(base, opts...)...)}, nil
}

// oneOrMany decodes a JSON value that Tradier sends as an object when there is
// a single element, and as an array otherwise.
type oneOrMany[T any] []T

func (o *oneOrMany[T]) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*o = nil
		return nil
	}
	if len(b) > 0 && b[0] == '[' {
		var many []T
		if err := json.Unmarshal(b, &many); err != nil {
			return err
		}
		*o = many
		return nil
	}
	var one T
	if err := json.Unmarshal(b, &one); err != nil {
		return err
	}
	*o = []T{one}
	return nil
}

// Expirations returns the option expiration dates of symbol, sorted.
func (t *Client) Expirations(ctx context.Context, symbol string) ([]fterm.Date, error) {
	params := url.Values{}
	params.Set("symbol", strings.ToUpper(symbol))
	params.Set("includeAllRoots", "true")
	var resp struct {
		Expirations *struct {
			Date oneOrMany[string] `json:"date"`
		} `json:"expirations"`
	}
	if err := t.c.GetJSON(ctx, "/markets/options/expirations", params, &resp); err != nil {
		return nil, err
	}
	if resp.Expirations == nil || len(resp.Expirations.Date) == 0 {
		return nil, fmt.Errorf("tradier: expirations of %s: %w", symbol, fetch.ErrNoData)
	}
	res := make([]fterm.Date, 0, len(resp.Expirations.Date))
	for _, s := range resp.Expirations.Date {
		d, err := fterm.ParseDate(s)
		if err != nil {
			return nil, fmt.Errorf("tradier: %w", err)
		}
		res = append(res, d)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Before(res[j]) })
	return res, nil
}

// Option is one contract of a chain.
type Option struct {
	Symbol         string  `json:"symbol"`
	Description    string  `json:"description"`
	OptionType     string  `json:"option_type"` // "call" or "put"
	Strike         float64 `json:"strike"`
	Bid            float64 `json:"bid"`
	Ask            float64 `json:"ask"`
	Last           float64 `json:"last"`
	Volume         int64   `json:"volume"`
	OpenInterest   int64   `json:"open_interest"`
	ExpirationDate string  `json:"expiration_date"`
	Greeks         *Greeks `json:"greeks"`
}

// Greeks as computed by Tradier (courtesy of ORATS).
type Greeks struct {
	Delta float64 `json:"delta"`
	Gamma float64 `json:"gamma"`
	Theta float64 `json:"theta"`
	Vega  float64 `json:"vega"`
	MidIV float64 `json:"mid_iv"`
}

func (o Option) IsCall() bool { return o.OptionType == "call" }

// Chain returns the option chain of symbol for the expiration date, sorted by type then strike.
func (t *Client) Chain(ctx context.Context, symbol string, expiration fterm.Date) ([]Option, error) {
	params := url.Values{}
	params.Set("symbol", strings.ToUpper(symbol))
	params.Set("expiration", expiration.String())
	params.Set("greeks", "true")
	var resp struct {
		Options *struct {
			Option oneOrMany[Option] `json:"option"`
		} `json:"options"`
	}
	if err := t.c.Live().GetJSON(ctx, "/markets/options/chains", params, &resp); err != nil {
		return nil, err
	}
	if resp.Options == nil || len(resp.Options.Option) == 0 {
		return nil, fmt.Errorf("tradier: chain of %s on %s: %w", symbol, expiration, fetch.ErrNoData)
	}
	res := []Option(resp.Options.Option)
	sort.SliceStable(res, func(i, j int) bool {
		if res[i].OptionType != res[j].OptionType {
			return res[i].IsCall()
		}
		return res[i].Strike < res[j].Strike
	})
	return res, nil
}

// Filter keeps the options of the requested types within [minStrike, maxStrike].
// A zero bound is ignored.
func Filter(options []Option, calls, puts bool, minStrike, maxStrike float64) []Option {
	var res []Option
	for _, o := range options {
		if o.IsCall() && !calls || !o.IsCall() && !puts {
			continue
		}
		if minStrike > 0 && o.Strike < minStrike || maxStrike > 0 && o.Strike > maxStrike {
			continue
		}
		res = append(res, o)
	}
	return res
}
