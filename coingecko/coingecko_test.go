package coingecko

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/etnz/fterm"
	"github.com/etnz/fterm/fetch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient serves payloads by path.
func newTestClient(t *testing.T, payloads map[string]string) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload, ok := payloads[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(payload))
	}))
	t.Cleanup(srv.Close)
	return New("", fetch.WithBaseURL(srv.URL), fetch.WithRateLimit(100))
}

const searchPayload = `{"coins":[
  {"id":"bitcoin","name":"Bitcoin","symbol":"BTC","market_cap_rank":1},
  {"id":"wrapped-bitcoin","name":"Wrapped Bitcoin","symbol":"WBTC","market_cap_rank":15},
  {"id":"bitcoin-cash","name":"Bitcoin Cash","symbol":"BCH","market_cap_rank":18}]}`

func TestResolve(t *testing.T) {
	g := newTestClient(t, map[string]string{"/search": searchPayload})

	tests := []struct {
		in, want string
		wantErr  bool
	}{
		{"bitcoin", "bitcoin", false},
		{"BTC", "bitcoin", false},
		{"bch", "bitcoin-cash", false},
		{"doge", "", true},
	}
	for _, tt := range tests {
		got, err := g.Resolve(context.Background(), tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, fetch.ErrNoData)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestPrices(t *testing.T) {
	g := newTestClient(t, map[string]string{
		"/simple/price": `{"bitcoin":{"eur":61234.5,"eur_24h_change":-1.25},"ethereum":{"eur":3012.1,"eur_24h_change":2.5}}`,
	})

	got, err := g.Prices(context.Background(), []string{"bitcoin", "ethereum", "nope"}, "EUR")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 61234.5, got[0].Price)
	assert.True(t, got[0].Change24h.Equal(-1.25))
	assert.Equal(t, "ethereum", got[1].ID)
}

func TestTopAndTrending(t *testing.T) {
	g := newTestClient(t, map[string]string{
		"/coins/markets":   `[{"id":"bitcoin","symbol":"btc","name":"Bitcoin","current_price":67000,"market_cap":1.3e12,"market_cap_rank":1,"total_volume":2.5e10,"price_change_percentage_24h":0.8}]`,
		"/search/trending": `{"coins":[{"item":{"id":"pepe","name":"Pepe","symbol":"PEPE","market_cap_rank":30}}]}`,
	})

	top, err := g.Top(context.Background(), 1, "usd")
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, 1, top[0].MarketCapRank)

	trending, err := g.Trending(context.Background())
	require.NoError(t, err)
	require.Len(t, trending, 1)
	assert.Equal(t, "pepe", trending[0].ID)
}

func TestChart(t *testing.T) {
	g := newTestClient(t, map[string]string{
		"/coins/bitcoin/market_chart": `{
		  "prices":[[1704067200000,42000.0],[1704153600000,44000.0],[1704200000000,44500.0]],
		  "market_caps":[[1704067200000,8.2e11],[1704153600000,8.6e11],[1704200000000,8.7e11]],
		  "total_volumes":[[1704067200000,1.1e10],[1704153600000,1.5e10],[1704200000000,1.6e10]]}`,
	})

	got, err := g.Chart(context.Background(), "bitcoin", "usd", 2)
	require.NoError(t, err)
	require.Len(t, got, 2, "same day samples are merged")
	assert.Equal(t, fterm.NewDate(2024, 1, 1), got[0].Date)
	assert.Equal(t, 44500.0, got[1].Price)
	assert.Len(t, Candles(got), 2)
}
