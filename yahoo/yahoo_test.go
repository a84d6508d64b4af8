package yahoo

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/etnz/fterm"
	"github.com/etnz/fterm/fetch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chartPayload = `{"chart":{"result":[{
  "meta":{"currency":"USD","symbol":"AAPL","exchangeName":"NMS","fullExchangeName":"NasdaqGS",
    "longName":"Apple Inc.","regularMarketPrice":190.5,"chartPreviousClose":188.0,
    "regularMarketDayHigh":191.2,"regularMarketDayLow":187.9,"regularMarketVolume":51234567,
    "regularMarketTime":1704488400,"gmtoffset":-18000},
  "timestamp":[1704205800,1704292200,1704378600],
  "indicators":{
    "quote":[{"open":[187.1,184.2,null],"high":[188.4,185.8,null],"low":[183.8,182.7,null],
      "close":[185.6,184.3,null],"volume":[82488700,58414500,null]}],
    "adjclose":[{"adjclose":[184.9,183.6,null]}]}}],"error":null}}`

func newTestClient(t *testing.T, payload string, status int) (*Client, *string) {
	t.Helper()
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.WriteHeader(status)
		w.Write([]byte(payload))
	}))
	t.Cleanup(srv.Close)
	return New(fetch.WithBaseURL(srv.URL)), &path
}

func TestCandles(t *testing.T) {
	y, path := newTestClient(t, chartPayload, http.StatusOK)

	got, err := y.Candles(context.Background(), "aapl", fterm.NewDate(2024, 1, 2), fterm.NewDate(2024, 1, 4), "1d")
	require.NoError(t, err)
	assert.Equal(t, "/v8/finance/chart/AAPL", *path)
	require.Len(t, got, 2, "null closes must be skipped")
	assert.Equal(t, fterm.NewDate(2024, time.January, 2), got[0].Date)
	assert.Equal(t, 185.6, got[0].Close)
	assert.Equal(t, 184.9, got[0].AdjClose)
	assert.Equal(t, int64(58414500), got[1].Volume)
}

func TestCandles_InvalidInterval(t *testing.T) {
	y, _ := newTestClient(t, chartPayload, http.StatusOK)
	_, err := y.Candles(context.Background(), "AAPL", fterm.NewDate(2024, 1, 2), fterm.NewDate(2024, 1, 4), "5m")
	assert.Error(t, err)
}

func TestQuote(t *testing.T) {
	y, _ := newTestClient(t, chartPayload, http.StatusOK)

	q, err := y.Quote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "Apple Inc.", q.Name)
	assert.Equal(t, "NasdaqGS", q.Exchange)
	assert.Equal(t, "USD", q.Currency)
	assert.Equal(t, 190.5, q.Price)
	assert.Equal(t, 188.0, q.PreviousClose)
	assert.InDelta(t, 2.5, q.Change(), 1e-9)
	assert.Equal(t, int64(51234567), q.Volume)
}

func TestQuote_BypassesCache(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(strings.Replace(chartPayload, `"regularMarketPrice":190.5`, fmt.Sprintf(`"regularMarketPrice":%d`, 190+hits), 1)))
	}))
	t.Cleanup(srv.Close)
	cache := fetch.NewCache(nil, t.TempDir(), fterm.Daily, nil)
	y := New(fetch.WithBaseURL(srv.URL), fetch.WithTransport(cache))

	first, err := y.Quote(context.Background(), "AAPL")
	require.NoError(t, err)
	second, err := y.Quote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 2, hits)
	assert.Equal(t, 191.0, first.Price)
	assert.Equal(t, 192.0, second.Price)

	// candles are history, they stay cached for the day
	for range 2 {
		_, err := y.Candles(context.Background(), "AAPL", fterm.NewDate(2024, 1, 2), fterm.NewDate(2024, 1, 4), "1d")
		require.NoError(t, err)
	}
	assert.Equal(t, 3, hits)
}

func TestQuote_NotFound(t *testing.T) {
	payload := `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`
	y, _ := newTestClient(t, payload, http.StatusNotFound)

	_, err := y.Quote(context.Background(), "NOPE")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}
