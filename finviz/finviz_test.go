package finviz

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/etnz/fterm/fetch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const screenerPage = `<html><body>
<table class="nav"><tr><td>Home</td><td>News</td></tr></table>
<table class="screener_table">
<thead><tr>
  <th>No.</th><th>Ticker</th><th>Company</th><th>Sector</th><th>Industry</th><th>Country</th>
  <th>Market Cap</th><th>P/E</th><th>Price</th><th>Change</th><th>Volume</th>
</tr></thead>
<tbody>
<tr><td>1</td><td><a href="quote.ashx?t=ABCD">ABCD</a></td><td>Abcd Corp</td><td>Technology</td><td>Software</td><td>USA</td><td>1.2B</td><td>25.3</td><td>12.40</td><td>18.05%</td><td>4,512,300</td></tr>
<tr><td>2</td><td><a href="quote.ashx?t=EFG">EFG</a></td><td>Efg Inc</td><td>Healthcare</td><td>Biotechnology</td><td>USA</td><td>350.1M</td><td>-</td><td>3.21</td><td>15.72%</td><td>9,001,234</td></tr>
</tbody>
</table>
</body></html>`

func TestParse(t *testing.T) {
	rows, err := Parse([]byte(screenerPage))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "ABCD", rows[0].Ticker)
	assert.Equal(t, "Abcd Corp", rows[0].Company)
	assert.Equal(t, "1.2B", rows[0].MarketCap)
	assert.Equal(t, "-", rows[1].PE)
	assert.Equal(t, "15.72%", rows[1].Change)
}

func TestScreen(t *testing.T) {
	var query string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		w.Write([]byte(screenerPage))
	}))
	defer srv.Close()

	signal, ok := LookupSignal("top-gainers")
	require.True(t, ok)

	f := New(fetch.WithBaseURL(srv.URL), fetch.WithRateLimit(100))
	rows, err := f.Screen(context.Background(), signal, 1)
	require.NoError(t, err)
	assert.Equal(t, "s=ta_topgainers&v=111", query)
	assert.Len(t, rows, 1)
}

func TestScreen_NoRows(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><p>No results</p></body></html>`))
	}))
	defer srv.Close()

	f := New(fetch.WithBaseURL(srv.URL), fetch.WithRateLimit(100))
	_, err := f.Screen(context.Background(), Signals[0], 10)
	assert.ErrorIs(t, err, fetch.ErrNoData)
}

func TestLookupSignal(t *testing.T) {
	_, ok := LookupSignal("unknown")
	assert.False(t, ok)
	s, ok := LookupSignal("n_upgrades")
	assert.True(t, ok)
	assert.Equal(t, "upgrades", s.Name)
}
