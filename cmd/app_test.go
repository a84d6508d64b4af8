package cmd

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/etnz/fterm/finviz"
	"github.com/google/subcommands"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// daily closes of 150 on 2024-01-02 and 160 on 2024-01-03.
const chartPayload = `{"chart":{"result":[{
  "meta":{"currency":"USD","symbol":"AAPL","gmtoffset":0},
  "timestamp":[1704153600,1704240000],
  "indicators":{
    "quote":[{"open":[149,151],"high":[151,161],"low":[148,155],"close":[150,160],"volume":[1000,2000]}],
    "adjclose":[{"adjclose":[150,160]}]}}],"error":null}}`

// testApp returns an App without cache, with providers served by handlers.
func testApp(t *testing.T, handlers map[string]http.HandlerFunc) *App {
	t.Helper()
	clearEnv(t)
	config := NewDefaultConfig()
	config.Cache.Disabled = true
	config.Endpoints = map[string]string{}
	for provider, h := range handlers {
		srv := httptest.NewServer(h)
		t.Cleanup(srv.Close)
		config.Endpoints[provider] = srv.URL
	}
	a := NewApp(config, zaptest.NewLogger(t))
	a.Plain = true
	return a
}

func serve(payload string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(payload))
	}
}

func execute(t *testing.T, a *App, line string) (subcommands.ExitStatus, string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	status := a.NewSession(&out, &errOut).Execute(context.Background(), line)
	return status, out.String(), errOut.String()
}

func TestAbout(t *testing.T) {
	a := testApp(t, nil)

	status, out, _ := execute(t, a, "about")
	assert.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out, "# fterm")

	status, _, errOut := execute(t, a, "about nothing")
	assert.Equal(t, subcommands.ExitUsageError, status)
	assert.Contains(t, errOut, "nothing")
}

func TestRootHelp(t *testing.T) {
	a := testApp(t, nil)
	status, out, _ := execute(t, a, "help")
	assert.Equal(t, subcommands.ExitSuccess, status)
	for _, name := range []string{"stocks>", "crypto>", "etf>", "economy>", "screener>", "portfolio>", "about"} {
		assert.Contains(t, out, name)
	}
}

func TestScreener_Presets(t *testing.T) {
	a := testApp(t, nil)
	status, out, _ := execute(t, a, "screener/presets")
	assert.Equal(t, subcommands.ExitSuccess, status)
	for _, s := range finviz.Signals {
		assert.Contains(t, out, s.Name)
	}

	status, _, errOut := execute(t, a, "screener/view nothing")
	assert.Equal(t, subcommands.ExitUsageError, status)
	assert.Contains(t, errOut, "unknown preset")
}

func TestStocks_Load(t *testing.T) {
	a := testApp(t, map[string]http.HandlerFunc{"yahoo": serve(chartPayload)})
	var out, errOut bytes.Buffer
	s := a.NewSession(&out, &errOut)

	status := s.Execute(context.Background(), "stocks/load aapl -s 2024-01-01 -e 2024-01-10/candle -n 1")
	require.Equal(t, subcommands.ExitSuccess, status, errOut.String())
	assert.Equal(t, "/stocks (AAPL) $ ", s.Prompt())
	assert.Contains(t, out.String(), "160.00")
	assert.NotContains(t, out.String(), "150.00", "only the last candle")
}

func TestStocks_NotLoaded(t *testing.T) {
	a := testApp(t, nil)
	status, _, errOut := execute(t, a, "stocks/stats")
	assert.Equal(t, subcommands.ExitFailure, status)
	assert.Contains(t, errOut, "load")
}

func TestEconomy_MissingKey(t *testing.T) {
	a := testApp(t, nil)
	status, _, errOut := execute(t, a, "economy/gdp")
	assert.Equal(t, subcommands.ExitFailure, status)
	assert.Contains(t, errOut, fredKeyEnv)
}

func TestApp_SharesClients(t *testing.T) {
	a := testApp(t, nil)
	assert.Same(t, a.yahoo(), a.yahoo())
	assert.Same(t, a.coingecko(), a.coingecko())

	_, err := a.tradier()
	require.Error(t, err, "no token yet")
	a.Config.Keys.Tradier = "t0ken"
	first, err := a.tradier()
	require.NoError(t, err)
	second, err := a.tradier()
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestApp_RateLimitAcrossCommands(t *testing.T) {
	hits := 0
	a := testApp(t, map[string]http.HandlerFunc{"yahoo": func(w http.ResponseWriter, r *http.Request) {
		hits++
		serve(chartPayload)(w, r)
	}})

	start := time.Now()
	for range 7 {
		execute(t, a, "stocks/quote AAPL")
	}
	// yahoo allows a burst of 5 at 5 req/s: the last two commands wait 200ms each
	assert.Equal(t, 7, hits)
	assert.GreaterOrEqual(t, time.Since(start), 380*time.Millisecond)
}

const ledgerCSV = `date,type,ticker,quantity,amount,fees,memo
2024-01-02,deposit,,,10000,,
2024-01-02,buy,AAPL,10,1500,5,first buy
`

func TestPortfolio(t *testing.T) {
	a := testApp(t, map[string]http.HandlerFunc{"yahoo": serve(chartPayload)})
	file := writeFile(t, t.TempDir(), "ledger.csv", ledgerCSV)
	var out, errOut bytes.Buffer
	s := a.NewSession(&out, &errOut)

	status := s.Execute(context.Background(), `portfolio/load "`+file+`"/tx`)
	require.Equal(t, subcommands.ExitSuccess, status, errOut.String())
	assert.Contains(t, out.String(), "Loaded 2 transactions")
	assert.Contains(t, out.String(), "Bought 10 of AAPL for $1,500.00 (fees $5.00)")
	assert.Equal(t, "/portfolio (ledger.csv) $ ", s.Prompt())

	// cash 8,495 + 10 shares at 160
	out.Reset()
	status = s.Execute(context.Background(), "hold -d 2024-01-31")
	require.Equal(t, subcommands.ExitSuccess, status, errOut.String())
	assert.Contains(t, out.String(), "$10,095.00")
	assert.Contains(t, out.String(), "$1,600.00")

	out.Reset()
	status = s.Execute(context.Background(), "ar -p month -e 2024-01-31")
	require.Equal(t, subcommands.ExitSuccess, status, errOut.String())
	assert.Contains(t, out.String(), "Report by month")
	assert.Contains(t, out.String(), "+$95.00")
}

func TestPortfolio_AddRejected(t *testing.T) {
	a := testApp(t, nil)
	var out, errOut bytes.Buffer
	s := a.NewSession(&out, &errOut)

	status := s.Execute(context.Background(), "portfolio/add sell -d 2024-01-02 -t AAPL -q 5 -a 100")
	assert.Equal(t, subcommands.ExitFailure, status)
	assert.Contains(t, errOut.String(), "rejected")

	errOut.Reset()
	status = s.Execute(context.Background(), "add deposit -d 2024-01-02 -a 100")
	require.Equal(t, subcommands.ExitSuccess, status, errOut.String())
	assert.Contains(t, out.String(), "Deposited $100.00")
}

func TestPortfolio_SaveAndReload(t *testing.T) {
	a := testApp(t, nil)
	dir := t.TempDir()
	src := writeFile(t, dir, "ledger.csv", ledgerCSV)
	dst := filepath.Join(dir, "ledger.jsonl")

	status, _, errOut := execute(t, a, `portfolio/load "`+src+`"/save "`+dst+`"/load "`+dst+`"`)
	require.Equal(t, subcommands.ExitSuccess, status, errOut)
}

func TestOptions_Exp(t *testing.T) {
	a := testApp(t, map[string]http.HandlerFunc{
		"tradier": serve(`{"expirations":{"date":["2024-02-16","2024-01-19"]}}`),
	})
	a.Config.Keys.Tradier = "t0ken"
	var out, errOut bytes.Buffer
	s := a.NewSession(&out, &errOut)

	status := s.Execute(context.Background(), "stocks/options/load spy/exp")
	require.Equal(t, subcommands.ExitSuccess, status, errOut.String())
	assert.Equal(t, "/stocks/options (SPY 2024-01-19) $ ", s.Prompt(), "nearest expiration is selected")

	status = s.Execute(context.Background(), "exp -select 1")
	require.Equal(t, subcommands.ExitSuccess, status, errOut.String())
	assert.Equal(t, "/stocks/options (SPY 2024-02-16) $ ", s.Prompt())

	status = s.Execute(context.Background(), "exp -select 5")
	assert.Equal(t, subcommands.ExitUsageError, status)
}
