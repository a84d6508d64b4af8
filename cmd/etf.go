package cmd

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/etnz/fterm/eodhd"
	"github.com/etnz/fterm/indicator"
	"github.com/etnz/fterm/menu"
	"github.com/etnz/fterm/renderer"
	"github.com/google/subcommands"
)

func (a *App) etfMenu() *menu.Menu {
	state := &instrument{}
	m := menu.New("etf", "Exchange Traded Funds")
	m.Register(&searchCmd{app: a, kind: eodhd.ETF}, "Discovery")
	m.Register(&loadCmd{app: a, state: state}, "Data")
	m.Register(&quoteCmd{app: a, state: state}, "Data")
	m.Register(&candleCmd{state: state}, "Data")
	m.Register(&statsCmd{state: state}, "Analysis")
	m.Register(&compareCmd{app: a}, "Analysis")
	m.SetStatus(state.status)
	m.SetReplay(state.replay)
	return m
}

// compareCmd compares the performance of several tickers.
type compareCmd struct {
	app   *App
	start string
	end   string
}

func (*compareCmd) Name() string     { return "compare" }
func (*compareCmd) Synopsis() string { return "compare the performance of several tickers" }
func (*compareCmd) Usage() string {
	return `compare <ticker>... [-s <start>] [-e <end>]

  Prints total return, CAGR, volatility and max drawdown of each ticker over
  the same period, from daily candles.
`
}

func (c *compareCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.start, "s", "-1y", "start date")
	f.StringVar(&c.end, "e", "0d", "end date")
}

func (c *compareCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	s := menu.FromArgs(args)
	if f.NArg() < 2 {
		fmt.Fprintln(s.Err(), "Error: compare needs at least two tickers.")
		return subcommands.ExitUsageError
	}
	r, err := parseRange(c.start, c.end)
	if err != nil {
		fmt.Fprintf(s.Err(), "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	client := c.app.yahoo()
	var rows []renderer.Comparison
	for _, arg := range f.Args() {
		ticker := strings.ToUpper(arg)
		candles, err := client.Candles(ctx, ticker, r.From, r.To, "1d")
		if err != nil {
			fmt.Fprintf(s.Err(), "Error loading %s: %v\n", ticker, err)
			return subcommands.ExitFailure
		}
		stats, err := indicator.Summarize(candles, indicator.TradingDays)
		if err != nil {
			fmt.Fprintf(s.Err(), "Error summarizing %s: %v\n", ticker, err)
			return subcommands.ExitFailure
		}
		rows = append(rows, renderer.Comparison{Ticker: ticker, Stats: stats})
	}
	return show(s, renderer.Compare(fmt.Sprintf("Comparison from %s to %s", r.From, r.To), rows))
}
