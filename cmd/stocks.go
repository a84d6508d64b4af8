package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/etnz/fterm"
	"github.com/etnz/fterm/eodhd"
	"github.com/etnz/fterm/fetch"
	"github.com/etnz/fterm/indicator"
	"github.com/etnz/fterm/menu"
	"github.com/etnz/fterm/renderer"
	"github.com/etnz/fterm/yahoo"
	"github.com/google/subcommands"
)

// instrument is the state of a menu working on one loaded ticker.
type instrument struct {
	ticker   string
	interval string
	period   fterm.Range
	candles  []fterm.Candle
}

func (i *instrument) status() string { return i.ticker }

func (i *instrument) replay() []string {
	if i.ticker == "" {
		return nil
	}
	return []string{fmt.Sprintf("load %s -s %s -e %s -i %s", i.ticker, i.period.From, i.period.To, i.interval)}
}

// loaded returns an error if no candles are loaded.
func (i *instrument) loaded() error {
	if len(i.candles) == 0 {
		return errors.New("no ticker loaded, use 'load <ticker>' first")
	}
	return nil
}

func (a *App) stocksMenu() *menu.Menu {
	state := &instrument{}
	m := menu.New("stocks", "Stocks")
	m.Register(&loadCmd{app: a, state: state}, "Data")
	m.Register(&quoteCmd{app: a, state: state}, "Data")
	m.Register(&candleCmd{state: state}, "Data")
	m.Register(&statsCmd{state: state}, "Analysis")
	m.Register(&searchCmd{app: a, kind: eodhd.AllTypes}, "Discovery")
	m.Child("ta", "technical analysis of the loaded ticker", func() *menu.Menu { return a.taMenu(state) })
	m.Child("options", "option chains of the loaded ticker", func() *menu.Menu { return a.optionsMenu(state.ticker) })
	m.SetStatus(state.status)
	m.SetReplay(state.replay)
	return m
}

// loadCmd loads the candles of a ticker.
type loadCmd struct {
	app      *App
	state    *instrument
	start    string
	end      string
	interval string
}

func (*loadCmd) Name() string     { return "load" }
func (*loadCmd) Synopsis() string { return "load the price history of a ticker" }
func (*loadCmd) Usage() string {
	return `load <ticker> [-s <start>] [-e <end>] [-i 1d|1wk|1mo]

  Loads candles of a ticker from Yahoo Finance. The other commands of the
  menu, and its sub menus, work on the loaded ticker.

  Dates accept ISO dates (2024-01-31) and relative dates (-1y, -6m, -2w, -10d).
`
}

func (c *loadCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.start, "s", "-1y", "start date")
	f.StringVar(&c.end, "e", "0d", "end date")
	f.StringVar(&c.interval, "i", "1d", "candle interval: "+strings.Join(yahoo.Intervals, ", "))
}

func (c *loadCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	s := menu.FromArgs(args)
	if f.NArg() != 1 {
		fmt.Fprintln(s.Err(), "Error: load needs exactly one ticker.")
		return subcommands.ExitUsageError
	}
	ticker := strings.ToUpper(f.Arg(0))
	r, err := parseRange(c.start, c.end)
	if err != nil {
		fmt.Fprintf(s.Err(), "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	candles, err := c.app.yahoo().Candles(ctx, ticker, r.From, r.To, c.interval)
	if err == nil && len(candles) == 0 {
		err = fetch.ErrNoData
	}
	if yahoo.IsNotFound(err) {
		fmt.Fprintf(s.Err(), "Error: ticker %q not found.\n", ticker)
		return subcommands.ExitFailure
	}
	if err != nil {
		fmt.Fprintf(s.Err(), "Error loading %s: %v\n", ticker, err)
		return subcommands.ExitFailure
	}

	*c.state = instrument{ticker: ticker, interval: c.interval, period: r, candles: candles}
	fmt.Fprintf(s.Out(), "Loaded %d candles of %s from %s to %s.\n", len(candles), ticker, candles[0].Date, candles[len(candles)-1].Date)
	return subcommands.ExitSuccess
}

// quoteCmd prints the latest quote of a ticker.
type quoteCmd struct {
	app   *App
	state *instrument
}

func (*quoteCmd) Name() string     { return "quote" }
func (*quoteCmd) Synopsis() string { return "print the latest quote" }
func (*quoteCmd) Usage() string {
	return `quote [ticker]

  Prints the latest quote of ticker, or of the loaded ticker.
`
}

func (c *quoteCmd) SetFlags(f *flag.FlagSet) {}

func (c *quoteCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	s := menu.FromArgs(args)
	ticker := c.state.ticker
	if f.NArg() > 0 {
		ticker = strings.ToUpper(f.Arg(0))
	}
	if ticker == "" {
		fmt.Fprintln(s.Err(), "Error: no ticker given nor loaded.")
		return subcommands.ExitUsageError
	}
	q, err := c.app.yahoo().Quote(ctx, ticker)
	if err != nil {
		fmt.Fprintf(s.Err(), "Error getting quote of %s: %v\n", ticker, err)
		return subcommands.ExitFailure
	}
	return show(s, renderer.Quote(q))
}

// candleCmd prints the last loaded candles.
type candleCmd struct {
	state *instrument
	n     int
}

func (*candleCmd) Name() string     { return "candle" }
func (*candleCmd) Synopsis() string { return "print the last candles of the loaded ticker" }
func (*candleCmd) Usage() string {
	return `candle [-n <rows>]
`
}

func (c *candleCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.n, "n", 20, "number of candles, 0 for all")
}

func (c *candleCmd) Execute(_ context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	s := menu.FromArgs(args)
	if err := c.state.loaded(); err != nil {
		fmt.Fprintf(s.Err(), "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	title := fmt.Sprintf("%s candles (%s)", c.state.ticker, c.state.interval)
	return show(s, renderer.Candles(title, tail(c.state.candles, c.n)))
}

// statsCmd summarizes the loaded candles.
type statsCmd struct {
	state *instrument
}

func (*statsCmd) Name() string { return "stats" }
func (*statsCmd) Synopsis() string {
	return "print total return, CAGR, volatility, max drawdown, best and worst period"
}
func (*statsCmd) Usage() string {
	return `stats

  Summarizes the performance of the loaded ticker over the loaded period.
  Volatility is annualized from the returns of the loaded interval: 252
  periods a year for 1d, 52 for 1wk, 12 for 1mo.
`
}

func (c *statsCmd) SetFlags(f *flag.FlagSet) {}

func (c *statsCmd) Execute(_ context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	s := menu.FromArgs(args)
	if err := c.state.loaded(); err != nil {
		fmt.Fprintf(s.Err(), "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	stats, err := indicator.Summarize(c.state.candles, indicator.PeriodsPerYear(c.state.interval))
	if err != nil {
		fmt.Fprintf(s.Err(), "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return show(s, renderer.Stats(fmt.Sprintf("%s statistics", c.state.ticker), stats))
}

// searchCmd searches instruments on EODHD.
type searchCmd struct {
	app  *App
	kind string
	n    int
}

func (*searchCmd) Name() string     { return "search" }
func (*searchCmd) Synopsis() string { return "search instruments by name, ticker or ISIN" }
func (c *searchCmd) Usage() string {
	return fmt.Sprintf(`search <terms...> [-n <rows>]

  Searches %s instruments on EOD Historical Data. Requires an EODHD API key.
`, c.kind)
}

func (c *searchCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.n, "n", 10, "maximum number of results")
}

func (c *searchCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	s := menu.FromArgs(args)
	if f.NArg() == 0 {
		fmt.Fprintln(s.Err(), "Error: a search term is required.")
		return subcommands.ExitUsageError
	}
	term := strings.Join(f.Args(), " ")
	client, err := c.app.eodhd()
	if err != nil {
		fmt.Fprintf(s.Err(), "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	results, err := client.Search(ctx, term, c.kind, c.n)
	if err != nil {
		fmt.Fprintf(s.Err(), "Error searching %q: %v\n", term, err)
		return subcommands.ExitFailure
	}
	return show(s, renderer.Instruments(fmt.Sprintf("Search results for %q", term), results))
}
