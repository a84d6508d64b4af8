package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/etnz/fterm"
	"github.com/etnz/fterm/indicator"
	"github.com/etnz/fterm/menu"
	"github.com/etnz/fterm/renderer"
	"github.com/google/subcommands"
)

func (a *App) taMenu(state *instrument) *menu.Menu {
	m := menu.New("ta", "Technical Analysis")
	m.Register(&averageCmd{state: state, name: "sma", title: "Simple Moving Average", compute: indicator.SMA}, "Trend")
	m.Register(&averageCmd{state: state, name: "ema", title: "Exponential Moving Average", compute: indicator.EMA}, "Trend")
	m.Register(&macdCmd{state: state}, "Trend")
	m.Register(&rsiCmd{state: state}, "Momentum")
	m.Register(&bbandsCmd{state: state}, "Volatility")
	m.SetStatus(state.status)
	return m
}

// averageCmd prints a moving average of the closes.
type averageCmd struct {
	state   *instrument
	name    string
	title   string
	compute func(values []float64, length int) ([]float64, error)
	length  int
	n       int
}

func (c *averageCmd) Name() string     { return c.name }
func (c *averageCmd) Synopsis() string { return c.title + " of the closes" }
func (c *averageCmd) Usage() string {
	return fmt.Sprintf("%s [-l <length>] [-n <rows>]\n", c.name)
}

func (c *averageCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.length, "l", 20, "number of candles averaged")
	f.IntVar(&c.n, "n", 20, "number of rows, 0 for all")
}

func (c *averageCmd) Execute(_ context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	s := menu.FromArgs(args)
	if err := c.state.loaded(); err != nil {
		fmt.Fprintf(s.Err(), "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	closes := fterm.Closes(c.state.candles)
	avg, err := c.compute(closes, c.length)
	if err != nil {
		fmt.Fprintf(s.Err(), "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	title := fmt.Sprintf("%s %s(%d)", c.state.ticker, c.title, c.length)
	return show(s, renderer.Indicator(title, fterm.Dates(c.state.candles), c.n,
		renderer.Column{Name: "Close", Values: closes},
		renderer.Column{Name: fmt.Sprintf("%s(%d)", c.name, c.length), Values: avg},
	))
}

// rsiCmd prints the relative strength index.
type rsiCmd struct {
	state  *instrument
	length int
	n      int
}

func (*rsiCmd) Name() string     { return "rsi" }
func (*rsiCmd) Synopsis() string { return "Relative Strength Index" }
func (*rsiCmd) Usage() string {
	return `rsi [-l <length>] [-n <rows>]

  Wilder's relative strength index. Above 70 is usually read as overbought,
  below 30 as oversold.
`
}

func (c *rsiCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.length, "l", 14, "length")
	f.IntVar(&c.n, "n", 20, "number of rows, 0 for all")
}

func (c *rsiCmd) Execute(_ context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	s := menu.FromArgs(args)
	if err := c.state.loaded(); err != nil {
		fmt.Fprintf(s.Err(), "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	closes := fterm.Closes(c.state.candles)
	rsi, err := indicator.RSI(closes, c.length)
	if err != nil {
		fmt.Fprintf(s.Err(), "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	return show(s, renderer.Indicator(fmt.Sprintf("%s RSI(%d)", c.state.ticker, c.length), fterm.Dates(c.state.candles), c.n,
		renderer.Column{Name: "Close", Values: closes},
		renderer.Column{Name: "RSI", Values: rsi},
	))
}

// macdCmd prints the moving average convergence divergence.
type macdCmd struct {
	state              *instrument
	fast, slow, signal int
	n                  int
}

func (*macdCmd) Name() string     { return "macd" }
func (*macdCmd) Synopsis() string { return "Moving Average Convergence Divergence" }
func (*macdCmd) Usage() string {
	return `macd [-fast <length>] [-slow <length>] [-signal <length>] [-n <rows>]

  The MACD line is the fast EMA minus the slow EMA; the signal line is an EMA
  of the MACD line and the histogram their difference.
`
}

func (c *macdCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.fast, "fast", 12, "fast EMA length")
	f.IntVar(&c.slow, "slow", 26, "slow EMA length")
	f.IntVar(&c.signal, "signal", 9, "signal EMA length")
	f.IntVar(&c.n, "n", 20, "number of rows, 0 for all")
}

func (c *macdCmd) Execute(_ context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	s := menu.FromArgs(args)
	if err := c.state.loaded(); err != nil {
		fmt.Fprintf(s.Err(), "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	line, sig, hist, err := indicator.MACD(fterm.Closes(c.state.candles), c.fast, c.slow, c.signal)
	if err != nil {
		fmt.Fprintf(s.Err(), "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	title := fmt.Sprintf("%s MACD(%d, %d, %d)", c.state.ticker, c.fast, c.slow, c.signal)
	return show(s, renderer.Indicator(title, fterm.Dates(c.state.candles), c.n,
		renderer.Column{Name: "MACD", Values: line},
		renderer.Column{Name: "Signal", Values: sig},
		renderer.Column{Name: "Histogram", Values: hist},
	))
}

// bbandsCmd prints the Bollinger bands.
type bbandsCmd struct {
	state  *instrument
	length int
	k      float64
	n      int
}

func (*bbandsCmd) Name() string     { return "bbands" }
func (*bbandsCmd) Synopsis() string { return "Bollinger Bands" }
func (*bbandsCmd) Usage() string {
	return `bbands [-l <length>] [-k <deviations>] [-n <rows>]
`
}

func (c *bbandsCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.length, "l", 20, "length of the moving average")
	f.Float64Var(&c.k, "k", 2, "number of standard deviations")
	f.IntVar(&c.n, "n", 20, "number of rows, 0 for all")
}

func (c *bbandsCmd) Execute(_ context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	s := menu.FromArgs(args)
	if err := c.state.loaded(); err != nil {
		fmt.Fprintf(s.Err(), "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	closes := fterm.Closes(c.state.candles)
	mid, upper, lower, err := indicator.Bollinger(closes, c.length, c.k)
	if err != nil {
		fmt.Fprintf(s.Err(), "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	title := fmt.Sprintf("%s Bollinger Bands(%d, %g)", c.state.ticker, c.length, c.k)
	return show(s, renderer.Indicator(title, fterm.Dates(c.state.candles), c.n,
		renderer.Column{Name: "Close", Values: closes},
		renderer.Column{Name: "Lower", Values: lower},
		renderer.Column{Name: "Middle", Values: mid},
		renderer.Column{Name: "Upper", Values: upper},
	))
}
