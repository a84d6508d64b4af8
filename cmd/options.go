package cmd

import (
	"context"
	"flag"
	"fmt"
	"slices"
	"strings"

	"github.com/etnz/fterm"
	"github.com/etnz/fterm/menu"
	"github.com/etnz/fterm/renderer"
	"github.com/etnz/fterm/tradier"
	"github.com/google/subcommands"
)

// chain is the state of the options menu.
type chain struct {
	underlying  string
	expirations []fterm.Date
	selected    fterm.Date
}

func (c *chain) status() string {
	if c.selected.IsZero() {
		return c.underlying
	}
	return fmt.Sprintf("%s %s", c.underlying, c.selected)
}

func (c *chain) replay() []string {
	var cmds []string
	if c.underlying != "" {
		cmds = append(cmds, "load "+c.underlying)
	}
	if !c.selected.IsZero() {
		cmds = append(cmds, "exp -d "+c.selected.String())
	}
	return cmds
}

// optionsMenu opens the options menu on the underlying loaded in the parent menu, if any.
func (a *App) optionsMenu(underlying string) *menu.Menu {
	state := &chain{underlying: underlying}
	m := menu.New("options", "Options")
	m.Register(&optionsLoadCmd{state: state}, "Data")
	m.Register(&expCmd{app: a, state: state}, "Data")
	m.Register(&chainsCmd{app: a, state: state}, "Data")
	m.SetStatus(state.status)
	m.SetReplay(state.replay)
	return m
}

// optionsLoadCmd changes the underlying.
type optionsLoadCmd struct {
	state *chain
}

func (*optionsLoadCmd) Name() string     { return "load" }
func (*optionsLoadCmd) Synopsis() string { return "change the underlying" }
func (*optionsLoadCmd) Usage() string {
	return `load <ticker>
`
}

func (c *optionsLoadCmd) SetFlags(f *flag.FlagSet) {}

func (c *optionsLoadCmd) Execute(_ context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	s := menu.FromArgs(args)
	if f.NArg() != 1 {
		fmt.Fprintln(s.Err(), "Error: load needs exactly one ticker.")
		return subcommands.ExitUsageError
	}
	*c.state = chain{underlying: strings.ToUpper(f.Arg(0))}
	return subcommands.ExitSuccess
}

// expCmd lists and selects expirations.
type expCmd struct {
	app   *App
	state *chain
	index int
	date  string
}

func (*expCmd) Name() string     { return "exp" }
func (*expCmd) Synopsis() string { return "list expirations, or select one" }
func (*expCmd) Usage() string {
	return `exp [-select <index>] [-d <date>]

  Lists the expiration dates of the underlying, and selects one by index in
  the list or by date. Without selection, the nearest expiration is selected.
`
}

func (c *expCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.index, "select", -1, "index of the expiration to select")
	f.StringVar(&c.date, "d", "", "date of the expiration to select")
}

func (c *expCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	s := menu.FromArgs(args)
	if c.state.underlying == "" {
		fmt.Fprintln(s.Err(), "Error: no underlying, use 'load <ticker>' first.")
		return subcommands.ExitFailure
	}
	if len(c.state.expirations) == 0 {
		client, err := c.app.tradier()
		if err != nil {
			fmt.Fprintf(s.Err(), "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		dates, err := client.Expirations(ctx, c.state.underlying)
		if err != nil {
			fmt.Fprintf(s.Err(), "Error getting expirations of %s: %v\n", c.state.underlying, err)
			return subcommands.ExitFailure
		}
		c.state.expirations = dates
	}
	dates := c.state.expirations

	switch {
	case c.date != "":
		d, err := fterm.ParseDate(c.date)
		if err != nil {
			fmt.Fprintf(s.Err(), "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
		if !slices.Contains(dates, d) {
			fmt.Fprintf(s.Err(), "Error: %s is not an expiration of %s.\n", d, c.state.underlying)
			return subcommands.ExitFailure
		}
		c.state.selected = d
	case c.index >= 0:
		if c.index >= len(dates) {
			fmt.Fprintf(s.Err(), "Error: index %d out of range, %s has %d expirations.\n", c.index, c.state.underlying, len(dates))
			return subcommands.ExitUsageError
		}
		c.state.selected = dates[c.index]
	case c.state.selected.IsZero() && len(dates) > 0:
		c.state.selected = dates[0]
	}
	return show(s, renderer.Expirations(c.state.underlying, dates, c.state.selected))
}

// chainsCmd prints the option chain of the selected expiration.
type chainsCmd struct {
	app       *App
	state     *chain
	exp       string
	calls     bool
	puts      bool
	minStrike float64
	maxStrike float64
}

func (*chainsCmd) Name() string     { return "chains" }
func (*chainsCmd) Synopsis() string { return "print the option chain" }
func (*chainsCmd) Usage() string {
	return `chains [-e <expiration>] [-calls] [-puts] [-min <strike>] [-max <strike>]

  Prints bid, ask, last, volume, open interest, implied volatility and delta
  of the options of the selected expiration. Both calls and puts are printed
  unless -calls or -puts is given.
`
}

func (c *chainsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.exp, "e", "", "expiration date, defaults to the selected one")
	f.BoolVar(&c.calls, "calls", false, "print calls only")
	f.BoolVar(&c.puts, "puts", false, "print puts only")
	f.Float64Var(&c.minStrike, "min", 0, "minimum strike, 0 for none")
	f.Float64Var(&c.maxStrike, "max", 0, "maximum strike, 0 for none")
}

func (c *chainsCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	s := menu.FromArgs(args)
	if c.state.underlying == "" {
		fmt.Fprintln(s.Err(), "Error: no underlying, use 'load <ticker>' first.")
		return subcommands.ExitFailure
	}
	expiration := c.state.selected
	if c.exp != "" {
		d, err := fterm.ParseDate(c.exp)
		if err != nil {
			fmt.Fprintf(s.Err(), "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
		expiration = d
	}
	if expiration.IsZero() {
		fmt.Fprintln(s.Err(), "Error: no expiration selected, use 'exp' or -e.")
		return subcommands.ExitFailure
	}

	client, err := c.app.tradier()
	if err != nil {
		fmt.Fprintf(s.Err(), "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	options, err := client.Chain(ctx, c.state.underlying, expiration)
	if err != nil {
		fmt.Fprintf(s.Err(), "Error getting the chain of %s: %v\n", c.state.underlying, err)
		return subcommands.ExitFailure
	}
	calls, puts := c.calls, c.puts
	if !calls && !puts {
		calls, puts = true, true
	}
	options = tradier.Filter(options, calls, puts, c.minStrike, c.maxStrike)
	return show(s, renderer.Chain(c.state.underlying, expiration, options))
}
