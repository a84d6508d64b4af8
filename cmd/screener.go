package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/etnz/fterm/finviz"
	"github.com/etnz/fterm/menu"
	"github.com/etnz/fterm/renderer"
	"github.com/google/subcommands"
)

func (a *App) screenerMenu() *menu.Menu {
	m := menu.New("screener", "Screener")
	m.Register(&presetsCmd{}, "Screener")
	m.Register(&viewCmd{app: a}, "Screener")
	return m
}

type presetsCmd struct{}

func (*presetsCmd) Name() string     { return "presets" }
func (*presetsCmd) Synopsis() string { return "list the screener presets" }
func (*presetsCmd) Usage() string {
	return `presets
`
}

func (c *presetsCmd) SetFlags(f *flag.FlagSet) {}

func (c *presetsCmd) Execute(_ context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	return show(menu.FromArgs(args), renderer.Signals(finviz.Signals))
}

// viewCmd runs a screener preset.
type viewCmd struct {
	app *App
	n   int
}

func (*viewCmd) Name() string     { return "view" }
func (*viewCmd) Synopsis() string { return "run a screener preset" }
func (*viewCmd) Usage() string {
	return `view <preset> [-n <rows>]

  Runs a Finviz screener preset, see 'presets' for the list.
`
}

func (c *viewCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.n, "n", 20, "maximum number of stocks")
}

func (c *viewCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	s := menu.FromArgs(args)
	if f.NArg() != 1 {
		fmt.Fprintln(s.Err(), "Error: view needs exactly one preset.")
		return subcommands.ExitUsageError
	}
	signal, ok := finviz.LookupSignal(f.Arg(0))
	if !ok {
		fmt.Fprintf(s.Err(), "Error: unknown preset %q, see 'presets'.\n", f.Arg(0))
		return subcommands.ExitUsageError
	}
	rows, err := c.app.finviz().Screen(ctx, signal, c.n)
	if err != nil {
		fmt.Fprintf(s.Err(), "Error running %s: %v\n", signal.Name, err)
		return subcommands.ExitFailure
	}
	return show(s, renderer.Screen(signal, rows))
}
