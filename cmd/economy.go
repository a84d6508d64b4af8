package cmd

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/etnz/fterm/fred"
	"github.com/etnz/fterm/insee"
	"github.com/etnz/fterm/menu"
	"github.com/etnz/fterm/renderer"
	"github.com/google/subcommands"
)

func (a *App) economyMenu() *menu.Menu {
	m := menu.New("economy", "Economy")
	m.Register(&seriesSearchCmd{app: a}, "Discovery")
	m.Register(&seriesInfoCmd{app: a}, "Discovery")
	m.Register(&seriesCmd{app: a, name: "series"}, "Series")
	m.Register(&seriesCmd{app: a, name: "gdp", id: fred.GDP, synopsis: "Gross Domestic Product"}, "Series")
	m.Register(&seriesCmd{app: a, name: "cpi", id: fred.CPI, synopsis: "Consumer Price Index for All Urban Consumers"}, "Series")
	m.Register(&seriesCmd{app: a, name: "unrate", id: fred.UnRate, synopsis: "Unemployment Rate"}, "Series")
	m.Register(&seriesCmd{app: a, name: "fedfunds", id: fred.FedFunds, synopsis: "Federal Funds Effective Rate"}, "Series")
	m.Register(&inseeCmd{app: a}, "France")
	return m
}

// seriesSearchCmd searches FRED series.
type seriesSearchCmd struct {
	app *App
	n   int
}

func (*seriesSearchCmd) Name() string     { return "search" }
func (*seriesSearchCmd) Synopsis() string { return "search economic series" }
func (*seriesSearchCmd) Usage() string {
	return `search <text> [-n <rows>]

  Searches FRED series, most popular first. Requires a FRED API key.
`
}

func (c *seriesSearchCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.n, "n", 10, "maximum number of results")
}

func (c *seriesSearchCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	s := menu.FromArgs(args)
	if f.NArg() == 0 {
		fmt.Fprintln(s.Err(), "Error: a search text is required.")
		return subcommands.ExitUsageError
	}
	text := strings.Join(f.Args(), " ")
	client, err := c.app.fred()
	if err != nil {
		fmt.Fprintf(s.Err(), "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	series, err := client.Search(ctx, text, c.n)
	if err != nil {
		fmt.Fprintf(s.Err(), "Error searching %q: %v\n", text, err)
		return subcommands.ExitFailure
	}
	return show(s, renderer.SeriesList(fmt.Sprintf("Series matching %q", text), series))
}

// seriesInfoCmd prints the metadata of a series.
type seriesInfoCmd struct {
	app *App
}

func (*seriesInfoCmd) Name() string     { return "info" }
func (*seriesInfoCmd) Synopsis() string { return "print the metadata of a series" }
func (*seriesInfoCmd) Usage() string {
	return `info <id>
`
}

func (c *seriesInfoCmd) SetFlags(f *flag.FlagSet) {}

func (c *seriesInfoCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	s := menu.FromArgs(args)
	if f.NArg() != 1 {
		fmt.Fprintln(s.Err(), "Error: info needs exactly one series id.")
		return subcommands.ExitUsageError
	}
	client, err := c.app.fred()
	if err != nil {
		fmt.Fprintf(s.Err(), "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	info, err := client.Info(ctx, strings.ToUpper(f.Arg(0)))
	if err != nil {
		fmt.Fprintf(s.Err(), "Error getting series %s: %v\n", f.Arg(0), err)
		return subcommands.ExitFailure
	}
	return show(s, renderer.SeriesInfo(info))
}

// seriesCmd prints observations of a series. With an id, it is a shortcut
// for a well known series.
type seriesCmd struct {
	app      *App
	name     string
	id       string
	synopsis string
	start    string
	end      string
	n        int
}

func (c *seriesCmd) Name() string { return c.name }
func (c *seriesCmd) Synopsis() string {
	if c.id == "" {
		return "print the observations of a series"
	}
	return fmt.Sprintf("print %s (%s)", c.synopsis, c.id)
}
func (c *seriesCmd) Usage() string {
	if c.id == "" {
		return `series <id> [-s <start>] [-e <end>] [-n <rows>]

  Prints the observations of a FRED series. Missing observations are skipped.
`
	}
	return fmt.Sprintf("%s [-s <start>] [-e <end>] [-n <rows>]\n", c.name)
}

func (c *seriesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.start, "s", "-10y", "start date")
	f.StringVar(&c.end, "e", "0d", "end date")
	f.IntVar(&c.n, "n", 20, "number of rows, 0 for all")
}

func (c *seriesCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	s := menu.FromArgs(args)
	id := c.id
	if id == "" {
		if f.NArg() != 1 {
			fmt.Fprintln(s.Err(), "Error: series needs exactly one series id.")
			return subcommands.ExitUsageError
		}
		id = strings.ToUpper(f.Arg(0))
	}
	r, err := parseRange(c.start, c.end)
	if err != nil {
		fmt.Fprintf(s.Err(), "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	client, err := c.app.fred()
	if err != nil {
		fmt.Fprintf(s.Err(), "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	h, err := client.Observations(ctx, id, r)
	if err != nil {
		fmt.Fprintf(s.Err(), "Error getting observations of %s: %v\n", id, err)
		return subcommands.ExitFailure
	}
	return show(s, renderer.Observations(id, h, c.n))
}

// inseeCmd prints a series of the INSEE database.
type inseeCmd struct {
	app   *App
	start string
	end   string
	n     int
}

func (*inseeCmd) Name() string     { return "insee" }
func (*inseeCmd) Synopsis() string { return "print a French series from INSEE" }
func (*inseeCmd) Usage() string {
	return fmt.Sprintf(`insee [<idbank>] [-s <start>] [-e <end>] [-n <rows>]

  Prints a series of the INSEE macro-economic database, identified by its
  idBank. Defaults to the consumer price index (%s). Values are dated at the
  end of their period.
`, insee.CPI)
}

func (c *inseeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.start, "s", "-5y", "start date")
	f.StringVar(&c.end, "e", "0d", "end date")
	f.IntVar(&c.n, "n", 20, "number of rows, 0 for all")
}

func (c *inseeCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	s := menu.FromArgs(args)
	id := insee.CPI
	switch f.NArg() {
	case 0:
	case 1:
		id = f.Arg(0)
	default:
		fmt.Fprintln(s.Err(), "Error: insee takes at most one idBank.")
		return subcommands.ExitUsageError
	}
	r, err := parseRange(c.start, c.end)
	if err != nil {
		fmt.Fprintf(s.Err(), "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	series, err := c.app.insee().Series(ctx, id, r)
	if err != nil {
		fmt.Fprintf(s.Err(), "Error getting INSEE series %s: %v\n", id, err)
		return subcommands.ExitFailure
	}
	return show(s, renderer.Observations(fmt.Sprintf("%s: %s", series.IDBank, series.Title), series.Values.Between(r), c.n))
}
