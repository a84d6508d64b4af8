package cmd

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/etnz/fterm/coingecko"
	"github.com/etnz/fterm/indicator"
	"github.com/etnz/fterm/menu"
	"github.com/etnz/fterm/renderer"
	"github.com/google/subcommands"
)

// coin is the state of the crypto menu.
type coin struct {
	id     string
	vs     string
	days   int
	points []coingecko.Point
}

func (c *coin) status() string {
	if c.id == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s", c.id, c.vs)
}

func (c *coin) replay() []string {
	if c.id == "" {
		return nil
	}
	return []string{fmt.Sprintf("load %s -vs %s -days %d", c.id, c.vs, c.days)}
}

func (a *App) cryptoMenu() *menu.Menu {
	state := &coin{vs: "usd"}
	m := menu.New("crypto", "Crypto")
	m.Register(&findCmd{app: a}, "Discovery")
	m.Register(&topCmd{app: a}, "Discovery")
	m.Register(&trendingCmd{app: a}, "Discovery")
	m.Register(&coinLoadCmd{app: a, state: state}, "Data")
	m.Register(&priceCmd{app: a, state: state}, "Data")
	m.Register(&chartCmd{app: a, state: state}, "Data")
	m.Register(&coinStatsCmd{state: state}, "Analysis")
	m.SetStatus(state.status)
	m.SetReplay(state.replay)
	return m
}

// findCmd searches coins.
type findCmd struct {
	app *App
}

func (*findCmd) Name() string     { return "find" }
func (*findCmd) Synopsis() string { return "search coins by name or symbol" }
func (*findCmd) Usage() string {
	return `find <query>
`
}

func (c *findCmd) SetFlags(f *flag.FlagSet) {}

func (c *findCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	s := menu.FromArgs(args)
	if f.NArg() == 0 {
		fmt.Fprintln(s.Err(), "Error: a search query is required.")
		return subcommands.ExitUsageError
	}
	query := strings.Join(f.Args(), " ")
	coins, err := c.app.coingecko().Search(ctx, query)
	if err != nil {
		fmt.Fprintf(s.Err(), "Error searching %q: %v\n", query, err)
		return subcommands.ExitFailure
	}
	return show(s, renderer.Coins(fmt.Sprintf("Coins matching %q", query), coins))
}

// coinLoadCmd selects a coin and loads its market chart.
type coinLoadCmd struct {
	app   *App
	state *coin
	vs    string
	days  int
}

func (*coinLoadCmd) Name() string     { return "load" }
func (*coinLoadCmd) Synopsis() string { return "select a coin and load its market chart" }
func (*coinLoadCmd) Usage() string {
	return `load <coin> [-vs <currency>] [-days <days>]

  Selects a coin by CoinGecko id (bitcoin) or symbol (btc), and loads its
  daily market chart.
`
}

func (c *coinLoadCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.vs, "vs", "usd", "quote currency")
	f.IntVar(&c.days, "days", 30, "number of days of history")
}

func (c *coinLoadCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	s := menu.FromArgs(args)
	if f.NArg() != 1 {
		fmt.Fprintln(s.Err(), "Error: load needs exactly one coin.")
		return subcommands.ExitUsageError
	}
	client := c.app.coingecko()
	id, err := client.Resolve(ctx, f.Arg(0))
	if err != nil {
		fmt.Fprintf(s.Err(), "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	vs := strings.ToLower(c.vs)
	points, err := client.Chart(ctx, id, vs, c.days)
	if err != nil {
		fmt.Fprintf(s.Err(), "Error loading %s: %v\n", id, err)
		return subcommands.ExitFailure
	}
	*c.state = coin{id: id, vs: vs, days: c.days, points: points}
	fmt.Fprintf(s.Out(), "Loaded %d days of %s in %s.\n", len(points), id, strings.ToUpper(vs))
	return subcommands.ExitSuccess
}

// priceCmd prints simple prices.
type priceCmd struct {
	app   *App
	state *coin
	vs    string
}

func (*priceCmd) Name() string     { return "price" }
func (*priceCmd) Synopsis() string { return "print the current price and 24h change" }
func (*priceCmd) Usage() string {
	return `price [coin...] [-vs <currency>]

  Prints the price of the given coin ids, or of the loaded coin.
`
}

func (c *priceCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.vs, "vs", "", "quote currency, defaults to the loaded one")
}

func (c *priceCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	s := menu.FromArgs(args)
	ids := f.Args()
	if len(ids) == 0 && c.state.id != "" {
		ids = []string{c.state.id}
	}
	if len(ids) == 0 {
		fmt.Fprintln(s.Err(), "Error: no coin given nor loaded.")
		return subcommands.ExitUsageError
	}
	vs := c.vs
	if vs == "" {
		vs = c.state.vs
	}
	prices, err := c.app.coingecko().Prices(ctx, ids, vs)
	if err != nil {
		fmt.Fprintf(s.Err(), "Error getting prices: %v\n", err)
		return subcommands.ExitFailure
	}
	return show(s, renderer.Prices(prices))
}

// topCmd prints the top coins by market capitalization.
type topCmd struct {
	app *App
	n   int
	vs  string
}

func (*topCmd) Name() string     { return "top" }
func (*topCmd) Synopsis() string { return "print the top coins by market capitalization" }
func (*topCmd) Usage() string {
	return `top [-n <rows>] [-vs <currency>]
`
}

func (c *topCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.n, "n", 10, "number of coins")
	f.StringVar(&c.vs, "vs", "usd", "quote currency")
}

func (c *topCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	s := menu.FromArgs(args)
	if c.n <= 0 || c.n > 250 {
		fmt.Fprintln(s.Err(), "Error: -n must be between 1 and 250.")
		return subcommands.ExitUsageError
	}
	markets, err := c.app.coingecko().Top(ctx, c.n, c.vs)
	if err != nil {
		fmt.Fprintf(s.Err(), "Error getting top coins: %v\n", err)
		return subcommands.ExitFailure
	}
	return show(s, renderer.Markets(c.vs, markets))
}

// trendingCmd prints the trending coins.
type trendingCmd struct {
	app *App
}

func (*trendingCmd) Name() string     { return "trending" }
func (*trendingCmd) Synopsis() string { return "print the trending coins" }
func (*trendingCmd) Usage() string {
	return `trending

  Prints the coins most searched on CoinGecko in the last 24 hours.
`
}

func (c *trendingCmd) SetFlags(f *flag.FlagSet) {}

func (c *trendingCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	s := menu.FromArgs(args)
	coins, err := c.app.coingecko().Trending(ctx)
	if err != nil {
		fmt.Fprintf(s.Err(), "Error getting trending coins: %v\n", err)
		return subcommands.ExitFailure
	}
	return show(s, renderer.Coins("Trending Coins", coins))
}

// chartCmd prints the daily prices of the loaded coin.
type chartCmd struct {
	app   *App
	state *coin
	days  int
	n     int
}

func (*chartCmd) Name() string     { return "chart" }
func (*chartCmd) Synopsis() string { return "print the daily prices of the loaded coin" }
func (*chartCmd) Usage() string {
	return `chart [-days <days>] [-n <rows>]

  Prints the loaded market chart, or reloads it over -days days.
`
}

func (c *chartCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.days, "days", 0, "reload the chart over that many days")
	f.IntVar(&c.n, "n", 20, "number of rows, 0 for all")
}

func (c *chartCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	s := menu.FromArgs(args)
	if c.state.id == "" {
		fmt.Fprintln(s.Err(), "Error: no coin loaded, use 'load <coin>' first.")
		return subcommands.ExitFailure
	}
	if c.days > 0 {
		points, err := c.app.coingecko().Chart(ctx, c.state.id, c.state.vs, c.days)
		if err != nil {
			fmt.Fprintf(s.Err(), "Error loading %s: %v\n", c.state.id, err)
			return subcommands.ExitFailure
		}
		c.state.points, c.state.days = points, c.days
	}
	title := fmt.Sprintf("%s in %s", c.state.id, strings.ToUpper(c.state.vs))
	return show(s, renderer.Chart(title, tail(c.state.points, c.n)))
}

// coinStatsCmd summarizes the loaded market chart.
type coinStatsCmd struct {
	state *coin
}

func (*coinStatsCmd) Name() string { return "stats" }
func (*coinStatsCmd) Synopsis() string {
	return "print total return, volatility and max drawdown of the loaded coin"
}
func (*coinStatsCmd) Usage() string {
	return `stats

  Volatility is annualized from daily returns over 365 days, crypto markets
  trade every day.
`
}

func (c *coinStatsCmd) SetFlags(f *flag.FlagSet) {}

func (c *coinStatsCmd) Execute(_ context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	s := menu.FromArgs(args)
	if c.state.id == "" {
		fmt.Fprintln(s.Err(), "Error: no coin loaded, use 'load <coin>' first.")
		return subcommands.ExitFailure
	}
	stats, err := indicator.Summarize(coingecko.Candles(c.state.points), indicator.CalendarDays)
	if err != nil {
		fmt.Fprintf(s.Err(), "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return show(s, renderer.Stats(fmt.Sprintf("%s statistics", c.state.id), stats))
}
