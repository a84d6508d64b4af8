// Package cmd implements the menus of the terminal and their commands.
//
// Each menu lives in its own file: a constructor building the menu.Menu with
// its state, and one subcommands.Command per command. Commands receive the
// *menu.Session as their first argument, and write to its output.
package cmd

import (
	"io"
	"net/http"
	"os"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/fterm"
	"github.com/etnz/fterm/coingecko"
	"github.com/etnz/fterm/eodhd"
	"github.com/etnz/fterm/fetch"
	"github.com/etnz/fterm/finviz"
	"github.com/etnz/fterm/fred"
	"github.com/etnz/fterm/insee"
	"github.com/etnz/fterm/menu"
	"github.com/etnz/fterm/tradier"
	"github.com/etnz/fterm/yahoo"
	"go.uber.org/zap"
	"golang.org/x/term"
)

// App holds what the menus share: configuration, logger, HTTP transport and
// provider clients.
type App struct {
	Config    *Config
	Logger    *zap.Logger
	Plain     bool // print raw markdown
	transport http.RoundTripper

	mu      sync.Mutex
	clients map[string]any // by provider, built at first use
}

// NewApp returns an App. Responses are cached on disk for the day unless the
// cache is disabled in the configuration.
func NewApp(config *Config, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{Config: config, Logger: logger, transport: http.DefaultTransport, clients: map[string]any{}}
	if !config.Cache.Disabled {
		a.transport = fetch.NewCache(http.DefaultTransport, config.Cache.Dir, fterm.Daily, logger.Named("cache"))
	}
	return a
}

// Root builds the root menu.
func (a *App) Root() *menu.Menu {
	m := menu.New("", "fterm")
	m.Child("stocks", "stocks: quotes, candles, technical analysis and options", a.stocksMenu)
	m.Child("crypto", "crypto currencies", a.cryptoMenu)
	m.Child("etf", "exchange traded funds", a.etfMenu)
	m.Child("economy", "economic series from FRED", a.economyMenu)
	m.Child("screener", "stock screener presets", a.screenerMenu)
	m.Child("portfolio", "ledger, holdings and annual report", a.portfolioMenu)
	m.Register(&aboutCmd{}, "Documentation")
	return m
}

// NewSession returns a session on the root menu printing to out and errOut.
func (a *App) NewSession(out, errOut io.Writer) *menu.Session {
	return menu.NewSession(a.Root,
		menu.WithOutput(out, errOut),
		menu.WithLogger(a.Logger),
		menu.WithPrinter(a.printMarkdown),
	)
}

// printMarkdown renders markdown for the terminal, unless the output is not
// a terminal or the app is in plain mode.
func (a *App) printMarkdown(w io.Writer, md string) error {
	f, ok := w.(*os.File)
	if a.Plain || !ok || !term.IsTerminal(int(f.Fd())) {
		_, err := io.WriteString(w, md)
		return err
	}
	width := 100
	if cols, _, err := term.GetSize(int(f.Fd())); err == nil && cols > 0 {
		width = cols
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(width))
	if err != nil {
		return err
	}
	out, err := r.Render(md)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

// options returns the fetch options shared by every provider client.
func (a *App) options(provider string) []fetch.Option {
	opts := []fetch.Option{
		fetch.WithTransport(a.transport),
		fetch.WithLogger(a.Logger.Named(provider)),
	}
	if url := a.Config.Endpoints[provider]; url != "" {
		opts = append(opts, fetch.WithBaseURL(url))
	}
	return opts
}

// client returns the client of provider, built at first use and then shared
// by every command, so that its rate limit holds across commands.
// A failed build is not kept: a later call tries again.
func client[T any](a *App, provider string, build func(opts ...fetch.Option) (T, error)) (T, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if c, ok := a.clients[provider]; ok {
		return c.(T), nil
	}
	c, err := build(a.options(provider)...)
	if err != nil {
		return c, err
	}
	a.clients[provider] = c
	return c, nil
}

// always adapts a constructor that cannot fail.
func always[T any](build func(opts ...fetch.Option) T) func(opts ...fetch.Option) (T, error) {
	return func(opts ...fetch.Option) (T, error) { return build(opts...), nil }
}

func (a *App) yahoo() *yahoo.Client {
	c, _ := client(a, "yahoo", always(yahoo.New))
	return c
}

func (a *App) finviz() *finviz.Client {
	c, _ := client(a, "finviz", always(finviz.New))
	return c
}

func (a *App) insee() *insee.Client {
	c, _ := client(a, "insee", always(insee.New))
	return c
}

func (a *App) coingecko() *coingecko.Client {
	c, _ := client(a, "coingecko", always(func(opts ...fetch.Option) *coingecko.Client {
		return coingecko.New(a.Config.Keys.CoinGecko, opts...)
	}))
	return c
}

func (a *App) eodhd() (*eodhd.Client, error) {
	return client(a, "eodhd", func(opts ...fetch.Option) (*eodhd.Client, error) {
		return eodhd.New(a.Config.Keys.EODHD, opts...)
	})
}

func (a *App) fred() (*fred.Client, error) {
	return client(a, "fred", func(opts ...fetch.Option) (*fred.Client, error) {
		return fred.New(a.Config.Keys.FRED, opts...)
	})
}

func (a *App) tradier() (*tradier.Client, error) {
	return client(a, "tradier", func(opts ...fetch.Option) (*tradier.Client, error) {
		return tradier.New(a.Config.Keys.Tradier, opts...)
	})
}
