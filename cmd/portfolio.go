package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/etnz/fterm"
	"github.com/etnz/fterm/menu"
	"github.com/etnz/fterm/portfolio"
	"github.com/etnz/fterm/renderer"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// book is the state of the portfolio menu.
type book struct {
	ledger *portfolio.Ledger
	file   string
}

func (b *book) status() string {
	if b.file == "" {
		return ""
	}
	return filepath.Base(b.file)
}

func (b *book) replay() []string {
	if b.file == "" {
		return nil
	}
	return []string{"load " + quoteArg(b.file)}
}

// loaded returns an error if the ledger is empty.
func (b *book) loaded() error {
	if b.ledger.Len() == 0 {
		return errors.New("the ledger is empty, use 'load <file>' or 'add' first")
	}
	return nil
}

// readLedger decodes a CSV or JSONL ledger, depending on the file extension.
func readLedger(file, currency string) (*portfolio.Ledger, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var l *portfolio.Ledger
	switch ext := strings.ToLower(filepath.Ext(file)); ext {
	case ".csv":
		l, err = portfolio.DecodeCSV(f, currency)
	case ".jsonl", ".json":
		l, err = portfolio.DecodeJSONL(f, currency)
	default:
		return nil, fmt.Errorf("unsupported ledger format %q, want .csv or .jsonl", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", file, err)
	}
	if err := l.Validate(); err != nil {
		return nil, fmt.Errorf("invalid ledger %s: %w", file, err)
	}
	return l, nil
}

// writeLedger encodes the ledger in CSV or JSONL, depending on the file extension.
func writeLedger(file string, l *portfolio.Ledger) error {
	encode := portfolio.EncodeJSONL
	switch ext := strings.ToLower(filepath.Ext(file)); ext {
	case ".csv":
		encode = portfolio.EncodeCSV
	case ".jsonl", ".json":
	default:
		return fmt.Errorf("unsupported ledger format %q, want .csv or .jsonl", ext)
	}
	f, err := os.Create(file)
	if err != nil {
		return err
	}
	if err := encode(f, l); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (a *App) portfolioMenu() *menu.Menu {
	state := &book{ledger: portfolio.NewLedger(a.Config.Portfolio.Currency)}
	if file := a.Config.Portfolio.File; file != "" {
		if l, err := readLedger(file, a.Config.Portfolio.Currency); err != nil {
			a.Logger.Warn("cannot load the default ledger", zap.String("file", file), zap.Error(err))
		} else {
			state.ledger, state.file = l, file
		}
	}

	m := menu.New("portfolio", "Portfolio")
	m.Register(&ledgerLoadCmd{app: a, state: state}, "Ledger")
	m.Register(&ledgerSaveCmd{state: state}, "Ledger")
	m.Register(&addCmd{state: state}, "Ledger")
	m.Register(&txCmd{state: state}, "Ledger")
	m.Register(&holdCmd{app: a, state: state}, "Reports")
	m.Register(&arCmd{app: a, state: state}, "Reports")
	m.Register(&perfCmd{app: a, state: state}, "Reports")
	m.SetStatus(state.status)
	m.SetReplay(state.replay)
	return m
}

// reconstruct replays the ledger up to end, valuing positions at Yahoo
// closes. Tickers whose prices cannot be fetched are valued at their last
// trade price.
func (a *App) reconstruct(ctx context.Context, l *portfolio.Ledger, end fterm.Date, method portfolio.CostBasisMethod) ([]portfolio.Day, error) {
	r, ok := l.Range()
	if !ok {
		return nil, errors.New("the ledger is empty")
	}
	if end.Before(r.To) {
		end = r.To
	}
	client := a.yahoo()
	prices := portfolio.Prices{}
	for _, ticker := range l.Tickers() {
		candles, err := client.Candles(ctx, ticker, r.From, end, "1d")
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			a.Logger.Warn("no prices, using the last trade price", zap.String("ticker", ticker), zap.Error(err))
			continue
		}
		prices[ticker] = fterm.CloseHistory(candles)
	}
	return portfolio.Reconstruct(l, prices, end, method)
}

// method returns the cost basis method named by flag, or the configured one.
func (a *App) method(flag string) (portfolio.CostBasisMethod, error) {
	if flag == "" {
		flag = a.Config.Portfolio.Method
	}
	return portfolio.ParseCostBasisMethod(strings.ToLower(flag))
}

// ledgerLoadCmd replaces the ledger with the content of a file.
type ledgerLoadCmd struct {
	app   *App
	state *book
}

func (*ledgerLoadCmd) Name() string     { return "load" }
func (*ledgerLoadCmd) Synopsis() string { return "load a ledger file" }
func (*ledgerLoadCmd) Usage() string {
	return `load <file>

  Loads a ledger from a CSV file (header date,type,ticker,quantity,amount,fees,memo)
  or a JSONL file, one transaction per line. The ledger is validated.
`
}

func (c *ledgerLoadCmd) SetFlags(f *flag.FlagSet) {}

func (c *ledgerLoadCmd) Execute(_ context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	s := menu.FromArgs(args)
	if f.NArg() != 1 {
		fmt.Fprintln(s.Err(), "Error: load needs exactly one file.")
		return subcommands.ExitUsageError
	}
	l, err := readLedger(f.Arg(0), c.app.Config.Portfolio.Currency)
	if err != nil {
		fmt.Fprintf(s.Err(), "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	c.state.ledger, c.state.file = l, f.Arg(0)
	fmt.Fprintf(s.Out(), "Loaded %d transactions from %s.\n", l.Len(), f.Arg(0))
	return subcommands.ExitSuccess
}

type ledgerSaveCmd struct {
	state *book
}

func (*ledgerSaveCmd) Name() string     { return "save" }
func (*ledgerSaveCmd) Synopsis() string { return "save the ledger to a file" }
func (*ledgerSaveCmd) Usage() string {
	return `save [<file>]

  Saves the ledger in CSV or JSONL, depending on the extension. Without a
  file, the ledger is saved where it was loaded from.
`
}

func (c *ledgerSaveCmd) SetFlags(f *flag.FlagSet) {}

func (c *ledgerSaveCmd) Execute(_ context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	s := menu.FromArgs(args)
	file := c.state.file
	if f.NArg() > 0 {
		file = f.Arg(0)
	}
	if file == "" {
		fmt.Fprintln(s.Err(), "Error: save needs a file.")
		return subcommands.ExitUsageError
	}
	if err := writeLedger(file, c.state.ledger); err != nil {
		fmt.Fprintf(s.Err(), "Error saving %s: %v\n", file, err)
		return subcommands.ExitFailure
	}
	c.state.file = file
	fmt.Fprintf(s.Out(), "Saved %d transactions to %s.\n", c.state.ledger.Len(), file)
	return subcommands.ExitSuccess
}

// addCmd appends one transaction to the ledger.
type addCmd struct {
	state    *book
	date     string
	ticker   string
	quantity string
	amount   string
	fees     string
	memo     string
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "add a transaction to the ledger" }
func (*addCmd) Usage() string {
	return `add <type> [-d <date>] [-t <ticker>] [-q <quantity>] -a <amount> [-f <fees>] [-m <memo>]

  Adds a deposit, withdraw, buy, sell, dividend or fee. Amounts are totals,
  fees excluded. The transaction is rejected if the ledger becomes invalid.
`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "0d", "date of the transaction")
	f.StringVar(&c.ticker, "t", "", "ticker of the security")
	f.StringVar(&c.quantity, "q", "", "quantity traded")
	f.StringVar(&c.amount, "a", "", "total amount")
	f.StringVar(&c.fees, "f", "", "fees")
	f.StringVar(&c.memo, "m", "", "memo")
}

func (c *addCmd) transaction(kind string) (tx portfolio.Transaction, err error) {
	if tx.Type, err = portfolio.ParseType(kind); err != nil {
		return tx, err
	}
	if tx.Date, err = fterm.ParseDate(c.date); err != nil {
		return tx, err
	}
	parse := func(name, s string) (decimal.Decimal, error) {
		if s == "" {
			return decimal.Zero, nil
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return d, fmt.Errorf("invalid %s %q", name, s)
		}
		return d, nil
	}
	quantity, err := parse("quantity", c.quantity)
	if err != nil {
		return tx, err
	}
	amount, err := parse("amount", c.amount)
	if err != nil {
		return tx, err
	}
	fees, err := parse("fees", c.fees)
	if err != nil {
		return tx, err
	}
	tx.Ticker = strings.ToUpper(c.ticker)
	tx.Quantity = fterm.Q(quantity)
	tx.Amount = fterm.M(amount, "")
	tx.Fees = fterm.M(fees, "")
	tx.Memo = c.memo
	return tx, nil
}

func (c *addCmd) Execute(_ context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	s := menu.FromArgs(args)
	if f.NArg() != 1 {
		fmt.Fprintln(s.Err(), "Error: add needs exactly one transaction type.")
		return subcommands.ExitUsageError
	}
	tx, err := c.transaction(f.Arg(0))
	if err != nil {
		fmt.Fprintf(s.Err(), "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	// validate a copy, so that the ledger is untouched on error.
	l := portfolio.NewLedger(c.state.ledger.Currency())
	for _, old := range c.state.ledger.Transactions() {
		l.Append(old)
	}
	l.Append(tx)
	if err := l.Validate(); err != nil {
		fmt.Fprintf(s.Err(), "Error: transaction rejected: %v\n", err)
		return subcommands.ExitFailure
	}
	c.state.ledger = l
	fmt.Fprintln(s.Out(), renderer.Transaction(tx))
	return subcommands.ExitSuccess
}

type txCmd struct {
	state *book
	n     int
}

func (*txCmd) Name() string     { return "tx" }
func (*txCmd) Synopsis() string { return "list the latest transactions" }
func (*txCmd) Usage() string {
	return `tx [-n <rows>]
`
}

func (c *txCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.n, "n", 20, "number of transactions, 0 for all")
}

func (c *txCmd) Execute(_ context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	s := menu.FromArgs(args)
	if err := c.state.loaded(); err != nil {
		fmt.Fprintf(s.Err(), "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return show(s, renderer.Transactions("Transactions", c.state.ledger.Tail(c.n)))
}

// holdCmd prints the holdings on a date.
type holdCmd struct {
	app   *App
	state *book
	date  string
}

func (*holdCmd) Name() string     { return "hold" }
func (*holdCmd) Synopsis() string { return "print the holdings on a date" }
func (*holdCmd) Usage() string {
	return `hold [-d <date>]

  Prints cash and open positions, valued at the latest close on or before the date.
`
}

func (c *holdCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "0d", "date of the holdings")
}

func (c *holdCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	s := menu.FromArgs(args)
	if err := c.state.loaded(); err != nil {
		fmt.Fprintf(s.Err(), "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	on, err := fterm.ParseDate(c.date)
	if err != nil {
		fmt.Fprintf(s.Err(), "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	method, err := c.app.method("")
	if err != nil {
		fmt.Fprintf(s.Err(), "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	days, err := c.app.reconstruct(ctx, c.state.ledger, on, method)
	if err != nil {
		fmt.Fprintf(s.Err(), "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	day, ok := portfolio.At(days, on)
	if !ok {
		fmt.Fprintf(s.Err(), "Error: no holdings on %s, the ledger starts on %s.\n", on, days[0].Date)
		return subcommands.ExitFailure
	}
	return show(s, renderer.Holdings(day))
}

// arCmd prints the annual report.
type arCmd struct {
	app    *App
	state  *book
	period string
	start  string
	end    string
	method string
}

func (*arCmd) Name() string     { return "ar" }
func (*arCmd) Synopsis() string { return "print the annual report" }
func (*arCmd) Usage() string {
	return `ar [-p year|quarter|month] [-s <start>] [-e <end>] [-method average|fifo]

  Prints, per period, the start and end value, the flows, the realized and
  unrealized gains, and the Modified Dietz return. The range defaults to the
  whole history of the ledger.
`
}

func (c *arCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.period, "p", "year", "period of each row")
	f.StringVar(&c.start, "s", "", "start date")
	f.StringVar(&c.end, "e", "", "end date")
	f.StringVar(&c.method, "method", "", "cost basis method, defaults to the configured one")
}

func (c *arCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	s := menu.FromArgs(args)
	if err := c.state.loaded(); err != nil {
		fmt.Fprintf(s.Err(), "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	period, err := fterm.ParsePeriod(c.period)
	if err != nil {
		fmt.Fprintf(s.Err(), "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	var r fterm.Range
	if c.start != "" {
		if r.From, err = fterm.ParseDate(c.start); err != nil {
			fmt.Fprintf(s.Err(), "Error: invalid start date: %v\n", err)
			return subcommands.ExitUsageError
		}
	}
	if c.end != "" {
		if r.To, err = fterm.ParseDate(c.end); err != nil {
			fmt.Fprintf(s.Err(), "Error: invalid end date: %v\n", err)
			return subcommands.ExitUsageError
		}
	}
	method, err := c.app.method(c.method)
	if err != nil {
		fmt.Fprintf(s.Err(), "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	end := fterm.Today()
	if !r.To.IsZero() {
		end = r.To
	}
	days, err := c.app.reconstruct(ctx, c.state.ledger, end, method)
	if err != nil {
		fmt.Fprintf(s.Err(), "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	rows, err := portfolio.Report(days, r, period)
	if err != nil {
		fmt.Fprintf(s.Err(), "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return show(s, renderer.Report(fmt.Sprintf("Report by %s (%s cost basis)", period.Name(), method), rows))
}

type perfCmd struct {
	app   *App
	state *book
}

func (*perfCmd) Name() string     { return "perf" }
func (*perfCmd) Synopsis() string { return "print the performance since inception" }
func (*perfCmd) Usage() string {
	return `perf
`
}

func (c *perfCmd) SetFlags(f *flag.FlagSet) {}

func (c *perfCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	s := menu.FromArgs(args)
	if err := c.state.loaded(); err != nil {
		fmt.Fprintf(s.Err(), "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	method, err := c.app.method("")
	if err != nil {
		fmt.Fprintf(s.Err(), "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	days, err := c.app.reconstruct(ctx, c.state.ledger, fterm.Today(), method)
	if err != nil {
		fmt.Fprintf(s.Err(), "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	row, err := portfolio.Performance(days)
	if err != nil {
		fmt.Fprintf(s.Err(), "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return show(s, renderer.Performance(row))
}
