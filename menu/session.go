package menu

import (
	"bufio"
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/subcommands"
	md "github.com/nao1215/markdown"
	"go.uber.org/zap"
)

type builtin struct {
	names    []string
	synopsis string
}

// builtins are available in every menu.
var builtins = []builtin{
	{[]string{"help", "h", "?"}, "print this help, or the usage of a command"},
	{[]string{"cls"}, "clear the screen"},
	{[]string{"..", "q", "quit"}, "go back to the parent menu"},
	{[]string{"home"}, "go back to the root menu"},
	{[]string{"r", "reset"}, "rebuild the open menus and restore their state"},
	{[]string{"exit"}, "quit the terminal"},
}

// Printer writes a markdown document to w.
type Printer func(w io.Writer, markdown string) error

// Session is a stack of open menus and a queue of pending commands.
type Session struct {
	root    func() *Menu
	stack   []*Menu
	queue   []string
	out     io.Writer
	errOut  io.Writer
	printer Printer
	logger  *zap.Logger
	done    bool
}

// Option configures a Session.
type Option func(*Session)

// WithOutput sets the writers for command output and errors.
func WithOutput(out, errOut io.Writer) Option {
	return func(s *Session) { s.out, s.errOut = out, errOut }
}

// WithPrinter sets how markdown documents are displayed.
func WithPrinter(p Printer) Option {
	return func(s *Session) { s.printer = p }
}

// WithLogger sets the session logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

// NewSession opens the menu returned by root.
//
// root is called again on every reset, so it must build a fresh menu tree.
func NewSession(root func() *Menu, opts ...Option) *Session {
	s := &Session{
		root:   root,
		out:    os.Stdout,
		errOut: os.Stderr,
		printer: func(w io.Writer, markdown string) error {
			_, err := io.WriteString(w, markdown)
			return err
		},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.stack = []*Menu{root()}
	return s
}

// FromArgs returns the session passed to subcommands.Command.Execute, or nil.
func FromArgs(args []any) *Session {
	for _, a := range args {
		if s, ok := a.(*Session); ok {
			return s
		}
	}
	return nil
}

// Out returns the command output writer.
func (s *Session) Out() io.Writer { return s.out }

// Err returns the error writer.
func (s *Session) Err() io.Writer { return s.errOut }

// Logger returns the session logger.
func (s *Session) Logger() *zap.Logger { return s.logger }

// Print displays a markdown document.
func (s *Session) Print(markdown string) error {
	return s.printer(s.out, markdown)
}

// Current returns the menu on top of the stack.
func (s *Session) Current() *Menu { return s.stack[len(s.stack)-1] }

// Path returns the path of the current menu, like "/stocks/ta".
func (s *Session) Path() string {
	names := make([]string, 0, len(s.stack)-1)
	for _, m := range s.stack[1:] {
		names = append(names, m.name)
	}
	return "/" + strings.Join(names, "/")
}

// Prompt returns the prompt for the current menu, like "/stocks/ta (AAPL) $ ".
func (s *Session) Prompt() string {
	if status := s.Current().Status(); status != "" {
		return fmt.Sprintf("%s (%s) $ ", s.Path(), status)
	}
	return s.Path() + " $ "
}

// Done reports whether the session has ended.
func (s *Session) Done() bool { return s.done }

// Pending returns a copy of the pending queue.
func (s *Session) Pending() []string { return append([]string(nil), s.queue...) }

// Execute queues the commands of line ahead of the pending ones and runs the
// queue until it is empty, the session ends or a command fails.
//
// It returns the status of the last command run.
func (s *Session) Execute(ctx context.Context, line string) subcommands.ExitStatus {
	s.queue = append(ParseQueue(line), s.queue...)
	status := subcommands.ExitSuccess
	for len(s.queue) > 0 && !s.done {
		if err := ctx.Err(); err != nil {
			fmt.Fprintf(s.errOut, "Error: %v\n", err)
			s.queue = nil
			return subcommands.ExitFailure
		}
		cmd := s.queue[0]
		s.queue = s.queue[1:]
		status = s.run(ctx, cmd)
		if status != subcommands.ExitSuccess && len(s.queue) > 0 {
			s.logger.Debug("discarding queue", zap.String("failed", cmd), zap.Strings("queue", s.queue))
			fmt.Fprintf(s.errOut, "Skipping: %s\n", strings.Join(s.queue, "/"))
			s.queue = nil
		}
	}
	return status
}

// Run reads commands from in until the session ends or in is exhausted.
func (s *Session) Run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for !s.done {
		fmt.Fprint(s.out, s.Prompt())
		if !scanner.Scan() {
			fmt.Fprintln(s.out)
			break
		}
		s.Execute(ctx, scanner.Text())
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// RunScript executes a routine, one line at a time.
//
// Blank lines and lines starting with '#' are skipped. A failing line does
// not stop the routine, quitting the session does. The returned status is the
// worst status met. The session stays in the menu the routine ended in, so
// that Run can continue it.
func (s *Session) RunScript(ctx context.Context, r io.Reader) (subcommands.ExitStatus, error) {
	worst := subcommands.ExitSuccess
	scanner := bufio.NewScanner(r)
	for n := 1; scanner.Scan() && !s.done; n++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		s.logger.Debug("routine", zap.Int("line", n), zap.String("cmd", line))
		if status := s.Execute(ctx, line); status != subcommands.ExitSuccess {
			fmt.Fprintf(s.errOut, "Error: routine line %d failed: %s\n", n, line)
			worst = max(worst, status)
		}
	}
	return worst, scanner.Err()
}

// run executes a single command.
func (s *Session) run(ctx context.Context, cmd string) subcommands.ExitStatus {
	args := SplitArgs(cmd)
	if len(args) == 0 {
		return subcommands.ExitSuccess
	}
	s.logger.Debug("command", zap.String("path", s.Path()), zap.Strings("args", args))

	switch name := strings.ToLower(args[0]); name {
	case "help", "h", "?":
		if len(args) > 1 {
			return s.explain(args[1])
		}
		return s.help()
	case "cls":
		fmt.Fprint(s.out, "\033[H\033[2J")
	case "..", "q", "quit":
		if len(s.stack) == 1 {
			s.done = true
		} else {
			s.stack = s.stack[:len(s.stack)-1]
		}
	case "home":
		s.stack = s.stack[:1]
	case "exit":
		s.done = true
	case "r", "reset":
		return s.reset(ctx)
	default:
		current := s.Current()
		if c, ok := current.child(name); ok {
			s.stack = append(s.stack, c.open())
			if len(args) > 1 {
				// "ta sma" opens the menu and runs the command in it.
				return s.run(ctx, strings.Join(quoteAll(args[1:]), " "))
			}
			return subcommands.ExitSuccess
		}
		if _, ok := current.Command(name); ok {
			return s.dispatch(ctx, current, args)
		}
		fmt.Fprintf(s.errOut, "Error: unknown command %q in %s\n", args[0], s.Path())
		if guess, ok := suggest(name, current.Names()); ok {
			fmt.Fprintf(s.errOut, "Did you mean %q?\n", guess)
		}
		return subcommands.ExitUsageError
	}
	return subcommands.ExitSuccess
}

// commander builds a subcommands.Commander for m writing to the session.
func (s *Session) commander(m *Menu) (*flag.FlagSet, *subcommands.Commander) {
	fs := flag.NewFlagSet(m.name, flag.ContinueOnError)
	fs.SetOutput(s.errOut)
	cdr := subcommands.NewCommander(fs, m.name)
	cdr.Output, cdr.Error = s.out, s.errOut
	for _, e := range m.commands {
		cdr.Register(e.cmd, e.group)
	}
	return fs, cdr
}

func (s *Session) dispatch(ctx context.Context, m *Menu, args []string) subcommands.ExitStatus {
	fs, cdr := s.commander(m)
	args[0] = strings.ToLower(args[0])
	if cmd, ok := m.Command(args[0]); ok {
		args = append([]string{args[0]}, interspersed(cmd, args[1:])...)
	}
	if err := fs.Parse(args); err != nil {
		return subcommands.ExitUsageError
	}
	return cdr.Execute(ctx, s)
}

// explain prints the usage of a command of the current menu.
func (s *Session) explain(name string) subcommands.ExitStatus {
	m := s.Current()
	cmd, ok := m.Command(name)
	if !ok {
		if c, ok := m.child(name); ok {
			fmt.Fprintf(s.out, "%s: %s\n", c.name, c.synopsis)
			return subcommands.ExitSuccess
		}
		fmt.Fprintf(s.errOut, "Error: unknown command %q in %s\n", name, s.Path())
		return subcommands.ExitUsageError
	}
	_, cdr := s.commander(m)
	cdr.ExplainCommand(s.out, cmd)
	return subcommands.ExitSuccess
}

// help prints the commands and child menus of the current menu.
func (s *Session) help() subcommands.ExitStatus {
	m := s.Current()
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1(fmt.Sprintf("%s %s", s.Path(), m.title))

	if len(m.children) > 0 {
		rows := make([][]string, 0, len(m.children))
		for _, c := range m.children {
			rows = append(rows, []string{code(c.name + ">"), c.synopsis})
		}
		doc.H2("Menus")
		doc.Table(md.TableSet{
			Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft},
			Header:    []string{"Menu", "Description"},
			Rows:      rows,
		})
	}
	for _, group := range m.groups() {
		var rows [][]string
		for _, e := range m.commands {
			if e.group == group {
				rows = append(rows, []string{code(e.cmd.Name()), e.cmd.Synopsis()})
			}
		}
		doc.H2(group)
		doc.Table(md.TableSet{
			Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft},
			Header:    []string{"Command", "Description"},
			Rows:      rows,
		})
	}
	rows := make([][]string, 0, len(builtins))
	for _, b := range builtins {
		rows = append(rows, []string{code(strings.Join(b.names, ", ")), b.synopsis})
	}
	doc.H2("Navigation")
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft},
		Header:    []string{"Command", "Description"},
		Rows:      rows,
	})
	doc.PlainText("Use `help <command>` for its flags. Chain commands with `/`, e.g. `stocks/load AAPL/quote`.")

	if err := s.Print(doc.String()); err != nil {
		fmt.Fprintf(s.errOut, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// reset rebuilds the menu tree, reopens the current path and replays the
// state of every open menu.
func (s *Session) reset(ctx context.Context) subcommands.ExitStatus {
	type step struct {
		name   string
		replay []string
	}
	steps := make([]step, 0, len(s.stack))
	for _, m := range s.stack {
		steps = append(steps, step{m.name, m.Replay()})
	}
	s.logger.Debug("reset", zap.String("path", s.Path()))

	s.stack = []*Menu{s.root()}
	status := subcommands.ExitSuccess
	for i, st := range steps {
		if i > 0 {
			c, ok := s.Current().child(st.name)
			if !ok {
				fmt.Fprintf(s.errOut, "Error: cannot reopen menu %q\n", st.name)
				return subcommands.ExitFailure
			}
			s.stack = append(s.stack, c.open())
		}
		for _, cmd := range st.replay {
			args := SplitArgs(cmd)
			if len(args) == 0 {
				continue
			}
			if got := s.dispatch(ctx, s.Current(), args); got != subcommands.ExitSuccess {
				fmt.Fprintf(s.errOut, "Error: replaying %q in %s failed\n", cmd, s.Path())
				status = got
			}
		}
	}
	return status
}

// interspersed moves the flags of cmd before its positional arguments, so
// that "load AAPL -s -1y" parses like "load -s -1y AAPL".
func interspersed(cmd subcommands.Command, args []string) []string {
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	cmd.SetFlags(fs)
	var flags, positional []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			positional = append(positional, args[i+1:]...)
			break
		}
		if len(arg) < 2 || arg[0] != '-' {
			positional = append(positional, arg)
			continue
		}
		flags = append(flags, arg)
		name := strings.TrimLeft(arg, "-")
		if strings.Contains(name, "=") {
			continue
		}
		f := fs.Lookup(name)
		if f == nil || isBool(f) || i+1 == len(args) {
			continue
		}
		i++
		flags = append(flags, args[i])
	}
	return append(flags, positional...)
}

func isBool(f *flag.Flag) bool {
	b, ok := f.Value.(interface{ IsBoolFlag() bool })
	return ok && b.IsBoolFlag()
}

func code(s string) string { return "`" + s + "`" }

// quoteAll quotes the arguments containing spaces so that SplitArgs restores them.
func quoteAll(args []string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		if strings.ContainsAny(a, " \t") {
			a = `"` + a + `"`
		}
		out[i] = a
	}
	return out
}
