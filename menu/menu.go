// Package menu implements the interactive menu tree of the terminal.
//
// A Menu is a set of subcommands.Command, grouped by section, plus the child
// menus that can be opened from it. A Session holds the stack of open menus
// and the queue of pending commands, and dispatches each command to the
// current menu.
//
// Commands receive the *Session as their first execution argument:
//
//	func (c *quoteCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
//		s := menu.FromArgs(args)
//		...
//	}
package menu

import (
	"slices"
	"strings"

	"github.com/google/subcommands"
)

// Replayer returns the commands that restore a menu's state once rebuilt.
type Replayer func() []string

type entry struct {
	cmd   subcommands.Command
	group string
}

type child struct {
	name     string
	synopsis string
	open     func() *Menu
}

// Menu is a node of the menu tree.
type Menu struct {
	name     string
	title    string
	commands []entry
	children []child
	replay   Replayer
	status   func() string
}

// New returns an empty menu.
func New(name, title string) *Menu {
	return &Menu{name: name, title: title}
}

// Name returns the name used to open the menu from its parent.
func (m *Menu) Name() string { return m.name }

// Title returns the human readable title.
func (m *Menu) Title() string { return m.title }

// Register adds a command in the given help group.
func (m *Menu) Register(cmd subcommands.Command, group string) *Menu {
	m.commands = append(m.commands, entry{cmd, group})
	return m
}

// Child declares a child menu. open is called every time the child is entered.
func (m *Menu) Child(name, synopsis string, open func() *Menu) *Menu {
	m.children = append(m.children, child{name, synopsis, open})
	return m
}

// SetReplay sets the function used by reset to restore this menu's state.
func (m *Menu) SetReplay(r Replayer) *Menu {
	m.replay = r
	return m
}

// SetStatus sets the function whose result is shown in the prompt, e.g. the loaded ticker.
func (m *Menu) SetStatus(f func() string) *Menu {
	m.status = f
	return m
}

// Status returns the menu state shown in the prompt, if any.
func (m *Menu) Status() string {
	if m.status == nil {
		return ""
	}
	return m.status()
}

// Replay returns the commands restoring this menu's state.
func (m *Menu) Replay() []string {
	if m.replay == nil {
		return nil
	}
	return m.replay()
}

// Command returns the command registered under that name.
func (m *Menu) Command(name string) (subcommands.Command, bool) {
	for _, e := range m.commands {
		if strings.EqualFold(e.cmd.Name(), name) {
			return e.cmd, true
		}
	}
	return nil, false
}

func (m *Menu) child(name string) (child, bool) {
	for _, c := range m.children {
		if strings.EqualFold(c.name, name) {
			return c, true
		}
	}
	return child{}, false
}

// groups returns the command groups in registration order.
func (m *Menu) groups() []string {
	var groups []string
	for _, e := range m.commands {
		if !slices.Contains(groups, e.group) {
			groups = append(groups, e.group)
		}
	}
	return groups
}

// Names returns every name the menu answers to: commands, child menus and built-ins.
func (m *Menu) Names() []string {
	var names []string
	for _, e := range m.commands {
		names = append(names, e.cmd.Name())
	}
	for _, c := range m.children {
		names = append(names, c.name)
	}
	for _, b := range builtins {
		names = append(names, b.names...)
	}
	return names
}
