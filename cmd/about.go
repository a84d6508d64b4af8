package cmd

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/etnz/fterm/docs"
	"github.com/etnz/fterm/menu"
	"github.com/google/subcommands"
)

type aboutCmd struct{}

func (*aboutCmd) Name() string     { return "about" }
func (*aboutCmd) Synopsis() string { return "read the documentation" }
func (*aboutCmd) Usage() string {
	topics, _ := docs.AllTopics()
	return fmt.Sprintf(`about [<topic>...]

  Prints documentation topics, '*' prints them all.

  Topics: %s
`, strings.Join(topics, ", "))
}

func (c *aboutCmd) SetFlags(f *flag.FlagSet) {}

func (c *aboutCmd) Execute(_ context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	s := menu.FromArgs(args)
	topics := f.Args()
	if len(topics) == 0 {
		topics = []string{"readme"}
	}
	md, err := docs.Topics(topics...)
	if err != nil {
		fmt.Fprintf(s.Err(), "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	return show(s, md)
}
