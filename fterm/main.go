// Command fterm is a financial terminal.
//
// Without arguments it starts an interactive session on the home menu.
// Arguments are run as a command queue, for instance:
//
//	fterm stocks/load AAPL -s -6m/ta/rsi
//
// and -i keeps the session open afterwards. A routine file run with -file
// also ends the session, unless -i is given.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/etnz/fterm/cmd"
	"github.com/google/subcommands"
	"go.uber.org/zap"
)

var (
	configFile  = flag.String("config", "", "configuration file, defaults to the user configuration directory")
	verbose     = flag.Bool("v", false, "log debug messages")
	routine     = flag.String("file", "", "run the commands of a routine file, one per line")
	interactive = flag.Bool("i", false, "start an interactive session after running the arguments or the routine file")
	noCache     = flag.Bool("no-cache", false, "do not cache provider responses")
	plain       = flag.Bool("plain", false, "print raw markdown")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] [command[/command...]]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	os.Exit(int(run()))
}

func run() subcommands.ExitStatus {
	config, err := cmd.LoadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if *verbose {
		config.Log.Level = "debug"
	}
	if *noCache {
		config.Cache.Disabled = true
	}
	logger, err := cmd.NewLogger(config.Log.Level, config.Log.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app := cmd.NewApp(config, logger)
	app.Plain = *plain
	session := app.NewSession(os.Stdout, os.Stderr)
	logger.Debug("session started", zap.String("config", *configFile), zap.Strings("args", flag.Args()))

	status := subcommands.ExitSuccess
	if *routine != "" {
		f, err := os.Open(*routine)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		status, err = session.RunScript(ctx, f)
		f.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", *routine, err)
			return subcommands.ExitFailure
		}
	}
	if flag.NArg() > 0 {
		status = max(status, session.Execute(ctx, strings.Join(flag.Args(), " ")))
	}
	if *routine != "" || flag.NArg() > 0 {
		if !*interactive || session.Done() {
			return status
		}
	}
	if err := session.Run(ctx, os.Stdin); err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return status
}
