package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/idilsaglam/mornify/internal/cli"
	"github.com/idilsaglam/mornify/internal/ui"
)

func main() {
	// Root flags (apply to every subcommand)
	flags := pflag.NewFlagSet("mornify", pflag.ContinueOnError)
	configPath := flags.StringP("config", "c", "", "config file (yaml, toml, json or jsonc)")
	logLevel := flags.String("log-level", "", "log level: trace, debug, info, warn, error")
	routine := flags.String("routine", "", "routine file, overrides the config")
	theme := flags.String("theme", "", "theme file, overrides the config")
	noColor := flags.Bool("no-color", false, "disable colored output")
	help := flags.BoolP("help", "h", false, "show help")
	flags.SetInterspersed(false)
	flags.SetOutput(io.Discard)
	flags.Usage = cli.PrintHelp

	if err := flags.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if *help {
		cli.PrintHelp()
		os.Exit(0)
	}
	if *noColor || os.Getenv("NO_COLOR") != "" {
		ui.Plain()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Run(ctx, flags.Args(), cli.Options{
		ConfigPath: *configPath,
		LogLevel:   *logLevel,
		Routine:    *routine,
		Theme:      *theme,
	})
	cancel()
	if code != 0 {
		fmt.Fprintln(os.Stderr)
	}
	os.Exit(code)
}
