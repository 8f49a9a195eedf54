package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/idilsaglam/mytodo/internal/app"
	"github.com/idilsaglam/mytodo/internal/cli"
	"github.com/idilsaglam/mytodo/internal/config"
	"github.com/idilsaglam/mytodo/internal/logger"
	"github.com/idilsaglam/mytodo/internal/ui"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Root flags (apply to every subcommand)
	groupPending := flag.Bool("group", false, "group output by pending/done")
	envFile := flag.String("env", ".env", "dotenv file to load")
	theme := flag.String("theme", "", "classic | neon | mono")
	apiURL := flag.String("api", "", "backend base URL")
	logFile := flag.String("log-file", "", `log file, "-" for stderr`)
	flag.Usage = func() { cli.PrintHelp(os.Stderr) }
	flag.Parse()

	cfg, err := config.Load(*envFile,
		config.WithAPIURL(*apiURL),
		config.WithLogFile(*logFile),
		config.WithTheme(*theme),
	)
	if err != nil {
		ui.Fail(os.Stderr, "config: "+err.Error())
		return cli.ExitError
	}
	ui.SetTheme(cfg.Theme)

	log, closer, err := logger.Open(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		ui.Fail(os.Stderr, err.Error())
		return cli.ExitError
	}
	defer closer.Close()

	a, err := app.New(cfg, log)
	if err != nil {
		ui.Fail(os.Stderr, err.Error())
		return cli.ExitError
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	code := cli.Run(ctx, flag.Args(), cli.Options{Group: *groupPending}, cli.Env{
		App:    a,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Stdin:  os.Stdin,
	})
	if code != cli.ExitOK {
		fmt.Fprintln(os.Stderr)
	}
	return code
}
