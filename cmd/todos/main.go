package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/idilsaglam/todos/internal/cli"
	"github.com/idilsaglam/todos/internal/config"
	"github.com/idilsaglam/todos/internal/launch"
	"github.com/idilsaglam/todos/internal/logging"
	"github.com/idilsaglam/todos/internal/session"
	"github.com/idilsaglam/todos/internal/store/sqlitestore"
	"github.com/idilsaglam/todos/internal/ui"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Root flags (apply to every action)
	configPath := flag.String("config", "", "config file path")
	dbPath := flag.String("db", "", "database file path")
	verbose := flag.Bool("v", false, "debug logging")
	noColor := flag.Bool("no-color", false, "disable styled output")
	flag.Usage = func() { cli.PrintHelp(os.Stderr) }
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "todos:", err)
		return cli.ExitError
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if *verbose {
		cfg.LogLevel = "debug"
	}

	printer := ui.NewPrinter(os.Stdout, os.Stderr, cfg.ColorEnabled() && !*noColor)
	logger := logging.New(os.Stderr, cfg.LogLevel)

	store, err := sqlitestore.Open(cfg.DBPath, sqlitestore.WithLogger(logger))
	if err != nil {
		printer.Fail("Could not open the todos database! " + err.Error())
		return cli.ExitError
	}
	defer store.Close()

	var pager cli.Opener = &ui.Pager{Title: "Today's TODOs"}
	if line := launch.ResolvePager(cfg.Pager); line != ui.BuiltinPager {
		pager = launch.New(line, logger)
	}

	return cli.Run(context.Background(), flag.Args(), &cli.Env{
		Store:  store,
		Editor: launch.New(launch.ResolveEditor(cfg.Editor), logger),
		Pager:  pager,
		ScratchPath: func() string {
			return session.ScratchPath(cfg.ScratchDir, cfg.UniqueScratch)
		},
		ListPath: func() string { return session.ListPath(cfg.ScratchDir) },
		In:       os.Stdin,
		Print:    printer,
		Log:      logger,
	})
}
