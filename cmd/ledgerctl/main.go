package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path"

	"github.com/JonMunkholm/stockledger/internal/cli"
	"github.com/JonMunkholm/stockledger/internal/config"
	"github.com/JonMunkholm/stockledger/internal/core"
	"github.com/JonMunkholm/stockledger/internal/logging"
	"github.com/JonMunkholm/stockledger/internal/storage"
	"github.com/google/subcommands"
	"github.com/joho/godotenv"
)

func main() {
	os.Exit(run())
}

func run() int {
	_ = godotenv.Load() // optional

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuration:", err)
		return int(subcommands.ExitFailure)
	}
	// Logs go to stderr so command output can be piped.
	logging.SetupWriter(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")

	ctx := context.Background()
	env := &cli.Env{
		Out:           os.Stdout,
		Err:           os.Stderr,
		In:            os.Stdin,
		MaxImportSize: cfg.Import.MaxFileSize,
	}
	cli.Register(commander, env)
	flag.Parse()

	store, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open storage:", err)
		return int(subcommands.ExitFailure)
	}
	defer store.Close()

	env.Service, err = core.NewService(ctx, store, core.WithSaveTimeout(cfg.Storage.SaveTimeout))
	if err != nil {
		fmt.Fprintln(os.Stderr, "load ledger:", err)
		return int(subcommands.ExitFailure)
	}

	return int(commander.Execute(ctx))
}
