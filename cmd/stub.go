package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/taskdeck/taskdeck/internal/config"
	"github.com/taskdeck/taskdeck/internal/logging"
	"github.com/taskdeck/taskdeck/internal/stubserver"
)

// stubCommand runs the local in-memory task service.
func stubCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("taskdeck stub", flag.ContinueOnError)
	addr := fs.String("addr", cfg.StubAddr, "Listen address")
	seed := fs.String("seed", cfg.SeedFile, "Seed file with accounts and tasks")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(fs.Args()) > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	logger := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	st := stubserver.NewStore()
	if *seed != "" {
		if err := stubserver.LoadSeed(st, *seed); err != nil {
			return fmt.Errorf("loading seed file: %w", err)
		}
		logger.Info("seed file loaded", "path", *seed)
	}

	fmt.Printf("Task service stub listening on %s\n", *addr)
	fmt.Printf("Demo account: %s / %s\n", stubserver.DefaultEmail, stubserver.DefaultPassword)

	srv := stubserver.New(st, logger)
	return srv.Run(ctx, *addr)
}

// logsCommand shows the latest log file.
func logsCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("taskdeck logs", flag.ContinueOnError)
	follow := fs.Bool("f", false, "Follow the log (like tail -f)")
	fs.BoolVar(follow, "follow", false, "Follow the log (like tail -f)")
	n := fs.Int("n", 0, "Number of lines to show (0 = all)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	dir, err := logging.DefaultDir()
	if err != nil {
		return fmt.Errorf("resolving log directory: %w", err)
	}
	logPath, err := logging.FindLatestLog(dir)
	if err != nil {
		return fmt.Errorf("finding latest log: %w", err)
	}
	if logPath == "" {
		fmt.Println("No log files found.")
		return nil
	}

	fmt.Printf("Tailing: %s\n", logPath)
	if *follow {
		fmt.Println("(Ctrl+C to stop)")
	}
	fmt.Println()

	return logging.Tail(os.Stdout, logPath, *n, *follow)
}
