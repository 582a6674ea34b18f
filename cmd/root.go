// Package cmd implements the CLI command structure for taskdeck.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/taskdeck/taskdeck/internal/config"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Run executes the taskdeck CLI.
func Run(ctx context.Context, args []string) error {
	// Create a flag set for global options
	fs := flag.NewFlagSet("taskdeck", flag.ContinueOnError)
	fs.Usage = func() {
		printUsage(fs, os.Stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	// Global flags
	cfg, err := config.Load(fs, args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if *help {
		printUsage(fs, os.Stdout)
		return nil
	}
	if *showVersion {
		return versionCommand()
	}

	// Determine the subcommand. With no args the TUI is the default.
	subcommand := "tui"
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 {
		if !strings.HasPrefix(remainingArgs[0], "-") {
			subcommand = remainingArgs[0]
			remainingArgs = remainingArgs[1:]
		}
	}

	// Execute the subcommand
	switch subcommand {
	case "tui":
		return tuiCommand(ctx, cfg, remainingArgs)
	case "login":
		return loginCommand(ctx, cfg, remainingArgs)
	case "logout":
		return logoutCommand(cfg, remainingArgs)
	case "register":
		return registerCommand(ctx, cfg, remainingArgs)
	case "ls":
		return lsCommand(ctx, cfg, remainingArgs)
	case "add":
		return addCommand(ctx, cfg, remainingArgs)
	case "edit":
		return editCommand(ctx, cfg, remainingArgs)
	case "rm":
		return rmCommand(ctx, cfg, remainingArgs)
	case "status":
		return statusCommand(ctx, cfg, remainingArgs)
	case "stub":
		return stubCommand(ctx, cfg, remainingArgs)
	case "logs":
		return logsCommand(cfg, remainingArgs)
	case "version":
		return versionCommand()
	case "help":
		printUsage(fs, os.Stdout)
		return nil
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, os.Stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

// versionCommand prints version information.
func versionCommand() error {
	fmt.Printf("taskdeck version %s\n", Version)
	return nil
}

// printUsage prints the usage message.
func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "Taskdeck - A task manager for a remote task service")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  taskdeck [command] [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  tui               Launch the terminal UI (default command)")
	fmt.Fprintln(w, "  login             Log in and store the session")
	fmt.Fprintln(w, "  logout            Discard the stored session")
	fmt.Fprintln(w, "  register          Create a new account")
	fmt.Fprintln(w, "  ls                List tasks")
	fmt.Fprintln(w, "  add <title>       Create a task")
	fmt.Fprintln(w, "  edit <id>         Edit a task")
	fmt.Fprintln(w, "  rm <id>           Delete a task")
	fmt.Fprintln(w, "  status <id> <s>   Set a task's status (pending|in-progress|completed)")
	fmt.Fprintln(w, "  stub              Run a local in-memory task service")
	fmt.Fprintln(w, "  logs              Show the latest log file")
	fmt.Fprintln(w, "  version           Show version information")
	fmt.Fprintln(w, "  help              Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Login Options (use with 'login' and 'register'):")
	fmt.Fprintln(w, "  -email string")
	fmt.Fprintln(w, "        Account email (prompted when omitted)")
	fmt.Fprintln(w, "  -password string")
	fmt.Fprintln(w, "        Account password (prompted when omitted)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Ls Options (use with 'ls' command):")
	fmt.Fprintln(w, "  -status string")
	fmt.Fprintln(w, "        Filter by status (pending|in-progress|completed)")
	fmt.Fprintln(w, "  -page int")
	fmt.Fprintln(w, "        Page to show (default 1)")
	fmt.Fprintln(w, "  -search string")
	fmt.Fprintln(w, "        Narrow the page to tasks whose title contains the text")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Add/Edit Options:")
	fmt.Fprintln(w, "  -desc string")
	fmt.Fprintln(w, "        Task description")
	fmt.Fprintln(w, "  -due string")
	fmt.Fprintln(w, "        Due date (YYYY-MM-DD)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Stub Options (use with 'stub' command):")
	fmt.Fprintln(w, "  -addr string")
	fmt.Fprintln(w, "        Listen address (default localhost:8081)")
	fmt.Fprintln(w, "  -seed string")
	fmt.Fprintln(w, "        Seed file with accounts and tasks")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Logs Options (use with 'logs' command):")
	fmt.Fprintln(w, "  -f, --follow")
	fmt.Fprintln(w, "        Follow the log (like tail -f)")
	fmt.Fprintln(w, "  -n int")
	fmt.Fprintln(w, "        Number of lines to show (0 = all)")
}
