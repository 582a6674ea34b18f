package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/taskdeck/taskdeck/internal/config"
	"github.com/taskdeck/taskdeck/internal/flows"
	"github.com/taskdeck/taskdeck/internal/store"
	"github.com/taskdeck/taskdeck/internal/ui"
)

// tuiCommand launches the terminal UI.
func tuiCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("taskdeck tui", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(fs.Args()) > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	collection := store.NewCollection(a.client, a.logger)
	collection.SetPageSize(cfg.PageSize)
	runner := flows.NewRunner(a.client, collection, a.session, a.logger)

	return ui.Run(ctx, ui.Deps{
		Config:      cfg,
		Service:     a.client,
		Collection:  collection,
		Session:     a.session,
		Runner:      runner,
		Logger:      a.logger,
		SaveSession: a.saveSession,
	})
}
