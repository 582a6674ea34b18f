package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/taskdeck/taskdeck/internal/api"
	"github.com/taskdeck/taskdeck/internal/config"
	"github.com/taskdeck/taskdeck/internal/logging"
	"github.com/taskdeck/taskdeck/internal/service"
	"github.com/taskdeck/taskdeck/internal/session"
)

// app bundles the wired state every remote-facing command needs: the
// loaded session, the API client bound to it, and a per-run log file.
type app struct {
	cfg         *config.Config
	logger      *log.Logger
	runLog      *logging.RunLogger
	session     *session.Store
	sessionPath string
	client      *api.Client
}

// newApp wires a client-side application. The stored session file is
// loaded if present; an invocation that needs auth checks requireAuth.
func newApp(cfg *config.Config) (*app, error) {
	logDir, err := logging.DefaultDir()
	if err != nil {
		return nil, fmt.Errorf("resolving log directory: %w", err)
	}
	runLog, err := logging.NewRunLogger(logDir)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	logger := logging.New(runLog.Writer(), cfg.LogLevel, cfg.LogFormat)

	sess := session.NewStore()
	sessionPath, err := session.DefaultPath()
	if err != nil {
		runLog.Close()
		return nil, fmt.Errorf("resolving session path: %w", err)
	}
	if id, err := session.LoadFile(sessionPath); err == nil {
		sess.Set(id)
	} else if !os.IsNotExist(err) {
		logger.Warn("ignoring unreadable session file", "path", sessionPath, "error", err)
	}

	client := api.New(cfg.APIBaseURL, sess,
		api.WithTimeout(cfg.Timeout()),
		api.WithLogger(logger),
		api.WithUnauthorizedHook(func() {
			sess.Clear()
			if err := session.RemoveFile(sessionPath); err != nil {
				logger.Warn("removing session file", "error", err)
			}
		}),
	)

	return &app{
		cfg:         cfg,
		logger:      logger,
		runLog:      runLog,
		session:     sess,
		sessionPath: sessionPath,
		client:      client,
	}, nil
}

// Close flushes and closes the run log.
func (a *app) Close() error {
	return a.runLog.Close()
}

// requireAuth fails fast when no stored session exists, before any
// network call is made.
func (a *app) requireAuth() error {
	if !a.session.Authenticated() {
		return fmt.Errorf("not logged in, run 'taskdeck login' first")
	}
	return nil
}

// saveSession stores a fresh identity in memory and on disk so later
// invocations stay logged in.
func (a *app) saveSession(id service.Identity) {
	a.session.Set(id)
	if err := session.SaveFile(a.sessionPath, id); err != nil {
		a.logger.Warn("persisting session", "error", err)
	}
}
