// Command marketctl is the single-device command line client.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"carmarket/internal/app"
	"carmarket/internal/cli"
	"carmarket/internal/config"
	"carmarket/internal/models"
	"carmarket/internal/observability"
	"carmarket/internal/session"
	"carmarket/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	// stdout carries command output only.
	observability.SetLogger(observability.NewLogger(os.Stderr, cfg.Env))

	core, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer core.Close()

	sessionStore, closeSession, err := openSessionStore(cfg, core.Store)
	if err != nil {
		return err
	}
	defer closeSession()

	ctx := context.Background()
	mgr := session.NewManager(sessionStore, core.Auth)
	if err := mgr.Restore(ctx); err != nil && !errors.Is(err, models.ErrStorageCorruption) {
		return err
	}

	root := cli.NewRootCommand(&cli.Env{App: core, Session: mgr}, os.Stdout)
	return root.ExecuteContext(ctx)
}

// openSessionStore keeps the session in its own SQLite file when
// SESSION_FILE is set, so several devices can share one data store.
func openSessionStore(cfg *config.Config, shared store.Store) (store.Store, func(), error) {
	if cfg.SessionFile == "" {
		return shared, func() {}, nil
	}
	db, err := store.OpenDB(config.DriverSQLite, cfg.SessionFile)
	if err != nil {
		return nil, nil, err
	}
	s := store.NewSQLStore(db)
	if err := s.Migrate(); err != nil {
		_ = s.Close()
		return nil, nil, err
	}
	return s, func() { _ = s.Close() }, nil
}
