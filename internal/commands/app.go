package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/bankrec/internal/actionlog"
	"github.com/cleared-dev/bankrec/internal/config"
	"github.com/cleared-dev/bankrec/internal/filestore"
	"github.com/cleared-dev/bankrec/internal/ledger"
	"github.com/cleared-dev/bankrec/internal/logger"
	"github.com/cleared-dev/bankrec/internal/model"
	"github.com/cleared-dev/bankrec/internal/reconcile"
	"github.com/cleared-dev/bankrec/internal/report"
	"github.com/cleared-dev/bankrec/internal/statements"
	"github.com/cleared-dev/bankrec/internal/store"
)

// app is the wiring a command needs once the workspace is loaded.
type app struct {
	cfg        *config.Config
	db         *store.DB
	scope      model.Scope
	statements *statements.Service
	ledger     *ledger.Service
	engine     *reconcile.Engine
	reports    *report.Service
}

// openApp loads the config, opens the database and returns a context
// carrying the logger. Callers must close the app.
func openApp(cmd *cobra.Command, opts *rootOptions) (*app, context.Context, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, nil, err
	}

	ctx := withLogger(cmd, opts, cfg)

	db, err := store.Open(cfg.Database.Path)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Init(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}

	files, err := filestore.New(cfg.Storage.UploadsDir)
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	a := &app{
		cfg:   cfg,
		db:    db,
		scope: model.Scope{CompanyID: cfg.Company.ID, Actor: cfg.Operator.Actor},
		statements: statements.NewService(db, files, statements.Options{
			SurfacedErrors: cfg.Import.SurfacedErrors,
			ActionsFile:    cfg.Log.ActionsFile,
		}),
		ledger:  ledger.NewService(db),
		engine:  reconcile.NewEngine(db),
		reports: report.NewService(db),
	}
	return a, ctx, nil
}

// loadConfig reads the workspace config with paths made absolute.
func loadConfig(opts *rootOptions) (*config.Config, error) {
	cfgPath, err := filepath.Abs(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	cfg.ResolvePaths(filepath.Dir(cfgPath))
	if cfg.Company.ID == 0 {
		return nil, fmt.Errorf("%s has no company id; run bankrec init", cfgPath)
	}
	return cfg, nil
}

func (a *app) Close() error {
	return a.db.Close()
}

// recordAction appends one entry to the action log. A write failure is
// logged and otherwise ignored.
func (a *app) recordAction(ctx context.Context, action, details string, statementIDs []int64, result string) {
	if a.cfg.Log.ActionsFile == "" {
		return
	}
	entry := actionlog.Entry{
		Timestamp:    now(),
		Actor:        a.scope.Actor,
		Action:       action,
		Details:      details,
		StatementIDs: statementIDs,
		Result:       result,
	}
	if err := actionlog.Append(a.cfg.Log.ActionsFile, []actionlog.Entry{entry}); err != nil {
		logger.FromContext(ctx).Warn().Err(err).Str("action", action).Msg("action_log_write_failed")
	}
}

// withLogger builds the logger from config, then the environment, then the
// --log-level flag, each overriding the previous one.
func withLogger(cmd *cobra.Command, opts *rootOptions, cfg *config.Config) context.Context {
	level := logger.Level(cfg.Log.Level)
	if opts.logLevel != "" {
		level = opts.logLevel
	}
	l := logger.New(cmd.ErrOrStderr(), level, cfg.Log.Format)
	return logger.WithContext(cmd.Context(), l)
}

// now is replaced in tests.
var now = time.Now
