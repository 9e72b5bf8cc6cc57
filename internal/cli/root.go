// Package cli is the carteira command line tool. It runs the same engine as
// the API against a local sqlite database.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"carteira/internal/domain/account"
	"carteira/internal/domain/balance"
	"carteira/internal/domain/impact"
	"carteira/internal/domain/transaction"
	"carteira/internal/infrastructure/sqlite"
	"carteira/internal/shared/logger"
)

// app carries the flags and the lazily opened store of one invocation.
type app struct {
	configPath string
	dbPath     string
	userID     string
	verbose    bool

	cfg Config
	db  *sqlite.DB

	accounts  *account.Service
	projector *balance.Projector
	evaluator *impact.Evaluator
	tx        *transaction.Service
}

// NewRootCmd builds the carteira command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "carteira",
		Short:         "Track accounts, card installments and overdraft risk",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(a.configPath)
			if err != nil {
				return err
			}
			if a.dbPath != "" {
				cfg.DatabasePath = a.dbPath
			}
			if a.userID != "" {
				cfg.UserID = a.userID
			}
			a.cfg = cfg

			level := "warn"
			if a.verbose {
				level = "debug"
			}
			log := logger.New(logger.Options{Level: level, Out: cmd.ErrOrStderr()})
			cmd.SetContext(logger.WithContext(cmd.Context(), log))
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.db != nil {
				return a.db.Close()
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", DefaultConfigPath(), "config file")
	root.PersistentFlags().StringVar(&a.dbPath, "db", "", "sqlite database path (overrides database_path)")
	root.PersistentFlags().StringVar(&a.userID, "user", "", "user id (overrides user_id)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log engine decisions to stderr")

	root.AddCommand(
		newInitCmd(a),
		newScheduleCmd(),
		newAccountCmd(a),
		newTxCmd(a),
		newImpactCmd(a),
	)
	return root
}

// Execute runs the command tree with ctx.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// open connects the store and services on first use.
func (a *app) open() error {
	if a.db != nil {
		return nil
	}
	if a.cfg.UserID == "" {
		return errors.New("no user configured: run 'carteira init' or pass --user")
	}

	db, err := sqlite.Open(a.cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("open %s: %w", a.cfg.DatabasePath, err)
	}
	a.db = db

	ledgerStore := sqlite.NewLedgerStore(db)
	a.accounts = account.NewService(sqlite.NewAccountStore(db))
	a.projector = balance.NewProjector(ledgerStore)
	a.evaluator = impact.NewEvaluator(a.accounts, a.projector)
	a.tx = transaction.NewService(a.accounts, ledgerStore, a.evaluator)
	return nil
}
