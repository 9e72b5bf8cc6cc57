package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"carteira/internal/domain/account"
	"carteira/internal/domain/balance"
	"carteira/internal/domain/impact"
	"carteira/internal/domain/ledger"
	"carteira/internal/domain/transaction"
	"carteira/internal/infrastructure/inmemory"
	"carteira/internal/infrastructure/postgres"
	"carteira/internal/infrastructure/sqlite"
	httphandlers "carteira/internal/interfaces/http"
	"carteira/internal/shared/auth"
	"carteira/internal/shared/config"
)

// Dependencies holds all initialized application components.
type Dependencies struct {
	closeStore func() error

	// Handlers
	AccountHandler     *httphandlers.AccountHandler
	TransactionHandler *httphandlers.TransactionHandler
	InstallmentHandler *httphandlers.InstallmentHandler
	ImpactHandler      *httphandlers.ImpactHandler

	// Auth
	JWT *auth.JWT
}

// NewDependencies opens the configured store and wires the services on top of it.
func NewDependencies(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Dependencies, error) {
	var (
		accountRepo account.Repository
		ledgerRepo  ledger.Repository
		closeStore  = func() error { return nil }
	)

	switch cfg.Database.Driver {
	case config.DriverPostgres:
		db, err := postgres.New(cfg.Database.ConnectionString())
		if err != nil {
			return nil, err
		}
		if cfg.Database.AutoMigrate {
			if err := db.Migrate(ctx); err != nil {
				db.Close()
				return nil, err
			}
		}
		accountRepo = postgres.NewAccountRepository(db)
		ledgerRepo = postgres.NewLedgerRepository(db)
		closeStore = db.Close
		log.Info().Str("host", cfg.Database.Host).Str("db", cfg.Database.DBName).Msg("Connected to postgres")

	case config.DriverSQLite:
		db, err := sqlite.Open(cfg.Database.SQLitePath)
		if err != nil {
			return nil, err
		}
		accountRepo = sqlite.NewAccountStore(db)
		ledgerRepo = sqlite.NewLedgerStore(db)
		closeStore = db.Close
		log.Info().Str("path", cfg.Database.SQLitePath).Msg("Opened sqlite database")

	case config.DriverMemory:
		accountRepo = inmemory.NewAccountStore()
		ledgerRepo = inmemory.NewLedgerStore()
		log.Warn().Msg("Using in-memory store, data is lost on restart")

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}

	// Initialize domain services
	accountService := account.NewService(accountRepo)
	projector := balance.NewProjector(ledgerRepo)
	evaluator := impact.NewEvaluator(accountService, projector)
	transactionService := transaction.NewService(accountService, ledgerRepo, evaluator)

	return &Dependencies{
		closeStore:         closeStore,
		AccountHandler:     httphandlers.NewAccountHandler(accountService, projector),
		TransactionHandler: httphandlers.NewTransactionHandler(transactionService),
		InstallmentHandler: httphandlers.NewInstallmentHandler(),
		ImpactHandler:      httphandlers.NewImpactHandler(evaluator),
		JWT:                auth.NewJWT(cfg.Auth.JWTSecret),
	}, nil
}

// Close releases all resources held by dependencies.
func (d *Dependencies) Close() error {
	return d.closeStore()
}
