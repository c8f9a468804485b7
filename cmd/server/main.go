package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/sheikh-saqib/multisig-authorization-engine/internal/api"
	"github.com/sheikh-saqib/multisig-authorization-engine/internal/config"
	"github.com/sheikh-saqib/multisig-authorization-engine/internal/engine"
	"github.com/sheikh-saqib/multisig-authorization-engine/internal/events/kafka"
	"github.com/sheikh-saqib/multisig-authorization-engine/internal/interfaces"
	"github.com/sheikh-saqib/multisig-authorization-engine/internal/ledger"
	"github.com/sheikh-saqib/multisig-authorization-engine/internal/models"
	"github.com/sheikh-saqib/multisig-authorization-engine/internal/storage/memory"
	"github.com/sheikh-saqib/multisig-authorization-engine/internal/storage/postgres"
	"github.com/sheikh-saqib/multisig-authorization-engine/internal/storage/sqlite"
)

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg := config.Load()

	store, err := openStore(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("backend", cfg.StoreBackend).Msg("failed to open ledger store")
	}

	accountLedger := ledger.NewAccountLedger(store, cfg.TreasuryAccount, logger)
	if err := fundTreasury(accountLedger, cfg); err != nil {
		logger.Fatal().Err(err).Msg("failed to fund treasury")
	}

	var publisher interfaces.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher := kafka.NewPublisher(cfg.KafkaBrokers)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
		logger.Info().Strs("brokers", cfg.KafkaBrokers).Msg("kafka event publishing enabled")
	}

	signers := make([]models.Identity, 0, len(cfg.Signers))
	for _, s := range cfg.Signers {
		signers = append(signers, models.Identity(s))
	}

	eng, err := engine.New(engine.Config{
		Admin:     models.Identity(cfg.Admin),
		Signers:   signers,
		Threshold: cfg.Threshold,
		Ledger:    accountLedger,
		Publisher: publisher,
		Logger:    logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to construct authorization engine")
	}

	router := mux.NewRouter()
	api.NewAPI(eng, logger).Register(router)

	addr := ":" + cfg.Port
	logger.Info().
		Str("addr", addr).
		Int("signers", len(signers)).
		Int("threshold", cfg.Threshold).
		Msg("starting authorization server")
	if err := http.ListenAndServe(addr, router); err != nil {
		logger.Fatal().Err(err).Msg("server failed")
	}
}

func openStore(cfg *config.Config, logger zerolog.Logger) (interfaces.LedgerStore, error) {
	switch cfg.StoreBackend {
	case "postgres":
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		store := postgres.NewStore(db)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return store, nil
	case "sqlite":
		return sqlite.Open(cfg.SQLitePath)
	default:
		logger.Info().Msg("using in-memory ledger store")
		return memory.NewStore(), nil
	}
}

// fundTreasury seeds the treasury with the configured float so proposals
// have a balance to check against. A zero float leaves the treasury empty.
func fundTreasury(accountLedger *ledger.AccountLedger, cfg *config.Config) error {
	float, err := decimal.NewFromString(cfg.TreasuryFloat)
	if err != nil {
		return err
	}
	if float.IsZero() {
		return nil
	}
	ctx := context.Background()
	// Durable stores keep their balance across restarts; only seed once.
	balance, err := accountLedger.BalanceOf(ctx, cfg.TreasuryAccount)
	if err != nil {
		return err
	}
	if !balance.IsZero() {
		return nil
	}
	return accountLedger.Deposit(ctx, cfg.TreasuryAccount, float)
}
