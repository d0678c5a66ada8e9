package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"fxledger/internal/api"
	"fxledger/internal/config"
	"fxledger/internal/store"
	"fxledger/internal/util"
)

func main() {
	// Load config.
	cfgPath := "config/ledger.yaml"
	if p := os.Getenv("LEDGER_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	// Setup logging.
	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	users, orders, closeStore, err := openStores(ctx, cfg.Storage)
	if err != nil {
		log.Fatalf("opening %s store: %v", cfg.Storage.Backend, err)
	}
	defer closeStore()
	logger.Info("store ready", "backend", cfg.Storage.Backend)

	router := api.NewRouter(users, orders, logger)
	srv := api.NewServer(cfg.Server, router, logger)

	if err := srv.ListenAndServe(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
	logger.Info("ledger server stopped")
}

func openStores(ctx context.Context, cfg config.Storage) (store.UserStore, store.OrderStore, func(), error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		sq, err := store.NewSQLiteStore(ctx)
		if err != nil {
			return nil, nil, nil, err
		}
		return sq, sq, func() { sq.Close() }, nil
	default:
		return store.NewMemoryUserStore(), store.NewMemoryOrderStore(), func() {}, nil
	}
}
