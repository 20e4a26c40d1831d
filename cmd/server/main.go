package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/finshield/finshield-backend/internal/adapter/httpapi"
	"github.com/finshield/finshield-backend/internal/adapter/repository/postgres"
	"github.com/finshield/finshield-backend/internal/usecase/balance"
	"github.com/finshield/finshield-backend/internal/usecase/reallocation"
	"github.com/finshield/finshield-backend/internal/usecase/shield"
	"github.com/finshield/finshield-backend/internal/usecase/surplus"
)

func main() {
	// Missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to build logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func run(logger *zap.Logger) error {
	db, err := postgres.NewDB(databaseConnString())
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	transactionRepo := postgres.NewTransactionRepository(db)
	goalRepo := postgres.NewGoalRepository(db)
	loanRepo := postgres.NewLoanRepository(db)

	balanceService := balance.NewService(transactionRepo, goalRepo)
	shieldService := shield.NewService(transactionRepo, balanceService)
	reallocationService := reallocation.NewService(
		transactionRepo, goalRepo, loanRepo, balanceService, shieldService, logger)
	surplusService := surplus.NewService(goalRepo, loanRepo, shieldService)

	server := httpapi.NewServer(
		httpapi.Config{
			Addr:     ":" + envOr("HTTP_PORT", "8080"),
			APIToken: os.Getenv("API_TOKEN"),
		},
		balanceService,
		shieldService,
		reallocationService,
		surplusService,
		logger,
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Run()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func databaseConnString() string {
	if conn := os.Getenv("DB_CONN_STR"); conn != "" {
		return conn
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		envOr("DB_HOST", "localhost"),
		envOr("DB_PORT", "5432"),
		envOr("DB_USER", "postgres"),
		envOr("DB_PASSWORD", "postgres"),
		envOr("DB_NAME", "finshield"),
		envOr("DB_SSLMODE", "disable"),
	)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
