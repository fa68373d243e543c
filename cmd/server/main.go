package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"

	"droneWatch/internal/api"
	"droneWatch/internal/auth"
	"droneWatch/internal/config"
	"droneWatch/internal/db"
	"droneWatch/internal/logger"
	"droneWatch/repository"
)

func main() {
	// Load .env if present so os.Getenv picks values from it; best-effort.
	_ = godotenv.Load()

	lg, err := logger.Init(logger.ConfigFromEnv())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()
	sugar := lg.Sugar()

	cfg, err := config.Load()
	if err != nil {
		sugar.Fatalf("load config: %v", err)
	}
	sugar.Infof("configuration loaded: %v", cfg)

	d, err := db.Open(cfg.Database.Path)
	if err != nil {
		sugar.Fatalf("open db: %v", err)
	}
	sqlxDB := sqlx.NewDb(d, "sqlite3")
	defer sqlxDB.Close()

	accounts := repository.NewAccountRepository(sqlxDB)
	drones := repository.NewDroneRepository(sqlxDB)
	tokens := auth.NewTokenService(cfg.Auth.JWTSecret)

	handler := api.New(sugar, accounts, drones, tokens, cfg.HTTP.Production)
	srv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: handler,
	}

	go func() {
		sugar.Infof("http server listening on %s", cfg.HTTP.Address)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalf("http server failed: %v", err)
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc

	sugar.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		sugar.Warnf("http server shutdown failed: %v", err)
	}
}
