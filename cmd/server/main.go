package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rentclaim/rentclaim/internal/api"
	"github.com/rentclaim/rentclaim/internal/api/handlers"
	"github.com/rentclaim/rentclaim/internal/closer"
	"github.com/rentclaim/rentclaim/internal/config"
	"github.com/rentclaim/rentclaim/internal/db"
	"github.com/rentclaim/rentclaim/internal/logging"
	"github.com/rentclaim/rentclaim/internal/scanner"
	"github.com/rentclaim/rentclaim/internal/sol"
	"github.com/rentclaim/rentclaim/internal/stats"
)

var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		if err := runServe(); err != nil {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	case "version":
		fmt.Printf("rentclaim %s\n", version)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: rentclaim <command>

Commands:
  serve     Start the HTTP server
  version   Print version information
`)
}

func runServe() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logCloser, err := logging.Setup(cfg.LogLevel, cfg.LogDir)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	defer logCloser.Close()

	slog.Info("starting rentclaim",
		"version", version,
		"network", cfg.Network,
		"port", cfg.Port,
		"dbPath", cfg.DBPath,
		"logLevel", cfg.LogLevel,
	)

	database, err := db.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	if err := database.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	slog.Info("database ready", "path", cfg.DBPath)

	httpClient := &http.Client{Timeout: config.RPCTimeout}
	rpcClient := sol.NewClient(httpClient, cfg.ResolvedRPCURLs())

	sc := scanner.NewScanner(rpcClient)

	// A signer is optional: without one the scan and stats endpoints still
	// work, only POST /api/close is unavailable.
	var signer closer.Signer
	if cfg.KeypairFile != "" {
		ks, err := closer.NewKeypairSigner(cfg.KeypairFile)
		if err != nil {
			return fmt.Errorf("failed to load keypair: %w", err)
		}
		signer = ks
		slog.Info("signing keypair loaded", "wallet", ks.PublicKey().ToBase58())
	} else {
		slog.Warn("no keypair configured, close endpoint disabled")
	}

	sink := stats.NewSink(database)
	executor := closer.NewBatchExecutor(rpcClient)
	orchestrator := closer.NewOrchestrator(rpcClient, executor, sink, closer.Settings{
		FeeRecipient:       cfg.FeeRecipient,
		ServiceFeePercent:  cfg.ServiceFeePercent,
		ReferralFeePercent: cfg.ReferralFeePercent,
		MaxBatchSize:       cfg.MaxBatchSize,
	})

	closeDeps := &handlers.CloseDeps{
		Scanner: sc,
		Service: orchestrator,
		Signer:  signer,
	}

	router := api.NewRouter(database, cfg, closeDeps)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", "error", err)
			os.Exit(1)
		}
	}()

	<-done
	slog.Info("initiating graceful shutdown", "timeout", config.ShutdownTimeout)

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
