// Command reclaim is a one-shot CLI: scan the keypair's wallet for empty
// token accounts and close them, printing the settlement summary as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rentclaim/rentclaim/internal/closer"
	"github.com/rentclaim/rentclaim/internal/config"
	"github.com/rentclaim/rentclaim/internal/db"
	"github.com/rentclaim/rentclaim/internal/logging"
	"github.com/rentclaim/rentclaim/internal/scanner"
	"github.com/rentclaim/rentclaim/internal/sol"
	"github.com/rentclaim/rentclaim/internal/stats"
)

func main() {
	if err := run(); err != nil {
		slog.Error("reclaim failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	fs := flag.NewFlagSet("reclaim", flag.ExitOnError)
	referrer := fs.String("referrer", "", "Referrer wallet address (optional)")
	dryRun := fs.Bool("dry-run", false, "Scan and report without closing anything")
	keypairFile := fs.String("keypair", "", "Keypair file (default: from RENTCLAIM_KEYPAIR_FILE)")
	fs.Parse(os.Args[1:])

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logCloser, err := logging.Setup(cfg.LogLevel, cfg.LogDir)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	defer logCloser.Close()

	if *keypairFile != "" {
		cfg.KeypairFile = *keypairFile
	}
	if cfg.KeypairFile == "" {
		return fmt.Errorf("--keypair is required (or set RENTCLAIM_KEYPAIR_FILE)")
	}

	signer, err := closer.NewKeypairSigner(cfg.KeypairFile)
	if err != nil {
		return fmt.Errorf("load keypair: %w", err)
	}
	wallet := signer.PublicKey().ToBase58()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	httpClient := &http.Client{Timeout: config.RPCTimeout}
	rpcClient := sol.NewClient(httpClient, cfg.ResolvedRPCURLs())

	accounts, err := scanner.NewScanner(rpcClient).Scan(ctx, wallet)
	if err != nil {
		return fmt.Errorf("scan wallet: %w", err)
	}

	slog.Info("scan complete",
		"wallet", wallet,
		"closeable", len(accounts),
		"reclaimableLamports", scanner.TotalReclaimable(accounts),
	)

	if *dryRun {
		return printJSON(map[string]interface{}{
			"wallet":              wallet,
			"accounts":            accounts,
			"count":               len(accounts),
			"reclaimableLamports": scanner.TotalReclaimable(accounts),
		})
	}

	database, err := db.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer database.Close()

	if err := database.RunMigrations(); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	executor := closer.NewBatchExecutor(rpcClient)
	orchestrator := closer.NewOrchestrator(rpcClient, executor, stats.NewSink(database), closer.Settings{
		FeeRecipient:       cfg.FeeRecipient,
		ServiceFeePercent:  cfg.ServiceFeePercent,
		ReferralFeePercent: cfg.ReferralFeePercent,
		MaxBatchSize:       cfg.MaxBatchSize,
	})

	summary, err := orchestrator.CloseAccounts(ctx, accounts, signer, *referrer)
	if err != nil {
		return fmt.Errorf("close accounts: %w", err)
	}

	if err := printJSON(summary); err != nil {
		return err
	}

	if !summary.Success {
		return fmt.Errorf("close stopped early: %s", summary.FailureReason)
	}
	return nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
