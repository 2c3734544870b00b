package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/rentclaim/rentclaim/internal/closer"
	"github.com/rentclaim/rentclaim/internal/config"
	"github.com/rentclaim/rentclaim/internal/models"
)

// CloseService runs the close pipeline for a set of accounts.
type CloseService interface {
	CloseAccounts(ctx context.Context, accounts []models.CloseableAccount, signer closer.Signer, referrer string) (*models.CloseSummary, error)
}

// CloseDeps bundles what the close endpoint needs. The mutex serializes close
// operations: running two concurrently would double-spend the same accounts.
type CloseDeps struct {
	Scanner WalletScanner
	Service CloseService
	Signer  closer.Signer

	mu sync.Mutex
}

// closeRequest is the body of POST /api/close.
type closeRequest struct {
	Referrer    string `json:"referrer,omitempty"`
	MaxAccounts int    `json:"maxAccounts,omitempty"`
}

// CloseHandler handles POST /api/close: scan the service wallet's closeable
// accounts and close them, settling fees and referral per configuration.
func CloseHandler(deps *CloseDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		if deps.Signer == nil {
			writeError(w, http.StatusServiceUnavailable, config.ErrorSignerUnavailable,
				"no signing keypair configured")
			return
		}

		if !deps.mu.TryLock() {
			slog.Warn("close rejected, another close in progress", "remoteAddr", r.RemoteAddr)
			writeError(w, http.StatusConflict, config.ErrorCloseInProgress,
				"a close operation is already running")
			return
		}
		defer deps.mu.Unlock()

		var req closeRequest
		if r.Body != nil {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err.Error() != "EOF" {
				writeError(w, http.StatusBadRequest, config.ErrorBadRequest, "invalid request body: "+err.Error())
				return
			}
		}

		wallet := deps.Signer.PublicKey().ToBase58()

		slog.Info("close requested",
			"wallet", wallet,
			"referrer", req.Referrer,
			"maxAccounts", req.MaxAccounts,
			"remoteAddr", r.RemoteAddr,
		)

		accounts, err := deps.Scanner.Scan(r.Context(), wallet)
		if err != nil {
			slog.Error("close scan failed", "wallet", wallet, "error", err)
			writeError(w, http.StatusBadGateway, config.ErrorScanFailed, "scan failed: "+err.Error())
			return
		}

		if req.MaxAccounts > 0 && len(accounts) > req.MaxAccounts {
			accounts = accounts[:req.MaxAccounts]
		}

		summary, err := deps.Service.CloseAccounts(r.Context(), accounts, deps.Signer, req.Referrer)
		if err != nil {
			slog.Error("close failed", "wallet", wallet, "error", err)
			writeError(w, http.StatusInternalServerError, config.ErrorCloseFailed, "close failed: "+err.Error())
			return
		}

		writeJSON(w, http.StatusOK, models.APIResponse{
			Data: summary,
			Meta: &models.APIMeta{
				ExecutionTime: time.Since(start).Milliseconds(),
			},
		})
	}
}
