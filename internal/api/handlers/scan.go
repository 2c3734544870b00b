package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rentclaim/rentclaim/internal/config"
	"github.com/rentclaim/rentclaim/internal/models"
	"github.com/rentclaim/rentclaim/internal/scanner"
	"github.com/rentclaim/rentclaim/internal/validate"
)

// WalletScanner lists a wallet's closeable token accounts.
type WalletScanner interface {
	Scan(ctx context.Context, wallet string) ([]models.CloseableAccount, error)
}

// ScanResponse is the payload of GET /api/scan/{wallet}.
type ScanResponse struct {
	Wallet              string                    `json:"wallet"`
	Accounts            []models.CloseableAccount `json:"accounts"`
	Count               int                       `json:"count"`
	ReclaimableLamports uint64                    `json:"reclaimableLamports"`
}

// ScanHandler handles GET /api/scan/{wallet}
func ScanHandler(sc WalletScanner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wallet := validate.Sanitize(chi.URLParam(r, "wallet"))

		slog.Info("scan requested",
			"wallet", wallet,
			"remoteAddr", r.RemoteAddr,
		)

		if !validate.IsAddress(wallet) {
			slog.Warn("invalid wallet parameter", "wallet", wallet)
			writeError(w, http.StatusBadRequest, config.ErrorInvalidAddress, "invalid wallet address: "+wallet)
			return
		}

		accounts, err := sc.Scan(r.Context(), wallet)
		if err != nil {
			slog.Error("scan failed", "wallet", wallet, "error", err)
			writeError(w, http.StatusBadGateway, config.ErrorScanFailed, "scan failed: "+err.Error())
			return
		}

		if accounts == nil {
			accounts = []models.CloseableAccount{}
		}

		writeJSON(w, http.StatusOK, models.APIResponse{
			Data: ScanResponse{
				Wallet:              wallet,
				Accounts:            accounts,
				Count:               len(accounts),
				ReclaimableLamports: scanner.TotalReclaimable(accounts),
			},
			Meta: &models.APIMeta{
				ExecutionTime: time.Since(start).Milliseconds(),
			},
		})
	}
}
