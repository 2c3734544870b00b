package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rentclaim/rentclaim/internal/config"
	"github.com/rentclaim/rentclaim/internal/db"
	"github.com/rentclaim/rentclaim/internal/models"
	"github.com/rentclaim/rentclaim/internal/validate"
)

// WalletTransactionsHandler handles GET /api/transactions/{wallet}
func WalletTransactionsHandler(database *db.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wallet := validate.Sanitize(chi.URLParam(r, "wallet"))

		if !validate.IsAddress(wallet) {
			slog.Warn("invalid wallet parameter", "wallet", wallet)
			writeError(w, http.StatusBadRequest, config.ErrorInvalidAddress, "invalid wallet address: "+wallet)
			return
		}

		page := parseIntParam(r, "page", 1)
		pageSize := parseIntParam(r, "pageSize", config.DefaultPageSize)

		if page < 1 {
			page = 1
		}
		if pageSize < 1 {
			pageSize = config.DefaultPageSize
		}
		if pageSize > config.MaxPageSize {
			pageSize = config.MaxPageSize
		}

		txs, total, err := database.ListWalletTransactions(wallet, page, pageSize)
		if err != nil {
			slog.Error("failed to list transactions", "wallet", wallet, "error", err)
			writeError(w, http.StatusInternalServerError, config.ErrorDatabase, "failed to list transactions")
			return
		}

		if txs == nil {
			txs = []models.CloseTransaction{}
		}

		writeJSON(w, http.StatusOK, models.APIResponse{
			Data: txs,
			Meta: &models.APIMeta{
				Page:          page,
				PageSize:      pageSize,
				Total:         total,
				ExecutionTime: time.Since(start).Milliseconds(),
			},
		})
	}
}
