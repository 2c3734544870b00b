package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rentclaim/rentclaim/internal/config"
	"github.com/rentclaim/rentclaim/internal/db"
	"github.com/rentclaim/rentclaim/internal/models"
	"github.com/rentclaim/rentclaim/internal/validate"
)

// GlobalStatsHandler handles GET /api/stats/global
func GlobalStatsHandler(database *db.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		stats, err := database.GetGlobalStats()
		if err != nil {
			slog.Error("failed to fetch global stats", "error", err)
			writeError(w, http.StatusInternalServerError, config.ErrorDatabase, "failed to fetch global stats")
			return
		}

		writeJSON(w, http.StatusOK, models.APIResponse{
			Data: stats,
			Meta: &models.APIMeta{
				ExecutionTime: time.Since(start).Milliseconds(),
			},
		})
	}
}

// UserStatsHandler handles GET /api/stats/user/{wallet}
func UserStatsHandler(database *db.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wallet := validate.Sanitize(chi.URLParam(r, "wallet"))

		if !validate.IsAddress(wallet) {
			slog.Warn("invalid wallet parameter", "wallet", wallet)
			writeError(w, http.StatusBadRequest, config.ErrorInvalidAddress, "invalid wallet address: "+wallet)
			return
		}

		stats, err := database.GetUserStats(wallet)
		if err != nil {
			if errors.Is(err, config.ErrNoSuchStats) {
				writeError(w, http.StatusNotFound, config.ErrorNotFound, "no stats for wallet "+wallet)
				return
			}
			slog.Error("failed to fetch user stats", "wallet", wallet, "error", err)
			writeError(w, http.StatusInternalServerError, config.ErrorDatabase, "failed to fetch user stats")
			return
		}

		writeJSON(w, http.StatusOK, models.APIResponse{
			Data: stats,
			Meta: &models.APIMeta{
				ExecutionTime: time.Since(start).Milliseconds(),
			},
		})
	}
}

// LeaderboardHandler handles GET /api/leaderboard
func LeaderboardHandler(database *db.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		limit := parseIntParam(r, "limit", config.DefaultLeaderboardLimit)
		if limit < 1 {
			limit = config.DefaultLeaderboardLimit
		}
		if limit > config.MaxLeaderboardLimit {
			limit = config.MaxLeaderboardLimit
		}

		entries, err := database.GetLeaderboard(limit)
		if err != nil {
			slog.Error("failed to fetch leaderboard", "error", err)
			writeError(w, http.StatusInternalServerError, config.ErrorDatabase, "failed to fetch leaderboard")
			return
		}

		if entries == nil {
			entries = []models.UserStats{}
		}

		writeJSON(w, http.StatusOK, models.APIResponse{
			Data: entries,
			Meta: &models.APIMeta{
				ExecutionTime: time.Since(start).Milliseconds(),
			},
		})
	}
}
