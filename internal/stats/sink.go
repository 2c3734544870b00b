package stats

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rentclaim/rentclaim/internal/db"
	"github.com/rentclaim/rentclaim/internal/models"
)

// Sink persists settled close outcomes into the transactions table and the
// user, global and referrer aggregates.
type Sink struct {
	database *db.DB
}

// NewSink creates a stats sink over the given database.
func NewSink(database *db.DB) *Sink {
	return &Sink{database: database}
}

// RecordCloseOutcome writes one settled close operation. Each aggregate is
// applied independently; the first failure aborts so a retry re-applies from
// the transaction log if needed.
func (s *Sink) RecordCloseOutcome(ctx context.Context, record models.CloseRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := s.database.InsertCloseTransaction(models.CloseTransaction{
		Signature:         record.Signature,
		Wallet:            record.Wallet,
		AccountsClosed:    record.AccountsClosed,
		ReclaimedLamports: record.ReclaimedLamports,
		FeeLamports:       record.FeeLamports,
		ReferralLamports:  record.ReferralLamports,
		NetLamports:       record.NetLamports,
		Referrer:          record.Referrer,
		BatchCount:        record.BatchCount,
	}); err != nil {
		return fmt.Errorf("record close transaction: %w", err)
	}

	delta := models.StatsDelta{
		AccountsClosed:    record.AccountsClosed,
		ReclaimedLamports: record.ReclaimedLamports,
		FeeLamports:       record.FeeLamports,
		NetLamports:       record.NetLamports,
	}

	if err := s.database.IncrementUserStats(record.Wallet, delta); err != nil {
		return fmt.Errorf("update user stats: %w", err)
	}

	if err := s.database.IncrementGlobalStats(delta); err != nil {
		return fmt.Errorf("update global stats: %w", err)
	}

	if record.Referrer != "" && record.ReferralLamports > 0 {
		if err := s.database.IncrementReferrerStats(record.Referrer, record.ReferralLamports); err != nil {
			return fmt.Errorf("update referrer stats: %w", err)
		}
	}

	slog.Info("close outcome recorded",
		"wallet", record.Wallet,
		"signature", record.Signature,
		"accountsClosed", record.AccountsClosed,
		"reclaimed", record.ReclaimedLamports,
		"referrer", record.Referrer,
	)

	return nil
}
