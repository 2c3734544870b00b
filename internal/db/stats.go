package db

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rentclaim/rentclaim/internal/config"
	"github.com/rentclaim/rentclaim/internal/models"
)

// IncrementUserStats applies one settled operation's totals to a wallet's
// accumulated stats, creating the row on first use.
func (d *DB) IncrementUserStats(wallet string, delta models.StatsDelta) error {
	slog.Debug("incrementing user stats",
		"wallet", wallet,
		"accountsClosed", delta.AccountsClosed,
		"reclaimed", delta.ReclaimedLamports,
	)

	_, err := d.conn.Exec(
		`INSERT INTO user_stats (wallet_address, total_accounts_closed, total_lamports_reclaimed,
		                         total_fees_paid, total_net_received, transaction_count,
		                         first_transaction_at, last_transaction_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, 1, datetime('now'), datetime('now'), datetime('now'))
		 ON CONFLICT(wallet_address) DO UPDATE SET
		     total_accounts_closed    = total_accounts_closed + excluded.total_accounts_closed,
		     total_lamports_reclaimed = total_lamports_reclaimed + excluded.total_lamports_reclaimed,
		     total_fees_paid          = total_fees_paid + excluded.total_fees_paid,
		     total_net_received       = total_net_received + excluded.total_net_received,
		     transaction_count        = transaction_count + 1,
		     last_transaction_at      = datetime('now'),
		     updated_at               = datetime('now')`,
		wallet, delta.AccountsClosed, delta.ReclaimedLamports, delta.FeeLamports, delta.NetLamports,
	)
	if err != nil {
		return fmt.Errorf("increment user stats for %s: %w", wallet, err)
	}

	return nil
}

// IncrementGlobalStats applies one settled operation's totals to the
// site-wide row. total_users is recomputed from user_stats so retries
// cannot double count a wallet.
func (d *DB) IncrementGlobalStats(delta models.StatsDelta) error {
	slog.Debug("incrementing global stats",
		"accountsClosed", delta.AccountsClosed,
		"reclaimed", delta.ReclaimedLamports,
	)

	_, err := d.conn.Exec(
		`UPDATE global_stats SET
		     total_accounts_closed    = total_accounts_closed + ?,
		     total_lamports_reclaimed = total_lamports_reclaimed + ?,
		     total_fees_paid          = total_fees_paid + ?,
		     total_transactions       = total_transactions + 1,
		     total_users              = (SELECT COUNT(*) FROM user_stats),
		     updated_at               = datetime('now')
		 WHERE id = 1`,
		delta.AccountsClosed, delta.ReclaimedLamports, delta.FeeLamports,
	)
	if err != nil {
		return fmt.Errorf("increment global stats: %w", err)
	}

	return nil
}

// IncrementReferrerStats credits a referral payout to the referrer's stats row.
func (d *DB) IncrementReferrerStats(referrer string, lamports uint64) error {
	slog.Debug("incrementing referrer stats",
		"referrer", referrer,
		"lamports", lamports,
	)

	_, err := d.conn.Exec(
		`INSERT INTO user_stats (wallet_address, referral_lamports, referral_count, updated_at)
		 VALUES (?, ?, 1, datetime('now'))
		 ON CONFLICT(wallet_address) DO UPDATE SET
		     referral_lamports = referral_lamports + excluded.referral_lamports,
		     referral_count    = referral_count + 1,
		     updated_at        = datetime('now')`,
		referrer, lamports,
	)
	if err != nil {
		return fmt.Errorf("increment referrer stats for %s: %w", referrer, err)
	}

	return nil
}

// GetUserStats returns a wallet's accumulated stats.
// Returns ErrNoSuchStats when the wallet has no recorded activity.
func (d *DB) GetUserStats(wallet string) (*models.UserStats, error) {
	var stats models.UserStats
	var first, last sql.NullString

	err := d.conn.QueryRow(
		`SELECT wallet_address, total_accounts_closed, total_lamports_reclaimed,
		        total_fees_paid, total_net_received, transaction_count,
		        referral_lamports, referral_count, first_transaction_at, last_transaction_at
		 FROM user_stats WHERE wallet_address = ?`,
		wallet,
	).Scan(
		&stats.Wallet, &stats.TotalAccountsClosed, &stats.TotalLamportsReclaimed,
		&stats.TotalFeesPaid, &stats.TotalNetReceived, &stats.TransactionCount,
		&stats.ReferralLamports, &stats.ReferralCount, &first, &last,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", config.ErrNoSuchStats, wallet)
	}
	if err != nil {
		return nil, fmt.Errorf("get user stats for %s: %w", wallet, err)
	}

	if first.Valid {
		stats.FirstTransactionAt = first.String
	}
	if last.Valid {
		stats.LastTransactionAt = last.String
	}

	return &stats, nil
}

// GetGlobalStats returns the site-wide totals.
func (d *DB) GetGlobalStats() (*models.GlobalStats, error) {
	var stats models.GlobalStats

	err := d.conn.QueryRow(
		`SELECT total_accounts_closed, total_lamports_reclaimed, total_fees_paid,
		        total_transactions, total_users, updated_at
		 FROM global_stats WHERE id = 1`,
	).Scan(
		&stats.TotalAccountsClosed, &stats.TotalLamportsReclaimed, &stats.TotalFeesPaid,
		&stats.TotalTransactions, &stats.TotalUsers, &stats.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("get global stats: %w", err)
	}

	return &stats, nil
}

// GetLeaderboard returns the top wallets by total lamports reclaimed.
func (d *DB) GetLeaderboard(limit int) ([]models.UserStats, error) {
	rows, err := d.conn.Query(
		`SELECT wallet_address, total_accounts_closed, total_lamports_reclaimed,
		        total_fees_paid, total_net_received, transaction_count,
		        referral_lamports, referral_count
		 FROM user_stats
		 ORDER BY total_lamports_reclaimed DESC, wallet_address ASC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []models.UserStats
	for rows.Next() {
		var stats models.UserStats
		if err := rows.Scan(
			&stats.Wallet, &stats.TotalAccountsClosed, &stats.TotalLamportsReclaimed,
			&stats.TotalFeesPaid, &stats.TotalNetReceived, &stats.TransactionCount,
			&stats.ReferralLamports, &stats.ReferralCount,
		); err != nil {
			return nil, fmt.Errorf("scan leaderboard row: %w", err)
		}
		entries = append(entries, stats)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leaderboard rows: %w", err)
	}

	return entries, nil
}
