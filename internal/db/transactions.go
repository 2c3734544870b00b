package db

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/rentclaim/rentclaim/internal/models"
)

// InsertCloseTransaction inserts a settled close operation and returns the auto-generated ID.
func (d *DB) InsertCloseTransaction(tx models.CloseTransaction) (int64, error) {
	slog.Debug("inserting close transaction",
		"signature", tx.Signature,
		"wallet", tx.Wallet,
		"accountsClosed", tx.AccountsClosed,
		"reclaimed", tx.ReclaimedLamports,
	)

	var referrer interface{}
	if tx.Referrer != "" {
		referrer = tx.Referrer
	}

	result, err := d.conn.Exec(
		`INSERT INTO transactions (signature, wallet_address, accounts_closed, lamports_reclaimed,
		                           fee_lamports, referral_lamports, net_lamports, referrer_address, batch_count)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.Signature,
		tx.Wallet,
		tx.AccountsClosed,
		tx.ReclaimedLamports,
		tx.FeeLamports,
		tx.ReferralLamports,
		tx.NetLamports,
		referrer,
		tx.BatchCount,
	)
	if err != nil {
		return 0, fmt.Errorf("insert close transaction: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get last insert id: %w", err)
	}

	slog.Info("close transaction recorded",
		"id", id,
		"signature", tx.Signature,
		"wallet", tx.Wallet,
	)

	return id, nil
}

// ListWalletTransactions returns a wallet's close operations, newest first.
func (d *DB) ListWalletTransactions(wallet string, page, pageSize int) ([]models.CloseTransaction, int64, error) {
	offset := (page - 1) * pageSize

	slog.Debug("listing wallet transactions",
		"wallet", wallet,
		"page", page,
		"pageSize", pageSize,
	)

	var total int64
	if err := d.conn.QueryRow(
		"SELECT COUNT(*) FROM transactions WHERE wallet_address = ?", wallet,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count wallet transactions: %w", err)
	}

	rows, err := d.conn.Query(
		`SELECT id, signature, wallet_address, accounts_closed, lamports_reclaimed,
		        fee_lamports, referral_lamports, net_lamports, referrer_address, batch_count, created_at
		 FROM transactions WHERE wallet_address = ? ORDER BY id DESC LIMIT ? OFFSET ?`,
		wallet, pageSize, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("query wallet transactions: %w", err)
	}
	defer rows.Close()

	var txs []models.CloseTransaction
	for rows.Next() {
		var tx models.CloseTransaction
		var referrer sql.NullString

		if err := rows.Scan(
			&tx.ID, &tx.Signature, &tx.Wallet, &tx.AccountsClosed, &tx.ReclaimedLamports,
			&tx.FeeLamports, &tx.ReferralLamports, &tx.NetLamports, &referrer, &tx.BatchCount, &tx.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan transaction row: %w", err)
		}

		if referrer.Valid {
			tx.Referrer = referrer.String
		}

		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate transaction rows: %w", err)
	}

	return txs, total, nil
}
