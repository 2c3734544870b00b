package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rentclaim/rentclaim/internal/config"
	"github.com/rentclaim/rentclaim/internal/models"
	"github.com/rentclaim/rentclaim/internal/sol"
	"github.com/rentclaim/rentclaim/internal/validate"
)

// Scanner finds empty token accounts whose rent deposit can be reclaimed.
type Scanner struct {
	client sol.RPCClient
}

// NewScanner creates a scanner over the given RPC client.
func NewScanner(client sol.RPCClient) *Scanner {
	return &Scanner{client: client}
}

// Scan lists all closeable token accounts owned by wallet: accounts under the
// legacy token program or Token-2022 with a zero token balance. The rent
// deposit of each is what closing reclaims.
//
// Token-2022 coverage is best-effort: some RPC providers reject the program
// filter, in which case the legacy results are returned with a warning.
func (s *Scanner) Scan(ctx context.Context, wallet string) ([]models.CloseableAccount, error) {
	if !validate.IsAddress(wallet) {
		return nil, fmt.Errorf("%w: %q", config.ErrInvalidAddress, wallet)
	}

	start := time.Now()

	legacy, err := s.client.GetTokenAccountsByOwner(ctx, wallet, config.TokenProgramID)
	if err != nil {
		return nil, fmt.Errorf("scan token accounts: %w", err)
	}

	token2022, err := s.client.GetTokenAccountsByOwner(ctx, wallet, config.Token2022ProgramID)
	if err != nil {
		slog.Warn("token-2022 scan failed, continuing with legacy accounts",
			"wallet", wallet,
			"error", err,
		)
		token2022 = nil
	}

	all := append(legacy, token2022...)

	closeable := make([]models.CloseableAccount, 0, len(all))
	for _, acc := range all {
		// Only empty accounts can be closed; a non-zero token balance
		// would be burned by CloseAccount and the program rejects it.
		if acc.Amount != "0" {
			continue
		}
		closeable = append(closeable, models.CloseableAccount{
			Address:             acc.Address,
			Mint:                acc.Mint,
			ReclaimableLamports: acc.Lamports,
			OwnerProgram:        acc.Program,
		})
	}

	slog.Info("wallet scan complete",
		"wallet", wallet,
		"tokenAccounts", len(all),
		"closeable", len(closeable),
		"duration", time.Since(start).Round(time.Millisecond),
	)

	return closeable, nil
}

// TotalReclaimable sums the rent deposits across closeable accounts.
func TotalReclaimable(accounts []models.CloseableAccount) uint64 {
	var total uint64
	for _, acc := range accounts {
		total += acc.ReclaimableLamports
	}
	return total
}
