package closer

import (
	"fmt"

	"github.com/rentclaim/rentclaim/internal/config"
	"github.com/rentclaim/rentclaim/internal/models"
	"github.com/rentclaim/rentclaim/internal/sol"
)

// TransactionPlan is one batch's worth of instructions, ready to be compiled
// against a fresh blockhash and signed.
type TransactionPlan struct {
	BatchIndex   int
	Accounts     []models.CloseableAccount
	Split        models.SettlementSplit
	FeePayer     sol.PublicKey
	Instructions []sol.Instruction

	// ReferralRedirected marks that the referral share is being paid to the
	// fee recipient because the referrer has no funded account on-chain.
	ReferralRedirected bool
}

// BuildPlan sequences the instructions for one batch transaction:
// compute budget limit first, then all closes, then the fee transfer and the
// referral transfer. Reclaimed lamports land on the payer when each close
// executes, so the transfers that follow in the same transaction are funded.
//
// referralRecipient is nil when no referral share is owed. Zero-lamport
// transfers are omitted entirely.
func BuildPlan(
	batchIndex int,
	batch []models.CloseableAccount,
	payer, feeRecipient sol.PublicKey,
	split models.SettlementSplit,
	referralRecipient *sol.PublicKey,
	referralRedirected bool,
) (*TransactionPlan, error) {
	if len(batch) == 0 {
		return nil, config.ErrEmptyBatch
	}

	instructions := make([]sol.Instruction, 0, len(batch)+3)

	units := uint32(config.ComputeUnitBase + config.ComputeUnitPerClose*len(batch))
	instructions = append(instructions, sol.BuildComputeUnitLimitInstruction(units))

	for _, acc := range batch {
		programID, err := tokenProgramFor(acc.OwnerProgram)
		if err != nil {
			return nil, fmt.Errorf("account %s: %w", acc.Address, err)
		}

		accountKey, err := sol.PublicKeyFromBase58(acc.Address)
		if err != nil {
			return nil, fmt.Errorf("parse account address %q: %w", acc.Address, err)
		}

		instructions = append(instructions, sol.BuildCloseAccountInstruction(accountKey, payer, payer, programID))
	}

	if split.FeeLamports > 0 {
		instructions = append(instructions, sol.BuildSystemTransferInstruction(payer, feeRecipient, split.FeeLamports))
	}

	if split.ReferralLamports > 0 && referralRecipient != nil {
		instructions = append(instructions, sol.BuildSystemTransferInstruction(payer, *referralRecipient, split.ReferralLamports))
	}

	return &TransactionPlan{
		BatchIndex:         batchIndex,
		Accounts:           batch,
		Split:              split,
		FeePayer:           payer,
		Instructions:       instructions,
		ReferralRedirected: referralRedirected,
	}, nil
}

// tokenProgramFor maps a scanned owner program ID to a close program key.
// An empty value means the account came from a source that predates program
// tagging and is treated as a legacy token account.
func tokenProgramFor(ownerProgram string) (sol.PublicKey, error) {
	switch ownerProgram {
	case "", config.TokenProgramID:
		return sol.TokenProgram(), nil
	case config.Token2022ProgramID:
		return sol.Token2022Program(), nil
	default:
		return sol.PublicKey{}, fmt.Errorf("%w: %s", config.ErrUnknownTokenProgram, ownerProgram)
	}
}
