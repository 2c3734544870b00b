package closer

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/mr-tron/base58"

	"github.com/rentclaim/rentclaim/internal/config"
	"github.com/rentclaim/rentclaim/internal/models"
	"github.com/rentclaim/rentclaim/internal/sol"
)

// testAddress returns a deterministic valid base58 address for a seed byte.
func testAddress(seed byte) string {
	var b [32]byte
	for i := range b {
		b[i] = seed
	}
	return base58.Encode(b[:])
}

func testPubKey(seed byte) sol.PublicKey {
	pk, err := sol.PublicKeyFromBase58(testAddress(seed))
	if err != nil {
		panic(err)
	}
	return pk
}

func closeableAccounts(n int, program string) []models.CloseableAccount {
	accounts := make([]models.CloseableAccount, n)
	for i := range accounts {
		accounts[i] = models.CloseableAccount{
			Address:             testAddress(byte(100 + i)),
			Mint:                testAddress(99),
			ReclaimableLamports: config.TokenAccountRentLamports,
			OwnerProgram:        program,
		}
	}
	return accounts
}

func TestBuildPlanInstructionSequence(t *testing.T) {
	batch := closeableAccounts(3, config.TokenProgramID)
	split := models.SettlementSplit{
		TotalLamports:    3 * config.TokenAccountRentLamports,
		FeeLamports:      1_223_568,
		ReferralLamports: 611_784,
		NetLamports:      3*config.TokenAccountRentLamports - 1_223_568 - 611_784,
	}
	payer := testPubKey(1)
	feeRecipient := testPubKey(2)
	referral := testPubKey(3)

	plan, err := BuildPlan(0, batch, payer, feeRecipient, split, &referral, false)
	if err != nil {
		t.Fatalf("BuildPlan error = %v", err)
	}

	// compute budget + 3 closes + fee transfer + referral transfer
	if len(plan.Instructions) != 6 {
		t.Fatalf("instruction count = %d, want 6", len(plan.Instructions))
	}

	// Compute budget instruction comes first.
	first := plan.Instructions[0]
	if first.Data[0] != 2 {
		t.Errorf("first instruction discriminator = %d, want 2 (SetComputeUnitLimit)", first.Data[0])
	}
	wantUnits := uint32(config.ComputeUnitBase + 3*config.ComputeUnitPerClose)
	if got := binary.LittleEndian.Uint32(first.Data[1:5]); got != wantUnits {
		t.Errorf("compute unit limit = %d, want %d", got, wantUnits)
	}

	// Closes precede transfers.
	for i := 1; i <= 3; i++ {
		ix := plan.Instructions[i]
		if len(ix.Data) != 1 || ix.Data[0] != 9 {
			t.Errorf("instruction %d data = %v, want CloseAccount discriminator [9]", i, ix.Data)
		}
		if len(ix.Accounts) != 3 {
			t.Fatalf("close instruction %d has %d accounts, want 3", i, len(ix.Accounts))
		}
		if ix.Accounts[1].PubKey != payer || ix.Accounts[2].PubKey != payer {
			t.Errorf("close instruction %d must send rent to the payer and be signed by it", i)
		}
		if !ix.Accounts[2].IsSigner {
			t.Errorf("close instruction %d owner must be a signer", i)
		}
	}

	// Fee transfer then referral transfer, both SystemProgram.Transfer.
	feeIx := plan.Instructions[4]
	if got := binary.LittleEndian.Uint64(feeIx.Data[4:12]); got != split.FeeLamports {
		t.Errorf("fee transfer lamports = %d, want %d", got, split.FeeLamports)
	}
	if feeIx.Accounts[1].PubKey != feeRecipient {
		t.Error("fee transfer destination is not the fee recipient")
	}

	refIx := plan.Instructions[5]
	if got := binary.LittleEndian.Uint64(refIx.Data[4:12]); got != split.ReferralLamports {
		t.Errorf("referral transfer lamports = %d, want %d", got, split.ReferralLamports)
	}
	if refIx.Accounts[1].PubKey != referral {
		t.Error("referral transfer destination is not the referrer")
	}
}

func TestBuildPlanOmitsZeroTransfers(t *testing.T) {
	batch := closeableAccounts(2, config.TokenProgramID)
	split := models.SettlementSplit{
		TotalLamports: 2 * config.TokenAccountRentLamports,
		NetLamports:   2 * config.TokenAccountRentLamports,
	}

	plan, err := BuildPlan(0, batch, testPubKey(1), testPubKey(2), split, nil, false)
	if err != nil {
		t.Fatalf("BuildPlan error = %v", err)
	}

	// compute budget + 2 closes only
	if len(plan.Instructions) != 3 {
		t.Errorf("instruction count = %d, want 3", len(plan.Instructions))
	}
}

func TestBuildPlanToken2022(t *testing.T) {
	batch := closeableAccounts(1, config.Token2022ProgramID)
	split := models.SettlementSplit{TotalLamports: config.TokenAccountRentLamports}

	plan, err := BuildPlan(0, batch, testPubKey(1), testPubKey(2), split, nil, false)
	if err != nil {
		t.Fatalf("BuildPlan error = %v", err)
	}

	closeIx := plan.Instructions[1]
	if closeIx.ProgramID != sol.Token2022Program() {
		t.Errorf("close program = %s, want token-2022", closeIx.ProgramID.ToBase58())
	}
}

func TestBuildPlanLegacyDefaultProgram(t *testing.T) {
	batch := closeableAccounts(1, "")
	split := models.SettlementSplit{TotalLamports: config.TokenAccountRentLamports}

	plan, err := BuildPlan(0, batch, testPubKey(1), testPubKey(2), split, nil, false)
	if err != nil {
		t.Fatalf("BuildPlan error = %v", err)
	}

	if plan.Instructions[1].ProgramID != sol.TokenProgram() {
		t.Error("empty owner program should default to the legacy token program")
	}
}

func TestBuildPlanUnknownProgram(t *testing.T) {
	batch := closeableAccounts(1, testAddress(77))
	split := models.SettlementSplit{TotalLamports: config.TokenAccountRentLamports}

	_, err := BuildPlan(0, batch, testPubKey(1), testPubKey(2), split, nil, false)
	if !errors.Is(err, config.ErrUnknownTokenProgram) {
		t.Errorf("error = %v, want ErrUnknownTokenProgram", err)
	}
}

func TestBuildPlanEmptyBatch(t *testing.T) {
	split := models.SettlementSplit{}
	if _, err := BuildPlan(0, nil, testPubKey(1), testPubKey(2), split, nil, false); !errors.Is(err, config.ErrEmptyBatch) {
		t.Errorf("error = %v, want ErrEmptyBatch", err)
	}
}
