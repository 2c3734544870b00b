package sol

import (
	"encoding/binary"
	"testing"

	"github.com/rentclaim/rentclaim/internal/config"
)

func TestBuildComputeUnitLimitInstruction(t *testing.T) {
	ix := BuildComputeUnitLimitInstruction(400_000)

	if ix.ProgramID.ToBase58() != config.ComputeBudgetProgramID {
		t.Errorf("programID = %s, want compute budget program", ix.ProgramID.ToBase58())
	}
	if len(ix.Accounts) != 0 {
		t.Errorf("accounts = %d, want 0", len(ix.Accounts))
	}
	if len(ix.Data) != 5 || ix.Data[0] != 2 {
		t.Fatalf("data = %v, want 5 bytes starting with discriminator 2", ix.Data)
	}
	if got := binary.LittleEndian.Uint32(ix.Data[1:5]); got != 400_000 {
		t.Errorf("units = %d, want 400000", got)
	}
}

func TestBuildSystemTransferInstruction(t *testing.T) {
	from := keyFromByte(1)
	to := keyFromByte(2)

	ix := BuildSystemTransferInstruction(from, to, 123_456_789)

	if ix.ProgramID.ToBase58() != config.SystemProgramID {
		t.Errorf("programID = %s, want system program", ix.ProgramID.ToBase58())
	}
	if len(ix.Data) != 12 {
		t.Fatalf("data length = %d, want 12", len(ix.Data))
	}
	if got := binary.LittleEndian.Uint32(ix.Data[0:4]); got != 2 {
		t.Errorf("variant = %d, want 2 (Transfer)", got)
	}
	if got := binary.LittleEndian.Uint64(ix.Data[4:12]); got != 123_456_789 {
		t.Errorf("lamports = %d, want 123456789", got)
	}

	if !ix.Accounts[0].IsSigner || !ix.Accounts[0].IsWritable {
		t.Error("source must be a writable signer")
	}
	if ix.Accounts[1].IsSigner || !ix.Accounts[1].IsWritable {
		t.Error("destination must be writable, not a signer")
	}
}

func TestBuildCloseAccountInstruction(t *testing.T) {
	account := keyFromByte(1)
	dest := keyFromByte(2)
	owner := keyFromByte(3)

	for _, program := range []PublicKey{TokenProgram(), Token2022Program()} {
		ix := BuildCloseAccountInstruction(account, dest, owner, program)

		if ix.ProgramID != program {
			t.Errorf("programID = %s, want %s", ix.ProgramID.ToBase58(), program.ToBase58())
		}
		if len(ix.Data) != 1 || ix.Data[0] != 9 {
			t.Errorf("data = %v, want CloseAccount discriminator [9]", ix.Data)
		}
		if len(ix.Accounts) != 3 {
			t.Fatalf("accounts = %d, want 3", len(ix.Accounts))
		}
		if !ix.Accounts[0].IsWritable || ix.Accounts[0].IsSigner {
			t.Error("closed account must be writable, not a signer")
		}
		if !ix.Accounts[1].IsWritable {
			t.Error("rent destination must be writable")
		}
		if !ix.Accounts[2].IsSigner || ix.Accounts[2].IsWritable {
			t.Error("owner must be a readonly signer")
		}
	}
}
