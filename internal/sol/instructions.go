package sol

import "encoding/binary"

// BuildComputeUnitLimitInstruction creates a ComputeBudget.SetComputeUnitLimit instruction.
// Data: [u8: 2 (SetComputeUnitLimit variant)] [u32 LE: units] = 5 bytes. No accounts.
func BuildComputeUnitLimitInstruction(units uint32) Instruction {
	data := make([]byte, 5)
	data[0] = 2 // SetComputeUnitLimit = variant index 2
	binary.LittleEndian.PutUint32(data[1:5], units)

	return Instruction{
		ProgramID: computeBudgetProgramID,
		Accounts:  nil,
		Data:      data,
	}
}

// BuildSystemTransferInstruction creates a SystemProgram.Transfer instruction.
// Data: [u32 LE: 2 (Transfer variant)] [u64 LE: lamports] = 12 bytes.
func BuildSystemTransferInstruction(from, to PublicKey, lamports uint64) Instruction {
	data := make([]byte, 12)
	binary.LittleEndian.PutUint32(data[0:4], 2) // Transfer = variant index 2
	binary.LittleEndian.PutUint64(data[4:12], lamports)

	return Instruction{
		ProgramID: systemProgramID,
		Accounts: []AccountMeta{
			{PubKey: from, IsSigner: true, IsWritable: true},
			{PubKey: to, IsSigner: false, IsWritable: true},
		},
		Data: data,
	}
}

// BuildCloseAccountInstruction creates an SPL Token.CloseAccount instruction.
// Data: [u8: 9 (CloseAccount variant)] = 1 byte. The account's lamport balance
// is moved to dest and the account is deallocated. Works for both the legacy
// token program and Token-2022 via programID.
func BuildCloseAccountInstruction(account, dest, owner, programID PublicKey) Instruction {
	return Instruction{
		ProgramID: programID,
		Accounts: []AccountMeta{
			{PubKey: account, IsSigner: false, IsWritable: true},
			{PubKey: dest, IsSigner: false, IsWritable: true},
			{PubKey: owner, IsSigner: true, IsWritable: false},
		},
		Data: []byte{9}, // CloseAccount = variant index 9
	}
}
