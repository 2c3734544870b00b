package sol

import (
	"bytes"
	"testing"

	"github.com/mr-tron/base58"

	"github.com/rentclaim/rentclaim/internal/config"
)

func keyFromByte(seed byte) PublicKey {
	var pk PublicKey
	for i := range pk {
		pk[i] = seed
	}
	return pk
}

func TestEncodeCompactU16(t *testing.T) {
	tests := []struct {
		val  int
		want []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{127, []byte{0x7f}},
		{128, []byte{0x80, 0x01}},
		{255, []byte{0xff, 0x01}},
		{16383, []byte{0xff, 0x7f}},
		{16384, []byte{0x80, 0x80, 0x01}},
		{65535, []byte{0xff, 0xff, 0x03}},
	}

	for _, tt := range tests {
		buf := new(bytes.Buffer)
		if err := EncodeCompactU16(buf, tt.val); err != nil {
			t.Fatalf("EncodeCompactU16(%d) error = %v", tt.val, err)
		}
		if !bytes.Equal(buf.Bytes(), tt.want) {
			t.Errorf("EncodeCompactU16(%d) = %x, want %x", tt.val, buf.Bytes(), tt.want)
		}
	}
}

func TestEncodeCompactU16OutOfRange(t *testing.T) {
	for _, val := range []int{-1, 65536} {
		buf := new(bytes.Buffer)
		if err := EncodeCompactU16(buf, val); err == nil {
			t.Errorf("EncodeCompactU16(%d) expected error", val)
		}
	}
}

func TestPublicKeyFromBase58(t *testing.T) {
	pk, err := PublicKeyFromBase58(config.TokenProgramID)
	if err != nil {
		t.Fatalf("PublicKeyFromBase58 error = %v", err)
	}
	if pk.ToBase58() != config.TokenProgramID {
		t.Errorf("round trip = %s, want %s", pk.ToBase58(), config.TokenProgramID)
	}

	if _, err := PublicKeyFromBase58("bad!"); err == nil {
		t.Error("expected error for invalid base58")
	}
	if _, err := PublicKeyFromBase58("abc"); err == nil {
		t.Error("expected error for short input")
	}
}

func TestCompileMessageFeePayerFirst(t *testing.T) {
	payer := keyFromByte(1)
	dest := keyFromByte(2)
	blockhash := [32]byte{0xaa}

	ix := BuildSystemTransferInstruction(payer, dest, 1000)
	msg, err := CompileMessage(payer, []Instruction{ix}, blockhash)
	if err != nil {
		t.Fatalf("CompileMessage error = %v", err)
	}

	if msg.AccountKeys[0] != payer {
		t.Error("fee payer must be account key 0")
	}
	if msg.Header.NumRequiredSignatures != 1 {
		t.Errorf("numRequiredSignatures = %d, want 1", msg.Header.NumRequiredSignatures)
	}
	// payer (writable signer), dest (writable), system program (readonly).
	if len(msg.AccountKeys) != 3 {
		t.Fatalf("account keys = %d, want 3", len(msg.AccountKeys))
	}
	if msg.Header.NumReadonlyUnsignedAccounts != 1 {
		t.Errorf("numReadonlyUnsigned = %d, want 1", msg.Header.NumReadonlyUnsignedAccounts)
	}
	if msg.RecentBlockhash != blockhash {
		t.Error("blockhash not carried into message")
	}
}

func TestCompileMessagePrivilegeOrdering(t *testing.T) {
	payer := keyFromByte(1)
	writable := keyFromByte(2)
	readonly := keyFromByte(3)
	program := keyFromByte(9)

	ix := Instruction{
		ProgramID: program,
		Accounts: []AccountMeta{
			{PubKey: readonly, IsSigner: false, IsWritable: false},
			{PubKey: writable, IsSigner: false, IsWritable: true},
		},
		Data: []byte{1},
	}

	msg, err := CompileMessage(payer, []Instruction{ix}, [32]byte{})
	if err != nil {
		t.Fatalf("CompileMessage error = %v", err)
	}

	// Order: payer, writable non-signers, readonly non-signers.
	keyIndex := make(map[PublicKey]int)
	for i, k := range msg.AccountKeys {
		keyIndex[k] = i
	}
	if keyIndex[payer] != 0 {
		t.Error("payer not at index 0")
	}
	if keyIndex[writable] >= keyIndex[readonly] {
		t.Error("writable account must precede readonly accounts")
	}
	if keyIndex[writable] >= keyIndex[program] {
		t.Error("writable account must precede the program key")
	}
}

func TestCompileMessageMergesDuplicateAccounts(t *testing.T) {
	payer := keyFromByte(1)
	shared := keyFromByte(2)
	program := keyFromByte(9)

	// The same account readonly in one instruction, writable in another:
	// compilation must merge to a single writable entry.
	ixA := Instruction{ProgramID: program, Accounts: []AccountMeta{{PubKey: shared}}, Data: []byte{1}}
	ixB := Instruction{ProgramID: program, Accounts: []AccountMeta{{PubKey: shared, IsWritable: true}}, Data: []byte{2}}

	msg, err := CompileMessage(payer, []Instruction{ixA, ixB}, [32]byte{})
	if err != nil {
		t.Fatalf("CompileMessage error = %v", err)
	}

	if len(msg.AccountKeys) != 3 {
		t.Fatalf("account keys = %d, want 3 (payer, shared, program)", len(msg.AccountKeys))
	}
	// Only the program is readonly.
	if msg.Header.NumReadonlyUnsignedAccounts != 1 {
		t.Errorf("numReadonlyUnsigned = %d, want 1", msg.Header.NumReadonlyUnsignedAccounts)
	}
	// Both instructions reference the same index for the shared account.
	if msg.Instructions[0].AccountIndexes[0] != msg.Instructions[1].AccountIndexes[0] {
		t.Error("duplicate account compiled to different indexes")
	}
}

func TestCompileMessageNoInstructions(t *testing.T) {
	if _, err := CompileMessage(keyFromByte(1), nil, [32]byte{}); err == nil {
		t.Error("expected error for empty instruction list")
	}
}

func TestSerializeMessageLayout(t *testing.T) {
	payer := keyFromByte(1)
	dest := keyFromByte(2)
	blockhash := [32]byte{0xbb}

	ix := BuildSystemTransferInstruction(payer, dest, 42)
	msg, err := CompileMessage(payer, []Instruction{ix}, blockhash)
	if err != nil {
		t.Fatalf("CompileMessage error = %v", err)
	}

	data, err := SerializeMessage(msg)
	if err != nil {
		t.Fatalf("SerializeMessage error = %v", err)
	}

	// header(3) + count(1) + 3 keys(96) + blockhash(32) +
	// ixCount(1) + progIdx(1) + acctCount(1) + 2 idx(2) + dataLen(1) + data(12)
	want := 3 + 1 + 96 + 32 + 1 + 1 + 1 + 2 + 1 + 12
	if len(data) != want {
		t.Errorf("serialized length = %d, want %d", len(data), want)
	}

	if data[0] != 1 {
		t.Errorf("numRequiredSignatures byte = %d, want 1", data[0])
	}
	if data[3] != 3 {
		t.Errorf("account count byte = %d, want 3", data[3])
	}
	// Blockhash sits right after the account keys.
	if data[3+1+96] != 0xbb {
		t.Error("blockhash not at expected offset")
	}
}

func TestSerializeTransactionPrependsSignatures(t *testing.T) {
	payer := keyFromByte(1)
	ix := BuildSystemTransferInstruction(payer, keyFromByte(2), 1)
	msg, err := CompileMessage(payer, []Instruction{ix}, [32]byte{})
	if err != nil {
		t.Fatalf("CompileMessage error = %v", err)
	}

	var sig Signature
	sig[0] = 0xee

	tx, err := AttachSignatures(msg, []Signature{sig})
	if err != nil {
		t.Fatalf("AttachSignatures error = %v", err)
	}

	txBytes, err := SerializeTransaction(tx)
	if err != nil {
		t.Fatalf("SerializeTransaction error = %v", err)
	}

	msgBytes, _ := SerializeMessage(msg)
	if len(txBytes) != 1+64+len(msgBytes) {
		t.Errorf("transaction length = %d, want %d", len(txBytes), 1+64+len(msgBytes))
	}
	if txBytes[0] != 1 {
		t.Errorf("signature count byte = %d, want 1", txBytes[0])
	}
	if txBytes[1] != 0xee {
		t.Error("signature bytes not at expected offset")
	}
}

func TestAttachSignaturesCountMismatch(t *testing.T) {
	payer := keyFromByte(1)
	ix := BuildSystemTransferInstruction(payer, keyFromByte(2), 1)
	msg, err := CompileMessage(payer, []Instruction{ix}, [32]byte{})
	if err != nil {
		t.Fatalf("CompileMessage error = %v", err)
	}

	if _, err := AttachSignatures(msg, nil); err == nil {
		t.Error("expected error for zero signatures")
	}
	if _, err := AttachSignatures(msg, make([]Signature, 2)); err == nil {
		t.Error("expected error for too many signatures")
	}
}

func TestSignatureToBase58(t *testing.T) {
	var sig Signature
	sig[0] = 1
	want := base58.Encode(sig[:])
	if got := sig.ToBase58(); got != want {
		t.Errorf("ToBase58 = %s, want %s", got, want)
	}
}
