package sol

import (
	"bytes"
	"fmt"
	"log/slog"
	"sort"

	"github.com/mr-tron/base58"

	"github.com/rentclaim/rentclaim/internal/config"
)

// PublicKey is a 32-byte Solana public key.
type PublicKey [32]byte

// Signature is a 64-byte ed25519 signature.
type Signature [64]byte

// PublicKeyFromBase58 decodes a base58-encoded Solana address into a PublicKey.
func PublicKeyFromBase58(addr string) (PublicKey, error) {
	b, err := base58.Decode(addr)
	if err != nil {
		return PublicKey{}, fmt.Errorf("decode base58 address %q: %w", addr, err)
	}
	if len(b) != 32 {
		return PublicKey{}, fmt.Errorf("invalid public key length %d, expected 32", len(b))
	}
	var pk PublicKey
	copy(pk[:], b)
	return pk, nil
}

// ToBase58 returns the base58 string representation of the public key.
func (pk PublicKey) ToBase58() string {
	return base58.Encode(pk[:])
}

// IsZero returns true if the public key is all zeros.
func (pk PublicKey) IsZero() bool {
	return pk == PublicKey{}
}

// ToBase58 returns the base58 string representation of the signature.
// For the first signer this is the transaction ID.
func (sig Signature) ToBase58() string {
	return base58.Encode(sig[:])
}

// AccountMeta describes the role of an account in an instruction.
type AccountMeta struct {
	PubKey     PublicKey
	IsSigner   bool
	IsWritable bool
}

// Instruction is a high-level Solana instruction before compilation.
type Instruction struct {
	ProgramID PublicKey
	Accounts  []AccountMeta
	Data      []byte
}

// CompiledInstruction is the compiled form using indexes into the account keys array.
type CompiledInstruction struct {
	ProgramIDIndex uint8
	AccountIndexes []uint8
	Data           []byte
}

// MessageHeader is the 3-byte header of a Solana message.
type MessageHeader struct {
	NumRequiredSignatures       uint8
	NumReadonlySignedAccounts   uint8
	NumReadonlyUnsignedAccounts uint8
}

// Message is a compiled Solana transaction message (legacy format).
type Message struct {
	Header          MessageHeader
	AccountKeys     []PublicKey
	RecentBlockhash [32]byte
	Instructions    []CompiledInstruction
}

// Transaction is a fully signed Solana transaction ready for serialization.
type Transaction struct {
	Signatures []Signature
	Message    Message
}

// Well-known Solana program IDs (parsed once at init).
var (
	systemProgramID        PublicKey
	tokenProgramID         PublicKey
	token2022ProgramID     PublicKey
	computeBudgetProgramID PublicKey
)

func init() {
	var err error
	systemProgramID, err = PublicKeyFromBase58(config.SystemProgramID)
	if err != nil {
		panic("invalid system program ID: " + err.Error())
	}
	tokenProgramID, err = PublicKeyFromBase58(config.TokenProgramID)
	if err != nil {
		panic("invalid token program ID: " + err.Error())
	}
	token2022ProgramID, err = PublicKeyFromBase58(config.Token2022ProgramID)
	if err != nil {
		panic("invalid token-2022 program ID: " + err.Error())
	}
	computeBudgetProgramID, err = PublicKeyFromBase58(config.ComputeBudgetProgramID)
	if err != nil {
		panic("invalid compute budget program ID: " + err.Error())
	}
}

// TokenProgram returns the legacy SPL token program ID.
func TokenProgram() PublicKey { return tokenProgramID }

// Token2022Program returns the Token-2022 program ID.
func Token2022Program() PublicKey { return token2022ProgramID }

// EncodeCompactU16 encodes an integer as Solana's compact-u16 variable-length format.
func EncodeCompactU16(buf *bytes.Buffer, val int) error {
	if val < 0 || val > 65535 {
		return fmt.Errorf("compact-u16 value out of range: %d", val)
	}
	rem := val
	for {
		elem := uint8(rem & 0x7f)
		rem >>= 7
		if rem == 0 {
			buf.WriteByte(elem)
			break
		}
		elem |= 0x80
		buf.WriteByte(elem)
	}
	return nil
}

// accountEntry tracks an account's role during message compilation.
type accountEntry struct {
	pubKey     PublicKey
	isSigner   bool
	isWritable bool
}

// CompileMessage compiles high-level instructions into a Solana message.
// The fee payer is always placed at index 0 as writable + signer.
// Accounts are ordered: writable+signer, readonly+signer, writable+nonsigner, readonly+nonsigner.
func CompileMessage(feePayer PublicKey, instructions []Instruction, recentBlockhash [32]byte) (Message, error) {
	if len(instructions) == 0 {
		return Message{}, fmt.Errorf("no instructions provided")
	}

	// Collect all unique accounts and merge their permissions.
	accountMap := make(map[PublicKey]*accountEntry)

	// Fee payer is always writable + signer.
	accountMap[feePayer] = &accountEntry{
		pubKey:     feePayer,
		isSigner:   true,
		isWritable: true,
	}

	for _, ix := range instructions {
		// Program ID is a readonly, non-signer account.
		if _, exists := accountMap[ix.ProgramID]; !exists {
			accountMap[ix.ProgramID] = &accountEntry{
				pubKey:     ix.ProgramID,
				isSigner:   false,
				isWritable: false,
			}
		}

		for _, acc := range ix.Accounts {
			if entry, exists := accountMap[acc.PubKey]; exists {
				// Merge: upgrade to signer/writable if any instruction requires it.
				if acc.IsSigner {
					entry.isSigner = true
				}
				if acc.IsWritable {
					entry.isWritable = true
				}
			} else {
				accountMap[acc.PubKey] = &accountEntry{
					pubKey:     acc.PubKey,
					isSigner:   acc.IsSigner,
					isWritable: acc.IsWritable,
				}
			}
		}
	}

	// Sort into four privilege groups.
	var writableSigners, readonlySigners, writableNonSigners, readonlyNonSigners []accountEntry
	for _, entry := range accountMap {
		if entry.pubKey == feePayer {
			continue // fee payer handled separately
		}
		switch {
		case entry.isSigner && entry.isWritable:
			writableSigners = append(writableSigners, *entry)
		case entry.isSigner && !entry.isWritable:
			readonlySigners = append(readonlySigners, *entry)
		case !entry.isSigner && entry.isWritable:
			writableNonSigners = append(writableNonSigners, *entry)
		default:
			readonlyNonSigners = append(readonlyNonSigners, *entry)
		}
	}

	// Sort each group by base58 for deterministic ordering.
	sortByBase58 := func(a []accountEntry) {
		sort.Slice(a, func(i, j int) bool {
			return a[i].pubKey.ToBase58() < a[j].pubKey.ToBase58()
		})
	}
	sortByBase58(writableSigners)
	sortByBase58(readonlySigners)
	sortByBase58(writableNonSigners)
	sortByBase58(readonlyNonSigners)

	// Build ordered account keys: fee payer first, then groups.
	accountKeys := make([]PublicKey, 0, len(accountMap))
	accountKeys = append(accountKeys, feePayer)
	for _, e := range writableSigners {
		accountKeys = append(accountKeys, e.pubKey)
	}
	for _, e := range readonlySigners {
		accountKeys = append(accountKeys, e.pubKey)
	}
	for _, e := range writableNonSigners {
		accountKeys = append(accountKeys, e.pubKey)
	}
	for _, e := range readonlyNonSigners {
		accountKeys = append(accountKeys, e.pubKey)
	}

	// Build index lookup.
	keyIndex := make(map[PublicKey]uint8, len(accountKeys))
	for i, k := range accountKeys {
		keyIndex[k] = uint8(i)
	}

	// Compute header counts.
	numSigners := uint8(1 + len(writableSigners) + len(readonlySigners)) // fee payer + other signers
	numReadonlySigned := uint8(len(readonlySigners))
	numReadonlyUnsigned := uint8(len(readonlyNonSigners))

	// Compile instructions.
	compiledInstructions := make([]CompiledInstruction, len(instructions))
	for i, ix := range instructions {
		progIdx, ok := keyIndex[ix.ProgramID]
		if !ok {
			return Message{}, fmt.Errorf("program ID %s not found in account keys", ix.ProgramID.ToBase58())
		}

		accountIdxs := make([]uint8, len(ix.Accounts))
		for j, acc := range ix.Accounts {
			idx, ok := keyIndex[acc.PubKey]
			if !ok {
				return Message{}, fmt.Errorf("account %s not found in account keys", acc.PubKey.ToBase58())
			}
			accountIdxs[j] = idx
		}

		compiledInstructions[i] = CompiledInstruction{
			ProgramIDIndex: progIdx,
			AccountIndexes: accountIdxs,
			Data:           ix.Data,
		}
	}

	msg := Message{
		Header: MessageHeader{
			NumRequiredSignatures:       numSigners,
			NumReadonlySignedAccounts:   numReadonlySigned,
			NumReadonlyUnsignedAccounts: numReadonlyUnsigned,
		},
		AccountKeys:     accountKeys,
		RecentBlockhash: recentBlockhash,
		Instructions:    compiledInstructions,
	}

	slog.Debug("compiled message",
		"accountCount", len(accountKeys),
		"signerCount", numSigners,
		"instructionCount", len(compiledInstructions),
	)

	return msg, nil
}

// SerializeMessage serializes a Message into bytes (the part that gets signed).
func SerializeMessage(msg Message) ([]byte, error) {
	buf := new(bytes.Buffer)

	// Header (3 bytes, no length prefix).
	buf.WriteByte(msg.Header.NumRequiredSignatures)
	buf.WriteByte(msg.Header.NumReadonlySignedAccounts)
	buf.WriteByte(msg.Header.NumReadonlyUnsignedAccounts)

	// Account keys (compact-u16 count + 32 bytes each).
	if err := EncodeCompactU16(buf, len(msg.AccountKeys)); err != nil {
		return nil, fmt.Errorf("encode account key count: %w", err)
	}
	for _, k := range msg.AccountKeys {
		buf.Write(k[:])
	}

	// Recent blockhash (32 bytes, no prefix).
	buf.Write(msg.RecentBlockhash[:])

	// Instructions (compact-u16 count + each compiled instruction).
	if err := EncodeCompactU16(buf, len(msg.Instructions)); err != nil {
		return nil, fmt.Errorf("encode instruction count: %w", err)
	}
	for _, ix := range msg.Instructions {
		buf.WriteByte(ix.ProgramIDIndex)

		if err := EncodeCompactU16(buf, len(ix.AccountIndexes)); err != nil {
			return nil, fmt.Errorf("encode account index count: %w", err)
		}
		for _, idx := range ix.AccountIndexes {
			buf.WriteByte(idx)
		}

		dataLen := 0
		if ix.Data != nil {
			dataLen = len(ix.Data)
		}
		if err := EncodeCompactU16(buf, dataLen); err != nil {
			return nil, fmt.Errorf("encode instruction data length: %w", err)
		}
		if dataLen > 0 {
			buf.Write(ix.Data)
		}
	}

	return buf.Bytes(), nil
}

// SerializeTransaction serializes a full Transaction into the wire format.
func SerializeTransaction(tx Transaction) ([]byte, error) {
	msgBytes, err := SerializeMessage(tx.Message)
	if err != nil {
		return nil, fmt.Errorf("serialize message: %w", err)
	}

	buf := new(bytes.Buffer)

	// Signatures (compact-u16 count + 64 bytes each).
	if err := EncodeCompactU16(buf, len(tx.Signatures)); err != nil {
		return nil, fmt.Errorf("encode signature count: %w", err)
	}
	for _, sig := range tx.Signatures {
		buf.Write(sig[:])
	}

	// Append serialized message.
	buf.Write(msgBytes)

	return buf.Bytes(), nil
}

// AttachSignatures binds externally produced signatures to a compiled message.
// The signature count must match the message header's required signature count,
// in the same order as the leading account keys.
func AttachSignatures(msg Message, sigs []Signature) (Transaction, error) {
	if len(sigs) != int(msg.Header.NumRequiredSignatures) {
		return Transaction{}, fmt.Errorf("signature count mismatch: got %d, message requires %d",
			len(sigs), msg.Header.NumRequiredSignatures)
	}
	return Transaction{
		Signatures: sigs,
		Message:    msg,
	}, nil
}
