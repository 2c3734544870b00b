package closer

import (
	"context"
	"crypto/ed25519"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rentclaim/rentclaim/internal/sol"
)

// Signer produces ed25519 signatures over serialized transaction messages.
// Implementations may hold the key locally or delegate to an external wallet.
type Signer interface {
	PublicKey() sol.PublicKey
	SignMessage(ctx context.Context, message []byte) (sol.Signature, error)
}

// KeypairSigner signs with a Solana CLI keypair file (a JSON array of 64
// bytes: the 32-byte seed followed by the 32-byte public key). The file is
// re-read on every signature so key rotation does not require a restart; only
// the public key is kept in memory.
type KeypairSigner struct {
	keypairFile string
	publicKey   sol.PublicKey
}

// NewKeypairSigner validates the keypair file and captures its public key.
func NewKeypairSigner(keypairFile string) (*KeypairSigner, error) {
	priv, err := readKeypairFile(keypairFile)
	if err != nil {
		return nil, err
	}

	var pk sol.PublicKey
	copy(pk[:], priv.Public().(ed25519.PublicKey))

	return &KeypairSigner{
		keypairFile: keypairFile,
		publicKey:   pk,
	}, nil
}

// PublicKey returns the keypair's public key.
func (s *KeypairSigner) PublicKey() sol.PublicKey {
	return s.publicKey
}

// SignMessage signs a serialized message with a freshly read private key.
func (s *KeypairSigner) SignMessage(ctx context.Context, message []byte) (sol.Signature, error) {
	if err := ctx.Err(); err != nil {
		return sol.Signature{}, err
	}

	priv, err := readKeypairFile(s.keypairFile)
	if err != nil {
		return sol.Signature{}, err
	}

	var pk sol.PublicKey
	copy(pk[:], priv.Public().(ed25519.PublicKey))
	if pk != s.publicKey {
		return sol.Signature{}, fmt.Errorf("keypair file %s public key changed since startup", s.keypairFile)
	}

	raw := ed25519.Sign(priv, message)
	if len(raw) != 64 {
		return sol.Signature{}, fmt.Errorf("unexpected signature length %d", len(raw))
	}

	var sig sol.Signature
	copy(sig[:], raw)
	return sig, nil
}

// readKeypairFile parses a Solana CLI JSON keypair file into a private key.
func readKeypairFile(path string) (ed25519.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keypair file %q: %w", path, err)
	}

	// The file is a JSON array of byte values, not a base64 string.
	var ints []int
	if err := json.Unmarshal(data, &ints); err != nil {
		return nil, fmt.Errorf("parse keypair file %q: %w", path, err)
	}
	if len(ints) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("keypair file %q: expected %d bytes, got %d",
			path, ed25519.PrivateKeySize, len(ints))
	}

	key := make([]byte, ed25519.PrivateKeySize)
	for i, v := range ints {
		if v < 0 || v > 255 {
			return nil, fmt.Errorf("keypair file %q: byte %d out of range at index %d", path, v, i)
		}
		key[i] = byte(v)
	}

	return ed25519.PrivateKey(key), nil
}
