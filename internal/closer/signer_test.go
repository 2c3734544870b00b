package closer

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// writeTempKeypair writes a Solana CLI style keypair file and returns its
// path along with the generated key.
func writeTempKeypair(t *testing.T) (string, ed25519.PrivateKey) {
	t.Helper()

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	ints := make([]int, len(priv))
	for i, b := range priv {
		ints[i] = int(b)
	}
	data, err := json.Marshal(ints)
	if err != nil {
		t.Fatalf("marshal keypair: %v", err)
	}

	path := filepath.Join(t.TempDir(), "keypair.json")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write keypair file: %v", err)
	}
	return path, priv
}

func TestKeypairSignerSignMessage(t *testing.T) {
	path, priv := writeTempKeypair(t)

	signer, err := NewKeypairSigner(path)
	if err != nil {
		t.Fatalf("NewKeypairSigner error = %v", err)
	}

	pub := priv.Public().(ed25519.PublicKey)
	if got := signer.PublicKey(); string(got[:]) != string(pub) {
		t.Error("signer public key does not match the keypair file")
	}

	message := []byte("serialized message bytes")
	sig, err := signer.SignMessage(context.Background(), message)
	if err != nil {
		t.Fatalf("SignMessage error = %v", err)
	}

	if !ed25519.Verify(pub, message, sig[:]) {
		t.Error("signature does not verify against the public key")
	}
}

func TestKeypairSignerMissingFile(t *testing.T) {
	if _, err := NewKeypairSigner(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("expected error for missing keypair file")
	}
}

func TestKeypairSignerMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keypair.json")
	if err := os.WriteFile(path, []byte(`[1,2,3]`), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	if _, err := NewKeypairSigner(path); err == nil {
		t.Error("expected error for truncated keypair file")
	}
}

func TestKeypairSignerRotatedKeyRejected(t *testing.T) {
	path, _ := writeTempKeypair(t)

	signer, err := NewKeypairSigner(path)
	if err != nil {
		t.Fatalf("NewKeypairSigner error = %v", err)
	}

	// Replace the file with a different key; signing must refuse since the
	// fee payer baked into the message would no longer match.
	otherPath, _ := writeTempKeypair(t)
	data, err := os.ReadFile(otherPath)
	if err != nil {
		t.Fatalf("read replacement keypair: %v", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("overwrite keypair: %v", err)
	}

	if _, err := signer.SignMessage(context.Background(), []byte("msg")); err == nil {
		t.Error("expected error after keypair file changed identity")
	}
}

func TestKeypairSignerCancelledContext(t *testing.T) {
	path, _ := writeTempKeypair(t)

	signer, err := NewKeypairSigner(path)
	if err != nil {
		t.Fatalf("NewKeypairSigner error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := signer.SignMessage(ctx, []byte("msg")); err == nil {
		t.Error("expected error for cancelled context")
	}
}
