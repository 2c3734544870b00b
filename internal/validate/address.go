package validate

import (
	"strings"

	"github.com/mr-tron/base58"
)

// Sanitize strips all whitespace (spaces, tabs, newlines) from a raw address
// value. Addresses sourced from environment variables and copy-paste are
// prone to trailing-whitespace corruption.
func Sanitize(raw string) string {
	return strings.Join(strings.Fields(raw), "")
}

// IsAddress reports whether candidate is a well-formed Solana address:
// base58-encoded, 32-44 characters, decoding to exactly 32 bytes.
// Never panics; any decoding failure means false.
func IsAddress(candidate string) bool {
	if len(candidate) < 32 || len(candidate) > 44 {
		return false
	}
	decoded, err := base58.Decode(candidate)
	if err != nil {
		return false
	}
	return len(decoded) == 32
}
