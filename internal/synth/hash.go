package synth

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashLength is the number of hex characters kept from the digest.
const HashLength = 16

// HashPII returns a truncated SHA-256 hex digest of value.
func HashPII(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])[:HashLength]
}
