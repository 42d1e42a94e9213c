package crypto

import (
	"crypto/sha256"

	"raiap/internal/domain"
)

// Hash returns the SHA-256 digest of b.
func Hash(b []byte) domain.Digest { return sha256.Sum256(b) }
