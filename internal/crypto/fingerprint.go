package crypto

import (
	"crypto/sha256"
	"encoding/hex"

	"raiap/internal/domain"
)

// Fingerprint returns a short hex fingerprint of a public key.
//
// It hashes the algorithm tag and key bytes with SHA-256 and truncates to
// 10 bytes (20 hex chars).
func Fingerprint(pub domain.PublicKey) domain.Fingerprint {
	h := sha256.New()
	h.Write([]byte{byte(pub.Algorithm)})
	h.Write(pub.Key)
	sum := h.Sum(nil)
	return domain.Fingerprint(hex.EncodeToString(sum[:10]))
}
