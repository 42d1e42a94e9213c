package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"

	"raiap/internal/domain"
)

const pseudonymBytes = 16

// DerivePseudonym maps (secret, context) to a stable profile pseudonym.
// Different contexts give unlinkable pseudonyms to anyone without secret.
func DerivePseudonym(secret []byte, context string) (domain.ProfileID, error) {
	if len(secret) == 0 {
		return "", errors.New("pseudonym secret is empty")
	}
	r := hkdf.New(sha256.New, secret, nil, []byte("raiap/profile/"+context))
	out := make([]byte, pseudonymBytes)
	if _, err := io.ReadFull(r, out); err != nil {
		return "", err
	}
	return domain.ProfileID(hex.EncodeToString(out)), nil
}
