package crypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"

	"raiap/internal/domain"
)

func generateEd25519() (domain.KeyPair, error) {
	seed := make([]byte, ed25519.SeedSize)
	if _, err := rand.Read(seed); err != nil {
		return domain.KeyPair{}, err
	}
	return ed25519FromSeed(seed)
}

func ed25519FromSeed(seed []byte) (domain.KeyPair, error) {
	if len(seed) != ed25519.SeedSize {
		return domain.KeyPair{}, fmt.Errorf("ed25519 seed: want %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	sk := ed25519.NewKeyFromSeed(seed)
	defer Wipe(sk)
	pub := make([]byte, ed25519.PublicKeySize)
	copy(pub, sk[ed25519.SeedSize:])
	return domain.KeyPair{
		Public:  domain.PublicKey{Algorithm: domain.AlgorithmEd25519, Key: pub},
		Private: domain.PrivateKey{Algorithm: domain.AlgorithmEd25519, Seed: append([]byte(nil), seed...)},
	}, nil
}

// signEd25519 signs msg with the key expanded from seed.
func signEd25519(seed, msg []byte) ([]byte, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("ed25519 seed: want %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	sk := ed25519.NewKeyFromSeed(seed)
	defer Wipe(sk)
	return ed25519.Sign(sk, msg), nil
}

// verifyEd25519 verifies sig over msg with pub.
func verifyEd25519(pub, msg, sig []byte) bool {
	if len(pub) != ed25519.PublicKeySize || len(sig) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(pub), msg, sig)
}
