package crypto

import (
	"fmt"

	"raiap/internal/domain"
)

// GenerateKeyPair returns a fresh key pair for alg.
func GenerateKeyPair(alg domain.Algorithm) (domain.KeyPair, error) {
	switch alg {
	case domain.AlgorithmEd25519:
		return generateEd25519()
	case domain.AlgorithmSecp256k1:
		return generateSecp256k1()
	default:
		return domain.KeyPair{}, fmt.Errorf("generate key: unsupported algorithm %v", alg)
	}
}

// KeyPairFromSeed rebuilds a key pair from its 32-byte private seed.
func KeyPairFromSeed(alg domain.Algorithm, seed []byte) (domain.KeyPair, error) {
	switch alg {
	case domain.AlgorithmEd25519:
		return ed25519FromSeed(seed)
	case domain.AlgorithmSecp256k1:
		return secp256k1FromSeed(seed)
	default:
		return domain.KeyPair{}, fmt.Errorf("key from seed: unsupported algorithm %v", alg)
	}
}

// Sign signs msg with priv.
func Sign(priv domain.PrivateKey, msg []byte) ([]byte, error) {
	switch priv.Algorithm {
	case domain.AlgorithmEd25519:
		return signEd25519(priv.Seed, msg)
	case domain.AlgorithmSecp256k1:
		return signSecp256k1(priv.Seed, msg)
	default:
		return nil, fmt.Errorf("sign: unsupported algorithm %v", priv.Algorithm)
	}
}

// Verify reports whether sig is a valid signature of msg under pub.
// Malformed keys and signatures yield false.
func Verify(pub domain.PublicKey, msg, sig []byte) bool {
	switch pub.Algorithm {
	case domain.AlgorithmEd25519:
		return verifyEd25519(pub.Key, msg, sig)
	case domain.AlgorithmSecp256k1:
		return verifySecp256k1(pub.Key, msg, sig)
	default:
		return false
	}
}

// MatchesPublic reports whether kp.Private derives kp.Public.
func MatchesPublic(kp domain.KeyPair) bool {
	derived, err := KeyPairFromSeed(kp.Private.Algorithm, kp.Private.Seed)
	if err != nil {
		return false
	}
	defer Wipe(derived.Private.Seed)
	return derived.Public.Equal(kp.Public)
}
