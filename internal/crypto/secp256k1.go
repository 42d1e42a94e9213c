package crypto

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"

	"raiap/internal/domain"
)

const secp256k1ScalarSize = 32

func generateSecp256k1() (domain.KeyPair, error) {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		return domain.KeyPair{}, err
	}
	seed := priv.Serialize()
	defer Wipe(seed)
	return secp256k1FromSeed(seed)
}

func secp256k1FromSeed(seed []byte) (domain.KeyPair, error) {
	if len(seed) != secp256k1ScalarSize {
		return domain.KeyPair{}, fmt.Errorf("secp256k1 scalar: want %d bytes, got %d", secp256k1ScalarSize, len(seed))
	}
	priv, pub := btcec.PrivKeyFromBytes(seed)
	canonical := priv.Serialize()
	defer Wipe(canonical)
	// PrivKeyFromBytes reduces modulo the group order; reject anything it changed.
	if !bytes.Equal(canonical, seed) || priv.Key.IsZero() {
		return domain.KeyPair{}, errors.New("secp256k1 scalar out of range")
	}
	return domain.KeyPair{
		Public:  domain.PublicKey{Algorithm: domain.AlgorithmSecp256k1, Key: schnorr.SerializePubKey(pub)},
		Private: domain.PrivateKey{Algorithm: domain.AlgorithmSecp256k1, Seed: append([]byte(nil), seed...)},
	}, nil
}

// signSecp256k1 produces a BIP-340 signature over the SHA-256 of msg.
func signSecp256k1(seed, msg []byte) ([]byte, error) {
	if len(seed) != secp256k1ScalarSize {
		return nil, fmt.Errorf("secp256k1 scalar: want %d bytes, got %d", secp256k1ScalarSize, len(seed))
	}
	priv, _ := btcec.PrivKeyFromBytes(seed)
	defer priv.Zero()
	digest := Hash(msg)
	sig, err := schnorr.Sign(priv, digest[:])
	if err != nil {
		return nil, err
	}
	return sig.Serialize(), nil
}

func verifySecp256k1(pub, msg, sig []byte) bool {
	if len(sig) != schnorr.SignatureSize {
		return false
	}
	pk, err := schnorr.ParsePubKey(pub)
	if err != nil {
		return false
	}
	s, err := schnorr.ParseSignature(sig)
	if err != nil {
		return false
	}
	digest := Hash(msg)
	return s.Verify(digest[:], pk)
}
