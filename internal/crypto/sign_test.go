package crypto_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raiap/internal/crypto"
	"raiap/internal/domain"
)

var algorithms = []domain.Algorithm{domain.AlgorithmEd25519, domain.AlgorithmSecp256k1}

func TestSignVerify_RoundTrip(t *testing.T) {
	for _, alg := range algorithms {
		t.Run(alg.String(), func(t *testing.T) {
			kp, err := crypto.GenerateKeyPair(alg)
			require.NoError(t, err)
			assert.True(t, crypto.MatchesPublic(kp))

			msg := []byte("anchor preimage")
			sig, err := crypto.Sign(kp.Private, msg)
			require.NoError(t, err)
			assert.True(t, crypto.Verify(kp.Public, msg, sig))
			assert.False(t, crypto.Verify(kp.Public, []byte("other"), sig))

			tampered := append([]byte(nil), sig...)
			tampered[0] ^= 0x80
			assert.False(t, crypto.Verify(kp.Public, msg, tampered))
		})
	}
}

func TestVerify_MalformedInputIsFalse(t *testing.T) {
	kp, err := crypto.GenerateKeyPair(domain.AlgorithmEd25519)
	require.NoError(t, err)
	sig, err := crypto.Sign(kp.Private, []byte("m"))
	require.NoError(t, err)

	assert.False(t, crypto.Verify(domain.PublicKey{Algorithm: domain.AlgorithmEd25519, Key: []byte{1, 2}}, []byte("m"), sig))
	assert.False(t, crypto.Verify(kp.Public, []byte("m"), sig[:10]))
	assert.False(t, crypto.Verify(domain.PublicKey{Algorithm: 99, Key: kp.Public.Key}, []byte("m"), sig))
	assert.False(t, crypto.Verify(domain.PublicKey{Algorithm: domain.AlgorithmSecp256k1, Key: make([]byte, 32)}, []byte("m"), make([]byte, 64)))
}

func TestKeyPairFromSeed_Deterministic(t *testing.T) {
	for _, alg := range algorithms {
		t.Run(alg.String(), func(t *testing.T) {
			kp, err := crypto.GenerateKeyPair(alg)
			require.NoError(t, err)
			again, err := crypto.KeyPairFromSeed(alg, kp.Private.Seed)
			require.NoError(t, err)
			assert.True(t, kp.Public.Equal(again.Public))
		})
	}
}

func TestKeyPairFromSeed_RejectsOutOfRangeScalar(t *testing.T) {
	over := make([]byte, 32)
	for i := range over {
		over[i] = 0xff
	}
	_, err := crypto.KeyPairFromSeed(domain.AlgorithmSecp256k1, over)
	assert.Error(t, err)
	_, err = crypto.KeyPairFromSeed(domain.AlgorithmSecp256k1, make([]byte, 32))
	assert.Error(t, err)
}

func TestHash_FixedWidthAndDeterministic(t *testing.T) {
	a := crypto.Hash([]byte("x"))
	b := crypto.Hash([]byte("x"))
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, crypto.Hash([]byte("y")))
	assert.Len(t, a.Slice(), 32)
}

func TestDerivePseudonym_StablePerContext(t *testing.T) {
	secret := []byte("0123456789abcdef0123456789abcdef")
	a1, err := crypto.DerivePseudonym(secret, "bank")
	require.NoError(t, err)
	a2, err := crypto.DerivePseudonym(secret, "bank")
	require.NoError(t, err)
	b, err := crypto.DerivePseudonym(secret, "clinic")
	require.NoError(t, err)

	assert.Equal(t, a1, a2)
	assert.NotEqual(t, a1, b)
	assert.Len(t, string(a1), 32)

	_, err = crypto.DerivePseudonym(nil, "bank")
	assert.Error(t, err)
}

func TestEncryptSecret_RoundTrip(t *testing.T) {
	salt, nonce, ct, err := crypto.EncryptSecret("holder passphrase", []byte("share bytes"))
	require.NoError(t, err)

	pt, err := crypto.DecryptSecret("holder passphrase", salt, nonce, ct)
	require.NoError(t, err)
	assert.Equal(t, []byte("share bytes"), pt)

	_, err = crypto.DecryptSecret("wrong", salt, nonce, ct)
	assert.ErrorIs(t, err, crypto.ErrSealedOpen)
}

func TestFingerprint_Short(t *testing.T) {
	kp, err := crypto.GenerateKeyPair(domain.AlgorithmEd25519)
	require.NoError(t, err)
	assert.Len(t, crypto.Fingerprint(kp.Public).String(), 20)
}
