package crypto_test

import (
	"bytes"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raiap/internal/crypto"
	"raiap/internal/domain"
)

func pickSubset(r *rand.Rand, shares []domain.Share, k int) []domain.Share {
	idx := r.Perm(len(shares))[:k]
	out := make([]domain.Share, 0, k)
	for _, i := range idx {
		out = append(out, shares[i])
	}
	return out
}

func TestSplitCombine_AnyQuorumReconstructs(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	for round := 0; round < 60; round++ {
		total := 1 + r.IntN(12)
		threshold := 1 + r.IntN(total)
		secret := make([]byte, 1+r.IntN(48))
		for i := range secret {
			secret[i] = byte(r.Uint32())
		}

		shares, err := crypto.SplitSecret(secret, threshold, total)
		require.NoError(t, err)
		require.Len(t, shares, total)

		for k := threshold; k <= total; k++ {
			got, err := crypto.CombineShares(pickSubset(r, shares, k))
			require.NoError(t, err, "t=%d n=%d k=%d", threshold, total, k)
			require.True(t, bytes.Equal(secret, got), "t=%d n=%d k=%d", threshold, total, k)
		}
		for k := 1; k < threshold; k++ {
			_, err := crypto.CombineShares(pickSubset(r, shares, k))
			require.ErrorIs(t, err, domain.ErrInsufficientShares, "t=%d n=%d k=%d", threshold, total, k)
		}
	}
}

func TestCombineShares_Empty(t *testing.T) {
	_, err := crypto.CombineShares(nil)
	assert.ErrorIs(t, err, domain.ErrInsufficientShares)
	assert.Equal(t, domain.KindThreshold, domain.KindOf(err))
}

func TestCombineShares_DuplicatesDoNotCount(t *testing.T) {
	shares, err := crypto.SplitSecret([]byte("operational seed"), 3, 5)
	require.NoError(t, err)

	_, err = crypto.CombineShares([]domain.Share{shares[0], shares[0], shares[1]})
	assert.ErrorIs(t, err, domain.ErrInsufficientShares)
}

func TestCombineShares_ConflictingDuplicate(t *testing.T) {
	shares, err := crypto.SplitSecret([]byte("operational seed"), 2, 3)
	require.NoError(t, err)

	forged := shares[0].Clone()
	forged.Value[0] ^= 0xff
	_, err = crypto.CombineShares([]domain.Share{shares[0], forged, shares[1]})
	assert.ErrorIs(t, err, domain.ErrInconsistentShares)
}

func TestCombineShares_ExtraShareOffPolynomial(t *testing.T) {
	shares, err := crypto.SplitSecret([]byte("operational seed"), 3, 5)
	require.NoError(t, err)

	bad := shares[4].Clone()
	bad.Value[3] ^= 0x01
	_, err = crypto.CombineShares([]domain.Share{shares[0], shares[1], shares[2], bad})
	assert.ErrorIs(t, err, domain.ErrInconsistentShares)
}

func TestCombineShares_MixedSplits(t *testing.T) {
	a, err := crypto.SplitSecret([]byte("first secret...."), 2, 3)
	require.NoError(t, err)
	b, err := crypto.SplitSecret([]byte("second secret..."), 3, 3)
	require.NoError(t, err)

	_, err = crypto.CombineShares([]domain.Share{a[0], b[1], b[2]})
	assert.ErrorIs(t, err, domain.ErrInconsistentShares)
}

func TestSplitSecret_RejectsBadParameters(t *testing.T) {
	cases := []struct {
		name             string
		secret           []byte
		threshold, total int
	}{
		{"empty secret", nil, 2, 3},
		{"zero threshold", []byte{1}, 0, 3},
		{"threshold above total", []byte{1}, 4, 3},
		{"too many shares", []byte{1}, 2, 256},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := crypto.SplitSecret(tc.secret, tc.threshold, tc.total)
			assert.Error(t, err)
		})
	}
}

func TestSplitSecret_ThresholdOneCopiesSecret(t *testing.T) {
	secret := []byte{9, 8, 7}
	shares, err := crypto.SplitSecret(secret, 1, 4)
	require.NoError(t, err)
	for _, sh := range shares {
		assert.Equal(t, secret, sh.Value)
	}
}
