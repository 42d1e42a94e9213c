package evolution_test

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raiap/internal/crypto"
	"raiap/internal/domain"
	"raiap/internal/protocol/card"
	"raiap/internal/protocol/evolution"
	"raiap/internal/protocol/wire"
)

func TestRecover_ThreeOfFive(t *testing.T) {
	c, evo := bootstrap(t)
	g1 := rotate(t, c, evo)

	shares, err := evo.IssueRecoveryShares(3, 5)
	require.NoError(t, err)
	require.Len(t, shares, 5)
	require.NotNil(t, evo.Current().ShareSet)
	assert.Equal(t, shares[0].SetID, evo.Current().ShareSet.ID)

	_, err = evo.Recover(shares[:2], newKey(t))
	require.ErrorIs(t, err, domain.ErrInsufficientShares)
	assert.Equal(t, domain.KindThreshold, domain.KindOf(err))
	assert.Equal(t, domain.StatusActive, evo.Current().Status)

	kp := newKey(t)
	g2, err := evo.Recover([]domain.RecoveryShare{shares[4], shares[1], shares[2]}, kp)
	require.NoError(t, err)

	gens := evo.Generations()
	require.Len(t, gens, 3)
	assert.Equal(t, domain.StatusCompromised, gens[1].Status)
	assert.Equal(t, domain.StatusActive, gens[2].Status)
	assert.Equal(t, domain.AuthorityRecovery, g2.Authority)
	assert.Equal(t, evolution.GenerationHash(gens[1]), g2.PredecessorHash)

	msg := wire.AuthorizationMessage(c.IdentityID(), kp.Public, 2)
	assert.True(t, crypto.Verify(g1.OperationalKey, msg, g2.Authorization))
	assert.False(t, crypto.Verify(c.Record().MasterPublicKey, msg, g2.Authorization))

	id, err := evolution.VerifyLineage(c.Record(), gens)
	require.NoError(t, err)
	assert.Equal(t, c.IdentityID(), id)
}

func TestRecover_StaleGenerationRefused(t *testing.T) {
	c, evo := bootstrap(t)
	shares, err := evo.IssueRecoveryShares(2, 3)
	require.NoError(t, err)

	rotate(t, c, evo)

	_, err = evo.Recover(shares[:2], newKey(t))
	assert.ErrorIs(t, err, domain.ErrNoRecoverableGeneration)
	assert.Len(t, evo.Generations(), 2)
}

func TestRecover_MixedSetsInconsistent(t *testing.T) {
	_, evo := bootstrap(t)
	a, err := evo.IssueRecoveryShares(2, 3)
	require.NoError(t, err)
	b, err := evo.IssueRecoveryShares(2, 3)
	require.NoError(t, err)

	_, err = evo.Recover([]domain.RecoveryShare{a[0], b[1]}, newKey(t))
	assert.ErrorIs(t, err, domain.ErrInconsistentShares)

	// Either set alone still recovers the same key.
	_, err = evo.Recover(a[1:], newKey(t))
	assert.NoError(t, err)
}

func TestRecover_CorruptedShareInconsistent(t *testing.T) {
	_, evo := bootstrap(t)
	shares, err := evo.IssueRecoveryShares(2, 3)
	require.NoError(t, err)

	bad := shares[1]
	bad.Share = bad.Share.Clone()
	bad.Share.Value[0] ^= 0x01

	_, err = evo.Recover([]domain.RecoveryShare{shares[0], bad}, newKey(t))
	assert.ErrorIs(t, err, domain.ErrInconsistentShares)
	assert.Equal(t, domain.StatusActive, evo.Current().Status)
}

func TestRecover_ForeignSharesInconsistent(t *testing.T) {
	_, evo := bootstrap(t)
	_, other := bootstrap(t)
	shares, err := other.IssueRecoveryShares(2, 2)
	require.NoError(t, err)

	_, err = evo.Recover(shares, newKey(t))
	assert.ErrorIs(t, err, domain.ErrInconsistentShares)
}

func TestRecover_ReusingRecoveredKeyIsSelfAuthorization(t *testing.T) {
	_, evo := bootstrap(t)
	shares, err := evo.IssueRecoveryShares(2, 3)
	require.NoError(t, err)

	state := evo.State()
	same := domain.KeyPair{Public: evo.CurrentActiveKey(), Private: state.ActiveKey}
	_, err = evo.Recover(shares[:2], same)
	assert.ErrorIs(t, err, domain.ErrSelfAuthorization)
}

func TestContinuity_AcrossRotationsAndRecoveries(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	c, evo := bootstrap(t)

	for step := 0; step < 12; step++ {
		if r.IntN(2) == 0 {
			rotate(t, c, evo)
			continue
		}
		total := 2 + r.IntN(4)
		threshold := 1 + r.IntN(total)
		shares, err := evo.IssueRecoveryShares(threshold, total)
		require.NoError(t, err)
		r.Shuffle(len(shares), func(i, j int) { shares[i], shares[j] = shares[j], shares[i] })
		_, err = evo.Recover(shares[:threshold], newKey(t))
		require.NoError(t, err)
	}

	gens := evo.Generations()
	assert.Len(t, gens, 13)
	assert.Equal(t, 1, activeCount(gens))
	id, err := evolution.VerifyLineage(c.Record(), gens)
	require.NoError(t, err)
	assert.Equal(t, c.IdentityID(), id)
}

func TestRecover_Secp256k1Operational(t *testing.T) {
	c, err := card.Create(domain.AlgorithmSecp256k1)
	require.NoError(t, err)
	kp, err := crypto.GenerateKeyPair(domain.AlgorithmSecp256k1)
	require.NoError(t, err)
	evo, err := evolution.Bootstrap(context.Background(), c, kp)
	require.NoError(t, err)

	shares, err := evo.IssueRecoveryShares(2, 2)
	require.NoError(t, err)
	next, err := crypto.GenerateKeyPair(domain.AlgorithmSecp256k1)
	require.NoError(t, err)
	_, err = evo.Recover(shares, next)
	require.NoError(t, err)

	_, err = evolution.VerifyLineage(c.Record(), evo.Generations())
	assert.NoError(t, err)
}

func TestRecover_FromPublicStateAfterKeyLoss(t *testing.T) {
	c, evo := bootstrap(t)
	g1 := rotate(t, c, evo)
	shares, err := evo.IssueRecoveryShares(2, 3)
	require.NoError(t, err)

	lost, err := evolution.Restore(evo.PublicState())
	require.NoError(t, err)
	assert.False(t, lost.HoldsActiveKey())

	_, err = lost.Signer().Sign([]byte("m"))
	assert.ErrorIs(t, err, domain.ErrSigningKeyUnavailable)
	_, err = lost.IssueRecoveryShares(2, 3)
	assert.ErrorIs(t, err, domain.ErrSigningKeyUnavailable)

	kp := newKey(t)
	g2, err := lost.Recover(shares[1:], kp)
	require.NoError(t, err)
	assert.True(t, lost.HoldsActiveKey())
	assert.True(t, crypto.Verify(g1.OperationalKey, wire.AuthorizationMessage(c.IdentityID(), kp.Public, 2), g2.Authorization))

	_, err = lost.Signer().Sign([]byte("m"))
	assert.NoError(t, err)
}
