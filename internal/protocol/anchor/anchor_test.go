package anchor_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raiap/internal/crypto"
	"raiap/internal/domain"
	"raiap/internal/protocol/anchor"
	"raiap/internal/protocol/card"
	"raiap/internal/protocol/evolution"
	"raiap/internal/protocol/profile"
)

type fixture struct {
	card    *card.Card
	evo     *evolution.Evolution
	profile *profile.Profile
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	c, err := card.Create(domain.AlgorithmEd25519)
	require.NoError(t, err)
	kp, err := crypto.GenerateKeyPair(domain.AlgorithmEd25519)
	require.NoError(t, err)
	evo, err := evolution.Bootstrap(context.Background(), c, kp)
	require.NoError(t, err)
	p, err := profile.New(c, 0, "ctx", nil)
	require.NoError(t, err)
	return fixture{card: c, evo: evo, profile: p}
}

func claim(body string) domain.Event {
	return domain.Event{Kind: domain.EventClaim, Body: []byte(body)}
}

func TestCreateVerify(t *testing.T) {
	f := newFixture(t)
	var prev domain.Digest
	prev[0] = 7

	a, err := anchor.Create(f.profile, prev, claim("hello"), f.evo.Signer())
	require.NoError(t, err)

	assert.Equal(t, anchor.ComputeHash(a), a.Hash)
	assert.NoError(t, anchor.Verify(a, prev, f.evo.CurrentActiveKey()))

	ev, err := anchor.Event(a)
	require.NoError(t, err)
	assert.Equal(t, f.profile.ID(), ev.ProfileID)
	assert.Equal(t, []byte("hello"), ev.Body)
}

func TestVerify_TamperClasses(t *testing.T) {
	f := newFixture(t)
	var prev domain.Digest
	a, err := anchor.Create(f.profile, prev, claim("x"), f.evo.Signer())
	require.NoError(t, err)
	pub := f.evo.CurrentActiveKey()

	payload := a.Clone()
	payload.Payload[0] ^= 0x01
	assert.ErrorIs(t, anchor.Verify(payload, prev, pub), domain.ErrHashMismatch)

	link := a.Clone()
	link.PredecessorHash[3] ^= 0x01
	assert.ErrorIs(t, anchor.Verify(link, prev, pub), domain.ErrLinkBroken)

	sig := a.Clone()
	sig.Signature[0] ^= 0x01
	assert.ErrorIs(t, anchor.Verify(sig, prev, pub), domain.ErrBadSignature)

	ts := a.Clone()
	ts.Timestamp++
	assert.ErrorIs(t, anchor.Verify(ts, prev, pub), domain.ErrHashMismatch)

	other, err := crypto.GenerateKeyPair(domain.AlgorithmEd25519)
	require.NoError(t, err)
	assert.ErrorIs(t, anchor.Verify(a, prev, other.Public), domain.ErrUntrustedSigner)
}

func TestCreate_InactiveSigner(t *testing.T) {
	f := newFixture(t)
	s0 := f.evo.Signer()

	kp, err := crypto.GenerateKeyPair(domain.AlgorithmEd25519)
	require.NoError(t, err)
	auth, err := f.card.AuthorizeGeneration(context.Background(), kp.Public, 1, nil)
	require.NoError(t, err)
	_, err = f.evo.Rotate(kp, auth)
	require.NoError(t, err)

	_, err = anchor.Create(f.profile, domain.Digest{}, claim("late"), s0)
	assert.ErrorIs(t, err, domain.ErrInactiveSigner)
	assert.Equal(t, domain.KindStateViolation, domain.KindOf(err))
}

func TestSupersede_ReferencesTarget(t *testing.T) {
	f := newFixture(t)
	a0, err := anchor.Create(f.profile, domain.Digest{}, claim("v1"), f.evo.Signer())
	require.NoError(t, err)
	a1, err := anchor.Supersede(f.profile, a0.Hash, a0.Hash, []byte("v2"), f.evo.Signer())
	require.NoError(t, err)

	ev, err := anchor.Event(a1)
	require.NoError(t, err)
	assert.Equal(t, domain.EventSupersede, ev.Kind)
	assert.Equal(t, a0.Hash, ev.Supersedes)
}

func TestMarshal_RoundTripVerifies(t *testing.T) {
	f := newFixture(t)
	a, err := anchor.Create(f.profile, domain.Digest{}, claim("wire"), f.evo.Signer())
	require.NoError(t, err)

	back, err := anchor.Unmarshal(anchor.Marshal(a))
	require.NoError(t, err)
	assert.Equal(t, a, back)
	assert.NoError(t, anchor.Verify(back, domain.Digest{}, f.evo.CurrentActiveKey()))
}
