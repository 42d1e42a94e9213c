package identity_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"raiap/internal/crypto"
	"raiap/internal/domain"
	"raiap/internal/domain/mocks"
	"raiap/internal/platform/logger"
	"raiap/internal/platform/metrics"
	"raiap/internal/protocol/evolution"
	"raiap/internal/services/identity"
	"raiap/internal/store"
)

const pass = "Correct-Horse-42"

func newService(t *testing.T) (*identity.Service, *metrics.Metrics) {
	t.Helper()
	ks := store.NewKeystore(t.TempDir(), store.ScryptParams{N: 1 << 10, R: 8, P: 1})
	m := metrics.New(prometheus.NewRegistry())
	base := time.Unix(1_700_000_000, 0)
	var tick int64
	clock := func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	svc := identity.New(ks,
		identity.WithLogger(logger.Discard()),
		identity.WithMetrics(m),
		identity.WithClock(clock),
	)
	return svc, m
}

func TestCreateIdentity_WeakPassphrase(t *testing.T) {
	svc, _ := newService(t)
	for _, weak := range []string{"short1!A", "alllowercase-123", "NoDigitsHere!!", "NoSymbols12345"} {
		_, _, err := svc.CreateIdentity(context.Background(), weak)
		assert.ErrorIs(t, err, identity.ErrWeakPassphrase, weak)
	}
}

func TestCreateIdentity_FingerprintAndState(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	rec, fp, err := svc.CreateIdentity(ctx, pass)
	require.NoError(t, err)
	assert.Equal(t, crypto.Fingerprint(rec.MasterPublicKey), fp)

	got, err := svc.Fingerprint(pass)
	require.NoError(t, err)
	assert.Equal(t, fp, got)

	state, err := svc.PublicState(pass)
	require.NoError(t, err)
	assert.Equal(t, rec.IdentityID, state.Card.IdentityID)
	require.Len(t, state.Generations, 1)
	assert.Equal(t, domain.StatusActive, state.Generations[0].Status)
	assert.True(t, state.ActiveKey.IsZero(), "public state carries a private key")

	_, _, err = svc.CreateIdentity(ctx, pass)
	assert.ErrorIs(t, err, identity.ErrIdentityExists)
}

func TestOpen_WrongPassphrase(t *testing.T) {
	svc, _ := newService(t)
	_, _, err := svc.CreateIdentity(context.Background(), pass)
	require.NoError(t, err)

	_, err = svc.Open("Wrong-Horse-42")
	assert.ErrorIs(t, err, store.ErrWrongPassphrase)
}

func TestRotate_PersistsNewGeneration(t *testing.T) {
	svc, m := newService(t)
	ctx := context.Background()
	rec, _, err := svc.CreateIdentity(ctx, pass)
	require.NoError(t, err)

	g1, err := svc.Rotate(ctx, pass)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), g1.Index)
	assert.Equal(t, domain.AuthorityMaster, g1.Authority)

	sess, err := svc.Open(pass)
	require.NoError(t, err)
	defer sess.Close()
	gens := sess.Evolution.Generations()
	require.Len(t, gens, 2)
	assert.Equal(t, domain.StatusRevoked, gens[0].Status)
	assert.True(t, sess.Evolution.CurrentActiveKey().Equal(g1.OperationalKey))

	_, err = evolution.VerifyLineage(rec, gens)
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Rotations))
}

func TestSave_LaterRotationActivatesAfterSignedStamps(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	_, _, err := svc.CreateIdentity(ctx, pass)
	require.NoError(t, err)

	sess, err := svc.Open(pass)
	require.NoError(t, err)
	signer := sess.Evolution.Signer()
	signer.NotBefore(domain.TimestampOf(time.Unix(1_900_000_000, 0)))
	stamp, _, err := signer.SignStamped(func(domain.Timestamp) []byte { return []byte("anchor") })
	require.NoError(t, err)
	require.NoError(t, svc.Save(pass, sess))
	sess.Close()

	g1, err := svc.Rotate(ctx, pass)
	require.NoError(t, err)
	assert.Greater(t, g1.ActivatedAt, stamp)
}

func TestRecover_ThresholdFlow(t *testing.T) {
	svc, m := newService(t)
	ctx := context.Background()
	_, _, err := svc.CreateIdentity(ctx, pass)
	require.NoError(t, err)
	_, err = svc.Rotate(ctx, pass)
	require.NoError(t, err)

	shares, err := svc.IssueRecoveryShares(ctx, pass, 3, 5)
	require.NoError(t, err)
	require.Len(t, shares, 5)
	assert.Equal(t, 5.0, testutil.ToFloat64(m.RecoverySharesIssued))

	_, err = svc.Recover(ctx, pass, shares[:2])
	require.ErrorIs(t, err, domain.ErrInsufficientShares)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RecoveryFailures.WithLabelValues("threshold")))

	g, err := svc.Recover(ctx, pass, []domain.RecoveryShare{shares[0], shares[2], shares[4]})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), g.Index)
	assert.Equal(t, domain.AuthorityRecovery, g.Authority)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Recoveries))

	state, err := svc.PublicState(pass)
	require.NoError(t, err)
	require.Len(t, state.Generations, 3)
	assert.Equal(t, domain.StatusCompromised, state.Generations[1].Status)

	// The consumed set is bound to a generation that is no longer the frontier.
	_, err = svc.Recover(ctx, pass, shares[1:4])
	assert.ErrorIs(t, err, domain.ErrNoRecoverableGeneration)
}

func TestRecoverLost_FromPublishedState(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	_, _, err := svc.CreateIdentity(ctx, pass)
	require.NoError(t, err)
	shares, err := svc.IssueRecoveryShares(ctx, pass, 2, 3)
	require.NoError(t, err)
	public, err := svc.PublicState(pass)
	require.NoError(t, err)

	g, err := svc.RecoverLost(ctx, pass, public, shares[1:])
	require.NoError(t, err)
	assert.Equal(t, uint64(1), g.Index)

	sess, err := svc.Open(pass)
	require.NoError(t, err)
	defer sess.Close()
	assert.True(t, sess.Evolution.HoldsActiveKey())
	assert.Equal(t, domain.StatusCompromised, sess.Evolution.Generations()[0].Status)
}

func TestRecoverLost_ForeignState(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	_, _, err := svc.CreateIdentity(ctx, pass)
	require.NoError(t, err)

	other, _ := newService(t)
	_, _, err = other.CreateIdentity(ctx, pass)
	require.NoError(t, err)
	shares, err := other.IssueRecoveryShares(ctx, pass, 2, 3)
	require.NoError(t, err)
	foreign, err := other.PublicState(pass)
	require.NoError(t, err)

	_, err = svc.RecoverLost(ctx, pass, foreign, shares)
	assert.ErrorIs(t, err, domain.ErrLineageBroken)
}

func TestCreateIdentity_SaveFailureSurfaces(t *testing.T) {
	ctrl := gomock.NewController(t)
	st := mocks.NewMockIdentityStore(ctrl)
	saveErr := errors.New("disk full")

	st.EXPECT().SaveCard(pass, gomock.Any()).Return(nil)
	st.EXPECT().SaveEvolution(pass, gomock.Any()).Return(saveErr)

	svc := identity.New(st, identity.WithLogger(logger.Discard()))
	_, _, err := svc.CreateIdentity(context.Background(), pass)
	assert.ErrorIs(t, err, saveErr)
}

func TestRotate_LoadFailureSurfaces(t *testing.T) {
	ctrl := gomock.NewController(t)
	st := mocks.NewMockIdentityStore(ctrl)
	st.EXPECT().LoadCard(pass).Return(domain.CardSecrets{}, domain.ErrNotFound)

	svc := identity.New(st, identity.WithLogger(logger.Discard()))
	_, err := svc.Rotate(context.Background(), pass)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
