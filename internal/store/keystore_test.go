package store_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raiap/internal/crypto"
	"raiap/internal/domain"
	"raiap/internal/protocol/card"
	"raiap/internal/protocol/stream"
	"raiap/internal/store"
)

// Cheap parameters keep the tests fast.
var testScrypt = store.ScryptParams{N: 1 << 10, R: 8, P: 1}

func TestKeystore_CardRoundTrip(t *testing.T) {
	dir := t.TempDir()
	ks := store.NewKeystore(dir, testScrypt)
	assert.False(t, ks.Exists())

	c, err := card.Create(domain.AlgorithmEd25519)
	require.NoError(t, err)
	secrets, err := c.Secrets()
	require.NoError(t, err)

	require.NoError(t, ks.SaveCard("pass", secrets))
	assert.True(t, ks.Exists())

	got, err := ks.LoadCard("pass")
	require.NoError(t, err)
	assert.Equal(t, secrets.Record.IdentityID, got.Record.IdentityID)
	assert.True(t, secrets.Record.MasterPublicKey.Equal(got.Record.MasterPublicKey))
	assert.Equal(t, secrets.Master.Seed, got.Master.Seed)

	raw, err := os.ReadFile(filepath.Join(dir, "card.enc"))
	require.NoError(t, err)
	assert.False(t, bytes.Contains(raw, []byte(c.IdentityID())), "card file leaks identity id")
}

func TestKeystore_WrongPassphrase(t *testing.T) {
	ks := store.NewKeystore(t.TempDir(), testScrypt)
	c, err := card.Create(domain.AlgorithmEd25519)
	require.NoError(t, err)
	secrets, err := c.Secrets()
	require.NoError(t, err)
	require.NoError(t, ks.SaveCard("correct", secrets))

	_, err = ks.LoadCard("wrong")
	assert.ErrorIs(t, err, store.ErrWrongPassphrase)
}

func TestKeystore_MissingIsNotFound(t *testing.T) {
	ks := store.NewKeystore(t.TempDir(), testScrypt)
	_, err := ks.LoadEvolution("pass")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestKeystore_PurposeBound(t *testing.T) {
	dir := t.TempDir()
	ks := store.NewKeystore(dir, testScrypt)
	c, err := card.Create(domain.AlgorithmEd25519)
	require.NoError(t, err)
	secrets, err := c.Secrets()
	require.NoError(t, err)
	require.NoError(t, ks.SaveCard("pass", secrets))

	require.NoError(t, os.Rename(filepath.Join(dir, "card.enc"), filepath.Join(dir, "evolution.enc")))
	_, err = ks.LoadEvolution("pass")
	assert.Error(t, err)
}

func TestShareFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "holder-1.json")
	share := domain.RecoveryShare{
		SetID:           "set",
		IdentityID:      "id",
		GenerationIndex: 3,
		Algorithm:       domain.AlgorithmEd25519,
		Share:           domain.Share{Index: 1, Threshold: 2, Value: []byte{1, 2, 3}},
	}
	require.NoError(t, store.WriteShareFile(path, "holder pass", share))

	got, err := store.ReadShareFile(path, "holder pass")
	require.NoError(t, err)
	assert.Equal(t, share, got)

	_, err = store.ReadShareFile(path, "nope")
	assert.ErrorIs(t, err, crypto.ErrSealedOpen)
}

func TestArchive_RoundTrip(t *testing.T) {
	kp, err := crypto.GenerateKeyPair(domain.AlgorithmSecp256k1)
	require.NoError(t, err)
	s := &StreamStoreSuite{key: kp}
	s.SetT(t)
	id := stream.NewID()
	anchors := s.chain(id, stream.GenesisMarker(id), 3, "arch")

	var buf bytes.Buffer
	require.NoError(t, store.WriteArchive(&buf, id, "pseudo", anchors))

	hdr, got, err := store.ReadArchive(&buf)
	require.NoError(t, err)
	assert.Equal(t, id, hdr.StreamID)
	assert.Equal(t, domain.ProfileID("pseudo"), hdr.ProfileID)
	assert.Equal(t, anchors[2].Hash, hdr.Head)
	require.Len(t, got, 3)

	_, err = stream.VerifyAnchors(id, got, stream.KnownKeys{kp.Public})
	assert.NoError(t, err)
}

func TestArchive_RejectsGarbage(t *testing.T) {
	_, _, err := store.ReadArchive(bytes.NewReader([]byte("not xz")))
	assert.Error(t, err)
}
