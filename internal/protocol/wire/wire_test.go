package wire_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"

	"raiap/internal/domain"
	"raiap/internal/protocol/wire"
)

func sampleAnchor() domain.Anchor {
	return domain.Anchor{
		Hash:            domain.Digest{1, 2, 3},
		PredecessorHash: domain.Digest{4, 5, 6},
		Payload:         []byte("payload"),
		Signature:       []byte("signature"),
		Timestamp:       -42,
		SignerPublicKey: domain.PublicKey{Algorithm: domain.AlgorithmEd25519, Key: []byte{7, 8, 9}},
	}
}

func TestAnchor_MarshalUnmarshal(t *testing.T) {
	a := sampleAnchor()
	got, err := wire.UnmarshalAnchor(wire.MarshalAnchor(a))
	require.NoError(t, err)
	assert.Equal(t, a, got)
}

func TestAnchor_UnknownFieldsSkipped(t *testing.T) {
	a := sampleAnchor()
	b := wire.MarshalAnchor(a)
	b = protowire.AppendTag(b, 99, protowire.BytesType)
	b = protowire.AppendBytes(b, []byte("future"))

	got, err := wire.UnmarshalAnchor(b)
	require.NoError(t, err)
	assert.Equal(t, a, got)
}

func TestAnchor_MissingFieldsRejected(t *testing.T) {
	b := wire.MarshalAnchor(sampleAnchor())
	_, err := wire.UnmarshalAnchor(b[:len(b)/2])
	assert.ErrorIs(t, err, wire.ErrMalformed)
}

func TestEvent_RoundTrip(t *testing.T) {
	ev := domain.Event{
		Kind:       domain.EventSupersede,
		ProfileID:  "p-1",
		Body:       []byte("body"),
		Supersedes: domain.Digest{9},
	}
	got, err := wire.DecodeEvent(wire.EncodeEvent(ev))
	require.NoError(t, err)
	assert.Equal(t, ev, got)

	_, err = wire.DecodeEvent(wire.MarshalAnchor(sampleAnchor()))
	assert.ErrorIs(t, err, wire.ErrMalformed)
}

func TestPreimages_DomainSeparated(t *testing.T) {
	pub := domain.PublicKey{Algorithm: domain.AlgorithmEd25519, Key: []byte{1}}
	auth := wire.AuthorizationMessage("id", pub, 1)
	gen := wire.GenerationPreimage(domain.Generation{Index: 1, OperationalKey: pub})
	assert.False(t, bytes.Equal(auth, gen))

	assert.NotEqual(t,
		wire.AuthorizationMessage("id", pub, 1),
		wire.AuthorizationMessage("id", pub, 2))
	assert.NotEqual(t,
		wire.MarkerPreimage(wire.TagRoot, "x"),
		wire.MarkerPreimage(wire.TagGenesis, "x"))
}

func TestGenerationPreimage_IgnoresMutableFields(t *testing.T) {
	g := domain.Generation{Index: 3, Status: domain.StatusActive}
	before := wire.GenerationPreimage(g)
	g.Status = domain.StatusRevoked
	g.ShareSet = &domain.ShareSet{ID: "s", Threshold: 2, Total: 3}
	assert.Equal(t, before, wire.GenerationPreimage(g))
}

func TestAnchorPreimage_ExcludesSignature(t *testing.T) {
	a := sampleAnchor()
	before := wire.AnchorPreimage(a)
	a.Signature = []byte("different")
	a.Hash = domain.Digest{}
	assert.Equal(t, before, wire.AnchorPreimage(a))

	a.Payload = []byte("payloae")
	assert.NotEqual(t, before, wire.AnchorPreimage(a))
}
