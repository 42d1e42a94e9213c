package store_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/suite"

	"raiap/internal/crypto"
	"raiap/internal/domain"
	"raiap/internal/protocol/anchor"
	"raiap/internal/protocol/stream"
)

// StreamStoreSuite is run against every backend.
type StreamStoreSuite struct {
	suite.Suite
	open  func(t *testing.T) domain.StreamStore
	store domain.StreamStore
	key   domain.KeyPair
}

func (s *StreamStoreSuite) SetupTest() {
	s.store = s.open(s.T())
	kp, err := crypto.GenerateKeyPair(domain.AlgorithmEd25519)
	s.Require().NoError(err)
	s.key = kp
}

// chain builds n signed anchors for id starting after prev.
func (s *StreamStoreSuite) chain(id domain.StreamID, prev domain.Digest, n int, label string) []domain.Anchor {
	out := make([]domain.Anchor, 0, n)
	for i := 0; i < n; i++ {
		a := domain.Anchor{
			PredecessorHash: prev,
			Payload:         []byte(fmt.Sprintf("%s-%d", label, i)),
			Timestamp:       domain.Timestamp(1_000 + i),
			SignerPublicKey: s.key.Public,
		}
		a.Hash = anchor.ComputeHash(a)
		sig, err := crypto.Sign(s.key.Private, a.Hash.Slice())
		s.Require().NoError(err)
		a.Signature = sig
		out = append(out, a)
		prev = a.Hash
	}
	return out
}

func (s *StreamStoreSuite) TestUnknownStreamIsEmpty() {
	got, err := s.store.LoadStream(context.Background(), stream.NewID())
	s.Require().NoError(err)
	s.Empty(got)
}

func (s *StreamStoreSuite) TestPersistAndLoadInOrder() {
	ctx := context.Background()
	id := stream.NewID()
	anchors := s.chain(id, stream.GenesisMarker(id), 5, "a")
	for _, a := range anchors {
		s.Require().NoError(s.store.PersistAnchor(ctx, id, a))
	}

	got, err := s.store.LoadStream(ctx, id)
	s.Require().NoError(err)
	s.Require().Len(got, len(anchors))
	for i := range anchors {
		s.Equal(anchors[i].Hash, got[i].Hash)
		s.Equal(anchors[i].Payload, got[i].Payload)
		s.Equal(anchors[i].Signature, got[i].Signature)
		s.True(anchors[i].SignerPublicKey.Equal(got[i].SignerPublicKey))
	}

	_, err = stream.VerifyAnchors(id, got, stream.KnownKeys{s.key.Public})
	s.NoError(err)
}

func (s *StreamStoreSuite) TestRejectsAnchorNotExtendingHead() {
	ctx := context.Background()
	id := stream.NewID()
	anchors := s.chain(id, stream.GenesisMarker(id), 2, "a")

	err := s.store.PersistAnchor(ctx, id, anchors[1])
	s.ErrorIs(err, domain.ErrConflict)

	s.Require().NoError(s.store.PersistAnchor(ctx, id, anchors[0]))
	s.Require().NoError(s.store.PersistAnchor(ctx, id, anchors[1]))

	err = s.store.PersistAnchor(ctx, id, anchors[1])
	s.ErrorIs(err, domain.ErrConflict)
	s.Equal(domain.KindStorage, domain.KindOf(err))
	pos, ok := domain.PositionOf(err)
	s.True(ok)
	s.Equal(2, pos)
}

func (s *StreamStoreSuite) TestStreamsAreIsolated() {
	ctx := context.Background()
	a, b := stream.NewID(), stream.NewID()

	// An anchor rooted in a's genesis cannot start b.
	first := s.chain(a, stream.GenesisMarker(a), 1, "a")[0]
	s.ErrorIs(s.store.PersistAnchor(ctx, b, first), domain.ErrConflict)
	s.Require().NoError(s.store.PersistAnchor(ctx, a, first))

	got, err := s.store.LoadStream(ctx, b)
	s.Require().NoError(err)
	s.Empty(got)
}

func (s *StreamStoreSuite) TestConcurrentAppendsOneWins() {
	ctx := context.Background()
	id := stream.NewID()
	genesis := stream.GenesisMarker(id)

	const writers = 10
	var (
		wg       sync.WaitGroup
		wins     atomic.Int32
		conflict atomic.Int32
	)
	for i := 0; i < writers; i++ {
		a := s.chain(id, genesis, 1, fmt.Sprintf("w%d", i))[0]
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.store.PersistAnchor(ctx, id, a)
			switch {
			case err == nil:
				wins.Add(1)
			case errors.Is(err, domain.ErrConflict):
				conflict.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), wins.Load())
	s.Equal(int32(writers-1), conflict.Load())
	got, err := s.store.LoadStream(ctx, id)
	s.Require().NoError(err)
	s.Len(got, 1)
}

func (s *StreamStoreSuite) TestListStreams() {
	catalog, ok := s.store.(domain.StreamCatalog)
	if !ok {
		s.T().Skip("store has no catalog")
	}
	ctx := context.Background()
	ids := []domain.StreamID{stream.NewID(), stream.NewID()}
	for _, id := range ids {
		s.Require().NoError(s.store.PersistAnchor(ctx, id, s.chain(id, stream.GenesisMarker(id), 1, "x")[0]))
	}
	got, err := catalog.ListStreams(ctx)
	s.Require().NoError(err)
	s.Subset(got, ids)
}
