package stream

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sasha-s/go-deadlock"

	"raiap/internal/crypto"
	"raiap/internal/domain"
	"raiap/internal/protocol/wire"
)

// Stream is an append-only anchor sequence.
type Stream struct {
	mu      deadlock.RWMutex
	id      domain.StreamID
	profile domain.ProfileID
	anchors []domain.Anchor
	head    domain.Digest
}

// NewID allocates a fresh stream identifier.
func NewID() domain.StreamID { return domain.StreamID(uuid.NewString()) }

// GenesisMarker is the predecessor hash of a stream's first anchor.
func GenesisMarker(id domain.StreamID) domain.Digest {
	return crypto.Hash(wire.MarkerPreimage(wire.TagGenesis, string(id)))
}

// New returns an empty stream whose head is the genesis marker.
func New(id domain.StreamID, profile domain.ProfileID) *Stream {
	return &Stream{id: id, profile: profile, head: GenesisMarker(id)}
}

// Load rebuilds a stream from stored anchors. Only the links and timestamp
// order are checked; use Verify for signatures and signer validity.
func Load(id domain.StreamID, profile domain.ProfileID, anchors []domain.Anchor) (*Stream, error) {
	s := New(id, profile)
	for _, a := range anchors {
		if err := s.Append(a); err != nil {
			return nil, fmt.Errorf("load stream %s: %w", id, err)
		}
	}
	return s, nil
}

// ID returns the stream identifier.
func (s *Stream) ID() domain.StreamID { return s.id }

// ProfileID returns the profile pseudonym the stream records events for.
func (s *Stream) ProfileID() domain.ProfileID { return s.profile }

// Head returns the hash of the last anchor, or the genesis marker.
func (s *Stream) Head() domain.Digest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.head
}

// Tip returns the head hash and the timestamp of the last anchor. The
// timestamp is zero for an empty stream.
func (s *Stream) Tip() (domain.Digest, domain.Timestamp) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.anchors) == 0 {
		return s.head, 0
	}
	return s.head, s.anchors[len(s.anchors)-1].Timestamp
}

// Len returns the number of anchors.
func (s *Stream) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.anchors)
}

// Snapshot returns the anchors present at call time. The slice is capped so
// later appends never show through; callers must not modify its elements.
func (s *Stream) Snapshot() []domain.Anchor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.anchors[:len(s.anchors):len(s.anchors)]
}

// Append adds a if it extends the head and does not predate the last anchor.
func (s *Stream) Append(a domain.Anchor) error {
	return s.AppendCommit(a, nil)
}

// AppendIf appends only while the head still equals expected.
func (s *Stream) AppendIf(expected domain.Digest, a domain.Anchor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.head != expected {
		return fmt.Errorf("stream %s head moved to %s: %w", s.id, s.head, domain.ErrConflict)
	}
	return s.appendLocked(a, nil)
}

// AppendCommit appends a after commit succeeds. commit runs inside the
// append critical section with the position a will take.
func (s *Stream) AppendCommit(a domain.Anchor, commit func(pos int, a domain.Anchor) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendLocked(a, commit)
}

func (s *Stream) appendLocked(a domain.Anchor, commit func(int, domain.Anchor) error) error {
	pos := len(s.anchors)
	if a.PredecessorHash != s.head {
		return domain.AtPosition(pos, domain.ErrChainBroken)
	}
	if pos > 0 && a.Timestamp < s.anchors[pos-1].Timestamp {
		return domain.AtPosition(pos, fmt.Errorf("%w: %w", domain.ErrChainBroken, domain.ErrTimeRegressed))
	}
	a = a.Clone()
	if commit != nil {
		if err := commit(pos, a); err != nil {
			return err
		}
	}
	s.anchors = append(s.anchors, a)
	s.head = a.Hash
	return nil
}

// Verify checks the snapshot taken at call time against root and returns
// the verified head.
func (s *Stream) Verify(root domain.TrustRoot) (domain.Digest, error) {
	return VerifyAnchors(s.id, s.Snapshot(), root)
}
