package stream

import (
	"fmt"

	"raiap/internal/domain"
	"raiap/internal/protocol/anchor"
)

// VerifyAnchors walks anchors from genesis to head. It returns the head hash
// on success or the first failure wrapped with its position.
func VerifyAnchors(id domain.StreamID, anchors []domain.Anchor, root domain.TrustRoot) (domain.Digest, error) {
	prev := GenesisMarker(id)
	var last domain.Timestamp
	for i, a := range anchors {
		if err := anchor.Verify(a, prev, a.SignerPublicKey); err != nil {
			return domain.Digest{}, domain.AtPosition(i, err)
		}
		if i > 0 && a.Timestamp < last {
			return domain.Digest{}, domain.AtPosition(i, domain.ErrTimeRegressed)
		}
		pub, err := root.ResolveSigner(a)
		if err != nil {
			return domain.Digest{}, domain.AtPosition(i, err)
		}
		if !pub.Equal(a.SignerPublicKey) {
			return domain.Digest{}, domain.AtPosition(i,
				fmt.Errorf("trust root expects %s: %w", pub, domain.ErrUntrustedSigner))
		}
		prev, last = a.Hash, a.Timestamp
	}
	return prev, nil
}

// DetectFork compares two copies of what should be the same stream. Copies
// rooted at different genesis markers are unrelated, and one being a prefix
// of the other is ordinary lag; both return nil. Otherwise the first
// diverging position is reported as a *domain.ForkError.
func DetectFork(left, right []domain.Anchor) error {
	if len(left) == 0 || len(right) == 0 {
		return nil
	}
	if left[0].PredecessorHash != right[0].PredecessorHash {
		return nil
	}
	for i := 0; i < min(len(left), len(right)); i++ {
		if left[i].Hash != right[i].Hash {
			return &domain.ForkError{Position: i, Left: left[i].Hash, Right: right[i].Hash}
		}
	}
	return nil
}

// DetectFork compares this stream's snapshot against another copy.
func (s *Stream) DetectFork(other []domain.Anchor) error {
	return DetectFork(s.Snapshot(), other)
}
