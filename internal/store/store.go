package store

import (
	"fmt"
	"strings"

	"raiap/internal/domain"
	"raiap/internal/protocol/stream"
)

// headOf returns the hash a new anchor must reference.
func headOf(id domain.StreamID, anchors []domain.Anchor) domain.Digest {
	if len(anchors) == 0 {
		return stream.GenesisMarker(id)
	}
	return anchors[len(anchors)-1].Hash
}

// checkExtends refuses a when it does not link to head.
func checkExtends(id domain.StreamID, head domain.Digest, pos int, a domain.Anchor) error {
	if a.PredecessorHash != head {
		return domain.AtPosition(pos, fmt.Errorf("stream %s: anchor does not extend head %s: %w", id, head, domain.ErrConflict))
	}
	return nil
}

func cloneAnchors(in []domain.Anchor) []domain.Anchor {
	out := make([]domain.Anchor, len(in))
	for i, a := range in {
		out[i] = a.Clone()
	}
	return out
}

// validStreamID rejects identifiers that could escape a key prefix or path.
func validStreamID(id domain.StreamID) error {
	name := string(id)
	if name == "" || strings.HasPrefix(name, ".") || strings.ContainsAny(name, "/\\\x00") {
		return fmt.Errorf("invalid stream id %q", name)
	}
	return nil
}
