package stream

import (
	"fmt"

	"raiap/internal/domain"
	"raiap/internal/protocol/evolution"
)

// History trusts whichever generation of a verified Evolution was active at
// each anchor's timestamp.
type History struct {
	card domain.CardRecord
	gens []domain.Generation
}

var _ domain.TrustRoot = (*History)(nil)

// NewHistory verifies the generation lineage under rec and returns a trust
// root over it.
func NewHistory(rec domain.CardRecord, gens []domain.Generation) (*History, error) {
	if _, err := evolution.VerifyLineage(rec, gens); err != nil {
		return nil, fmt.Errorf("trust root for %s: %w", rec.IdentityID, err)
	}
	out := make([]domain.Generation, len(gens))
	for i, g := range gens {
		out[i] = g.Clone()
	}
	return &History{card: rec, gens: out}, nil
}

// IdentityID is the identity the history is rooted in.
func (h *History) IdentityID() domain.IdentityID { return h.card.IdentityID }

// ResolveSigner returns the key of the generation active at a.Timestamp. An
// anchor carrying any other key, including a later generation's, is untrusted.
func (h *History) ResolveSigner(a domain.Anchor) (domain.PublicKey, error) {
	g, err := evolution.ActiveAt(h.gens, a.Timestamp)
	if err != nil {
		return domain.PublicKey{}, err
	}
	if !g.OperationalKey.Equal(a.SignerPublicKey) {
		return domain.PublicKey{}, fmt.Errorf("generation %d was active at %d: %w",
			g.Index, a.Timestamp, domain.ErrUntrustedSigner)
	}
	return g.OperationalKey, nil
}

// KnownKeys trusts a fixed set of known-good public keys regardless of time.
type KnownKeys []domain.PublicKey

var _ domain.TrustRoot = KnownKeys(nil)

// ResolveSigner accepts a when its signer is one of the known keys.
func (k KnownKeys) ResolveSigner(a domain.Anchor) (domain.PublicKey, error) {
	for _, pub := range k {
		if pub.Equal(a.SignerPublicKey) {
			return pub, nil
		}
	}
	return domain.PublicKey{}, fmt.Errorf("signer %s: %w", a.SignerPublicKey, domain.ErrUntrustedSigner)
}
