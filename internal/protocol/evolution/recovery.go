package evolution

import (
	"fmt"

	"github.com/google/uuid"

	"raiap/internal/crypto"
	"raiap/internal/domain"
	"raiap/internal/protocol/wire"
)

// IssueRecoveryShares splits the Active generation's private key into total
// shares, any threshold of which reconstruct it. The share set metadata is
// recorded on the generation; the shares are returned for distribution.
func (e *Evolution) IssueRecoveryShares(threshold, total int) ([]domain.RecoveryShare, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	g := e.frontierLocked()
	if e.active.IsZero() {
		return nil, fmt.Errorf("issue shares for generation %d: %w", g.Index, domain.ErrSigningKeyUnavailable)
	}
	parts, err := crypto.SplitSecret(e.active.Seed, threshold, total)
	if err != nil {
		return nil, fmt.Errorf("issue shares for generation %d: %w", g.Index, err)
	}

	set := domain.ShareSet{
		ID:         uuid.NewString(),
		Threshold:  uint8(threshold),
		Total:      uint8(total),
		Commitment: KeyCommitment(g.OperationalKey),
	}
	g.ShareSet = &set

	out := make([]domain.RecoveryShare, len(parts))
	for i, p := range parts {
		out[i] = domain.RecoveryShare{
			SetID:           set.ID,
			IdentityID:      e.card.IdentityID,
			GenerationIndex: g.Index,
			Algorithm:       g.OperationalKey.Algorithm,
			Commitment:      set.Commitment,
			Share:           p,
		}
	}
	return out, nil
}

// Recover reconstructs the frontier generation's key from shares, uses it to
// authorize kp as the next generation, and marks the frontier Compromised.
// Shares issued for a generation that has since been superseded are refused.
func (e *Evolution) Recover(shares []domain.RecoveryShare, kp domain.KeyPair) (domain.Generation, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	target := e.frontierLocked()
	if len(shares) == 0 {
		return domain.Generation{}, fmt.Errorf("recover: %w", domain.ErrInsufficientShares)
	}
	ref := shares[0]
	for _, s := range shares[1:] {
		if s.SetID != ref.SetID || s.GenerationIndex != ref.GenerationIndex ||
			s.Commitment != ref.Commitment || s.Algorithm != ref.Algorithm || s.IdentityID != ref.IdentityID {
			return domain.Generation{}, fmt.Errorf("recover: shares from different sets: %w", domain.ErrInconsistentShares)
		}
	}
	if ref.IdentityID != e.card.IdentityID {
		return domain.Generation{}, fmt.Errorf("recover: shares belong to %s: %w", ref.IdentityID, domain.ErrInconsistentShares)
	}
	if ref.GenerationIndex < target.Index {
		return domain.Generation{}, fmt.Errorf("recover: generation %d superseded by %d: %w",
			ref.GenerationIndex, target.Index, domain.ErrNoRecoverableGeneration)
	}
	if ref.GenerationIndex > target.Index {
		return domain.Generation{}, fmt.Errorf("recover: unknown generation %d: %w", ref.GenerationIndex, domain.ErrInconsistentShares)
	}
	if ref.Commitment != KeyCommitment(target.OperationalKey) {
		return domain.Generation{}, fmt.Errorf("recover: commitment mismatch: %w", domain.ErrInconsistentShares)
	}

	raw := make([]domain.Share, len(shares))
	for i, s := range shares {
		raw[i] = s.Share
	}
	seed, err := crypto.CombineShares(raw)
	if err != nil {
		return domain.Generation{}, fmt.Errorf("recover generation %d: %w", target.Index, err)
	}
	defer crypto.Wipe(seed)

	recovered, err := crypto.KeyPairFromSeed(target.OperationalKey.Algorithm, seed)
	if err != nil || !recovered.Public.Equal(target.OperationalKey) {
		return domain.Generation{}, fmt.Errorf("recover generation %d: reconstructed key does not match: %w",
			target.Index, domain.ErrInconsistentShares)
	}
	defer crypto.WipePrivate(recovered.Private)

	if kp.Public.Equal(recovered.Public) {
		return domain.Generation{}, fmt.Errorf("recover generation %d: %w", target.Index, domain.ErrSelfAuthorization)
	}
	if err := e.checkCandidateLocked(kp); err != nil {
		return domain.Generation{}, fmt.Errorf("recover generation %d: %w", target.Index, err)
	}
	auth, err := crypto.Sign(recovered.Private, wire.AuthorizationMessage(e.card.IdentityID, kp.Public, target.Index+1))
	if err != nil {
		return domain.Generation{}, fmt.Errorf("recover generation %d: %w", target.Index, err)
	}
	return e.installLocked(kp, auth, domain.AuthorityRecovery, domain.StatusCompromised), nil
}
