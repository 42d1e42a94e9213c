package interfaces

import (
	"context"

	domaintypes "raiap/internal/domain/types"
)

// IdentityService creates the local identity and evolves its operational keys.
type IdentityService interface {
	CreateIdentity(ctx context.Context, passphrase string) (domaintypes.CardRecord, domaintypes.Fingerprint, error)
	Fingerprint(passphrase string) (domaintypes.Fingerprint, error)
	Rotate(ctx context.Context, passphrase string) (domaintypes.Generation, error)
	IssueRecoveryShares(ctx context.Context, passphrase string, threshold, total int) ([]domaintypes.RecoveryShare, error)
	Recover(ctx context.Context, passphrase string, shares []domaintypes.RecoveryShare) (domaintypes.Generation, error)
	PublicState(passphrase string) (domaintypes.EvolutionState, error)
}

// StreamService appends anchors to persisted streams and verifies them.
type StreamService interface {
	Append(ctx context.Context, id domaintypes.StreamID, anchor domaintypes.Anchor) (domaintypes.Digest, error)
	Load(ctx context.Context, id domaintypes.StreamID) ([]domaintypes.Anchor, error)
	Verify(ctx context.Context, id domaintypes.StreamID, root TrustRoot) (domaintypes.Digest, error)
	DetectFork(ctx context.Context, id domaintypes.StreamID, other []domaintypes.Anchor) error
}
