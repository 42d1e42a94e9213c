package interfaces

import domaintypes "raiap/internal/domain/types"

// TrustRoot decides which public key was entitled to sign an anchor.
type TrustRoot interface {
	ResolveSigner(anchor domaintypes.Anchor) (domaintypes.PublicKey, error)
}
