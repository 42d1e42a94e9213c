//go:generate mockgen -source=stores.go -destination=../mocks/stores.go -package=mocks

package interfaces

import (
	"context"

	domaintypes "raiap/internal/domain/types"
)

// StreamStore is the storage collaborator for anchor streams. A successful
// PersistAnchor is atomic and durable; the store refuses anchors that do not
// extend its current head.
type StreamStore interface {
	LoadStream(ctx context.Context, id domaintypes.StreamID) ([]domaintypes.Anchor, error)
	PersistAnchor(ctx context.Context, id domaintypes.StreamID, anchor domaintypes.Anchor) error
}

// StreamCatalog enumerates the streams a store holds.
type StreamCatalog interface {
	ListStreams(ctx context.Context) ([]domaintypes.StreamID, error)
}

// IdentityStore persists the Card secrets and the Evolution state,
// encrypted under a passphrase.
type IdentityStore interface {
	SaveCard(passphrase string, secrets domaintypes.CardSecrets) error
	LoadCard(passphrase string) (domaintypes.CardSecrets, error)

	SaveEvolution(passphrase string, state domaintypes.EvolutionState) error
	LoadEvolution(passphrase string) (domaintypes.EvolutionState, error)
}
