package evolution

import (
	"fmt"

	"raiap/internal/crypto"
	"raiap/internal/domain"
	"raiap/internal/protocol/wire"
)

// RootMarker is the predecessor hash of generation 0 for an identity.
func RootMarker(id domain.IdentityID) domain.Digest {
	return crypto.Hash(wire.MarkerPreimage(wire.TagRoot, string(id)))
}

// GenerationHash is the hash a successor stores as its predecessor_hash.
func GenerationHash(g domain.Generation) domain.Digest {
	return crypto.Hash(wire.GenerationPreimage(g))
}

// KeyCommitment binds recovery shares to the public key they reconstruct.
func KeyCommitment(pub domain.PublicKey) domain.Digest {
	return crypto.Hash(wire.PublicKeyBytes(pub))
}

// VerifyLineage walks gens from the newest generation back to generation 0
// and returns the identity the chain is rooted in. Every link, authorization
// and status is checked; the first failure is returned with its position.
func VerifyLineage(rec domain.CardRecord, gens []domain.Generation) (domain.IdentityID, error) {
	if len(gens) == 0 {
		return "", fmt.Errorf("empty evolution: %w", domain.ErrLineageBroken)
	}
	last := len(gens) - 1
	if gens[last].Status != domain.StatusActive {
		return "", domain.AtPosition(last, fmt.Errorf("frontier is %s: %w", gens[last].Status, domain.ErrLineageBroken))
	}

	for i := last; i >= 0; i-- {
		if err := checkGeneration(rec, gens, i); err != nil {
			return "", domain.AtPosition(i, err)
		}
	}
	return rec.IdentityID, nil
}

func checkGeneration(rec domain.CardRecord, gens []domain.Generation, i int) error {
	g := gens[i]
	if g.Index != uint64(i) {
		return fmt.Errorf("index %d at slot %d: %w", g.Index, i, domain.ErrLineageBroken)
	}
	if i < len(gens)-1 && g.Status != domain.StatusRevoked && g.Status != domain.StatusCompromised {
		return fmt.Errorf("superseded generation is %s: %w", g.Status, domain.ErrLineageBroken)
	}
	if g.OperationalKey.Equal(rec.MasterPublicKey) {
		return domain.ErrSelfAuthorization
	}

	var (
		expected  domain.Digest
		authority domain.PublicKey
	)
	if i == 0 {
		expected = RootMarker(rec.IdentityID)
		if g.Authority != domain.AuthorityMaster {
			return fmt.Errorf("generation 0 authorized by %s: %w", g.Authority, domain.ErrUnauthorizedGeneration)
		}
		authority = rec.MasterPublicKey
	} else {
		prev := gens[i-1]
		expected = GenerationHash(prev)
		if g.ActivatedAt < prev.ActivatedAt {
			return fmt.Errorf("activation precedes predecessor: %w", domain.ErrLineageBroken)
		}
		switch g.Authority {
		case domain.AuthorityMaster:
			if prev.Status != domain.StatusRevoked {
				return fmt.Errorf("rotation over %s generation: %w", prev.Status, domain.ErrLineageBroken)
			}
			authority = rec.MasterPublicKey
		case domain.AuthorityRecovery:
			if prev.Status != domain.StatusCompromised {
				return fmt.Errorf("recovery over %s generation: %w", prev.Status, domain.ErrLineageBroken)
			}
			authority = prev.OperationalKey
		default:
			return fmt.Errorf("unknown authority %s: %w", g.Authority, domain.ErrUnauthorizedGeneration)
		}
	}
	if g.PredecessorHash != expected {
		return domain.ErrLineageBroken
	}

	msg := wire.AuthorizationMessage(rec.IdentityID, g.OperationalKey, g.Index)
	if crypto.Verify(g.OperationalKey, msg, g.Authorization) {
		return domain.ErrSelfAuthorization
	}
	if !crypto.Verify(authority, msg, g.Authorization) {
		return domain.ErrUnauthorizedGeneration
	}
	return nil
}

// ActiveAt returns the generation whose validity interval contains ts.
// Timestamps before generation 0 have no signer.
func ActiveAt(gens []domain.Generation, ts domain.Timestamp) (domain.Generation, error) {
	for i := len(gens) - 1; i >= 0; i-- {
		if gens[i].ActivatedAt <= ts {
			return gens[i], nil
		}
	}
	return domain.Generation{}, fmt.Errorf("no generation active at %d: %w", ts, domain.ErrUntrustedSigner)
}
