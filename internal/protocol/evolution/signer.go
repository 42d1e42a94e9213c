package evolution

import (
	"fmt"

	"raiap/internal/crypto"
	"raiap/internal/domain"
)

// Signer signs with the operational key of one specific generation.
type Signer struct {
	evo    *Evolution
	index  uint64
	public domain.PublicKey
}

// GenerationIndex is the generation this signer is bound to.
func (s *Signer) GenerationIndex() uint64 { return s.index }

// PublicKey is the operational public key of the bound generation.
func (s *Signer) PublicKey() domain.PublicKey { return s.public.Clone() }

// Status reports the bound generation's current status.
func (s *Signer) Status() domain.Status {
	s.evo.mu.Lock()
	defer s.evo.mu.Unlock()
	return s.evo.gens[s.index].Status
}

// SignStamped picks a timestamp inside the generation's validity interval,
// builds the message for it and signs, all while the generation is known to
// be Active. Successive stamps never decrease, even if the clock steps back.
func (s *Signer) SignStamped(build func(ts domain.Timestamp) []byte) (domain.Timestamp, []byte, error) {
	e := s.evo
	e.mu.Lock()
	defer e.mu.Unlock()

	if g := e.gens[s.index]; g.Status != domain.StatusActive {
		return 0, nil, fmt.Errorf("generation %d is %s: %w", s.index, g.Status, domain.ErrInactiveSigner)
	}
	if e.active.IsZero() {
		return 0, nil, fmt.Errorf("generation %d: %w", s.index, domain.ErrSigningKeyUnavailable)
	}
	ts := e.stampLocked()
	sig, err := crypto.Sign(e.active, build(ts))
	if err != nil {
		return 0, nil, err
	}
	return ts, sig, nil
}

// Sign signs msg with the bound generation's key.
func (s *Signer) Sign(msg []byte) ([]byte, error) {
	_, sig, err := s.SignStamped(func(domain.Timestamp) []byte { return msg })
	return sig, err
}

// NotBefore keeps the next stamp at or after ts.
func (s *Signer) NotBefore(ts domain.Timestamp) { s.evo.Observe(ts) }
