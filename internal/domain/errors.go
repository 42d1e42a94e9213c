package domain

import (
	"errors"
	"fmt"
)

// Kind groups failures by how a caller should react to them.
type Kind uint8

const (
	KindUnknown Kind = iota
	// KindCryptographic covers forged signatures and tampered hashes. Never retried.
	KindCryptographic
	// KindChainIntegrity covers broken links and forks, reported with a position.
	KindChainIntegrity
	// KindThreshold covers share quorum problems; more shares may fix it.
	KindThreshold
	// KindStateViolation covers protocol misuse by the caller.
	KindStateViolation
	// KindStorage covers failures surfaced from a storage collaborator.
	KindStorage
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindCryptographic:
		return "cryptographic"
	case KindChainIntegrity:
		return "chain_integrity"
	case KindThreshold:
		return "threshold"
	case KindStateViolation:
		return "state_violation"
	case KindStorage:
		return "storage"
	default:
		return "unknown"
	}
}

// kindError is a sentinel that knows its Kind.
type kindError struct {
	kind Kind
	msg  string
}

func (e *kindError) Error() string { return e.msg }

func newKindError(kind Kind, msg string) error { return &kindError{kind: kind, msg: msg} }

var (
	ErrHashMismatch    = newKindError(KindCryptographic, "anchor hash mismatch")
	ErrBadSignature    = newKindError(KindCryptographic, "bad signature")
	ErrUntrustedSigner = newKindError(KindCryptographic, "signer was not active at anchor time")

	ErrLinkBroken    = newKindError(KindChainIntegrity, "predecessor link broken")
	ErrChainBroken   = newKindError(KindChainIntegrity, "anchor does not extend stream head")
	ErrStreamFork    = newKindError(KindChainIntegrity, "stream fork detected")
	ErrLineageBroken = newKindError(KindChainIntegrity, "generation lineage broken")
	ErrTimeRegressed = newKindError(KindChainIntegrity, "anchor timestamp precedes its predecessor")

	ErrInsufficientShares = newKindError(KindThreshold, "insufficient shares")
	ErrInconsistentShares = newKindError(KindThreshold, "inconsistent shares")

	ErrInactiveSigner          = newKindError(KindStateViolation, "signer generation is not active")
	ErrNoRecoverableGeneration = newKindError(KindStateViolation, "no recoverable generation")
	ErrMasterKeyUnavailable    = newKindError(KindStateViolation, "master key unavailable")
	ErrSelfAuthorization       = newKindError(KindStateViolation, "generation cannot authorize itself")
	ErrUnauthorizedGeneration  = newKindError(KindStateViolation, "generation authorization does not verify")
	ErrKeyMismatch             = newKindError(KindStateViolation, "private key does not match public key")
	ErrKeyReuse                = newKindError(KindStateViolation, "operational key was already used")
	ErrSigningKeyUnavailable   = newKindError(KindStateViolation, "operational private key is not held")
	ErrLinkableAttribute       = newKindError(KindStateViolation, "attribute links profile to identity")

	ErrNotFound = newKindError(KindStorage, "not found")
	ErrConflict = newKindError(KindStorage, "conflict")
)

// KindOf returns the Kind of the first classified error in err's chain.
func KindOf(err error) Kind {
	for err != nil {
		switch e := err.(type) {
		case *kindError:
			return e.kind
		case *ForkError:
			return KindChainIntegrity
		}
		err = errors.Unwrap(err)
	}
	return KindUnknown
}

// PositionError reports which element of a chain failed and why.
type PositionError struct {
	Position int
	Err      error
}

func (e *PositionError) Error() string {
	return fmt.Sprintf("position %d: %v", e.Position, e.Err)
}

func (e *PositionError) Unwrap() error { return e.Err }

// AtPosition wraps err with a chain position.
func AtPosition(pos int, err error) error {
	if err == nil {
		return nil
	}
	return &PositionError{Position: pos, Err: err}
}

// PositionOf extracts the chain position from err, if any.
func PositionOf(err error) (int, bool) {
	var pe *PositionError
	if errors.As(err, &pe) {
		return pe.Position, true
	}
	return 0, false
}

// ForkError describes two streams that agree up to Position and then diverge.
type ForkError struct {
	Position int
	Left     Digest
	Right    Digest
}

func (e *ForkError) Error() string {
	return fmt.Sprintf("%v at position %d: %s != %s", ErrStreamFork, e.Position, e.Left, e.Right)
}

func (e *ForkError) Unwrap() error { return ErrStreamFork }
