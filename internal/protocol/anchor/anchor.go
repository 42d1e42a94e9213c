// Package anchor creates and verifies single signed, hash-linked records.
//
// The anchor hash covers payload, predecessor hash, timestamp and signer key;
// the signature is over the hash. Verify reports which tamper class occurred:
// a rewired predecessor is LinkBroken, an edited field is HashMismatch, a
// forged or altered signature is BadSignature.
package anchor

import (
	"fmt"

	"raiap/internal/crypto"
	"raiap/internal/domain"
	"raiap/internal/protocol/wire"
)

// Signer produces signatures for one operational generation. SignStamped
// must fail with ErrInactiveSigner once that generation is no longer Active.
type Signer interface {
	PublicKey() domain.PublicKey
	SignStamped(build func(ts domain.Timestamp) []byte) (domain.Timestamp, []byte, error)
}

// Subject is whatever an event is recorded for.
type Subject interface {
	ID() domain.ProfileID
}

// ComputeHash recomputes the anchor hash from a's fields.
func ComputeHash(a domain.Anchor) domain.Digest {
	return crypto.Hash(wire.AnchorPreimage(a))
}

// Create records ev for subject after prev, signed by signer.
func Create(subject Subject, prev domain.Digest, ev domain.Event, signer Signer) (domain.Anchor, error) {
	ev.ProfileID = subject.ID()
	return CreateRaw(prev, wire.EncodeEvent(ev), signer)
}

// CreateRaw signs an opaque payload.
func CreateRaw(prev domain.Digest, payload []byte, signer Signer) (domain.Anchor, error) {
	a := domain.Anchor{
		PredecessorHash: prev,
		Payload:         append([]byte(nil), payload...),
		SignerPublicKey: signer.PublicKey(),
	}
	_, sig, err := signer.SignStamped(func(ts domain.Timestamp) []byte {
		a.Timestamp = ts
		a.Hash = ComputeHash(a)
		return a.Hash.Slice()
	})
	if err != nil {
		return domain.Anchor{}, fmt.Errorf("create anchor: %w", err)
	}
	a.Signature = sig
	return a, nil
}

// Supersede records a correction of the anchor with hash target.
func Supersede(subject Subject, prev, target domain.Digest, body []byte, signer Signer) (domain.Anchor, error) {
	return Create(subject, prev, domain.Event{Kind: domain.EventSupersede, Body: body, Supersedes: target}, signer)
}

// Verify checks a against the expected predecessor and the public key that
// should have signed it.
func Verify(a domain.Anchor, expectedPrev domain.Digest, signer domain.PublicKey) error {
	if a.PredecessorHash != expectedPrev {
		return domain.ErrLinkBroken
	}
	if ComputeHash(a) != a.Hash {
		return domain.ErrHashMismatch
	}
	if !a.SignerPublicKey.Equal(signer) {
		return fmt.Errorf("signed by %s, expected %s: %w", a.SignerPublicKey, signer, domain.ErrUntrustedSigner)
	}
	if !crypto.Verify(signer, a.Hash.Slice(), a.Signature) {
		return domain.ErrBadSignature
	}
	return nil
}

// Event decodes the structured payload of a.
func Event(a domain.Anchor) (domain.Event, error) {
	return wire.DecodeEvent(a.Payload)
}

// Marshal returns the stable serialized form of a.
func Marshal(a domain.Anchor) []byte { return wire.MarshalAnchor(a) }

// Unmarshal parses the serialized form of an anchor.
func Unmarshal(b []byte) (domain.Anchor, error) { return wire.UnmarshalAnchor(b) }
