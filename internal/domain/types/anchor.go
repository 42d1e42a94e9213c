package types

import (
	"bytes"
	"fmt"
)

// EventKind classifies the payload an anchor carries.
type EventKind uint8

const (
	EventUnknown EventKind = iota
	EventDisclosure
	EventClaim
	EventAttestation
	EventGrant
	EventConsent
	EventSupersede
)

var eventNames = [...]string{"unknown", "disclosure", "claim", "attestation", "grant", "consent", "supersede"}

// String returns the event kind name.
func (k EventKind) String() string {
	if int(k) < len(eventNames) {
		return eventNames[k]
	}
	return fmt.Sprintf("event(%d)", uint8(k))
}

// ParseEventKind maps a name to an EventKind.
func ParseEventKind(s string) (EventKind, error) {
	for i, name := range eventNames {
		if i > 0 && name == s {
			return EventKind(i), nil
		}
	}
	return EventUnknown, fmt.Errorf("unknown event kind %q", s)
}

// Event is the structured payload inside an anchor. Body is opaque to the core.
// Supersedes, when set, names the anchor this event corrects.
type Event struct {
	Kind       EventKind `json:"kind"`
	ProfileID  ProfileID `json:"profile_id"`
	Body       []byte    `json:"body"`
	Supersedes Digest    `json:"supersedes"`
}

// Anchor is one signed, hash-linked record in a stream.
type Anchor struct {
	Hash            Digest    `json:"anchor_hash"`
	PredecessorHash Digest    `json:"predecessor_anchor_hash"`
	Payload         []byte    `json:"payload"`
	Signature       []byte    `json:"signature"`
	Timestamp       Timestamp `json:"timestamp"`
	SignerPublicKey PublicKey `json:"signer_public_key"`
}

// Clone returns a deep copy of a.
func (a Anchor) Clone() Anchor {
	out := a
	out.Payload = bytes.Clone(a.Payload)
	out.Signature = bytes.Clone(a.Signature)
	out.SignerPublicKey = a.SignerPublicKey.Clone()
	return out
}
