// Package profile builds pseudonymous, attribute-minimized views of an
// identity. A profile is addressed by a per-context pseudonym and never
// carries the identity_id or master key in anything it discloses.
package profile

import (
	"bytes"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"raiap/internal/crypto"
	"raiap/internal/domain"
	"raiap/internal/protocol/wire"
)

const saltBytes = 16

// Attribute is the public form of one claim. Exactly one of Value and
// Commitment is set.
type Attribute struct {
	Key        string         `json:"key"`
	Value      []byte         `json:"value,omitempty"`
	Commitment *domain.Digest `json:"commitment,omitempty"`
}

// Committed reports whether the attribute is hidden behind a commitment.
func (a Attribute) Committed() bool { return a.Commitment != nil }

// Opening reveals a committed attribute to a chosen verifier.
type Opening struct {
	Key   string `json:"key"`
	Value []byte `json:"value"`
	Salt  []byte `json:"salt"`
}

// Disclosure is what a profile hands out: its pseudonym, the public
// attribute view and any openings the holder chose to include.
type Disclosure struct {
	ProfileID  domain.ProfileID `json:"profile_id"`
	Attributes []Attribute      `json:"attributes"`
	Openings   []Opening        `json:"openings,omitempty"`
}

// Source is the subset of a Card a profile needs.
type Source interface {
	Record() domain.CardRecord
	Pseudonym(context string) (domain.ProfileID, error)
}

// Profile is one pseudonymous view. The identity back-reference stays local.
type Profile struct {
	id         domain.ProfileID
	identity   domain.IdentityID
	context    string
	generation uint64
	attrs      map[string]Attribute
	openings   map[string]Opening
	forbidden  [][]byte
}

// New derives the pseudonym for context and records attrs as plain values.
// generation is the Evolution generation expected to sign for the profile.
func New(src Source, generation uint64, context string, attrs map[string][]byte) (*Profile, error) {
	if context == "" {
		return nil, fmt.Errorf("profile: empty disclosure context")
	}
	id, err := src.Pseudonym(context)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", context, err)
	}
	rec := src.Record()
	p := &Profile{
		id:         id,
		identity:   rec.IdentityID,
		context:    context,
		generation: generation,
		attrs:      make(map[string]Attribute, len(attrs)),
		openings:   make(map[string]Opening),
		forbidden:  [][]byte{[]byte(rec.IdentityID), rec.MasterPublicKey.Key, []byte(rec.MasterPublicKey.String())},
	}
	for k, v := range attrs {
		if err := p.Set(k, v); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// ID is the profile pseudonym.
func (p *Profile) ID() domain.ProfileID { return p.id }

// IdentityID is the owning identity. It must not leave the owner's process.
func (p *Profile) IdentityID() domain.IdentityID { return p.identity }

// Context is the disclosure context the pseudonym was derived for.
func (p *Profile) Context() string { return p.context }

// Generation is the Evolution generation that signs for this profile.
func (p *Profile) Generation() uint64 { return p.generation }

// Set records a plain attribute, replacing any previous value.
func (p *Profile) Set(key string, value []byte) error {
	if key == "" {
		return fmt.Errorf("profile: empty attribute key")
	}
	if p.linkable(key, value) {
		return fmt.Errorf("attribute %q: %w", key, domain.ErrLinkableAttribute)
	}
	p.attrs[key] = Attribute{Key: key, Value: bytes.Clone(value)}
	delete(p.openings, key)
	return nil
}

// Commit hides an attribute behind a salted commitment and keeps the
// opening locally.
func (p *Profile) Commit(key string) (domain.Digest, error) {
	attr, ok := p.attrs[key]
	if !ok {
		return domain.Digest{}, fmt.Errorf("attribute %q: %w", key, domain.ErrNotFound)
	}
	if attr.Committed() {
		return *attr.Commitment, nil
	}
	salt := make([]byte, saltBytes)
	if _, err := rand.Read(salt); err != nil {
		return domain.Digest{}, err
	}
	c := crypto.Hash(wire.CommitmentPreimage(key, attr.Value, salt))
	p.openings[key] = Opening{Key: key, Value: attr.Value, Salt: salt}
	p.attrs[key] = Attribute{Key: key, Commitment: &c}
	return c, nil
}

// Attributes returns the public view sorted by key.
func (p *Profile) Attributes() []Attribute {
	out := make([]Attribute, 0, len(p.attrs))
	for _, a := range p.attrs {
		cp := Attribute{Key: a.Key, Value: bytes.Clone(a.Value)}
		if a.Commitment != nil {
			c := *a.Commitment
			cp.Commitment = &c
		}
		out = append(out, cp)
	}
	slices.SortFunc(out, func(a, b Attribute) int { return strings.Compare(a.Key, b.Key) })
	return out
}

// Disclose returns the public view plus openings for the requested
// committed keys.
func (p *Profile) Disclose(keys ...string) (Disclosure, error) {
	d := Disclosure{ProfileID: p.id, Attributes: p.Attributes()}
	for _, k := range keys {
		o, ok := p.openings[k]
		if !ok {
			return Disclosure{}, fmt.Errorf("no opening for %q: %w", k, domain.ErrNotFound)
		}
		d.Openings = append(d.Openings, Opening{Key: o.Key, Value: bytes.Clone(o.Value), Salt: bytes.Clone(o.Salt)})
	}
	return d, nil
}

// Event wraps a disclosure as an anchor event for this profile.
func (p *Profile) Event(d Disclosure) (domain.Event, error) {
	body, err := json.Marshal(d)
	if err != nil {
		return domain.Event{}, err
	}
	return domain.Event{Kind: domain.EventDisclosure, ProfileID: p.id, Body: body}, nil
}

func (p *Profile) linkable(key string, value []byte) bool {
	for _, f := range p.forbidden {
		if len(f) == 0 {
			continue
		}
		if bytes.Contains(value, f) || strings.Contains(key, string(f)) {
			return true
		}
	}
	return false
}

// VerifyOpening checks o against a commitment published in a disclosure.
func VerifyOpening(commitment domain.Digest, o Opening) bool {
	got := crypto.Hash(wire.CommitmentPreimage(o.Key, o.Value, o.Salt))
	return crypto.ConstantTimeEqual(got[:], commitment[:])
}

// VerifyDisclosure checks every opening in d against the commitment listed
// for the same key.
func VerifyDisclosure(d Disclosure) error {
	byKey := make(map[string]Attribute, len(d.Attributes))
	for _, a := range d.Attributes {
		byKey[a.Key] = a
	}
	for _, o := range d.Openings {
		a, ok := byKey[o.Key]
		if !ok || !a.Committed() {
			return fmt.Errorf("opening for %q has no commitment: %w", o.Key, domain.ErrNotFound)
		}
		if !VerifyOpening(*a.Commitment, o) {
			return fmt.Errorf("opening for %q: %w", o.Key, domain.ErrHashMismatch)
		}
	}
	return nil
}

// DecodeDisclosure parses a disclosure event body.
func DecodeDisclosure(ev domain.Event) (Disclosure, error) {
	if ev.Kind != domain.EventDisclosure {
		return Disclosure{}, fmt.Errorf("event kind %s is not a disclosure", ev.Kind)
	}
	var d Disclosure
	if err := json.Unmarshal(ev.Body, &d); err != nil {
		return Disclosure{}, err
	}
	if d.ProfileID != ev.ProfileID {
		return Disclosure{}, fmt.Errorf("disclosure for %s carried by %s event", d.ProfileID, ev.ProfileID)
	}
	return d, nil
}
