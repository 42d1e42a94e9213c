package types

import (
	"bytes"
	"fmt"
)

// Status is the lifecycle state of one generation.
type Status uint8

const (
	StatusPending Status = iota
	StatusActive
	StatusRevoked
	StatusCompromised
)

var statusNames = [...]string{"pending", "active", "revoked", "compromised"}

// String returns the lowercase status name.
func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("status(%d)", uint8(s))
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText decodes a status name.
func (s *Status) UnmarshalText(b []byte) error {
	for i, name := range statusNames {
		if name == string(b) {
			*s = Status(i)
			return nil
		}
	}
	return fmt.Errorf("unknown generation status %q", b)
}

// Authority records which key signed a generation's authorization.
type Authority uint8

const (
	// AuthorityMaster means the Card's master key signed it.
	AuthorityMaster Authority = iota + 1
	// AuthorityRecovery means the threshold-reconstructed predecessor key signed it.
	AuthorityRecovery
)

// String returns the authority name.
func (a Authority) String() string {
	switch a {
	case AuthorityMaster:
		return "master"
	case AuthorityRecovery:
		return "recovery"
	default:
		return fmt.Sprintf("authority(%d)", uint8(a))
	}
}

// ShareSet describes recovery material issued for a generation. The shares
// themselves are handed to holders and never stored with the generation.
type ShareSet struct {
	ID         string `json:"id"`
	Threshold  uint8  `json:"threshold"`
	Total      uint8  `json:"total"`
	Commitment Digest `json:"commitment"`
}

// Generation is one operational-key epoch within an Evolution.
type Generation struct {
	Index           uint64    `json:"generation_index"`
	OperationalKey  PublicKey `json:"operational_public_key"`
	PredecessorHash Digest    `json:"predecessor_hash"`
	Authorization   []byte    `json:"authorization"`
	Authority       Authority `json:"authority"`
	ActivatedAt     Timestamp `json:"activated_at"`
	Status          Status    `json:"status"`
	ShareSet        *ShareSet `json:"share_set,omitempty"`
}

// Clone returns a deep copy of g.
func (g Generation) Clone() Generation {
	out := g
	out.OperationalKey = g.OperationalKey.Clone()
	out.Authorization = bytes.Clone(g.Authorization)
	if g.ShareSet != nil {
		ss := *g.ShareSet
		out.ShareSet = &ss
	}
	return out
}
