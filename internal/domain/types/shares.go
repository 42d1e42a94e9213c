package types

import "bytes"

// Share is one point of a threshold split. Index is the x-coordinate (1..255)
// and Value holds one y-coordinate per secret byte.
type Share struct {
	Index     uint8  `json:"index"`
	Threshold uint8  `json:"threshold"`
	Value     []byte `json:"value"`
}

// Clone returns a deep copy of s.
func (s Share) Clone() Share {
	return Share{Index: s.Index, Threshold: s.Threshold, Value: bytes.Clone(s.Value)}
}

// RecoveryShare is a Share tagged with the generation whose key it recovers.
// Commitment is the hash of that generation's operational public key.
type RecoveryShare struct {
	SetID           string     `json:"set_id"`
	IdentityID      IdentityID `json:"identity_id"`
	GenerationIndex uint64     `json:"generation_index"`
	Algorithm       Algorithm  `json:"alg"`
	Commitment      Digest     `json:"commitment"`
	Share           Share      `json:"share"`
}
