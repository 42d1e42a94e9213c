package types

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"
)

// Algorithm tags key material so serialized keys describe themselves.
type Algorithm uint8

const (
	AlgorithmUnknown Algorithm = iota
	AlgorithmEd25519
	AlgorithmSecp256k1
)

// String returns the canonical lowercase algorithm name.
func (a Algorithm) String() string {
	switch a {
	case AlgorithmEd25519:
		return "ed25519"
	case AlgorithmSecp256k1:
		return "secp256k1"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(a))
	}
}

// ParseAlgorithm maps a configuration string to an Algorithm.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "ed25519":
		return AlgorithmEd25519, nil
	case "secp256k1", "schnorr":
		return AlgorithmSecp256k1, nil
	default:
		return AlgorithmUnknown, fmt.Errorf("unsupported key algorithm %q", s)
	}
}

// PublicKey is a verification key tagged with its algorithm.
type PublicKey struct {
	Algorithm Algorithm `json:"alg"`
	Key       []byte    `json:"key"`
}

// Equal reports whether p and o name the same key.
func (p PublicKey) Equal(o PublicKey) bool {
	return p.Algorithm == o.Algorithm && bytes.Equal(p.Key, o.Key)
}

// IsZero reports whether no key is set.
func (p PublicKey) IsZero() bool { return len(p.Key) == 0 }

// Clone returns a deep copy of p.
func (p PublicKey) Clone() PublicKey {
	return PublicKey{Algorithm: p.Algorithm, Key: bytes.Clone(p.Key)}
}

// String renders the key as "alg:hex".
func (p PublicKey) String() string {
	return p.Algorithm.String() + ":" + hex.EncodeToString(p.Key)
}

// PrivateKey holds a 32-byte Ed25519 seed or secp256k1 scalar.
// It is never part of any public record.
type PrivateKey struct {
	Algorithm Algorithm `json:"alg"`
	Seed      []byte    `json:"seed"`
}

// IsZero reports whether no secret is present.
func (k PrivateKey) IsZero() bool { return len(k.Seed) == 0 }

// KeyPair couples a private key with its public half.
type KeyPair struct {
	Public  PublicKey  `json:"public"`
	Private PrivateKey `json:"private"`
}

// Digest is a fixed-width SHA-256 output.
type Digest [32]byte

// Slice returns the digest as a []byte.
func (d Digest) Slice() []byte { return d[:] }

// IsZero reports whether d is all zeros.
func (d Digest) IsZero() bool { return d == Digest{} }

// String returns the lowercase hex form of d.
func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// MarshalText encodes d as hex.
func (d Digest) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// UnmarshalText decodes a hex digest.
func (d *Digest) UnmarshalText(b []byte) error {
	parsed, err := ParseDigest(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseDigest decodes a 64-character hex string.
func ParseDigest(s string) (Digest, error) {
	var d Digest
	raw, err := hex.DecodeString(s)
	if err != nil {
		return d, fmt.Errorf("digest: %w", err)
	}
	if len(raw) != len(d) {
		return d, fmt.Errorf("digest: want %d bytes, got %d", len(d), len(raw))
	}
	copy(d[:], raw)
	return d, nil
}
