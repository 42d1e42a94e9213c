package wire

import "raiap/internal/domain"

// AuthorizationMessage is what authorizes generation index to use pub under
// identity id. The master key signs it for voluntary rotations and the
// reconstructed predecessor key signs it for recoveries.
func AuthorizationMessage(id domain.IdentityID, pub domain.PublicKey, index uint64) []byte {
	var e encoder
	e.str(1, TagAuthorization)
	e.str(2, id.String())
	e.varint(3, index)
	e.key(4, pub)
	return e.b
}

// GenerationPreimage covers the immutable fields of g. Status and the share
// set change after creation and are deliberately left out so a successor's
// predecessor_hash stays valid.
func GenerationPreimage(g domain.Generation) []byte {
	var e encoder
	e.str(1, TagGeneration)
	e.varint(2, g.Index)
	e.key(3, g.OperationalKey)
	e.bytes(4, g.PredecessorHash[:])
	e.bytes(5, g.Authorization)
	e.varint(6, uint64(g.Authority))
	e.sint(7, int64(g.ActivatedAt))
	return e.b
}

// AnchorPreimage covers every anchor field except the hash and the signature.
func AnchorPreimage(a domain.Anchor) []byte {
	var e encoder
	e.str(1, TagAnchor)
	e.bytes(2, a.Payload)
	e.bytes(3, a.PredecessorHash[:])
	e.sint(4, int64(a.Timestamp))
	e.key(5, a.SignerPublicKey)
	return e.b
}

// MarkerPreimage is hashed into the root marker of an identity or the
// genesis marker of a stream.
func MarkerPreimage(tag, id string) []byte {
	var e encoder
	e.str(1, tag)
	e.str(2, id)
	return e.b
}

// CommitmentPreimage binds an attribute value to its key and salt.
func CommitmentPreimage(key string, value, salt []byte) []byte {
	var e encoder
	e.str(1, TagCommitment)
	e.str(2, key)
	e.bytes(3, value)
	e.bytes(4, salt)
	return e.b
}

// PublicKeyBytes is the canonical encoding of a tagged public key.
func PublicKeyBytes(k domain.PublicKey) []byte { return encodeKey(k) }
