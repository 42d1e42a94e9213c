// Package stream holds append-only sequences of anchors for one profile or
// topic and verifies them against a trust root.
//
// Append is the only mutation. It is serialized per Stream; readers take an
// immutable snapshot, which is cheap because anchors already in the sequence
// never change. Persistence runs inside the append critical section through
// AppendCommit so the in-memory head never runs ahead of the store.
//
// Verification walks genesis to head. For each anchor it checks the link,
// the recomputed hash and the signature, that timestamps never go
// backwards, and that the trust root accepts the signer for that anchor's
// timestamp. The first failure is returned with its position.
package stream
