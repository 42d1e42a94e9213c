// Package evolution manages the chain of operational key generations that
// hang off a Card.
//
// # Generations
//
// Generation 0 is authorized by the Card's master key and links to the
// identity's root marker. Every later generation links to the hash of its
// predecessor and is authorized either by the master key (Rotate) or by the
// predecessor's own key after threshold reconstruction (Recover). Exactly one
// generation is Active; superseded generations stay in the chain as Revoked
// or Compromised so their historical signatures remain checkable.
//
// # Validity intervals
//
// Generation i is the legitimate signer on [activated_at_i,
// activated_at_{i+1}). A timestamp equal to a rotation instant belongs to the
// newer generation. ActiveAt resolves a timestamp against an exported
// generation list and is what stream verification uses to reject a later key
// replayed against an earlier anchor.
//
// # Concurrency
//
// Rotate, Recover, IssueRecoveryShares and Signer.Sign share one critical
// section per Evolution. The read-side helpers (VerifyLineage, ActiveAt,
// GenerationHash) are pure functions over snapshots.
package evolution
