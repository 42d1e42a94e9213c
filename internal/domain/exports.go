package domain

import (
	interfaces "raiap/internal/domain/interfaces"
	types "raiap/internal/domain/types"
)

// Type aliases expose domain types from the types subpackage for compact imports.
type (
	IdentityID     = types.IdentityID
	StreamID       = types.StreamID
	ProfileID      = types.ProfileID
	Fingerprint    = types.Fingerprint
	Timestamp      = types.Timestamp
	Algorithm      = types.Algorithm
	PublicKey      = types.PublicKey
	PrivateKey     = types.PrivateKey
	KeyPair        = types.KeyPair
	Digest         = types.Digest
	CardRecord     = types.CardRecord
	CardSecrets    = types.CardSecrets
	EvolutionState = types.EvolutionState
	Status         = types.Status
	Authority      = types.Authority
	ShareSet       = types.ShareSet
	Generation     = types.Generation
	Share          = types.Share
	RecoveryShare  = types.RecoveryShare
	EventKind      = types.EventKind
	Event          = types.Event
	Anchor         = types.Anchor
)

// Interface aliases expose domain interfaces from the interfaces subpackage.
type (
	StreamStore     = interfaces.StreamStore
	StreamCatalog   = interfaces.StreamCatalog
	TrustRoot       = interfaces.TrustRoot
	IdentityStore   = interfaces.IdentityStore
	ExternalSigner  = interfaces.ExternalSigner
	IdentityService = interfaces.IdentityService
	StreamService   = interfaces.StreamService
)

const (
	AlgorithmEd25519   = types.AlgorithmEd25519
	AlgorithmSecp256k1 = types.AlgorithmSecp256k1

	StatusPending     = types.StatusPending
	StatusActive      = types.StatusActive
	StatusRevoked     = types.StatusRevoked
	StatusCompromised = types.StatusCompromised

	AuthorityMaster   = types.AuthorityMaster
	AuthorityRecovery = types.AuthorityRecovery

	EventDisclosure  = types.EventDisclosure
	EventClaim       = types.EventClaim
	EventAttestation = types.EventAttestation
	EventGrant       = types.EventGrant
	EventConsent     = types.EventConsent
	EventSupersede   = types.EventSupersede
)

// Constructors and parsers re-exported from the types subpackage.
var (
	TimestampOf    = types.TimestampOf
	ParseAlgorithm = types.ParseAlgorithm
	ParseEventKind = types.ParseEventKind
	ParseDigest    = types.ParseDigest
)
