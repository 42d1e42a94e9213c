package card

import (
	"context"
	"crypto/rand"
	"fmt"

	"github.com/google/uuid"

	"raiap/internal/crypto"
	"raiap/internal/domain"
	"raiap/internal/protocol/wire"
)

const pseudonymSecretBytes = 32

// Card holds the master key pair and the identity handle.
type Card struct {
	record          domain.CardRecord
	master          domain.PrivateKey
	pseudonymSecret []byte
	external        domain.ExternalSigner
}

// Create mints a new identity with a fresh master key pair. It is the only
// place an identity_id is allocated.
func Create(alg domain.Algorithm) (*Card, error) {
	kp, err := crypto.GenerateKeyPair(alg)
	if err != nil {
		return nil, fmt.Errorf("create identity: %w", err)
	}
	secret := make([]byte, pseudonymSecretBytes)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("create identity: %w", err)
	}
	return &Card{
		record: domain.CardRecord{
			IdentityID:      domain.IdentityID(uuid.NewString()),
			MasterPublicKey: kp.Public,
		},
		master:          kp.Private,
		pseudonymSecret: secret,
	}, nil
}

// FromSecrets rebuilds a software-backed Card from keystore material.
func FromSecrets(s domain.CardSecrets) (*Card, error) {
	kp := domain.KeyPair{Public: s.Record.MasterPublicKey, Private: s.Master}
	if !crypto.MatchesPublic(kp) {
		return nil, fmt.Errorf("load card %s: %w", s.Record.IdentityID, domain.ErrKeyMismatch)
	}
	return &Card{
		record:          s.Record,
		master:          s.Master,
		pseudonymSecret: append([]byte(nil), s.PseudonymSecret...),
	}, nil
}

// NewExternal returns a hardware-backed Card. signer may be nil when the
// hardware is not attached; authorizations then fail with
// ErrMasterKeyUnavailable until one is supplied per call.
func NewExternal(rec domain.CardRecord, pseudonymSecret []byte, signer domain.ExternalSigner) *Card {
	return &Card{
		record:          rec,
		pseudonymSecret: append([]byte(nil), pseudonymSecret...),
		external:        signer,
	}
}

// Record returns the public, serializable face of the card.
func (c *Card) Record() domain.CardRecord {
	return domain.CardRecord{
		IdentityID:      c.record.IdentityID,
		MasterPublicKey: c.record.MasterPublicKey.Clone(),
	}
}

// IdentityID returns the identity handle.
func (c *Card) IdentityID() domain.IdentityID { return c.record.IdentityID }

// HardwareBacked reports whether the master key lives outside this process.
func (c *Card) HardwareBacked() bool { return c.master.IsZero() }

// Secrets exports keystore material for a software-backed card.
func (c *Card) Secrets() (domain.CardSecrets, error) {
	if c.HardwareBacked() {
		return domain.CardSecrets{}, domain.ErrMasterKeyUnavailable
	}
	return domain.CardSecrets{
		Record:          c.Record(),
		Master:          domain.PrivateKey{Algorithm: c.master.Algorithm, Seed: append([]byte(nil), c.master.Seed...)},
		PseudonymSecret: append([]byte(nil), c.pseudonymSecret...),
	}, nil
}

// AuthorizeGeneration signs (identity_id, next_index, new_public_key) with the
// master key. A hardware-backed card uses ext when given, falling back to the
// signer it was built with; with neither it fails with ErrMasterKeyUnavailable.
func (c *Card) AuthorizeGeneration(
	ctx context.Context,
	newKey domain.PublicKey,
	nextIndex uint64,
	ext domain.ExternalSigner,
) ([]byte, error) {
	msg := wire.AuthorizationMessage(c.record.IdentityID, newKey, nextIndex)
	if newKey.Equal(c.record.MasterPublicKey) {
		return nil, domain.ErrSelfAuthorization
	}
	if !c.HardwareBacked() {
		return crypto.Sign(c.master, msg)
	}

	signer := ext
	if signer == nil {
		signer = c.external
	}
	if signer == nil {
		return nil, domain.ErrMasterKeyUnavailable
	}
	sig, err := signer.ExternalSign(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("external sign: %w", err)
	}
	if !crypto.Verify(c.record.MasterPublicKey, msg, sig) {
		return nil, fmt.Errorf("external sign: %w", domain.ErrBadSignature)
	}
	return sig, nil
}

// Pseudonym derives the profile pseudonym for a disclosure context.
func (c *Card) Pseudonym(context string) (domain.ProfileID, error) {
	return crypto.DerivePseudonym(c.pseudonymSecret, context)
}

// Wipe clears the secrets held in memory.
func (c *Card) Wipe() {
	crypto.WipePrivate(c.master)
	crypto.Wipe(c.pseudonymSecret)
}
