package crypto

import (
	"crypto/rand"
	"errors"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	KeyBytes   = 32
	SaltBytes  = 16
	NonceBytes = chacha20poly1305.NonceSize
)

// ErrSealedOpen is returned when a sealed secret cannot be opened.
var ErrSealedOpen = errors.New("wrong passphrase or corrupted secret")

// DeriveKEK derives a key-encryption key from a passphrase and salt using Argon2id.
func DeriveKEK(passphrase string, salt []byte) []byte {
	return argon2.IDKey([]byte(passphrase), salt, 1, 64*1024, 4, KeyBytes)
}

// EncryptSecret seals plaintext under a KEK derived from passphrase and a
// fresh salt. The plaintext buffer is wiped.
func EncryptSecret(passphrase string, plaintext []byte) (salt, nonce, ciphertext []byte, err error) {
	salt = make([]byte, SaltBytes)
	if _, err := rand.Read(salt); err != nil {
		return nil, nil, nil, err
	}
	kek := DeriveKEK(passphrase, salt)
	defer Wipe(kek)

	aead, err := chacha20poly1305.New(kek)
	if err != nil {
		return nil, nil, nil, err
	}
	nonce = make([]byte, NonceBytes)
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, nil, err
	}
	ciphertext = aead.Seal(nil, nonce, plaintext, salt)
	Wipe(plaintext)
	return salt, nonce, ciphertext, nil
}

// DecryptSecret opens a ciphertext produced by EncryptSecret.
func DecryptSecret(passphrase string, salt, nonce, ciphertext []byte) ([]byte, error) {
	if len(salt) != SaltBytes {
		return nil, errors.New("invalid salt size")
	}
	if len(nonce) != NonceBytes {
		return nil, errors.New("invalid nonce size")
	}
	kek := DeriveKEK(passphrase, salt)
	defer Wipe(kek)

	aead, err := chacha20poly1305.New(kek)
	if err != nil {
		return nil, err
	}
	pt, err := aead.Open(nil, nonce, ciphertext, salt)
	if err != nil {
		return nil, ErrSealedOpen
	}
	return pt, nil
}
