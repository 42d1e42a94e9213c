package store

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"

	"raiap/internal/crypto"
)

// keystoreFormatVersion is the newest envelope layout this package writes.
const keystoreFormatVersion = 2

// ErrWrongPassphrase is returned when the passphrase is incorrect or the
// sealed file was modified.
var ErrWrongPassphrase = errors.New("wrong passphrase or corrupted keystore")

// envelope is the on-disk JSON holding the ciphertext and KDF parameters.
// Purpose is bound as additional data so a sealed card cannot be swapped in
// for a sealed evolution.
type envelope struct {
	V       int    `json:"v"`
	Purpose string `json:"purpose"`
	Salt    []byte `json:"salt"`
	N       int    `json:"scrypt_N"`
	R       int    `json:"scrypt_r"`
	P       int    `json:"scrypt_p"`
	Nonce   []byte `json:"nonce"`
	Cipher  []byte `json:"cipher"`
}

// ScryptParams tunes the key derivation.
type ScryptParams struct {
	N, R, P int
}

// DefaultScryptParams are suitable for interactive unlocks.
func DefaultScryptParams() ScryptParams { return ScryptParams{N: 1 << 15, R: 8, P: 1} }

func (e *envelope) aad() []byte { return append([]byte(e.Purpose+"\x00"), e.Salt...) }

// seal derives a key from passphrase and encrypts raw for purpose.
func seal(passphrase, purpose string, raw []byte, params ScryptParams) ([]byte, error) {
	env := envelope{V: keystoreFormatVersion, Purpose: purpose, N: params.N, R: params.R, P: params.P}
	env.Salt = make([]byte, 16)
	if _, err := rand.Read(env.Salt); err != nil {
		return nil, err
	}
	key, err := scrypt.Key([]byte(passphrase), env.Salt, params.N, params.R, params.P, chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	defer crypto.Wipe(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	env.Nonce = make([]byte, aead.NonceSize())
	if _, err := rand.Read(env.Nonce); err != nil {
		return nil, err
	}
	env.Cipher = aead.Seal(nil, env.Nonce, raw, env.aad())
	return json.Marshal(env)
}

// open decrypts an envelope written by seal for the same purpose.
func open(passphrase, purpose string, b []byte) ([]byte, error) {
	var env envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, fmt.Errorf("decode keystore: %w", err)
	}
	if env.V != keystoreFormatVersion {
		return nil, fmt.Errorf("unsupported keystore version %d", env.V)
	}
	if env.Purpose != purpose {
		return nil, fmt.Errorf("keystore holds %q, want %q", env.Purpose, purpose)
	}

	key, err := scrypt.Key([]byte(passphrase), env.Salt, env.N, env.R, env.P, chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	defer crypto.Wipe(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	if len(env.Nonce) != aead.NonceSize() {
		return nil, ErrWrongPassphrase
	}
	pt, err := aead.Open(nil, env.Nonce, env.Cipher, env.aad())
	if err != nil {
		return nil, ErrWrongPassphrase
	}
	return pt, nil
}
