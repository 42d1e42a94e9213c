package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sasha-s/go-deadlock"

	"raiap/internal/crypto"
	"raiap/internal/domain"
)

const (
	cardFile      = "card.enc"
	evolutionFile = "evolution.enc"

	purposeCard      = "raiap/card"
	purposeEvolution = "raiap/evolution"
)

// Keystore persists the card secrets and evolution state as sealed files.
type Keystore struct {
	dir    string
	params ScryptParams
	mu     deadlock.Mutex
}

var _ domain.IdentityStore = (*Keystore)(nil)

// NewKeystore returns a Keystore rooted at dir.
func NewKeystore(dir string, params ScryptParams) *Keystore {
	return &Keystore{dir: dir, params: params}
}

// Exists reports whether a card has been saved.
func (k *Keystore) Exists() bool {
	_, err := os.Stat(filepath.Join(k.dir, cardFile))
	return err == nil
}

// SaveCard seals the card secrets.
func (k *Keystore) SaveCard(passphrase string, secrets domain.CardSecrets) error {
	return k.save(passphrase, cardFile, purposeCard, secrets)
}

// LoadCard opens the card secrets.
func (k *Keystore) LoadCard(passphrase string) (domain.CardSecrets, error) {
	var s domain.CardSecrets
	err := k.load(passphrase, cardFile, purposeCard, &s)
	return s, err
}

// SaveEvolution seals the evolution state including the active private key.
func (k *Keystore) SaveEvolution(passphrase string, state domain.EvolutionState) error {
	return k.save(passphrase, evolutionFile, purposeEvolution, state)
}

// LoadEvolution opens the evolution state.
func (k *Keystore) LoadEvolution(passphrase string) (domain.EvolutionState, error) {
	var s domain.EvolutionState
	err := k.load(passphrase, evolutionFile, purposeEvolution, &s)
	return s, err
}

func (k *Keystore) save(passphrase, name, purpose string, v any) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	defer crypto.Wipe(raw)
	blob, err := seal(passphrase, purpose, raw, k.params)
	if err != nil {
		return fmt.Errorf("seal %s: %w", name, err)
	}
	return writeFile(filepath.Join(k.dir, name), blob, 0o600)
}

func (k *Keystore) load(passphrase, name, purpose string, out any) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	blob, err := readFile(filepath.Join(k.dir, name))
	if err != nil {
		return err
	}
	if blob == nil {
		return fmt.Errorf("%s: %w", name, domain.ErrNotFound)
	}
	raw, err := open(passphrase, purpose, blob)
	if err != nil {
		return err
	}
	defer crypto.Wipe(raw)
	return json.Unmarshal(raw, out)
}
