package store

import (
	"encoding/json"
	"fmt"
	"os"

	"raiap/internal/crypto"
	"raiap/internal/domain"
)

// shareFile is a recovery share sealed under its holder's passphrase. The
// routing fields stay readable so a holder can tell which identity it serves.
type shareFile struct {
	V               int               `json:"v"`
	IdentityID      domain.IdentityID `json:"identity_id"`
	GenerationIndex uint64            `json:"generation_index"`
	SetID           string            `json:"set_id"`
	Salt            []byte            `json:"salt"`
	Nonce           []byte            `json:"nonce"`
	Cipher          []byte            `json:"cipher"`
}

// WriteShareFile seals share for one holder and writes it to path.
func WriteShareFile(path, passphrase string, share domain.RecoveryShare) error {
	raw, err := json.Marshal(share)
	if err != nil {
		return err
	}
	salt, nonce, ct, err := crypto.EncryptSecret(passphrase, raw)
	if err != nil {
		return fmt.Errorf("seal share: %w", err)
	}
	return writeJSON(path, shareFile{
		V:               1,
		IdentityID:      share.IdentityID,
		GenerationIndex: share.GenerationIndex,
		SetID:           share.SetID,
		Salt:            salt,
		Nonce:           nonce,
		Cipher:          ct,
	}, 0o600)
}

// ReadShareFile opens a share written by WriteShareFile.
func ReadShareFile(path, passphrase string) (domain.RecoveryShare, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return domain.RecoveryShare{}, err
	}
	var f shareFile
	if err := json.Unmarshal(b, &f); err != nil {
		return domain.RecoveryShare{}, fmt.Errorf("decode share file: %w", err)
	}
	raw, err := crypto.DecryptSecret(passphrase, f.Salt, f.Nonce, f.Cipher)
	if err != nil {
		return domain.RecoveryShare{}, err
	}
	defer crypto.Wipe(raw)
	var share domain.RecoveryShare
	if err := json.Unmarshal(raw, &share); err != nil {
		return domain.RecoveryShare{}, err
	}
	if share.IdentityID != f.IdentityID || share.SetID != f.SetID || share.GenerationIndex != f.GenerationIndex {
		return domain.RecoveryShare{}, fmt.Errorf("share file header disagrees with sealed share: %w", domain.ErrInconsistentShares)
	}
	return share, nil
}
