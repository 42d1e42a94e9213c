package types

// CardRecord is the public, serializable face of a Card.
type CardRecord struct {
	IdentityID      IdentityID `json:"identity_id"`
	MasterPublicKey PublicKey  `json:"master_public_key"`
}

// CardSecrets is what a keystore protects for a software-backed Card.
// PseudonymSecret keys the per-context profile pseudonyms.
type CardSecrets struct {
	Record          CardRecord `json:"record"`
	Master          PrivateKey `json:"master"`
	PseudonymSecret []byte     `json:"pseudonym_secret"`
}

// EvolutionState is the persisted form of an Evolution: every generation plus
// the private key of the Active one. LastStamp is the latest timestamp the
// evolution has signed or observed; no later stamp or activation goes below it.
type EvolutionState struct {
	Card        CardRecord   `json:"card"`
	Generations []Generation `json:"generations"`
	ActiveKey   PrivateKey   `json:"active_key"`
	LastStamp   Timestamp    `json:"last_stamp,omitempty"`
}
