// Package identity manages the local Card and its Evolution.
//
// It enforces the passphrase policy, mints the identity and generation 0,
// and persists both through a domain.IdentityStore after every change:
// rotations, recovery share issuance and threshold recovery. Private keys
// never reach the logs.
package identity
