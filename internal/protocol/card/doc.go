// Package card implements the root of an identity: the master key pair and
// the identity handle it mints.
//
// The master key only ever signs generation authorizations. It never signs
// profile material or anchors. A Card is either software-backed (the master
// seed is held in memory) or hardware-backed, in which case every
// authorization goes through an ExternalSigner such as a smart card.
package card
