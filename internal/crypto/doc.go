// Package crypto exposes the primitives the identity core is built on.
//
// Contents
//
//   - Key generation for Ed25519 and BIP-340 Schnorr over secp256k1
//     (GenerateKeyPair, KeyPairFromSeed)
//   - Signing and verification (Sign, Verify). Verify never panics and
//     reports malformed keys or signatures as false.
//   - Fixed-width SHA-256 hashing (Hash)
//   - Shamir threshold secret sharing over GF(256) (SplitSecret, CombineShares)
//   - Per-context pseudonym derivation with HKDF (DerivePseudonym)
//   - Passphrase envelopes for exported recovery shares (EncryptSecret,
//     DecryptSecret)
//   - Short public-key fingerprints for display/logging (Fingerprint)
//   - Best-effort memory wiping for sensitive byte slices (Wipe)
//
// # Notes
//
// Everything here is a pure function of its inputs plus crypto/rand. Callers
// should treat returned secrets as sensitive and Wipe them when practical.
package crypto
