// Package store provides the storage collaborators for identities and
// anchor streams.
//
// Stream stores implement domain.StreamStore. Every backend treats
// PersistAnchor as a compare-and-swap on the stream head: an anchor whose
// predecessor hash is not the stored head is refused with ErrConflict, so
// two writers racing on one stream cannot both succeed. Backends:
//   - MemoryStreams (tests and ephemeral use)
//   - FileStreams (JSON per stream, atomic temp-file replace)
//   - BadgerStreams (embedded BadgerDB, optimistic transactions)
//   - RedisStreams (WATCH/MULTI on the head key)
//   - PostgresStreams (unique (stream_id, position) constraint)
//
// Keystore implements domain.IdentityStore, sealing the card secrets and
// evolution state under a passphrase. Archives write and read xz-compressed
// stream exports.
package store
