package types

import "time"

// IdentityID is the opaque handle minted once per Card.
type IdentityID string

// String returns the string form of the identity identifier.
func (id IdentityID) String() string { return string(id) }

// StreamID identifies one append-only anchor stream.
type StreamID string

// String returns the string form of the stream identifier.
func (id StreamID) String() string { return string(id) }

// ProfileID is a pseudonym, unique per disclosure context.
type ProfileID string

// String returns the string form of the profile pseudonym.
func (id ProfileID) String() string { return string(id) }

// Fingerprint is a short identifier for public keys presented to users.
type Fingerprint string

// String returns the string form of the fingerprint.
func (f Fingerprint) String() string { return string(f) }

// Timestamp orders anchors and generations. It holds Unix nanoseconds.
type Timestamp int64

// TimestampOf converts a wall-clock time to a Timestamp.
func TimestampOf(t time.Time) Timestamp { return Timestamp(t.UnixNano()) }

// Time returns the UTC wall-clock time for ts.
func (ts Timestamp) Time() time.Time { return time.Unix(0, int64(ts)).UTC() }
