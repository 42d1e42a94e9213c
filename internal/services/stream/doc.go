// Package stream appends anchors to persisted streams and verifies them.
//
// Open streams are cached in process so concurrent writers in one process
// serialize on the stream itself; the store's compare-and-swap catches
// writers in other processes. A conflict drops the cached copy so the next
// call reloads the winner's head.
//
// Verification always reads the store, never the cache, so it reports what
// a third party would see.
package stream
