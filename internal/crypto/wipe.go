package crypto

import (
	"runtime"

	"raiap/internal/domain"
)

// Wipe zeroes b in place. Copies the runtime or the caller already made
// are out of reach.
//
//go:noinline
func Wipe(b []byte) {
	clear(b)
	runtime.KeepAlive(&b)
}

// WipePrivate zeroes the seed of k.
func WipePrivate(k domain.PrivateKey) { Wipe(k.Seed) }
