package interfaces

import "context"

// ExternalSigner signs with a master key that never leaves its hardware,
// such as a smart card or secure enclave.
type ExternalSigner interface {
	ExternalSign(ctx context.Context, challenge []byte) ([]byte, error)
}
