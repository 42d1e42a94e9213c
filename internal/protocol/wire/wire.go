package wire

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"raiap/internal/domain"
)

// Domain-separation tags. Changing any of these breaks every existing signature.
const (
	TagAuthorization = "raiap.io/v1/generation-authorization"
	TagGeneration    = "raiap.io/v1/generation"
	TagAnchor        = "raiap.io/v1/anchor"
	TagEvent         = "raiap.io/v1/event"
	TagRoot          = "raiap.io/v1/root"
	TagGenesis       = "raiap.io/v1/stream-genesis"
	TagCommitment    = "raiap.io/v1/attribute-commitment"
)

// ErrMalformed is returned when bytes do not decode as the expected record.
var ErrMalformed = errors.New("malformed record")

// encoder appends fields in call order.
type encoder struct{ b []byte }

func (e *encoder) varint(num protowire.Number, v uint64) {
	e.b = protowire.AppendTag(e.b, num, protowire.VarintType)
	e.b = protowire.AppendVarint(e.b, v)
}

func (e *encoder) bytes(num protowire.Number, v []byte) {
	e.b = protowire.AppendTag(e.b, num, protowire.BytesType)
	e.b = protowire.AppendBytes(e.b, v)
}

func (e *encoder) str(num protowire.Number, v string) {
	e.b = protowire.AppendTag(e.b, num, protowire.BytesType)
	e.b = protowire.AppendString(e.b, v)
}

func (e *encoder) sint(num protowire.Number, v int64) {
	e.varint(num, protowire.EncodeZigZag(v))
}

func (e *encoder) key(num protowire.Number, k domain.PublicKey) {
	e.bytes(num, encodeKey(k))
}

func encodeKey(k domain.PublicKey) []byte {
	var e encoder
	e.varint(1, uint64(k.Algorithm))
	e.bytes(2, k.Key)
	return e.b
}

func decodeKey(b []byte) (domain.PublicKey, error) {
	var k domain.PublicKey
	err := walk(b, func(num protowire.Number, typ protowire.Type, v []byte, n uint64) error {
		switch {
		case num == 1 && typ == protowire.VarintType:
			if n > 0xff {
				return fmt.Errorf("%w: algorithm %d", ErrMalformed, n)
			}
			k.Algorithm = domain.Algorithm(n)
		case num == 2 && typ == protowire.BytesType:
			k.Key = append([]byte(nil), v...)
		}
		return nil
	})
	return k, err
}

// walk calls fn for each field in b. For varint fields n holds the value, for
// length-delimited fields v holds the payload. Other wire types are skipped.
func walk(b []byte, fn func(num protowire.Number, typ protowire.Type, v []byte, n uint64) error) error {
	for len(b) > 0 {
		num, typ, tagLen := protowire.ConsumeTag(b)
		if tagLen < 0 {
			return fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(tagLen))
		}
		b = b[tagLen:]
		switch typ {
		case protowire.VarintType:
			n, m := protowire.ConsumeVarint(b)
			if m < 0 {
				return fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(m))
			}
			if err := fn(num, typ, nil, n); err != nil {
				return err
			}
			b = b[m:]
		case protowire.BytesType:
			v, m := protowire.ConsumeBytes(b)
			if m < 0 {
				return fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(m))
			}
			if err := fn(num, typ, v, 0); err != nil {
				return err
			}
			b = b[m:]
		default:
			m := protowire.ConsumeFieldValue(num, typ, b)
			if m < 0 {
				return fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(m))
			}
			b = b[m:]
		}
	}
	return nil
}

func toDigest(v []byte) (domain.Digest, error) {
	var d domain.Digest
	if len(v) != len(d) {
		return d, fmt.Errorf("%w: digest of %d bytes", ErrMalformed, len(v))
	}
	copy(d[:], v)
	return d, nil
}
