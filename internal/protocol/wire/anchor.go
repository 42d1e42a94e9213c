package wire

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"raiap/internal/domain"
)

// MarshalAnchor encodes the full serialized anchor.
func MarshalAnchor(a domain.Anchor) []byte {
	var e encoder
	e.bytes(1, a.Hash[:])
	e.bytes(2, a.PredecessorHash[:])
	e.bytes(3, a.Payload)
	e.bytes(4, a.Signature)
	e.sint(5, int64(a.Timestamp))
	e.key(6, a.SignerPublicKey)
	return e.b
}

// UnmarshalAnchor decodes MarshalAnchor output.
func UnmarshalAnchor(b []byte) (domain.Anchor, error) {
	var (
		a    domain.Anchor
		seen uint8
	)
	err := walk(b, func(num protowire.Number, typ protowire.Type, v []byte, n uint64) error {
		var err error
		switch {
		case num == 1 && typ == protowire.BytesType:
			a.Hash, err = toDigest(v)
		case num == 2 && typ == protowire.BytesType:
			a.PredecessorHash, err = toDigest(v)
		case num == 3 && typ == protowire.BytesType:
			a.Payload = append([]byte{}, v...)
		case num == 4 && typ == protowire.BytesType:
			a.Signature = append([]byte{}, v...)
		case num == 5 && typ == protowire.VarintType:
			a.Timestamp = domain.Timestamp(protowire.DecodeZigZag(n))
		case num == 6 && typ == protowire.BytesType:
			a.SignerPublicKey, err = decodeKey(v)
		default:
			return nil
		}
		seen |= 1 << (num - 1)
		return err
	})
	if err != nil {
		return domain.Anchor{}, err
	}
	if seen != 0x3f {
		return domain.Anchor{}, fmt.Errorf("%w: anchor is missing fields", ErrMalformed)
	}
	return a, nil
}

// EncodeEvent encodes an anchor payload.
func EncodeEvent(ev domain.Event) []byte {
	var e encoder
	e.str(1, TagEvent)
	e.varint(2, uint64(ev.Kind))
	e.str(3, ev.ProfileID.String())
	e.bytes(4, ev.Body)
	e.bytes(5, ev.Supersedes[:])
	return e.b
}

// DecodeEvent decodes an anchor payload produced by EncodeEvent.
func DecodeEvent(b []byte) (domain.Event, error) {
	var (
		ev     domain.Event
		tagged bool
	)
	err := walk(b, func(num protowire.Number, typ protowire.Type, v []byte, n uint64) error {
		var err error
		switch {
		case num == 1 && typ == protowire.BytesType:
			tagged = string(v) == TagEvent
		case num == 2 && typ == protowire.VarintType:
			if n > 0xff {
				return fmt.Errorf("%w: event kind %d", ErrMalformed, n)
			}
			ev.Kind = domain.EventKind(n)
		case num == 3 && typ == protowire.BytesType:
			ev.ProfileID = domain.ProfileID(v)
		case num == 4 && typ == protowire.BytesType:
			ev.Body = append([]byte{}, v...)
		case num == 5 && typ == protowire.BytesType:
			ev.Supersedes, err = toDigest(v)
		}
		return err
	})
	if err != nil {
		return domain.Event{}, err
	}
	if !tagged {
		return domain.Event{}, fmt.Errorf("%w: payload is not an event", ErrMalformed)
	}
	return ev, nil
}
