// Package wire defines the canonical byte encodings the identity core signs,
// hashes and stores.
//
// Every record is a sequence of protobuf wire-format fields emitted in a
// fixed order with no omitted fields, so the same value always encodes to the
// same bytes. Preimages open with a domain-separation tag so a signature over
// one record type can never be replayed as another.
//
// Decoders skip unknown field numbers, which keeps serialized anchors
// readable by older implementations while the hashed preimages stay fixed.
package wire
