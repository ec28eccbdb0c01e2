package message

import (
	"bytes"

	"google.golang.org/protobuf/encoding/protowire"
)

// UnknownField is one field occurrence the descriptor did not recognise.
// Data holds the bytes that followed the tag on the wire, unmodified: the
// length prefix and payload for length-delimited fields, the group body up to
// and including its end tag for groups.
type UnknownField struct {
	Tag  uint64
	Data []byte
}

// Number returns the field number of the tag.
func (u UnknownField) Number() int32 {
	return int32(u.Tag >> 3)
}

// WireType returns the raw wire type of the tag.
func (u UnknownField) WireType() int {
	return int(u.Tag & 7)
}

// Payload returns the field contents without framing. For length-delimited
// fields the length prefix is stripped; other wire types return Data.
func (u UnknownField) Payload() []byte {
	if protowire.Type(u.WireType()) != protowire.BytesType {
		return u.Data
	}
	v, n := protowire.ConsumeBytes(u.Data)
	if n < 0 {
		return u.Data
	}
	return v
}

// UnknownFields is the append-only store of unknown fields in arrival order.
type UnknownFields []UnknownField

// Clone deep-copies the store.
func (u UnknownFields) Clone() UnknownFields {
	if u == nil {
		return nil
	}
	out := make(UnknownFields, len(u))
	for i, f := range u {
		out[i] = UnknownField{Tag: f.Tag, Data: append([]byte(nil), f.Data...)}
	}
	return out
}

// Equal compares tags and raw bytes in order.
func (u UnknownFields) Equal(other UnknownFields) bool {
	if len(u) != len(other) {
		return false
	}
	for i := range u {
		if u[i].Tag != other[i].Tag || !bytes.Equal(u[i].Data, other[i].Data) {
			return false
		}
	}
	return true
}

// Size is the number of bytes the store occupies when re-encoded.
func (u UnknownFields) Size() int {
	n := 0
	for _, f := range u {
		n += protowire.SizeVarint(f.Tag) + len(f.Data)
	}
	return n
}
