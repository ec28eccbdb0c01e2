package wire

import "github.com/anirudhraja/protodesc/schema"

// ===== PROTOBUF WIRE FORMAT TYPES =====

// WireType represents protobuf wire format types
type WireType int32

const (
	WireVarint     WireType = 0 // int32, int64, uint32, uint64, sint32, sint64, bool, enum
	WireFixed64    WireType = 1 // fixed64, sfixed64, double
	WireBytes      WireType = 2 // string, bytes, embedded messages, packed repeated fields
	WireStartGroup WireType = 3 // deprecated groups, only ever skipped
	WireEndGroup   WireType = 4
	WireFixed32    WireType = 5 // fixed32, sfixed32, float
)

func (w WireType) String() string {
	switch w {
	case WireVarint:
		return "varint"
	case WireFixed64:
		return "fixed64"
	case WireBytes:
		return "bytes"
	case WireStartGroup:
		return "start_group"
	case WireEndGroup:
		return "end_group"
	case WireFixed32:
		return "fixed32"
	default:
		return "invalid"
	}
}

// FieldNumber represents a protobuf field number
type FieldNumber int32

const MaxFieldNumber FieldNumber = schema.MaxFieldNumber

// Tag represents a protobuf field tag (field number + wire type)
type Tag uint64

// MakeTag creates a tag from field number and wire type
func MakeTag(fieldNumber FieldNumber, wireType WireType) Tag {
	return Tag(uint64(fieldNumber)<<3 | uint64(wireType))
}

// ParseTag parses a tag into field number and wire type
func ParseTag(tag Tag) (FieldNumber, WireType) {
	return FieldNumber(tag >> 3), WireType(tag & 0x7)
}

// WireTypeOf returns the wire type a single value of t is framed with.
func WireTypeOf(t schema.Type) WireType {
	switch t {
	case schema.TypeSfixed64, schema.TypeFixed64, schema.TypeDouble:
		return WireFixed64
	case schema.TypeSfixed32, schema.TypeFixed32, schema.TypeFloat:
		return WireFixed32
	case schema.TypeString, schema.TypeBytes, schema.TypeMessage:
		return WireBytes
	default:
		return WireVarint
	}
}
