package schema

// Kind identifies which descriptor a Descriptor reference carries.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindMessage
	KindEnum
	KindService
)

func (k Kind) String() string {
	switch k {
	case KindMessage:
		return "message"
	case KindEnum:
		return "enum"
	case KindService:
		return "service"
	default:
		return "invalid"
	}
}

// Label represents field labels
type Label uint8

const (
	LabelRequired Label = iota // always emitted
	LabelOptional              // explicit presence
	LabelRepeated
	LabelNone // proto3 singular, implicit presence
)

func (l Label) String() string {
	switch l {
	case LabelRequired:
		return "required"
	case LabelOptional:
		return "optional"
	case LabelRepeated:
		return "repeated"
	case LabelNone:
		return "none"
	default:
		return "unknown"
	}
}

// Type represents the protobuf type of a field
type Type uint8

const (
	TypeInt32 Type = iota
	TypeSint32
	TypeSfixed32
	TypeInt64
	TypeSint64
	TypeSfixed64
	TypeUint32
	TypeFixed32
	TypeUint64
	TypeFixed64
	TypeFloat
	TypeDouble
	TypeBool
	TypeEnum
	TypeString
	TypeBytes
	TypeMessage
)

var typeNames = map[Type]string{
	TypeInt32:    "int32",
	TypeSint32:   "sint32",
	TypeSfixed32: "sfixed32",
	TypeInt64:    "int64",
	TypeSint64:   "sint64",
	TypeSfixed64: "sfixed64",
	TypeUint32:   "uint32",
	TypeFixed32:  "fixed32",
	TypeUint64:   "uint64",
	TypeFixed64:  "fixed64",
	TypeFloat:    "float",
	TypeDouble:   "double",
	TypeBool:     "bool",
	TypeEnum:     "enum",
	TypeString:   "string",
	TypeBytes:    "bytes",
	TypeMessage:  "message",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "unknown"
}

// IsPackable reports whether repeated fields of this type may use packed encoding.
// Everything except string, bytes and message is packable.
func (t Type) IsPackable() bool {
	return t <= TypeEnum
}

// Flags are per-field bit flags
type Flags uint32

const (
	FlagPacked Flags = 1 << iota
	FlagDeprecated
	FlagOneof
)

// Has reports whether all bits of f2 are set.
func (f Flags) Has(f2 Flags) bool {
	return f&f2 == f2
}
