package schema

import (
	"errors"
	"fmt"
)

// ErrInvalidDescriptor is returned by Validate for tables that break the
// descriptor invariants.
var ErrInvalidDescriptor = errors.New("schema: invalid descriptor")

// MaxFieldNumber is the largest field number the wire format can carry.
const MaxFieldNumber = 1<<29 - 1

// ScalarMatches reports whether v has the Go type used to store values of t.
// Message values are not scalars and never match.
func ScalarMatches(t Type, v any) bool {
	switch v.(type) {
	case int32:
		return t == TypeInt32 || t == TypeSint32 || t == TypeSfixed32 || t == TypeEnum
	case int64:
		return t == TypeInt64 || t == TypeSint64 || t == TypeSfixed64
	case uint32:
		return t == TypeUint32 || t == TypeFixed32
	case uint64:
		return t == TypeUint64 || t == TypeFixed64
	case float32:
		return t == TypeFloat
	case float64:
		return t == TypeDouble
	case bool:
		return t == TypeBool
	case string:
		return t == TypeString
	case []byte:
		return t == TypeBytes
	default:
		return false
	}
}

// Check runs Validate on md once and returns the cached result. Codecs call
// it on every descriptor they reach, registered or not.
func (md *MessageDescriptor) Check() error {
	if md == nil {
		return Validate(nil)
	}
	md.checkOnce.Do(func() {
		md.checkErr = Validate(md)
	})
	return md.checkErr
}

// Validate checks a message descriptor table: unique field numbers and slots,
// slots within Size, oneof indexes in range, packed only on packable repeated
// fields, nested references of the right kind and defaults of the right type.
// Nested descriptors are not visited.
func Validate(md *MessageDescriptor) error {
	if md == nil {
		return fmt.Errorf("%w: nil message descriptor", ErrInvalidDescriptor)
	}
	invalid := func(f *FieldDescriptor, format string, args ...any) error {
		return fmt.Errorf("%w: %s.%s: %s", ErrInvalidDescriptor, md.FullName(), f.Name, fmt.Sprintf(format, args...))
	}

	numbers := make(map[int32]struct{}, len(md.Fields))
	slots := make(map[int]struct{}, len(md.Fields))
	for _, f := range md.Fields {
		if f == nil {
			return fmt.Errorf("%w: %s: nil field", ErrInvalidDescriptor, md.FullName())
		}
		if f.Number < 1 || f.Number > MaxFieldNumber {
			return invalid(f, "field number %d out of range", f.Number)
		}
		if _, dup := numbers[f.Number]; dup {
			return invalid(f, "duplicate field number %d", f.Number)
		}
		numbers[f.Number] = struct{}{}

		if f.Slot < 0 || f.Slot >= md.Size {
			return invalid(f, "slot %d outside [0,%d)", f.Slot, md.Size)
		}
		if _, dup := slots[f.Slot]; dup {
			return invalid(f, "slot %d already used", f.Slot)
		}
		slots[f.Slot] = struct{}{}

		if f.Type > TypeMessage {
			return invalid(f, "unknown type %d", f.Type)
		}
		if f.Label > LabelNone {
			return invalid(f, "unknown label %d", f.Label)
		}
		if f.IsPacked() && (!f.IsRepeated() || !f.Type.IsPackable()) {
			return invalid(f, "packed requires a repeated packable scalar")
		}
		if f.InOneof() {
			if f.IsRepeated() {
				return invalid(f, "oneof member cannot be repeated")
			}
			if f.OneofIndex < 0 || f.OneofIndex >= len(md.Oneofs) {
				return invalid(f, "oneof index %d out of range", f.OneofIndex)
			}
		}

		switch f.Type {
		case TypeMessage:
			if _, err := f.Ref.AsMessage(); err != nil {
				return invalid(f, "message field: %v", err)
			}
		case TypeEnum:
			if _, err := f.Ref.AsEnum(); err != nil {
				return invalid(f, "enum field: %v", err)
			}
		}

		if f.Default != nil {
			if f.IsRepeated() || f.Type == TypeMessage {
				return invalid(f, "default not allowed on %s %s field", f.Label, f.Type)
			}
			if !ScalarMatches(f.Type, f.Default) {
				return invalid(f, "default %T does not match %s", f.Default, f.Type)
			}
		}
	}
	return nil
}
