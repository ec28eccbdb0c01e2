package message

import (
	"bytes"
	"math"

	"github.com/pkg/errors"

	"github.com/anirudhraja/protodesc/schema"
)

// Zero returns the zero value stored for a singular field of type t.
func Zero(t schema.Type) any {
	switch t {
	case schema.TypeInt32, schema.TypeSint32, schema.TypeSfixed32, schema.TypeEnum:
		return int32(0)
	case schema.TypeInt64, schema.TypeSint64, schema.TypeSfixed64:
		return int64(0)
	case schema.TypeUint32, schema.TypeFixed32:
		return uint32(0)
	case schema.TypeUint64, schema.TypeFixed64:
		return uint64(0)
	case schema.TypeFloat:
		return float32(0)
	case schema.TypeDouble:
		return float64(0)
	case schema.TypeBool:
		return false
	case schema.TypeString:
		return ""
	case schema.TypeBytes:
		return []byte(nil)
	default:
		return (*Message)(nil)
	}
}

// defaultOf returns the declared default of a singular field, or the type zero.
func defaultOf(fd *schema.FieldDescriptor) any {
	if fd.Default != nil {
		return fd.Default
	}
	return Zero(fd.Type)
}

// valueEqual compares two stored values of the same field type. Floats compare
// by bit pattern so NaN payloads survive a round trip check.
func valueEqual(a, b any) bool {
	switch x := a.(type) {
	case []byte:
		y, ok := b.([]byte)
		return ok && bytes.Equal(x, y)
	case float32:
		y, ok := b.(float32)
		return ok && math.Float32bits(x) == math.Float32bits(y)
	case float64:
		y, ok := b.(float64)
		return ok && math.Float64bits(x) == math.Float64bits(y)
	case *Message:
		y, ok := b.(*Message)
		return ok && x.Equal(y)
	default:
		return a == b
	}
}

// isDefault reports whether v equals the field default, which decides
// whether an implicit-presence field is emitted.
func isDefault(fd *schema.FieldDescriptor, v any) bool {
	if v == nil {
		return true
	}
	def := defaultOf(fd)
	if b, ok := v.([]byte); ok {
		d, _ := def.([]byte)
		return bytes.Equal(b, d)
	}
	return valueEqual(v, def)
}

// checkElement validates the Go type of one (non-list) value for fd.
func checkElement(fd *schema.FieldDescriptor, v any) error {
	if fd.Type == schema.TypeMessage {
		m, ok := v.(*Message)
		if !ok || m == nil {
			return errors.Wrapf(ErrInvalidValue, "field %s: want *message.Message, got %T", fd.Name, v)
		}
		want, err := fd.Message()
		if err != nil {
			return err
		}
		if m.desc != want {
			return errors.Wrapf(ErrInvalidValue, "field %s: want message %s, got %s", fd.Name, want.FullName(), m.desc.FullName())
		}
		return nil
	}
	if !schema.ScalarMatches(fd.Type, v) {
		return errors.Wrapf(ErrInvalidValue, "field %s: %T is not a valid %s value", fd.Name, v, fd.Type)
	}
	return nil
}
