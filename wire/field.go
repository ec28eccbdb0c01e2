package wire

import (
	"github.com/pkg/errors"

	"github.com/anirudhraja/protodesc/message"
	"github.com/anirudhraja/protodesc/schema"
)

// decodeField decodes one occurrence of a known field into msg. It returns
// false, consuming nothing, when the wire type does not fit the field so the
// caller can keep the occurrence as unknown.
func (d *Decoder) decodeField(msg *message.Message, field *schema.FieldDescriptor, wireType WireType) (bool, error) {
	if field.IsRepeated() && field.Type.IsPackable() && wireType == WireBytes {
		return true, d.decodePacked(msg, field)
	}
	if wireType != WireTypeOf(field.Type) {
		return false, nil
	}

	if field.Type == schema.TypeMessage {
		return true, d.decodeMessageField(msg, field)
	}

	value, err := d.decodeScalar(field.Type)
	if err != nil {
		return true, err
	}
	if field.IsRepeated() {
		return true, msg.Append(field.Number, value)
	}
	// Last one wins for singular fields
	return true, msg.Set(field.Number, value)
}

// decodePacked decodes a packed run of scalars. The payload must be consumed exactly.
func (d *Decoder) decodePacked(msg *message.Message, field *schema.FieldDescriptor) error {
	payload, err := NewBytesDecoder(d).DecodeRawBytes()
	if err != nil {
		return err
	}
	pd := &Decoder{buf: payload, config: d.config}
	for pd.pos < len(pd.buf) {
		value, err := pd.decodeScalar(field.Type)
		if err != nil {
			if errors.Is(err, ErrTruncated) {
				return errors.Wrapf(ErrMalformed, "packed %s payload of %d bytes has %d trailing bytes", field.Type, len(payload), len(payload)-pd.pos)
			}
			return err
		}
		if err := msg.Append(field.Number, value); err != nil {
			return err
		}
	}
	return nil
}

// decodeMessageField decodes an embedded message. Repeated fields get a new
// element per occurrence; a singular field already set is merged into.
func (d *Decoder) decodeMessageField(msg *message.Message, field *schema.FieldDescriptor) error {
	nestedDesc, err := field.Message()
	if err != nil {
		return err
	}
	if err := nestedDesc.Check(); err != nil {
		return err
	}
	payload, err := NewBytesDecoder(d).DecodeRawBytes()
	if err != nil {
		return err
	}
	nd, err := d.sub(payload)
	if err != nil {
		return err
	}

	if !field.IsRepeated() && msg.Has(field.Number) {
		existing, _ := msg.Get(field.Number).(*message.Message)
		return nd.decodeInto(existing)
	}

	nested := d.registry.New(nestedDesc)
	if err := nd.decodeInto(nested); err != nil {
		nested.Release()
		return err
	}
	if field.IsRepeated() {
		return msg.Append(field.Number, nested)
	}
	return msg.Set(field.Number, nested)
}

// decodeScalar decodes one non-message value of type t.
func (d *Decoder) decodeScalar(t schema.Type) (any, error) {
	vd := NewVarintDecoder(d)
	fd := NewFixedDecoder(d)
	switch t {
	case schema.TypeInt32:
		return vd.DecodeInt32()
	case schema.TypeInt64:
		return vd.DecodeInt64()
	case schema.TypeUint32:
		return vd.DecodeUint32()
	case schema.TypeUint64:
		return vd.DecodeVarint()
	case schema.TypeSint32:
		return vd.DecodeSint32()
	case schema.TypeSint64:
		return vd.DecodeSint64()
	case schema.TypeBool:
		return vd.DecodeBool()
	case schema.TypeEnum:
		// open enum: numbers missing from the descriptor are kept as-is
		return vd.DecodeEnum()
	case schema.TypeFixed32:
		return fd.DecodeFixed32()
	case schema.TypeSfixed32:
		return fd.DecodeSfixed32()
	case schema.TypeFloat:
		return fd.DecodeFloat32()
	case schema.TypeFixed64:
		return fd.DecodeFixed64()
	case schema.TypeSfixed64:
		return fd.DecodeSfixed64()
	case schema.TypeDouble:
		return fd.DecodeFloat64()
	case schema.TypeString:
		return NewBytesDecoder(d).DecodeString()
	case schema.TypeBytes:
		return NewBytesDecoder(d).DecodeBytes()
	default:
		return nil, errors.Wrapf(ErrTypeMismatch, "type %s is not a scalar", t)
	}
}
