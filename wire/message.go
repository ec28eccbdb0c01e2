package wire

import (
	"github.com/pkg/errors"

	"github.com/anirudhraja/protodesc/message"
	"github.com/anirudhraja/protodesc/schema"
)

// MessageEncoder handles message encoding operations
type MessageEncoder struct {
	encoder *Encoder
}

// NewMessageEncoder creates a new message encoder
func NewMessageEncoder(e *Encoder) *MessageEncoder {
	return &MessageEncoder{encoder: e}
}

// EncodeMessage appends the fields of msg (no tag or length prefix).
func (me *MessageEncoder) EncodeMessage(msg *message.Message) error {
	if msg == nil {
		return nil
	}
	if msg.Released() {
		return errors.Wrapf(message.ErrReleased, "encode %s", msg.Descriptor().FullName())
	}
	if err := msg.Descriptor().Check(); err != nil {
		return err
	}

	var err error
	msg.Range(func(field *schema.FieldDescriptor, value any) bool {
		if field.IsRepeated() {
			err = me.encodeRepeatedField(field, value.([]any))
		} else {
			me.encoder.EncodeTag(FieldNumber(field.Number), WireTypeOf(field.Type))
			err = me.encodeValue(field, value)
		}
		if err != nil {
			err = wrapWithField(err, field.Name)
			return false
		}
		return true
	})
	if err != nil {
		return err
	}

	// Unknown fields go last, verbatim
	for _, u := range msg.Unknown() {
		me.encoder.EncodeVarint(u.Tag)
		me.encoder.buf = append(me.encoder.buf, u.Data...)
	}
	return nil
}

// encodeRepeatedField encodes a repeated field, packed when the field says so
func (me *MessageEncoder) encodeRepeatedField(field *schema.FieldDescriptor, list []any) error {
	if field.IsPacked() {
		packed := &Encoder{config: me.encoder.config}
		for _, element := range list {
			if err := NewMessageEncoder(packed).encodeScalar(field.Type, element); err != nil {
				return err
			}
		}
		me.encoder.EncodeTag(FieldNumber(field.Number), WireBytes)
		me.encoder.EncodeBytes(packed.Bytes())
		return nil
	}

	// For each element in the slice, encode field tag + value
	wireType := WireTypeOf(field.Type)
	for _, element := range list {
		me.encoder.EncodeTag(FieldNumber(field.Number), wireType)
		if err := me.encodeValue(field, element); err != nil {
			return err
		}
	}
	return nil
}

// encodeValue encodes one value without its tag
func (me *MessageEncoder) encodeValue(field *schema.FieldDescriptor, value any) error {
	if field.Type != schema.TypeMessage {
		return me.encodeScalar(field.Type, value)
	}

	// Create a temporary encoder for the nested message
	nestedEncoder, err := me.encoder.nested()
	if err != nil {
		return err
	}
	nested, _ := value.(*message.Message)
	if err := NewMessageEncoder(nestedEncoder).EncodeMessage(nested); err != nil {
		return err
	}
	me.encoder.EncodeBytes(nestedEncoder.Bytes())
	return nil
}

// encodeScalar encodes a non-message value of type t
func (me *MessageEncoder) encodeScalar(t schema.Type, value any) error {
	e := me.encoder
	ve := NewVarintEncoder(e)
	fe := NewFixedEncoder(e)
	switch v := value.(type) {
	case int32:
		switch t {
		case schema.TypeInt32, schema.TypeEnum:
			ve.EncodeInt32(v)
		case schema.TypeSint32:
			ve.EncodeSint32(v)
		case schema.TypeSfixed32:
			fe.EncodeSfixed32(v)
		default:
			return mismatch(t, value)
		}
	case int64:
		switch t {
		case schema.TypeInt64:
			ve.EncodeInt64(v)
		case schema.TypeSint64:
			ve.EncodeSint64(v)
		case schema.TypeSfixed64:
			fe.EncodeSfixed64(v)
		default:
			return mismatch(t, value)
		}
	case uint32:
		switch t {
		case schema.TypeUint32:
			ve.EncodeUint32(v)
		case schema.TypeFixed32:
			fe.EncodeFixed32(v)
		default:
			return mismatch(t, value)
		}
	case uint64:
		switch t {
		case schema.TypeUint64:
			ve.EncodeUint64(v)
		case schema.TypeFixed64:
			fe.EncodeFixed64(v)
		default:
			return mismatch(t, value)
		}
	case float32:
		if t != schema.TypeFloat {
			return mismatch(t, value)
		}
		fe.EncodeFloat32(v)
	case float64:
		if t != schema.TypeDouble {
			return mismatch(t, value)
		}
		fe.EncodeFloat64(v)
	case bool:
		if t != schema.TypeBool {
			return mismatch(t, value)
		}
		ve.EncodeBool(v)
	case string:
		if t != schema.TypeString {
			return mismatch(t, value)
		}
		e.EncodeString(v)
	case []byte:
		if t != schema.TypeBytes {
			return mismatch(t, value)
		}
		e.EncodeBytes(v)
	default:
		return mismatch(t, value)
	}
	return nil
}

func mismatch(t schema.Type, value any) error {
	return errors.Wrapf(message.ErrInvalidValue, "cannot encode %T as %s", value, t)
}
