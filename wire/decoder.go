package wire

import (
	"github.com/pkg/errors"

	"github.com/anirudhraja/protodesc/message"
	"github.com/anirudhraja/protodesc/registry"
	"github.com/anirudhraja/protodesc/schema"
)

// Decoder handles low-level protobuf wire format decoding
type Decoder struct {
	buf      []byte
	pos      int
	registry *registry.Registry
	config   Config
	depth    int // embedded-message depth of buf below the top-level message
}

// NewDecoder creates a new wire format decoder using the global config
func NewDecoder(data []byte) *Decoder {
	return &Decoder{
		buf:    data,
		config: config,
	}
}

// NewDecoderWithRegistry creates a decoder with schema registry
func NewDecoderWithRegistry(data []byte, registry *registry.Registry) *Decoder {
	return &Decoder{
		buf:      data,
		registry: registry,
		config:   config,
	}
}

// WithConfig replaces the decoder's config.
func (d *Decoder) WithConfig(c Config) *Decoder {
	d.config = c.normalize()
	return d
}

// Remaining returns the number of unread bytes.
func (d *Decoder) Remaining() int { return len(d.buf) - d.pos }

// sub returns a decoder over an embedded payload one nesting level deeper.
func (d *Decoder) sub(payload []byte) (*Decoder, error) {
	if d.depth+1 > d.config.MaxDepth {
		return nil, errors.Wrapf(ErrNestingTooDeep, "depth limit %d", d.config.MaxDepth)
	}
	return &Decoder{
		buf:      payload,
		registry: d.registry,
		config:   d.config,
		depth:    d.depth + 1,
	}, nil
}

// DecodeMessage decodes protobuf bytes using schema - main entry point.
// reg may be nil, in which case every message is built with message.New.
func DecodeMessage(data []byte, md *schema.MessageDescriptor, reg *registry.Registry) (*message.Message, error) {
	return NewDecoderWithRegistry(data, reg).DecodeWithSchema(md)
}

// DecodeMessageWithConfig is DecodeMessage with an explicit config.
func DecodeMessageWithConfig(data []byte, md *schema.MessageDescriptor, reg *registry.Registry, c Config) (*message.Message, error) {
	return NewDecoderWithRegistry(data, reg).WithConfig(c).DecodeWithSchema(md)
}

// DecodeWithSchema builds a fresh instance of md and decodes the remaining
// input into it. On error the partial message is released and nil returned.
func (d *Decoder) DecodeWithSchema(md *schema.MessageDescriptor) (*message.Message, error) {
	if md == nil {
		return nil, errors.Wrap(ErrTypeMismatch, "decode: nil message descriptor")
	}
	if err := md.Check(); err != nil {
		return nil, errors.Wrap(err, "decode")
	}
	if len(d.buf) > d.config.MaxMessageSize {
		return nil, errors.Wrapf(ErrAllocationFailure, "decode: input of %d bytes exceeds limit %d", len(d.buf), d.config.MaxMessageSize)
	}
	msg := d.registry.New(md)
	if err := d.decodeInto(msg); err != nil {
		msg.Release()
		return nil, errors.Wrapf(err, "failed to decode message %s", md.FullName())
	}
	return msg, nil
}

// decodeInto reads fields until the buffer is exhausted, merging them into msg.
func (d *Decoder) decodeInto(msg *message.Message) error {
	md := msg.Descriptor()
	for d.pos < len(d.buf) {
		tag, fieldNumber, wireType, err := d.DecodeTag()
		if err != nil {
			return err
		}
		if wireType == WireEndGroup {
			return errors.Wrapf(ErrMalformed, "unexpected end group for field %d", fieldNumber)
		}

		// Find field in schema
		field := md.FieldByNumber(int32(fieldNumber))
		if field != nil {
			handled, err := d.decodeField(msg, field, wireType)
			if err != nil {
				return wrapWithField(err, field.Name)
			}
			if handled {
				continue
			}
			d.config.Logger.Debug().
				Str("message", md.FullName()).
				Str("field", field.Name).
				Int32("number", int32(fieldNumber)).
				Stringer("wire_type", wireType).
				Stringer("want", WireTypeOf(field.Type)).
				Msg("wire type mismatch, keeping field as unknown")
		}

		raw, err := d.skipField(fieldNumber, wireType)
		if err != nil {
			return err
		}
		if d.config.DiscardUnknown {
			continue
		}
		msg.AddUnknown(message.UnknownField{
			Tag:  uint64(tag),
			Data: append([]byte(nil), raw...),
		})
	}
	return nil
}

// DecodeTag reads one tag and splits it into field number and wire type.
func (d *Decoder) DecodeTag() (Tag, FieldNumber, WireType, error) {
	v, err := d.DecodeVarint()
	if err != nil {
		return 0, 0, 0, errors.Wrap(err, "tag")
	}
	if v>>3 > uint64(MaxFieldNumber) {
		return 0, 0, 0, errors.Wrapf(ErrMalformed, "field number %d out of range", v>>3)
	}
	tag := Tag(v)
	fieldNumber, wireType := ParseTag(tag)
	if fieldNumber == 0 {
		return 0, 0, 0, errors.Wrap(ErrMalformed, "field number 0")
	}
	if wireType > WireFixed32 {
		return 0, 0, 0, errors.Wrapf(ErrMalformed, "invalid wire type %d for field %d", wireType, fieldNumber)
	}
	return tag, fieldNumber, wireType, nil
}

// skipField consumes one value of the given wire type and returns its raw bytes.
func (d *Decoder) skipField(fieldNumber FieldNumber, wireType WireType) ([]byte, error) {
	start := d.pos
	if err := d.skipValue(fieldNumber, wireType, d.depth); err != nil {
		return nil, errors.Wrapf(err, "skip field %d", fieldNumber)
	}
	return d.buf[start:d.pos], nil
}

func (d *Decoder) skipValue(fieldNumber FieldNumber, wireType WireType, depth int) error {
	switch wireType {
	case WireVarint:
		return NewVarintDecoder(d).SkipVarint()
	case WireFixed64:
		_, err := d.DecodeFixed64()
		return err
	case WireBytes:
		return NewBytesDecoder(d).SkipBytes()
	case WireFixed32:
		_, err := d.DecodeFixed32()
		return err
	case WireStartGroup:
		return d.skipGroup(fieldNumber, depth+1)
	default:
		return errors.Wrapf(ErrMalformed, "unknown wire type: %d", wireType)
	}
}

// skipGroup consumes a group body up to and including its end tag.
func (d *Decoder) skipGroup(fieldNumber FieldNumber, depth int) error {
	if depth > d.config.MaxDepth {
		return errors.Wrapf(ErrNestingTooDeep, "group depth limit %d", d.config.MaxDepth)
	}
	for {
		if d.pos >= len(d.buf) {
			return errors.Wrapf(ErrTruncated, "group %d has no end tag", fieldNumber)
		}
		_, num, wireType, err := d.DecodeTag()
		if err != nil {
			return err
		}
		if wireType == WireEndGroup {
			if num != fieldNumber {
				return errors.Wrapf(ErrMalformed, "end group %d closes group %d", num, fieldNumber)
			}
			return nil
		}
		if err := d.skipValue(num, wireType, depth); err != nil {
			return err
		}
	}
}

var rawDescriptor = &schema.MessageDescriptor{Name: "raw"}

// DecodeRaw decodes data without a schema, returning every field in wire
// order as an unknown field.
func DecodeRaw(data []byte) (message.UnknownFields, error) {
	return DecodeRawWithConfig(data, config)
}

// DecodeRawWithConfig is DecodeRaw with an explicit config. DiscardUnknown is ignored.
func DecodeRawWithConfig(data []byte, c Config) (message.UnknownFields, error) {
	c.DiscardUnknown = false
	d := NewDecoder(data).WithConfig(c)
	if len(data) > d.config.MaxMessageSize {
		return nil, errors.Wrapf(ErrAllocationFailure, "decode: input of %d bytes exceeds limit %d", len(data), d.config.MaxMessageSize)
	}
	msg := message.New(rawDescriptor)
	if err := d.decodeInto(msg); err != nil {
		return nil, err
	}
	return msg.Unknown(), nil
}
