package wire

import (
	"math"

	"github.com/pkg/errors"

	"github.com/anirudhraja/protodesc/message"
	"github.com/anirudhraja/protodesc/schema"
)

// Size returns the exact number of bytes EncodeMessage produces for msg.
func Size(msg *message.Message) (int, error) {
	return SizeWithConfig(msg, config)
}

// SizeWithConfig is Size with an explicit config.
func SizeWithConfig(msg *message.Message, c Config) (int, error) {
	return messageSize(msg, c.normalize(), 0)
}

func messageSize(msg *message.Message, c Config, depth int) (int, error) {
	if msg == nil {
		return 0, nil
	}
	if msg.Released() {
		return 0, errors.Wrapf(message.ErrReleased, "size %s", msg.Descriptor().FullName())
	}
	if err := msg.Descriptor().Check(); err != nil {
		return 0, err
	}

	total := 0
	var err error
	msg.Range(func(field *schema.FieldDescriptor, value any) bool {
		var n int
		n, err = fieldSize(field, value, c, depth)
		if err != nil {
			err = wrapWithField(err, field.Name)
			return false
		}
		total += n
		if total > math.MaxInt32 {
			err = errors.Wrapf(ErrAllocationFailure, "message %s exceeds %d bytes", msg.Descriptor().FullName(), math.MaxInt32)
			return false
		}
		return true
	})
	if err != nil {
		return 0, err
	}
	return total + msg.Unknown().Size(), nil
}

// fieldSize returns the encoded size of one populated field, tags included.
func fieldSize(field *schema.FieldDescriptor, value any, c Config, depth int) (int, error) {
	tagSize := VarintSize(uint64(MakeTag(FieldNumber(field.Number), WireVarint)))
	if !field.IsRepeated() {
		n, err := valueSize(field, value, c, depth)
		return tagSize + n, err
	}

	list := value.([]any)
	n := 0
	for _, element := range list {
		size, err := valueSize(field, element, c, depth)
		if err != nil {
			return 0, err
		}
		n += size
	}
	if field.IsPacked() {
		return tagSize + BytesSize(n), nil
	}
	return n + tagSize*len(list), nil
}

// valueSize returns the encoded size of one value without its tag.
func valueSize(field *schema.FieldDescriptor, value any, c Config, depth int) (int, error) {
	switch field.Type {
	case schema.TypeMessage:
		if depth+1 > c.MaxDepth {
			return 0, errors.Wrapf(ErrNestingTooDeep, "depth limit %d", c.MaxDepth)
		}
		nested, _ := value.(*message.Message)
		n, err := messageSize(nested, c, depth+1)
		if err != nil {
			return 0, err
		}
		return BytesSize(n), nil
	case schema.TypeFixed32, schema.TypeSfixed32, schema.TypeFloat:
		return 4, nil
	case schema.TypeFixed64, schema.TypeSfixed64, schema.TypeDouble:
		return 8, nil
	case schema.TypeBool:
		return 1, nil
	case schema.TypeString:
		s, _ := value.(string)
		return BytesSize(len(s)), nil
	case schema.TypeBytes:
		b, _ := value.([]byte)
		return BytesSize(len(b)), nil
	}

	switch v := value.(type) {
	case int32:
		if field.Type == schema.TypeSint32 {
			return VarintSize(EncodeZigZag32(v)), nil
		}
		return VarintSize(uint64(int64(v))), nil
	case int64:
		if field.Type == schema.TypeSint64 {
			return VarintSize(EncodeZigZag64(v)), nil
		}
		return VarintSize(uint64(v)), nil
	case uint32:
		return VarintSize(uint64(v)), nil
	case uint64:
		return VarintSize(v), nil
	default:
		return 0, mismatch(field.Type, value)
	}
}
