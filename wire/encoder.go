package wire

import (
	"github.com/pkg/errors"

	"github.com/anirudhraja/protodesc/message"
)

// Encoder handles low-level protobuf wire format encoding
type Encoder struct {
	buf    []byte
	config Config
	depth  int
}

// NewEncoder creates a new wire format encoder using the global config
func NewEncoder() *Encoder {
	return &Encoder{
		buf:    make([]byte, 0),
		config: config,
	}
}

// WithConfig replaces the encoder's config.
func (e *Encoder) WithConfig(c Config) *Encoder {
	e.config = c.normalize()
	return e
}

// Bytes returns the encoded bytes
func (e *Encoder) Bytes() []byte {
	return e.buf
}

// Len returns the number of bytes written so far.
func (e *Encoder) Len() int {
	return len(e.buf)
}

// Reset clears the encoder buffer
func (e *Encoder) Reset() {
	e.buf = e.buf[:0]
}

// EncodeTag writes a field tag
func (e *Encoder) EncodeTag(fieldNumber FieldNumber, wireType WireType) {
	e.EncodeVarint(uint64(MakeTag(fieldNumber, wireType)))
}

// nested returns an empty encoder one nesting level deeper.
func (e *Encoder) nested() (*Encoder, error) {
	if e.depth+1 > e.config.MaxDepth {
		return nil, errors.Wrapf(ErrNestingTooDeep, "depth limit %d", e.config.MaxDepth)
	}
	return &Encoder{config: e.config, depth: e.depth + 1}, nil
}

// EncodeMessage encodes a message - main entry point. Output is deterministic:
// known fields in ascending number order, then unknown fields in arrival order.
func EncodeMessage(msg *message.Message) ([]byte, error) {
	return EncodeMessageWithConfig(msg, config)
}

// EncodeMessageWithConfig is EncodeMessage with an explicit config.
func EncodeMessageWithConfig(msg *message.Message, c Config) ([]byte, error) {
	c = c.normalize()
	size, err := SizeWithConfig(msg, c)
	if err != nil {
		return nil, err
	}
	if size > c.MaxMessageSize {
		return nil, errors.Wrapf(ErrAllocationFailure, "encode: %d bytes exceeds limit %d", size, c.MaxMessageSize)
	}
	encoder := &Encoder{buf: make([]byte, 0, size), config: c}
	if err := NewMessageEncoder(encoder).EncodeMessage(msg); err != nil {
		return nil, err
	}
	return encoder.Bytes(), nil
}
