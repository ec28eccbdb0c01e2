package wire

import (
	"math"

	"github.com/pkg/errors"
)

// BytesDecoder reads varint-length-prefixed payloads: strings, bytes and
// embedded messages.
type BytesDecoder struct {
	decoder *Decoder
}

// BytesEncoder appends length-prefixed payloads.
type BytesEncoder struct {
	encoder *Encoder
}

func NewBytesDecoder(d *Decoder) *BytesDecoder { return &BytesDecoder{decoder: d} }
func NewBytesEncoder(e *Encoder) *BytesEncoder { return &BytesEncoder{encoder: e} }

// DecodeRawBytes decodes a length-delimited payload without copying; the
// result shares the input buffer.
func (bd *BytesDecoder) DecodeRawBytes() ([]byte, error) {
	d := bd.decoder
	start := d.pos
	length, err := NewVarintDecoder(d).DecodeVarint()
	if err != nil {
		return nil, errors.Wrap(err, "bytes length")
	}
	if remaining := len(d.buf) - d.pos; uint64(remaining) < length {
		d.pos = start
		return nil, errors.Wrapf(ErrTruncated, "bytes: need %d bytes, have %d", length, remaining)
	}
	if length > math.MaxInt32 {
		d.pos = start
		return nil, errors.Wrapf(ErrMalformed, "bytes length %d exceeds the 2 GiB wire limit", length)
	}

	data := d.buf[d.pos : d.pos+int(length)]
	d.pos += int(length)
	return data, nil
}

// DecodeBytes is DecodeRawBytes with the payload copied out of the input.
func (bd *BytesDecoder) DecodeBytes() ([]byte, error) {
	raw, err := bd.DecodeRawBytes()
	if err != nil {
		return nil, err
	}
	data := make([]byte, len(raw))
	copy(data, raw)
	return data, nil
}

func (bd *BytesDecoder) DecodeString() (string, error) {
	raw, err := bd.DecodeRawBytes()
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (bd *BytesDecoder) SkipBytes() error {
	_, err := bd.DecodeRawBytes()
	return err
}

func (be *BytesEncoder) EncodeBytes(data []byte) {
	NewVarintEncoder(be.encoder).EncodeVarint(uint64(len(data)))
	be.encoder.buf = append(be.encoder.buf, data...)
}

func (be *BytesEncoder) EncodeString(s string) {
	NewVarintEncoder(be.encoder).EncodeVarint(uint64(len(s)))
	be.encoder.buf = append(be.encoder.buf, s...)
}

// BytesSize is the encoded length of an n-byte payload including its prefix.
func BytesSize(n int) int {
	return VarintSize(uint64(n)) + n
}

func (d *Decoder) DecodeBytes() ([]byte, error) { return NewBytesDecoder(d).DecodeBytes() }
func (e *Encoder) EncodeBytes(data []byte)      { NewBytesEncoder(e).EncodeBytes(data) }
func (e *Encoder) EncodeString(s string)        { NewBytesEncoder(e).EncodeString(s) }
