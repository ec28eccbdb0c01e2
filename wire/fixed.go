package wire

import (
	"encoding/binary"
	"math"
)

// FixedDecoder reads little-endian 32 and 64-bit words at the cursor of a
// Decoder. Floats travel as their IEEE 754 bit patterns, so NaN payloads and
// signed zeros survive a round trip.
type FixedDecoder struct {
	decoder *Decoder
}

// FixedEncoder appends little-endian words to an Encoder.
type FixedEncoder struct {
	encoder *Encoder
}

func NewFixedDecoder(d *Decoder) *FixedDecoder { return &FixedDecoder{decoder: d} }
func NewFixedEncoder(e *Encoder) *FixedEncoder { return &FixedEncoder{encoder: e} }

// next returns the following n bytes and advances past them, or ErrTruncated
// without moving.
func (fd *FixedDecoder) next(n int) ([]byte, error) {
	d := fd.decoder
	if len(d.buf)-d.pos < n {
		return nil, ErrTruncated
	}
	b := d.buf[d.pos : d.pos+n]
	d.pos += n
	return b, nil
}

func (fd *FixedDecoder) DecodeFixed32() (uint32, error) {
	b, err := fd.next(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (fd *FixedDecoder) DecodeFixed64() (uint64, error) {
	b, err := fd.next(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (fd *FixedDecoder) DecodeSfixed32() (int32, error) {
	v, err := fd.DecodeFixed32()
	return int32(v), err
}

func (fd *FixedDecoder) DecodeSfixed64() (int64, error) {
	v, err := fd.DecodeFixed64()
	return int64(v), err
}

func (fd *FixedDecoder) DecodeFloat32() (float32, error) {
	v, err := fd.DecodeFixed32()
	return math.Float32frombits(v), err
}

func (fd *FixedDecoder) DecodeFloat64() (float64, error) {
	v, err := fd.DecodeFixed64()
	return math.Float64frombits(v), err
}

func (fe *FixedEncoder) EncodeFixed32(v uint32) {
	fe.encoder.buf = binary.LittleEndian.AppendUint32(fe.encoder.buf, v)
}

func (fe *FixedEncoder) EncodeFixed64(v uint64) {
	fe.encoder.buf = binary.LittleEndian.AppendUint64(fe.encoder.buf, v)
}

func (fe *FixedEncoder) EncodeSfixed32(v int32)   { fe.EncodeFixed32(uint32(v)) }
func (fe *FixedEncoder) EncodeSfixed64(v int64)   { fe.EncodeFixed64(uint64(v)) }
func (fe *FixedEncoder) EncodeFloat32(v float32) { fe.EncodeFixed32(math.Float32bits(v)) }
func (fe *FixedEncoder) EncodeFloat64(v float64) { fe.EncodeFixed64(math.Float64bits(v)) }

func (d *Decoder) DecodeFixed32() (uint32, error) { return NewFixedDecoder(d).DecodeFixed32() }
func (d *Decoder) DecodeFixed64() (uint64, error) { return NewFixedDecoder(d).DecodeFixed64() }
func (e *Encoder) EncodeFixed32(v uint32)         { NewFixedEncoder(e).EncodeFixed32(v) }
func (e *Encoder) EncodeFixed64(v uint64)         { NewFixedEncoder(e).EncodeFixed64(v) }
