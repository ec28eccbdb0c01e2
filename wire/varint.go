package wire

import "google.golang.org/protobuf/encoding/protowire"

// MaxVarintLen is the longest encoding of a 64-bit varint.
const MaxVarintLen = 10

// VarintDecoder reads base-128 varints at the cursor of a Decoder.
type VarintDecoder struct {
	decoder *Decoder
}

// VarintEncoder appends base-128 varints to an Encoder.
type VarintEncoder struct {
	encoder *Encoder
}

func NewVarintDecoder(d *Decoder) *VarintDecoder { return &VarintDecoder{decoder: d} }
func NewVarintEncoder(e *Encoder) *VarintEncoder { return &VarintEncoder{encoder: e} }

// DecodeVarint reads one varint. The cursor is left untouched on error.
//
// Running out of input is ErrTruncated. More than ten bytes, or a tenth byte
// carrying bits above bit 63, is ErrOverflow.
func (vd *VarintDecoder) DecodeVarint() (uint64, error) {
	d := vd.decoder
	var v uint64
	for i, shift := 0, uint(0); i < MaxVarintLen; i, shift = i+1, shift+7 {
		if d.pos+i >= len(d.buf) {
			return 0, ErrTruncated
		}
		b := d.buf[d.pos+i]
		if i == MaxVarintLen-1 && b > 1 {
			return 0, ErrOverflow
		}
		v |= uint64(b&0x7f) << shift
		if b < 0x80 {
			d.pos += i + 1
			return v, nil
		}
	}
	return 0, ErrOverflow
}

func (vd *VarintDecoder) SkipVarint() error {
	_, err := vd.DecodeVarint()
	return err
}

// Narrowing reads. int32 and enum values are truncated from the sign-extended
// 64-bit form; sint types are zigzag.

func (vd *VarintDecoder) DecodeInt32() (int32, error) {
	v, err := vd.DecodeVarint()
	return int32(v), err
}

func (vd *VarintDecoder) DecodeInt64() (int64, error) {
	v, err := vd.DecodeVarint()
	return int64(v), err
}

func (vd *VarintDecoder) DecodeUint32() (uint32, error) {
	v, err := vd.DecodeVarint()
	return uint32(v), err
}

func (vd *VarintDecoder) DecodeSint32() (int32, error) {
	v, err := vd.DecodeVarint()
	return DecodeZigZag32(v), err
}

func (vd *VarintDecoder) DecodeSint64() (int64, error) {
	v, err := vd.DecodeVarint()
	return DecodeZigZag64(v), err
}

// DecodeBool treats any non-zero varint as true.
func (vd *VarintDecoder) DecodeBool() (bool, error) {
	v, err := vd.DecodeVarint()
	return v != 0, err
}

// DecodeEnum accepts numbers outside the declared values.
func (vd *VarintDecoder) DecodeEnum() (int32, error) {
	return vd.DecodeInt32()
}

func (ve *VarintEncoder) EncodeVarint(v uint64) {
	buf := ve.encoder.buf
	for ; v >= 0x80; v >>= 7 {
		buf = append(buf, byte(v)|0x80)
	}
	ve.encoder.buf = append(buf, byte(v))
}

// EncodeInt32 sign-extends, so negative values always take ten bytes.
func (ve *VarintEncoder) EncodeInt32(v int32)   { ve.EncodeVarint(uint64(int64(v))) }
func (ve *VarintEncoder) EncodeInt64(v int64)   { ve.EncodeVarint(uint64(v)) }
func (ve *VarintEncoder) EncodeUint32(v uint32) { ve.EncodeVarint(uint64(v)) }
func (ve *VarintEncoder) EncodeUint64(v uint64) { ve.EncodeVarint(v) }
func (ve *VarintEncoder) EncodeSint32(v int32)  { ve.EncodeVarint(EncodeZigZag32(v)) }
func (ve *VarintEncoder) EncodeSint64(v int64)  { ve.EncodeVarint(EncodeZigZag64(v)) }
func (ve *VarintEncoder) EncodeEnum(v int32)    { ve.EncodeInt32(v) }

func (ve *VarintEncoder) EncodeBool(v bool) {
	var b uint64
	if v {
		b = 1
	}
	ve.EncodeVarint(b)
}

// DecodeZigZag32 maps 0, 1, 2, 3 back to 0, -1, 1, -2. Only the low 32 bits
// of encoded are used.
func DecodeZigZag32(encoded uint64) int32 {
	u := uint32(encoded)
	return int32(u>>1) ^ -int32(u&1)
}

func EncodeZigZag32(v int32) uint64 {
	return uint64(uint32(v<<1) ^ uint32(v>>31))
}

func DecodeZigZag64(encoded uint64) int64 { return protowire.DecodeZigZag(encoded) }
func EncodeZigZag64(v int64) uint64       { return protowire.EncodeZigZag(v) }

// VarintSize is the encoded length of v in bytes.
func VarintSize(v uint64) int { return protowire.SizeVarint(v) }

func (d *Decoder) DecodeVarint() (uint64, error) { return NewVarintDecoder(d).DecodeVarint() }
func (e *Encoder) EncodeVarint(v uint64)         { NewVarintEncoder(e).EncodeVarint(v) }
