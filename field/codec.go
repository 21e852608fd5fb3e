package field

import (
	"encoding/binary"
	"math"
	"strings"

	"github.com/wippyai/ie-effects/errors"
)

// ReadUint reads a little-endian unsigned integer of 1, 2 or 4 bytes.
func ReadUint(b []byte) uint32 {
	switch len(b) {
	case 1:
		return uint32(b[0])
	case 2:
		return uint32(binary.LittleEndian.Uint16(b))
	case 4:
		return binary.LittleEndian.Uint32(b)
	}
	return 0
}

// ReadInt reads a little-endian signed integer of 1, 2 or 4 bytes.
func ReadInt(b []byte) int32 {
	switch len(b) {
	case 1:
		return int32(int8(b[0]))
	case 2:
		return int32(int16(binary.LittleEndian.Uint16(b)))
	case 4:
		return int32(binary.LittleEndian.Uint32(b))
	}
	return 0
}

// ReadFloat reads a little-endian IEEE 754 single. Other widths read as zero.
func ReadFloat(b []byte) float32 {
	if len(b) != 4 {
		return 0
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}

// ReadText reads a NUL-padded fixed-width string, stopping at the first NUL.
func ReadText(b []byte) string {
	return strings.Split(string(b), "\x00")[0]
}

// Encode returns the bytes that decode back to d.Value at d.Length.
// Labels are not encoded: they are derived from the integer on decode.
func Encode(d Descriptor) ([]byte, error) {
	out := make([]byte, d.Length)
	v := d.Value
	switch v.Kind {
	case KindInt, KindUint, KindEnum, KindBitmask, KindStrRef:
		if d.Length == 1 || d.Length == 2 || d.Length == 4 {
			if lo, hi := intRange(d.Length); v.Int < lo || v.Int > hi {
				return nil, errors.New(errors.PhaseUpdate, errors.KindInvalidInput).
					Field(d.Name).
					Value(v.Int).
					Detail("%d does not fit in %d bytes", v.Int, d.Length).
					Build()
			}
		}
		switch d.Length {
		case 1:
			out[0] = byte(v.Int)
		case 2:
			binary.LittleEndian.PutUint16(out, uint16(v.Int))
		case 4:
			binary.LittleEndian.PutUint32(out, uint32(v.Int))
		default:
			return nil, errors.New(errors.PhaseUpdate, errors.KindUnsupported).
				Field(d.Name).
				Detail("cannot encode %s into %d bytes", v.Kind, d.Length).
				Build()
		}
	case KindFloat:
		if d.Length != 4 {
			return nil, errors.New(errors.PhaseUpdate, errors.KindUnsupported).
				Field(d.Name).
				Detail("float needs 4 bytes, field has %d", d.Length).
				Build()
		}
		binary.LittleEndian.PutUint32(out, math.Float32bits(float32(v.Float)))
	case KindResource, KindString:
		if len(v.Text) > d.Length {
			return nil, errors.New(errors.PhaseUpdate, errors.KindInvalidInput).
				Field(d.Name).
				Value(v.Text).
				Detail("%q longer than %d bytes", v.Text, d.Length).
				Build()
		}
		copy(out, v.Text)
	case KindRaw:
		copy(out, d.Raw)
	}
	return out, nil
}

// intRange is the span of values an n-byte field accepts: the signed minimum
// through the unsigned maximum.
func intRange(n int) (lo, hi int64) {
	bits := uint(n * 8)
	return -(1 << (bits - 1)), 1<<bits - 1
}

// Put writes d's encoded value into buf at d.Offset. This is the in-place
// replacement used after a field edit; it never grows or shifts the record.
func Put(buf []byte, d Descriptor) error {
	if d.Offset < 0 || d.End() > len(buf) {
		return errors.OutOfBounds(errors.PhaseUpdate, []string{d.Name}, d.End(), len(buf))
	}
	b, err := Encode(d)
	if err != nil {
		return err
	}
	copy(buf[d.Offset:], b)
	return nil
}
