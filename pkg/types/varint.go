package types

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ErrVarintTooLarge is returned when a decoded varint does not fit the
// caller's range or uses a non-minimal encoding.
var ErrVarintTooLarge = errors.New("varint out of range")

// AppendVarint appends the compact-size encoding of v to buf.
// Values below 0xfd are a single byte; larger values use a one-byte
// marker (0xfd/0xfe/0xff) followed by 2, 4, or 8 little-endian bytes.
func AppendVarint(buf []byte, v uint64) []byte {
	switch {
	case v < 0xfd:
		return append(buf, byte(v))
	case v <= 0xffff:
		buf = append(buf, 0xfd)
		return binary.LittleEndian.AppendUint16(buf, uint16(v))
	case v <= 0xffffffff:
		buf = append(buf, 0xfe)
		return binary.LittleEndian.AppendUint32(buf, uint32(v))
	default:
		buf = append(buf, 0xff)
		return binary.LittleEndian.AppendUint64(buf, v)
	}
}

// VarintSize returns the encoded length of v in bytes.
func VarintSize(v uint64) int {
	switch {
	case v < 0xfd:
		return 1
	case v <= 0xffff:
		return 3
	case v <= 0xffffffff:
		return 5
	default:
		return 9
	}
}

// ReadVarint decodes a compact-size varint from the front of buf.
// Returns the value and the number of bytes consumed.
func ReadVarint(buf []byte) (uint64, int, error) {
	if len(buf) == 0 {
		return 0, 0, io.ErrUnexpectedEOF
	}
	switch buf[0] {
	case 0xfd:
		if len(buf) < 3 {
			return 0, 0, io.ErrUnexpectedEOF
		}
		v := uint64(binary.LittleEndian.Uint16(buf[1:3]))
		if v < 0xfd {
			return 0, 0, fmt.Errorf("%w: non-minimal encoding of %d", ErrVarintTooLarge, v)
		}
		return v, 3, nil
	case 0xfe:
		if len(buf) < 5 {
			return 0, 0, io.ErrUnexpectedEOF
		}
		v := uint64(binary.LittleEndian.Uint32(buf[1:5]))
		if v <= 0xffff {
			return 0, 0, fmt.Errorf("%w: non-minimal encoding of %d", ErrVarintTooLarge, v)
		}
		return v, 5, nil
	case 0xff:
		if len(buf) < 9 {
			return 0, 0, io.ErrUnexpectedEOF
		}
		v := binary.LittleEndian.Uint64(buf[1:9])
		if v <= 0xffffffff {
			return 0, 0, fmt.Errorf("%w: non-minimal encoding of %d", ErrVarintTooLarge, v)
		}
		return v, 9, nil
	default:
		return uint64(buf[0]), 1, nil
	}
}
