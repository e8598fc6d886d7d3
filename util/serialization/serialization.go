package serialization

import (
	"encoding/binary"
	"math"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// ErrMalformedData signifies that a buffer being decoded is malformed:
// truncated, carrying an impossible length prefix, or otherwise not produced
// by the matching encoder.
var ErrMalformedData = errors.New("malformed data")

// IsMalformedError checks whether an error is an ErrMalformedData.
func IsMalformedError(err error) bool {
	return errors.Is(err, ErrMalformedData)
}

// Accepted id widths for id sequences. Everything persisted under an id is
// either a 32-byte hash or a 64-byte signature; any other width in the
// database is a defect and decoding fails loudly rather than truncating.
const (
	ShortIDLength = 32
	LongIDLength  = 64
)

// AppendUint16 appends the big-endian representation of value to dst.
func AppendUint16(dst []byte, value uint16) []byte {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], value)
	return append(dst, buf[:]...)
}

// AppendUint32 appends the big-endian representation of value to dst.
func AppendUint32(dst []byte, value uint32) []byte {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], value)
	return append(dst, buf[:]...)
}

// AppendUint64 appends the big-endian representation of value to dst.
func AppendUint64(dst []byte, value uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], value)
	return append(dst, buf[:]...)
}

// ReadUint16 reads a big-endian uint16 off the front of buf and returns it
// along with the remainder of buf.
func ReadUint16(buf []byte) (uint16, []byte, error) {
	if len(buf) < 2 {
		return 0, nil, errors.Wrapf(ErrMalformedData,
			"uint16 needs 2 bytes, %d available", len(buf))
	}
	return binary.BigEndian.Uint16(buf), buf[2:], nil
}

// ReadUint32 reads a big-endian uint32 off the front of buf and returns it
// along with the remainder of buf.
func ReadUint32(buf []byte) (uint32, []byte, error) {
	if len(buf) < 4 {
		return 0, nil, errors.Wrapf(ErrMalformedData,
			"uint32 needs 4 bytes, %d available", len(buf))
	}
	return binary.BigEndian.Uint32(buf), buf[4:], nil
}

// ReadUint64 reads a big-endian uint64 off the front of buf and returns it
// along with the remainder of buf.
func ReadUint64(buf []byte) (uint64, []byte, error) {
	if len(buf) < 8 {
		return 0, nil, errors.Wrapf(ErrMalformedData,
			"uint64 needs 8 bytes, %d available", len(buf))
	}
	return binary.BigEndian.Uint64(buf), buf[8:], nil
}

// AppendBool appends a single 0x00/0x01 byte to dst.
func AppendBool(dst []byte, value bool) []byte {
	if value {
		return append(dst, 0x01)
	}
	return append(dst, 0x00)
}

// ReadBool reads a single boolean byte off the front of buf. Any byte other
// than 0x00 and 0x01 is malformed.
func ReadBool(buf []byte) (bool, []byte, error) {
	if len(buf) < 1 {
		return false, nil, errors.Wrap(ErrMalformedData, "bool needs 1 byte")
	}
	switch buf[0] {
	case 0x00:
		return false, buf[1:], nil
	case 0x01:
		return true, buf[1:], nil
	default:
		return false, nil, errors.Wrapf(ErrMalformedData,
			"invalid bool byte 0x%02x", buf[0])
	}
}

// AppendString appends s to dst with a 2-byte big-endian byte-count prefix.
// Strings longer than 65535 bytes do not fit the wire form.
func AppendString(dst []byte, s string) ([]byte, error) {
	if len(s) > math.MaxUint16 {
		return nil, errors.Errorf("string of %d bytes is too long to serialize", len(s))
	}
	dst = AppendUint16(dst, uint16(len(s)))
	return append(dst, s...), nil
}

// ReadString reads a 2-byte-length-prefixed UTF-8 string off the front of
// buf and returns it along with the remainder of buf.
func ReadString(buf []byte) (string, []byte, error) {
	size, rest, err := ReadUint16(buf)
	if err != nil {
		return "", nil, err
	}
	if len(rest) < int(size) {
		return "", nil, errors.Wrapf(ErrMalformedData,
			"string of %d bytes, %d available", size, len(rest))
	}
	s := string(rest[:size])
	if !utf8.ValidString(s) {
		return "", nil, errors.Wrap(ErrMalformedData, "string is not valid UTF-8")
	}
	return s, rest[size:], nil
}

// AppendBytes8 appends data to dst with a 1-byte length prefix.
func AppendBytes8(dst []byte, data []byte) ([]byte, error) {
	if len(data) > math.MaxUint8 {
		return nil, errors.Errorf("blob of %d bytes is too long for a 1-byte length prefix", len(data))
	}
	dst = append(dst, byte(len(data)))
	return append(dst, data...), nil
}

// ReadBytes8 reads a 1-byte-length-prefixed blob off the front of buf and
// returns a copy of it along with the remainder of buf.
func ReadBytes8(buf []byte) ([]byte, []byte, error) {
	if len(buf) < 1 {
		return nil, nil, errors.Wrap(ErrMalformedData, "blob length needs 1 byte")
	}
	size := int(buf[0])
	rest := buf[1:]
	if len(rest) < size {
		return nil, nil, errors.Wrapf(ErrMalformedData,
			"blob of %d bytes, %d available", size, len(rest))
	}
	data := make([]byte, size)
	copy(data, rest[:size])
	return data, rest[size:], nil
}

// AppendBytes16 appends data to dst with a 2-byte big-endian length prefix.
func AppendBytes16(dst []byte, data []byte) ([]byte, error) {
	if len(data) > math.MaxUint16 {
		return nil, errors.Errorf("blob of %d bytes is too long for a 2-byte length prefix", len(data))
	}
	dst = AppendUint16(dst, uint16(len(data)))
	return append(dst, data...), nil
}

// ReadBytes16 reads a 2-byte-length-prefixed blob off the front of buf and
// returns a copy of it along with the remainder of buf.
func ReadBytes16(buf []byte) ([]byte, []byte, error) {
	size, rest, err := ReadUint16(buf)
	if err != nil {
		return nil, nil, err
	}
	if len(rest) < int(size) {
		return nil, nil, errors.Wrapf(ErrMalformedData,
			"blob of %d bytes, %d available", size, len(rest))
	}
	data := make([]byte, size)
	copy(data, rest[:int(size)])
	return data, rest[int(size):], nil
}

// CountFixedSize returns how many records of elementSize make up buf. A
// buffer whose length is not a multiple of elementSize is malformed.
func CountFixedSize(buf []byte, elementSize int) (int, error) {
	if elementSize <= 0 {
		panic("element size must be positive")
	}
	if len(buf)%elementSize != 0 {
		return 0, errors.Wrapf(ErrMalformedData,
			"buffer of %d bytes is not a whole number of %d-byte records",
			len(buf), elementSize)
	}
	return len(buf) / elementSize, nil
}

// AppendIDs appends a sequence of ids to dst, each as a 1-byte length
// followed by the payload. Only 32-byte hashes and 64-byte signatures are
// representable.
func AppendIDs(dst []byte, ids [][]byte) ([]byte, error) {
	for _, id := range ids {
		if len(id) != ShortIDLength && len(id) != LongIDLength {
			return nil, errors.Errorf(
				"invalid id length %d, want %d or %d",
				len(id), ShortIDLength, LongIDLength)
		}
		dst = append(dst, byte(len(id)))
		dst = append(dst, id...)
	}
	return dst, nil
}

// ReadIDs decodes a sequence of (1-byte length, payload) ids spanning the
// whole of buf. A length other than the two accepted id widths is a defect
// in the database and fails loudly rather than being silently truncated.
func ReadIDs(buf []byte) ([][]byte, error) {
	var ids [][]byte
	for len(buf) > 0 {
		size := int(buf[0])
		if size != ShortIDLength && size != LongIDLength {
			return nil, errors.Wrapf(ErrMalformedData,
				"invalid id length %d, want %d or %d",
				size, ShortIDLength, LongIDLength)
		}
		rest := buf[1:]
		if len(rest) < size {
			return nil, errors.Wrapf(ErrMalformedData,
				"id of %d bytes, %d available", size, len(rest))
		}
		id := make([]byte, size)
		copy(id, rest[:size])
		ids = append(ids, id)
		buf = rest[size:]
	}
	return ids, nil
}
