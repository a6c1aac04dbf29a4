package envelope

import (
	"encoding/binary"
	"fmt"
)

// AppendUint64 and the helpers below give variant MarshalBinary/
// UnmarshalBinary implementations a single fixed-endianness convention to
// follow, per spec §6's "fixed endianness for integers" requirement.

// AppendUint64 appends v in big-endian to buf and returns the result.
func AppendUint64(buf []byte, v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return append(buf, b[:]...)
}

// AppendBytes appends an 8-byte big-endian length prefix and then b itself.
func AppendBytes(buf []byte, b []byte) []byte {
	buf = AppendUint64(buf, uint64(len(b)))
	return append(buf, b...)
}

// AppendString appends a length-prefixed string using the same convention
// as AppendBytes.
func AppendString(buf []byte, s string) []byte {
	return AppendBytes(buf, []byte(s))
}

// TakeUint64 reads a big-endian uint64 from the front of buf and returns
// the value and the remaining bytes.
func TakeUint64(buf []byte) (uint64, []byte, error) {
	if len(buf) < 8 {
		return 0, nil, fmt.Errorf("envelope: short buffer reading uint64")
	}
	return binary.BigEndian.Uint64(buf[:8]), buf[8:], nil
}

// TakeBytes reads a length-prefixed byte slice from the front of buf and
// returns it along with the remaining bytes.
func TakeBytes(buf []byte) ([]byte, []byte, error) {
	n, rest, err := TakeUint64(buf)
	if err != nil {
		return nil, nil, err
	}
	if uint64(len(rest)) < n {
		return nil, nil, fmt.Errorf("envelope: short buffer reading %d bytes", n)
	}
	return rest[:n], rest[n:], nil
}

// TakeString reads a length-prefixed string from the front of buf.
func TakeString(buf []byte) (string, []byte, error) {
	b, rest, err := TakeBytes(buf)
	if err != nil {
		return "", nil, err
	}
	return string(b), rest, nil
}
