package easyjit

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// always assume littleendian
var byteOrder = binary.LittleEndian

// EncodeFloat64 encodes the IEEE 754 bits of v, fixed 8 bytes
func EncodeFloat64(v float64) []byte {
	ret := make([]byte, 8)
	byteOrder.PutUint64(ret, math.Float64bits(v))
	return ret
}

// DecodeFloat64 expects exactly 8 bytes
func DecodeFloat64(data []byte) float64 {
	if len(data) != 8 {
		panic(fmt.Sprintf("DecodeFloat64: 8 bytes expected, got %d", len(data)))
	}
	return math.Float64frombits(byteOrder.Uint64(data))
}

// r/w utility functions

func ReadFloat64(r io.Reader) (float64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return DecodeFloat64(buf[:]), nil
}

func WriteFloat64(w io.Writer, v float64) error {
	_, err := w.Write(EncodeFloat64(v))
	return err
}

// ReadString8 reads a string prefixed with its 1-byte length
func ReadString8(r io.Reader) (string, error) {
	var length [1]byte
	if _, err := io.ReadFull(r, length[:]); err != nil {
		return "", err
	}
	if length[0] == 0 {
		return "", nil
	}
	buf := make([]byte, length[0])
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func WriteString8(w io.Writer, s string) error {
	if len(s) > math.MaxUint8 {
		panic(fmt.Sprintf("WriteString8: too long string (%d)", len(s)))
	}
	if _, err := w.Write([]byte{byte(len(s))}); err != nil {
		return err
	}
	_, err := w.Write([]byte(s))
	return err
}
