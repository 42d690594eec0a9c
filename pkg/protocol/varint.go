package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math/bits"

	"github.com/google/uuid"
)

// Longest encodings of a VarInt and a VarLong.
const (
	MaxVarIntLen  = 5
	MaxVarLongLen = 10
)

var ErrVarIntTooLong = errors.New("varint too long")

// readUvarint decodes a little endian base 128 number of at most limit
// bytes.
func readUvarint(r io.Reader, limit int) (uint64, int, error) {
	var (
		v   uint64
		buf [1]byte
	)
	for n := 0; n < limit; n++ {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, n, err
		}
		v |= uint64(buf[0]&0x7F) << (7 * n)
		if buf[0]&0x80 == 0 {
			return v, n + 1, nil
		}
	}
	return 0, limit, ErrVarIntTooLong
}

// ReadVarInt returns the value and the number of bytes consumed.
func ReadVarInt(r io.Reader) (int32, int, error) {
	v, n, err := readUvarint(r, MaxVarIntLen)
	return int32(uint32(v)), n, err
}

func ReadVarLong(r io.Reader) (int64, int, error) {
	v, n, err := readUvarint(r, MaxVarLongLen)
	return int64(v), n, err
}

// PutVarInt encodes value into buf, which must hold VarIntSize(value)
// bytes, and returns the number of bytes written.
func PutVarInt(buf []byte, value int32) int {
	return binary.PutUvarint(buf, uint64(uint32(value)))
}

func WriteVarInt(w io.Writer, value int32) (int, error) {
	var buf [MaxVarIntLen]byte
	return w.Write(buf[:PutVarInt(buf[:], value)])
}

func WriteVarLong(w io.Writer, value int64) (int, error) {
	var buf [MaxVarLongLen]byte
	return w.Write(buf[:binary.PutUvarint(buf[:], uint64(value))])
}

func VarIntSize(value int32) int {
	return max(1, (bits.Len32(uint32(value))+6)/7)
}

// EncodePosition packs block coordinates as 26 bits x, 12 bits y and 26
// bits z.
func EncodePosition(x, y, z int) int64 {
	return int64(x&0x3FFFFFF)<<38 | int64(y&0xFFF)<<26 | int64(z&0x3FFFFFF)
}

// DecodePosition is the inverse of EncodePosition. Arithmetic shifts
// sign extend every component.
func DecodePosition(val int64) (x, y, z int) {
	return int(val >> 38), int(val << 26 >> 52), int(val << 38 >> 38)
}

const maxStringBytes = 32767 * 4

// readPrefixed reads n bytes after a length prefix already consumed.
func readPrefixed(r io.Reader, n, limit int, what string) ([]byte, error) {
	if n < 0 || n > limit {
		return nil, fmt.Errorf("%s length out of range: %d", what, n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("read %s data: %w", what, err)
	}
	return buf, nil
}

func ReadString(r io.Reader) (string, error) {
	n, _, err := ReadVarInt(r)
	if err != nil {
		return "", fmt.Errorf("read string length: %w", err)
	}
	b, err := readPrefixed(r, int(n), maxStringBytes, "string")
	return string(b), err
}

func WriteString(w io.Writer, s string) (int, error) {
	return WriteByteArray(w, []byte(s))
}

func ReadByteArray(r io.Reader) ([]byte, error) {
	n, _, err := ReadVarInt(r)
	if err != nil {
		return nil, fmt.Errorf("read byte array length: %w", err)
	}
	return readPrefixed(r, int(n), MaxPacketSize, "byte array")
}

func WriteByteArray(w io.Writer, data []byte) (int, error) {
	n, err := WriteVarInt(w, int32(len(data)))
	if err != nil {
		return n, err
	}
	m, err := w.Write(data)
	return n + m, err
}

// ReadShortByteArray reads a byte array prefixed by a signed 16-bit length,
// the layout the 1.7 protocol uses for encryption and item payloads.
func ReadShortByteArray(r io.Reader) ([]byte, error) {
	n, err := ReadI16(r)
	if err != nil {
		return nil, fmt.Errorf("read short byte array length: %w", err)
	}
	return readPrefixed(r, int(n), 1<<15-1, "short byte array")
}

func WriteShortByteArray(w io.Writer, data []byte) (int, error) {
	if len(data) > 1<<15-1 {
		return 0, fmt.Errorf("byte array too long for short prefix: %d", len(data))
	}
	var prefix [2]byte
	binary.BigEndian.PutUint16(prefix[:], uint16(len(data)))
	if _, err := w.Write(prefix[:]); err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return n + 2, err
}

func ReadUUID(r io.Reader) (id uuid.UUID, err error) {
	_, err = io.ReadFull(r, id[:])
	return id, err
}

func WriteUUID(w io.Writer, id uuid.UUID) (int, error) {
	return w.Write(id[:])
}

// fixed is a big endian fixed width wire number.
type fixed interface {
	~int8 | ~uint8 | ~int16 | ~uint16 | ~int32 | ~int64 | ~float32 | ~float64
}

func readFixed[T fixed](r io.Reader) (T, error) {
	var v T
	err := binary.Read(r, binary.BigEndian, &v)
	return v, err
}

func ReadI8(r io.Reader) (int8, error) { return readFixed[int8](r) }
func ReadU8(r io.Reader) (uint8, error) { return readFixed[uint8](r) }
func ReadI16(r io.Reader) (int16, error) { return readFixed[int16](r) }
func ReadU16(r io.Reader) (uint16, error) { return readFixed[uint16](r) }
func ReadI32(r io.Reader) (int32, error) { return readFixed[int32](r) }
func ReadI64(r io.Reader) (int64, error) { return readFixed[int64](r) }
func ReadF32(r io.Reader) (float32, error) { return readFixed[float32](r) }
func ReadF64(r io.Reader) (float64, error) { return readFixed[float64](r) }

func ReadBool(r io.Reader) (bool, error) {
	b, err := ReadU8(r)
	return b != 0, err
}
