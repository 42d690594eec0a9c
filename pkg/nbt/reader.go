package nbt

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

const (
	maxDepth     = 512
	maxArrayLen  = 1 << 21
	maxListCount = 1 << 20
)

var ErrTooDeep = errors.New("nbt: nesting too deep")

// Decode reads one root tag. A root that is not a compound is rejected.
func Decode(data []byte) (*Compound, error) {
	r := NewReader(bytes.NewReader(data))
	return r.ReadRoot()
}

// Encode writes c as an unnamed root compound.
func Encode(c *Compound) ([]byte, error) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.WriteRoot(c)
	if err := w.Err(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Reader decodes big-endian NBT from an io.Reader.
type Reader struct {
	r io.Reader
}

func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// ReadRoot reads a named root compound and discards its name.
func (r *Reader) ReadRoot() (*Compound, error) {
	c, err := r.ReadOptionalRoot()
	if err == nil && c == nil {
		return nil, fmt.Errorf("root tag is type %d, want compound", TagEnd)
	}
	return c, err
}

// ReadOptionalRoot is ReadRoot, but a lone End tag yields a nil compound.
func (r *Reader) ReadOptionalRoot() (*Compound, error) {
	id, err := r.u8()
	if err != nil {
		return nil, fmt.Errorf("read root type: %w", err)
	}
	if id == TagEnd {
		return nil, nil
	}
	if id != TagCompound {
		return nil, fmt.Errorf("root tag is type %d, want compound", id)
	}
	if _, err := r.str(); err != nil {
		return nil, fmt.Errorf("read root name: %w", err)
	}
	t, err := r.payload(TagCompound, 0)
	if err != nil {
		return nil, err
	}
	return t.(*Compound), nil
}

func (r *Reader) payload(id byte, depth int) (Tag, error) {
	if depth > maxDepth {
		return nil, ErrTooDeep
	}
	switch id {
	case TagByte:
		v, err := r.u8()
		return Byte(v), err
	case TagShort:
		var b [2]byte
		if _, err := io.ReadFull(r.r, b[:]); err != nil {
			return nil, err
		}
		return Short(binary.BigEndian.Uint16(b[:])), nil
	case TagInt:
		v, err := r.i32()
		return Int(v), err
	case TagLong:
		v, err := r.i64()
		return Long(v), err
	case TagFloat:
		v, err := r.i32()
		return Float(math.Float32frombits(uint32(v))), err
	case TagDouble:
		v, err := r.i64()
		return Double(math.Float64frombits(uint64(v))), err
	case TagByteArray:
		n, err := r.length(maxArrayLen)
		if err != nil {
			return nil, err
		}
		buf := make([]byte, n)
		if _, err := io.ReadFull(r.r, buf); err != nil {
			return nil, err
		}
		return ByteArray(buf), nil
	case TagString:
		s, err := r.str()
		return String(s), err
	case TagIntArray:
		n, err := r.length(maxArrayLen)
		if err != nil {
			return nil, err
		}
		out := make(IntArray, n)
		for i := range out {
			if out[i], err = r.i32(); err != nil {
				return nil, err
			}
		}
		return out, nil
	case TagList:
		elem, err := r.u8()
		if err != nil {
			return nil, err
		}
		n, err := r.length(maxListCount)
		if err != nil {
			return nil, err
		}
		l := &List{Elem: elem, Values: make([]Tag, 0, min(n, 64))}
		for range n {
			v, err := r.payload(elem, depth+1)
			if err != nil {
				return nil, err
			}
			l.Values = append(l.Values, v)
		}
		return l, nil
	case TagCompound:
		c := NewCompound()
		for {
			child, err := r.u8()
			if err != nil {
				return nil, err
			}
			if child == TagEnd {
				return c, nil
			}
			name, err := r.str()
			if err != nil {
				return nil, err
			}
			v, err := r.payload(child, depth+1)
			if err != nil {
				return nil, fmt.Errorf("read tag %q: %w", name, err)
			}
			c.Put(name, v)
		}
	default:
		return nil, fmt.Errorf("unknown nbt tag type %d", id)
	}
}

func (r *Reader) u8() (byte, error) {
	var b [1]byte
	_, err := io.ReadFull(r.r, b[:])
	return b[0], err
}

func (r *Reader) i32() (int32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r.r, b[:]); err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(b[:])), nil
}

func (r *Reader) i64() (int64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r.r, b[:]); err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(b[:])), nil
}

func (r *Reader) length(limit int) (int, error) {
	n, err := r.i32()
	if err != nil {
		return 0, err
	}
	if n < 0 || int(n) > limit {
		return 0, fmt.Errorf("nbt length out of range: %d", n)
	}
	return int(n), nil
}

func (r *Reader) str() (string, error) {
	var b [2]byte
	if _, err := io.ReadFull(r.r, b[:]); err != nil {
		return "", err
	}
	buf := make([]byte, binary.BigEndian.Uint16(b[:]))
	if _, err := io.ReadFull(r.r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}
