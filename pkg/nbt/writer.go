package nbt

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Tag type ids.
const (
	TagEnd byte = iota
	TagByte
	TagShort
	TagInt
	TagLong
	TagFloat
	TagDouble
	TagByteArray
	TagString
	TagList
	TagCompound
	TagIntArray
)

// Writer encodes tags to an io.Writer. The first failure sticks and turns
// later writes into no-ops; check Err once done.
type Writer struct {
	w   io.Writer
	buf []byte
	err error
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (w *Writer) Err() error {
	return w.err
}

// WriteRoot writes c as an unnamed root compound.
func (w *Writer) WriteRoot(c *Compound) {
	w.WriteTag("", c)
}

// WriteTag writes a named tag header followed by its payload.
func (w *Writer) WriteTag(name string, t Tag) {
	if w.err != nil {
		return
	}
	w.buf, w.err = appendNamed(w.buf[:0], name, t)
	if w.err == nil {
		_, w.err = w.w.Write(w.buf)
	}
}

func appendNamed(b []byte, name string, t Tag) ([]byte, error) {
	b = append(b, t.ID())
	b, err := appendString(b, name)
	if err != nil {
		return b, err
	}
	return appendPayload(b, t)
}

func appendString(b []byte, s string) ([]byte, error) {
	if len(s) > math.MaxUint16 {
		return b, fmt.Errorf("nbt string too long: %d bytes", len(s))
	}
	b = binary.BigEndian.AppendUint16(b, uint16(len(s)))
	return append(b, s...), nil
}

func appendLen(b []byte, n int) []byte {
	return binary.BigEndian.AppendUint32(b, uint32(n))
}

func appendPayload(b []byte, t Tag) ([]byte, error) {
	var err error
	switch v := t.(type) {
	case Byte:
		b = append(b, byte(v))
	case Short:
		b = binary.BigEndian.AppendUint16(b, uint16(v))
	case Int:
		b = binary.BigEndian.AppendUint32(b, uint32(v))
	case Long:
		b = binary.BigEndian.AppendUint64(b, uint64(v))
	case Float:
		b = binary.BigEndian.AppendUint32(b, math.Float32bits(float32(v)))
	case Double:
		b = binary.BigEndian.AppendUint64(b, math.Float64bits(float64(v)))
	case ByteArray:
		b = append(appendLen(b, len(v)), v...)
	case String:
		b, err = appendString(b, string(v))
	case IntArray:
		b = appendLen(b, len(v))
		for _, n := range v {
			b = binary.BigEndian.AppendUint32(b, uint32(n))
		}
	case *List:
		b = appendLen(append(b, v.Elem), len(v.Values))
		for _, e := range v.Values {
			if e.ID() != v.Elem {
				return b, fmt.Errorf("nbt list of type %d holds tag type %d", v.Elem, e.ID())
			}
			if b, err = appendPayload(b, e); err != nil {
				return b, err
			}
		}
	case *Compound:
		for _, name := range v.names {
			if b, err = appendNamed(b, name, v.tags[name]); err != nil {
				return b, err
			}
		}
		b = append(b, TagEnd)
	default:
		err = fmt.Errorf("unknown nbt tag %T", t)
	}
	return b, err
}
