package protocol

import (
	"encoding/binary"
	"fmt"
	"io"
)

// MetaType is a legacy (1.7 and 1.8) entity metadata value type.
type MetaType byte

const (
	MetaByte     MetaType = 0
	MetaShort    MetaType = 1
	MetaInt      MetaType = 2
	MetaFloat    MetaType = 3
	MetaString   MetaType = 4
	MetaSlot     MetaType = 5
	MetaPosition MetaType = 6
	MetaRotation MetaType = 7
)

// MetadataEnd terminates a metadata list.
const MetadataEnd byte = 0x7F

// Metadata is one entry of a legacy metadata list. Value holds int8, int16,
// int32, float32, string, *ItemStack, [3]int32 or [3]float32 by Type.
type Metadata struct {
	Index byte
	Type  MetaType
	Value any
}

// Field types for metadata lists; the 1.7 list gzips slot tags.
const (
	MetadataList           Type = "metadata"
	CompressedMetadataList Type = "compressedmetadata"
)

// ReadMetadata reads entries up to the terminator. Each header byte packs
// the index in its low five bits and the type in the high three.
func ReadMetadata(r io.Reader, readItem func(io.Reader) (*ItemStack, error)) ([]Metadata, error) {
	var list []Metadata
	for {
		header, err := ReadU8(r)
		if err != nil {
			return nil, fmt.Errorf("read metadata header: %w", err)
		}
		if header == MetadataEnd {
			return list, nil
		}
		m := Metadata{Index: header & 0x1F, Type: MetaType(header >> 5)}
		switch m.Type {
		case MetaByte:
			m.Value, err = ReadI8(r)
		case MetaShort:
			m.Value, err = ReadI16(r)
		case MetaInt:
			m.Value, err = ReadI32(r)
		case MetaFloat:
			m.Value, err = ReadF32(r)
		case MetaString:
			m.Value, err = ReadString(r)
		case MetaSlot:
			m.Value, err = readItem(r)
		case MetaPosition:
			var v [3]int32
			err = binary.Read(r, binary.BigEndian, &v)
			m.Value = v
		case MetaRotation:
			var v [3]float32
			err = binary.Read(r, binary.BigEndian, &v)
			m.Value = v
		}
		if err != nil {
			return nil, fmt.Errorf("read metadata %d: %w", m.Index, err)
		}
		list = append(list, m)
	}
}

func WriteMetadata(w io.Writer, list []Metadata, writeItem func(io.Writer, *ItemStack) error) error {
	for _, m := range list {
		if _, err := w.Write([]byte{(m.Index & 0x1F) | byte(m.Type)<<5}); err != nil {
			return err
		}
		var err error
		switch m.Type {
		case MetaString:
			_, err = WriteString(w, m.Value.(string))
		case MetaSlot:
			err = writeItem(w, m.Value.(*ItemStack))
		default:
			err = binary.Write(w, binary.BigEndian, m.Value)
		}
		if err != nil {
			return fmt.Errorf("write metadata %d: %w", m.Index, err)
		}
	}
	_, err := w.Write([]byte{MetadataEnd})
	return err
}
