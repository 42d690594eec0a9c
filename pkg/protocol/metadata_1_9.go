package protocol

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/google/uuid"
)

// MetaType1_9 is an entity metadata value type from 1.9 on.
type MetaType1_9 int32

const (
	Meta1_9Byte        MetaType1_9 = 0
	Meta1_9VarInt      MetaType1_9 = 1
	Meta1_9Float       MetaType1_9 = 2
	Meta1_9String      MetaType1_9 = 3
	Meta1_9Chat        MetaType1_9 = 4
	Meta1_9Slot        MetaType1_9 = 5
	Meta1_9Bool        MetaType1_9 = 6
	Meta1_9Rotation    MetaType1_9 = 7
	Meta1_9Position    MetaType1_9 = 8
	Meta1_9OptPosition MetaType1_9 = 9
	Meta1_9Direction   MetaType1_9 = 10
	Meta1_9OptUUID     MetaType1_9 = 11
	Meta1_9BlockID     MetaType1_9 = 12
)

// Metadata1_9End terminates a 1.9 metadata list.
const Metadata1_9End byte = 0xFF

// Metadata1_9 is one entry of a 1.9 metadata list. Value holds int8, int32,
// float32, string, *ItemStack, bool, [3]float32, int64, *int64 or
// *uuid.UUID by Type. Optional values are nil when absent.
type Metadata1_9 struct {
	Index byte
	Type  MetaType1_9
	Value any
}

const MetadataList1_9 Type = "metadata1_9"

func ReadMetadata1_9(r io.Reader) ([]Metadata1_9, error) {
	var list []Metadata1_9
	for {
		index, err := ReadU8(r)
		if err != nil {
			return nil, fmt.Errorf("read metadata index: %w", err)
		}
		if index == Metadata1_9End {
			return list, nil
		}
		typ, _, err := ReadVarInt(r)
		if err != nil {
			return nil, fmt.Errorf("read metadata %d type: %w", index, err)
		}
		m := Metadata1_9{Index: index, Type: MetaType1_9(typ)}
		switch m.Type {
		case Meta1_9Byte:
			m.Value, err = ReadI8(r)
		case Meta1_9VarInt, Meta1_9Direction, Meta1_9BlockID:
			m.Value, _, err = ReadVarInt(r)
		case Meta1_9Float:
			m.Value, err = ReadF32(r)
		case Meta1_9String, Meta1_9Chat:
			m.Value, err = ReadString(r)
		case Meta1_9Slot:
			m.Value, err = ReadItem(r)
		case Meta1_9Bool:
			m.Value, err = ReadBool(r)
		case Meta1_9Rotation:
			var v [3]float32
			err = binary.Read(r, binary.BigEndian, &v)
			m.Value = v
		case Meta1_9Position:
			m.Value, err = ReadI64(r)
		case Meta1_9OptPosition:
			m.Value, err = readOptional(r, ReadI64)
		case Meta1_9OptUUID:
			m.Value, err = readOptional(r, ReadUUID)
		default:
			return nil, fmt.Errorf("metadata %d has unknown type %d", index, typ)
		}
		if err != nil {
			return nil, fmt.Errorf("read metadata %d: %w", index, err)
		}
		list = append(list, m)
	}
}

func readOptional[T any](r io.Reader, read func(io.Reader) (T, error)) (*T, error) {
	present, err := ReadBool(r)
	if err != nil || !present {
		return nil, err
	}
	v, err := read(r)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func WriteMetadata1_9(w io.Writer, list []Metadata1_9) error {
	for _, m := range list {
		if _, err := w.Write([]byte{m.Index}); err != nil {
			return err
		}
		if _, err := WriteVarInt(w, int32(m.Type)); err != nil {
			return err
		}
		var err error
		switch m.Type {
		case Meta1_9VarInt, Meta1_9Direction, Meta1_9BlockID:
			_, err = WriteVarInt(w, m.Value.(int32))
		case Meta1_9String, Meta1_9Chat:
			_, err = WriteString(w, m.Value.(string))
		case Meta1_9Slot:
			err = WriteItem(w, m.Value.(*ItemStack))
		case Meta1_9Bool:
			err = WriteField(w, Bool, m.Value)
		case Meta1_9OptPosition:
			pos := m.Value.(*int64)
			if err = WriteField(w, Bool, pos != nil); err == nil && pos != nil {
				err = binary.Write(w, binary.BigEndian, *pos)
			}
		case Meta1_9OptUUID:
			id := m.Value.(*uuid.UUID)
			if err = WriteField(w, Bool, id != nil); err == nil && id != nil {
				_, err = WriteUUID(w, *id)
			}
		default:
			err = binary.Write(w, binary.BigEndian, m.Value)
		}
		if err != nil {
			return fmt.Errorf("write metadata %d: %w", m.Index, err)
		}
	}
	_, err := w.Write([]byte{Metadata1_9End})
	return err
}
