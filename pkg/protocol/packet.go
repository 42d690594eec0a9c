package protocol

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/dxomg/ViaRewind/pkg/nbt"
)

const MaxPacketSize = 1 << 21

type Packet interface {
	PacketID() int32
}

// Raw is an already encoded packet body.
type Raw struct {
	ID   int32  `mc:"-"`
	Data []byte `mc:"rest"`
}

func (r Raw) PacketID() int32 { return r.ID }

// Type names a wire encoding. The string value doubles as the mc struct tag.
type Type string

const (
	VarInt              Type = "varint"
	VarLong             Type = "varlong"
	Byte                Type = "i8"
	UnsignedByte        Type = "u8"
	Short               Type = "i16"
	UnsignedShort       Type = "u16"
	Int                 Type = "i32"
	Long                Type = "i64"
	Float               Type = "f32"
	Double              Type = "f64"
	Bool                Type = "bool"
	String              Type = "string"
	Position            Type = "position"
	UUID                Type = "uuid"
	ByteArray           Type = "bytearray"
	ShortByteArray      Type = "shortbytearray"
	Rest                Type = "rest"
	Item                Type = "item"
	CompressedItem      Type = "compresseditem"
	ItemArray           Type = "itemarray"
	CompressedItemArray Type = "compresseditemarray"
	NBT                 Type = "nbt"
	CompressedNBT       Type = "compressednbt"
	VarIntArray         Type = "varintarray"
)

func ReadRawPacket(r io.Reader) (packetID int32, data []byte, err error) {
	length, _, err := ReadVarInt(r)
	if err != nil {
		return 0, nil, fmt.Errorf("read packet length: %w", err)
	}
	if length < 1 {
		return 0, nil, fmt.Errorf("packet length too small: %d", length)
	}
	if length > MaxPacketSize {
		return 0, nil, fmt.Errorf("packet too large: %d bytes", length)
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return 0, nil, fmt.Errorf("read packet payload: %w", err)
	}
	return SplitID(payload)
}

// SplitID separates the leading VarInt packet id from an uncompressed body.
func SplitID(payload []byte) (int32, []byte, error) {
	buf := bytes.NewReader(payload)
	packetID, n, err := ReadVarInt(buf)
	if err != nil {
		return 0, nil, fmt.Errorf("read packet ID: %w", err)
	}
	return packetID, payload[n:], nil
}

// JoinID prefixes data with its VarInt packet id.
func JoinID(packetID int32, data []byte) []byte {
	out := make([]byte, VarIntSize(packetID)+len(data))
	n := PutVarInt(out, packetID)
	copy(out[n:], data)
	return out
}

func WriteRawPacket(w io.Writer, packetID int32, data []byte) error {
	idSize := VarIntSize(packetID)
	totalLen := idSize + len(data)

	var buf bytes.Buffer
	buf.Grow(VarIntSize(int32(totalLen)) + totalLen)

	if _, err := WriteVarInt(&buf, int32(totalLen)); err != nil {
		return fmt.Errorf("write packet length: %w", err)
	}
	if _, err := WriteVarInt(&buf, packetID); err != nil {
		return fmt.Errorf("write packet ID: %w", err)
	}
	if _, err := buf.Write(data); err != nil {
		return fmt.Errorf("write packet data: %w", err)
	}

	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("flush packet: %w", err)
	}
	return nil
}

// Encode marshals p into a Raw packet.
func Encode(p Packet) (Raw, error) {
	if raw, ok := p.(Raw); ok {
		return raw, nil
	}
	data, err := Marshal(p)
	if err != nil {
		return Raw{}, fmt.Errorf("marshal packet 0x%02X: %w", p.PacketID(), err)
	}
	return Raw{ID: p.PacketID(), Data: data}, nil
}

func WritePacket(w io.Writer, p Packet) error {
	raw, err := Encode(p)
	if err != nil {
		return err
	}
	return WriteRawPacket(w, raw.ID, raw.Data)
}

func WriteField(w io.Writer, t Type, val any) error {
	var err error
	switch t {
	case VarInt:
		_, err = WriteVarInt(w, val.(int32))
	case VarLong:
		_, err = WriteVarLong(w, val.(int64))
	case Byte:
		err = binary.Write(w, binary.BigEndian, val.(int8))
	case UnsignedByte:
		err = binary.Write(w, binary.BigEndian, val.(uint8))
	case Short:
		err = binary.Write(w, binary.BigEndian, val.(int16))
	case UnsignedShort:
		err = binary.Write(w, binary.BigEndian, val.(uint16))
	case Int:
		err = binary.Write(w, binary.BigEndian, val.(int32))
	case Long, Position:
		err = binary.Write(w, binary.BigEndian, val.(int64))
	case Float:
		err = binary.Write(w, binary.BigEndian, val.(float32))
	case Double:
		err = binary.Write(w, binary.BigEndian, val.(float64))
	case Bool:
		var b uint8
		if val.(bool) {
			b = 1
		}
		err = binary.Write(w, binary.BigEndian, b)
	case String:
		_, err = WriteString(w, val.(string))
	case UUID:
		_, err = WriteUUID(w, val.(uuid.UUID))
	case ByteArray:
		_, err = WriteByteArray(w, val.([]byte))
	case ShortByteArray:
		_, err = WriteShortByteArray(w, val.([]byte))
	case Rest:
		_, err = w.Write(val.([]byte))
	case Item:
		err = WriteItem(w, val.(*ItemStack))
	case CompressedItem:
		err = WriteCompressedItem(w, val.(*ItemStack))
	case ItemArray:
		err = writeItems(w, val.([]*ItemStack), WriteItem)
	case CompressedItemArray:
		err = writeItems(w, val.([]*ItemStack), WriteCompressedItem)
	case NBT:
		err = WriteNBT(w, val.(*nbt.Compound))
	case CompressedNBT:
		err = WriteCompressedNBT(w, val.(*nbt.Compound))
	case MetadataList:
		err = WriteMetadata(w, val.([]Metadata), WriteItem)
	case CompressedMetadataList:
		err = WriteMetadata(w, val.([]Metadata), WriteCompressedItem)
	case MetadataList1_9:
		err = WriteMetadata1_9(w, val.([]Metadata1_9))
	case VarIntArray:
		ids := val.([]int32)
		if _, err = WriteVarInt(w, int32(len(ids))); err != nil {
			return err
		}
		for _, id := range ids {
			if _, err = WriteVarInt(w, id); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("unknown field type: %q", t)
	}
	return err
}

func ReadField(r io.Reader, t Type) (any, error) {
	switch t {
	case VarInt:
		v, _, err := ReadVarInt(r)
		return v, err
	case VarLong:
		v, _, err := ReadVarLong(r)
		return v, err
	case Byte:
		return ReadI8(r)
	case UnsignedByte:
		return ReadU8(r)
	case Short:
		return ReadI16(r)
	case UnsignedShort:
		return ReadU16(r)
	case Int:
		return ReadI32(r)
	case Long, Position:
		return ReadI64(r)
	case Float:
		return ReadF32(r)
	case Double:
		return ReadF64(r)
	case Bool:
		return ReadBool(r)
	case String:
		return ReadString(r)
	case UUID:
		return ReadUUID(r)
	case ByteArray:
		return ReadByteArray(r)
	case ShortByteArray:
		return ReadShortByteArray(r)
	case Rest:
		return io.ReadAll(r)
	case Item:
		return ReadItem(r)
	case CompressedItem:
		return ReadCompressedItem(r)
	case ItemArray:
		return readItems(r, ReadItem)
	case CompressedItemArray:
		return readItems(r, ReadCompressedItem)
	case NBT:
		return ReadNBT(r)
	case CompressedNBT:
		return ReadCompressedNBT(r)
	case MetadataList:
		return ReadMetadata(r, ReadItem)
	case CompressedMetadataList:
		return ReadMetadata(r, ReadCompressedItem)
	case MetadataList1_9:
		return ReadMetadata1_9(r)
	case VarIntArray:
		return readVarInts(r)
	default:
		return nil, fmt.Errorf("unknown field type: %q", t)
	}
}

// Zero returns the Go zero value a field of type t decodes into.
func Zero(t Type) any {
	switch t {
	case VarInt, Int:
		return int32(0)
	case VarLong, Long, Position:
		return int64(0)
	case Byte:
		return int8(0)
	case UnsignedByte:
		return uint8(0)
	case Short:
		return int16(0)
	case UnsignedShort:
		return uint16(0)
	case Float:
		return float32(0)
	case Double:
		return float64(0)
	case Bool:
		return false
	case String:
		return ""
	case UUID:
		return uuid.Nil
	case ByteArray, ShortByteArray, Rest:
		return []byte(nil)
	case Item, CompressedItem:
		return (*ItemStack)(nil)
	case ItemArray, CompressedItemArray:
		return []*ItemStack(nil)
	case NBT, CompressedNBT:
		return (*nbt.Compound)(nil)
	case VarIntArray:
		return []int32(nil)
	case MetadataList, CompressedMetadataList:
		return []Metadata(nil)
	case MetadataList1_9:
		return []Metadata1_9(nil)
	}
	return nil
}

func readVarInts(r io.Reader) ([]int32, error) {
	n, _, err := ReadVarInt(r)
	if err != nil {
		return nil, fmt.Errorf("read array length: %w", err)
	}
	if n < 0 || n > MaxPacketSize {
		return nil, fmt.Errorf("array length out of range: %d", n)
	}
	out := make([]int32, 0, min(int(n), 256))
	for range n {
		v, _, err := ReadVarInt(r)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
