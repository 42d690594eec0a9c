package protocol

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/dxomg/ViaRewind/pkg/nbt"
)

// Convert re-types v, decoded as some field type, into the Go value that a
// field of type to encodes. Integer narrowing wraps in two's complement; floats
// truncate toward zero. Byte, item and tag payloads keep their value.
func Convert(v any, to Type) (any, error) {
	switch to {
	case ByteArray, ShortByteArray, Rest:
		if b, ok := v.([]byte); ok {
			return b, nil
		}
	case Item, CompressedItem:
		if i, ok := v.(*ItemStack); ok {
			return i, nil
		}
	case ItemArray, CompressedItemArray:
		if i, ok := v.([]*ItemStack); ok {
			return i, nil
		}
	case MetadataList, CompressedMetadataList:
		if m, ok := v.([]Metadata); ok {
			return m, nil
		}
	case MetadataList1_9:
		if m, ok := v.([]Metadata1_9); ok {
			return m, nil
		}
	case VarIntArray:
		if ids, ok := v.([]int32); ok {
			return ids, nil
		}
	case String:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case UUID:
		if id, ok := v.(uuid.UUID); ok {
			return id, nil
		}
	case NBT, CompressedNBT:
		if c, ok := v.(*nbt.Compound); ok {
			return c, nil
		}
	case Float:
		if f, ok := toFloat(v); ok {
			return float32(f), nil
		}
	case Double:
		if f, ok := toFloat(v); ok {
			return f, nil
		}
	case Bool:
		if n, ok := toInt(v); ok {
			return n != 0, nil
		}
	default:
		n, ok := toInt(v)
		if !ok {
			break
		}
		switch to {
		case VarInt, Int:
			return int32(n), nil
		case VarLong, Long, Position:
			return n, nil
		case Byte:
			return int8(n), nil
		case UnsignedByte:
			return uint8(n), nil
		case Short:
			return int16(n), nil
		case UnsignedShort:
			return uint16(n), nil
		}
	}
	return nil, fmt.Errorf("cannot convert %T to %s", v, to)
}

func toInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int8:
		return int64(n), true
	case uint8:
		return int64(n), true
	case int16:
		return int64(n), true
	case uint16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	case float32:
		return int64(n), true
	case float64:
		return int64(n), true
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	i, ok := toInt(v)
	return float64(i), ok
}

// ClampShort saturates v into the int16 range.
func ClampShort(v float64) int16 {
	return int16(max(math.MinInt16, min(math.MaxInt16, v)))
}
