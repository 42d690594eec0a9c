package pc_1_7

import (
	"encoding/binary"

	"github.com/dxomg/ViaRewind/pkg/protocol"
)

// SetSlotPacket updates one window slot (clientbound 0x2F).
type SetSlotPacket struct {
	WindowID uint8               `mc:"u8"`
	Slot     int16               `mc:"i16"`
	Item     *protocol.ItemStack `mc:"compresseditem"`
}

func (SetSlotPacket) PacketID() int32 { return SetSlot }

// EntityEquipmentPacket shows an item on an entity (clientbound 0x04).
type EntityEquipmentPacket struct {
	EntityID int32               `mc:"i32"`
	Slot     int16               `mc:"i16"`
	Item     *protocol.ItemStack `mc:"compresseditem"`
}

func (EntityEquipmentPacket) PacketID() int32 { return EntityEquipment }

// PlayerListItemPacket adds, updates or removes one tab list entry (clientbound 0x38).
type PlayerListItemPacket struct {
	Name   string `mc:"string"`
	Online bool   `mc:"bool"`
	Ping   int16  `mc:"i16"`
}

func (PlayerListItemPacket) PacketID() int32 { return PlayerListItem }

// ParticlePacket spawns named particles (clientbound 0x2A).
type ParticlePacket struct {
	Name    string  `mc:"string"`
	X       float32 `mc:"f32"`
	Y       float32 `mc:"f32"`
	Z       float32 `mc:"f32"`
	OffsetX float32 `mc:"f32"`
	OffsetY float32 `mc:"f32"`
	OffsetZ float32 `mc:"f32"`
	Speed   float32 `mc:"f32"`
	Count   int32   `mc:"i32"`
}

func (ParticlePacket) PacketID() int32 { return Particle }

// MapPacket carries one chunk of legacy map data (clientbound 0x34). The
// first data byte selects colors, icons or scale.
type MapPacket struct {
	ItemDamage int32  `mc:"varint"`
	Data       []byte `mc:"shortbytearray"`
}

func (MapPacket) PacketID() int32 { return Map }

// Legacy map data kinds.
const (
	MapDataColors byte = 0
	MapDataIcons  byte = 1
	MapDataScale  byte = 2
)

// PluginMessagePacket is a custom payload with a short length prefix (clientbound 0x3F).
type PluginMessagePacket struct {
	Channel string `mc:"string"`
	Data    []byte `mc:"shortbytearray"`
}

func (PluginMessagePacket) PacketID() int32 { return PluginMessage }

// EncodeDestroyEntities builds a destroy packet (clientbound 0x13) for at
// most MaxDestroyEntities ids: a byte count followed by int ids.
func EncodeDestroyEntities(ids []int32) protocol.Raw {
	data := make([]byte, 1, 1+4*len(ids))
	data[0] = byte(len(ids))
	for _, id := range ids {
		data = binary.BigEndian.AppendUint32(data, uint32(id))
	}
	return protocol.Raw{ID: DestroyEntities, Data: data}
}
