package pc_1_8

import (
	"github.com/dxomg/ViaRewind/pkg/nbt"
	"github.com/dxomg/ViaRewind/pkg/protocol"
)

// EntityVelocityPacket sets an entity's velocity in 1/8000 blocks per tick (clientbound 0x12).
type EntityVelocityPacket struct {
	EntityID int32 `mc:"varint"`
	X        int16 `mc:"i16"`
	Y        int16 `mc:"i16"`
	Z        int16 `mc:"i16"`
}

func (EntityVelocityPacket) PacketID() int32 { return EntityVelocity }

// ChatPacket shows a JSON text component (clientbound 0x02).
type ChatPacket struct {
	JSON     string `mc:"string"`
	Position int8   `mc:"i8"`
}

func (ChatPacket) PacketID() int32 { return Chat }

// TitleTextPacket sets the title or subtitle text (clientbound 0x45, actions 0 and 1).
type TitleTextPacket struct {
	Action int32  `mc:"varint"`
	JSON   string `mc:"string"`
}

func (TitleTextPacket) PacketID() int32 { return Title }

// TitleTimesPacket sets title fade timings in ticks (clientbound 0x45, action 2).
type TitleTimesPacket struct {
	Action  int32 `mc:"varint"`
	FadeIn  int32 `mc:"i32"`
	Stay    int32 `mc:"i32"`
	FadeOut int32 `mc:"i32"`
}

func (TitleTimesPacket) PacketID() int32 { return Title }

// TitleActionPacket hides or resets the title (clientbound 0x45, actions 3 and 4).
type TitleActionPacket struct {
	Action int32 `mc:"varint"`
}

func (TitleActionPacket) PacketID() int32 { return Title }

// SpawnMobPacket spawns a living entity (clientbound 0x0F). Coordinates are
// fixed point with five fractional bits.
type SpawnMobPacket struct {
	EntityID  int32               `mc:"varint"`
	Type      uint8               `mc:"u8"`
	X         int32               `mc:"i32"`
	Y         int32               `mc:"i32"`
	Z         int32               `mc:"i32"`
	Yaw       int8                `mc:"i8"`
	Pitch     int8                `mc:"i8"`
	HeadPitch int8                `mc:"i8"`
	VelocityX int16               `mc:"i16"`
	VelocityY int16               `mc:"i16"`
	VelocityZ int16               `mc:"i16"`
	Metadata  []protocol.Metadata `mc:"metadata"`
}

func (SpawnMobPacket) PacketID() int32 { return SpawnMob }

// EntityTeleportPacket moves an entity to an absolute fixed point position (clientbound 0x18).
type EntityTeleportPacket struct {
	EntityID int32 `mc:"varint"`
	X        int32 `mc:"i32"`
	Y        int32 `mc:"i32"`
	Z        int32 `mc:"i32"`
	Yaw      int8  `mc:"i8"`
	Pitch    int8  `mc:"i8"`
	OnGround bool  `mc:"bool"`
}

func (EntityTeleportPacket) PacketID() int32 { return EntityTeleport }

// EntityMetadataPacket updates entity metadata (clientbound 0x1C).
type EntityMetadataPacket struct {
	EntityID int32               `mc:"varint"`
	Metadata []protocol.Metadata `mc:"metadata"`
}

func (EntityMetadataPacket) PacketID() int32 { return EntityMetadata }

// DestroyEntitiesPacket removes entities (clientbound 0x13).
type DestroyEntitiesPacket struct {
	EntityIDs []int32 `mc:"varintarray"`
}

func (DestroyEntitiesPacket) PacketID() int32 { return DestroyEntities }

// SetSlotPacket updates one window slot (clientbound 0x2F).
type SetSlotPacket struct {
	WindowID int8                `mc:"i8"`
	Slot     int16               `mc:"i16"`
	Item     *protocol.ItemStack `mc:"item"`
}

func (SetSlotPacket) PacketID() int32 { return SetSlot }

// AttachEntityPacket mounts or leashes an entity; a vehicle of -1 detaches
// it (clientbound 0x1B).
type AttachEntityPacket struct {
	EntityID  int32 `mc:"i32"`
	VehicleID int32 `mc:"i32"`
	Leash     bool  `mc:"bool"`
}

func (AttachEntityPacket) PacketID() int32 { return AttachEntity }

// UpdateSignPacket sets the four JSON lines of a sign (clientbound 0x33).
type UpdateSignPacket struct {
	Location int64  `mc:"position"`
	Line1    string `mc:"string"`
	Line2    string `mc:"string"`
	Line3    string `mc:"string"`
	Line4    string `mc:"string"`
}

func (UpdateSignPacket) PacketID() int32 { return UpdateSign }

// UpdateBlockEntityPacket replaces the data of a block entity (clientbound 0x35).
type UpdateBlockEntityPacket struct {
	Location int64         `mc:"position"`
	Action   uint8         `mc:"u8"`
	Data     *nbt.Compound `mc:"nbt"`
}

func (UpdateBlockEntityPacket) PacketID() int32 { return UpdateBlockEntity }

// Block entity update actions.
const (
	BlockEntitySpawner   uint8 = 1
	BlockEntityCommand   uint8 = 2
	BlockEntityBeacon    uint8 = 3
	BlockEntitySkull     uint8 = 4
	BlockEntityFlowerPot uint8 = 5
	BlockEntityBanner    uint8 = 6
)

// Fixed converts a block coordinate to the fixed point form used by spawn
// and teleport packets.
func Fixed(v float64) int32 {
	return int32(v * 32)
}

// Angle converts degrees to a 1/256 turn byte.
func Angle(deg float32) int8 {
	return int8(int32(deg * 256 / 360))
}
