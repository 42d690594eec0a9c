package v1_8to1_9

import (
	"bytes"
	"encoding/binary"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"

	"github.com/dxomg/ViaRewind/internal/packet"
	"github.com/dxomg/ViaRewind/internal/packet/pc_1_8"
	"github.com/dxomg/ViaRewind/internal/packet/pc_1_9"
	"github.com/dxomg/ViaRewind/internal/pipeline"
	"github.com/dxomg/ViaRewind/internal/protocols"
	"github.com/dxomg/ViaRewind/internal/storage"
	"github.com/dxomg/ViaRewind/internal/user"
	"github.com/dxomg/ViaRewind/pkg/nbt"
	"github.com/dxomg/ViaRewind/pkg/protocol"
)

type harness struct {
	t     *testing.T
	conn  *user.Connection
	chain *pipeline.Chain
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	conn := user.NewConnection(user.Options{
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		Debug:         true,
		ClientVersion: packet.Protocol1_8,
		ServerVersion: packet.Protocol1_9_4,
	})
	chain := pipeline.NewChain(conn, New(protocols.Env{}))
	chain.Init()
	return &harness{t: t, conn: conn, chain: chain}
}

func encode(t *testing.T, fields ...any) []byte {
	t.Helper()
	var buf bytes.Buffer
	for i := 0; i < len(fields); i += 2 {
		if err := protocol.WriteField(&buf, fields[i].(protocol.Type), fields[i+1]); err != nil {
			t.Fatalf("encode field %d: %v", i/2, err)
		}
	}
	return buf.Bytes()
}

func (h *harness) process(dir packet.Direction, id int32, fields ...any) pipeline.Result {
	h.t.Helper()
	res, err := h.chain.Process(dir, packet.Play, protocol.Raw{ID: id, Data: encode(h.t, fields...)})
	if err != nil {
		h.t.Fatalf("%s 0x%02X: %v", dir, id, err)
	}
	return res
}

func (h *harness) clientbound(id int32, fields ...any) []protocol.Raw {
	h.t.Helper()
	return h.process(packet.Clientbound, id, fields...).ToClient
}

func (h *harness) serverbound(id int32, fields ...any) []protocol.Raw {
	h.t.Helper()
	return h.process(packet.Serverbound, id, fields...).ToServer
}

func expectOne(t *testing.T, got []protocol.Raw, id int32, want []byte) {
	t.Helper()
	if len(got) != 1 {
		t.Fatalf("got %d packets, want 1", len(got))
	}
	if got[0].ID != id || !bytes.Equal(got[0].Data, want) {
		t.Errorf("got 0x%02X % X\nwant 0x%02X % X", got[0].ID, got[0].Data, id, want)
	}
}

func joinGame(h *harness, id, dimension int32) []protocol.Raw {
	h.t.Helper()
	return h.clientbound(pc_1_9.JoinGame,
		protocol.Int, id,
		protocol.UnsignedByte, uint8(1),
		protocol.Int, dimension,
		protocol.UnsignedByte, uint8(2),
		protocol.UnsignedByte, uint8(20),
		protocol.String, "default",
		protocol.Bool, false,
	)
}

func TestKeepAlive(t *testing.T) {
	h := newHarness(t)
	expectOne(t, h.clientbound(pc_1_9.KeepAlive, protocol.VarInt, int32(7)),
		pc_1_8.KeepAlive, encode(t, protocol.VarInt, int32(7)))
	expectOne(t, h.serverbound(pc_1_8.KeepAliveServerbound, protocol.VarInt, int32(8)),
		pc_1_9.KeepAliveServerbound, encode(t, protocol.VarInt, int32(8)))
}

func TestJoinGameDimension(t *testing.T) {
	h := newHarness(t)
	got := joinGame(h, 42, storage.DimensionNether)
	expectOne(t, got, pc_1_8.JoinGame, encode(t,
		protocol.Int, int32(42),
		protocol.UnsignedByte, uint8(1),
		protocol.Byte, int8(-1),
		protocol.UnsignedByte, uint8(2),
		protocol.UnsignedByte, uint8(20),
		protocol.String, "default",
		protocol.Bool, false,
	))
	if d := h.conn.Session().Dimension(); d != storage.DimensionNether {
		t.Errorf("dimension = %d, want nether", d)
	}
	if h.conn.Session().HasSkyLight() {
		t.Error("nether reported with sky light")
	}
	if !h.conn.Entities().IsClient(42) {
		t.Error("client entity id not recorded")
	}
}

func TestPlayerPositionConfirmsTeleport(t *testing.T) {
	h := newHarness(t)
	res := h.process(packet.Clientbound, pc_1_9.PlayerPositionLook,
		protocol.Double, 1.0,
		protocol.Double, 2.0,
		protocol.Double, 3.0,
		protocol.Float, float32(90),
		protocol.Float, float32(0),
		protocol.Byte, int8(0),
		protocol.VarInt, int32(5),
	)
	expectOne(t, res.ToClient, pc_1_8.PlayerPositionLook, encode(t,
		protocol.Double, 1.0,
		protocol.Double, 2.0,
		protocol.Double, 3.0,
		protocol.Float, float32(90),
		protocol.Float, float32(0),
		protocol.Byte, int8(0),
	))
	expectOne(t, res.ToServer, pc_1_9.TeleportConfirm, encode(t, protocol.VarInt, int32(5)))
}

func TestServerboundHand(t *testing.T) {
	h := newHarness(t)
	expectOne(t, h.serverbound(pc_1_8.AnimationServerbound), pc_1_9.AnimationServerbound,
		encode(t, protocol.VarInt, pc_1_9.MainHand))

	expectOne(t, h.serverbound(pc_1_8.UseEntity, protocol.VarInt, int32(3), protocol.VarInt, useEntityAttack),
		pc_1_9.UseEntity, encode(t, protocol.VarInt, int32(3), protocol.VarInt, useEntityAttack))
	expectOne(t, h.serverbound(pc_1_8.UseEntity, protocol.VarInt, int32(3), protocol.VarInt, int32(0)),
		pc_1_9.UseEntity, encode(t, protocol.VarInt, int32(3), protocol.VarInt, int32(0), protocol.VarInt, pc_1_9.MainHand))
}

func spawnArrow(h *harness, id int32) []protocol.Raw {
	h.t.Helper()
	return h.clientbound(pc_1_9.SpawnObject,
		protocol.VarInt, id,
		protocol.UUID, uuid.New(),
		protocol.Byte, int8(objectArrow),
		protocol.Double, 1.5,
		protocol.Double, 64.0,
		protocol.Double, -2.25,
		protocol.Byte, int8(0),
		protocol.Byte, int8(0),
		protocol.Int, int32(0),
		protocol.Short, int16(0),
		protocol.Short, int16(0),
		protocol.Short, int16(0),
	)
}

func TestSpawnObject(t *testing.T) {
	h := newHarness(t)
	expectOne(t, spawnArrow(h, 7), pc_1_8.SpawnObject, encode(t,
		protocol.VarInt, int32(7),
		protocol.Byte, int8(objectArrow),
		protocol.Int, int32(48),
		protocol.Int, int32(2048),
		protocol.Int, int32(-72),
		protocol.Byte, int8(0),
		protocol.Byte, int8(0),
		protocol.Int, int32(0),
	))

	got := h.clientbound(pc_1_9.SpawnObject,
		protocol.VarInt, int32(8),
		protocol.UUID, uuid.New(),
		protocol.Byte, int8(objectAreaEffectCloud),
		protocol.Double, 0.0,
		protocol.Double, 0.0,
		protocol.Double, 0.0,
		protocol.Byte, int8(0),
		protocol.Byte, int8(0),
		protocol.Int, int32(0),
		protocol.Short, int16(0),
		protocol.Short, int16(0),
		protocol.Short, int16(0),
	)
	if len(got) != 0 {
		t.Errorf("area effect cloud forwarded: %+v", got)
	}
}

func TestRelativeMove(t *testing.T) {
	h := newHarness(t)
	spawnArrow(h, 7)

	move := func(dx int16) []protocol.Raw {
		return h.clientbound(pc_1_9.EntityRelativeMove,
			protocol.VarInt, int32(7),
			protocol.Short, dx,
			protocol.Short, int16(0),
			protocol.Short, int16(0),
			protocol.Bool, true,
		)
	}
	expectOne(t, move(2*storage.PositionScale), pc_1_8.EntityRelativeMove, encode(t,
		protocol.VarInt, int32(7),
		protocol.Byte, int8(64),
		protocol.Byte, int8(0),
		protocol.Byte, int8(0),
		protocol.Bool, true,
	))
	// Five blocks do not fit a 1.8 relative move.
	expectOne(t, move(5*storage.PositionScale), pc_1_8.EntityTeleport, encode(t,
		protocol.VarInt, int32(7),
		protocol.Int, int32(272),
		protocol.Int, int32(2048),
		protocol.Int, int32(-72),
		protocol.Byte, int8(0),
		protocol.Byte, int8(0),
		protocol.Bool, true,
	))
}

func TestEntityEquipment(t *testing.T) {
	h := newHarness(t)
	equip := func(slot int32) []protocol.Raw {
		return h.clientbound(pc_1_9.EntityEquipment,
			protocol.VarInt, int32(3),
			protocol.VarInt, slot,
			protocol.Item, (*protocol.ItemStack)(nil),
		)
	}
	if got := equip(equipmentOffHand); len(got) != 0 {
		t.Errorf("off hand forwarded: %+v", got)
	}
	for _, tc := range []struct {
		slot int32
		want int16
	}{
		{equipmentMainHand, 0},
		{2, 1},
		{5, 4},
	} {
		expectOne(t, equip(tc.slot), pc_1_8.EntityEquipment, encode(t,
			protocol.VarInt, int32(3),
			protocol.Short, tc.want,
			protocol.Item, (*protocol.ItemStack)(nil),
		))
	}
}

func TestEntityEffect(t *testing.T) {
	h := newHarness(t)
	joinGame(h, 1, storage.DimensionOverworld)

	effect := func(id int32, effect int8, flags int8) []protocol.Raw {
		return h.clientbound(pc_1_9.EntityEffect,
			protocol.VarInt, id,
			protocol.Byte, effect,
			protocol.Byte, int8(2),
			protocol.VarInt, int32(100),
			protocol.Byte, flags,
		)
	}
	expectOne(t, effect(9, 1, effectShowParticles), pc_1_8.EntityEffect, encode(t,
		protocol.VarInt, int32(9),
		protocol.Byte, int8(1),
		protocol.Byte, int8(2),
		protocol.VarInt, int32(100),
		protocol.Bool, false,
	))
	if got := effect(9, pc_1_9.EffectGlowing, 0); len(got) != 0 {
		t.Errorf("glowing forwarded: %+v", got)
	}
	if got := effect(1, pc_1_9.EffectLevitation, 0); len(got) != 0 {
		t.Errorf("levitation forwarded: %+v", got)
	}
	if lev := h.conn.Levitation(); !lev.Active() || lev.Amplifier() != 2 {
		t.Errorf("levitation active=%v amplifier=%d, want active 2", lev.Active(), lev.Amplifier())
	}

	h.clientbound(pc_1_9.RemoveEntityEffect, protocol.VarInt, int32(1), protocol.Byte, pc_1_9.EffectLevitation)
	if h.conn.Levitation().Active() {
		t.Error("levitation still active after removal")
	}
}

func TestEntityPropertiesAttackSpeed(t *testing.T) {
	h := newHarness(t)
	joinGame(h, 1, storage.DimensionOverworld)

	got := h.clientbound(pc_1_9.EntityProperties,
		protocol.VarInt, int32(1),
		protocol.Int, int32(2),
		protocol.String, attributeAttackSpeed,
		protocol.Double, 4.0,
		protocol.VarInt, int32(1),
		protocol.UUID, uuid.New(),
		protocol.Double, -2.0,
		protocol.Byte, modifierAdd,
		protocol.String, "generic.movementSpeed",
		protocol.Double, 0.1,
		protocol.VarInt, int32(0),
	)
	expectOne(t, got, pc_1_8.EntityProperties, encode(t,
		protocol.VarInt, int32(1),
		protocol.Int, int32(1),
		protocol.String, "generic.movementSpeed",
		protocol.Double, 0.1,
		protocol.VarInt, int32(0),
	))
	if s := h.conn.Cooldown().AttackSpeed(); s != 2 {
		t.Errorf("attack speed = %v, want 2", s)
	}
}

func TestAttributeTotal(t *testing.T) {
	a := attribute{value: 2, modifiers: []modifier{
		{amount: 1, operation: modifierAdd},
		{amount: 0.5, operation: modifierMultiplyBase},
		{amount: 1, operation: modifierMultiplyTotal},
	}}
	// (2+1) + 3*0.5 = 4.5, doubled.
	if got := a.total(); got != 9 {
		t.Errorf("total = %v, want 9", got)
	}
}

func TestSetPassengers(t *testing.T) {
	h := newHarness(t)
	expectOne(t, h.clientbound(pc_1_9.SetPassengers, protocol.VarInt, int32(10), protocol.VarIntArray, []int32{11, 12}),
		pc_1_8.AttachEntity, encode(t, protocol.Int, int32(11), protocol.Int, int32(10), protocol.Bool, false))

	got := h.clientbound(pc_1_9.SetPassengers, protocol.VarInt, int32(10), protocol.VarIntArray, []int32{12})
	if len(got) != 2 {
		t.Fatalf("got %d packets, want detach and attach", len(got))
	}
	expectOne(t, got[:1], pc_1_8.AttachEntity, encode(t, protocol.Int, int32(11), protocol.Int, int32(-1), protocol.Bool, false))
	expectOne(t, got[1:], pc_1_8.AttachEntity, encode(t, protocol.Int, int32(12), protocol.Int, int32(10), protocol.Bool, false))
}

func TestZombieMetadata(t *testing.T) {
	h := newHarness(t)
	h.conn.Entities().Spawn(4, storage.EntityType{Kind: storage.EntityMob, ID: mobZombie})

	got := h.clientbound(pc_1_9.EntityMetadata,
		protocol.VarInt, int32(4),
		protocol.MetadataList1_9, []protocol.Metadata1_9{
			{Index: 0, Type: protocol.Meta1_9Byte, Value: int8(0x41)},
			{Index: 5, Type: protocol.Meta1_9Bool, Value: true}, // no gravity
			{Index: 11, Type: protocol.Meta1_9Bool, Value: true},
			{Index: 12, Type: protocol.Meta1_9VarInt, Value: int32(2)},
		},
	)
	expectOne(t, got, pc_1_8.EntityMetadata, encode(t,
		protocol.VarInt, int32(4),
		protocol.MetadataList, []protocol.Metadata{
			{Index: 0, Type: protocol.MetaByte, Value: int8(0x01)},
			{Index: 12, Type: protocol.MetaByte, Value: int8(-1)},
			{Index: 13, Type: protocol.MetaByte, Value: int8(1)},
		},
	))
}

// section1_9 encodes a 4 bit paletted section whose first block is stone.
func section1_9(sky bool) []byte {
	var buf bytes.Buffer
	buf.WriteByte(4)
	protocol.WriteVarInt(&buf, 2)
	protocol.WriteVarInt(&buf, 0)
	protocol.WriteVarInt(&buf, 1<<4)
	longs := sectionBlocks * 4 / 64
	protocol.WriteVarInt(&buf, int32(longs))
	data := make([]uint64, longs)
	data[0] = 1
	binary.Write(&buf, binary.BigEndian, data)
	buf.Write(bytes.Repeat([]byte{0xFF}, nibbleSection))
	if sky {
		buf.Write(bytes.Repeat([]byte{0xEE}, nibbleSection))
	}
	return buf.Bytes()
}

func TestChunkData(t *testing.T) {
	h := newHarness(t)
	data := append(section1_9(true), bytes.Repeat([]byte{1}, biomeBytes)...)

	sign := nbt.NewCompound()
	sign.Put("id", nbt.String("Sign"))
	sign.Put("x", nbt.Int(2))
	sign.Put("y", nbt.Int(3))
	sign.Put("z", nbt.Int(4))
	sign.Put("Text1", nbt.String(`{"text":"hi"}`))

	got := h.clientbound(pc_1_9.ChunkData,
		protocol.Int, int32(0),
		protocol.Int, int32(0),
		protocol.Bool, true,
		protocol.VarInt, int32(1),
		protocol.ByteArray, data,
		protocol.VarInt, int32(1),
		protocol.NBT, sign,
	)
	if len(got) != 2 {
		t.Fatalf("got %d packets, want chunk and sign", len(got))
	}

	legacy := make([]byte, 0, sectionBlocks*2+2*nibbleSection+biomeBytes)
	legacy = append(legacy, 0x10, 0x00)
	legacy = append(legacy, make([]byte, sectionBlocks*2-2)...)
	legacy = append(legacy, bytes.Repeat([]byte{0xFF}, nibbleSection)...)
	legacy = append(legacy, bytes.Repeat([]byte{0xEE}, nibbleSection)...)
	legacy = append(legacy, bytes.Repeat([]byte{1}, biomeBytes)...)
	expectOne(t, got[:1], pc_1_8.ChunkData, encode(t,
		protocol.Int, int32(0),
		protocol.Int, int32(0),
		protocol.Bool, true,
		protocol.UnsignedShort, uint16(1),
		protocol.ByteArray, legacy,
	))
	expectOne(t, got[1:], pc_1_8.UpdateSign, encode(t,
		protocol.Position, protocol.EncodePosition(2, 3, 4),
		protocol.String, `{"text":"hi"}`,
		protocol.String, `""`,
		protocol.String, `""`,
		protocol.String, `""`,
	))
}

func TestChunkDataMalformed(t *testing.T) {
	h := newHarness(t)
	_, err := h.chain.Process(packet.Clientbound, packet.Play, protocol.Raw{ID: pc_1_9.ChunkData, Data: encode(t,
		protocol.Int, int32(0),
		protocol.Int, int32(0),
		protocol.Bool, false,
		protocol.VarInt, int32(1),
		protocol.ByteArray, []byte{4, 0},
		protocol.VarInt, int32(0),
	)})
	if err == nil {
		t.Fatal("truncated section accepted")
	}
}

func TestUnloadChunk(t *testing.T) {
	h := newHarness(t)
	expectOne(t, h.clientbound(pc_1_9.UnloadChunk, protocol.Int, int32(3), protocol.Int, int32(-4)),
		pc_1_8.ChunkData, encode(t,
			protocol.Int, int32(3),
			protocol.Int, int32(-4),
			protocol.Bool, true,
			protocol.UnsignedShort, uint16(0),
			protocol.ByteArray, []byte{},
		))
}

func TestBlockPlacement(t *testing.T) {
	h := newHarness(t)
	pos := protocol.EncodePosition(1, 2, 3)
	place := func(face int8) []protocol.Raw {
		return h.serverbound(pc_1_8.PlayerBlockPlacement,
			protocol.Position, pos,
			protocol.Byte, face,
			protocol.Item, (*protocol.ItemStack)(nil),
			protocol.Byte, int8(8),
			protocol.Byte, int8(16),
			protocol.Byte, int8(0),
		)
	}
	expectOne(t, place(1), pc_1_9.PlayerBlockPlacement, encode(t,
		protocol.Position, pos,
		protocol.VarInt, int32(1),
		protocol.VarInt, pc_1_9.MainHand,
		protocol.UnsignedByte, uint8(8),
		protocol.UnsignedByte, uint8(16),
		protocol.UnsignedByte, uint8(0),
	))
	expectOne(t, place(faceNone), pc_1_9.UseItem, encode(t, protocol.VarInt, pc_1_9.MainHand))
}

func TestWindowItemsDropOffHand(t *testing.T) {
	h := newHarness(t)
	items := make([]*protocol.ItemStack, pc_1_9.OffHandSlot+1)
	expectOne(t, h.clientbound(pc_1_9.WindowItems, protocol.UnsignedByte, playerWindow, protocol.ItemArray, items),
		pc_1_8.WindowItems, encode(t,
			protocol.UnsignedByte, playerWindow,
			protocol.ItemArray, items[:pc_1_9.OffHandSlot],
		))

	got := h.clientbound(pc_1_9.SetSlot,
		protocol.Byte, int8(playerWindow),
		protocol.Short, pc_1_9.OffHandSlot,
		protocol.Item, (*protocol.ItemStack)(nil),
	)
	if len(got) != 0 {
		t.Errorf("off hand slot forwarded: %+v", got)
	}
}

func TestClickWindowMode(t *testing.T) {
	h := newHarness(t)
	got := h.serverbound(pc_1_8.ClickWindow,
		protocol.UnsignedByte, uint8(1),
		protocol.Short, int16(3),
		protocol.Byte, int8(0),
		protocol.Short, int16(9),
		protocol.Byte, int8(4),
		protocol.Item, (*protocol.ItemStack)(nil),
	)
	expectOne(t, got, pc_1_9.ClickWindow, encode(t,
		protocol.UnsignedByte, uint8(1),
		protocol.Short, int16(3),
		protocol.Byte, int8(0),
		protocol.Short, int16(9),
		protocol.VarInt, int32(4),
		protocol.Item, (*protocol.ItemStack)(nil),
	))
}

func TestUnknownSoundDropped(t *testing.T) {
	h := newHarness(t)
	got := h.clientbound(pc_1_9.SoundEffect,
		protocol.VarInt, int32(3),
		protocol.VarInt, int32(0),
		protocol.Int, int32(0),
		protocol.Int, int32(0),
		protocol.Int, int32(0),
		protocol.Float, float32(1),
		protocol.UnsignedByte, uint8(63),
	)
	if len(got) != 0 {
		t.Errorf("unknown sound forwarded: %+v", got)
	}
}

func TestCustomNamedSoundKept(t *testing.T) {
	h := newHarness(t)
	got := h.clientbound(pc_1_9.NamedSoundEffect,
		protocol.String, "custom.horn",
		protocol.VarInt, int32(0),
		protocol.Int, int32(8),
		protocol.Int, int32(16),
		protocol.Int, int32(24),
		protocol.Float, float32(1),
		protocol.UnsignedByte, uint8(63),
	)
	expectOne(t, got, pc_1_8.NamedSoundEffect, encode(t,
		protocol.String, "custom.horn",
		protocol.Int, int32(8),
		protocol.Int, int32(16),
		protocol.Int, int32(24),
		protocol.Float, float32(1),
		protocol.UnsignedByte, uint8(63),
	))
}

func TestBossBarDropped(t *testing.T) {
	h := newHarness(t)
	if got := h.clientbound(pc_1_9.BossBar, protocol.UUID, uuid.New(), protocol.VarInt, int32(1)); len(got) != 0 {
		t.Errorf("boss bar forwarded: %+v", got)
	}
}
