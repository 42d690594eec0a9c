package v1_7to1_8

import (
	"fmt"
	"time"

	"github.com/dxomg/ViaRewind/internal/chat"
	"github.com/dxomg/ViaRewind/internal/mappings"
	"github.com/dxomg/ViaRewind/internal/packet"
	"github.com/dxomg/ViaRewind/internal/packet/pc_1_7"
	"github.com/dxomg/ViaRewind/internal/packet/pc_1_8"
	"github.com/dxomg/ViaRewind/internal/pipeline"
	"github.com/dxomg/ViaRewind/pkg/protocol"
)

const (
	effectBlockBreak int32 = 2001
	signLines              = 4
	mapHeight              = 128
)

func (t *translator) registerWorld(p *pipeline.Protocol) {
	p.RegisterClientbound(packet.Play, pc_1_8.ChunkData, pc_1_7.ChunkData,
		pipeline.Handler(t.chunkData),
	)

	p.RegisterClientbound(packet.Play, pc_1_8.MapChunkBulk, pc_1_7.MapChunkBulk,
		pipeline.Handler(t.mapChunkBulk),
	)

	p.RegisterClientbound(packet.Play, pc_1_8.MultiBlockChange, pc_1_7.MultiBlockChange,
		pipeline.Handler(t.multiBlockChange),
	)

	p.RegisterClientbound(packet.Play, pc_1_8.BlockChange, pc_1_7.BlockChange,
		pipeline.Handler(func(w *pipeline.Wrapper) error {
			x, y, z := readPosition(w)
			state := pipeline.Read[int32](w, protocol.VarInt)
			id, meta := t.blocks.Block(int(state>>4), int(state&0xF))
			w.Write(protocol.Int, x)
			w.Write(protocol.UnsignedByte, y)
			w.Write(protocol.Int, z)
			w.Write(protocol.VarInt, id)
			w.Write(protocol.UnsignedByte, meta)
			return nil
		}),
	)

	p.RegisterClientbound(packet.Play, pc_1_8.BlockAction, pc_1_7.BlockAction,
		pipeline.Handler(positionToInts(protocol.Short)),
	)

	p.RegisterClientbound(packet.Play, pc_1_8.BlockBreakAnimation, pc_1_7.BlockBreakAnimation,
		pipeline.Map(protocol.VarInt),
		pipeline.Handler(positionToInts(protocol.Int)),
	)

	p.RegisterClientbound(packet.Play, pc_1_8.Effect, pc_1_7.Effect,
		pipeline.Handler(func(w *pipeline.Wrapper) error {
			effect := pipeline.Passthrough[int32](w, protocol.Int)
			x, y, z := readPosition(w)
			data := pipeline.Read[int32](w, protocol.Int)
			if effect == effectBlockBreak {
				id, meta := t.blocks.Block(int(data&0xFFF), int(data>>12&0xF))
				data = int32(id) | int32(meta)<<12
			}
			w.Write(protocol.Int, x)
			w.Write(protocol.UnsignedByte, y)
			w.Write(protocol.Int, z)
			w.Write(protocol.Int, data)
			return nil
		}),
	)

	p.RegisterClientbound(packet.Play, pc_1_8.Particle, pc_1_7.Particle,
		pipeline.Handler(particle),
	)

	p.RegisterClientbound(packet.Play, pc_1_8.UpdateSign, pc_1_7.UpdateSign,
		pipeline.Handler(positionToInts(protocol.Short)),
		pipeline.Handler(func(w *pipeline.Wrapper) error {
			for range signLines {
				line := t.chat.JSONToLegacy(pipeline.Read[string](w, protocol.String))
				w.Write(protocol.String, chat.Truncate(line, pc_1_7.MaxSignLine))
			}
			return nil
		}),
	)

	p.RegisterClientbound(packet.Play, pc_1_8.Map, pc_1_7.Map,
		pipeline.Handler(mapData),
	)

	p.RegisterClientbound(packet.Play, pc_1_8.UpdateBlockEntity, pc_1_7.UpdateBlockEntity,
		pipeline.Handler(positionToInts(protocol.Short)),
		pipeline.Map(protocol.UnsignedByte),
		pipeline.MapTo(protocol.NBT, protocol.CompressedNBT),
	)

	p.RegisterClientbound(packet.Play, pc_1_8.OpenSignEditor, pc_1_7.OpenSignEditor,
		pipeline.Handler(positionToInts(protocol.Int)),
	)

	p.RegisterClientbound(packet.Play, pc_1_8.WorldBorder, pc_1_8.WorldBorder,
		pipeline.Handler(worldBorder),
	)

	p.RegisterServerbound(packet.Play, pc_1_7.PlayerDigging, pc_1_8.PlayerDigging,
		pipeline.Map(protocol.Byte),
		pipeline.Handler(intsToPosition),
		pipeline.Map(protocol.Byte),
	)

	p.RegisterServerbound(packet.Play, pc_1_7.PlayerBlockPlacement, pc_1_8.PlayerBlockPlacement,
		pipeline.Handler(intsToPosition),
		pipeline.Map(protocol.Byte),
		pipeline.Handler(func(w *pipeline.Wrapper) error {
			it := pipeline.Read[*protocol.ItemStack](w, protocol.CompressedItem)
			w.Write(protocol.Item, t.items.ToServer(it))
			return nil
		}),
		pipeline.Map(protocol.Byte),
		pipeline.Map(protocol.Byte),
		pipeline.Map(protocol.Byte),
	)

	p.RegisterServerbound(packet.Play, pc_1_7.UpdateSignServerbound, pc_1_8.UpdateSignServerbound,
		pipeline.Handler(func(w *pipeline.Wrapper) error {
			x := pipeline.Read[int32](w, protocol.Int)
			y := pipeline.Read[int16](w, protocol.Short)
			z := pipeline.Read[int32](w, protocol.Int)
			writePosition(w, x, int32(y), z)
			for range signLines {
				w.Write(protocol.String, t.chat.LegacyToJSON(pipeline.Read[string](w, protocol.String)))
			}
			return nil
		}),
	)
}

// positionToInts returns a step replacing a packed position with x, y and z
// ints, y written as yType.
func positionToInts(yType protocol.Type) func(w *pipeline.Wrapper) error {
	return func(w *pipeline.Wrapper) error {
		x, y, z := readPosition(w)
		w.Write(protocol.Int, x)
		w.Write(yType, y)
		w.Write(protocol.Int, z)
		return nil
	}
}

// intsToPosition packs a legacy x, unsigned byte y, z triple. The "no
// block" sentinel y 255 maps to -1.
func intsToPosition(w *pipeline.Wrapper) error {
	x := pipeline.Read[int32](w, protocol.Int)
	y := int32(pipeline.Read[uint8](w, protocol.UnsignedByte))
	z := pipeline.Read[int32](w, protocol.Int)
	if y == 255 {
		y = -1
	}
	writePosition(w, x, y, z)
	return nil
}

func (t *translator) multiBlockChange(w *pipeline.Wrapper) error {
	pipeline.Passthrough[int32](w, protocol.Int)
	pipeline.Passthrough[int32](w, protocol.Int)
	count := pipeline.Read[int32](w, protocol.VarInt)
	if w.Err() != nil {
		return nil
	}
	if count < 0 || int(count) > w.Remaining()/3 {
		return fmt.Errorf("%w: multi block change count %d", pipeline.ErrMalformed, count)
	}
	w.Write(protocol.Short, count)
	w.Write(protocol.Int, count*4)
	for range count {
		xz := pipeline.Read[uint8](w, protocol.UnsignedByte)
		y := pipeline.Read[uint8](w, protocol.UnsignedByte)
		state := pipeline.Read[int32](w, protocol.VarInt)
		id, meta := t.blocks.Block(int(state>>4), int(state&0xF))
		record := uint32(xz)<<24 | uint32(y)<<16 | uint32(id&0xFFF)<<4 | uint32(meta&0xF)
		w.Write(protocol.Int, int32(record))
	}
	return nil
}

// particle names the particle and drops the extra arguments the 1.7 client
// reads from the name instead.
func particle(w *pipeline.Wrapper) error {
	id := pipeline.Read[int32](w, protocol.Int)
	pipeline.Read[bool](w, protocol.Bool) // long distance
	if w.Err() != nil {
		return nil
	}
	p, ok := mappings.ParticleByID(id)
	if !ok {
		w.Conn().Logger().Debug("dropping unknown particle", "id", id)
		w.Cancel()
		return nil
	}
	fields := make([]float32, 7)
	for i := range fields {
		fields[i] = pipeline.Read[float32](w, protocol.Float)
	}
	count := pipeline.Read[int32](w, protocol.Int)
	args := make([]int32, p.Extra)
	for i := range args {
		args[i] = pipeline.Read[int32](w, protocol.VarInt)
	}
	if w.Err() != nil {
		return nil
	}
	name, ok := mappings.LegacyParticleName(id, args)
	if !ok {
		w.Cancel()
		return nil
	}
	w.Write(protocol.String, name)
	for _, f := range fields {
		w.Write(protocol.Float, f)
	}
	w.Write(protocol.Int, count)
	return nil
}

// mapData splits a map update into the scale, icon and per column color
// packets the 1.7 client expects.
func mapData(w *pipeline.Wrapper) error {
	damage := pipeline.Read[int32](w, protocol.VarInt)
	scale := pipeline.Read[int8](w, protocol.Byte)
	icons := pipeline.Read[int32](w, protocol.VarInt)
	if w.Err() != nil {
		return nil
	}
	w.Cancel()
	if icons < 0 || int(icons)*3 > w.Remaining() {
		return fmt.Errorf("%w: map icon count %d", pipeline.ErrMalformed, icons)
	}

	iconData := make([]byte, 1, 1+3*icons)
	iconData[0] = pc_1_7.MapDataIcons
	for range icons {
		iconData = append(iconData,
			pipeline.Read[uint8](w, protocol.UnsignedByte), // type and direction
			pipeline.Read[uint8](w, protocol.UnsignedByte),
			pipeline.Read[uint8](w, protocol.UnsignedByte),
		)
	}
	columns := int(pipeline.Read[uint8](w, protocol.UnsignedByte))
	var rows, x, z int
	var colors []byte
	if columns > 0 {
		rows = int(pipeline.Read[uint8](w, protocol.UnsignedByte))
		x = int(pipeline.Read[uint8](w, protocol.UnsignedByte))
		z = int(pipeline.Read[uint8](w, protocol.UnsignedByte))
		colors = pipeline.Read[[]byte](w, protocol.ByteArray)
	}
	if w.Err() != nil {
		return nil
	}
	if len(colors) < columns*rows || z+rows > mapHeight {
		return fmt.Errorf("%w: map region %dx%d at %d,%d with %d colors",
			pipeline.ErrMalformed, columns, rows, x, z, len(colors))
	}

	w.SendToClient(pc_1_7.MapPacket{ItemDamage: damage, Data: []byte{pc_1_7.MapDataScale, byte(scale)}})
	w.SendToClient(pc_1_7.MapPacket{ItemDamage: damage, Data: iconData})
	for col := range columns {
		data := make([]byte, 3, 3+rows)
		data[0], data[1], data[2] = pc_1_7.MapDataColors, byte(x+col), byte(z)
		for row := range rows {
			data = append(data, colors[col+row*columns])
		}
		w.SendToClient(pc_1_7.MapPacket{ItemDamage: damage, Data: data})
	}
	return nil
}

// worldBorder absorbs border updates into the tracker; the client has no
// border and the emulation renders it instead.
func worldBorder(w *pipeline.Wrapper) error {
	action := pipeline.Read[int32](w, protocol.VarInt)
	if w.Err() != nil {
		return nil
	}
	w.Cancel()
	border := w.Conn().WorldBorder()
	now := time.Now()
	switch action {
	case pc_1_8.BorderSetSize:
		border.SetSize(pipeline.Read[float64](w, protocol.Double), now)
	case pc_1_8.BorderLerpSize:
		from := pipeline.Read[float64](w, protocol.Double)
		to := pipeline.Read[float64](w, protocol.Double)
		speed := pipeline.Read[int64](w, protocol.VarLong)
		border.Lerp(from, to, time.Duration(speed)*time.Millisecond, now)
	case pc_1_8.BorderSetCenter:
		border.SetCenter(pipeline.Read[float64](w, protocol.Double), pipeline.Read[float64](w, protocol.Double))
	case pc_1_8.BorderInitialize:
		x := pipeline.Read[float64](w, protocol.Double)
		z := pipeline.Read[float64](w, protocol.Double)
		from := pipeline.Read[float64](w, protocol.Double)
		to := pipeline.Read[float64](w, protocol.Double)
		speed := pipeline.Read[int64](w, protocol.VarLong)
		portal := pipeline.Read[int32](w, protocol.VarInt)
		warnTime := pipeline.Read[int32](w, protocol.VarInt)
		warnBlocks := pipeline.Read[int32](w, protocol.VarInt)
		if w.Err() == nil {
			border.Initialize(x, z, from, to, time.Duration(speed)*time.Millisecond, portal, warnTime, warnBlocks, now)
		}
	case pc_1_8.BorderWarningTime:
		border.WarningTime = pipeline.Read[int32](w, protocol.VarInt)
	case pc_1_8.BorderWarningBlocks:
		border.WarningBlocks = pipeline.Read[int32](w, protocol.VarInt)
	default:
		w.Conn().Logger().Debug("dropping world border update with unknown action", "action", action)
	}
	return nil
}
