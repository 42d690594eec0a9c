package v1_8to1_9

import (
	"github.com/dxomg/ViaRewind/internal/packet"
	"github.com/dxomg/ViaRewind/internal/packet/pc_1_8"
	"github.com/dxomg/ViaRewind/internal/packet/pc_1_9"
	"github.com/dxomg/ViaRewind/internal/pipeline"
	"github.com/dxomg/ViaRewind/pkg/nbt"
	"github.com/dxomg/ViaRewind/pkg/protocol"
)

const (
	effectBlockBreak int32 = 2001
	lastParticle     int32 = 41 // mob appearance
	signLines              = 4
	faceNone         int8  = -1
)

// Block entity actions 1.8 does not have.
const (
	blockEntityStructure  uint8 = 7
	blockEntityEndGateway uint8 = 8
	blockEntityUpdateSign uint8 = 9
)

func (t *translator) registerWorld(p *pipeline.Protocol) {
	p.RegisterClientbound(packet.Play, pc_1_9.ChunkData, pc_1_8.ChunkData,
		pipeline.Handler(t.chunkData),
	)

	p.RegisterClientbound(packet.Play, pc_1_9.UnloadChunk, pc_1_8.ChunkData,
		pipeline.Map(protocol.Int),
		pipeline.Map(protocol.Int),
		pipeline.Handler(func(w *pipeline.Wrapper) error {
			w.Write(protocol.Bool, true)
			w.Write(protocol.UnsignedShort, 0)
			w.Write(protocol.ByteArray, []byte{})
			return nil
		}),
	)

	p.RegisterClientbound(packet.Play, pc_1_9.BlockChange, pc_1_8.BlockChange,
		pipeline.Map(protocol.Position),
		pipeline.Handler(func(w *pipeline.Wrapper) error {
			w.Write(protocol.VarInt, t.blockState(pipeline.Read[int32](w, protocol.VarInt)))
			return nil
		}),
	)

	p.RegisterClientbound(packet.Play, pc_1_9.MultiBlockChange, pc_1_8.MultiBlockChange,
		pipeline.Map(protocol.Int),
		pipeline.Map(protocol.Int),
		pipeline.Handler(func(w *pipeline.Wrapper) error {
			count := pipeline.Passthrough[int32](w, protocol.VarInt)
			for range count {
				if w.Err() != nil {
					break
				}
				w.Passthrough(protocol.UnsignedByte) // xz
				w.Passthrough(protocol.UnsignedByte) // y
				w.Write(protocol.VarInt, t.blockState(pipeline.Read[int32](w, protocol.VarInt)))
			}
			return nil
		}),
	)

	p.RegisterClientbound(packet.Play, pc_1_9.BlockAction, pc_1_8.BlockAction,
		pipeline.Map(protocol.Position),
		pipeline.Map(protocol.UnsignedByte),
		pipeline.Map(protocol.UnsignedByte),
		pipeline.Handler(func(w *pipeline.Wrapper) error {
			block, _ := t.blocks.Block(int(pipeline.Read[int32](w, protocol.VarInt)), 0)
			w.Write(protocol.VarInt, block)
			return nil
		}),
	)

	p.RegisterClientbound(packet.Play, pc_1_9.Effect, pc_1_8.Effect,
		pipeline.Map(protocol.Int),
		pipeline.Map(protocol.Position),
		pipeline.Handler(func(w *pipeline.Wrapper) error {
			data := pipeline.Read[int32](w, protocol.Int)
			if pipeline.Get[int32](w, protocol.Int, 0) == effectBlockBreak {
				id, meta := t.blocks.Block(int(data&0xFFF), int(data>>12&0xF))
				data = int32(id) | int32(meta)<<12
			}
			w.Write(protocol.Int, data)
			return nil
		}),
	)

	p.RegisterClientbound(packet.Play, pc_1_9.Particle, pc_1_8.Particle,
		pipeline.Handler(func(w *pipeline.Wrapper) error {
			if pipeline.Passthrough[int32](w, protocol.Int) > lastParticle {
				w.Cancel()
			}
			return nil
		}),
	)

	p.RegisterClientbound(packet.Play, pc_1_9.Map, pc_1_8.Map,
		pipeline.Map(protocol.VarInt),
		pipeline.Map(protocol.Byte),
		pipeline.Discard(protocol.Bool), // tracking position
	)

	p.RegisterClientbound(packet.Play, pc_1_9.UpdateBlockEntity, pc_1_8.UpdateBlockEntity,
		pipeline.Map(protocol.Position),
		pipeline.Map(protocol.UnsignedByte),
		pipeline.Handler(func(w *pipeline.Wrapper) error {
			switch pipeline.Get[uint8](w, protocol.UnsignedByte, 0) {
			case blockEntityStructure, blockEntityEndGateway:
				w.Cancel()
			case blockEntityUpdateSign:
				pos := pipeline.Get[int64](w, protocol.Position, 0)
				tag := pipeline.Read[*nbt.Compound](w, protocol.NBT)
				w.Cancel()
				if tag != nil {
					w.SendToClient(signPacket(pos, tag))
				}
			}
			return nil
		}),
	)

	p.RegisterServerbound(packet.Play, pc_1_8.PlayerDigging, pc_1_9.PlayerDigging,
		pipeline.MapTo(protocol.Byte, protocol.VarInt),
	)

	p.RegisterServerbound(packet.Play, pc_1_8.PlayerBlockPlacement, pc_1_9.PlayerBlockPlacement,
		pipeline.Handler(func(w *pipeline.Wrapper) error {
			pos := pipeline.Read[int64](w, protocol.Position)
			face := pipeline.Read[int8](w, protocol.Byte)
			w.Read(protocol.Item) // the server knows the held item
			if w.Err() != nil {
				return nil
			}
			if face == faceNone {
				w.ID = pc_1_9.UseItem
				w.ClearInput()
				w.Write(protocol.VarInt, pc_1_9.MainHand)
				return nil
			}
			w.Write(protocol.Position, pos)
			w.Write(protocol.VarInt, face)
			w.Write(protocol.VarInt, pc_1_9.MainHand)
			for range 3 {
				w.Write(protocol.UnsignedByte, uint8(pipeline.Read[int8](w, protocol.Byte)))
			}
			return nil
		}),
	)

	p.RegisterServerbound(packet.Play, pc_1_8.UpdateSignServerbound, pc_1_9.UpdateSign,
		pipeline.Map(protocol.Position),
		pipeline.Handler(func(w *pipeline.Wrapper) error {
			for range signLines {
				w.Write(protocol.String, t.chat.JSONToLegacy(pipeline.Read[string](w, protocol.String)))
			}
			return nil
		}),
	)
}

// blockState replaces a block state the client does not know.
func (t *translator) blockState(state int32) int32 {
	id, meta := int(state>>4), int(state&0xF)
	if id == 0 {
		return state
	}
	id, meta = t.blocks.Block(id, meta)
	return int32(id<<4 | meta&0xF)
}
