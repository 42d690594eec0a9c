package v1_8to1_9

import (
	"github.com/dxomg/ViaRewind/internal/packet"
	"github.com/dxomg/ViaRewind/internal/packet/pc_1_8"
	"github.com/dxomg/ViaRewind/internal/packet/pc_1_9"
	"github.com/dxomg/ViaRewind/internal/pipeline"
	"github.com/dxomg/ViaRewind/pkg/protocol"
)

const playerWindow uint8 = 0

func (t *translator) registerInventory(p *pipeline.Protocol) {
	p.RegisterClientbound(packet.Play, pc_1_9.WindowItems, pc_1_8.WindowItems,
		pipeline.Map(protocol.UnsignedByte),
		pipeline.Handler(func(w *pipeline.Wrapper) error {
			items := pipeline.Read[[]*protocol.ItemStack](w, protocol.ItemArray)
			if w.Err() != nil {
				return nil
			}
			if pipeline.Get[uint8](w, protocol.UnsignedByte, 0) == playerWindow && len(items) > int(pc_1_9.OffHandSlot) {
				items = items[:pc_1_9.OffHandSlot]
			}
			for i, it := range items {
				items[i] = t.items.ToClient(it)
			}
			w.Write(protocol.ItemArray, items)
			return nil
		}),
	)

	p.RegisterClientbound(packet.Play, pc_1_9.SetSlot, pc_1_8.SetSlot,
		pipeline.Map(protocol.Byte),
		pipeline.Map(protocol.Short),
		pipeline.Handler(func(w *pipeline.Wrapper) error {
			window := uint8(pipeline.Get[int8](w, protocol.Byte, 0))
			if window == playerWindow && pipeline.Get[int16](w, protocol.Short, 0) == pc_1_9.OffHandSlot {
				w.Cancel()
				return nil
			}
			w.Write(protocol.Item, t.items.ToClient(pipeline.Read[*protocol.ItemStack](w, protocol.Item)))
			return nil
		}),
	)

	p.RegisterServerbound(packet.Play, pc_1_8.ClickWindow, pc_1_9.ClickWindow,
		pipeline.Map(protocol.UnsignedByte),
		pipeline.Map(protocol.Short), // slot
		pipeline.Map(protocol.Byte),  // button
		pipeline.Map(protocol.Short), // action number
		pipeline.MapTo(protocol.Byte, protocol.VarInt),
		pipeline.Handler(t.itemToServer),
	)

	p.RegisterServerbound(packet.Play, pc_1_8.CreativeInventoryAction, pc_1_9.CreativeInventoryAction,
		pipeline.Map(protocol.Short),
		pipeline.Handler(t.itemToServer),
	)
}

func (t *translator) itemToServer(w *pipeline.Wrapper) error {
	w.Write(protocol.Item, t.items.ToServer(pipeline.Read[*protocol.ItemStack](w, protocol.Item)))
	return nil
}
