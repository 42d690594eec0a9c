package v1_7to1_8

import (
	"slices"

	"github.com/dxomg/ViaRewind/internal/chat"
	"github.com/dxomg/ViaRewind/internal/packet"
	"github.com/dxomg/ViaRewind/internal/packet/pc_1_7"
	"github.com/dxomg/ViaRewind/internal/packet/pc_1_8"
	"github.com/dxomg/ViaRewind/internal/pipeline"
	"github.com/dxomg/ViaRewind/internal/storage"
	"github.com/dxomg/ViaRewind/pkg/protocol"
)

// The 1.8 enchanting table has a lapis slot at index 1 that 1.7 lacks.
const (
	enchantLapisSlot   int16 = 1
	enchantMaxProperty int16 = 2
)

const (
	playerWindow uint8 = 0
	titleColor   byte  = '8'
)

func (t *translator) registerInventory(p *pipeline.Protocol) {
	p.RegisterClientbound(packet.Play, pc_1_8.OpenWindow, pc_1_7.OpenWindow,
		pipeline.Handler(t.openWindow),
	)

	p.RegisterClientbound(packet.Play, pc_1_8.CloseWindow, pc_1_7.CloseWindow,
		pipeline.Handler(closeWindow),
	)

	p.RegisterClientbound(packet.Play, pc_1_8.SetSlot, pc_1_7.SetSlot,
		pipeline.MapTo(protocol.Byte, protocol.UnsignedByte),
		pipeline.Map(protocol.Short),
		pipeline.MapTo(protocol.Item, protocol.CompressedItem),
		pipeline.Handler(t.setSlot),
	)

	p.RegisterClientbound(packet.Play, pc_1_8.WindowItems, pc_1_7.WindowItems,
		pipeline.Map(protocol.UnsignedByte),
		pipeline.Handler(t.windowItems),
	)

	p.RegisterClientbound(packet.Play, pc_1_8.WindowProperty, pc_1_7.WindowProperty,
		pipeline.Map(protocol.UnsignedByte),
		pipeline.Map(protocol.Short),
		pipeline.Map(protocol.Short),
		pipeline.Handler(windowProperty),
	)

	p.RegisterServerbound(packet.Play, pc_1_7.CloseWindowServerbound, pc_1_8.CloseWindowServerbound,
		pipeline.Handler(closeWindow),
	)

	p.RegisterServerbound(packet.Play, pc_1_7.ClickWindow, pc_1_8.ClickWindow,
		pipeline.MapTo(protocol.Byte, protocol.UnsignedByte),
		pipeline.Map(protocol.Short),
		pipeline.Handler(func(w *pipeline.Wrapper) error {
			window := pipeline.Get[uint8](w, protocol.UnsignedByte, 0)
			slot := pipeline.Get[int16](w, protocol.Short, 0)
			if w.Conn().Inventory().TypeOf(window) == storage.WindowEnchantingTable && slot > 0 {
				w.Set(protocol.Short, 0, slot+1)
			}
			return nil
		}),
		pipeline.Map(protocol.Byte),  // button
		pipeline.Map(protocol.Short), // action number
		pipeline.Map(protocol.Byte),  // mode
		pipeline.Handler(t.itemToServer),
	)

	p.RegisterServerbound(packet.Play, pc_1_7.CreativeInventoryAction, pc_1_8.CreativeInventoryAction,
		pipeline.Map(protocol.Short),
		pipeline.Handler(t.itemToServer),
	)
}

func (t *translator) itemToServer(w *pipeline.Wrapper) error {
	it := pipeline.Read[*protocol.ItemStack](w, protocol.CompressedItem)
	w.Write(protocol.Item, t.items.ToServer(it))
	return nil
}

func (t *translator) openWindow(w *pipeline.Wrapper) error {
	window := pipeline.Passthrough[uint8](w, protocol.UnsignedByte)
	name := pipeline.Read[string](w, protocol.String)
	rawTitle := pipeline.Read[string](w, protocol.String)
	if w.Err() != nil {
		return nil
	}
	typ, ok := storage.InventoryType(name)
	if !ok {
		w.Conn().Logger().Debug("showing unknown window type as a chest", "type", name)
		typ = storage.WindowChest
	}
	w.Conn().Inventory().Open(window, typ)

	title := chat.RemoveUnusedColor(t.chat.JSONToLegacy(rawTitle), titleColor)
	w.Write(protocol.UnsignedByte, typ)
	w.Write(protocol.String, chat.Truncate(title, pc_1_7.MaxWindowTitle))
	w.Passthrough(protocol.UnsignedByte) // slots
	w.Write(protocol.Bool, true)         // use the provided title
	if typ == storage.WindowHorse {
		w.Passthrough(protocol.Int)
	}
	return nil
}

func closeWindow(w *pipeline.Wrapper) error {
	window := pipeline.Passthrough[uint8](w, protocol.UnsignedByte)
	if w.Err() == nil {
		w.Conn().Inventory().Close(window)
	}
	return nil
}

func (t *translator) setSlot(w *pipeline.Wrapper) error {
	window := pipeline.Get[uint8](w, protocol.UnsignedByte, 0)
	slot := pipeline.Get[int16](w, protocol.Short, 0)
	it := t.items.ToClient(pipeline.Get[*protocol.ItemStack](w, protocol.CompressedItem, 0))
	if w.Err() != nil {
		return nil
	}
	c := w.Conn()
	if c.Inventory().TypeOf(window) == storage.WindowEnchantingTable {
		switch {
		case slot == enchantLapisSlot:
			w.Cancel()
			return nil
		case slot > enchantLapisSlot:
			w.Set(protocol.Short, 0, slot-1)
		}
	}
	w.Set(protocol.CompressedItem, 0, it)

	if window != playerWindow {
		return nil
	}
	if armor, ok := storage.ArmorIndex(slot); ok {
		id, _ := c.Identity()
		c.Session().SetEquipment(id, armor, it)
		if c.Entities().IsSpectator() {
			w.Cancel()
		}
	}
	return nil
}

func (t *translator) windowItems(w *pipeline.Wrapper) error {
	window := pipeline.Get[uint8](w, protocol.UnsignedByte, 0)
	items := pipeline.Read[[]*protocol.ItemStack](w, protocol.ItemArray)
	if w.Err() != nil {
		return nil
	}
	c := w.Conn()
	if c.Inventory().TypeOf(window) == storage.WindowEnchantingTable && len(items) > int(enchantLapisSlot) {
		items = slices.Delete(items, int(enchantLapisSlot), int(enchantLapisSlot)+1)
	}
	for i, it := range items {
		items[i] = t.items.ToClient(it)
	}

	if window == playerWindow && len(items) > storage.LastArmorWindowSlot {
		id, _ := c.Identity()
		spectator := c.Entities().IsSpectator()
		for slot := storage.FirstArmorWindowSlot; slot <= storage.LastArmorWindowSlot; slot++ {
			armor, _ := storage.ArmorIndex(int16(slot))
			c.Session().SetEquipment(id, armor, items[slot])
			if spectator {
				items[slot] = nil
			}
		}
		if spectator {
			if skull := ownSkull(c); skull != nil {
				items[storage.FirstArmorWindowSlot] = skull
			}
		}
	}
	w.Write(protocol.CompressedItemArray, items)
	return nil
}

// windowProperty rescales furnace progress, hides enchanting table
// properties 1.7 lacks and remembers the anvil repair cost.
func windowProperty(w *pipeline.Wrapper) error {
	window := pipeline.Get[uint8](w, protocol.UnsignedByte, 0)
	property := pipeline.Get[int16](w, protocol.Short, 0)
	value := pipeline.Get[int16](w, protocol.Short, 1)
	if w.Err() != nil {
		return nil
	}
	inv := w.Conn().Inventory()
	switch inv.TypeOf(window) {
	case storage.WindowFurnace:
		bar, progress, ok := inv.Furnace(window).Update(property, value)
		if !ok {
			w.Cancel()
			return nil
		}
		w.Set(protocol.Short, 0, bar)
		w.Set(protocol.Short, 1, progress)
	case storage.WindowEnchantingTable:
		if property > enchantMaxProperty {
			w.Cancel()
		}
	case storage.WindowAnvil:
		inv.SetAnvilCost(window, value)
	}
	return nil
}
