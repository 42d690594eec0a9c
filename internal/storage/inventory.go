package storage

// Window type ids of the 1.7 open window packet.
const (
	WindowPlayer          int16 = -1
	WindowChest           int16 = 0
	WindowCraftingTable   int16 = 1
	WindowFurnace         int16 = 2
	WindowDispenser       int16 = 3
	WindowEnchantingTable int16 = 4
	WindowBrewingStand    int16 = 5
	WindowVillager        int16 = 6
	WindowBeacon          int16 = 7
	WindowAnvil           int16 = 8
	WindowHopper          int16 = 9
	WindowDropper         int16 = 10
	WindowHorse           int16 = 11
)

var windowTypes = map[string]int16{
	"minecraft:chest":            WindowChest,
	"minecraft:container":        WindowChest,
	"minecraft:crafting_table":   WindowCraftingTable,
	"minecraft:furnace":          WindowFurnace,
	"minecraft:dispenser":        WindowDispenser,
	"minecraft:enchanting_table": WindowEnchantingTable,
	"minecraft:brewing_stand":    WindowBrewingStand,
	"minecraft:villager":         WindowVillager,
	"minecraft:beacon":           WindowBeacon,
	"minecraft:anvil":            WindowAnvil,
	"minecraft:hopper":           WindowHopper,
	"minecraft:dropper":          WindowDropper,
	"EntityHorse":                WindowHorse,
}

// InventoryType maps a 1.8 window type name to its 1.7 id.
func InventoryType(name string) (int16, bool) {
	id, ok := windowTypes[name]
	return id, ok
}

// FurnaceData accumulates the four furnace progress channels of one window.
type FurnaceData struct {
	FuelLeft    int16
	MaxFuel     int16
	Progress    int16
	MaxProgress int16
}

// Update records one 1.8 window property and returns the normalized 1.7
// property. ok is false while the matching maximum is still zero.
//
// Properties 0 and 1 (fuel left, max fuel) become bar 1; properties 2 and 3
// (cook progress, max progress) become bar 0. Values scale to 0..200.
func (f *FurnaceData) Update(property, value int16) (outProperty, outValue int16, ok bool) {
	switch property {
	case 0, 1:
		if property == 0 {
			f.FuelLeft = value
		} else {
			f.MaxFuel = value
		}
		if f.MaxFuel == 0 {
			return 0, 0, false
		}
		return 1, int16(200 * int32(f.FuelLeft) / int32(f.MaxFuel)), true
	case 2, 3:
		if property == 2 {
			f.Progress = value
		} else {
			f.MaxProgress = value
		}
		if f.MaxProgress == 0 {
			return 0, 0, false
		}
		return 0, int16(200 * int32(f.Progress) / int32(f.MaxProgress)), true
	}
	return property, value, true
}

// Inventory tracks open windows by id. An unknown id is the player's own
// inventory.
type Inventory struct {
	windows   map[uint8]int16
	furnaces  map[uint8]*FurnaceData
	anvilCost map[uint8]int16
}

func NewInventory() *Inventory {
	return &Inventory{
		windows:   make(map[uint8]int16),
		furnaces:  make(map[uint8]*FurnaceData),
		anvilCost: make(map[uint8]int16),
	}
}

func (inv *Inventory) Open(windowID uint8, windowType int16) {
	inv.Close(windowID)
	inv.windows[windowID] = windowType
}

// Close forgets the window and any auxiliary data kept for it.
func (inv *Inventory) Close(windowID uint8) {
	delete(inv.windows, windowID)
	delete(inv.furnaces, windowID)
	delete(inv.anvilCost, windowID)
}

func (inv *Inventory) TypeOf(windowID uint8) int16 {
	if t, ok := inv.windows[windowID]; ok {
		return t
	}
	return WindowPlayer
}

// Furnace returns the furnace channels of windowID, creating them on first use.
func (inv *Inventory) Furnace(windowID uint8) *FurnaceData {
	f, ok := inv.furnaces[windowID]
	if !ok {
		f = &FurnaceData{}
		inv.furnaces[windowID] = f
	}
	return f
}

func (inv *Inventory) SetAnvilCost(windowID uint8, cost int16) {
	inv.anvilCost[windowID] = cost
}

func (inv *Inventory) AnvilCost(windowID uint8) (int16, bool) {
	cost, ok := inv.anvilCost[windowID]
	return cost, ok
}
