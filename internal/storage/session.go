package storage

import (
	"math"

	"github.com/google/uuid"

	"github.com/dxomg/ViaRewind/pkg/protocol"
)

// Armor slots, indexed as 8 minus the player window slot.
const (
	ArmorBoots = iota
	ArmorLeggings
	ArmorChestplate
	ArmorHelmet

	armorSlots
)

// Player window slots 5 to 8 hold the armor.
const (
	FirstArmorWindowSlot = 5
	LastArmorWindowSlot  = 8
)

// ArmorIndex converts a player window slot to an armor index.
func ArmorIndex(windowSlot int16) (int, bool) {
	if windowSlot < FirstArmorWindowSlot || windowSlot > LastArmorWindowSlot {
		return 0, false
	}
	return int(LastArmorWindowSlot - windowSlot), true
}

// Dimensions.
const (
	DimensionNether    int32 = -1
	DimensionOverworld int32 = 0
	DimensionEnd       int32 = 1
)

// Position is the player's feet position and look.
type Position struct {
	X, Y, Z    float64
	Yaw, Pitch float32
	OnGround   bool
}

// BlockX and friends return the block coordinates containing the position.
func (p Position) BlockX() int { return int(math.Floor(p.X)) }
func (p Position) BlockY() int { return int(math.Floor(p.Y)) }
func (p Position) BlockZ() int { return int(math.Floor(p.Z)) }

// Session holds per-player equipment snapshots and the client's last known
// position.
type Session struct {
	equipment map[uuid.UUID]*[armorSlots]*protocol.ItemStack
	pos       Position
	havePos   bool
	heldSlot  int8
	dimension int32
}

func NewSession() *Session {
	return &Session{equipment: make(map[uuid.UUID]*[armorSlots]*protocol.ItemStack)}
}

func (s *Session) SetEquipment(player uuid.UUID, armor int, item *protocol.ItemStack) {
	if armor < 0 || armor >= armorSlots {
		return
	}
	eq, ok := s.equipment[player]
	if !ok {
		eq = new([armorSlots]*protocol.ItemStack)
		s.equipment[player] = eq
	}
	eq[armor] = item.Clone()
}

// Equipment returns a copy of the stored armor item, or nil.
func (s *Session) Equipment(player uuid.UUID, armor int) *protocol.ItemStack {
	if armor < 0 || armor >= armorSlots {
		return nil
	}
	eq, ok := s.equipment[player]
	if !ok {
		return nil
	}
	return eq[armor].Clone()
}

// Position returns the last known position and whether one was seen.
func (s *Session) Position() (Position, bool) {
	return s.pos, s.havePos
}

func (s *Session) SetPosition(x, y, z float64) {
	s.pos.X, s.pos.Y, s.pos.Z = x, y, z
	s.havePos = true
}

func (s *Session) SetLook(yaw, pitch float32) {
	s.pos.Yaw, s.pos.Pitch = yaw, pitch
}

func (s *Session) SetOnGround(v bool) {
	s.pos.OnGround = v
}

func (s *Session) HeldSlot() int8 { return s.heldSlot }

func (s *Session) SetHeldSlot(slot int8) { s.heldSlot = slot }

// Dimension is the dimension of the current world as sent at join game or
// respawn.
func (s *Session) Dimension() int32 { return s.dimension }

func (s *Session) SetDimension(d int32) { s.dimension = d }

// HasSkyLight reports whether chunks of the current dimension carry sky
// light. Only the overworld does.
func (s *Session) HasSkyLight() bool { return s.dimension == DimensionOverworld }
