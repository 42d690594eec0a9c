package storage

import "math"

// Entities tracks the client's own entity. Spectator mode is emulated for
// clients that predate it.
type Entities struct {
	clientID    int32
	hasClientID bool
	spectator   bool
	types       map[int32]EntityType
	positions   map[int32]*EntityPosition
	passengers  map[int32][]int32
}

func NewEntities() *Entities {
	return &Entities{
		types:      make(map[int32]EntityType),
		positions:  make(map[int32]*EntityPosition),
		passengers: make(map[int32][]int32),
	}
}

// ClientEntityID returns the id assigned at join game, or -1 before that.
func (e *Entities) ClientEntityID() int32 {
	if !e.hasClientID {
		return -1
	}
	return e.clientID
}

func (e *Entities) SetClientEntityID(id int32) {
	e.clientID = id
	e.hasClientID = true
}

// IsClient reports whether id is the client's own entity.
func (e *Entities) IsClient(id int32) bool {
	return e.hasClientID && e.clientID == id
}

func (e *Entities) IsSpectator() bool {
	return e.spectator
}

func (e *Entities) SetSpectator(v bool) {
	e.spectator = v
}

// EntityKind is the spawn packet family an entity came from.
type EntityKind uint8

const (
	EntityUnknown EntityKind = iota
	EntityObject
	EntityMob
	EntityPlayer
)

// EntityType identifies a spawned entity; ID is the object or mob type.
type EntityType struct {
	Kind EntityKind
	ID   uint8
}

// Living reports whether the entity carries living entity metadata.
func (t EntityType) Living() bool {
	return t.Kind == EntityMob || t.Kind == EntityPlayer
}

// Spawn records the type of a spawned entity.
func (e *Entities) Spawn(id int32, t EntityType) {
	e.types[id] = t
}

// Type returns the recorded type of id. The client's own entity is a player.
func (e *Entities) Type(id int32) (EntityType, bool) {
	if e.IsClient(id) {
		return EntityType{Kind: EntityPlayer}, true
	}
	t, ok := e.types[id]
	return t, ok
}

func (e *Entities) Destroy(id int32) {
	delete(e.types, id)
	delete(e.positions, id)
	delete(e.passengers, id)
}

// Clear forgets every spawned entity, as a respawn does.
func (e *Entities) Clear() {
	clear(e.types)
	clear(e.positions)
	clear(e.passengers)
}

// PositionScale is the number of position units per block. 1.9 relative
// moves are expressed in these units.
const PositionScale = 4096

// EntityPosition is an entity's last known position in 1/4096 blocks and
// its look as 1/256 turns.
type EntityPosition struct {
	X, Y, Z    int64
	Yaw, Pitch int8
}

// Fixed returns the position in the 1/32 block fixed point of 1.8 packets.
func (p EntityPosition) Fixed() (x, y, z int32) {
	return int32(p.X >> 7), int32(p.Y >> 7), int32(p.Z >> 7)
}

func scaled(v float64) int64 {
	return int64(math.Floor(v * PositionScale))
}

// Teleport records an absolute position.
func (e *Entities) Teleport(id int32, x, y, z float64, yaw, pitch int8) EntityPosition {
	p := &EntityPosition{X: scaled(x), Y: scaled(y), Z: scaled(z), Yaw: yaw, Pitch: pitch}
	e.positions[id] = p
	return *p
}

// Position returns the last recorded position of id.
func (e *Entities) Position(id int32) (EntityPosition, bool) {
	p, ok := e.positions[id]
	if !ok {
		return EntityPosition{}, false
	}
	return *p, true
}

// Move applies a relative move to a tracked entity and returns the old and
// new positions. ok is false when id was never positioned.
func (e *Entities) Move(id int32, dx, dy, dz int16) (from, to EntityPosition, ok bool) {
	p, ok := e.positions[id]
	if !ok {
		return EntityPosition{}, EntityPosition{}, false
	}
	from = *p
	p.X += int64(dx)
	p.Y += int64(dy)
	p.Z += int64(dz)
	return from, *p, true
}

// Look records the look of a tracked entity.
func (e *Entities) Look(id int32, yaw, pitch int8) {
	if p, ok := e.positions[id]; ok {
		p.Yaw, p.Pitch = yaw, pitch
	}
}

// SetPassengers replaces the riders of vehicle and returns the previous ones.
func (e *Entities) SetPassengers(vehicle int32, riders []int32) []int32 {
	old := e.passengers[vehicle]
	if len(riders) == 0 {
		delete(e.passengers, vehicle)
	} else {
		e.passengers[vehicle] = riders
	}
	return old
}
