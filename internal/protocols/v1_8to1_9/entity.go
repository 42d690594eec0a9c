package v1_8to1_9

import (
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/dxomg/ViaRewind/internal/packet"
	"github.com/dxomg/ViaRewind/internal/packet/pc_1_8"
	"github.com/dxomg/ViaRewind/internal/packet/pc_1_9"
	"github.com/dxomg/ViaRewind/internal/pipeline"
	"github.com/dxomg/ViaRewind/internal/storage"
	"github.com/dxomg/ViaRewind/pkg/protocol"
)

// Equipment slots. 1.9 numbers the hands first and has an off hand.
const (
	equipmentMainHand int32 = 0
	equipmentOffHand  int32 = 1
)

const (
	animationSwingMainHand uint8 = 0
	animationSwingOffHand  uint8 = 3
)

// attributeAttackSpeed is applied to the client's cooldown instead.
const attributeAttackSpeed = "generic.attackSpeed"

// newAttributes do not exist on 1.8.
var newAttributes = map[string]bool{
	attributeAttackSpeed:     true,
	"generic.armor":          true,
	"generic.armorToughness": true,
	"generic.luck":           true,
}

// Attribute modifier operations.
const (
	modifierAdd           int8 = 0
	modifierMultiplyBase  int8 = 1
	modifierMultiplyTotal int8 = 2
)

// effectShowParticles is the 1.9 effect flag 1.8 inverts into hide particles.
const effectShowParticles int8 = 0x02

func (t *translator) registerEntities(p *pipeline.Protocol) {
	p.RegisterClientbound(packet.Play, pc_1_9.SpawnObject, pc_1_8.SpawnObject,
		pipeline.Handler(t.spawnObject),
	)

	p.RegisterClientbound(packet.Play, pc_1_9.SpawnExperienceOrb, pc_1_8.SpawnExperienceOrb,
		pipeline.Handler(func(w *pipeline.Wrapper) error {
			id := pipeline.Passthrough[int32](w, protocol.VarInt)
			teleportFields(w, id, false)
			w.Conn().Entities().Spawn(id, storage.EntityType{})
			return nil
		}),
	)

	p.RegisterClientbound(packet.Play, pc_1_9.SpawnGlobalEntity, pc_1_8.SpawnGlobalEntity,
		pipeline.Map(protocol.VarInt),
		pipeline.Map(protocol.Byte),
		pipeline.Handler(func(w *pipeline.Wrapper) error {
			for range 3 {
				w.Write(protocol.Int, fixed(pipeline.Read[float64](w, protocol.Double)))
			}
			return nil
		}),
	)

	p.RegisterClientbound(packet.Play, pc_1_9.SpawnMob, pc_1_8.SpawnMob,
		pipeline.Handler(t.spawnMob),
	)

	p.RegisterClientbound(packet.Play, pc_1_9.SpawnPainting, pc_1_8.SpawnPainting,
		pipeline.Map(protocol.VarInt),
		pipeline.Discard(protocol.UUID),
		pipeline.Map(protocol.String),
		pipeline.Map(protocol.Position),
		pipeline.MapTo(protocol.Byte, protocol.UnsignedByte),
	)

	p.RegisterClientbound(packet.Play, pc_1_9.SpawnPlayer, pc_1_8.SpawnPlayer,
		pipeline.Handler(func(w *pipeline.Wrapper) error {
			id := pipeline.Passthrough[int32](w, protocol.VarInt)
			w.Passthrough(protocol.UUID)
			teleportFields(w, id, true)
			w.Write(protocol.Short, 0) // held item
			typ := storage.EntityType{Kind: storage.EntityPlayer}
			w.Conn().Entities().Spawn(id, typ)
			t.writeMetadata(w, typ)
			return nil
		}),
	)

	p.RegisterClientbound(packet.Play, pc_1_9.Animation, pc_1_8.Animation,
		pipeline.Map(protocol.VarInt),
		pipeline.Handler(func(w *pipeline.Wrapper) error {
			anim := pipeline.Read[uint8](w, protocol.UnsignedByte)
			if anim == animationSwingOffHand {
				anim = animationSwingMainHand
			}
			w.Write(protocol.UnsignedByte, anim)
			return nil
		}),
	)

	p.RegisterClientbound(packet.Play, pc_1_9.EntityRelativeMove, pc_1_8.EntityRelativeMove,
		pipeline.Handler(relativeMove(false)),
	)

	p.RegisterClientbound(packet.Play, pc_1_9.EntityLookMove, pc_1_8.EntityLookMove,
		pipeline.Handler(relativeMove(true)),
	)

	p.RegisterClientbound(packet.Play, pc_1_9.EntityLook, pc_1_8.EntityLook,
		pipeline.Map(protocol.VarInt),
		pipeline.Map(protocol.Byte),
		pipeline.Map(protocol.Byte),
		pipeline.Handler(func(w *pipeline.Wrapper) error {
			w.Conn().Entities().Look(
				pipeline.Get[int32](w, protocol.VarInt, 0),
				pipeline.Get[int8](w, protocol.Byte, 0),
				pipeline.Get[int8](w, protocol.Byte, 1),
			)
			return nil
		}),
	)

	p.RegisterClientbound(packet.Play, pc_1_9.EntityTeleport, pc_1_8.EntityTeleport,
		pipeline.Handler(func(w *pipeline.Wrapper) error {
			teleportFields(w, pipeline.Passthrough[int32](w, protocol.VarInt), true)
			return nil
		}),
	)

	p.RegisterClientbound(packet.Play, pc_1_9.DestroyEntities, pc_1_8.DestroyEntities,
		pipeline.Handler(func(w *pipeline.Wrapper) error {
			ids := pipeline.Passthrough[[]int32](w, protocol.VarIntArray)
			entities := w.Conn().Entities()
			for _, id := range ids {
				entities.Destroy(id)
			}
			return nil
		}),
	)

	p.RegisterClientbound(packet.Play, pc_1_9.EntityEquipment, pc_1_8.EntityEquipment,
		pipeline.Map(protocol.VarInt),
		pipeline.Handler(func(w *pipeline.Wrapper) error {
			slot := pipeline.Read[int32](w, protocol.VarInt)
			switch slot {
			case equipmentOffHand:
				w.Cancel()
				return nil
			case equipmentMainHand:
			default:
				slot-- // armor follows the single hand on 1.8
			}
			w.Write(protocol.Short, slot)
			w.Write(protocol.Item, t.items.ToClient(pipeline.Read[*protocol.ItemStack](w, protocol.Item)))
			return nil
		}),
	)

	p.RegisterClientbound(packet.Play, pc_1_9.EntityMetadata, pc_1_8.EntityMetadata,
		pipeline.Map(protocol.VarInt),
		pipeline.Handler(func(w *pipeline.Wrapper) error {
			typ, _ := w.Conn().Entities().Type(pipeline.Get[int32](w, protocol.VarInt, 0))
			t.writeMetadata(w, typ)
			return nil
		}),
	)

	p.RegisterClientbound(packet.Play, pc_1_9.AttachEntity, pc_1_8.AttachEntity,
		pipeline.Map(protocol.Int),
		pipeline.Map(protocol.Int),
		pipeline.Handler(func(w *pipeline.Wrapper) error {
			w.Write(protocol.Bool, true) // 1.9 attach is always a leash
			return nil
		}),
	)

	p.RegisterClientbound(packet.Play, pc_1_9.SetPassengers, pc_1_8.AttachEntity,
		pipeline.Handler(setPassengers),
	)

	p.RegisterClientbound(packet.Play, pc_1_9.EntityEffect, pc_1_8.EntityEffect,
		pipeline.Handler(entityEffect),
	)

	p.RegisterClientbound(packet.Play, pc_1_9.RemoveEntityEffect, pc_1_8.RemoveEntityEffect,
		pipeline.Map(protocol.VarInt),
		pipeline.Map(protocol.Byte),
		pipeline.Handler(func(w *pipeline.Wrapper) error {
			id := pipeline.Get[int32](w, protocol.VarInt, 0)
			effect := pipeline.Get[int8](w, protocol.Byte, 0)
			c := w.Conn()
			if effect == pc_1_9.EffectLevitation && c.Entities().IsClient(id) {
				c.Levitation().Stop()
			}
			if effect >= pc_1_9.EffectGlowing {
				w.Cancel()
			}
			return nil
		}),
	)

	p.RegisterClientbound(packet.Play, pc_1_9.EntityProperties, pc_1_8.EntityProperties,
		pipeline.Map(protocol.VarInt),
		pipeline.Handler(entityProperties),
	)

	p.RegisterClientbound(packet.Play, pc_1_9.SetCooldown, pc_1_8.SetSlot,
		pipeline.Handler(func(w *pipeline.Wrapper) error {
			item := pipeline.Read[int32](w, protocol.VarInt)
			ticks := pipeline.Read[int32](w, protocol.VarInt)
			if w.Err() != nil {
				return nil
			}
			w.Conn().Cooldown().SetItemCooldown(item, ticks, time.Now())
			w.Cancel()
			return nil
		}),
	)
}

func fixed(v float64) int32 {
	return int32(math.Floor(v * 32))
}

// teleportFields converts the double position and, with look, the look
// bytes of entity id, recording them in the tracker. A teleport's on ground
// flag stays unread and passes through.
func teleportFields(w *pipeline.Wrapper, id int32, look bool) {
	x := pipeline.Read[float64](w, protocol.Double)
	y := pipeline.Read[float64](w, protocol.Double)
	z := pipeline.Read[float64](w, protocol.Double)
	var yaw, pitch int8
	if look {
		yaw = pipeline.Read[int8](w, protocol.Byte)
		pitch = pipeline.Read[int8](w, protocol.Byte)
	}
	if w.Err() != nil {
		return
	}
	pos := w.Conn().Entities().Teleport(id, x, y, z, yaw, pitch)
	fx, fy, fz := pos.Fixed()
	w.Write(protocol.Int, fx)
	w.Write(protocol.Int, fy)
	w.Write(protocol.Int, fz)
	if look {
		w.Write(protocol.Byte, yaw)
		w.Write(protocol.Byte, pitch)
	}
}

// itemFrameFacing maps a 1.9 block face to the horizontal direction 1.8
// item frames use.
var itemFrameFacing = map[int32]int32{3: 0, 4: 1, 2: 2, 5: 3}

func (t *translator) spawnObject(w *pipeline.Wrapper) error {
	id := pipeline.Passthrough[int32](w, protocol.VarInt)
	w.Read(protocol.UUID)
	object := uint8(pipeline.Read[int8](w, protocol.Byte))
	x := pipeline.Read[float64](w, protocol.Double)
	y := pipeline.Read[float64](w, protocol.Double)
	z := pipeline.Read[float64](w, protocol.Double)
	pitch := pipeline.Read[int8](w, protocol.Byte)
	yaw := pipeline.Read[int8](w, protocol.Byte)
	data := pipeline.Read[int32](w, protocol.Int)
	if w.Err() != nil {
		return nil
	}
	if legacy, ok := legacyObjects[object]; ok {
		if legacy == 0 {
			w.Cancel()
			return nil
		}
		object = legacy
	}

	entities := w.Conn().Entities()
	entities.Spawn(id, storage.EntityType{Kind: storage.EntityObject, ID: object})
	pos := entities.Teleport(id, x, y, z, yaw, pitch)

	switch object {
	case objectItemFrame:
		data = itemFrameFacing[data]
	case objectFallingBlock:
		block, meta := t.blocks.Block(int(data&0xFFF), int(data>>12&0xF))
		data = int32(block) | int32(meta)<<12
	}

	fx, fy, fz := pos.Fixed()
	w.Write(protocol.Byte, object)
	w.Write(protocol.Int, fx)
	w.Write(protocol.Int, fy)
	w.Write(protocol.Int, fz)
	w.Write(protocol.Byte, pitch)
	w.Write(protocol.Byte, yaw)
	w.Write(protocol.Int, data)
	if data == 0 {
		w.ClearInput() // velocity
	}
	return nil
}

func (t *translator) spawnMob(w *pipeline.Wrapper) error {
	id := pipeline.Passthrough[int32](w, protocol.VarInt)
	w.Read(protocol.UUID)
	mob := pipeline.Passthrough[uint8](w, protocol.UnsignedByte)
	if w.Err() != nil {
		return nil
	}
	if mob == mobShulker {
		w.Cancel()
		return nil
	}
	typ := storage.EntityType{Kind: storage.EntityMob, ID: mob}
	w.Conn().Entities().Spawn(id, typ)
	teleportFields(w, id, true)
	w.Passthrough(protocol.Byte) // head pitch
	w.Passthrough(protocol.Short)
	w.Passthrough(protocol.Short)
	w.Passthrough(protocol.Short)
	t.writeMetadata(w, typ)
	return nil
}

// writeMetadata converts the trailing metadata list for an entity of typ.
func (t *translator) writeMetadata(w *pipeline.Wrapper, typ storage.EntityType) {
	list := pipeline.Read[[]protocol.Metadata1_9](w, protocol.MetadataList1_9)
	if w.Err() != nil {
		return
	}
	w.Write(protocol.MetadataList, t.metadataToClient(typ, list))
}

// relativeMove converts a 1/4096 block move to the 1/32 block move of 1.8.
// Moves 1.8 cannot express in a byte become teleports.
func relativeMove(look bool) func(w *pipeline.Wrapper) error {
	return func(w *pipeline.Wrapper) error {
		id := pipeline.Passthrough[int32](w, protocol.VarInt)
		dx := pipeline.Read[int16](w, protocol.Short)
		dy := pipeline.Read[int16](w, protocol.Short)
		dz := pipeline.Read[int16](w, protocol.Short)
		var yaw, pitch int8
		if look {
			yaw = pipeline.Read[int8](w, protocol.Byte)
			pitch = pipeline.Read[int8](w, protocol.Byte)
		}
		if w.Err() != nil {
			return nil
		}

		entities := w.Conn().Entities()
		from, to, ok := entities.Move(id, dx, dy, dz)
		if look {
			entities.Look(id, yaw, pitch)
		}
		var moves [3]int32
		if ok {
			fx0, fy0, fz0 := from.Fixed()
			fx1, fy1, fz1 := to.Fixed()
			moves = [3]int32{fx1 - fx0, fy1 - fy0, fz1 - fz0}
		} else {
			moves = [3]int32{int32(dx) / 128, int32(dy) / 128, int32(dz) / 128}
		}

		if !ok || !slices.ContainsFunc(moves[:], overflowsByte) {
			for _, d := range moves {
				w.Write(protocol.Byte, clampByte(d))
			}
			if look {
				w.Write(protocol.Byte, yaw)
				w.Write(protocol.Byte, pitch)
			}
			return nil
		}

		w.ID = pc_1_8.EntityTeleport
		fx, fy, fz := to.Fixed()
		w.Write(protocol.Int, fx)
		w.Write(protocol.Int, fy)
		w.Write(protocol.Int, fz)
		w.Write(protocol.Byte, to.Yaw)
		w.Write(protocol.Byte, to.Pitch)
		return nil
	}
}

func overflowsByte(d int32) bool {
	return d < math.MinInt8 || d > math.MaxInt8
}

func clampByte(d int32) int8 {
	return int8(max(math.MinInt8, min(math.MaxInt8, d)))
}

// setPassengers turns the passenger list of a vehicle into 1.8 attach
// packets. 1.8 shows a single rider per vehicle.
func setPassengers(w *pipeline.Wrapper) error {
	vehicle := pipeline.Read[int32](w, protocol.VarInt)
	riders := pipeline.Read[[]int32](w, protocol.VarIntArray)
	if w.Err() != nil {
		return nil
	}
	w.Cancel()
	old := w.Conn().Entities().SetPassengers(vehicle, riders)
	for _, id := range old {
		if !slices.Contains(riders, id) {
			w.SendToClient(pc_1_8.AttachEntityPacket{EntityID: id, VehicleID: -1})
		}
	}
	if len(riders) > 0 {
		w.SendToClient(pc_1_8.AttachEntityPacket{EntityID: riders[0], VehicleID: vehicle})
	}
	return nil
}

// entityEffect hides effects 1.8 lacks. Levitation of the client's own
// entity is emulated with velocity updates.
func entityEffect(w *pipeline.Wrapper) error {
	id := pipeline.Passthrough[int32](w, protocol.VarInt)
	effect := pipeline.Passthrough[int8](w, protocol.Byte)
	amplifier := pipeline.Passthrough[int8](w, protocol.Byte)
	w.Passthrough(protocol.VarInt) // duration
	flags := pipeline.Read[int8](w, protocol.Byte)
	if w.Err() != nil {
		return nil
	}
	c := w.Conn()
	if effect == pc_1_9.EffectLevitation && c.Entities().IsClient(id) {
		c.Levitation().Start(amplifier)
	}
	if effect >= pc_1_9.EffectGlowing {
		w.Cancel()
		return nil
	}
	w.Write(protocol.Bool, flags&effectShowParticles == 0)
	return nil
}

type modifier struct {
	id        uuid.UUID
	amount    float64
	operation int8
}

type attribute struct {
	key       string
	value     float64
	modifiers []modifier
}

// entityProperties drops attributes 1.8 does not know. The client's attack
// speed feeds the cooldown tracker.
func entityProperties(w *pipeline.Wrapper) error {
	n := pipeline.Read[int32](w, protocol.Int)
	if w.Err() != nil {
		return nil
	}
	if n < 0 || int(n) > w.Remaining() {
		return fmt.Errorf("%w: attribute count %d", pipeline.ErrMalformed, n)
	}
	attrs := make([]attribute, 0, n)
	for range n {
		a := attribute{
			key:   pipeline.Read[string](w, protocol.String),
			value: pipeline.Read[float64](w, protocol.Double),
		}
		count := pipeline.Read[int32](w, protocol.VarInt)
		if w.Err() != nil {
			return nil
		}
		if count < 0 || int(count) > w.Remaining() {
			return fmt.Errorf("%w: attribute %s modifier count %d", pipeline.ErrMalformed, a.key, count)
		}
		for range count {
			a.modifiers = append(a.modifiers, modifier{
				id:        pipeline.Read[uuid.UUID](w, protocol.UUID),
				amount:    pipeline.Read[float64](w, protocol.Double),
				operation: pipeline.Read[int8](w, protocol.Byte),
			})
		}
		attrs = append(attrs, a)
	}
	if w.Err() != nil {
		return nil
	}

	c := w.Conn()
	self := c.Entities().IsClient(pipeline.Get[int32](w, protocol.VarInt, 0))
	attrs = slices.DeleteFunc(attrs, func(a attribute) bool {
		if a.key == attributeAttackSpeed && self {
			c.Cooldown().SetAttackSpeed(a.total())
		}
		return newAttributes[a.key]
	})

	w.Write(protocol.Int, len(attrs))
	for _, a := range attrs {
		w.Write(protocol.String, a.key)
		w.Write(protocol.Double, a.value)
		w.Write(protocol.VarInt, len(a.modifiers))
		for _, m := range a.modifiers {
			w.Write(protocol.UUID, m.id)
			w.Write(protocol.Double, m.amount)
			w.Write(protocol.Byte, m.operation)
		}
	}
	return nil
}

// total applies the modifiers to the base value in operation order.
func (a attribute) total() float64 {
	v := a.value
	for _, m := range a.modifiers {
		if m.operation == modifierAdd {
			v += m.amount
		}
	}
	sum := v
	for _, m := range a.modifiers {
		if m.operation == modifierMultiplyBase {
			sum += v * m.amount
		}
	}
	for _, m := range a.modifiers {
		if m.operation == modifierMultiplyTotal {
			sum *= 1 + m.amount
		}
	}
	return sum
}
