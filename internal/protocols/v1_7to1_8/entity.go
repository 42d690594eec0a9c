package v1_7to1_8

import (
	"math"
	"slices"

	"github.com/google/uuid"

	"github.com/dxomg/ViaRewind/internal/packet"
	"github.com/dxomg/ViaRewind/internal/packet/pc_1_7"
	"github.com/dxomg/ViaRewind/internal/packet/pc_1_8"
	"github.com/dxomg/ViaRewind/internal/pipeline"
	"github.com/dxomg/ViaRewind/internal/storage"
	"github.com/dxomg/ViaRewind/pkg/protocol"
)

// Entity equipment slot of the helmet.
const equipmentHelmet int16 = 4

func (t *translator) registerEntities(p *pipeline.Protocol) {
	p.RegisterClientbound(packet.Play, pc_1_8.SpawnPlayer, pc_1_7.SpawnPlayer,
		pipeline.Map(protocol.VarInt),
		pipeline.Handler(spawnPlayerProfile),
		pipeline.Map(protocol.Int),
		pipeline.Map(protocol.Int),
		pipeline.Map(protocol.Int),
		pipeline.Map(protocol.Byte),
		pipeline.Map(protocol.Byte),
		pipeline.Map(protocol.Short),
		pipeline.Handler(t.metadata(protocol.VarInt)),
	)

	p.RegisterClientbound(packet.Play, pc_1_8.CollectItem, pc_1_7.CollectItem,
		pipeline.MapTo(protocol.VarInt, protocol.Int),
		pipeline.MapTo(protocol.VarInt, protocol.Int),
	)

	p.RegisterClientbound(packet.Play, pc_1_8.SpawnObject, pc_1_7.SpawnObject,
		pipeline.Handler(t.spawnObject),
	)

	p.RegisterClientbound(packet.Play, pc_1_8.SpawnMob, pc_1_7.SpawnMob,
		pipeline.Map(protocol.VarInt),
		pipeline.Handler(func(w *pipeline.Wrapper) error {
			mob := pipeline.Read[uint8](w, protocol.UnsignedByte)
			id := pipeline.Get[int32](w, protocol.VarInt, 0)
			w.Conn().Entities().Spawn(id, storage.EntityType{Kind: storage.EntityMob, ID: mob})
			if legacy, ok := legacyMobs[mob]; ok {
				mob = legacy
			}
			w.Write(protocol.UnsignedByte, mob)
			return nil
		}),
		pipeline.Map(protocol.Int),
		pipeline.Map(protocol.Int),
		pipeline.Map(protocol.Int),
		pipeline.Map(protocol.Byte),
		pipeline.Map(protocol.Byte),
		pipeline.Map(protocol.Byte),
		pipeline.Map(protocol.Short),
		pipeline.Map(protocol.Short),
		pipeline.Map(protocol.Short),
		pipeline.Handler(t.metadata(protocol.VarInt)),
	)

	p.RegisterClientbound(packet.Play, pc_1_8.SpawnPainting, pc_1_7.SpawnPainting,
		pipeline.Map(protocol.VarInt),
		pipeline.Map(protocol.String),
		pipeline.Handler(func(w *pipeline.Wrapper) error {
			spawnObjectType(w, 0)
			x, y, z := readPosition(w)
			w.Write(protocol.Int, x)
			w.Write(protocol.Int, y)
			w.Write(protocol.Int, z)
			return nil
		}),
		pipeline.MapTo(protocol.UnsignedByte, protocol.Int),
	)

	p.RegisterClientbound(packet.Play, pc_1_8.SpawnExperienceOrb, pc_1_7.SpawnExperienceOrb,
		pipeline.Map(protocol.VarInt),
		pipeline.Handler(func(w *pipeline.Wrapper) error {
			spawnObjectType(w, 0)
			return nil
		}),
	)

	p.RegisterClientbound(packet.Play, pc_1_8.EntityVelocity, pc_1_7.EntityVelocity,
		pipeline.MapTo(protocol.VarInt, protocol.Int),
	)

	p.RegisterClientbound(packet.Play, pc_1_8.DestroyEntities, pc_1_7.DestroyEntities,
		pipeline.Handler(func(w *pipeline.Wrapper) error {
			ids := pipeline.Read[[]int32](w, protocol.VarIntArray)
			w.Cancel()
			entities := w.Conn().Entities()
			for _, id := range ids {
				entities.Destroy(id)
			}
			for chunk := range slices.Chunk(ids, pc_1_7.MaxDestroyEntities) {
				w.SendToClient(pc_1_7.EncodeDestroyEntities(chunk))
			}
			return nil
		}),
	)

	p.RegisterClientbound(packet.Play, pc_1_8.Entity, pc_1_7.Entity,
		pipeline.MapTo(protocol.VarInt, protocol.Int),
	)

	p.RegisterClientbound(packet.Play, pc_1_8.EntityRelativeMove, pc_1_7.EntityRelativeMove,
		pipeline.MapTo(protocol.VarInt, protocol.Int),
		pipeline.Map(protocol.Byte),
		pipeline.Map(protocol.Byte),
		pipeline.Map(protocol.Byte),
		pipeline.Discard(protocol.Bool),
	)

	p.RegisterClientbound(packet.Play, pc_1_8.EntityLook, pc_1_7.EntityLook,
		pipeline.MapTo(protocol.VarInt, protocol.Int),
		pipeline.Map(protocol.Byte),
		pipeline.Map(protocol.Byte),
		pipeline.Discard(protocol.Bool),
	)

	p.RegisterClientbound(packet.Play, pc_1_8.EntityLookMove, pc_1_7.EntityLookMove,
		pipeline.MapTo(protocol.VarInt, protocol.Int),
		pipeline.Map(protocol.Byte),
		pipeline.Map(protocol.Byte),
		pipeline.Map(protocol.Byte),
		pipeline.Map(protocol.Byte),
		pipeline.Map(protocol.Byte),
		pipeline.Discard(protocol.Bool),
	)

	p.RegisterClientbound(packet.Play, pc_1_8.EntityTeleport, pc_1_7.EntityTeleport,
		pipeline.MapTo(protocol.VarInt, protocol.Int),
		pipeline.Map(protocol.Int),
		pipeline.Map(protocol.Int),
		pipeline.Map(protocol.Int),
		pipeline.Map(protocol.Byte),
		pipeline.Map(protocol.Byte),
		pipeline.Discard(protocol.Bool),
	)

	p.RegisterClientbound(packet.Play, pc_1_8.EntityHeadLook, pc_1_7.EntityHeadLook,
		pipeline.MapTo(protocol.VarInt, protocol.Int),
		pipeline.Map(protocol.Byte),
	)

	p.RegisterClientbound(packet.Play, pc_1_8.EntityEquipment, pc_1_7.EntityEquipment,
		pipeline.MapTo(protocol.VarInt, protocol.Int),
		pipeline.Map(protocol.Short),
		pipeline.MapTo(protocol.Item, protocol.CompressedItem),
		pipeline.Handler(t.entityEquipment),
	)

	p.RegisterClientbound(packet.Play, pc_1_8.EntityMetadata, pc_1_7.EntityMetadata,
		pipeline.MapTo(protocol.VarInt, protocol.Int),
		pipeline.Handler(t.metadata(protocol.Int)),
	)

	p.RegisterClientbound(packet.Play, pc_1_8.EntityEffect, pc_1_7.EntityEffect,
		pipeline.MapTo(protocol.VarInt, protocol.Int),
		pipeline.Map(protocol.Byte),
		pipeline.Map(protocol.Byte),
		pipeline.Handler(func(w *pipeline.Wrapper) error {
			duration := pipeline.Read[int32](w, protocol.VarInt)
			w.Write(protocol.Short, min(duration, math.MaxInt16))
			return nil
		}),
		pipeline.Discard(protocol.Bool), // hide particles
	)

	p.RegisterClientbound(packet.Play, pc_1_8.RemoveEntityEffect, pc_1_7.RemoveEntityEffect,
		pipeline.MapTo(protocol.VarInt, protocol.Int),
		pipeline.Map(protocol.Byte),
	)

	p.RegisterClientbound(packet.Play, pc_1_8.EntityProperties, pc_1_7.EntityProperties,
		pipeline.MapTo(protocol.VarInt, protocol.Int),
		pipeline.Handler(entityProperties),
	)
}

// spawnPlayerProfile writes the uuid as a string followed by the name and
// properties 1.7 expects inline, taken from the tab list profile.
func spawnPlayerProfile(w *pipeline.Wrapper) error {
	id := pipeline.Read[uuid.UUID](w, protocol.UUID)
	entityID := pipeline.Get[int32](w, protocol.VarInt, 0)
	if w.Err() != nil {
		return nil
	}
	c := w.Conn()
	c.Entities().Spawn(entityID, storage.EntityType{Kind: storage.EntityPlayer})

	var name string
	var props []storage.ProfileProperty
	if profile := c.Profiles().Get(id); profile != nil {
		name, props = profile.Name, profile.Properties
	}
	w.Write(protocol.String, id.String())
	w.Write(protocol.String, name)
	w.Write(protocol.VarInt, int32(len(props)))
	for _, prop := range props {
		w.Write(protocol.String, prop.Name)
		w.Write(protocol.String, prop.Value)
		w.Write(protocol.String, prop.Signature)
	}
	return nil
}

// spawnObjectType records the entity whose id is the first VarInt field.
func spawnObjectType(w *pipeline.Wrapper, object uint8) {
	id := pipeline.Get[int32](w, protocol.VarInt, 0)
	w.Conn().Entities().Spawn(id, storage.EntityType{Kind: storage.EntityObject, ID: object})
}

// spawnObject hides armor stands, moves item frames onto the block they
// hang from and re-encodes falling block data.
func (t *translator) spawnObject(w *pipeline.Wrapper) error {
	pipeline.Passthrough[int32](w, protocol.VarInt)
	object := uint8(pipeline.Passthrough[int8](w, protocol.Byte))
	x := pipeline.Read[int32](w, protocol.Int)
	y := pipeline.Read[int32](w, protocol.Int)
	z := pipeline.Read[int32](w, protocol.Int)
	pitch := pipeline.Read[int8](w, protocol.Byte)
	yaw := pipeline.Read[int8](w, protocol.Byte)
	data := pipeline.Read[int32](w, protocol.Int)
	if w.Err() != nil {
		return nil
	}
	if object == objectArmorStand {
		w.Cancel()
		return nil
	}
	spawnObjectType(w, object)

	switch object {
	case objectItemFrame:
		switch data {
		case 0:
			z += 32
			yaw = 0
		case 1:
			x -= 32
			yaw = 64
		case 2:
			z -= 32
			yaw = -128
		case 3:
			x += 32
			yaw = -64
		}
	case objectFallingBlock:
		id, meta := t.blocks.Block(int(data&0xFFF), int(data>>12&0xF))
		data = int32(id) | int32(meta)<<16
	}

	w.Write(protocol.Int, x)
	w.Write(protocol.Int, y)
	w.Write(protocol.Int, z)
	w.Write(protocol.Byte, pitch)
	w.Write(protocol.Byte, yaw)
	w.Write(protocol.Int, data)
	return nil
}

// metadata returns a step rewriting the trailing metadata list of an entity
// whose id is the first field of type idType.
func (t *translator) metadata(idType protocol.Type) func(w *pipeline.Wrapper) error {
	return func(w *pipeline.Wrapper) error {
		list := pipeline.Read[[]protocol.Metadata](w, protocol.MetadataList)
		id := pipeline.Get[int32](w, idType, 0)
		if w.Err() != nil {
			return nil
		}
		typ, _ := w.Conn().Entities().Type(id)
		w.Write(protocol.CompressedMetadataList, t.metadataToClient(typ, list))
		return nil
	}
}

// entityEquipment rewrites the item and hides the client's own equipment
// while it spectates.
func (t *translator) entityEquipment(w *pipeline.Wrapper) error {
	id := pipeline.Get[int32](w, protocol.Int, 0)
	slot := pipeline.Get[int16](w, protocol.Short, 0)
	it := t.items.ToClient(pipeline.Get[*protocol.ItemStack](w, protocol.CompressedItem, 0))
	c := w.Conn()
	if entities := c.Entities(); entities.IsClient(id) && entities.IsSpectator() {
		it = nil
		if slot == equipmentHelmet {
			it = ownSkull(c)
		}
	}
	w.Set(protocol.CompressedItem, 0, it)
	return nil
}

func entityProperties(w *pipeline.Wrapper) error {
	n := pipeline.Passthrough[int32](w, protocol.Int)
	for i := int32(0); i < n && w.Err() == nil; i++ {
		w.Passthrough(protocol.String) // key
		w.Passthrough(protocol.Double) // value
		modifiers := pipeline.Read[int32](w, protocol.VarInt)
		w.Write(protocol.Short, modifiers)
		for j := int32(0); j < modifiers && w.Err() == nil; j++ {
			w.Passthrough(protocol.UUID)
			w.Passthrough(protocol.Double)
			w.Passthrough(protocol.Byte)
		}
	}
	return nil
}
