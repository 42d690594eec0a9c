package v1_7to1_8

import (
	"github.com/dxomg/ViaRewind/internal/storage"
	"github.com/dxomg/ViaRewind/pkg/protocol"
)

// Object and mob type ids with special handling.
const (
	objectFallingBlock uint8 = 70
	objectItemFrame    uint8 = 71
	objectArmorStand   uint8 = 78

	mobEnderman   uint8 = 58
	mobSilverfish uint8 = 60
	mobEndermite  uint8 = 67
	mobGuardian   uint8 = 68
	mobChicken    uint8 = 93
	mobSquid      uint8 = 94
	mobRabbit     uint8 = 101
)

// legacyMobs replaces mobs added in 1.8 with a look-alike.
var legacyMobs = map[uint8]uint8{
	mobEndermite: mobSilverfish,
	mobGuardian:  mobSquid,
	mobRabbit:    mobChicken,
}

// ageable mobs carry their age at index 12, a byte in 1.8 and an int in 1.7.
var ageable = map[uint8]bool{
	90: true, 91: true, 92: true, 93: true, 95: true,
	96: true, 98: true, 100: true, 101: true, 120: true,
}

// Metadata indices moved or removed between the versions.
const (
	metaCustomName     = 2
	metaShowCustomName = 3
	metaSilent         = 4
	metaAge            = 12
	metaNoAI           = 15
	metaSkinParts      = 10
	metaCarriedBlock   = 16
	metaFrameItem      = 8
	metaFrameRotation  = 9

	legacyNameOffset    = 8
	legacyFrameItem     = 2
	legacyFrameRotation = 3

	// replacedTypeSpecific is the first index whose meaning depends on the
	// mob type; replaced mobs drop everything from there on.
	replacedTypeSpecific = 16
)

// metadataToClient rewrites a 1.8 metadata list for an entity of type typ.
// Entries without a 1.7 equivalent are dropped.
func (t *translator) metadataToClient(typ storage.EntityType, list []protocol.Metadata) []protocol.Metadata {
	out := make([]protocol.Metadata, 0, len(list))
	for _, m := range list {
		if m.Type == protocol.MetaRotation || m.Index == metaSilent {
			continue
		}
		if m.Type == protocol.MetaSlot {
			it, _ := m.Value.(*protocol.ItemStack)
			m.Value = t.items.ToClient(it)
		}
		var keep bool
		switch typ.Kind {
		case storage.EntityMob:
			m, keep = mobMetadata(typ.ID, m)
		case storage.EntityPlayer:
			keep = m.Index != metaCustomName && m.Index != metaShowCustomName && m.Index != metaSkinParts
		default:
			m, keep = objectMetadata(typ.ID, m)
		}
		if keep {
			out = append(out, m)
		}
	}
	return out
}

func mobMetadata(mob uint8, m protocol.Metadata) (protocol.Metadata, bool) {
	switch m.Index {
	case metaCustomName, metaShowCustomName:
		m.Index += legacyNameOffset
		return m, true
	case metaNoAI:
		return m, false
	}
	if _, replaced := legacyMobs[mob]; replaced && m.Index >= replacedTypeSpecific {
		return m, false
	}
	if m.Index == metaAge && ageable[mob] {
		if v, ok := m.Value.(int8); ok {
			m.Type, m.Value = protocol.MetaInt, int32(v)
		}
	}
	if m.Index == metaCarriedBlock && mob == mobEnderman {
		if v, ok := m.Value.(int16); ok {
			m.Type, m.Value = protocol.MetaByte, int8(v)
		}
	}
	return m, true
}

func objectMetadata(object uint8, m protocol.Metadata) (protocol.Metadata, bool) {
	switch m.Index {
	case metaCustomName, metaShowCustomName:
		return m, false
	}
	if object == objectItemFrame {
		switch m.Index {
		case metaFrameItem:
			m.Index = legacyFrameItem
		case metaFrameRotation:
			m.Index = legacyFrameRotation
		}
	}
	return m, true
}
