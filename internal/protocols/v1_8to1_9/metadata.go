package v1_8to1_9

import (
	"slices"

	"github.com/google/uuid"

	"github.com/dxomg/ViaRewind/internal/storage"
	"github.com/dxomg/ViaRewind/pkg/protocol"
)

// Object and mob type ids with special handling.
const (
	objectBoat            uint8 = 1
	objectItem            uint8 = 2
	objectAreaEffectCloud uint8 = 3
	objectMinecart        uint8 = 10
	objectArrow           uint8 = 60
	objectWitherSkull     uint8 = 66
	objectShulkerBullet   uint8 = 67
	objectFallingBlock    uint8 = 70
	objectItemFrame       uint8 = 71
	objectFirework        uint8 = 76
	objectArmorStand      uint8 = 78
	objectSpectralArrow   uint8 = 91
	objectTippedArrow     uint8 = 92
	objectDragonFireball  uint8 = 93

	mobCreeper    uint8 = 50
	mobSkeleton   uint8 = 51
	mobSpider     uint8 = 52
	mobZombie     uint8 = 54
	mobSlime      uint8 = 55
	mobGhast      uint8 = 56
	mobPigZombie  uint8 = 57
	mobEnderman   uint8 = 58
	mobCaveSpider uint8 = 59
	mobBlaze      uint8 = 61
	mobMagmaCube  uint8 = 62
	mobWither     uint8 = 64
	mobBat        uint8 = 65
	mobWitch      uint8 = 66
	mobGuardian   uint8 = 68
	mobShulker    uint8 = 69
	mobPig        uint8 = 90
	mobSheep      uint8 = 91
	mobCow        uint8 = 92
	mobChicken    uint8 = 93
	mobWolf       uint8 = 95
	mobMooshroom  uint8 = 96
	mobOcelot     uint8 = 98
	mobIronGolem  uint8 = 99
	mobHorse      uint8 = 100
	mobRabbit     uint8 = 101
	mobVillager   uint8 = 120
)

// legacyObjects replaces objects added in 1.9. Objects mapped to zero are
// not shown.
var legacyObjects = map[uint8]uint8{
	objectSpectralArrow:   objectArrow,
	objectTippedArrow:     objectArrow,
	objectAreaEffectCloud: 0,
	objectShulkerBullet:   0,
	objectDragonFireball:  0,
}

// metaRule converts one 1.9 metadata value to zero or more 1.8 entries.
type metaRule func(t *translator, v any) []protocol.Metadata

// legacyTypes maps a 1.8 metadata type to the field type of its value.
var legacyTypes = map[protocol.MetaType]protocol.Type{
	protocol.MetaByte:   protocol.Byte,
	protocol.MetaShort:  protocol.Short,
	protocol.MetaInt:    protocol.Int,
	protocol.MetaFloat:  protocol.Float,
	protocol.MetaString: protocol.String,
}

// to moves a value to index, converting it to typ.
func to(index byte, typ protocol.MetaType) metaRule {
	return func(t *translator, v any) []protocol.Metadata {
		switch typ {
		case protocol.MetaSlot:
			it, ok := v.(*protocol.ItemStack)
			if !ok {
				return nil
			}
			v = t.items.ToClient(it.Clone())
		case protocol.MetaRotation, protocol.MetaPosition:
		default:
			cv, err := protocol.Convert(v, legacyTypes[typ])
			if err != nil {
				return nil
			}
			v = cv
		}
		return []protocol.Metadata{{Index: index, Type: typ, Value: v}}
	}
}

// toWith applies conv before moving the value.
func toWith(index byte, typ protocol.MetaType, conv func(any) any) metaRule {
	next := to(index, typ)
	return func(t *translator, v any) []protocol.Metadata {
		return next(t, conv(v))
	}
}

// Entity flags 1.8 knows; glowing and elytra flight are newer.
const legacyEntityFlags int8 = 0x3F

func entityFlags(v any) any {
	if f, ok := v.(int8); ok {
		return f & legacyEntityFlags
	}
	return v
}

// baby turns the 1.9 child flag into the 1.8 age byte.
func baby(v any) any {
	if b, ok := v.(bool); ok && b {
		return int8(-1)
	}
	return int8(0)
}

func nonZero(v any) any {
	if n, ok := v.(int32); ok && n != 0 {
		return int8(1)
	}
	return int8(0)
}

// ownerName renders an optional owner uuid as the string 1.8 stores.
func ownerName(v any) any {
	if id, ok := v.(*uuid.UUID); ok && id != nil {
		return id.String()
	}
	return ""
}

// carriedBlock splits an enderman's optional block state into the 1.8 id
// and data entries.
func carriedBlock(t *translator, v any) []protocol.Metadata {
	state, _ := v.(int32)
	id, meta := int(state>>4), int(state&0xF)
	if id != 0 {
		id, meta = t.blocks.Block(id, meta)
	}
	return []protocol.Metadata{
		{Index: 16, Type: protocol.MetaShort, Value: int16(id)},
		{Index: 17, Type: protocol.MetaByte, Value: int8(meta)},
	}
}

type metaRules map[byte]metaRule

var (
	entityMeta = metaRules{
		0: toWith(0, protocol.MetaByte, entityFlags),
		1: to(1, protocol.MetaShort), // air
		2: to(2, protocol.MetaString),
		3: to(3, protocol.MetaByte),
		4: to(4, protocol.MetaByte), // silent
	}
	livingMeta = metaRules{
		6: to(6, protocol.MetaFloat), // health
		7: to(7, protocol.MetaInt),   // potion color
		8: to(8, protocol.MetaByte),  // ambient potion
		9: to(9, protocol.MetaByte),  // arrows
	}
	insentientMeta = metaRules{10: to(15, protocol.MetaByte)}
	ageableMeta    = metaRules{11: toWith(12, protocol.MetaByte, baby)}
	tameableMeta   = metaRules{
		12: to(16, protocol.MetaByte),
		13: toWith(17, protocol.MetaString, ownerName),
	}
	playerMeta = metaRules{
		10: to(17, protocol.MetaFloat), // absorption
		11: to(18, protocol.MetaInt),   // score
		12: to(10, protocol.MetaByte),  // skin parts
	}
	armorStandMeta = metaRules{
		10: to(10, protocol.MetaByte),
		11: to(11, protocol.MetaRotation),
		12: to(12, protocol.MetaRotation),
		13: to(13, protocol.MetaRotation),
		14: to(14, protocol.MetaRotation),
		15: to(15, protocol.MetaRotation),
		16: to(16, protocol.MetaRotation),
	}
	zombieMeta = metaRules{
		11: toWith(12, protocol.MetaByte, baby),
		12: toWith(13, protocol.MetaByte, nonZero), // villager
		13: to(14, protocol.MetaByte),              // converting
	}
	slimeMeta    = metaRules{11: to(16, protocol.MetaByte)}
	spiderMeta   = metaRules{11: to(16, protocol.MetaByte)}
	minecartMeta = metaRules{
		5:  to(17, protocol.MetaInt),
		6:  to(18, protocol.MetaInt),
		7:  to(19, protocol.MetaFloat),
		8:  to(20, protocol.MetaInt),
		9:  to(21, protocol.MetaInt),
		10: to(22, protocol.MetaByte),
		11: to(16, protocol.MetaByte), // furnace powered
	}
	arrowMeta = metaRules{5: to(16, protocol.MetaByte)}
)

var mobMeta = map[uint8][]metaRules{
	mobCreeper: {{
		11: to(16, protocol.MetaByte),
		12: to(17, protocol.MetaByte),
	}},
	mobSkeleton:   {{11: to(13, protocol.MetaByte)}},
	mobSpider:     {spiderMeta},
	mobCaveSpider: {spiderMeta},
	mobZombie:     {zombieMeta},
	mobPigZombie:  {zombieMeta},
	mobSlime:      {slimeMeta},
	mobMagmaCube:  {slimeMeta},
	mobGhast:      {{11: to(16, protocol.MetaByte)}},
	mobEnderman: {{
		11: carriedBlock,
		12: to(18, protocol.MetaByte),
	}},
	mobBlaze: {{11: to(16, protocol.MetaByte)}},
	mobWither: {{
		11: to(17, protocol.MetaInt),
		12: to(18, protocol.MetaInt),
		13: to(19, protocol.MetaInt),
		14: to(20, protocol.MetaInt),
	}},
	mobBat:   {{11: to(16, protocol.MetaByte)}},
	mobWitch: {{11: to(21, protocol.MetaByte)}},
	mobGuardian: {{
		11: to(16, protocol.MetaInt),
		12: to(17, protocol.MetaInt),
	}},
	mobIronGolem: {{11: to(16, protocol.MetaByte)}},
	mobPig:       {ageableMeta, {12: to(16, protocol.MetaByte)}},
	mobSheep:     {ageableMeta, {12: to(16, protocol.MetaByte)}},
	mobCow:       {ageableMeta},
	mobChicken:   {ageableMeta},
	mobMooshroom: {ageableMeta},
	mobWolf: {ageableMeta, tameableMeta, {
		14: to(18, protocol.MetaFloat),
		15: to(19, protocol.MetaByte),
		16: to(20, protocol.MetaByte),
	}},
	mobOcelot: {ageableMeta, tameableMeta, {14: to(18, protocol.MetaByte)}},
	mobHorse: {ageableMeta, {
		12: to(16, protocol.MetaInt),
		13: to(19, protocol.MetaByte),
		14: to(20, protocol.MetaInt),
		15: toWith(21, protocol.MetaString, ownerName),
		16: to(22, protocol.MetaInt),
	}},
	mobRabbit:   {ageableMeta, {12: to(18, protocol.MetaByte)}},
	mobVillager: {ageableMeta, {12: to(16, protocol.MetaInt)}},
}

var objectMeta = map[uint8][]metaRules{
	objectBoat: {{
		5: to(17, protocol.MetaInt),
		6: to(18, protocol.MetaInt),
		7: to(19, protocol.MetaFloat),
	}},
	objectItem:        {{5: to(10, protocol.MetaSlot)}},
	objectMinecart:    {minecartMeta},
	objectArrow:       {arrowMeta},
	objectWitherSkull: {{5: to(10, protocol.MetaByte)}},
	objectItemFrame: {{
		5: to(8, protocol.MetaSlot),
		6: to(9, protocol.MetaByte),
	}},
	objectFirework:   {{5: to(8, protocol.MetaSlot)}},
	objectArmorStand: {livingMeta, armorStandMeta},
}

// rulesFor returns the rule sets of typ, most specific first.
func rulesFor(typ storage.EntityType) []metaRules {
	switch typ.Kind {
	case storage.EntityPlayer:
		return []metaRules{playerMeta, livingMeta, entityMeta}
	case storage.EntityMob:
		return slices.Concat(mobMeta[typ.ID], []metaRules{insentientMeta, livingMeta, entityMeta})
	case storage.EntityObject:
		return slices.Concat(objectMeta[typ.ID], []metaRules{entityMeta})
	}
	return []metaRules{entityMeta}
}

// metadataToClient rewrites a 1.9 metadata list for an entity of type typ.
// Entries without a 1.8 equivalent are dropped.
func (t *translator) metadataToClient(typ storage.EntityType, list []protocol.Metadata1_9) []protocol.Metadata {
	sets := rulesFor(typ)
	out := make([]protocol.Metadata, 0, len(list))
	for _, m := range list {
		for _, rules := range sets {
			if rule, ok := rules[m.Index]; ok {
				out = append(out, rule(t, m.Value)...)
				break
			}
		}
	}
	return out
}
