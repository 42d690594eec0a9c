package cooldown

import (
	"math"

	"github.com/dxomg/ViaRewind/internal/packet/pc_1_8"
	"github.com/dxomg/ViaRewind/internal/storage"
	"github.com/dxomg/ViaRewind/internal/user"
	"github.com/dxomg/ViaRewind/pkg/protocol"
)

const (
	// BossBarEntityID is the id of the fake wither. Servers count entity ids
	// up from zero and never get here.
	BossBarEntityID int32 = math.MaxInt32 - 16

	entityTypeWither uint8   = 64
	witherMaxHealth  float32 = 300
	// bossBarDistance keeps the wither in front of the player, where the
	// client renders its bar.
	bossBarDistance = 32

	metaFlags       byte = 0
	metaCustomName  byte = 2
	metaShowName    byte = 3
	metaHealth      byte = 6
	flagInvisible   int8 = 0x20
	bossBarSymbol        = "■"
	bossBarTitle         = "§7Cooldown "
)

// BossBar draws the progress as the health bar of an invisible wither that
// follows the player.
type BossBar struct {
	sender
	spawned bool
}

func NewBossBar(c *user.Connection, from string) *BossBar {
	return &BossBar{sender: sender{conn: c, from: from}}
}

func (b *BossBar) Show(progress float64) error {
	x, y, z := b.location()
	meta := []protocol.Metadata{
		{Index: metaCustomName, Type: protocol.MetaString, Value: bossBarTitle + BuildProgressText(bossBarSymbol, progress)},
		{Index: metaHealth, Type: protocol.MetaFloat, Value: max(1, witherMaxHealth*float32(progress))},
	}
	if !b.spawned {
		b.spawned = true
		meta = append([]protocol.Metadata{
			{Index: metaFlags, Type: protocol.MetaByte, Value: flagInvisible},
			{Index: metaShowName, Type: protocol.MetaByte, Value: int8(1)},
		}, meta...)
		return b.send(pc_1_8.SpawnMobPacket{
			EntityID: BossBarEntityID,
			Type:     entityTypeWither,
			X:        pc_1_8.Fixed(x),
			Y:        pc_1_8.Fixed(y),
			Z:        pc_1_8.Fixed(z),
			Metadata: meta,
		})
	}
	return b.send(
		pc_1_8.EntityTeleportPacket{EntityID: BossBarEntityID, X: pc_1_8.Fixed(x), Y: pc_1_8.Fixed(y), Z: pc_1_8.Fixed(z)},
		pc_1_8.EntityMetadataPacket{EntityID: BossBarEntityID, Metadata: meta},
	)
}

func (b *BossBar) Hide() error {
	if !b.spawned {
		return nil
	}
	b.spawned = false
	return b.send(pc_1_8.DestroyEntitiesPacket{EntityIDs: []int32{BossBarEntityID}})
}

// location is bossBarDistance blocks ahead of the player along its yaw.
func (b *BossBar) location() (x, y, z float64) {
	session, ok := user.Lookup[*storage.Session](b.conn, storage.KindSession)
	if !ok {
		return 0, 0, 0
	}
	pos, _ := session.Position()
	yaw := float64(pos.Yaw) * math.Pi / 180
	return pos.X - math.Sin(yaw)*bossBarDistance, pos.Y, pos.Z + math.Cos(yaw)*bossBarDistance
}
