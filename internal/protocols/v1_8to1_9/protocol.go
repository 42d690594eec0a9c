// Package v1_8to1_9 translates between 1.8 clients and 1.9.4 servers.
package v1_8to1_9

import (
	"github.com/dxomg/ViaRewind/internal/chat"
	"github.com/dxomg/ViaRewind/internal/cooldown"
	"github.com/dxomg/ViaRewind/internal/item"
	"github.com/dxomg/ViaRewind/internal/mappings"
	"github.com/dxomg/ViaRewind/internal/packet"
	"github.com/dxomg/ViaRewind/internal/pipeline"
	"github.com/dxomg/ViaRewind/internal/protocols"
	"github.com/dxomg/ViaRewind/internal/storage"
	"github.com/dxomg/ViaRewind/internal/user"
)

// Name identifies the protocol in a chain.
const Name = "1.9.4->1.8"

// ItemTag prefixes the private keys this protocol stores on items.
const ItemTag = "ViaRewind|1.9"

// Enchantments added in 1.9.
const (
	EnchantmentFrostWalker int16 = 9
	EnchantmentMending     int16 = 70
)

func init() {
	protocols.Register(Name, packet.Protocol1_8, packet.Protocol1_9_4, New)
}

var trackers = []storage.Kind{
	storage.KindEntity,
	storage.KindSession,
	storage.KindLevitation,
}

type translator struct {
	tables   *mappings.Tables
	items    *item.Rewriter
	chat     chat.Converter
	blocks   mappings.Replacements
	cooldown cooldown.Factory
}

func New(env protocols.Env) *pipeline.Protocol {
	env = env.WithDefaults()
	t := &translator{
		tables: env.Tables,
		items: item.New(item.Options{
			Tag:          ItemTag,
			Replacements: env.Tables.Legacy1_8(),
			Chat:         env.Chat,
			Enchantments: map[int16]string{
				EnchantmentFrostWalker: "§7Frost Walker",
				EnchantmentMending:     "§7Mending",
			},
		}),
		chat:     env.Chat,
		blocks:   env.Tables.Legacy1_8(),
		cooldown: env.Cooldown,
	}

	p := pipeline.NewProtocol(Name, packet.Protocol1_8, packet.Protocol1_9_4)
	p.OnInit(func(c *user.Connection) {
		for _, k := range trackers {
			if !c.Has(k) {
				c.Put(k, storage.New(k))
			}
		}
		if !c.Has(storage.KindCooldown) {
			c.Put(storage.KindCooldown, storage.NewCooldown(t.cooldown(c, Name)))
		}
	})

	t.registerUnchanged(p)
	t.registerPlayer(p)
	t.registerEntities(p)
	t.registerWorld(p)
	t.registerInventory(p)
	t.registerSounds(p)
	return p
}
