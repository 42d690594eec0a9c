// Package v1_7to1_8 translates between 1.7.10 clients and 1.8 servers.
package v1_7to1_8

import (
	"github.com/dxomg/ViaRewind/internal/chat"
	"github.com/dxomg/ViaRewind/internal/item"
	"github.com/dxomg/ViaRewind/internal/mappings"
	"github.com/dxomg/ViaRewind/internal/packet"
	"github.com/dxomg/ViaRewind/internal/pipeline"
	"github.com/dxomg/ViaRewind/internal/protocols"
	"github.com/dxomg/ViaRewind/internal/storage"
	"github.com/dxomg/ViaRewind/internal/user"
)

// Name identifies the protocol in a chain.
const Name = "1.8->1.7.10"

func init() {
	protocols.Register(Name, packet.Protocol1_7_10, packet.Protocol1_8, New)
}

// trackers are created for every connection running this protocol.
var trackers = []storage.Kind{
	storage.KindInventory,
	storage.KindEntity,
	storage.KindSession,
	storage.KindProfile,
	storage.KindCompression,
	storage.KindWorldBorder,
}

type translator struct {
	items  *item.Rewriter
	chat   chat.Converter
	blocks mappings.Replacements
}

func New(env protocols.Env) *pipeline.Protocol {
	env = env.WithDefaults()
	t := &translator{
		items:  env.Items,
		chat:   env.Chat,
		blocks: env.Tables.Legacy1_7(),
	}

	p := pipeline.NewProtocol(Name, packet.Protocol1_7_10, packet.Protocol1_8)
	p.OnInit(func(c *user.Connection) {
		for _, k := range trackers {
			if !c.Has(k) {
				c.Put(k, storage.New(k))
			}
		}
	})

	t.registerLogin(p)
	t.registerPlayer(p)
	t.registerEntities(p)
	t.registerWorld(p)
	t.registerInventory(p)
	t.registerScoreboard(p)
	return p
}
