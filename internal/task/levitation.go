package task

import (
	"fmt"
	"time"

	"github.com/dxomg/ViaRewind/internal/packet"
	"github.com/dxomg/ViaRewind/internal/packet/pc_1_8"
	"github.com/dxomg/ViaRewind/internal/storage"
	"github.com/dxomg/ViaRewind/internal/user"
	"github.com/dxomg/ViaRewind/pkg/protocol"
)

// Levitation pushes a 1.8 client's own entity upwards while the server has
// it levitating. From names the protocol that absorbed the effect.
type Levitation struct {
	From string
}

func (Levitation) Name() string { return "levitation" }

func (l Levitation) Run(c *user.Connection, _ time.Time) error {
	lev, ok := user.Lookup[*storage.Levitation](c, storage.KindLevitation)
	if !ok || !lev.Active() {
		return nil
	}
	entities, ok := user.Lookup[*storage.Entities](c, storage.KindEntity)
	if !ok {
		return nil
	}
	id := entities.ClientEntityID()
	if !entities.IsClient(id) {
		return nil
	}
	raw, err := protocol.Encode(pc_1_8.EntityVelocityPacket{
		EntityID: id,
		Y:        lev.Velocity(),
	})
	if err != nil {
		return fmt.Errorf("encode levitation velocity: %w", err)
	}
	if err := c.Send(packet.Clientbound, l.From, raw); err != nil {
		return fmt.Errorf("send levitation velocity: %w", err)
	}
	return nil
}
