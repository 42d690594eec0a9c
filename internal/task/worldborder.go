package task

import (
	"fmt"
	"math"
	"time"

	"github.com/dxomg/ViaRewind/internal/packet"
	"github.com/dxomg/ViaRewind/internal/packet/pc_1_7"
	"github.com/dxomg/ViaRewind/internal/storage"
	"github.com/dxomg/ViaRewind/internal/user"
	"github.com/dxomg/ViaRewind/pkg/protocol"
)

const (
	// BorderViewDistance is how close the player must be to an edge for it
	// to be drawn, and how far along the edge the outline reaches.
	BorderViewDistance = 16

	// DefaultBorderParticle is the 1.7 particle drawing the outline.
	DefaultBorderParticle = "fireworksSpark"

	borderStep      = 2
	borderRowsBelow = 2
	borderRowsAbove = 4
)

// WorldBorder outlines the world border with particles for 1.7 clients,
// which do not render one. From names the protocol producing 1.7 packets.
type WorldBorder struct {
	From     string
	Particle string
}

func (WorldBorder) Name() string { return "world border" }

func (w WorldBorder) Run(c *user.Connection, now time.Time) error {
	border, ok := user.Lookup[*storage.WorldBorder](c, storage.KindWorldBorder)
	if !ok {
		return nil
	}
	session, ok := user.Lookup[*storage.Session](c, storage.KindSession)
	if !ok {
		return nil
	}
	pos, ok := session.Position()
	if !ok || !border.Due(pos, now) {
		return nil
	}
	for _, p := range Outline(border, pos, now) {
		if err := w.emit(c, p); err != nil {
			return err
		}
	}
	return nil
}

func (w WorldBorder) emit(c *user.Connection, p [3]float64) error {
	name := w.Particle
	if name == "" {
		name = DefaultBorderParticle
	}
	raw, err := protocol.Encode(pc_1_7.ParticlePacket{
		Name:  name,
		X:     float32(p[0]),
		Y:     float32(p[1]),
		Z:     float32(p[2]),
		Count: 1,
	})
	if err != nil {
		return fmt.Errorf("encode border particle: %w", err)
	}
	if err := c.Send(packet.Clientbound, w.From, raw); err != nil {
		return fmt.Errorf("send border particle: %w", err)
	}
	return nil
}

// Outline returns the particle positions drawing the border edges within
// BorderViewDistance of pos. It is empty when every edge is farther away.
func Outline(border *storage.WorldBorder, pos storage.Position, now time.Time) [][3]float64 {
	minX, minZ, maxX, maxZ := border.Bounds(now)
	var out [][3]float64
	rows := func(fn func(y float64)) {
		base := float64(pos.BlockY())
		for dy := -borderRowsBelow; dy <= borderRowsAbove; dy += borderStep {
			fn(base + float64(dy))
		}
	}
	for _, x := range [...]float64{minX, maxX} {
		if math.Abs(pos.X-x) > BorderViewDistance {
			continue
		}
		for z := range along(pos.Z, minZ, maxZ) {
			rows(func(y float64) { out = append(out, [3]float64{x, y, z}) })
		}
	}
	for _, z := range [...]float64{minZ, maxZ} {
		if math.Abs(pos.Z-z) > BorderViewDistance {
			continue
		}
		for x := range along(pos.X, minX, maxX) {
			rows(func(y float64) { out = append(out, [3]float64{x, y, z}) })
		}
	}
	return out
}

// along yields block positions within BorderViewDistance of center,
// clamped to [lo, hi].
func along(center, lo, hi float64) func(yield func(float64) bool) {
	return func(yield func(float64) bool) {
		from := max(lo, math.Floor(center)-BorderViewDistance)
		to := min(hi, math.Floor(center)+BorderViewDistance)
		for v := from; v <= to; v += borderStep {
			if !yield(v) {
				return
			}
		}
	}
}
