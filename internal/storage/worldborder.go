package storage

import (
	"math"
	"time"
)

// WorldBorder holds the border last announced by the server and what the
// emulation last rendered.
type WorldBorder struct {
	CenterX, CenterZ float64
	PortalBound      int32
	WarningTime      int32
	WarningBlocks    int32

	oldDiameter float64
	newDiameter float64
	lerpStart   time.Time
	lerpTime    time.Duration
	initialized bool

	sent         bool
	sentDiameter float64
	sentBlock    [3]int
}

func NewWorldBorder() *WorldBorder {
	return &WorldBorder{oldDiameter: 6e7, newDiameter: 6e7}
}

// Initialized reports whether the server has sent a border yet.
func (b *WorldBorder) Initialized() bool { return b.initialized }

// Initialize applies the full border state.
func (b *WorldBorder) Initialize(x, z, oldDiameter, newDiameter float64, lerp time.Duration, portalBound, warningTime, warningBlocks int32, now time.Time) {
	b.CenterX, b.CenterZ = x, z
	b.PortalBound = portalBound
	b.WarningTime = warningTime
	b.WarningBlocks = warningBlocks
	b.Lerp(oldDiameter, newDiameter, lerp, now)
	b.initialized = true
}

func (b *WorldBorder) SetSize(diameter float64, now time.Time) {
	b.Lerp(diameter, diameter, 0, now)
	b.initialized = true
}

// Lerp starts a size transition from oldDiameter to newDiameter over d.
func (b *WorldBorder) Lerp(oldDiameter, newDiameter float64, d time.Duration, now time.Time) {
	b.oldDiameter = oldDiameter
	b.newDiameter = newDiameter
	b.lerpStart = now
	b.lerpTime = d
	b.initialized = true
}

func (b *WorldBorder) SetCenter(x, z float64) {
	b.CenterX, b.CenterZ = x, z
}

// Diameter interpolates the border size at now.
func (b *WorldBorder) Diameter(now time.Time) float64 {
	if b.lerpTime <= 0 {
		return b.newDiameter
	}
	t := float64(now.Sub(b.lerpStart)) / float64(b.lerpTime)
	t = max(0, min(1, t))
	return b.oldDiameter + (b.newDiameter-b.oldDiameter)*t
}

// Bounds returns the border edges at now.
func (b *WorldBorder) Bounds(now time.Time) (minX, minZ, maxX, maxZ float64) {
	r := b.Diameter(now) / 2
	return b.CenterX - r, b.CenterZ - r, b.CenterX + r, b.CenterZ + r
}

// Distance is how far p is from the nearest edge, negative when outside.
func (b *WorldBorder) Distance(p Position, now time.Time) float64 {
	minX, minZ, maxX, maxZ := b.Bounds(now)
	return math.Min(math.Min(p.X-minX, maxX-p.X), math.Min(p.Z-minZ, maxZ-p.Z))
}

// Due reports whether a rendering is needed: the diameter changed or the
// player entered another block since the last call that returned true.
func (b *WorldBorder) Due(p Position, now time.Time) bool {
	if !b.initialized {
		return false
	}
	d := b.Diameter(now)
	block := [3]int{p.BlockX(), p.BlockY(), p.BlockZ()}
	if b.sent && d == b.sentDiameter && block == b.sentBlock {
		return false
	}
	b.sent = true
	b.sentDiameter = d
	b.sentBlock = block
	return true
}
