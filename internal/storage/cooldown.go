package storage

import "time"

const (
	// DefaultAttackSpeed is the generic.attackSpeed base value of a player.
	DefaultAttackSpeed = 4.0

	tick = 50 * time.Millisecond
)

// Visualization renders cooldown progress on a client without a native
// cooldown indicator.
type Visualization interface {
	Show(progress float64) error
	Hide() error
}

type itemCooldown struct {
	start time.Time
	ticks int32
}

// Cooldown tracks the attack cooldown and per-item cooldowns of the client.
type Cooldown struct {
	attackSpeed float64
	lastHit     time.Time
	items       map[int32]itemCooldown
	vis         Visualization
	shown       bool
}

// NewCooldown returns a tracker drawing with vis; nil draws nothing.
func NewCooldown(vis Visualization) *Cooldown {
	return &Cooldown{attackSpeed: DefaultAttackSpeed, items: make(map[int32]itemCooldown), vis: vis}
}

func (c *Cooldown) Visualization() Visualization { return c.vis }

func (c *Cooldown) AttackSpeed() float64 { return c.attackSpeed }

func (c *Cooldown) SetAttackSpeed(v float64) {
	if v > 0 {
		c.attackSpeed = v
	}
}

// Hit restarts the attack cooldown.
func (c *Cooldown) Hit(now time.Time) {
	c.lastHit = now
}

// SetItemCooldown starts a cooldown of ticks for item; zero ticks clears it.
func (c *Cooldown) SetItemCooldown(item, ticks int32, now time.Time) {
	if ticks <= 0 {
		delete(c.items, item)
		return
	}
	c.items[item] = itemCooldown{start: now, ticks: ticks}
}

// Progress returns the completion of the least advanced running cooldown
// in [0,1). running is false when no cooldown is in progress.
func (c *Cooldown) Progress(now time.Time) (progress float64, running bool) {
	progress = 1
	if !c.lastHit.IsZero() {
		total := time.Duration(float64(20*tick) / c.attackSpeed)
		if p := float64(now.Sub(c.lastHit)) / float64(total); p < progress {
			progress = p
		}
	}
	for item, cd := range c.items {
		p := float64(now.Sub(cd.start)) / float64(time.Duration(cd.ticks)*tick)
		if p >= 1 {
			delete(c.items, item)
			continue
		}
		if p < progress {
			progress = p
		}
	}
	if progress >= 1 {
		return 1, false
	}
	return max(progress, 0), true
}

// Shown reports whether the visualization currently displays progress.
func (c *Cooldown) Shown() bool { return c.shown }

func (c *Cooldown) SetShown(v bool) { c.shown = v }
