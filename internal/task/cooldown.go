package task

import (
	"time"

	"github.com/dxomg/ViaRewind/internal/storage"
	"github.com/dxomg/ViaRewind/internal/user"
)

// Cooldown shows the cooldown progress while one is running and hides the
// indicator once all have ended.
type Cooldown struct{}

func (Cooldown) Name() string { return "cooldown" }

func (Cooldown) Run(c *user.Connection, now time.Time) error {
	cd, ok := user.Lookup[*storage.Cooldown](c, storage.KindCooldown)
	if !ok {
		return nil
	}
	vis := cd.Visualization()
	if vis == nil {
		return nil
	}
	progress, running := cd.Progress(now)
	if running {
		cd.SetShown(true)
		return vis.Show(progress)
	}
	if !cd.Shown() {
		return nil
	}
	cd.SetShown(false)
	return vis.Hide()
}
