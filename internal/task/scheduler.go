// Package task runs the periodic emulation work that has no packet to ride
// on: world border outlines, levitation and the cooldown indicator.
package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/dxomg/ViaRewind/internal/packet"
	"github.com/dxomg/ViaRewind/internal/user"
)

// Interval is one game tick.
const Interval = 50 * time.Millisecond

// ErrTaskPanic reports a task that panicked.
var ErrTaskPanic = errors.New("task panicked")

// Task is run for every connection in the play state once per tick, with
// the connection lock held.
type Task interface {
	Name() string
	Run(c *user.Connection, now time.Time) error
}

// Scheduler drives tasks over the connections of a registry.
type Scheduler struct {
	reg   *user.Registry
	log   *slog.Logger
	tasks []Task
}

func NewScheduler(reg *user.Registry, log *slog.Logger, tasks ...Task) *Scheduler {
	return &Scheduler{reg: reg, log: log, tasks: tasks}
}

// Run ticks until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	if len(s.tasks) == 0 {
		<-ctx.Done()
		return nil
	}
	ticker := time.NewTicker(Interval)
	defer ticker.Stop()
	s.log.Debug("scheduler started", "tasks", len(s.tasks), "interval", Interval)

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			s.Tick(now)
		}
	}
}

// Tick runs every task once. A failing task is logged and the remaining
// tasks and connections still run.
func (s *Scheduler) Tick(now time.Time) {
	s.reg.ForEach(func(c *user.Connection) {
		if c.State() != packet.Play {
			return
		}
		c.Lock()
		defer c.Unlock()
		for _, t := range s.tasks {
			if err := s.run(t, c, now); err != nil {
				c.Logger().Error("background task failed", "task", t.Name(), "error", err)
			}
		}
	})
}

func (s *Scheduler) run(t Task, c *user.Connection, now time.Time) (err error) {
	defer func() {
		if r := recover(); r != nil {
			c.Logger().Debug("task panic", "task", t.Name(), "stack", string(debug.Stack()))
			err = fmt.Errorf("%w: %v", ErrTaskPanic, r)
		}
	}()
	return t.Run(c, now)
}
