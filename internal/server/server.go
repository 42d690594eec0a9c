package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"golang.org/x/sync/errgroup"

	"github.com/dxomg/ViaRewind/internal/cooldown"
	"github.com/dxomg/ViaRewind/internal/mappings"
	"github.com/dxomg/ViaRewind/internal/protocols"
	"github.com/dxomg/ViaRewind/internal/protocols/v1_7to1_8"
	"github.com/dxomg/ViaRewind/internal/protocols/v1_8to1_9"
	"github.com/dxomg/ViaRewind/internal/server/config"
	"github.com/dxomg/ViaRewind/internal/server/conn"
	"github.com/dxomg/ViaRewind/internal/task"
	"github.com/dxomg/ViaRewind/internal/user"
)

// Server accepts clients and proxies each one to the backend.
type Server struct {
	cfg   *config.Config
	log   *slog.Logger
	users *user.Registry
	env   protocols.Env
	tasks *task.Scheduler
}

// New loads the mapping tables and prepares the shared collaborators.
func New(cfg *config.Config, log *slog.Logger) (*Server, error) {
	if _, _, err := cfg.Versions(); err != nil {
		return nil, err
	}

	tables, err := mappings.Load(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("load mappings from %s: %w", cfg.DataDir, err)
	}
	if tables.SoundCount() == 0 {
		log.Warn("no sound table loaded, sounds will be dropped", "dir", cfg.DataDir)
	}

	users := user.NewRegistry()
	env := protocols.Env{
		Tables:   tables,
		Cooldown: cooldown.FromConfig(cfg.CooldownIndicator, log),
		Log:      log,
	}.WithDefaults()

	return &Server{
		cfg:   cfg,
		log:   log,
		users: users,
		env:   env,
		tasks: task.NewScheduler(users, log, Tasks(cfg)...),
	}, nil
}

// Tasks lists the background emulation tasks enabled by cfg. Each task skips
// connections whose chain does not carry the trackers it works on.
func Tasks(cfg *config.Config) []task.Task {
	tasks := []task.Task{
		task.Levitation{From: v1_8to1_9.Name},
		task.Cooldown{},
	}
	if cfg.EmulateWorldBorder {
		tasks = append(tasks, task.WorldBorder{From: v1_7to1_8.Name, Particle: cfg.WorldBorderParticle})
	}
	return tasks
}

// Users returns the registry of proxied connections.
func (s *Server) Users() *user.Registry { return s.users }

// Start begins listening for connections and blocks until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	lc := net.ListenConfig{}

	listener, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	s.log.Info("proxy started",
		"port", s.cfg.Port,
		"backend", s.cfg.Backend,
		"client", s.cfg.ClientVersion,
		"server", s.cfg.ServerVersion,
		"cooldownIndicator", s.cfg.CooldownIndicator,
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.tasks.Run(ctx) })
	g.Go(func() error {
		<-ctx.Done()
		listener.Close()
		return nil
	})
	g.Go(func() error { return s.serve(ctx, listener) })
	return g.Wait()
}

func (s *Server) serve(ctx context.Context, listener net.Listener) error {
	opts := conn.Options{
		Config:   s.cfg,
		Log:      s.log,
		Env:      s.env,
		Registry: s.users,
	}
	for {
		c, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				s.log.Info("proxy shutting down")
				return nil
			}
			s.log.Error("accept connection", "error", err)
			continue
		}

		connection := conn.NewConnection(c, opts)
		go connection.Handle(ctx)
	}
}
