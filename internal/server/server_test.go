package server

import (
	"io"
	"log/slog"
	"testing"

	"github.com/dxomg/ViaRewind/internal/server/config"
	"github.com/dxomg/ViaRewind/internal/task"
)

func TestTasks(t *testing.T) {
	cfg := config.DefaultConfig()
	if got := len(Tasks(cfg)); got != 3 {
		t.Errorf("Tasks with world border = %d, want 3", got)
	}
	cfg.EmulateWorldBorder = false
	for _, tk := range Tasks(cfg) {
		if _, ok := tk.(task.WorldBorder); ok {
			t.Error("world border task enabled while emulation is off")
		}
	}
}

func TestNew(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	srv, err := New(cfg, log)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if srv.Users().Len() != 0 {
		t.Errorf("new server has %d users", srv.Users().Len())
	}

	cfg = config.DefaultConfig()
	cfg.ClientVersion = "1.12"
	if _, err := New(cfg, log); err == nil {
		t.Error("New accepted an unsupported client version")
	}
}
