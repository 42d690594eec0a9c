package task

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/dxomg/ViaRewind/internal/packet"
	"github.com/dxomg/ViaRewind/internal/packet/pc_1_7"
	"github.com/dxomg/ViaRewind/internal/packet/pc_1_8"
	"github.com/dxomg/ViaRewind/internal/storage"
	"github.com/dxomg/ViaRewind/internal/user"
	"github.com/dxomg/ViaRewind/pkg/protocol"
)

type packetCollector struct {
	after []string
	raws  []protocol.Raw
	err   error
}

func (p *packetCollector) Send(_ packet.Direction, after string, raw protocol.Raw) error {
	if p.err != nil {
		return p.err
	}
	p.after = append(p.after, after)
	p.raws = append(p.raws, raw)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newConn(id uint64, log *slog.Logger) (*user.Connection, *packetCollector) {
	c := user.NewConnection(user.Options{ID: id, Logger: log})
	c.SetState(packet.Play)
	col := &packetCollector{}
	c.SetSender(col)
	return c, col
}

func levitating(c *user.Connection, amplifier int8) {
	lev := &storage.Levitation{}
	lev.Start(amplifier)
	c.Put(storage.KindLevitation, lev)
	entities := storage.NewEntities()
	entities.SetClientEntityID(42)
	c.Put(storage.KindEntity, entities)
}

func TestLevitation(t *testing.T) {
	c, col := newConn(1, discardLogger())
	levitating(c, 1)

	task := Levitation{From: "1.9.4->1.8"}
	if err := task.Run(c, time.Now()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(col.raws) != 1 || col.after[0] != task.From {
		t.Fatalf("sent %d packets after %v", len(col.raws), col.after)
	}
	var v pc_1_8.EntityVelocityPacket
	if err := protocol.Unmarshal(col.raws[0].Data, &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := pc_1_8.EntityVelocityPacket{EntityID: 42, Y: 720}
	if col.raws[0].ID != pc_1_8.EntityVelocity || v != want {
		t.Errorf("velocity = 0x%02X %+v, want %+v", col.raws[0].ID, v, want)
	}

	c.Levitation().Stop()
	if err := task.Run(c, time.Now()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(col.raws) != 1 {
		t.Errorf("stopped levitation still sent packets")
	}
}

func TestLevitationWithoutTrackersIsQuiet(t *testing.T) {
	c, col := newConn(1, discardLogger())
	if err := (Levitation{}).Run(c, time.Now()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(col.raws) != 0 || c.Has(storage.KindLevitation) {
		t.Errorf("task created trackers or sent packets")
	}
}

type fakeVisualization struct {
	shown  []float64
	hidden int
}

func (f *fakeVisualization) Show(p float64) error {
	f.shown = append(f.shown, p)
	return nil
}

func (f *fakeVisualization) Hide() error {
	f.hidden++
	return nil
}

func TestCooldown(t *testing.T) {
	c, _ := newConn(1, discardLogger())
	vis := &fakeVisualization{}
	cd := storage.NewCooldown(vis)
	c.Put(storage.KindCooldown, cd)

	start := time.Now()
	cd.SetItemCooldown(368, 20, start)

	steps := []struct {
		at     time.Duration
		shown  int
		hidden int
	}{
		{250 * time.Millisecond, 1, 0},
		{500 * time.Millisecond, 2, 0},
		{2 * time.Second, 2, 1},
		{3 * time.Second, 2, 1},
	}
	for _, s := range steps {
		if err := (Cooldown{}).Run(c, start.Add(s.at)); err != nil {
			t.Fatalf("Run at %v: %v", s.at, err)
		}
		if len(vis.shown) != s.shown || vis.hidden != s.hidden {
			t.Errorf("at %v: shown %d hidden %d, want %d %d", s.at, len(vis.shown), vis.hidden, s.shown, s.hidden)
		}
	}
	if vis.shown[0] <= 0 || vis.shown[0] >= vis.shown[1] {
		t.Errorf("progress did not advance: %v", vis.shown)
	}
}

func newBorder(t *testing.T, c *user.Connection, diameter float64, x, y, z float64) *storage.WorldBorder {
	t.Helper()
	border := storage.NewWorldBorder()
	border.SetSize(diameter, time.Now())
	border.SetCenter(0, 0)
	c.Put(storage.KindWorldBorder, border)
	session := storage.NewSession()
	session.SetPosition(x, y, z)
	c.Put(storage.KindSession, session)
	return border
}

func TestWorldBorderOutline(t *testing.T) {
	tests := []struct {
		name     string
		diameter float64
		x, z     float64
		want     int
	}{
		{"near every edge", 20, 5, 0, 4 * 11 * 4},
		{"near one edge", 100, 45, 0, 17 * 4},
		{"far from every edge", 100, 0, 0, 0},
		{"outside and far", 20, 100, 100, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, col := newConn(1, discardLogger())
			newBorder(t, c, tt.diameter, tt.x, 64, tt.z)
			task := WorldBorder{From: "1.8->1.7.10"}
			if err := task.Run(c, time.Now()); err != nil {
				t.Fatalf("Run: %v", err)
			}
			if len(col.raws) != tt.want {
				t.Fatalf("sent %d particles, want %d", len(col.raws), tt.want)
			}
			for _, raw := range col.raws {
				if raw.ID != pc_1_7.Particle {
					t.Fatalf("sent packet 0x%02X", raw.ID)
				}
			}
			if tt.want == 0 {
				return
			}
			var p pc_1_7.ParticlePacket
			if err := protocol.Unmarshal(col.raws[0].Data, &p); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if p.Name != DefaultBorderParticle || p.Count != 1 {
				t.Errorf("particle = %+v", p)
			}
		})
	}
}

func TestWorldBorderOnlyWhenDue(t *testing.T) {
	c, col := newConn(1, discardLogger())
	newBorder(t, c, 20, 5, 64, 0)
	task := WorldBorder{From: "1.8->1.7.10", Particle: "reddust"}
	now := time.Now()

	if err := task.Run(c, now); err != nil {
		t.Fatalf("Run: %v", err)
	}
	first := len(col.raws)
	if err := task.Run(c, now.Add(Interval)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(col.raws) != first {
		t.Fatalf("unchanged border was drawn again")
	}

	c.Session().SetPosition(6.5, 64, 0)
	if err := task.Run(c, now.Add(2*Interval)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(col.raws) <= first {
		t.Errorf("moving to another block did not redraw the border")
	}
}

func TestSchedulerContinuesAfterFailure(t *testing.T) {
	var logs bytes.Buffer
	log := slog.New(slog.NewTextHandler(&logs, nil))

	reg := user.NewRegistry()
	broken, brokenCol := newConn(1, log)
	brokenCol.err = errors.New("queue full")
	levitating(broken, 0)
	reg.Add(broken)

	healthy, healthyCol := newConn(2, log)
	levitating(healthy, 0)
	reg.Add(healthy)

	idle, idleCol := newConn(3, log)
	idle.SetState(packet.Login)
	levitating(idle, 0)
	reg.Add(idle)

	s := NewScheduler(reg, log, Levitation{From: "1.9.4->1.8"})
	s.Tick(time.Now())

	if len(healthyCol.raws) != 1 {
		t.Errorf("healthy connection got %d packets", len(healthyCol.raws))
	}
	if len(idleCol.raws) != 0 {
		t.Errorf("connection outside play got %d packets", len(idleCol.raws))
	}
	if !strings.Contains(logs.String(), "background task failed") {
		t.Errorf("failure was not logged: %s", logs.String())
	}
}

type panicking struct{}

func (panicking) Name() string { return "panicking" }

func (panicking) Run(*user.Connection, time.Time) error { panic("boom") }

func TestSchedulerLogsPanicOnConnection(t *testing.T) {
	var schedLogs, connLogs bytes.Buffer
	reg := user.NewRegistry()
	c, col := newConn(1, slog.New(slog.NewTextHandler(&connLogs, nil)).With("addr", "10.0.0.1:5000"))
	levitating(c, 0)
	reg.Add(c)

	s := NewScheduler(reg, slog.New(slog.NewTextHandler(&schedLogs, nil)), panicking{}, Levitation{From: "1.9.4->1.8"})
	s.Tick(time.Now())

	if len(col.raws) != 1 {
		t.Errorf("task after the panic sent %d packets, want 1", len(col.raws))
	}
	got := connLogs.String()
	for _, want := range []string{"background task failed", "task=panicking", "task panicked: boom", "addr=10.0.0.1:5000"} {
		if !strings.Contains(got, want) {
			t.Errorf("connection log lacks %q: %s", want, got)
		}
	}
	if schedLogs.Len() != 0 {
		t.Errorf("panic logged on the scheduler logger: %s", schedLogs.String())
	}
}
