package user

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/dxomg/ViaRewind/internal/packet"
	"github.com/dxomg/ViaRewind/internal/storage"
	"github.com/dxomg/ViaRewind/pkg/protocol"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type sendRecord struct {
	dir   packet.Direction
	after string
	raw   protocol.Raw
}

type recordingSender struct {
	sent []sendRecord
}

func (s *recordingSender) Send(dir packet.Direction, after string, raw protocol.Raw) error {
	s.sent = append(s.sent, sendRecord{dir, after, raw})
	return nil
}

func TestTrackerLazyInRelease(t *testing.T) {
	c := NewConnection(Options{Logger: discardLogger()})
	if c.Has(storage.KindInventory) {
		t.Fatalf("fresh connection has an inventory tracker")
	}
	inv := c.Inventory()
	if inv == nil || !c.Has(storage.KindInventory) {
		t.Fatalf("inventory tracker was not created")
	}
	if c.Inventory() != inv {
		t.Errorf("second lookup returned another tracker")
	}
}

func TestTrackerMissingPanicsInDebug(t *testing.T) {
	c := NewConnection(Options{Logger: discardLogger(), Debug: true})
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrMissingTracker) {
			t.Fatalf("recovered %v, want ErrMissingTracker", r)
		}
	}()
	c.Levitation()
	t.Fatalf("missing tracker did not panic")
}

func TestLookupDoesNotCreate(t *testing.T) {
	c := NewConnection(Options{Logger: discardLogger()})
	if _, ok := Lookup[*storage.WorldBorder](c, storage.KindWorldBorder); ok {
		t.Fatalf("Lookup found a tracker that was never put")
	}
	if c.Has(storage.KindWorldBorder) {
		t.Fatalf("Lookup created the tracker")
	}
	wb := storage.NewWorldBorder()
	c.Put(storage.KindWorldBorder, wb)
	got, ok := Lookup[*storage.WorldBorder](c, storage.KindWorldBorder)
	if !ok || got != wb {
		t.Errorf("Lookup = %p, %v; want %p", got, ok, wb)
	}
}

func TestIdentity(t *testing.T) {
	c := NewConnection(Options{Logger: discardLogger()})
	id := uuid.New()
	c.SetIdentity(id, "Steve")
	gotID, name := c.Identity()
	if gotID != id || name != "Steve" {
		t.Errorf("Identity = %s, %q", gotID, name)
	}
}

func TestSendWithoutSender(t *testing.T) {
	c := NewConnection(Options{Logger: discardLogger()})
	if err := c.Send(packet.Clientbound, "", protocol.Raw{ID: 1}); !errors.Is(err, ErrNoSender) {
		t.Errorf("Send error = %v, want ErrNoSender", err)
	}
	s := &recordingSender{}
	c.SetSender(s)
	if err := c.Send(packet.Serverbound, "1.8", protocol.Raw{ID: 2}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(s.sent) != 1 || s.sent[0].after != "1.8" || s.sent[0].raw.ID != 2 {
		t.Errorf("sent = %+v", s.sent)
	}
}

func TestStateTransitions(t *testing.T) {
	c := NewConnection(Options{Logger: discardLogger()})
	if c.State() != packet.Handshaking {
		t.Fatalf("initial state = %s", c.State())
	}
	c.SetState(packet.Play)
	if c.State() != packet.Play {
		t.Errorf("state = %s, want play", c.State())
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	conns := make([]*Connection, 20)
	for i := range conns {
		conns[i] = NewConnection(Options{ID: r.AllocateID(), Logger: discardLogger()})
	}
	for _, c := range conns {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Add(c)
		}()
	}
	wg.Wait()
	if r.Len() != len(conns) {
		t.Fatalf("Len = %d, want %d", r.Len(), len(conns))
	}

	conns[3].SetIdentity(uuid.New(), "Alex")
	if got := r.GetByName("alex"); got != conns[3] {
		t.Errorf("GetByName returned %v", got)
	}

	visited := 0
	r.ForEach(func(c *Connection) {
		c.Lock()
		defer c.Unlock()
		visited++
	})
	if visited != len(conns) {
		t.Errorf("ForEach visited %d", visited)
	}

	r.Remove(conns[0])
	if r.Get(conns[0].ID()) != nil || r.Len() != len(conns)-1 {
		t.Errorf("Remove left the connection registered")
	}
}
