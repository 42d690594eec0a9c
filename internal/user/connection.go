// Package user holds the per-connection context shared by packet transforms
// and background tasks.
package user

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/dxomg/ViaRewind/internal/packet"
	"github.com/dxomg/ViaRewind/internal/storage"
	"github.com/dxomg/ViaRewind/pkg/protocol"
)

var (
	ErrMissingTracker = errors.New("missing tracker")
	ErrQueueFull      = errors.New("send queue full")
	ErrNoSender       = errors.New("connection has no sender")
)

// Sender delivers a packet synthesized outside the inbound flow. after names
// the protocol that produced raw; the packet continues through the protocols
// behind it in its direction of travel. An empty name runs the whole chain.
type Sender interface {
	Send(dir packet.Direction, after string, raw protocol.Raw) error
}

// Options configure a new Connection.
type Options struct {
	ID            uint64
	Addr          string
	Logger        *slog.Logger
	Debug         bool
	ClientVersion int32
	ServerVersion int32
}

// Connection is the context of one proxied client. The trackers are guarded
// by the connection lock; hold it while touching them.
type Connection struct {
	mu sync.Mutex

	id            uint64
	addr          string
	debug         bool
	clientVersion int32
	serverVersion int32

	log   atomic.Pointer[slog.Logger]
	state atomic.Uint32

	idMu     sync.RWMutex
	uuid     uuid.UUID
	username string

	trackers      [storage.KindCount]any
	sender        Sender
	onCompression func(threshold int32)
}

func NewConnection(opts Options) *Connection {
	c := &Connection{
		id:            opts.ID,
		addr:          opts.Addr,
		debug:         opts.Debug,
		clientVersion: opts.ClientVersion,
		serverVersion: opts.ServerVersion,
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	c.log.Store(log)
	return c
}

func (c *Connection) Lock()   { c.mu.Lock() }
func (c *Connection) Unlock() { c.mu.Unlock() }

func (c *Connection) ID() uint64           { return c.id }
func (c *Connection) Addr() string         { return c.addr }
func (c *Connection) Debug() bool          { return c.debug }
func (c *Connection) ClientVersion() int32 { return c.clientVersion }
func (c *Connection) ServerVersion() int32 { return c.serverVersion }
func (c *Connection) Logger() *slog.Logger { return c.log.Load() }

func (c *Connection) State() packet.State { return packet.State(c.state.Load()) }

func (c *Connection) SetState(s packet.State) {
	c.state.Store(uint32(s))
}

// SetIdentity records the player behind the connection once login succeeds.
func (c *Connection) SetIdentity(id uuid.UUID, name string) {
	c.idMu.Lock()
	known := c.username != ""
	c.uuid = id
	c.username = name
	c.idMu.Unlock()
	if !known {
		c.log.Store(c.log.Load().With("player", name))
	}
}

// Identity returns the player uuid and name, zero before login.
func (c *Connection) Identity() (uuid.UUID, string) {
	c.idMu.RLock()
	defer c.idMu.RUnlock()
	return c.uuid, c.username
}

// Put installs v as the tracker of kind k, replacing any previous one.
func (c *Connection) Put(k storage.Kind, v any) {
	c.trackers[k] = v
}

func (c *Connection) Has(k storage.Kind) bool {
	return c.trackers[k] != nil
}

// Lookup returns the tracker of kind k without creating it.
func (c *Connection) Lookup(k storage.Kind) (any, bool) {
	v := c.trackers[k]
	return v, v != nil
}

// tracker returns the tracker of kind k. A missing tracker is a programming
// error: it panics in debug mode and is created with a warning otherwise.
func (c *Connection) tracker(k storage.Kind) any {
	if v := c.trackers[k]; v != nil {
		return v
	}
	if c.debug {
		panic(fmt.Errorf("%w: %s", ErrMissingTracker, k))
	}
	c.Logger().Warn("tracker missing, creating default", "tracker", k.String())
	v := storage.New(k)
	c.trackers[k] = v
	return v
}

func (c *Connection) Inventory() *storage.Inventory {
	return c.tracker(storage.KindInventory).(*storage.Inventory)
}

func (c *Connection) Entities() *storage.Entities {
	return c.tracker(storage.KindEntity).(*storage.Entities)
}

func (c *Connection) Session() *storage.Session {
	return c.tracker(storage.KindSession).(*storage.Session)
}

func (c *Connection) Profiles() *storage.Profiles {
	return c.tracker(storage.KindProfile).(*storage.Profiles)
}

func (c *Connection) Compression() *storage.Compression {
	return c.tracker(storage.KindCompression).(*storage.Compression)
}

func (c *Connection) WorldBorder() *storage.WorldBorder {
	return c.tracker(storage.KindWorldBorder).(*storage.WorldBorder)
}

func (c *Connection) Levitation() *storage.Levitation {
	return c.tracker(storage.KindLevitation).(*storage.Levitation)
}

func (c *Connection) Cooldown() *storage.Cooldown {
	return c.tracker(storage.KindCooldown).(*storage.Cooldown)
}

// Lookup returns the tracker of kind k typed as T, if present.
func Lookup[T any](c *Connection, k storage.Kind) (T, bool) {
	v, ok := c.Lookup(k)
	if !ok {
		var zero T
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}

func (c *Connection) SetSender(s Sender) {
	c.sender = s
}

// Send injects raw into the chain after the named protocol. The caller holds
// the connection lock.
func (c *Connection) Send(dir packet.Direction, after string, raw protocol.Raw) error {
	if c.sender == nil {
		return ErrNoSender
	}
	return c.sender.Send(dir, after, raw)
}

// SetCompressionNotifier registers the transport callback run when the
// compression handshake engages.
func (c *Connection) SetCompressionNotifier(fn func(threshold int32)) {
	c.onCompression = fn
}

// NotifyCompression tells the transport about the negotiated threshold.
func (c *Connection) NotifyCompression(threshold int32) {
	if c.onCompression != nil {
		c.onCompression(threshold)
	}
}
