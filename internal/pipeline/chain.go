package pipeline

import (
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/dxomg/ViaRewind/internal/packet"
	"github.com/dxomg/ViaRewind/internal/storage"
	"github.com/dxomg/ViaRewind/internal/user"
	"github.com/dxomg/ViaRewind/pkg/protocol"
)

// ErrPanic reports a transform step that panicked.
var ErrPanic = errors.New("transform panicked")

// Result holds the packets to emit after a transform, in wire order.
type Result struct {
	ToClient []protocol.Raw
	ToServer []protocol.Raw
}

func (r *Result) add(dir packet.Direction, raw protocol.Raw) {
	if dir == packet.Clientbound {
		r.ToClient = append(r.ToClient, raw)
	} else {
		r.ToServer = append(r.ToServer, raw)
	}
}

// Chain is the ordered protocol list of one connection. protocols[0] faces
// the server: clientbound packets run 0..n-1, serverbound n-1..0.
type Chain struct {
	conn      *user.Connection
	protocols []*Protocol
}

func NewChain(conn *user.Connection, protocols ...*Protocol) *Chain {
	return &Chain{conn: conn, protocols: protocols}
}

func (c *Chain) Protocols() []*Protocol { return c.protocols }

// Init runs every protocol's init hook.
func (c *Chain) Init() {
	c.conn.Lock()
	defer c.conn.Unlock()
	for _, p := range c.protocols {
		p.Init(c.conn)
	}
}

// Process transforms one inbound packet under the connection lock. A non-nil
// error is fatal for the connection and the result must be discarded.
func (c *Chain) Process(dir packet.Direction, state packet.State, raw protocol.Raw) (res Result, err error) {
	c.conn.Lock()
	defer c.conn.Unlock()
	defer c.recover(&err)

	if err := c.run(&res, dir, state, raw, c.start(dir)); err != nil {
		return Result{}, err
	}
	if cmp, ok := user.Lookup[*storage.Compression](c.conn, storage.KindCompression); ok {
		cmp.Engage(c.conn.NotifyCompression)
	}
	return res, nil
}

// Inject transforms a synthesized packet starting behind the named protocol.
// An empty name starts at the chain's edge. The caller holds the connection
// lock.
func (c *Chain) Inject(dir packet.Direction, after string, raw protocol.Raw) (res Result, err error) {
	defer c.recover(&err)

	from := c.start(dir)
	if after != "" {
		i := c.index(after)
		if i < 0 {
			return Result{}, fmt.Errorf("inject after unknown protocol %q", after)
		}
		from = next(dir, i)
	}
	if err := c.run(&res, dir, c.conn.State(), raw, from); err != nil {
		return Result{}, err
	}
	return res, nil
}

func (c *Chain) recover(err *error) {
	r := recover()
	if r == nil {
		return
	}
	c.conn.Logger().Debug("transform panic", "stack", string(debug.Stack()))
	if e, ok := r.(error); ok {
		*err = fmt.Errorf("%w: %w", ErrPanic, e)
		return
	}
	*err = fmt.Errorf("%w: %v", ErrPanic, r)
}

func (c *Chain) index(name string) int {
	for i, p := range c.protocols {
		if p.name == name {
			return i
		}
	}
	return -1
}

func (c *Chain) start(dir packet.Direction) int {
	if dir == packet.Clientbound {
		return 0
	}
	return len(c.protocols) - 1
}

// next is the protocol after i for a packet travelling in dir.
func next(dir packet.Direction, i int) int {
	if dir == packet.Clientbound {
		return i + 1
	}
	return i - 1
}

// run carries raw through the protocols from index i onwards. Packets a
// step synthesizes continue behind the protocol that produced them: sends
// are emitted ahead of raw, scheduled packets after it.
func (c *Chain) run(res *Result, dir packet.Direction, state packet.State, raw protocol.Raw, i int) error {
	var deferred []pending
	for ; i >= 0 && i < len(c.protocols); i = next(dir, i) {
		w := NewWrapper(c.conn, dir, state, raw)
		if err := c.protocols[i].Transform(w); err != nil {
			return fmt.Errorf("%s %s: %w", c.protocols[i].name, dir, err)
		}
		for _, s := range w.out {
			if s.after {
				deferred = append(deferred, pending{s, i})
				continue
			}
			c.synthesize(res, state, s, i)
		}
		if w.cancelled {
			c.flush(res, state, deferred)
			return nil
		}
		out, err := w.Packet()
		if err != nil {
			return fmt.Errorf("%s %s: %w", c.protocols[i].name, dir, err)
		}
		raw = out
	}
	res.add(dir, raw)
	c.flush(res, state, deferred)
	return nil
}

type pending struct {
	s    synthesized
	from int
}

func (c *Chain) flush(res *Result, state packet.State, deferred []pending) {
	for _, p := range deferred {
		c.synthesize(res, state, p.s, p.from)
	}
}

// synthesize runs a packet produced by protocol i. Its failure drops the
// packet and leaves the transform that produced it intact.
func (c *Chain) synthesize(res *Result, state packet.State, s synthesized, i int) {
	if err := c.run(res, s.dir, state, s.raw, next(s.dir, i)); err != nil {
		c.conn.Logger().Error("dropping synthesized packet",
			"direction", s.dir.String(), "id", s.raw.ID, "error", err)
	}
}
