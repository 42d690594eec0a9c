package pipeline

import (
	"github.com/dxomg/ViaRewind/internal/packet"
	"github.com/dxomg/ViaRewind/internal/user"
	"github.com/dxomg/ViaRewind/pkg/protocol"
)

// Step is one transform unit run against a packet. Read failures are
// recorded on the wrapper; a step returns an error only for failures of its
// own logic.
type Step func(w *Wrapper) error

// Map copies a field of type t unchanged.
func Map(t protocol.Type) Step {
	return func(w *Wrapper) error {
		w.Passthrough(t)
		return nil
	}
}

// MapTo reads a field as from and writes it as to.
func MapTo(from, to protocol.Type) Step {
	return func(w *Wrapper) error {
		w.Write(to, w.Read(from))
		return nil
	}
}

// Discard reads a field of type t and drops it.
func Discard(t protocol.Type) Step {
	return func(w *Wrapper) error {
		w.Read(t)
		return nil
	}
}

// Handler runs fn as a custom step.
func Handler(fn func(w *Wrapper) error) Step { return fn }

// Cancel drops the packet.
func Cancel() Step {
	return func(w *Wrapper) error {
		w.Cancel()
		return nil
	}
}

type key struct {
	dir   packet.Direction
	state packet.State
	id    int32
}

type entry struct {
	newID int32
	steps []Step
}

// Protocol translates between a client version and the next newer version
// towards the server.
type Protocol struct {
	name          string
	clientVersion int32
	serverVersion int32

	transforms map[key]entry
	init       []func(c *user.Connection)
}

func NewProtocol(name string, clientVersion, serverVersion int32) *Protocol {
	return &Protocol{
		name:          name,
		clientVersion: clientVersion,
		serverVersion: serverVersion,
		transforms:    make(map[key]entry),
	}
}

func (p *Protocol) Name() string         { return p.name }
func (p *Protocol) ClientVersion() int32 { return p.clientVersion }
func (p *Protocol) ServerVersion() int32 { return p.serverVersion }

func (p *Protocol) register(dir packet.Direction, state packet.State, oldID, newID int32, steps []Step) {
	p.transforms[key{dir, state, oldID}] = entry{newID: newID, steps: steps}
}

// RegisterClientbound installs steps for the server packet serverID, which
// leaves this protocol as clientID.
func (p *Protocol) RegisterClientbound(state packet.State, serverID, clientID int32, steps ...Step) {
	p.register(packet.Clientbound, state, serverID, clientID, steps)
}

// RegisterServerbound installs steps for the client packet clientID, which
// leaves this protocol as serverID.
func (p *Protocol) RegisterServerbound(state packet.State, clientID, serverID int32, steps ...Step) {
	p.register(packet.Serverbound, state, clientID, serverID, steps)
}

// CancelClientbound drops every server packet serverID.
func (p *Protocol) CancelClientbound(state packet.State, serverID int32) {
	p.register(packet.Clientbound, state, serverID, serverID, []Step{Cancel()})
}

// CancelServerbound drops every client packet clientID.
func (p *Protocol) CancelServerbound(state packet.State, clientID int32) {
	p.register(packet.Serverbound, state, clientID, clientID, []Step{Cancel()})
}

// OnInit adds a hook creating this protocol's trackers on a new connection.
func (p *Protocol) OnInit(fn func(c *user.Connection)) {
	p.init = append(p.init, fn)
}

// Init runs the init hooks against c.
func (p *Protocol) Init(c *user.Connection) {
	for _, fn := range p.init {
		fn(c)
	}
}

// Registered reports whether a transform exists for the inbound packet id.
func (p *Protocol) Registered(dir packet.Direction, state packet.State, id int32) bool {
	_, ok := p.transforms[key{dir, state, id}]
	return ok
}

// Transform runs the steps registered for w's packet. Unregistered packets
// are left untouched.
func (p *Protocol) Transform(w *Wrapper) error {
	e, ok := p.transforms[key{w.dir, w.state, w.ID}]
	if !ok {
		return nil
	}
	w.ID = e.newID
	for _, step := range e.steps {
		if err := step(w); err != nil {
			w.Fail(err)
		}
		if w.err != nil {
			return w.err
		}
		if w.cancelled {
			return nil
		}
	}
	return nil
}
