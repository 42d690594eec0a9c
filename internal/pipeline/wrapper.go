// Package pipeline runs registered transform steps over packets crossing a
// chain of protocol translations.
package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/dxomg/ViaRewind/internal/packet"
	"github.com/dxomg/ViaRewind/internal/user"
	"github.com/dxomg/ViaRewind/pkg/protocol"
)

// ErrMalformed reports a field the codec could not decode. The connection
// cannot continue after it.
var ErrMalformed = errors.New("malformed packet")

type field struct {
	t protocol.Type
	v any
}

type synthesized struct {
	dir   packet.Direction
	raw   protocol.Raw
	after bool
}

// Wrapper is the read/write cursor over one packet instance. Fields are read
// from the inbound body and written to the outbound one in order; whatever
// is left unread when the steps finish is appended unchanged.
//
// Errors are sticky: after the first failure every read returns a zero value
// and Err reports the failure.
type Wrapper struct {
	ID int32

	conn  *user.Connection
	dir   packet.Direction
	state packet.State

	in     *bytes.Reader
	fields []field
	out    []synthesized

	cancelled bool
	err       error
}

// NewWrapper positions a cursor at the start of raw.
func NewWrapper(conn *user.Connection, dir packet.Direction, state packet.State, raw protocol.Raw) *Wrapper {
	return &Wrapper{
		ID:    raw.ID,
		conn:  conn,
		dir:   dir,
		state: state,
		in:    bytes.NewReader(raw.Data),
	}
}

func (w *Wrapper) Conn() *user.Connection      { return w.conn }
func (w *Wrapper) Direction() packet.Direction { return w.dir }
func (w *Wrapper) State() packet.State         { return w.state }

func (w *Wrapper) Err() error { return w.err }

// Fail records err unless an earlier error is already recorded.
func (w *Wrapper) Fail(err error) {
	if w.err == nil && err != nil {
		w.err = err
	}
}

// Cancel drops the packet. Steps after the cancelling one do not run.
func (w *Wrapper) Cancel() { w.cancelled = true }

func (w *Wrapper) Cancelled() bool { return w.cancelled }

// Remaining reports the number of unread inbound bytes.
func (w *Wrapper) Remaining() int { return w.in.Len() }

// Read consumes the next inbound field of type t.
func (w *Wrapper) Read(t protocol.Type) any {
	if w.err != nil {
		return protocol.Zero(t)
	}
	v, err := protocol.ReadField(w.in, t)
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		w.err = fmt.Errorf("%w: packet 0x%02X: read %s: %v", ErrMalformed, w.ID, t, err)
		return protocol.Zero(t)
	}
	return v
}

// Write appends an outbound field of type t. Integer and float values are
// converted to t's Go type.
func (w *Wrapper) Write(t protocol.Type, v any) {
	if w.err != nil {
		return
	}
	cv, err := protocol.Convert(v, t)
	if err != nil {
		w.err = fmt.Errorf("packet 0x%02X: write %s: %w", w.ID, t, err)
		return
	}
	w.fields = append(w.fields, field{t: t, v: cv})
}

// Passthrough reads a field and writes it back unchanged.
func (w *Wrapper) Passthrough(t protocol.Type) any {
	v := w.Read(t)
	w.Write(t, v)
	return v
}

// PassthroughAll moves every unread byte to the output.
func (w *Wrapper) PassthroughAll() {
	w.Passthrough(protocol.Rest)
}

// ReadRest consumes every unread byte.
func (w *Wrapper) ReadRest() []byte {
	b, _ := w.Read(protocol.Rest).([]byte)
	return b
}

// lookup returns the position in fields of the idx-th written field of type t.
func (w *Wrapper) lookup(t protocol.Type, idx int) int {
	n := 0
	for i, f := range w.fields {
		if f.t != t {
			continue
		}
		if n == idx {
			return i
		}
		n++
	}
	return -1
}

// Get returns the idx-th already written field of type t.
func (w *Wrapper) Get(t protocol.Type, idx int) any {
	if w.err != nil {
		return protocol.Zero(t)
	}
	i := w.lookup(t, idx)
	if i < 0 {
		w.err = fmt.Errorf("packet 0x%02X: no %s field at index %d", w.ID, t, idx)
		return protocol.Zero(t)
	}
	return w.fields[i].v
}

// Set replaces the idx-th already written field of type t.
func (w *Wrapper) Set(t protocol.Type, idx int, v any) {
	if w.err != nil {
		return
	}
	i := w.lookup(t, idx)
	if i < 0 {
		w.err = fmt.Errorf("packet 0x%02X: no %s field at index %d", w.ID, t, idx)
		return
	}
	cv, err := protocol.Convert(v, t)
	if err != nil {
		w.err = fmt.Errorf("packet 0x%02X: set %s: %w", w.ID, t, err)
		return
	}
	w.fields[i].v = cv
}

// ClearOutput discards every written field.
func (w *Wrapper) ClearOutput() {
	w.fields = w.fields[:0]
}

// ClearInput discards every unread byte.
func (w *Wrapper) ClearInput() {
	w.in.Reset(nil)
}

func (w *Wrapper) queue(dir packet.Direction, p protocol.Packet, after bool) {
	raw, err := protocol.Encode(p)
	if err != nil {
		w.conn.Logger().Error("dropping synthesized packet", "direction", dir.String(), "id", p.PacketID(), "error", err)
		return
	}
	w.out = append(w.out, synthesized{dir: dir, raw: raw, after: after})
}

// SendToClient emits p towards the client ahead of the current packet.
func (w *Wrapper) SendToClient(p protocol.Packet) { w.queue(packet.Clientbound, p, false) }

// SendToServer emits p towards the server ahead of the current packet.
func (w *Wrapper) SendToServer(p protocol.Packet) { w.queue(packet.Serverbound, p, false) }

// Schedule emits p in direction dir after the current packet.
func (w *Wrapper) Schedule(dir packet.Direction, p protocol.Packet) { w.queue(dir, p, true) }

// Packet encodes the written fields followed by the unread input.
func (w *Wrapper) Packet() (protocol.Raw, error) {
	if w.err != nil {
		return protocol.Raw{}, w.err
	}
	var buf bytes.Buffer
	for _, f := range w.fields {
		if err := protocol.WriteField(&buf, f.t, f.v); err != nil {
			return protocol.Raw{}, fmt.Errorf("packet 0x%02X: encode %s: %w", w.ID, f.t, err)
		}
	}
	if w.in.Len() > 0 {
		if _, err := w.in.WriteTo(&buf); err != nil {
			return protocol.Raw{}, fmt.Errorf("packet 0x%02X: copy tail: %w", w.ID, err)
		}
	}
	return protocol.Raw{ID: w.ID, Data: buf.Bytes()}, nil
}

func as[T any](w *Wrapper, v any) T {
	t, ok := v.(T)
	if !ok && w.err == nil {
		w.err = fmt.Errorf("packet 0x%02X: field holds %T, not %T", w.ID, v, t)
	}
	return t
}

// Read consumes the next field of type t as a T.
func Read[T any](w *Wrapper, t protocol.Type) T {
	return as[T](w, w.Read(t))
}

// Passthrough copies the next field of type t and returns it as a T.
func Passthrough[T any](w *Wrapper, t protocol.Type) T {
	return as[T](w, w.Passthrough(t))
}

// Get returns the idx-th written field of type t as a T.
func Get[T any](w *Wrapper, t protocol.Type, idx int) T {
	return as[T](w, w.Get(t, idx))
}
