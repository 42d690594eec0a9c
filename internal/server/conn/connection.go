package conn

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dxomg/ViaRewind/internal/packet"
	"github.com/dxomg/ViaRewind/internal/pipeline"
	"github.com/dxomg/ViaRewind/internal/protocols"
	"github.com/dxomg/ViaRewind/internal/server/config"
	"github.com/dxomg/ViaRewind/internal/user"
	"github.com/dxomg/ViaRewind/pkg/protocol"
)

const dialTimeout = 10 * time.Second

// Dialer opens the connection to the backend server.
type Dialer func(ctx context.Context, network, addr string) (net.Conn, error)

// Options carry what every proxied connection shares.
type Options struct {
	Config   *config.Config
	Log      *slog.Logger
	Env      protocols.Env
	Registry *user.Registry
	Dial     Dialer
}

// outbound is a packet queued for one side, tagged with the state it was
// produced in.
type outbound struct {
	raw   protocol.Raw
	state packet.State
}

// Connection proxies one client to the backend through the translation chain.
type Connection struct {
	conn   net.Conn
	opts   Options
	log    *slog.Logger
	client *framer

	clientVersion int32
	serverVersion int32

	backendConn net.Conn
	backend     *framer

	user  *user.Connection
	chain *pipeline.Chain

	toClient chan outbound
	toServer chan outbound

	closeOnce sync.Once
}

// NewConnection wraps an accepted client connection.
func NewConnection(conn net.Conn, opts Options) *Connection {
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	if opts.Dial == nil {
		d := &net.Dialer{Timeout: dialTimeout}
		opts.Dial = d.DialContext
	}
	if opts.Registry == nil {
		opts.Registry = user.NewRegistry()
	}
	queue := opts.Config.SendQueueSize
	if queue <= 0 {
		queue = config.DefaultConfig().SendQueueSize
	}
	return &Connection{
		conn:     conn,
		opts:     opts,
		log:      opts.Log.With("addr", conn.RemoteAddr().String()),
		client:   newFramer(conn),
		toClient: make(chan outbound, queue),
		toServer: make(chan outbound, queue),
	}
}

// Handle runs the connection lifecycle until either side closes.
func (c *Connection) Handle(ctx context.Context) {
	defer func() {
		c.close()
		c.log.Info("connection closed")
	}()

	c.log.Info("connection accepted")

	var err error
	c.clientVersion, c.serverVersion, err = c.opts.Config.Versions()
	if err != nil {
		c.log.Error("resolving versions", "error", err)
		return
	}

	hs, err := c.readHandshake()
	if err != nil {
		c.log.Error("reading handshake", "error", err)
		return
	}

	switch hs.NextState {
	case packet.NextStateStatus:
		err = c.proxyStatus(ctx, hs)
	case packet.NextStateLogin:
		err = c.proxyLogin(ctx, hs)
	}
	if err != nil && !closedErr(err) && ctx.Err() == nil {
		c.log.Error("proxying connection", "error", err)
	}
}

func (c *Connection) close() {
	c.closeOnce.Do(func() {
		c.conn.Close()
		if c.backendConn != nil {
			c.backendConn.Close()
		}
	})
}

func closedErr(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, io.ErrClosedPipe) || errors.Is(err, net.ErrClosed)
}

// dialBackend connects to the server and replays the handshake with the
// server protocol version.
func (c *Connection) dialBackend(ctx context.Context, hs packet.Handshake) error {
	nc, err := c.opts.Dial(ctx, "tcp", c.opts.Config.Backend)
	if err != nil {
		return fmt.Errorf("dial backend %s: %w", c.opts.Config.Backend, err)
	}
	c.backendConn = nc
	c.backend = newFramer(nc)

	hs.ProtocolVersion = c.serverVersion
	raw, err := protocol.Encode(hs)
	if err != nil {
		return fmt.Errorf("encode handshake: %w", err)
	}
	if err := c.backend.WritePacket(raw); err != nil {
		return fmt.Errorf("forward handshake: %w", err)
	}
	return nil
}

// pump runs the four copy loops of a play session. The first failure stops
// them all.
func (c *Connection) pump(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.readClient(ctx) })
	g.Go(func() error { return c.readBackend(ctx) })
	g.Go(func() error { return c.writeLoop(ctx, c.client, c.toClient, "client", c.afterClientWrite) })
	g.Go(func() error { return c.writeLoop(ctx, c.backend, c.toServer, "backend", nil) })
	g.Go(func() error {
		<-ctx.Done()
		c.close()
		return nil
	})
	return g.Wait()
}

func (c *Connection) readClient(ctx context.Context) error {
	for {
		raw, err := c.client.ReadPacket()
		if err != nil {
			return fmt.Errorf("read client: %w", err)
		}
		state := c.user.State()
		res, err := c.chain.Process(packet.Serverbound, state, raw)
		if err != nil {
			return fmt.Errorf("serverbound %s 0x%02X: %w", state, raw.ID, err)
		}
		if err := c.enqueue(ctx, res, state); err != nil {
			return err
		}
	}
}

func (c *Connection) readBackend(ctx context.Context) error {
	for {
		raw, err := c.backend.ReadPacket()
		if err != nil {
			return fmt.Errorf("read backend: %w", err)
		}
		state := c.user.State()
		if state == packet.Login {
			if err := c.observeLogin(raw); err != nil {
				return err
			}
		}
		res, err := c.chain.Process(packet.Clientbound, state, raw)
		if err != nil {
			return fmt.Errorf("clientbound %s 0x%02X: %w", state, raw.ID, err)
		}
		if state == packet.Login && raw.ID == packet.LoginSuccessID {
			c.user.SetState(packet.Play)
		}
		if err := c.enqueue(ctx, res, state); err != nil {
			return err
		}
	}
}

func (c *Connection) enqueue(ctx context.Context, res pipeline.Result, state packet.State) error {
	for _, raw := range res.ToServer {
		select {
		case c.toServer <- outbound{raw: raw, state: state}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	for _, raw := range res.ToClient {
		select {
		case c.toClient <- outbound{raw: raw, state: state}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (c *Connection) writeLoop(ctx context.Context, f *framer, queue <-chan outbound, side string, after func(outbound)) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case o := <-queue:
			if err := f.WritePacket(o.raw); err != nil {
				return fmt.Errorf("write %s: %w", side, err)
			}
			if after != nil {
				after(o)
			}
		}
	}
}

// Send implements user.Sender for packets produced by background tasks and
// deferred transforms. The caller holds the connection lock, so it never
// blocks on a full queue.
func (c *Connection) Send(dir packet.Direction, after string, raw protocol.Raw) error {
	res, err := c.chain.Inject(dir, after, raw)
	if err != nil {
		return err
	}
	state := c.user.State()
	for _, r := range res.ToClient {
		if err := offer(c.toClient, outbound{raw: r, state: state}); err != nil {
			return err
		}
	}
	for _, r := range res.ToServer {
		if err := offer(c.toServer, outbound{raw: r, state: state}); err != nil {
			return err
		}
	}
	return nil
}

func offer(ch chan<- outbound, o outbound) error {
	select {
	case ch <- o:
		return nil
	default:
		return user.ErrQueueFull
	}
}
