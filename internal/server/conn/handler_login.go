package conn

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dxomg/ViaRewind/internal/packet"
	"github.com/dxomg/ViaRewind/internal/pipeline"
	"github.com/dxomg/ViaRewind/internal/protocols"
	"github.com/dxomg/ViaRewind/internal/user"
	"github.com/dxomg/ViaRewind/pkg/protocol"
)

// ErrOnlineMode is returned when the backend asks for encryption. The proxy
// sits between client and server and cannot take part in an online login.
var ErrOnlineMode = errors.New("backend must run in offline mode")

// proxyLogin builds the translation chain for the client and runs the
// session through login and play.
func (c *Connection) proxyLogin(ctx context.Context, hs packet.Handshake) error {
	if hs.ProtocolVersion != c.clientVersion {
		c.log.Warn("unsupported protocol version", "version", hs.ProtocolVersion, "want", c.clientVersion)
		return c.kick(fmt.Sprintf("Please connect with Minecraft %s", packet.VersionName(c.clientVersion)))
	}

	chain, err := protocols.Path(c.clientVersion, c.serverVersion, c.opts.Env)
	if err != nil {
		return fmt.Errorf("build protocol chain: %w", err)
	}

	reg := c.opts.Registry
	c.user = user.NewConnection(user.Options{
		ID:            reg.AllocateID(),
		Addr:          c.conn.RemoteAddr().String(),
		Logger:        c.log,
		Debug:         c.opts.Config.Debug,
		ClientVersion: c.clientVersion,
		ServerVersion: c.serverVersion,
	})
	c.user.SetState(packet.Login)
	c.chain = pipeline.NewChain(c.user, chain...)
	c.chain.Init()
	c.user.SetSender(c)
	c.user.SetCompressionNotifier(c.compressionEngaged)

	if err := c.dialBackend(ctx, hs); err != nil {
		c.kick("Could not connect to the server")
		return err
	}

	reg.Add(c.user)
	defer reg.Remove(c.user)

	c.log.Info("session started", "client", packet.VersionName(c.clientVersion),
		"server", packet.VersionName(c.serverVersion), "protocols", len(chain))
	return c.pump(ctx)
}

// kick ends a login before any backend traffic with a disconnect message.
func (c *Connection) kick(reason string) error {
	msg, err := json.Marshal(map[string]string{"text": reason})
	if err != nil {
		return fmt.Errorf("encode disconnect reason: %w", err)
	}
	raw, err := protocol.Encode(packet.LoginDisconnect{Reason: string(msg)})
	if err != nil {
		return fmt.Errorf("encode login disconnect: %w", err)
	}
	c.log.Info("disconnecting", "reason", reason)
	return c.client.WritePacket(raw)
}

// observeLogin reacts to the login packets the transport itself depends on,
// ahead of translation.
func (c *Connection) observeLogin(raw protocol.Raw) error {
	switch raw.ID {
	case packet.EncryptionRequestID:
		c.kick("The server runs in online mode, which the proxy does not support")
		return ErrOnlineMode
	case packet.LoginSetCompressionID:
		var sc packet.SetCompression
		if err := protocol.Unmarshal(raw.Data, &sc); err != nil {
			return fmt.Errorf("unmarshal set compression: %w", err)
		}
		// Every later backend frame uses the compressed format.
		c.backend.SetThreshold(sc.Threshold)
		c.log.Debug("backend compression enabled", "threshold", sc.Threshold)
	case packet.LoginSuccessID:
		var ls packet.LoginSuccess
		if err := protocol.Unmarshal(raw.Data, &ls); err != nil {
			return fmt.Errorf("unmarshal login success: %w", err)
		}
		id, err := uuid.Parse(ls.UUID)
		if err != nil {
			return fmt.Errorf("parse login uuid %q: %w", ls.UUID, err)
		}
		c.user.SetIdentity(id, ls.Username)
		c.user.Logger().Info("login success", "uuid", id)
	}
	return nil
}

// compressionEngaged runs when the chain consumes the compression handshake
// without forwarding it, so the client side stays uncompressed. The backend
// side already switched in observeLogin.
func (c *Connection) compressionEngaged(threshold int32) {
	c.log.Debug("compression handshake absorbed", "threshold", threshold)
}

// afterClientWrite switches the client side to the compressed format once
// the client has been told to.
func (c *Connection) afterClientWrite(o outbound) {
	if o.state != packet.Login || o.raw.ID != packet.LoginSetCompressionID {
		return
	}
	var sc packet.SetCompression
	if err := protocol.Unmarshal(o.raw.Data, &sc); err != nil {
		c.log.Warn("unreadable set compression sent to client", "error", err)
		return
	}
	c.client.SetThreshold(sc.Threshold)
}
