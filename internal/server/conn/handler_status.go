package conn

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/dxomg/ViaRewind/internal/packet"
	"github.com/dxomg/ViaRewind/pkg/protocol"
)

const (
	statusResponseID int32 = 0x00
	statusPongID     int32 = 0x01
)

// proxyStatus relays a server list ping, advertising the client version in
// place of the server one.
func (c *Connection) proxyStatus(ctx context.Context, hs packet.Handshake) error {
	if err := c.dialBackend(ctx, hs); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for {
			raw, err := c.client.ReadPacket()
			if err != nil {
				return fmt.Errorf("read client: %w", err)
			}
			if err := c.backend.WritePacket(raw); err != nil {
				return fmt.Errorf("write backend: %w", err)
			}
		}
	})
	g.Go(func() error {
		for {
			raw, err := c.backend.ReadPacket()
			if err != nil {
				return fmt.Errorf("read backend: %w", err)
			}
			if raw.ID == statusResponseID {
				if raw, err = c.rewriteStatus(raw, hs.ProtocolVersion); err != nil {
					return err
				}
			}
			if err := c.client.WritePacket(raw); err != nil {
				return fmt.Errorf("write client: %w", err)
			}
			if raw.ID == statusPongID {
				c.close()
				return nil
			}
		}
	})
	g.Go(func() error {
		<-ctx.Done()
		c.close()
		return nil
	})
	return g.Wait()
}

// rewriteStatus replaces the advertised protocol with the one the client
// pinged with when that version is the one being served.
func (c *Connection) rewriteStatus(raw protocol.Raw, pinged int32) (protocol.Raw, error) {
	var resp packet.StatusResponse
	if err := protocol.Unmarshal(raw.Data, &resp); err != nil {
		return raw, fmt.Errorf("unmarshal status response: %w", err)
	}
	rewritten, err := RewriteStatusJSON(resp.JSONResponse, c.serverVersion, c.clientVersion, pinged)
	if err != nil {
		c.log.Warn("status response left untouched", "error", err)
		return raw, nil
	}
	return protocol.Encode(packet.StatusResponse{JSONResponse: rewritten})
}

// RewriteStatusJSON swaps the version block of a status response. A server
// advertising serverVersion is shown to a client pinging with clientVersion
// as compatible; any other advertised version is left alone.
func RewriteStatusJSON(doc string, serverVersion, clientVersion, pinged int32) (string, error) {
	var resp map[string]any
	if err := json.Unmarshal([]byte(doc), &resp); err != nil {
		return "", fmt.Errorf("parse status json: %w", err)
	}
	version, ok := resp["version"].(map[string]any)
	if !ok {
		return doc, nil
	}
	advertised, ok := version["protocol"].(float64)
	if !ok || int32(advertised) != serverVersion || pinged != clientVersion {
		return doc, nil
	}
	version["protocol"] = clientVersion
	if name, ok := version["name"].(string); ok && name == packet.VersionName(serverVersion) {
		version["name"] = packet.VersionName(clientVersion)
	}
	out, err := json.Marshal(resp)
	if err != nil {
		return "", fmt.Errorf("marshal status json: %w", err)
	}
	return string(out), nil
}
