package conn

import (
	"fmt"

	"github.com/dxomg/ViaRewind/internal/packet"
	"github.com/dxomg/ViaRewind/pkg/protocol"
)

func (c *Connection) readHandshake() (packet.Handshake, error) {
	var hs packet.Handshake
	raw, err := c.client.ReadPacket()
	if err != nil {
		return hs, err
	}
	if raw.ID != 0x00 {
		return hs, fmt.Errorf("expected handshake packet 0x00, got 0x%02X", raw.ID)
	}
	if err := protocol.Unmarshal(raw.Data, &hs); err != nil {
		return hs, fmt.Errorf("unmarshal handshake: %w", err)
	}

	c.log.Info("handshake received",
		"protocol", hs.ProtocolVersion,
		"server", hs.ServerAddress,
		"port", hs.ServerPort,
		"nextState", hs.NextState,
	)

	switch hs.NextState {
	case packet.NextStateStatus, packet.NextStateLogin:
		return hs, nil
	}
	return hs, fmt.Errorf("invalid next state: %d", hs.NextState)
}
