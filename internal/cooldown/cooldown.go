// Package cooldown draws the 1.9 attack and item cooldown on 1.8 clients,
// which have no indicator of their own.
package cooldown

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/dxomg/ViaRewind/internal/chat"
	"github.com/dxomg/ViaRewind/internal/packet"
	"github.com/dxomg/ViaRewind/internal/storage"
	"github.com/dxomg/ViaRewind/internal/user"
	"github.com/dxomg/ViaRewind/pkg/protocol"
)

// MaxProgressTextLength is the number of symbols in a progress bar.
const MaxProgressTextLength = 10

// Indicator selects a visualization.
type Indicator string

const (
	IndicatorTitle     Indicator = "title"
	IndicatorBossBar   Indicator = "boss-bar"
	IndicatorActionBar Indicator = "action-bar"
	IndicatorDisabled  Indicator = "disabled"
)

// Factory builds the visualization of one connection. from names the
// protocol whose output the drawn packets are, so they pass only through
// the protocols closer to the client.
type Factory func(c *user.Connection, from string) storage.Visualization

// FromIndicator returns the factory for ind.
func FromIndicator(ind Indicator) (Factory, error) {
	switch ind {
	case IndicatorTitle:
		return func(c *user.Connection, from string) storage.Visualization { return NewTitle(c, from) }, nil
	case IndicatorBossBar:
		return func(c *user.Connection, from string) storage.Visualization { return NewBossBar(c, from) }, nil
	case IndicatorActionBar:
		return func(c *user.Connection, from string) storage.Visualization { return NewActionBar(c, from) }, nil
	case IndicatorDisabled:
		return func(*user.Connection, string) storage.Visualization { return Disabled{} }, nil
	}
	return nil, fmt.Errorf("unknown cooldown indicator %q", string(ind))
}

// FromConfig is FromIndicator falling back to the disabled visualization
// when the configured value is not known.
func FromConfig(ind string, log *slog.Logger) Factory {
	f, err := FromIndicator(Indicator(strings.ToLower(strings.TrimSpace(ind))))
	if err != nil {
		log.Warn("invalid cooldown indicator, cooldown visualization disabled", "indicator", ind)
		f, _ = FromIndicator(IndicatorDisabled)
	}
	return f
}

// BuildProgressText renders progress in [0,1] as a bar of symbols, the done
// part dark gray and the rest light gray.
func BuildProgressText(symbol string, progress float64) string {
	progress = max(0, min(1, progress))
	done := int(math.Floor(MaxProgressTextLength * progress))
	return "§8" + strings.Repeat(symbol, done) + "§7" + strings.Repeat(symbol, MaxProgressTextLength-done)
}

// Disabled draws nothing.
type Disabled struct{}

func (Disabled) Show(float64) error { return nil }
func (Disabled) Hide() error        { return nil }

// sender writes 1.8 play packets to the client of one connection.
type sender struct {
	conn *user.Connection
	from string
}

func (s sender) send(packets ...protocol.Packet) error {
	for _, p := range packets {
		raw, err := protocol.Encode(p)
		if err != nil {
			return fmt.Errorf("encode packet 0x%02X: %w", p.PacketID(), err)
		}
		if err := s.conn.Send(packet.Clientbound, s.from, raw); err != nil {
			return fmt.Errorf("send packet 0x%02X: %w", p.PacketID(), err)
		}
	}
	return nil
}

// text wraps legacy text into a JSON text component.
func text(s string) string {
	return converter.LegacyToJSON(s)
}

var converter chat.Converter = chat.NewCodec()
