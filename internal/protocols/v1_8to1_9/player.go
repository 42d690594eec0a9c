package v1_8to1_9

import (
	"bytes"
	"fmt"
	"time"

	"github.com/dxomg/ViaRewind/internal/packet"
	"github.com/dxomg/ViaRewind/internal/packet/pc_1_8"
	"github.com/dxomg/ViaRewind/internal/packet/pc_1_9"
	"github.com/dxomg/ViaRewind/internal/pipeline"
	"github.com/dxomg/ViaRewind/pkg/protocol"
)

// Plugin channels carrying items or a hand.
const (
	channelTrades   = "MC|TrList"
	channelBookOpen = "MC|BOpen"
	channelBookEdit = "MC|BEdit"
	channelBookSign = "MC|BSign"
)

// Entity actions whose number changed in 1.9.
const (
	actionOpenInventory1_8 int32 = 6
	actionOpenInventory1_9 int32 = 7
)

const (
	useEntityAttack     int32 = 1
	useEntityInteractAt int32 = 2
	mainHandRight       int32 = 1
)

// Team modes carrying the team settings.
const (
	teamCreate int8 = 0
	teamUpdate int8 = 2
)

func (t *translator) registerPlayer(p *pipeline.Protocol) {
	p.RegisterClientbound(packet.Play, pc_1_9.JoinGame, pc_1_8.JoinGame,
		pipeline.Map(protocol.Int),          // entity id
		pipeline.Map(protocol.UnsignedByte), // game mode
		pipeline.MapTo(protocol.Int, protocol.Byte),
		pipeline.Handler(func(w *pipeline.Wrapper) error {
			c := w.Conn()
			c.Entities().Clear()
			c.Entities().SetClientEntityID(pipeline.Get[int32](w, protocol.Int, 0))
			c.Session().SetDimension(int32(pipeline.Get[int8](w, protocol.Byte, 0)))
			return nil
		}),
	)

	p.RegisterClientbound(packet.Play, pc_1_9.Respawn, pc_1_8.Respawn,
		pipeline.Map(protocol.Int),
		pipeline.Handler(func(w *pipeline.Wrapper) error {
			c := w.Conn()
			c.Entities().Clear()
			c.Session().SetDimension(pipeline.Get[int32](w, protocol.Int, 0))
			return nil
		}),
	)

	p.RegisterClientbound(packet.Play, pc_1_9.PlayerPositionLook, pc_1_8.PlayerPositionLook,
		pipeline.Map(protocol.Double),
		pipeline.Map(protocol.Double),
		pipeline.Map(protocol.Double),
		pipeline.Map(protocol.Float),
		pipeline.Map(protocol.Float),
		pipeline.Map(protocol.Byte),
		pipeline.Handler(func(w *pipeline.Wrapper) error {
			id := pipeline.Read[int32](w, protocol.VarInt)
			if w.Err() != nil {
				return nil
			}
			w.SendToServer(pc_1_9.TeleportConfirmPacket{TeleportID: id})
			return nil
		}),
	)

	p.RegisterClientbound(packet.Play, pc_1_9.PluginMessage, pc_1_8.PluginMessage,
		pipeline.Handler(t.pluginMessageToClient),
	)

	p.RegisterClientbound(packet.Play, pc_1_9.Teams, pc_1_8.Teams,
		pipeline.Handler(teams),
	)

	p.CancelClientbound(packet.Play, pc_1_9.BossBar)
	p.CancelClientbound(packet.Play, pc_1_9.VehicleMove)

	p.RegisterServerbound(packet.Play, pc_1_8.TabComplete, pc_1_9.TabComplete,
		pipeline.Map(protocol.String),
		pipeline.Handler(func(w *pipeline.Wrapper) error {
			w.Write(protocol.Bool, false) // assume command
			return nil
		}),
	)

	p.RegisterServerbound(packet.Play, pc_1_8.ClientSettings, pc_1_9.ClientSettings,
		pipeline.Map(protocol.String), // locale
		pipeline.Map(protocol.Byte),   // view distance
		pipeline.MapTo(protocol.Byte, protocol.VarInt),
		pipeline.Map(protocol.Bool),         // chat colors
		pipeline.Map(protocol.UnsignedByte), // skin parts
		pipeline.Handler(func(w *pipeline.Wrapper) error {
			w.Write(protocol.VarInt, mainHandRight)
			return nil
		}),
	)

	p.RegisterServerbound(packet.Play, pc_1_8.AnimationServerbound, pc_1_9.AnimationServerbound,
		pipeline.Handler(func(w *pipeline.Wrapper) error {
			w.Conn().Cooldown().Hit(time.Now())
			w.Write(protocol.VarInt, pc_1_9.MainHand)
			return nil
		}),
	)

	p.RegisterServerbound(packet.Play, pc_1_8.UseEntity, pc_1_9.UseEntity,
		pipeline.Map(protocol.VarInt),
		pipeline.Handler(func(w *pipeline.Wrapper) error {
			typ := pipeline.Passthrough[int32](w, protocol.VarInt)
			if typ == useEntityInteractAt {
				w.Passthrough(protocol.Float)
				w.Passthrough(protocol.Float)
				w.Passthrough(protocol.Float)
			}
			if typ != useEntityAttack {
				w.Write(protocol.VarInt, pc_1_9.MainHand)
			}
			return nil
		}),
	)

	p.RegisterServerbound(packet.Play, pc_1_8.EntityAction, pc_1_9.EntityAction,
		pipeline.Map(protocol.VarInt),
		pipeline.Handler(func(w *pipeline.Wrapper) error {
			action := pipeline.Read[int32](w, protocol.VarInt)
			if action == actionOpenInventory1_8 {
				action = actionOpenInventory1_9
			}
			w.Write(protocol.VarInt, action)
			return nil
		}),
	)

	p.RegisterServerbound(packet.Play, pc_1_8.PluginMessageServerbound, pc_1_9.PluginMessageServerbound,
		pipeline.Handler(t.pluginMessageToServer),
	)
}

// teams drops the collision rule 1.8 does not know.
func teams(w *pipeline.Wrapper) error {
	w.Passthrough(protocol.String)
	mode := pipeline.Passthrough[int8](w, protocol.Byte)
	if mode == teamCreate || mode == teamUpdate {
		w.Passthrough(protocol.String) // display name
		w.Passthrough(protocol.String) // prefix
		w.Passthrough(protocol.String) // suffix
		w.Passthrough(protocol.Byte)   // friendly fire
		w.Passthrough(protocol.String) // name tag visibility
		w.Read(protocol.String)        // collision rule
	}
	return nil
}

func (t *translator) pluginMessageToClient(w *pipeline.Wrapper) error {
	channel := pipeline.Passthrough[string](w, protocol.String)
	if w.Err() != nil {
		return nil
	}
	switch channel {
	case channelTrades:
		out, err := t.tradesToClient(w.ReadRest())
		if err != nil {
			return fmt.Errorf("%w: %s: %v", pipeline.ErrMalformed, channel, err)
		}
		w.Write(protocol.Rest, out)
	case channelBookOpen:
		w.ClearInput() // hand
	}
	return nil
}

// tradesToClient rewrites the items of a villager trade list.
func (t *translator) tradesToClient(data []byte) ([]byte, error) {
	r := bytes.NewReader(data)
	var out bytes.Buffer

	window, err := protocol.ReadI32(r)
	if err != nil {
		return nil, fmt.Errorf("read window id: %w", err)
	}
	count, err := protocol.ReadU8(r)
	if err != nil {
		return nil, fmt.Errorf("read trade count: %w", err)
	}
	if err := protocol.WriteField(&out, protocol.Int, window); err != nil {
		return nil, err
	}
	out.WriteByte(count)

	item := func() error {
		it, err := protocol.ReadItem(r)
		if err != nil {
			return err
		}
		return protocol.WriteItem(&out, t.items.ToClient(it))
	}
	flag := func() (bool, error) {
		v, err := protocol.ReadBool(r)
		if err != nil {
			return false, err
		}
		return v, protocol.WriteField(&out, protocol.Bool, v)
	}
	for i := range int(count) {
		if err := item(); err != nil {
			return nil, fmt.Errorf("trade %d input: %w", i, err)
		}
		if err := item(); err != nil {
			return nil, fmt.Errorf("trade %d output: %w", i, err)
		}
		second, err := flag()
		if err != nil {
			return nil, fmt.Errorf("trade %d: %w", i, err)
		}
		if second {
			if err := item(); err != nil {
				return nil, fmt.Errorf("trade %d second input: %w", i, err)
			}
		}
		if _, err := flag(); err != nil {
			return nil, fmt.Errorf("trade %d: %w", i, err)
		}
		var uses [2]int32
		for j := range uses {
			if uses[j], err = protocol.ReadI32(r); err != nil {
				return nil, fmt.Errorf("trade %d uses: %w", i, err)
			}
			if err := protocol.WriteField(&out, protocol.Int, uses[j]); err != nil {
				return nil, err
			}
		}
	}
	return out.Bytes(), nil
}

func (t *translator) pluginMessageToServer(w *pipeline.Wrapper) error {
	channel := pipeline.Passthrough[string](w, protocol.String)
	if w.Err() != nil || (channel != channelBookEdit && channel != channelBookSign) {
		return nil
	}
	book, err := protocol.ReadItem(bytes.NewReader(w.ReadRest()))
	if err != nil {
		return fmt.Errorf("%w: %s: %v", pipeline.ErrMalformed, channel, err)
	}
	w.Write(protocol.Item, t.items.ToServer(book))
	return nil
}
