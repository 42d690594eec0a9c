package v1_7to1_8

import (
	"bytes"
	"fmt"

	"github.com/dxomg/ViaRewind/internal/packet"
	"github.com/dxomg/ViaRewind/internal/packet/pc_1_7"
	"github.com/dxomg/ViaRewind/internal/packet/pc_1_8"
	"github.com/dxomg/ViaRewind/internal/pipeline"
	"github.com/dxomg/ViaRewind/internal/storage"
	"github.com/dxomg/ViaRewind/internal/user"
	"github.com/dxomg/ViaRewind/pkg/protocol"
)

// Plugin channels carrying items.
const (
	channelTrades   = "MC|TrList"
	channelBookEdit = "MC|BEdit"
	channelBookSign = "MC|BSign"
	channelRPack    = "MC|RPack"
)

// Skin part mask sent for 1.7 clients, with and without the cape bit.
const (
	skinPartsAll    uint8 = 0x7F
	skinPartsNoCape uint8 = 0x7E
)

func (t *translator) registerPlayer(p *pipeline.Protocol) {
	p.RegisterClientbound(packet.Play, pc_1_8.KeepAlive, pc_1_7.KeepAlive,
		pipeline.MapTo(protocol.VarInt, protocol.Int),
	)

	p.RegisterClientbound(packet.Play, pc_1_8.JoinGame, pc_1_7.JoinGame,
		pipeline.Map(protocol.Int),          // entity id
		pipeline.Map(protocol.UnsignedByte), // game mode
		pipeline.Map(protocol.Byte),         // dimension
		pipeline.Map(protocol.UnsignedByte), // difficulty
		pipeline.Map(protocol.UnsignedByte), // max players
		pipeline.Map(protocol.String),       // level type
		pipeline.Handler(func(w *pipeline.Wrapper) error {
			w.Read(protocol.Bool) // reduced debug info
			entities := w.Conn().Entities()
			entities.Clear()
			entities.SetClientEntityID(pipeline.Get[int32](w, protocol.Int, 0))
			mode := pipeline.Get[uint8](w, protocol.UnsignedByte, 0)
			w.Set(protocol.UnsignedByte, 0, emulateSpectator(entities, mode))
			return nil
		}),
	)

	p.RegisterClientbound(packet.Play, pc_1_8.Chat, pc_1_7.Chat,
		pipeline.Map(protocol.String),
		pipeline.Handler(func(w *pipeline.Wrapper) error {
			if pipeline.Read[int8](w, protocol.Byte) == packet.ChatPositionGameInfo {
				w.Cancel()
			}
			return nil
		}),
	)

	p.RegisterClientbound(packet.Play, pc_1_8.SpawnPosition, pc_1_7.SpawnPosition,
		pipeline.Handler(func(w *pipeline.Wrapper) error {
			x, y, z := readPosition(w)
			w.Write(protocol.Int, x)
			w.Write(protocol.Int, y)
			w.Write(protocol.Int, z)
			return nil
		}),
	)

	p.RegisterClientbound(packet.Play, pc_1_8.UpdateHealth, pc_1_7.UpdateHealth,
		pipeline.Map(protocol.Float),
		pipeline.MapTo(protocol.VarInt, protocol.Short),
		pipeline.Map(protocol.Float),
	)

	p.RegisterClientbound(packet.Play, pc_1_8.Respawn, pc_1_7.Respawn,
		pipeline.Map(protocol.Int),
		pipeline.Map(protocol.UnsignedByte),
		pipeline.Map(protocol.UnsignedByte),
		pipeline.Map(protocol.String),
		pipeline.Handler(func(w *pipeline.Wrapper) error {
			entities := w.Conn().Entities()
			entities.Clear()
			mode := pipeline.Get[uint8](w, protocol.UnsignedByte, 1)
			w.Set(protocol.UnsignedByte, 1, emulateSpectator(entities, mode))
			return nil
		}),
	)

	p.RegisterClientbound(packet.Play, pc_1_8.PlayerPositionLook, pc_1_7.PlayerPositionLook,
		pipeline.Handler(playerPositionLook),
	)

	p.RegisterClientbound(packet.Play, pc_1_8.UseBed, pc_1_7.UseBed,
		pipeline.MapTo(protocol.VarInt, protocol.Int),
		pipeline.Handler(func(w *pipeline.Wrapper) error {
			x, y, z := readPosition(w)
			w.Write(protocol.Int, x)
			w.Write(protocol.UnsignedByte, y)
			w.Write(protocol.Int, z)
			return nil
		}),
	)

	p.RegisterClientbound(packet.Play, pc_1_8.SetExperience, pc_1_7.SetExperience,
		pipeline.Map(protocol.Float),
		pipeline.MapTo(protocol.VarInt, protocol.Short),
		pipeline.MapTo(protocol.VarInt, protocol.Short),
	)

	p.RegisterClientbound(packet.Play, pc_1_8.ChangeGameState, pc_1_7.ChangeGameState,
		pipeline.Map(protocol.UnsignedByte),
		pipeline.Map(protocol.Float),
		pipeline.Handler(changeGameState),
	)

	p.RegisterClientbound(packet.Play, pc_1_8.PluginMessage, pc_1_7.PluginMessage,
		pipeline.Handler(t.pluginMessageToClient),
	)

	p.RegisterClientbound(packet.Play, pc_1_8.ResourcePackSend, pc_1_7.PluginMessage,
		pipeline.Handler(func(w *pipeline.Wrapper) error {
			url := pipeline.Read[string](w, protocol.String)
			w.ClearInput()
			w.Write(protocol.String, channelRPack)
			w.Write(protocol.ShortByteArray, []byte(url))
			return nil
		}),
	)

	for _, id := range []int32{
		pc_1_8.ServerDifficulty,
		pc_1_8.CombatEvent,
		pc_1_8.Camera,
		pc_1_8.Title,
		pc_1_8.PlayerListHeader,
		pc_1_8.UpdateEntityNBT,
	} {
		p.CancelClientbound(packet.Play, id)
	}

	t.registerPlayerList(p)

	p.RegisterServerbound(packet.Play, pc_1_7.KeepAliveServerbound, pc_1_8.KeepAliveServerbound,
		pipeline.MapTo(protocol.Int, protocol.VarInt),
	)

	p.RegisterServerbound(packet.Play, pc_1_7.UseEntity, pc_1_8.UseEntity,
		pipeline.MapTo(protocol.Int, protocol.VarInt),
		pipeline.MapTo(protocol.Byte, protocol.VarInt),
	)

	p.RegisterServerbound(packet.Play, pc_1_7.Player, pc_1_8.Player,
		pipeline.Map(protocol.Bool),
		pipeline.Handler(func(w *pipeline.Wrapper) error {
			w.Conn().Session().SetOnGround(pipeline.Get[bool](w, protocol.Bool, 0))
			return nil
		}),
	)

	p.RegisterServerbound(packet.Play, pc_1_7.PlayerPosition, pc_1_8.PlayerPosition,
		pipeline.Handler(func(w *pipeline.Wrapper) error {
			return serverboundPosition(w, false)
		}),
	)

	p.RegisterServerbound(packet.Play, pc_1_7.PlayerLook, pc_1_8.PlayerLook,
		pipeline.Map(protocol.Float),
		pipeline.Map(protocol.Float),
		pipeline.Map(protocol.Bool),
		pipeline.Handler(func(w *pipeline.Wrapper) error {
			session := w.Conn().Session()
			session.SetLook(pipeline.Get[float32](w, protocol.Float, 0), pipeline.Get[float32](w, protocol.Float, 1))
			session.SetOnGround(pipeline.Get[bool](w, protocol.Bool, 0))
			return nil
		}),
	)

	p.RegisterServerbound(packet.Play, pc_1_7.PlayerPositionAndLook, pc_1_8.PlayerPositionAndLook,
		pipeline.Handler(func(w *pipeline.Wrapper) error {
			return serverboundPosition(w, true)
		}),
	)

	p.RegisterServerbound(packet.Play, pc_1_7.AnimationServerbound, pc_1_8.AnimationServerbound,
		pipeline.Handler(func(w *pipeline.Wrapper) error {
			w.Read(protocol.Int) // entity id
			if pipeline.Read[int8](w, protocol.Byte) != pc_1_7.AnimationSwingArm {
				w.Cancel()
			}
			return nil
		}),
	)

	p.RegisterServerbound(packet.Play, pc_1_7.EntityAction, pc_1_8.EntityAction,
		pipeline.MapTo(protocol.Int, protocol.VarInt),
		pipeline.Handler(func(w *pipeline.Wrapper) error {
			action := pipeline.Read[int8](w, protocol.Byte)
			w.Write(protocol.VarInt, int32(action)-1)
			w.Write(protocol.VarInt, w.Read(protocol.Int)) // horse jump boost
			return nil
		}),
	)

	p.RegisterServerbound(packet.Play, pc_1_7.SteerVehicle, pc_1_8.SteerVehicle,
		pipeline.Map(protocol.Float),
		pipeline.Map(protocol.Float),
		pipeline.Handler(func(w *pipeline.Wrapper) error {
			var flags uint8
			if pipeline.Read[bool](w, protocol.Bool) {
				flags |= 0x01
			}
			if pipeline.Read[bool](w, protocol.Bool) {
				flags |= 0x02
			}
			w.Write(protocol.UnsignedByte, flags)
			return nil
		}),
	)

	p.RegisterServerbound(packet.Play, pc_1_7.TabComplete, pc_1_8.TabComplete,
		pipeline.Map(protocol.String),
		pipeline.Handler(func(w *pipeline.Wrapper) error {
			w.Write(protocol.Bool, false) // has position
			return nil
		}),
	)

	p.RegisterServerbound(packet.Play, pc_1_7.ClientSettings, pc_1_8.ClientSettings,
		pipeline.Map(protocol.String), // locale
		pipeline.Map(protocol.Byte),   // view distance
		pipeline.Map(protocol.Byte),   // chat mode
		pipeline.Map(protocol.Bool),   // chat colors
		pipeline.Handler(func(w *pipeline.Wrapper) error {
			w.Read(protocol.Byte) // difficulty
			parts := skinPartsNoCape
			if pipeline.Read[bool](w, protocol.Bool) {
				parts = skinPartsAll
			}
			w.Write(protocol.UnsignedByte, parts)
			return nil
		}),
	)

	p.RegisterServerbound(packet.Play, pc_1_7.ClientStatus, pc_1_8.ClientStatus,
		pipeline.MapTo(protocol.Byte, protocol.VarInt),
	)

	p.RegisterServerbound(packet.Play, pc_1_7.PluginMessageServerbound, pc_1_8.PluginMessageServerbound,
		pipeline.Handler(t.pluginMessageToServer),
	)
}

// emulateSpectator records whether mode is spectator and returns the mode
// shown to the client, which lacks it. The hardcore bit is kept.
func emulateSpectator(e *storage.Entities, mode uint8) uint8 {
	hardcore := mode & packet.GameModeHardcore
	spectator := mode&^packet.GameModeHardcore == packet.GameModeSpectator
	e.SetSpectator(spectator)
	if spectator {
		return packet.GameModeAdventure | hardcore
	}
	return mode
}

func readPosition(w *pipeline.Wrapper) (x, y, z int) {
	return protocol.DecodePosition(pipeline.Read[int64](w, protocol.Position))
}

func writePosition(w *pipeline.Wrapper, x, y, z int32) {
	w.Write(protocol.Position, protocol.EncodePosition(int(x), int(y), int(z)))
}

// playerPositionLook resolves relative fields against the tracked position
// and converts the feet position to the eye position 1.7 expects.
func playerPositionLook(w *pipeline.Wrapper) error {
	x := pipeline.Read[float64](w, protocol.Double)
	y := pipeline.Read[float64](w, protocol.Double)
	z := pipeline.Read[float64](w, protocol.Double)
	yaw := pipeline.Read[float32](w, protocol.Float)
	pitch := pipeline.Read[float32](w, protocol.Float)
	flags := pipeline.Read[int8](w, protocol.Byte)
	if w.Err() != nil {
		return nil
	}

	session := w.Conn().Session()
	pos, _ := session.Position()
	if flags&packet.RelativeX != 0 {
		x += pos.X
	}
	if flags&packet.RelativeY != 0 {
		y += pos.Y
	}
	if flags&packet.RelativeZ != 0 {
		z += pos.Z
	}
	if flags&packet.RelativeYaw != 0 {
		yaw += pos.Yaw
	}
	if flags&packet.RelativePitch != 0 {
		pitch += pos.Pitch
	}
	session.SetPosition(x, y, z)
	session.SetLook(yaw, pitch)

	w.Write(protocol.Double, x)
	w.Write(protocol.Double, y+packet.PlayerEyeHeight)
	w.Write(protocol.Double, z)
	w.Write(protocol.Float, yaw)
	w.Write(protocol.Float, pitch)
	w.Write(protocol.Bool, pos.OnGround)
	return nil
}

// serverboundPosition drops the head stance 1.7 sends between feet y and z.
func serverboundPosition(w *pipeline.Wrapper, look bool) error {
	x := pipeline.Passthrough[float64](w, protocol.Double)
	y := pipeline.Passthrough[float64](w, protocol.Double)
	w.Read(protocol.Double) // stance
	z := pipeline.Passthrough[float64](w, protocol.Double)
	var yaw, pitch float32
	if look {
		yaw = pipeline.Passthrough[float32](w, protocol.Float)
		pitch = pipeline.Passthrough[float32](w, protocol.Float)
	}
	onGround := pipeline.Passthrough[bool](w, protocol.Bool)
	if w.Err() != nil {
		return nil
	}

	session := w.Conn().Session()
	session.SetPosition(x, y, z)
	session.SetOnGround(onGround)
	if look {
		session.SetLook(yaw, pitch)
	}
	return nil
}

// changeGameState emulates spectator mode and refreshes the armor slots when
// the client enters or leaves it.
func changeGameState(w *pipeline.Wrapper) error {
	if pipeline.Get[uint8](w, protocol.UnsignedByte, 0) != packet.ReasonChangeGameMode {
		return nil
	}
	c := w.Conn()
	entities := c.Entities()
	was := entities.IsSpectator()
	mode := uint8(pipeline.Get[float32](w, protocol.Float, 0))
	w.Set(protocol.Float, 0, float32(emulateSpectator(entities, mode)))
	if was != entities.IsSpectator() {
		sendArmor(w)
	}
	return nil
}

// sendArmor schedules the client's armor slots: the stored equipment, or
// while spectating nothing but the player's own head.
func sendArmor(w *pipeline.Wrapper) {
	c := w.Conn()
	id, _ := c.Identity()
	spectator := c.Entities().IsSpectator()
	for slot := int16(storage.FirstArmorWindowSlot); slot <= storage.LastArmorWindowSlot; slot++ {
		armor, _ := storage.ArmorIndex(slot)
		var it *protocol.ItemStack
		switch {
		case !spectator:
			it = c.Session().Equipment(id, armor)
		case armor == storage.ArmorHelmet:
			it = ownSkull(c)
		}
		w.Schedule(packet.Clientbound, pc_1_7.SetSlotPacket{Slot: slot, Item: it})
	}
}

// ownSkull returns a head carrying the client's skin, or nil without a
// profile.
func ownSkull(c *user.Connection) *protocol.ItemStack {
	id, _ := c.Identity()
	profile := c.Profiles().Get(id)
	if profile == nil {
		return nil
	}
	return profile.Skull()
}

func (t *translator) pluginMessageToClient(w *pipeline.Wrapper) error {
	channel := pipeline.Passthrough[string](w, protocol.String)
	data := w.ReadRest()
	if w.Err() != nil {
		return nil
	}
	if channel == channelTrades {
		out, err := t.tradesToClient(data)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", pipeline.ErrMalformed, channel, err)
		}
		data = out
	}
	w.Write(protocol.ShortByteArray, data)
	return nil
}

// tradesToClient rewrites a villager trade list. 1.7 lacks the use counters
// following each trade's disabled flag.
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
		return protocol.WriteCompressedItem(&out, t.items.ToClient(it))
	}
	for i := range int(count) {
		if err := item(); err != nil {
			return nil, fmt.Errorf("trade %d input: %w", i, err)
		}
		if err := item(); err != nil {
			return nil, fmt.Errorf("trade %d output: %w", i, err)
		}
		second, err := protocol.ReadBool(r)
		if err != nil {
			return nil, fmt.Errorf("trade %d: %w", i, err)
		}
		if err := protocol.WriteField(&out, protocol.Bool, second); err != nil {
			return nil, err
		}
		if second {
			if err := item(); err != nil {
				return nil, fmt.Errorf("trade %d second input: %w", i, err)
			}
		}
		disabled, err := protocol.ReadBool(r)
		if err != nil {
			return nil, fmt.Errorf("trade %d: %w", i, err)
		}
		if err := protocol.WriteField(&out, protocol.Bool, disabled); err != nil {
			return nil, err
		}
		if _, err := protocol.ReadI32(r); err != nil {
			return nil, fmt.Errorf("trade %d uses: %w", i, err)
		}
		if _, err := protocol.ReadI32(r); err != nil {
			return nil, fmt.Errorf("trade %d max uses: %w", i, err)
		}
	}
	return out.Bytes(), nil
}

func (t *translator) pluginMessageToServer(w *pipeline.Wrapper) error {
	channel := pipeline.Passthrough[string](w, protocol.String)
	data := pipeline.Read[[]byte](w, protocol.ShortByteArray)
	if w.Err() != nil {
		return nil
	}
	if channel == channelBookEdit || channel == channelBookSign {
		book, err := protocol.ReadCompressedItem(bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("%w: %s: %v", pipeline.ErrMalformed, channel, err)
		}
		var out bytes.Buffer
		if err := protocol.WriteItem(&out, t.items.ToServer(book)); err != nil {
			return fmt.Errorf("%s: %w", channel, err)
		}
		data = out.Bytes()
	}
	w.Write(protocol.Rest, data)
	return nil
}
