package v1_7to1_8

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/dxomg/ViaRewind/internal/packet"
	"github.com/dxomg/ViaRewind/internal/packet/pc_1_7"
	"github.com/dxomg/ViaRewind/internal/packet/pc_1_8"
	"github.com/dxomg/ViaRewind/internal/pipeline"
	"github.com/dxomg/ViaRewind/internal/storage"
	"github.com/dxomg/ViaRewind/pkg/protocol"
)

func (t *translator) registerPlayerList(p *pipeline.Protocol) {
	p.RegisterClientbound(packet.Play, pc_1_8.PlayerListItem, pc_1_7.PlayerListItem,
		pipeline.Handler(t.playerListItem),
	)
}

// playerListItem replaces a batched 1.8 tab list update with one legacy
// entry per affected player. Legacy entries are keyed by their shown name,
// so a rename removes the old entry first.
func (t *translator) playerListItem(w *pipeline.Wrapper) error {
	action := pipeline.Read[int32](w, protocol.VarInt)
	count := pipeline.Read[int32](w, protocol.VarInt)
	w.Cancel()
	if w.Err() != nil {
		return nil
	}
	if count < 0 {
		return fmt.Errorf("%w: player list entry count %d", pipeline.ErrMalformed, count)
	}

	profiles := w.Conn().Profiles()
	for range count {
		id := pipeline.Read[uuid.UUID](w, protocol.UUID)
		switch action {
		case pc_1_8.ListAddPlayer:
			profile := t.readProfile(w, id)
			if w.Err() != nil {
				return nil
			}
			if old := profiles.Get(id); old != nil {
				listEntry(w, old, false)
			}
			profiles.Put(profile)
			listEntry(w, profile, true)
		case pc_1_8.ListUpdateGameMode:
			mode := pipeline.Read[int32](w, protocol.VarInt)
			if profile := profiles.Get(id); profile != nil {
				profile.GameMode = mode
			}
		case pc_1_8.ListUpdateLatency:
			ping := pipeline.Read[int32](w, protocol.VarInt)
			if profile := profiles.Get(id); profile != nil {
				profile.Ping = ping
				listEntry(w, profile, true)
			}
		case pc_1_8.ListUpdateDisplayName:
			name := t.readDisplayName(w)
			profile := profiles.Get(id)
			if profile == nil {
				continue
			}
			listEntry(w, profile, false)
			profile.DisplayName = name
			listEntry(w, profile, true)
		case pc_1_8.ListRemovePlayer:
			if profile := profiles.Remove(id); profile != nil {
				listEntry(w, profile, false)
			}
		default:
			w.Conn().Logger().Debug("dropping player list update with unknown action", "action", action)
			return nil
		}
		if w.Err() != nil {
			return nil
		}
	}
	return nil
}

func (t *translator) readProfile(w *pipeline.Wrapper, id uuid.UUID) *storage.GameProfile {
	profile := &storage.GameProfile{
		ID:   id,
		Name: pipeline.Read[string](w, protocol.String),
	}
	n := pipeline.Read[int32](w, protocol.VarInt)
	for i := int32(0); i < n && w.Err() == nil; i++ {
		prop := storage.ProfileProperty{
			Name:  pipeline.Read[string](w, protocol.String),
			Value: pipeline.Read[string](w, protocol.String),
		}
		if pipeline.Read[bool](w, protocol.Bool) {
			prop.Signature = pipeline.Read[string](w, protocol.String)
		}
		profile.Properties = append(profile.Properties, prop)
	}
	profile.GameMode = pipeline.Read[int32](w, protocol.VarInt)
	profile.Ping = pipeline.Read[int32](w, protocol.VarInt)
	profile.DisplayName = t.readDisplayName(w)
	return profile
}

func (t *translator) readDisplayName(w *pipeline.Wrapper) string {
	if !pipeline.Read[bool](w, protocol.Bool) {
		return ""
	}
	return t.chat.JSONToLegacy(pipeline.Read[string](w, protocol.String))
}

func listEntry(w *pipeline.Wrapper, profile *storage.GameProfile, online bool) {
	var ping int16
	if online {
		ping = int16(min(profile.Ping, math.MaxInt16))
	}
	w.SendToClient(pc_1_7.PlayerListItemPacket{
		Name:   profile.ListName(),
		Online: online,
		Ping:   ping,
	})
}
