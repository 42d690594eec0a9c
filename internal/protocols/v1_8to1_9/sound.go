package v1_8to1_9

import (
	"github.com/dxomg/ViaRewind/internal/packet"
	"github.com/dxomg/ViaRewind/internal/packet/pc_1_8"
	"github.com/dxomg/ViaRewind/internal/packet/pc_1_9"
	"github.com/dxomg/ViaRewind/internal/pipeline"
	"github.com/dxomg/ViaRewind/pkg/protocol"
)

func (t *translator) registerSounds(p *pipeline.Protocol) {
	p.RegisterClientbound(packet.Play, pc_1_9.SoundEffect, pc_1_8.NamedSoundEffect,
		pipeline.Handler(func(w *pipeline.Wrapper) error {
			id := pipeline.Read[int32](w, protocol.VarInt)
			if w.Err() != nil {
				return nil
			}
			name, ok := t.tables.SoundName(id)
			if !ok {
				w.Conn().Logger().Debug("dropping unknown sound", "id", id)
				w.Cancel()
				return nil
			}
			t.writeSoundName(w, name)
			return nil
		}),
	)

	p.RegisterClientbound(packet.Play, pc_1_9.NamedSoundEffect, pc_1_8.NamedSoundEffect,
		pipeline.Handler(func(w *pipeline.Wrapper) error {
			name := pipeline.Read[string](w, protocol.String)
			if w.Err() != nil {
				return nil
			}
			if _, ok := t.tables.LegacySoundName(name); !ok {
				// Custom resource pack sounds keep their name.
				w.Write(protocol.String, name)
				w.Read(protocol.VarInt)
				return nil
			}
			t.writeSoundName(w, name)
			return nil
		}),
	)
}

// writeSoundName writes the 1.8 name of a 1.9 sound event and drops the
// sound category that follows it. Events without a 1.8 sound are cancelled.
func (t *translator) writeSoundName(w *pipeline.Wrapper, name string) {
	legacy, ok := t.tables.LegacySoundName(name)
	if !ok || legacy == "" {
		w.Cancel()
		return
	}
	w.Write(protocol.String, legacy)
	w.Read(protocol.VarInt) // category
}
