package v1_7to1_8

import (
	"fmt"

	"github.com/dxomg/ViaRewind/internal/chat"
	"github.com/dxomg/ViaRewind/internal/packet"
	"github.com/dxomg/ViaRewind/internal/packet/pc_1_7"
	"github.com/dxomg/ViaRewind/internal/packet/pc_1_8"
	"github.com/dxomg/ViaRewind/internal/pipeline"
	"github.com/dxomg/ViaRewind/pkg/protocol"
)

// Objective, score and team modes.
const (
	objectiveCreate int8 = 0
	objectiveRemove int8 = 1
	objectiveUpdate int8 = 2

	scoreRemove int8 = 1

	teamCreate        int8 = 0
	teamUpdate        int8 = 2
	teamAddPlayers    int8 = 3
	teamRemovePlayers int8 = 4
)

// Longest scoreboard strings a 1.7 client accepts.
const (
	maxScoreName      = 16
	maxObjectiveValue = 32
)

func (t *translator) registerScoreboard(p *pipeline.Protocol) {
	p.RegisterClientbound(packet.Play, pc_1_8.ScoreboardObjective, pc_1_7.ScoreboardObjective,
		pipeline.Handler(scoreboardObjective),
	)

	p.RegisterClientbound(packet.Play, pc_1_8.UpdateScore, pc_1_7.UpdateScore,
		pipeline.Handler(updateScore),
	)

	p.RegisterClientbound(packet.Play, pc_1_8.Teams, pc_1_7.Teams,
		pipeline.Handler(teams),
	)
}

// scoreboardObjective moves the display value in front of the mode and
// drops the render type.
func scoreboardObjective(w *pipeline.Wrapper) error {
	name := pipeline.Read[string](w, protocol.String)
	mode := pipeline.Read[int8](w, protocol.Byte)
	var value string
	if mode == objectiveCreate || mode == objectiveUpdate {
		value = pipeline.Read[string](w, protocol.String)
		pipeline.Read[string](w, protocol.String) // render type
	}
	w.Write(protocol.String, chat.Truncate(name, maxScoreName))
	w.Write(protocol.String, chat.Truncate(value, maxObjectiveValue))
	w.Write(protocol.Byte, mode)
	return nil
}

func updateScore(w *pipeline.Wrapper) error {
	name := pipeline.Read[string](w, protocol.String)
	action := pipeline.Read[int8](w, protocol.Byte)
	objective := pipeline.Read[string](w, protocol.String)
	w.Write(protocol.String, chat.Truncate(name, maxScoreName))
	w.Write(protocol.Byte, action)
	if action == scoreRemove {
		return nil
	}
	w.Write(protocol.String, chat.Truncate(objective, maxScoreName))
	w.Write(protocol.Int, pipeline.Read[int32](w, protocol.VarInt))
	return nil
}

// teams drops the name tag visibility and color and shortens the player
// count prefix.
func teams(w *pipeline.Wrapper) error {
	w.Passthrough(protocol.String)
	mode := pipeline.Passthrough[int8](w, protocol.Byte)
	if mode == teamCreate || mode == teamUpdate {
		w.Passthrough(protocol.String) // display name
		w.Passthrough(protocol.String) // prefix
		w.Passthrough(protocol.String) // suffix
		w.Passthrough(protocol.Byte)   // friendly fire
		pipeline.Read[string](w, protocol.String)
		pipeline.Read[int8](w, protocol.Byte)
	}
	if mode == teamCreate || mode == teamAddPlayers || mode == teamRemovePlayers {
		count := pipeline.Read[int32](w, protocol.VarInt)
		if w.Err() != nil {
			return nil
		}
		if count < 0 || int(count) > w.Remaining() {
			return fmt.Errorf("%w: team player count %d", pipeline.ErrMalformed, count)
		}
		w.Write(protocol.Short, count)
		for range count {
			w.Passthrough(protocol.String)
		}
	}
	return nil
}
