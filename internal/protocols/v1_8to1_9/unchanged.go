package v1_8to1_9

import (
	"github.com/dxomg/ViaRewind/internal/packet"
	"github.com/dxomg/ViaRewind/internal/packet/pc_1_8"
	"github.com/dxomg/ViaRewind/internal/packet/pc_1_9"
	"github.com/dxomg/ViaRewind/internal/pipeline"
)

// Play packets whose body is the same on both versions; only the id moves.
var (
	unchangedClientbound = [][2]int32{
		{pc_1_9.Statistics, pc_1_8.Statistics},
		{pc_1_9.BlockBreakAnimation, pc_1_8.BlockBreakAnimation},
		{pc_1_9.ServerDifficulty, pc_1_8.ServerDifficulty},
		{pc_1_9.TabCompleteResponse, pc_1_8.TabCompleteResponse},
		{pc_1_9.Chat, pc_1_8.Chat},
		{pc_1_9.ConfirmTransaction, pc_1_8.ConfirmTransaction},
		{pc_1_9.CloseWindow, pc_1_8.CloseWindow},
		{pc_1_9.OpenWindow, pc_1_8.OpenWindow},
		{pc_1_9.WindowProperty, pc_1_8.WindowProperty},
		{pc_1_9.Disconnect, pc_1_8.Disconnect},
		{pc_1_9.EntityStatus, pc_1_8.EntityStatus},
		{pc_1_9.Explosion, pc_1_8.Explosion},
		{pc_1_9.ChangeGameState, pc_1_8.ChangeGameState},
		{pc_1_9.KeepAlive, pc_1_8.KeepAlive},
		{pc_1_9.Entity, pc_1_8.Entity},
		{pc_1_9.OpenSignEditor, pc_1_8.OpenSignEditor},
		{pc_1_9.PlayerAbilities, pc_1_8.PlayerAbilities},
		{pc_1_9.CombatEvent, pc_1_8.CombatEvent},
		{pc_1_9.PlayerListItem, pc_1_8.PlayerListItem},
		{pc_1_9.UseBed, pc_1_8.UseBed},
		{pc_1_9.ResourcePackSend, pc_1_8.ResourcePackSend},
		{pc_1_9.EntityHeadLook, pc_1_8.EntityHeadLook},
		{pc_1_9.WorldBorder, pc_1_8.WorldBorder},
		{pc_1_9.Camera, pc_1_8.Camera},
		{pc_1_9.HeldItemChange, pc_1_8.HeldItemChange},
		{pc_1_9.DisplayScoreboard, pc_1_8.DisplayScoreboard},
		{pc_1_9.EntityVelocity, pc_1_8.EntityVelocity},
		{pc_1_9.SetExperience, pc_1_8.SetExperience},
		{pc_1_9.UpdateHealth, pc_1_8.UpdateHealth},
		{pc_1_9.ScoreboardObjective, pc_1_8.ScoreboardObjective},
		{pc_1_9.UpdateScore, pc_1_8.UpdateScore},
		{pc_1_9.SpawnPosition, pc_1_8.SpawnPosition},
		{pc_1_9.TimeUpdate, pc_1_8.TimeUpdate},
		{pc_1_9.Title, pc_1_8.Title},
		{pc_1_9.PlayerListHeader, pc_1_8.PlayerListHeader},
		{pc_1_9.CollectItem, pc_1_8.CollectItem},
	}

	unchangedServerbound = [][2]int32{
		{pc_1_8.KeepAliveServerbound, pc_1_9.KeepAliveServerbound},
		{pc_1_8.ChatServerbound, pc_1_9.ChatServerbound},
		{pc_1_8.Player, pc_1_9.Player},
		{pc_1_8.PlayerPosition, pc_1_9.PlayerPosition},
		{pc_1_8.PlayerLook, pc_1_9.PlayerLook},
		{pc_1_8.PlayerPositionAndLook, pc_1_9.PlayerPositionAndLook},
		{pc_1_8.HeldItemChangeServerbound, pc_1_9.HeldItemChangeServerbound},
		{pc_1_8.SteerVehicle, pc_1_9.SteerVehicle},
		{pc_1_8.CloseWindowServerbound, pc_1_9.CloseWindowServerbound},
		{pc_1_8.ConfirmTransactionServerbound, pc_1_9.ConfirmTransactionServerbound},
		{pc_1_8.EnchantItem, pc_1_9.EnchantItem},
		{pc_1_8.PlayerAbilitiesServerbound, pc_1_9.PlayerAbilitiesServerbound},
		{pc_1_8.ClientStatus, pc_1_9.ClientStatus},
		{pc_1_8.Spectate, pc_1_9.Spectate},
		{pc_1_8.ResourcePackStatus, pc_1_9.ResourcePackStatus},
	}
)

func (t *translator) registerUnchanged(p *pipeline.Protocol) {
	for _, ids := range unchangedClientbound {
		p.RegisterClientbound(packet.Play, ids[0], ids[1])
	}
	for _, ids := range unchangedServerbound {
		p.RegisterServerbound(packet.Play, ids[0], ids[1])
	}
}
