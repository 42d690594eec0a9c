package packet

// GameMode constants.
const (
	GameModeSurvival  uint8 = 0
	GameModeCreative  uint8 = 1
	GameModeAdventure uint8 = 2
	GameModeSpectator uint8 = 3

	// GameModeHardcore is or'ed into the join game mode byte.
	GameModeHardcore uint8 = 0x08
)

// ChangeGameState reasons.
const (
	ReasonChangeGameMode uint8 = 3
)

// Chat positions.
const (
	ChatPositionChat     int8 = 0
	ChatPositionSystem   int8 = 1
	ChatPositionGameInfo int8 = 2
)

// Item ids referenced by the rewriters.
const (
	ItemSkull       int16 = 397
	ItemWrittenBook int16 = 387
)

// PlayerPositionFlags mark which position fields are relative.
const (
	RelativeX     int8 = 0x01
	RelativeY     int8 = 0x02
	RelativeZ     int8 = 0x04
	RelativeYaw   int8 = 0x08
	RelativePitch int8 = 0x10
)

// PlayerEyeHeight is the offset between the feet and head positions.
const PlayerEyeHeight = 1.62
