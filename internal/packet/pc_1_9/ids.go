// Package pc_1_9 holds packet ids and synthesized packet layouts of the
// 1.9.4 protocol (protocol version 110).
package pc_1_9

// Clientbound play packet ids.
const (
	SpawnObject         int32 = 0x00
	SpawnExperienceOrb  int32 = 0x01
	SpawnGlobalEntity   int32 = 0x02
	SpawnMob            int32 = 0x03
	SpawnPainting       int32 = 0x04
	SpawnPlayer         int32 = 0x05
	Animation           int32 = 0x06
	Statistics          int32 = 0x07
	BlockBreakAnimation int32 = 0x08
	UpdateBlockEntity   int32 = 0x09
	BlockAction         int32 = 0x0A
	BlockChange         int32 = 0x0B
	BossBar             int32 = 0x0C
	ServerDifficulty    int32 = 0x0D
	TabCompleteResponse int32 = 0x0E
	Chat                int32 = 0x0F
	MultiBlockChange    int32 = 0x10
	ConfirmTransaction  int32 = 0x11
	CloseWindow         int32 = 0x12
	OpenWindow          int32 = 0x13
	WindowItems         int32 = 0x14
	WindowProperty      int32 = 0x15
	SetSlot             int32 = 0x16
	SetCooldown         int32 = 0x17
	PluginMessage       int32 = 0x18
	NamedSoundEffect    int32 = 0x19
	Disconnect          int32 = 0x1A
	EntityStatus        int32 = 0x1B
	Explosion           int32 = 0x1C
	UnloadChunk         int32 = 0x1D
	ChangeGameState     int32 = 0x1E
	KeepAlive           int32 = 0x1F
	ChunkData           int32 = 0x20
	Effect              int32 = 0x21
	Particle            int32 = 0x22
	JoinGame            int32 = 0x23
	Map                 int32 = 0x24
	EntityRelativeMove  int32 = 0x25
	EntityLookMove      int32 = 0x26
	EntityLook          int32 = 0x27
	Entity              int32 = 0x28
	VehicleMove         int32 = 0x29
	OpenSignEditor      int32 = 0x2A
	PlayerAbilities     int32 = 0x2B
	CombatEvent         int32 = 0x2C
	PlayerListItem      int32 = 0x2D
	PlayerPositionLook  int32 = 0x2E
	UseBed              int32 = 0x2F
	DestroyEntities     int32 = 0x30
	RemoveEntityEffect  int32 = 0x31
	ResourcePackSend    int32 = 0x32
	Respawn             int32 = 0x33
	EntityHeadLook      int32 = 0x34
	WorldBorder         int32 = 0x35
	Camera              int32 = 0x36
	HeldItemChange      int32 = 0x37
	DisplayScoreboard   int32 = 0x38
	EntityMetadata      int32 = 0x39
	AttachEntity        int32 = 0x3A
	EntityVelocity      int32 = 0x3B
	EntityEquipment     int32 = 0x3C
	SetExperience       int32 = 0x3D
	UpdateHealth        int32 = 0x3E
	ScoreboardObjective int32 = 0x3F
	SetPassengers       int32 = 0x40
	Teams               int32 = 0x41
	UpdateScore         int32 = 0x42
	SpawnPosition       int32 = 0x43
	TimeUpdate          int32 = 0x44
	Title               int32 = 0x45
	SoundEffect         int32 = 0x46
	PlayerListHeader    int32 = 0x47
	CollectItem         int32 = 0x48
	EntityTeleport      int32 = 0x49
	EntityProperties    int32 = 0x4A
	EntityEffect        int32 = 0x4B
)

// Serverbound play packet ids.
const (
	TeleportConfirm               int32 = 0x00
	TabComplete                   int32 = 0x01
	ChatServerbound               int32 = 0x02
	ClientStatus                  int32 = 0x03
	ClientSettings                int32 = 0x04
	ConfirmTransactionServerbound int32 = 0x05
	EnchantItem                   int32 = 0x06
	ClickWindow                   int32 = 0x07
	CloseWindowServerbound        int32 = 0x08
	PluginMessageServerbound      int32 = 0x09
	UseEntity                     int32 = 0x0A
	KeepAliveServerbound          int32 = 0x0B
	PlayerPosition                int32 = 0x0C
	PlayerPositionAndLook         int32 = 0x0D
	PlayerLook                    int32 = 0x0E
	Player                        int32 = 0x0F
	PlayerAbilitiesServerbound    int32 = 0x12
	PlayerDigging                 int32 = 0x13
	EntityAction                  int32 = 0x14
	SteerVehicle                  int32 = 0x15
	ResourcePackStatus            int32 = 0x16
	HeldItemChangeServerbound     int32 = 0x17
	CreativeInventoryAction       int32 = 0x18
	UpdateSign                    int32 = 0x19
	AnimationServerbound          int32 = 0x1A
	Spectate                      int32 = 0x1B
	PlayerBlockPlacement          int32 = 0x1C
	UseItem                       int32 = 0x1D
)

// Hands.
const (
	MainHand int32 = 0
	OffHand  int32 = 1
)

// OffHandSlot is the player window slot that does not exist before 1.9.
const OffHandSlot int16 = 45

// Effect ids introduced after 1.8.
const (
	EffectGlowing    int8 = 24
	EffectLevitation int8 = 25
	EffectLuck       int8 = 26
	EffectUnluck     int8 = 27
)

// TeleportConfirmPacket acknowledges a server teleport (serverbound 0x00).
type TeleportConfirmPacket struct {
	TeleportID int32 `mc:"varint"`
}

func (TeleportConfirmPacket) PacketID() int32 { return TeleportConfirm }
