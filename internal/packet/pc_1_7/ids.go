// Package pc_1_7 holds packet ids and synthesized packet layouts of the
// 1.7.6-1.7.10 protocol (protocol version 5).
package pc_1_7

// Clientbound play packet ids.
const (
	KeepAlive           int32 = 0x00
	JoinGame            int32 = 0x01
	Chat                int32 = 0x02
	TimeUpdate          int32 = 0x03
	EntityEquipment     int32 = 0x04
	SpawnPosition       int32 = 0x05
	UpdateHealth        int32 = 0x06
	Respawn             int32 = 0x07
	PlayerPositionLook  int32 = 0x08
	HeldItemChange      int32 = 0x09
	UseBed              int32 = 0x0A
	Animation           int32 = 0x0B
	SpawnPlayer         int32 = 0x0C
	CollectItem         int32 = 0x0D
	SpawnObject         int32 = 0x0E
	SpawnMob            int32 = 0x0F
	SpawnPainting       int32 = 0x10
	SpawnExperienceOrb  int32 = 0x11
	EntityVelocity      int32 = 0x12
	DestroyEntities     int32 = 0x13
	Entity              int32 = 0x14
	EntityRelativeMove  int32 = 0x15
	EntityLook          int32 = 0x16
	EntityLookMove      int32 = 0x17
	EntityTeleport      int32 = 0x18
	EntityHeadLook      int32 = 0x19
	EntityStatus        int32 = 0x1A
	AttachEntity        int32 = 0x1B
	EntityMetadata      int32 = 0x1C
	EntityEffect        int32 = 0x1D
	RemoveEntityEffect  int32 = 0x1E
	SetExperience       int32 = 0x1F
	EntityProperties    int32 = 0x20
	ChunkData           int32 = 0x21
	MultiBlockChange    int32 = 0x22
	BlockChange         int32 = 0x23
	BlockAction         int32 = 0x24
	BlockBreakAnimation int32 = 0x25
	MapChunkBulk        int32 = 0x26
	Explosion           int32 = 0x27
	Effect              int32 = 0x28
	NamedSoundEffect    int32 = 0x29
	Particle            int32 = 0x2A
	ChangeGameState     int32 = 0x2B
	SpawnGlobalEntity   int32 = 0x2C
	OpenWindow          int32 = 0x2D
	CloseWindow         int32 = 0x2E
	SetSlot             int32 = 0x2F
	WindowItems         int32 = 0x30
	WindowProperty      int32 = 0x31
	ConfirmTransaction  int32 = 0x32
	UpdateSign          int32 = 0x33
	Map                 int32 = 0x34
	UpdateBlockEntity   int32 = 0x35
	OpenSignEditor      int32 = 0x36
	Statistics          int32 = 0x37
	PlayerListItem      int32 = 0x38
	PlayerAbilities     int32 = 0x39
	TabCompleteResponse int32 = 0x3A
	ScoreboardObjective int32 = 0x3B
	UpdateScore         int32 = 0x3C
	DisplayScoreboard   int32 = 0x3D
	Teams               int32 = 0x3E
	PluginMessage       int32 = 0x3F
	Disconnect          int32 = 0x40
)

// Serverbound play packet ids.
const (
	KeepAliveServerbound          int32 = 0x00
	ChatServerbound               int32 = 0x01
	UseEntity                     int32 = 0x02
	Player                        int32 = 0x03
	PlayerPosition                int32 = 0x04
	PlayerLook                    int32 = 0x05
	PlayerPositionAndLook         int32 = 0x06
	PlayerDigging                 int32 = 0x07
	PlayerBlockPlacement          int32 = 0x08
	HeldItemChangeServerbound     int32 = 0x09
	AnimationServerbound          int32 = 0x0A
	EntityAction                  int32 = 0x0B
	SteerVehicle                  int32 = 0x0C
	CloseWindowServerbound        int32 = 0x0D
	ClickWindow                   int32 = 0x0E
	ConfirmTransactionServerbound int32 = 0x0F
	CreativeInventoryAction       int32 = 0x10
	EnchantItem                   int32 = 0x11
	UpdateSignServerbound         int32 = 0x12
	PlayerAbilitiesServerbound    int32 = 0x13
	TabComplete                   int32 = 0x14
	ClientSettings                int32 = 0x15
	ClientStatus                  int32 = 0x16
	PluginMessageServerbound      int32 = 0x17
)

// AnimationSwingArm is the only serverbound animation newer servers accept.
const AnimationSwingArm int8 = 1

// MaxSignLine is the longest sign line a 1.7 client accepts.
const MaxSignLine = 15

// MaxWindowTitle is the longest window title a 1.7 client accepts.
const MaxWindowTitle = 32

// MaxDestroyEntities is the most entity ids one destroy packet can carry.
const MaxDestroyEntities = 127
