package protocol

import (
	"testing"

	"github.com/google/uuid"

	"github.com/dxomg/ViaRewind/pkg/nbt"
)

type testJoinGame struct {
	EntityID    int32  `mc:"i32"`
	GameMode    uint8  `mc:"u8"`
	Dimension   int8   `mc:"i8"`
	Difficulty  uint8  `mc:"u8"`
	MaxPlayers  uint8  `mc:"u8"`
	LevelType   string `mc:"string"`
	ReducedInfo bool   `mc:"bool"`
	Internal    int    `mc:"-"`
}

func (testJoinGame) PacketID() int32 { return 0x01 }

func TestMarshalUnmarshal(t *testing.T) {
	original := &testJoinGame{
		EntityID:   42,
		GameMode:   1,
		Difficulty: 1,
		MaxPlayers: 20,
		LevelType:  "flat",
	}

	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	decoded := &testJoinGame{}
	if err := Unmarshal(data, decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if *original != *decoded {
		t.Errorf("round-trip mismatch:\n  got  %+v\n  want %+v", decoded, original)
	}
}

type testSetSlot struct {
	WindowID int8       `mc:"i8"`
	Slot     int16      `mc:"i16"`
	Item     *ItemStack `mc:"compresseditem"`
}

func (testSetSlot) PacketID() int32 { return 0x2F }

func TestMarshalCompressedItemField(t *testing.T) {
	tag := nbt.NewCompound()
	tag.Put("SkullOwner", nbt.String("Notch"))
	original := &testSetSlot{WindowID: 0, Slot: 5, Item: &ItemStack{ID: 397, Count: 1, Damage: 3, Tag: tag}}

	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	decoded := &testSetSlot{}
	if err := Unmarshal(data, decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.Slot != 5 || decoded.Item == nil || decoded.Item.ID != 397 || decoded.Item.Damage != 3 {
		t.Fatalf("decoded = %+v, item %+v", decoded, decoded.Item)
	}
	if !nbt.Equal(tag, decoded.Item.Tag) {
		t.Errorf("item tag changed across the gzip round trip")
	}
}

type testSpawn struct {
	ID   uuid.UUID `mc:"uuid"`
	Pos  int64     `mc:"position"`
	Rest []byte    `mc:"rest"`
}

func (testSpawn) PacketID() int32 { return 0x05 }

func TestMarshalUUIDAndRest(t *testing.T) {
	original := &testSpawn{
		ID:   uuid.MustParse("069a79f4-44e9-4726-a5be-fca90e38aaf5"),
		Pos:  EncodePosition(10, 64, -10),
		Rest: []byte{0xDE, 0xAD, 0xBE, 0xEF},
	}
	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	decoded := &testSpawn{}
	if err := Unmarshal(data, decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.ID != original.ID || decoded.Pos != original.Pos || string(decoded.Rest) != string(original.Rest) {
		t.Errorf("round-trip mismatch:\n  got  %+v\n  want %+v", decoded, original)
	}
}

func TestEncodeRawPassesThrough(t *testing.T) {
	raw := Raw{ID: 0x40, Data: []byte{1, 2}}
	got, err := Encode(raw)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if got.ID != 0x40 || string(got.Data) != string(raw.Data) {
		t.Errorf("Encode(raw) = %+v", got)
	}
}
