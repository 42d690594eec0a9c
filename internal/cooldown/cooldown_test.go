package cooldown

import (
	"io"
	"log/slog"
	"testing"

	"github.com/dxomg/ViaRewind/internal/packet"
	"github.com/dxomg/ViaRewind/internal/packet/pc_1_8"
	"github.com/dxomg/ViaRewind/internal/storage"
	"github.com/dxomg/ViaRewind/internal/user"
	"github.com/dxomg/ViaRewind/pkg/protocol"
)

const from = "1.9.4->1.8"

type packetCollector struct {
	after []string
	dirs  []packet.Direction
	raws  []protocol.Raw
}

func (p *packetCollector) Send(dir packet.Direction, after string, raw protocol.Raw) error {
	p.dirs = append(p.dirs, dir)
	p.after = append(p.after, after)
	p.raws = append(p.raws, raw)
	return nil
}

func (p *packetCollector) ids() []int32 {
	ids := make([]int32, len(p.raws))
	for i, r := range p.raws {
		ids[i] = r.ID
	}
	return ids
}

func newConn(t *testing.T) (*user.Connection, *packetCollector) {
	t.Helper()
	c := user.NewConnection(user.Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	col := &packetCollector{}
	c.SetSender(col)
	return c, col
}

func equalIDs(a, b []int32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestBuildProgressText(t *testing.T) {
	tests := []struct {
		progress float64
		want     string
	}{
		{0, "§8§7##########"},
		{0.25, "§8##§7########"},
		{0.5, "§8#####§7#####"},
		{0.99, "§8#########§7#"},
		{1, "§8##########§7"},
		{-1, "§8§7##########"},
		{2, "§8##########§7"},
	}
	for _, tt := range tests {
		if got := BuildProgressText("#", tt.progress); got != tt.want {
			t.Errorf("BuildProgressText(%v) = %q, want %q", tt.progress, got, tt.want)
		}
	}
}

func TestFromIndicator(t *testing.T) {
	for _, ind := range []Indicator{IndicatorTitle, IndicatorBossBar, IndicatorActionBar, IndicatorDisabled} {
		if _, err := FromIndicator(ind); err != nil {
			t.Errorf("FromIndicator(%q): %v", ind, err)
		}
	}
	if _, err := FromIndicator("sparkles"); err == nil {
		t.Errorf("FromIndicator accepted an unknown indicator")
	}
}

func TestFromConfigFallsBackToDisabled(t *testing.T) {
	c, col := newConn(t)
	f := FromConfig("sparkles", slog.New(slog.NewTextHandler(io.Discard, nil)))
	vis := f(c, from)
	if _, ok := vis.(Disabled); !ok {
		t.Fatalf("FromConfig(unknown) built %T, want Disabled", vis)
	}
	if err := vis.Show(0.5); err != nil {
		t.Fatalf("Show: %v", err)
	}
	if len(col.raws) != 0 {
		t.Errorf("disabled visualization sent %d packets", len(col.raws))
	}

	if _, ok := FromConfig(" Title ", slog.Default())(c, from).(*Title); !ok {
		t.Errorf("FromConfig did not normalize the indicator")
	}
}

func TestTitle(t *testing.T) {
	c, col := newConn(t)
	vis := NewTitle(c, from)
	if err := vis.Show(0.3); err != nil {
		t.Fatalf("Show: %v", err)
	}
	if err := vis.Hide(); err != nil {
		t.Fatalf("Hide: %v", err)
	}
	want := []int32{pc_1_8.Title, pc_1_8.Title, pc_1_8.Title, pc_1_8.Title}
	if !equalIDs(col.ids(), want) {
		t.Fatalf("ids = %v, want %v", col.ids(), want)
	}
	for i, a := range col.after {
		if a != from || col.dirs[i] != packet.Clientbound {
			t.Errorf("packet %d sent %v after %q", i, col.dirs[i], a)
		}
	}

	var times pc_1_8.TitleTimesPacket
	if err := protocol.Unmarshal(col.raws[0].Data, &times); err != nil {
		t.Fatalf("unmarshal times: %v", err)
	}
	if times.Action != pc_1_8.TitleSetTimes || times.Stay != titleStay {
		t.Errorf("times = %+v", times)
	}
	var hide pc_1_8.TitleActionPacket
	if err := protocol.Unmarshal(col.raws[3].Data, &hide); err != nil {
		t.Fatalf("unmarshal hide: %v", err)
	}
	if hide.Action != pc_1_8.TitleHide {
		t.Errorf("hide action = %d", hide.Action)
	}
}

func TestActionBar(t *testing.T) {
	c, col := newConn(t)
	vis := NewActionBar(c, from)
	if err := vis.Show(0.5); err != nil {
		t.Fatalf("Show: %v", err)
	}
	if err := vis.Hide(); err != nil {
		t.Fatalf("Hide: %v", err)
	}
	want := []int32{pc_1_8.Chat, pc_1_8.Chat}
	if !equalIDs(col.ids(), want) {
		t.Fatalf("ids = %v, want %v", col.ids(), want)
	}
	var msg pc_1_8.ChatPacket
	if err := protocol.Unmarshal(col.raws[0].Data, &msg); err != nil {
		t.Fatalf("unmarshal chat: %v", err)
	}
	if msg.Position != packet.ChatPositionGameInfo {
		t.Errorf("position = %d", msg.Position)
	}
	if msg.JSON == "" {
		t.Errorf("empty chat component")
	}
}

func TestBossBarLifecycle(t *testing.T) {
	c, col := newConn(t)
	session := storage.NewSession()
	session.SetPosition(10, 64, 10)
	session.SetLook(0, 0)
	c.Put(storage.KindSession, session)

	vis := NewBossBar(c, from)
	if err := vis.Hide(); err != nil {
		t.Fatalf("Hide before Show: %v", err)
	}
	if len(col.raws) != 0 {
		t.Fatalf("Hide before Show sent %d packets", len(col.raws))
	}

	if err := vis.Show(0.1); err != nil {
		t.Fatalf("Show: %v", err)
	}
	if err := vis.Show(0.2); err != nil {
		t.Fatalf("Show: %v", err)
	}
	if err := vis.Hide(); err != nil {
		t.Fatalf("Hide: %v", err)
	}
	want := []int32{pc_1_8.SpawnMob, pc_1_8.EntityTeleport, pc_1_8.EntityMetadata, pc_1_8.DestroyEntities}
	if !equalIDs(col.ids(), want) {
		t.Fatalf("ids = %v, want %v", col.ids(), want)
	}

	var spawn pc_1_8.SpawnMobPacket
	if err := protocol.Unmarshal(col.raws[0].Data, &spawn); err != nil {
		t.Fatalf("unmarshal spawn: %v", err)
	}
	if spawn.EntityID != BossBarEntityID || spawn.Type != entityTypeWither {
		t.Errorf("spawn = id %d type %d", spawn.EntityID, spawn.Type)
	}
	// yaw 0 faces +z
	if spawn.X != pc_1_8.Fixed(10) || spawn.Z != pc_1_8.Fixed(10+bossBarDistance) {
		t.Errorf("spawn at %d,%d", spawn.X, spawn.Z)
	}

	var destroy pc_1_8.DestroyEntitiesPacket
	if err := protocol.Unmarshal(col.raws[3].Data, &destroy); err != nil {
		t.Fatalf("unmarshal destroy: %v", err)
	}
	if len(destroy.EntityIDs) != 1 || destroy.EntityIDs[0] != BossBarEntityID {
		t.Errorf("destroyed %v", destroy.EntityIDs)
	}
}
