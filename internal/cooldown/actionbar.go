package cooldown

import (
	"github.com/dxomg/ViaRewind/internal/packet"
	"github.com/dxomg/ViaRewind/internal/packet/pc_1_8"
	"github.com/dxomg/ViaRewind/internal/user"
)

const actionBarSymbol = "■"

// ActionBar draws the progress above the hotbar.
type ActionBar struct {
	sender
}

func NewActionBar(c *user.Connection, from string) *ActionBar {
	return &ActionBar{sender{conn: c, from: from}}
}

func (a *ActionBar) Show(progress float64) error {
	return a.show(BuildProgressText(actionBarSymbol, progress))
}

func (a *ActionBar) Hide() error {
	return a.show("")
}

func (a *ActionBar) show(s string) error {
	return a.send(pc_1_8.ChatPacket{JSON: text(s), Position: packet.ChatPositionGameInfo})
}
