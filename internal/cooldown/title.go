package cooldown

import (
	"github.com/dxomg/ViaRewind/internal/packet/pc_1_8"
	"github.com/dxomg/ViaRewind/internal/user"
)

// Title fade timings in ticks. The bar stays just long enough to be
// replaced by the next tick's update.
const (
	titleFadeIn  int32 = 0
	titleStay    int32 = 2
	titleFadeOut int32 = 5
)

const titleSymbol = "˙"

// Title draws the progress as a subtitle under an empty title.
type Title struct {
	sender
}

func NewTitle(c *user.Connection, from string) *Title {
	return &Title{sender{conn: c, from: from}}
}

func (t *Title) Show(progress float64) error {
	return t.send(
		pc_1_8.TitleTimesPacket{Action: pc_1_8.TitleSetTimes, FadeIn: titleFadeIn, Stay: titleStay, FadeOut: titleFadeOut},
		pc_1_8.TitleTextPacket{Action: pc_1_8.TitleSetSubtitle, JSON: text(BuildProgressText(titleSymbol, progress))},
		pc_1_8.TitleTextPacket{Action: pc_1_8.TitleSetTitle, JSON: text("")},
	)
}

func (t *Title) Hide() error {
	return t.send(pc_1_8.TitleActionPacket{Action: pc_1_8.TitleHide})
}
