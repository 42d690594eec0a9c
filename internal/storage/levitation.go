package storage

// Levitation mirrors the levitation effect on the client's own entity.
type Levitation struct {
	active    bool
	amplifier int8
}

func (l *Levitation) Active() bool { return l.active }

func (l *Levitation) Amplifier() int8 { return l.amplifier }

func (l *Levitation) Start(amplifier int8) {
	l.active = true
	l.amplifier = amplifier
}

func (l *Levitation) Stop() {
	l.active = false
	l.amplifier = 0
}

// Velocity is the vertical velocity, in 1/8000 blocks per tick, that keeps
// an older client rising.
func (l *Levitation) Velocity() int16 {
	return int16((int32(l.amplifier) + 1) * 360)
}
