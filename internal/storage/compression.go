package storage

import (
	"errors"
	"fmt"
)

var ErrCompressionNegotiated = errors.New("compression already negotiated")

// CompressionState is the phase of the login compression handshake.
type CompressionState uint8

const (
	CompressionNone CompressionState = iota
	CompressionPending
	CompressionActive
)

func (s CompressionState) String() string {
	switch s {
	case CompressionNone:
		return "none"
	case CompressionPending:
		return "pending"
	case CompressionActive:
		return "active"
	}
	return fmt.Sprintf("CompressionState(%d)", uint8(s))
}

// Compression records the threshold announced by the server and whether the
// transport has been told about it.
type Compression struct {
	state     CompressionState
	threshold int32
}

func (c *Compression) State() CompressionState { return c.state }

func (c *Compression) Threshold() int32 { return c.threshold }

// Signal moves NONE to PENDING. Any later signal returns
// ErrCompressionNegotiated and leaves the state untouched.
func (c *Compression) Signal(threshold int32) error {
	if c.state != CompressionNone {
		return fmt.Errorf("%w: state %s, threshold %d", ErrCompressionNegotiated, c.state, c.threshold)
	}
	c.state = CompressionPending
	c.threshold = threshold
	return nil
}

// Engage moves PENDING to ACTIVE and calls notify exactly once with the
// threshold. It reports whether notify was called.
func (c *Compression) Engage(notify func(threshold int32)) bool {
	if c.state != CompressionPending {
		return false
	}
	c.state = CompressionActive
	notify(c.threshold)
	return true
}
