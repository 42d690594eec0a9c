// Package storage holds the per-connection trackers consulted by packet
// transforms and background tasks. Trackers are not synchronized; callers
// hold the owning connection's lock.
package storage

import "fmt"

// Kind identifies one tracker slot of a connection.
type Kind uint8

const (
	KindInventory Kind = iota
	KindEntity
	KindSession
	KindProfile
	KindCompression
	KindWorldBorder
	KindLevitation
	KindCooldown

	KindCount
)

func (k Kind) String() string {
	switch k {
	case KindInventory:
		return "inventory"
	case KindEntity:
		return "entity"
	case KindSession:
		return "session"
	case KindProfile:
		return "profile"
	case KindCompression:
		return "compression"
	case KindWorldBorder:
		return "world border"
	case KindLevitation:
		return "levitation"
	case KindCooldown:
		return "cooldown"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// New returns a fresh tracker for k.
func New(k Kind) any {
	switch k {
	case KindInventory:
		return NewInventory()
	case KindEntity:
		return NewEntities()
	case KindSession:
		return NewSession()
	case KindProfile:
		return NewProfiles()
	case KindCompression:
		return &Compression{}
	case KindWorldBorder:
		return NewWorldBorder()
	case KindLevitation:
		return &Levitation{}
	case KindCooldown:
		return NewCooldown(nil)
	}
	panic(fmt.Sprintf("storage: unknown tracker kind %d", k))
}
