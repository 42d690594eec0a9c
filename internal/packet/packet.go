package packet

import "fmt"

// Protocol version numbers as sent in the handshake.
const (
	Protocol1_7_10 int32 = 5
	Protocol1_8    int32 = 47
	Protocol1_9_4  int32 = 110
)

var versionNames = map[int32]string{
	Protocol1_7_10: "1.7.10",
	Protocol1_8:    "1.8",
	Protocol1_9_4:  "1.9.4",
}

// VersionName returns the release name of a protocol version.
func VersionName(v int32) string {
	if name, ok := versionNames[v]; ok {
		return name
	}
	return fmt.Sprintf("protocol %d", v)
}

// ParseVersion returns the protocol version of a release name.
func ParseVersion(name string) (int32, error) {
	for v, n := range versionNames {
		if n == name {
			return v, nil
		}
	}
	return 0, fmt.Errorf("unsupported version %q", name)
}

// Direction is the direction a packet travels.
type Direction uint8

const (
	Clientbound Direction = iota
	Serverbound
)

func (d Direction) String() string {
	switch d {
	case Clientbound:
		return "clientbound"
	case Serverbound:
		return "serverbound"
	}
	return fmt.Sprintf("Direction(%d)", uint8(d))
}

// Opposite returns the other direction.
func (d Direction) Opposite() Direction {
	if d == Clientbound {
		return Serverbound
	}
	return Clientbound
}

// State is the connection phase that selects the active packet table.
type State uint8

const (
	Handshaking State = iota
	Status
	Login
	Play
)

func (s State) String() string {
	switch s {
	case Handshaking:
		return "handshaking"
	case Status:
		return "status"
	case Login:
		return "login"
	case Play:
		return "play"
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// NextState values carried by the handshake.
const (
	NextStateStatus int32 = 1
	NextStateLogin  int32 = 2
)
