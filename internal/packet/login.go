package packet

// Login packet ids are shared by every supported version.
const (
	LoginDisconnectID     int32 = 0x00
	EncryptionRequestID   int32 = 0x01
	LoginSuccessID        int32 = 0x02
	LoginSetCompressionID int32 = 0x03

	LoginStartID         int32 = 0x00
	EncryptionResponseID int32 = 0x01
)

// LoginSuccess is sent by the server after a successful login (clientbound 0x02).
type LoginSuccess struct {
	UUID     string `mc:"string"`
	Username string `mc:"string"`
}

func (LoginSuccess) PacketID() int32 { return LoginSuccessID }

// SetCompression announces the transport compression threshold (clientbound 0x03).
type SetCompression struct {
	Threshold int32 `mc:"varint"`
}

func (SetCompression) PacketID() int32 { return LoginSetCompressionID }

// LoginDisconnect rejects the client during login (clientbound 0x00).
type LoginDisconnect struct {
	Reason string `mc:"string"`
}

func (LoginDisconnect) PacketID() int32 { return LoginDisconnectID }
