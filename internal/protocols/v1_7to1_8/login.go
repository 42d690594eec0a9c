package v1_7to1_8

import (
	"crypto/md5"

	"github.com/google/uuid"

	"github.com/dxomg/ViaRewind/internal/packet"
	"github.com/dxomg/ViaRewind/internal/packet/pc_1_8"
	"github.com/dxomg/ViaRewind/internal/pipeline"
	"github.com/dxomg/ViaRewind/pkg/protocol"
)

func (t *translator) registerLogin(p *pipeline.Protocol) {
	// Server id, public key and verify token.
	p.RegisterClientbound(packet.Login, packet.EncryptionRequestID, packet.EncryptionRequestID,
		pipeline.Map(protocol.String),
		pipeline.MapTo(protocol.ByteArray, protocol.ShortByteArray),
		pipeline.MapTo(protocol.ByteArray, protocol.ShortByteArray),
	)

	p.RegisterClientbound(packet.Login, packet.LoginSuccessID, packet.LoginSuccessID,
		pipeline.Handler(loginSuccess),
	)

	p.RegisterClientbound(packet.Login, packet.LoginSetCompressionID, packet.LoginSetCompressionID,
		pipeline.Handler(loginCompression),
	)

	// Play state compression changes are never sent by vanilla servers.
	p.CancelClientbound(packet.Play, pc_1_8.SetCompression)

	// Shared secret and verify token.
	p.RegisterServerbound(packet.Login, packet.EncryptionResponseID, packet.EncryptionResponseID,
		pipeline.MapTo(protocol.ShortByteArray, protocol.ByteArray),
		pipeline.MapTo(protocol.ShortByteArray, protocol.ByteArray),
	)
}

func loginSuccess(w *pipeline.Wrapper) error {
	rawID := pipeline.Passthrough[string](w, protocol.String)
	name := pipeline.Passthrough[string](w, protocol.String)
	if w.Err() != nil {
		return nil
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		w.Conn().Logger().Debug("login success carries an invalid uuid", "uuid", rawID, "error", err)
		id = offlineUUID(name)
	}
	w.Conn().SetIdentity(id, name)
	return nil
}

// loginCompression records the threshold and hides the packet from the
// client, which predates transport compression.
func loginCompression(w *pipeline.Wrapper) error {
	threshold := pipeline.Read[int32](w, protocol.VarInt)
	w.Cancel()
	if w.Err() != nil {
		return nil
	}
	c := w.Conn()
	if err := c.Compression().Signal(threshold); err != nil {
		if c.Debug() {
			return err
		}
		c.Logger().Warn("ignoring repeated compression signal", "threshold", threshold, "error", err)
	}
	return nil
}

// offlineUUID derives the identifier offline mode servers assign to name.
func offlineUUID(name string) uuid.UUID {
	id := uuid.UUID(md5.Sum([]byte("OfflinePlayer:" + name)))
	id[6] = id[6]&0x0f | 0x30
	id[8] = id[8]&0x3f | 0x80
	return id
}
