package conn

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/klauspost/compress/zlib"

	"github.com/dxomg/ViaRewind/pkg/protocol"
)

// maxUncompressed bounds the declared size of a compressed packet.
const maxUncompressed = 1 << 21

// framer reads and writes length prefixed packets on one side of a session.
// Once a threshold is set every frame carries the uncompressed length and
// bodies at or above the threshold are zlib compressed.
type framer struct {
	r         *bufio.Reader
	w         io.Writer
	threshold atomic.Int32
}

func newFramer(rw io.ReadWriter) *framer {
	f := &framer{r: bufio.NewReader(rw), w: rw}
	f.threshold.Store(-1)
	return f
}

// SetThreshold enables compression. A negative threshold disables it.
func (f *framer) SetThreshold(t int32) {
	f.threshold.Store(t)
}

func (f *framer) Compressed() bool { return f.threshold.Load() >= 0 }

func (f *framer) ReadPacket() (protocol.Raw, error) {
	threshold := f.threshold.Load()
	if threshold < 0 {
		id, data, err := protocol.ReadRawPacket(f.r)
		return protocol.Raw{ID: id, Data: data}, err
	}

	length, _, err := protocol.ReadVarInt(f.r)
	if err != nil {
		return protocol.Raw{}, fmt.Errorf("read packet length: %w", err)
	}
	if length < 1 || length > protocol.MaxPacketSize {
		return protocol.Raw{}, fmt.Errorf("bad packet length: %d", length)
	}
	frame := make([]byte, length)
	if _, err := io.ReadFull(f.r, frame); err != nil {
		return protocol.Raw{}, fmt.Errorf("read packet payload: %w", err)
	}

	size, n, err := protocol.ReadVarInt(bytes.NewReader(frame))
	if err != nil {
		return protocol.Raw{}, fmt.Errorf("read data length: %w", err)
	}
	payload := frame[n:]
	if size != 0 {
		if size < threshold || size > maxUncompressed {
			return protocol.Raw{}, fmt.Errorf("bad uncompressed length %d for threshold %d", size, threshold)
		}
		if payload, err = inflate(payload, int(size)); err != nil {
			return protocol.Raw{}, err
		}
	}
	id, data, err := protocol.SplitID(payload)
	return protocol.Raw{ID: id, Data: data}, err
}

func inflate(compressed []byte, size int) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("open zlib stream: %w", err)
	}
	defer zr.Close()
	out := make([]byte, size)
	if _, err := io.ReadFull(zr, out); err != nil {
		return nil, fmt.Errorf("inflate packet: %w", err)
	}
	return out, nil
}

func (f *framer) WritePacket(raw protocol.Raw) error {
	threshold := f.threshold.Load()
	if threshold < 0 {
		return protocol.WriteRawPacket(f.w, raw.ID, raw.Data)
	}

	payload := protocol.JoinID(raw.ID, raw.Data)
	var body bytes.Buffer
	if len(payload) >= int(threshold) {
		protocol.WriteVarInt(&body, int32(len(payload)))
		zw := zlib.NewWriter(&body)
		if _, err := zw.Write(payload); err != nil {
			return fmt.Errorf("deflate packet 0x%02X: %w", raw.ID, err)
		}
		if err := zw.Close(); err != nil {
			return fmt.Errorf("deflate packet 0x%02X: %w", raw.ID, err)
		}
	} else {
		protocol.WriteVarInt(&body, 0)
		body.Write(payload)
	}

	var frame bytes.Buffer
	frame.Grow(protocol.VarIntSize(int32(body.Len())) + body.Len())
	protocol.WriteVarInt(&frame, int32(body.Len()))
	frame.Write(body.Bytes())
	if _, err := f.w.Write(frame.Bytes()); err != nil {
		return fmt.Errorf("flush packet: %w", err)
	}
	return nil
}
