package conn

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dxomg/ViaRewind/pkg/protocol"
)

func TestFramerRoundTrip(t *testing.T) {
	big := []byte(strings.Repeat("chunk", 200))
	tests := []struct {
		name      string
		threshold int32
		raw       protocol.Raw
	}{
		{"uncompressed", -1, protocol.Raw{ID: 0x21, Data: big}},
		{"below threshold", 256, protocol.Raw{ID: 0x00, Data: []byte{42}}},
		{"above threshold", 256, protocol.Raw{ID: 0x21, Data: big}},
		{"zero threshold", 0, protocol.Raw{ID: 0x03, Data: []byte{1, 2, 3}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			f := newFramer(&buf)
			f.SetThreshold(tt.threshold)
			if err := f.WritePacket(tt.raw); err != nil {
				t.Fatalf("WritePacket: %v", err)
			}
			got, err := f.ReadPacket()
			if err != nil {
				t.Fatalf("ReadPacket: %v", err)
			}
			if got.ID != tt.raw.ID || !bytes.Equal(got.Data, tt.raw.Data) {
				t.Errorf("got id 0x%02X len %d, want id 0x%02X len %d", got.ID, len(got.Data), tt.raw.ID, len(tt.raw.Data))
			}
		})
	}
}

func TestFramerCompressesLargePackets(t *testing.T) {
	var buf bytes.Buffer
	f := newFramer(&buf)
	f.SetThreshold(64)
	data := bytes.Repeat([]byte{7}, 4096)
	if err := f.WritePacket(protocol.Raw{ID: 0x26, Data: data}); err != nil {
		t.Fatalf("WritePacket: %v", err)
	}
	if buf.Len() >= len(data) {
		t.Errorf("frame is %d bytes, want compressed below %d", buf.Len(), len(data))
	}
}

func TestFramerRejectsShortUncompressedLength(t *testing.T) {
	var body bytes.Buffer
	protocol.WriteVarInt(&body, 10) // declared size below the threshold
	body.Write([]byte{0x78, 0x9c})

	var frame bytes.Buffer
	protocol.WriteVarInt(&frame, int32(body.Len()))
	frame.Write(body.Bytes())

	f := newFramer(&frame)
	f.SetThreshold(256)
	if _, err := f.ReadPacket(); err == nil {
		t.Fatal("expected error for uncompressed length below threshold")
	}
}

func TestFramerCompressed(t *testing.T) {
	f := newFramer(&bytes.Buffer{})
	if f.Compressed() {
		t.Fatal("new framer is compressed")
	}
	f.SetThreshold(0)
	if !f.Compressed() {
		t.Fatal("threshold 0 should enable compression")
	}
}
