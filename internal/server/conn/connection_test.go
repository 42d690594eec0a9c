package conn

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/dxomg/ViaRewind/internal/packet"
	_ "github.com/dxomg/ViaRewind/internal/protocols/v1_7to1_8"
	"github.com/dxomg/ViaRewind/internal/server/config"
	"github.com/dxomg/ViaRewind/internal/user"
	"github.com/dxomg/ViaRewind/pkg/protocol"
)

// harness connects a proxied Connection to in-memory client and backend ends.
type harness struct {
	client  *framer
	backend *framer
	users   *user.Registry
	done    chan struct{}
	cancel  context.CancelFunc
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	clientEnd, proxyEnd := net.Pipe()
	backendProxyEnd, backendEnd := net.Pipe()
	deadline := time.Now().Add(5 * time.Second)
	clientEnd.SetDeadline(deadline)
	backendEnd.SetDeadline(deadline)

	ctx, cancel := context.WithCancel(context.Background())
	h := &harness{
		client:  newFramer(clientEnd),
		backend: newFramer(backendEnd),
		users:   user.NewRegistry(),
		done:    make(chan struct{}),
		cancel:  cancel,
	}
	c := NewConnection(proxyEnd, Options{
		Config:   config.DefaultConfig(),
		Registry: h.users,
		Dial: func(context.Context, string, string) (net.Conn, error) {
			return backendProxyEnd, nil
		},
	})
	go func() {
		c.Handle(ctx)
		close(h.done)
	}()
	t.Cleanup(func() {
		cancel()
		clientEnd.Close()
		backendEnd.Close()
		<-h.done
	})
	return h
}

func mustEncode(t *testing.T, p protocol.Packet) protocol.Raw {
	t.Helper()
	raw, err := protocol.Encode(p)
	if err != nil {
		t.Fatalf("encode %T: %v", p, err)
	}
	return raw
}

func (h *harness) handshake(t *testing.T, version, next int32) {
	t.Helper()
	hs := packet.Handshake{ProtocolVersion: version, ServerAddress: "localhost", ServerPort: 25565, NextState: next}
	if err := h.client.WritePacket(mustEncode(t, hs)); err != nil {
		t.Fatalf("write handshake: %v", err)
	}
}

func TestSessionRejectsWrongClientVersion(t *testing.T) {
	h := newHarness(t)
	h.handshake(t, packet.Protocol1_8, packet.NextStateLogin)

	raw, err := h.client.ReadPacket()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if raw.ID != packet.LoginDisconnectID {
		t.Fatalf("got packet 0x%02X, want login disconnect", raw.ID)
	}
	var d packet.LoginDisconnect
	if err := protocol.Unmarshal(raw.Data, &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !bytes.Contains([]byte(d.Reason), []byte("1.7.10")) {
		t.Errorf("reason %q does not name the client version", d.Reason)
	}
}

func TestSessionLoginAndPlay(t *testing.T) {
	h := newHarness(t)
	h.handshake(t, packet.Protocol1_7_10, packet.NextStateLogin)

	raw, err := h.backend.ReadPacket()
	if err != nil {
		t.Fatalf("backend read handshake: %v", err)
	}
	var hs packet.Handshake
	if err := protocol.Unmarshal(raw.Data, &hs); err != nil {
		t.Fatalf("unmarshal handshake: %v", err)
	}
	if hs.ProtocolVersion != packet.Protocol1_8 || hs.NextState != packet.NextStateLogin {
		t.Fatalf("backend handshake = %+v", hs)
	}

	// Login start passes through unchanged.
	start := protocol.Raw{ID: packet.LoginStartID, Data: []byte{5, 'S', 't', 'e', 'v', 'e'}}
	if err := h.client.WritePacket(start); err != nil {
		t.Fatalf("client write login start: %v", err)
	}
	if raw, err = h.backend.ReadPacket(); err != nil || !bytes.Equal(raw.Data, start.Data) {
		t.Fatalf("backend login start = %v, %v", raw, err)
	}

	// The compression handshake is hidden from the 1.7 client; the backend
	// side switches to the compressed format right away.
	if err := h.backend.WritePacket(mustEncode(t, packet.SetCompression{Threshold: 256})); err != nil {
		t.Fatalf("backend write set compression: %v", err)
	}
	h.backend.SetThreshold(256)
	success := packet.LoginSuccess{UUID: "069a79f4-44e9-4726-a5be-fca90e38aaf5", Username: "Steve"}
	if err := h.backend.WritePacket(mustEncode(t, success)); err != nil {
		t.Fatalf("backend write login success: %v", err)
	}

	raw, err = h.client.ReadPacket()
	if err != nil {
		t.Fatalf("client read: %v", err)
	}
	if raw.ID != packet.LoginSuccessID {
		t.Fatalf("client got 0x%02X, want login success", raw.ID)
	}

	// Play keep-alive: VarInt on 1.8, Int on 1.7.
	if err := h.backend.WritePacket(protocol.Raw{ID: 0x00, Data: []byte{42}}); err != nil {
		t.Fatalf("backend write keep-alive: %v", err)
	}
	raw, err = h.client.ReadPacket()
	if err != nil {
		t.Fatalf("client read keep-alive: %v", err)
	}
	if raw.ID != 0x00 || !bytes.Equal(raw.Data, []byte{0, 0, 0, 42}) {
		t.Fatalf("client keep-alive = 0x%02X % x", raw.ID, raw.Data)
	}

	if err := h.client.WritePacket(protocol.Raw{ID: 0x00, Data: []byte{0, 0, 0, 7}}); err != nil {
		t.Fatalf("client write keep-alive: %v", err)
	}
	raw, err = h.backend.ReadPacket()
	if err != nil {
		t.Fatalf("backend read keep-alive: %v", err)
	}
	if raw.ID != 0x00 || !bytes.Equal(raw.Data, []byte{7}) {
		t.Fatalf("backend keep-alive = 0x%02X % x", raw.ID, raw.Data)
	}

	if h.users.Len() != 1 {
		t.Errorf("registry holds %d connections, want 1", h.users.Len())
	}
	if u := h.users.GetByName("Steve"); u == nil || u.State() != packet.Play {
		t.Errorf("connection for Steve missing or not in play state")
	}
}

func TestSessionStatus(t *testing.T) {
	h := newHarness(t)
	h.handshake(t, packet.Protocol1_7_10, packet.NextStateStatus)

	raw, err := h.backend.ReadPacket()
	if err != nil {
		t.Fatalf("backend read handshake: %v", err)
	}
	var hs packet.Handshake
	if err := protocol.Unmarshal(raw.Data, &hs); err != nil || hs.ProtocolVersion != packet.Protocol1_8 {
		t.Fatalf("backend handshake = %+v, %v", hs, err)
	}

	if err := h.client.WritePacket(protocol.Raw{ID: 0x00}); err != nil {
		t.Fatalf("client write request: %v", err)
	}
	if raw, err = h.backend.ReadPacket(); err != nil || raw.ID != 0x00 {
		t.Fatalf("backend request = %v, %v", raw, err)
	}

	doc := `{"version":{"name":"1.8","protocol":47},"description":{"text":"hi"}}`
	if err := h.backend.WritePacket(mustEncode(t, packet.StatusResponse{JSONResponse: doc})); err != nil {
		t.Fatalf("backend write response: %v", err)
	}
	raw, err = h.client.ReadPacket()
	if err != nil {
		t.Fatalf("client read response: %v", err)
	}
	var resp packet.StatusResponse
	if err := protocol.Unmarshal(raw.Data, &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	var got struct {
		Version struct {
			Name     string `json:"name"`
			Protocol int32  `json:"protocol"`
		} `json:"version"`
	}
	if err := json.Unmarshal([]byte(resp.JSONResponse), &got); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if got.Version.Protocol != packet.Protocol1_7_10 || got.Version.Name != "1.7.10" {
		t.Errorf("version = %+v, want 1.7.10 / 5", got.Version)
	}

	ping := protocol.Raw{ID: 0x01, Data: []byte{0, 0, 0, 0, 0, 0, 1, 2}}
	if err := h.client.WritePacket(ping); err != nil {
		t.Fatalf("client write ping: %v", err)
	}
	if raw, err = h.backend.ReadPacket(); err != nil {
		t.Fatalf("backend read ping: %v", err)
	}
	if err := h.backend.WritePacket(raw); err != nil {
		t.Fatalf("backend write pong: %v", err)
	}
	raw, err = h.client.ReadPacket()
	if err != nil {
		t.Fatalf("client read pong: %v", err)
	}
	if raw.ID != 0x01 || !bytes.Equal(raw.Data, ping.Data) {
		t.Errorf("pong = 0x%02X % x", raw.ID, raw.Data)
	}
}

func TestRewriteStatusJSON(t *testing.T) {
	tests := []struct {
		name   string
		doc    string
		pinged int32
		want   int32
	}{
		{"served version", `{"version":{"name":"1.8","protocol":47}}`, 5, 5},
		{"other advertised version", `{"version":{"name":"1.12","protocol":340}}`, 5, 340},
		{"client pinged another version", `{"version":{"name":"1.8","protocol":47}}`, 47, 47},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := RewriteStatusJSON(tt.doc, packet.Protocol1_8, packet.Protocol1_7_10, tt.pinged)
			if err != nil {
				t.Fatalf("RewriteStatusJSON: %v", err)
			}
			var got struct {
				Version struct {
					Protocol int32 `json:"protocol"`
				} `json:"version"`
			}
			if err := json.Unmarshal([]byte(out), &got); err != nil {
				t.Fatalf("parse: %v", err)
			}
			if got.Version.Protocol != tt.want {
				t.Errorf("protocol = %d, want %d", got.Version.Protocol, tt.want)
			}
		})
	}

	if _, err := RewriteStatusJSON("not json", packet.Protocol1_8, packet.Protocol1_7_10, 5); err == nil {
		t.Error("expected error for malformed document")
	}
}

func TestBackendThresholdFollowsLoginCompression(t *testing.T) {
	c := &Connection{
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		backend: newFramer(&bytes.Buffer{}),
	}
	c.compressionEngaged(256)
	if c.backend.Compressed() {
		t.Fatalf("absorbed handshake switched the backend framer")
	}
	if err := c.observeLogin(mustEncode(t, packet.SetCompression{Threshold: 256})); err != nil {
		t.Fatalf("observeLogin: %v", err)
	}
	if !c.backend.Compressed() {
		t.Errorf("backend framer still uncompressed after set compression")
	}
}
