package protocol

import (
	"bytes"
	"errors"
	"testing"
)

func TestVarInt(t *testing.T) {
	tests := []struct {
		value int32
		wire  []byte
	}{
		{0, []byte{0x00}},
		{127, []byte{0x7F}},
		{128, []byte{0x80, 0x01}},
		{300, []byte{0xAC, 0x02}},
		{25565, []byte{0xDD, 0xC7, 0x01}},
		{2147483647, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x07}},
		{-1, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x0F}},
	}

	for _, tt := range tests {
		var buf bytes.Buffer
		if _, err := WriteVarInt(&buf, tt.value); err != nil {
			t.Fatalf("WriteVarInt(%d): %v", tt.value, err)
		}
		if !bytes.Equal(buf.Bytes(), tt.wire) {
			t.Errorf("WriteVarInt(%d) = % x, want % x", tt.value, buf.Bytes(), tt.wire)
		}
		if got := VarIntSize(tt.value); got != len(tt.wire) {
			t.Errorf("VarIntSize(%d) = %d, want %d", tt.value, got, len(tt.wire))
		}

		got, n, err := ReadVarInt(bytes.NewReader(tt.wire))
		if err != nil || got != tt.value || n != len(tt.wire) {
			t.Errorf("ReadVarInt(% x) = %d, %d, %v", tt.wire, got, n, err)
		}
	}
}

func TestVarIntTooLong(t *testing.T) {
	_, _, err := ReadVarInt(bytes.NewReader([]byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x01}))
	if !errors.Is(err, ErrVarIntTooLong) {
		t.Errorf("err = %v, want ErrVarIntTooLong", err)
	}
}

func TestVarLong(t *testing.T) {
	for _, v := range []int64{0, 1 << 40, -1, -1 << 63} {
		var buf bytes.Buffer
		if _, err := WriteVarLong(&buf, v); err != nil {
			t.Fatal(err)
		}
		got, _, err := ReadVarLong(&buf)
		if err != nil || got != v {
			t.Errorf("VarLong %d round trip = %d, %v", v, got, err)
		}
	}
}

func TestPosition(t *testing.T) {
	tests := [][3]int{
		{0, 0, 0},
		{100, 64, 200},
		{-100, 0, -200},
		{0, 255, 0},
		{-33554432, 0, 33554431},
		{7, -1, -7},
	}
	for _, p := range tests {
		x, y, z := DecodePosition(EncodePosition(p[0], p[1], p[2]))
		if x != p[0] || y != p[1] || z != p[2] {
			t.Errorf("position %v decoded as (%d, %d, %d)", p, x, y, z)
		}
	}
}

func TestShortByteArray(t *testing.T) {
	var buf bytes.Buffer
	if _, err := WriteShortByteArray(&buf, []byte{9, 8, 7}); err != nil {
		t.Fatalf("WriteShortByteArray: %v", err)
	}
	if want := []byte{0, 3, 9, 8, 7}; !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("encoded %x, want %x", buf.Bytes(), want)
	}
	got, err := ReadShortByteArray(&buf)
	if err != nil {
		t.Fatalf("ReadShortByteArray: %v", err)
	}
	if !bytes.Equal(got, []byte{9, 8, 7}) {
		t.Errorf("got %x", got)
	}

	if _, err := ReadShortByteArray(bytes.NewReader([]byte{0xFF, 0xFF})); err == nil {
		t.Errorf("negative length accepted")
	}
}

func TestConvert(t *testing.T) {
	tests := []struct {
		name string
		in   any
		to   Type
		want any
	}{
		{"varint to int", int32(300), Int, int32(300)},
		{"int to byte wraps", int32(300), Byte, int8(44)},
		{"short to varint", int16(-2), VarInt, int32(-2)},
		{"ubyte to varint", uint8(200), VarInt, int32(200)},
		{"varint to ubyte", int32(-1), UnsignedByte, uint8(255)},
		{"double to int truncates", float64(-1.9), Int, int32(-1)},
		{"int to double", int32(7), Double, float64(7)},
		{"bool to byte", true, Byte, int8(1)},
		{"byte to bool", int8(0), Bool, false},
		{"bytes kept", []byte{1}, ShortByteArray, []byte{1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Convert(tt.in, tt.to)
			if err != nil {
				t.Fatalf("Convert: %v", err)
			}
			if b, ok := got.([]byte); ok {
				if !bytes.Equal(b, tt.want.([]byte)) {
					t.Errorf("got %v, want %v", got, tt.want)
				}
				return
			}
			if got != tt.want {
				t.Errorf("got %#v, want %#v", got, tt.want)
			}
		})
	}

	if _, err := Convert("text", Int); err == nil {
		t.Errorf("string to int succeeded")
	}
}

func TestClampShort(t *testing.T) {
	if ClampShort(1e9) != 32767 || ClampShort(-1e9) != -32768 || ClampShort(12.7) != 12 {
		t.Errorf("ClampShort out of range handling is wrong")
	}
}
