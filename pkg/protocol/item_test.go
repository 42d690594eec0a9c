package protocol

import (
	"bytes"
	"testing"

	"github.com/dxomg/ViaRewind/pkg/nbt"
)

func enchantedSword() *ItemStack {
	tag := nbt.NewCompound()
	ench := nbt.NewList(nbt.TagCompound)
	e := nbt.NewCompound()
	e.Put("id", nbt.Short(16))
	e.Put("lvl", nbt.Short(5))
	ench.Add(e)
	tag.Put("ench", ench)
	return &ItemStack{ID: 276, Count: 1, Damage: 12, Tag: tag}
}

func TestItemCodecs(t *testing.T) {
	codecs := []struct {
		name  string
		write func(*bytes.Buffer, *ItemStack) error
		read  func(*bytes.Buffer) (*ItemStack, error)
	}{
		{"inline", func(b *bytes.Buffer, i *ItemStack) error { return WriteItem(b, i) }, func(b *bytes.Buffer) (*ItemStack, error) { return ReadItem(b) }},
		{"compressed", func(b *bytes.Buffer, i *ItemStack) error { return WriteCompressedItem(b, i) }, func(b *bytes.Buffer) (*ItemStack, error) { return ReadCompressedItem(b) }},
	}
	items := []struct {
		name string
		item *ItemStack
	}{
		{"empty", nil},
		{"plain", &ItemStack{ID: 1, Count: 64, Damage: 0}},
		{"tagged", enchantedSword()},
	}

	for _, c := range codecs {
		for _, it := range items {
			t.Run(c.name+"/"+it.name, func(t *testing.T) {
				var buf bytes.Buffer
				if err := c.write(&buf, it.item); err != nil {
					t.Fatalf("write: %v", err)
				}
				got, err := c.read(&buf)
				if err != nil {
					t.Fatalf("read: %v", err)
				}
				if buf.Len() != 0 {
					t.Errorf("%d trailing bytes", buf.Len())
				}
				if (got == nil) != (it.item == nil) {
					t.Fatalf("got %+v, want %+v", got, it.item)
				}
				if got == nil {
					return
				}
				if got.ID != it.item.ID || got.Count != it.item.Count || got.Damage != it.item.Damage {
					t.Errorf("got %+v, want %+v", got, it.item)
				}
				if (it.item.Tag == nil) != (got.Tag == nil) || (got.Tag != nil && !nbt.Equal(got.Tag, it.item.Tag)) {
					t.Errorf("tag mismatch")
				}
			})
		}
	}
}

func TestEmptyItemLayouts(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteItem(&buf, &ItemStack{ID: 1, Count: 1}); err != nil {
		t.Fatal(err)
	}
	// id, count, damage, End byte
	if want := []byte{0, 1, 1, 0, 0, 0}; !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("inline = %x, want %x", buf.Bytes(), want)
	}

	buf.Reset()
	if err := WriteCompressedItem(&buf, &ItemStack{ID: 1, Count: 1}); err != nil {
		t.Fatal(err)
	}
	if want := []byte{0, 1, 1, 0, 0, 0xFF, 0xFF}; !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("compressed = %x, want %x", buf.Bytes(), want)
	}
}

func TestItemArray(t *testing.T) {
	items := []*ItemStack{nil, {ID: 3, Count: 2}, enchantedSword()}
	var buf bytes.Buffer
	if err := WriteField(&buf, CompressedItemArray, items); err != nil {
		t.Fatalf("WriteField: %v", err)
	}
	v, err := ReadField(&buf, CompressedItemArray)
	if err != nil {
		t.Fatalf("ReadField: %v", err)
	}
	got := v.([]*ItemStack)
	if len(got) != 3 || got[0] != nil || got[1].ID != 3 || got[2].Tag == nil {
		t.Errorf("got %v", got)
	}
}

func TestCloneItem(t *testing.T) {
	orig := enchantedSword()
	c := orig.Clone()
	c.Tag.Remove("ench")
	c.Count = 9
	if !orig.Tag.Has("ench") || orig.Count != 1 {
		t.Errorf("Clone shares state with the original")
	}
	var empty *ItemStack
	if empty.Clone() != nil {
		t.Errorf("Clone of nil is not nil")
	}
}
