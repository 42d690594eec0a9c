package protocol

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"

	"github.com/dxomg/ViaRewind/pkg/nbt"
)

const maxItemArray = 1024

// ItemStack is a slot value. A nil *ItemStack is an empty slot.
type ItemStack struct {
	ID     int16
	Count  int8
	Damage int16
	Tag    *nbt.Compound
}

// Clone returns a deep copy, or nil for an empty slot.
func (i *ItemStack) Clone() *ItemStack {
	if i == nil {
		return nil
	}
	out := *i
	out.Tag = i.Tag.Clone()
	return &out
}

func readItemHeader(r io.Reader) (*ItemStack, error) {
	id, err := ReadI16(r)
	if err != nil {
		return nil, fmt.Errorf("read item id: %w", err)
	}
	if id < 0 {
		return nil, nil
	}
	count, err := ReadI8(r)
	if err != nil {
		return nil, fmt.Errorf("read item count: %w", err)
	}
	damage, err := ReadI16(r)
	if err != nil {
		return nil, fmt.Errorf("read item damage: %w", err)
	}
	return &ItemStack{ID: id, Count: count, Damage: damage}, nil
}

func writeItemHeader(w io.Writer, item *ItemStack) error {
	var buf [5]byte
	binary.BigEndian.PutUint16(buf[0:], uint16(item.ID))
	buf[2] = byte(item.Count)
	binary.BigEndian.PutUint16(buf[3:], uint16(item.Damage))
	_, err := w.Write(buf[:])
	return err
}

// ReadItem reads a 1.8 slot: id, count, damage and an inline optional NBT root.
func ReadItem(r io.Reader) (*ItemStack, error) {
	item, err := readItemHeader(r)
	if err != nil || item == nil {
		return nil, err
	}
	if item.Tag, err = ReadNBT(r); err != nil {
		return nil, fmt.Errorf("read item tag: %w", err)
	}
	return item, nil
}

func WriteItem(w io.Writer, item *ItemStack) error {
	if item == nil {
		return binary.Write(w, binary.BigEndian, int16(-1))
	}
	if err := writeItemHeader(w, item); err != nil {
		return err
	}
	return WriteNBT(w, item.Tag)
}

// ReadCompressedItem reads a 1.7 slot whose NBT is a short-length-prefixed
// gzip stream; a length of -1 means no tag.
func ReadCompressedItem(r io.Reader) (*ItemStack, error) {
	item, err := readItemHeader(r)
	if err != nil || item == nil {
		return nil, err
	}
	if item.Tag, err = ReadCompressedNBT(r); err != nil {
		return nil, fmt.Errorf("read item tag: %w", err)
	}
	return item, nil
}

func WriteCompressedItem(w io.Writer, item *ItemStack) error {
	if item == nil {
		return binary.Write(w, binary.BigEndian, int16(-1))
	}
	if err := writeItemHeader(w, item); err != nil {
		return err
	}
	return WriteCompressedNBT(w, item.Tag)
}

// ReadCompressedNBT reads a short-length-prefixed gzip NBT root as 1.7 sends
// it; a length of -1 yields nil.
func ReadCompressedNBT(r io.Reader) (*nbt.Compound, error) {
	length, err := ReadI16(r)
	if err != nil {
		return nil, fmt.Errorf("read tag length: %w", err)
	}
	if length < 0 {
		return nil, nil
	}
	data := make([]byte, length)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, fmt.Errorf("read tag data: %w", err)
	}
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open tag: %w", err)
	}
	defer zr.Close()
	tag, err := nbt.NewReader(zr).ReadRoot()
	if err != nil {
		return nil, fmt.Errorf("decode tag: %w", err)
	}
	return tag, nil
}

func WriteCompressedNBT(w io.Writer, c *nbt.Compound) error {
	if c == nil {
		return binary.Write(w, binary.BigEndian, int16(-1))
	}
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	nw := nbt.NewWriter(zw)
	nw.WriteRoot(c)
	if err := nw.Err(); err != nil {
		return fmt.Errorf("encode tag: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("compress tag: %w", err)
	}
	_, err := WriteShortByteArray(w, buf.Bytes())
	return err
}

// ReadNBT reads an optional root compound; a single End byte yields nil.
func ReadNBT(r io.Reader) (*nbt.Compound, error) {
	return nbt.NewReader(r).ReadOptionalRoot()
}

func WriteNBT(w io.Writer, c *nbt.Compound) error {
	if c == nil {
		_, err := w.Write([]byte{nbt.TagEnd})
		return err
	}
	nw := nbt.NewWriter(w)
	nw.WriteRoot(c)
	return nw.Err()
}

func readItems(r io.Reader, read func(io.Reader) (*ItemStack, error)) ([]*ItemStack, error) {
	count, err := ReadI16(r)
	if err != nil {
		return nil, fmt.Errorf("read item count: %w", err)
	}
	if count < 0 || count > maxItemArray {
		return nil, fmt.Errorf("item array length out of range: %d", count)
	}
	items := make([]*ItemStack, count)
	for i := range items {
		if items[i], err = read(r); err != nil {
			return nil, fmt.Errorf("read item %d: %w", i, err)
		}
	}
	return items, nil
}

func writeItems(w io.Writer, items []*ItemStack, write func(io.Writer, *ItemStack) error) error {
	if err := binary.Write(w, binary.BigEndian, int16(len(items))); err != nil {
		return err
	}
	for i, item := range items {
		if err := write(w, item); err != nil {
			return fmt.Errorf("write item %d: %w", i, err)
		}
	}
	return nil
}
