package v1_8to1_9

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math/bits"
	"strings"

	"github.com/dxomg/ViaRewind/internal/packet"
	"github.com/dxomg/ViaRewind/internal/packet/pc_1_8"
	"github.com/dxomg/ViaRewind/internal/pipeline"
	"github.com/dxomg/ViaRewind/pkg/nbt"
	"github.com/dxomg/ViaRewind/pkg/protocol"
)

const (
	sectionBlocks = 16 * 16 * 16
	nibbleSection = sectionBlocks / 2
	biomeBytes    = 16 * 16
	maxPaletted   = 8
)

// section is one decoded 16x16x16 section of a 1.9 chunk column.
type section struct {
	states     [sectionBlocks]uint16
	blockLight []byte
	skyLight   []byte
}

// readSection decodes a paletted section. States are id<<4|meta.
func readSection(r *bytes.Reader, sky bool) (*section, error) {
	bitsPerBlock, err := protocol.ReadU8(r)
	if err != nil {
		return nil, fmt.Errorf("read bits per block: %w", err)
	}
	if bitsPerBlock == 0 || bitsPerBlock > 32 {
		return nil, fmt.Errorf("bad bits per block %d", bitsPerBlock)
	}
	n, _, err := protocol.ReadVarInt(r)
	if err != nil {
		return nil, fmt.Errorf("read palette length: %w", err)
	}
	if n < 0 || int(n) > sectionBlocks {
		return nil, fmt.Errorf("bad palette length %d", n)
	}
	palette := make([]int32, n)
	for i := range palette {
		if palette[i], _, err = protocol.ReadVarInt(r); err != nil {
			return nil, fmt.Errorf("read palette entry %d: %w", i, err)
		}
	}
	longs, _, err := protocol.ReadVarInt(r)
	if err != nil {
		return nil, fmt.Errorf("read data length: %w", err)
	}
	if longs < 0 || int(longs)*8 > r.Len() || int(longs)*64 < sectionBlocks*int(bitsPerBlock) {
		return nil, fmt.Errorf("bad data length %d for %d bits", longs, bitsPerBlock)
	}
	data := make([]uint64, longs)
	if err := binary.Read(r, binary.BigEndian, data); err != nil {
		return nil, fmt.Errorf("read block data: %w", err)
	}

	s := &section{}
	paletted := bitsPerBlock <= maxPaletted
	width := uint(bitsPerBlock)
	mask := uint64(1)<<width - 1
	for i := range s.states {
		bit := uint(i) * width
		start, off := bit/64, bit%64
		v := data[start] >> off
		if off+width > 64 {
			v |= data[start+1] << (64 - off)
		}
		v &= mask
		if paletted {
			if v >= uint64(len(palette)) {
				return nil, fmt.Errorf("block %d uses palette index %d of %d", i, v, len(palette))
			}
			v = uint64(palette[v])
		}
		s.states[i] = uint16(v)
	}

	if s.blockLight, err = readBytes(r, nibbleSection); err != nil {
		return nil, fmt.Errorf("read block light: %w", err)
	}
	if sky {
		if s.skyLight, err = readBytes(r, nibbleSection); err != nil {
			return nil, fmt.Errorf("read sky light: %w", err)
		}
	}
	return s, nil
}

func readBytes(r *bytes.Reader, n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return b, nil
}

// legacyColumn converts 1.9 column data to the 1.8 layout: block states of
// every section, then block light, sky light and biomes.
func (t *translator) legacyColumn(mask uint16, groundUp, sky bool, data []byte) ([]byte, error) {
	r := bytes.NewReader(data)
	n := bits.OnesCount16(mask)
	sections := make([]*section, 0, n)
	for y := range 16 {
		if mask&(1<<y) == 0 {
			continue
		}
		s, err := readSection(r, sky)
		if err != nil {
			return nil, fmt.Errorf("section %d: %w", y, err)
		}
		sections = append(sections, s)
	}

	out := make([]byte, 0, n*(sectionBlocks*2+2*nibbleSection)+biomeBytes)
	for _, s := range sections {
		for _, state := range s.states {
			id, meta := int(state>>4), int(state&0xF)
			if id != 0 {
				id, meta = t.blocks.Block(id, meta)
			}
			out = binary.LittleEndian.AppendUint16(out, uint16(id<<4|meta&0xF))
		}
	}
	for _, s := range sections {
		out = append(out, s.blockLight...)
	}
	if sky {
		for _, s := range sections {
			out = append(out, s.skyLight...)
		}
	}
	if groundUp {
		biomes, err := readBytes(r, biomeBytes)
		if err != nil {
			return nil, fmt.Errorf("read biomes: %w", err)
		}
		out = append(out, biomes...)
	}
	return out, nil
}

// chunkData rewrites a 1.9 column. Its block entities follow as separate
// packets, 1.8 has no room for them in the chunk.
func (t *translator) chunkData(w *pipeline.Wrapper) error {
	x := pipeline.Passthrough[int32](w, protocol.Int)
	z := pipeline.Passthrough[int32](w, protocol.Int)
	groundUp := pipeline.Passthrough[bool](w, protocol.Bool)
	mask := pipeline.Read[int32](w, protocol.VarInt)
	data := pipeline.Read[[]byte](w, protocol.ByteArray)
	count := pipeline.Read[int32](w, protocol.VarInt)
	if w.Err() != nil {
		return nil
	}
	if mask < 0 || mask > 0xFFFF {
		return fmt.Errorf("%w: chunk %d,%d section mask %#x", pipeline.ErrMalformed, x, z, mask)
	}
	if count < 0 || int(count) > w.Remaining() {
		return fmt.Errorf("%w: chunk %d,%d block entity count %d", pipeline.ErrMalformed, x, z, count)
	}
	blockEntities := make([]*nbt.Compound, 0, count)
	for range count {
		if tag := pipeline.Read[*nbt.Compound](w, protocol.NBT); tag != nil {
			blockEntities = append(blockEntities, tag)
		}
	}
	if w.Err() != nil {
		return nil
	}

	legacy, err := t.legacyColumn(uint16(mask), groundUp, w.Conn().Session().HasSkyLight(), data)
	if err != nil {
		return fmt.Errorf("%w: chunk %d,%d: %v", pipeline.ErrMalformed, x, z, err)
	}
	w.Write(protocol.UnsignedShort, mask)
	w.Write(protocol.ByteArray, legacy)

	for _, tag := range blockEntities {
		if p := blockEntityPacket(tag); p != nil {
			w.Schedule(packet.Clientbound, p)
		}
	}
	return nil
}

// Block entity ids and the update action 1.8 applies them with.
var blockEntityActions = map[string]uint8{
	"MobSpawner": pc_1_8.BlockEntitySpawner,
	"Control":    pc_1_8.BlockEntityCommand,
	"Beacon":     pc_1_8.BlockEntityBeacon,
	"Skull":      pc_1_8.BlockEntitySkull,
	"FlowerPot":  pc_1_8.BlockEntityFlowerPot,
	"Banner":     pc_1_8.BlockEntityBanner,
}

const blockEntitySign = "Sign"

// blockEntityPacket builds the 1.8 packet carrying a chunk block entity,
// or nil when the client renders it from the block alone.
func blockEntityPacket(tag *nbt.Compound) protocol.Packet {
	id, _ := tag.GetString("id")
	id = strings.TrimPrefix(id, "minecraft:")
	x, okX := tag.GetNumber("x")
	y, okY := tag.GetNumber("y")
	z, okZ := tag.GetNumber("z")
	if !okX || !okY || !okZ {
		return nil
	}
	pos := protocol.EncodePosition(int(x), int(y), int(z))
	if id == blockEntitySign {
		return signPacket(pos, tag)
	}
	action, ok := blockEntityActions[id]
	if !ok {
		return nil
	}
	return pc_1_8.UpdateBlockEntityPacket{Location: pos, Action: action, Data: tag}
}

// signPacket reads the JSON lines of a sign tag. Missing lines are empty.
func signPacket(pos int64, tag *nbt.Compound) pc_1_8.UpdateSignPacket {
	var lines [4]string
	for i := range lines {
		lines[i] = `""`
		if s, ok := tag.GetString(fmt.Sprintf("Text%d", i+1)); ok {
			lines[i] = s
		}
	}
	return pc_1_8.UpdateSignPacket{Location: pos, Line1: lines[0], Line2: lines[1], Line3: lines[2], Line4: lines[3]}
}
