package v1_7to1_8

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math/bits"

	"github.com/klauspost/compress/zlib"

	"github.com/dxomg/ViaRewind/internal/pipeline"
	"github.com/dxomg/ViaRewind/pkg/protocol"
)

// Chunk column layout sizes in bytes.
const (
	sectionBlocks = 16 * 16 * 16
	blockStates   = sectionBlocks * 2
	nibbleSection = sectionBlocks / 2
	biomeBytes    = 16 * 16
)

// column is one chunk column of a bulk or single chunk packet.
type column struct {
	x, z     int32
	mask     uint16
	groundUp bool
	data     []byte
}

// columnSize is the length of 1.8 column data for the sections in mask.
func columnSize(mask uint16, sky, groundUp bool) int {
	n := bits.OnesCount16(mask)
	size := n * (blockStates + nibbleSection)
	if sky {
		size += n * nibbleSection
	}
	if groundUp {
		size += biomeBytes
	}
	return size
}

// hasSkyLight infers from its length whether single chunk data carries sky
// light, which the 1.8 packet does not state.
func hasSkyLight(c column) (bool, error) {
	switch len(c.data) {
	case columnSize(c.mask, true, c.groundUp):
		return true, nil
	case columnSize(c.mask, false, c.groundUp):
		return false, nil
	}
	return false, fmt.Errorf("%w: chunk %d,%d data is %d bytes for mask %#04x",
		pipeline.ErrMalformed, c.x, c.z, len(c.data), c.mask)
}

// appendLegacyColumn appends the 1.7 layout of c to dst: block ids, block
// metadata, block light, sky light and biomes. Blocks the client does not
// know are replaced.
func (t *translator) appendLegacyColumn(dst []byte, c column, sky bool) []byte {
	n := bits.OnesCount16(c.mask)
	states := c.data[:n*blockStates]
	rest := c.data[n*blockStates:]

	ids := make([]byte, n*sectionBlocks)
	meta := make([]byte, n*nibbleSection)
	for i := range ids {
		state := binary.LittleEndian.Uint16(states[i*2:])
		id, m := int(state>>4), int(state&0xF)
		if id != 0 {
			id, m = t.blocks.Block(id, m)
		}
		ids[i] = byte(id)
		meta[i>>1] |= byte(m&0xF) << (4 * (i & 1))
	}

	dst = append(dst, ids...)
	dst = append(dst, meta...)
	light := n * nibbleSection
	dst = append(dst, rest[:light]...)
	rest = rest[light:]
	if sky {
		dst = append(dst, rest[:light]...)
		rest = rest[light:]
	}
	if c.groundUp {
		dst = append(dst, rest[:biomeBytes]...)
	}
	return dst
}

func deflate(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// chunkData rewrites a single chunk column.
func (t *translator) chunkData(w *pipeline.Wrapper) error {
	c := column{
		x:        pipeline.Passthrough[int32](w, protocol.Int),
		z:        pipeline.Passthrough[int32](w, protocol.Int),
		groundUp: pipeline.Passthrough[bool](w, protocol.Bool),
		mask:     pipeline.Passthrough[uint16](w, protocol.UnsignedShort),
		data:     pipeline.Read[[]byte](w, protocol.ByteArray),
	}
	if w.Err() != nil {
		return nil
	}

	var legacy []byte
	if c.mask == 0 {
		// Unload. The client only needs the biomes, when present.
		if c.groundUp && len(c.data) >= biomeBytes {
			legacy = c.data[:biomeBytes]
		}
	} else {
		sky, err := hasSkyLight(c)
		if err != nil {
			return err
		}
		legacy = t.appendLegacyColumn(nil, c, sky)
	}

	compressed, err := deflate(legacy)
	if err != nil {
		return fmt.Errorf("compress chunk %d,%d: %w", c.x, c.z, err)
	}
	w.Write(protocol.UnsignedShort, 0) // add mask
	w.Write(protocol.Int, len(compressed))
	w.Write(protocol.Rest, compressed)
	return nil
}

// mapChunkBulk rewrites a batch of full chunk columns.
func (t *translator) mapChunkBulk(w *pipeline.Wrapper) error {
	sky := pipeline.Read[bool](w, protocol.Bool)
	count := pipeline.Read[int32](w, protocol.VarInt)
	if w.Err() != nil {
		return nil
	}
	if count < 0 || int(count) > w.Remaining()/10 {
		return fmt.Errorf("%w: chunk bulk count %d", pipeline.ErrMalformed, count)
	}

	columns := make([]column, count)
	for i := range columns {
		columns[i] = column{
			x:        pipeline.Read[int32](w, protocol.Int),
			z:        pipeline.Read[int32](w, protocol.Int),
			mask:     pipeline.Read[uint16](w, protocol.UnsignedShort),
			groundUp: true,
		}
	}
	data := w.ReadRest()
	if w.Err() != nil {
		return nil
	}

	var legacy []byte
	for i := range columns {
		size := columnSize(columns[i].mask, sky, true)
		if size > len(data) {
			return fmt.Errorf("%w: chunk bulk column %d,%d needs %d bytes, %d left",
				pipeline.ErrMalformed, columns[i].x, columns[i].z, size, len(data))
		}
		columns[i].data, data = data[:size], data[size:]
		legacy = t.appendLegacyColumn(legacy, columns[i], sky)
	}

	compressed, err := deflate(legacy)
	if err != nil {
		return fmt.Errorf("compress chunk bulk: %w", err)
	}
	w.Write(protocol.Short, count)
	w.Write(protocol.Int, len(compressed))
	w.Write(protocol.Bool, sky)
	w.Write(protocol.Rest, compressed)
	for _, c := range columns {
		w.Write(protocol.Int, c.x)
		w.Write(protocol.Int, c.z)
		w.Write(protocol.UnsignedShort, c.mask)
		w.Write(protocol.UnsignedShort, 0)
	}
	return nil
}
