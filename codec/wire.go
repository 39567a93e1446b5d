package codec

import (
	"encoding/binary"
	"math"
)

type cursor struct {
	b   []byte
	pos int
}

func newCursor(b []byte) *cursor {
	return &cursor{b: b, pos: 0}
}

func (c *cursor) remaining() int {
	if c.pos >= len(c.b) {
		return 0
	}
	return len(c.b) - c.pos
}

func (c *cursor) readExact(n int, path string) ([]byte, error) {
	if n < 0 || c.remaining() < n {
		return nil, codecErr(CODEC_ERR_DECODE, path, "truncated: need %d bytes, have %d", n, c.remaining())
	}
	start := c.pos
	c.pos += n
	return c.b[start:c.pos], nil
}

func (c *cursor) peekU32LE(path string) (uint32, error) {
	if c.remaining() < 4 {
		return 0, codecErr(CODEC_ERR_DECODE, path, "truncated: need 4 byte header, have %d", c.remaining())
	}
	return binary.LittleEndian.Uint32(c.b[c.pos : c.pos+4]), nil
}

func (c *cursor) readU32LE(path string) (uint32, error) {
	b, err := c.readExact(4, path)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func appendU16le(dst []byte, v uint16) []byte {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	return append(dst, buf[:]...)
}

func appendU32le(dst []byte, v uint32) []byte {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	return append(dst, buf[:]...)
}

func appendU64le(dst []byte, v uint64) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	return append(dst, buf[:]...)
}

// appendHeader writes the shared dynvec/table framing: total_size, one offset
// per part, then the parts themselves.
func appendHeader(dst []byte, parts [][]byte, path string) ([]byte, error) {
	headerSize := 4 * (len(parts) + 1)
	total := uint64(headerSize)
	for _, p := range parts {
		total += uint64(len(p))
	}
	if total > math.MaxUint32 {
		return nil, codecErr(CODEC_ERR_ENCODE, path, "encoded size %d exceeds u32", total)
	}
	dst = appendU32le(dst, uint32(total))
	off := uint32(headerSize)
	for _, p := range parts {
		dst = appendU32le(dst, off)
		off += uint32(len(p)) // #nosec G115 -- bounded by total check above.
	}
	for _, p := range parts {
		dst = append(dst, p...)
	}
	return dst, nil
}

// parseHeader validates the framing of b (which must be exactly one dynvec or
// table) and returns the start offset of each item.
func parseHeader(b []byte, path string) ([]int, error) {
	if len(b) < 4 {
		return nil, codecErr(CODEC_ERR_DECODE, path, "header truncated")
	}
	total := binary.LittleEndian.Uint32(b[0:4])
	if uint64(total) != uint64(len(b)) {
		return nil, codecErr(CODEC_ERR_DECODE, path, "total_size %d does not match %d bytes", total, len(b))
	}
	if total == 4 {
		return nil, nil
	}
	if total < 8 {
		return nil, codecErr(CODEC_ERR_DECODE, path, "total_size %d too small for an offset", total)
	}
	first := binary.LittleEndian.Uint32(b[4:8])
	if first%4 != 0 || first < 8 || first > total {
		return nil, codecErr(CODEC_ERR_DECODE, path, "bad first offset %d", first)
	}
	count := int(first/4) - 1
	offsets := make([]int, count)
	prev := first
	for i := 0; i < count; i++ {
		off := binary.LittleEndian.Uint32(b[4+4*i : 8+4*i])
		if off < prev || off > total {
			return nil, codecErr(CODEC_ERR_DECODE, path, "offset %d out of order", i)
		}
		offsets[i] = int(off)
		prev = off
	}
	return offsets, nil
}

func itemBounds(offsets []int, total, i int) (int, int) {
	start := offsets[i]
	end := total
	if i+1 < len(offsets) {
		end = offsets[i+1]
	}
	return start, end
}
