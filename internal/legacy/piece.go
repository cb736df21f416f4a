package legacy

import (
	"fmt"
	"unicode/utf16"

	"golang.org/x/text/encoding/charmap"
)

// piece maps a run of character positions to bytes in the document
// stream. fc is the byte offset of the first character; compressed
// pieces store one CP1252 byte per character, uncompressed pieces two
// UTF-16LE bytes.
type piece struct {
	cpStart, cpEnd int
	fc             uint32
	compressed     bool
}

type pieceTable struct {
	pieces []piece
}

const (
	clxPrc  = 0x01
	clxPcdt = 0x02
)

// parsePieceTable walks the clx block: zero or more property
// modifiers (skipped) followed by the piece descriptor plex.
func parsePieceTable(clx []byte) (*pieceTable, error) {
	pos := 0
	for pos < len(clx) {
		switch clx[pos] {
		case clxPrc:
			if pos+3 > len(clx) {
				return nil, fmt.Errorf("truncated prc at %d", pos)
			}
			cb := int(le.Uint16(clx[pos+1:]))
			pos += 3 + cb
		case clxPcdt:
			if pos+5 > len(clx) {
				return nil, fmt.Errorf("truncated pcdt at %d", pos)
			}
			lcb := int(le.Uint32(clx[pos+1:]))
			if pos+5+lcb > len(clx) {
				return nil, fmt.Errorf("piece descriptors extend past clx end")
			}
			return parsePlcPcd(clx[pos+5 : pos+5+lcb])
		default:
			return nil, fmt.Errorf("unknown clx block type 0x%02X at %d", clx[pos], pos)
		}
	}
	return nil, fmt.Errorf("clx has no piece table")
}

func parsePlcPcd(plc []byte) (*pieceTable, error) {
	if len(plc) < 4+8 || (len(plc)-4)%12 != 0 {
		return nil, fmt.Errorf("piece descriptor plex has invalid size %d", len(plc))
	}
	n := (len(plc) - 4) / 12
	cps := make([]int, n+1)
	for i := 0; i <= n; i++ {
		cps[i] = int(le.Uint32(plc[i*4:]))
	}
	pt := &pieceTable{}
	base := (n + 1) * 4
	for i := 0; i < n; i++ {
		pcd := plc[base+i*8:]
		fc := le.Uint32(pcd[2:])
		compressed := fc&0x40000000 != 0
		fc &^= 0xC0000000
		if compressed {
			fc /= 2
		}
		if cps[i+1] < cps[i] {
			return nil, fmt.Errorf("piece %d has descending character range", i)
		}
		pt.pieces = append(pt.pieces, piece{cpStart: cps[i], cpEnd: cps[i+1], fc: fc, compressed: compressed})
	}
	return pt, nil
}

func (pt *pieceTable) pieceFor(cp int) (piece, bool) {
	for _, p := range pt.pieces {
		if cp >= p.cpStart && cp < p.cpEnd {
			return p, true
		}
	}
	return piece{}, false
}

// fcOf returns the byte offset in the document stream of the first
// byte of the character at cp.
func (pt *pieceTable) fcOf(cp int) (uint32, bool) {
	p, ok := pt.pieceFor(cp)
	if !ok {
		return 0, false
	}
	if p.compressed {
		return p.fc + uint32(cp-p.cpStart), true
	}
	return p.fc + uint32(cp-p.cpStart)*2, true
}

// cpAtFC converts a byte offset back to a character position within
// piece p, clamped to the piece's character range.
func cpAtFC(p piece, fc uint32) int {
	var cp int
	if fc <= p.fc {
		return p.cpStart
	}
	if p.compressed {
		cp = p.cpStart + int(fc-p.fc)
	} else {
		cp = p.cpStart + int(fc-p.fc)/2
	}
	if cp > p.cpEnd {
		cp = p.cpEnd
	}
	return cp
}

// units decodes the character range [0, limit) into UTF-16 code units,
// one per character position.
func (pt *pieceTable) units(word []byte, limit int) ([]uint16, error) {
	out := make([]uint16, 0, limit)
	for _, p := range pt.pieces {
		for cp := p.cpStart; cp < p.cpEnd && cp < limit; cp++ {
			if p.compressed {
				off := int(p.fc) + (cp - p.cpStart)
				if off >= len(word) {
					return nil, fmt.Errorf("text byte %d past stream end", off)
				}
				r := charmap.Windows1252.DecodeByte(word[off])
				out = append(out, uint16(r))
			} else {
				off := int(p.fc) + (cp-p.cpStart)*2
				if off+2 > len(word) {
					return nil, fmt.Errorf("text byte %d past stream end", off)
				}
				out = append(out, le.Uint16(word[off:]))
			}
		}
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

// unitsToString decodes UTF-16 code units (surrogate pairs included).
func unitsToString(units []uint16) string {
	return string(utf16.Decode(units))
}
