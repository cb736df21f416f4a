package legacy

import "fmt"

const fkpPageSize = 512

// binTable is the plex mapping byte-offset ranges of the document
// stream to formatted-disk-page numbers.
type binTable struct {
	fcs []uint32
	pns []uint32
}

func parseBinTable(data []byte) (*binTable, error) {
	if len(data) < 4+8 || (len(data)-4)%8 != 0 {
		return nil, fmt.Errorf("bin table has invalid size %d", len(data))
	}
	n := (len(data) - 4) / 8
	bt := &binTable{
		fcs: make([]uint32, n+1),
		pns: make([]uint32, n),
	}
	for i := 0; i <= n; i++ {
		bt.fcs[i] = le.Uint32(data[i*4:])
	}
	base := (n + 1) * 4
	for i := 0; i < n; i++ {
		// Page number lives in the low 22 bits.
		bt.pns[i] = le.Uint32(data[base+i*4:]) & 0x3FFFFF
	}
	return bt, nil
}

// pageFor returns the formatted-disk-page holding properties for fc.
func (bt *binTable) pageFor(word []byte, fc uint32) ([]byte, error) {
	for i := 0; i < len(bt.pns); i++ {
		if fc >= bt.fcs[i] && fc < bt.fcs[i+1] {
			off := int(bt.pns[i]) * fkpPageSize
			if off+fkpPageSize > len(word) {
				return nil, fmt.Errorf("property page %d past stream end", bt.pns[i])
			}
			return word[off : off+fkpPageSize], nil
		}
	}
	return nil, fmt.Errorf("no property page covers offset %d", fc)
}

// fkpEntry is one byte-offset interval of a formatted disk page with
// its property-modifier list.
type fkpEntry struct {
	start, end uint32
	grpprl     []byte
}

// parseChpxPage decodes a character-properties page: interval bounds,
// one offset byte per interval pointing at a length-prefixed grpprl.
func parseChpxPage(page []byte) ([]fkpEntry, error) {
	if len(page) != fkpPageSize {
		return nil, fmt.Errorf("property page has size %d", len(page))
	}
	crun := int(page[fkpPageSize-1])
	if (crun+1)*4+crun > fkpPageSize-1 {
		return nil, fmt.Errorf("property page declares %d runs", crun)
	}
	entries := make([]fkpEntry, 0, crun)
	for i := 0; i < crun; i++ {
		e := fkpEntry{
			start: le.Uint32(page[i*4:]),
			end:   le.Uint32(page[(i+1)*4:]),
		}
		b := page[(crun+1)*4+i]
		if b != 0 {
			off := int(b) * 2
			if off >= fkpPageSize-1 {
				return nil, fmt.Errorf("grpprl offset %d out of page", off)
			}
			cb := int(page[off])
			if off+1+cb > fkpPageSize {
				return nil, fmt.Errorf("grpprl at %d overruns page", off)
			}
			e.grpprl = page[off+1 : off+1+cb]
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// parsePapxPage decodes a paragraph-properties page. Each interval
// carries a 13-byte descriptor whose first byte locates the property
// block: a length byte (doubled; zero meaning "length in next byte"),
// then a style index and the grpprl.
func parsePapxPage(page []byte) ([]fkpEntry, error) {
	if len(page) != fkpPageSize {
		return nil, fmt.Errorf("property page has size %d", len(page))
	}
	cpara := int(page[fkpPageSize-1])
	if (cpara+1)*4+cpara*13 > fkpPageSize-1 {
		return nil, fmt.Errorf("property page declares %d paragraphs", cpara)
	}
	entries := make([]fkpEntry, 0, cpara)
	for i := 0; i < cpara; i++ {
		e := fkpEntry{
			start: le.Uint32(page[i*4:]),
			end:   le.Uint32(page[(i+1)*4:]),
		}
		bOff := page[(cpara+1)*4+i*13]
		if bOff != 0 {
			off := int(bOff) * 2
			if off >= fkpPageSize-1 {
				return nil, fmt.Errorf("papx offset %d out of page", off)
			}
			var papx []byte
			cb := int(page[off])
			if cb == 0 {
				cb2 := int(page[off+1])
				if off+2+cb2*2 > fkpPageSize {
					return nil, fmt.Errorf("papx at %d overruns page", off)
				}
				papx = page[off+2 : off+2+cb2*2]
			} else {
				if off+cb*2 > fkpPageSize {
					return nil, fmt.Errorf("papx at %d overruns page", off)
				}
				papx = page[off+1 : off+cb*2]
			}
			// The block opens with a two-byte style index.
			if len(papx) >= 2 {
				e.grpprl = papx[2:]
			}
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// lookup returns the entry whose interval contains fc.
func lookup(entries []fkpEntry, fc uint32) (fkpEntry, bool) {
	for _, e := range entries {
		if fc >= e.start && fc < e.end {
			return e, true
		}
	}
	return fkpEntry{}, false
}
