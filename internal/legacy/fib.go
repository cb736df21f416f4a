package legacy

import (
	"encoding/binary"
	"fmt"
)

var le = binary.LittleEndian

// fileHeader carries the subset of the file information block the
// reader needs: stream selection, the main-text length, and the
// locations of the piece table, property bin tables and font table
// inside the table stream.
type fileHeader struct {
	encrypted       bool
	tableStreamName string
	ccpText         int

	fcClx, lcbClx                 uint32
	fcPlcfBteChpx, lcbPlcfBteChpx uint32
	fcPlcfBtePapx, lcbPlcfBtePapx uint32
	fcSttbfFfn, lcbSttbfFfn       uint32
}

const (
	fibIdent = 0xA5EC

	flagEncrypted     = 0x0100
	flagWhichTableStm = 0x0200

	// Pair indices into fibRgFcLcb.
	pairPlcfBteChpx = 12
	pairPlcfBtePapx = 13
	pairSttbfFfn    = 15
	pairClx         = 33
)

func parseFileHeader(word []byte) (*fileHeader, error) {
	if len(word) < 0x22 {
		return nil, fmt.Errorf("stream too short for file header (%d bytes)", len(word))
	}
	if le.Uint16(word[0:]) != fibIdent {
		return nil, fmt.Errorf("bad file header signature 0x%04X", le.Uint16(word[0:]))
	}
	h := &fileHeader{}
	flags := le.Uint16(word[0x0A:])
	h.encrypted = flags&flagEncrypted != 0
	if flags&flagWhichTableStm != 0 {
		h.tableStreamName = "1Table"
	} else {
		h.tableStreamName = "0Table"
	}

	pos := 0x20
	csw := int(le.Uint16(word[pos:]))
	pos += 2 + csw*2
	if pos+2 > len(word) {
		return nil, fmt.Errorf("truncated file header")
	}
	cslw := int(le.Uint16(word[pos:]))
	pos += 2
	if pos+cslw*4 > len(word) {
		return nil, fmt.Errorf("truncated file header")
	}
	if cslw > 3 {
		// ccpText is the 4th long: length of the main document text.
		h.ccpText = int(int32(le.Uint32(word[pos+3*4:])))
	}
	pos += cslw * 4
	if pos+2 > len(word) {
		return nil, fmt.Errorf("truncated file header")
	}
	cb := int(le.Uint16(word[pos:]))
	pos += 2
	if pos+cb*8 > len(word) {
		return nil, fmt.Errorf("truncated file header")
	}
	pair := func(i int) (uint32, uint32) {
		if i >= cb {
			return 0, 0
		}
		off := pos + i*8
		return le.Uint32(word[off:]), le.Uint32(word[off+4:])
	}
	h.fcPlcfBteChpx, h.lcbPlcfBteChpx = pair(pairPlcfBteChpx)
	h.fcPlcfBtePapx, h.lcbPlcfBtePapx = pair(pairPlcfBtePapx)
	h.fcSttbfFfn, h.lcbSttbfFfn = pair(pairSttbfFfn)
	h.fcClx, h.lcbClx = pair(pairClx)
	return h, nil
}

// streamSlice bounds-checks a (fc, lcb) window into a stream.
func streamSlice(data []byte, fc, lcb uint32, what string) ([]byte, error) {
	end := int64(fc) + int64(lcb)
	if end > int64(len(data)) {
		return nil, fmt.Errorf("%s extends past stream end (%d+%d > %d)", what, fc, lcb, len(data))
	}
	return data[fc:end], nil
}
