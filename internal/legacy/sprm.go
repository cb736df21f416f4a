package legacy

// Single property modifiers decoded by the reader. Everything else in
// a grpprl is skipped by size.
const (
	sprmCFBold   = 0x0835
	sprmCFItalic = 0x0836
	sprmCKul     = 0x2A3E
	sprmCHps     = 0x4A43
	sprmCRgFtc0  = 0x4A4F

	sprmPJc80     = 0x2403
	sprmPJc       = 0x2461
	sprmPFInTable = 0x2416
	sprmPFTtp     = 0x2417

	sprmTDefTable = 0xD608
)

// sprmIter walks a grpprl, yielding each modifier with its operand.
type sprmIter struct {
	data []byte
	pos  int
}

func (it *sprmIter) next() (op uint16, operand []byte, ok bool) {
	if it.pos+2 > len(it.data) {
		return 0, nil, false
	}
	op = le.Uint16(it.data[it.pos:])
	it.pos += 2

	var size int
	switch op >> 13 {
	case 0, 1:
		size = 1
	case 2, 4, 5:
		size = 2
	case 3:
		size = 4
	case 7:
		size = 3
	case 6:
		// Variable size: a count byte, except the table-definition
		// modifier whose count is two bytes and off by one.
		if op == sprmTDefTable {
			if it.pos+2 > len(it.data) {
				return 0, nil, false
			}
			size = 2 + int(le.Uint16(it.data[it.pos:])) - 1
		} else {
			if it.pos+1 > len(it.data) {
				return 0, nil, false
			}
			size = 1 + int(it.data[it.pos])
		}
	}
	if it.pos+size > len(it.data) {
		return 0, nil, false
	}
	operand = it.data[it.pos : it.pos+size]
	it.pos += size
	return op, operand, true
}

type charProps struct {
	bold, italic bool
	underline    byte
	halfPoints   int
	fontIndex    int
}

func defaultCharProps() charProps {
	return charProps{fontIndex: -1}
}

// applyToggle resolves the four-state toggle operand used by bold and
// italic modifiers: 0 off, 1 on, 128 keep, 129 invert.
func applyToggle(v byte, cur bool) bool {
	switch v {
	case 0:
		return false
	case 1:
		return true
	case 129:
		return !cur
	default:
		return cur
	}
}

func applyChpx(grpprl []byte, cp *charProps) {
	it := sprmIter{data: grpprl}
	for {
		op, operand, ok := it.next()
		if !ok {
			return
		}
		switch op {
		case sprmCFBold:
			cp.bold = applyToggle(operand[0], cp.bold)
		case sprmCFItalic:
			cp.italic = applyToggle(operand[0], cp.italic)
		case sprmCKul:
			cp.underline = operand[0]
		case sprmCHps:
			cp.halfPoints = int(le.Uint16(operand))
		case sprmCRgFtc0:
			cp.fontIndex = int(le.Uint16(operand))
		}
	}
}

type paraProps struct {
	justification byte
	inTable       bool
	rowEnd        bool
}

func applyPapx(grpprl []byte, pp *paraProps) {
	it := sprmIter{data: grpprl}
	for {
		op, operand, ok := it.next()
		if !ok {
			return
		}
		switch op {
		case sprmPJc80, sprmPJc:
			pp.justification = operand[0]
		case sprmPFInTable:
			pp.inTable = operand[0] != 0
		case sprmPFTtp:
			pp.rowEnd = operand[0] != 0
		}
	}
}
