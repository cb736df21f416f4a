// Package legacy reads the compound-file binary word-processing format
// far enough to reconstruct the main document's paragraph sequence:
// text, minimal run formatting (bold, italic, underline, size, font),
// paragraph justification, and the table structure marked in paragraph
// properties. The container is parsed with the mscfb compound-file
// reader; the document and table streams are decoded here.
package legacy

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/richardlehane/mscfb"
)

// Run is a span of identically formatted text within a paragraph.
// HalfPointSize is zero when the run declares no explicit size.
type Run struct {
	Text          string
	Bold          bool
	Italic        bool
	UnderlineCode byte
	HalfPointSize int
	FontName      string
}

// Paragraph is one paragraph of the main document text. Start and End
// are character offsets into the text stream; End includes the
// terminating mark. CellEnd and RowEnd record the table structure
// marks; Runs exclude the mark character.
type Paragraph struct {
	Start, End    int
	Justification byte
	InTable       bool
	CellEnd       bool
	RowEnd        bool
	Runs          []Run
}

// Text concatenates the paragraph's run text.
func (p Paragraph) Text() string {
	var out string
	for _, r := range p.Runs {
		out += r.Text
	}
	return out
}

// Cell is a table cell: a nested ordered sequence of paragraphs.
type Cell struct {
	Paragraphs []Paragraph
}

// Row is an ordered sequence of cells.
type Row struct {
	Cells []Cell
}

// Table is a byte-offset range of the paragraph stream that renders as
// a table. ParagraphCount counts every paragraph the range spans,
// structure marks included, so a sequential walk can skip the whole
// range at once.
type Table struct {
	Start, End     int
	ParagraphCount int
	Rows           []Row
}

// Document is the decoded legacy document: the full paragraph sequence
// and, independently, the table ranges within it.
type Document struct {
	Paragraphs []Paragraph
	Tables     []Table
}

const (
	paragraphMark = 0x0D
	cellMark      = 0x07
)

// Open reads the compound-file container at path and decodes the
// document within.
func Open(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open legacy document: %w", err)
	}
	defer f.Close()

	cfb, err := mscfb.New(f)
	if err != nil {
		return nil, fmt.Errorf("read compound file %s: %w", path, err)
	}
	streams := make(map[string][]byte)
	for entry, err := cfb.Next(); err == nil; entry, err = cfb.Next() {
		switch entry.Name {
		case "WordDocument", "0Table", "1Table":
			data, readErr := io.ReadAll(cfb)
			if readErr != nil {
				return nil, fmt.Errorf("read stream %s: %w", entry.Name, readErr)
			}
			streams[entry.Name] = data
		}
	}
	word, ok := streams["WordDocument"]
	if !ok {
		return nil, errors.New("compound file has no WordDocument stream")
	}
	h, err := parseFileHeader(word)
	if err != nil {
		return nil, err
	}
	table, ok := streams[h.tableStreamName]
	if !ok {
		return nil, fmt.Errorf("compound file has no %s stream", h.tableStreamName)
	}
	return Parse(word, table)
}

// Parse decodes a document from its two streams.
func Parse(word, table []byte) (*Document, error) {
	h, err := parseFileHeader(word)
	if err != nil {
		return nil, err
	}
	if h.encrypted {
		return nil, errors.New("encrypted documents are not supported")
	}

	clx, err := streamSlice(table, h.fcClx, h.lcbClx, "piece table")
	if err != nil {
		return nil, err
	}
	pt, err := parsePieceTable(clx)
	if err != nil {
		return nil, err
	}

	chpxData, err := streamSlice(table, h.fcPlcfBteChpx, h.lcbPlcfBteChpx, "character bin table")
	if err != nil {
		return nil, err
	}
	chpxBT, err := parseBinTable(chpxData)
	if err != nil {
		return nil, err
	}

	papxData, err := streamSlice(table, h.fcPlcfBtePapx, h.lcbPlcfBtePapx, "paragraph bin table")
	if err != nil {
		return nil, err
	}
	papxBT, err := parseBinTable(papxData)
	if err != nil {
		return nil, err
	}

	var fonts []string
	if h.lcbSttbfFfn > 0 {
		if ffn, err := streamSlice(table, h.fcSttbfFfn, h.lcbSttbfFfn, "font table"); err == nil {
			fonts = parseFontTable(ffn)
		}
	}

	units, err := pt.units(word, h.ccpText)
	if err != nil {
		return nil, err
	}

	r := &reader{word: word, pt: pt, chpx: chpxBT, papx: papxBT, fonts: fonts, units: units}
	doc := &Document{}
	start := 0
	for cp := 0; cp < len(units); cp++ {
		if units[cp] == paragraphMark || units[cp] == cellMark {
			p, err := r.paragraph(start, cp+1, units[cp] == cellMark)
			if err != nil {
				return nil, err
			}
			doc.Paragraphs = append(doc.Paragraphs, p)
			start = cp + 1
		}
	}
	if start < len(units) {
		// Malformed trailer without a mark; keep the text anyway.
		p, err := r.paragraph(start, len(units), false)
		if err != nil {
			return nil, err
		}
		doc.Paragraphs = append(doc.Paragraphs, p)
	}
	doc.Tables = buildTables(doc.Paragraphs)
	return doc, nil
}

// reader bundles the lookup state shared by paragraph decoding.
type reader struct {
	word  []byte
	pt    *pieceTable
	chpx  *binTable
	papx  *binTable
	fonts []string
	units []uint16
}

// paragraph decodes [start, end) where end-1 is the terminating mark
// (or end of text for a malformed trailer).
func (r *reader) paragraph(start, end int, endedByCellMark bool) (Paragraph, error) {
	p := Paragraph{Start: start, End: end}

	markCP := end - 1
	if fc, ok := r.pt.fcOf(markCP); ok {
		pp := paraProps{}
		if page, err := r.papx.pageFor(r.word, fc); err == nil {
			if entries, err := parsePapxPage(page); err == nil {
				if e, ok := lookup(entries, fc); ok {
					applyPapx(e.grpprl, &pp)
				}
			}
		}
		p.Justification = pp.justification
		p.InTable = pp.inTable
		p.RowEnd = pp.rowEnd && endedByCellMark
	}
	p.CellEnd = endedByCellMark && !p.RowEnd

	// Character runs cover the text before the mark.
	textEnd := end - 1
	if textEnd < start {
		textEnd = start
	}
	cp := start
	for cp < textEnd {
		runEnd, props, err := r.runAt(cp, textEnd)
		if err != nil {
			return Paragraph{}, err
		}
		p.Runs = append(p.Runs, Run{
			Text:          unitsToString(r.units[cp:runEnd]),
			Bold:          props.bold,
			Italic:        props.italic,
			UnderlineCode: props.underline,
			HalfPointSize: props.halfPoints,
			FontName:      fontName(r.fonts, props.fontIndex),
		})
		cp = runEnd
	}
	return p, nil
}

// runAt resolves the character properties at cp and the position where
// they stop applying, capped at limit and at the piece boundary.
func (r *reader) runAt(cp, limit int) (int, charProps, error) {
	props := defaultCharProps()
	pc, ok := r.pt.pieceFor(cp)
	if !ok {
		return 0, props, fmt.Errorf("character position %d outside piece table", cp)
	}
	fc, _ := r.pt.fcOf(cp)

	end := pc.cpEnd
	if page, err := r.chpx.pageFor(r.word, fc); err == nil {
		if entries, err := parseChpxPage(page); err == nil {
			if e, ok := lookup(entries, fc); ok {
				applyChpx(e.grpprl, &props)
				if cpEnd := cpAtFC(pc, e.end); cpEnd > cp && cpEnd < end {
					end = cpEnd
				}
			}
		}
	}
	if end > limit {
		end = limit
	}
	if end <= cp {
		end = cp + 1
	}
	return end, props, nil
}
