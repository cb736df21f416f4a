package docx

import (
	"strconv"
	"strings"
)

// Alignment is a paragraph justification in the modern format.
type Alignment string

const (
	AlignLeft    Alignment = "left"
	AlignCenter  Alignment = "center"
	AlignRight   Alignment = "right"
	AlignJustify Alignment = "both"
)

// Run is a span of identically formatted text. SizePt is whole points;
// zero means "no explicit size".
type Run struct {
	Text      string
	Bold      bool
	Italic    bool
	Underline bool
	SizePt    int
	Font      string
}

// Paragraph is an ordered sequence of runs with one justification.
type Paragraph struct {
	Alignment Alignment
	Runs      []Run
}

// AddRun appends a run to the paragraph.
func (p *Paragraph) AddRun(r Run) { p.Runs = append(p.Runs, r) }

// Cell holds a nested ordered sequence of paragraphs.
type Cell struct {
	Paragraphs []*Paragraph
}

// AddParagraph appends an empty paragraph to the cell.
func (c *Cell) AddParagraph() *Paragraph {
	p := &Paragraph{Alignment: AlignLeft}
	c.Paragraphs = append(c.Paragraphs, p)
	return p
}

// ClearParagraphs drops the cell's paragraphs (used to replace the
// default empty paragraph every fresh cell starts with).
func (c *Cell) ClearParagraphs() { c.Paragraphs = nil }

// Row is an ordered sequence of cells.
type Row struct {
	Cells []*Cell
}

// NumCells returns the number of cells in the row.
func (r *Row) NumCells() int { return len(r.Cells) }

// Cell returns the i-th cell.
func (r *Row) Cell(i int) *Cell { return r.Cells[i] }

// AddCell appends a fresh cell holding one empty paragraph.
func (r *Row) AddCell() *Cell {
	c := &Cell{}
	c.AddParagraph()
	r.Cells = append(r.Cells, c)
	return c
}

// TrimCells drops trailing cells until the row holds at most n.
func (r *Row) TrimCells(n int) {
	if n < 0 {
		n = 0
	}
	for len(r.Cells) > n {
		r.Cells = r.Cells[:len(r.Cells)-1]
	}
}

// Table is an ordered sequence of rows.
type Table struct {
	Rows []*Row
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int { return len(t.Rows) }

// Row returns the i-th row.
func (t *Table) Row(i int) *Row { return t.Rows[i] }

// RemoveRow deletes the i-th row.
func (t *Table) RemoveRow(i int) {
	t.Rows = append(t.Rows[:i], t.Rows[i+1:]...)
}

// AddRow appends a row shaped like the table's last row (same cell
// count, each cell holding one empty paragraph), or a single cell when
// the table is empty.
func (t *Table) AddRow() *Row {
	cells := 1
	if len(t.Rows) > 0 {
		cells = len(t.Rows[len(t.Rows)-1].Cells)
	}
	r := &Row{}
	for i := 0; i < cells; i++ {
		r.AddCell()
	}
	t.Rows = append(t.Rows, r)
	return r
}

// Block is a top-level node of the body content tree: a Paragraph or a
// Table.
type Block interface{ isBlock() }

func (*Paragraph) isBlock() {}
func (*Table) isBlock()     {}

// Builder accumulates a body content tree and emits it as a fresh
// modern-format package.
type Builder struct {
	blocks []Block
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder { return &Builder{} }

// Blocks returns the accumulated top-level nodes in order.
func (b *Builder) Blocks() []Block { return b.blocks }

// AddParagraph appends an empty paragraph to the body.
func (b *Builder) AddParagraph() *Paragraph {
	p := &Paragraph{Alignment: AlignLeft}
	b.blocks = append(b.blocks, p)
	return p
}

// AddTable appends a table with the default shape: one row holding one
// cell with one empty paragraph.
func (b *Builder) AddTable() *Table {
	t := &Table{}
	t.AddRow()
	b.blocks = append(b.blocks, t)
	return t
}

// Package serializes the content tree into a fresh package with the
// minimal part set: content types, relationships, document and styles.
func (b *Builder) Package() *Package {
	p := &Package{parts: make(map[string][]byte)}
	p.SetPart(contentTypesPart, []byte(freshContentTypes))
	p.SetPart(rootRelsPart, []byte(freshRootRels))
	p.SetPart(documentRelsPart, []byte(freshDocumentRels))
	p.SetPart(documentPart, b.marshalDocument())
	p.SetPart(stylesPart, []byte(freshStyles))
	return p
}

// Blank returns a fresh package holding a single empty paragraph. It
// serves as the built-in migration template when no source document is
// supplied.
func Blank() *Package {
	b := NewBuilder()
	b.AddParagraph()
	return b.Package()
}

func (b *Builder) marshalDocument() []byte {
	var w strings.Builder
	w.WriteString(xmlHeader)
	w.WriteString(`<w:document xmlns:w="` + wordNamespace + `"><w:body>`)
	for _, blk := range b.blocks {
		switch v := blk.(type) {
		case *Paragraph:
			writeParagraph(&w, v)
		case *Table:
			writeTable(&w, v)
		}
	}
	w.WriteString(`<w:sectPr><w:pgSz w:w="12240" w:h="15840"/></w:sectPr>`)
	w.WriteString(`</w:body></w:document>`)
	return []byte(w.String())
}

var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func writeParagraph(w *strings.Builder, p *Paragraph) {
	w.WriteString(`<w:p>`)
	if p.Alignment != "" {
		w.WriteString(`<w:pPr><w:jc w:val="` + string(p.Alignment) + `"/></w:pPr>`)
	}
	for _, r := range p.Runs {
		writeRun(w, r)
	}
	w.WriteString(`</w:p>`)
}

func writeRun(w *strings.Builder, r Run) {
	w.WriteString(`<w:r>`)
	var props strings.Builder
	if r.Font != "" {
		f := attrEscaper.Replace(r.Font)
		props.WriteString(`<w:rFonts w:ascii="` + f + `" w:hAnsi="` + f + `"/>`)
	}
	if r.Bold {
		props.WriteString(`<w:b/>`)
	}
	if r.Italic {
		props.WriteString(`<w:i/>`)
	}
	if r.SizePt > 0 {
		// w:sz counts half-points.
		hp := strconv.Itoa(r.SizePt * 2)
		props.WriteString(`<w:sz w:val="` + hp + `"/><w:szCs w:val="` + hp + `"/>`)
	}
	if r.Underline {
		props.WriteString(`<w:u w:val="single"/>`)
	}
	if props.Len() > 0 {
		w.WriteString(`<w:rPr>`)
		w.WriteString(props.String())
		w.WriteString(`</w:rPr>`)
	}
	w.WriteString(`<w:t xml:space="preserve">`)
	w.WriteString(textEscaper.Replace(r.Text))
	w.WriteString(`</w:t></w:r>`)
}

func writeTable(w *strings.Builder, t *Table) {
	w.WriteString(`<w:tbl><w:tblPr><w:tblW w:w="0" w:type="auto"/></w:tblPr>`)
	w.WriteString(`<w:tblGrid>`)
	if len(t.Rows) > 0 {
		for range t.Rows[0].Cells {
			w.WriteString(`<w:gridCol/>`)
		}
	}
	w.WriteString(`</w:tblGrid>`)
	for _, row := range t.Rows {
		w.WriteString(`<w:tr>`)
		for _, cell := range row.Cells {
			w.WriteString(`<w:tc><w:tcPr/>`)
			if len(cell.Paragraphs) == 0 {
				// A cell must hold at least one paragraph.
				w.WriteString(`<w:p/>`)
			}
			for _, p := range cell.Paragraphs {
				writeParagraph(w, p)
			}
			w.WriteString(`</w:tc>`)
		}
		w.WriteString(`</w:tr>`)
	}
	w.WriteString(`</w:tbl>`)
}

const freshContentTypes = xmlHeader +
	`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
	`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
	`<Default Extension="xml" ContentType="application/xml"/>` +
	`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
	`<Override PartName="/word/styles.xml" ContentType="` + stylesContentType + `"/>` +
	`</Types>`

const freshRootRels = xmlHeader +
	`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
	`</Relationships>`

const freshDocumentRels = xmlHeader +
	`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="` + stylesRelType + `" Target="styles.xml"/>` +
	`</Relationships>`

const freshStyles = xmlHeader +
	`<w:styles xmlns:w="` + wordNamespace + `">` +
	`<w:docDefaults><w:rPrDefault><w:rPr><w:rFonts w:ascii="Calibri" w:hAnsi="Calibri"/><w:sz w:val="22"/></w:rPr></w:rPrDefault><w:pPrDefault/></w:docDefaults>` +
	`<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/><w:qFormat/></w:style>` +
	`</w:styles>`
