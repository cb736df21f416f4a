package normalize

import (
	"strings"
	"testing"

	"github.com/starford/raido/internal/docx"
	"github.com/starford/raido/internal/legacy"
)

func para(text string, just byte, runs ...legacy.Run) legacy.Paragraph {
	if runs == nil && text != "" {
		runs = []legacy.Run{{Text: text}}
	}
	return legacy.Paragraph{Justification: just, Runs: runs}
}

func TestTreeParagraphs(t *testing.T) {
	doc := &legacy.Document{
		Paragraphs: []legacy.Paragraph{
			para("First\r", 0),
			para("Centered", 1),
			para("Justified", 3),
		},
	}
	blocks := Tree(doc).Blocks()
	if len(blocks) != 3 {
		t.Fatalf("blocks = %d, want 3", len(blocks))
	}
	first, ok := blocks[0].(*docx.Paragraph)
	if !ok {
		t.Fatalf("block 0 is %T, want paragraph", blocks[0])
	}
	if len(first.Runs) != 1 || first.Runs[0].Text != "First" {
		t.Errorf("paragraph mark not stripped from run text: %+v", first.Runs)
	}
	if first.Alignment != docx.AlignLeft {
		t.Errorf("alignment = %q, want left", first.Alignment)
	}
	if blocks[1].(*docx.Paragraph).Alignment != docx.AlignCenter {
		t.Errorf("alignment = %q, want center", blocks[1].(*docx.Paragraph).Alignment)
	}
	if blocks[2].(*docx.Paragraph).Alignment != docx.AlignJustify {
		t.Errorf("alignment = %q, want both", blocks[2].(*docx.Paragraph).Alignment)
	}
}

func TestTreeRunFormatting(t *testing.T) {
	doc := &legacy.Document{
		Paragraphs: []legacy.Paragraph{
			{Runs: []legacy.Run{
				{Text: "loud", Bold: true, UnderlineCode: 4, HalfPointSize: 28, FontName: "Arial"},
				{Text: "\r\x07"}, // empty after cleaning, dropped
				{Text: "soft", Italic: true},
			}},
		},
	}
	blocks := Tree(doc).Blocks()
	p := blocks[0].(*docx.Paragraph)
	if len(p.Runs) != 2 {
		t.Fatalf("runs = %d, want 2 (empty run dropped)", len(p.Runs))
	}
	loud := p.Runs[0]
	if !loud.Bold || !loud.Underline || loud.SizePt != 14 || loud.Font != "Arial" {
		t.Errorf("run = %+v, want bold underlined 14pt Arial", loud)
	}
	if !p.Runs[1].Italic {
		t.Errorf("run = %+v, want italic", p.Runs[1])
	}
}

func cellOf(texts ...string) legacy.Cell {
	var c legacy.Cell
	for _, s := range texts {
		c.Paragraphs = append(c.Paragraphs, para(s, 0))
	}
	return c
}

func TestTreeTablePlacement(t *testing.T) {
	doc := &legacy.Document{
		Paragraphs: []legacy.Paragraph{
			{Start: 0, End: 7, Runs: []legacy.Run{{Text: "Before"}}},
			{Start: 7, End: 9, InTable: true, CellEnd: true, Runs: []legacy.Run{{Text: "A"}}},
			{Start: 9, End: 11, InTable: true, CellEnd: true, Runs: []legacy.Run{{Text: "B"}}},
			{Start: 11, End: 12, InTable: true, RowEnd: true},
			{Start: 12, End: 17, Runs: []legacy.Run{{Text: "After"}}},
		},
		Tables: []legacy.Table{{
			Start:          7,
			End:            12,
			ParagraphCount: 3,
			Rows:           []legacy.Row{{Cells: []legacy.Cell{cellOf("A"), cellOf("B")}}},
		}},
	}
	blocks := Tree(doc).Blocks()
	if len(blocks) != 3 {
		t.Fatalf("blocks = %d, want paragraph/table/paragraph", len(blocks))
	}
	if _, ok := blocks[0].(*docx.Paragraph); !ok {
		t.Errorf("block 0 is %T, want paragraph", blocks[0])
	}
	tbl, ok := blocks[1].(*docx.Table)
	if !ok {
		t.Fatalf("block 1 is %T, want table", blocks[1])
	}
	if tbl.NumRows() != 1 || tbl.Row(0).NumCells() != 2 {
		t.Fatalf("table shape %dx%d, want 1x2", tbl.NumRows(), tbl.Row(0).NumCells())
	}
	if got := tbl.Row(0).Cell(1).Paragraphs[0].Runs[0].Text; got != "B" {
		t.Errorf("cell text = %q, want B", got)
	}
	last := blocks[2].(*docx.Paragraph)
	if last.Runs[0].Text != "After" {
		t.Errorf("trailing paragraph = %q, want After", last.Runs[0].Text)
	}
}

func TestTreeTableShapeReconciled(t *testing.T) {
	doc := &legacy.Document{
		Paragraphs: []legacy.Paragraph{
			{Start: 0, End: 1, InTable: true, RowEnd: true},
		},
		Tables: []legacy.Table{{
			Start:          0,
			End:            1,
			ParagraphCount: 1,
			Rows: []legacy.Row{
				{Cells: []legacy.Cell{cellOf("a"), cellOf("b"), cellOf("c")}},
				{Cells: []legacy.Cell{cellOf("d"), cellOf("e"), cellOf("f")}},
			},
		}},
	}
	tbl := Tree(doc).Blocks()[0].(*docx.Table)
	if tbl.NumRows() != 2 {
		t.Fatalf("rows = %d, want 2", tbl.NumRows())
	}
	for i := 0; i < 2; i++ {
		if tbl.Row(i).NumCells() != 3 {
			t.Errorf("row %d cells = %d, want 3", i, tbl.Row(i).NumCells())
		}
	}
}

func TestTreeZeroRowTableHasNoRows(t *testing.T) {
	doc := &legacy.Document{
		Paragraphs: []legacy.Paragraph{
			{Start: 0, End: 1, InTable: true},
		},
		Tables: []legacy.Table{{Start: 0, End: 1, ParagraphCount: 1}},
	}
	tbl := Tree(doc).Blocks()[0].(*docx.Table)
	if tbl.NumRows() != 0 {
		t.Errorf("rows = %d, want none for a rowless source table", tbl.NumRows())
	}
}

func TestTreeParagraphPastTableEndStaysParagraph(t *testing.T) {
	doc := &legacy.Document{
		Paragraphs: []legacy.Paragraph{
			{Start: 0, End: 9, Runs: []legacy.Run{{Text: "Spill"}}},
			{Start: 9, End: 14, Runs: []legacy.Run{{Text: "After"}}},
		},
		Tables: []legacy.Table{{
			Start:          0,
			End:            5,
			ParagraphCount: 1,
			Rows:           []legacy.Row{{Cells: []legacy.Cell{cellOf("x")}}},
		}},
	}
	blocks := Tree(doc).Blocks()
	if len(blocks) != 2 {
		t.Fatalf("blocks = %d, want 2", len(blocks))
	}
	p, ok := blocks[0].(*docx.Paragraph)
	if !ok {
		t.Fatalf("block 0 is %T, want paragraph", blocks[0])
	}
	if p.Runs[0].Text != "Spill" {
		t.Errorf("paragraph text = %q, want Spill", p.Runs[0].Text)
	}
}

func TestTreeEmptyDocument(t *testing.T) {
	blocks := Tree(&legacy.Document{}).Blocks()
	if len(blocks) != 1 {
		t.Fatalf("blocks = %d, want one placeholder paragraph", len(blocks))
	}
}

func TestConvertProducesOpenablePackage(t *testing.T) {
	doc := &legacy.Document{
		Paragraphs: []legacy.Paragraph{
			{Justification: 1, Runs: []legacy.Run{{Text: "Title", Bold: true, HalfPointSize: 32}}},
		},
	}
	pkg := Convert(doc)
	data, ok := pkg.Part("word/document.xml")
	if !ok {
		t.Fatal("converted package has no document part")
	}
	body := string(data)
	for _, want := range []string{
		`<w:jc w:val="center"/>`,
		`<w:b/>`,
		`<w:sz w:val="32"/>`,
		`<w:t xml:space="preserve">Title</w:t>`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("document.xml missing %s", want)
		}
	}
	if !pkg.HasStyles() {
		t.Error("converted package has no styles part")
	}
}
