// Package normalize converts a decoded legacy document into a fresh
// modern package: paragraphs and tables are rebuilt as body content,
// carrying over text, basic run formatting and table shape. Styling
// beyond that is dropped; the result is a clean baseline for style
// migration.
package normalize

import (
	"strings"

	"github.com/starford/raido/internal/docx"
	"github.com/starford/raido/internal/legacy"
)

// File reads the legacy document at path and converts it.
func File(path string) (*docx.Package, error) {
	doc, err := legacy.Open(path)
	if err != nil {
		return nil, err
	}
	return Convert(doc), nil
}

// Convert builds a modern package from a decoded legacy document.
func Convert(doc *legacy.Document) *docx.Package {
	return Tree(doc).Package()
}

// Tree walks the legacy paragraph sequence in order, emitting a table
// wherever a paragraph falls inside a table range and a plain
// paragraph elsewhere. Table ranges are skipped in the paragraph walk
// so their content appears once, inside the table. A paragraph that
// overlaps a table boundary without being contained stays a plain
// paragraph.
func Tree(doc *legacy.Document) *docx.Builder {
	b := docx.NewBuilder()
	ti := 0
	i := 0
	for i < len(doc.Paragraphs) {
		if ti < len(doc.Tables) &&
			doc.Paragraphs[i].Start >= doc.Tables[ti].Start &&
			doc.Paragraphs[i].End <= doc.Tables[ti].End {
			fillTable(b.AddTable(), doc.Tables[ti])
			i += doc.Tables[ti].ParagraphCount
			ti++
			continue
		}
		fillParagraph(b.AddParagraph(), doc.Paragraphs[i])
		i++
	}
	if len(b.Blocks()) == 0 {
		b.AddParagraph()
	}
	return b
}

func fillParagraph(dst *docx.Paragraph, src legacy.Paragraph) {
	dst.Alignment = alignmentOf(src.Justification)
	for _, r := range src.Runs {
		text := cleanText(r.Text)
		if text == "" {
			continue
		}
		dst.AddRun(docx.Run{
			Text:      text,
			Bold:      r.Bold,
			Italic:    r.Italic,
			Underline: r.UnderlineCode != 0,
			SizePt:    r.HalfPointSize / 2,
			Font:      r.FontName,
		})
	}
}

// fillTable reconciles the builder's default 1x1 shape with the source
// table: existing rows and cells are reused, missing ones added and
// extras trimmed.
func fillTable(dst *docx.Table, src legacy.Table) {
	for i, row := range src.Rows {
		var dr *docx.Row
		if i < dst.NumRows() {
			dr = dst.Row(i)
		} else {
			dr = dst.AddRow()
		}
		for dr.NumCells() < len(row.Cells) {
			dr.AddCell()
		}
		dr.TrimCells(len(row.Cells))
		for j, cell := range row.Cells {
			dc := dr.Cell(j)
			dc.ClearParagraphs()
			for _, p := range cell.Paragraphs {
				fillParagraph(dc.AddParagraph(), p)
			}
		}
	}
	for dst.NumRows() > len(src.Rows) {
		dst.RemoveRow(dst.NumRows() - 1)
	}
}

func alignmentOf(justification byte) docx.Alignment {
	switch justification {
	case 1:
		return docx.AlignCenter
	case 2:
		return docx.AlignRight
	case 3:
		return docx.AlignJustify
	default:
		return docx.AlignLeft
	}
}

// cleanText strips the control marks the legacy text stream embeds in
// run text.
func cleanText(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\r' || r == 0x07 {
			return -1
		}
		return r
	}, s)
}
