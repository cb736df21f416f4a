package legacy

// buildTables scans the paragraph sequence for runs of table-flagged
// paragraphs and groups each run into a Table with its rows and cells.
func buildTables(paragraphs []Paragraph) []Table {
	var tables []Table
	i := 0
	for i < len(paragraphs) {
		if !inTable(paragraphs[i]) {
			i++
			continue
		}
		j := i
		for j < len(paragraphs) && inTable(paragraphs[j]) {
			j++
		}
		group := paragraphs[i:j]
		tables = append(tables, Table{
			Start:          group[0].Start,
			End:            group[len(group)-1].End,
			ParagraphCount: len(group),
			Rows:           buildRows(group),
		})
		i = j
	}
	return tables
}

func inTable(p Paragraph) bool {
	return p.InTable || p.RowEnd
}

// buildRows splits a table's paragraph range on the structure marks: a
// cell-end mark closes the current cell, a row-end mark closes the
// current row. Unterminated content is flushed as a final cell/row so
// truncated documents still round-trip.
func buildRows(group []Paragraph) []Row {
	var rows []Row
	var row Row
	var cell Cell
	for _, p := range group {
		switch {
		case p.RowEnd:
			if len(cell.Paragraphs) > 0 {
				row.Cells = append(row.Cells, cell)
				cell = Cell{}
			}
			rows = append(rows, row)
			row = Row{}
		case p.CellEnd:
			cell.Paragraphs = append(cell.Paragraphs, p)
			row.Cells = append(row.Cells, cell)
			cell = Cell{}
		default:
			cell.Paragraphs = append(cell.Paragraphs, p)
		}
	}
	if len(cell.Paragraphs) > 0 {
		row.Cells = append(row.Cells, cell)
	}
	if len(row.Cells) > 0 {
		rows = append(rows, row)
	}
	return rows
}
