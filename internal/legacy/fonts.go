package legacy

// parseFontTable decodes the font name table into an indexable list.
// Each entry is a fixed descriptor followed by a NUL-terminated
// UTF-16LE face name. A malformed table yields the names parsed so
// far; font resolution degrades to "no name".
func parseFontTable(data []byte) []string {
	if len(data) < 4 {
		return nil
	}
	pos := 0
	if le.Uint16(data) == 0xFFFF {
		pos += 2
	}
	count := int(le.Uint16(data[pos:]))
	cbExtra := int(le.Uint16(data[pos+2:]))
	pos += 4

	const nameOffset = 39

	names := make([]string, 0, count)
	for i := 0; i < count; i++ {
		if pos >= len(data) {
			break
		}
		size := int(data[pos])
		pos++
		if pos+size > len(data) {
			break
		}
		entry := data[pos : pos+size]
		pos += size + cbExtra

		var units []uint16
		for off := nameOffset; off+2 <= len(entry); off += 2 {
			u := le.Uint16(entry[off:])
			if u == 0 {
				break
			}
			units = append(units, u)
		}
		names = append(names, unitsToString(units))
	}
	return names
}

func fontName(names []string, index int) string {
	if index < 0 || index >= len(names) {
		return ""
	}
	return names[index]
}
