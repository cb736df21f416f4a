package styleservice

import (
	"fmt"
	"strings"

	"github.com/starford/raido/internal/apperr"
)

// Selection is a parsed style-key list. All is set when the list
// contains the wildcard entry "*".
type Selection struct {
	Keys []string
	All  bool
}

// ParseSelection splits a comma-separated key list, trimming entries
// and dropping empty ones. A selection with no usable entries is
// rejected.
func ParseSelection(raw string) (Selection, error) {
	var sel Selection
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if part == "*" {
			sel.All = true
			continue
		}
		sel.Keys = append(sel.Keys, part)
	}
	if !sel.All && len(sel.Keys) == 0 {
		return Selection{}, fmt.Errorf("no style keys given: %w", apperr.ErrInvalidSelection)
	}
	return sel, nil
}

// NewSelection wraps an already-split key list, applying the same
// trimming and wildcard rules as ParseSelection.
func NewSelection(keys []string) (Selection, error) {
	return ParseSelection(strings.Join(keys, ","))
}
