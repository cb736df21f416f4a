// Package stylegraph implements the style operations of the
// migration service: lookup by id or name, dependency-closure
// collection along basedOn edges, selective and full transfer between
// packages, removal, listing and CSV export.
package stylegraph

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/docx"
)

// StyleInfo is the listing view of one style definition.
type StyleInfo struct {
	ID   string `json:"styleId"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// Find resolves a key against a collection: exact style-id match
// first, then case-insensitive display-name match. The key is trimmed
// before matching.
func Find(c *docx.StyleCollection, key string) (docx.Style, bool) {
	key = strings.TrimSpace(key)
	if s, ok := c.Get(key); ok {
		return s, true
	}
	lower := strings.ToLower(key)
	for _, s := range c.All() {
		if strings.ToLower(s.Name) == lower {
			return s, true
		}
	}
	return docx.Style{}, false
}

// Collect returns root and its basedOn ancestors in dependency order,
// root first. A visited set guards against definition cycles; a parent
// id with no definition ends the chain.
func Collect(c *docx.StyleCollection, root docx.Style) []docx.Style {
	visited := map[string]struct{}{}
	var out []docx.Style
	cur, ok := root, true
	for ok {
		if _, seen := visited[cur.ID]; seen {
			break
		}
		visited[cur.ID] = struct{}{}
		out = append(out, cur.Clone())
		if cur.BasedOn == "" {
			break
		}
		cur, ok = c.Get(cur.BasedOn)
	}
	return out
}

// Options control what a transfer carries besides the named styles.
type Options struct {
	// IncludeDependencies walks each named style's basedOn chain and
	// copies the ancestors too.
	IncludeDependencies bool
	// CopyNumbering carries the source's numbering part into the
	// destination.
	CopyNumbering bool
}

// DefaultOptions enables both dependency collection and the numbering
// copy.
func DefaultOptions() Options {
	return Options{IncludeDependencies: true, CopyNumbering: true}
}

// Transfer copies the named styles from src into dst, with their
// basedOn closures when opts ask for them. Existing definitions with
// the same id are replaced; everything else in dst is left alone.
// Document defaults and latent style hints defined by the source
// replace the destination's, as does the numbering part when opts
// carry it. Returns the number of definitions written.
func Transfer(src, dst *docx.Package, keys []string, opts Options) (int, error) {
	from, err := src.Styles()
	if err != nil {
		return 0, err
	}
	to, err := dst.EnsureStyles()
	if err != nil {
		return 0, err
	}
	var batch []docx.Style
	staged := map[string]struct{}{}
	for _, key := range keys {
		root, ok := Find(from, key)
		if !ok {
			return 0, fmt.Errorf("style %q: %w", strings.TrimSpace(key), apperr.ErrStyleNotFound)
		}
		chain := []docx.Style{root.Clone()}
		if opts.IncludeDependencies {
			chain = Collect(from, root)
		}
		for _, s := range chain {
			if _, dup := staged[s.ID]; dup {
				continue
			}
			staged[s.ID] = struct{}{}
			batch = append(batch, s)
		}
	}
	for _, s := range batch {
		to.Append(s)
	}
	syncDefaults(from, to)
	if opts.CopyNumbering {
		if err := transferNumbering(src, dst); err != nil {
			return 0, err
		}
	}
	return len(batch), nil
}

// TransferAll replaces dst's whole style catalog with src's: every
// definition, the document defaults, the latent style hints and, when
// copyNumbering is set, the numbering part. Returns the number of
// definitions written.
func TransferAll(src, dst *docx.Package, copyNumbering bool) (int, error) {
	from, err := src.Styles()
	if err != nil {
		return 0, err
	}
	to, err := dst.EnsureStyles()
	if err != nil {
		return 0, err
	}
	to.Clear()
	for _, s := range from.All() {
		to.Append(s.Clone())
	}
	syncDefaults(from, to)
	if copyNumbering {
		if err := transferNumbering(src, dst); err != nil {
			return 0, err
		}
	}
	return from.Len(), nil
}

// syncDefaults replaces the destination's document defaults and latent
// style hints with the source's, where the source defines them.
func syncDefaults(from, to *docx.StyleCollection) {
	if from.DocDefaults() != "" {
		to.SetDocDefaults(from.DocDefaults())
	}
	if from.LatentStyles() != "" {
		to.SetLatentStyles(from.LatentStyles())
	}
}

// transferNumbering replaces the destination's numbering part with the
// source's, when the source has one.
func transferNumbering(src, dst *docx.Package) error {
	data, ok := src.Numbering()
	if !ok {
		return nil
	}
	return dst.SetNumbering(data)
}

// Remove deletes every style whose id or name matches a key
// case-insensitively. Keys are trimmed; empty keys never match.
// Returns the number of definitions removed.
func Remove(c *docx.StyleCollection, keys []string) int {
	wanted := map[string]struct{}{}
	for _, key := range keys {
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" {
			continue
		}
		wanted[key] = struct{}{}
	}
	if len(wanted) == 0 {
		return 0
	}
	return c.RemoveMatching(func(s docx.Style) bool {
		if _, ok := wanted[strings.ToLower(s.ID)]; ok {
			return true
		}
		_, ok := wanted[strings.ToLower(s.Name)]
		return ok
	})
}

// List returns the catalog sorted by style id, case-insensitively.
// Styles without a display name list with an empty name.
func List(c *docx.StyleCollection) []StyleInfo {
	infos := make([]StyleInfo, 0, c.Len())
	for _, s := range c.All() {
		infos = append(infos, StyleInfo{ID: s.ID, Name: s.Name, Type: s.Type})
	}
	sort.SliceStable(infos, func(i, j int) bool {
		return strings.ToLower(infos[i].ID) < strings.ToLower(infos[j].ID)
	})
	return infos
}

// ExportCSV writes the sorted catalog as RFC 4180 rows with a header
// line.
func ExportCSV(w io.Writer, c *docx.StyleCollection) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"styleId", "name", "type"}); err != nil {
		return err
	}
	for _, info := range List(c) {
		if err := cw.Write([]string{info.ID, info.Name, info.Type}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
