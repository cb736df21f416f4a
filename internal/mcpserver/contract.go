package mcpserver

// SelectionContract describes how style selections are written for
// the migrate and clean tools.
const SelectionContract = `# Raido Style Selection Contract

Style operations take a comma-separated selection of style keys.

## Keys

- A key is either a style id (` + "`" + `Heading1` + "`" + `) or a style display name
  (` + "`" + `heading 1` + "`" + `).
- Migration resolves a key against ids first (exact match), then
  against names case-insensitively.
- Cleaning matches both ids and names case-insensitively.
- Whitespace around keys is ignored; empty entries are dropped.
- A selection with no usable keys is rejected.

## Wildcard

- ` + "`" + `*` + "`" + ` selects every style in the source document.
- The wildcard is valid for migration (it replaces the target's whole
  catalog, including document defaults and numbering).
- The wildcard is NOT valid for cleaning: a clean must name the styles
  it deletes.

## Dependencies

Migrating a style brings its ` + "`" + `basedOn` + "`" + ` ancestors with it by default, so
the copied definitions stay resolvable in the target; you never need
to list ancestors explicitly. Pass ` + "`" + `includeDependencies: false` + "`" + ` to copy
only the named styles, and ` + "`" + `copyNumbering: false` + "`" + ` to leave the target's
numbering part alone.

## Documents

- Inputs may be modern packages (.docx) or legacy binary documents (.doc).
- Legacy documents are converted before styling; the result of an
  operation is always a modern package.
`
