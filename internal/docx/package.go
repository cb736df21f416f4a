// Package docx models the modern zip-packaged XML document format: the
// package itself (an ordered set of zip parts), its style definitions
// part, and a builder for emitting fresh packages from a content tree.
//
// A Package is the unit of load/mutate/save. Style payloads are carried
// as opaque XML and copied by value, so transferring styles between two
// open packages never aliases mutable state.
package docx

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/starford/raido/internal/apperr"
)

const (
	contentTypesPart = "[Content_Types].xml"
	rootRelsPart     = "_rels/.rels"
	documentPart     = "word/document.xml"
	documentRelsPart = "word/_rels/document.xml.rels"
	stylesPart       = "word/styles.xml"
	numberingPart    = "word/numbering.xml"

	stylesContentType    = "application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"
	numberingContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.numbering+xml"
	stylesRelType        = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles"
	numberingRelType     = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/numbering"
)

// Package is an in-memory modern-format document.
type Package struct {
	names  []string
	parts  map[string][]byte
	styles *StyleCollection
}

// Open loads every part of the package at path into memory.
func Open(path string) (*Package, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open package %s: %w", path, err)
	}
	defer r.Close()

	p := &Package{parts: make(map[string][]byte)}
	for _, f := range r.File {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open part %s: %w", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read part %s: %w", f.Name, err)
		}
		p.SetPart(f.Name, data)
	}
	return p, nil
}

// Part returns the raw bytes of a named part.
func (p *Package) Part(name string) ([]byte, bool) {
	data, ok := p.parts[name]
	return data, ok
}

// SetPart replaces the named part, appending it to the part order when new.
func (p *Package) SetPart(name string, data []byte) {
	if _, ok := p.parts[name]; !ok {
		p.names = append(p.names, name)
	}
	p.parts[name] = data
}

// Save serializes the package to path, creating or truncating the file.
// A loaded style collection is flushed back into its part first.
func (p *Package) Save(path string) error {
	if p.styles != nil {
		p.SetPart(stylesPart, p.styles.Marshal())
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save package: %w", err)
	}
	zw := zip.NewWriter(f)
	for _, name := range p.names {
		w, err := zw.Create(name)
		if err == nil {
			_, err = w.Write(p.parts[name])
		}
		if err != nil {
			zw.Close()
			f.Close()
			return fmt.Errorf("save part %s: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		f.Close()
		return fmt.Errorf("save package: %w", err)
	}
	return f.Close()
}

// HasStyles reports whether the package carries a style definitions part.
func (p *Package) HasStyles() bool {
	_, ok := p.parts[stylesPart]
	return ok || p.styles != nil
}

// Styles parses and returns the style collection. The collection is
// cached; mutations are flushed on Save.
func (p *Package) Styles() (*StyleCollection, error) {
	if p.styles != nil {
		return p.styles, nil
	}
	data, ok := p.parts[stylesPart]
	if !ok {
		return nil, apperr.ErrMissingStyles
	}
	sc, err := ParseStyles(data)
	if err != nil {
		return nil, err
	}
	p.styles = sc
	return sc, nil
}

// EnsureStyles returns the style collection, creating an empty style
// definitions part (with its relationship and content type) when the
// package has none.
func (p *Package) EnsureStyles() (*StyleCollection, error) {
	if p.HasStyles() {
		return p.Styles()
	}
	p.styles = NewStyleCollection()
	if err := p.ensureOverride("/"+stylesPart, stylesContentType); err != nil {
		return nil, err
	}
	if err := p.ensureRelationship(stylesRelType, "styles.xml"); err != nil {
		return nil, err
	}
	return p.styles, nil
}

// Numbering returns the raw numbering definitions part, if present.
func (p *Package) Numbering() ([]byte, bool) {
	data, ok := p.parts[numberingPart]
	return data, ok
}

// SetNumbering overwrites (or creates) the numbering definitions part,
// wiring the relationship and content-type entries that make it
// reachable from the main document.
func (p *Package) SetNumbering(data []byte) error {
	p.SetPart(numberingPart, append([]byte(nil), data...))
	if err := p.ensureOverride("/"+numberingPart, numberingContentType); err != nil {
		return err
	}
	return p.ensureRelationship(numberingRelType, "numbering.xml")
}

// ensureOverride adds an Override entry to [Content_Types].xml unless
// the part is already declared.
func (p *Package) ensureOverride(partName, contentType string) error {
	data, ok := p.parts[contentTypesPart]
	if !ok {
		return fmt.Errorf("package has no %s part", contentTypesPart)
	}
	doc, err := xmlquery.Parse(strings.NewReader(string(data)))
	if err != nil {
		return fmt.Errorf("parse content types: %w", err)
	}
	for _, n := range xmlquery.Find(doc, "//*[local-name()='Override']") {
		if attrValue(n, "PartName") == partName {
			return nil
		}
	}
	entry := fmt.Sprintf(`<Override PartName="%s" ContentType="%s"/>`, partName, contentType)
	patched, err := spliceBeforeClose(string(data), "Types", entry)
	if err != nil {
		return err
	}
	p.SetPart(contentTypesPart, []byte(patched))
	return nil
}

var relIDPattern = regexp.MustCompile(`^rId(\d+)$`)

// ensureRelationship adds a document relationship of the given type
// unless one already exists. Target is relative to word/.
func (p *Package) ensureRelationship(relType, target string) error {
	data, ok := p.parts[documentRelsPart]
	if !ok {
		data = []byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n" +
			`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`)
	}
	doc, err := xmlquery.Parse(strings.NewReader(string(data)))
	if err != nil {
		return fmt.Errorf("parse document rels: %w", err)
	}
	maxID := 0
	for _, n := range xmlquery.Find(doc, "//*[local-name()='Relationship']") {
		if attrValue(n, "Type") == relType {
			return nil
		}
		if m := relIDPattern.FindStringSubmatch(attrValue(n, "Id")); m != nil {
			if id, _ := strconv.Atoi(m[1]); id > maxID {
				maxID = id
			}
		}
	}
	entry := fmt.Sprintf(`<Relationship Id="rId%d" Type="%s" Target="%s"/>`, maxID+1, relType, target)
	patched, err := spliceBeforeClose(string(data), "Relationships", entry)
	if err != nil {
		return err
	}
	p.SetPart(documentRelsPart, []byte(patched))
	return nil
}

// spliceBeforeClose inserts fragment immediately before the closing tag
// of the named root element, handling the self-closed empty form.
func spliceBeforeClose(doc, root, fragment string) (string, error) {
	if i := strings.LastIndex(doc, "</"+root+">"); i >= 0 {
		return doc[:i] + fragment + doc[i:], nil
	}
	// Empty root serialized as <Root .../>.
	if i := strings.LastIndex(doc, "/>"); i >= 0 {
		return doc[:i] + ">" + fragment + "</" + root + ">" + doc[i+2:], nil
	}
	return "", fmt.Errorf("no closing tag for %s", root)
}

func attrValue(n *xmlquery.Node, local string) string {
	for _, a := range n.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}
