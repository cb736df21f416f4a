package docx

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/antchfx/xmlquery"
)

const xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

// wordNamespace is the main wordprocessing namespace, used when a fresh
// style definitions part has to be created from scratch.
const wordNamespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

// Style is one style definition. ID, Name, Type and BasedOn are decoded
// for graph resolution; XML carries the whole serialized element as an
// opaque payload that is copied verbatim and never interpreted.
type Style struct {
	ID      string
	Name    string
	Type    string
	BasedOn string
	XML     string
}

// Clone returns an independent deep copy of the style. All fields are
// immutable strings, so a value copy is a deep copy.
func (s Style) Clone() Style { return s }

// StyleCollection is the ordered style definitions part of one package.
// Insertion order is preserved because it affects rendering priority;
// style ids stay unique across every mutation.
type StyleCollection struct {
	rootStart    string
	rootEnd      string
	docDefaults  string
	latentStyles string
	list         []Style
}

// NewStyleCollection returns an empty collection with a canonical root
// element, for packages that lack a style definitions part.
func NewStyleCollection() *StyleCollection {
	return &StyleCollection{
		rootStart: `<w:styles xmlns:w="` + wordNamespace + `">`,
		rootEnd:   `</w:styles>`,
	}
}

// ParseStyles decodes a style definitions part. Each style element is
// retained verbatim alongside its decoded identity fields; the document
// defaults and latent-style blocks are retained as opaque XML.
func ParseStyles(data []byte) (*StyleCollection, error) {
	doc, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse styles part: %w", err)
	}
	root := xmlquery.FindOne(doc, "//*[local-name()='styles']")
	if root == nil {
		return nil, fmt.Errorf("styles part has no styles root element")
	}

	sc := &StyleCollection{
		rootStart: elementStartTag(root),
		rootEnd:   "</" + elementName(root) + ">",
	}
	for child := root.FirstChild; child != nil; child = child.NextSibling {
		if child.Type != xmlquery.ElementNode {
			continue
		}
		switch child.Data {
		case "docDefaults":
			sc.docDefaults = child.OutputXML(true)
		case "latentStyles":
			sc.latentStyles = child.OutputXML(true)
		case "style":
			sc.list = append(sc.list, styleFromNode(child))
		}
	}
	return sc, nil
}

func styleFromNode(n *xmlquery.Node) Style {
	s := Style{
		ID:   attrValue(n, "styleId"),
		Type: attrValue(n, "type"),
		XML:  n.OutputXML(true),
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type != xmlquery.ElementNode {
			continue
		}
		switch child.Data {
		case "name":
			s.Name = attrValue(child, "val")
		case "basedOn":
			s.BasedOn = attrValue(child, "val")
		}
	}
	return s
}

// Len returns the number of styles in the collection.
func (c *StyleCollection) Len() int { return len(c.list) }

// All returns the styles in collection order. The returned slice is a
// copy; the styles themselves are value types.
func (c *StyleCollection) All() []Style {
	out := make([]Style, len(c.list))
	copy(out, c.list)
	return out
}

// Get returns the style with the exact id.
func (c *StyleCollection) Get(id string) (Style, bool) {
	for _, s := range c.list {
		if s.ID == id {
			return s, true
		}
	}
	return Style{}, false
}

// Append adds a style at the end of the collection. An existing entry
// with the same id is removed first so ids stay unique.
func (c *StyleCollection) Append(s Style) {
	c.RemoveIDs(map[string]struct{}{s.ID: {}})
	c.list = append(c.list, s)
}

// RemoveIDs removes every style whose exact id is in ids and returns
// the number removed.
func (c *StyleCollection) RemoveIDs(ids map[string]struct{}) int {
	return c.removeIf(func(s Style) bool {
		_, hit := ids[s.ID]
		return hit
	})
}

// RemoveMatching removes every style matched by the predicate and
// returns the number removed.
func (c *StyleCollection) RemoveMatching(match func(Style) bool) int {
	return c.removeIf(match)
}

func (c *StyleCollection) removeIf(match func(Style) bool) int {
	kept := c.list[:0]
	removed := 0
	for _, s := range c.list {
		if match(s) {
			removed++
			continue
		}
		kept = append(kept, s)
	}
	c.list = kept
	return removed
}

// Clear removes every style definition, keeping defaults and latent
// styles untouched.
func (c *StyleCollection) Clear() { c.list = c.list[:0] }

// DocDefaults returns the opaque document-defaults block ("" if absent).
func (c *StyleCollection) DocDefaults() string { return c.docDefaults }

// SetDocDefaults replaces the document-defaults block wholesale.
func (c *StyleCollection) SetDocDefaults(xml string) { c.docDefaults = xml }

// LatentStyles returns the opaque latent-styles block ("" if absent).
func (c *StyleCollection) LatentStyles() string { return c.latentStyles }

// SetLatentStyles replaces the latent-styles block wholesale.
func (c *StyleCollection) SetLatentStyles(xml string) { c.latentStyles = xml }

// Marshal serializes the collection back into a styles part.
func (c *StyleCollection) Marshal() []byte {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(c.rootStart)
	b.WriteString(c.docDefaults)
	b.WriteString(c.latentStyles)
	for _, s := range c.list {
		b.WriteString(s.XML)
	}
	b.WriteString(c.rootEnd)
	return []byte(b.String())
}

func elementName(n *xmlquery.Node) string {
	if n.Prefix != "" {
		return n.Prefix + ":" + n.Data
	}
	return n.Data
}

var attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&#34;")

// elementStartTag rebuilds the start tag of an element, preserving its
// attribute set (namespace declarations included).
func elementStartTag(n *xmlquery.Node) string {
	var b strings.Builder
	b.WriteString("<")
	b.WriteString(elementName(n))
	for _, a := range n.Attr {
		name := a.Name.Local
		if a.Name.Space != "" {
			name = a.Name.Space + ":" + a.Name.Local
		}
		b.WriteString(" ")
		b.WriteString(name)
		b.WriteString(`="`)
		b.WriteString(attrEscaper.Replace(a.Value))
		b.WriteString(`"`)
	}
	b.WriteString(">")
	return b.String()
}
