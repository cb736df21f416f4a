package docx

import (
	"strings"
	"testing"
)

const sampleStylesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:docDefaults><w:rPrDefault><w:rPr><w:sz w:val="22"/></w:rPr></w:rPrDefault></w:docDefaults>
<w:latentStyles w:defUIPriority="99" w:count="3"/>
<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/><w:qFormat/></w:style>
<w:style w:type="paragraph" w:styleId="Heading1"><w:name w:val="heading 1"/><w:basedOn w:val="Normal"/><w:rPr><w:b/><w:color w:val="2F5496"/></w:rPr></w:style>
<w:style w:type="character" w:styleId="Emphasis"><w:name w:val="Emphasis"/><w:rPr><w:i/></w:rPr></w:style>
</w:styles>`

func parseSample(t *testing.T) *StyleCollection {
	t.Helper()
	sc, err := ParseStyles([]byte(sampleStylesXML))
	if err != nil {
		t.Fatalf("ParseStyles: %v", err)
	}
	return sc
}

func TestParseStyles(t *testing.T) {
	sc := parseSample(t)
	if sc.Len() != 3 {
		t.Fatalf("Len = %d, want 3", sc.Len())
	}
	all := sc.All()
	if all[0].ID != "Normal" || all[1].ID != "Heading1" || all[2].ID != "Emphasis" {
		t.Errorf("order = %s, %s, %s", all[0].ID, all[1].ID, all[2].ID)
	}
	h1, ok := sc.Get("Heading1")
	if !ok {
		t.Fatal("Heading1 not found")
	}
	if h1.Name != "heading 1" {
		t.Errorf("Name = %q", h1.Name)
	}
	if h1.Type != "paragraph" {
		t.Errorf("Type = %q", h1.Type)
	}
	if h1.BasedOn != "Normal" {
		t.Errorf("BasedOn = %q", h1.BasedOn)
	}
	if !strings.Contains(h1.XML, "2F5496") {
		t.Errorf("opaque payload lost: %s", h1.XML)
	}
	if sc.DocDefaults() == "" || sc.LatentStyles() == "" {
		t.Error("docDefaults/latentStyles not captured")
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	sc := parseSample(t)
	out := sc.Marshal()

	again, err := ParseStyles(out)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if again.Len() != sc.Len() {
		t.Fatalf("Len after round trip = %d, want %d", again.Len(), sc.Len())
	}
	for i, want := range sc.All() {
		got := again.All()[i]
		if got.ID != want.ID || got.Name != want.Name || got.Type != want.Type || got.BasedOn != want.BasedOn {
			t.Errorf("style %d: got %+v, want %+v", i, got, want)
		}
	}
	// The opaque formatting payload survives.
	if !strings.Contains(string(out), "2F5496") {
		t.Error("formatting payload missing from marshaled part")
	}
	if !strings.Contains(string(out), `w:defUIPriority="99"`) {
		t.Error("latent styles attributes missing from marshaled part")
	}
}

func TestAppendKeepsIDsUnique(t *testing.T) {
	sc := parseSample(t)
	sc.Append(Style{ID: "Heading1", Name: "heading 1", Type: "paragraph", XML: `<w:style w:styleId="Heading1"/>`})
	if sc.Len() != 3 {
		t.Fatalf("Len = %d, want 3 after replacing duplicate", sc.Len())
	}
	seen := map[string]bool{}
	for _, s := range sc.All() {
		if seen[s.ID] {
			t.Fatalf("duplicate id %q", s.ID)
		}
		seen[s.ID] = true
	}
	// The replacement moves to the end, like a fresh append.
	if got := sc.All()[2].ID; got != "Heading1" {
		t.Errorf("last id = %q, want Heading1", got)
	}
}

func TestRemoveMatching(t *testing.T) {
	sc := parseSample(t)
	removed := sc.RemoveMatching(func(s Style) bool { return s.Type == "paragraph" })
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}
	if sc.Len() != 1 || sc.All()[0].ID != "Emphasis" {
		t.Errorf("remaining = %+v", sc.All())
	}
}

func TestClearKeepsDefaults(t *testing.T) {
	sc := parseSample(t)
	sc.Clear()
	if sc.Len() != 0 {
		t.Errorf("Len = %d after Clear", sc.Len())
	}
	if sc.DocDefaults() == "" {
		t.Error("Clear must not drop document defaults")
	}
}

func TestNewStyleCollectionMarshals(t *testing.T) {
	sc := NewStyleCollection()
	sc.Append(Style{ID: "X", XML: `<w:style w:type="character" w:styleId="X"><w:name w:val="X"/></w:style>`})
	again, err := ParseStyles(sc.Marshal())
	if err != nil {
		t.Fatalf("reparse fresh collection: %v", err)
	}
	if again.Len() != 1 {
		t.Errorf("Len = %d, want 1", again.Len())
	}
}
