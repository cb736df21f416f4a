package stylegraph

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/docx"
)

func mkStyle(id, name, basedOn string) docx.Style {
	var b strings.Builder
	b.WriteString(`<w:style w:type="paragraph" w:styleId="` + id + `">`)
	b.WriteString(`<w:name w:val="` + name + `"/>`)
	if basedOn != "" {
		b.WriteString(`<w:basedOn w:val="` + basedOn + `"/>`)
	}
	b.WriteString(`</w:style>`)
	return docx.Style{ID: id, Name: name, Type: "paragraph", BasedOn: basedOn, XML: b.String()}
}

func collectionOf(styles ...docx.Style) *docx.StyleCollection {
	c := docx.NewStyleCollection()
	for _, s := range styles {
		c.Append(s)
	}
	return c
}

func packageOf(t *testing.T, styles ...docx.Style) *docx.Package {
	t.Helper()
	pkg := docx.Blank()
	c, err := pkg.Styles()
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range styles {
		c.Append(s)
	}
	return pkg
}

func TestFind(t *testing.T) {
	c := collectionOf(mkStyle("Heading1", "heading 1", "Normal"))
	if _, ok := Find(c, "Heading1"); !ok {
		t.Error("lookup by id failed")
	}
	if s, ok := Find(c, "  HEADING 1  "); !ok || s.ID != "Heading1" {
		t.Errorf("case-insensitive name lookup = %+v, %v", s, ok)
	}
	if _, ok := Find(c, "Heading2"); ok {
		t.Error("lookup of absent style succeeded")
	}
}

func TestCollectFollowsBasedOnChain(t *testing.T) {
	c := collectionOf(
		mkStyle("Normal", "Normal", ""),
		mkStyle("Base", "Base", "Normal"),
		mkStyle("Leaf", "Leaf", "Base"),
	)
	leaf, _ := c.Get("Leaf")
	got := Collect(c, leaf)
	want := []string{"Leaf", "Base", "Normal"}
	if len(got) != len(want) {
		t.Fatalf("collected %d styles, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("collected[%d] = %s, want %s", i, got[i].ID, id)
		}
	}
}

func TestCollectStopsOnCycle(t *testing.T) {
	c := collectionOf(
		mkStyle("A", "A", "B"),
		mkStyle("B", "B", "A"),
	)
	a, _ := c.Get("A")
	got := Collect(c, a)
	if len(got) != 2 {
		t.Fatalf("collected %d styles from a two-style cycle, want 2", len(got))
	}
}

func TestCollectSkipsMissingParent(t *testing.T) {
	c := collectionOf(mkStyle("Orphan", "Orphan", "Ghost"))
	orphan, _ := c.Get("Orphan")
	got := Collect(c, orphan)
	if len(got) != 1 || got[0].ID != "Orphan" {
		t.Errorf("collected = %+v, want only Orphan", got)
	}
}

func TestTransferCopiesClosure(t *testing.T) {
	src := packageOf(t,
		mkStyle("Base", "Base", "Normal"),
		mkStyle("Leaf", "Leaf", "Base"),
		mkStyle("Unrelated", "Unrelated", ""),
	)
	dst := docx.Blank()
	n, err := Transfer(src, dst, []string{"Leaf"}, DefaultOptions())
	if err != nil {
		t.Fatalf("Transfer: %v", err)
	}
	if n != 3 {
		t.Errorf("transferred = %d, want 3 (Leaf, Base, Normal)", n)
	}
	c, err := dst.Styles()
	if err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{"Leaf", "Base", "Normal"} {
		if _, ok := c.Get(id); !ok {
			t.Errorf("destination missing %s", id)
		}
	}
	if _, ok := c.Get("Unrelated"); ok {
		t.Error("unrequested style copied")
	}
}

func TestTransferDeduplicatesSharedAncestors(t *testing.T) {
	src := packageOf(t,
		mkStyle("Shared", "Shared", ""),
		mkStyle("A", "A", "Shared"),
		mkStyle("B", "B", "Shared"),
	)
	dst := docx.Blank()
	n, err := Transfer(src, dst, []string{"A", "B"}, DefaultOptions())
	if err != nil {
		t.Fatalf("Transfer: %v", err)
	}
	if n != 3 {
		t.Errorf("transferred = %d, want 3 (Shared written once)", n)
	}
}

func TestTransferUnknownStyle(t *testing.T) {
	src := packageOf(t)
	dst := docx.Blank()
	_, err := Transfer(src, dst, []string{"Nope"}, DefaultOptions())
	if !errors.Is(err, apperr.ErrStyleNotFound) {
		t.Errorf("err = %v, want ErrStyleNotFound", err)
	}
	if !strings.Contains(err.Error(), "Nope") {
		t.Errorf("err = %v, want the offending key named", err)
	}
}

func TestTransferCarriesNumbering(t *testing.T) {
	src := packageOf(t, mkStyle("ListPara", "List Paragraph", ""))
	numbering := []byte(`<w:numbering xmlns:w="x"><w:num w:numId="1"/></w:numbering>`)
	if err := src.SetNumbering(numbering); err != nil {
		t.Fatal(err)
	}
	dst := docx.Blank()
	if _, err := Transfer(src, dst, []string{"ListPara"}, DefaultOptions()); err != nil {
		t.Fatalf("Transfer: %v", err)
	}
	got, ok := dst.Numbering()
	if !ok {
		t.Fatal("numbering part not carried over")
	}
	if !bytes.Equal(got, numbering) {
		t.Errorf("numbering = %s, want source bytes", got)
	}
}

func TestTransferWithoutDependencies(t *testing.T) {
	src := packageOf(t,
		mkStyle("Base", "Base", ""),
		mkStyle("Leaf", "Leaf", "Base"),
	)
	dst := docx.Blank()
	n, err := Transfer(src, dst, []string{"Leaf"}, Options{CopyNumbering: true})
	if err != nil {
		t.Fatalf("Transfer: %v", err)
	}
	if n != 1 {
		t.Errorf("transferred = %d, want only Leaf", n)
	}
	c, err := dst.Styles()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Get("Base"); ok {
		t.Error("basedOn ancestor copied with dependency collection off")
	}
}

func TestTransferOverwritesDefaults(t *testing.T) {
	src := packageOf(t, mkStyle("Quote", "Quote", ""))
	srcStyles, err := src.Styles()
	if err != nil {
		t.Fatal(err)
	}
	srcDefaults := `<w:docDefaults><w:rPrDefault><w:rPr><w:rFonts w:ascii="Georgia"/></w:rPr></w:rPrDefault></w:docDefaults>`
	srcStyles.SetDocDefaults(srcDefaults)

	dst := docx.Blank()
	dstStyles, err := dst.Styles()
	if err != nil {
		t.Fatal(err)
	}
	if dstStyles.DocDefaults() == "" {
		t.Fatal("blank package has no docDefaults to overwrite")
	}
	if _, err := Transfer(src, dst, []string{"Quote"}, DefaultOptions()); err != nil {
		t.Fatalf("Transfer: %v", err)
	}
	if got := dstStyles.DocDefaults(); got != srcDefaults {
		t.Errorf("docDefaults = %s, want the source block", got)
	}
}

func TestTransferOverwritesNumbering(t *testing.T) {
	src := packageOf(t, mkStyle("ListPara", "List Paragraph", ""))
	srcNumbering := []byte(`<w:numbering xmlns:w="x"><w:num w:numId="7"/></w:numbering>`)
	if err := src.SetNumbering(srcNumbering); err != nil {
		t.Fatal(err)
	}
	dst := docx.Blank()
	if err := dst.SetNumbering([]byte(`<w:numbering xmlns:w="x"><w:num w:numId="1"/></w:numbering>`)); err != nil {
		t.Fatal(err)
	}
	if _, err := Transfer(src, dst, []string{"ListPara"}, DefaultOptions()); err != nil {
		t.Fatalf("Transfer: %v", err)
	}
	got, ok := dst.Numbering()
	if !ok {
		t.Fatal("numbering part missing")
	}
	if !bytes.Equal(got, srcNumbering) {
		t.Errorf("numbering = %s, want the source part", got)
	}
}

func TestTransferSkipsNumberingWhenDisabled(t *testing.T) {
	src := packageOf(t, mkStyle("ListPara", "List Paragraph", ""))
	if err := src.SetNumbering([]byte(`<w:numbering xmlns:w="x"/>`)); err != nil {
		t.Fatal(err)
	}
	dst := docx.Blank()
	opts := Options{IncludeDependencies: true}
	if _, err := Transfer(src, dst, []string{"ListPara"}, opts); err != nil {
		t.Fatalf("Transfer: %v", err)
	}
	if _, ok := dst.Numbering(); ok {
		t.Error("numbering copied with the flag off")
	}
}

func TestTransferIdempotent(t *testing.T) {
	src := packageOf(t,
		mkStyle("Base", "Base", ""),
		mkStyle("Leaf", "Leaf", "Base"),
	)
	dst := docx.Blank()
	if _, err := Transfer(src, dst, []string{"Leaf"}, DefaultOptions()); err != nil {
		t.Fatalf("first transfer: %v", err)
	}
	c, err := dst.Styles()
	if err != nil {
		t.Fatal(err)
	}
	first := List(c)
	if _, err := Transfer(src, dst, []string{"Leaf"}, DefaultOptions()); err != nil {
		t.Fatalf("second transfer: %v", err)
	}
	second := List(c)
	if len(first) != len(second) {
		t.Fatalf("catalog grew from %d to %d styles", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("catalog[%d] changed: %+v -> %+v", i, first[i], second[i])
		}
	}
}

func TestTransferAllReplacesCatalog(t *testing.T) {
	src := packageOf(t, mkStyle("Fancy", "Fancy", ""))
	dst := packageOf(t, mkStyle("Stale", "Stale", ""))
	n, err := TransferAll(src, dst, true)
	if err != nil {
		t.Fatalf("TransferAll: %v", err)
	}
	c, err := dst.Styles()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Get("Stale"); ok {
		t.Error("full replacement kept a destination style")
	}
	if _, ok := c.Get("Fancy"); !ok {
		t.Error("full replacement dropped a source style")
	}
	if n != c.Len() {
		t.Errorf("reported %d transfers for %d styles", n, c.Len())
	}
}

func TestRemove(t *testing.T) {
	c := collectionOf(
		mkStyle("Heading1", "heading 1", ""),
		mkStyle("Heading2", "heading 2", ""),
		mkStyle("Quote", "Quote", ""),
	)
	n := Remove(c, []string{"HEADING 1", "Heading2", "  ", ""})
	if n != 2 {
		t.Errorf("removed = %d, want 2", n)
	}
	if c.Len() != 1 {
		t.Fatalf("remaining = %d, want 1", c.Len())
	}
	if _, ok := c.Get("Quote"); !ok {
		t.Error("unrelated style removed")
	}
}

func TestRemoveMatchesIDCaseInsensitively(t *testing.T) {
	c := collectionOf(mkStyle("Custom-ID-7", "My Style", ""))
	if n := Remove(c, []string{"custom-id-7"}); n != 1 {
		t.Errorf("removed = %d, want 1", n)
	}
	if c.Len() != 0 {
		t.Errorf("remaining = %d, want 0", c.Len())
	}
}

func TestRemoveEmptyKeysMatchNothing(t *testing.T) {
	c := collectionOf(mkStyle("Unnamed", "", ""))
	if n := Remove(c, []string{"", "   "}); n != 0 {
		t.Errorf("removed = %d, want 0", n)
	}
}

func TestListSorted(t *testing.T) {
	c := collectionOf(
		mkStyle("zeta", "Z", ""),
		mkStyle("Alpha", "A", ""),
		mkStyle("beta", "B", ""),
	)
	infos := List(c)
	want := []string{"Alpha", "beta", "zeta"}
	for i, id := range want {
		if infos[i].ID != id {
			t.Errorf("list[%d] = %s, want %s", i, infos[i].ID, id)
		}
	}
}

func TestExportCSV(t *testing.T) {
	c := collectionOf(
		mkStyle("Heading1", `heading, "the first"`, ""),
		mkStyle("Normal", "Normal", ""),
	)
	var buf bytes.Buffer
	if err := ExportCSV(&buf, c); err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want header plus two rows", len(lines))
	}
	if lines[0] != "styleId,name,type" {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(lines[1], `"heading, ""the first"""`) {
		t.Errorf("row = %q, want quoted name", lines[1])
	}
}
