// Package testutil provides shared test helpers for building document
// fixtures and job databases.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/raido/internal/docx"
	"github.com/starford/raido/internal/joblog"
)

// TestJobLog creates a temporary SQLite job log that is automatically
// cleaned up.
func TestJobLog(t *testing.T) *joblog.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "raido-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := joblog.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// Style builds a minimal paragraph style definition.
func Style(id, name, basedOn string) docx.Style {
	xml := `<w:style w:type="paragraph" w:styleId="` + id + `"><w:name w:val="` + name + `"/>`
	if basedOn != "" {
		xml += `<w:basedOn w:val="` + basedOn + `"/>`
	}
	xml += `</w:style>`
	return docx.Style{ID: id, Name: name, Type: "paragraph", BasedOn: basedOn, XML: xml}
}

// TestDocx writes a blank modern package carrying the given styles
// into a temp directory and returns its path.
func TestDocx(t *testing.T, styles ...docx.Style) string {
	t.Helper()
	pkg := docx.Blank()
	c, err := pkg.Styles()
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range styles {
		c.Append(s)
	}
	path := filepath.Join(t.TempDir(), "fixture.docx")
	if err := pkg.Save(path); err != nil {
		t.Fatal(err)
	}
	return path
}
