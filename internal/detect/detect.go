// Package detect classifies word-processing documents as legacy binary
// (.doc, OLE compound file) or modern package (.docx, zip + XML) by
// sniffing magic bytes, with a filename-extension fallback. Uploaded
// content is routinely mislabeled, so the magic bytes always win over
// the advisory name.
package detect

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/raido/internal/apperr"
)

// Format identifies a document encoding.
type Format string

const (
	// FormatLegacy is the compound-file binary encoding (.doc).
	FormatLegacy Format = "doc"
	// FormatModern is the zip-packaged XML encoding (.docx).
	FormatModern Format = "docx"
)

// Ext returns the canonical file extension for the format, without dot.
func (f Format) Ext() string { return string(f) }

var (
	zipMagic = []byte{0x50, 0x4B, 0x03, 0x04}
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// Sniff classifies a document from its leading bytes, falling back to
// the advisory filename's extension when no magic matches.
func Sniff(header []byte, filename string) (Format, error) {
	if bytes.HasPrefix(header, zipMagic) {
		return FormatModern, nil
	}
	if bytes.HasPrefix(header, oleMagic) {
		return FormatLegacy, nil
	}
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), ".")) {
	case "doc":
		return FormatLegacy, nil
	case "docx":
		return FormatModern, nil
	}
	return "", fmt.Errorf("%w: %s", apperr.ErrUnrecognizedFormat, displayName(filename))
}

// File classifies the document at path by reading its first bytes.
func File(path string) (Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("detect %s: %w", path, err)
	}
	defer f.Close()

	header := make([]byte, 8)
	n, err := io.ReadFull(f, header)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", fmt.Errorf("detect %s: %w", path, err)
	}
	return Sniff(header[:n], filepath.Base(path))
}

func displayName(name string) string {
	if name == "" {
		return "(unnamed file)"
	}
	return name
}
