// Package styleservice orchestrates style migration between word
// documents. Inputs in the legacy binary format are normalized to
// modern packages first: sources through a throwaway temp file,
// destinations through a sibling file that becomes the operation's
// result. Temp files are removed when the operation ends, whatever
// its outcome.
package styleservice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/detect"
	"github.com/starford/raido/internal/docx"
	"github.com/starford/raido/internal/normalize"
	"github.com/starford/raido/internal/stylegraph"
)

// Service runs style operations on documents on disk.
type Service struct {
	workDir string
	log     *slog.Logger
}

// New builds a service that places temp conversions under workDir.
// An empty workDir falls back to the system temp directory.
func New(workDir string, log *slog.Logger) *Service {
	if workDir == "" {
		workDir = os.TempDir()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{workDir: workDir, log: log}
}

// Result reports where an operation left the document and what it
// changed.
type Result struct {
	// Path is the modern package holding the outcome. For a legacy
	// destination this is the converted sibling, not the input path.
	Path string
	// Styles is the number of style definitions written by a
	// migration.
	Styles int
	// Removed is the number of style definitions deleted by a clean.
	Removed int
}

// workFile is a document staged for processing: the modern package
// path plus how to dispose of it.
type workFile struct {
	path     string
	produced bool // created by conversion, not the caller's file
	temp     bool // unconditionally removed when the operation ends
}

// discard removes throwaway temp conversions, and produced outputs
// too when the operation failed.
func (w *workFile) discard(failed bool) {
	if w == nil || !w.produced {
		return
	}
	if w.temp || failed {
		os.Remove(w.path)
	}
}

// MigrateSelected copies the selected styles from the source document
// into the target, with their basedOn dependencies and the numbering
// part as opts direct. A wildcard selection migrates everything.
func (s *Service) MigrateSelected(ctx context.Context, sourcePath, targetPath string, sel Selection, opts stylegraph.Options) (res Result, err error) {
	if sel.All {
		return s.MigrateAll(ctx, sourcePath, targetPath, opts.CopyNumbering)
	}
	if len(sel.Keys) == 0 {
		return Result{}, fmt.Errorf("no style keys given: %w", apperr.ErrInvalidSelection)
	}
	return s.migrate(ctx, sourcePath, targetPath, func(src, dst *docx.Package) (int, error) {
		return stylegraph.Transfer(src, dst, sel.Keys, opts)
	})
}

// MigrateAll replaces the target's whole style catalog with the
// source's.
func (s *Service) MigrateAll(ctx context.Context, sourcePath, targetPath string, copyNumbering bool) (Result, error) {
	return s.migrate(ctx, sourcePath, targetPath, func(src, dst *docx.Package) (int, error) {
		return stylegraph.TransferAll(src, dst, copyNumbering)
	})
}

func (s *Service) migrate(ctx context.Context, sourcePath, targetPath string, transfer func(src, dst *docx.Package) (int, error)) (res Result, err error) {
	source, err := s.ensureModern(sourcePath, true)
	if err != nil {
		return Result{}, err
	}
	defer source.discard(true)

	target, err := s.ensureModern(targetPath, false)
	if err != nil {
		return Result{}, err
	}
	defer func() { target.discard(err != nil) }()

	srcPkg, err := docx.Open(source.path)
	if err != nil {
		return Result{}, err
	}
	dstPkg, err := docx.Open(target.path)
	if err != nil {
		return Result{}, err
	}
	n, err := transfer(srcPkg, dstPkg)
	if err != nil {
		return Result{}, err
	}
	if err := dstPkg.Save(target.path); err != nil {
		return Result{}, err
	}
	s.log.InfoContext(ctx, "styles migrated",
		"source", sourcePath, "target", targetPath, "styles", n, "result", target.path)
	return Result{Path: target.path, Styles: n}, nil
}

// ListStyles returns the document's style catalog sorted by id.
func (s *Service) ListStyles(ctx context.Context, path string) ([]stylegraph.StyleInfo, error) {
	c, cleanup, err := s.openStyles(path)
	if err != nil {
		return nil, err
	}
	defer cleanup()
	infos := stylegraph.List(c)
	s.log.InfoContext(ctx, "styles listed", "path", path, "count", len(infos))
	return infos, nil
}

// ExportStyles writes the document's style catalog to w as CSV.
func (s *Service) ExportStyles(ctx context.Context, path string, w io.Writer) error {
	c, cleanup, err := s.openStyles(path)
	if err != nil {
		return err
	}
	defer cleanup()
	if err := stylegraph.ExportCSV(w, c); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "styles exported", "path", path, "count", c.Len())
	return nil
}

func (s *Service) openStyles(path string) (*docx.StyleCollection, func(), error) {
	work, err := s.ensureModern(path, true)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() { work.discard(true) }
	pkg, err := docx.Open(work.path)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	c, err := pkg.Styles()
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return c, cleanup, nil
}

// CleanStyles deletes the selected styles from the document. The
// wildcard is rejected; a clean must name its victims. The document
// is rewritten only when something was actually removed.
func (s *Service) CleanStyles(ctx context.Context, path string, sel Selection) (res Result, err error) {
	if sel.All {
		return Result{}, fmt.Errorf("wildcard clean: %w", apperr.ErrWildcardNotAllowed)
	}
	if len(sel.Keys) == 0 {
		return Result{}, fmt.Errorf("no style keys given: %w", apperr.ErrInvalidSelection)
	}
	work, err := s.ensureModern(path, false)
	if err != nil {
		return Result{}, err
	}
	defer func() { work.discard(err != nil) }()

	pkg, err := docx.Open(work.path)
	if err != nil {
		return Result{}, err
	}
	c, err := pkg.Styles()
	if err != nil {
		return Result{}, err
	}
	removed := stylegraph.Remove(c, sel.Keys)
	if removed > 0 {
		if err := pkg.Save(work.path); err != nil {
			return Result{}, err
		}
	}
	s.log.InfoContext(ctx, "styles cleaned", "path", path, "removed", removed, "result", work.path)
	return Result{Path: work.path, Removed: removed}, nil
}

// ensureModern stages path as a modern package. Read-only legacy
// inputs convert into a temp file under the work directory; writable
// legacy inputs convert into a sibling file that survives the
// operation as its result.
func (s *Service) ensureModern(path string, readOnly bool) (*workFile, error) {
	format, err := detect.File(path)
	if err != nil {
		if errors.Is(err, apperr.ErrUnrecognizedFormat) {
			return nil, fmt.Errorf("%w: %s", apperr.ErrUnsupportedFormat, path)
		}
		return nil, err
	}
	if format == detect.FormatModern {
		return &workFile{path: path}, nil
	}

	pkg, err := normalize.File(path)
	if err != nil {
		return nil, err
	}
	var out string
	if readOnly {
		out = filepath.Join(s.workDir, uuid.NewString()+".docx")
	} else {
		out = siblingPath(path)
	}
	if err := pkg.Save(out); err != nil {
		return nil, err
	}
	return &workFile{path: out, produced: true, temp: readOnly}, nil
}

// siblingPath picks a non-clobbering modern name next to a legacy
// document: base.docx, then base-1.docx, base-2.docx and so on.
func siblingPath(path string) string {
	stem := strings.TrimSuffix(path, filepath.Ext(path))
	candidate := stem + ".docx"
	for i := 1; ; i++ {
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
		candidate = fmt.Sprintf("%s-%d.docx", stem, i)
	}
}
