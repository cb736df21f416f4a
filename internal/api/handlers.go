package api

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/detect"
	"github.com/starford/raido/internal/docx"
	"github.com/starford/raido/internal/joblog"
	"github.com/starford/raido/internal/stylegraph"
	"github.com/starford/raido/internal/styleservice"
)

const maxUploadBytes = 50 << 20 // 50 MB

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// errMissingField marks an absent multipart field.
var errMissingField = errors.New("missing multipart field")

// Handler holds API route handlers.
type Handler struct {
	svc  *styleservice.Service
	jobs joblog.Log
}

// NewHandler creates a new Handler.
func NewHandler(svc *styleservice.Service, jobs joblog.Log) *Handler {
	if jobs == nil {
		jobs = joblog.Discard{}
	}
	return &Handler{svc: svc, jobs: jobs}
}

// upload is a document received from a multipart form, staged on disk
// under the request's scratch directory.
type upload struct {
	path string // staged copy, extension matching the detected format
	name string // filename as sent by the client
}

// saveUpload stages one multipart file field into dir. The staged copy
// gets its extension from content sniffing, so a mislabeled legacy
// document is processed as what it actually is.
func saveUpload(r *http.Request, dir, field string) (upload, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return upload{}, fmt.Errorf("missing %q field in multipart form: %w", field, errMissingField)
	}
	defer file.Close()

	head := make([]byte, 8)
	n, _ := io.ReadFull(file, head)
	format, err := detect.Sniff(head[:n], header.Filename)
	if err != nil {
		return upload{}, err
	}

	path := filepath.Join(dir, uuid.NewString()+"."+format.Ext())
	dst, err := os.Create(path)
	if err != nil {
		return upload{}, err
	}
	defer dst.Close()
	if _, err := dst.Write(head[:n]); err != nil {
		return upload{}, err
	}
	if _, err := io.Copy(dst, file); err != nil {
		return upload{}, err
	}
	return upload{path: path, name: header.Filename}, nil
}

// blankSource stages the built-in template for migrations that supply
// no source document, mirroring a restyle-to-defaults request.
func blankSource(dir string) (upload, error) {
	path := filepath.Join(dir, uuid.NewString()+".docx")
	if err := docx.Blank().Save(path); err != nil {
		return upload{}, err
	}
	return upload{path: path, name: "template.docx"}, nil
}

// selection reads the style keys from the "styles" form value, falling
// back to an uploaded "stylesFile" list (one key per line or comma
// separated).
func selection(r *http.Request) (styleservice.Selection, error) {
	if raw := r.FormValue("styles"); strings.TrimSpace(raw) != "" {
		return styleservice.ParseSelection(raw)
	}
	file, _, err := r.FormFile("stylesFile")
	if err != nil {
		return styleservice.Selection{}, fmt.Errorf("no styles given: %w", apperr.ErrInvalidSelection)
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, 1<<20))
	if err != nil {
		return styleservice.Selection{}, err
	}
	return styleservice.ParseSelection(strings.ReplaceAll(string(data), "\n", ","))
}

// formFlag reads a boolean form value. Absent or unparseable values
// default to true, so clients opt out explicitly.
func formFlag(r *http.Request, name string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(r.FormValue(name)))
	if err != nil {
		return true
	}
	return v
}

// scratchDir makes a per-request upload directory; its cleanup func
// removes every staged and produced file at once.
func scratchDir() (string, func(), error) {
	dir, err := os.MkdirTemp("", "raido-req-*")
	if err != nil {
		return "", nil, err
	}
	return dir, func() { os.RemoveAll(dir) }, nil
}

// fail maps operation errors onto HTTP statuses.
func fail(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, apperr.ErrStyleNotFound):
		writeJSON(w, http.StatusNotFound, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrInvalidSelection),
		errors.Is(err, apperr.ErrWildcardNotAllowed),
		errors.Is(err, apperr.ErrUnsupportedFormat),
		errors.Is(err, apperr.ErrUnrecognizedFormat),
		errors.Is(err, errMissingField):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrMissingStyles):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody(err.Error()))
	default:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

// serveDocument streams a produced package back to the client as a
// download.
func serveDocument(w http.ResponseWriter, path, downloadName string) {
	f, err := os.Open(path)
	if err != nil {
		fail(w, "serve document", err)
		return
	}
	defer f.Close()
	w.Header().Set("Content-Type", docxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+downloadName+`"`)
	if _, err := io.Copy(w, f); err != nil {
		slog.Error("document write failed", slog.String("error", err.Error()))
	}
}

// downloadName keeps the client's filename unless the operation left
// the result in a converted sibling, in which case the name switches
// to the modern extension.
func downloadName(clientName, inputPath, resultPath string) string {
	if resultPath == inputPath {
		return filepath.Base(clientName)
	}
	base := filepath.Base(clientName)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".docx"
}

func (h *Handler) record(j joblog.Job) {
	if err := h.jobs.Record(j); err != nil {
		slog.Error("job record failed", slog.String("error", err.Error()))
	}
}

// ListStyles handles POST /api/styles/list.
//
//	@Summary		List the style catalog of an uploaded document
//	@Tags			styles
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file	formData	file	true	"Document (.doc or .docx)"
//	@Success		200		{object}	StyleListResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/styles/list [post]
func (h *Handler) ListStyles(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	dir, cleanup, err := scratchDir()
	if err != nil {
		fail(w, "list styles", err)
		return
	}
	defer cleanup()

	up, err := saveUpload(r, dir, "file")
	if err != nil {
		fail(w, "list styles", err)
		return
	}
	infos, err := h.svc.ListStyles(r.Context(), up.path)
	if err != nil {
		h.record(joblog.Job{Operation: "list", Source: up.name, Status: "error", Detail: err.Error()})
		fail(w, "list styles", err)
		return
	}
	h.record(joblog.Job{Operation: "list", Source: up.name, Styles: len(infos), Status: "ok"})
	writeJSON(w, http.StatusOK, map[string]any{
		"styles": infos,
		"total":  len(infos),
	})
}

// ExportStyles handles POST /api/styles/export.
//
//	@Summary		Export the style catalog of an uploaded document as CSV
//	@Tags			styles
//	@Accept			multipart/form-data
//	@Produce		text/csv
//	@Param			file	formData	file	true	"Document (.doc or .docx)"
//	@Success		200		{string}	string	"CSV rows"
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/styles/export [post]
func (h *Handler) ExportStyles(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	dir, cleanup, err := scratchDir()
	if err != nil {
		fail(w, "export styles", err)
		return
	}
	defer cleanup()

	up, err := saveUpload(r, dir, "file")
	if err != nil {
		fail(w, "export styles", err)
		return
	}
	var buf strings.Builder
	if err := h.svc.ExportStyles(r.Context(), up.path, &buf); err != nil {
		h.record(joblog.Job{Operation: "export", Source: up.name, Status: "error", Detail: err.Error()})
		fail(w, "export styles", err)
		return
	}
	h.record(joblog.Job{Operation: "export", Source: up.name, Status: "ok"})
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="styles.csv"`)
	io.WriteString(w, buf.String())
}

// MigrateStyles handles POST /api/styles/migrate.
//
//	@Summary		Copy styles from a source document into a target document
//	@Tags			styles
//	@Accept			multipart/form-data
//	@Produce		application/vnd.openxmlformats-officedocument.wordprocessingml.document
//	@Param			sourceFile	formData	file	false	"Style source (.doc or .docx); built-in template when omitted"
//	@Param			targetFile	formData	file	true	"Document to restyle (.doc or .docx)"
//	@Param			styles				formData	string	false	"Comma-separated style ids or names, * for all"
//	@Param			stylesFile			formData	file	false	"Style key list, one per line"
//	@Param			includeDependencies	formData	boolean	false	"Copy basedOn ancestors too (default true)"
//	@Param			copyNumbering		formData	boolean	false	"Carry the numbering part (default true)"
//	@Success		200			{file}		binary
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/styles/migrate [post]
func (h *Handler) MigrateStyles(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	dir, cleanup, err := scratchDir()
	if err != nil {
		fail(w, "migrate styles", err)
		return
	}
	defer cleanup()

	source, err := saveUpload(r, dir, "sourceFile")
	if errors.Is(err, errMissingField) {
		source, err = blankSource(dir)
	}
	if err != nil {
		fail(w, "migrate styles", err)
		return
	}
	target, err := saveUpload(r, dir, "targetFile")
	if err != nil {
		fail(w, "migrate styles", err)
		return
	}
	sel, err := selection(r)
	if err != nil {
		fail(w, "migrate styles", err)
		return
	}
	opts := stylegraph.Options{
		IncludeDependencies: formFlag(r, "includeDependencies"),
		CopyNumbering:       formFlag(r, "copyNumbering"),
	}
	res, err := h.svc.MigrateSelected(r.Context(), source.path, target.path, sel, opts)
	if err != nil {
		h.record(joblog.Job{Operation: "migrate", Source: source.name, Target: target.name, Status: "error", Detail: err.Error()})
		fail(w, "migrate styles", err)
		return
	}
	h.record(joblog.Job{Operation: "migrate", Source: source.name, Target: target.name, Styles: res.Styles, Status: "ok"})
	w.Header().Set("X-Styles-Count", strconv.Itoa(res.Styles))
	serveDocument(w, res.Path, downloadName(target.name, target.path, res.Path))
}

// CleanStyles handles POST /api/styles/clean.
//
//	@Summary		Delete styles from an uploaded document
//	@Tags			styles
//	@Accept			multipart/form-data
//	@Produce		application/vnd.openxmlformats-officedocument.wordprocessingml.document
//	@Param			file	formData	file	true	"Document (.doc or .docx)"
//	@Param			styles	formData	string	true	"Comma-separated style ids or names"
//	@Success		200		{file}		binary
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/styles/clean [post]
func (h *Handler) CleanStyles(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	dir, cleanup, err := scratchDir()
	if err != nil {
		fail(w, "clean styles", err)
		return
	}
	defer cleanup()

	up, err := saveUpload(r, dir, "file")
	if err != nil {
		fail(w, "clean styles", err)
		return
	}
	sel, err := selection(r)
	if err != nil {
		fail(w, "clean styles", err)
		return
	}
	res, err := h.svc.CleanStyles(r.Context(), up.path, sel)
	if err != nil {
		h.record(joblog.Job{Operation: "clean", Target: up.name, Status: "error", Detail: err.Error()})
		fail(w, "clean styles", err)
		return
	}
	h.record(joblog.Job{Operation: "clean", Target: up.name, Removed: res.Removed, Status: "ok"})
	w.Header().Set("X-Removed-Count", strconv.Itoa(res.Removed))
	serveDocument(w, res.Path, downloadName(up.name, up.path, res.Path))
}

// ListJobs handles GET /api/jobs.
//
//	@Summary		List recent style operations
//	@Tags			jobs
//	@Produce		json
//	@Param			limit	query		int	false	"Page size"
//	@Success		200		{object}	JobListResponse
//	@Security		BearerAuth
//	@Router			/jobs [get]
func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	jobs, err := h.jobs.Recent(limit)
	if err != nil {
		fail(w, "list jobs", err)
		return
	}
	if jobs == nil {
		jobs = []joblog.Job{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"jobs":  jobs,
		"total": len(jobs),
	})
}
