package http

import (
	"errors"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	authmw "github.com/mind-engage/studyhub/internal/auth/middleware"
	"github.com/mind-engage/studyhub/internal/logger"
	"github.com/mind-engage/studyhub/internal/notes"
	"github.com/mind-engage/studyhub/internal/rbac"
	"github.com/mind-engage/studyhub/internal/storage"
)

// GET /api/notes
func ListNotesHandler(store notes.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := store.ListByStatus(r.Context(), notes.StatusApproved)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		respondJSON(w, http.StatusOK, out)
	}
}

// GET /api/notes/mine
func MyNotesHandler(store notes.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := store.ListByOwner(r.Context(), authmw.SubjectFromContext(r.Context()))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		respondJSON(w, http.StatusOK, out)
	}
}

type uploadForm struct {
	Title    string `form:"title" validate:"max=200"`
	Summary  string `form:"summary" validate:"max=2000"`
	Category string `form:"category" validate:"max=50"`
	Student  string `form:"student" validate:"max=100"`
}

// form fields ride along with the file; allow this much on top of maxBytes
const formOverhead = 1 << 20

// POST /api/upload (multipart: file, title, summary, student, category)
func UploadNoteHandler(svc *notes.Service, maxBytes int64, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes+formOverhead)
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			var tooBig *http.MaxBytesError
			if errors.As(err, &tooBig) {
				http.Error(w, notes.ErrTooLarge.Error(), http.StatusRequestEntityTooLarge)
				return
			}
			http.Error(w, "bad multipart form", http.StatusBadRequest)
			return
		}
		defer r.MultipartForm.RemoveAll()

		f, hdr, err := r.FormFile("file")
		if err != nil {
			http.Error(w, notes.ErrNoFile.Error(), http.StatusBadRequest)
			return
		}
		defer f.Close()
		if hdr.Size > maxBytes {
			http.Error(w, notes.ErrTooLarge.Error(), http.StatusRequestEntityTooLarge)
			return
		}

		form := uploadForm{
			Title:    r.FormValue("title"),
			Summary:  r.FormValue("summary"),
			Category: r.FormValue("category"),
			Student:  r.FormValue("student"),
		}
		if !validOr400(w, &form) {
			return
		}
		student := form.Student
		if student == "" {
			student = authmw.NameFromContext(r.Context())
		}

		n, err := svc.Upload(r.Context(), notes.Upload{
			FileName:    hdr.Filename,
			ContentType: hdr.Header.Get("Content-Type"),
			Size:        hdr.Size,
			Title:       form.Title,
			Summary:     form.Summary,
			Category:    form.Category,
			Student:     student,
			OwnerID:     authmw.SubjectFromContext(r.Context()),
		}, f)
		switch {
		case errors.Is(err, notes.ErrInvalidType), errors.Is(err, notes.ErrNoFile):
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		case err != nil:
			log.Error("upload failed", "file", hdr.Filename, "err", err)
			http.Error(w, "error uploading file", http.StatusInternalServerError)
			return
		}
		respondJSON(w, http.StatusCreated, n)
	}
}

// DELETE /api/notes/{id}
func DeleteNoteHandler(svc *notes.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		err := svc.Delete(r.Context(), id, authmw.SubjectFromContext(r.Context()), rbac.Can(r, rbac.PermNotesDeleteAny))
		switch {
		case errors.Is(err, notes.ErrNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, notes.ErrForbidden):
			http.Error(w, err.Error(), http.StatusForbidden)
		case err != nil:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		default:
			respondJSON(w, http.StatusOK, map[string]string{"message": "note deleted"})
		}
	}
}

// MountUploads serves stored note files under the mounted prefix.
func MountUploads(r chi.Router, svc *notes.Service) {
	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "*")
		rc, err := svc.Open(name)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) || errors.Is(err, storage.ErrBadKey) {
				http.NotFound(w, r)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		defer rc.Close()
		ct := mime.TypeByExtension(filepath.Ext(name))
		if ct == "" {
			ct = "application/octet-stream"
		}
		w.Header().Set("Content-Type", ct)
		w.Header().Set("X-Content-Type-Options", "nosniff")
		_, _ = io.Copy(w, rc)
	})
}
