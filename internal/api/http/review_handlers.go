package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	authmw "github.com/mind-engage/studyhub/internal/auth/middleware"
	"github.com/mind-engage/studyhub/internal/logger"
	"github.com/mind-engage/studyhub/internal/notes"
)

// GET /api/teacher/pending-notes
func PendingNotesHandler(store notes.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := store.ListByStatus(r.Context(), notes.StatusPending)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		respondJSON(w, http.StatusOK, out)
	}
}

// GET /api/teacher/stats
func ReviewStatsHandler(svc *notes.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := svc.Stats(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		respondJSON(w, http.StatusOK, st)
	}
}

type reviewReq struct {
	TeacherName string `json:"teacher_name" validate:"max=100"`
	Reason      string `json:"reason" validate:"max=500"`
}

// an empty body is fine; both fields have defaults
func readReview(w http.ResponseWriter, r *http.Request) (reviewReq, bool) {
	var req reviewReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return reviewReq{}, true
		}
		http.Error(w, "bad json", http.StatusBadRequest)
		return req, false
	}
	return req, validOr400(w, &req)
}

func reviewer(r *http.Request, given string) string {
	if s := strings.TrimSpace(given); s != "" {
		return s
	}
	if s := authmw.NameFromContext(r.Context()); s != "" {
		return s
	}
	return notes.DefaultTeacher
}

func writeReviewErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, notes.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, notes.ErrNotPending):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// POST /api/teacher/approve/{id}
func ApproveNoteHandler(store notes.Store, tokensPerApproval int, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := readReview(w, r)
		if !ok {
			return
		}
		id := chi.URLParam(r, "id")
		n, err := store.Approve(r.Context(), id, reviewer(r, req.TeacherName), int64(tokensPerApproval))
		if err != nil {
			writeReviewErr(w, err)
			return
		}
		log.Info("note approved", "id", id, "student", n.Student, "awarded", tokensPerApproval)
		respondJSON(w, http.StatusOK, n)
	}
}

// POST /api/teacher/reject/{id}
func RejectNoteHandler(store notes.Store, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := readReview(w, r)
		if !ok {
			return
		}
		reason := strings.TrimSpace(req.Reason)
		if reason == "" {
			reason = notes.DefaultReason
		}
		id := chi.URLParam(r, "id")
		n, err := store.Reject(r.Context(), id, reviewer(r, req.TeacherName), reason)
		if err != nil {
			writeReviewErr(w, err)
			return
		}
		log.Info("note rejected", "id", id, "reason", reason)
		respondJSON(w, http.StatusOK, n)
	}
}
