package http

import (
	"context"
	"errors"
	"io/fs"
	"net/http"

	"github.com/mind-engage/studyhub/internal/logger"
	"github.com/mind-engage/studyhub/internal/paper"
)

type mockQuery struct {
	Standard   string `form:"standard" validate:"required,notblank,max=64"`
	Subject    string `form:"subject" validate:"required,notblank,max=64"`
	Total      string `form:"total" validate:"max=12"`
	Marks      string `form:"marks" validate:"omitempty,oneof=2 3 5 all"`
	Difficulty string `form:"difficulty" validate:"max=32"`
	Relax      string `form:"relax" validate:"omitempty,oneof=0 1 true false"`
}

// GET /api/mock?standard=&subject=&total=&marks=&difficulty=&relax=
//
// relax=1 retries with looser parameters when the exact request yields no
// questions. Without it an empty paper is returned as is.
func MockPaperHandler(gen paper.Generator, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qv := r.URL.Query()
		q := mockQuery{
			Standard:   qv.Get("standard"),
			Subject:    qv.Get("subject"),
			Total:      qv.Get("total"),
			Marks:      qv.Get("marks"),
			Difficulty: qv.Get("difficulty"),
			Relax:      qv.Get("relax"),
		}
		if !validOr400(w, &q) {
			return
		}
		mode, _ := paper.ParseMode(q.Marks)
		req := paper.Request{
			Standard:   q.Standard,
			Subject:    q.Subject,
			Total:      paper.ParseTotal(q.Total),
			Marks:      mode,
			Difficulty: q.Difficulty,
		}

		var g paper.Generator = gen
		if q.Relax == "1" || q.Relax == "true" {
			g = paper.Ladder{Gen: gen}
		}
		p, err := g.Assemble(r.Context(), req)
		switch {
		case err == nil, errors.Is(err, paper.ErrNoQuestions):
		case errors.Is(err, paper.ErrInvalidDataset):
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		case errors.Is(err, fs.ErrNotExist):
			http.Error(w, "no question bank for "+req.Standard+"/"+req.Subject, http.StatusNotFound)
			return
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		default:
			log.Error("mock paper failed", "standard", req.Standard, "subject", req.Subject, "err", err)
			http.Error(w, "failed to build mock paper", http.StatusInternalServerError)
			return
		}
		respondJSON(w, http.StatusOK, p)
	}
}

// GET /api/mock/subjects
func MockSubjectsHandler(bank fs.FS) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cat, err := paper.ReadCatalog(bank)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		respondJSON(w, http.StatusOK, cat)
	}
}
