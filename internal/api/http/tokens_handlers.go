package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	authmw "github.com/mind-engage/studyhub/internal/auth/middleware"
	"github.com/mind-engage/studyhub/internal/logger"
	"github.com/mind-engage/studyhub/internal/rbac"
	"github.com/mind-engage/studyhub/internal/rewards"
)

type TokenStore interface {
	Balance(ctx context.Context, student string) (rewards.Account, error)
	Leaderboard(ctx context.Context, limit int) ([]rewards.Account, error)
	Redeem(ctx context.Context, student, gift string, cost int64) (rewards.Redemption, error)
	History(ctx context.Context, student string, limit int) ([]rewards.Event, error)
	Catalog() rewards.Catalog
}

// students only see and spend the balance under their own account name,
// which is unique across accounts; tokens:view-all lifts that
func ownsBalance(r *http.Request, student string) bool {
	if rbac.Can(r, rbac.PermTokensViewAll) {
		return true
	}
	return strings.TrimSpace(student) == authmw.NameFromContext(r.Context())
}

// GET /api/user/tokens/{studentName}
func TokenBalanceHandler(store TokenStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimSpace(chi.URLParam(r, "studentName"))
		if name == "" {
			http.Error(w, "student name required", http.StatusBadRequest)
			return
		}
		if !ownsBalance(r, name) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		a, err := store.Balance(r.Context(), name)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		respondJSON(w, http.StatusOK, a)
	}
}

// GET /api/user/tokens/{studentName}/history
func TokenHistoryHandler(store TokenStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimSpace(chi.URLParam(r, "studentName"))
		if !ownsBalance(r, name) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		out, err := store.History(r.Context(), name, parseIntDefault(r.URL.Query().Get("limit"), 50))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		respondJSON(w, http.StatusOK, out)
	}
}

// GET /api/users/tokens
func LeaderboardHandler(store TokenStore, defaultLimit int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := parseIntDefault(r.URL.Query().Get("limit"), defaultLimit)
		if limit <= 0 || limit > defaultLimit {
			limit = defaultLimit
		}
		out, err := store.Leaderboard(r.Context(), limit)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		respondJSON(w, http.StatusOK, out)
	}
}

type redeemReq struct {
	StudentName string `json:"student_name" validate:"required,notblank,max=100"`
	Gift        string `json:"gift" validate:"required,notblank,max=100"`
	Cost        int64  `json:"cost" validate:"required,gt=0"`
}

// POST /api/user/redeem
func RedeemHandler(store TokenStore, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req redeemReq
		if !decodeAndValidate(w, r, &req) {
			return
		}
		// viewing rights never extend to spending
		if strings.TrimSpace(req.StudentName) != authmw.NameFromContext(r.Context()) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		out, err := store.Redeem(r.Context(), req.StudentName, req.Gift, req.Cost)
		switch {
		case errors.Is(err, rewards.ErrNotFound):
			http.Error(w, "user not found", http.StatusNotFound)
			return
		case errors.Is(err, rewards.ErrInsufficient), errors.Is(err, rewards.ErrBadRequest), errors.Is(err, rewards.ErrPriceChanged):
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		case err != nil:
			log.Error("redeem failed", "student", req.StudentName, "err", err)
			http.Error(w, "error redeeming tokens", http.StatusInternalServerError)
			return
		}
		log.Info("gift redeemed", "student", out.StudentName, "gift", out.RedeemedGift, "cost", out.Cost, "remaining", out.Tokens)
		respondJSON(w, http.StatusOK, map[string]any{
			"success":       true,
			"student_name":  out.StudentName,
			"tokens":        out.Tokens,
			"redeemed_gift": out.RedeemedGift,
			"cost":          out.Cost,
		})
	}
}

// GET /api/rewards/catalog
func CatalogHandler(store TokenStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, store.Catalog().List())
	}
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil && v >= 0 {
		return v
	}
	return def
}
