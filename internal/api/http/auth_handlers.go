package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/mind-engage/studyhub/internal/accounts"
	authmw "github.com/mind-engage/studyhub/internal/auth/middleware"
	"github.com/mind-engage/studyhub/internal/logger"
)

// AccountStore is what the auth handlers need from the accounts package.
type AccountStore interface {
	Signup(ctx context.Context, username, password, displayName string) (accounts.Account, error)
	Authenticate(ctx context.Context, username, password string) (accounts.Account, error)
	ChangePassword(ctx context.Context, id, oldPassword, newPassword string) error
	Get(ctx context.Context, id string) (accounts.Account, error)
}

type signupReq struct {
	Username    string `json:"username" validate:"required,notblank,min=3,max=64"`
	Password    string `json:"password" validate:"required,min=6,max=128"`
	DisplayName string `json:"display_name" validate:"max=100"`
}

type loginReq struct {
	Username string `json:"username" validate:"required,notblank"`
	Password string `json:"password" validate:"required"`
}

type tokenResp struct {
	AccessToken string           `json:"access_token"`
	Account     accounts.Account `json:"account"`
}

func issue(w http.ResponseWriter, a *authmw.AuthService, acct accounts.Account, status int) {
	tok, err := a.IssueJWT(acct.ID, acct.Role, acct.Name())
	if err != nil {
		http.Error(w, "issue token", http.StatusInternalServerError)
		return
	}
	respondJSON(w, status, tokenResp{AccessToken: tok, Account: acct})
}

// POST /auth/signup
func SignupHandler(store AccountStore, a *authmw.AuthService, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req signupReq
		if !decodeAndValidate(w, r, &req) {
			return
		}
		acct, err := store.Signup(r.Context(), req.Username, req.Password, req.DisplayName)
		switch {
		case errors.Is(err, accounts.ErrUsernameTaken), errors.Is(err, accounts.ErrNameTaken):
			http.Error(w, err.Error(), http.StatusConflict)
			return
		case err != nil:
			log.Error("signup failed", "username", req.Username, "err", err)
			http.Error(w, "signup failed", http.StatusInternalServerError)
			return
		}
		log.Info("account created", "id", acct.ID, "username", acct.Username)
		issue(w, a, acct, http.StatusCreated)
	}
}

// POST /auth/login
func LoginHandler(store AccountStore, a *authmw.AuthService, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginReq
		if !decodeAndValidate(w, r, &req) {
			return
		}
		acct, err := store.Authenticate(r.Context(), req.Username, req.Password)
		switch {
		case errors.Is(err, accounts.ErrInvalidCredentials):
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		case err != nil:
			log.Error("login failed", "username", req.Username, "err", err)
			http.Error(w, "login failed", http.StatusInternalServerError)
			return
		}
		issue(w, a, acct, http.StatusOK)
	}
}

// GET /auth/me
func MeHandler(store AccountStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		acct, err := store.Get(r.Context(), authmw.SubjectFromContext(r.Context()))
		if errors.Is(err, accounts.ErrNotFound) {
			http.Error(w, "account not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		respondJSON(w, http.StatusOK, acct)
	}
}

type changePasswordReq struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6,max=128"`
}

// POST /users/change-password
func ChangePasswordHandler(store AccountStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := authmw.SubjectFromContext(r.Context())
		if userID == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		var req changePasswordReq
		if !decodeAndValidate(w, r, &req) {
			return
		}
		err := store.ChangePassword(r.Context(), userID, req.OldPassword, req.NewPassword)
		switch {
		case errors.Is(err, accounts.ErrNotFound):
			http.Error(w, "user not found", http.StatusNotFound)
		case errors.Is(err, accounts.ErrInvalidCredentials):
			http.Error(w, "incorrect old password", http.StatusForbidden)
		case err != nil:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusNoContent)
		}
	}
}
