package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/mind-engage/studyhub/internal/accounts"
	"github.com/mind-engage/studyhub/internal/logger"
	"github.com/mind-engage/studyhub/internal/rbac"
)

type RoleLookup interface {
	RoleOf(ctx context.Context, id string) (string, error)
}

// AttachRoleFromDB replaces the claimed role with the stored one so a role
// change takes effect before the token expires. allowClaimFallback=true in
// offline mode keeps tokens for unknown subjects working; in online mode
// they are refused.
func AttachRoleFromDB(roles RoleLookup, allowClaimFallback bool, log *logger.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = logger.Nop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			sub := SubjectFromContext(ctx)
			claimRole := rbac.RoleFromContext(ctx)

			role, err := roles.RoleOf(ctx, sub)
			switch {
			case err == nil && role != "":
				next.ServeHTTP(w, r.WithContext(rbac.WithRole(ctx, role)))
			case allowClaimFallback && claimRole != "":
				if !errors.Is(err, accounts.ErrNotFound) {
					log.Warn("role lookup failed, using token claim", "sub", sub, "err", err)
				}
				next.ServeHTTP(w, r)
			default:
				http.Error(w, "forbidden", http.StatusForbidden)
			}
		})
	}
}
