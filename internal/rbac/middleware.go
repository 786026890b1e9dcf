package rbac

import (
	"net/http"
)

var defaultChecker = NewChecker(nil)

func guard(allow func(role string, r *http.Request) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !allow(RoleFromContext(r.Context()), r) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Require enforces a single permission.
func Require(perm string) func(http.Handler) http.Handler {
	return guard(func(role string, _ *http.Request) bool {
		return role != "" && defaultChecker.Has(role, perm)
	})
}

// RequireAny enforces that the role has at least one of the permissions.
func RequireAny(perms ...string) func(http.Handler) http.Handler {
	return guard(func(role string, _ *http.Request) bool {
		return role != "" && defaultChecker.Any(role, perms...)
	})
}

// RequireAll enforces that the role has all of the permissions.
func RequireAll(perms ...string) func(http.Handler) http.Handler {
	return guard(func(role string, _ *http.Request) bool {
		return role != "" && defaultChecker.All(role, perms...)
	})
}

// Can is the non-middleware form of Require, for handlers that branch on
// permissions (e.g. deleting own vs any note).
func Can(r *http.Request, perm string) bool {
	role := RoleFromContext(r.Context())
	return role != "" && defaultChecker.Has(role, perm)
}
