package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mind-engage/studyhub/internal/accounts"
	"github.com/mind-engage/studyhub/internal/rbac"
)

func TestIssueAndParse(t *testing.T) {
	a := NewAuthService("k", time.Hour)
	tok, err := a.IssueJWT("u1", "student", "Asha")
	if err != nil {
		t.Fatal(err)
	}
	c, err := a.Parse(tok)
	if err != nil {
		t.Fatal(err)
	}
	if c.Sub != "u1" || c.Role != "student" || c.Name != "Asha" {
		t.Fatalf("claims = %+v", c)
	}

	if _, err := NewAuthService("other", time.Hour).Parse(tok); err == nil {
		t.Error("token signed with a different key was accepted")
	}
}

func TestExpiredToken(t *testing.T) {
	a := NewAuthService("k", time.Minute)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return base }
	tok, _ := a.IssueJWT("u1", "student", "")
	a.now = func() time.Time { return base.Add(2 * time.Minute) }
	if _, err := a.Parse(tok); err == nil {
		t.Fatal("expired token accepted")
	}
}

func TestJWTMiddlewareSetsContext(t *testing.T) {
	a := NewAuthService("k", time.Hour)
	tok, _ := a.IssueJWT("u1", "teacher", "")

	var sub, role, name string
	h := JWTMiddleware(a)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sub = SubjectFromContext(r.Context())
		role = rbac.RoleFromContext(r.Context())
		name = NameFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || sub != "u1" || role != "teacher" || name != "u1" {
		t.Fatalf("code=%d sub=%q role=%q name=%q", rec.Code, sub, role, name)
	}

	for _, hdr := range []string{"", "Bearer nope", "Basic abc"} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if hdr != "" {
			req.Header.Set("Authorization", hdr)
		}
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("header %q: status %d", hdr, rec.Code)
		}
	}
}

type fakeRoles map[string]string

func (f fakeRoles) RoleOf(_ context.Context, id string) (string, error) {
	if id == "broken" {
		return "", errors.New("db down")
	}
	r, ok := f[id]
	if !ok {
		return "", accounts.ErrNotFound
	}
	return r, nil
}

func TestAttachRoleFromDB(t *testing.T) {
	roles := fakeRoles{"u1": "teacher"}
	cases := []struct {
		sub, claim string
		fallback   bool
		wantCode   int
		wantRole   string
	}{
		{"u1", "student", false, http.StatusOK, "teacher"},
		{"ghost", "student", true, http.StatusOK, "student"},
		{"ghost", "student", false, http.StatusForbidden, ""},
		{"broken", "student", true, http.StatusOK, "student"},
		{"broken", "student", false, http.StatusForbidden, ""},
	}
	for _, tc := range cases {
		var got string
		h := AttachRoleFromDB(roles, tc.fallback, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = rbac.RoleFromContext(r.Context())
		}))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		ctx := rbac.WithRole(WithSubject(req.Context(), tc.sub), tc.claim)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req.WithContext(ctx))
		if rec.Code != tc.wantCode || got != tc.wantRole {
			t.Errorf("%+v: code=%d role=%q", tc, rec.Code, got)
		}
	}
}
