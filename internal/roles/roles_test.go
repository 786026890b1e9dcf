package roles

import (
	"context"
	"errors"
	"testing"

	"github.com/mind-engage/studyhub/internal/accounts"
	"github.com/mind-engage/studyhub/internal/db/dbtest"
)

func setup(t *testing.T) (*Service, *accounts.SQLStore, accounts.Account) {
	t.Helper()
	db := dbtest.Open(t)
	acc := accounts.NewSQLStore(db)
	a, err := acc.Signup(context.Background(), "asha", "pw", "")
	if err != nil {
		t.Fatal(err)
	}
	return NewService(db, acc), acc, a
}

func TestSubmitUpsertsOnePerUser(t *testing.T) {
	ctx := context.Background()
	s, _, a := setup(t)

	if _, err := s.Submit(ctx, a.ID, a.Username, "principal", ""); !errors.Is(err, ErrBadTarget) {
		t.Fatalf("bad target err = %v", err)
	}
	if _, err := s.Submit(ctx, a.ID, a.Username, "teacher", "I teach maths"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Submit(ctx, a.ID, a.Username, "Admin", "run the school"); err != nil {
		t.Fatal(err)
	}
	got, err := s.Pending(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].TargetRole != "admin" || got[0].Reason != "run the school" {
		t.Fatalf("pending = %+v", got)
	}
}

func TestApproveAndReject(t *testing.T) {
	ctx := context.Background()
	s, acc, a := setup(t)
	s.Submit(ctx, a.ID, a.Username, "teacher", "")

	role, err := s.Approve(ctx, a.ID, "")
	if err != nil || role != "teacher" {
		t.Fatalf("Approve = %q, %v", role, err)
	}
	if r, _ := acc.RoleOf(ctx, a.ID); r != "teacher" {
		t.Fatalf("role = %q", r)
	}
	if p, _ := s.Pending(ctx); len(p) != 0 {
		t.Fatalf("pending after approve = %+v", p)
	}

	if err := s.DefaultStudent(ctx, a.ID); err != nil {
		t.Fatal(err)
	}
	if r, _ := acc.RoleOf(ctx, a.ID); r != "student" {
		t.Fatalf("role after reset = %q", r)
	}

	s.Submit(ctx, a.ID, a.Username, "admin", "")
	if err := s.Reject(ctx, a.ID); err != nil {
		t.Fatal(err)
	}
	if r, _ := acc.RoleOf(ctx, a.ID); r != "student" {
		t.Errorf("reject changed role to %q", r)
	}
	if err := s.Reject(ctx, "ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("reject ghost err = %v", err)
	}
	if _, err := s.Approve(ctx, "ghost", ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("approve ghost err = %v", err)
	}
	if _, err := s.Approve(ctx, "ghost", "teacher"); !errors.Is(err, accounts.ErrNotFound) {
		t.Errorf("approve unknown account err = %v", err)
	}
}
