// Package roles handles requests for elevated roles and their review.
package roles

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/mind-engage/studyhub/internal/accounts"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

var (
	ErrBadTarget = errors.New("target_role must be teacher or admin")
	ErrNotFound  = errors.New("role request not found")
)

type Request struct {
	UID         string `json:"uid"`
	Username    string `json:"username"`
	TargetRole  string `json:"target_role"`
	Reason      string `json:"reason"`
	Status      string `json:"status"`
	CreatedAt   int64  `json:"created_at"`
	ProcessedAt *int64 `json:"processed_at,omitempty"`
}

// RoleSetter is the slice of the account store this package needs.
type RoleSetter interface {
	SetRole(ctx context.Context, id, role string) error
}

type Service struct {
	db    *sql.DB
	roles RoleSetter
	now   func() time.Time
}

func NewService(db *sql.DB, roles RoleSetter) *Service {
	return &Service{db: db, roles: roles, now: time.Now}
}

// DefaultStudent resets the caller to the student role.
func (s *Service) DefaultStudent(ctx context.Context, uid string) error {
	return s.roles.SetRole(ctx, uid, accounts.RoleStudent)
}

// Submit files or replaces the caller's request. Each user has at most one.
func (s *Service) Submit(ctx context.Context, uid, username, target, reason string) (Request, error) {
	target = strings.ToLower(strings.TrimSpace(target))
	if target != accounts.RoleTeacher && target != accounts.RoleAdmin {
		return Request{}, ErrBadTarget
	}
	r := Request{
		UID:        uid,
		Username:   username,
		TargetRole: target,
		Reason:     strings.TrimSpace(reason),
		Status:     StatusPending,
		CreatedAt:  s.now().Unix(),
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO role_requests (uid, username, target_role, reason, status, created_at, processed_at)
VALUES ($1,$2,$3,$4,$5,$6,NULL)
ON CONFLICT (uid) DO UPDATE SET
  username = excluded.username,
  target_role = excluded.target_role,
  reason = excluded.reason,
  status = excluded.status,
  created_at = excluded.created_at,
  processed_at = NULL`,
		r.UID, r.Username, r.TargetRole, r.Reason, r.Status, r.CreatedAt)
	if err != nil {
		return Request{}, err
	}
	return r, nil
}

// Pending lists open requests, oldest first.
func (s *Service) Pending(ctx context.Context) ([]Request, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT uid, username, target_role, reason, status, created_at, processed_at
FROM role_requests WHERE status=$1 ORDER BY created_at ASC, uid ASC`, StatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Request{}
	for rows.Next() {
		var (
			r  Request
			at sql.NullInt64
		)
		if err := rows.Scan(&r.UID, &r.Username, &r.TargetRole, &r.Reason, &r.Status, &r.CreatedAt, &at); err != nil {
			return nil, err
		}
		if at.Valid {
			r.ProcessedAt = &at.Int64
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Approve grants role to uid and closes their request if one exists. An
// empty role means the role they asked for.
func (s *Service) Approve(ctx context.Context, uid, role string) (string, error) {
	if strings.TrimSpace(role) == "" {
		err := s.db.QueryRowContext(ctx, `SELECT target_role FROM role_requests WHERE uid=$1`, uid).Scan(&role)
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		if err != nil {
			return "", err
		}
	}
	if err := s.roles.SetRole(ctx, uid, role); err != nil {
		return "", err
	}
	if _, err := s.close(ctx, uid, StatusApproved); err != nil {
		return "", err
	}
	return strings.ToLower(strings.TrimSpace(role)), nil
}

func (s *Service) Reject(ctx context.Context, uid string) error {
	n, err := s.close(ctx, uid, StatusRejected)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) close(ctx context.Context, uid, status string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE role_requests SET status=$1, processed_at=$2 WHERE uid=$3`, status, s.now().Unix(), uid)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
