package accounts

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = bcrypt.DefaultCost

type SQLStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db, now: time.Now}
}

// Signup creates a student account.
func (s *SQLStore) Signup(ctx context.Context, username, password, displayName string) (Account, error) {
	return s.create(ctx, username, password, displayName, RoleStudent)
}

func (s *SQLStore) create(ctx context.Context, username, password, displayName, role string) (Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return Account{}, err
	}
	return s.insert(ctx, username, string(hash), displayName, role)
}

func (s *SQLStore) insert(ctx context.Context, username, hash, displayName, role string) (Account, error) {
	a := Account{
		ID:           uuid.NewString(),
		Username:     strings.TrimSpace(username),
		DisplayName:  strings.TrimSpace(displayName),
		Role:         role,
		PasswordHash: hash,
		CreatedAt:    s.now().Unix(),
	}
	if _, err := s.GetByUsername(ctx, a.Username); err == nil {
		return Account{}, ErrUsernameTaken
	} else if !errors.Is(err, ErrNotFound) {
		return Account{}, err
	}
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM accounts WHERE name_key=$1`, a.nameKey()).Scan(&n); err != nil {
		return Account{}, err
	}
	if n > 0 {
		return Account{}, ErrNameTaken
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO accounts (id, username, display_name, name_key, password_hash, role, created_at) VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		a.ID, a.Username, a.DisplayName, a.nameKey(), a.PasswordHash, a.Role, a.CreatedAt)
	if err != nil {
		return Account{}, err
	}
	return a, nil
}

// EnsureAdmin creates the bootstrap admin with a pre-hashed password if no
// account with that username exists yet. created reports whether it did.
func (s *SQLStore) EnsureAdmin(ctx context.Context, username, passHash string) (created bool, err error) {
	if username == "" || passHash == "" {
		return false, nil
	}
	if _, err := s.GetByUsername(ctx, username); err == nil {
		return false, nil
	} else if !errors.Is(err, ErrNotFound) {
		return false, err
	}
	if _, err := s.insert(ctx, username, passHash, username, RoleAdmin); err != nil {
		return false, err
	}
	return true, nil
}

// Authenticate checks a username/password pair.
func (s *SQLStore) Authenticate(ctx context.Context, username, password string) (Account, error) {
	a, err := s.GetByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, ErrNotFound) {
		return Account{}, ErrInvalidCredentials
	}
	if err != nil {
		return Account{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) != nil {
		return Account{}, ErrInvalidCredentials
	}
	return a, nil
}

func (s *SQLStore) ChangePassword(ctx context.Context, id, oldPassword, newPassword string) error {
	a, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(oldPassword)) != nil {
		return ErrInvalidCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `UPDATE accounts SET password_hash=$1 WHERE id=$2`, string(hash), id)
	return err
}

func (s *SQLStore) Get(ctx context.Context, id string) (Account, error) {
	return s.scanOne(s.db.QueryRowContext(ctx,
		`SELECT id, username, display_name, password_hash, role, created_at FROM accounts WHERE id=$1`, id))
}

func (s *SQLStore) GetByUsername(ctx context.Context, username string) (Account, error) {
	return s.scanOne(s.db.QueryRowContext(ctx,
		`SELECT id, username, display_name, password_hash, role, created_at FROM accounts WHERE username=$1`, username))
}

func (s *SQLStore) scanOne(row *sql.Row) (Account, error) {
	var a Account
	if err := row.Scan(&a.ID, &a.Username, &a.DisplayName, &a.PasswordHash, &a.Role, &a.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Account{}, ErrNotFound
		}
		return Account{}, err
	}
	return a, nil
}

// RoleOf returns the stored role for an account id.
func (s *SQLStore) RoleOf(ctx context.Context, id string) (string, error) {
	var role string
	err := s.db.QueryRowContext(ctx, `SELECT role FROM accounts WHERE id=$1`, id).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return role, err
}

// SetRole changes an account's role. The last admin cannot be demoted.
func (s *SQLStore) SetRole(ctx context.Context, id, role string) error {
	role = strings.ToLower(strings.TrimSpace(role))
	if !ValidRole(role) {
		return ErrInvalidRole
	}
	cur, err := s.RoleOf(ctx, id)
	if err != nil {
		return err
	}
	if cur == RoleAdmin && role != RoleAdmin {
		var admins int
		if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM accounts WHERE role='admin'`).Scan(&admins); err != nil {
			return err
		}
		if admins <= 1 {
			return ErrLastAdmin
		}
	}
	_, err = s.db.ExecContext(ctx, `UPDATE accounts SET role=$1 WHERE id=$2`, role, id)
	return err
}
