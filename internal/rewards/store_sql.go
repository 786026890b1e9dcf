package rewards

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

type SQLStore struct {
	db      *sql.DB
	catalog Catalog
	now     func() time.Time
}

func NewSQLStore(db *sql.DB, catalog Catalog) *SQLStore {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &SQLStore{db: db, catalog: catalog, now: time.Now}
}

func (s *SQLStore) Catalog() Catalog { return s.catalog }

const accountCols = `student_name, tokens, total_approved_notes, created_at, updated_at`

// Balance returns the student's account, creating an empty one on first use.
func (s *SQLStore) Balance(ctx context.Context, student string) (Account, error) {
	now := s.now().Unix()
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO token_accounts (`+accountCols+`) VALUES ($1,0,0,$2,$2) ON CONFLICT (student_name) DO NOTHING`,
		student, now); err != nil {
		return Account{}, err
	}
	return s.get(ctx, s.db, student)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *SQLStore) get(ctx context.Context, q queryer, student string) (Account, error) {
	var a Account
	err := q.QueryRowContext(ctx, `SELECT `+accountCols+` FROM token_accounts WHERE student_name=$1`, student).
		Scan(&a.StudentName, &a.Tokens, &a.TotalApprovedNotes, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Account{}, ErrNotFound
	}
	return a, err
}

// Leaderboard lists accounts by tokens, highest first.
func (s *SQLStore) Leaderboard(ctx context.Context, limit int) ([]Account, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+accountCols+` FROM token_accounts ORDER BY tokens DESC, student_name ASC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Account{}
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.StudentName, &a.Tokens, &a.TotalApprovedNotes, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// AwardTx credits tokens for one approved note inside the caller's
// transaction, creating the account if needed. ref names the note.
func (s *SQLStore) AwardTx(ctx context.Context, tx *sql.Tx, student string, amount int64, ref string) (Account, error) {
	now := s.now().Unix()
	_, err := tx.ExecContext(ctx, `
INSERT INTO token_accounts (`+accountCols+`) VALUES ($1,$2,1,$3,$3)
ON CONFLICT (student_name) DO UPDATE SET
  tokens = token_accounts.tokens + excluded.tokens,
  total_approved_notes = token_accounts.total_approved_notes + 1,
  updated_at = excluded.updated_at`, student, amount, now)
	if err != nil {
		return Account{}, err
	}
	if err := appendEvent(ctx, tx, Event{StudentName: student, Kind: KindAward, Amount: amount, Ref: ref, CreatedAt: now}); err != nil {
		return Account{}, err
	}
	return s.get(ctx, tx, student)
}

// Redeem spends tokens on a gift. The decrement only applies while the
// balance covers the cost, so concurrent redemptions cannot overdraw.
func (s *SQLStore) Redeem(ctx context.Context, student, gift string, cost int64) (Redemption, error) {
	student, gift = strings.TrimSpace(student), strings.TrimSpace(gift)
	if student == "" || gift == "" || cost <= 0 {
		return Redemption{}, ErrBadRequest
	}
	if price, ok := s.catalog.Price(gift); ok && price != cost {
		return Redemption{}, ErrPriceChanged
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Redemption{}, err
	}
	defer tx.Rollback()

	now := s.now().Unix()
	res, err := tx.ExecContext(ctx,
		`UPDATE token_accounts SET tokens = tokens - $1, updated_at = $2 WHERE student_name = $3 AND tokens >= $1`,
		cost, now, student)
	if err != nil {
		return Redemption{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return Redemption{}, err
	}
	a, err := s.get(ctx, tx, student)
	if err != nil {
		return Redemption{}, err
	}
	if n == 0 {
		return Redemption{}, ErrInsufficient
	}
	if err := appendEvent(ctx, tx, Event{StudentName: student, Kind: KindRedeem, Amount: -cost, Ref: gift, CreatedAt: now}); err != nil {
		return Redemption{}, err
	}
	if err := tx.Commit(); err != nil {
		return Redemption{}, err
	}
	return Redemption{StudentName: a.StudentName, Tokens: a.Tokens, RedeemedGift: gift, Cost: cost}, nil
}
