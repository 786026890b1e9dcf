package notes

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/mind-engage/studyhub/internal/rewards"
)

type Store interface {
	Create(ctx context.Context, n Note) error
	Get(ctx context.Context, id string) (Note, error)
	ListByStatus(ctx context.Context, status string) ([]Note, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Note, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context, since time.Time) (Stats, error)
	Approve(ctx context.Context, id, teacher string, award int64) (Note, error)
	Reject(ctx context.Context, id, teacher, reason string) (Note, error)
}

// Awarder credits tokens inside a note review transaction.
type Awarder interface {
	AwardTx(ctx context.Context, tx *sql.Tx, student string, amount int64, ref string) (rewards.Account, error)
}

type SQLStore struct {
	db      *sql.DB
	awarder Awarder
	now     func() time.Time
}

func NewSQLStore(db *sql.DB, awarder Awarder) *SQLStore {
	return &SQLStore{db: db, awarder: awarder, now: time.Now}
}

const noteCols = `id, title, type, size, upload_date, summary, category, file_url, file_name, student,
owner_id, status, verified_by, verified_at, rejection_reason, created_at, updated_at`

type scanner interface{ Scan(dest ...any) error }

func scanNote(sc scanner) (Note, error) {
	var (
		n          Note
		by, reason sql.NullString
		at         sql.NullInt64
	)
	err := sc.Scan(&n.ID, &n.Title, &n.Type, &n.Size, &n.UploadDate, &n.Summary, &n.Category,
		&n.FileURL, &n.FileName, &n.Student, &n.OwnerID, &n.Status, &by, &at, &reason,
		&n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return Note{}, err
	}
	if by.Valid {
		n.VerifiedBy = &by.String
	}
	if at.Valid {
		n.VerifiedAt = &at.Int64
	}
	if reason.Valid {
		n.RejectionReason = &reason.String
	}
	return n, nil
}

func (s *SQLStore) Create(ctx context.Context, n Note) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO notes (`+noteCols+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`,
		n.ID, n.Title, n.Type, n.Size, n.UploadDate, n.Summary, n.Category, n.FileURL, n.FileName,
		n.Student, n.OwnerID, n.Status, n.VerifiedBy, n.VerifiedAt, n.RejectionReason,
		n.CreatedAt, n.UpdatedAt)
	return err
}

func (s *SQLStore) Get(ctx context.Context, id string) (Note, error) {
	n, err := scanNote(s.db.QueryRowContext(ctx, `SELECT `+noteCols+` FROM notes WHERE id=$1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Note{}, ErrNotFound
	}
	return n, err
}

func (s *SQLStore) list(ctx context.Context, where string, arg any) ([]Note, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+noteCols+` FROM notes WHERE `+where+`=$1 ORDER BY created_at DESC, id DESC`, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// ListByStatus returns notes with the given status, newest first.
func (s *SQLStore) ListByStatus(ctx context.Context, status string) ([]Note, error) {
	return s.list(ctx, "status", status)
}

func (s *SQLStore) ListByOwner(ctx context.Context, ownerID string) ([]Note, error) {
	return s.list(ctx, "owner_id", ownerID)
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM notes WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) Stats(ctx context.Context, since time.Time) (Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx, `
SELECT
  COALESCE(SUM(CASE WHEN status='pending' THEN 1 ELSE 0 END), 0),
  COALESCE(SUM(CASE WHEN status='approved' AND verified_at >= $1 THEN 1 ELSE 0 END), 0),
  COALESCE(SUM(CASE WHEN status='rejected' AND verified_at >= $1 THEN 1 ELSE 0 END), 0)
FROM notes`, since.Unix()).Scan(&st.Pending, &st.ApprovedToday, &st.RejectedToday)
	return st, err
}

// review moves a pending note to a final status. The status check is part
// of the UPDATE so only one reviewer wins. then, if set, runs in the same
// transaction.
func (s *SQLStore) review(ctx context.Context, id, status, teacher string, reason *string, then func(*sql.Tx, Note) error) (Note, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Note{}, err
	}
	defer tx.Rollback()

	now := s.now().Unix()
	res, err := tx.ExecContext(ctx, `
UPDATE notes SET status=$1, verified_by=$2, verified_at=$3, rejection_reason=$4, updated_at=$3
WHERE id=$5 AND status='pending'`, status, teacher, now, reason, id)
	if err != nil {
		return Note{}, err
	}
	changed, err := res.RowsAffected()
	if err != nil {
		return Note{}, err
	}
	n, err := scanNote(tx.QueryRowContext(ctx, `SELECT `+noteCols+` FROM notes WHERE id=$1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Note{}, ErrNotFound
	}
	if err != nil {
		return Note{}, err
	}
	if changed == 0 {
		return Note{}, ErrNotPending
	}
	if then != nil {
		if err := then(tx, n); err != nil {
			return Note{}, err
		}
	}
	return n, tx.Commit()
}

// Approve marks a pending note approved and credits award tokens to its
// student in one transaction.
func (s *SQLStore) Approve(ctx context.Context, id, teacher string, award int64) (Note, error) {
	return s.review(ctx, id, StatusApproved, teacher, nil, func(tx *sql.Tx, n Note) error {
		if s.awarder == nil || award <= 0 {
			return nil
		}
		student := n.Student
		if student == "" {
			student = DefaultStudent
		}
		_, err := s.awarder.AwardTx(ctx, tx, student, award, n.ID)
		return err
	})
}

func (s *SQLStore) Reject(ctx context.Context, id, teacher, reason string) (Note, error) {
	return s.review(ctx, id, StatusRejected, teacher, &reason, nil)
}
