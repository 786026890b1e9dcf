package rewards

import (
	"context"
	"database/sql"
)

const (
	KindAward  = "award"
	KindRedeem = "redeem"
)

// Event is one balance change. Amount is signed: awards are positive,
// redemptions negative. Offset increases monotonically per database.
type Event struct {
	Offset      int64  `json:"offset"`
	StudentName string `json:"student_name"`
	Kind        string `json:"kind"`
	Amount      int64  `json:"amount"`
	Ref         string `json:"ref"`
	CreatedAt   int64  `json:"created_at"`
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func appendEvent(ctx context.Context, x execer, e Event) error {
	_, err := x.ExecContext(ctx,
		`INSERT INTO token_events (student_name, kind, amount, ref, created_at) VALUES ($1,$2,$3,$4,$5)`,
		e.StudentName, e.Kind, e.Amount, e.Ref, e.CreatedAt)
	return err
}

// History returns a student's balance changes, newest first.
func (s *SQLStore) History(ctx context.Context, student string, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, student_name, kind, amount, ref, created_at FROM token_events
WHERE student_name=$1 ORDER BY id DESC LIMIT $2`, student, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Event{}
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.Offset, &e.StudentName, &e.Kind, &e.Amount, &e.Ref, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
