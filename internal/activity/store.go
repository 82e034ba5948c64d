package activity

import (
	"context"

	"github.com/ariefcatur/go-retail-backoffice/internal/database"
)

// Store writes entries to the activity_logs table.
type Store struct{ DB database.Querier }

func (s *Store) Record(ctx context.Context, e Entry) error {
	// ON CONFLICT: event yang sama bisa datang dua kali dari consumer
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO activity_logs(id, user_id, action, detail, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING`,
		e.ID, e.UserID, e.Action, e.Detail, e.CreatedAt)
	return err
}

func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, user_id, action, detail, created_at
		FROM activity_logs ORDER BY created_at DESC, id LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Action, &e.Detail, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
