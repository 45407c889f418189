package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

type Registry struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewRegistry(db *sqlx.DB) *Registry {
	return &Registry{
		db:  db,
		now: time.Now,
	}
}

// Register records the user once. It reports whether the user is new; a user that is
// already registered is not an error, so two racing /start messages both succeed.
func (r *Registry) Register(ctx context.Context, userID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
	    INSERT INTO users (user_id, registered_at)
		VALUES (?, ?)
		ON CONFLICT (user_id) DO NOTHING
	`), userID, r.now().UTC())
	if err != nil {
		return false, fmt.Errorf("Registry.Register: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("Registry.Register: %w", err)
	}

	return n > 0, nil
}

func (r *Registry) ListAll(ctx context.Context) ([]int64, error) {
	var ids []int64

	err := r.db.SelectContext(ctx, &ids, `
	    SELECT user_id FROM users
		ORDER BY registered_at, user_id
	`)
	if err != nil {
		return nil, fmt.Errorf("Registry.ListAll: %w", err)
	}

	return ids, nil
}

func (r *Registry) Count(ctx context.Context) (int, error) {
	var n int

	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, fmt.Errorf("Registry.Count: %w", err)
	}

	return n, nil
}
