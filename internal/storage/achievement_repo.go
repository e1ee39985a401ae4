package storage

import (
	"context"
	"database/sql"
	"fmt"
)

type AchievementRepo struct {
	db *sql.DB
}

func NewAchievementRepo(db *sql.DB) *AchievementRepo {
	return &AchievementRepo{db: db}
}

func (r *AchievementRepo) List(ctx context.Context) ([]Achievement, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, description, unlocked_at
		FROM achievements
		ORDER BY unlocked_at ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("achievement list: %w", err)
	}
	defer rows.Close()

	var out []Achievement
	for rows.Next() {
		var a Achievement
		var unlocked sql.NullInt64
		if err := rows.Scan(&a.ID, &a.Title, &a.Description, &unlocked); err != nil {
			return nil, fmt.Errorf("achievement scan: %w", err)
		}
		if unlocked.Valid {
			v := unlocked.Int64
			a.UnlockedAt = &v
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("achievement rows: %w", err)
	}
	return out, nil
}

// SaveAll upserts achievements by id. An unlocked_at already present in
// the table is kept; unlocking is monotonic and the stamp is immutable.
func (r *AchievementRepo) SaveAll(ctx context.Context, list []Achievement) error {
	return WithTx(ctx, r.db, func(tx *sql.Tx) error {
		for _, a := range list {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO achievements (id, title, description, unlocked_at)
				VALUES (?, ?, ?, ?)
				ON CONFLICT(id) DO UPDATE SET title = excluded.title,
					description = excluded.description,
					unlocked_at = COALESCE(achievements.unlocked_at, excluded.unlocked_at)
			`, a.ID, a.Title, a.Description, a.UnlockedAt)
			if err != nil {
				return fmt.Errorf("achievement upsert: %w", err)
			}
		}
		return nil
	})
}
