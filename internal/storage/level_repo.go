package storage

import (
	"context"
	"database/sql"
	"fmt"
)

const levelStateKey = "main"

// LevelRepo persists the singleton LevelState row and the append-only
// XP event log.
type LevelRepo struct {
	db *sql.DB
}

func NewLevelRepo(db *sql.DB) *LevelRepo {
	return &LevelRepo{db: db}
}

// GetState returns the persisted level state with the full event
// history attached, or nil when no state has been saved yet.
func (r *LevelRepo) GetState(ctx context.Context) (*LevelState, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT total_xp, level, streak_days, longest_streak
		FROM level_state
		WHERE key = ?
	`, levelStateKey)

	var s LevelState
	if err := row.Scan(&s.TotalXP, &s.Level, &s.StreakDays, &s.LongestStreak); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("level state get: %w", err)
	}

	events, err := r.ListEvents(ctx)
	if err != nil {
		return nil, err
	}
	s.Events = events
	return &s, nil
}

func (r *LevelRepo) SaveState(ctx context.Context, s LevelState) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO level_state (key, total_xp, level, streak_days, longest_streak)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET total_xp = excluded.total_xp,
			level = excluded.level,
			streak_days = excluded.streak_days,
			longest_streak = excluded.longest_streak
	`, levelStateKey, s.TotalXP, s.Level, s.StreakDays, s.LongestStreak)
	if err != nil {
		return fmt.Errorf("level state save: %w", err)
	}
	return nil
}

// AppendEvent inserts a new XP event. The log is append-only: a
// duplicate id is an error, never an overwrite.
func (r *LevelRepo) AppendEvent(ctx context.Context, e XPEvent) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO xp_events (id, task_id, minutes, priority_weight, category_multiplier, timestamp, xp)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.TaskID, e.Minutes, e.PriorityWeight, e.CategoryMultiplier, e.Timestamp, e.XP)
	if err != nil {
		return fmt.Errorf("xp event append: %w", err)
	}
	return nil
}

func (r *LevelRepo) ListEvents(ctx context.Context) ([]XPEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, task_id, minutes, priority_weight, category_multiplier, timestamp, xp
		FROM xp_events
		ORDER BY timestamp ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("xp event list: %w", err)
	}
	defer rows.Close()

	var out []XPEvent
	for rows.Next() {
		var e XPEvent
		var taskID sql.NullString
		if err := rows.Scan(&e.ID, &taskID, &e.Minutes, &e.PriorityWeight, &e.CategoryMultiplier, &e.Timestamp, &e.XP); err != nil {
			return nil, fmt.Errorf("xp event scan: %w", err)
		}
		if taskID.Valid {
			v := taskID.String
			e.TaskID = &v
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("xp event rows: %w", err)
	}
	return out, nil
}
