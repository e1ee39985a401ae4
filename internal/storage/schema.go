package storage

import (
	"context"
	"database/sql"
	"fmt"
)

func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS visions (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT,
			horizon_years INTEGER NOT NULL DEFAULT 1,
			created_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS priorities (
			id TEXT PRIMARY KEY,
			vision_id TEXT NOT NULL,
			title TEXT NOT NULL,
			weight REAL NOT NULL DEFAULT 0.5,
			created_at INTEGER NOT NULL,
			FOREIGN KEY(vision_id) REFERENCES visions(id)
		);`,
		`CREATE TABLE IF NOT EXISTS projects (
			id TEXT PRIMARY KEY,
			priority_id TEXT NOT NULL,
			title TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT 'other',
			description TEXT,
			created_at INTEGER NOT NULL,
			FOREIGN KEY(priority_id) REFERENCES priorities(id)
		);`,
		`CREATE TABLE IF NOT EXISTS milestones (
			id TEXT PRIMARY KEY,
			project_id TEXT NOT NULL,
			title TEXT NOT NULL,
			target_date INTEGER,
			position INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL,
			FOREIGN KEY(project_id) REFERENCES projects(id)
		);`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			milestone_id TEXT NOT NULL,
			title TEXT NOT NULL,
			estimate_minutes INTEGER,
			completed_at INTEGER,
			score REAL,
			position INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL,
			FOREIGN KEY(milestone_id) REFERENCES milestones(id)
		);`,
		// Plan entries are a small ordered list; stored as a JSON
		// column and replaced wholesale with the plan row.
		`CREATE TABLE IF NOT EXISTS daily_plans (
			date TEXT PRIMARY KEY,
			tasks TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS level_state (
			key TEXT PRIMARY KEY,
			total_xp INTEGER NOT NULL DEFAULT 0,
			level INTEGER NOT NULL DEFAULT 1,
			streak_days INTEGER NOT NULL DEFAULT 0,
			longest_streak INTEGER NOT NULL DEFAULT 0
		);`,
		// Append-only; rows are never updated or deleted.
		`CREATE TABLE IF NOT EXISTS xp_events (
			id TEXT PRIMARY KEY,
			task_id TEXT,
			minutes INTEGER NOT NULL,
			priority_weight REAL NOT NULL,
			category_multiplier REAL NOT NULL,
			timestamp INTEGER NOT NULL,
			xp INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS achievements (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT NOT NULL,
			unlocked_at INTEGER
		);`,
		`CREATE INDEX IF NOT EXISTS idx_priorities_vision_id ON priorities(vision_id);`,
		`CREATE INDEX IF NOT EXISTS idx_projects_priority_id ON projects(priority_id);`,
		`CREATE INDEX IF NOT EXISTS idx_milestones_project_id ON milestones(project_id);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_milestone_id ON tasks(milestone_id);`,
		`CREATE INDEX IF NOT EXISTS idx_xp_events_timestamp ON xp_events(timestamp);`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
