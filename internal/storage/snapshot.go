package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// Snapshot is the full-backup wire format. Collections are flat; the
// goal hierarchy is reconstructed from parent ids on import.
type Snapshot struct {
	Visions      []Vision      `json:"visions"`
	Priorities   []Priority    `json:"priorities"`
	Projects     []Project     `json:"projects"`
	Milestones   []Milestone   `json:"milestones"`
	Tasks        []Task        `json:"tasks"`
	DailyPlans   []DailyPlan   `json:"dailyPlans"`
	LevelState   *LevelState   `json:"levelState,omitempty"`
	XPEvents     []XPEvent     `json:"xpEvents"`
	Achievements []Achievement `json:"achievements"`
}

// ExportSnapshot reads every record kind into a Snapshot. A snapshot
// must round-trip through ImportSnapshot without loss.
func ExportSnapshot(ctx context.Context, db *sql.DB) (*Snapshot, error) {
	goals := NewGoalRepo(db)
	plans := NewPlanRepo(db)
	levels := NewLevelRepo(db)
	achievements := NewAchievementRepo(db)

	snap := &Snapshot{}
	var err error

	if snap.Visions, err = goals.ListVisions(ctx); err != nil {
		return nil, err
	}
	if snap.Priorities, err = goals.ListPriorities(ctx); err != nil {
		return nil, err
	}

	projects, err := goals.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range projects {
		for _, m := range p.Milestones {
			snap.Tasks = append(snap.Tasks, m.Tasks...)
			m.Tasks = nil
			snap.Milestones = append(snap.Milestones, m)
		}
		p.Milestones = nil
		snap.Projects = append(snap.Projects, p)
	}

	if snap.DailyPlans, err = plans.ListAll(ctx); err != nil {
		return nil, err
	}
	if snap.LevelState, err = levels.GetState(ctx); err != nil {
		return nil, err
	}
	if snap.LevelState != nil {
		// Events live in their own collection; do not duplicate them
		// inside the state record.
		snap.LevelState.Events = nil
	}
	if snap.XPEvents, err = levels.ListEvents(ctx); err != nil {
		return nil, err
	}
	if snap.Achievements, err = achievements.List(ctx); err != nil {
		return nil, err
	}
	return snap, nil
}

// ImportSnapshot writes every collection of the snapshot in a single
// transaction. Existing records with matching ids are overwritten.
func ImportSnapshot(ctx context.Context, db *sql.DB, snap *Snapshot) error {
	return WithTx(ctx, db, func(tx *sql.Tx) error {
		for _, v := range snap.Visions {
			if _, err := tx.ExecContext(ctx, `
				INSERT OR REPLACE INTO visions (id, title, description, horizon_years, created_at)
				VALUES (?, ?, ?, ?, ?)
			`, v.ID, v.Title, v.Description, v.HorizonYears, v.CreatedAt); err != nil {
				return fmt.Errorf("import vision: %w", err)
			}
		}
		for _, p := range snap.Priorities {
			if _, err := tx.ExecContext(ctx, `
				INSERT OR REPLACE INTO priorities (id, vision_id, title, weight, created_at)
				VALUES (?, ?, ?, ?, ?)
			`, p.ID, p.VisionID, p.Title, p.Weight, p.CreatedAt); err != nil {
				return fmt.Errorf("import priority: %w", err)
			}
		}
		for _, p := range snap.Projects {
			if _, err := tx.ExecContext(ctx, `
				INSERT OR REPLACE INTO projects (id, priority_id, title, category, description, created_at)
				VALUES (?, ?, ?, ?, ?, ?)
			`, p.ID, p.PriorityID, p.Title, p.Category, p.Description, p.CreatedAt); err != nil {
				return fmt.Errorf("import project: %w", err)
			}
		}
		for _, m := range snap.Milestones {
			if _, err := tx.ExecContext(ctx, `
				INSERT OR REPLACE INTO milestones (id, project_id, title, target_date, position, created_at)
				VALUES (?, ?, ?, ?, ?, ?)
			`, m.ID, m.ProjectID, m.Title, m.TargetDate, m.Position, m.CreatedAt); err != nil {
				return fmt.Errorf("import milestone: %w", err)
			}
		}
		for _, t := range snap.Tasks {
			if _, err := tx.ExecContext(ctx, `
				INSERT OR REPLACE INTO tasks (id, milestone_id, title, estimate_minutes, completed_at, score, position, created_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			`, t.ID, t.MilestoneID, t.Title, t.EstimateMinutes, t.CompletedAt, t.Score, t.Position, t.CreatedAt); err != nil {
				return fmt.Errorf("import task: %w", err)
			}
		}
		for _, plan := range snap.DailyPlans {
			data, err := marshalPlanEntries(plan.Tasks)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT OR REPLACE INTO daily_plans (date, tasks, created_at)
				VALUES (?, ?, ?)
			`, plan.Date, data, plan.CreatedAt); err != nil {
				return fmt.Errorf("import plan: %w", err)
			}
		}
		if s := snap.LevelState; s != nil {
			if _, err := tx.ExecContext(ctx, `
				INSERT OR REPLACE INTO level_state (key, total_xp, level, streak_days, longest_streak)
				VALUES (?, ?, ?, ?, ?)
			`, levelStateKey, s.TotalXP, s.Level, s.StreakDays, s.LongestStreak); err != nil {
				return fmt.Errorf("import level state: %w", err)
			}
		}
		for _, e := range snap.XPEvents {
			// OR IGNORE keeps the log append-only: an event id that is
			// already present is never overwritten.
			if _, err := tx.ExecContext(ctx, `
				INSERT OR IGNORE INTO xp_events (id, task_id, minutes, priority_weight, category_multiplier, timestamp, xp)
				VALUES (?, ?, ?, ?, ?, ?, ?)
			`, e.ID, e.TaskID, e.Minutes, e.PriorityWeight, e.CategoryMultiplier, e.Timestamp, e.XP); err != nil {
				return fmt.Errorf("import xp event: %w", err)
			}
		}
		for _, a := range snap.Achievements {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO achievements (id, title, description, unlocked_at)
				VALUES (?, ?, ?, ?)
				ON CONFLICT(id) DO UPDATE SET title = excluded.title,
					description = excluded.description,
					unlocked_at = COALESCE(achievements.unlocked_at, excluded.unlocked_at)
			`, a.ID, a.Title, a.Description, a.UnlockedAt); err != nil {
				return fmt.Errorf("import achievement: %w", err)
			}
		}
		return nil
	})
}
