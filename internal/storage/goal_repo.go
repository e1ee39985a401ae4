package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// GoalRepo persists the goal hierarchy: visions, priorities, projects,
// milestones and tasks. Children reference parents by id only.
type GoalRepo struct {
	db *sql.DB
}

func NewGoalRepo(db *sql.DB) *GoalRepo {
	return &GoalRepo{db: db}
}

func (r *GoalRepo) UpsertVision(ctx context.Context, v Vision) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO visions (id, title, description, horizon_years, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET title = excluded.title,
			description = excluded.description,
			horizon_years = excluded.horizon_years
	`, v.ID, v.Title, v.Description, v.HorizonYears, v.CreatedAt)
	if err != nil {
		return fmt.Errorf("vision upsert: %w", err)
	}
	return nil
}

func (r *GoalRepo) ListVisions(ctx context.Context) ([]Vision, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, description, horizon_years, created_at
		FROM visions
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("vision list: %w", err)
	}
	defer rows.Close()

	var out []Vision
	for rows.Next() {
		var v Vision
		var desc sql.NullString
		if err := rows.Scan(&v.ID, &v.Title, &desc, &v.HorizonYears, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("vision scan: %w", err)
		}
		if desc.Valid {
			s := desc.String
			v.Description = &s
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("vision rows: %w", err)
	}
	return out, nil
}

func (r *GoalRepo) UpsertPriority(ctx context.Context, p Priority) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO priorities (id, vision_id, title, weight, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET vision_id = excluded.vision_id,
			title = excluded.title,
			weight = excluded.weight
	`, p.ID, p.VisionID, p.Title, p.Weight, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("priority upsert: %w", err)
	}
	return nil
}

func (r *GoalRepo) ListPriorities(ctx context.Context) ([]Priority, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, vision_id, title, weight, created_at
		FROM priorities
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("priority list: %w", err)
	}
	defer rows.Close()

	var out []Priority
	for rows.Next() {
		var p Priority
		if err := rows.Scan(&p.ID, &p.VisionID, &p.Title, &p.Weight, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("priority scan: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("priority rows: %w", err)
	}
	return out, nil
}

func (r *GoalRepo) UpsertProject(ctx context.Context, p Project) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO projects (id, priority_id, title, category, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET priority_id = excluded.priority_id,
			title = excluded.title,
			category = excluded.category,
			description = excluded.description
	`, p.ID, p.PriorityID, p.Title, p.Category, p.Description, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("project upsert: %w", err)
	}
	return nil
}

func (r *GoalRepo) UpsertMilestone(ctx context.Context, m Milestone) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO milestones (id, project_id, title, target_date, position, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET project_id = excluded.project_id,
			title = excluded.title,
			target_date = excluded.target_date,
			position = excluded.position
	`, m.ID, m.ProjectID, m.Title, m.TargetDate, m.Position, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("milestone upsert: %w", err)
	}
	return nil
}

func (r *GoalRepo) UpsertTask(ctx context.Context, t Task) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tasks (id, milestone_id, title, estimate_minutes, completed_at, score, position, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET milestone_id = excluded.milestone_id,
			title = excluded.title,
			estimate_minutes = excluded.estimate_minutes,
			completed_at = excluded.completed_at,
			score = excluded.score,
			position = excluded.position
	`, t.ID, t.MilestoneID, t.Title, t.EstimateMinutes, t.CompletedAt, t.Score, t.Position, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("task upsert: %w", err)
	}
	return nil
}

// ListProjects returns every project with its milestones and tasks
// attached, in creation order. This is the planner's working set.
func (r *GoalRepo) ListProjects(ctx context.Context) ([]Project, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, priority_id, title, category, description, created_at
		FROM projects
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("project list: %w", err)
	}
	defer rows.Close()

	var projects []Project
	index := map[string]int{}
	for rows.Next() {
		var p Project
		var desc sql.NullString
		if err := rows.Scan(&p.ID, &p.PriorityID, &p.Title, &p.Category, &desc, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("project scan: %w", err)
		}
		if desc.Valid {
			s := desc.String
			p.Description = &s
		}
		index[p.ID] = len(projects)
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("project rows: %w", err)
	}
	if len(projects) == 0 {
		return nil, nil
	}

	milestones, err := r.listMilestones(ctx)
	if err != nil {
		return nil, err
	}
	tasksByMilestone, err := r.listTasksByMilestone(ctx)
	if err != nil {
		return nil, err
	}

	for _, m := range milestones {
		m.Tasks = tasksByMilestone[m.ID]
		if i, ok := index[m.ProjectID]; ok {
			projects[i].Milestones = append(projects[i].Milestones, m)
		}
	}
	return projects, nil
}

func (r *GoalRepo) listMilestones(ctx context.Context) ([]Milestone, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, project_id, title, target_date, position, created_at
		FROM milestones
		ORDER BY position ASC, created_at ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("milestone list: %w", err)
	}
	defer rows.Close()

	var out []Milestone
	for rows.Next() {
		var m Milestone
		var target sql.NullInt64
		if err := rows.Scan(&m.ID, &m.ProjectID, &m.Title, &target, &m.Position, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("milestone scan: %w", err)
		}
		if target.Valid {
			v := target.Int64
			m.TargetDate = &v
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("milestone rows: %w", err)
	}
	return out, nil
}

func (r *GoalRepo) listTasksByMilestone(ctx context.Context) (map[string][]Task, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, milestone_id, title, estimate_minutes, completed_at, score, position, created_at
		FROM tasks
		ORDER BY position ASC, created_at ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("task list: %w", err)
	}
	defer rows.Close()

	out := map[string][]Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out[t.MilestoneID] = append(out[t.MilestoneID], *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("task rows: %w", err)
	}
	return out, nil
}

func (r *GoalRepo) GetTask(ctx context.Context, id string) (*Task, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, milestone_id, title, estimate_minutes, completed_at, score, position, created_at
		FROM tasks
		WHERE id = ?
	`, id)
	t, err := scanTask(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return t, nil
}

// TaskPath resolves the hierarchy above a task: its project and the
// priority the project belongs to. Used to weight XP on completion.
func (r *GoalRepo) TaskPath(ctx context.Context, taskID string) (*Task, *Project, *Priority, error) {
	task, err := r.GetTask(ctx, taskID)
	if err != nil {
		return nil, nil, nil, err
	}
	if task == nil {
		return nil, nil, nil, nil
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT p.id, p.priority_id, p.title, p.category, p.description, p.created_at
		FROM projects p
		JOIN milestones m ON m.project_id = p.id
		WHERE m.id = ?
	`, task.MilestoneID)

	var proj Project
	var desc sql.NullString
	if err := row.Scan(&proj.ID, &proj.PriorityID, &proj.Title, &proj.Category, &desc, &proj.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return task, nil, nil, nil
		}
		return nil, nil, nil, fmt.Errorf("task project: %w", err)
	}
	if desc.Valid {
		s := desc.String
		proj.Description = &s
	}

	prow := r.db.QueryRowContext(ctx, `
		SELECT id, vision_id, title, weight, created_at
		FROM priorities
		WHERE id = ?
	`, proj.PriorityID)
	var pr Priority
	if err := prow.Scan(&pr.ID, &pr.VisionID, &pr.Title, &pr.Weight, &pr.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return task, &proj, nil, nil
		}
		return nil, nil, nil, fmt.Errorf("task priority: %w", err)
	}
	return task, &proj, &pr, nil
}

func (r *GoalRepo) MarkTaskDone(ctx context.Context, id string, completedAt int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE tasks SET completed_at = ? WHERE id = ?`, completedAt, id)
	if err != nil {
		return fmt.Errorf("task mark done: %w", err)
	}
	return nil
}

func (r *GoalRepo) UpdateTaskScore(ctx context.Context, id string, score float64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE tasks SET score = ? WHERE id = ?`, score, id)
	if err != nil {
		return fmt.Errorf("task update score: %w", err)
	}
	return nil
}

func (r *GoalRepo) HasVision(ctx context.Context, id string) (bool, error) {
	return r.rowExists(ctx, `SELECT 1 FROM visions WHERE id = ? LIMIT 1`, id)
}

func (r *GoalRepo) HasPriority(ctx context.Context, id string) (bool, error) {
	return r.rowExists(ctx, `SELECT 1 FROM priorities WHERE id = ? LIMIT 1`, id)
}

func (r *GoalRepo) HasProject(ctx context.Context, id string) (bool, error) {
	return r.rowExists(ctx, `SELECT 1 FROM projects WHERE id = ? LIMIT 1`, id)
}

func (r *GoalRepo) HasMilestone(ctx context.Context, id string) (bool, error) {
	return r.rowExists(ctx, `SELECT 1 FROM milestones WHERE id = ? LIMIT 1`, id)
}

func (r *GoalRepo) rowExists(ctx context.Context, query, id string) (bool, error) {
	var one int
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&one); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("exists: %w", err)
	}
	return true, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (*Task, error) {
	var (
		t        Task
		estimate sql.NullInt64
		done     sql.NullInt64
		score    sql.NullFloat64
	)
	if err := row.Scan(&t.ID, &t.MilestoneID, &t.Title, &estimate, &done, &score, &t.Position, &t.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("task scan: %w", err)
	}
	if estimate.Valid {
		v := int(estimate.Int64)
		t.EstimateMinutes = &v
	}
	if done.Valid {
		v := done.Int64
		t.CompletedAt = &v
	}
	if score.Valid {
		v := score.Float64
		t.Score = &v
	}
	return &t, nil
}
