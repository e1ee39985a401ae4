package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

type PlanRepo struct {
	db *sql.DB
}

func NewPlanRepo(db *sql.DB) *PlanRepo {
	return &PlanRepo{db: db}
}

func (r *PlanRepo) Get(ctx context.Context, date string) (*DailyPlan, error) {
	row := r.db.QueryRowContext(ctx, `SELECT date, tasks, created_at FROM daily_plans WHERE date = ?`, date)

	var plan DailyPlan
	var tasksRaw string
	if err := row.Scan(&plan.Date, &tasksRaw, &plan.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("plan get: %w", err)
	}
	if err := json.Unmarshal([]byte(tasksRaw), &plan.Tasks); err != nil {
		return nil, fmt.Errorf("unmarshal plan tasks: %w", err)
	}
	return &plan, nil
}

// Save replaces any existing plan for the same date.
func (r *PlanRepo) Save(ctx context.Context, plan DailyPlan) error {
	data, err := marshalPlanEntries(plan.Tasks)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO daily_plans (date, tasks, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET tasks = excluded.tasks,
			created_at = excluded.created_at
	`, plan.Date, data, plan.CreatedAt)
	if err != nil {
		return fmt.Errorf("plan save: %w", err)
	}
	return nil
}

func marshalPlanEntries(entries []PlanEntry) (string, error) {
	if entries == nil {
		entries = []PlanEntry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("marshal plan tasks: %w", err)
	}
	return string(data), nil
}

func (r *PlanRepo) ListAll(ctx context.Context) ([]DailyPlan, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT date, tasks, created_at FROM daily_plans ORDER BY date ASC`)
	if err != nil {
		return nil, fmt.Errorf("plan list: %w", err)
	}
	defer rows.Close()

	var out []DailyPlan
	for rows.Next() {
		var plan DailyPlan
		var tasksRaw string
		if err := rows.Scan(&plan.Date, &tasksRaw, &plan.CreatedAt); err != nil {
			return nil, fmt.Errorf("plan scan: %w", err)
		}
		if err := json.Unmarshal([]byte(tasksRaw), &plan.Tasks); err != nil {
			return nil, fmt.Errorf("unmarshal plan tasks: %w", err)
		}
		out = append(out, plan)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("plan rows: %w", err)
	}
	return out, nil
}
