package engine

import (
	"math"
	"sort"
	"time"

	"github.com/ShawrmaM8/Tracktion/internal/storage"
)

const (
	// DefaultEstimateMinutes stands in for tasks with no estimate.
	DefaultEstimateMinutes = 30

	// MinEstimateMinutes floors every estimate for scoring purposes.
	MinEstimateMinutes = 5

	// DefaultMaxPlanTasks caps how many tasks a daily plan holds.
	DefaultMaxPlanTasks = 8

	// Urgency rises as the nearest milestone deadline approaches:
	// 30/daysLeft, capped at 10x. A deadline today or overdue counts as
	// one day out.
	urgencyHorizonDays = 30
	maxUrgency         = 10
)

// Planner selects and time-boxes today's tasks. The clock is injected
// for deterministic urgency and plan timestamps in tests.
type Planner struct {
	Now func() time.Time
}

func NewPlanner() *Planner {
	return &Planner{Now: time.Now}
}

// ScoredTask pairs a task with its planning score.
type ScoredTask struct {
	Task  storage.Task
	Score float64
}

// resolveEstimate applies the documented default-resolution step:
// unset or non-positive estimates become 30 minutes, and everything
// floors at 5.
func resolveEstimate(t storage.Task) int {
	if t.EstimateMinutes == nil || *t.EstimateMinutes <= 0 {
		return DefaultEstimateMinutes
	}
	if *t.EstimateMinutes < MinEstimateMinutes {
		return MinEstimateMinutes
	}
	return *t.EstimateMinutes
}

// ScoreTask scores one task. Completed tasks always score zero. A nil
// priority falls back to the default weight.
func (p *Planner) ScoreTask(task storage.Task, project storage.Project, priority *storage.Priority) float64 {
	if task.CompletedAt != nil {
		return 0
	}

	estimate := resolveEstimate(task)
	weight := DefaultPriorityWeight
	if priority != nil {
		weight = priority.Weight
	}
	base := float64(estimate) * weight

	urgency := 1.0
	var nearest *int64
	for _, m := range project.Milestones {
		if m.TargetDate == nil {
			continue
		}
		if nearest == nil || *m.TargetDate < *nearest {
			nearest = m.TargetDate
		}
	}
	if nearest != nil {
		days := daysUntil(p.Now(), time.UnixMilli(*nearest))
		if days < 1 {
			days = 1
		}
		urgency = math.Min(maxUrgency, urgencyHorizonDays/float64(days))
	}

	return base * urgency
}

// ScoreTasks collects every incomplete task across the hierarchy and
// returns them sorted by score descending. Ties break deterministically
// by task creation time, then id.
func (p *Planner) ScoreTasks(projects []storage.Project, priorities []storage.Priority) []ScoredTask {
	byID := make(map[string]storage.Priority, len(priorities))
	for _, pr := range priorities {
		byID[pr.ID] = pr
	}

	var scored []ScoredTask
	for _, proj := range projects {
		var pr *storage.Priority
		if v, ok := byID[proj.PriorityID]; ok {
			pr = &v
		}
		for _, m := range proj.Milestones {
			for _, t := range m.Tasks {
				if t.CompletedAt != nil {
					continue
				}
				scored = append(scored, ScoredTask{Task: t, Score: p.ScoreTask(t, proj, pr)})
			}
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		if scored[i].Task.CreatedAt != scored[j].Task.CreatedAt {
			return scored[i].Task.CreatedAt < scored[j].Task.CreatedAt
		}
		return scored[i].Task.ID < scored[j].Task.ID
	})
	return scored
}

// GenerateDailyPlan greedily fills the daily minute budget from the
// scored list: highest score first, each task taking
// min(estimate, remaining), until maxTasks tasks are chosen or the
// budget runs out. No backtracking; a task that does not fully fit
// still takes whatever budget remains.
func (p *Planner) GenerateDailyPlan(date string, dailyAvailableMinutes, maxTasks int, projects []storage.Project, priorities []storage.Priority) storage.DailyPlan {
	if maxTasks <= 0 {
		maxTasks = DefaultMaxPlanTasks
	}

	plan := storage.DailyPlan{Date: date, CreatedAt: p.Now().UnixMilli()}
	remaining := dailyAvailableMinutes
	for _, s := range p.ScoreTasks(projects, priorities) {
		if len(plan.Tasks) >= maxTasks || remaining <= 0 {
			break
		}
		// The raw estimate (defaulted, unfloored) decides the slot
		// size, matching the scoring default of 30.
		take := DefaultEstimateMinutes
		if s.Task.EstimateMinutes != nil && *s.Task.EstimateMinutes > 0 {
			take = *s.Task.EstimateMinutes
		}
		if take > remaining {
			take = remaining
		}
		plan.Tasks = append(plan.Tasks, storage.PlanEntry{TaskID: s.Task.ID, PlannedMinutes: take})
		remaining -= take
	}
	return plan
}

func daysUntil(now, target time.Time) int {
	loc := now.Location()
	a := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	t := target.In(loc)
	b := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	return int(b.Sub(a).Hours() / 24)
}
