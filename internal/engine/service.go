package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ShawrmaM8/Tracktion/internal/storage"
)

// Service orchestrates the pure engine against the store: it loads the
// current records, runs the transform, and persists the results. The
// read-modify-write against LevelState is not serialized here; only one
// completion may be in flight at a time, which the CLI guarantees by
// being single-threaded.
type Service struct {
	db           *sql.DB
	goals        *storage.GoalRepo
	plans        *storage.PlanRepo
	levels       *storage.LevelRepo
	achievements *storage.AchievementRepo

	leveling *Leveling
	planner  *Planner
	log      *zap.Logger
}

func NewService(db *sql.DB, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		db:           db,
		goals:        storage.NewGoalRepo(db),
		plans:        storage.NewPlanRepo(db),
		levels:       storage.NewLevelRepo(db),
		achievements: storage.NewAchievementRepo(db),
		leveling:     NewLeveling(),
		planner:      NewPlanner(),
		log:          log,
	}
}

func (s *Service) GoalRepo() *storage.GoalRepo               { return s.goals }
func (s *Service) PlanRepo() *storage.PlanRepo               { return s.plans }
func (s *Service) LevelRepo() *storage.LevelRepo             { return s.levels }
func (s *Service) AchievementRepo() *storage.AchievementRepo { return s.achievements }

// Leveling exposes the engine core, mainly so tests can pin its clock
// and id source.
func (s *Service) Leveling() *Leveling { return s.leveling }
func (s *Service) Planner() *Planner   { return s.planner }

// SetStreakThreshold overrides the qualifying minutes per streak day.
func (s *Service) SetStreakThreshold(minutes int) {
	s.leveling.StreakThreshold = minutes
}

func normalizeTitle(title string) (string, error) {
	t := strings.TrimSpace(title)
	if t == "" {
		return "", errors.New("title is required")
	}
	return t, nil
}

type CreateVisionInput struct {
	Title        string
	Description  *string
	HorizonYears int
}

func (s *Service) CreateVision(ctx context.Context, in CreateVisionInput) (*storage.Vision, error) {
	title, err := normalizeTitle(in.Title)
	if err != nil {
		return nil, err
	}
	horizon := in.HorizonYears
	if horizon < 1 {
		horizon = 1
	}
	v := storage.Vision{
		ID:           s.leveling.NewID(),
		Title:        title,
		Description:  in.Description,
		HorizonYears: horizon,
		CreatedAt:    s.leveling.Now().UnixMilli(),
	}
	if err := s.goals.UpsertVision(ctx, v); err != nil {
		return nil, err
	}
	return &v, nil
}

type CreatePriorityInput struct {
	VisionID string
	Title    string
	Weight   float64
}

func (s *Service) CreatePriority(ctx context.Context, in CreatePriorityInput) (*storage.Priority, error) {
	title, err := normalizeTitle(in.Title)
	if err != nil {
		return nil, err
	}
	ok, err := s.goals.HasVision(ctx, in.VisionID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("vision %s not found", in.VisionID)
	}

	weight := in.Weight
	if weight < 0 {
		weight = 0
	}
	if weight > 1 {
		weight = 1
	}
	p := storage.Priority{
		ID:        s.leveling.NewID(),
		VisionID:  in.VisionID,
		Title:     title,
		Weight:    weight,
		CreatedAt: s.leveling.Now().UnixMilli(),
	}
	if err := s.goals.UpsertPriority(ctx, p); err != nil {
		return nil, err
	}
	return &p, nil
}

type CreateProjectInput struct {
	PriorityID  string
	Title       string
	Category    string
	Description *string
}

func (s *Service) CreateProject(ctx context.Context, in CreateProjectInput) (*storage.Project, error) {
	title, err := normalizeTitle(in.Title)
	if err != nil {
		return nil, err
	}
	ok, err := s.goals.HasPriority(ctx, in.PriorityID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("priority %s not found", in.PriorityID)
	}

	p := storage.Project{
		ID:          s.leveling.NewID(),
		PriorityID:  in.PriorityID,
		Title:       title,
		Category:    string(ParseCategory(in.Category)),
		Description: in.Description,
		CreatedAt:   s.leveling.Now().UnixMilli(),
	}
	if err := s.goals.UpsertProject(ctx, p); err != nil {
		return nil, err
	}
	return &p, nil
}

type CreateMilestoneInput struct {
	ProjectID  string
	Title      string
	TargetDate *int64
	Position   int
}

func (s *Service) CreateMilestone(ctx context.Context, in CreateMilestoneInput) (*storage.Milestone, error) {
	title, err := normalizeTitle(in.Title)
	if err != nil {
		return nil, err
	}
	ok, err := s.goals.HasProject(ctx, in.ProjectID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("project %s not found", in.ProjectID)
	}

	m := storage.Milestone{
		ID:         s.leveling.NewID(),
		ProjectID:  in.ProjectID,
		Title:      title,
		TargetDate: in.TargetDate,
		Position:   in.Position,
		CreatedAt:  s.leveling.Now().UnixMilli(),
	}
	if err := s.goals.UpsertMilestone(ctx, m); err != nil {
		return nil, err
	}
	return &m, nil
}

type CreateTaskInput struct {
	MilestoneID     string
	Title           string
	EstimateMinutes *int
	Position        int
}

func (s *Service) CreateTask(ctx context.Context, in CreateTaskInput) (*storage.Task, error) {
	title, err := normalizeTitle(in.Title)
	if err != nil {
		return nil, err
	}
	ok, err := s.goals.HasMilestone(ctx, in.MilestoneID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("milestone %s not found", in.MilestoneID)
	}

	t := storage.Task{
		ID:              s.leveling.NewID(),
		MilestoneID:     in.MilestoneID,
		Title:           title,
		EstimateMinutes: in.EstimateMinutes,
		Position:        in.Position,
		CreatedAt:       s.leveling.Now().UnixMilli(),
	}
	if err := s.goals.UpsertTask(ctx, t); err != nil {
		return nil, err
	}
	return &t, nil
}

// PlanDay generates and persists the plan for the given date, replacing
// any prior plan for that date, and caches the computed scores on the
// planned tasks.
func (s *Service) PlanDay(ctx context.Context, date string, dailyAvailableMinutes, maxTasks int) (*storage.DailyPlan, error) {
	projects, err := s.goals.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	priorities, err := s.goals.ListPriorities(ctx)
	if err != nil {
		return nil, err
	}

	scored := s.planner.ScoreTasks(projects, priorities)
	plan := s.planner.GenerateDailyPlan(date, dailyAvailableMinutes, maxTasks, projects, priorities)
	if err := s.plans.Save(ctx, plan); err != nil {
		return nil, err
	}

	planned := make(map[string]bool, len(plan.Tasks))
	for _, e := range plan.Tasks {
		planned[e.TaskID] = true
	}
	for _, st := range scored {
		if !planned[st.Task.ID] {
			continue
		}
		if err := s.goals.UpdateTaskScore(ctx, st.Task.ID, st.Score); err != nil {
			return nil, err
		}
	}

	s.log.Info("daily plan generated",
		zap.String("date", date),
		zap.Int("tasks", len(plan.Tasks)),
		zap.Int("budget_minutes", dailyAvailableMinutes))
	return &plan, nil
}

// CompleteResult reports what a recorded completion changed.
type CompleteResult struct {
	TaskID        string
	Minutes       int
	XPAwarded     int
	LevelBefore   int
	LevelAfter    int
	LevelUp       bool
	StreakDays    int
	LongestStreak int
	NewlyUnlocked []storage.Achievement
}

// CompleteTask records work against a task: it marks the task done,
// mints and appends the XP event, saves the new level state and
// re-evaluates achievements over the refreshed history.
func (s *Service) CompleteTask(ctx context.Context, taskID string, minutes int) (*CompleteResult, error) {
	task, project, priority, err := s.goals.TaskPath(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, TaskNotFoundError{ID: taskID}
	}
	if task.CompletedAt != nil {
		return nil, TaskDoneError{ID: taskID}
	}

	weight := DefaultPriorityWeight
	if priority != nil {
		weight = priority.Weight
	}
	multiplier := 1.0
	if project != nil {
		multiplier = ParseCategory(project.Category).Multiplier()
	}

	state, err := s.loadState(ctx)
	if err != nil {
		return nil, err
	}
	levelBefore := state.Level

	next, event := s.leveling.RecordCompletion(state, minutes, &task.ID, weight, multiplier)

	if err := s.goals.MarkTaskDone(ctx, task.ID, event.Timestamp); err != nil {
		return nil, err
	}
	if err := s.levels.AppendEvent(ctx, event); err != nil {
		return nil, err
	}
	if err := s.levels.SaveState(ctx, next); err != nil {
		return nil, err
	}

	existing, err := s.achievements.List(ctx)
	if err != nil {
		return nil, err
	}
	updated := s.leveling.EvaluateAchievements(next, existing, next.Events)
	if err := s.achievements.SaveAll(ctx, updated); err != nil {
		return nil, err
	}

	result := &CompleteResult{
		TaskID:        task.ID,
		Minutes:       minutes,
		XPAwarded:     event.XP,
		LevelBefore:   levelBefore,
		LevelAfter:    next.Level,
		LevelUp:       next.Level > levelBefore,
		StreakDays:    next.StreakDays,
		LongestStreak: next.LongestStreak,
		NewlyUnlocked: newlyUnlocked(existing, updated),
	}

	s.log.Info("task completed",
		zap.String("task", task.ID),
		zap.Int("minutes", minutes),
		zap.Int("xp", event.XP),
		zap.Int("level", next.Level),
		zap.Int("streak_days", next.StreakDays))
	return result, nil
}

func newlyUnlocked(before, after []storage.Achievement) []storage.Achievement {
	prior := map[string]bool{}
	for _, a := range before {
		if a.UnlockedAt != nil {
			prior[a.ID] = true
		}
	}
	var out []storage.Achievement
	for _, a := range after {
		if a.UnlockedAt != nil && !prior[a.ID] {
			out = append(out, a)
		}
	}
	return out
}

// loadState reads the persisted level state, falling back to the empty
// state, and recomputes the level from total XP: the stored level
// column is never trusted.
func (s *Service) loadState(ctx context.Context) (storage.LevelState, error) {
	stored, err := s.levels.GetState(ctx)
	if err != nil {
		return storage.LevelState{}, err
	}
	if stored == nil {
		return CreateEmptyState(), nil
	}
	state := *stored
	state.Level = LevelFromXP(state.TotalXP)
	return state, nil
}

// StatusReport is a read-only view of the progression for display.
type StatusReport struct {
	State        storage.LevelState
	Progress     float64 // within the current level, [0,1]
	XPForNext    int
	Achievements []storage.Achievement
	TotalMinutes int
	EventCount   int
}

// Status returns the current progression with level and streaks
// recomputed from history; nothing is persisted.
func (s *Service) Status(ctx context.Context) (*StatusReport, error) {
	state, err := s.loadState(ctx)
	if err != nil {
		return nil, err
	}
	state.StreakDays, state.LongestStreak = s.leveling.UpdateStreaks(state, state.Events, s.leveling.streakThreshold())

	achievements, err := s.achievements.List(ctx)
	if err != nil {
		return nil, err
	}

	totalMinutes := 0
	for _, e := range state.Events {
		totalMinutes += e.Minutes
	}

	return &StatusReport{
		State:        state,
		Progress:     ProgressWithinLevel(state.TotalXP),
		XPForNext:    XPForLevel(state.Level + 1),
		Achievements: achievements,
		TotalMinutes: totalMinutes,
		EventCount:   len(state.Events),
	}, nil
}

// ExportSnapshot and ImportSnapshot expose full backup/restore through
// the service handle.
func (s *Service) ExportSnapshot(ctx context.Context) (*storage.Snapshot, error) {
	return storage.ExportSnapshot(ctx, s.db)
}

func (s *Service) ImportSnapshot(ctx context.Context, snap *storage.Snapshot) error {
	return storage.ImportSnapshot(ctx, s.db, snap)
}
