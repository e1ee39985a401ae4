package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func strPtr(s string) *string { return &s }
func intPtr(v int) *int       { return &v }
func i64Ptr(v int64) *int64   { return &v }

func seedHierarchy(t *testing.T, db *sql.DB) (*GoalRepo, Task) {
	t.Helper()
	ctx := context.Background()
	repo := NewGoalRepo(db)

	require.NoError(t, repo.UpsertVision(ctx, Vision{ID: "v-1", Title: "V", HorizonYears: 5, CreatedAt: 1}))
	require.NoError(t, repo.UpsertPriority(ctx, Priority{ID: "pr-1", VisionID: "v-1", Title: "P", Weight: 0.8, CreatedAt: 2}))
	require.NoError(t, repo.UpsertProject(ctx, Project{ID: "proj-1", PriorityID: "pr-1", Title: "Proj", Category: "code", CreatedAt: 3}))
	require.NoError(t, repo.UpsertMilestone(ctx, Milestone{ID: "m-1", ProjectID: "proj-1", Title: "M", TargetDate: i64Ptr(1_800_000_000_000), Position: 0, CreatedAt: 4}))

	task := Task{ID: "t-1", MilestoneID: "m-1", Title: "T", EstimateMinutes: intPtr(45), Position: 0, CreatedAt: 5}
	require.NoError(t, repo.UpsertTask(ctx, task))
	return repo, task
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, Migrate(context.Background(), db))
	require.NoError(t, Migrate(context.Background(), db))
}

func TestGoalRepoNestedAssembly(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo, _ := seedHierarchy(t, db)

	require.NoError(t, repo.UpsertTask(ctx, Task{ID: "t-2", MilestoneID: "m-1", Title: "T2", Position: 1, CreatedAt: 6}))
	require.NoError(t, repo.UpsertMilestone(ctx, Milestone{ID: "m-2", ProjectID: "proj-1", Title: "M2", Position: 1, CreatedAt: 7}))

	projects, err := repo.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 1)

	proj := projects[0]
	require.Len(t, proj.Milestones, 2)
	assert.Equal(t, "m-1", proj.Milestones[0].ID)
	assert.Equal(t, "m-2", proj.Milestones[1].ID)

	require.Len(t, proj.Milestones[0].Tasks, 2)
	assert.Equal(t, "t-1", proj.Milestones[0].Tasks[0].ID)
	assert.Equal(t, "t-2", proj.Milestones[0].Tasks[1].ID)
	assert.Empty(t, proj.Milestones[1].Tasks)

	// pointer fields survive the round trip
	got := proj.Milestones[0].Tasks[0]
	require.NotNil(t, got.EstimateMinutes)
	assert.Equal(t, 45, *got.EstimateMinutes)
	assert.Nil(t, got.CompletedAt)
	assert.Nil(t, got.Score)
}

func TestGoalRepoUpsertOverwrites(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo, task := seedHierarchy(t, db)

	task.Title = "Renamed"
	task.EstimateMinutes = intPtr(90)
	require.NoError(t, repo.UpsertTask(ctx, task))

	got, err := repo.GetTask(ctx, task.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Renamed", got.Title)
	assert.Equal(t, 90, *got.EstimateMinutes)
}

func TestGoalRepoTaskPath(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo, task := seedHierarchy(t, db)

	gotTask, gotProject, gotPriority, err := repo.TaskPath(ctx, task.ID)
	require.NoError(t, err)
	require.NotNil(t, gotTask)
	require.NotNil(t, gotProject)
	require.NotNil(t, gotPriority)
	assert.Equal(t, task.ID, gotTask.ID)
	assert.Equal(t, "proj-1", gotProject.ID)
	assert.Equal(t, 0.8, gotPriority.Weight)

	missing, _, _, err := repo.TaskPath(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestGoalRepoMarkTaskDoneAndScore(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo, task := seedHierarchy(t, db)

	require.NoError(t, repo.MarkTaskDone(ctx, task.ID, 1_750_000_000_000))
	require.NoError(t, repo.UpdateTaskScore(ctx, task.ID, 36.5))

	got, err := repo.GetTask(ctx, task.ID)
	require.NoError(t, err)
	require.NotNil(t, got.CompletedAt)
	assert.Equal(t, int64(1_750_000_000_000), *got.CompletedAt)
	require.NotNil(t, got.Score)
	assert.Equal(t, 36.5, *got.Score)
}

func TestPlanRepoSaveReplaces(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewPlanRepo(db)

	missing, err := repo.Get(ctx, "2026-03-10")
	require.NoError(t, err)
	assert.Nil(t, missing)

	first := DailyPlan{
		Date:      "2026-03-10",
		Tasks:     []PlanEntry{{TaskID: "t-1", PlannedMinutes: 60}, {TaskID: "t-2", PlannedMinutes: 30}},
		CreatedAt: 100,
	}
	require.NoError(t, repo.Save(ctx, first))

	// saving the same date again replaces the plan wholesale
	second := DailyPlan{
		Date:      "2026-03-10",
		Tasks:     []PlanEntry{{TaskID: "t-3", PlannedMinutes: 45}},
		CreatedAt: 200,
	}
	require.NoError(t, repo.Save(ctx, second))

	got, err := repo.Get(ctx, "2026-03-10")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, second.Tasks, got.Tasks)
	assert.Equal(t, int64(200), got.CreatedAt)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestPlanRepoEmptyPlan(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewPlanRepo(db)

	require.NoError(t, repo.Save(ctx, DailyPlan{Date: "2026-03-11", CreatedAt: 1}))

	got, err := repo.Get(ctx, "2026-03-11")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Empty(t, got.Tasks)
}

func TestLevelRepoStateRoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewLevelRepo(db)

	missing, err := repo.GetState(ctx)
	require.NoError(t, err)
	assert.Nil(t, missing)

	state := LevelState{TotalXP: 250, Level: 2, StreakDays: 3, LongestStreak: 5}
	require.NoError(t, repo.SaveState(ctx, state))

	got, err := repo.GetState(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 250, got.TotalXP)
	assert.Equal(t, 3, got.StreakDays)
	assert.Equal(t, 5, got.LongestStreak)

	// saving again overwrites the singleton row
	state.TotalXP = 400
	require.NoError(t, repo.SaveState(ctx, state))
	got, err = repo.GetState(ctx)
	require.NoError(t, err)
	assert.Equal(t, 400, got.TotalXP)
}

func TestLevelRepoEventsAppendOnly(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewLevelRepo(db)

	e1 := XPEvent{ID: "ev-1", TaskID: strPtr("t-1"), Minutes: 30, PriorityWeight: 1, CategoryMultiplier: 1, Timestamp: 100, XP: 30}
	e2 := XPEvent{ID: "ev-2", Minutes: 20, PriorityWeight: 0.5, CategoryMultiplier: 1.2, Timestamp: 50, XP: 12}
	require.NoError(t, repo.AppendEvent(ctx, e1))
	require.NoError(t, repo.AppendEvent(ctx, e2))

	// a duplicate id is rejected, never overwritten
	dup := e1
	dup.Minutes = 999
	require.Error(t, repo.AppendEvent(ctx, dup))

	events, err := repo.ListEvents(ctx)
	require.NoError(t, err)
	require.Len(t, events, 2)
	// ordered by timestamp
	assert.Equal(t, "ev-2", events[0].ID)
	assert.Equal(t, "ev-1", events[1].ID)
	assert.Equal(t, 30, events[1].Minutes)
	require.NotNil(t, events[1].TaskID)
	assert.Equal(t, "t-1", *events[1].TaskID)
}

func TestAchievementRepoUnlockIsImmutable(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewAchievementRepo(db)

	locked := Achievement{ID: "first_task", Title: "First Task", Description: "d"}
	require.NoError(t, repo.SaveAll(ctx, []Achievement{locked}))

	// first unlock stamps the record
	stamped := locked
	stamped.UnlockedAt = i64Ptr(1000)
	require.NoError(t, repo.SaveAll(ctx, []Achievement{stamped}))

	got, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.NotNil(t, got[0].UnlockedAt)
	assert.Equal(t, int64(1000), *got[0].UnlockedAt)

	// a later save with a different stamp keeps the original
	restamped := locked
	restamped.UnlockedAt = i64Ptr(9999)
	require.NoError(t, repo.SaveAll(ctx, []Achievement{restamped}))

	got, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(1000), *got[0].UnlockedAt)
}

func TestSnapshotRoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo, task := seedHierarchy(t, db)
	require.NoError(t, repo.MarkTaskDone(ctx, task.ID, 500))

	plans := NewPlanRepo(db)
	require.NoError(t, plans.Save(ctx, DailyPlan{
		Date:      "2026-03-10",
		Tasks:     []PlanEntry{{TaskID: task.ID, PlannedMinutes: 45}},
		CreatedAt: 10,
	}))

	levels := NewLevelRepo(db)
	require.NoError(t, levels.AppendEvent(ctx, XPEvent{ID: "ev-1", TaskID: strPtr(task.ID), Minutes: 45, PriorityWeight: 0.8, CategoryMultiplier: 1.2, Timestamp: 500, XP: 43}))
	require.NoError(t, levels.SaveState(ctx, LevelState{TotalXP: 43, Level: 1, StreakDays: 1, LongestStreak: 1}))

	achs := NewAchievementRepo(db)
	require.NoError(t, achs.SaveAll(ctx, []Achievement{{ID: "first_task", Title: "First Task", Description: "d", UnlockedAt: i64Ptr(500)}}))

	snap, err := ExportSnapshot(ctx, db)
	require.NoError(t, err)
	assert.Len(t, snap.Visions, 1)
	assert.Len(t, snap.Priorities, 1)
	assert.Len(t, snap.Projects, 1)
	assert.Len(t, snap.Milestones, 1)
	assert.Len(t, snap.Tasks, 1)
	assert.Len(t, snap.DailyPlans, 1)
	assert.Len(t, snap.XPEvents, 1)
	assert.Len(t, snap.Achievements, 1)
	require.NotNil(t, snap.LevelState)
	// exported projects are flat; nesting is rebuilt from the tables
	assert.Empty(t, snap.Projects[0].Milestones)

	fresh := newTestDB(t)
	require.NoError(t, ImportSnapshot(ctx, fresh, snap))

	snap2, err := ExportSnapshot(ctx, fresh)
	require.NoError(t, err)
	assert.Equal(t, snap, snap2)
}

func TestSnapshotImportKeepsExistingEvents(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	levels := NewLevelRepo(db)

	require.NoError(t, levels.AppendEvent(ctx, XPEvent{ID: "ev-1", Minutes: 30, PriorityWeight: 1, CategoryMultiplier: 1, Timestamp: 100, XP: 30}))

	// a snapshot carrying the same event id does not overwrite the fact
	snap := &Snapshot{
		XPEvents: []XPEvent{{ID: "ev-1", Minutes: 999, PriorityWeight: 1, CategoryMultiplier: 1, Timestamp: 100, XP: 999}},
	}
	require.NoError(t, ImportSnapshot(ctx, db, snap))

	events, err := levels.ListEvents(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, 30, events[0].Minutes)
}
