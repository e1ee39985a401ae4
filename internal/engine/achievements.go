package engine

import (
	"github.com/ShawrmaM8/Tracktion/internal/storage"
)

const (
	AchFirstTask      = "first_task"
	AchWeekStreak     = "week_streak"
	AchTime1000       = "time_1000"
	AchCategoryMaster = "category_master"
)

// AchievementDefs returns the fixed achievement catalog. The returned
// slice is a fresh copy; definitions carry no unlock stamp.
//
// category_master is declared but has no evaluated predicate: the
// source never defined its category grouping or counting window, so it
// stays a known gap rather than a guess.
func AchievementDefs() []storage.Achievement {
	return []storage.Achievement{
		{ID: AchFirstTask, Title: "First Task", Description: "Complete your first task"},
		{ID: AchWeekStreak, Title: "7-day Streak", Description: "Maintain a 7-day streak"},
		{ID: AchTime1000, Title: "1000 Minutes", Description: "Accumulate 1000 minutes recorded"},
		{ID: AchCategoryMaster, Title: "Category Master", Description: "Complete 10 tasks in a single category"},
	}
}

// EvaluateAchievements derives the updated achievement set from the
// level state, the prior set and the full event history. Unlocking is
// strictly additive: evaluating the same inputs twice never duplicates
// or re-stamps an unlock.
func (l *Leveling) EvaluateAchievements(state storage.LevelState, existing []storage.Achievement, events []storage.XPEvent) []storage.Achievement {
	updated := make([]storage.Achievement, len(existing))
	copy(updated, existing)

	unlocked := map[string]bool{}
	index := map[string]int{}
	for i, a := range updated {
		index[a.ID] = i
		if a.UnlockedAt != nil {
			unlocked[a.ID] = true
		}
	}

	totalMinutes := 0
	for _, e := range events {
		totalMinutes += e.Minutes
	}

	earned := map[string]bool{
		AchFirstTask:  len(events) >= 1,
		AchWeekStreak: state.StreakDays >= 7,
		AchTime1000:   totalMinutes >= 1000,
	}

	now := l.Now().UnixMilli()
	for _, def := range AchievementDefs() {
		if !earned[def.ID] || unlocked[def.ID] {
			continue
		}
		ts := now
		if i, ok := index[def.ID]; ok {
			// A locked record for this id already exists; stamp it
			// in place instead of appending a duplicate.
			updated[i].UnlockedAt = &ts
			continue
		}
		def.UnlockedAt = &ts
		updated = append(updated, def)
	}
	return updated
}
