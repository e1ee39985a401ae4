package engine

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/ShawrmaM8/Tracktion/internal/storage"
)

const (
	// BaseXPPerMinute is the reward per recorded minute before weighting.
	BaseXPPerMinute = 1.0

	// DefaultDailyStreakMinutes is how many minutes a calendar day needs
	// for it to count toward the streak.
	DefaultDailyStreakMinutes = 15

	// DefaultPriorityWeight applies when a task has no resolvable
	// priority in its ownership path.
	DefaultPriorityWeight = 0.5

	// Multiplier floors. Degenerate inputs are clamped instead of
	// rejected so a reward can never go to zero or negative.
	minPriorityWeight     = 0.1
	minCategoryMultiplier = 0.5
)

const dayKeyFormat = "2006-01-02"

// CalculateXP computes the reward for a unit of completed work.
// Non-positive minutes yield zero; callers are expected to gate on
// positive minutes upstream.
func CalculateXP(minutes int, priorityWeight, categoryMultiplier float64) int {
	if minutes <= 0 {
		return 0
	}
	raw := float64(minutes) * BaseXPPerMinute *
		math.Max(minPriorityWeight, priorityWeight) *
		math.Max(minCategoryMultiplier, categoryMultiplier)
	return int(math.Round(raw))
}

// LevelFromXP maps cumulative XP onto the logarithmic level curve.
// Every level requires exponentially more cumulative XP than the last.
func LevelFromXP(xp int) int {
	if xp <= 0 {
		return 1
	}
	level := int(math.Floor(math.Log2(float64(xp)/100+1))) + 1
	if level < 1 {
		return 1
	}
	return level
}

// XPForLevel is the inverse of the curve: the minimum cumulative XP at
// which the given level is reached. LevelFromXP(XPForLevel(n)) == n for
// all n >= 1.
func XPForLevel(level int) int {
	if level <= 1 {
		return 0
	}
	return int(math.Round(100 * (math.Pow(2, float64(level-1)) - 1)))
}

// ProgressWithinLevel reports how far totalXP has advanced through its
// current level, in [0,1).
func ProgressWithinLevel(totalXP int) float64 {
	level := LevelFromXP(totalXP)
	lo := XPForLevel(level)
	hi := XPForLevel(level + 1)
	if hi <= lo {
		return 0
	}
	p := float64(totalXP-lo) / float64(hi-lo)
	if p < 0 {
		return 0
	}
	if p >= 1 {
		return 1
	}
	return p
}

// CreateEmptyState returns the initial LevelState.
func CreateEmptyState() storage.LevelState {
	return storage.LevelState{TotalXP: 0, Level: 1, StreakDays: 0, LongestStreak: 0}
}

// Leveling holds the engine's two non-determinism points, clock and id
// minting, so tests can pin both.
type Leveling struct {
	Now   func() time.Time
	NewID func() string

	// StreakThreshold is the qualifying minutes per day; zero means
	// DefaultDailyStreakMinutes.
	StreakThreshold int
}

func NewLeveling() *Leveling {
	return &Leveling{Now: time.Now, NewID: uuid.NewString}
}

// CreateXPEvent stamps a fresh id and the current time and freezes the
// computed reward into the event.
func (l *Leveling) CreateXPEvent(taskID *string, minutes int, priorityWeight, categoryMultiplier float64) storage.XPEvent {
	return storage.XPEvent{
		ID:                 l.NewID(),
		TaskID:             taskID,
		Minutes:            minutes,
		PriorityWeight:     priorityWeight,
		CategoryMultiplier: categoryMultiplier,
		Timestamp:          l.Now().UnixMilli(),
		XP:                 CalculateXP(minutes, priorityWeight, categoryMultiplier),
	}
}

// ApplyXPEvent folds an event into the state, returning a new state.
// The input state is not mutated; callers may hold references to it.
func ApplyXPEvent(state storage.LevelState, event storage.XPEvent) storage.LevelState {
	next := state
	next.TotalXP = state.TotalXP + event.XP
	next.Level = LevelFromXP(next.TotalXP)
	next.Events = make([]storage.XPEvent, 0, len(state.Events)+1)
	next.Events = append(next.Events, state.Events...)
	next.Events = append(next.Events, event)
	return next
}

// UpdateStreaks buckets event minutes by local calendar day and walks
// backward from today counting consecutive qualifying days. Today must
// qualify for the streak to be non-zero. The longest streak is a
// ratchet: it never decreases.
func (l *Leveling) UpdateStreaks(state storage.LevelState, events []storage.XPEvent, dailyThreshold int) (streakDays, longestStreak int) {
	if dailyThreshold < 1 {
		dailyThreshold = 1
	}

	now := l.Now()
	loc := now.Location()

	byDay := map[string]int{}
	for _, e := range events {
		day := time.UnixMilli(e.Timestamp).In(loc).Format(dayKeyFormat)
		byDay[day] += e.Minutes
	}

	streak := 0
	cursor := now
	for byDay[cursor.Format(dayKeyFormat)] >= dailyThreshold {
		streak++
		cursor = cursor.AddDate(0, 0, -1)
	}

	longest := state.LongestStreak
	if streak > longest {
		longest = streak
	}
	return streak, longest
}

func (l *Leveling) streakThreshold() int {
	if l.StreakThreshold > 0 {
		return l.StreakThreshold
	}
	return DefaultDailyStreakMinutes
}

// RecordCompletion is the single entry point for recording work: it
// mints the event, applies it, recomputes streaks over the updated
// history and returns the new state alongside the event.
func (l *Leveling) RecordCompletion(state storage.LevelState, minutes int, taskID *string, priorityWeight, categoryMultiplier float64) (storage.LevelState, storage.XPEvent) {
	event := l.CreateXPEvent(taskID, minutes, priorityWeight, categoryMultiplier)
	next := ApplyXPEvent(state, event)
	next.StreakDays, next.LongestStreak = l.UpdateStreaks(next, next.Events, l.streakThreshold())
	return next, event
}
