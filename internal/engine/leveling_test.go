package engine

import (
	"fmt"
	"testing"
	"time"

	"github.com/ShawrmaM8/Tracktion/internal/storage"
)

func fixedLeveling(now time.Time) *Leveling {
	n := 0
	return &Leveling{
		Now: func() time.Time { return now },
		NewID: func() string {
			n++
			return fmt.Sprintf("id-%03d", n)
		},
	}
}

func eventAt(ts time.Time, minutes int) storage.XPEvent {
	return storage.XPEvent{
		ID:                 fmt.Sprintf("ev-%d-%d", ts.UnixMilli(), minutes),
		Minutes:            minutes,
		PriorityWeight:     1,
		CategoryMultiplier: 1,
		Timestamp:          ts.UnixMilli(),
		XP:                 CalculateXP(minutes, 1, 1),
	}
}

func TestCalculateXP(t *testing.T) {
	cases := []struct {
		minutes    int
		weight     float64
		multiplier float64
		want       int
	}{
		{60, 1, 1, 60},
		{60, 0.5, 1, 30},
		{60, 1, 1.2, 72},
		{25, 0.7, 1.2, 21},
		{0, 1, 1, 0},
		{-30, 1, 1, 0},
		// weight clamps up to 0.1, multiplier up to 0.5
		{100, 0, 1, 10},
		{100, 0.05, 1, 10},
		{100, 1, 0, 50},
		{100, 1, 0.2, 50},
	}
	for _, c := range cases {
		got := CalculateXP(c.minutes, c.weight, c.multiplier)
		if got != c.want {
			t.Fatalf("CalculateXP(%d, %v, %v) = %d, want %d", c.minutes, c.weight, c.multiplier, got, c.want)
		}
	}
}

func TestLevelCurveRoundTrip(t *testing.T) {
	for level := 1; level <= 20; level++ {
		xp := XPForLevel(level)
		if got := LevelFromXP(xp); got != level {
			t.Fatalf("LevelFromXP(XPForLevel(%d)) = %d (xp=%d)", level, got, xp)
		}
		// one XP shy of the boundary stays on the previous level
		if level > 1 {
			if got := LevelFromXP(xp - 1); got != level-1 {
				t.Fatalf("LevelFromXP(%d) = %d, want %d", xp-1, got, level-1)
			}
		}
	}
}

func TestLevelFromXPBounds(t *testing.T) {
	if got := LevelFromXP(0); got != 1 {
		t.Fatalf("LevelFromXP(0) = %d, want 1", got)
	}
	if got := LevelFromXP(-50); got != 1 {
		t.Fatalf("LevelFromXP(-50) = %d, want 1", got)
	}
	if got := LevelFromXP(99); got != 1 {
		t.Fatalf("LevelFromXP(99) = %d, want 1", got)
	}
	if got := LevelFromXP(100); got != 2 {
		t.Fatalf("LevelFromXP(100) = %d, want 2", got)
	}
	if got := LevelFromXP(300); got != 3 {
		t.Fatalf("LevelFromXP(300) = %d, want 3", got)
	}
}

func TestXPForLevelMonotonic(t *testing.T) {
	prev := XPForLevel(1)
	if prev != 0 {
		t.Fatalf("XPForLevel(1) = %d, want 0", prev)
	}
	for level := 2; level <= 25; level++ {
		cur := XPForLevel(level)
		if cur <= prev {
			t.Fatalf("XPForLevel(%d) = %d not above XPForLevel(%d) = %d", level, cur, level-1, prev)
		}
		prev = cur
	}
}

func TestProgressWithinLevel(t *testing.T) {
	if got := ProgressWithinLevel(0); got != 0 {
		t.Fatalf("ProgressWithinLevel(0) = %v, want 0", got)
	}
	// level 2 spans [100, 300); 200 XP is halfway
	if got := ProgressWithinLevel(200); got != 0.5 {
		t.Fatalf("ProgressWithinLevel(200) = %v, want 0.5", got)
	}
	if got := ProgressWithinLevel(299); got >= 1 {
		t.Fatalf("ProgressWithinLevel(299) = %v, want < 1", got)
	}
}

func TestApplyXPEventDoesNotMutateInput(t *testing.T) {
	base := CreateEmptyState()
	base.Events = []storage.XPEvent{eventAt(time.Now(), 10)}
	base.TotalXP = 10

	next := ApplyXPEvent(base, eventAt(time.Now(), 20))

	if len(base.Events) != 1 {
		t.Fatalf("input events grew to %d", len(base.Events))
	}
	if base.TotalXP != 10 {
		t.Fatalf("input totalXP changed to %d", base.TotalXP)
	}
	if len(next.Events) != 2 {
		t.Fatalf("next events = %d, want 2", len(next.Events))
	}
	if next.TotalXP != 30 {
		t.Fatalf("next totalXP = %d, want 30", next.TotalXP)
	}
	if next.Level != LevelFromXP(30) {
		t.Fatalf("next level = %d, want %d", next.Level, LevelFromXP(30))
	}
}

func TestUpdateStreaksConsecutiveDays(t *testing.T) {
	now := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)
	l := fixedLeveling(now)

	var events []storage.XPEvent
	for i := 0; i < 7; i++ {
		events = append(events, eventAt(now.AddDate(0, 0, -i), 20))
	}

	streak, longest := l.UpdateStreaks(storage.LevelState{}, events, 15)
	if streak != 7 {
		t.Fatalf("streak = %d, want 7", streak)
	}
	if longest != 7 {
		t.Fatalf("longest = %d, want 7", longest)
	}
}

func TestUpdateStreaksGapBreaksRun(t *testing.T) {
	now := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)
	l := fixedLeveling(now)

	// today, yesterday, then a hole, then three more days
	events := []storage.XPEvent{
		eventAt(now, 20),
		eventAt(now.AddDate(0, 0, -1), 20),
		eventAt(now.AddDate(0, 0, -3), 20),
		eventAt(now.AddDate(0, 0, -4), 20),
		eventAt(now.AddDate(0, 0, -5), 20),
	}

	streak, _ := l.UpdateStreaks(storage.LevelState{}, events, 15)
	if streak != 2 {
		t.Fatalf("streak = %d, want 2", streak)
	}
}

func TestUpdateStreaksTodayBelowThreshold(t *testing.T) {
	now := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)
	l := fixedLeveling(now)

	events := []storage.XPEvent{
		eventAt(now, 10), // under the 15 minute bar
		eventAt(now.AddDate(0, 0, -1), 60),
	}

	streak, _ := l.UpdateStreaks(storage.LevelState{}, events, 15)
	if streak != 0 {
		t.Fatalf("streak = %d, want 0 when today does not qualify", streak)
	}
}

func TestUpdateStreaksSumsSameDay(t *testing.T) {
	now := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)
	l := fixedLeveling(now)

	// two short sessions that only qualify combined
	events := []storage.XPEvent{
		eventAt(now.Add(-2*time.Hour), 8),
		eventAt(now, 8),
	}

	streak, _ := l.UpdateStreaks(storage.LevelState{}, events, 15)
	if streak != 1 {
		t.Fatalf("streak = %d, want 1", streak)
	}
}

func TestUpdateStreaksLongestIsRatchet(t *testing.T) {
	now := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)
	l := fixedLeveling(now)

	events := []storage.XPEvent{eventAt(now, 30)}
	state := storage.LevelState{LongestStreak: 9}

	streak, longest := l.UpdateStreaks(state, events, 15)
	if streak != 1 {
		t.Fatalf("streak = %d, want 1", streak)
	}
	if longest != 9 {
		t.Fatalf("longest = %d, want 9 (must not shrink)", longest)
	}
}

func TestUpdateStreaksZeroThresholdClamped(t *testing.T) {
	now := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)
	l := fixedLeveling(now)

	// a zero threshold must not make every empty day qualify
	streak, _ := l.UpdateStreaks(storage.LevelState{}, nil, 0)
	if streak != 0 {
		t.Fatalf("streak = %d, want 0 with no events", streak)
	}
}

func TestRecordCompletion(t *testing.T) {
	now := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)
	l := fixedLeveling(now)

	taskID := "task-1"
	state := CreateEmptyState()
	next, event := l.RecordCompletion(state, 60, &taskID, 1, 1.2)

	if event.XP != 72 {
		t.Fatalf("event XP = %d, want 72", event.XP)
	}
	if event.TaskID == nil || *event.TaskID != taskID {
		t.Fatalf("event task id = %v, want %s", event.TaskID, taskID)
	}
	if event.Timestamp != now.UnixMilli() {
		t.Fatalf("event timestamp = %d, want %d", event.Timestamp, now.UnixMilli())
	}
	if next.TotalXP != 72 {
		t.Fatalf("totalXP = %d, want 72", next.TotalXP)
	}
	if next.Level != 1 {
		t.Fatalf("level = %d, want 1", next.Level)
	}
	if next.StreakDays != 1 {
		t.Fatalf("streak = %d, want 1", next.StreakDays)
	}
	if next.LongestStreak != 1 {
		t.Fatalf("longest = %d, want 1", next.LongestStreak)
	}
	if len(next.Events) != 1 {
		t.Fatalf("events = %d, want 1", len(next.Events))
	}
}

func TestRecordCompletionLevelUp(t *testing.T) {
	now := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)
	l := fixedLeveling(now)

	state := CreateEmptyState()
	state.TotalXP = 90
	state.Level = LevelFromXP(90)

	next, _ := l.RecordCompletion(state, 30, nil, 1, 1)
	if next.TotalXP != 120 {
		t.Fatalf("totalXP = %d, want 120", next.TotalXP)
	}
	if next.Level != 2 {
		t.Fatalf("level = %d, want 2", next.Level)
	}
}
