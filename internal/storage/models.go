package storage

// All identifiers are opaque UUID strings. Timestamps are integer
// milliseconds since epoch; optional timestamps are nil pointers, never
// zero values. JSON tags match the snapshot wire format.

type Vision struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Description  *string `json:"description,omitempty"`
	HorizonYears int     `json:"horizonYears"`
	CreatedAt    int64   `json:"createdAt"`
}

type Priority struct {
	ID        string  `json:"id"`
	VisionID  string  `json:"visionId"`
	Title     string  `json:"title"`
	Weight    float64 `json:"weight"` // [0,1], biases scheduling
	CreatedAt int64   `json:"createdAt"`
}

type Project struct {
	ID          string      `json:"id"`
	PriorityID  string      `json:"priorityId"`
	Title       string      `json:"title"`
	Category    string      `json:"category"`
	Description *string     `json:"description,omitempty"`
	Milestones  []Milestone `json:"milestones,omitempty"`
	CreatedAt   int64       `json:"createdAt"`
}

type Milestone struct {
	ID         string `json:"id"`
	ProjectID  string `json:"projectId"`
	Title      string `json:"title"`
	TargetDate *int64 `json:"targetDate,omitempty"`
	Tasks      []Task `json:"tasks,omitempty"`
	Position   int    `json:"position"`
	CreatedAt  int64  `json:"createdAt"`
}

type Task struct {
	ID              string   `json:"id"`
	MilestoneID     string   `json:"milestoneId"`
	Title           string   `json:"title"`
	EstimateMinutes *int     `json:"estimateMinutes,omitempty"`
	CompletedAt     *int64   `json:"completedAt,omitempty"`
	Score           *float64 `json:"score,omitempty"` // cached by the planner, advisory only
	Position        int      `json:"position"`
	CreatedAt       int64    `json:"createdAt"`
}

// PlanEntry is one time-boxed slot in a daily plan.
type PlanEntry struct {
	TaskID         string `json:"taskId"`
	PlannedMinutes int    `json:"plannedMinutes"`
}

// DailyPlan is keyed by calendar date (YYYY-MM-DD) and replaced
// wholesale whenever the plan for that date is regenerated.
type DailyPlan struct {
	Date      string      `json:"date"`
	Tasks     []PlanEntry `json:"tasks"`
	CreatedAt int64       `json:"createdAt"`
}

// XPEvent is an immutable fact. The xp field is frozen at creation time
// and never recomputed, even if the reward formula changes later.
type XPEvent struct {
	ID                 string  `json:"id"`
	TaskID             *string `json:"taskId,omitempty"`
	Minutes            int     `json:"minutes"`
	PriorityWeight     float64 `json:"priorityWeight"`
	CategoryMultiplier float64 `json:"categoryMultiplier"`
	Timestamp          int64   `json:"timestamp"`
	XP                 int     `json:"xp"`
}

// LevelState is the singleton progression record. Level is always a
// pure function of TotalXP; readers recompute it rather than trust the
// stored column.
type LevelState struct {
	TotalXP       int       `json:"totalXP"`
	Level         int       `json:"level"`
	Events        []XPEvent `json:"events,omitempty"`
	StreakDays    int       `json:"streakDays"`
	LongestStreak int       `json:"longestStreak"`
}

type Achievement struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	UnlockedAt  *int64 `json:"unlockedAt,omitempty"`
}
