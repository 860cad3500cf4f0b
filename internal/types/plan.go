package types

import (
	"time"

	"github.com/google/uuid"
)

type ItemType string

const (
	ItemAttraction ItemType = "attraction"
	ItemParking    ItemType = "parking"
	ItemMeal       ItemType = "meal"
	ItemFreeTime   ItemType = "free_time"
	ItemTransit    ItemType = "transit"
)

// ScoreBreakdown records every additive term that produced an attraction's
// final score, so "why was this picked" survives into the stored plan.
type ScoreBreakdown struct {
	TargetGroup   float64 `json:"target_group"`
	Budget        float64 `json:"budget"`
	Crowd         float64 `json:"crowd"`
	TravelStyle   float64 `json:"travel_style"`
	Premium       float64 `json:"premium"`
	Priority      float64 `json:"priority"`
	TagPreference float64 `json:"tag_preference"`
	BodyState     float64 `json:"body_state"`
	Total         float64 `json:"total"`
}

// ScheduledItem is one entry in a day's ordered sequence. The Type field
// discriminates which of the optional fields are meaningful.
type ScheduledItem struct {
	ID              uuid.UUID       `json:"id"`
	Type            ItemType        `json:"type"`
	Start           time.Time       `json:"start"`
	End             time.Time       `json:"end"`
	Name            string          `json:"name"`
	POIID           *uuid.UUID      `json:"poi_id,omitempty"`
	Score           *ScoreBreakdown `json:"score,omitempty"`
	Reasons         []string        `json:"reasons,omitempty"`
	WalkTimeMinutes int             `json:"walk_time_minutes,omitempty"` // parking only
	Label           string          `json:"label,omitempty"`             // meal name or free-time context
}

func (i ScheduledItem) DurationMinutes() int {
	return int(i.End.Sub(i.Start).Minutes())
}

type DayPlan struct {
	DayIndex int             `json:"day_index"` // 1-based
	Date     time.Time       `json:"date"`
	Items    []ScheduledItem `json:"items"`
}

type Plan struct {
	ID          uuid.UUID      `json:"id"`
	Location    string         `json:"location"`
	GroupType   TargetGroup    `json:"group_type"`
	DayCount    int            `json:"day_count"`
	BudgetLevel int            `json:"budget_level"`
	Description string         `json:"description,omitempty"`
	Profile     UserProfile    `json:"profile"` // profile the plan was generated with; later edits re-score against it
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

type ChangeType string

const (
	ChangeGenerate        ChangeType = "GENERATE"
	ChangeRemove          ChangeType = "REMOVE"
	ChangeReplace         ChangeType = "REPLACE"
	ChangeRegenerateRange ChangeType = "REGENERATE_RANGE"
	ChangeRollback        ChangeType = "ROLLBACK"
)

// PlanVersion is one immutable snapshot in a plan's edit history. Versions
// are append-only; the plan's current state is the highest version number.
type PlanVersion struct {
	ID              uuid.UUID  `json:"id"`
	PlanID          uuid.UUID  `json:"plan_id"`
	VersionNumber   int        `json:"version_number"` // dense, starts at 1
	ChangeType      ChangeType `json:"change_type"`
	ParentVersionID *uuid.UUID `json:"parent_version_id,omitempty"` // nil only for the root GENERATE
	Days            []DayPlan  `json:"days"`
	ChangeSummary   string     `json:"change_summary"`
	CreatedAt       time.Time  `json:"created_at"`
}

// PlanWithVersion is the response shape returned by every plan operation.
type PlanWithVersion struct {
	Plan    Plan        `json:"plan"`
	Version PlanVersion `json:"version"`
}

type GenerateRequest struct {
	Location    string         `json:"location"`
	StartDate   time.Time      `json:"start_date"`
	Days        int            `json:"days"`
	Profile     UserProfile    `json:"profile"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	WindowStart int            `json:"window_start,omitempty"` // minutes of day, default 09:00
	WindowEnd   int            `json:"window_end,omitempty"`   // default 21:00
}

type RemoveRequest struct {
	PlanID uuid.UUID `json:"plan_id"`
	ItemID uuid.UUID `json:"item_id"`
}

// ReplaceStrategy selects how a substitute is found for REPLACE.
type ReplaceStrategy string

const (
	StrategySmartReplace ReplaceStrategy = "SMART_REPLACE"
	StrategySameCategory ReplaceStrategy = "SAME_CATEGORY"
)

type ReplaceRequest struct {
	PlanID   uuid.UUID       `json:"plan_id"`
	ItemID   uuid.UUID       `json:"item_id"`
	Strategy ReplaceStrategy `json:"strategy,omitempty"`
}

type RegenerateRangeRequest struct {
	PlanID      uuid.UUID   `json:"plan_id"`
	Day         int         `json:"day"`       // 1-based day index
	FromMinute  int         `json:"from_minute"`
	ToMinute    int         `json:"to_minute"`
	PinnedItems []uuid.UUID `json:"pinned_items,omitempty"`
}

type RollbackRequest struct {
	PlanID        uuid.UUID `json:"plan_id"`
	TargetVersion int       `json:"target_version"`
}
