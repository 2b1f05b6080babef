package goal

import (
	"time"

	"github.com/trezcool/kipimo/core"
	"github.com/trezcool/kipimo/core/metric"
)

// Level is the depth of a goal in its district tree.
type Level int

const (
	LevelObjective Level = iota // strategic objective (root)
	LevelGoal
	LevelSubGoal

	MaxLevel = LevelSubGoal
)

func (l Level) IsValid() bool { return l >= LevelObjective && l <= MaxLevel }

func (l Level) String() string {
	switch l {
	case LevelObjective:
		return "Strategic Objective"
	case LevelGoal:
		return "Goal"
	case LevelSubGoal:
		return "Sub-goal"
	}
	return "Unknown"
}

const (
	StatusDetailNotStarted = "not-started"
	StatusDetailInProgress = "in-progress"
	StatusDetailCompleted  = "completed"
	StatusDetailOnHold     = "on-hold"
)

type Goal struct {
	ID            string  `json:"id" db:"id"`
	DistrictID    string  `json:"district_id" db:"district_id"`
	ParentID      *string `json:"parent_id" db:"parent_id"`
	Level         Level   `json:"level" db:"level"`
	GoalNumber    string  `json:"goal_number" db:"goal_number"`
	OrderPosition int     `json:"order_position" db:"order_position"`
	Title         string  `json:"title" db:"title"`
	Description   string  `json:"description" db:"description"`
	StatusDetail  string  `json:"status_detail" db:"status_detail"`

	OverallProgress               *float64    `json:"overall_progress" db:"overall_progress"`                   // calculated, 0-100
	OverallProgressOverride       *float64    `json:"overall_progress_override" db:"overall_progress_override"` // manual, 0-100
	OverallProgressDisplayMode    DisplayMode `json:"overall_progress_display_mode" db:"overall_progress_display_mode"`
	OverallProgressCustomValue    string      `json:"overall_progress_custom_value" db:"overall_progress_custom_value"`
	OverallProgressOverrideReason string      `json:"overall_progress_override_reason" db:"overall_progress_override_reason"`

	CreatedAt time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"` // UTC

	Metrics []metric.Metric `json:"metrics,omitempty" db:"-"`
}

func (g Goal) IsRoot() bool { return g.ParentID == nil }

func (g Goal) HasOverride() bool { return g.OverallProgressOverride != nil }

// HierarchicalGoal is a Goal with its nested children. Only built by BuildHierarchy, never persisted.
type HierarchicalGoal struct {
	Goal
	Children []*HierarchicalGoal `json:"children"`
}

// NewGoal contains information needed to create a new Goal.
type NewGoal struct {
	DistrictID   string      `json:"-"`
	ParentID     *string     `json:"parent_id" validate:"omitempty,notblank"`
	Level        *Level      `json:"level" validate:"omitempty,goallevel"`
	Title        string      `json:"title" validate:"required,min=3,max=200"`
	Description  string      `json:"description" validate:"max=5000"`
	StatusDetail string      `json:"status_detail" validate:"omitempty,oneof=not-started in-progress completed on-hold"`
	DisplayMode  DisplayMode `json:"overall_progress_display_mode" validate:"omitempty,displaymode"`
	CustomValue  string      `json:"overall_progress_custom_value" validate:"max=100"`
}

func (ng *NewGoal) Clean() {
	ng.Title = core.CleanString(ng.Title)
	ng.Description = core.CleanString(ng.Description)
	ng.CustomValue = core.CleanString(ng.CustomValue)
	if ng.ParentID != nil && core.CleanString(*ng.ParentID) == "" {
		ng.ParentID = nil
	}
}

// UpdateGoal defines what information may be provided to modify an existing Goal.
// nil fields are left unchanged. The position of a goal in the tree cannot be changed.
type UpdateGoal struct {
	Title        *string      `json:"title" validate:"omitempty,min=3,max=200"`
	Description  *string      `json:"description" validate:"omitempty,max=5000"`
	StatusDetail *string      `json:"status_detail" validate:"omitempty,oneof=not-started in-progress completed on-hold"`
	DisplayMode  *DisplayMode `json:"overall_progress_display_mode" validate:"omitempty,displaymode"`
	CustomValue  *string      `json:"overall_progress_custom_value" validate:"omitempty,max=100"`
}

func (ug *UpdateGoal) Clean() {
	clean := func(s *string) {
		if s != nil {
			*s = core.CleanString(*s)
		}
	}
	clean(ug.Title)
	clean(ug.Description)
	clean(ug.CustomValue)
}

// Order is a new sibling position of a goal.
type Order struct {
	ID            string `json:"id" validate:"required"`
	OrderPosition int    `json:"order_position" validate:"min=0"`
}
