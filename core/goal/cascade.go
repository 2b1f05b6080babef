package goal

import (
	"fmt"
	"strings"
)

// CascadeError is returned when a cascading delete stops midway. The records listed as
// deleted are gone; everything else is still there, so the delete can be retried.
type CascadeError struct {
	GoalID         string   `json:"goal_id"` // goal being deleted when the cascade stopped
	Step           string   `json:"step"`
	DeletedGoals   []string `json:"deleted_goals"`
	DeletedMetrics []string `json:"deleted_metrics"`
	Err            error    `json:"-"`
}

func (e *CascadeError) Error() string {
	return fmt.Sprintf(
		"cascade delete stopped at goal %s (%s) after deleting %d goal(s) and %d metric(s): %v",
		e.GoalID, e.Step, len(e.DeletedGoals), len(e.DeletedMetrics), e.Err,
	)
}

func (e *CascadeError) Unwrap() error { return e.Err }

// IsPartial reports whether anything was deleted before the failure.
func (e *CascadeError) IsPartial() bool {
	return len(e.DeletedGoals)+len(e.DeletedMetrics) > 0
}

// cascade tracks the progress of a delete across the tree.
type cascade struct {
	visited        map[string]struct{}
	deletedGoals   []string
	deletedMetrics []string
}

func newCascade() *cascade {
	return &cascade{visited: make(map[string]struct{})}
}

func (c *cascade) fail(goalID, step string, err error) *CascadeError {
	return &CascadeError{
		GoalID:         goalID,
		Step:           step,
		DeletedGoals:   append([]string{}, c.deletedGoals...),
		DeletedMetrics: append([]string{}, c.deletedMetrics...),
		Err:            err,
	}
}

func (c *cascade) String() string {
	return fmt.Sprintf("goals: [%s], metrics: [%s]", strings.Join(c.deletedGoals, ", "), strings.Join(c.deletedMetrics, ", "))
}
