package goal

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/kipimo/core"
	"github.com/trezcool/kipimo/core/metric"
)

var (
	// errors
	ErrNotFound = errors.New("goal not found")
)

type (
	Repository interface {
		QueryByDistrict(ctx context.Context, districtID string) ([]Goal, error)
		QueryChildren(ctx context.Context, parentID string) ([]Goal, error)
		GetByID(ctx context.Context, id string) (Goal, error)
		Create(ctx context.Context, g Goal) (Goal, error)
		Update(ctx context.Context, g Goal) (Goal, error)
		Delete(ctx context.Context, id string) error
		// Reorder sets every order position in a single transaction: all or nothing.
		Reorder(ctx context.Context, orders []Order, updatedAt time.Time) error
	}

	// MetricStore is the part of the metric storage goals need.
	MetricStore interface {
		QueryByGoal(ctx context.Context, goalID string) ([]metric.Metric, error)
		QueryByDistrict(ctx context.Context, districtID string) ([]metric.Metric, error)
		Delete(ctx context.Context, id string) error
	}

	Service struct {
		repo    Repository
		metrics MetricStore
		logger  core.Logger
	}
)

func NewService(repo Repository, metrics MetricStore, logger core.Logger) *Service {
	return &Service{repo: repo, metrics: metrics, logger: logger}
}

// List returns the goals of a district, flat and sorted by goal number, with their metrics.
func (svc *Service) List(ctx context.Context, districtID string) ([]Goal, error) {
	goals, err := svc.repo.QueryByDistrict(ctx, districtID)
	if err != nil {
		return nil, errors.Wrap(err, "querying goals")
	}
	metrics, err := svc.metrics.QueryByDistrict(ctx, districtID)
	if err != nil {
		return nil, errors.Wrap(err, "querying metrics")
	}
	attachMetrics(goals, metrics)
	sortGoals(goals)
	return goals, nil
}

// ByDistrict returns the goal tree of a district.
func (svc *Service) ByDistrict(ctx context.Context, districtID string) ([]*HierarchicalGoal, error) {
	goals, err := svc.List(ctx, districtID)
	if err != nil {
		return nil, err
	}
	return BuildHierarchy(goals), nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Goal, error) {
	g, err := svc.repo.GetByID(ctx, id)
	if err != nil {
		return Goal{}, err
	}
	if g.Metrics, err = svc.metrics.QueryByGoal(ctx, id); err != nil {
		return Goal{}, errors.Wrap(err, "querying metrics")
	}
	return g, nil
}

// GetChildren returns the direct children of a goal, sorted by goal number.
func (svc *Service) GetChildren(ctx context.Context, parentID string) ([]Goal, error) {
	if _, err := svc.repo.GetByID(ctx, parentID); err != nil {
		return nil, err
	}
	children, err := svc.repo.QueryChildren(ctx, parentID)
	if err != nil {
		return nil, errors.Wrap(err, "querying children")
	}
	sortGoals(children)
	return children, nil
}

// Create numbers and inserts a new goal. The level is derived from the parent.
func (svc *Service) Create(ctx context.Context, ng NewGoal) (Goal, error) {
	level := LevelObjective
	if ng.ParentID != nil {
		parent, err := svc.repo.GetByID(ctx, *ng.ParentID)
		if err != nil {
			if errors.Cause(err) == ErrNotFound {
				return Goal{}, core.NewFieldError("parent_id", "parent goal not found")
			}
			return Goal{}, errors.Wrap(err, "getting parent goal")
		}
		if parent.DistrictID != ng.DistrictID {
			return Goal{}, core.NewFieldError("parent_id", "parent goal belongs to another district")
		}
		level = parent.Level + 1
	}
	if !level.IsValid() {
		return Goal{}, core.NewFieldError("parent_id", "goals cannot be nested deeper than %d levels", MaxLevel+1)
	}
	if ng.Level != nil && *ng.Level != level {
		return Goal{}, core.NewFieldError("level", "level must be %d under this parent", level)
	}

	// fresh snapshot, right before the insert
	snapshot, err := svc.repo.QueryByDistrict(ctx, ng.DistrictID)
	if err != nil {
		return Goal{}, errors.Wrap(err, "querying district goals")
	}
	var siblings int
	for _, g := range snapshot {
		if g.Level == level && sameParent(g.ParentID, ng.ParentID) {
			siblings++
		}
	}

	mode := ng.DisplayMode
	if mode == "" {
		mode = DefaultDisplayMode
	}
	statusDetail := ng.StatusDetail
	if statusDetail == "" {
		statusDetail = StatusDetailNotStarted
	}

	now := core.Now()
	g := Goal{
		ID:                         uuid.NewString(),
		DistrictID:                 ng.DistrictID,
		ParentID:                   ng.ParentID,
		Level:                      level,
		GoalNumber:                 NextGoalNumber(snapshot, ng.ParentID, level),
		OrderPosition:              siblings,
		Title:                      ng.Title,
		Description:                ng.Description,
		StatusDetail:               statusDetail,
		OverallProgressDisplayMode: mode,
		OverallProgressCustomValue: ng.CustomValue,
		CreatedAt:                  now,
		UpdatedAt:                  now,
	}
	return svc.repo.Create(ctx, g)
}

func (svc *Service) Update(ctx context.Context, id string, ug UpdateGoal) (Goal, error) {
	g, err := svc.repo.GetByID(ctx, id)
	if err != nil {
		return Goal{}, err
	}
	if ug.Title != nil {
		g.Title = *ug.Title
	}
	if ug.Description != nil {
		g.Description = *ug.Description
	}
	if ug.StatusDetail != nil {
		g.StatusDetail = *ug.StatusDetail
	}
	if ug.DisplayMode != nil {
		g.OverallProgressDisplayMode = *ug.DisplayMode
	}
	if ug.CustomValue != nil {
		g.OverallProgressCustomValue = *ug.CustomValue
	}
	if g.OverallProgressDisplayMode == DisplayCustom && g.OverallProgressCustomValue == "" {
		return Goal{}, core.NewFieldError("overall_progress_custom_value", "%s", customValueText)
	}
	g.UpdatedAt = core.Now()
	return svc.repo.Update(ctx, g)
}

// Delete removes a goal with its descendants and metrics, depth-first: children, then the
// goal's metrics, then the goal. The first failure stops the cascade with a *CascadeError.
func (svc *Service) Delete(ctx context.Context, id string) error {
	if _, err := svc.repo.GetByID(ctx, id); err != nil {
		return err
	}
	c := newCascade()
	if err := svc.deleteTree(ctx, id, c); err != nil {
		return err
	}
	svc.logger.Info(fmt.Sprintf("goal %s deleted", id), map[string]interface{}{
		"goals": c.deletedGoals, "metrics": c.deletedMetrics,
	})
	return nil
}

// DeleteByDistrict removes every goal and metric of a district, tree by tree.
func (svc *Service) DeleteByDistrict(ctx context.Context, districtID string) error {
	c := newCascade()
	goals, err := svc.repo.QueryByDistrict(ctx, districtID)
	if err != nil {
		return c.fail("", "querying goals", err)
	}
	for _, root := range BuildHierarchy(goals) {
		if err = svc.deleteTree(ctx, root.ID, c); err != nil {
			return err
		}
	}

	// metrics left behind by goals deleted outside of a cascade
	leftovers, err := svc.metrics.QueryByDistrict(ctx, districtID)
	if err != nil {
		return c.fail("", "querying metrics", err)
	}
	for _, m := range leftovers {
		if err = svc.metrics.Delete(ctx, m.ID); err != nil {
			return c.fail(m.GoalID, "deleting metric "+m.ID, err)
		}
		c.deletedMetrics = append(c.deletedMetrics, m.ID)
	}
	svc.logger.Info(fmt.Sprintf("goals of district %s deleted", districtID), c.String())
	return nil
}

func (svc *Service) deleteTree(ctx context.Context, id string, c *cascade) error {
	if _, seen := c.visited[id]; seen {
		return nil
	}
	c.visited[id] = struct{}{}

	children, err := svc.repo.QueryChildren(ctx, id)
	if err != nil {
		return c.fail(id, "querying children", err)
	}
	for _, child := range children {
		if err = svc.deleteTree(ctx, child.ID, c); err != nil {
			return err
		}
	}

	metrics, err := svc.metrics.QueryByGoal(ctx, id)
	if err != nil {
		return c.fail(id, "querying metrics", err)
	}
	for _, m := range metrics {
		if err = svc.metrics.Delete(ctx, m.ID); err != nil {
			return c.fail(id, "deleting metric "+m.ID, err)
		}
		c.deletedMetrics = append(c.deletedMetrics, m.ID)
	}

	if err = svc.repo.Delete(ctx, id); err != nil {
		return c.fail(id, "deleting goal", err)
	}
	c.deletedGoals = append(c.deletedGoals, id)
	return nil
}

// Reorder applies new sibling positions. Either every position is saved or none is.
func (svc *Service) Reorder(ctx context.Context, orders []Order) error {
	if len(orders) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(orders))
	for _, o := range orders {
		if _, dup := seen[o.ID]; dup {
			return core.NewFieldError("orders", "goal %s listed more than once", o.ID)
		}
		seen[o.ID] = struct{}{}
	}
	if err := svc.repo.Reorder(ctx, orders, core.Now()); err != nil {
		return errors.Wrap(err, "reordering goals")
	}
	return nil
}

// SetOverride saves a manual progress. The override is validated before anything is read or written.
func (svc *Service) SetOverride(ctx context.Context, id string, o ProgressOverride) (Goal, error) {
	if err := o.Validate(); err != nil {
		return Goal{}, err
	}
	g, err := svc.repo.GetByID(ctx, id)
	if err != nil {
		return Goal{}, err
	}

	value := *o.Value
	g.OverallProgressOverride = &value
	g.OverallProgressOverrideReason = o.Reason
	if o.DisplayMode != "" {
		g.OverallProgressDisplayMode = o.DisplayMode
	}
	if o.CustomValue != "" {
		g.OverallProgressCustomValue = o.CustomValue
	}
	g.UpdatedAt = core.Now()
	return svc.repo.Update(ctx, g)
}

// ClearOverride goes back to the calculated progress. The display mode is kept, the reason cleared.
func (svc *Service) ClearOverride(ctx context.Context, id string) (Goal, error) {
	g, err := svc.repo.GetByID(ctx, id)
	if err != nil {
		return Goal{}, err
	}
	g.OverallProgressOverride = nil
	g.OverallProgressOverrideReason = ""
	g.UpdatedAt = core.Now()
	return svc.repo.Update(ctx, g)
}

// RecalculateProgress persists the calculated progress of a goal.
func (svc *Service) RecalculateProgress(ctx context.Context, id string) (Goal, error) {
	g, err := svc.GetByID(ctx, id)
	if err != nil {
		return Goal{}, err
	}
	progress := float64(CalculateProgress(g))
	if g.OverallProgress != nil && *g.OverallProgress == progress {
		return g, nil
	}
	g.OverallProgress = &progress
	g.UpdatedAt = core.Now()

	metrics := g.Metrics
	if g, err = svc.repo.Update(ctx, g); err != nil {
		return Goal{}, err
	}
	g.Metrics = metrics
	return g, nil
}

// RecalculateDistrict persists the calculated progress of every goal of a district.
func (svc *Service) RecalculateDistrict(ctx context.Context, districtID string) ([]Goal, error) {
	goals, err := svc.List(ctx, districtID)
	if err != nil {
		return nil, err
	}
	now := core.Now()
	for i, g := range goals {
		progress := float64(CalculateProgress(g))
		if g.OverallProgress != nil && *g.OverallProgress == progress {
			continue
		}
		g.OverallProgress = &progress
		g.UpdatedAt = now
		updated, err := svc.repo.Update(ctx, g)
		if err != nil {
			return nil, errors.Wrapf(err, "updating goal %s", g.ID)
		}
		updated.Metrics = g.Metrics
		goals[i] = updated
	}
	return goals, nil
}

func attachMetrics(goals []Goal, metrics []metric.Metric) {
	byGoal := make(map[string][]metric.Metric, len(goals))
	for _, m := range metrics {
		byGoal[m.GoalID] = append(byGoal[m.GoalID], m)
	}
	for i := range goals {
		goals[i].Metrics = byGoal[goals[i].ID]
	}
}

func sortGoals(goals []Goal) {
	sort.SliceStable(goals, func(i, j int) bool {
		return CompareGoalNumbers(goals[i].GoalNumber, goals[j].GoalNumber) < 0
	})
}
