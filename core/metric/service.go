package metric

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/kipimo/core"
	"github.com/trezcool/kipimo/core/dashboard"
)

var (
	// errors
	ErrNotFound = errors.New("metric not found")
)

type (
	Repository interface {
		QueryByGoal(ctx context.Context, goalID string) ([]Metric, error)
		QueryByDistrict(ctx context.Context, districtID string) ([]Metric, error)
		GetByID(ctx context.Context, id string) (Metric, error)
		Create(ctx context.Context, m Metric) (Metric, error)
		Update(ctx context.Context, m Metric) (Metric, error)
		Delete(ctx context.Context, id string) error
		// Reorder sets every display order in a single transaction: all or nothing.
		Reorder(ctx context.Context, orders []Order, updatedAt time.Time) error
	}

	Service struct {
		repo       Repository
		thresholds Thresholds
	}
)

func NewService(repo Repository, conf *core.Config) *Service {
	return &Service{
		repo:       repo,
		thresholds: DefaultThresholdsFrom(conf),
	}
}

// DefaultThresholdsFrom reads the canonical thresholds from the configuration.
func DefaultThresholdsFrom(conf *core.Config) Thresholds {
	return Thresholds{
		OnTarget:  conf.Metrics.OnTargetThreshold,
		OffTarget: conf.Metrics.OffTargetThreshold,
	}.orDefault(DefaultThresholds)
}

// DefaultThresholds returns the thresholds new metrics inherit.
func (svc *Service) DefaultThresholds() Thresholds {
	return svc.thresholds
}

// valueBucket is the percentage bucket persisted on value changes. A metric without a usable
// target is bucketed on its raw value.
func valueBucket(value, target *float64) dashboard.Bucket {
	if value == nil {
		return ""
	}
	if target == nil || *target == 0 {
		return dashboard.BucketFor(*value)
	}
	return dashboard.BucketFor(*value / *target * 100)
}

func (svc *Service) ByGoal(ctx context.Context, goalID string) ([]Metric, error) {
	return svc.repo.QueryByGoal(ctx, goalID)
}

func (svc *Service) ByDistrict(ctx context.Context, districtID string) ([]Metric, error) {
	return svc.repo.QueryByDistrict(ctx, districtID)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Metric, error) {
	return svc.repo.GetByID(ctx, id)
}

func (svc *Service) Create(ctx context.Context, nm NewMetric) (Metric, error) {
	if nm.GoalID == "" || nm.DistrictID == "" {
		return Metric{}, errors.New("metric goal and district are required")
	}

	existing, err := svc.repo.QueryByGoal(ctx, nm.GoalID)
	if err != nil {
		return Metric{}, errors.Wrap(err, "querying goal metrics")
	}

	now := core.Now()
	m := Metric{
		ID:                     uuid.NewString(),
		GoalID:                 nm.GoalID,
		DistrictID:             nm.DistrictID,
		Name:                   core.CleanString(nm.Name),
		Description:            core.CleanString(nm.Description),
		MetricType:             nm.MetricType,
		MetricCategory:         core.CleanString(nm.MetricCategory),
		CurrentValue:           nm.CurrentValue,
		TargetValue:            nm.TargetValue,
		Unit:                   core.CleanString(nm.Unit),
		IsHigherBetter:         true,
		CollectionFrequency:    nm.CollectionFrequency,
		RiskThresholdCritical:  svc.thresholds.OffTarget,
		RiskThresholdOffTarget: svc.thresholds.OnTarget,
		Visualization:          nm.Visualization,
		DisplayOrder:           len(existing),
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	if nm.IsHigherBetter != nil {
		m.IsHigherBetter = *nm.IsHigherBetter
	}
	if nm.RiskThresholdCritical != nil {
		m.RiskThresholdCritical = *nm.RiskThresholdCritical
	}
	if nm.RiskThresholdOffTarget != nil {
		m.RiskThresholdOffTarget = *nm.RiskThresholdOffTarget
	}
	if m.RiskThresholdCritical >= m.RiskThresholdOffTarget {
		return Metric{}, core.NewFieldError("risk_threshold_critical", "%s", thresholdsOrderText)
	}
	m.TimeSeries = TimeSeries(nm.TimeSeries).withStatuses(m.IsHigherBetter, m.Thresholds(svc.thresholds))
	m.Status = valueBucket(m.CurrentValue, m.TargetValue)

	return svc.repo.Create(ctx, m)
}

func (svc *Service) Update(ctx context.Context, id string, um UpdateMetric) (Metric, error) {
	m, err := svc.repo.GetByID(ctx, id)
	if err != nil {
		return Metric{}, err
	}

	valueChanged := um.CurrentValue != nil || um.TargetValue != nil
	if um.Name != nil {
		m.Name = core.CleanString(*um.Name)
	}
	if um.Description != nil {
		m.Description = core.CleanString(*um.Description)
	}
	if um.MetricType != nil {
		m.MetricType = *um.MetricType
	}
	if um.MetricCategory != nil {
		m.MetricCategory = core.CleanString(*um.MetricCategory)
	}
	if um.CurrentValue != nil {
		m.CurrentValue = um.CurrentValue
	}
	if um.TargetValue != nil {
		m.TargetValue = um.TargetValue
	}
	if um.Unit != nil {
		m.Unit = core.CleanString(*um.Unit)
	}
	if um.IsHigherBetter != nil {
		m.IsHigherBetter = *um.IsHigherBetter
	}
	if um.CollectionFrequency != nil {
		m.CollectionFrequency = *um.CollectionFrequency
	}
	if um.RiskThresholdCritical != nil {
		m.RiskThresholdCritical = *um.RiskThresholdCritical
	}
	if um.RiskThresholdOffTarget != nil {
		m.RiskThresholdOffTarget = *um.RiskThresholdOffTarget
	}
	if m.RiskThresholdCritical >= m.RiskThresholdOffTarget {
		return Metric{}, core.NewFieldError("risk_threshold_critical", "%s", thresholdsOrderText)
	}
	if um.TimeSeries != nil {
		m.TimeSeries = um.TimeSeries
	}
	if um.Visualization != nil {
		m.Visualization = *um.Visualization
	}

	// thresholds or direction may have changed
	m.TimeSeries = m.TimeSeries.withStatuses(m.IsHigherBetter, m.Thresholds(svc.thresholds))
	if valueChanged {
		m.Status = valueBucket(m.CurrentValue, m.TargetValue)
	}
	m.UpdatedAt = core.Now()

	return svc.repo.Update(ctx, m)
}

// UpdateValue sets the current value and persists the percentage bucket as status.
func (svc *Service) UpdateValue(ctx context.Context, id string, value float64) (Metric, error) {
	m, err := svc.repo.GetByID(ctx, id)
	if err != nil {
		return Metric{}, err
	}
	m.CurrentValue = &value
	m.Status = valueBucket(m.CurrentValue, m.TargetValue)
	m.UpdatedAt = core.Now()
	return svc.repo.Update(ctx, m)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.Delete(ctx, id)
}

// Reorder applies new display orders. Either every order is saved or none is.
func (svc *Service) Reorder(ctx context.Context, orders []Order) error {
	if len(orders) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(orders))
	for _, o := range orders {
		if _, dup := seen[o.ID]; dup {
			return core.NewFieldError("orders", "metric %s listed more than once", o.ID)
		}
		seen[o.ID] = struct{}{}
	}
	if err := svc.repo.Reorder(ctx, orders, core.Now()); err != nil {
		return errors.Wrap(err, "reordering metrics")
	}
	return nil
}
