package metric

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/kipimo/core/dashboard"
)

type Type string

const (
	TypeNumber    Type = "number"
	TypePercent   Type = "percent"
	TypeRating    Type = "rating"
	TypeCurrency  Type = "currency"
	TypeStatus    Type = "status"
	TypeSurvey    Type = "survey"
	TypeNarrative Type = "narrative"
)

var AllTypes = []Type{TypeNumber, TypePercent, TypeRating, TypeCurrency, TypeStatus, TypeSurvey, TypeNarrative}

func (t Type) IsValid() bool {
	for _, at := range AllTypes {
		if t == at {
			return true
		}
	}
	return false
}

type Frequency string

const (
	FrequencyWeekly    Frequency = "weekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyYearly    Frequency = "yearly"
)

type Metric struct {
	ID                  string   `json:"id" db:"id"`
	GoalID              string   `json:"goal_id" db:"goal_id"`
	DistrictID          string   `json:"district_id" db:"district_id"`
	Name                string   `json:"name" db:"name"`
	Description         string   `json:"description" db:"description"`
	MetricType          Type     `json:"metric_type" db:"metric_type"`
	MetricCategory      string   `json:"metric_category" db:"metric_category"`
	CurrentValue        *float64 `json:"current_value" db:"current_value"`
	TargetValue         *float64 `json:"target_value" db:"target_value"`
	Unit                string   `json:"unit" db:"unit"`
	IsHigherBetter      bool     `json:"is_higher_better" db:"is_higher_better"`
	CollectionFrequency string   `json:"collection_frequency" db:"collection_frequency"`

	// ratios of actual/target: below RiskThresholdOffTarget is off-target, below RiskThresholdCritical is critical.
	RiskThresholdCritical  float64 `json:"risk_threshold_critical" db:"risk_threshold_critical"`
	RiskThresholdOffTarget float64 `json:"risk_threshold_off_target" db:"risk_threshold_off_target"`

	TimeSeries    TimeSeries       `json:"time_series" db:"time_series"`
	Visualization Visualization    `json:"visualization" db:"visualization"`
	Status        dashboard.Bucket `json:"status" db:"status"` // percentage bucket of the last value update
	DisplayOrder  int              `json:"display_order" db:"display_order"`
	CreatedAt     time.Time        `json:"created_at" db:"created_at"` // UTC
	UpdatedAt     time.Time        `json:"updated_at" db:"updated_at"` // UTC
}

// Thresholds returns the metric's thresholds, falling back to `def` for unset ones.
func (m Metric) Thresholds(def Thresholds) Thresholds {
	return Thresholds{OnTarget: m.RiskThresholdOffTarget, OffTarget: m.RiskThresholdCritical}.orDefault(def)
}

// CurrentStatus resolves the current status of the metric.
func (m Metric) CurrentStatus(def Thresholds) Status {
	return ResolveStatus(m.CurrentValue, m.TargetValue, m.IsHigherBetter, m.Thresholds(def))
}

// Progress returns current/target as a percentage, capped at 100.
// ok is false when the metric cannot contribute to a goal's progress.
func (m Metric) Progress() (progress float64, ok bool) {
	if m.CurrentValue == nil || m.TargetValue == nil || *m.TargetValue == 0 {
		return 0, false
	}
	p := *m.CurrentValue / *m.TargetValue * 100
	if p > 100 {
		p = 100
	}
	return p, true
}

type TimeSeriesPoint struct {
	Period      string   `json:"period" yaml:"period" validate:"required"`
	TargetValue *float64 `json:"target_value" yaml:"target_value"`
	ActualValue *float64 `json:"actual_value" yaml:"actual_value"`
	Status      Status   `json:"status" yaml:"-"`
}

// TimeSeries is stored as a JSON text column.
type TimeSeries []TimeSeriesPoint

// withStatuses returns a copy of the points with their status resolved.
func (ts TimeSeries) withStatuses(higherIsBetter bool, t Thresholds) TimeSeries {
	if ts == nil {
		return nil
	}
	out := make(TimeSeries, len(ts))
	for i, p := range ts {
		p.Status = ResolveStatus(p.ActualValue, p.TargetValue, higherIsBetter, t)
		out[i] = p
	}
	return out
}

func (ts TimeSeries) Value() (driver.Value, error) {
	if ts == nil {
		return "[]", nil
	}
	b, err := json.Marshal(ts)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (ts *TimeSeries) Scan(src interface{}) error {
	var data []byte
	switch s := src.(type) {
	case nil:
		*ts = nil
		return nil
	case string:
		data = []byte(s)
	case []byte:
		data = s
	default:
		return errors.Errorf("metric.TimeSeries: cannot scan %T", src)
	}
	if len(data) == 0 {
		*ts = nil
		return nil
	}
	return json.Unmarshal(data, ts)
}

// NewMetric contains information needed to create a new Metric.
type NewMetric struct {
	GoalID                 string            `json:"-"`
	DistrictID             string            `json:"-"`
	Name                   string            `json:"name" validate:"required,notblank,max=200"`
	Description            string            `json:"description"`
	MetricType             Type              `json:"metric_type" validate:"required,metrictype"`
	MetricCategory         string            `json:"metric_category"`
	CurrentValue           *float64          `json:"current_value"`
	TargetValue            *float64          `json:"target_value"`
	Unit                   string            `json:"unit" validate:"max=30"`
	IsHigherBetter         *bool             `json:"is_higher_better"`
	CollectionFrequency    string            `json:"collection_frequency" validate:"omitempty,oneof=weekly monthly quarterly yearly"`
	RiskThresholdCritical  *float64          `json:"risk_threshold_critical" validate:"omitempty,gt=0"`
	RiskThresholdOffTarget *float64          `json:"risk_threshold_off_target" validate:"omitempty,gt=0"`
	TimeSeries             []TimeSeriesPoint `json:"time_series" validate:"dive"`
	Visualization          Visualization     `json:"visualization"`
}

// UpdateMetric defines what information may be provided to modify an existing Metric.
// nil fields are left unchanged.
type UpdateMetric struct {
	Name                   *string           `json:"name" validate:"omitempty,notblank,max=200"`
	Description            *string           `json:"description"`
	MetricType             *Type             `json:"metric_type" validate:"omitempty,metrictype"`
	MetricCategory         *string           `json:"metric_category"`
	CurrentValue           *float64          `json:"current_value"`
	TargetValue            *float64          `json:"target_value"`
	Unit                   *string           `json:"unit" validate:"omitempty,max=30"`
	IsHigherBetter         *bool             `json:"is_higher_better"`
	CollectionFrequency    *string           `json:"collection_frequency" validate:"omitempty,oneof=weekly monthly quarterly yearly"`
	RiskThresholdCritical  *float64          `json:"risk_threshold_critical" validate:"omitempty,gt=0"`
	RiskThresholdOffTarget *float64          `json:"risk_threshold_off_target" validate:"omitempty,gt=0"`
	TimeSeries             []TimeSeriesPoint `json:"time_series" validate:"omitempty,dive"`
	Visualization          *Visualization    `json:"visualization"`
}

type UpdateValue struct {
	Value *float64 `json:"value" validate:"required"`
}

// Order is a new display position of a metric.
type Order struct {
	ID           string `json:"id" validate:"required"`
	DisplayOrder int    `json:"display_order" validate:"min=0"`
}
