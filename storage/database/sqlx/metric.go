package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kipimo/core/dashboard"
	"github.com/trezcool/kipimo/core/metric"
)

const metricColumns = `id, goal_id, district_id, name, description, metric_type, metric_category, current_value,
	target_value, unit, is_higher_better, risk_threshold_critical, risk_threshold_off_target,
	collection_frequency, time_series, visualization, status, display_order, created_at, updated_at`

// metricRow is a metrics table row; time_series and visualization are JSON text.
type metricRow struct {
	ID                     string               `db:"id"`
	GoalID                 string               `db:"goal_id"`
	DistrictID             string               `db:"district_id"`
	Name                   string               `db:"name"`
	Description            string               `db:"description"`
	MetricType             string               `db:"metric_type"`
	MetricCategory         string               `db:"metric_category"`
	CurrentValue           null.Float64         `db:"current_value"`
	TargetValue            null.Float64         `db:"target_value"`
	Unit                   string               `db:"unit"`
	IsHigherBetter         bool                 `db:"is_higher_better"`
	RiskThresholdCritical  float64              `db:"risk_threshold_critical"`
	RiskThresholdOffTarget float64              `db:"risk_threshold_off_target"`
	CollectionFrequency    string               `db:"collection_frequency"`
	TimeSeries             metric.TimeSeries    `db:"time_series"`
	Visualization          metric.Visualization `db:"visualization"`
	Status                 string               `db:"status"`
	DisplayOrder           int                  `db:"display_order"`
	CreatedAt              time.Time            `db:"created_at"`
	UpdatedAt              time.Time            `db:"updated_at"`
}

func newMetricRow(m metric.Metric) metricRow {
	return metricRow{
		ID:                     m.ID,
		GoalID:                 m.GoalID,
		DistrictID:             m.DistrictID,
		Name:                   m.Name,
		Description:            m.Description,
		MetricType:             string(m.MetricType),
		MetricCategory:         m.MetricCategory,
		CurrentValue:           null.Float64FromPtr(m.CurrentValue),
		TargetValue:            null.Float64FromPtr(m.TargetValue),
		Unit:                   m.Unit,
		IsHigherBetter:         m.IsHigherBetter,
		RiskThresholdCritical:  m.RiskThresholdCritical,
		RiskThresholdOffTarget: m.RiskThresholdOffTarget,
		CollectionFrequency:    m.CollectionFrequency,
		TimeSeries:             m.TimeSeries,
		Visualization:          m.Visualization,
		Status:                 string(m.Status),
		DisplayOrder:           m.DisplayOrder,
		CreatedAt:              m.CreatedAt,
		UpdatedAt:              m.UpdatedAt,
	}
}

func (r metricRow) toMetric() metric.Metric {
	return metric.Metric{
		ID:                     r.ID,
		GoalID:                 r.GoalID,
		DistrictID:             r.DistrictID,
		Name:                   r.Name,
		Description:            r.Description,
		MetricType:             metric.Type(r.MetricType),
		MetricCategory:         r.MetricCategory,
		CurrentValue:           r.CurrentValue.Ptr(),
		TargetValue:            r.TargetValue.Ptr(),
		Unit:                   r.Unit,
		IsHigherBetter:         r.IsHigherBetter,
		RiskThresholdCritical:  r.RiskThresholdCritical,
		RiskThresholdOffTarget: r.RiskThresholdOffTarget,
		CollectionFrequency:    r.CollectionFrequency,
		TimeSeries:             r.TimeSeries,
		Visualization:          r.Visualization,
		Status:                 dashboard.Bucket(r.Status),
		DisplayOrder:           r.DisplayOrder,
		CreatedAt:              r.CreatedAt.UTC(),
		UpdatedAt:              r.UpdatedAt.UTC(),
	}
}

type metricRepository struct {
	db *sqlx.DB
}

var _ metric.Repository = (*metricRepository)(nil)

func NewMetricRepository(db *sqlx.DB) *metricRepository {
	return &metricRepository{db: db}
}

func (repo *metricRepository) query(ctx context.Context, where string, args ...interface{}) ([]metric.Metric, error) {
	q := repo.db.Rebind(`SELECT ` + metricColumns + ` FROM metrics WHERE ` + where + ` ORDER BY display_order, created_at`)
	var rows []metricRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting metrics")
	}
	metrics := make([]metric.Metric, 0, len(rows))
	for _, r := range rows {
		metrics = append(metrics, r.toMetric())
	}
	return metrics, nil
}

func (repo *metricRepository) QueryByGoal(ctx context.Context, goalID string) ([]metric.Metric, error) {
	return repo.query(ctx, "goal_id = ?", goalID)
}

func (repo *metricRepository) QueryByDistrict(ctx context.Context, districtID string) ([]metric.Metric, error) {
	return repo.query(ctx, "district_id = ?", districtID)
}

func (repo *metricRepository) GetByID(ctx context.Context, id string) (metric.Metric, error) {
	var r metricRow
	q := repo.db.Rebind(`SELECT ` + metricColumns + ` FROM metrics WHERE id = ?`)
	if err := repo.db.GetContext(ctx, &r, q, id); err != nil {
		if err == sql.ErrNoRows {
			return metric.Metric{}, metric.ErrNotFound
		}
		return metric.Metric{}, errors.Wrap(err, "selecting metric")
	}
	return r.toMetric(), nil
}

func (repo *metricRepository) Create(ctx context.Context, m metric.Metric) (metric.Metric, error) {
	q := `INSERT INTO metrics (` + metricColumns + `) VALUES (:id, :goal_id, :district_id, :name, :description,
		:metric_type, :metric_category, :current_value, :target_value, :unit, :is_higher_better,
		:risk_threshold_critical, :risk_threshold_off_target, :collection_frequency, :time_series,
		:visualization, :status, :display_order, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, newMetricRow(m)); err != nil {
		return metric.Metric{}, errors.Wrap(err, "inserting metric")
	}
	return m, nil
}

func (repo *metricRepository) Update(ctx context.Context, m metric.Metric) (metric.Metric, error) {
	q := `UPDATE metrics SET name = :name, description = :description, metric_type = :metric_type,
		metric_category = :metric_category, current_value = :current_value, target_value = :target_value,
		unit = :unit, is_higher_better = :is_higher_better, risk_threshold_critical = :risk_threshold_critical,
		risk_threshold_off_target = :risk_threshold_off_target, collection_frequency = :collection_frequency,
		time_series = :time_series, visualization = :visualization, status = :status,
		display_order = :display_order, updated_at = :updated_at
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, newMetricRow(m))
	if err != nil {
		return metric.Metric{}, errors.Wrap(err, "updating metric")
	}
	if err = expectAffected(res, metric.ErrNotFound); err != nil {
		return metric.Metric{}, err
	}
	return m, nil
}

func (repo *metricRepository) Delete(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind(`DELETE FROM metrics WHERE id = ?`), id)
	if err != nil {
		return errors.Wrap(err, "deleting metric")
	}
	return expectAffected(res, metric.ErrNotFound)
}

func (repo *metricRepository) Reorder(ctx context.Context, orders []metric.Order, updatedAt time.Time) error {
	return withTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		q := tx.Rebind(`UPDATE metrics SET display_order = ?, updated_at = ? WHERE id = ?`)
		for _, o := range orders {
			res, err := tx.ExecContext(ctx, q, o.DisplayOrder, updatedAt, o.ID)
			if err != nil {
				return errors.Wrapf(err, "updating metric %s", o.ID)
			}
			if err = expectAffected(res, metric.ErrNotFound); err != nil {
				return err
			}
		}
		return nil
	})
}
