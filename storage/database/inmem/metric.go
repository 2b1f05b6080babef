package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/trezcool/kipimo/core/metric"
)

type metricRepository struct {
	db *metricTable
}

var _ metric.Repository = (*metricRepository)(nil)

func NewMetricRepository(db *DB) metric.Repository {
	return &metricRepository{db: db.metric}
}

func (repo *metricRepository) filter(keep func(m *metric.Metric) bool) []metric.Metric {
	metrics := make([]metric.Metric, 0)
	for _, m := range repo.db.table {
		if keep(m) {
			metrics = append(metrics, *m)
		}
	}
	sort.SliceStable(metrics, func(i, j int) bool {
		if metrics[i].DisplayOrder != metrics[j].DisplayOrder {
			return metrics[i].DisplayOrder < metrics[j].DisplayOrder
		}
		return metrics[i].CreatedAt.Before(metrics[j].CreatedAt)
	})
	return metrics
}

func (repo *metricRepository) QueryByGoal(_ context.Context, goalID string) ([]metric.Metric, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.filter(func(m *metric.Metric) bool { return m.GoalID == goalID }), nil
}

func (repo *metricRepository) QueryByDistrict(_ context.Context, districtID string) ([]metric.Metric, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.filter(func(m *metric.Metric) bool { return m.DistrictID == districtID }), nil
}

func (repo *metricRepository) GetByID(_ context.Context, id string) (metric.Metric, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if m, ok := repo.db.table[id]; ok {
		return *m, nil
	}
	return metric.Metric{}, metric.ErrNotFound
}

func (repo *metricRepository) Create(_ context.Context, m metric.Metric) (metric.Metric, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.table[m.ID] = &m
	return m, nil
}

func (repo *metricRepository) Update(_ context.Context, m metric.Metric) (metric.Metric, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[m.ID]; !ok {
		return metric.Metric{}, metric.ErrNotFound
	}
	repo.db.table[m.ID] = &m
	return m, nil
}

func (repo *metricRepository) Delete(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return metric.ErrNotFound
	}
	delete(repo.db.table, id)
	return nil
}

func (repo *metricRepository) Reorder(_ context.Context, orders []metric.Order, updatedAt time.Time) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	// check everything first: all or nothing
	for _, o := range orders {
		if _, ok := repo.db.table[o.ID]; !ok {
			return metric.ErrNotFound
		}
	}
	for _, o := range orders {
		m := repo.db.table[o.ID]
		m.DisplayOrder = o.DisplayOrder
		m.UpdatedAt = updatedAt
	}
	return nil
}
