package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/trezcool/kipimo/core/goal"
)

type goalRepository struct {
	db *goalTable
}

var _ goal.Repository = (*goalRepository)(nil)

func NewGoalRepository(db *DB) goal.Repository {
	return &goalRepository{db: db.goal}
}

func (repo *goalRepository) filter(keep func(g *goal.Goal) bool) []goal.Goal {
	goals := make([]goal.Goal, 0)
	for _, g := range repo.db.table {
		if keep(g) {
			goals = append(goals, *g)
		}
	}
	sort.SliceStable(goals, func(i, j int) bool {
		if goals[i].Level != goals[j].Level {
			return goals[i].Level < goals[j].Level
		}
		return goals[i].OrderPosition < goals[j].OrderPosition
	})
	return goals
}

func (repo *goalRepository) QueryByDistrict(_ context.Context, districtID string) ([]goal.Goal, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.filter(func(g *goal.Goal) bool { return g.DistrictID == districtID }), nil
}

func (repo *goalRepository) QueryChildren(_ context.Context, parentID string) ([]goal.Goal, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.filter(func(g *goal.Goal) bool { return g.ParentID != nil && *g.ParentID == parentID }), nil
}

func (repo *goalRepository) GetByID(_ context.Context, id string) (goal.Goal, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if g, ok := repo.db.table[id]; ok {
		return *g, nil
	}
	return goal.Goal{}, goal.ErrNotFound
}

func (repo *goalRepository) Create(_ context.Context, g goal.Goal) (goal.Goal, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	g.Metrics = nil
	repo.db.table[g.ID] = &g
	return g, nil
}

func (repo *goalRepository) Update(_ context.Context, g goal.Goal) (goal.Goal, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[g.ID]; !ok {
		return goal.Goal{}, goal.ErrNotFound
	}
	g.Metrics = nil
	repo.db.table[g.ID] = &g
	return g, nil
}

func (repo *goalRepository) Delete(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return goal.ErrNotFound
	}
	delete(repo.db.table, id)
	return nil
}

func (repo *goalRepository) Reorder(_ context.Context, orders []goal.Order, updatedAt time.Time) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	// check everything first: all or nothing
	for _, o := range orders {
		if _, ok := repo.db.table[o.ID]; !ok {
			return goal.ErrNotFound
		}
	}
	for _, o := range orders {
		g := repo.db.table[o.ID]
		g.OrderPosition = o.OrderPosition
		g.UpdatedAt = updatedAt
	}
	return nil
}
