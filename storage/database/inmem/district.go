package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/trezcool/kipimo/core"
	"github.com/trezcool/kipimo/core/district"
)

type districtRepository struct {
	db *districtTable
}

var _ district.Repository = (*districtRepository)(nil)

func NewDistrictRepository(db *DB) district.Repository {
	return &districtRepository{db: db.district}
}

func (repo *districtRepository) QueryAll(_ context.Context, ordering []core.DBOrdering) ([]district.District, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	districts := make([]district.District, 0, len(repo.db.table))
	for _, d := range repo.db.table {
		districts = append(districts, *d)
	}
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "name", Ascending: true}}
	}
	sort.SliceStable(districts, func(i, j int) bool {
		for _, ord := range ordering {
			c := compareDistricts(districts[i], districts[j], ord.Field)
			if c == 0 {
				continue
			}
			return (c < 0) == ord.Ascending
		}
		return false
	})
	return districts, nil
}

func compareDistricts(a, b district.District, field string) int {
	switch field {
	case "slug":
		return strings.Compare(a.Slug, b.Slug)
	case "created_at":
		return compareTimes(a.CreatedAt.UnixNano(), b.CreatedAt.UnixNano())
	case "updated_at":
		return compareTimes(a.UpdatedAt.UnixNano(), b.UpdatedAt.UnixNano())
	default:
		return strings.Compare(a.Name, b.Name)
	}
}

func compareTimes(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func (repo *districtRepository) GetByID(_ context.Context, id string) (district.District, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if d, ok := repo.db.table[id]; ok {
		return *d, nil
	}
	return district.District{}, district.ErrNotFound
}

func (repo *districtRepository) GetBySlug(_ context.Context, slug string) (district.District, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, d := range repo.db.table {
		if d.Slug == slug {
			return *d, nil
		}
	}
	return district.District{}, district.ErrNotFound
}

func (repo *districtRepository) CheckSlugUniqueness(_ context.Context, slug, excludedID string) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, d := range repo.db.table {
		if d.Slug == slug && d.ID != excludedID {
			return district.ErrSlugExists
		}
	}
	return nil
}

func (repo *districtRepository) Create(_ context.Context, d district.District) (district.District, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.table[d.ID] = &d
	return d, nil
}

func (repo *districtRepository) Update(_ context.Context, d district.District) (district.District, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[d.ID]; !ok {
		return district.District{}, district.ErrNotFound
	}
	repo.db.table[d.ID] = &d
	return d, nil
}

func (repo *districtRepository) Delete(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return district.ErrNotFound
	}
	delete(repo.db.table, id)
	return nil
}
