package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/kipimo/core"
	"github.com/trezcool/kipimo/core/district"
)

const districtColumns = `id, name, slug, primary_color, secondary_color, logo_url, admin_email, is_public, created_at, updated_at`

type districtRepository struct {
	db *sqlx.DB
}

var _ district.Repository = (*districtRepository)(nil)

func NewDistrictRepository(db *sqlx.DB) *districtRepository {
	return &districtRepository{db: db}
}

func (repo *districtRepository) QueryAll(ctx context.Context, ordering []core.DBOrdering) ([]district.District, error) {
	q := `SELECT ` + districtColumns + ` FROM districts` + core.OrderByClause(ordering, "name ASC")
	districts := make([]district.District, 0)
	if err := repo.db.SelectContext(ctx, &districts, q); err != nil {
		return nil, errors.Wrap(err, "selecting districts")
	}
	for i := range districts {
		utcDistrict(&districts[i])
	}
	return districts, nil
}

func (repo *districtRepository) get(ctx context.Context, where string, arg interface{}) (district.District, error) {
	var d district.District
	q := repo.db.Rebind(`SELECT ` + districtColumns + ` FROM districts WHERE ` + where + ` = ?`)
	if err := repo.db.GetContext(ctx, &d, q, arg); err != nil {
		if err == sql.ErrNoRows {
			return district.District{}, district.ErrNotFound
		}
		return district.District{}, errors.Wrap(err, "selecting district")
	}
	utcDistrict(&d)
	return d, nil
}

func utcDistrict(d *district.District) {
	d.CreatedAt = d.CreatedAt.UTC()
	d.UpdatedAt = d.UpdatedAt.UTC()
}

func (repo *districtRepository) GetByID(ctx context.Context, id string) (district.District, error) {
	return repo.get(ctx, "id", id)
}

func (repo *districtRepository) GetBySlug(ctx context.Context, slug string) (district.District, error) {
	return repo.get(ctx, "slug", slug)
}

func (repo *districtRepository) CheckSlugUniqueness(ctx context.Context, slug, excludedID string) error {
	var count int
	q := repo.db.Rebind(`SELECT COUNT(*) FROM districts WHERE slug = ? AND id <> ?`)
	if err := repo.db.GetContext(ctx, &count, q, slug, excludedID); err != nil {
		return errors.Wrap(err, "counting districts")
	}
	if count > 0 {
		return district.ErrSlugExists
	}
	return nil
}

func (repo *districtRepository) Create(ctx context.Context, d district.District) (district.District, error) {
	q := `INSERT INTO districts (` + districtColumns + `) VALUES
		(:id, :name, :slug, :primary_color, :secondary_color, :logo_url, :admin_email, :is_public, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, d); err != nil {
		return district.District{}, errors.Wrap(err, "inserting district")
	}
	return d, nil
}

func (repo *districtRepository) Update(ctx context.Context, d district.District) (district.District, error) {
	q := `UPDATE districts SET name = :name, slug = :slug, primary_color = :primary_color,
		secondary_color = :secondary_color, logo_url = :logo_url, admin_email = :admin_email,
		is_public = :is_public, updated_at = :updated_at
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, d)
	if err != nil {
		return district.District{}, errors.Wrap(err, "updating district")
	}
	if err = expectAffected(res, district.ErrNotFound); err != nil {
		return district.District{}, err
	}
	return d, nil
}

func (repo *districtRepository) Delete(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind(`DELETE FROM districts WHERE id = ?`), id)
	if err != nil {
		return errors.Wrap(err, "deleting district")
	}
	return expectAffected(res, district.ErrNotFound)
}

// expectAffected returns `notFound` when no row was affected.
func expectAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "counting affected rows")
	}
	if n == 0 {
		return notFound
	}
	return nil
}
