package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kipimo/core/goal"
)

const goalColumns = `id, district_id, parent_id, level, goal_number, order_position, title, description,
	status_detail, overall_progress, overall_progress_override, overall_progress_display_mode,
	overall_progress_custom_value, overall_progress_override_reason, created_at, updated_at`

// goalRow is a goals table row; nullable columns use null types.
type goalRow struct {
	ID                            string       `db:"id"`
	DistrictID                    string       `db:"district_id"`
	ParentID                      null.String  `db:"parent_id"`
	Level                         int          `db:"level"`
	GoalNumber                    string       `db:"goal_number"`
	OrderPosition                 int          `db:"order_position"`
	Title                         string       `db:"title"`
	Description                   string       `db:"description"`
	StatusDetail                  string       `db:"status_detail"`
	OverallProgress               null.Float64 `db:"overall_progress"`
	OverallProgressOverride       null.Float64 `db:"overall_progress_override"`
	OverallProgressDisplayMode    string       `db:"overall_progress_display_mode"`
	OverallProgressCustomValue    string       `db:"overall_progress_custom_value"`
	OverallProgressOverrideReason string       `db:"overall_progress_override_reason"`
	CreatedAt                     time.Time    `db:"created_at"`
	UpdatedAt                     time.Time    `db:"updated_at"`
}

func newGoalRow(g goal.Goal) goalRow {
	return goalRow{
		ID:                            g.ID,
		DistrictID:                    g.DistrictID,
		ParentID:                      null.StringFromPtr(g.ParentID),
		Level:                         int(g.Level),
		GoalNumber:                    g.GoalNumber,
		OrderPosition:                 g.OrderPosition,
		Title:                         g.Title,
		Description:                   g.Description,
		StatusDetail:                  g.StatusDetail,
		OverallProgress:               null.Float64FromPtr(g.OverallProgress),
		OverallProgressOverride:       null.Float64FromPtr(g.OverallProgressOverride),
		OverallProgressDisplayMode:    string(g.OverallProgressDisplayMode),
		OverallProgressCustomValue:    g.OverallProgressCustomValue,
		OverallProgressOverrideReason: g.OverallProgressOverrideReason,
		CreatedAt:                     g.CreatedAt,
		UpdatedAt:                     g.UpdatedAt,
	}
}

func (r goalRow) toGoal() goal.Goal {
	return goal.Goal{
		ID:                            r.ID,
		DistrictID:                    r.DistrictID,
		ParentID:                      r.ParentID.Ptr(),
		Level:                         goal.Level(r.Level),
		GoalNumber:                    r.GoalNumber,
		OrderPosition:                 r.OrderPosition,
		Title:                         r.Title,
		Description:                   r.Description,
		StatusDetail:                  r.StatusDetail,
		OverallProgress:               r.OverallProgress.Ptr(),
		OverallProgressOverride:       r.OverallProgressOverride.Ptr(),
		OverallProgressDisplayMode:    goal.DisplayMode(r.OverallProgressDisplayMode),
		OverallProgressCustomValue:    r.OverallProgressCustomValue,
		OverallProgressOverrideReason: r.OverallProgressOverrideReason,
		CreatedAt:                     r.CreatedAt.UTC(),
		UpdatedAt:                     r.UpdatedAt.UTC(),
	}
}

type goalRepository struct {
	db *sqlx.DB
}

var _ goal.Repository = (*goalRepository)(nil)

func NewGoalRepository(db *sqlx.DB) *goalRepository {
	return &goalRepository{db: db}
}

func (repo *goalRepository) query(ctx context.Context, where string, args ...interface{}) ([]goal.Goal, error) {
	q := repo.db.Rebind(`SELECT ` + goalColumns + ` FROM goals WHERE ` + where + ` ORDER BY level, order_position`)
	var rows []goalRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting goals")
	}
	goals := make([]goal.Goal, 0, len(rows))
	for _, r := range rows {
		goals = append(goals, r.toGoal())
	}
	return goals, nil
}

func (repo *goalRepository) QueryByDistrict(ctx context.Context, districtID string) ([]goal.Goal, error) {
	return repo.query(ctx, "district_id = ?", districtID)
}

func (repo *goalRepository) QueryChildren(ctx context.Context, parentID string) ([]goal.Goal, error) {
	return repo.query(ctx, "parent_id = ?", parentID)
}

func (repo *goalRepository) GetByID(ctx context.Context, id string) (goal.Goal, error) {
	var r goalRow
	q := repo.db.Rebind(`SELECT ` + goalColumns + ` FROM goals WHERE id = ?`)
	if err := repo.db.GetContext(ctx, &r, q, id); err != nil {
		if err == sql.ErrNoRows {
			return goal.Goal{}, goal.ErrNotFound
		}
		return goal.Goal{}, errors.Wrap(err, "selecting goal")
	}
	return r.toGoal(), nil
}

func (repo *goalRepository) Create(ctx context.Context, g goal.Goal) (goal.Goal, error) {
	q := `INSERT INTO goals (` + goalColumns + `) VALUES (:id, :district_id, :parent_id, :level, :goal_number,
		:order_position, :title, :description, :status_detail, :overall_progress, :overall_progress_override,
		:overall_progress_display_mode, :overall_progress_custom_value, :overall_progress_override_reason,
		:created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, newGoalRow(g)); err != nil {
		return goal.Goal{}, errors.Wrap(err, "inserting goal")
	}
	return g, nil
}

func (repo *goalRepository) Update(ctx context.Context, g goal.Goal) (goal.Goal, error) {
	q := `UPDATE goals SET goal_number = :goal_number, order_position = :order_position, title = :title,
		description = :description, status_detail = :status_detail, overall_progress = :overall_progress,
		overall_progress_override = :overall_progress_override,
		overall_progress_display_mode = :overall_progress_display_mode,
		overall_progress_custom_value = :overall_progress_custom_value,
		overall_progress_override_reason = :overall_progress_override_reason, updated_at = :updated_at
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, newGoalRow(g))
	if err != nil {
		return goal.Goal{}, errors.Wrap(err, "updating goal")
	}
	if err = expectAffected(res, goal.ErrNotFound); err != nil {
		return goal.Goal{}, err
	}
	g.Metrics = nil
	return g, nil
}

func (repo *goalRepository) Delete(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind(`DELETE FROM goals WHERE id = ?`), id)
	if err != nil {
		return errors.Wrap(err, "deleting goal")
	}
	return expectAffected(res, goal.ErrNotFound)
}

func (repo *goalRepository) Reorder(ctx context.Context, orders []goal.Order, updatedAt time.Time) error {
	return withTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		q := tx.Rebind(`UPDATE goals SET order_position = ?, updated_at = ? WHERE id = ?`)
		for _, o := range orders {
			res, err := tx.ExecContext(ctx, q, o.OrderPosition, updatedAt, o.ID)
			if err != nil {
				return errors.Wrapf(err, "updating goal %s", o.ID)
			}
			if err = expectAffected(res, goal.ErrNotFound); err != nil {
				return err
			}
		}
		return nil
	})
}

// withTx runs `fn` in a transaction, rolled back when `fn` fails.
func withTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	if err = fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Wrapf(err, "rolling back: %v", rbErr)
		}
		return err
	}
	return errors.Wrap(tx.Commit(), "committing transaction")
}
