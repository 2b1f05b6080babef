package echoapi

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kipimo/core/district"
	"github.com/trezcool/kipimo/core/goal"
	"github.com/trezcool/kipimo/core/report"
	archivesvc "github.com/trezcool/kipimo/services/archive"
)

const contextDistrictKey = "district"

type districtApi struct {
	svc       *district.Service
	goalSvc   *goal.Service
	reportSvc *report.Service
	validate  *validator.Validate
}

func registerDistrictAPI(g *echo.Group, jwt, admin echo.MiddlewareFunc, deps ServerDeps) {
	api := districtApi{
		svc:       deps.DistrictSvc,
		goalSvc:   deps.GoalSvc,
		reportSvc: deps.ReportSvc,
		validate:  deps.Validate,
	}

	dg := g.Group("/districts", jwt, admin)
	dg.GET("", api.query)
	dg.POST("", api.create)

	// detail endpoints
	sg := dg.Group("/:slug", districtMiddleware(api.svc))
	sg.GET("", api.retrieve)
	sg.PUT("", api.update)
	sg.DELETE("", api.destroy)
	sg.GET("/goals", api.queryGoals)
	sg.POST("/goals", api.createGoal)
	sg.POST("/goals/recalculate", api.recalculate)
	sg.GET("/export", api.export)
	sg.POST("/export/archive", api.archive)
	sg.POST("/report/email", api.emailReport)
}

// districtMiddleware loads the district of the `:slug` param into the context.
func districtMiddleware(svc *district.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			d, err := svc.Get(ctx.Request().Context(), ctx.Param("slug"))
			if err != nil {
				if errors.Cause(err) == district.ErrNotFound {
					return errHttpNotFound
				}
				return errors.Wrap(err, "finding district by slug")
			}
			ctx.Set(contextDistrictKey, d)
			return next(ctx)
		}
	}
}

func contextDistrict(ctx echo.Context) (district.District, error) {
	d, ok := ctx.Get(contextDistrictKey).(district.District)
	if !ok {
		return district.District{}, errors.New("district not found in echo.Context")
	}
	return d, nil
}

// Handlers

func (api *districtApi) query(ctx echo.Context) error {
	ordering := new(Ordering)
	ordering.Bind(ctx, district.Orderings)

	districts, err := api.svc.QueryAll(ctx.Request().Context(), ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying districts")
	}
	if districts == nil {
		districts = []district.District{}
	}
	return ctx.JSON(http.StatusOK, districts)
}

func (api *districtApi) create(ctx echo.Context) error {
	var data district.NewDistrict
	if err := bindBody(ctx, &data); err != nil {
		return errors.Wrap(err, "binding to NewDistrict")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	d, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating district")
	}
	return ctx.JSON(http.StatusCreated, d)
}

func (api *districtApi) retrieve(ctx echo.Context) error {
	d, err := contextDistrict(ctx)
	if err != nil {
		return err
	}
	summary, err := api.svc.GetBySlug(ctx.Request().Context(), d.Slug)
	if err != nil {
		return errors.Wrap(err, "summarizing district")
	}
	return ctx.JSON(http.StatusOK, summary)
}

func (api *districtApi) update(ctx echo.Context) error {
	d, err := contextDistrict(ctx)
	if err != nil {
		return err
	}

	var data district.UpdateDistrict
	if err = bindBody(ctx, &data); err != nil {
		return errors.Wrap(err, "binding to UpdateDistrict")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	if d, err = api.svc.Update(ctx.Request().Context(), d.ID, data); err != nil {
		return errors.Wrap(err, "updating district")
	}
	return ctx.JSON(http.StatusOK, d)
}

func (api *districtApi) destroy(ctx echo.Context) error {
	d, err := contextDistrict(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), d.ID); err != nil {
		return errors.Wrap(err, "deleting district")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *districtApi) queryGoals(ctx echo.Context) error {
	d, err := contextDistrict(ctx)
	if err != nil {
		return err
	}
	tree, err := api.goalSvc.ByDistrict(ctx.Request().Context(), d.ID)
	if err != nil {
		return errors.Wrap(err, "querying goals")
	}
	if tree == nil {
		tree = []*goal.HierarchicalGoal{}
	}
	return ctx.JSON(http.StatusOK, tree)
}

func (api *districtApi) createGoal(ctx echo.Context) error {
	d, err := contextDistrict(ctx)
	if err != nil {
		return err
	}

	var data goal.NewGoal
	if err = bindBody(ctx, &data); err != nil {
		return errors.Wrap(err, "binding to NewGoal")
	}
	data.DistrictID = d.ID
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	g, err := api.goalSvc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating goal")
	}
	return ctx.JSON(http.StatusCreated, newGoalDetail(g))
}

func (api *districtApi) recalculate(ctx echo.Context) error {
	d, err := contextDistrict(ctx)
	if err != nil {
		return err
	}
	goals, err := api.goalSvc.RecalculateDistrict(ctx.Request().Context(), d.ID)
	if err != nil {
		return errors.Wrap(err, "recalculating district progress")
	}
	return ctx.JSON(http.StatusOK, goal.BuildHierarchy(goals))
}

func (api *districtApi) export(ctx echo.Context) error {
	d, err := contextDistrict(ctx)
	if err != nil {
		return err
	}
	format, err := bindFormat(ctx)
	if err != nil {
		return err
	}

	f, err := api.reportSvc.Export(ctx.Request().Context(), d.Slug, format)
	if err != nil {
		return errors.Wrap(err, "exporting report")
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", f.Name))
	return ctx.Blob(http.StatusOK, f.ContentType, f.Content)
}

func (api *districtApi) archive(ctx echo.Context) error {
	d, err := contextDistrict(ctx)
	if err != nil {
		return err
	}
	format, err := bindFormat(ctx)
	if err != nil {
		return err
	}

	loc, err := api.reportSvc.Archive(ctx.Request().Context(), d.Slug, format)
	if err != nil {
		if errors.Cause(err) == archivesvc.ErrNotConfigured {
			return errArchiveNotConfigured
		}
		return errors.Wrap(err, "archiving report")
	}
	return ctx.JSON(http.StatusCreated, ArchiveResponse{Location: loc})
}

func (api *districtApi) emailReport(ctx echo.Context) error {
	d, err := contextDistrict(ctx)
	if err != nil {
		return err
	}
	format, err := bindFormat(ctx)
	if err != nil {
		return err
	}

	if err = api.reportSvc.Email(ctx.Request().Context(), d.Slug, format); err != nil {
		return errors.Wrap(err, "emailing report")
	}
	return ctx.JSON(http.StatusAccepted, SuccessResponse{
		Success: fmt.Sprintf("The %s report is on its way to %s.", format, d.AdminEmail),
	})
}

type ArchiveResponse struct {
	Location string `json:"location"`
}
