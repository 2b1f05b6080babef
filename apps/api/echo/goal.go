package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kipimo/core"
	"github.com/trezcool/kipimo/core/district"
	"github.com/trezcool/kipimo/core/goal"
	"github.com/trezcool/kipimo/core/metric"
)

type goalApi struct {
	svc         *goal.Service
	districtSvc *district.Service
	metricSvc   *metric.Service
	logger      core.Logger
	validate    *validator.Validate
}

func registerGoalAPI(g *echo.Group, jwt, admin echo.MiddlewareFunc, deps ServerDeps) {
	api := goalApi{
		svc:         deps.GoalSvc,
		districtSvc: deps.DistrictSvc,
		metricSvc:   deps.MetricSvc,
		logger:      deps.Logger,
		validate:    deps.Validate,
	}

	gg := g.Group("/goals", jwt, admin)
	gg.PUT("/reorder", api.reorder)

	// detail endpoints
	dg := gg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
	dg.GET("/children", api.children)
	dg.PUT("/override", api.setOverride)
	dg.DELETE("/override", api.clearOverride)
	dg.POST("/recalculate", api.recalculate)
	dg.GET("/metrics", api.queryMetrics)
	dg.POST("/metrics", api.createMetric)
}

// goalDetail is a goal as rendered by the API: with its live progress, status and display.
type goalDetail struct {
	goal.Goal
	CalculatedProgress int          `json:"calculated_progress"`
	Status             goal.Status  `json:"status"`
	Display            goal.Display `json:"display"`
}

func newGoalDetail(g goal.Goal) goalDetail {
	progress := goal.CalculateProgress(g)
	live := g
	p := float64(progress)
	live.OverallProgress = &p
	return goalDetail{
		Goal:               g,
		CalculatedProgress: progress,
		Status:             goal.GetStatus(g),
		Display:            goal.ResolveDisplay(live),
	}
}

type (
	GoalReorderRequest struct {
		Orders []goal.Order `json:"orders" validate:"required,dive"`
	}

	MetricReorderRequest struct {
		Orders []metric.Order `json:"orders" validate:"required,dive"`
	}
)

// Handlers

func (api *goalApi) retrieve(ctx echo.Context) error {
	g, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding goal by ID")
	}
	return ctx.JSON(http.StatusOK, newGoalDetail(g))
}

func (api *goalApi) update(ctx echo.Context) error {
	var data goal.UpdateGoal
	if err := bindBody(ctx, &data); err != nil {
		return errors.Wrap(err, "binding to UpdateGoal")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	c := ctx.Request().Context()
	if _, err := api.svc.Update(c, ctx.Param("id"), data); err != nil {
		return errors.Wrap(err, "updating goal")
	}
	g, err := api.svc.GetByID(c, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding goal by ID")
	}
	return ctx.JSON(http.StatusOK, newGoalDetail(g))
}

func (api *goalApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting goal")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *goalApi) children(ctx echo.Context) error {
	children, err := api.svc.GetChildren(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying children")
	}
	if children == nil {
		children = []goal.Goal{}
	}
	return ctx.JSON(http.StatusOK, children)
}

func (api *goalApi) reorder(ctx echo.Context) error {
	var data GoalReorderRequest
	if err := bindBody(ctx, &data); err != nil {
		return errors.Wrap(err, "binding to GoalReorderRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}
	if err := api.svc.Reorder(ctx.Request().Context(), data.Orders); err != nil {
		return errors.Wrap(err, "reordering goals")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *goalApi) setOverride(ctx echo.Context) error {
	var data goal.ProgressOverride
	if err := bindBody(ctx, &data); err != nil {
		return errors.Wrap(err, "binding to ProgressOverride")
	}

	c := ctx.Request().Context()
	if _, err := api.svc.SetOverride(c, ctx.Param("id"), data); err != nil {
		return errors.Wrap(err, "setting progress override")
	}
	g, err := api.svc.GetByID(c, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding goal by ID")
	}

	// the override is saved; a failed notification is only worth a log line
	if err = api.districtSvc.NotifyProgressOverride(c, g); err != nil {
		api.logger.Error("notifying progress override", err, contextPerson(ctx))
	}
	return ctx.JSON(http.StatusOK, newGoalDetail(g))
}

func (api *goalApi) clearOverride(ctx echo.Context) error {
	c := ctx.Request().Context()
	if _, err := api.svc.ClearOverride(c, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "clearing progress override")
	}
	g, err := api.svc.GetByID(c, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding goal by ID")
	}
	return ctx.JSON(http.StatusOK, newGoalDetail(g))
}

func (api *goalApi) recalculate(ctx echo.Context) error {
	g, err := api.svc.RecalculateProgress(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "recalculating progress")
	}
	return ctx.JSON(http.StatusOK, newGoalDetail(g))
}

func (api *goalApi) queryMetrics(ctx echo.Context) error {
	c := ctx.Request().Context()
	g, err := api.svc.GetByID(c, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding goal by ID")
	}
	metrics := g.Metrics
	if metrics == nil {
		metrics = []metric.Metric{}
	}
	return ctx.JSON(http.StatusOK, metrics)
}

func (api *goalApi) createMetric(ctx echo.Context) error {
	c := ctx.Request().Context()
	g, err := api.svc.GetByID(c, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding goal by ID")
	}

	var data metric.NewMetric
	if err = bindBody(ctx, &data); err != nil {
		return errors.Wrap(err, "binding to NewMetric")
	}
	data.GoalID = g.ID
	data.DistrictID = g.DistrictID
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	m, err := api.metricSvc.Create(c, data)
	if err != nil {
		return errors.Wrap(err, "creating metric")
	}
	if _, err = api.svc.RecalculateProgress(c, g.ID); err != nil {
		return errors.Wrap(err, "recalculating progress")
	}
	return ctx.JSON(http.StatusCreated, m)
}
