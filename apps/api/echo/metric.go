package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kipimo/core/goal"
	"github.com/trezcool/kipimo/core/metric"
)

type metricApi struct {
	svc      *metric.Service
	goalSvc  *goal.Service
	validate *validator.Validate
}

func registerMetricAPI(g *echo.Group, jwt, admin echo.MiddlewareFunc, deps ServerDeps) {
	api := metricApi{
		svc:      deps.MetricSvc,
		goalSvc:  deps.GoalSvc,
		validate: deps.Validate,
	}

	mg := g.Group("/metrics", jwt, admin)
	mg.PUT("/reorder", api.reorder)

	// detail endpoints
	dg := mg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
	dg.PUT("/value", api.updateValue)
}

// metricDetail is a metric with its status resolved against its own thresholds.
type metricDetail struct {
	metric.Metric
	CurrentStatus metric.Status `json:"current_status"`
}

func (api *metricApi) detail(m metric.Metric) metricDetail {
	return metricDetail{Metric: m, CurrentStatus: m.CurrentStatus(api.svc.DefaultThresholds())}
}

// Handlers

func (api *metricApi) retrieve(ctx echo.Context) error {
	m, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding metric by ID")
	}
	return ctx.JSON(http.StatusOK, api.detail(m))
}

func (api *metricApi) update(ctx echo.Context) error {
	var data metric.UpdateMetric
	if err := bindBody(ctx, &data); err != nil {
		return errors.Wrap(err, "binding to UpdateMetric")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	c := ctx.Request().Context()
	m, err := api.svc.Update(c, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating metric")
	}
	if _, err = api.goalSvc.RecalculateProgress(c, m.GoalID); err != nil {
		return errors.Wrap(err, "recalculating progress")
	}
	return ctx.JSON(http.StatusOK, api.detail(m))
}

// updateValue records a new current value, then refreshes the progress of the goal.
func (api *metricApi) updateValue(ctx echo.Context) error {
	var data metric.UpdateValue
	if err := bindBody(ctx, &data); err != nil {
		return errors.Wrap(err, "binding to UpdateValue")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	c := ctx.Request().Context()
	m, err := api.svc.UpdateValue(c, ctx.Param("id"), *data.Value)
	if err != nil {
		return errors.Wrap(err, "updating metric value")
	}
	if _, err = api.goalSvc.RecalculateProgress(c, m.GoalID); err != nil {
		return errors.Wrap(err, "recalculating progress")
	}
	return ctx.JSON(http.StatusOK, api.detail(m))
}

func (api *metricApi) destroy(ctx echo.Context) error {
	c := ctx.Request().Context()
	m, err := api.svc.GetByID(c, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding metric by ID")
	}
	if err = api.svc.Delete(c, m.ID); err != nil {
		return errors.Wrap(err, "deleting metric")
	}
	if _, err = api.goalSvc.RecalculateProgress(c, m.GoalID); err != nil {
		return errors.Wrap(err, "recalculating progress")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *metricApi) reorder(ctx echo.Context) error {
	var data MetricReorderRequest
	if err := bindBody(ctx, &data); err != nil {
		return errors.Wrap(err, "binding to MetricReorderRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}
	if err := api.svc.Reorder(ctx.Request().Context(), data.Orders); err != nil {
		return errors.Wrap(err, "reordering metrics")
	}
	return ctx.NoContent(http.StatusNoContent)
}
