package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kipimo/core/district"
	"github.com/trezcool/kipimo/core/goal"
)

type publicApi struct {
	districtSvc *district.Service
	goalSvc     *goal.Service
}

// registerPublicAPI exposes districts flagged `is_public`, without authentication.
func registerPublicAPI(g *echo.Group, deps ServerDeps) {
	api := publicApi{districtSvc: deps.DistrictSvc, goalSvc: deps.GoalSvc}

	pg := g.Group("/public")
	pg.GET("/districts/:slug", api.retrieveDistrict)
}

// PublicDistrict is the read-only dashboard of a public district.
type PublicDistrict struct {
	district.Summary
	Goals []*goal.HierarchicalGoal `json:"goals"`
}

func (api *publicApi) retrieveDistrict(ctx echo.Context) error {
	c := ctx.Request().Context()
	summary, err := api.districtSvc.GetBySlug(c, ctx.Param("slug"))
	if err != nil {
		return errors.Wrap(err, "summarizing district")
	}
	if !summary.IsPublic {
		return errHttpNotFound
	}

	tree, err := api.goalSvc.ByDistrict(c, summary.ID)
	if err != nil {
		return errors.Wrap(err, "querying goals")
	}
	if tree == nil {
		tree = []*goal.HierarchicalGoal{}
	}

	summary.AdminEmail = "" // not for the public
	return ctx.JSON(http.StatusOK, PublicDistrict{Summary: summary, Goals: tree})
}
