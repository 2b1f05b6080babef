package echoapi

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/kipimo/core"
	"github.com/trezcool/kipimo/core/report"
)

var (
	orderingParam = "ordering"
	formatParam   = "format"
)

type Ordering struct {
	Orderings []core.DBOrdering
}

// Bind reads `?ordering=a,-b`, keeping only the `allowed` fields.
func (ord *Ordering) Bind(ctx echo.Context, allowed map[string]string) {
	val := ctx.QueryParam(orderingParam)
	if val == "" {
		return
	}
	ord.Orderings = core.ParseOrderings(val, allowed)
}

// bindFormat reads `?format=`, csv by default.
func bindFormat(ctx echo.Context) (report.Format, error) {
	f, err := report.ParseFormat(ctx.QueryParam(formatParam))
	if err != nil {
		return "", core.NewFieldError(formatParam, "%s", err.Error())
	}
	return f, nil
}

// bindBody decodes the JSON request body into `i`. Unlike echo.Context.Bind, path params are
// never bound, so a `:slug` param cannot leak into a same-named field of `i`.
func bindBody(ctx echo.Context, i interface{}) error {
	req := ctx.Request()
	if req.ContentLength == 0 {
		return nil
	}
	if err := json.NewDecoder(req.Body).Decode(i); err != nil && err != io.EOF {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body: "+err.Error()).SetInternal(err)
	}
	return nil
}
