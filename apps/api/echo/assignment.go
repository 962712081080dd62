package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/darasa-tz/darasa/core/assignment"
)

type assignmentApi struct {
	svc assignment.Service
}

func registerAssignmentAPI(g *echo.Group, svc assignment.Service) {
	api := assignmentApi{svc: svc}
	g.GET("/assignment/templates", api.queryTemplates)
}

func (api *assignmentApi) queryTemplates(ctx echo.Context) error {
	filter := new(assignment.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		filter = new(assignment.QueryFilter)
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	tps, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings...)
	if err != nil {
		ctx.Logger().Errorf("%+v", errors.Wrap(err, "querying templates"))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch templates")
	}
	if tps == nil {
		tps = []assignment.Template{}
	}
	return ctx.JSON(http.StatusOK, TemplatesResponse{Templates: tps})
}

type TemplatesResponse struct {
	Templates []assignment.Template `json:"templates"`
}
