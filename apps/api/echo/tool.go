package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/darasa-tz/darasa/core/tool"
	"github.com/darasa-tz/darasa/core/user"
)

type toolApi struct {
	svc    tool.Service
	usrSvc user.Service
}

func registerToolAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc tool.Service, usrSvc user.Service) {
	api := toolApi{svc: svc, usrSvc: usrSvc}

	tg := g.Group("/tools", jwt)
	tg.GET("", api.query)
	tg.POST("/:slug/use", api.use)
}

func (api *toolApi) query(ctx echo.Context) error {
	tls, err := api.svc.Query(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying tools")
	}
	if tls == nil {
		tls = []tool.Tool{}
	}
	return ctx.JSON(http.StatusOK, tls)
}

func (api *toolApi) use(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	tl, balance, err := api.svc.Use(ctx.Request().Context(), ctxUsr.ID, ctx.Param("slug"))
	if err != nil {
		return errors.Wrap(err, "using tool")
	}
	return ctx.JSON(http.StatusOK, ToolUseResponse{Tool: tl, Balance: balance})
}

type ToolUseResponse struct {
	Tool    tool.Tool `json:"tool"`
	Balance int       `json:"balance"`
}
