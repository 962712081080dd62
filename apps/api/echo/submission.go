package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/darasa-tz/darasa/core/submission"
)

type submissionApi struct {
	svc submission.Service
}

func registerSubmissionAPI(g *echo.Group, svc submission.Service) {
	api := submissionApi{svc: svc}
	g.GET("/submissions/leaderboard", api.leaderboard)
}

func (api *submissionApi) leaderboard(ctx echo.Context) error {
	limit, _ := strconv.Atoi(ctx.QueryParam("limit")) // 0 falls back to the default

	entries, err := api.svc.Leaderboard(ctx.Request().Context(), limit)
	if err != nil {
		ctx.Logger().Errorf("%+v", errors.Wrap(err, "querying leaderboard"))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch leaderboard")
	}
	if entries == nil {
		entries = []submission.Entry{}
	}
	return ctx.JSON(http.StatusOK, LeaderboardResponse{Success: true, Leaderboard: entries})
}

type LeaderboardResponse struct {
	Success     bool               `json:"success"`
	Leaderboard []submission.Entry `json:"leaderboard"`
}
