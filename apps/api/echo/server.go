package echoapi

import (
	"context"
	"net/http"
	"os"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/darasa-tz/darasa/core"
	"github.com/darasa-tz/darasa/core/assignment"
	"github.com/darasa-tz/darasa/core/billing"
	"github.com/darasa-tz/darasa/core/submission"
	"github.com/darasa-tz/darasa/core/tool"
	"github.com/darasa-tz/darasa/core/user"
)

type (
	Options struct {
		Addr           string
		DisableReqLogs bool
		Logger         core.Logger
		// Shutdown receives SIGTERM when an unrecoverable error is caught.
		Shutdown chan os.Signal

		UserSvc       user.Service
		BillingSvc    billing.Service
		AssignmentSvc assignment.Service
		SubmissionSvc submission.Service
		ToolSvc       tool.Service
	}

	Server interface {
		http.Handler
		Start() error
		Stop(context.Context) error
	}

	server struct {
		opts *Options
		app  *echo.Echo
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts: opts,
		app:  echo.New(),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(core.Conf.Debug || core.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.signalShutdown)
	s.app.Debug = core.Conf.Debug

	s.app.GET("/", home)

	api := s.app.Group("/api")
	jwt := middleware.JWTWithConfig(appJWTConfig)

	registerUserAPI(api, jwt, s.opts.UserSvc)
	registerAssignmentAPI(api, s.opts.AssignmentSvc)
	registerSubmissionAPI(api, s.opts.SubmissionSvc)
	registerBillingAPI(api, jwt, s.opts.BillingSvc, s.opts.UserSvc)
	registerToolAPI(api, jwt, s.opts.ToolSvc, s.opts.UserSvc)
}

func (s *server) signalShutdown() {
	if s.opts.Shutdown != nil {
		s.opts.Shutdown <- syscall.SIGTERM
	}
}

func (s *server) Start() error {
	return s.app.Start(s.opts.Addr)
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Darasa API!")
}
