package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	echoapi "github.com/darasa-tz/darasa/apps/api/echo"
	"github.com/darasa-tz/darasa/core"
	"github.com/darasa-tz/darasa/core/assignment"
	"github.com/darasa-tz/darasa/core/billing"
	"github.com/darasa-tz/darasa/core/submission"
	"github.com/darasa-tz/darasa/core/tool"
	"github.com/darasa-tz/darasa/core/user"
	emailsvc "github.com/darasa-tz/darasa/services/email"
	logsvc "github.com/darasa-tz/darasa/services/logger"
	"github.com/darasa-tz/darasa/storage/database"
	sqlxrepos "github.com/darasa-tz/darasa/storage/database/sqlx"
)

func main() {
	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(std, core.Conf)
	logger.Enable(!core.Conf.Debug)

	// set up DB
	db, err := database.Open(core.Conf)
	if err != nil {
		logger.Fatal("opening database", err)
	}
	defer func() { _ = db.Close() }()

	// set up services
	var mailSvc core.EmailService
	if core.Conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}

	usrRepo := sqlxrepos.NewUserRepository(db)
	usrSvc := user.NewService(usrRepo, mailSvc)
	billingSvc := billing.NewService(sqlxrepos.NewBillingRepository(db), usrRepo, mailSvc)
	assignmentSvc := assignment.NewService(sqlxrepos.NewAssignmentRepository(db))
	submissionSvc := submission.NewService(sqlxrepos.NewSubmissionRepository(db))
	toolSvc := tool.NewService(sqlxrepos.NewToolRepository(db), billingSvc)

	// start API server
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	app := echoapi.NewServer(
		&echoapi.Options{
			Addr:          core.Conf.Server.Address(),
			Logger:        logger,
			Shutdown:      shutdown,
			UserSvc:       usrSvc,
			BillingSvc:    billingSvc,
			AssignmentSvc: assignmentSvc,
			SubmissionSvc: submissionSvc,
			ToolSvc:       toolSvc,
		},
	)

	serverErrs := make(chan error, 1)
	go func() { serverErrs <- app.Start() }()

	select {
	case err := <-serverErrs:
		logger.Fatal("server error", err)
	case sig := <-shutdown:
		logger.Info("shutting down", map[string]interface{}{"signal": sig.String()})

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := app.Stop(ctx); err != nil {
			logger.Error("graceful shutdown failed", err)
			os.Exit(1)
		}
	}
}
