package tests

import (
	"log"
	"os"
	"testing"

	. "github.com/darasa-tz/darasa/apps/api/echo"
	"github.com/darasa-tz/darasa/core"
	"github.com/darasa-tz/darasa/core/assignment"
	"github.com/darasa-tz/darasa/core/billing"
	"github.com/darasa-tz/darasa/core/submission"
	"github.com/darasa-tz/darasa/core/tool"
	"github.com/darasa-tz/darasa/core/user"
	emailsvc "github.com/darasa-tz/darasa/services/email"
	logsvc "github.com/darasa-tz/darasa/services/logger"
	dummydb "github.com/darasa-tz/darasa/storage/database/dummy"
)

var (
	db          *dummydb.DB
	app         Server
	usrRepo     user.Repository
	billingRepo billing.Repository

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errForbidden    = httpErr{Error: "permission denied"}
	errNotFound     = httpErr{Error: "not found"}
)

func TestMain(m *testing.M) {
	// stable error bodies
	core.Conf.Debug = false

	var err error
	if db, err = dummydb.Open(); err != nil {
		log.Fatalf("dummydb.Open(): %v", err)
	}
	usrRepo = dummydb.NewUserRepository(db)
	billingRepo = dummydb.NewBillingRepository(db)

	// set up services
	mailSvc := emailsvc.NewConsoleServiceMock()
	usrSvc := user.NewServiceMock(usrRepo, mailSvc)
	billingSvc := billing.NewServiceMock(billingRepo, usrRepo, mailSvc)
	assignmentSvc := assignment.NewService(dummydb.NewAssignmentRepository(db))
	submissionSvc := submission.NewService(dummydb.NewSubmissionRepository(db))
	toolSvc := tool.NewService(dummydb.NewToolRepository(db), billingSvc)

	logger := logsvc.NewRollbarLogger(log.New(os.Stdout, "TEST : ", log.LstdFlags), core.Conf)
	logger.Enable(false)

	// set up server
	app = NewServer(
		&Options{
			DisableReqLogs: true,
			Logger:         logger,
			UserSvc:        usrSvc,
			BillingSvc:     billingSvc,
			AssignmentSvc:  assignmentSvc,
			SubmissionSvc:  submissionSvc,
			ToolSvc:        toolSvc,
		},
	)

	os.Exit(m.Run())
}
