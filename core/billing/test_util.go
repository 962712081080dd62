package billing

import (
	"context"

	"github.com/darasa-tz/darasa/core"
	"github.com/darasa-tz/darasa/core/user"
)

type serviceMock struct {
	service
}

// NewServiceMock returns a Service that sends emails synchronously, for tests.
func NewServiceMock(repo Repository, usrRepo user.Repository, mailSvc core.EmailService) Service {
	return &serviceMock{
		service: service{
			repo:    repo,
			usrRepo: usrRepo,
			mailSvc: mailSvc,
		},
	}
}

func (svc *serviceMock) Settle(ctx context.Context, paymentID string, status Status, txRef string) (Payment, error) {
	pmt, completed, err := svc.settle(ctx, paymentID, status, txRef)
	if completed {
		// run synchronously
		svc.sendReceiptMail(pmt)
	}
	return pmt, err
}
