package billing

import (
	"context"
	"log"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/darasa-tz/darasa/core"
	"github.com/darasa-tz/darasa/core/user"
)

var (
	// errors
	ErrPaymentNotFound     = errors.New("payment not found")
	ErrPaymentConflict     = errors.New("payment already settled")
	ErrInsufficientCredits = errors.New("insufficient credits")
)

type (
	Repository interface {
		CreatePayment(ctx context.Context, pmt Payment) (Payment, error)
		GetPaymentByID(ctx context.Context, id string) (Payment, error)
		// QueryPayments applies AND operation on available QueryFilter fields,
		// most recent first by default.
		QueryPayments(ctx context.Context, filter *QueryFilter, ordering ...core.DBOrdering) ([]Payment, error)
		// SettlePayment atomically transitions a pending Payment to the given terminal
		// status and, for StatusCompleted, credits the owner's ledger by Payment.Amount
		// in the same transaction. The returned bool reports whether this call applied
		// the transition; when false the returned Payment carries the state already
		// recorded. A missing Payment yields ErrPaymentNotFound.
		SettlePayment(ctx context.Context, id string, status Status, txRef string) (Payment, bool, error)
		// GetBalance returns 0 for a principal without a ledger record.
		GetBalance(ctx context.Context, userID string) (int, error)
		// DebitBalance subtracts amount only when the ledger holds at least that much,
		// reporting whether the debit was applied along with the resulting balance.
		DebitBalance(ctx context.Context, userID string, amount int) (int, bool, error)
	}

	Service interface {
		Checkout(ctx context.Context, usr user.User, np NewPayment) (Payment, error)
		// Settle finalizes a Payment. It is idempotent: replaying a settlement that
		// already recorded the same terminal status is a no-op, never a double-credit.
		// It does not assume its caller authenticated anyone; entry points do that.
		Settle(ctx context.Context, paymentID string, status Status, txRef string) (Payment, error)
		GetByID(ctx context.Context, id string) (Payment, error)
		Query(ctx context.Context, filter *QueryFilter, ordering ...core.DBOrdering) ([]Payment, error)
		Balance(ctx context.Context, userID string) (int, error)
		Consume(ctx context.Context, userID string, amount int) (int, error)
	}

	service struct {
		repo    Repository
		usrRepo user.Repository
		mailSvc core.EmailService
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, usrRepo user.Repository, mailSvc core.EmailService) Service {
	return &service{
		repo:    repo,
		usrRepo: usrRepo,
		mailSvc: mailSvc,
	}
}

func (svc *service) Checkout(ctx context.Context, usr user.User, np NewPayment) (Payment, error) {
	pmt := Payment{
		UserID:    usr.ID,
		Amount:    np.Amount,
		Status:    StatusPending,
		CreatedAt: time.Now().UTC(),
	}
	pmt, err := svc.repo.CreatePayment(ctx, pmt)
	return pmt, errors.Wrap(err, "creating payment")
}

func (svc *service) Settle(ctx context.Context, paymentID string, status Status, txRef string) (Payment, error) {
	pmt, completed, err := svc.settle(ctx, paymentID, status, txRef)
	if completed {
		go svc.sendReceiptMail(pmt)
	}
	return pmt, err
}

// settle reports whether this call completed the Payment, in which case
// a receipt should go out.
func (svc *service) settle(ctx context.Context, paymentID string, status Status, txRef string) (Payment, bool, error) {
	if !status.Terminal() {
		return Payment{}, false, core.NewValidationError(errInvalidStatus,
			core.FieldError{Field: "status", Error: errInvalidStatus.Error()})
	}

	pmt, applied, err := svc.repo.SettlePayment(ctx, paymentID, status, txRef)
	if err != nil {
		return Payment{}, false, errors.Wrap(err, "settling payment")
	}
	if !applied {
		if pmt.Status == status {
			// replayed settlement of an already-recorded terminal status: no-op
			return pmt, false, nil
		}
		return Payment{}, false, ErrPaymentConflict
	}
	return pmt, status == StatusCompleted, nil
}

func (svc *service) GetByID(ctx context.Context, id string) (Payment, error) {
	return svc.repo.GetPaymentByID(ctx, id)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering ...core.DBOrdering) ([]Payment, error) {
	return svc.repo.QueryPayments(ctx, filter, ordering...)
}

func (svc *service) Balance(ctx context.Context, userID string) (int, error) {
	return svc.repo.GetBalance(ctx, userID)
}

func (svc *service) Consume(ctx context.Context, userID string, amount int) (int, error) {
	if amount <= 0 {
		return 0, core.NewValidationError(errors.New("invalid amount"),
			core.FieldError{Field: "amount", Error: "must be greater than zero"})
	}
	balance, applied, err := svc.repo.DebitBalance(ctx, userID, amount)
	if err != nil {
		return 0, errors.Wrap(err, "debiting balance")
	}
	if !applied {
		return balance, ErrInsufficientCredits
	}
	return balance, nil
}

func (svc *service) sendReceiptMail(pmt Payment) {
	usr, err := svc.usrRepo.GetUserByID(context.Background(), pmt.UserID)
	if err != nil {
		log.Printf("%+v", errors.Wrapf(err, "billing: dropping receipt for payment %s, looking up payee", pmt.ID))
		return
	}
	svc.mailSvc.SendMessages(
		&core.EmailMessage{
			To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
			Subject:      "Payment Received",
			TemplateName: "payment_receipt",
			TemplateData: struct {
				User    user.User
				Payment Payment
			}{usr, pmt},
		},
	)
}
