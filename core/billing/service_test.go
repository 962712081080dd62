package billing_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darasa-tz/darasa/core"
	"github.com/darasa-tz/darasa/core/billing"
	"github.com/darasa-tz/darasa/core/user"
	emailsvc "github.com/darasa-tz/darasa/services/email"
	dummydb "github.com/darasa-tz/darasa/storage/database/dummy"
)

type testEnv struct {
	db      *dummydb.DB
	usrRepo user.Repository
	svc     billing.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := dummydb.Open()
	require.NoError(t, err)
	usrRepo := dummydb.NewUserRepository(db)
	svc := billing.NewServiceMock(dummydb.NewBillingRepository(db), usrRepo, emailsvc.NewConsoleServiceMock())
	emailsvc.ClearSentMessages()
	return &testEnv{db: db, usrRepo: usrRepo, svc: svc}
}

func (env *testEnv) createUser(t *testing.T, email string) user.User {
	t.Helper()
	usr := user.User{Name: "Student", Email: email, Phone: "+255712345678", Roles: []string{user.RoleStudent}}
	usr.SetActive(true)
	require.NoError(t, usr.SetPassword("secret"))
	usr, err := env.usrRepo.CreateUser(context.Background(), usr)
	require.NoError(t, err)
	return usr
}

func (env *testEnv) checkout(t *testing.T, usr user.User, amount int) billing.Payment {
	t.Helper()
	pmt, err := env.svc.Checkout(context.Background(), usr, billing.NewPayment{Amount: amount})
	require.NoError(t, err)
	return pmt
}

func Test_billing_Checkout(t *testing.T) {
	env := newTestEnv(t)
	usr := env.createUser(t, "neema@test.tz")
	ctx := context.Background()

	pmt := env.checkout(t, usr, 50)
	assert.NotEmpty(t, pmt.ID)
	assert.Equal(t, usr.ID, pmt.UserID)
	assert.Equal(t, 50, pmt.Amount)
	assert.Equal(t, billing.StatusPending, pmt.Status)
	assert.Nil(t, pmt.SettledAt)

	// a pending payment does not affect the balance
	balance, err := env.svc.Balance(ctx, usr.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, balance)
}

func Test_billing_Settle_completed(t *testing.T) {
	env := newTestEnv(t)
	usr := env.createUser(t, "neema@test.tz")
	ctx := context.Background()
	pmt := env.checkout(t, usr, 50)

	settled, err := env.svc.Settle(ctx, pmt.ID, billing.StatusCompleted, "FLK-001")
	require.NoError(t, err)
	assert.Equal(t, billing.StatusCompleted, settled.Status)
	assert.Equal(t, "FLK-001", settled.TransactionRef)
	require.NotNil(t, settled.SettledAt)

	balance, err := env.svc.Balance(ctx, usr.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, balance)

	// receipt goes out
	require.Len(t, emailsvc.SentMessages, 1)
	assert.Equal(t, "Payment Received", emailsvc.SentMessages[0].Subject)
}

func Test_billing_Settle_replay_is_noop(t *testing.T) {
	env := newTestEnv(t)
	usr := env.createUser(t, "neema@test.tz")
	ctx := context.Background()
	pmt := env.checkout(t, usr, 50)

	_, err := env.svc.Settle(ctx, pmt.ID, billing.StatusCompleted, "FLK-001")
	require.NoError(t, err)

	// replaying the same settlement must not credit again
	settled, err := env.svc.Settle(ctx, pmt.ID, billing.StatusCompleted, "FLK-001")
	require.NoError(t, err)
	assert.Equal(t, billing.StatusCompleted, settled.Status)

	balance, err := env.svc.Balance(ctx, usr.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, balance)

	// no second receipt either
	assert.Len(t, emailsvc.SentMessages, 1)
}

func Test_billing_Settle_conflict(t *testing.T) {
	env := newTestEnv(t)
	usr := env.createUser(t, "neema@test.tz")
	ctx := context.Background()
	pmt := env.checkout(t, usr, 50)

	_, err := env.svc.Settle(ctx, pmt.ID, billing.StatusCompleted, "FLK-001")
	require.NoError(t, err)

	// a different terminal status for an already settled payment is a conflict
	_, err = env.svc.Settle(ctx, pmt.ID, billing.StatusFailed, "FLK-001")
	assert.Equal(t, billing.ErrPaymentConflict, errors.Cause(err))

	// and the balance stays put
	balance, err := env.svc.Balance(ctx, usr.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, balance)
}

func Test_billing_Settle_failed_never_credits(t *testing.T) {
	env := newTestEnv(t)
	usr := env.createUser(t, "neema@test.tz")
	ctx := context.Background()
	pmt := env.checkout(t, usr, 50)

	settled, err := env.svc.Settle(ctx, pmt.ID, billing.StatusFailed, "FLK-002")
	require.NoError(t, err)
	assert.Equal(t, billing.StatusFailed, settled.Status)

	balance, err := env.svc.Balance(ctx, usr.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, balance)
	assert.Empty(t, emailsvc.SentMessages)
}

func Test_billing_Settle_receipt_skipped_for_missing_payee(t *testing.T) {
	env := newTestEnv(t)
	usr := env.createUser(t, "neema@test.tz")
	ctx := context.Background()
	pmt := env.checkout(t, usr, 50)

	require.NoError(t, env.usrRepo.DeleteUsersByID(ctx, usr.ID))

	// settlement still succeeds; only the receipt is dropped
	settled, err := env.svc.Settle(ctx, pmt.ID, billing.StatusCompleted, "FLK-001")
	require.NoError(t, err)
	assert.Equal(t, billing.StatusCompleted, settled.Status)
	assert.Empty(t, emailsvc.SentMessages)
}

func Test_billing_Settle_errors(t *testing.T) {
	env := newTestEnv(t)
	usr := env.createUser(t, "neema@test.tz")
	ctx := context.Background()
	pmt := env.checkout(t, usr, 50)

	t.Run("unknown payment", func(t *testing.T) {
		_, err := env.svc.Settle(ctx, "2da9bb3c-0000-0000-0000-000000000000", billing.StatusCompleted, "FLK-003")
		assert.Equal(t, billing.ErrPaymentNotFound, errors.Cause(err))
	})

	t.Run("non-terminal status", func(t *testing.T) {
		_, err := env.svc.Settle(ctx, pmt.ID, billing.StatusPending, "FLK-003")
		var vErr *core.ValidationError
		assert.True(t, errors.As(err, &vErr))
	})
}

func Test_billing_Consume(t *testing.T) {
	env := newTestEnv(t)
	usr := env.createUser(t, "neema@test.tz")
	ctx := context.Background()

	t.Run("insufficient credits", func(t *testing.T) {
		_, err := env.svc.Consume(ctx, usr.ID, 5)
		assert.Equal(t, billing.ErrInsufficientCredits, errors.Cause(err))
	})

	t.Run("debits down to zero", func(t *testing.T) {
		env.db.SeedBalance(usr.ID, 10)

		balance, err := env.svc.Consume(ctx, usr.ID, 10)
		require.NoError(t, err)
		assert.Equal(t, 0, balance)

		// next use is rejected, never a negative balance
		_, err = env.svc.Consume(ctx, usr.ID, 1)
		assert.Equal(t, billing.ErrInsufficientCredits, errors.Cause(err))
	})
}

func Test_billing_Balance_defaults_to_zero(t *testing.T) {
	env := newTestEnv(t)
	usr := env.createUser(t, "neema@test.tz")

	balance, err := env.svc.Balance(context.Background(), usr.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, balance)
}
