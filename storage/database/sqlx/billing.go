package sqlxrepos

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/darasa-tz/darasa/core"
	"github.com/darasa-tz/darasa/core/billing"
)

var paymentColumns = []string{"id", "user_id", "amount", "status", "transaction_ref", "created_at", "settled_at"}

type dbPayment struct {
	ID             string         `db:"id"`
	UserID         string         `db:"user_id"`
	Amount         int            `db:"amount"`
	Status         string         `db:"status"`
	TransactionRef sql.NullString `db:"transaction_ref"`
	CreatedAt      sql.NullTime   `db:"created_at"`
	SettledAt      sql.NullTime   `db:"settled_at"`
}

func (p dbPayment) toPayment() billing.Payment {
	pmt := billing.Payment{
		ID:             p.ID,
		UserID:         p.UserID,
		Amount:         p.Amount,
		Status:         billing.Status(p.Status),
		TransactionRef: p.TransactionRef.String,
		CreatedAt:      p.CreatedAt.Time,
	}
	if p.SettledAt.Valid {
		settledAt := p.SettledAt.Time
		pmt.SettledAt = &settledAt
	}
	return pmt
}

type billingRepository struct {
	db *sqlx.DB
}

var _ billing.Repository = (*billingRepository)(nil) // interface compliance check

func NewBillingRepository(db *sql.DB) billing.Repository {
	return &billingRepository{db: sqlx.NewDb(db, core.Conf.Database.Engine)}
}

// trapNoRowsErr maps psql "no rows" err to billing.ErrPaymentNotFound
func (repo billingRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return billing.ErrPaymentNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo billingRepository) CreatePayment(ctx context.Context, pmt billing.Payment) (billing.Payment, error) {
	pmt.ID = uuid.New().String()
	query, args, err := psql.Insert("payments").
		Columns("id", "user_id", "amount", "status", "created_at").
		Values(pmt.ID, pmt.UserID, pmt.Amount, pmt.Status, pmt.CreatedAt.UTC()).
		ToSql()
	if err != nil {
		return billing.Payment{}, errors.Wrap(err, "building query")
	}
	if _, err = repo.db.ExecContext(ctx, query, args...); err != nil {
		return billing.Payment{}, errors.Wrap(err, "inserting payment")
	}
	return pmt, nil
}

func (repo billingRepository) GetPaymentByID(ctx context.Context, id string) (billing.Payment, error) {
	query, args, err := psql.Select(paymentColumns...).From("payments").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return billing.Payment{}, errors.Wrap(err, "building query")
	}
	var row dbPayment
	if err = repo.db.GetContext(ctx, &row, query, args...); err != nil {
		return billing.Payment{}, repo.trapNoRowsErr(err, "getting payment")
	}
	return row.toPayment(), nil
}

func (repo billingRepository) QueryPayments(ctx context.Context, filter *billing.QueryFilter, ordering ...core.DBOrdering) ([]billing.Payment, error) {
	builder := psql.Select(paymentColumns...).From("payments")
	if filter != nil {
		if filter.UserID != "" {
			builder = builder.Where(sq.Eq{"user_id": filter.UserID})
		}
		if filter.Status != "" {
			builder = builder.Where(sq.Eq{"status": filter.Status})
		}
	}
	builder = orderBy(builder, ordering, "created_at DESC")

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	var rows []dbPayment
	if err = repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying payments")
	}
	pmts := make([]billing.Payment, 0, len(rows))
	for _, row := range rows {
		pmts = append(pmts, row.toPayment())
	}
	return pmts, nil
}

// SettlePayment transitions the payment and credits the owner's ledger in one
// transaction. The UPDATE's status guard is the linearization point: of any
// number of concurrent settlement attempts, exactly one sees rows=1.
func (repo billingRepository) SettlePayment(ctx context.Context, id string, status billing.Status, txRef string) (billing.Payment, bool, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return billing.Payment{}, false, errors.Wrap(err, "starting transaction")
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`UPDATE payments
		 SET status = $2, transaction_ref = $3, settled_at = now()
		 WHERE id = $1 AND status = $4`,
		id, status, txRef, billing.StatusPending)
	if err != nil {
		return billing.Payment{}, false, errors.Wrap(err, "updating payment status")
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return billing.Payment{}, false, errors.Wrap(err, "updating payment status")
	}

	var row dbPayment
	query, args, err := psql.Select(paymentColumns...).From("payments").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return billing.Payment{}, false, errors.Wrap(err, "building query")
	}
	if err = tx.GetContext(ctx, &row, query, args...); err != nil {
		return billing.Payment{}, false, repo.trapNoRowsErr(err, "getting payment")
	}
	pmt := row.toPayment()

	if rows == 0 {
		// lost the race or replayed; report the recorded state
		return pmt, false, nil
	}

	if status == billing.StatusCompleted {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO credit_ledgers (user_id, balance, updated_at)
			 VALUES ($1, $2, now())
			 ON CONFLICT (user_id)
			 DO UPDATE SET balance = credit_ledgers.balance + EXCLUDED.balance, updated_at = now()`,
			pmt.UserID, pmt.Amount)
		if err != nil {
			return billing.Payment{}, false, errors.Wrap(err, "crediting ledger")
		}
	}

	if err = tx.Commit(); err != nil {
		return billing.Payment{}, false, errors.Wrap(err, "committing settlement")
	}
	return pmt, true, nil
}

func (repo billingRepository) GetBalance(ctx context.Context, userID string) (int, error) {
	var balance int
	err := repo.db.GetContext(ctx, &balance, `SELECT balance FROM credit_ledgers WHERE user_id = $1`, userID)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrap(err, "getting balance")
	}
	return balance, nil
}

func (repo billingRepository) DebitBalance(ctx context.Context, userID string, amount int) (int, bool, error) {
	var balance int
	err := repo.db.GetContext(ctx, &balance,
		`UPDATE credit_ledgers
		 SET balance = balance - $2, updated_at = now()
		 WHERE user_id = $1 AND balance >= $2
		 RETURNING balance`,
		userID, amount)
	if err == sql.ErrNoRows {
		// missing ledger or not enough credits
		balance, err = repo.GetBalance(ctx, userID)
		if err != nil {
			return 0, false, err
		}
		return balance, false, nil
	}
	if err != nil {
		return 0, false, errors.Wrap(err, "debiting balance")
	}
	return balance, true, nil
}
