package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/darasa-tz/darasa/core"
	"github.com/darasa-tz/darasa/core/billing"
)

type billingRepository struct {
	db *billingTables
}

var _ billing.Repository = (*billingRepository)(nil) // interface compliance check

func NewBillingRepository(db *DB) billing.Repository {
	return &billingRepository{db: db.billing}
}

func (repo *billingRepository) CreatePayment(_ context.Context, pmt billing.Payment) (billing.Payment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	pmt.ID = uuid.New().String()
	repo.db.payments[pmt.ID] = &pmt
	return pmt, nil
}

func (repo *billingRepository) GetPaymentByID(_ context.Context, id string) (billing.Payment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if pmt, ok := repo.db.payments[id]; ok {
		return *pmt, nil
	}
	return billing.Payment{}, billing.ErrPaymentNotFound
}

func (repo *billingRepository) QueryPayments(_ context.Context, filter *billing.QueryFilter, _ ...core.DBOrdering) ([]billing.Payment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	pmts := make([]billing.Payment, 0, len(repo.db.payments))
	for _, pmt := range repo.db.payments {
		if filter != nil {
			if filter.UserID != "" && pmt.UserID != filter.UserID {
				continue
			}
			if filter.Status != "" && pmt.Status != filter.Status {
				continue
			}
		}
		pmts = append(pmts, *pmt)
	}
	sort.Slice(pmts, func(i, j int) bool { return pmts[i].CreatedAt.After(pmts[j].CreatedAt) })
	return pmts, nil
}

// SettlePayment performs the transition and the credit under one lock,
// mirroring the single-transaction guarantee of the SQL implementation.
func (repo *billingRepository) SettlePayment(_ context.Context, id string, status billing.Status, txRef string) (billing.Payment, bool, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	pmt, ok := repo.db.payments[id]
	if !ok {
		return billing.Payment{}, false, billing.ErrPaymentNotFound
	}
	if pmt.Status != billing.StatusPending {
		return *pmt, false, nil
	}

	now := time.Now().UTC()
	pmt.Status = status
	pmt.TransactionRef = txRef
	pmt.SettledAt = &now
	if status == billing.StatusCompleted {
		repo.db.balances[pmt.UserID] += pmt.Amount
	}
	return *pmt, true, nil
}

func (repo *billingRepository) GetBalance(_ context.Context, userID string) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.db.balances[userID], nil
}

func (repo *billingRepository) DebitBalance(_ context.Context, userID string, amount int) (int, bool, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	balance := repo.db.balances[userID]
	if balance < amount {
		return balance, false, nil
	}
	balance -= amount
	repo.db.balances[userID] = balance
	return balance, true, nil
}
