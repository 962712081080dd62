package billing

import (
	"time"

	"github.com/pkg/errors"

	"github.com/darasa-tz/darasa/core"
)

// Payment statuses. A Payment is created pending and transitions
// to exactly one terminal status.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

var errInvalidStatus = errors.New("invalid payment status")

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// ParseStatus maps a raw string onto the closed Status set.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending:
		return StatusPending, nil
	case StatusCompleted:
		return StatusCompleted, nil
	case StatusFailed:
		return StatusFailed, nil
	}
	return "", errInvalidStatus
}

type Payment struct {
	ID             string     `json:"id"`
	UserID         string     `json:"user_id"`
	Amount         int        `json:"amount"` // credits purchased
	Status         Status     `json:"status"`
	TransactionRef string     `json:"transaction_ref,omitempty"` // provider reference, set on settlement
	CreatedAt      time.Time  `json:"created_at"`                // UTC
	SettledAt      *time.Time `json:"settled_at,omitempty"`      // UTC
}

// NewPayment contains information needed to initiate a Payment.
type NewPayment struct {
	Amount int `json:"amount" validate:"required,min=1,max=100000"`
}

func (np *NewPayment) Validate() error { return core.Validate.Struct(np) }

type QueryFilter struct {
	UserID string `query:"user_id"`
	Status Status `query:"status"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.UserID == "" && qf.Status == ""
}
