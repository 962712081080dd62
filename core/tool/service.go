package tool

import (
	"context"

	"github.com/pkg/errors"

	"github.com/darasa-tz/darasa/core/billing"
)

var ErrToolNotFound = errors.New("tool not found")

type (
	Repository interface {
		// QueryTools returns active tools only.
		QueryTools(ctx context.Context) ([]Tool, error)
		// GetToolBySlug yields ErrToolNotFound for unknown or inactive slugs.
		GetToolBySlug(ctx context.Context, slug string) (Tool, error)
	}

	Service interface {
		Query(ctx context.Context) ([]Tool, error)
		GetBySlug(ctx context.Context, slug string) (Tool, error)
		// Use charges the tool's credit cost to the user and returns the
		// tool along with the remaining balance. The balance is only
		// debited when it covers the full cost.
		Use(ctx context.Context, userID, slug string) (Tool, int, error)
	}

	service struct {
		repo       Repository
		billingSvc billing.Service
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, billingSvc billing.Service) Service {
	return &service{
		repo:       repo,
		billingSvc: billingSvc,
	}
}

func (svc *service) Query(ctx context.Context) ([]Tool, error) {
	return svc.repo.QueryTools(ctx)
}

func (svc *service) GetBySlug(ctx context.Context, slug string) (Tool, error) {
	return svc.repo.GetToolBySlug(ctx, slug)
}

func (svc *service) Use(ctx context.Context, userID, slug string) (Tool, int, error) {
	tl, err := svc.repo.GetToolBySlug(ctx, slug)
	if err != nil {
		return Tool{}, 0, err
	}
	balance, err := svc.billingSvc.Consume(ctx, userID, tl.CreditCost)
	if err != nil {
		return tl, balance, err
	}
	return tl, balance, nil
}
