package assignment

import (
	"context"

	"github.com/darasa-tz/darasa/core"
)

type (
	Repository interface {
		// QueryTemplates returns active templates matching filter,
		// ordered by college name unless overridden.
		QueryTemplates(ctx context.Context, filter *QueryFilter, ordering ...core.DBOrdering) ([]Template, error)
	}

	Service interface {
		Query(ctx context.Context, filter *QueryFilter, ordering ...core.DBOrdering) ([]Template, error)
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering ...core.DBOrdering) ([]Template, error) {
	if filter != nil {
		filter.Clean()
	}
	return svc.repo.QueryTemplates(ctx, filter, ordering...)
}
