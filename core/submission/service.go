package submission

import "context"

const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
)

type (
	Repository interface {
		// QueryLeaderboard returns at most limit entries, ranked entries first
		// in ascending rank order, unranked entries last.
		QueryLeaderboard(ctx context.Context, limit int) ([]Entry, error)
	}

	Service interface {
		Leaderboard(ctx context.Context, limit int) ([]Entry, error)
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Leaderboard(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = defaultLeaderboardLimit
	} else if limit > maxLeaderboardLimit {
		limit = maxLeaderboardLimit
	}
	return svc.repo.QueryLeaderboard(ctx, limit)
}
