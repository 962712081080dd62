package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/darasa-tz/darasa/core"
	"github.com/darasa-tz/darasa/core/submission"
)

type dbEntry struct {
	UserID       string        `db:"user_id"`
	Name         string        `db:"name"`
	RankPosition sql.NullInt64 `db:"rank_position"`
	Points       int           `db:"points"`
	Submissions  int           `db:"submissions"`
}

func (e dbEntry) toEntry() submission.Entry {
	entry := submission.Entry{
		UserID:      e.UserID,
		Name:        e.Name,
		Points:      e.Points,
		Submissions: e.Submissions,
	}
	if e.RankPosition.Valid {
		rank := int(e.RankPosition.Int64)
		entry.RankPosition = &rank
	}
	return entry
}

type submissionRepository struct {
	db *sqlx.DB
}

var _ submission.Repository = (*submissionRepository)(nil) // interface compliance check

func NewSubmissionRepository(db *sql.DB) submission.Repository {
	return &submissionRepository{db: sqlx.NewDb(db, core.Conf.Database.Engine)}
}

func (repo submissionRepository) QueryLeaderboard(ctx context.Context, limit int) ([]submission.Entry, error) {
	var rows []dbEntry
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT le.user_id, u.name, le.rank_position, le.points, le.submissions
		 FROM leaderboard_entries le
		 JOIN users u ON u.id = le.user_id
		 ORDER BY le.rank_position ASC NULLS LAST
		 LIMIT $1`,
		limit)
	if err != nil {
		return nil, errors.Wrap(err, "querying leaderboard")
	}
	entries := make([]submission.Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, row.toEntry())
	}
	return entries, nil
}
