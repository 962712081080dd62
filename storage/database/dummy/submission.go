package dummydb

import (
	"context"
	"sort"

	"github.com/darasa-tz/darasa/core/submission"
)

type submissionRepository struct {
	db *submissionTable
}

var _ submission.Repository = (*submissionRepository)(nil) // interface compliance check

func NewSubmissionRepository(db *DB) submission.Repository {
	return &submissionRepository{db: db.submission}
}

func (repo *submissionRepository) QueryLeaderboard(_ context.Context, limit int) ([]submission.Entry, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	entries := make([]submission.Entry, len(repo.db.table))
	copy(entries, repo.db.table)

	// ranked entries first in rank order, unranked last
	sort.SliceStable(entries, func(i, j int) bool {
		ri, rj := entries[i].RankPosition, entries[j].RankPosition
		switch {
		case ri == nil:
			return false
		case rj == nil:
			return true
		default:
			return *ri < *rj
		}
	})

	if limit < len(entries) {
		entries = entries[:limit]
	}
	return entries, nil
}
