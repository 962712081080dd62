package dummydb

import (
	"context"
	"sort"

	"github.com/darasa-tz/darasa/core/tool"
)

type toolRepository struct {
	db *toolTable
}

var _ tool.Repository = (*toolRepository)(nil) // interface compliance check

func NewToolRepository(db *DB) tool.Repository {
	return &toolRepository{db: db.tool}
}

func (repo *toolRepository) QueryTools(_ context.Context) ([]tool.Tool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	tls := make([]tool.Tool, 0, len(repo.db.table))
	for _, tl := range repo.db.table {
		if tl.IsActive {
			tls = append(tls, *tl)
		}
	}
	sort.Slice(tls, func(i, j int) bool { return tls[i].Name < tls[j].Name })
	return tls, nil
}

func (repo *toolRepository) GetToolBySlug(_ context.Context, slug string) (tool.Tool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if tl, ok := repo.db.table[slug]; ok && tl.IsActive {
		return *tl, nil
	}
	return tool.Tool{}, tool.ErrToolNotFound
}
