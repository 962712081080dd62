package dummydb

import (
	"context"
	"sort"

	"github.com/darasa-tz/darasa/core"
	"github.com/darasa-tz/darasa/core/assignment"
)

type assignmentRepository struct {
	db *assignmentTable
}

var _ assignment.Repository = (*assignmentRepository)(nil) // interface compliance check

func NewAssignmentRepository(db *DB) assignment.Repository {
	return &assignmentRepository{db: db.assignment}
}

func (repo *assignmentRepository) QueryTemplates(_ context.Context, filter *assignment.QueryFilter, _ ...core.DBOrdering) ([]assignment.Template, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	tps := make([]assignment.Template, 0, len(repo.db.table))
	for _, tp := range repo.db.table {
		if !tp.IsActive {
			continue
		}
		if filter != nil {
			if filter.Type != "" && tp.TemplateType != filter.Type {
				continue
			}
			if filter.CollegeCode != "" && tp.CollegeCode != filter.CollegeCode {
				continue
			}
		}
		tps = append(tps, tp)
	}
	sort.SliceStable(tps, func(i, j int) bool { return tps[i].CollegeName < tps[j].CollegeName })
	return tps, nil
}
