package sqlxrepos

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/darasa-tz/darasa/core"
	"github.com/darasa-tz/darasa/core/assignment"
)

type dbTemplate struct {
	ID           string `db:"id"`
	TemplateType string `db:"template_type"`
	CollegeCode  string `db:"college_code"`
	CollegeName  string `db:"college_name"`
	IsActive     bool   `db:"is_active"`
}

func (t dbTemplate) toTemplate() assignment.Template {
	return assignment.Template{
		ID:           t.ID,
		TemplateType: t.TemplateType,
		CollegeCode:  t.CollegeCode,
		CollegeName:  t.CollegeName,
		IsActive:     t.IsActive,
	}
}

type assignmentRepository struct {
	db *sqlx.DB
}

var _ assignment.Repository = (*assignmentRepository)(nil) // interface compliance check

func NewAssignmentRepository(db *sql.DB) assignment.Repository {
	return &assignmentRepository{db: sqlx.NewDb(db, core.Conf.Database.Engine)}
}

func (repo assignmentRepository) QueryTemplates(ctx context.Context, filter *assignment.QueryFilter, ordering ...core.DBOrdering) ([]assignment.Template, error) {
	builder := psql.Select("id", "template_type", "college_code", "college_name", "is_active").
		From("assignment_templates").
		Where(sq.Eq{"is_active": true})
	if filter != nil {
		if filter.Type != "" {
			builder = builder.Where(sq.Eq{"template_type": filter.Type})
		}
		if filter.CollegeCode != "" {
			builder = builder.Where(sq.Eq{"college_code": filter.CollegeCode})
		}
	}
	builder = orderBy(builder, ordering, "college_name ASC")

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	var rows []dbTemplate
	if err = repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying templates")
	}
	tps := make([]assignment.Template, 0, len(rows))
	for _, row := range rows {
		tps = append(tps, row.toTemplate())
	}
	return tps, nil
}
