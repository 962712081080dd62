package sqlxrepos

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/darasa-tz/darasa/core"
	"github.com/darasa-tz/darasa/core/tool"
)

type dbTool struct {
	Slug        string `db:"slug"`
	Name        string `db:"name"`
	Description string `db:"description"`
	CreditCost  int    `db:"credit_cost"`
	IsActive    bool   `db:"is_active"`
}

func (t dbTool) toTool() tool.Tool {
	return tool.Tool{
		Slug:        t.Slug,
		Name:        t.Name,
		Description: t.Description,
		CreditCost:  t.CreditCost,
		IsActive:    t.IsActive,
	}
}

type toolRepository struct {
	db *sqlx.DB
}

var _ tool.Repository = (*toolRepository)(nil) // interface compliance check

func NewToolRepository(db *sql.DB) tool.Repository {
	return &toolRepository{db: sqlx.NewDb(db, core.Conf.Database.Engine)}
}

func (repo toolRepository) QueryTools(ctx context.Context) ([]tool.Tool, error) {
	query, args, err := psql.Select("slug", "name", "description", "credit_cost", "is_active").
		From("tools").
		Where(sq.Eq{"is_active": true}).
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	var rows []dbTool
	if err = repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying tools")
	}
	tls := make([]tool.Tool, 0, len(rows))
	for _, row := range rows {
		tls = append(tls, row.toTool())
	}
	return tls, nil
}

func (repo toolRepository) GetToolBySlug(ctx context.Context, slug string) (tool.Tool, error) {
	query, args, err := psql.Select("slug", "name", "description", "credit_cost", "is_active").
		From("tools").
		Where(sq.Eq{"slug": slug, "is_active": true}).
		ToSql()
	if err != nil {
		return tool.Tool{}, errors.Wrap(err, "building query")
	}
	var row dbTool
	if err = repo.db.GetContext(ctx, &row, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return tool.Tool{}, tool.ErrToolNotFound
		}
		return tool.Tool{}, errors.Wrap(err, "getting tool")
	}
	return row.toTool(), nil
}
