// Package sqlxrepos implements the domain repositories on PostgreSQL.
package sqlxrepos

import (
	sq "github.com/Masterminds/squirrel"

	"github.com/darasa-tz/darasa/core"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func orderBy(builder sq.SelectBuilder, ordering []core.DBOrdering, dflt string) sq.SelectBuilder {
	if len(ordering) == 0 {
		return builder.OrderBy(dflt)
	}
	for _, ord := range ordering {
		builder = builder.OrderBy(ord.String())
	}
	return builder
}
