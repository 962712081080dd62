package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/darasa-tz/darasa/core"
	"github.com/darasa-tz/darasa/core/user"
)

var userColumns = []string{"id", "name", "email", "phone", "is_active", "roles", "password_hash", "created_at", "updated_at", "last_login"}

type dbUser struct {
	ID           string         `db:"id"`
	Name         string         `db:"name"`
	Email        string         `db:"email"`
	Phone        string         `db:"phone"`
	IsActive     bool           `db:"is_active"`
	Roles        pq.StringArray `db:"roles"`
	PasswordHash []byte         `db:"password_hash"`
	CreatedAt    sql.NullTime   `db:"created_at"`
	UpdatedAt    sql.NullTime   `db:"updated_at"`
	LastLogin    sql.NullTime   `db:"last_login"`
}

func (u dbUser) toUser() user.User {
	usr := user.User{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Phone:        u.Phone,
		Roles:        u.Roles,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt.Time,
		UpdatedAt:    u.UpdatedAt.Time,
		LastLogin:    u.LastLogin.Time,
	}
	usr.SetActive(u.IsActive)
	return usr
}

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sql.DB) user.Repository {
	return &userRepository{db: sqlx.NewDb(db, core.Conf.Database.Engine)}
}

// trapNoRowsErr maps psql "no rows" err to user.ErrNotFound
func (repo userRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return user.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo userRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...user.User) error {
	builder := psql.Select("COUNT(*)").From("users").Where(sq.Eq{"email": email})
	if len(excludedUsers) > 0 {
		ids := make([]string, 0, len(excludedUsers))
		for _, u := range excludedUsers {
			ids = append(ids, u.ID)
		}
		builder = builder.Where(sq.NotEq{"id": ids})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	var count int
	if err = repo.db.GetContext(ctx, &count, query, args...); err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}
	if count > 0 {
		return user.ErrEmailExists
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = uuid.New().String()
	query, args, err := psql.Insert("users").
		Columns(userColumns...).
		Values(usr.ID, usr.Name, usr.Email, usr.Phone, usr.Active(), pq.StringArray(usr.Roles),
			usr.PasswordHash, usr.CreatedAt.UTC(), usr.UpdatedAt.UTC(), nullableTime(usr.LastLogin)).
		ToSql()
	if err != nil {
		return user.User{}, errors.Wrap(err, "building query")
	}
	if _, err = repo.db.ExecContext(ctx, query, args...); err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo userRepository) QueryUsers(ctx context.Context, filter *user.QueryFilter, ordering ...core.DBOrdering) ([]user.User, error) {
	builder := psql.Select(userColumns...).From("users")

	if filter != nil {
		if filter.Search != "" {
			search := "%" + filter.Search + "%"
			builder = builder.Where(sq.Or{
				sq.ILike{"name": search},
				sq.ILike{"email": search},
				sq.ILike{"phone": search},
			})
		}
		if len(filter.Roles) > 0 {
			ors := make(sq.Or, 0, len(filter.Roles))
			for _, role := range filter.Roles {
				ors = append(ors, sq.Expr("EXISTS (SELECT 1 FROM unnest(roles) AS r WHERE r LIKE ?)", role+"%"))
			}
			builder = builder.Where(ors)
		}
		if filter.IsActive != nil {
			builder = builder.Where(sq.Eq{"is_active": *filter.IsActive})
		}
		if !filter.CreatedFrom.IsZero() {
			builder = builder.Where(sq.GtOrEq{"created_at": filter.CreatedFrom.UTC()})
		}
		if !filter.CreatedTo.IsZero() {
			builder = builder.Where(sq.LtOrEq{"created_at": filter.CreatedTo.UTC()})
		}
	}
	builder = orderBy(builder, ordering, "created_at ASC")

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	var rows []dbUser
	if err = repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.toUser())
	}
	return users, nil
}

func (repo userRepository) getUserBy(ctx context.Context, pred interface{}, args ...interface{}) (user.User, error) {
	query, qargs, err := psql.Select(userColumns...).From("users").Where(pred, args...).ToSql()
	if err != nil {
		return user.User{}, errors.Wrap(err, "building query")
	}
	var row dbUser
	if err = repo.db.GetContext(ctx, &row, query, qargs...); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "getting user")
	}
	return row.toUser(), nil
}

func (repo userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	return repo.getUserBy(ctx, sq.Eq{"id": id})
}

func (repo userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	return repo.getUserBy(ctx, sq.Eq{"email": email})
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User, isActive *bool) (user.User, error) {
	builder := psql.Update("users").Where(sq.Eq{"id": usr.ID})

	// only save set fields
	if usr.Name != "" {
		builder = builder.Set("name", usr.Name)
	}
	if usr.Email != "" {
		builder = builder.Set("email", usr.Email)
	}
	if usr.Phone != "" {
		builder = builder.Set("phone", usr.Phone)
	}
	if usr.Roles != nil {
		builder = builder.Set("roles", pq.StringArray(usr.Roles))
	}
	if usr.PasswordHash != nil {
		builder = builder.Set("password_hash", usr.PasswordHash)
	}
	if isActive != nil {
		builder = builder.Set("is_active", *isActive)
	}
	if !usr.LastLogin.IsZero() {
		builder = builder.Set("last_login", usr.LastLogin.UTC())
	}
	if !usr.UpdatedAt.IsZero() {
		builder = builder.Set("updated_at", usr.UpdatedAt.UTC())
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return user.User{}, errors.Wrap(err, "building query")
	}
	res, err := repo.db.ExecContext(ctx, query, args...)
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return user.User{}, user.ErrNotFound
	}
	return repo.GetUserByID(ctx, usr.ID)
}

func (repo userRepository) DeleteUsersByID(ctx context.Context, ids ...string) error {
	query, args, err := psql.Delete("users").Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	if _, err = repo.db.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrap(err, "deleting users")
	}
	return nil
}

func nullableTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t.UTC()
}
