// Package users provides SQL-backed persistence of local user identities.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/shelfsync/internal/common"
	"github.com/dmitrijs2005/shelfsync/internal/dbx"
	"github.com/dmitrijs2005/shelfsync/internal/server/models"
	"github.com/google/uuid"
)

var (
	newID = uuid.NewString
	now   = func() time.Time { return time.Now().UTC() }
)

type SQLRepository struct {
	db      dbx.DBTX
	dialect dbx.Dialect
}

func NewPostgresRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db, dialect: dbx.DialectPostgres}
}

func NewSQLiteRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db, dialect: dbx.DialectSQLite}
}

func (r *SQLRepository) EnsureExists(ctx context.Context, provider, providerUserID, displayName string) (*models.User, error) {
	ts := now()

	insert :=
		`INSERT INTO users (id, provider, provider_user_id, display_name, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (provider, provider_user_id) DO NOTHING
		 `

	_, err := r.db.ExecContext(ctx, r.dialect.Rebind(insert),
		newID(), provider, providerUserID, displayName, ts, ts)
	if err != nil {
		return nil, fmt.Errorf("%w: db error: %w", common.ErrStorageFailure, err)
	}

	query :=
		`SELECT id, provider, provider_user_id, display_name, created_at, updated_at FROM users
		 WHERE provider = $1 AND provider_user_id = $2
		 `

	return r.scanOne(r.db.QueryRowContext(ctx, r.dialect.Rebind(query), provider, providerUserID))
}

func (r *SQLRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query :=
		`SELECT id, provider, provider_user_id, display_name, created_at, updated_at FROM users
		 WHERE id = $1
		 `

	return r.scanOne(r.db.QueryRowContext(ctx, r.dialect.Rebind(query), id))
}

func (r *SQLRepository) scanOne(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.ID, &user.Provider, &user.ProviderUserID, &user.DisplayName, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("%w: db error: %w", common.ErrStorageFailure, err)
	}
	return user, nil
}
