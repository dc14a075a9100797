// Package accounts provides SQL-backed persistence of encrypted provider
// credential records.
package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/shelfsync/internal/common"
	"github.com/dmitrijs2005/shelfsync/internal/dbx"
	"github.com/dmitrijs2005/shelfsync/internal/server/models"
)

var now = func() time.Time { return time.Now().UTC() }

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

func (r *SQLRepository) Upsert(ctx context.Context, a *models.Account) error {
	ts := now()
	status := a.SyncStatus
	if status == "" {
		status = models.SyncStatusPending
	}

	query :=
		`INSERT INTO user_accounts (user_id, encrypted_auth_data, marketplace, tokens_expires_at, sync_status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (user_id) DO UPDATE SET
		   encrypted_auth_data = excluded.encrypted_auth_data,
		   marketplace = excluded.marketplace,
		   tokens_expires_at = excluded.tokens_expires_at,
		   sync_status = excluded.sync_status,
		   updated_at = excluded.updated_at
		 `

	_, err := r.db.ExecContext(ctx, r.dialect.Rebind(query),
		a.UserID, a.Ciphertext, a.Marketplace, nullTime(a.TokensExpiresAt), string(status), ts, ts)
	if err != nil {
		return fmt.Errorf("%w: db error: %w", common.ErrStorageFailure, err)
	}
	return nil
}

func (r *SQLRepository) Get(ctx context.Context, userID string) (*models.Account, error) {
	query :=
		`SELECT user_id, encrypted_auth_data, marketplace, tokens_expires_at, sync_status, last_sync, created_at, updated_at
		 FROM user_accounts
		 WHERE user_id = $1
		 `

	var (
		a         models.Account
		status    string
		expiresAt sql.NullTime
		lastSync  sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, r.dialect.Rebind(query), userID).Scan(
		&a.UserID, &a.Ciphertext, &a.Marketplace, &expiresAt, &status, &lastSync, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("%w: db error: %w", common.ErrStorageFailure, err)
	}

	a.SyncStatus = models.SyncStatus(status)
	a.TokensExpiresAt = timePtr(expiresAt)
	a.LastSync = timePtr(lastSync)
	return &a, nil
}

func (r *SQLRepository) UpdateSyncStatus(ctx context.Context, userID string, status models.SyncStatus, lastSync *time.Time) error {
	query :=
		`UPDATE user_accounts
		 SET sync_status = $1, last_sync = COALESCE($2, last_sync), updated_at = $3
		 WHERE user_id = $4
		 `

	res, err := r.db.ExecContext(ctx, r.dialect.Rebind(query), string(status), nullTime(lastSync), now(), userID)
	if err != nil {
		return fmt.Errorf("%w: db error: %w", common.ErrStorageFailure, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: db error: %w", common.ErrStorageFailure, err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
