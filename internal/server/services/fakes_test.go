package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/shelfsync/internal/common"
	"github.com/dmitrijs2005/shelfsync/internal/dbx"
	"github.com/dmitrijs2005/shelfsync/internal/server/models"
	"github.com/dmitrijs2005/shelfsync/internal/server/provider"
	"github.com/dmitrijs2005/shelfsync/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/shelfsync/internal/server/repositories/users"
)

type fakeUsersRepo struct {
	mu        sync.Mutex
	byKey     map[string]*models.User
	ensureErr error
	getErr    error
}

func (f *fakeUsersRepo) EnsureExists(_ context.Context, provider, providerUserID, displayName string) (*models.User, error) {
	if f.ensureErr != nil {
		return nil, f.ensureErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.byKey == nil {
		f.byKey = map[string]*models.User{}
	}
	key := provider + "/" + providerUserID
	if u, ok := f.byKey[key]; ok {
		return u, nil
	}
	u := &models.User{
		ID:             fmt.Sprintf("user-%d", len(f.byKey)+1),
		Provider:       provider,
		ProviderUserID: providerUserID,
		DisplayName:    displayName,
	}
	f.byKey[key] = u
	return u, nil
}

func (f *fakeUsersRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byKey {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, common.ErrorNotFound
}

type fakeAccountsRepo struct {
	mu        sync.Mutex
	rows      map[string]models.Account
	upserts   int
	upsertErr error
	getErr    error
}

func (f *fakeAccountsRepo) Upsert(_ context.Context, a *models.Account) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rows == nil {
		f.rows = map[string]models.Account{}
	}
	f.rows[a.UserID] = *a
	f.upserts++
	return nil
}

func (f *fakeAccountsRepo) Get(_ context.Context, userID string) (*models.Account, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.rows[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &a, nil
}

func (f *fakeAccountsRepo) UpdateSyncStatus(_ context.Context, userID string, status models.SyncStatus, lastSync *time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.rows[userID]
	if !ok {
		return common.ErrorNotFound
	}
	a.SyncStatus = status
	if lastSync != nil {
		a.LastSync = lastSync
	}
	f.rows[userID] = a
	return nil
}

func (f *fakeAccountsRepo) row(userID string) (models.Account, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.rows[userID]
	return a, ok
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	a *fakeAccountsRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{u: &fakeUsersRepo{}, a: &fakeAccountsRepo{}}
}

func (m *fakeRepoManager) Dialect() dbx.Dialect                         { return dbx.DialectSQLite }
func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository              { return m.u }
func (m *fakeRepoManager) Accounts(dbx.DBTX) accounts.Repository        { return m.a }

// fakeProvider answers Login calls from a queue of scripted results.
type fakeProvider struct {
	mu      sync.Mutex
	results []loginResult
	calls   []provider.LoginRequest

	refreshOut   *provider.Bundle
	refreshErr   error
	refreshCalls int
	onRefresh    func()

	// gate, when set, holds code-step logins until it is closed.
	gate chan struct{}
}

type loginResult struct {
	bundle *provider.Bundle
	err    error
}

func (f *fakeProvider) push(b *provider.Bundle, err error) *fakeProvider {
	f.results = append(f.results, loginResult{bundle: b, err: err})
	return f
}

func (f *fakeProvider) Login(_ context.Context, req provider.LoginRequest) (*provider.Bundle, error) {
	if f.gate != nil && req.Code != "" {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	if len(f.results) == 0 {
		return nil, errors.New("unexpected login call")
	}
	r := f.results[0]
	f.results = f.results[1:]
	return r.bundle, r.err
}

func (f *fakeProvider) Refresh(_ context.Context, _ *provider.Bundle) (*provider.Bundle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshCalls++
	if f.onRefresh != nil {
		f.onRefresh()
	}
	return f.refreshOut, f.refreshErr
}
