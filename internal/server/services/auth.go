// Package services contains server-side business logic. This file implements
// AuthService, which drives the two-step marketplace login, stores the sealed
// provider credentials and hands them back out for background jobs.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/shelfsync/internal/common"
	"github.com/dmitrijs2005/shelfsync/internal/cryptox"
	"github.com/dmitrijs2005/shelfsync/internal/dbx"
	"github.com/dmitrijs2005/shelfsync/internal/logging"
	"github.com/dmitrijs2005/shelfsync/internal/server/auth"
	"github.com/dmitrijs2005/shelfsync/internal/server/challenges"
	"github.com/dmitrijs2005/shelfsync/internal/server/models"
	"github.com/dmitrijs2005/shelfsync/internal/server/provider"
	"github.com/dmitrijs2005/shelfsync/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/shelfsync/internal/server/repositories/repomanager"
)

// Outcome is the result category of a login step.
type Outcome int

const (
	OutcomeFailure Outcome = iota
	OutcomeSuccess
	OutcomeChallengeRequired
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeChallengeRequired:
		return "challenge_required"
	default:
		return "failure"
	}
}

// LoginResult is returned by Login and VerifyOTP.
//
// On success User and Token are set. On ChallengeRequired SessionID names
// the pending challenge. On failure Reason is one of the common sentinels and
// Message is safe to show to the user.
type LoginResult struct {
	Outcome     Outcome
	SessionID   string
	User        *models.User
	Marketplace string
	Token       string
	Reason      error
	Message     string
}

// AuthService orchestrates provider login, credential storage and session
// token issuance.
type AuthService struct {
	db          dbx.DBTX
	repomanager repomanager.RepositoryManager
	vault       *cryptox.Vault
	provider    provider.Client
	challenges  challenges.Store
	issuer      *auth.Issuer
	log         logging.Logger
	now         func() time.Time
}

func NewAuthService(
	db dbx.DBTX,
	m repomanager.RepositoryManager,
	vault *cryptox.Vault,
	client provider.Client,
	store challenges.Store,
	issuer *auth.Issuer,
	log logging.Logger,
) *AuthService {
	if log == nil {
		log = logging.Nop()
	}
	return &AuthService{
		db:          db,
		repomanager: m,
		vault:       vault,
		provider:    client,
		challenges:  store,
		issuer:      issuer,
		log:         log,
		now:         time.Now,
	}
}

// Login performs the password step. A provider request for a verification
// code yields OutcomeChallengeRequired with a fresh challenge id.
func (s *AuthService) Login(ctx context.Context, username, password, marketplace string) *LoginResult {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return failure(common.ErrInvalidCredentials, "Username and password are required")
	}
	if marketplace == "" {
		marketplace = common.DefaultMarketplace
	}

	user, err := s.repomanager.Users(s.db).EnsureExists(ctx, common.ProviderAudible, username, username)
	if err != nil {
		s.log.Error(ctx, "ensure user", "username", username, "error", err)
		return failure(common.ErrStorageFailure, "Failed to create user record")
	}

	bundle, err := s.provider.Login(ctx, provider.LoginRequest{
		Username:    username,
		Password:    password,
		Marketplace: marketplace,
	})
	if err != nil {
		reason := provider.Classify(err)
		if errors.Is(reason, common.ErrChallengeRequired) {
			c, cerr := s.challenges.Create(ctx, challenges.Challenge{
				Username:    username,
				Password:    password,
				Marketplace: marketplace,
				UserID:      user.ID,
			})
			if cerr != nil {
				s.log.Error(ctx, "create challenge", "user_id", user.ID, "error", cerr)
				return failure(common.ErrorInternal, "Failed to start verification")
			}
			s.log.Info(ctx, "verification code required", "user_id", user.ID)
			return &LoginResult{
				Outcome:     OutcomeChallengeRequired,
				SessionID:   c.ID,
				Marketplace: marketplace,
				Reason:      common.ErrChallengeRequired,
				Message:     "Two-factor authentication required",
			}
		}
		return s.providerFailure(ctx, user.ID, reason, err, password)
	}

	return s.complete(ctx, user, marketplace, bundle, "Login successful")
}

// VerifyOTP performs the code step for a pending challenge. The challenge is
// taken out of the store before the provider is called, so concurrent
// submissions for one session reach the provider at most once.
func (s *AuthService) VerifyOTP(ctx context.Context, sessionID, code string) *LoginResult {
	c, err := s.challenges.Take(ctx, sessionID)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrChallengeExpired):
			return failure(common.ErrChallengeExpired, "Session expired")
		case errors.Is(err, common.ErrChallengeNotFound):
			return failure(common.ErrChallengeNotFound, "Invalid or expired session")
		default:
			s.log.Error(ctx, "load challenge", "error", err)
			return failure(common.ErrorInternal, "Failed to load verification session")
		}
	}

	code = strings.TrimSpace(code)
	if code == "" {
		return failure(common.ErrInvalidCredentials, "Verification code is required")
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, c.UserID)
	if err != nil {
		s.log.Error(ctx, "load user", "user_id", c.UserID, "error", err)
		return failure(common.ErrStorageFailure, "Failed to load user record")
	}

	bundle, err := s.provider.Login(ctx, provider.LoginRequest{
		Username:    c.Username,
		Password:    c.Password,
		Marketplace: c.Marketplace,
		Code:        code,
	})
	if err != nil {
		reason := provider.Classify(err)
		if errors.Is(reason, common.ErrChallengeRequired) {
			s.log.Info(ctx, "verification code rejected", "user_id", user.ID)
			return failure(common.ErrChallengeRequired, "Verification code rejected")
		}
		return s.providerFailure(ctx, user.ID, reason, err, c.Password)
	}

	return s.complete(ctx, user, c.Marketplace, bundle, "Authentication successful")
}

// ClientFor returns the stored provider credentials of userID, refreshing
// the access token when it has expired. It returns (nil, nil) when the user
// has no stored credentials.
func (s *AuthService) ClientFor(ctx context.Context, userID string) (*provider.Session, error) {
	repo := s.repomanager.Accounts(s.db)

	acc, err := repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load credentials: %w", err)
	}

	var b provider.Bundle
	if err := s.vault.OpenJSON(userID, acc.Ciphertext, &b); err != nil {
		return nil, fmt.Errorf("open credentials: %w", err)
	}
	if b.LocaleCode == "" {
		b.LocaleCode = acc.Marketplace
	}

	sess := &provider.Session{UserID: userID, Marketplace: acc.Marketplace, Bundle: &b}
	if !b.Expired(s.now()) {
		return sess, nil
	}

	fresh, err := s.provider.Refresh(ctx, &b)
	if err != nil {
		s.log.Warn(ctx, "token refresh failed, using stored tokens", "user_id", userID, "error", err)
		return sess, nil
	}

	sess.Bundle = fresh
	sess.Refreshed = true

	if err := s.storeRefreshed(ctx, userID, fresh); err != nil {
		s.log.Warn(ctx, "store refreshed tokens", "user_id", userID, "error", err)
	}
	return sess, nil
}

// storeRefreshed re-reads the record inside a transaction so a sync status
// written while the provider refresh was in flight is kept.
func (s *AuthService) storeRefreshed(ctx context.Context, userID string, bundle *provider.Bundle) error {
	return dbx.InTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Accounts(tx)
		cur, err := repo.Get(ctx, userID)
		if err != nil {
			return err
		}
		return s.seal(ctx, repo, userID, cur.Marketplace, cur.SyncStatus, bundle)
	})
}

// TestAccess reports whether usable credentials are stored for userID.
func (s *AuthService) TestAccess(ctx context.Context, userID string) (bool, string) {
	sess, err := s.ClientFor(ctx, userID)
	if err != nil {
		s.log.Error(ctx, "test access", "user_id", userID, "error", err)
		if errors.Is(err, common.ErrDecryptionFailure) {
			return false, "Stored credentials could not be decrypted, please log in again"
		}
		return false, "API access test failed"
	}
	if sess == nil {
		return false, "No authentication tokens found"
	}
	if sess.Bundle.AccessToken == "" {
		return false, "Stored credentials have no access token"
	}
	if sess.Bundle.Expired(s.now()) {
		return false, "Access token expired and could not be refreshed"
	}
	return true, "API access confirmed"
}

func (s *AuthService) complete(ctx context.Context, user *models.User, marketplace string, bundle *provider.Bundle, msg string) *LoginResult {
	if bundle == nil || bundle.AccessToken == "" {
		s.log.Warn(ctx, "provider returned no access token", "user_id", user.ID)
		return failure(common.ErrAuthFailed, "Authentication failed: empty credentials")
	}

	if err := s.store(ctx, user.ID, marketplace, models.SyncStatusPending, bundle); err != nil {
		s.log.Error(ctx, "store credentials", "user_id", user.ID, "error", err)
		return failure(common.ErrStorageFailure, "Failed to store authentication tokens")
	}

	token, err := s.issuer.Issue(user.ID, user.ProviderUserID, marketplace)
	if err != nil {
		s.log.Error(ctx, "issue session token", "user_id", user.ID, "error", err)
		return failure(common.ErrorInternal, "Failed to issue session")
	}

	s.log.Info(ctx, "login completed", "user_id", user.ID, "marketplace", marketplace)
	return &LoginResult{
		Outcome:     OutcomeSuccess,
		User:        user,
		Marketplace: marketplace,
		Token:       token,
		Message:     msg,
	}
}

func (s *AuthService) store(ctx context.Context, userID, marketplace string, status models.SyncStatus, bundle *provider.Bundle) error {
	return s.seal(ctx, s.repomanager.Accounts(s.db), userID, marketplace, status, bundle)
}

func (s *AuthService) seal(ctx context.Context, repo accounts.Repository, userID, marketplace string, status models.SyncStatus, bundle *provider.Bundle) error {
	env := bundle.Envelope(marketplace)

	sealed, err := s.vault.SealJSON(userID, env)
	if err != nil {
		return err
	}

	return repo.Upsert(ctx, &models.Account{
		UserID:          userID,
		Ciphertext:      sealed,
		Marketplace:     marketplace,
		TokensExpiresAt: env.ExpiresAt(),
		SyncStatus:      status,
	})
}

func (s *AuthService) providerFailure(ctx context.Context, userID string, reason, err error, password string) *LoginResult {
	s.log.Warn(ctx, "provider login failed", "user_id", userID, "reason", reason, "error", provider.Sanitize(err, password))

	switch {
	case errors.Is(reason, common.ErrInvalidCredentials):
		return failure(reason, "Invalid username or password")
	case errors.Is(reason, common.ErrProviderUnavailable):
		return failure(reason, "Provider is temporarily unavailable, please try again later")
	default:
		return failure(common.ErrAuthFailed, "Authentication failed: "+provider.Sanitize(err, password))
	}
}

func failure(reason error, msg string) *LoginResult {
	return &LoginResult{Outcome: OutcomeFailure, Reason: reason, Message: msg}
}
