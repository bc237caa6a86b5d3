package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophprovider/internal/common"
	"github.com/dmitrijs2005/gophprovider/internal/server/auth"
	"github.com/dmitrijs2005/gophprovider/internal/server/models"
	"github.com/dmitrijs2005/gophprovider/internal/server/repositories/repomanager"
)

// CredentialStore holds identities, their password hashes, failed-login
// state and claim assignments.
type CredentialStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// VerifyPassword returns nil on a match and common.ErrInvalidCredentials
	// otherwise. A nil user still costs one hash comparison.
	VerifyPassword(user *models.User, password string) error
	Create(ctx context.Context, email, password string) (*models.User, error)
	RecordFailedAttempt(ctx context.Context, userID string, maxAttempts int, now, lockoutEnd time.Time) (models.FailedAttempt, error)
	// ResetFailedAttempts returns common.ErrLockedOut when a lockout window
	// opened after the caller read the user.
	ResetFailedAttempts(ctx context.Context, userID string, now time.Time) error
	ListClaims(ctx context.Context, userID string) ([]models.Claim, error)
}

// RepositoryCredentialStore implements CredentialStore on top of the users
// repository and a bcrypt hasher.
type RepositoryCredentialStore struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      *auth.BcryptHasher
}

func NewCredentialStore(db *sql.DB, m repomanager.RepositoryManager, hasher *auth.BcryptHasher) *RepositoryCredentialStore {
	return &RepositoryCredentialStore{db: db, repomanager: m, hasher: hasher}
}

func (s *RepositoryCredentialStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.repomanager.Users(s.db).GetUserByEmail(ctx, email)
}

func (s *RepositoryCredentialStore) VerifyPassword(user *models.User, password string) error {
	if user == nil {
		s.hasher.VerifyDummy(password)
		return common.ErrInvalidCredentials
	}
	return s.hasher.Verify(user.PasswordHash, password)
}

func (s *RepositoryCredentialStore) Create(ctx context.Context, email, password string) (*models.User, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	return s.repomanager.Users(s.db).Create(ctx, &models.User{
		Email:          email,
		PasswordHash:   hash,
		EmailConfirmed: true,
	})
}

func (s *RepositoryCredentialStore) RecordFailedAttempt(ctx context.Context, userID string, maxAttempts int, now, lockoutEnd time.Time) (models.FailedAttempt, error) {
	return s.repomanager.Users(s.db).RecordFailedAttempt(ctx, userID, maxAttempts, now, lockoutEnd)
}

func (s *RepositoryCredentialStore) ResetFailedAttempts(ctx context.Context, userID string, now time.Time) error {
	return s.repomanager.Users(s.db).ResetFailedAttempts(ctx, userID, now)
}

func (s *RepositoryCredentialStore) ListClaims(ctx context.Context, userID string) ([]models.Claim, error) {
	return s.repomanager.Users(s.db).ListClaims(ctx, userID)
}
