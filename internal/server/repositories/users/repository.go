package users

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophprovider/internal/server/models"
)

// Repository persists identities and their claim assignments.
//
// Lookups of a missing user return common.ErrorNotFound and a duplicate
// email on Create returns common.ErrConflict.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// RecordFailedAttempt atomically increments the failed-login counter.
	// When the counter reaches maxAttempts it is reset to zero and the
	// lockout window is set to end at lockoutEnd. If a window is still open
	// at now the counter is left alone and the result is AlreadyLocked.
	RecordFailedAttempt(ctx context.Context, userID string, maxAttempts int, now, lockoutEnd time.Time) (models.FailedAttempt, error)

	// ResetFailedAttempts zeroes the counter unless a lockout window is open
	// at now, in which case it returns common.ErrLockedOut.
	ResetFailedAttempts(ctx context.Context, userID string, now time.Time) error

	// ListClaims returns the user's own claims, the claims of every role the
	// user holds, and one "role" claim per role name, without duplicates.
	ListClaims(ctx context.Context, userID string) ([]models.Claim, error)

	AddClaim(ctx context.Context, userID string, claim models.Claim) error
	RemoveClaim(ctx context.Context, userID string, claimType string) error
	AddToRole(ctx context.Context, userID string, role string) error
	AddRoleClaim(ctx context.Context, role string, claim models.Claim) error
}
