package users

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophprovider/internal/common"
	"github.com/dmitrijs2005/gophprovider/internal/server/models"
	"github.com/google/uuid"
)

// MemoryRepository is a non-durable Repository guarded by one mutex.
// It backs the server when no database DSN is configured.
type MemoryRepository struct {
	mu         sync.Mutex
	users      map[string]*models.User // by id
	byEmail    map[string]string
	userClaims map[string][]models.Claim
	userRoles  map[string][]string
	roleClaims map[string][]models.Claim
	now        func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users:      make(map[string]*models.User),
		byEmail:    make(map[string]string),
		userClaims: make(map[string][]models.Claim),
		userRoles:  make(map[string][]string),
		roleClaims: make(map[string][]models.Claim),
		now:        time.Now,
	}
}

func (r *MemoryRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[user.Email]; ok {
		return nil, common.ErrConflict
	}

	user.ID = uuid.NewString()
	user.CreatedAt = r.now()

	stored := *user
	r.users[stored.ID] = &stored
	r.byEmail[stored.Email] = stored.ID

	return user, nil
}

func (r *MemoryRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return cloneUser(r.users[id]), nil
}

func (r *MemoryRepository) RecordFailedAttempt(ctx context.Context, userID string, maxAttempts int, now, lockoutEnd time.Time) (models.FailedAttempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return models.FailedAttempt{}, common.ErrorNotFound
	}
	if u.IsLockedOut(now) {
		return models.FailedAttempt{Count: u.AccessFailedCount, LockedOut: true, AlreadyLocked: true}, nil
	}

	res := models.FailedAttempt{Count: u.AccessFailedCount + 1}
	if res.Count >= maxAttempts {
		res.LockedOut = true
		end := lockoutEnd
		u.LockoutEnd = &end
		u.AccessFailedCount = 0
	} else {
		u.AccessFailedCount = res.Count
	}

	return res, nil
}

func (r *MemoryRepository) ResetFailedAttempts(ctx context.Context, userID string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return common.ErrorNotFound
	}
	if u.IsLockedOut(now) {
		return common.ErrLockedOut
	}
	u.AccessFailedCount = 0
	return nil
}

func (r *MemoryRepository) ListClaims(ctx context.Context, userID string) ([]models.Claim, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	claims := slices.Clone(r.userClaims[userID])
	for _, role := range r.userRoles[userID] {
		claims = append(claims, r.roleClaims[role]...)
		claims = append(claims, models.Claim{Type: models.RoleClaimType, Value: role})
	}
	if claims == nil {
		claims = make([]models.Claim, 0)
	}

	slices.SortFunc(claims, compareClaims)
	return slices.Compact(claims), nil
}

func (r *MemoryRepository) AddClaim(ctx context.Context, userID string, claim models.Claim) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[userID]; !ok {
		return common.ErrorNotFound
	}
	if !slices.Contains(r.userClaims[userID], claim) {
		r.userClaims[userID] = append(r.userClaims[userID], claim)
	}
	return nil
}

func (r *MemoryRepository) RemoveClaim(ctx context.Context, userID string, claimType string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	before := len(r.userClaims[userID])
	r.userClaims[userID] = slices.DeleteFunc(r.userClaims[userID], func(c models.Claim) bool {
		return c.Type == claimType
	})
	if len(r.userClaims[userID]) == before {
		return common.ErrorNotFound
	}
	return nil
}

func (r *MemoryRepository) AddToRole(ctx context.Context, userID string, role string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[userID]; !ok {
		return common.ErrorNotFound
	}
	if !slices.Contains(r.userRoles[userID], role) {
		r.userRoles[userID] = append(r.userRoles[userID], role)
	}
	return nil
}

func (r *MemoryRepository) AddRoleClaim(ctx context.Context, role string, claim models.Claim) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !slices.Contains(r.roleClaims[role], claim) {
		r.roleClaims[role] = append(r.roleClaims[role], claim)
	}
	return nil
}

func cloneUser(u *models.User) *models.User {
	c := *u
	c.PasswordHash = slices.Clone(u.PasswordHash)
	if u.LockoutEnd != nil {
		end := *u.LockoutEnd
		c.LockoutEnd = &end
	}
	return &c
}

func compareClaims(a, b models.Claim) int {
	return cmp.Or(cmp.Compare(a.Type, b.Type), cmp.Compare(a.Value, b.Value))
}
