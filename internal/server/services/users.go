package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophprovider/internal/common"
	"github.com/dmitrijs2005/gophprovider/internal/logging"
	"github.com/dmitrijs2005/gophprovider/internal/server/auth"
	"github.com/dmitrijs2005/gophprovider/internal/server/config"
	"github.com/dmitrijs2005/gophprovider/internal/server/metrics"
	"github.com/dmitrijs2005/gophprovider/internal/server/models"
	"github.com/dmitrijs2005/gophprovider/internal/validx"
)

// UserToken describes the authenticated user next to an access token.
type UserToken struct {
	ID     string
	Email  string
	Claims []models.Claim
}

// Token is the result of a successful Register or Login.
type Token struct {
	AccessToken string
	ExpiresIn   time.Duration
	User        UserToken
}

// UserService registers users and exchanges credentials for access tokens,
// enforcing the failed-login lockout.
type UserService struct {
	store    CredentialStore
	signer   *auth.Signer
	policy   auth.PasswordPolicy
	tokenTTL time.Duration

	maxFailedAttempts int
	lockoutDuration   time.Duration

	now     func() time.Time
	log     logging.Logger
	metrics *metrics.Metrics
}

// UserServiceOption configures a UserService.
type UserServiceOption func(*UserService)

// WithUserClock replaces time.Now for lockout decisions.
func WithUserClock(now func() time.Time) UserServiceOption {
	return func(s *UserService) { s.now = now }
}

// WithMetrics reports login and registration outcomes to m.
func WithMetrics(m *metrics.Metrics) UserServiceOption {
	return func(s *UserService) { s.metrics = m }
}

func NewUserService(store CredentialStore, signer *auth.Signer, cfg *config.Config, log logging.Logger, opts ...UserServiceOption) *UserService {
	s := &UserService{
		store:             store,
		signer:            signer,
		policy:            PasswordPolicy(cfg.Password),
		tokenTTL:          cfg.AccessTokenValidityDuration,
		maxFailedAttempts: cfg.MaxFailedAccessAttempts,
		lockoutDuration:   cfg.LockoutDuration,
		now:               time.Now,
		log:               log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PasswordPolicy converts the configured password rules.
func PasswordPolicy(c config.PasswordConfig) auth.PasswordPolicy {
	return auth.PasswordPolicy{
		MinLength:              c.MinLength,
		RequireDigit:           c.RequireDigit,
		RequireLowercase:       c.RequireLowercase,
		RequireUppercase:       c.RequireUppercase,
		RequireNonAlphanumeric: c.RequireNonAlphanumeric,
		RequiredUniqueChars:    c.RequiredUniqueChars,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a confirmed user and returns a token for it.
// Bad input yields a *common.ValidationError and a taken email
// common.ErrConflict.
func (s *UserService) Register(ctx context.Context, email, password string) (*Token, error) {
	email = normalizeEmail(email)

	ve := common.NewValidationError()
	validx.Var(ve, "email", email, "required,email")
	if password == "" {
		ve.Add("password", "is required")
	} else {
		for _, msg := range s.policy.Validate(password) {
			ve.Add("password", msg)
		}
	}
	if err := ve.Err(); err != nil {
		s.metrics.RegisterResult(metrics.RegisterInvalid)
		return nil, err
	}

	user, err := s.store.Create(ctx, email, password)
	if err != nil {
		if errors.Is(err, common.ErrConflict) {
			s.metrics.RegisterResult(metrics.RegisterConflict)
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.log.Info(ctx, "user registered", "user_id", user.ID)
	s.metrics.RegisterResult(metrics.RegisterSuccess)

	return s.issue(ctx, user)
}

// Login verifies credentials and returns a token.
//
// Unknown emails and wrong passwords both yield common.ErrInvalidCredentials.
// A locked account yields common.ErrLockedOut before the password is checked,
// and so does the failure that reaches the attempt threshold. The store
// re-checks the window when it records a failure or resets the counter, so
// logins that raced past the first check while a lockout opened are refused
// too.
func (s *UserService) Login(ctx context.Context, email, password string) (*Token, error) {
	email = normalizeEmail(email)

	ve := common.NewValidationError()
	validx.Var(ve, "email", email, "required,email")
	if password == "" {
		ve.Add("password", "is required")
	}
	if err := ve.Err(); err != nil {
		s.metrics.LoginResult(metrics.LoginBadRequest)
		return nil, err
	}

	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_ = s.store.VerifyPassword(nil, password)
			s.metrics.LoginResult(metrics.LoginInvalid)
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}

	now := s.now()
	if user.IsLockedOut(now) {
		s.metrics.LoginResult(metrics.LoginLockedOut)
		return nil, common.ErrLockedOut
	}

	if err := s.store.VerifyPassword(user, password); err != nil {
		if !errors.Is(err, common.ErrInvalidCredentials) {
			return nil, fmt.Errorf("error verifying password: %w", err)
		}
		return nil, s.failedAttempt(ctx, user, now)
	}

	if err := s.store.ResetFailedAttempts(ctx, user.ID, now); err != nil {
		if errors.Is(err, common.ErrLockedOut) {
			s.metrics.LoginResult(metrics.LoginLockedOut)
			return nil, err
		}
		return nil, fmt.Errorf("error resetting failed attempts: %w", err)
	}

	s.metrics.LoginResult(metrics.LoginSuccess)
	return s.issue(ctx, user)
}

func (s *UserService) failedAttempt(ctx context.Context, user *models.User, now time.Time) error {
	res, err := s.store.RecordFailedAttempt(ctx, user.ID, s.maxFailedAttempts, now, now.Add(s.lockoutDuration))
	if err != nil {
		return fmt.Errorf("error recording failed attempt: %w", err)
	}

	if res.AlreadyLocked {
		s.metrics.LoginResult(metrics.LoginLockedOut)
		return common.ErrLockedOut
	}
	if res.LockedOut {
		s.log.Warn(ctx, "user locked out", "user_id", user.ID, "attempts", res.Count, "duration", s.lockoutDuration)
		s.metrics.LockoutOpened()
		s.metrics.LoginResult(metrics.LoginLockedOut)
		return common.ErrLockedOut
	}

	s.metrics.LoginResult(metrics.LoginInvalid)
	return common.ErrInvalidCredentials
}

func (s *UserService) issue(ctx context.Context, user *models.User) (*Token, error) {
	claims, err := s.store.ListClaims(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("error listing claims: %w", err)
	}

	at, err := s.signer.Issue(auth.Subject{ID: user.ID, Email: user.Email}, claims, s.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("error issuing token: %w", err)
	}

	return &Token{
		AccessToken: at.Token,
		ExpiresIn:   at.ExpiresIn,
		User:        UserToken{ID: user.ID, Email: user.Email, Claims: claims},
	}, nil
}
