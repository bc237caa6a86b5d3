// Package auth issues and verifies access tokens, decides claim-based
// authorization policies and hashes passwords.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophprovider/internal/common"
	"github.com/dmitrijs2005/gophprovider/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Subject identifies the user a token is issued for.
type Subject struct {
	ID    string
	Email string
}

// AccessToken is a signed token together with its lifetime.
type AccessToken struct {
	Token     string
	ID        string
	ExpiresIn time.Duration
	ExpiresAt time.Time
}

// Signer issues and verifies HMAC-signed JWT access tokens. The key and the
// algorithm are fixed at construction; a Signer is safe for concurrent use.
type Signer struct {
	key      []byte
	method   jwt.SigningMethod
	issuer   string
	audience string
	now      func() time.Time
}

// Option configures a Signer.
type Option func(*Signer)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Signer) { s.now = now }
}

// WithIssuer sets iss on issued tokens and requires it on verification.
func WithIssuer(issuer string) Option {
	return func(s *Signer) { s.issuer = issuer }
}

// WithAudience sets aud on issued tokens and requires it on verification.
func WithAudience(audience string) Option {
	return func(s *Signer) { s.audience = audience }
}

// NewSigner returns a Signer for one of HS256, HS384 or HS512.
func NewSigner(key []byte, alg string, opts ...Option) (*Signer, error) {
	if len(key) == 0 {
		return nil, errors.New("auth: empty signing key")
	}

	var method jwt.SigningMethod
	switch alg {
	case "HS256":
		method = jwt.SigningMethodHS256
	case "HS384":
		method = jwt.SigningMethodHS384
	case "HS512":
		method = jwt.SigningMethodHS512
	default:
		return nil, fmt.Errorf("auth: unsupported signing algorithm %q", alg)
	}

	s := &Signer{key: key, method: method, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Issue signs a token for sub carrying claims, valid for ttl from now.
func (s *Signer) Issue(sub Subject, claims []models.Claim, ttl time.Duration) (*AccessToken, error) {
	if ttl <= 0 {
		return nil, errors.New("auth: token lifetime must be positive")
	}

	iat := s.now()
	exp := iat.Add(ttl)

	tc := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   sub.Email,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(iat),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		UserID: sub.ID,
		Claims: claims,
	}
	if s.audience != "" {
		tc.Audience = jwt.ClaimStrings{s.audience}
	}

	signed, err := jwt.NewWithClaims(s.method, tc).SignedString(s.key)
	if err != nil {
		return nil, err
	}

	return &AccessToken{
		Token:     signed,
		ID:        tc.ID,
		ExpiresIn: ttl,
		ExpiresAt: tc.ExpiresAt.Time,
	}, nil
}

// Verify checks the signature, algorithm and lifetime of token and returns
// its claims. An expired token yields common.ErrTokenExpired; any other
// problem yields common.ErrInvalidToken.
func (s *Signer) Verify(token string) (*ClaimSet, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	if s.audience != "" {
		opts = append(opts, jwt.WithAudience(s.audience))
	}

	tc := &tokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, tc, func(*jwt.Token) (any, error) {
		return s.key, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, common.ErrInvalidToken
	}

	cs := &ClaimSet{
		TokenID: tc.ID,
		UserID:  tc.UserID,
		Subject: tc.Subject,
		Claims:  tc.Claims,
	}
	if tc.IssuedAt != nil {
		cs.IssuedAt = tc.IssuedAt.Time
	}
	if tc.ExpiresAt != nil {
		cs.ExpiresAt = tc.ExpiresAt.Time
	}
	return cs, nil
}
