package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/dmitrijs2005/gophprovider/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// maxPasswordBytes is the longest input bcrypt accepts.
const maxPasswordBytes = 72

// PasswordPolicy describes the minimum strength of a new password.
// Character classes are ASCII: a letter outside A-Z and a-z counts as
// non-alphanumeric.
type PasswordPolicy struct {
	MinLength              int
	RequireDigit           bool
	RequireLowercase       bool
	RequireUppercase       bool
	RequireNonAlphanumeric bool
	RequiredUniqueChars    int
}

// Validate returns one message per unmet rule, or nil.
func (p PasswordPolicy) Validate(password string) []string {
	var msgs []string

	if utf8.RuneCountInString(password) < p.MinLength {
		msgs = append(msgs, fmt.Sprintf("must be at least %d characters", p.MinLength))
	}
	if len(password) > maxPasswordBytes {
		msgs = append(msgs, fmt.Sprintf("must be at most %d bytes", maxPasswordBytes))
	}

	var digit, lower, upper, other bool
	unique := make(map[rune]struct{})
	for _, r := range password {
		unique[r] = struct{}{}
		switch {
		case r >= '0' && r <= '9':
			digit = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		default:
			other = true
		}
	}

	if p.RequireDigit && !digit {
		msgs = append(msgs, "must contain a digit")
	}
	if p.RequireLowercase && !lower {
		msgs = append(msgs, "must contain a lowercase letter")
	}
	if p.RequireUppercase && !upper {
		msgs = append(msgs, "must contain an uppercase letter")
	}
	if p.RequireNonAlphanumeric && !other {
		msgs = append(msgs, "must contain a non-alphanumeric character")
	}
	if len(unique) < p.RequiredUniqueChars {
		msgs = append(msgs, fmt.Sprintf("must contain at least %d unique characters", p.RequiredUniqueChars))
	}

	return msgs
}

// BcryptHasher hashes and verifies passwords with bcrypt.
type BcryptHasher struct {
	cost  int
	dummy []byte
}

// NewBcryptHasher prepares a hasher with the given cost. It also hashes a
// random password once so that lookups of unknown users can spend the same
// time comparing against it.
func NewBcryptHasher(cost int) (*BcryptHasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("auth: bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}

	seed := make([]byte, 32)
	if _, err := rand.Read(seed); err != nil {
		return nil, err
	}
	dummy, err := bcrypt.GenerateFromPassword(seed, cost)
	if err != nil {
		return nil, err
	}

	return &BcryptHasher{cost: cost, dummy: dummy}, nil
}

func (h *BcryptHasher) Hash(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), h.cost)
}

// Verify returns nil when password matches hash and
// common.ErrInvalidCredentials when it does not.
func (h *BcryptHasher) Verify(hash []byte, password string) error {
	err := bcrypt.CompareHashAndPassword(hash, []byte(password))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return common.ErrInvalidCredentials
	default:
		return fmt.Errorf("bcrypt: %w", err)
	}
}

// VerifyDummy burns one comparison against a hash no password matches.
func (h *BcryptHasher) VerifyDummy(password string) {
	_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(password))
}
