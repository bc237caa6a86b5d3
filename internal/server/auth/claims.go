package auth

import (
	"slices"
	"time"

	"github.com/dmitrijs2005/gophprovider/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
)

// tokenClaims is the JWT payload: the registered claims plus the user id and
// the permission claims resolved at issue time.
type tokenClaims struct {
	jwt.RegisteredClaims
	UserID string         `json:"uid"`
	Claims []models.Claim `json:"claims,omitempty"`
}

// ClaimSet is what a verified token tells about its bearer.
type ClaimSet struct {
	TokenID   string
	UserID    string
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Claims    []models.Claim
}

// Has reports whether the set holds at least one claim of claimType.
func (c *ClaimSet) Has(claimType string) bool {
	if c == nil {
		return false
	}
	return slices.ContainsFunc(c.Claims, func(cl models.Claim) bool { return cl.Type == claimType })
}

// Values returns the values of every claim of claimType.
func (c *ClaimSet) Values(claimType string) []string {
	if c == nil {
		return nil
	}
	var out []string
	for _, cl := range c.Claims {
		if cl.Type == claimType {
			out = append(out, cl.Value)
		}
	}
	return out
}
