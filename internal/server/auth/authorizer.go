package auth

import "slices"

// Decision is the outcome of an authorization check.
type Decision int

const (
	Deny Decision = iota
	Allow
)

func (d Decision) String() string {
	if d == Allow {
		return "allow"
	}
	return "deny"
}

// Requirement is satisfied by a claim of ClaimType; when AllowedValues is
// not empty the claim value must also be one of them.
type Requirement struct {
	ClaimType     string
	AllowedValues []string
}

const (
	// PolicyDeleteProvider guards provider deletion.
	PolicyDeleteProvider = "DeleteProvider"
	// ClaimDeleteProvider is the claim type PolicyDeleteProvider requires.
	ClaimDeleteProvider = "DeleteProvider"
)

// DefaultPolicies returns the policies registered at startup.
func DefaultPolicies() map[string]Requirement {
	return map[string]Requirement{
		PolicyDeleteProvider: {ClaimType: ClaimDeleteProvider},
	}
}

// Authorizer evaluates named policies against a ClaimSet. The registry is
// copied at construction and never changes afterwards.
type Authorizer struct {
	policies map[string]Requirement
}

func NewAuthorizer(policies map[string]Requirement) *Authorizer {
	cp := make(map[string]Requirement, len(policies))
	for name, req := range policies {
		req.AllowedValues = slices.Clone(req.AllowedValues)
		cp[name] = req
	}
	return &Authorizer{policies: cp}
}

// Authorize allows when claims satisfy the requirement of policy. Unknown
// policies and empty claim sets are denied.
func (a *Authorizer) Authorize(claims *ClaimSet, policy string) Decision {
	req, ok := a.policies[policy]
	if !ok || claims == nil {
		return Deny
	}

	for _, c := range claims.Claims {
		if c.Type != req.ClaimType {
			continue
		}
		if len(req.AllowedValues) == 0 || slices.Contains(req.AllowedValues, c.Value) {
			return Allow
		}
	}
	return Deny
}

// Has reports whether policy is registered.
func (a *Authorizer) Has(policy string) bool {
	_, ok := a.policies[policy]
	return ok
}
