package models

// Claim is a typed permission statement, e.g. {"DeleteProvider", "true"}.
type Claim struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// RoleClaimType is the claim type emitted for each role a user holds.
const RoleClaimType = "role"
