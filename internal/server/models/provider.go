package models

// Provider is a supplier record managed through the provider API.
type Provider struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Document string `json:"document"`
	Active   bool   `json:"active"`
}
