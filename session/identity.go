package session

import "strings"

// Identity is the signed-in user as the portal remembers them.
// The four fields are written and cleared together.
type Identity struct {
	Token       string `json:"token" yaml:"token"`             // Opaque bearer token
	Role        string `json:"role" yaml:"role"`               // Portal role, compared case-insensitively
	Email       string `json:"email" yaml:"email"`             // Login email
	DisplayName string `json:"displayName" yaml:"displayName"` // Given and family name
}

// Complete reports whether every field is set
func (i Identity) Complete() bool {
	return i.Token != "" && i.Role != "" && i.Email != "" && i.DisplayName != ""
}

// HasRole compares the identity's role with expected, ignoring case
func (i Identity) HasRole(expected string) bool {
	return expected != "" && strings.EqualFold(strings.TrimSpace(i.Role), strings.TrimSpace(expected))
}

// DisplayName joins the given and family names the way the portal header shows them
func DisplayName(firstName, lastName string) string {
	return strings.TrimSpace(strings.TrimSpace(firstName) + " " + strings.TrimSpace(lastName))
}
