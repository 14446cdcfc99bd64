package core

import "strings"

// Identity is the stable string (account email) naming a party in a
// conversation. Registry rooms and store queries are keyed by the
// normalized form so that "User@Example.com " and "user@example.com"
// address the same party.
type Identity string

// NormalizeIdentity trims whitespace and lowercases the raw identity.
func NormalizeIdentity(raw string) Identity {
	return Identity(strings.ToLower(strings.TrimSpace(raw)))
}

// IsZero reports whether the identity is empty after normalization.
func (i Identity) IsZero() bool {
	return i == ""
}

func (i Identity) String() string {
	return string(i)
}
