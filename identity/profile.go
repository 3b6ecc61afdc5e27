// Package identity is the client for the primary account service: it
// exchanges an access token for the canonical user profile and performs
// token refreshes. It never retries on its own; the session verifier owns
// the retry/refresh policy.
package identity

import "fmt"

// Profile is the canonical user record returned by the account service.
// A zero ID means the caller is not authorized.
type Profile struct {
	ID        int64  `json:"id"`
	Username  string `json:"username,omitempty"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`

	// LegacyID is the foreign key into the legacy directory, when the
	// account service knows it. String-compared against the directory's
	// own identifier during reconciliation.
	LegacyID string `json:"legacyId,omitempty"`
}

// DisplayName assembles a human-readable name, preferring the real name
// over the username.
func (p *Profile) DisplayName() string {
	switch {
	case p.FirstName != "" && p.LastName != "":
		return p.FirstName + " " + p.LastName
	case p.FirstName != "":
		return p.FirstName
	default:
		return p.Username
	}
}

// StatusError is a non-2xx response from the account service.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("account service returned %d", e.Status)
}

func (e *StatusError) StatusCode() int {
	return e.Status
}
