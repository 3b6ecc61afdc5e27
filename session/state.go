package session

import (
	"github.com/krystark/portal-gate/identity"
	"github.com/krystark/portal-gate/legacy"
)

// Phase is the tag of the derived session state union. It is driven only
// by the resolver/verifier/reconciler pipeline; nothing else writes it.
type Phase int

const (
	// PhaseUnchecked: no token resolved; a valid terminal state.
	PhaseUnchecked Phase = iota
	PhaseChecking
	PhaseAuthorized
	PhaseUnauthorized
)

func (p Phase) String() string {
	switch p {
	case PhaseUnchecked:
		return "unchecked"
	case PhaseChecking:
		return "checking"
	case PhaseAuthorized:
		return "authorized"
	case PhaseUnauthorized:
		return "unauthorized"
	}
	return "unknown"
}

// Identity is the verified primary identity. It exists only for the
// duration of a successful session.
type Identity struct {
	ID          int64
	Email       string
	DisplayName string

	// LegacyID is the account service's foreign key into the legacy
	// directory, used for the reconciliation cross-check.
	LegacyID string
}

func identityFromProfile(p *identity.Profile) *Identity {
	return &Identity{
		ID:          p.ID,
		Email:       p.Email,
		DisplayName: p.DisplayName(),
		LegacyID:    p.LegacyID,
	}
}

// State is the combined session state, recomputed as a pure function of
// the latest primary and legacy results, never mutated incrementally.
type State struct {
	Phase Phase

	// Identity is set only when Phase is PhaseAuthorized.
	Identity *Identity

	// Legacy is the reconciled legacy identity; nil means the legacy
	// check was not applicable, which is distinct from an identity with
	// an empty allow-list.
	Legacy *legacy.Identity

	// ErrorCode is the HTTP status behind an unauthorized outcome, 0
	// when none applies.
	ErrorCode int
	Err       error

	// Checking is true while either applicable check is in flight;
	// Finished only once both have completed (or never applied).
	Checking bool
	Finished bool
}

func (s State) Authorized() bool {
	return s.Phase == PhaseAuthorized
}
