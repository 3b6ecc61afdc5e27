package session

import (
	"fmt"

	"github.com/pkg/errors"
)

// Session failure taxonomy. Only ErrInvalidSession and ErrRefreshFailed
// actively clear stored credentials; every other unauthorized outcome
// leaves storage untouched so a manual retry can reuse the same token.
var (
	// ErrInvalidSession: the account service no longer knows the session
	// (404). Unrecoverable; credentials are cleared.
	ErrInvalidSession = errors.New("invalid session")

	// ErrExpiredSession: the access token was rejected (401/403).
	// Recoverable via exactly one refresh attempt.
	ErrExpiredSession = errors.New("expired session")

	// ErrRefreshFailed: the refresh call itself failed. Unrecoverable;
	// credentials are cleared.
	ErrRefreshFailed = errors.New("refresh failed")

	// ErrInconsistentIdentity: the primary and legacy providers describe
	// different people, even though each check individually succeeded.
	ErrInconsistentIdentity = errors.New("primary and legacy identities disagree")

	// ErrTransport: a network-level or unexpected failure. Unrecoverable
	// for that attempt; never implicitly retried.
	ErrTransport = errors.New("transport error")
)

// AuthError couples a taxonomy sentinel with the HTTP status code that
// produced it. Code 0 means no status was observed.
type AuthError struct {
	Kind error
	Code int
}

func NewAuthError(kind error, code int) *AuthError {
	return &AuthError{Kind: kind, Code: code}
}

func (e *AuthError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s (status %d)", e.Kind.Error(), e.Code)
	}
	return e.Kind.Error()
}

func (e *AuthError) Unwrap() error {
	return e.Kind
}

func (e *AuthError) StatusCode() int {
	return e.Code
}

// ErrorCode extracts the HTTP status from any status-carrying error in
// the chain (AuthError, the identity and legacy client rejections), 0
// when none applies.
func ErrorCode(err error) int {
	var coded interface{ StatusCode() int }
	if errors.As(err, &coded) {
		return coded.StatusCode()
	}
	return 0
}
