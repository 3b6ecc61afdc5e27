package session

import (
	"context"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/krystark/portal-gate/credentials"
	"github.com/krystark/portal-gate/identity"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// ProfileAPI is the slice of the account-service client the verifier
// needs.
type ProfileAPI interface {
	Profile(ctx context.Context, accessToken string) (*identity.Profile, error)
	Refresh(ctx context.Context, refreshToken string) (credentials.TokenPair, error)
}

// Verifier exchanges a token for the canonical identity, driving the
// one-shot refresh-and-retry sequence on rejection. One attempt per
// token is the contract; generic network errors are never retried.
type Verifier struct {
	api     ProfileAPI
	store   *credentials.Store
	log     zerolog.Logger
	nowTime func() time.Time
}

type VerifierOption func(*Verifier)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) VerifierOption {
	return func(v *Verifier) {
		v.nowTime = nowFunc
	}
}

func NewVerifier(api ProfileAPI, store *credentials.Store, log zerolog.Logger, options ...VerifierOption) (*Verifier, error) {
	if api == nil {
		return nil, errors.New("[NewVerifier] profile API is required")
	}
	if store == nil {
		return nil, errors.New("[NewVerifier] credential store is required")
	}

	v := &Verifier{
		api:     api,
		store:   store,
		log:     log.With().Str("component", "session.Verifier").Logger(),
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(v)
	}
	return v, nil
}

// Check runs the verification state machine for one token pair:
//
//  1. Fetch the profile with the access token.
//  2. 404: the session is gone. Clear credentials, no retry.
//  3. 401/403 with a refresh token: exactly one refresh, then exactly
//     one retried profile fetch. A failed retry surfaces its own status;
//     a second refresh never happens.
//  4. 401/403 without a refresh token, or any other failure: surface the
//     status.
func (v *Verifier) Check(ctx context.Context, pair credentials.TokenPair) (*Identity, error) {
	if pair.IsZero() {
		return nil, errors.New("[Verifier.Check] no access token")
	}

	v.peekExpiry(pair.AccessToken)

	profile, err := v.api.Profile(ctx, pair.AccessToken)
	if err == nil {
		checkOutcomes.WithLabelValues("authorized").Inc()
		return identityFromProfile(profile), nil
	}

	status, ok := statusOf(err)
	if !ok {
		checkOutcomes.WithLabelValues("transport_error").Inc()
		return nil, NewAuthError(ErrTransport, 0)
	}

	switch {
	case status == http.StatusNotFound:
		v.log.Info().Msg("session invalidated by account service, clearing credentials")
		v.clearIfCurrent(ctx, pair.AccessToken)
		checkOutcomes.WithLabelValues("invalid_session").Inc()
		return nil, NewAuthError(ErrInvalidSession, status)

	case (status == http.StatusUnauthorized || status == http.StatusForbidden) && pair.RefreshToken != "":
		return v.refreshAndRetry(ctx, pair)

	default:
		checkOutcomes.WithLabelValues("unauthorized").Inc()
		if status == http.StatusUnauthorized || status == http.StatusForbidden {
			return nil, NewAuthError(ErrExpiredSession, status)
		}
		return nil, NewAuthError(ErrTransport, status)
	}
}

// refreshAndRetry performs the single permitted refresh and profile
// retry. Bounded by construction: the retry path never refreshes again.
func (v *Verifier) refreshAndRetry(ctx context.Context, pair credentials.TokenPair) (*Identity, error) {
	fresh, err := v.api.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		refreshAttempts.WithLabelValues("failed").Inc()
		checkOutcomes.WithLabelValues("refresh_failed").Inc()
		v.log.Info().Msg("token refresh rejected, clearing credentials")
		v.clearIfCurrent(ctx, pair.AccessToken)
		status, _ := statusOf(err)
		return nil, NewAuthError(ErrRefreshFailed, status)
	}
	refreshAttempts.WithLabelValues("ok").Inc()

	// the server may omit a rotated refresh token; keep the old one
	if fresh.RefreshToken == "" {
		fresh.RefreshToken = pair.RefreshToken
	}
	v.store.SetPreferExisting(ctx, fresh)

	profile, err := v.api.Profile(ctx, fresh.AccessToken)
	if err == nil {
		checkOutcomes.WithLabelValues("authorized").Inc()
		return identityFromProfile(profile), nil
	}

	status, ok := statusOf(err)
	if !ok {
		checkOutcomes.WithLabelValues("transport_error").Inc()
		return nil, NewAuthError(ErrTransport, 0)
	}
	if status == http.StatusNotFound {
		v.clearIfCurrent(ctx, fresh.AccessToken)
		checkOutcomes.WithLabelValues("invalid_session").Inc()
		return nil, NewAuthError(ErrInvalidSession, status)
	}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		checkOutcomes.WithLabelValues("unauthorized").Inc()
		return nil, NewAuthError(ErrExpiredSession, status)
	}
	checkOutcomes.WithLabelValues("transport_error").Inc()
	return nil, NewAuthError(ErrTransport, status)
}

// clearIfCurrent clears stored credentials only while the failed token is
// still the resolved one. A check superseded by a newer login must
// complete without destroying the newer credential.
func (v *Verifier) clearIfCurrent(ctx context.Context, accessToken string) {
	if v.store.Resolve(ctx).AccessToken == accessToken {
		v.store.Clear(ctx)
	}
}

// peekExpiry logs when the access token is visibly past its expiry. The
// parse is unverified: the account service is the validator, this is
// diagnostics only.
func (v *Verifier) peekExpiry(raw string) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return
	}
	if exp.Before(v.nowTime()) {
		v.log.Debug().Time("expired_at", exp.Time).Msg("access token already expired before check")
	}
}

func statusOf(err error) (int, bool) {
	var statusErr *identity.StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Status, true
	}
	return 0, false
}
