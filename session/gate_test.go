package session_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/krystark/portal-gate/credentials"
	"github.com/krystark/portal-gate/credentials/storagefake"
	"github.com/krystark/portal-gate/internal/config"
	"github.com/krystark/portal-gate/legacy"
	"github.com/krystark/portal-gate/session"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	config.EnvVars
	config.Auth
	config.Legacy
	config.Store

	env       string
	legacyURL string
	skipCheck bool
}

func (c testConfig) GetEnv() string           { return c.env }
func (c testConfig) IsProduction() bool       { return c.env == "PROD" }
func (c testConfig) GetDevToken() string      { return "" }
func (c testConfig) GetLegacyBaseURL() string { return c.legacyURL }
func (c testConfig) GetSkipLegacyCheck() bool { return c.skipCheck }
func (c testConfig) GetAdminGroupID() int     { return 1 }

type fakeDirectory struct {
	profile *legacy.Profile
	err     error
}

func (f *fakeDirectory) Auth(_ context.Context, _ string) (*legacy.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.profile, nil
}

func directoryAnswer(externalID string, routes []string, isAdmin bool) *legacy.Profile {
	p := &legacy.Profile{StatusCode: http.StatusOK}
	p.Identity.ExternalID = externalID
	p.Identity.Routes = routes
	p.Identity.IsAdmin = isAdmin
	return p
}

type gateFixture struct {
	api   *fakeAccountAPI
	dir   *fakeDirectory
	store *credentials.Store
	gate  *session.Gate
}

func setupGate(t *testing.T, cfg testConfig, options ...session.GateOption) *gateFixture {
	t.Helper()

	api := newFakeAccountAPI()
	dir := &fakeDirectory{}
	store := credentials.NewStore(storagefake.New(), zerolog.Nop())
	resolver := credentials.NewResolver(store, cfg, zerolog.Nop())
	verifier, err := session.NewVerifier(api, store, zerolog.Nop())
	require.NoError(t, err)
	reconciler := legacy.NewReconciler(dir, cfg, zerolog.Nop())

	return &gateFixture{
		api:   api,
		dir:   dir,
		store: store,
		gate:  session.NewGate(store, resolver, verifier, reconciler, zerolog.Nop(), options...),
	}
}

func waitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestGateNoTokenIsTerminalUnchecked(t *testing.T) {
	f := setupGate(t, testConfig{env: "PROD"})

	f.gate.Bootstrap(context.Background(), "https://portal.example.com/")
	state := f.gate.Wait(waitCtx(t))

	require.Equal(t, session.PhaseUnchecked, state.Phase)
	require.True(t, state.Finished)
	require.False(t, state.Checking)
	require.False(t, state.Authorized())
}

func TestGateAuthorizedWithoutLegacyCheck(t *testing.T) {
	ctx := context.Background()
	f := setupGate(t, testConfig{env: "PROD"}) // no legacy endpoint configured
	f.api.profiles["tok"] = profileAnswer{profile: testProfile(42, "42")}
	f.store.Set(ctx, credentials.TokenPair{AccessToken: "tok"}, true)

	f.gate.Bootstrap(ctx, "")
	state := f.gate.Wait(waitCtx(t))

	require.Equal(t, session.PhaseAuthorized, state.Phase)
	require.Nil(t, state.Legacy, "inapplicable legacy check must surface as nil, not empty")
	require.Equal(t, int64(42), state.Identity.ID)
}

func TestGateAuthorizedWithLegacyIdentity(t *testing.T) {
	ctx := context.Background()
	f := setupGate(t, testConfig{env: "PROD", legacyURL: "https://legacy"})
	f.api.profiles["tok"] = profileAnswer{profile: testProfile(42, "42")}
	f.dir.profile = directoryAnswer("42", []string{"reports"}, false)
	f.store.Set(ctx, credentials.TokenPair{AccessToken: "tok"}, true)

	f.gate.Bootstrap(ctx, "")
	state := f.gate.Wait(waitCtx(t))

	require.Equal(t, session.PhaseAuthorized, state.Phase)
	require.NotNil(t, state.Legacy)
	require.Equal(t, []string{"reports"}, state.Legacy.RouteAllowList)
}

func TestGateInconsistentIdentityRejectsSession(t *testing.T) {
	ctx := context.Background()
	f := setupGate(t, testConfig{env: "PROD", legacyURL: "https://legacy"})
	f.api.profiles["tok"] = profileAnswer{profile: testProfile(42, "42")}
	f.dir.profile = directoryAnswer("99", []string{"reports"}, false)
	f.store.Set(ctx, credentials.TokenPair{AccessToken: "tok"}, true)

	f.gate.Bootstrap(ctx, "")
	state := f.gate.Wait(waitCtx(t))

	require.Equal(t, session.PhaseUnauthorized, state.Phase,
		"both checks succeeded individually but name different people")
	require.ErrorIs(t, state.Err, session.ErrInconsistentIdentity)
}

func TestGateLegacyRejectionRejectsSession(t *testing.T) {
	ctx := context.Background()
	f := setupGate(t, testConfig{env: "PROD", legacyURL: "https://legacy"})
	f.api.profiles["tok"] = profileAnswer{profile: testProfile(42, "42")}
	f.dir.err = &legacy.StatusError{Status: http.StatusForbidden}
	f.store.Set(ctx, credentials.TokenPair{AccessToken: "tok"}, true)

	f.gate.Bootstrap(ctx, "")
	state := f.gate.Wait(waitCtx(t))

	require.Equal(t, session.PhaseUnauthorized, state.Phase)
	require.Equal(t, http.StatusForbidden, state.ErrorCode)
}

func TestGateCheckingAndFinishedFlags(t *testing.T) {
	ctx := context.Background()
	f := setupGate(t, testConfig{env: "PROD"})

	release := make(chan struct{})
	f.api.blockProfile["tok"] = release
	f.api.profiles["tok"] = profileAnswer{profile: testProfile(42, "")}
	f.store.Set(ctx, credentials.TokenPair{AccessToken: "tok"}, true)

	f.gate.Bootstrap(ctx, "")

	state := f.gate.State()
	require.Equal(t, session.PhaseChecking, state.Phase)
	require.True(t, state.Checking)
	require.False(t, state.Finished)

	close(release)
	state = f.gate.Wait(waitCtx(t))
	require.True(t, state.Finished)
	require.Equal(t, session.PhaseAuthorized, state.Phase)
}

func TestGateStaleResultIgnored(t *testing.T) {
	ctx := context.Background()
	f := setupGate(t, testConfig{env: "PROD"})

	release := make(chan struct{})
	f.api.blockProfile["old"] = release
	f.api.profiles["old"] = profileAnswer{err: nil} // would 401 if applied
	f.api.profiles["new"] = profileAnswer{profile: testProfile(7, "")}

	f.store.Set(ctx, credentials.TokenPair{AccessToken: "old"}, true)
	f.gate.Bootstrap(ctx, "")

	// user logs in again before the first check resolves
	f.store.Set(ctx, credentials.TokenPair{AccessToken: "new"}, true)
	f.gate.Recheck(ctx)

	state := f.gate.Wait(waitCtx(t))
	require.Equal(t, session.PhaseAuthorized, state.Phase)
	require.Equal(t, int64(7), state.Identity.ID)

	// the superseded check completes harmlessly
	close(release)
	state = f.gate.State()
	require.Equal(t, session.PhaseAuthorized, state.Phase)
	require.Equal(t, int64(7), state.Identity.ID)
}

func TestGateRecheckUnchangedTokenIsNoOp(t *testing.T) {
	ctx := context.Background()
	f := setupGate(t, testConfig{env: "PROD"})
	f.api.profiles["tok"] = profileAnswer{profile: testProfile(42, "")}
	f.store.Set(ctx, credentials.TokenPair{AccessToken: "tok"}, true)

	f.gate.Bootstrap(ctx, "")
	f.gate.Wait(waitCtx(t))
	profilesBefore, _ := f.api.counts()

	f.gate.Recheck(ctx)
	profilesAfter, _ := f.api.counts()
	require.Equal(t, profilesBefore, profilesAfter)
}

func TestGateFinishedHook(t *testing.T) {
	ctx := context.Background()

	var got []session.State
	hook := func(s session.State) { got = append(got, s) }

	f := setupGate(t, testConfig{env: "PROD"}, session.WithFinishedHook(hook))
	f.api.profiles["tok"] = profileAnswer{profile: testProfile(42, "")}
	f.store.Set(ctx, credentials.TokenPair{AccessToken: "tok"}, true)

	f.gate.Bootstrap(ctx, "")
	f.gate.Wait(waitCtx(t))

	require.Len(t, got, 1)
	require.Equal(t, session.PhaseAuthorized, got[0].Phase)
}

func TestGateLogoutClearsCredentials(t *testing.T) {
	ctx := context.Background()
	f := setupGate(t, testConfig{env: "PROD"})
	f.store.Set(ctx, credentials.TokenPair{AccessToken: "tok"}, true)

	f.gate.Logout(ctx)
	require.True(t, f.store.Resolve(ctx).IsZero())
}
