package legacy_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/krystark/portal-gate/internal/config"
	"github.com/krystark/portal-gate/legacy"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	config.EnvVars
	config.Auth
	config.Legacy
	config.Store

	env          string
	legacyURL    string
	skip         bool
	adminGroupID int
}

func (c testConfig) GetEnv() string           { return c.env }
func (c testConfig) IsProduction() bool       { return c.env == "PROD" }
func (c testConfig) GetLegacyBaseURL() string { return c.legacyURL }
func (c testConfig) GetSkipLegacyCheck() bool { return c.skip }
func (c testConfig) GetAdminGroupID() int {
	if c.adminGroupID == 0 {
		return 1
	}
	return c.adminGroupID
}

type fakeDirectory struct {
	profile *legacy.Profile
	err     error
	calls   int
}

func (f *fakeDirectory) Auth(_ context.Context, _ string) (*legacy.Profile, error) {
	f.calls++
	return f.profile, f.err
}

func directoryProfile(externalID string, routes []string, groups []int, isAdmin bool) *legacy.Profile {
	p := &legacy.Profile{StatusCode: http.StatusOK}
	p.Identity.ExternalID = externalID
	p.Identity.Routes = routes
	p.Identity.Groups = groups
	p.Identity.IsAdmin = isAdmin
	return p
}

func TestReconcilerNotApplicable(t *testing.T) {
	tests := []struct {
		name string
		cfg  testConfig
	}{
		{name: "no endpoint configured", cfg: testConfig{env: "PROD"}},
		{name: "development build", cfg: testConfig{env: "DEV", legacyURL: "https://legacy"}},
		{name: "skip flag set", cfg: testConfig{env: "PROD", legacyURL: "https://legacy", skip: true}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dir := &fakeDirectory{}
			r := legacy.NewReconciler(dir, tc.cfg, zerolog.Nop())

			require.False(t, r.Applicable())

			identity, err := r.Reconcile(context.Background(), "tok")
			require.NoError(t, err)
			require.Nil(t, identity, "vacuous success must be nil, not an empty identity")
			require.Zero(t, dir.calls)
		})
	}
}

func TestReconcilerDerivesEntitlements(t *testing.T) {
	dir := &fakeDirectory{profile: directoryProfile("42", []string{" reports ", "reports", "", "billing"}, []int{5, 7}, false)}
	cfg := testConfig{env: "PROD", legacyURL: "https://legacy"}

	identity, err := legacy.NewReconciler(dir, cfg, zerolog.Nop()).Reconcile(context.Background(), "tok")
	require.NoError(t, err)
	require.Equal(t, "42", identity.ExternalID)
	require.Equal(t, []string{"reports", "billing"}, identity.RouteAllowList)
	require.False(t, identity.IsAdmin)
}

func TestReconcilerAdminViaGroupMembership(t *testing.T) {
	dir := &fakeDirectory{profile: directoryProfile("42", nil, []int{1}, false)}
	cfg := testConfig{env: "PROD", legacyURL: "https://legacy"}

	identity, err := legacy.NewReconciler(dir, cfg, zerolog.Nop()).Reconcile(context.Background(), "tok")
	require.NoError(t, err)
	require.True(t, identity.IsAdmin)
}

func TestReconcilerAdminViaExplicitFlag(t *testing.T) {
	dir := &fakeDirectory{profile: directoryProfile("42", nil, []int{9}, true)}
	cfg := testConfig{env: "PROD", legacyURL: "https://legacy"}

	identity, err := legacy.NewReconciler(dir, cfg, zerolog.Nop()).Reconcile(context.Background(), "tok")
	require.NoError(t, err)
	require.True(t, identity.IsAdmin)
}

func TestReconcilerBodyStatusCodeRejection(t *testing.T) {
	dir := &fakeDirectory{err: &legacy.StatusError{Status: http.StatusForbidden}}
	cfg := testConfig{env: "PROD", legacyURL: "https://legacy"}

	_, err := legacy.NewReconciler(dir, cfg, zerolog.Nop()).Reconcile(context.Background(), "tok")

	var statusErr *legacy.StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusForbidden, statusErr.StatusCode())
}

func TestCrossCheck(t *testing.T) {
	match := &legacy.Identity{ExternalID: "42"}
	mismatch := &legacy.Identity{ExternalID: "99"}
	absent := &legacy.Identity{}

	require.True(t, legacy.CrossCheck("42", match))
	require.False(t, legacy.CrossCheck("42", mismatch))
	require.True(t, legacy.CrossCheck("", mismatch), "absent primary key is not an inconsistency")
	require.True(t, legacy.CrossCheck("42", absent), "absent directory id is not an inconsistency")
	require.True(t, legacy.CrossCheck("42", nil), "inapplicable check never conflicts")
}
