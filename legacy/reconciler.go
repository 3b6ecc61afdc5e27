package legacy

import (
	"context"

	"github.com/krystark/portal-gate/internal/config"
	"github.com/krystark/portal-gate/internal/utils"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// DirectoryAPI is the slice of the directory client the reconciler needs.
type DirectoryAPI interface {
	Auth(ctx context.Context, accessToken string) (*Profile, error)
}

// Reconciler runs the legacy identity check when it applies and derives
// the entitlement set (allow-list, admin flag) from the directory's
// answer.
type Reconciler struct {
	api DirectoryAPI
	cfg config.Config
	log zerolog.Logger
}

func NewReconciler(api DirectoryAPI, cfg config.Config, log zerolog.Logger) *Reconciler {
	return &Reconciler{
		api: api,
		cfg: cfg,
		log: log.With().Str("component", "legacy.Reconciler").Logger(),
	}
}

// Applicable reports whether the legacy check runs at all: an endpoint is
// configured, the build is production, and no skip flag is set.
func (r *Reconciler) Applicable() bool {
	return r.cfg.GetLegacyBaseURL() != "" &&
		r.cfg.IsProduction() &&
		!r.cfg.GetSkipLegacyCheck()
}

// Reconcile verifies the session against the directory. When the check is
// not applicable it vacuously succeeds with a nil Identity, which callers
// must keep distinguishable from an empty one.
func (r *Reconciler) Reconcile(ctx context.Context, accessToken string) (*Identity, error) {
	if !r.Applicable() {
		return nil, nil
	}

	profile, err := r.api.Auth(ctx, accessToken)
	if err != nil {
		return nil, errors.Wrap(err, "[Reconciler.Reconcile]")
	}

	identity := &Identity{
		ExternalID:     utils.NormID(profile.Identity.ExternalID),
		RouteAllowList: utils.NormIDs(profile.Identity.Routes),
		GroupIDs:       profile.Identity.Groups,
	}
	identity.IsAdmin = profile.Identity.IsAdmin || identity.InGroup(r.cfg.GetAdminGroupID())

	r.log.Debug().
		Str("external_id", identity.ExternalID).
		Int("allowed_routes", len(identity.RouteAllowList)).
		Bool("is_admin", identity.IsAdmin).
		Msg("legacy identity reconciled")

	return identity, nil
}

// CrossCheck rejects a session whose primary and legacy identities name
// different people. Both identifiers must be present for the comparison
// to apply; an absent identifier on either side is not an inconsistency.
func CrossCheck(primaryLegacyID string, identity *Identity) bool {
	if identity == nil {
		return true
	}
	primary := utils.NormID(primaryLegacyID)
	if primary == "" || identity.ExternalID == "" {
		return true
	}
	return primary == identity.ExternalID
}
