package config

import "strconv"

type Legacy struct{}

var _ LegacyConfig = Legacy{}

// GetLegacyBaseURL returns the base URL of the legacy directory service.
// Empty means the legacy check is not configured at all.
func (Legacy) GetLegacyBaseURL() string {
	return GetEnv("LEGACY_API_URL", "")
}

// GetSkipLegacyCheck force-disables the legacy check even when an
// endpoint is configured.
func (Legacy) GetSkipLegacyCheck() bool {
	v, err := strconv.ParseBool(GetEnv("SKIP_LEGACY_CHECK", "false"))
	if err != nil {
		return false
	}
	return v
}

// GetAdminGroupID is the privileged directory group whose members are
// administrators regardless of the explicit admin flag.
func (Legacy) GetAdminGroupID() int {
	v, err := strconv.Atoi(GetEnv("LEGACY_ADMIN_GROUP_ID", "1"))
	if err != nil {
		return 1
	}
	return v
}
