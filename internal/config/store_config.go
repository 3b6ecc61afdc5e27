package config

import "time"

// StoreConfig covers credential persistence and the registry/patch inputs.
type StoreConfig interface {
	GetRedisAddr() string
	GetAuthStorageKey() string
	GetAuthChannel() string
	GetSessionTTL() time.Duration
	GetRegistryFile() string
	GetPatchesFile() string
}

type Store struct{}

var _ StoreConfig = Store{}

// GetRedisAddr returns the redis address backing the durable and
// session-scoped credential tiers. Empty means in-process storage only.
func (Store) GetRedisAddr() string {
	return GetEnv("REDIS_ADDR", "")
}

func (Store) GetAuthStorageKey() string {
	return GetEnv("AUTH_STORAGE_KEY", "portal.auth")
}

// GetAuthChannel is the broadcast channel name credential writes are
// announced on so other gate instances resynchronize.
func (Store) GetAuthChannel() string {
	return GetEnv("AUTH_CHANGED_CHANNEL", "portal.auth.changed")
}

// GetSessionTTL bounds the session-scoped tier. The durable tier has no
// expiry.
func (Store) GetSessionTTL() time.Duration {
	d, err := time.ParseDuration(GetEnv("AUTH_SESSION_TTL", "12h"))
	if err != nil {
		return 12 * time.Hour
	}
	return d
}

func (Store) GetRegistryFile() string {
	return GetEnv("REGISTRY_FILE", "./registry.yaml")
}

func (Store) GetPatchesFile() string {
	return GetEnv("PATCHES_FILE", "")
}
