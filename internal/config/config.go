package config

type Config interface {
	EnvConfig
	AuthConfig
	LegacyConfig
	StoreConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	IsProduction() bool
	GetBootstrapURL() string
	GetAllowedOrigins() []string
}

// AuthConfig covers the primary account service and the credential
// resolution channels.
type AuthConfig interface {
	GetAuthBaseURL() string
	GetURLTokenParam() string
	GetDevToken() string
}

// LegacyConfig covers the legacy directory service.
type LegacyConfig interface {
	GetLegacyBaseURL() string
	GetSkipLegacyCheck() bool
	GetAdminGroupID() int
}

type mainConfig struct {
	EnvVars
	Auth
	Legacy
	Store
}

func New() Config {
	return mainConfig{}
}
