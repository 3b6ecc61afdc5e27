package config

type Auth struct{}

var _ AuthConfig = Auth{}

// GetAuthBaseURL returns the base URL of the primary account service
// (profile and refresh endpoints).
func (Auth) GetAuthBaseURL() string {
	return GetEnv("AUTH_API_URL", "https://dummyjson.com")
}

// GetURLTokenParam is the reserved query-string/fragment parameter name a
// token may be handed over in. It is read once at bootstrap and stripped.
func (Auth) GetURLTokenParam() string {
	return GetEnv("AUTH_URL_TOKEN_PARAM", "auth_token")
}

// GetDevToken returns a static token override for non-production builds.
func (Auth) GetDevToken() string {
	return GetEnv("DEV_AUTH_TOKEN", "")
}
