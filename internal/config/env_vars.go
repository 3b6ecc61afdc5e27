package config

import (
	"os"
	"strings"
)

const (
	portEnvVar    = "PORT"
	appNameVar    = "APP_NAME"
	envVar        = "ENV"
	bootstrapURLV = "BOOTSTRAP_URL"
	originsEnvVar = "CORS_ALLOWED_ORIGINS"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "8080")
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}
	return port
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Portal Gate")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv(envVar)
	if env == "" {
		return "DEV"
	}
	return env
}

func (e EnvVars) IsProduction() bool {
	return e.GetEnv() == "PROD"
}

// GetBootstrapURL returns the URL the process was launched for. A token
// embedded in it is consumed exactly once at startup and then stripped.
func (EnvVars) GetBootstrapURL() string {
	return GetEnv(bootstrapURLV, "")
}

// GetAllowedOrigins lists origins the API answers CORS requests for.
// "*" allows any origin.
func (EnvVars) GetAllowedOrigins() []string {
	raw := GetEnv(originsEnvVar, "*")
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
