package credentials

import (
	"encoding/json"
	"strings"
)

// TokenPair is the process-wide access/refresh credential. It is replaced
// atomically: a refresh swaps both fields together, keeping the prior
// refresh token when the server omits a new one. An empty RefreshToken
// means no refresh is possible.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func (p TokenPair) IsZero() bool {
	return p.AccessToken == ""
}

// storedPayload is the persisted JSON shape. The historical "token" field
// name is still accepted on read.
type storedPayload struct {
	AccessToken  string `json:"accessToken,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
	Token        string `json:"token,omitempty"`
}

func encodePayload(pair TokenPair) string {
	raw, err := json.Marshal(storedPayload{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
	if err != nil {
		return ""
	}
	return string(raw)
}

// decodePayload parses a persisted credential payload. Bare non-JSON
// strings are treated as an access token without a refresh token.
func decodePayload(raw string) TokenPair {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return TokenPair{}
	}
	if !strings.HasPrefix(raw, "{") {
		return TokenPair{AccessToken: raw}
	}

	var p storedPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return TokenPair{}
	}
	access := p.AccessToken
	if access == "" {
		access = p.Token
	}
	return TokenPair{AccessToken: access, RefreshToken: p.RefreshToken}
}
