package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/krystark/portal-gate/credentials"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	profilePath = "/profile"
	refreshPath = "/refresh"

	// refreshExpiresInMins is sent with every refresh request; the
	// account service treats it as the requested access-token lifetime.
	refreshExpiresInMins = 30
)

// Client talks to the primary account service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

type ClientOption func(*Client)

// WithHTTPClient overrides the underlying HTTP client (primarily for
// tests and custom transports).
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func NewClient(baseURL string, log zerolog.Logger, options ...ClientOption) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		log:        log.With().Str("component", "identity.Client").Logger(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Profile fetches the canonical profile for an access token. Non-2xx
// responses surface as *StatusError; network failures as wrapped
// transport errors. No implicit retry.
func (c *Client) Profile(ctx context.Context, accessToken string) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, joinURL(c.baseURL, profilePath), nil)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.Profile] building request")
	}
	req.Header = buildHeaders(headerOptions{accept: "application/json", token: accessToken})

	body, err := c.do(req)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.Profile]")
	}

	var profile Profile
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, errors.Wrap(err, "[Client.Profile] decoding profile")
	}
	return &profile, nil
}

type refreshRequest struct {
	RefreshToken  string `json:"refreshToken"`
	ExpiresInMins int    `json:"expiresInMins"`
}

type refreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Refresh exchanges a refresh token for a new token pair. The returned
// pair's RefreshToken is empty when the server did not rotate it; the
// caller decides whether to keep the old one.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (credentials.TokenPair, error) {
	payload, err := json.Marshal(refreshRequest{RefreshToken: refreshToken, ExpiresInMins: refreshExpiresInMins})
	if err != nil {
		return credentials.TokenPair{}, errors.Wrap(err, "[Client.Refresh] encoding request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, joinURL(c.baseURL, refreshPath), bytes.NewReader(payload))
	if err != nil {
		return credentials.TokenPair{}, errors.Wrap(err, "[Client.Refresh] building request")
	}
	req.Header = buildHeaders(headerOptions{accept: "application/json", contentType: "application/json"})

	body, err := c.do(req)
	if err != nil {
		return credentials.TokenPair{}, errors.Wrap(err, "[Client.Refresh]")
	}

	var resp refreshResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return credentials.TokenPair{}, errors.Wrap(err, "[Client.Refresh] decoding response")
	}
	if resp.AccessToken == "" {
		return credentials.TokenPair{}, errors.New("[Client.Refresh] no accessToken in refresh response")
	}
	return credentials.TokenPair{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken}, nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = res.Body.Close()
	}()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		c.log.Debug().Int("status", res.StatusCode).Str("path", req.URL.Path).Msg("account service rejected request")
		return nil, &StatusError{Status: res.StatusCode, Body: string(body)}
	}
	return body, nil
}

type headerOptions struct {
	accept      string
	contentType string
	token       string
}

func buildHeaders(opts headerOptions) http.Header {
	h := http.Header{}
	if opts.accept != "" {
		h.Set("Accept", opts.accept)
	}
	if opts.contentType != "" {
		h.Set("Content-Type", opts.contentType)
	}
	if opts.token != "" {
		h.Set("Authorization", "Bearer "+opts.token)
	}
	return h
}

func joinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
