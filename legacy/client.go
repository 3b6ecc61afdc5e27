package legacy

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const authPath = "/legacy/auth"

// Profile is the wire shape of the directory's auth check. The directory
// reports its verdict as a statusCode field in the body.
type Profile struct {
	StatusCode int `json:"statusCode"`
	Identity   struct {
		ExternalID string   `json:"external_id"`
		Routes     []string `json:"routes"`
		Groups     []int    `json:"groups"`
		IsAdmin    bool     `json:"is_admin"`
	} `json:"identity"`
}

// StatusError is a rejection from the directory, either at the HTTP
// layer or via the body statusCode.
type StatusError struct {
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("legacy directory returned %d", e.Status)
}

func (e *StatusError) StatusCode() int {
	return e.Status
}

// Client talks to the legacy directory service. It shares none of the
// primary flow's retry/refresh logic: one attempt per check.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

type ClientOption func(*Client)

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func NewClient(baseURL string, log zerolog.Logger, options ...ClientOption) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		log:        log.With().Str("component", "legacy.Client").Logger(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Auth verifies the session against the directory.
func (c *Client) Auth(ctx context.Context, accessToken string) (*Profile, error) {
	url := strings.TrimRight(c.baseURL, "/") + authPath
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.Auth] building request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.Auth]")
	}
	defer func() {
		_ = res.Body.Close()
	}()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.Auth] reading response")
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		c.log.Debug().Int("status", res.StatusCode).Msg("directory rejected request")
		return nil, &StatusError{Status: res.StatusCode}
	}

	var profile Profile
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, errors.Wrap(err, "[Client.Auth] decoding response")
	}
	if profile.StatusCode != 0 && profile.StatusCode != http.StatusOK {
		return nil, &StatusError{Status: profile.StatusCode}
	}
	return &profile, nil
}
