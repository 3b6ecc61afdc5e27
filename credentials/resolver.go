package credentials

import (
	"context"
	"net/url"

	"github.com/krystark/portal-gate/internal/config"
	"github.com/rs/zerolog"
)

// Resolver determines the authoritative token at startup, applying the
// precedence: URL-embedded token → stored credential → development-only
// override. No token is a valid terminal state, not an error.
type Resolver struct {
	store *Store
	cfg   config.Config
	log   zerolog.Logger
}

func NewResolver(store *Store, cfg config.Config, log zerolog.Logger) *Resolver {
	return &Resolver{
		store: store,
		cfg:   cfg,
		log:   log.With().Str("component", "credentials.Resolver").Logger(),
	}
}

// Resolve returns the resolved credential, the bootstrap URL with the
// token parameter stripped, and whether a credential was found. A token
// found in the URL is persisted to the durable tier before the URL is
// cleaned so it cannot be re-read or leak via navigation history.
func (r *Resolver) Resolve(ctx context.Context, rawURL string) (TokenPair, string, bool) {
	token, cleaned := r.extractURLToken(rawURL)
	if token != "" {
		pair := TokenPair{AccessToken: token}
		r.store.Set(ctx, pair, true)
		r.log.Info().Msg("token resolved from URL channel")
		return pair, cleaned, true
	}

	if pair := r.store.Resolve(ctx); !pair.IsZero() {
		return pair, cleaned, true
	}

	if !r.cfg.IsProduction() {
		if dev := r.cfg.GetDevToken(); dev != "" {
			pair := TokenPair{AccessToken: dev}
			r.store.SetRuntime(pair)
			r.log.Debug().Msg("using development token override")
			return pair, cleaned, true
		}
	}

	return TokenPair{}, cleaned, false
}

// extractURLToken pulls the reserved token parameter out of the query or
// fragment and returns the URL without it.
func (r *Resolver) extractURLToken(rawURL string) (string, string) {
	if rawURL == "" {
		return "", rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		r.log.Warn().Err(err).Msg("unparsable bootstrap URL, skipping URL token channel")
		return "", rawURL
	}

	param := r.cfg.GetURLTokenParam()
	token := ""

	q := u.Query()
	if v := q.Get(param); v != "" {
		token = v
		q.Del(param)
		u.RawQuery = q.Encode()
	}

	if u.Fragment != "" {
		if fq, ferr := url.ParseQuery(u.Fragment); ferr == nil {
			if v := fq.Get(param); v != "" {
				if token == "" {
					token = v
				}
				fq.Del(param)
				u.Fragment = fq.Encode()
			}
		}
	}

	return token, u.String()
}
