// Package redisstore backs the credential store's durable and
// session-scoped tiers with redis, and relays change broadcasts over
// redis pub/sub so every gate instance observes credential writes.
package redisstore

import (
	"context"
	"time"

	"github.com/krystark/portal-gate/credentials"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

var _ credentials.Storage = (*Storage)(nil)
var _ credentials.Broadcaster = (*Storage)(nil)

type Storage struct {
	rdb        *redis.Client
	key        string
	channel    string
	sessionTTL time.Duration
	log        zerolog.Logger
}

type Config struct {
	Addr string

	// Key is the credential payload key; the session tier uses
	// Key + ":session" with SessionTTL.
	Key        string
	Channel    string
	SessionTTL time.Duration

	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PingTimeout  time.Duration
}

func (c Config) withDefaults() Config {
	out := c
	if out.Key == "" {
		out.Key = "portal.auth"
	}
	if out.Channel == "" {
		out.Channel = "portal.auth.changed"
	}
	if out.SessionTTL <= 0 {
		out.SessionTTL = 12 * time.Hour
	}
	if out.DialTimeout <= 0 {
		out.DialTimeout = 3 * time.Second
	}
	if out.ReadTimeout <= 0 {
		out.ReadTimeout = 2 * time.Second
	}
	if out.WriteTimeout <= 0 {
		out.WriteTimeout = 2 * time.Second
	}
	if out.PingTimeout <= 0 {
		out.PingTimeout = 2 * time.Second
	}
	return out
}

// New opens a redis-backed credential storage and validates connectivity
// via PING.
func New(ctx context.Context, cfg Config, log zerolog.Logger) (*Storage, error) {
	cfg = cfg.withDefaults()
	if cfg.Addr == "" {
		return nil, errors.New("[redisstore.New] redis addr is required")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrap(err, "[redisstore.New] redis ping failed")
	}

	return &Storage{
		rdb:        rdb,
		key:        cfg.Key,
		channel:    cfg.Channel,
		sessionTTL: cfg.SessionTTL,
		log:        log.With().Str("component", "credentials.redisstore").Logger(),
	}, nil
}

func (s *Storage) scopeKey(scope credentials.Scope) string {
	if scope == credentials.ScopeSession {
		return s.key + ":session"
	}
	return s.key
}

func (s *Storage) Get(ctx context.Context, scope credentials.Scope) (string, error) {
	raw, err := s.rdb.Get(ctx, s.scopeKey(scope)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrap(err, "[redisstore.Get]")
	}
	return raw, nil
}

func (s *Storage) Set(ctx context.Context, scope credentials.Scope, payload string) error {
	ttl := time.Duration(0)
	if scope == credentials.ScopeSession {
		ttl = s.sessionTTL
	}
	if err := s.rdb.Set(ctx, s.scopeKey(scope), payload, ttl).Err(); err != nil {
		return errors.Wrap(err, "[redisstore.Set]")
	}
	return nil
}

func (s *Storage) Remove(ctx context.Context, scope credentials.Scope) error {
	if err := s.rdb.Del(ctx, s.scopeKey(scope)).Err(); err != nil {
		return errors.Wrap(err, "[redisstore.Remove]")
	}
	return nil
}

// Publish announces a credential change. The message carries no token
// material; listeners re-resolve from storage.
func (s *Storage) Publish(ctx context.Context) error {
	if err := s.rdb.Publish(ctx, s.channel, "changed").Err(); err != nil {
		return errors.Wrap(err, "[redisstore.Publish]")
	}
	return nil
}

// Listen invokes notify for every broadcast until ctx is done.
func (s *Storage) Listen(ctx context.Context, notify func()) {
	sub := s.rdb.Subscribe(ctx, s.channel)
	ch := sub.Channel()
	go func() {
		defer func() {
			if err := sub.Close(); err != nil {
				s.log.Warn().Err(err).Msg("closing subscription failed")
			}
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-ch:
				if !ok {
					return
				}
				notify()
			}
		}
	}()
}

func (s *Storage) Close() error {
	return s.rdb.Close()
}
