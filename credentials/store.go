package credentials

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// Store holds the current TokenPair in three tiers: a volatile in-memory
// slot, a durable tier and a session-scoped tier. The durable and
// session tiers are mutually exclusive per write; the volatile slot is
// always updated. Every write is broadcast so other gate instances can
// resynchronize. All storage access is fail-soft: losing persistence
// demotes the session to re-auth, nothing more.
type Store struct {
	storage Storage
	remote  Broadcaster
	log     zerolog.Logger

	mu          sync.Mutex
	volatile    TokenPair
	hasVolatile bool
	subs        map[int]chan struct{}
	nextSub     int
}

type StoreOption func(*Store)

// WithBroadcaster attaches a cross-instance notification channel.
func WithBroadcaster(b Broadcaster) StoreOption {
	return func(s *Store) {
		s.remote = b
	}
}

func NewStore(storage Storage, log zerolog.Logger, options ...StoreOption) *Store {
	s := &Store{
		storage: storage,
		log:     log.With().Str("component", "credentials.Store").Logger(),
		subs:    make(map[int]chan struct{}),
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Set replaces the credential. remember selects the durable tier and
// clears the session tier; otherwise the session tier is written and the
// durable tier cleared.
func (s *Store) Set(ctx context.Context, pair TokenPair, remember bool) {
	s.mu.Lock()
	s.volatile = pair
	s.hasVolatile = true
	s.mu.Unlock()

	payload := encodePayload(pair)
	if remember {
		s.trySet(ctx, ScopeDurable, payload)
		s.tryRemove(ctx, ScopeSession)
	} else {
		s.trySet(ctx, ScopeSession, payload)
		s.tryRemove(ctx, ScopeDurable)
	}

	s.broadcast(ctx)
}

// SetPreferExisting replaces the credential in whichever tier currently
// holds one, defaulting to the session tier. Used by the refresh flow so
// a refreshed token lands where the original was remembered.
func (s *Store) SetPreferExisting(ctx context.Context, pair TokenPair) {
	durable, _ := s.tryGet(ctx, ScopeDurable)
	s.Set(ctx, pair, durable != "")
}

// SetRuntime updates only the volatile slot. Nothing is persisted and no
// broadcast is sent.
func (s *Store) SetRuntime(pair TokenPair) {
	s.mu.Lock()
	s.volatile = pair
	s.hasVolatile = true
	s.mu.Unlock()
}

// Clear removes the credential from every tier and broadcasts the change.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.volatile = TokenPair{}
	s.hasVolatile = false
	s.mu.Unlock()

	s.tryRemove(ctx, ScopeDurable)
	s.tryRemove(ctx, ScopeSession)

	s.broadcast(ctx)
}

// Resolve returns the current credential using the read precedence
// volatile → durable → session. A zero TokenPair means no credential.
func (s *Store) Resolve(ctx context.Context) TokenPair {
	s.mu.Lock()
	if s.hasVolatile {
		pair := s.volatile
		s.mu.Unlock()
		return pair
	}
	s.mu.Unlock()

	if raw, ok := s.tryGet(ctx, ScopeDurable); ok && raw != "" {
		if pair := decodePayload(raw); !pair.IsZero() {
			return pair
		}
	}
	if raw, ok := s.tryGet(ctx, ScopeSession); ok && raw != "" {
		if pair := decodePayload(raw); !pair.IsZero() {
			return pair
		}
	}
	return TokenPair{}
}

// Subscribe registers for change notifications. The channel signals
// at-least-once per write; subscribers re-resolve rather than trust any
// payload. The returned func cancels the subscription.
func (s *Store) Subscribe() (<-chan struct{}, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan struct{}, 1)
	s.subs[id] = ch

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// Listen relays remote credential changes into local subscriptions until
// ctx is done. Remote writes invalidate the volatile slot so the next
// Resolve reads the tiers the remote instance wrote.
func (s *Store) Listen(ctx context.Context) {
	if s.remote == nil {
		return
	}
	s.remote.Listen(ctx, func() {
		s.mu.Lock()
		s.volatile = TokenPair{}
		s.hasVolatile = false
		s.mu.Unlock()
		s.notifyLocal()
	})
}

func (s *Store) broadcast(ctx context.Context) {
	s.notifyLocal()
	if s.remote != nil {
		if err := s.remote.Publish(ctx); err != nil {
			s.log.Warn().Err(err).Msg("credential broadcast failed")
		}
	}
}

func (s *Store) notifyLocal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (s *Store) tryGet(ctx context.Context, scope Scope) (string, bool) {
	raw, err := s.storage.Get(ctx, scope)
	if err != nil {
		s.log.Warn().Err(err).Stringer("scope", scope).Msg("storage read failed, falling through")
		return "", false
	}
	return raw, true
}

func (s *Store) trySet(ctx context.Context, scope Scope, payload string) {
	if err := s.storage.Set(ctx, scope, payload); err != nil {
		s.log.Warn().Err(err).Stringer("scope", scope).Msg("storage write failed")
	}
}

func (s *Store) tryRemove(ctx context.Context, scope Scope) {
	if err := s.storage.Remove(ctx, scope); err != nil {
		s.log.Warn().Err(err).Stringer("scope", scope).Msg("storage remove failed")
	}
}
