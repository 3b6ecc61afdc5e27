package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/krystark/portal-gate/credentials"
	"github.com/krystark/portal-gate/legacy"
	"github.com/rs/zerolog"
)

// Gate combines the credential resolver, the primary verifier and the
// legacy reconciler into the single authorized/unauthorized decision.
// The primary and legacy checks run concurrently; the combined state is
// recomputed as a pure function of their latest results. A result issued
// for a token that is no longer current is dropped (stale-response
// guard), so a superseded check completes harmlessly.
type Gate struct {
	store      *credentials.Store
	resolver   *credentials.Resolver
	verifier   *Verifier
	reconciler *legacy.Reconciler
	log        zerolog.Logger
	onFinished func(State)

	mu               sync.Mutex
	token            string
	legacyApplicable bool
	primaryPending   bool
	legacyPending    bool
	primary          *primaryResult
	legacyRes        *legacyResult
	roundDone        chan struct{}
}

type primaryResult struct {
	identity *Identity
	err      error
}

type legacyResult struct {
	identity *legacy.Identity
	err      error
}

type GateOption func(*Gate)

// WithFinishedHook registers a callback invoked once per round, when
// both applicable checks have completed.
func WithFinishedHook(hook func(State)) GateOption {
	return func(g *Gate) {
		g.onFinished = hook
	}
}

func NewGate(
	store *credentials.Store,
	resolver *credentials.Resolver,
	verifier *Verifier,
	reconciler *legacy.Reconciler,
	log zerolog.Logger,
	options ...GateOption,
) *Gate {
	done := make(chan struct{})
	close(done)

	g := &Gate{
		store:      store,
		resolver:   resolver,
		verifier:   verifier,
		reconciler: reconciler,
		log:        log.With().Str("component", "session.Gate").Logger(),
		roundDone:  done,
	}
	for _, opt := range options {
		opt(g)
	}
	return g
}

// Bootstrap resolves the startup credential (consuming a URL-embedded
// token if present) and starts the verification round. It returns the
// bootstrap URL with the token parameter stripped.
func (g *Gate) Bootstrap(ctx context.Context, rawURL string) string {
	pair, cleaned, ok := g.resolver.Resolve(ctx, rawURL)
	g.startRound(ctx, pair, ok)
	return cleaned
}

// Recheck re-resolves from the store and restarts the round when the
// token changed. Called on credential-change notifications; delivery is
// at-least-once, so an unchanged token is a no-op.
func (g *Gate) Recheck(ctx context.Context) {
	pair := g.store.Resolve(ctx)

	g.mu.Lock()
	unchanged := pair.AccessToken == g.token
	g.mu.Unlock()
	if unchanged {
		return
	}

	g.startRound(ctx, pair, !pair.IsZero())
}

// Logout clears every credential tier. The resulting broadcast drives
// the recheck into the unauthenticated terminal state.
func (g *Gate) Logout(ctx context.Context) {
	g.store.Clear(ctx)
}

// Run relays credential-change notifications into rechecks until ctx is
// done.
func (g *Gate) Run(ctx context.Context) {
	ch, cancel := g.store.Subscribe()
	defer cancel()
	g.store.Listen(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ch:
			g.Recheck(ctx)
		}
	}
}

// State returns the combined session state.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.stateLocked()
}

// Wait blocks until the current round finishes or ctx is done, then
// returns the state.
func (g *Gate) Wait(ctx context.Context) State {
	g.mu.Lock()
	done := g.roundDone
	g.mu.Unlock()

	select {
	case <-ctx.Done():
	case <-done:
	}
	return g.State()
}

func (g *Gate) startRound(ctx context.Context, pair credentials.TokenPair, ok bool) {
	checkID := uuid.New().String()

	g.mu.Lock()
	g.token = pair.AccessToken
	g.primary = nil
	g.legacyRes = nil
	g.roundDone = make(chan struct{})

	if !ok {
		// no token: terminal unauthenticated, nothing in flight
		g.primaryPending = false
		g.legacyPending = false
		g.legacyApplicable = false
		close(g.roundDone)
		state := g.stateLocked()
		hook := g.onFinished
		g.mu.Unlock()

		if hook != nil {
			hook(state)
		}
		return
	}

	legacyApplicable := g.reconciler.Applicable()
	g.legacyApplicable = legacyApplicable
	g.primaryPending = true
	g.legacyPending = legacyApplicable
	g.mu.Unlock()

	g.log.Debug().Str("check_id", checkID).Bool("legacy", legacyApplicable).Msg("verification round started")

	issued := pair.AccessToken
	go func() {
		id, err := g.verifier.Check(ctx, pair)
		g.completePrimary(issued, checkID, id, err)
	}()

	if legacyApplicable {
		go func() {
			li, err := g.reconciler.Reconcile(ctx, issued)
			g.completeLegacy(issued, checkID, li, err)
		}()
	}
}

func (g *Gate) completePrimary(issued, checkID string, id *Identity, err error) {
	g.mu.Lock()
	if issued != g.token {
		g.mu.Unlock()
		staleResponses.Inc()
		g.log.Debug().Str("check_id", checkID).Msg("stale primary check result ignored")
		return
	}
	g.primary = &primaryResult{identity: id, err: err}
	g.primaryPending = false
	g.finishLocked(checkID)
}

func (g *Gate) completeLegacy(issued, checkID string, id *legacy.Identity, err error) {
	g.mu.Lock()
	if issued != g.token {
		g.mu.Unlock()
		staleResponses.Inc()
		g.log.Debug().Str("check_id", checkID).Msg("stale legacy check result ignored")
		return
	}
	g.legacyRes = &legacyResult{identity: id, err: err}
	g.legacyPending = false
	g.finishLocked(checkID)
}

// finishLocked closes out the round when nothing is pending. Called with
// g.mu held; releases it.
func (g *Gate) finishLocked(checkID string) {
	if g.primaryPending || g.legacyPending {
		g.mu.Unlock()
		return
	}
	close(g.roundDone)
	state := g.stateLocked()
	hook := g.onFinished
	g.mu.Unlock()

	g.log.Debug().Str("check_id", checkID).Stringer("phase", state.Phase).Msg("verification round finished")
	if hook != nil {
		hook(state)
	}
}

// stateLocked computes the combined state from the latest results only.
func (g *Gate) stateLocked() State {
	if g.token == "" {
		return State{Phase: PhaseUnchecked, Finished: true}
	}

	if g.primaryPending || g.legacyPending {
		return State{Phase: PhaseChecking, Checking: true}
	}

	if g.primary == nil {
		// round never started for this token
		return State{Phase: PhaseChecking, Checking: true}
	}

	if g.primary.err != nil {
		return State{
			Phase:     PhaseUnauthorized,
			ErrorCode: ErrorCode(g.primary.err),
			Err:       g.primary.err,
			Finished:  true,
		}
	}

	var legacyIdentity *legacy.Identity
	if g.legacyApplicable {
		if g.legacyRes == nil || g.legacyRes.err != nil {
			var err error
			if g.legacyRes != nil {
				err = g.legacyRes.err
			}
			return State{
				Phase:     PhaseUnauthorized,
				ErrorCode: ErrorCode(err),
				Err:       err,
				Finished:  true,
			}
		}
		legacyIdentity = g.legacyRes.identity

		if !legacy.CrossCheck(g.primary.identity.LegacyID, legacyIdentity) {
			return State{
				Phase:    PhaseUnauthorized,
				Err:      NewAuthError(ErrInconsistentIdentity, 0),
				Finished: true,
			}
		}
	}

	return State{
		Phase:    PhaseAuthorized,
		Identity: g.primary.identity,
		Legacy:   legacyIdentity,
		Finished: true,
	}
}
