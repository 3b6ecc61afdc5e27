package credentials

import "context"

// Scope selects a persistence tier. The durable tier survives restarts;
// the session tier survives reloads only.
type Scope int

const (
	ScopeDurable Scope = iota
	ScopeSession
)

func (s Scope) String() string {
	switch s {
	case ScopeDurable:
		return "durable"
	case ScopeSession:
		return "session"
	}
	return "unknown"
}

// Storage persists a single opaque credential payload per tier. Get
// returns "" when nothing is stored. Implementations may fail at any
// time (storage disabled by policy, backend down); the Store treats every
// failure as fail-soft.
type Storage interface {
	Get(ctx context.Context, scope Scope) (string, error)
	Set(ctx context.Context, scope Scope, payload string) error
	Remove(ctx context.Context, scope Scope) error
}

// Broadcaster relays credential-change notifications between gate
// instances. Notifications carry no payload: consumers re-resolve from
// the Store and must tolerate at-least-once delivery.
type Broadcaster interface {
	Publish(ctx context.Context) error
	Listen(ctx context.Context, notify func())
}
