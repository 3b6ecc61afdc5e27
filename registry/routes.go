package registry

import (
	"sort"
	"sync"
)

type RoutePredicate func(*RouteEntry) bool

func ByRouteID(id string) RoutePredicate {
	return func(e *RouteEntry) bool { return e.ID == id }
}

// Routes is the in-memory route registry. Same locking discipline as Nav.
type Routes struct {
	mu      sync.RWMutex
	entries []*RouteEntry
}

func NewRoutes(entries ...*RouteEntry) *Routes {
	return &Routes{entries: entries}
}

func (r *Routes) FindOne(pred RoutePredicate) *RouteEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.entries {
		if pred == nil || pred(e) {
			return e
		}
	}
	return nil
}

func (r *Routes) Find(pred RoutePredicate) []*RouteEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*RouteEntry
	for _, e := range r.entries {
		if pred == nil || pred(e) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

func (r *Routes) Each(fn func(*RouteEntry)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		fn(e)
	}
}

func (r *Routes) Update(id string, fn func(*RouteEntry)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.ID == id {
			fn(e)
			return true
		}
	}
	return false
}

func (r *Routes) Upsert(entry *RouteEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.entries {
		if e.ID == entry.ID {
			r.entries[i] = entry
			return
		}
	}
	r.entries = append(r.entries, entry)
}

func (r *Routes) Snapshot() []RouteEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]RouteEntry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.clone())
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}
