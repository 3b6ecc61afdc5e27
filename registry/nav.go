package registry

import (
	"sort"
	"sync"
)

// NavPredicate selects entries; a nil predicate matches everything.
type NavPredicate func(*NavEntry) bool

// ByNavID matches a single entry by id.
func ByNavID(id string) NavPredicate {
	return func(e *NavEntry) bool { return e.ID == id }
}

// Nav is the in-memory navigation registry. Reads hand out pointers for
// predicate evaluation only; all mutation goes through Each/Update so
// the registry's lock covers it.
type Nav struct {
	mu      sync.RWMutex
	entries []*NavEntry
}

func NewNav(entries ...*NavEntry) *Nav {
	return &Nav{entries: entries}
}

// FindOne returns the first matching entry, or nil.
func (r *Nav) FindOne(pred NavPredicate) *NavEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.entries {
		if pred == nil || pred(e) {
			return e
		}
	}
	return nil
}

// Find returns matching entries sorted by Order ascending, stable.
func (r *Nav) Find(pred NavPredicate) []*NavEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*NavEntry
	for _, e := range r.entries {
		if pred == nil || pred(e) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// Each runs fn over every entry under the write lock.
func (r *Nav) Each(fn func(*NavEntry)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		fn(e)
	}
}

// Update mutates the entry with the given id under the write lock,
// reporting whether it was found.
func (r *Nav) Update(id string, fn func(*NavEntry)) bool {
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

// Upsert replaces the entry with a matching id or appends a new one.
func (r *Nav) Upsert(entry *NavEntry) {
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

// Snapshot deep-copies the registry sorted by Order, safe to serve while
// an overlay pass runs.
func (r *Nav) Snapshot() []NavEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]NavEntry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.clone())
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}
