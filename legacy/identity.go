// Package legacy verifies the session against the legacy directory
// service and reconciles it with the primary identity. The two providers
// are independent sources of truth that can disagree; the reconciler's
// job is to notice when they do.
package legacy

// Identity is the directory's view of the caller. A nil *Identity means
// "check not applicable", which is NOT the same as an Identity with an
// empty RouteAllowList: an empty allow-list grants nothing beyond home.
type Identity struct {
	// ExternalID is the directory's own identifier for the person,
	// string-compared against the primary profile's legacy foreign key.
	ExternalID string

	// RouteAllowList is the set of registry entry ids a non-admin caller
	// may see. Advisory: emptiness never means "allow everything".
	RouteAllowList []string

	GroupIDs []int
	IsAdmin  bool
}

// InGroup reports membership of a directory group.
func (id *Identity) InGroup(group int) bool {
	for _, g := range id.GroupIDs {
		if g == group {
			return true
		}
	}
	return false
}
