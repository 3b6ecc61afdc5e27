package overlay

import "strings"

// Fixed identifier sets carried over from the portal's routing
// conventions.
var homeIDs = map[string]struct{}{
	"home":        {},
	"main":        {},
	"root":        {},
	"index":       {},
	"portal-home": {},
	"portal_home": {},
}

var adminRootIDs = map[string]struct{}{
	"admin": {},
	"tools": {},
}

// isHome matches the designated landing entry: a well-known id, the root
// url, or an explicit marker on the entry. An entry that declares no url
// at all is not home; admin areas and allow-list checks must still apply
// to it.
func isHome(id, url string, marker bool) bool {
	if marker {
		return true
	}
	if _, ok := homeIDs[strings.TrimSpace(id)]; ok {
		return true
	}
	return strings.TrimSpace(url) == "/"
}

// isAdminArea matches entries reserved for administrators. Admin areas
// are never grantable through the allow-list.
func isAdminArea(id, url, parent string) bool {
	id = strings.TrimSpace(id)
	if _, ok := adminRootIDs[id]; ok {
		return true
	}
	if strings.HasPrefix(id, "admin") {
		return true
	}

	u := strings.TrimSpace(url)
	if strings.HasPrefix(u, "/admin") || strings.HasPrefix(u, "/tools") {
		return true
	}

	_, ok := adminRootIDs[strings.TrimSpace(parent)]
	return ok
}
