// Package registry holds the navigation and route catalogues the access
// overlay and the patch applier operate on. Entries are mutated in place
// by id; the registry owns the locking, callers own the semantics.
package registry

// NavEntry is a top-level navigation item. Permissions and
// LegacyPermissions are independent models carried side by side, never
// translated into each other.
type NavEntry struct {
	ID                string        `yaml:"id" json:"id"`
	Title             string        `yaml:"title" json:"title,omitempty"`
	URL               string        `yaml:"url" json:"url,omitempty"`
	Parent            string        `yaml:"parent" json:"parent,omitempty"`
	Order             int           `yaml:"order" json:"order"`
	Hidden            bool          `yaml:"hidden" json:"hidden"`
	DevOnly           bool          `yaml:"devOnly" json:"devOnly,omitempty"`
	Home              bool          `yaml:"home" json:"home,omitempty"`
	Tabs              []NavTabEntry `yaml:"tabs" json:"tabs,omitempty"`
	Permissions       []string      `yaml:"permissions" json:"permissions,omitempty"`
	LegacyPermissions []string      `yaml:"permissions_legacy" json:"permissions_legacy,omitempty"`
}

// NavTabEntry is a tab scoped to a parent NavEntry.
type NavTabEntry struct {
	ID                string   `yaml:"id" json:"id"`
	Title             string   `yaml:"title" json:"title,omitempty"`
	URL               string   `yaml:"url" json:"url,omitempty"`
	Order             int      `yaml:"order" json:"order"`
	Hidden            bool     `yaml:"hidden" json:"hidden"`
	DevOnly           bool     `yaml:"devOnly" json:"devOnly,omitempty"`
	Permissions       []string `yaml:"permissions" json:"permissions,omitempty"`
	LegacyPermissions []string `yaml:"permissions_legacy" json:"permissions_legacy,omitempty"`
}

// RouteEntry is a routing item. Same access semantics as NavEntry,
// without tabs.
type RouteEntry struct {
	ID                string   `yaml:"id" json:"id"`
	Path              string   `yaml:"path" json:"path,omitempty"`
	Parent            string   `yaml:"parent" json:"parent,omitempty"`
	Order             int      `yaml:"order" json:"order"`
	Hidden            bool     `yaml:"hidden" json:"hidden"`
	DevOnly           bool     `yaml:"devOnly" json:"devOnly,omitempty"`
	Home              bool     `yaml:"home" json:"home,omitempty"`
	Permissions       []string `yaml:"permissions" json:"permissions,omitempty"`
	LegacyPermissions []string `yaml:"permissions_legacy" json:"permissions_legacy,omitempty"`
}

func (e NavEntry) clone() NavEntry {
	c := e
	if e.Tabs != nil {
		c.Tabs = append([]NavTabEntry(nil), e.Tabs...)
		for i := range c.Tabs {
			c.Tabs[i].Permissions = append([]string(nil), e.Tabs[i].Permissions...)
			c.Tabs[i].LegacyPermissions = append([]string(nil), e.Tabs[i].LegacyPermissions...)
		}
	}
	c.Permissions = append([]string(nil), e.Permissions...)
	c.LegacyPermissions = append([]string(nil), e.LegacyPermissions...)
	return c
}

func (e RouteEntry) clone() RouteEntry {
	c := e
	c.Permissions = append([]string(nil), e.Permissions...)
	c.LegacyPermissions = append([]string(nil), e.LegacyPermissions...)
	return c
}
