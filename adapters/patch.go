// Package adapters merges author-supplied override records (patches)
// into the nav and route registries. Patches are sparse: only fields
// present in the record are written, so every field is a pointer.
package adapters

// NavTabPatch overrides a single tab of a nav entry, matched by id.
type NavTabPatch struct {
	ID      string  `yaml:"id"`
	Title   *string `yaml:"title"`
	URL     *string `yaml:"url"`
	Order   *int    `yaml:"order"`
	DevOnly *bool   `yaml:"devOnly"`
	Hidden  *bool   `yaml:"hidden"`
	Remove  bool    `yaml:"remove"`

	Permissions *[]string `yaml:"permissions"`
	// Two historical spellings of the deprecated model; the plural one
	// wins when both are present.
	PermissionsLegacy *[]string `yaml:"permissions_legacy"`
	PermissionLegacy  *[]string `yaml:"permission_legacy"`
}

// NavPatch overrides a nav entry, matched by id.
type NavPatch struct {
	ID      string        `yaml:"id"`
	Title   *string       `yaml:"title"`
	URL     *string       `yaml:"url"`
	Parent  *string       `yaml:"parent"`
	Order   *int          `yaml:"order"`
	DevOnly *bool         `yaml:"devOnly"`
	Hidden  *bool         `yaml:"hidden"`
	Remove  bool          `yaml:"remove"`
	Tabs    []NavTabPatch `yaml:"tabs"`

	Permissions       *[]string `yaml:"permissions"`
	PermissionsLegacy *[]string `yaml:"permissions_legacy"`
	PermissionLegacy  *[]string `yaml:"permission_legacy"`
}

// RoutePatch overrides a route entry, matched by id.
type RoutePatch struct {
	ID      string  `yaml:"id"`
	Path    *string `yaml:"path"`
	Order   *int    `yaml:"order"`
	DevOnly *bool   `yaml:"devOnly"`
	Hidden  *bool   `yaml:"hidden"`
	Remove  bool    `yaml:"remove"`

	Permissions       *[]string `yaml:"permissions"`
	PermissionsLegacy *[]string `yaml:"permissions_legacy"`
	PermissionLegacy  *[]string `yaml:"permission_legacy"`
}

// Config is the full patch document: ordered nav and route patch lists.
type Config struct {
	Nav    []NavPatch   `yaml:"nav"`
	Routes []RoutePatch `yaml:"routes"`
}

// legacyPermissions resolves the two historical field spellings,
// preferring permissions_legacy.
func legacyPermissions(plural, singular *[]string) *[]string {
	if plural != nil {
		return plural
	}
	return singular
}
