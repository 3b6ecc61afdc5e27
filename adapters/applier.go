package adapters

import (
	"sort"

	"github.com/krystark/portal-gate/registry"
	"github.com/rs/zerolog"
)

// NavRegistry is the slice of the nav registry the applier needs.
type NavRegistry interface {
	Update(id string, fn func(*registry.NavEntry)) bool
}

// RouteRegistry is the slice of the route registry the applier needs.
type RouteRegistry interface {
	Update(id string, fn func(*registry.RouteEntry)) bool
}

// Applier merges patches into the registries. A patch whose target id is
// unknown is skipped with a warning; applying the same patch set twice
// leaves the registries in the same state as applying it once.
type Applier struct {
	nav    NavRegistry
	routes RouteRegistry
	log    zerolog.Logger
}

func NewApplier(nav NavRegistry, routes RouteRegistry, log zerolog.Logger) *Applier {
	return &Applier{
		nav:    nav,
		routes: routes,
		log:    log.With().Str("component", "adapters.Applier").Logger(),
	}
}

// Apply runs every nav patch, then every route patch, in document order.
func (a *Applier) Apply(cfg *Config) {
	if cfg == nil {
		return
	}
	for i := range cfg.Nav {
		a.applyNavPatch(&cfg.Nav[i])
	}
	for i := range cfg.Routes {
		a.applyRoutePatch(&cfg.Routes[i])
	}
}

func (a *Applier) applyNavPatch(p *NavPatch) {
	found := a.nav.Update(p.ID, func(item *registry.NavEntry) {
		if p.Title != nil {
			item.Title = *p.Title
		}
		if p.URL != nil {
			item.URL = *p.URL
		}
		if p.Parent != nil {
			item.Parent = *p.Parent
		}
		if p.Order != nil {
			item.Order = *p.Order
		}
		if p.DevOnly != nil {
			item.DevOnly = *p.DevOnly
		}
		if p.Hidden != nil {
			item.Hidden = *p.Hidden
		}
		if p.Permissions != nil {
			item.Permissions = *p.Permissions
		}
		if legacy := legacyPermissions(p.PermissionsLegacy, p.PermissionLegacy); legacy != nil {
			item.LegacyPermissions = *legacy
		}
		// remove is sugar for hidden, and it wins over an explicit
		// hidden: false in the same patch
		if p.Remove {
			item.Hidden = true
		}

		if len(p.Tabs) > 0 {
			a.applyTabPatches(item, p.Tabs)
		}
	})
	if !found {
		patchMisses.WithLabelValues("nav").Inc()
		a.log.Warn().Str("id", p.ID).Msg("nav patch skipped, id not found")
	}
}

func (a *Applier) applyTabPatches(item *registry.NavEntry, patches []NavTabPatch) {
	for i := range patches {
		t := &patches[i]
		idx := -1
		for j := range item.Tabs {
			if item.Tabs[j].ID == t.ID {
				idx = j
				break
			}
		}
		if idx < 0 {
			patchMisses.WithLabelValues("nav_tab").Inc()
			a.log.Warn().Str("id", item.ID).Str("tab_id", t.ID).Msg("nav tab patch skipped, tab id not found")
			continue
		}

		tab := &item.Tabs[idx]
		if t.Title != nil {
			tab.Title = *t.Title
		}
		if t.URL != nil {
			tab.URL = *t.URL
		}
		if t.Order != nil {
			tab.Order = *t.Order
		}
		if t.DevOnly != nil {
			tab.DevOnly = *t.DevOnly
		}
		if t.Hidden != nil {
			tab.Hidden = *t.Hidden
		}
		if t.Permissions != nil {
			tab.Permissions = *t.Permissions
		}
		if legacy := legacyPermissions(t.PermissionsLegacy, t.PermissionLegacy); legacy != nil {
			tab.LegacyPermissions = *legacy
		}
		if t.Remove {
			tab.Hidden = true
		}
	}

	sort.SliceStable(item.Tabs, func(i, j int) bool {
		return item.Tabs[i].Order < item.Tabs[j].Order
	})
}

func (a *Applier) applyRoutePatch(p *RoutePatch) {
	found := a.routes.Update(p.ID, func(r *registry.RouteEntry) {
		if p.Path != nil {
			r.Path = *p.Path
		}
		if p.Order != nil {
			r.Order = *p.Order
		}
		if p.DevOnly != nil {
			r.DevOnly = *p.DevOnly
		}
		if p.Hidden != nil {
			r.Hidden = *p.Hidden
		}
		if p.Permissions != nil {
			r.Permissions = *p.Permissions
		}
		if legacy := legacyPermissions(p.PermissionsLegacy, p.PermissionLegacy); legacy != nil {
			r.LegacyPermissions = *legacy
		}
		if p.Remove {
			r.Hidden = true
		}
	})
	if !found {
		patchMisses.WithLabelValues("route").Inc()
		a.log.Warn().Str("id", p.ID).Msg("route patch skipped, id not found")
	}
}
