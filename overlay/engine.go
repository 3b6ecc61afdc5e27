// Package overlay rewrites visibility on the nav and route registries
// from a verified caller's entitlements. Every pass fully recomputes
// hidden from the authoring-time baseline, so a shrink-then-grow of the
// allow-list un-hides entries again.
package overlay

import (
	"sync"

	"github.com/krystark/portal-gate/internal/config"
	"github.com/krystark/portal-gate/internal/utils"
	"github.com/krystark/portal-gate/registry"
	"github.com/rs/zerolog"
)

// Engine applies the access overlay. It owns the baseHidden side-tables:
// the first sight of an entry captures its authoring-time hidden flag,
// keyed by id (tabs by parent/tab), never stored on the entry itself.
// Without that baseline a second pass would treat its own output as
// authored state and hiding would become monotonic.
type Engine struct {
	nav    *registry.Nav
	routes *registry.Routes
	cfg    config.Config
	log    zerolog.Logger

	mu        sync.Mutex
	navBase   map[string]bool
	tabBase   map[string]bool
	routeBase map[string]bool
}

func NewEngine(nav *registry.Nav, routes *registry.Routes, cfg config.Config, log zerolog.Logger) *Engine {
	return &Engine{
		nav:       nav,
		routes:    routes,
		cfg:       cfg,
		log:       log.With().Str("component", "overlay.Engine").Logger(),
		navBase:   make(map[string]bool),
		tabBase:   make(map[string]bool),
		routeBase: make(map[string]bool),
	}
}

// Apply overlays the registries for one caller. Outside production it is
// a no-op: local development never filters navigation. The caller is
// responsible for only invoking it on an authorized session with an
// applicable legacy check.
//
// Per top-level entry, most specific wins: home is always visible, admin
// areas need the admin flag regardless of the allow-list, everything
// else needs the admin flag or an allow-list hit on the entry or one of
// its tabs. hidden is recomputed as baseHidden OR devOnly OR not
// allowed.
func (e *Engine) Apply(allowList []string, isAdmin bool) {
	if !e.cfg.IsProduction() {
		e.log.Debug().Msg("overlay skipped outside production")
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	allowSet := make(map[string]struct{})
	for _, id := range utils.NormIDs(allowList) {
		allowSet[id] = struct{}{}
	}

	// an allowed tab grants its parent, except inside admin areas
	parentAllowedByTabs := make(map[string]struct{})
	e.nav.Each(func(item *registry.NavEntry) {
		parentID := utils.NormID(item.ID)
		if parentID == "" {
			return
		}
		if !isAdmin && isAdminArea(parentID, item.URL, item.Parent) {
			return
		}
		for _, tab := range item.Tabs {
			tabID := utils.NormID(tab.ID)
			if _, ok := allowSet[tabID]; ok && tabID != "" {
				parentAllowedByTabs[parentID] = struct{}{}
				break
			}
		}
	})

	routeAllowSet := make(map[string]struct{}, len(allowSet)+len(parentAllowedByTabs))
	for id := range allowSet {
		routeAllowSet[id] = struct{}{}
	}
	for id := range parentAllowedByTabs {
		routeAllowSet[id] = struct{}{}
	}

	e.nav.Each(func(item *registry.NavEntry) {
		id := utils.NormID(item.ID)
		if id == "" {
			return
		}

		baseHidden := e.baseline(e.navBase, id, item.Hidden)
		home := isHome(id, item.URL, item.Home)
		adminArea := isAdminArea(id, item.URL, item.Parent)

		var allowed bool
		switch {
		case home:
			allowed = true
		case adminArea:
			allowed = isAdmin
		default:
			_, direct := allowSet[id]
			_, viaTab := parentAllowedByTabs[id]
			allowed = isAdmin || direct || viaTab
		}

		item.Hidden = baseHidden || item.DevOnly || !allowed

		if len(item.Tabs) == 0 {
			return
		}
		_, parentDirect := allowSet[id]
		parentAllowsAllTabs := isAdmin || parentDirect

		for i := range item.Tabs {
			tab := &item.Tabs[i]
			tabID := utils.NormID(tab.ID)
			tabBaseHidden := e.baseline(e.tabBase, id+"/"+tabID, tab.Hidden)
			tabAdminArea := adminArea || isAdminArea(tabID, tab.URL, "")

			var tabAllowed bool
			switch {
			case home:
				tabAllowed = true
			case tabAdminArea:
				tabAllowed = isAdmin
			default:
				_, direct := allowSet[tabID]
				tabAllowed = parentAllowsAllTabs || direct
			}

			tab.Hidden = tabBaseHidden || tab.DevOnly || !tabAllowed
		}
	})

	e.routes.Each(func(r *registry.RouteEntry) {
		id := utils.NormID(r.ID)
		if id == "" {
			return
		}

		baseHidden := e.baseline(e.routeBase, id, r.Hidden)
		home := isHome(id, r.Path, r.Home)
		adminArea := isAdminArea(id, r.Path, r.Parent)

		var allowed bool
		switch {
		case home:
			allowed = true
		case adminArea:
			allowed = isAdmin
		default:
			_, ok := routeAllowSet[id]
			allowed = isAdmin || ok
		}

		r.Hidden = baseHidden || r.DevOnly || !allowed
	})

	overlayPasses.Inc()
	e.log.Debug().Int("allowed", len(allowSet)).Bool("is_admin", isAdmin).Msg("access overlay applied")
}

// baseline returns the memoized authoring-time hidden flag, capturing it
// on first sight.
func (e *Engine) baseline(table map[string]bool, key string, hidden bool) bool {
	if v, ok := table[key]; ok {
		return v
	}
	table[key] = hidden
	return hidden
}
