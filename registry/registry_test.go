package registry_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/krystark/portal-gate/registry"
	"github.com/stretchr/testify/require"
)

func testNav() *registry.Nav {
	return registry.NewNav(
		&registry.NavEntry{ID: "reports", Order: 2},
		&registry.NavEntry{ID: "home", URL: "/", Order: 1},
		&registry.NavEntry{ID: "billing", Order: 2, Tabs: []registry.NavTabEntry{{ID: "billing-history"}}},
	)
}

func TestNavFindOne(t *testing.T) {
	nav := testNav()

	entry := nav.FindOne(registry.ByNavID("reports"))
	require.NotNil(t, entry)
	require.Equal(t, "reports", entry.ID)

	require.Nil(t, nav.FindOne(registry.ByNavID("missing")))
}

func TestNavFindSortsByOrderStable(t *testing.T) {
	nav := testNav()

	all := nav.Find(nil)
	require.Len(t, all, 3)
	require.Equal(t, "home", all[0].ID)
	// equal orders keep insertion order
	require.Equal(t, "reports", all[1].ID)
	require.Equal(t, "billing", all[2].ID)
}

func TestNavUpdate(t *testing.T) {
	nav := testNav()

	require.True(t, nav.Update("reports", func(e *registry.NavEntry) {
		e.Hidden = true
	}))
	require.True(t, nav.FindOne(registry.ByNavID("reports")).Hidden)

	require.False(t, nav.Update("missing", func(e *registry.NavEntry) {
		t.Fatal("must not be called for an unknown id")
	}))
}

func TestNavSnapshotIsDetached(t *testing.T) {
	nav := testNav()

	snap := nav.Snapshot()
	require.Len(t, snap, 3)

	nav.Update("billing", func(e *registry.NavEntry) {
		e.Hidden = true
		e.Tabs[0].Hidden = true
	})

	for _, e := range snap {
		require.False(t, e.Hidden)
		for _, tab := range e.Tabs {
			require.False(t, tab.Hidden)
		}
	}
}

func TestRoutesUpsertReplacesByID(t *testing.T) {
	routes := registry.NewRoutes(&registry.RouteEntry{ID: "reports", Path: "/reports"})

	routes.Upsert(&registry.RouteEntry{ID: "reports", Path: "/reports/v2"})
	routes.Upsert(&registry.RouteEntry{ID: "billing", Path: "/billing"})

	require.Len(t, routes.Find(nil), 2)
	require.Equal(t, "/reports/v2", routes.FindOne(registry.ByRouteID("reports")).Path)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
nav:
  - id: home
    url: /
    order: 1
  - id: billing
    order: 3
    tabs:
      - id: billing-history
        order: 2
routes:
  - id: reports
    path: /reports
    permissions_legacy: [bitrix_reports]
`), 0o600))

	nav, routes, err := registry.LoadFile(path)
	require.NoError(t, err)

	require.Len(t, nav.Find(nil), 2)
	require.Equal(t, "billing-history", nav.FindOne(registry.ByNavID("billing")).Tabs[0].ID)

	reports := routes.FindOne(registry.ByRouteID("reports"))
	require.NotNil(t, reports)
	require.Equal(t, []string{"bitrix_reports"}, reports.LegacyPermissions)
}

func TestLoadFileRejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
nav:
  - id: home
    colour: red
`), 0o600))

	_, _, err := registry.LoadFile(path)
	require.Error(t, err)
}
