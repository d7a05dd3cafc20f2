package wikisync

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/wikisync/pkg/catalogs"
	"github.com/agentstation/wikisync/pkg/logging"
	"github.com/agentstation/wikisync/pkg/pages"
)

func testFarm(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/Wikis/Details", func(w http.ResponseWriter, r *http.Request) {
		items := map[string]any{}
		for _, id := range strings.Split(r.URL.Query().Get("ids"), ",") {
			if id != "11" {
				continue
			}
			items[id] = map[string]any{
				"id":       11,
				"name":     "Eleven",
				"domain":   "eleven.fandom.com",
				"url":      "http://eleven.fandom.com/",
				"lang":     "en",
				"hub":      "Games",
				"stats":    map[string]any{"articles": 42},
				"wordmark": "",
				"image":    "",
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"items": items})
	})
	mux.HandleFunc("/api/v1/WAM/WAMIndex", func(w http.ResponseWriter, r *http.Request) {
		index := map[string]any{}
		if r.URL.Query().Get("offset") == "0" {
			index["11"] = map[string]any{"wam": 97.5}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"wam_index": index})
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestSyncThroughFacade(t *testing.T) {
	server := testFarm(t)
	store := pages.NewMemory()

	settings := catalogs.DefaultSettings()
	settings.Languages = []string{"en"}
	settings.WAMLimit = 1
	settings.Skip.Queue = true
	settings.Skip.Details = true
	settings.Skip.Admins = true

	ws, err := New(
		WithSettings(settings),
		WithStore(store),
		WithServer(server.URL+"/api/v1/"),
		WithScheme("http"),
		WithLogger(&logging.Nop),
	)
	require.NoError(t, err)

	result, err := ws.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Added)
	assert.True(t, result.Written)

	catalog, err := ws.Catalog(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{11}, catalog.IDs())

	aliases, err := ws.Aliases(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"eleven": 11}, aliases)
}

func TestNewRejectsInvalidSettings(t *testing.T) {
	settings := catalogs.DefaultSettings()
	settings.KeepDays = 0

	_, err := New(WithSettings(settings), WithStore(pages.NewMemory()))
	assert.Error(t, err)
}

func TestCatalogMissingIsEmpty(t *testing.T) {
	ws, err := New(WithStore(pages.NewMemory()), WithLogger(&logging.Nop))
	require.NoError(t, err)

	catalog, err := ws.Catalog(context.Background())
	require.NoError(t, err)
	assert.Empty(t, catalog.IDs())
}
