package sources

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/wikisync/internal/fandom"
	"github.com/agentstation/wikisync/internal/transport"
	"github.com/agentstation/wikisync/pkg/catalogs"
	"github.com/agentstation/wikisync/pkg/errors"
	"github.com/agentstation/wikisync/pkg/logging"
	"github.com/agentstation/wikisync/pkg/pages"
	"github.com/agentstation/wikisync/pkg/wikis"
)

// stubFarm answers WAMIndex and WikiVariables requests from fixed data.
type stubFarm struct {
	wamIDs  []int
	domains map[string]int
}

func (s *stubFarm) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "WAM/WAMIndex"):
			offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
			limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
			index := map[string]any{}
			for i := offset; i < offset+limit && i < len(s.wamIDs); i++ {
				index[strconv.Itoa(s.wamIDs[i])] = map[string]any{}
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"wam_index": index})
		case strings.HasSuffix(r.URL.Path, "Mercury/WikiVariables"):
			host := r.Host
			id, ok := s.domains[host]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"id": id}})
		default:
			t.Errorf("unexpected request: %s", r.URL.Path)
		}
	})
}

func newAggregator(t *testing.T, farm *stubFarm, settings *catalogs.Settings, queue string) (*Aggregator, *wikis.Registry) {
	t.Helper()
	server := httptest.NewServer(farm.handler(t))
	t.Cleanup(server.Close)

	host := strings.TrimPrefix(server.URL, "http://")
	if farm.domains == nil {
		farm.domains = map[string]int{}
	}
	farm.domains[host] = farm.domains["self"]

	client := fandom.New(
		fandom.WithServer(server.URL+"/api/v1/"),
		fandom.WithScheme("http"),
		fandom.WithLogger(&logging.Nop),
		fandom.WithTransport(transport.New(
			transport.WithTries(1),
			transport.WithDelay(time.Millisecond),
			transport.WithLogger(&logging.Nop),
		)),
	)

	store := pages.NewMemory()
	if queue != "" {
		store.Seed(settings.Documents.Queue, queue)
	}

	registry := wikis.NewRegistry()
	return New(client, store, registry, settings), registry
}

func TestGatherUnionAndDedup(t *testing.T) {
	settings := catalogs.DefaultSettings()
	settings.WAMLimit = 5

	catalog := catalogs.NewCatalog()
	catalog.Wikis["490"] = catalogs.Document{"id": 490, "name": "LoL", "domain": "lol.fandom.com"}
	catalog.Wikis["7"] = catalogs.Document{"id": 7}

	farm := &stubFarm{wamIDs: []int{490, 831, 12}}
	agg, registry := newAggregator(t, farm, settings, "- 12\n- 900\n")

	ids, err := agg.Gather(context.Background(), catalog)
	require.NoError(t, err)
	assert.Equal(t, []int{7, 12, 490, 831, 900}, ids, "union of all three sources, deduplicated and sorted")

	w, ok := registry.Get(490)
	require.True(t, ok)
	assert.True(t, w.OnCatalog)
	assert.Equal(t, "LoL", w.Name, "catalog entities prefilled from their documents")

	_, ok = registry.Get(831)
	assert.False(t, ok, "only catalog wikis are materialized during gathering")
}

func TestGatherQueueResolvesDomains(t *testing.T) {
	settings := catalogs.DefaultSettings()
	settings.Skip.WAM = true

	farm := &stubFarm{domains: map[string]int{"self": 4242}}
	agg, _ := newAggregator(t, farm, settings, "") // queue seeded below

	host := ""
	for domain := range farm.domains {
		if domain != "self" {
			host = domain
		}
	}
	require.NotEmpty(t, host)
	store := agg.store.(*pages.Memory)
	store.Seed(settings.Documents.Queue, "- "+host+"\n- gone.fandom.invalid\n")

	ids, err := agg.Gather(context.Background(), catalogs.NewCatalog())
	require.NoError(t, err, "an unresolvable queue entry must not abort the run")
	assert.Equal(t, []int{4242}, ids)
}

func TestGatherSkipFlags(t *testing.T) {
	settings := catalogs.DefaultSettings()
	settings.Skip.WAM = true
	settings.Skip.Queue = true

	catalog := catalogs.NewCatalog()
	catalog.Wikis["490"] = catalogs.Document{"id": 490}

	farm := &stubFarm{wamIDs: []int{831}}
	agg, _ := newAggregator(t, farm, settings, "- 900\n")

	ids, err := agg.Gather(context.Background(), catalog)
	require.NoError(t, err)
	assert.Equal(t, []int{490}, ids, "skipped sources contribute nothing")
}

func TestGatherNoCandidates(t *testing.T) {
	settings := catalogs.DefaultSettings()
	settings.Skip.WAM = true
	settings.Skip.Queue = true

	farm := &stubFarm{}
	agg, _ := newAggregator(t, farm, settings, "")

	_, err := agg.Gather(context.Background(), catalogs.NewCatalog())
	require.Error(t, err)
	assert.True(t, errors.IsNoCandidates(err))
}

func TestResolveQueueEntryRejectsNonPositiveIDs(t *testing.T) {
	settings := catalogs.DefaultSettings()
	agg, _ := newAggregator(t, &stubFarm{}, settings, "")

	for _, entry := range []string{"0", "-7"} {
		_, err := agg.resolveQueueEntry(context.Background(), entry)
		require.Error(t, err, entry)
		assert.True(t, errors.Is(err, errors.ErrInvalidInput), entry)
	}
}

func TestDecodeQueue(t *testing.T) {
	entries, err := decodeQueue("- 42\n- lol.fandom.com\n- \"\"\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"42", "lol.fandom.com"}, entries)

	_, err = decodeQueue("not: a: sequence:")
	assert.Error(t, err)
}
