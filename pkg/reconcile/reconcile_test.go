package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/wikisync/pkg/catalogs"
	"github.com/agentstation/wikisync/pkg/wikis"
)

func fixedClock(date string) func() time.Time {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return t }
}

func testEngine(keepDays int, date string, strip ...string) *Engine {
	settings := catalogs.DefaultSettings()
	settings.KeepDays = keepDays
	settings.StripFields = strip
	return New(settings, WithClock(fixedClock(date)))
}

func testWiki(id int, domain string, articles int) *wikis.Wiki {
	return &wikis.Wiki{
		ID:       id,
		Name:     "Wiki " + domain,
		Domain:   domain,
		Language: "en",
		Hub:      "Games",
		Stats:    map[string]int{"articles": articles},
	}
}

func TestReconcileAddRemove(t *testing.T) {
	prev := catalogs.NewCatalog()
	prev.Wikis["7"] = catalogs.Document{"id": 7, "name": "Doomed", "stats": map[string]any{}}

	engine := testEngine(14, "2026-08-29")
	next := engine.Reconcile(prev,
		[]*wikis.Wiki{testWiki(490, "lol.fandom.com", 100)},
		nil,
		[]*wikis.Wiki{{ID: 7}},
	)

	_, removed := next.Document(7)
	assert.False(t, removed)

	doc, ok := next.Document(490)
	require.True(t, ok)
	assert.Equal(t, "lol", doc["code"])
	stats := doc["stats"].(map[string]any)
	require.Contains(t, stats, "2026-08-29")

	// The previous catalog is untouched.
	_, stillThere := prev.Document(7)
	assert.True(t, stillThere)
}

func TestReconcileMergeSemantics(t *testing.T) {
	prev := catalogs.NewCatalog()
	prev.Wikis["490"] = catalogs.Document{
		"id":     490,
		"name":   "Old Name",
		"domain": "lol.fandom.com",
		"extra":  "kept",
		"stats": map[string]any{
			"2023-12-31": map[string]any{"articles": 4},
		},
		"theme": map[string]any{
			"color-body": "#111111",
			"headline":   "old headline",
		},
	}

	w := testWiki(490, "lol.fandom.com", 5)
	w.ApplyVariables(map[string]any{
		"theme": map[string]any{"color-body": "#222222"},
	})

	engine := testEngine(14, "2024-01-01")
	next := engine.Reconcile(prev, nil, []*wikis.Wiki{w}, nil)

	doc, ok := next.Document(490)
	require.True(t, ok)

	// Scalars overwrite outright.
	assert.Equal(t, "Wiki lol.fandom.com", doc["name"])
	// Fields absent from the fresh dump survive.
	assert.Equal(t, "kept", doc["extra"])

	// Mappings shallow-merge: both date keys present.
	stats := doc["stats"].(map[string]any)
	assert.Contains(t, stats, "2023-12-31")
	assert.Contains(t, stats, "2024-01-01")

	// New theme keys win, unrelated stored keys survive.
	theme := doc["theme"].(map[string]any)
	assert.Equal(t, "#222222", theme["color-body"])
	assert.Equal(t, "old headline", theme["headline"])
}

func TestReconcileStripFields(t *testing.T) {
	prev := catalogs.NewCatalog()
	prev.Wikis["490"] = catalogs.Document{"id": 490, "categories": []any{"stale"}, "stats": map[string]any{}}

	w := testWiki(490, "lol.fandom.com", 5)
	w.ApplyVariables(map[string]any{"wikiCategories": []any{"gaming"}})

	engine := testEngine(14, "2026-08-29", "categories")
	next := engine.Reconcile(prev, nil, []*wikis.Wiki{w}, nil)

	doc, _ := next.Document(490)
	_, hasCategories := doc["categories"]
	assert.False(t, hasCategories, "strip fields removed after merge")

	added := engine.Reconcile(catalogs.NewCatalog(), []*wikis.Wiki{w}, nil, nil)
	doc, _ = added.Document(490)
	_, hasCategories = doc["categories"]
	assert.False(t, hasCategories, "strip fields removed from inserts too")
}

func TestRetention(t *testing.T) {
	prev := catalogs.NewCatalog()

	days := []string{"2026-08-27", "2026-08-28", "2026-08-29"}
	catalog := prev
	for i, day := range days {
		engine := testEngine(2, day)
		w := testWiki(490, "lol.fandom.com", 100+i)
		var add, update []*wikis.Wiki
		if i == 0 {
			add = []*wikis.Wiki{w}
		} else {
			update = []*wikis.Wiki{w}
		}
		catalog = engine.Reconcile(catalog, add, update, nil)
	}

	doc, ok := catalog.Document(490)
	require.True(t, ok)
	stats := doc["stats"].(map[string]any)
	assert.Len(t, stats, 2)
	assert.Contains(t, stats, "2026-08-28")
	assert.Contains(t, stats, "2026-08-29")
	assert.NotContains(t, stats, "2026-08-27", "oldest snapshot truncated")
}

func TestSameDayRerunMergesIntoToday(t *testing.T) {
	engine := testEngine(2, "2026-08-29")

	first := engine.Reconcile(catalogs.NewCatalog(), []*wikis.Wiki{testWiki(490, "lol.fandom.com", 100)}, nil, nil)
	second := engine.Reconcile(first, nil, []*wikis.Wiki{testWiki(490, "lol.fandom.com", 105)}, nil)

	doc, _ := second.Document(490)
	stats := doc["stats"].(map[string]any)
	require.Len(t, stats, 1, "same-day re-run must not create a duplicate date key")
	snapshot, ok := stats["2026-08-29"].(map[string]int)
	require.True(t, ok)
	assert.Equal(t, 105, snapshot["articles"])
}

func TestReconcileIdempotence(t *testing.T) {
	prev := catalogs.NewCatalog()
	prev.Wikis["7"] = catalogs.Document{"id": 7, "stats": map[string]any{"2026-08-01": map[string]any{"articles": 1}}}
	prev.Wikis["490"] = catalogs.Document{
		"id": 490, "name": "Old", "domain": "lol.fandom.com",
		"stats": map[string]any{"2026-08-28": map[string]any{"articles": 99}},
	}

	engine := testEngine(2, "2026-08-29")
	add := []*wikis.Wiki{testWiki(831, "dresdenfiles.fandom.com", 42)}
	update := []*wikis.Wiki{testWiki(490, "lol.fandom.com", 100)}
	remove := []*wikis.Wiki{{ID: 7}}

	once := engine.Reconcile(prev, add, update, remove)
	twice := engine.Reconcile(once, add, update, remove)

	onceText, err := once.Encode()
	require.NoError(t, err)
	twiceText, err := twice.Encode()
	require.NoError(t, err)

	assert.Equal(t, string(catalogs.StripTimestamp(onceText)), string(catalogs.StripTimestamp(twiceText)))
	assert.False(t, catalogs.Changed(onceText, twiceText))
}

func TestAliases(t *testing.T) {
	catalog := catalogs.NewCatalog()
	catalog.Wikis["490"] = catalogs.Document{"id": 490, "code": "lol"}
	catalog.Wikis["831"] = catalogs.Document{"id": 831, "code": "dresdenfiles"}
	catalog.Wikis["9"] = catalogs.Document{"id": 9}

	assert.Equal(t, map[string]int{"lol": 490, "dresdenfiles": 831}, Aliases(catalog))
}
