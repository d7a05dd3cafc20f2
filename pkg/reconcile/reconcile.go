// Package reconcile folds one run's classified wiki entities into the
// previously persisted catalog. The algorithm is idempotent: re-running the
// same changes against its own output is a byte-level no-op, so the bot can
// be re-run indefinitely without churning the stored document.
package reconcile

import (
	"sort"
	"time"

	"github.com/agentstation/utc"

	"github.com/agentstation/wikisync/pkg/catalogs"
	"github.com/agentstation/wikisync/pkg/wikis"
)

// Engine applies the merge and retention policy from the run settings.
type Engine struct {
	keepDays int
	strip    []string
	now      func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the time source. Tests use this to pin today's date.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New creates an Engine from the run settings.
func New(settings *catalogs.Settings, opts ...Option) *Engine {
	e := &Engine{
		keepDays: settings.KeepDays,
		strip:    settings.StripFields,
		now:      func() time.Time { return utc.Now().Time },
	}
	if e.keepDays < 1 {
		e.keepDays = 1
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Today returns the current UTC date key.
func (e *Engine) Today() string {
	return e.now().UTC().Format("2006-01-02")
}

// Reconcile computes the next catalog from the previous one and the
// partitioned entity groups. The previous catalog is not modified.
//
// Order matters: removals first, then inserts, then merges. Add and Update
// never target identifiers that are also in Remove, so a later group can
// never resurrect a removed entry.
func (e *Engine) Reconcile(prev *catalogs.Catalog, add, update, remove []*wikis.Wiki) *catalogs.Catalog {
	today := e.Today()

	next := catalogs.NewCatalog()
	for key, doc := range prev.Wikis {
		next.Wikis[key] = doc
	}

	for _, w := range remove {
		delete(next.Wikis, catalogs.Key(w.ID))
	}

	for _, w := range add {
		next.Wikis[catalogs.Key(w.ID)] = e.finish(w.Dump(today))
	}

	for _, w := range update {
		key := catalogs.Key(w.ID)
		existing, ok := next.Wikis[key]
		if !ok {
			next.Wikis[key] = e.finish(w.Dump(today))
			continue
		}
		next.Wikis[key] = e.finish(mergeDocument(existing, w.Dump(today)))
	}

	return next
}

// finish applies the policy steps shared by inserts and merges: configured
// field suppression, then stats retention. Retention runs after the merge,
// never before, so a same-day re-run still merges into today's entry.
func (e *Engine) finish(doc catalogs.Document) catalogs.Document {
	for _, field := range e.strip {
		delete(doc, field)
	}

	stats, ok := asMapping(doc["stats"])
	if !ok {
		return doc
	}

	dates := make([]string, 0, len(stats))
	for date := range stats {
		dates = append(dates, date)
	}
	if len(dates) <= e.keepDays {
		doc["stats"] = stats
		return doc
	}

	// Lexicographic order is chronological order for ISO dates.
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	kept := make(map[string]any, e.keepDays)
	for _, date := range dates[:e.keepDays] {
		kept[date] = stats[date]
	}
	doc["stats"] = kept
	return doc
}

// mergeDocument folds a freshly built document into the stored one,
// field by field: mapping-valued fields shallow-merge with new keys winning
// and unrelated stored keys surviving, scalar fields overwrite outright.
func mergeDocument(existing, fresh catalogs.Document) catalogs.Document {
	out := make(catalogs.Document, len(existing)+len(fresh))
	for field, value := range existing {
		out[field] = value
	}

	for field, value := range fresh {
		freshMap, freshIsMap := asMapping(value)
		storedMap, storedIsMap := asMapping(out[field])
		if freshIsMap && storedIsMap {
			merged := make(map[string]any, len(storedMap)+len(freshMap))
			for key, item := range storedMap {
				merged[key] = item
			}
			for key, item := range freshMap {
				merged[key] = item
			}
			out[field] = merged
			continue
		}
		out[field] = value
	}
	return out
}

// asMapping views a document value as a string-keyed mapping. Stored
// documents decode to map[string]any while fresh dumps carry map[string]int
// snapshots; both shapes merge the same way.
func asMapping(value any) (map[string]any, bool) {
	switch v := value.(type) {
	case map[string]any:
		return v, true
	case map[string]int:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = item
		}
		return out, true
	default:
		return nil, false
	}
}

// Aliases derives the code-to-identifier cross-reference from a catalog.
func Aliases(catalog *catalogs.Catalog) map[string]int {
	aliases := make(map[string]int, len(catalog.Wikis))
	for _, id := range catalog.IDs() {
		doc, _ := catalog.Document(id)
		if code, ok := doc["code"].(string); ok && code != "" {
			aliases[code] = id
		}
	}
	return aliases
}
