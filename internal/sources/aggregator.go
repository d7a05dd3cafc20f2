// Package sources discovers candidate wiki identifiers for one run. Three
// independent sources feed the working set: the persisted catalog, the
// ranked WAM index, and the operator-maintained submission queue. Each is
// reduced to a set on its own and the union is what the classifier sees.
package sources

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/rs/zerolog"

	"github.com/agentstation/wikisync/internal/fandom"
	"github.com/agentstation/wikisync/pkg/catalogs"
	"github.com/agentstation/wikisync/pkg/errors"
	"github.com/agentstation/wikisync/pkg/logging"
	"github.com/agentstation/wikisync/pkg/pages"
	"github.com/agentstation/wikisync/pkg/wikis"
)

// Aggregator gathers and deduplicates candidate identifiers.
type Aggregator struct {
	fandom   *fandom.Client
	store    pages.Store
	registry *wikis.Registry
	settings *catalogs.Settings
	logger   *zerolog.Logger
}

// New creates an Aggregator.
func New(client *fandom.Client, store pages.Store, registry *wikis.Registry, settings *catalogs.Settings) *Aggregator {
	return &Aggregator{
		fandom:   client,
		store:    store,
		registry: registry,
		settings: settings,
		logger:   logging.Default(),
	}
}

// Gather produces the run's deduplicated working set, in ascending order.
// Wikis already on the catalog are materialized in the registry, marked
// on-catalog and prefilled from their persisted documents. An empty union
// fails with ErrNoCandidates, the clean-stop signal.
func (a *Aggregator) Gather(ctx context.Context, catalog *catalogs.Catalog) ([]int, error) {
	seen := map[int]bool{}

	fromCatalog := a.gatherCatalog(catalog, seen)
	a.logger.Info().Int("count", fromCatalog).Msg("candidates from catalog")

	if !a.settings.Skip.WAM {
		fromWAM, err := a.gatherWAM(ctx, seen)
		if err != nil {
			return nil, err
		}
		a.logger.Info().Int("count", fromWAM).Msg("new candidates from WAM index")
	}

	if !a.settings.Skip.Queue {
		fromQueue, err := a.gatherQueue(ctx, seen)
		if err != nil {
			return nil, err
		}
		a.logger.Info().Int("count", fromQueue).Msg("new candidates from queue")
	}

	if len(seen) == 0 {
		return nil, errors.ErrNoCandidates
	}

	ids := make([]int, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids, nil
}

// gatherCatalog seeds the working set with every identifier already
// persisted.
func (a *Aggregator) gatherCatalog(catalog *catalogs.Catalog, seen map[int]bool) int {
	count := 0
	for _, id := range catalog.IDs() {
		if !seen[id] {
			seen[id] = true
			count++
		}
		w := a.registry.Wiki(id)
		w.OnCatalog = true
		if doc, ok := catalog.Document(id); ok {
			w.UpdateFromDump(doc)
		}
	}
	return count
}

// gatherWAM walks the ranked index, once per configured language or once
// unfiltered when the allow-list is disabled.
func (a *Aggregator) gatherWAM(ctx context.Context, seen map[int]bool) (int, error) {
	languages := a.settings.Languages
	if a.settings.AllLanguages() {
		languages = []string{""}
	}

	count := 0
	for _, lang := range languages {
		ids, err := a.fandom.WAMIndex(ctx, lang, a.settings.WAMLimit)
		if err != nil {
			return count, err
		}
		for _, id := range ids {
			if !seen[id] {
				seen[id] = true
				count++
			}
		}
	}
	return count, nil
}

// gatherQueue reads the submission queue document: a sequence of raw
// identifiers or unresolved domain names. Entries that fail to resolve are
// logged and skipped; the queue is best-effort and must never abort a run.
func (a *Aggregator) gatherQueue(ctx context.Context, seen map[int]bool) (int, error) {
	text, err := a.store.Get(ctx, a.settings.Documents.Queue)
	if errors.IsNotFound(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	entries, err := decodeQueue(text)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, entry := range entries {
		id, err := a.resolveQueueEntry(ctx, entry)
		if err != nil {
			a.logger.Warn().Err(&errors.QueueResolutionError{Entry: entry, Err: err}).Msg("skipping queue entry")
			continue
		}
		if !seen[id] {
			seen[id] = true
			count++
		}
	}
	return count, nil
}

// resolveQueueEntry turns one queue entry into an identifier: numeric
// entries parse directly, anything else is treated as a domain and resolved
// through its site variables.
func (a *Aggregator) resolveQueueEntry(ctx context.Context, entry string) (int, error) {
	if id, err := strconv.Atoi(entry); err == nil {
		if id <= 0 {
			return 0, fmt.Errorf("identifier must be positive: %w", errors.ErrInvalidInput)
		}
		return id, nil
	}
	return a.fandom.ResolveDomain(ctx, entry)
}

// decodeQueue parses the queue document into entry strings.
func decodeQueue(text string) ([]string, error) {
	var raw []any
	if err := yaml.Unmarshal([]byte(text), &raw); err != nil {
		return nil, errors.WrapParse("yaml", "queue", err)
	}

	entries := make([]string, 0, len(raw))
	for _, item := range raw {
		switch v := item.(type) {
		case string:
			if trimmed := strings.TrimSpace(v); trimmed != "" {
				entries = append(entries, trimmed)
			}
		case int:
			entries = append(entries, strconv.Itoa(v))
		case int64:
			entries = append(entries, strconv.FormatInt(v, 10))
		case uint64:
			entries = append(entries, strconv.FormatUint(v, 10))
		case float64:
			entries = append(entries, strconv.Itoa(int(v)))
		}
	}
	return entries, nil
}
