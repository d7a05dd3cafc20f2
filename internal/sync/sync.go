// Package sync drives one reconciliation run end to end: discovery, bulk
// hydration, classification, per-domain enrichment, reconciliation, and the
// confirmation-gated writes of the catalog and its sibling documents.
package sync

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/agentstation/utc"
	"github.com/goccy/go-yaml"
	"github.com/rs/zerolog"

	"github.com/agentstation/wikisync/internal/cmd/output"
	"github.com/agentstation/wikisync/internal/fandom"
	"github.com/agentstation/wikisync/internal/sources"
	"github.com/agentstation/wikisync/pkg/catalogs"
	"github.com/agentstation/wikisync/pkg/errors"
	"github.com/agentstation/wikisync/pkg/logging"
	"github.com/agentstation/wikisync/pkg/pages"
	"github.com/agentstation/wikisync/pkg/reconcile"
	"github.com/agentstation/wikisync/pkg/wikis"
)

// Syncer runs the reconciliation pipeline.
type Syncer struct {
	registry  *wikis.Registry
	fandom    *fandom.Client
	store     pages.Store
	settings  *catalogs.Settings
	engine    *reconcile.Engine
	sources   *sources.Aggregator
	decider   Decider
	interrupt *Interrupter
	logger    *zerolog.Logger
	out       io.Writer

	force     bool
	limit     int
	acceptAll bool
}

// Option configures a Syncer.
type Option func(*Syncer)

// WithDecider replaces the confirmation gate. The default accepts
// everything.
func WithDecider(d Decider) Option {
	return func(s *Syncer) { s.decider = d }
}

// WithInterrupter attaches an interrupt source.
func WithInterrupter(i *Interrupter) Option {
	return func(s *Syncer) { s.interrupt = i }
}

// WithLogger replaces the logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(s *Syncer) { s.logger = logger }
}

// WithOutput redirects report and progress rendering.
func WithOutput(w io.Writer) Option {
	return func(s *Syncer) { s.out = w }
}

// WithForce writes the catalog even when change detection sees no content
// difference.
func WithForce(force bool) Option {
	return func(s *Syncer) { s.force = force }
}

// WithLimit caps how many new wikis one run may add to the catalog.
func WithLimit(limit int) Option {
	return func(s *Syncer) { s.limit = limit }
}

// WithEngine replaces the reconciliation engine. Tests use this to pin the
// clock.
func WithEngine(engine *reconcile.Engine) Option {
	return func(s *Syncer) { s.engine = engine }
}

// New assembles a Syncer around a farm client, a document store, and run
// settings.
func New(client *fandom.Client, store pages.Store, settings *catalogs.Settings, opts ...Option) *Syncer {
	s := &Syncer{
		registry: wikis.NewRegistry(),
		fandom:   client,
		store:    store,
		settings: settings,
		decider:  Auto{},
		logger:   logging.Default(),
		out:      io.Discard,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.engine == nil {
		s.engine = reconcile.New(settings)
	}
	if s.interrupt == nil {
		s.interrupt = NewInterrupter()
	}
	s.sources = sources.New(client, store, s.registry, settings)
	return s
}

// Summary is the outcome of one run.
type Summary struct {
	Added   int
	Updated int
	Removed int
	Written bool
}

// Run executes one full reconciliation. Discovery coming back empty is a
// clean stop, not an error. A schema break in the bulk response, a double
// interrupt, and store failures abort the run.
func (s *Syncer) Run(ctx context.Context) (*Summary, error) {
	prevText, catalog, err := s.loadCatalog(ctx)
	if err != nil {
		return nil, err
	}

	ids, err := s.sources.Gather(ctx, catalog)
	if errors.IsNoCandidates(err) {
		s.logger.Info().Msg("no candidate wikis; nothing to do")
		return &Summary{}, nil
	}
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int("candidates", len(ids)).Msg("working set gathered")

	entries, err := s.fandom.Details(ctx, ids)
	if err != nil {
		return nil, err
	}
	if err := hydrateBulk(s.registry, ids, entries); err != nil {
		return nil, err
	}
	if s.interrupt.Aborted() {
		return nil, errors.ErrAborted
	}

	g := classify(s.registry, ids, s.settings, s.limit)
	report := output.NewReport()
	reportRows(s.registry, ids, report)

	list := worklist(g)
	if !s.settings.Skip.Details {
		if err := s.runPass(ctx, detailsPass(s.fandom), list, s.out); err != nil {
			return nil, err
		}
	}
	if !s.settings.Skip.Admins {
		if err := s.runPass(ctx, adminsPass(s.fandom, s.settings), list, s.out); err != nil {
			return nil, err
		}
	}
	if s.interrupt.Aborted() {
		return nil, errors.ErrAborted
	}

	next := s.engine.Reconcile(catalog, g.add, g.update, g.remove)
	next.UpdatedAt = utc.Now().Unix()
	encoded, err := next.Encode()
	if err != nil {
		return nil, err
	}

	summary := &Summary{Added: len(g.add), Updated: len(g.update), Removed: len(g.remove)}

	if !catalogs.Changed([]byte(prevText), encoded) && !s.force {
		s.logger.Info().Msg("catalog unchanged; skipping write")
		_ = report.Render(s.out)
		return summary, nil
	}

	changeSummary := fmt.Sprintf("sync: %d added, %d updated, %d removed", summary.Added, summary.Updated, summary.Removed)
	err = s.confirmPut(ctx, s.settings.Documents.Catalog, prevText, string(encoded), changeSummary)
	if err != nil && !errors.Is(err, errors.ErrRejected) {
		return nil, err
	}
	summary.Written = err == nil

	if summary.Written {
		if err := s.writeAliases(ctx, next); err != nil {
			return nil, err
		}
		if err := s.appendRemoved(ctx, g.remove); err != nil {
			return nil, err
		}
	}

	_ = report.Render(s.out)
	return summary, nil
}

// loadCatalog reads and decodes the persisted catalog. A missing document
// starts an empty catalog. A document that fails to decode falls back to
// the newest prior revision that does decode, when the store keeps history.
func (s *Syncer) loadCatalog(ctx context.Context) (string, *catalogs.Catalog, error) {
	name := s.settings.Documents.Catalog

	text, err := s.store.Get(ctx, name)
	if errors.IsNotFound(err) {
		s.logger.Info().Str("document", name).Msg("catalog not found; starting empty")
		return "", catalogs.NewCatalog(), nil
	}
	if err != nil {
		return "", nil, err
	}

	catalog, decodeErr := catalogs.DecodeCatalog([]byte(text))
	if decodeErr == nil {
		return text, catalog, nil
	}

	history, ok := s.store.(pages.HistoryStore)
	if !ok {
		return "", nil, decodeErr
	}
	revisions, err := history.Revisions(ctx, name)
	if err != nil {
		return "", nil, decodeErr
	}
	for i, revision := range revisions {
		if revision == text {
			continue
		}
		catalog, err := catalogs.DecodeCatalog([]byte(revision))
		if err != nil {
			continue
		}
		s.logger.Warn().Str("document", name).Int("revisions_back", i).
			Msg("current catalog revision does not decode; using prior revision")
		return revision, catalog, nil
	}
	return "", nil, decodeErr
}

// confirmPut runs one write through the confirmation gate. A rejected write
// fails with ErrRejected; accept-all silences the gate for the rest of the
// run.
func (s *Syncer) confirmPut(ctx context.Context, name, oldText, newText, summary string) error {
	if !s.acceptAll {
		decision, err := s.decider.Confirm(name, output.Diff(oldText, newText))
		if err != nil {
			return err
		}
		switch decision {
		case Reject:
			s.logger.Info().Str("document", name).Msg("change rejected; not writing")
			return errors.ErrRejected
		case AcceptAll:
			s.acceptAll = true
		}
	}
	if err := s.store.Put(ctx, name, newText, summary); err != nil {
		return err
	}
	s.logger.Info().Str("document", name).Str("summary", summary).Msg("document written")
	return nil
}

// writeAliases regenerates the code-to-identifier cross-reference from the
// new catalog.
func (s *Syncer) writeAliases(ctx context.Context, next *catalogs.Catalog) error {
	aliases := reconcile.Aliases(next)

	codes := make([]string, 0, len(aliases))
	for code := range aliases {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	doc := make(yaml.MapSlice, 0, len(codes))
	for _, code := range codes {
		doc = append(doc, yaml.MapItem{Key: code, Value: aliases[code]})
	}
	encoded, err := yaml.Marshal(doc)
	if err != nil {
		return errors.WrapParse("yaml", "aliases", err)
	}

	name := s.settings.Documents.Aliases
	oldText, err := s.store.Get(ctx, name)
	if err != nil && !errors.IsNotFound(err) {
		return err
	}
	if oldText == string(encoded) {
		return nil
	}
	err = s.confirmPut(ctx, name, oldText, string(encoded), "sync: refresh aliases")
	if errors.Is(err, errors.ErrRejected) {
		return nil
	}
	return err
}

// appendRemoved extends the removal log with this run's removals, dated
// with today's key.
func (s *Syncer) appendRemoved(ctx context.Context, removed []*wikis.Wiki) error {
	if len(removed) == 0 {
		return nil
	}

	name := s.settings.Documents.Removed
	oldText, err := s.store.Get(ctx, name)
	if err != nil && !errors.IsNotFound(err) {
		return err
	}

	var existing []map[string]any
	if oldText != "" {
		if err := yaml.Unmarshal([]byte(oldText), &existing); err != nil {
			return errors.WrapParse("yaml", "removed", err)
		}
	}

	today := s.engine.Today()
	entries := make([]yaml.MapSlice, 0, len(existing)+len(removed))
	for _, entry := range existing {
		entries = append(entries, yaml.MapSlice{
			{Key: "id", Value: entry["id"]},
			{Key: "domain", Value: entry["domain"]},
			{Key: "date", Value: entry["date"]},
		})
	}
	for _, w := range removed {
		entries = append(entries, yaml.MapSlice{
			{Key: "id", Value: w.ID},
			{Key: "domain", Value: w.Domain},
			{Key: "date", Value: today},
		})
	}

	encoded, err := yaml.Marshal(entries)
	if err != nil {
		return errors.WrapParse("yaml", "removed", err)
	}
	err = s.confirmPut(ctx, name, oldText, string(encoded), fmt.Sprintf("sync: log %d removals", len(removed)))
	if errors.Is(err, errors.ErrRejected) {
		return nil
	}
	return err
}
