// Package wikisync maintains a catalog of wikis hosted on the Fandom wiki
// farm. Each Sync call discovers candidate wikis from the persisted
// catalog, the ranked WAM index, and an operator-maintained queue, hydrates
// them through the farm API, and reconciles the result back into the
// catalog document.
package wikisync

import (
	"context"
	"fmt"

	"github.com/agentstation/wikisync/internal/fandom"
	"github.com/agentstation/wikisync/internal/sync"
	"github.com/agentstation/wikisync/internal/transport"
	"github.com/agentstation/wikisync/pkg/catalogs"
	"github.com/agentstation/wikisync/pkg/errors"
	"github.com/agentstation/wikisync/pkg/pages"
	"github.com/agentstation/wikisync/pkg/reconcile"
)

// Wikisync reconciles the wiki catalog against the remote farm.
type Wikisync interface {
	// Sync executes one reconciliation run.
	Sync(ctx context.Context) (*Result, error)

	// Catalog returns the currently persisted catalog.
	Catalog(ctx context.Context) (*catalogs.Catalog, error)

	// Aliases returns the code-to-identifier cross-reference derived from
	// the persisted catalog.
	Aliases(ctx context.Context) (map[string]int, error)
}

// Result is the outcome of one reconciliation run.
type Result struct {
	Added   int
	Updated int
	Removed int
	Written bool
}

// wikisync is the internal implementation of the Wikisync interface.
type wikisync struct {
	config *config
	fandom *fandom.Client
	store  pages.Store
}

// New creates a Wikisync instance with the given options.
func New(opts ...Option) (Wikisync, error) {
	ws := &wikisync{config: defaultConfig()}

	if err := ws.options(opts...); err != nil {
		return nil, fmt.Errorf("applying options: %w", err)
	}
	if err := ws.config.settings.Validate(); err != nil {
		return nil, err
	}

	ws.store = ws.config.store
	if ws.store == nil {
		ws.store = pages.NewFS(ws.config.storeDir)
	}

	transportOpts := []transport.Option{transport.WithLogger(ws.config.logger)}
	if ws.config.httpClient != nil {
		transportOpts = append(transportOpts, transport.WithHTTPClient(ws.config.httpClient))
	}
	fandomOpts := []fandom.Option{
		fandom.WithTransport(transport.New(transportOpts...)),
		fandom.WithLogger(ws.config.logger),
	}
	if ws.config.server != "" {
		fandomOpts = append(fandomOpts, fandom.WithServer(ws.config.server))
	}
	if ws.config.scheme != "" {
		fandomOpts = append(fandomOpts, fandom.WithScheme(ws.config.scheme))
	}
	ws.fandom = fandom.New(fandomOpts...)

	return ws, nil
}

// options applies the given options to the instance config.
func (ws *wikisync) options(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(ws.config); err != nil {
			return err
		}
	}
	return nil
}

// Sync implements Wikisync. Every call runs against a fresh entity
// registry; nothing carries over between runs except the persisted
// documents.
func (ws *wikisync) Sync(ctx context.Context) (*Result, error) {
	interrupter := sync.NewInterrupter()
	if ws.config.watchSignals {
		interrupter.Watch(ctx)
	}

	var decider sync.Decider = sync.Auto{}
	if ws.config.confirmIn != nil {
		decider = sync.NewInteractive(ws.config.confirmIn, ws.config.out)
	}

	syncer := sync.New(ws.fandom, ws.store, ws.config.settings,
		sync.WithLogger(ws.config.logger),
		sync.WithOutput(ws.config.out),
		sync.WithDecider(decider),
		sync.WithInterrupter(interrupter),
		sync.WithForce(ws.config.force),
		sync.WithLimit(ws.config.limit),
	)

	summary, err := syncer.Run(ctx)
	if err != nil {
		return nil, err
	}
	return &Result{
		Added:   summary.Added,
		Updated: summary.Updated,
		Removed: summary.Removed,
		Written: summary.Written,
	}, nil
}

// Catalog implements Wikisync.
func (ws *wikisync) Catalog(ctx context.Context) (*catalogs.Catalog, error) {
	text, err := ws.store.Get(ctx, ws.config.settings.Documents.Catalog)
	if errors.IsNotFound(err) {
		return catalogs.NewCatalog(), nil
	}
	if err != nil {
		return nil, err
	}
	return catalogs.DecodeCatalog([]byte(text))
}

// Aliases implements Wikisync.
func (ws *wikisync) Aliases(ctx context.Context) (map[string]int, error) {
	catalog, err := ws.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	return reconcile.Aliases(catalog), nil
}
