// Package wikis models the remote wiki population for one run: the entity
// itself, its lifecycle variants, its per-run disposition, and the registry
// that guarantees a single in-memory representation per identifier.
package wikis

import (
	"regexp"
	"sort"
)

// Variant tags the lifecycle state of a wiki entity. Transitions are
// one-directional and terminal: an Active wiki may become Invalid or Closed,
// never the reverse.
type Variant int

// Lifecycle variants.
const (
	Active Variant = iota
	Invalid
	Closed
)

// String returns the variant name.
func (v Variant) String() string {
	switch v {
	case Active:
		return "active"
	case Invalid:
		return "invalid"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// Disposition is the classification outcome for a candidate during one run.
type Disposition int

// Dispositions, in restrictiveness order.
const (
	DispositionNone Disposition = iota
	DispositionNew
	DispositionUpdate
	DispositionRemove
	DispositionInvalid
	DispositionClosed
	DispositionExcluded
)

// String returns the disposition name as shown in the run report.
func (d Disposition) String() string {
	switch d {
	case DispositionNew:
		return "new"
	case DispositionUpdate:
		return "update"
	case DispositionRemove:
		return "remove"
	case DispositionInvalid:
		return "invalid"
	case DispositionClosed:
		return "closed"
	case DispositionExcluded:
		return "excluded-by-language"
	default:
		return "none"
	}
}

// Wiki is the in-memory representation of one remote wiki. At most one Wiki
// exists per identifier within a Registry; every component works against the
// same instance.
type Wiki struct {
	ID int

	// Populated by bulk hydration.
	Name        string
	Domain      string
	Language    string
	Hub         string
	Discussions bool
	Wordmark    string
	Image       string
	Stats       map[string]int

	// Populated by the per-domain variables pass.
	MainPage    string
	Categories  []string
	AnonEditing bool
	COPPA       *bool
	Theme       map[string]any

	// Run bookkeeping.
	OnCatalog      bool
	Disposition    Disposition
	HasDetails     bool
	HasAdminCounts bool

	variant Variant
}

// Variant returns the current lifecycle variant.
func (w *Wiki) Variant() Variant {
	return w.variant
}

// Close marks the wiki as closed (resolved to an empty domain). No-op if
// the wiki already left the Active state.
func (w *Wiki) Close() {
	if w.variant == Active {
		w.variant = Closed
	}
}

// Invalidate marks the wiki as no longer resolving on the remote system.
// No-op if the wiki already left the Active state.
func (w *Wiki) Invalidate() {
	if w.variant == Active {
		w.variant = Invalid
	}
}

// hostSuffix matches the known hosting-domain suffixes, longest first, with
// the remainder of the path preserved.
var hostSuffix = regexp.MustCompile(`(?i)\.(wikia\.com|wikia\.org|fandom\.com)(/|$)`)

// Code returns the stable short-code for the wiki: its domain with the
// hosting suffix stripped. Used by the aliases document to cross-reference
// entities by name rather than id.
func (w *Wiki) Code() string {
	return hostSuffix.ReplaceAllString(w.Domain, "${2}")
}

// Registry is the per-run identity map from identifier to entity. It
// replaces any notion of a process-global wiki table; every component that
// materializes wikis holds a reference to the same Registry.
type Registry struct {
	wikis map[int]*Wiki
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{wikis: map[int]*Wiki{}}
}

// Wiki returns the entity for an identifier, creating an Active entity on
// first request. Repeated requests for the same identifier return the same
// instance.
func (r *Registry) Wiki(id int) *Wiki {
	if w, ok := r.wikis[id]; ok {
		return w
	}
	w := &Wiki{ID: id}
	r.wikis[id] = w
	return w
}

// Get returns the entity for an identifier without creating it.
func (r *Registry) Get(id int) (*Wiki, bool) {
	w, ok := r.wikis[id]
	return w, ok
}

// Len returns the number of materialized entities.
func (r *Registry) Len() int {
	return len(r.wikis)
}

// IDs returns the materialized identifiers in ascending order.
func (r *Registry) IDs() []int {
	ids := make([]int, 0, len(r.wikis))
	for id := range r.wikis {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
