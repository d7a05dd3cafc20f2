// Package catalogs defines the persisted wiki catalog: the document model,
// run settings, and a deterministic codec so that repeated runs with the
// same content produce byte-identical text and therefore clean diffs.
package catalogs

import (
	"sort"
	"strconv"
)

// Document is the persisted record of one wiki: a mapping from field name to
// value. Nested mappings (stats, theme) hold their own key/value pairs.
type Document = map[string]any

// Catalog is the durable state of the system: every known wiki document
// keyed by stringified identifier, wrapped in an envelope that carries the
// time of the last write. The envelope timestamp is ignored by change
// detection (see Changed).
type Catalog struct {
	UpdatedAt int64
	Wikis     map[string]Document
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{Wikis: map[string]Document{}}
}

// IDs returns the identifiers present in the catalog in ascending order.
// Keys that do not parse as integers are ignored; the codec never writes
// such keys.
func (c *Catalog) IDs() []int {
	ids := make([]int, 0, len(c.Wikis))
	for key := range c.Wikis {
		id, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Document returns the stored document for an identifier.
func (c *Catalog) Document(id int) (Document, bool) {
	doc, ok := c.Wikis[strconv.Itoa(id)]
	return doc, ok
}

// Key converts an identifier to its catalog key form.
func Key(id int) string {
	return strconv.Itoa(id)
}
