// Package pages abstracts the document store that holds the persisted
// catalog and its sibling documents. Documents are addressed by
// hierarchical names ("catalog/wikis"); every write carries a
// human-readable change summary.
package pages

import (
	"context"

	"github.com/agentstation/wikisync/pkg/errors"
)

// Store reads and writes named documents.
type Store interface {
	// Get returns the current text of a document. A missing document
	// fails with an error matching errors.ErrNotFound.
	Get(ctx context.Context, name string) (string, error)

	// Put replaces the text of a document, creating it if needed.
	Put(ctx context.Context, name, text, summary string) error
}

// HistoryStore is a Store that can also produce prior revisions, newest
// first, for fallback when the current revision fails to decode.
type HistoryStore interface {
	Store

	// Revisions returns the document's revisions, current first.
	Revisions(ctx context.Context, name string) ([]string, error)
}

// Memory is an in-process Store used by tests and dry runs. The zero value
// is not usable; call NewMemory.
type Memory struct {
	docs      map[string]string
	summaries map[string][]string
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		docs:      map[string]string{},
		summaries: map[string][]string{},
	}
}

// Get implements Store.
func (m *Memory) Get(_ context.Context, name string) (string, error) {
	text, ok := m.docs[name]
	if !ok {
		return "", errors.WrapPage("read", name, errors.ErrNotFound)
	}
	return text, nil
}

// Put implements Store.
func (m *Memory) Put(_ context.Context, name, text, summary string) error {
	m.docs[name] = text
	m.summaries[name] = append(m.summaries[name], summary)
	return nil
}

// Seed sets a document without recording a write summary.
func (m *Memory) Seed(name, text string) {
	m.docs[name] = text
}

// Summaries returns the change summaries recorded for a document.
func (m *Memory) Summaries(name string) []string {
	return m.summaries[name]
}
