package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotFoundError(t *testing.T) {
	err := &NotFoundError{URL: "https://example.fandom.com/api/v1/Wikis/Details", StatusCode: 404}

	assert.Contains(t, err.Error(), "404")
	assert.Contains(t, err.Error(), "Wikis/Details")
	assert.True(t, Is(err, ErrNotFound))
	assert.True(t, IsNotFound(err))
}

func TestExhaustedRetriesError(t *testing.T) {
	inner := New("connection refused")
	err := &ExhaustedRetriesError{URL: "https://www.wikia.com/api/v1/WAM/WAMIndex", Attempts: 5, Err: inner}

	assert.Contains(t, err.Error(), "5 tries")
	assert.Contains(t, err.Error(), "WAMIndex")
	assert.ErrorIs(t, err, inner)
}

func TestSchemaError(t *testing.T) {
	err := &SchemaError{WikiID: 490, Field: "stats", Message: "missing in expanded response"}

	assert.Contains(t, err.Error(), "490")
	assert.Contains(t, err.Error(), "stats")
	assert.True(t, IsSchemaBreak(err))
	assert.True(t, IsSchemaBreak(fmt.Errorf("hydrating: %w", err)))
	assert.False(t, IsSchemaBreak(New("other")))
}

func TestQueueResolutionError(t *testing.T) {
	inner := ErrNotFound
	err := &QueueResolutionError{Entry: "gone.fandom.com", Err: inner}

	assert.Contains(t, err.Error(), "gone.fandom.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPageErrorNotFound(t *testing.T) {
	err := WrapPage("read", "catalog", fmt.Errorf("open: %w", ErrNotFound))

	assert.True(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "catalog")

	writeErr := WrapPage("write", "catalog", New("disk full"))
	assert.False(t, IsNotFound(writeErr))
}

func TestSentinels(t *testing.T) {
	assert.True(t, IsNoCandidates(fmt.Errorf("gather: %w", ErrNoCandidates)))
	assert.False(t, IsNoCandidates(ErrAborted))
	assert.True(t, IsAborted(ErrAborted))
}

func TestWrapParse(t *testing.T) {
	assert.NoError(t, WrapParse("json", "", nil))

	err := WrapParse("json", "https://www.wikia.com/api/v1/Wikis/Details", New("unexpected end of input"))
	var pe *ParseError
	assert.True(t, As(err, &pe))
	assert.Equal(t, "json", pe.Format)
	assert.Contains(t, err.Error(), "unexpected end of input")
}
