package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportRendersSortedByID(t *testing.T) {
	r := &Report{}
	r.Add(Row{ID: 42, Language: "en", Name: "Beta", Domain: "beta.fandom.com", Disposition: "update"})
	r.Add(Row{ID: 7, Language: "de", Name: "Alpha", Domain: "alpha.fandom.com", Disposition: "new"})
	require.Equal(t, 2, r.Len())

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf))

	out := buf.String()
	assert.Contains(t, out, "Alpha")
	assert.Contains(t, out, "Beta")
	assert.Less(t, strings.Index(out, "Alpha"), strings.Index(out, "Beta"))
}

func TestDiff(t *testing.T) {
	before := "a\nb\nc\n"
	after := "a\nx\nc\n"

	d := Diff(before, after)
	assert.Contains(t, d, "- b")
	assert.Contains(t, d, "+ x")
	assert.Contains(t, d, "  a")
	assert.Contains(t, d, "  c")
}

func TestDiffIdentical(t *testing.T) {
	d := Diff("a\nb\n", "a\nb\n")
	assert.NotContains(t, d, "- ")
	assert.NotContains(t, d, "+ ")
}

func TestDiffElidesLongContext(t *testing.T) {
	lines := make([]string, 0, 12)
	for _, s := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"} {
		lines = append(lines, s)
	}
	before := strings.Join(lines, "\n") + "\nend\n"
	after := strings.Join(lines, "\n") + "\nEND\n"

	d := Diff(before, after)
	assert.Contains(t, d, "...")
	assert.Contains(t, d, "- end")
	assert.Contains(t, d, "+ END")
}
