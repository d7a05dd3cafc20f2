package catalogs

import (
	"bytes"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/wikisync/pkg/errors"
)

// leadingFields is the emission order for the well-known document fields.
// Everything else follows lexicographically. A stable order is what keeps
// day-to-day diffs of the persisted catalog readable.
var leadingFields = []string{
	"id",
	"name",
	"domain",
	"code",
	"language",
	"hub",
	"discussions",
	"wordmark",
	"image",
	"mainpage",
	"anonediting",
	"coppa",
	"categories",
	"theme",
	"stats",
}

// timestampLine matches the envelope's updated_timestamp line. It is
// stripped before comparing serializations so a refresh of the timestamp
// alone never counts as a content change.
var timestampLine = regexp.MustCompile(`(?m)^updated_timestamp:[ \t]*\d+[ \t]*\n?`)

// Encode serializes the catalog deterministically: wikis ascending by
// identifier, fields in leadingFields order then lexicographic, nested
// mappings lexicographic.
func (c *Catalog) Encode() ([]byte, error) {
	root := yaml.MapSlice{
		{Key: "updated_timestamp", Value: c.UpdatedAt},
		{Key: "wikis", Value: encodeWikis(c.Wikis)},
	}
	out, err := yaml.Marshal(root)
	if err != nil {
		return nil, errors.WrapParse("yaml", "catalog", err)
	}
	return out, nil
}

// DecodeCatalog parses a persisted catalog document.
func DecodeCatalog(text []byte) (*Catalog, error) {
	var envelope struct {
		UpdatedAt int64          `yaml:"updated_timestamp"`
		Wikis     map[string]any `yaml:"wikis"`
	}
	if err := yaml.Unmarshal(text, &envelope); err != nil {
		return nil, errors.WrapParse("yaml", "catalog", err)
	}

	catalog := NewCatalog()
	catalog.UpdatedAt = envelope.UpdatedAt
	for key, value := range envelope.Wikis {
		doc, ok := normalize(value).(map[string]any)
		if !ok {
			return nil, &errors.ParseError{
				Format:  "yaml",
				Source:  "catalog",
				Message: "wiki entry " + key + " is not a mapping",
			}
		}
		catalog.Wikis[key] = doc
	}
	return catalog, nil
}

// Changed reports whether two serialized catalogs differ in content. The
// envelope timestamp is excluded from the comparison.
func Changed(a, b []byte) bool {
	return !bytes.Equal(StripTimestamp(a), StripTimestamp(b))
}

// StripTimestamp removes the updated_timestamp line from a serialized
// catalog.
func StripTimestamp(text []byte) []byte {
	return timestampLine.ReplaceAll(text, nil)
}

func encodeWikis(wikis map[string]Document) yaml.MapSlice {
	keys := make([]int, 0, len(wikis))
	for key := range wikis {
		if id, err := strconv.Atoi(key); err == nil {
			keys = append(keys, id)
		}
	}
	sort.Ints(keys)

	out := make(yaml.MapSlice, 0, len(keys))
	for _, id := range keys {
		key := strconv.Itoa(id)
		out = append(out, yaml.MapItem{Key: key, Value: encodeDocument(wikis[key])})
	}
	return out
}

func encodeDocument(doc Document) yaml.MapSlice {
	seen := make(map[string]bool, len(doc))
	out := make(yaml.MapSlice, 0, len(doc))

	for _, field := range leadingFields {
		if value, ok := doc[field]; ok {
			out = append(out, yaml.MapItem{Key: field, Value: encodeValue(value)})
			seen[field] = true
		}
	}

	rest := make([]string, 0, len(doc))
	for field := range doc {
		if !seen[field] {
			rest = append(rest, field)
		}
	}
	sort.Strings(rest)
	for _, field := range rest {
		out = append(out, yaml.MapItem{Key: field, Value: encodeValue(doc[field])})
	}
	return out
}

// encodeValue rewrites nested mappings as ordered slices so the emitted
// text is independent of Go map iteration order.
func encodeValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		out := make(yaml.MapSlice, 0, len(keys))
		for _, key := range keys {
			out = append(out, yaml.MapItem{Key: key, Value: encodeValue(v[key])})
		}
		return out
	case map[string]int:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		out := make(yaml.MapSlice, 0, len(keys))
		for _, key := range keys {
			out = append(out, yaml.MapItem{Key: key, Value: v[key]})
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = encodeValue(item)
		}
		return out
	case []string:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = item
		}
		return out
	default:
		return value
	}
}

// normalize rewrites decoded YAML values into the canonical in-memory forms
// used throughout the system: string-keyed maps, []any sequences, plain int
// for every integral number, ISO strings for dates. Required for lossless
// round-trips regardless of which numeric type the decoder picked.
func normalize(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = normalize(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			switch k := key.(type) {
			case string:
				out[k] = normalize(item)
			case int:
				out[strconv.Itoa(k)] = normalize(item)
			case int64:
				out[strconv.FormatInt(k, 10)] = normalize(item)
			case uint64:
				out[strconv.FormatUint(k, 10)] = normalize(item)
			}
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = normalize(item)
		}
		return out
	case int64:
		return int(v)
	case uint64:
		return int(v)
	case float64:
		if v == float64(int(v)) {
			return int(v)
		}
		return v
	case time.Time:
		return v.Format("2006-01-02")
	default:
		return value
	}
}
