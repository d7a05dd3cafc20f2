package wikis

import (
	"regexp"
	"sort"
	"strings"

	"github.com/agentstation/wikisync/pkg/errors"
)

// schemeRe strips an optional scheme prefix from the url field.
var schemeRe = regexp.MustCompile(`^(?:(?:https?:)?//)?(.*)$`)

// cropRe matches the window-crop path segment the API appends to derived
// image URLs. The stored image URL is the uncropped original.
var cropRe = regexp.MustCompile(`/window-crop/width/\d+/x-offset/\d+/y-offset/\d+/window-width/\d+/window-height/\d+`)

// expandedFields are the keys only present in expanded bulk responses.
// Their absence means the API answered with the non-expanded shape, which
// silently drops data and must abort the run.
var expandedFields = []string{"name", "lang", "hub", "stats", "wordmark", "image"}

// UpdateFromAPI hydrates the wiki from one entry of the bulk details
// response. An empty domain transitions the wiki to Closed. A response
// missing expanded-only fields fails with a SchemaError.
func (w *Wiki) UpdateFromAPI(entry map[string]any) error {
	if asString(entry["domain"]) == "" {
		w.Close()
		return nil
	}

	for _, field := range expandedFields {
		if _, ok := entry[field]; !ok {
			return &errors.SchemaError{
				WikiID:  w.ID,
				Field:   field,
				Message: "missing in bulk response; expanded and non-expanded API shapes are inconsistent",
			}
		}
	}

	w.Name = asString(entry["name"])
	w.Language = asString(entry["lang"])
	w.Hub = asString(entry["hub"])

	if url := asString(entry["url"]); url != "" {
		w.Domain = schemeRe.FindStringSubmatch(url)[1]
	} else {
		w.Domain = asString(entry["domain"])
	}
	w.Domain = strings.TrimRight(w.Domain, "/")

	stats, ok := entry["stats"].(map[string]any)
	if !ok {
		return &errors.SchemaError{WikiID: w.ID, Field: "stats", Message: "not a mapping"}
	}
	w.Stats = make(map[string]int, len(stats))
	for name, value := range stats {
		w.Stats[name] = asInt(value)
	}
	// The user counter is farm-wide, not per-wiki; it only bloats the
	// time series.
	delete(w.Stats, "users")

	_, w.Discussions = stats["discussions"]

	if wordmark := asString(entry["wordmark"]); wordmark != "" {
		w.Wordmark = wordmark
	}
	if image := asString(entry["image"]); image != "" {
		w.Image = cropRe.ReplaceAllString(image, "")
	}
	return nil
}

// UpdateFromDump prefills the wiki from its persisted catalog document, so
// queue resolution and reporting have names and domains before any remote
// call happens. Fields absent from the document are left untouched.
func (w *Wiki) UpdateFromDump(doc map[string]any) {
	if name := asString(doc["name"]); name != "" {
		w.Name = name
	}
	if domain := asString(doc["domain"]); domain != "" {
		w.Domain = domain
	}
	if language := asString(doc["language"]); language != "" {
		w.Language = language
	}
	if hub := asString(doc["hub"]); hub != "" {
		w.Hub = hub
	}
	if discussions, ok := doc["discussions"].(bool); ok {
		w.Discussions = discussions
	}
}

// ApplyVariables hydrates the lazily-loaded per-domain attribute group from
// a WikiVariables response and marks the wiki detailed.
func (w *Wiki) ApplyVariables(vars map[string]any) {
	w.MainPage = asString(vars["mainPageTitle"])

	categories := map[string]bool{}
	if list, ok := vars["wikiCategories"].([]any); ok {
		for _, item := range list {
			if category := asString(item); category != "" {
				categories[category] = true
			}
		}
	}
	if w.Hub != "" {
		categories[strings.ToLower(w.Hub)] = true
	}
	w.Categories = make([]string, 0, len(categories))
	for category := range categories {
		w.Categories = append(w.Categories, category)
	}
	sort.Strings(w.Categories)

	disabled, _ := vars["disableAnonymousEditing"].(bool)
	w.AnonEditing = !disabled

	if coppa, ok := vars["isCoppaWiki"].(bool); ok {
		w.COPPA = &coppa
	}

	w.Theme = map[string]any{}
	if isDark, ok := vars["isDarkTheme"].(bool); ok {
		w.Theme["isDark"] = isDark
	}
	if headline := asString(vars["siteMessage"]); headline != "" {
		w.Theme["headline"] = headline
	}
	if theme, ok := vars["theme"].(map[string]any); ok {
		for key, value := range theme {
			if strings.HasPrefix(key, "color-") {
				w.Theme[key] = value
			}
		}
	}

	w.HasDetails = true
}

// SetAdminCounts records the admin-activity hydration result into the
// statistics snapshot and marks the wiki counted.
func (w *Wiki) SetAdminCounts(bureaucrats, admins, moderators int) {
	if w.Stats == nil {
		w.Stats = map[string]int{}
	}
	w.Stats["bureaucrats"] = bureaucrats
	w.Stats["admins"] = admins
	w.Stats["moderators"] = moderators
	w.HasAdminCounts = true
}

// Dump assembles the wiki's persisted document. Core identity fields are
// always present, optional URLs only when non-empty, the detail group only
// once hydrated. The statistics snapshot is wrapped under today's date key
// so that successive runs build a bounded time series.
func (w *Wiki) Dump(today string) map[string]any {
	doc := map[string]any{
		"id":          w.ID,
		"name":        w.Name,
		"domain":      w.Domain,
		"code":        w.Code(),
		"language":    w.Language,
		"hub":         w.Hub,
		"discussions": w.Discussions,
	}

	if w.Wordmark != "" {
		doc["wordmark"] = w.Wordmark
	}
	if w.Image != "" {
		doc["image"] = w.Image
	}

	if w.HasDetails {
		if w.MainPage != "" {
			doc["mainpage"] = w.MainPage
		}
		doc["categories"] = append([]string(nil), w.Categories...)
		doc["anonediting"] = w.AnonEditing
		if w.COPPA != nil {
			doc["coppa"] = *w.COPPA
		}
		theme := make(map[string]any, len(w.Theme))
		for key, value := range w.Theme {
			theme[key] = value
		}
		doc["theme"] = theme
	}

	snapshot := make(map[string]int, len(w.Stats))
	for name, value := range w.Stats {
		snapshot[name] = value
	}
	doc["stats"] = map[string]any{today: snapshot}

	return doc
}

func asString(value any) string {
	s, _ := value.(string)
	return s
}

func asInt(value any) int {
	switch v := value.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case uint64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
