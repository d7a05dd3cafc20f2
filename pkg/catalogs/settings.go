package catalogs

import (
	"strings"

	"golang.org/x/text/language"

	"github.com/agentstation/wikisync/pkg/errors"
)

// Settings holds the per-run bot configuration. It is loaded once at startup
// and treated as read-only for the rest of the run.
type Settings struct {
	// Languages is the accepted language-code allow-list. The single entry
	// "all" disables filtering.
	Languages []string `mapstructure:"languages" yaml:"languages"`

	// WAMLimit caps how many identifiers the ranked-index discovery collects
	// per language.
	WAMLimit int `mapstructure:"wam_limit" yaml:"wam_limit"`

	// KeepDays is the retention window for dated stats snapshots. Minimum 1.
	KeepDays int `mapstructure:"keep_days" yaml:"keep_days"`

	// ActiveDays is the admin-activity window: accounts whose last edit is
	// older than this many days are not counted. Minimum 1.
	ActiveDays int `mapstructure:"active_days" yaml:"active_days"`

	// MinAdminEdits is the minimum lifetime edit count for an account to be
	// considered at all during admin-activity hydration.
	MinAdminEdits int `mapstructure:"min_admin_edits" yaml:"min_admin_edits"`

	// StripFields are field names removed from every document before
	// persistence.
	StripFields []string `mapstructure:"strip_fields" yaml:"strip_fields"`

	// Documents are the logical page names of the persisted documents.
	Documents DocumentNames `mapstructure:"documents" yaml:"documents"`

	// Skip toggles individual discovery and enrichment passes off.
	Skip SkipFlags `mapstructure:"skip" yaml:"skip"`
}

// DocumentNames are the page store names of the documents the bot maintains.
type DocumentNames struct {
	Catalog string `mapstructure:"catalog" yaml:"catalog"`
	Queue   string `mapstructure:"queue" yaml:"queue"`
	Aliases string `mapstructure:"aliases" yaml:"aliases"`
	Removed string `mapstructure:"removed" yaml:"removed"`
}

// SkipFlags disable individual stages of a run.
type SkipFlags struct {
	WAM     bool `mapstructure:"wam" yaml:"wam"`
	Queue   bool `mapstructure:"queue" yaml:"queue"`
	Details bool `mapstructure:"details" yaml:"details"`
	Admins  bool `mapstructure:"admins" yaml:"admins"`
}

// DefaultSettings returns settings matching the bot's historical behavior.
func DefaultSettings() *Settings {
	return &Settings{
		Languages:     []string{"all"},
		WAMLimit:      200,
		KeepDays:      14,
		ActiveDays:    30,
		MinAdminEdits: 1,
		StripFields:   []string{"categories"},
		Documents: DocumentNames{
			Catalog: "catalog/wikis",
			Queue:   "catalog/queue",
			Aliases: "catalog/aliases",
			Removed: "catalog/removed",
		},
	}
}

// Validate checks invariants that the rest of the run relies on.
func (s *Settings) Validate() error {
	if s.KeepDays < 1 {
		return &errors.ConfigError{Component: "settings", Message: "keep_days must be at least 1"}
	}
	if s.ActiveDays < 1 {
		return &errors.ConfigError{Component: "settings", Message: "active_days must be at least 1"}
	}
	if s.WAMLimit < 0 {
		return &errors.ConfigError{Component: "settings", Message: "wam_limit must not be negative"}
	}
	if s.Documents.Catalog == "" {
		return &errors.ConfigError{Component: "settings", Message: "documents.catalog name is required"}
	}
	return nil
}

// AllLanguages reports whether the allow-list is disabled.
func (s *Settings) AllLanguages() bool {
	if len(s.Languages) == 0 {
		return true
	}
	for _, l := range s.Languages {
		if strings.EqualFold(l, "all") {
			return true
		}
	}
	return false
}

// AllowsLanguage reports whether a wiki language code passes the allow-list.
// Codes are canonicalized through x/text so "pt-BR" and "pt-br" compare equal.
func (s *Settings) AllowsLanguage(code string) bool {
	if s.AllLanguages() {
		return true
	}
	want := canonicalLanguage(code)
	for _, l := range s.Languages {
		if canonicalLanguage(l) == want {
			return true
		}
	}
	return false
}

// canonicalLanguage normalizes a language code for comparison. Codes the
// parser rejects are compared verbatim, lowercased; the remote API is the
// authority on what counts as a language.
func canonicalLanguage(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(code))
	}
	return strings.ToLower(tag.String())
}
