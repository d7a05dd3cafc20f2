package catalogs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultSettingsValid(t *testing.T) {
	assert.NoError(t, DefaultSettings().Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
		ok     bool
	}{
		{"defaults", func(*Settings) {}, true},
		{"zero keep_days", func(s *Settings) { s.KeepDays = 0 }, false},
		{"zero active_days", func(s *Settings) { s.ActiveDays = 0 }, false},
		{"negative wam_limit", func(s *Settings) { s.WAMLimit = -1 }, false},
		{"missing catalog name", func(s *Settings) { s.Documents.Catalog = "" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(s)
			err := s.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestAllowsLanguage(t *testing.T) {
	s := DefaultSettings()
	s.Languages = []string{"pl", "pt-BR"}

	assert.True(t, s.AllowsLanguage("pl"))
	assert.True(t, s.AllowsLanguage("PL"))
	assert.True(t, s.AllowsLanguage("pt-br"), "codes compare canonicalized")
	assert.False(t, s.AllowsLanguage("en"))
	assert.False(t, s.AllowsLanguage(""))

	s.Languages = []string{"all"}
	assert.True(t, s.AllLanguages())
	assert.True(t, s.AllowsLanguage("anything"))

	s.Languages = nil
	assert.True(t, s.AllLanguages(), "empty allow-list means no filtering")
}
