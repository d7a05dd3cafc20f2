package wikisync

import (
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/agentstation/wikisync/pkg/catalogs"
	"github.com/agentstation/wikisync/pkg/errors"
	"github.com/agentstation/wikisync/pkg/logging"
	"github.com/agentstation/wikisync/pkg/pages"
)

// Option is a function that configures a Wikisync instance.
type Option func(*config) error

// config holds the assembled instance configuration.
type config struct {
	settings     *catalogs.Settings
	store        pages.Store
	storeDir     string
	server       string
	scheme       string
	httpClient   *http.Client
	logger       *zerolog.Logger
	out          io.Writer
	confirmIn    io.Reader
	watchSignals bool
	force        bool
	limit        int
}

func defaultConfig() *config {
	return &config{
		settings: catalogs.DefaultSettings(),
		storeDir: "data",
		logger:   logging.Default(),
		out:      io.Discard,
	}
}

// WithSettings replaces the default run settings.
func WithSettings(settings *catalogs.Settings) Option {
	return func(c *config) error {
		if settings == nil {
			return &errors.ConfigError{Component: "settings", Message: "nil settings"}
		}
		c.settings = settings
		return nil
	}
}

// WithStore configures the document store that holds the catalog and its
// sibling documents.
func WithStore(store pages.Store) Option {
	return func(c *config) error {
		c.store = store
		return nil
	}
}

// WithStoreDir configures a filesystem document store rooted at dir.
func WithStoreDir(dir string) Option {
	return func(c *config) error {
		if dir == "" {
			return &errors.ConfigError{Component: "store", Message: "empty store directory"}
		}
		c.storeDir = dir
		return nil
	}
}

// WithServer overrides the farm-wide API root.
func WithServer(url string) Option {
	return func(c *config) error {
		c.server = url
		return nil
	}
}

// WithScheme overrides the scheme used for per-domain API endpoints.
func WithScheme(scheme string) Option {
	return func(c *config) error {
		c.scheme = scheme
		return nil
	}
}

// WithHTTPClient replaces the HTTP client used for all remote calls.
func WithHTTPClient(client *http.Client) Option {
	return func(c *config) error {
		c.httpClient = client
		return nil
	}
}

// WithLogger replaces the logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(c *config) error {
		if logger == nil {
			return &errors.ConfigError{Component: "logger", Message: "nil logger"}
		}
		c.logger = logger
		return nil
	}
}

// WithOutput directs report, progress, and confirmation rendering to w.
func WithOutput(w io.Writer) Option {
	return func(c *config) error {
		c.out = w
		return nil
	}
}

// WithConfirmation enables the interactive confirmation gate, reading
// operator answers from in. Without it every proposed write is accepted.
func WithConfirmation(in io.Reader) Option {
	return func(c *config) error {
		c.confirmIn = in
		return nil
	}
}

// WithSignalHandling forwards SIGINT to the run's cooperative interrupt
// handling instead of killing the process.
func WithSignalHandling(enabled bool) Option {
	return func(c *config) error {
		c.watchSignals = enabled
		return nil
	}
}

// WithForce writes the catalog even when change detection sees no content
// difference.
func WithForce(force bool) Option {
	return func(c *config) error {
		c.force = force
		return nil
	}
}

// WithLimit caps how many new wikis one run may add to the catalog.
// Zero means no cap.
func WithLimit(limit int) Option {
	return func(c *config) error {
		if limit < 0 {
			return &errors.ConfigError{Component: "limit", Message: "negative limit"}
		}
		c.limit = limit
		return nil
	}
}
