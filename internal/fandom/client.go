// Package fandom implements the remote wiki-farm API surface: bulk details,
// the ranked WAM index, per-domain site variables, and the legacy
// user-listing endpoint. All calls go through the resilient transport
// client; this package only knows endpoints, shapes, and chunking rules.
package fandom

import (
	"bytes"
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/wikisync/internal/transport"
	"github.com/agentstation/wikisync/pkg/errors"
	"github.com/agentstation/wikisync/pkg/logging"
)

const (
	// DefaultServer is the farm-wide API root.
	DefaultServer = "https://www.wikia.com/api/v1/"

	// detailsChunkSize is the server-imposed maximum id count per bulk
	// details request.
	detailsChunkSize = 250

	// wamPageSize is the server-enforced maximum WAM index page size; the
	// API breaks above it.
	wamPageSize = 20

	// Fixed dimensions for derived image URLs in details responses. The
	// resulting crop segment is stripped again at hydration time.
	detailsImageWidth  = 123
	detailsImageHeight = 456
)

// Client talks to the wiki-farm API.
type Client struct {
	transport *transport.Client
	server    string
	scheme    string
	logger    *zerolog.Logger
	now       func() time.Time

	// WikiVariables answers, memoized per run keyed by domain.
	vars map[string]map[string]any
}

// Option configures a Client.
type Option func(*Client)

// WithServer overrides the farm-wide API root. Tests point this at a stub.
func WithServer(server string) Option {
	return func(c *Client) {
		c.server = server
	}
}

// WithScheme overrides the scheme used for per-domain endpoints.
func WithScheme(scheme string) Option {
	return func(c *Client) {
		c.scheme = scheme
	}
}

// WithTransport replaces the underlying resilient client.
func WithTransport(t *transport.Client) Option {
	return func(c *Client) {
		c.transport = t
	}
}

// WithLogger replaces the logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithClock overrides the time source used for activity windows.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// New creates a Client with default endpoints and retry policy.
func New(opts ...Option) *Client {
	c := &Client{
		server: DefaultServer,
		scheme: "https",
		now:    time.Now,
		vars:   map[string]map[string]any{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.transport == nil {
		c.transport = transport.New()
	}
	if c.logger == nil {
		c.logger = logging.Default()
	}
	return c
}

// call issues one API request against a server root.
func (c *Client) call(ctx context.Context, server, path string, params url.Values, target any) error {
	return c.transport.GetJSON(ctx, server+path, params, target)
}

// domainServer returns the API root of a single wiki.
func (c *Client) domainServer(domain string) string {
	return c.scheme + "://" + strings.TrimRight(domain, "/") + "/api/v1/"
}

// Details fetches bulk detail entries for a set of identifiers. Requests
// are partitioned into chunks of at most 250 ids and the per-chunk response
// maps are merged. Identifiers unknown to the remote system are simply
// absent from the result; identifiers present with an empty domain are
// closed wikis. Callers must distinguish the two.
func (c *Client) Details(ctx context.Context, ids []int) (map[string]map[string]any, error) {
	result := map[string]map[string]any{}

	for start := 0; start < len(ids); start += detailsChunkSize {
		end := start + detailsChunkSize
		if end > len(ids) {
			end = len(ids)
		}
		chunk := ids[start:end]

		joined := make([]string, len(chunk))
		for i, id := range chunk {
			joined[i] = strconv.Itoa(id)
		}

		var resp struct {
			Items map[string]map[string]any `json:"items"`
		}
		err := c.call(ctx, c.server, "Wikis/Details", url.Values{
			"ids":    {strings.Join(joined, ",")},
			"expand": {"1"},
			"width":  {strconv.Itoa(detailsImageWidth)},
			"height": {strconv.Itoa(detailsImageHeight)},
		}, &resp)
		if err != nil {
			return nil, err
		}

		for key, entry := range resp.Items {
			result[key] = entry
		}
	}
	return result, nil
}

// WAMIndex walks the ranked index and returns identifiers in rank order
// until a page comes back empty or the accumulated count reaches limit.
// Duplicates across pages are possible; callers apply set semantics.
//
// The server-side language filter is applied when lang is non-empty, but it
// is not treated as authoritative — language policy is enforced client-side
// at classification time.
func (c *Client) WAMIndex(ctx context.Context, lang string, limit int) ([]int, error) {
	if limit <= 0 {
		return nil, nil
	}
	pageSize := wamPageSize
	if limit < pageSize {
		pageSize = limit
	}

	var ids []int
	offset := 0
	for {
		var resp struct {
			// Kept raw: decoding into a map would lose the server's
			// rank ordering of the keys.
			Index json.RawMessage `json:"wam_index"`
		}
		err := c.call(ctx, c.server, "WAM/WAMIndex", url.Values{
			"sort_column":    {"wam"},
			"sort_direction": {"DESC"},
			"limit":          {strconv.Itoa(pageSize)},
			"offset":         {strconv.Itoa(offset)},
			"wiki_lang":      {lang},
		}, &resp)
		if err != nil {
			return nil, err
		}

		page, err := wamPageIDs(resp.Index)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}
		ids = append(ids, page...)

		if len(ids) >= limit {
			break
		}
		offset += pageSize
	}
	return ids, nil
}

// wamPageIDs extracts the wiki ids from a raw wam_index object in document
// order, which is the rank order the server emitted.
func wamPageIDs(raw json.RawMessage) ([]int, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return nil, errors.WrapParse("json", "WAM/WAMIndex", errors.New("wam_index is not an object"))
	}

	var ids []int
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, errors.WrapParse("json", "WAM/WAMIndex", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, errors.WrapParse("json", "WAM/WAMIndex", errors.New("wam_index has a non-string key"))
		}
		id, err := strconv.Atoi(key)
		if err != nil {
			return nil, errors.WrapParse("json", "WAM/WAMIndex", errors.New("non-numeric wiki id "+key))
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, errors.WrapParse("json", "WAM/WAMIndex", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Variables fetches the per-domain site variables, memoizing the answer for
// the rest of the run.
func (c *Client) Variables(ctx context.Context, domain string) (map[string]any, error) {
	domain = strings.TrimRight(domain, "/")
	if cached, ok := c.vars[domain]; ok {
		return cached, nil
	}

	var resp struct {
		Data map[string]any `json:"data"`
	}
	if err := c.call(ctx, c.domainServer(domain), "Mercury/WikiVariables", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, errors.WrapParse("json", domain, errors.New("WikiVariables response has no data"))
	}

	c.vars[domain] = resp.Data
	return resp.Data, nil
}

// ResolveDomain resolves a bare domain name to a wiki identifier via its
// site variables.
func (c *Client) ResolveDomain(ctx context.Context, domain string) (int, error) {
	vars, err := c.Variables(ctx, domain)
	if err != nil {
		return 0, err
	}
	id := asInt(vars["id"])
	if id <= 0 {
		return 0, errors.WrapParse("json", domain, errors.New("WikiVariables carries no wiki id"))
	}
	return id, nil
}

func asInt(value any) int {
	switch v := value.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		n, _ := strconv.Atoi(v)
		return n
	default:
		return 0
	}
}
