// Package client is the storefront's gateway to the drop API. It owns the
// sign-in flows, keeps the session and the credential store in step, and
// exposes an http.Client whose transport attaches a valid bearer token to
// every request.
package client

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/09ahmad/drop-go/credstore"
	"github.com/09ahmad/drop-go/session"
)

// Client wraps the drop API. The auth endpoints are called on a bare HTTP
// client; all other API traffic should go through HTTPClient().
type Client struct {
	baseURL string
	store   credstore.Store
	session *session.Manager
	log     zerolog.Logger
	nowFunc func() time.Time

	http    *http.Client // bare client for the auth endpoints
	apiHTTP *http.Client // token-attaching client for API traffic

	onSessionExpired func()
	refreshGroup     singleflight.Group
	restoreOnce      sync.Once
}

// Option defines a function type to modify the Client instance.
type Option func(*Client)

// WithHTTPClient swaps the HTTP client used for every request. Its transport
// becomes the base the token-attaching transport delegates to.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger routes the client's diagnostics to the given logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// WithNowFunc sets the clock used for expiry checks (primarily for testing).
func WithNowFunc(now func() time.Time) Option {
	return func(c *Client) {
		c.nowFunc = now
	}
}

// WithSessionExpiredHandler registers the hook invoked after a failed token
// refresh resets the session. The UI layer uses it to route back to its
// sign-in screen.
func WithSessionExpiredHandler(fn func()) Option {
	return func(c *Client) {
		c.onSessionExpired = fn
	}
}

// New initializes a Client for the API at baseURL, persisting credentials in
// store. Optional configuration can be provided via options.
func New(baseURL string, store credstore.Store, options ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("[client.New] baseURL is required")
	}
	if store == nil {
		return nil, errors.New("[client.New] store is required")
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		store:   store,
		session: session.NewManager(),
		log:     zerolog.Nop(),
		nowFunc: time.Now,
		http:    &http.Client{},
	}

	for _, opt := range options {
		opt(c)
	}

	apiClient := *c.http
	apiClient.Transport = &authTransport{client: c, base: baseTransport(c.http)}
	c.apiHTTP = &apiClient

	return c, nil
}

// Session exposes the signed-in state.
func (c *Client) Session() *session.Manager {
	return c.session
}

// HTTPClient returns the client API calls should use. Its transport attaches
// the bearer token, refreshing it first when expired.
func (c *Client) HTTPClient() *http.Client {
	return c.apiHTTP
}

// BaseURL returns the API root the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) url(path string) string {
	return c.baseURL + path
}

func baseTransport(hc *http.Client) http.RoundTripper {
	if hc.Transport != nil {
		return hc.Transport
	}
	return http.DefaultTransport
}
