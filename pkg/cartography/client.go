// Package cartography provides a client for the registry's cartography API,
// used to replay the request the page normally issues itself when the
// intercepted payload never arrived.
package cartography

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// Client defines the cartography replay operation.
type Client interface {
	// Fetch retrieves the cartography payload for a SIREN and returns the
	// raw JSON body untouched.
	Fetch(ctx context.Context, siren string) (json.RawMessage, error)
	// WithToken returns a client using a different API token, for the case
	// where a token was harvested from an intercepted call.
	WithToken(token string) Client
}

// Options configures the HTTP client.
type Options struct {
	BaseURL        string
	APIToken       string
	Timeout        time.Duration
	RequestsPerSec float64
}

type httpClient struct {
	baseURL string
	token   string
	client  *http.Client
	limiter *rate.Limiter
}

// New creates a cartography client.
func New(opts Options) Client {
	if opts.Timeout == 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.RequestsPerSec == 0 {
		opts.RequestsPerSec = 1
	}
	return &httpClient{
		baseURL: opts.BaseURL,
		token:   opts.APIToken,
		client:  &http.Client{Timeout: opts.Timeout},
		limiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSec), 1),
	}
}

func (c *httpClient) WithToken(token string) Client {
	clone := *c
	clone.token = token
	return &clone
}

func (c *httpClient) Fetch(ctx context.Context, siren string) (json.RawMessage, error) {
	if siren == "" {
		return nil, eris.New("cartography: empty siren")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "cartography: rate limiter")
	}

	// Query flags match the request the page issues itself.
	q := url.Values{}
	q.Set("api_token", c.token)
	q.Set("siren", siren)
	q.Set("inclure_entreprises_dirigees", "true")
	q.Set("inclure_entreprises_citees", "false")
	q.Set("inclure_sci", "true")
	q.Set("autoriser_modifications", "true")

	endpoint := c.baseURL + "/entreprise/cartographie?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, eris.Wrap(err, "cartography: build request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "cartography: request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("cartography: unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "cartography: read body")
	}
	if !json.Valid(body) {
		return nil, eris.New("cartography: response is not valid JSON")
	}

	return json.RawMessage(body), nil
}
