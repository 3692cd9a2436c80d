package statuspage

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/castawaylabs/statuspage/schema"
	"github.com/sirupsen/logrus"
)

const (
	apiPrefix        = "/api/v2"
	defaultUserAgent = "statuspage-go"
)

// Doer sends HTTP requests. *http.Client satisfies it. Implementations must
// be safe for concurrent use.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client reads the public API of one status page. It holds no mutable state
// and is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient Doer
	userAgent  string
	log        *logrus.Entry
}

type clientOptions struct {
	httpClient Doer
	insecure   bool
	rootCAs    []byte
	rootCAFile string
	timeout    time.Duration
	userAgent  string
	logger     *logrus.Entry
}

// Option configures a Client.
type Option func(*clientOptions)

// WithHTTPClient makes the Client send its requests through doer instead of
// an HTTP client of its own. It cannot be combined with the TLS and timeout
// options.
func WithHTTPClient(doer Doer) Option {
	return func(o *clientOptions) { o.httpClient = doer }
}

// WithInsecure disables TLS certificate verification.
func WithInsecure(insecure bool) Option {
	return func(o *clientOptions) { o.insecure = insecure }
}

// WithRootCAs trusts the PEM encoded certificates instead of the system pool.
func WithRootCAs(pem []byte) Option {
	return func(o *clientOptions) { o.rootCAs = pem }
}

// WithRootCAFile is WithRootCAs reading the certificates from a file.
func WithRootCAFile(path string) Option {
	return func(o *clientOptions) { o.rootCAFile = path }
}

// WithTimeout sets the timeout of the built-in HTTP client. Without it the
// only deadline is the one carried by the request context.
func WithTimeout(timeout time.Duration) Option {
	return func(o *clientOptions) { o.timeout = timeout }
}

func WithUserAgent(userAgent string) Option {
	return func(o *clientOptions) { o.userAgent = userAgent }
}

// WithLogger traces requests at debug level on entry.
func WithLogger(entry *logrus.Entry) Option {
	return func(o *clientOptions) { o.logger = entry }
}

// NewClient returns a Client for the page at baseURL, for example
// "https://status.example.com". baseURL is not validated here; a malformed
// URL makes every request fail. The only error is *TransportInitError.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	o := clientOptions{userAgent: defaultUserAgent}
	for _, opt := range opts {
		opt(&o)
	}

	httpClient := o.httpClient
	if httpClient == nil {
		built, err := buildHTTPClient(o)
		if err != nil {
			return nil, &TransportInitError{Err: err}
		}
		httpClient = built
	} else if o.insecure || len(o.rootCAs) > 0 || o.rootCAFile != "" || o.timeout > 0 {
		return nil, &TransportInitError{Err: errors.New("TLS and timeout options cannot be applied to a caller supplied HTTP client")}
	}

	logger := o.logger
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}

	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/") + apiPrefix,
		httpClient: httpClient,
		userAgent:  o.userAgent,
		log:        logger,
	}, nil
}

func buildHTTPClient(o clientOptions) (*http.Client, error) {
	pem := o.rootCAs
	if o.rootCAFile != "" {
		data, err := os.ReadFile(o.rootCAFile)
		if err != nil {
			return nil, fmt.Errorf("reading CA file: %w", err)
		}
		pem = append(append([]byte{}, pem...), data...)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if o.insecure || len(pem) > 0 {
		tlsConfig := &tls.Config{InsecureSkipVerify: o.insecure}
		if len(pem) > 0 {
			pool := x509.NewCertPool()
			if !pool.AppendCertsFromPEM(pem) {
				return nil, errors.New("no valid certificates in CA bundle")
			}
			tlsConfig.RootCAs = pool
		}
		transport.TLSClientConfig = tlsConfig
	}

	return &http.Client{
		Transport: transport,
		Timeout:   o.timeout,
	}, nil
}

// BaseURL returns the API root requests are sent to, including /api/v2.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Summary fetches /summary.json.
func (c *Client) Summary(ctx context.Context) (Summary, error) {
	s := newSummary()
	if err := c.getJSON(ctx, "/summary.json", schema.Summary, &s); err != nil {
		return Summary{}, err
	}
	return s, nil
}

// Status fetches /status.json.
func (c *Client) Status(ctx context.Context) (Status, error) {
	var resp struct {
		Status Status `json:"status"`
	}
	if err := c.getJSON(ctx, "/status.json", schema.StatusResponse, &resp); err != nil {
		return Status{}, err
	}
	return resp.Status, nil
}

// Components fetches /components.json.
func (c *Client) Components(ctx context.Context) ([]Component, error) {
	resp := struct {
		Components []Component `json:"components"`
	}{Components: []Component{}}
	if err := c.getJSON(ctx, "/components.json", schema.ComponentsResponse, &resp); err != nil {
		return nil, err
	}
	return resp.Components, nil
}

// Incidents fetches /incidents.json.
func (c *Client) Incidents(ctx context.Context) ([]Incident, error) {
	resp := struct {
		Incidents []Incident `json:"incidents"`
	}{Incidents: []Incident{}}
	if err := c.getJSON(ctx, "/incidents.json", schema.IncidentsResponse, &resp); err != nil {
		return nil, err
	}
	return resp.Incidents, nil
}

// Incident fetches /incidents/{id}.json. The id is placed in the path as it
// is, without escaping; callers must pass a valid incident id.
func (c *Client) Incident(ctx context.Context, id string) (Incident, error) {
	var resp struct {
		Incident Incident `json:"incident"`
	}
	if err := c.getJSON(ctx, "/incidents/"+id+".json", schema.IncidentResponse, &resp); err != nil {
		return Incident{}, err
	}
	return resp.Incident, nil
}
