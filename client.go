package replicate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

var (
	envAuthToken = "REPLICATE_API_TOKEN"

	defaultUserAgent = "replicate-community/replicate-go"
	defaultBaseURL   = "https://api.replicate.com/v1"

	ErrNoAuth       = errors.New(`no auth token provided -- perhaps you forgot to pass replicate.WithToken("...")`)
	ErrEnvVarNotSet = fmt.Errorf("%s environment variable not set", envAuthToken)
	ErrEnvVarEmpty  = fmt.Errorf("%s environment variable is empty", envAuthToken)
)

// Client is a client for the Replicate API.
//
// A Client is immutable after construction and safe for concurrent use.
// Each call builds its own request and receives its own response; the only
// shared state is the underlying http.Client's connection pool.
type Client struct {
	options *clientOptions
	c       *http.Client
}

type clientOptions struct {
	auth       string
	baseURL    string
	httpClient *http.Client
	userAgent  *string
}

// ClientOption is a function that modifies an options struct.
type ClientOption func(*clientOptions) error

// NewClient creates a new Replicate API client.
//
// A usable auth token must be supplied via WithToken or WithTokenFromEnv;
// otherwise NewClient fails with ErrNoAuth before any request is made.
func NewClient(opts ...ClientOption) (*Client, error) {
	c := &Client{
		options: &clientOptions{
			userAgent:  &defaultUserAgent,
			baseURL:    defaultBaseURL,
			httpClient: http.DefaultClient,
		},
	}

	var errs []error
	for _, option := range opts {
		err := option(c.options)
		if err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	if strings.TrimSpace(c.options.auth) == "" {
		return nil, ErrNoAuth
	}

	c.c = c.options.httpClient

	return c, nil
}

// WithToken sets the auth token used by the client.
func WithToken(token string) ClientOption {
	return func(o *clientOptions) error {
		o.auth = token
		return nil
	}
}

// WithTokenFromEnv configures the client to use the auth token provided in the
// REPLICATE_API_TOKEN environment variable.
func WithTokenFromEnv() ClientOption {
	return func(o *clientOptions) error {
		token, ok := os.LookupEnv(envAuthToken)
		if !ok {
			return ErrEnvVarNotSet
		}
		if token == "" {
			return ErrEnvVarEmpty
		}
		o.auth = token
		return nil
	}
}

// WithUserAgent sets the User-Agent header on requests made by the client.
func WithUserAgent(userAgent string) ClientOption {
	return func(o *clientOptions) error {
		o.userAgent = &userAgent
		return nil
	}
}

// WithBaseURL sets the base URL for the client.
func WithBaseURL(baseURL string) ClientOption {
	return func(o *clientOptions) error {
		o.baseURL = baseURL
		return nil
	}
}

// WithHTTPClient sets the HTTP client used by the client.
//
// Timeouts and transport tuning belong to the supplied http.Client; the
// library imposes no defaults of its own.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(o *clientOptions) error {
		o.httpClient = httpClient
		return nil
	}
}

func (r *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	url := constructURL(r.options.baseURL, path)
	request, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Authorization", fmt.Sprintf("Bearer %s", r.options.auth))
	if r.options.userAgent != nil {
		request.Header.Set("User-Agent", *r.options.userAgent)
	}

	return request, nil
}

// do executes a single request and decodes the response into out.
//
// Requests are never retried. Failures map onto the package's error
// taxonomy: *NetworkError for transport failures, *APIError for non-2xx
// responses, *DecodingError when the body does not match out.
func (r *Client) do(request *http.Request, out interface{}) error {
	response, err := r.c.Do(request)
	if err != nil {
		return &NetworkError{Method: request.Method, URL: request.URL.String(), Err: err}
	}
	defer response.Body.Close()

	responseBytes, err := io.ReadAll(response.Body)
	if err != nil {
		return &NetworkError{Method: request.Method, URL: request.URL.String(), Err: err}
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return unmarshalAPIError(response, responseBytes)
	}

	if out != nil {
		if err := json.Unmarshal(responseBytes, out); err != nil {
			return &DecodingError{
				Method: request.Method,
				URL:    request.URL.String(),
				Body:   responseBytes,
				Err:    err,
			}
		}
	}

	return nil
}

// fetch makes an HTTP request to Replicate's API.
func (r *Client) fetch(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	bodyBuffer := &bytes.Buffer{}
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyBuffer = bytes.NewBuffer(bodyBytes)
	}

	request, err := r.newRequest(ctx, method, path, bodyBuffer)
	if err != nil {
		return err
	}

	return r.do(request, out)
}

// constructURL joins the configured base URL with a route. Pagination
// cursors come back from the API as absolute URLs and are used verbatim.
func constructURL(baseURL, route string) string {
	if strings.HasPrefix(route, "http://") || strings.HasPrefix(route, "https://") {
		return route
	}

	route = strings.TrimPrefix(route, "/")

	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	return baseURL + route
}
