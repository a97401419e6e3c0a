// Package client talks to a remote pipecheck server.
//
// It mirrors what the editor does when the user presses "Submit": POST the
// canvas to /pipelines/parse and show the returned status. When the server
// cannot be reached the editor does not fail; it shows a synthesized
// invalid result instead. [Client.ParseOrFallback] applies the same policy.
//
//	c := client.New("http://localhost:8000")
//	res := c.ParseOrFallback(ctx, payload)
//	fmt.Println(res.Message)
package client

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pipecheck/pkg/dag"
	"github.com/matzehuels/pipecheck/pkg/errors"
	"github.com/matzehuels/pipecheck/pkg/httputil"
	"github.com/matzehuels/pipecheck/pkg/observability"
	"github.com/matzehuels/pipecheck/pkg/pipeline"
)

// FallbackMessage is reported when the server cannot be reached.
const FallbackMessage = "Failed to connect to validation server. Is the backend running?"

// ParsePath is the validation endpoint, relative to the base URL.
const ParsePath = "/pipelines/parse"

const (
	defaultTimeout = 10 * time.Second
	maxErrorBody   = 4 << 10
)

// Client is a remote validation client. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	backoff httputil.Backoff
	logger  *log.Logger
	local   dag.Validator
}

// Option configures a [Client].
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-attempt timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithBackoff sets the retry schedule for transient failures.
func WithBackoff(b httputil.Backoff) Option {
	return func(c *Client) { c.backoff = b }
}

// WithLogger sets the logger used for retry and fallback messages.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithPolicy sets the edge policy used by [Client.Precheck].
func WithPolicy(p dag.EdgePolicy) Option {
	return func(c *Client) { c.local = dag.Validator{Policy: p} }
}

// New creates a client for the server at baseURL, e.g.
// "http://localhost:8000". A trailing slash is ignored.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		backoff: httputil.DefaultBackoff,
		logger:  log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the server address the client posts to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Parse submits p for validation and returns the server's verdict.
//
// Transport errors and 5xx responses are retried according to the client's
// backoff. Other non-2xx responses fail immediately; the returned
// *errors.Error carries the code from the server's error body when present.
func (c *Client) Parse(ctx context.Context, p *pipeline.Payload) (dag.Result, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return dag.Result{}, errors.Wrap(errors.ErrCodeInvalidPayload, err, "encode pipeline")
	}

	endpoint := c.baseURL + ParsePath
	var resp pipeline.Response
	err = httputil.Retry(ctx, c.backoff, func(attempt int) error {
		if attempt > 0 {
			c.logger.Debug("retrying validation request", "url", endpoint, "attempt", attempt+1)
		}
		return c.post(ctx, endpoint, body, &resp)
	})
	if err != nil {
		return dag.Result{}, err
	}
	return resp.Result(), nil
}

// ParseOrFallback is like [Parse] but never fails: on any error it logs the
// cause and returns [Fallback] for p.
func (c *Client) ParseOrFallback(ctx context.Context, p *pipeline.Payload) dag.Result {
	res, err := c.Parse(ctx, p)
	if err != nil {
		c.logger.Warn("pipeline validation failed", "url", c.baseURL, "error", err)
		return Fallback(p)
	}
	return res
}

// Fallback is the result reported when the server cannot be reached: the
// local counts, not a DAG, and [FallbackMessage].
func Fallback(p *pipeline.Payload) dag.Result {
	return dag.Result{
		NodeCount: len(p.Nodes),
		EdgeCount: len(p.Edges),
		IsAcyclic: false,
		Message:   FallbackMessage,
	}
}

// Precheck validates p locally with the client's edge policy so callers can
// skip the round trip for graphs that are already known to be invalid.
func (c *Client) Precheck(p *pipeline.Payload) (dag.Report, error) {
	nodes, edges := p.Graph()
	return c.local.Check(nodes, edges)
}

func (c *Client) post(ctx context.Context, endpoint string, body []byte, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	host, path := req.URL.Host, req.URL.Path
	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		return transportError(endpoint, err)
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := httputil.CheckStatus(resp.StatusCode); err != nil {
		return statusError(resp, err)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeUnavailable, err, "decode response from %s", endpoint)
	}
	return nil
}

func transportError(endpoint string, err error) error {
	code := errors.ErrCodeNetwork
	var ne net.Error
	if stderrors.Is(err, context.DeadlineExceeded) || (stderrors.As(err, &ne) && ne.Timeout()) {
		code = errors.ErrCodeTimeout
	}
	var ue *url.Error
	if stderrors.As(err, &ue) {
		err = ue.Err
	}
	wrapped := errors.Wrap(code, err, "POST %s", endpoint)
	if stderrors.Is(err, context.Canceled) {
		return wrapped
	}
	return &httputil.RetryableError{Err: wrapped}
}

// apiError is the server's error body.
type apiError struct {
	Error struct {
		Code    errors.Code `json:"code"`
		Message string      `json:"message"`
	} `json:"error"`
}

func statusError(resp *http.Response, statusErr error) error {
	code := errors.ErrCodeInvalidPayload
	if resp.StatusCode >= 500 {
		code = errors.ErrCodeUnavailable
	}
	msg := fmt.Sprintf("server returned %s", resp.Status)

	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var body apiError
	if json.Unmarshal(data, &body) == nil && body.Error.Message != "" {
		if body.Error.Code != "" {
			code = body.Error.Code
		}
		msg = body.Error.Message
	}
	return errors.Wrap(code, statusErr, "%s", msg)
}
