// Package client talks to the business backend REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Session attaches credentials to outgoing requests.
type Session interface {
	Authorize(r *http.Request)
}

// BearerToken authorizes with "Authorization: Bearer <token>". The function
// is called per request so a refreshed token is picked up.
type BearerToken func() string

func (t BearerToken) Authorize(r *http.Request) {
	if tok := t(); tok != "" {
		r.Header.Set("Authorization", "Bearer "+tok)
	}
}

type BasicAuth struct {
	User     string
	Password string
}

func (b BasicAuth) Authorize(r *http.Request) {
	if b.User != "" {
		r.SetBasicAuth(b.User, b.Password)
	}
}

// Notifier shows a failure to the user once.
type Notifier interface {
	Notify(err error)
}

type NotifierFunc func(err error)

func (f NotifierFunc) Notify(err error) { f(err) }

type Client struct {
	baseURL  string
	http     *http.Client
	session  Session
	logger   *zap.Logger
	notifier Notifier

	mu       sync.Mutex
	inflight map[string]struct{}
	waiting  map[string]int
	reads    singleflight.Group
}

const defaultTimeout = 30 * time.Second

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithSession(s Session) Option {
	return func(c *Client) { c.session = s }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func WithNotifier(n Notifier) Option {
	return func(c *Client) { c.notifier = n }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: defaultTimeout},
		logger:   zap.NewNop(),
		inflight: make(map[string]struct{}),
		waiting:  make(map[string]int),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// get decodes the data of a GET into out. Identical concurrent reads share
// one round trip, which is detached from any single caller: a caller that
// gives up returns its own ctx error and leaves the others waiting.
func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	c.join(path)
	defer c.leave(path)

	ch := c.reads.DoChan(path, func() (interface{}, error) {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout())
		defer cancel()
		data, err := c.exchange(sctx, http.MethodGet, path, nil)
		if err != nil && c.watched(path) {
			c.report(http.MethodGet, path, err)
		}
		return data, err
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return res.Err
		}
		if err := decodeData(res.Val.(json.RawMessage), out); err != nil {
			c.fail(ctx, http.MethodGet, path, err)
			return err
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: GET %s: %w", ErrTransport, path, ctx.Err())
	}
}

func (c *Client) timeout() time.Duration {
	if c.http.Timeout > 0 {
		return c.http.Timeout
	}
	return defaultTimeout
}

func (c *Client) join(path string) {
	c.mu.Lock()
	c.waiting[path]++
	c.mu.Unlock()
}

func (c *Client) leave(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.waiting[path]--; c.waiting[path] <= 0 {
		delete(c.waiting, path)
	}
}

// watched reports whether any caller still waits on a shared read.
func (c *Client) watched(path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.waiting[path] > 0
}

// send runs a mutation. A second call with the same method and path fails
// with ErrInFlight until the first one returns.
func (c *Client) send(ctx context.Context, method, path string, body, out interface{}) error {
	key := method + " " + path
	if !c.acquire(key) {
		return fmt.Errorf("%s: %w", key, ErrInFlight)
	}
	defer c.release(key)

	data, err := c.exchange(ctx, method, path, body)
	if err == nil {
		err = decodeData(data, out)
	}
	if err != nil {
		c.fail(ctx, method, path, err)
	}
	return err
}

func (c *Client) acquire(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.inflight[key]; busy {
		return false
	}
	c.inflight[key] = struct{}{}
	return true
}

func (c *Client) release(key string) {
	c.mu.Lock()
	delete(c.inflight, key)
	c.mu.Unlock()
}

// Pending reports whether a mutation with method and path is running.
func (c *Client) Pending(method, path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, busy := c.inflight[method+" "+path]
	return busy
}

// fail reports err unless the caller has already gone away.
func (c *Client) fail(ctx context.Context, method, path string, err error) {
	if ctx.Err() != nil {
		return
	}
	c.report(method, path, err)
}

func (c *Client) report(method, path string, err error) {
	c.logger.Warn("request failed",
		zap.String("method", method), zap.String("path", path), zap.Error(err))
	if c.notifier != nil {
		c.notifier.Notify(err)
	}
}

func (c *Client) exchange(ctx context.Context, method, path string, body interface{}) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.session != nil {
		c.session.Authorize(req)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", ErrTransport, method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s %s: %w", ErrTransport, method, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apiError(resp.StatusCode, raw)
	}
	return unwrap(resp.StatusCode, raw)
}

type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

// unwrap accepts {success,data}, {data} or a bare JSON value and returns
// the payload; a missing or null payload comes back as nil.
func unwrap(status int, raw []byte) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if !json.Valid(trimmed) {
		return nil, fmt.Errorf("%w: body is not JSON", ErrMalformed)
	}
	if trimmed[0] != '{' {
		return json.RawMessage(trimmed), nil
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &keys); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	_, hasSuccess := keys["success"]
	_, hasData := keys["data"]
	if !hasSuccess && !hasData {
		return json.RawMessage(trimmed), nil
	}

	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if env.Success != nil && !*env.Success {
		return nil, &APIError{StatusCode: status, Code: env.Error, Message: env.message()}
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil, nil
	}
	return env.Data, nil
}

func (e envelope) message() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Error != "":
		return e.Error
	default:
		return "request failed"
	}
}

func apiError(status int, raw []byte) *APIError {
	apiErr := &APIError{StatusCode: status}
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && (env.Message != "" || env.Error != "") {
		apiErr.Code = env.Error
		apiErr.Message = env.message()
		return apiErr
	}
	apiErr.Message = strings.TrimSpace(string(raw))
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}

func decodeData(data json.RawMessage, out interface{}) error {
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return nil
}

// list keeps a nil payload as an empty, non-nil slice.
func list[T any](ctx context.Context, c *Client, path string, query url.Values) ([]T, error) {
	var items []T
	if err := c.get(ctx, path, query, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func one[T any](ctx context.Context, c *Client, path string) (*T, error) {
	var item T
	if err := c.get(ctx, path, nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func seg(s string) string {
	return url.PathEscape(s)
}

var errEmptyID = errors.New("empty id")

func requireID(id string) error {
	if strings.TrimSpace(id) == "" {
		return errEmptyID
	}
	return nil
}
