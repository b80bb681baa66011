// Package interpret calls the remote dream interpretation service.
package interpret

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DefaultPrompt is the instruction sent alongside every dream.
const DefaultPrompt = "Analise o seguinte sonho e me diga seu possível significado com base em interpretações comuns da simbologia dos sonhos. Seja objetivo e considere aspectos psicológicos e simbólicos tradicionais."

// maxErrorBody caps how much of a failed response is kept for the user message.
const maxErrorBody = 4 << 10

type request struct {
	Dream  string `json:"sonho"`
	Prompt string `json:"prompt"`
}

type response struct {
	Interpretation *string `json:"significado"`
}

// Client talks to one interpretation endpoint.
type Client struct {
	url        string
	prompt     string
	httpClient *http.Client
	logger     *slog.Logger

	inFlight atomic.Bool
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout replaces the overall request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient = &http.Client{Timeout: d}
		}
	}
}

// WithPrompt overrides DefaultPrompt. An empty prompt is ignored.
func WithPrompt(prompt string) Option {
	return func(c *Client) {
		if strings.TrimSpace(prompt) != "" {
			c.prompt = prompt
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a client posting to url.
func New(url string, opts ...Option) *Client {
	c := &Client{
		url:    url,
		prompt: DefaultPrompt,
		httpClient: &http.Client{
			Timeout: 45 * time.Second,
		},
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// URL returns the endpoint the client posts to.
func (c *Client) URL() string {
	return c.url
}

// Interpret sends description to the service and returns the interpretation text.
func (c *Client) Interpret(ctx context.Context, description string) (string, error) {
	payload, err := json.Marshal(request{Dream: description, Prompt: c.prompt})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", requestID)

	log := c.logger.With("request_id", requestID, "url", c.url)
	log.Debug("sending interpretation request", "bytes", len(payload))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("network error fetching interpretation", "error", err)
		return "", &NetworkError{URL: c.url, Err: err}
	}
	defer resp.Body.Close()

	log.Debug("interpretation response received", "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		text := strings.TrimSpace(string(body))
		if text == "" {
			text = http.StatusText(resp.StatusCode)
		}
		log.Error("interpretation request failed", "status", resp.StatusCode, "body", text)
		return "", &StatusError{StatusCode: resp.StatusCode, Body: text}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error("reading interpretation response failed", "error", err)
		return "", &NetworkError{URL: c.url, Err: err}
	}

	var out response
	if err := json.Unmarshal(body, &out); err != nil {
		log.Error("malformed interpretation response", "error", err)
		return "", &ResponseFormatError{Body: string(body), Err: err}
	}
	if out.Interpretation == nil {
		err := errors.New(`missing "significado" field`)
		log.Error("malformed interpretation response", "error", err)
		return "", &ResponseFormatError{Body: string(body), Err: err}
	}

	return *out.Interpretation, nil
}

// Task is a single interpretation running in the background.
type Task struct {
	group  *errgroup.Group
	done   chan struct{}
	result string
}

// Start runs Interpret on its own goroutine. Only one task per client may be
// in flight; a second Start before the first resolves returns ErrInFlight.
// Cancel ctx to abandon the request.
func (c *Client) Start(ctx context.Context, description string) (*Task, error) {
	if !c.inFlight.CompareAndSwap(false, true) {
		return nil, ErrInFlight
	}

	g, gctx := errgroup.WithContext(ctx)
	t := &Task{group: g, done: make(chan struct{})}
	g.Go(func() error {
		defer close(t.done)
		defer c.inFlight.Store(false)

		text, err := c.Interpret(gctx, description)
		if err != nil {
			return err
		}
		t.result = text
		return nil
	})
	return t, nil
}

// Busy reports whether a task started by Start is still running.
func (c *Client) Busy() bool {
	return c.inFlight.Load()
}

// Done is closed once the task has resolved.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the task resolves and returns its outcome.
func (t *Task) Wait() (string, error) {
	if err := t.group.Wait(); err != nil {
		return "", err
	}
	return t.result, nil
}
