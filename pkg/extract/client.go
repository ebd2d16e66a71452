package extract

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
	"github.com/sony/gobreaker"

	"github.com/matzehuels/intentgraph/pkg/buildinfo"
	"github.com/matzehuels/intentgraph/pkg/config"
	"github.com/matzehuels/intentgraph/pkg/errors"
	"github.com/matzehuels/intentgraph/pkg/observability"
	"github.com/matzehuels/intentgraph/pkg/tree"
)

// maxResponseSize caps the body read from the service. Larger responses fail
// with EXTRACTION_FAILED.
const maxResponseSize = 16 << 20

// Client calls a remote extraction service over HTTP.
//
// Each call is bounded by the configured timeout. Transport errors and 5xx
// responses are retried with exponential backoff, and the whole retried call
// runs inside a circuit breaker so a dead service fails fast. Every failure
// surfaces as EXTRACTION_FAILED; a response that is not a valid tree is
// INVALID_TREE_STRUCTURE.
type Client struct {
	url      string
	http     *http.Client
	breaker  *gobreaker.CircuitBreaker
	timeout  time.Duration
	attempts int
	delay    time.Duration
	maxBody  int64
	logger   *log.Logger
}

// NewClient creates a client for cfg.URL. A nil logger uses log.Default().
func NewClient(cfg config.ExtractConfig, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.Default()
	}
	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}
	c := &Client{
		url:      cfg.URL,
		http:     &http.Client{},
		timeout:  cfg.Timeout,
		attempts: max(cfg.Retries, 1),
		delay:    500 * time.Millisecond,
		maxBody:  maxResponseSize,
		logger:   logger,
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "extract",
		Timeout: cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
		IsSuccessful: func(err error) bool {
			// caller cancellation says nothing about the service
			return err == nil || stderrors.Is(err, context.Canceled)
		},
	})
	return c
}

// Extract posts the records, scenario and prior tree and decodes the
// service's tree.
func (c *Client) Extract(ctx context.Context, records []tree.Entry, scenario string, prior *tree.Tree) (*tree.Tree, error) {
	if records == nil {
		records = []tree.Entry{}
	}
	body, err := json.Marshal(Request{Records: records, Scenario: scenario, Tree: prior})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode extraction request")
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var data []byte
	_, err = c.breaker.Execute(func() (any, error) {
		return nil, Retry(ctx, c.attempts, c.delay, func() error {
			var err error
			data, err = c.post(ctx, body)
			if err != nil {
				c.logger.Debug("extraction attempt failed", "err", err)
			}
			return err
		})
	})
	if err != nil {
		if stderrors.Is(err, gobreaker.ErrOpenState) || stderrors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, errors.Wrap(errors.ErrCodeExtraction, err, "extraction service unavailable")
		}
		return nil, errors.Wrap(errors.ErrCodeExtraction, err, "extraction failed")
	}
	return tree.Parse(data)
}

func (c *Client) post(ctx context.Context, body []byte) ([]byte, error) {
	host, path := hostPath(c.url)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", buildinfo.UserAgent())

	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, &RetryableError{Err: fmt.Errorf("request: %w", err)}
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, &RetryableError{Err: fmt.Errorf("read response: %w", err)}
	}
	if int64(len(data)) > c.maxBody {
		return nil, fmt.Errorf("response too large (over %d bytes)", c.maxBody)
	}
	return data, nil
}

func checkStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code >= 500:
		return &RetryableError{Err: fmt.Errorf("status %d", code)}
	default:
		return fmt.Errorf("status %d", code)
	}
}

func hostPath(raw string) (string, string) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", raw
	}
	return u.Host, u.Path
}

var _ Extractor = (*Client)(nil)
