package submission

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eringen/toolkit/logging"
	"github.com/eringen/toolkit/metrics"
)

// IDHeader carries the submission id to the webhook.
const IDHeader = "X-Submission-ID"

const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Receipt describes a dispatched submission.
type Receipt struct {
	ID          string    `json:"id"`
	SubmittedAt time.Time `json:"submittedAt"`
	// Status is informational only; the webhook response is not inspected.
	Status int `json:"-"`
}

type payload struct {
	Form
	Timestamp string `json:"timestamp"`
}

// Client posts submissions to a webhook.
type Client struct {
	url     string
	client  *http.Client
	now     func() time.Time
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client. The default has a 10 second timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.client = hc
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = logging.OrNop(l) }
}

// WithMetrics sets the collectors submission outcomes are counted in.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient creates a Client for the webhook at url.
func NewClient(url string, opts ...Option) *Client {
	c := &Client{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Submit normalizes and validates f, then posts it with a timestamp. Only
// transport failures are reported; any response counts as delivered.
func (c *Client) Submit(ctx context.Context, f Form) (Receipt, error) {
	f.Normalize()
	if err := f.Validate(); err != nil {
		c.metrics.Submission(metrics.SubmissionInvalid)
		return Receipt{}, err
	}

	rc := Receipt{ID: uuid.NewString(), SubmittedAt: c.now().UTC()}
	body, err := json.Marshal(payload{Form: f, Timestamp: rc.SubmittedAt.Format(timestampLayout)})
	if err != nil {
		return Receipt{}, fmt.Errorf("encode submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		c.metrics.Submission(metrics.SubmissionFailed)
		return Receipt{}, fmt.Errorf("build submission request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(IDHeader, rc.ID)

	resp, err := c.client.Do(req)
	if err != nil {
		c.metrics.Submission(metrics.SubmissionFailed)
		c.logger.Error("submission failed", zap.String("submission_id", rc.ID), zap.Error(err))
		return Receipt{}, fmt.Errorf("send submission: %w", err)
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()

	rc.Status = resp.StatusCode
	c.metrics.Submission(metrics.SubmissionSent)
	c.logger.Info("submission sent",
		zap.String("submission_id", rc.ID),
		zap.String("url", f.URL),
		zap.Int("status", resp.StatusCode),
	)
	return rc, nil
}

// IsValidation reports whether err is a *ValidationError and returns it.
func IsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
