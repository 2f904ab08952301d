package tracking

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultTimeout bounds every call to the tracking service.
const DefaultTimeout = 30 * time.Second

// APIKeyHeader carries the auth key on every request.
const APIKeyHeader = "x-api-key"

// SequenceUpdate is the body of a sequence status update.
type SequenceUpdate struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// outputRecord is the body of an output creation.
type outputRecord struct {
	SequenceID string `json:"sequence_id,omitempty"`
	Data       any    `json:"data"`
}

// Client talks to the remote tracking service. It never retries; callers
// decide what a failed call means.
type Client struct {
	resty *resty.Client
}

// NewClient creates a client for baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	restyClient := resty.New()
	restyClient.
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", "sequence-runner/1.0")

	return &Client{resty: restyClient}
}

// UpdateSequence sends a status update for sequenceID.
func (c *Client) UpdateSequence(ctx context.Context, authKey, sequenceID string, update SequenceUpdate) error {
	resp, err := c.resty.R().
		SetContext(ctx).
		SetHeader(APIKeyHeader, authKey).
		SetPathParam("id", sequenceID).
		SetBody(update).
		Put("/sequence/{id}")
	if err != nil {
		return fmt.Errorf("sequence update request failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("sequence update rejected: HTTP %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}

// CreateOutput stores one output record, attached to sequenceID when set.
func (c *Client) CreateOutput(ctx context.Context, authKey, sequenceID string, data any) error {
	resp, err := c.resty.R().
		SetContext(ctx).
		SetHeader(APIKeyHeader, authKey).
		SetBody(outputRecord{SequenceID: sequenceID, Data: data}).
		Post("/output")
	if err != nil {
		return fmt.Errorf("output request failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("output rejected: HTTP %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}

// Output returns a sink bound to authKey and sequenceID.
func (c *Client) Output(authKey, sequenceID string) *Output {
	return &Output{client: c, authKey: authKey, sequenceID: sequenceID}
}

// Output is the sink a task writes its results to.
type Output struct {
	client     *Client
	authKey    string
	sequenceID string
}

// Create stores data as one output record.
func (o *Output) Create(ctx context.Context, data any) error {
	return o.client.CreateOutput(ctx, o.authKey, o.sequenceID, data)
}

// SequenceID returns the tracked unit the sink attaches records to.
func (o *Output) SequenceID() string {
	return o.sequenceID
}
