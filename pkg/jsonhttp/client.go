package jsonhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bft-labs/jsonfetch/pkg/jsonvalue"
	"github.com/bft-labs/jsonfetch/pkg/log"
)

const contentTypeJSON = "application/json"

// Client issues JSON requests. It holds no per-call state and is safe for
// concurrent use.
type Client struct {
	client HTTPClient
	logger log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the transport used for requests. Defaults to
// http.DefaultClient.
func WithHTTPClient(client HTTPClient) Option {
	return func(c *Client) {
		if client != nil {
			c.client = client
		}
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger log.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a Client.
func New(opts ...Option) *Client {
	c := &Client{
		client: http.DefaultClient,
		logger: log.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchJSON sends a GET to url and returns the decoded response body.
func (c *Client) FetchJSON(ctx context.Context, url string) (jsonvalue.Value, error) {
	body, err := c.do(ctx, http.MethodGet, url, nil)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	return decodeValue(url, body)
}

// PostJSON serializes payload, POSTs it to url and returns the decoded
// response body. A jsonvalue.Value payload is sent with its member order
// intact.
func (c *Client) PostJSON(ctx context.Context, url string, payload any) (jsonvalue.Value, error) {
	encoded, err := encodePayload(payload)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	body, err := c.do(ctx, http.MethodPost, url, encoded)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	return decodeValue(url, body)
}

// FetchInto is FetchJSON decoding into out, which must be a pointer.
// A nil out discards the body.
func (c *Client) FetchInto(ctx context.Context, url string, out any) error {
	body, err := c.do(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	return decodeInto(url, body, out)
}

// PostInto is PostJSON decoding into out, which must be a pointer.
// A nil out discards the body.
func (c *Client) PostInto(ctx context.Context, url string, payload, out any) error {
	encoded, err := encodePayload(payload)
	if err != nil {
		return err
	}
	body, err := c.do(ctx, http.MethodPost, url, encoded)
	if err != nil {
		return err
	}
	return decodeInto(url, body, out)
}

// do performs one round trip and returns the body of a 2xx response.
// payload is nil for requests without a body.
func (c *Client) do(ctx context.Context, method, url string, payload []byte) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", contentTypeJSON)
	}

	c.logger.Debug("sending request",
		log.String("method", method),
		log.String("url", url),
		log.Int("payload_bytes", len(payload)),
	)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("received response",
		log.String("method", method),
		log.String("url", url),
		log.Int("status", resp.StatusCode),
		log.Duration("elapsed", time.Since(start)),
	)

	if !isSuccess(resp.StatusCode) {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &HTTPError{
			Method:     method,
			URL:        url,
			StatusCode: resp.StatusCode,
			Status:     statusText(resp),
			Payload:    string(payload),
			Body:       string(snippet),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}

func encodePayload(payload any) ([]byte, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, &EncodeError{Err: err}
	}
	return b, nil
}

func decodeValue(url string, body []byte) (jsonvalue.Value, error) {
	v, err := jsonvalue.Parse(body)
	if err != nil {
		return jsonvalue.Value{}, &DecodeError{URL: url, Err: err}
	}
	return v, nil
}

func decodeInto(url string, body []byte, out any) error {
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &DecodeError{URL: url, Err: err}
	}
	return nil
}

var defaultClient = New()

// FetchJSON calls Client.FetchJSON on a client using http.DefaultClient.
func FetchJSON(ctx context.Context, url string) (jsonvalue.Value, error) {
	return defaultClient.FetchJSON(ctx, url)
}

// PostJSON calls Client.PostJSON on a client using http.DefaultClient.
func PostJSON(ctx context.Context, url string, payload any) (jsonvalue.Value, error) {
	return defaultClient.PostJSON(ctx, url, payload)
}
