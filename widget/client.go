package widget

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tieubaoca/chatwidget/types"
)

// CompletionsPath is the fixed endpoint the widget posts prompts to.
const CompletionsPath = "/langroid/agent/completions"

const contentTypeJSON = "application/json;charset=UTF-8"

var (
	ErrUnexpectedStatus = errors.New("unexpected response status")
	ErrMissingMessage   = errors.New("response has no message field")
)

// CompletionClient turns a prompt into the server's reply.
type CompletionClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// HTTPClient talks to the completions endpoint over HTTP.
type HTTPClient struct {
	baseURL   string
	agentName string
	client    *http.Client
}

type ClientOption func(*HTTPClient)

// WithAgentName addresses a named agent instead of the server default.
func WithAgentName(name string) ClientOption {
	return func(c *HTTPClient) {
		c.agentName = name
	}
}

// WithTimeout bounds each request. Zero means no timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.client.Timeout = d
	}
}

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *HTTPClient) {
		c.client = hc
	}
}

func NewHTTPClient(baseURL string, opts ...ClientOption) *HTTPClient {
	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *HTTPClient) Endpoint() string {
	return c.baseURL + CompletionsPath
}

type completionReply struct {
	Message *string `json:"message"`
}

func (c *HTTPClient) Complete(ctx context.Context, prompt string) (string, error) {
	var reply completionReply
	err := c.postJSON(ctx, CompletionsPath, types.CompletionRequest{
		AgentName: c.agentName,
		Prompt:    prompt,
	}, &reply)
	if err != nil {
		return "", err
	}
	if reply.Message == nil {
		return "", ErrMissingMessage
	}
	return *reply.Message, nil
}

// AgentPath creates named agents on the server.
const AgentPath = "/langroid/agent"

// CreateAgent asks the server to register an agent and returns the server's
// confirmation message.
func (c *HTTPClient) CreateAgent(ctx context.Context, name string) (string, error) {
	var reply types.MessageResponse
	if err := c.postJSON(ctx, AgentPath, types.CreateAgentRequest{AgentName: name}, &reply); err != nil {
		return "", err
	}
	return reply.Message, nil
}

// postJSON posts body to path and decodes a 200 response into out. Any other
// status is ErrUnexpectedStatus.
func (c *HTTPClient) postJSON(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("error marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", contentTypeJSON)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("error decoding response: %w", err)
	}
	return nil
}
