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
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/travelmesh/a2a-go/pkg/a2a"
	"github.com/travelmesh/a2a-go/pkg/errors"
	"github.com/travelmesh/a2a-go/pkg/jsonrpc"
)

const (
	// DefaultTimeout bounds each individual HTTP attempt.
	DefaultTimeout = 30 * time.Second
	// DefaultRetries is the total attempt budget for transport failures.
	DefaultRetries = 3
)

// AuthConfig describes the credentials attached to every request.
type AuthConfig struct {
	Type     a2a.AuthType
	Token    string
	Username string
	Password string
	// Headers is the header map sent for the custom scheme
	Headers map[string]string
}

// Config configures a client against one A2A server.
type Config struct {
	BaseURL string
	Auth    *AuthConfig
	// Timeout per attempt; DefaultTimeout when zero
	Timeout time.Duration
	// Retries is the total attempt budget; DefaultRetries when zero
	Retries int
}

/*
Client issues JSON-RPC calls against one fixed A2A server base URL.
Transport failures are retried with exponential backoff; JSON-RPC error
responses are authoritative protocol outcomes and are returned to the
caller immediately without a retry.
*/
type Client struct {
	baseURL string
	conn    *http.Client
	auth    *AuthConfig
	timeout time.Duration
	retry   *errors.RetryConfig
	seq     atomic.Int64
}

// New creates a client for the given server.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	retry := errors.DefaultRetryConfig()
	if cfg.Retries > 0 {
		retry.MaxAttempts = cfg.Retries
	} else {
		retry.MaxAttempts = DefaultRetries
	}

	return &Client{
		baseURL: cfg.BaseURL,
		conn:    &http.Client{},
		auth:    cfg.Auth,
		timeout: timeout,
		retry:   retry,
	}
}

// BaseURL returns the server base URL this client is bound to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Discover returns the agent cards the server publishes, optionally
// narrowed by filter terms.
func (c *Client) Discover(ctx context.Context, filter ...string) ([]a2a.AgentCard, error) {
	var result a2a.DiscoverResult

	params := a2a.DiscoverParams{Filter: filter}

	if err := c.call(ctx, a2a.MethodDiscover, params, &result); err != nil {
		return nil, err
	}

	return result.Agents, nil
}

// ListAgents is an alias for an unfiltered Discover.
func (c *Client) ListAgents(ctx context.Context) ([]a2a.AgentCard, error) {
	return c.Discover(ctx)
}

// Execute invokes one capability on one remote agent.
func (c *Client) Execute(
	ctx context.Context,
	agentID string,
	capability string,
	input any,
	callContext map[string]any,
	metadata map[string]any,
) (*a2a.ExecuteResult, error) {
	params := a2a.ExecuteParams{
		AgentID:    agentID,
		Capability: capability,
		Input:      input,
		Context:    callContext,
		Metadata:   metadata,
	}

	var result a2a.ExecuteResult

	if err := c.call(ctx, a2a.MethodExecute, params, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// Status reports the liveness of one agent, or the server aggregate when
// agentID is empty.
func (c *Client) Status(ctx context.Context, agentID string) (*a2a.StatusResult, error) {
	var result a2a.StatusResult

	if err := c.call(ctx, a2a.MethodStatus, a2a.StatusParams{AgentID: agentID}, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// IsAgentAvailable reports whether the server knows the agent and, when a
// capability is given, whether the agent declares it; with no capability
// it falls back to checking the agent reports active.
func (c *Client) IsAgentAvailable(ctx context.Context, agentID, capability string) (bool, error) {
	cards, err := c.Discover(ctx, agentID)

	if err != nil {
		return false, err
	}

	for _, card := range cards {
		if card.ID != agentID {
			continue
		}

		if capability != "" {
			return card.HasCapability(capability), nil
		}

		status, err := c.Status(ctx, agentID)

		if err != nil {
			var rpcErr *errors.RpcError
			if stderrors.As(err, &rpcErr) {
				// a protocol error here means "not available", not a fault
				return false, nil
			}
			return false, err
		}

		return status.Status == a2a.StatusActive, nil
	}

	return false, nil
}

// nextID combines a per-client counter with a timestamp: unique enough to
// correlate logs, no global uniqueness needed.
func (c *Client) nextID() string {
	return fmt.Sprintf("%d-%d", c.seq.Add(1), time.Now().UnixMilli())
}

// call performs one logical JSON-RPC call, retrying transport failures
// sequentially with exponential backoff until the attempt budget runs out.
func (c *Client) call(ctx context.Context, method string, params any, result any) error {
	req, err := jsonrpc.NewRequest(method, params, c.nextID())

	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", method, err)
	}

	body, err := json.Marshal(req)

	if err != nil {
		return fmt.Errorf("failed to marshal request for %s: %w", method, err)
	}

	var lastErr *TransportError

	for attempt := 1; attempt <= c.retry.MaxAttempts; attempt++ {
		resp, transportErr := c.attempt(ctx, body)

		if transportErr == nil {
			// A populated error field is a defined protocol outcome, never
			// retried.
			if rpcErr := resp.RpcError(); rpcErr != nil {
				return rpcErr
			}

			if result != nil {
				if err := resp.UnmarshalResult(result); err != nil {
					return fmt.Errorf("failed to decode %s result: %w", method, err)
				}
			}

			return nil
		}

		lastErr = transportErr

		log.Warn("transport failure",
			"method", method, "attempt", attempt,
			"timeout", transportErr.Timeout, "error", transportErr.Err)

		if err := ctx.Err(); err != nil {
			return err
		}

		if attempt < c.retry.MaxAttempts {
			select {
			case <-time.After(c.retry.Delay(attempt)):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	lastErr.Attempts = c.retry.MaxAttempts
	return lastErr
}

// attempt performs a single HTTP exchange bounded by the per-attempt
// timeout. Any HTTP status is accepted as long as the body parses into a
// valid JSON-RPC response; everything else is a transport failure.
func (c *Client) attempt(ctx context.Context, body []byte) (*jsonrpc.Response, *TransportError) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(
		attemptCtx, http.MethodPost, c.baseURL+a2a.EndpointPath, bytes.NewReader(body))

	if err != nil {
		return nil, &TransportError{Err: err}
	}

	httpReq.Header.Set("Content-Type", "application/json")

	if err := c.applyAuth(httpReq); err != nil {
		return nil, &TransportError{Err: err}
	}

	httpResp, err := c.conn.Do(httpReq)

	if err != nil {
		return nil, c.classify(attemptCtx, err)
	}

	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)

	if err != nil {
		return nil, c.classify(attemptCtx, err)
	}

	var resp jsonrpc.Response

	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &TransportError{Err: fmt.Errorf(
			"invalid JSON-RPC response (HTTP %d): %w", httpResp.StatusCode, err)}
	}

	if !resp.Valid() {
		return nil, &TransportError{Err: fmt.Errorf(
			"protocol violation: malformed JSON-RPC response (HTTP %d)", httpResp.StatusCode)}
	}

	return &resp, nil
}

// classify separates a per-attempt timeout from other transport faults so
// callers can tell "never responded" apart from "actively refused".
func (c *Client) classify(attemptCtx context.Context, err error) *TransportError {
	if stderrors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
		return &TransportError{Timeout: true, Err: err}
	}

	var netErr net.Error
	if stderrors.As(err, &netErr) && netErr.Timeout() {
		return &TransportError{Timeout: true, Err: err}
	}

	return &TransportError{Err: err}
}

func (c *Client) applyAuth(req *http.Request) error {
	if c.auth == nil {
		return nil
	}

	switch c.auth.Type {
	case "", a2a.AuthTypeNone:
		return nil
	case a2a.AuthTypeBearer:
		req.Header.Set("Authorization", "Bearer "+c.auth.Token)
	case a2a.AuthTypeBasic:
		req.SetBasicAuth(c.auth.Username, c.auth.Password)
	case a2a.AuthTypeCustom:
		for key, value := range c.auth.Headers {
			req.Header.Set(key, value)
		}
	default:
		return fmt.Errorf("unsupported authentication type: %s", c.auth.Type)
	}

	return nil
}
