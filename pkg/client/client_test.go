package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travelmesh/a2a-go/pkg/a2a"
	"github.com/travelmesh/a2a-go/pkg/errors"
	"github.com/travelmesh/a2a-go/pkg/jsonrpc"
)

// fastClient shrinks the backoff delays so retry tests run in
// milliseconds instead of seconds.
func fastClient(cfg Config) *Client {
	c := New(cfg)
	c.retry.InitialDelay = time.Millisecond
	c.retry.MaxDelay = 5 * time.Millisecond
	return c
}

// fakeServer runs an httptest server whose handler receives the decoded
// request and returns the response to send back.
func fakeServer(t *testing.T, handle func(req jsonrpc.Request) jsonrpc.Response) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, a2a.EndpointPath, r.URL.Path)

		var req jsonrpc.Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(handle(req)))
	}))
}

func TestRetriesTransportFailures(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			// not a JSON-RPC envelope, so the client treats it as a
			// transport failure and retries
			w.Write([]byte("garbage"))
			return
		}

		var req jsonrpc.Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		json.NewEncoder(w).Encode(jsonrpc.NewResponse(req.ID, a2a.StatusResult{Status: a2a.StatusActive}))
	}))
	defer srv.Close()

	c := fastClient(Config{BaseURL: srv.URL})

	status, err := c.Status(context.Background(), "")

	require.NoError(t, err)
	assert.Equal(t, a2a.StatusActive, status.Status)
	assert.Equal(t, int32(3), calls.Load())
}

func TestNoRetryOnRpcError(t *testing.T) {
	var calls atomic.Int32

	srv := fakeServer(t, func(req jsonrpc.Request) jsonrpc.Response {
		calls.Add(1)
		return jsonrpc.NewErrorResponse(req.ID, errors.ErrAgentNotFound.WithMessagef("Agent not found: ghost"))
	})
	defer srv.Close()

	c := fastClient(Config{BaseURL: srv.URL})

	_, err := c.Status(context.Background(), "ghost")

	var rpcErr *errors.RpcError
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, -32001, rpcErr.Code)
	assert.Equal(t, int32(1), calls.Load(), "protocol errors must not be retried")
}

func TestGivesUpAfterAttemptBudget(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte("garbage"))
	}))
	defer srv.Close()

	c := fastClient(Config{BaseURL: srv.URL, Retries: 3})

	_, err := c.Status(context.Background(), "")

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, 3, transportErr.Attempts)
	assert.False(t, transportErr.Timeout)
	assert.Equal(t, int32(3), calls.Load())
}

func TestTimeoutIsClassified(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := fastClient(Config{BaseURL: srv.URL, Timeout: 20 * time.Millisecond, Retries: 1})

	_, err := c.Status(context.Background(), "")

	require.Error(t, err)
	assert.True(t, IsTimeout(err))
}

func TestHTTPStatusIrrelevantWhenEnvelopeValid(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(jsonrpc.NewErrorResponse(
			json.RawMessage(`1`), errors.ErrInvalidRequest))
	}))
	defer srv.Close()

	c := fastClient(Config{BaseURL: srv.URL})

	_, err := c.Status(context.Background(), "")

	var rpcErr *errors.RpcError
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, -32600, rpcErr.Code)
	assert.Equal(t, int32(1), calls.Load(), "a parsable error envelope is authoritative")
}

func TestDiscoverAndExecute(t *testing.T) {
	card := a2a.AgentCard{
		ID: "triage-agent", Name: "Triage Agent", Version: a2a.ProtocolVersion,
		Capabilities: []a2a.AgentCapability{{Type: a2a.CapabilityTypeText, Name: "triage"}},
	}

	srv := fakeServer(t, func(req jsonrpc.Request) jsonrpc.Response {
		switch req.Method {
		case a2a.MethodDiscover:
			return jsonrpc.NewResponse(req.ID, a2a.DiscoverResult{Agents: []a2a.AgentCard{card}})
		case a2a.MethodExecute:
			var params a2a.ExecuteParams
			if err := json.Unmarshal(req.Params, &params); err != nil {
				return jsonrpc.NewErrorResponse(req.ID, errors.ErrInvalidParams)
			}
			return jsonrpc.NewResponse(req.ID, a2a.ExecuteResult{
				Output:  map[string]any{"message": "routed"},
				Context: params.Context,
			})
		default:
			return jsonrpc.NewErrorResponse(req.ID, errors.ErrMethodNotFound)
		}
	})
	defer srv.Close()

	c := fastClient(Config{BaseURL: srv.URL})
	ctx := context.Background()

	agents, err := c.Discover(ctx, "triage")
	require.NoError(t, err)
	require.Len(t, agents, 1)
	assert.Equal(t, "triage-agent", agents[0].ID)

	result, err := c.Execute(ctx, "triage-agent", "triage", "beach holiday",
		map[string]any{"session_id": "s-1"}, nil)
	require.NoError(t, err)

	output, ok := result.Output.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "routed", output["message"])
	assert.Equal(t, map[string]any{"session_id": "s-1"}, result.Context)
}

func TestIsAgentAvailable(t *testing.T) {
	card := a2a.AgentCard{
		ID: "triage-agent", Name: "Triage Agent", Version: a2a.ProtocolVersion,
		Capabilities: []a2a.AgentCapability{{Type: a2a.CapabilityTypeText, Name: "triage"}},
	}

	srv := fakeServer(t, func(req jsonrpc.Request) jsonrpc.Response {
		switch req.Method {
		case a2a.MethodDiscover:
			var params a2a.DiscoverParams
			json.Unmarshal(req.Params, &params)
			if card.Matches(params.Filter) {
				return jsonrpc.NewResponse(req.ID, a2a.DiscoverResult{Agents: []a2a.AgentCard{card}})
			}
			return jsonrpc.NewResponse(req.ID, a2a.DiscoverResult{Agents: []a2a.AgentCard{}})
		case a2a.MethodStatus:
			return jsonrpc.NewResponse(req.ID, a2a.StatusResult{Status: a2a.StatusActive})
		default:
			return jsonrpc.NewErrorResponse(req.ID, errors.ErrMethodNotFound)
		}
	})
	defer srv.Close()

	c := fastClient(Config{BaseURL: srv.URL})
	ctx := context.Background()

	available, err := c.IsAgentAvailable(ctx, "triage-agent", "triage")
	require.NoError(t, err)
	assert.True(t, available)

	available, err = c.IsAgentAvailable(ctx, "triage-agent", "teleport")
	require.NoError(t, err)
	assert.False(t, available)

	available, err = c.IsAgentAvailable(ctx, "triage-agent", "")
	require.NoError(t, err)
	assert.True(t, available)

	available, err = c.IsAgentAvailable(ctx, "ghost", "")
	require.NoError(t, err)
	assert.False(t, available)
}

func TestAuthHeadersApplied(t *testing.T) {
	var authorization, custom string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authorization = r.Header.Get("Authorization")
		custom = r.Header.Get("X-Api-Key")

		var req jsonrpc.Request
		json.NewDecoder(r.Body).Decode(&req)
		json.NewEncoder(w).Encode(jsonrpc.NewResponse(req.ID, a2a.StatusResult{Status: a2a.StatusActive}))
	}))
	defer srv.Close()

	ctx := context.Background()

	bearer := fastClient(Config{BaseURL: srv.URL, Auth: &AuthConfig{
		Type: a2a.AuthTypeBearer, Token: "sesame",
	}})
	_, err := bearer.Status(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "Bearer sesame", authorization)

	basic := fastClient(Config{BaseURL: srv.URL, Auth: &AuthConfig{
		Type: a2a.AuthTypeBasic, Username: "alice", Password: "secret",
	}})
	_, err = basic.Status(ctx, "")
	require.NoError(t, err)
	assert.Contains(t, authorization, "Basic ")

	customClient := fastClient(Config{BaseURL: srv.URL, Auth: &AuthConfig{
		Type: a2a.AuthTypeCustom, Headers: map[string]string{"X-Api-Key": "k-123"},
	}})
	_, err = customClient.Status(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "k-123", custom)

	unsupported := fastClient(Config{BaseURL: srv.URL, Auth: &AuthConfig{Type: "voodoo"}})
	_, err = unsupported.Status(ctx, "")
	assert.Error(t, err)
}
