package service

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/travelmesh/a2a-go/pkg/a2a"
	"github.com/travelmesh/a2a-go/pkg/errors"
	"github.com/travelmesh/a2a-go/pkg/jsonrpc"
)

// aggregateLoad is the placeholder load figure in the server-level status
// aggregate; a real deployment would derive it from queue depth.
const aggregateLoad = 0.1

/*
handleRPC is the single JSON-RPC endpoint. The request moves through
received, validated, dispatched and responded: a malformed envelope
short-circuits with HTTP 400, everything after that point is an HTTP 200
carrying either a result or a JSON-RPC error.
*/
func (srv *Server) handleRPC(c fiber.Ctx) error {
	c.Set("Content-Type", "application/json")

	body := c.Body()

	var req jsonrpc.Request

	if err := json.Unmarshal(body, &req); err != nil {
		// unparsable bytes are a parse error; valid JSON that is not a
		// request object (an array, a bare string) is an invalid request
		if !json.Valid(body) {
			return c.Status(fiber.StatusBadRequest).JSON(
				jsonrpc.NewErrorResponse(nil, errors.ErrParseError.WithData(err.Error())))
		}
		return c.Status(fiber.StatusBadRequest).JSON(
			jsonrpc.NewErrorResponse(extractID(body), errors.ErrInvalidRequest))
	}

	if !req.WellFormed() {
		return c.Status(fiber.StatusBadRequest).JSON(
			jsonrpc.NewErrorResponse(req.ID, errors.ErrInvalidRequest))
	}

	if srv.limiter != nil && !srv.limiter.Allow() {
		return c.JSON(jsonrpc.NewErrorResponse(req.ID, errors.ErrQuotaExceeded))
	}

	if srv.cfg.Auth != nil {
		if err := srv.cfg.Auth.Authorize(c); err != nil {
			return c.JSON(jsonrpc.NewErrorResponse(
				req.ID, errors.ErrAuthenticationFailed.WithData(err.Error())))
		}
	}

	logger := log.With("request", uuid.NewString(), "method", req.Method)

	switch req.Method {
	case a2a.MethodDiscover:
		return srv.handleDiscover(c, &req, logger)
	case a2a.MethodExecute:
		return srv.handleExecute(c, &req, logger)
	case a2a.MethodStatus:
		return srv.handleStatus(c, &req, logger)
	default:
		logger.Warn("unknown method")
		return c.JSON(jsonrpc.NewErrorResponse(
			req.ID, errors.ErrMethodNotFound.WithMessagef("Method not found: %s", req.Method)))
	}
}

// handleRPCGet rejects GET on the RPC endpoint with a JSON-RPC shaped
// body. Discovery is a POST like every other method, not a REST read.
func (srv *Server) handleRPCGet(c fiber.Ctx) error {
	c.Set("Content-Type", "application/json")
	return c.JSON(jsonrpc.NewErrorResponse(nil, errors.ErrMethodNotFound.WithMessagef(
		"Method not found: use POST %s with a JSON-RPC 2.0 body", a2a.EndpointPath)))
}

func (srv *Server) handleDiscover(c fiber.Ctx, req *jsonrpc.Request, logger *log.Logger) error {
	var params a2a.DiscoverParams

	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return c.JSON(jsonrpc.NewErrorResponse(req.ID, errors.ErrInvalidParams))
		}
	}

	agents := make([]a2a.AgentCard, 0)

	for _, card := range srv.cards() {
		if card.Matches(params.Filter) {
			agents = append(agents, card)
		}
	}

	logger.Debug("discovery served", "agents", len(agents), "filter", params.Filter)

	return c.JSON(jsonrpc.NewResponse(req.ID, a2a.DiscoverResult{Agents: agents}))
}

func (srv *Server) handleExecute(c fiber.Ctx, req *jsonrpc.Request, logger *log.Logger) error {
	var params a2a.ExecuteParams

	if err := json.Unmarshal(req.Params, &params); err != nil {
		return c.JSON(jsonrpc.NewErrorResponse(req.ID, errors.ErrInvalidParams))
	}

	ag, ok := srv.findAgent(params.AgentID)

	if !ok {
		return c.JSON(jsonrpc.NewErrorResponse(req.ID,
			errors.ErrAgentNotFound.WithMessagef("Agent not found: %s", params.AgentID)))
	}

	if card := ag.Card(); !card.HasCapability(params.Capability) {
		return c.JSON(jsonrpc.NewErrorResponse(req.ID,
			errors.ErrCapabilityNotSupported.WithMessagef(
				"Agent %s does not support capability %s", params.AgentID, params.Capability)))
	}

	output, err := ag.Execute(c.RequestCtx(), params.Capability, params.Input, params.Context)

	if err != nil {
		logger.Error("execution failed",
			"agent", params.AgentID, "capability", params.Capability, "error", err)
		return c.JSON(jsonrpc.NewErrorResponse(req.ID, executeError(err)))
	}

	logger.Debug("execution served", "agent", params.AgentID, "capability", params.Capability)

	return c.JSON(jsonrpc.NewResponse(req.ID, a2a.ExecuteResult{
		Output:   output,
		Metadata: output.Metadata,
		// context is echoed back verbatim for caller-side correlation
		Context: params.Context,
	}))
}

// executeError maps an execution failure to its JSON-RPC error. Adapter
// errors that already carry a protocol code pass through; a deadline
// becomes an execution timeout; anything else is an internal error with
// the underlying message preserved as data.
func executeError(err error) *errors.RpcError {
	var rpcErr *errors.RpcError

	if stderrors.As(err, &rpcErr) {
		return rpcErr
	}

	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.ErrExecutionTimeout.WithData(err.Error())
	}

	return errors.ErrInternal.WithData(err.Error())
}

func (srv *Server) handleStatus(c fiber.Ctx, req *jsonrpc.Request, logger *log.Logger) error {
	var params a2a.StatusParams

	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return c.JSON(jsonrpc.NewErrorResponse(req.ID, errors.ErrInvalidParams))
		}
	}

	// No agent id means the caller wants the server aggregate.
	if params.AgentID == "" {
		return c.JSON(jsonrpc.NewResponse(req.ID, a2a.StatusResult{
			Status:  a2a.StatusActive,
			Message: agentCountMessage(srv.agentCount()),
			Load:    aggregateLoad,
		}))
	}

	ag, ok := srv.findAgent(params.AgentID)

	if !ok {
		return c.JSON(jsonrpc.NewErrorResponse(req.ID,
			errors.ErrAgentNotFound.WithMessagef("Agent not found: %s", params.AgentID)))
	}

	return c.JSON(jsonrpc.NewResponse(req.ID, ag.Status()))
}

// handleHealth is a REST convenience endpoint outside the A2A protocol.
func (srv *Server) handleHealth(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// handleAgents is a REST convenience listing for tooling that does not
// speak JSON-RPC. Clients and registries must not depend on it.
func (srv *Server) handleAgents(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"agents": srv.cards()})
}

// extractID pulls a request id out of a body that failed to parse as a
// full envelope, so the error response can still echo it.
func extractID(body []byte) json.RawMessage {
	var probe struct {
		ID json.RawMessage `json:"id"`
	}

	if err := json.Unmarshal(body, &probe); err != nil {
		return nil
	}

	return probe.ID
}

func agentCountMessage(n int) string {
	if n == 1 {
		return "1 agent registered"
	}
	return fmt.Sprintf("%d agents registered", n)
}
