package a2a

// The three methods of the A2A protocol. Everything else on the wire is a
// plain JSON-RPC 2.0 envelope.
const (
	MethodDiscover = "a2a.discover"
	MethodExecute  = "a2a.execute"
	MethodStatus   = "a2a.status"
)

// EndpointPath is the single JSON-RPC endpoint every A2A server exposes,
// relative to its base URL.
const EndpointPath = "/a2a"

// DiscoverParams narrows discovery to agents matching any of the filter
// terms. See AgentCard.Matches for the matching rules.
type DiscoverParams struct {
	Filter []string `json:"filter,omitempty"`
}

type DiscoverResult struct {
	Agents []AgentCard `json:"agents"`
}

// ExecuteParams invokes one capability on one agent. Input, context and
// metadata are opaque to the protocol; their semantics belong to the
// capability's declared schema.
type ExecuteParams struct {
	AgentID    string         `json:"agent_id"`
	Capability string         `json:"capability"`
	Input      any            `json:"input"`
	Context    map[string]any `json:"context,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// ExecuteResult carries the capability output. Context is echoed back
// verbatim so callers can correlate responses.
type ExecuteResult struct {
	Output   any            `json:"output"`
	Metadata map[string]any `json:"metadata,omitempty"`
	Context  map[string]any `json:"context,omitempty"`
}

// StatusParams addresses one agent, or the server aggregate when AgentID is
// empty.
type StatusParams struct {
	AgentID string `json:"agent_id,omitempty"`
}

type StatusResult struct {
	Status  Status  `json:"status"`
	Message string  `json:"message,omitempty"`
	Load    float64 `json:"load,omitempty"`
}
