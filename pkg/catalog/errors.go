package catalog

import "fmt"

// NotFoundError reports an agent id the registry has no entry for. This is
// a registry-level miss, distinct from the wire-level AGENT_NOT_FOUND a
// server would return when the registry's cached mapping has gone stale.
type NotFoundError struct {
	AgentID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("agent not found in registry: %s", e.AgentID)
}
