package agent

import (
	"context"

	"github.com/travelmesh/a2a-go/pkg/a2a"
)

/*
Invoker is the only contract the A2A layer has with the underlying agent
object. Whichever orchestration framework produced the agent, its chat or
invoke call is wrapped behind this single method so the protocol core stays
ignorant of the framework.
*/
type Invoker interface {
	Invoke(ctx context.Context, message string) (string, error)
}

// InvokerFunc adapts a plain function to the Invoker interface.
type InvokerFunc func(ctx context.Context, message string) (string, error)

func (fn InvokerFunc) Invoke(ctx context.Context, message string) (string, error) {
	return fn(ctx, message)
}

/*
Agent is the capability-set contract a concrete agent wrapper must satisfy
to be hosted by a Server or addressed through a Registry.
*/
type Agent interface {
	ID() string
	Name() string
	Description() string
	Capabilities() []a2a.AgentCapability

	// Card returns the agent's self-description. It must be deterministic
	// and must not perform I/O.
	Card() a2a.AgentCard

	// Execute runs one declared capability. It must fail when called before
	// Initialize or after Shutdown, and when the capability is not declared.
	Execute(ctx context.Context, capability string, input any, callContext map[string]any) (*Output, error)

	// Status reports liveness and a load signal in [0, 1].
	Status() a2a.StatusResult

	Initialize(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// Output is the unwrapped result of a capability execution.
type Output struct {
	Message  string         `json:"message"`
	Metadata map[string]any `json:"metadata,omitempty"`
}
