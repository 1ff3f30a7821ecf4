package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/travelmesh/a2a-go/pkg/a2a"
	"github.com/travelmesh/a2a-go/pkg/errors"
)

// placeholderLoad is reported while no real concurrency metric is wired in.
// Only the active/inactive transitions are load-bearing; the figure itself
// is an extension point.
const placeholderLoad = 0.1

// Config declares the identity and capability set of an adapter. The
// capability list is fixed at construction time.
type Config struct {
	ID           string
	Name         string
	Description  string
	Capabilities []a2a.AgentCapability
	// BaseURL, when set, lets the card self-describe its own HTTP endpoint
	BaseURL string
	// Metadata is copied verbatim onto the published card
	Metadata map[string]any
}

/*
Adapter bridges one locally-instantiated agent into the Agent contract. It
validates capability membership, normalizes input for the underlying
invoke call and unwraps the response into a structured Output.
*/
type Adapter struct {
	cfg     Config
	invoker Invoker
	schemas map[string]*jsonschema.Schema

	mu          sync.RWMutex
	initialized bool
}

// NewAdapter wraps invoker behind the Agent contract. Declared input
// schemas are compiled once here; a schema that fails to compile is logged
// and skipped, never fatal, because schemas are advisory.
func NewAdapter(cfg Config, invoker Invoker) (*Adapter, error) {
	if cfg.ID == "" {
		return nil, fmt.Errorf("agent id must not be empty")
	}

	if invoker == nil {
		return nil, fmt.Errorf("agent %s: invoker must not be nil", cfg.ID)
	}

	adapter := &Adapter{
		cfg:     cfg,
		invoker: invoker,
		schemas: make(map[string]*jsonschema.Schema),
	}

	for _, capability := range cfg.Capabilities {
		if capability.InputSchema == nil {
			continue
		}

		schema, err := compileSchema(cfg.ID, capability.Name, capability.InputSchema)

		if err != nil {
			log.Warn("skipping invalid input schema",
				"agent", cfg.ID, "capability", capability.Name, "error", err)
			continue
		}

		adapter.schemas[capability.Name] = schema
	}

	if err := validateCard(adapter.Card()); err != nil {
		return nil, err
	}

	return adapter, nil
}

func compileSchema(agentID, capability string, doc map[string]any) (*jsonschema.Schema, error) {
	url := fmt.Sprintf("a2a:///%s/%s/input.json", agentID, capability)

	compiler := jsonschema.NewCompiler()

	if err := compiler.AddResource(url, doc); err != nil {
		return nil, err
	}

	return compiler.Compile(url)
}

func validateCard(card a2a.AgentCard) error {
	if err := card.Validate(); err != nil {
		return fmt.Errorf("invalid agent card: %w", err)
	}
	return nil
}

func (adapter *Adapter) ID() string          { return adapter.cfg.ID }
func (adapter *Adapter) Name() string        { return adapter.cfg.Name }
func (adapter *Adapter) Description() string { return adapter.cfg.Description }

func (adapter *Adapter) Capabilities() []a2a.AgentCapability {
	capabilities := make([]a2a.AgentCapability, len(adapter.cfg.Capabilities))
	copy(capabilities, adapter.cfg.Capabilities)
	return capabilities
}

// Card returns the identity and capability list declared at construction
// time. Deterministic, no I/O.
func (adapter *Adapter) Card() a2a.AgentCard {
	card := a2a.AgentCard{
		ID:           adapter.cfg.ID,
		Name:         adapter.cfg.Name,
		Description:  adapter.cfg.Description,
		Version:      a2a.ProtocolVersion,
		Capabilities: adapter.Capabilities(),
		Metadata:     adapter.cfg.Metadata,
	}

	if adapter.cfg.BaseURL != "" {
		card.Endpoints = []a2a.AgentEndpoint{{
			Type:    a2a.EndpointTypeHTTP,
			URL:     adapter.cfg.BaseURL + a2a.EndpointPath,
			Methods: []string{a2a.MethodDiscover, a2a.MethodExecute, a2a.MethodStatus},
			Authentication: &a2a.Authentication{
				Type: a2a.AuthTypeNone,
			},
		}}
	}

	return card
}

// Execute runs one declared capability against the wrapped agent.
func (adapter *Adapter) Execute(
	ctx context.Context,
	capability string,
	input any,
	callContext map[string]any,
) (*Output, error) {
	adapter.mu.RLock()
	initialized := adapter.initialized
	adapter.mu.RUnlock()

	if !initialized {
		return nil, errors.ErrAgentUnavailable.WithMessagef(
			"agent %s is not initialized", adapter.cfg.ID)
	}

	card := adapter.Card()
	if !card.HasCapability(capability) {
		return nil, errors.ErrCapabilityNotSupported.WithMessagef(
			"agent %s does not support capability %s", adapter.cfg.ID, capability)
	}

	adapter.checkInput(capability, input)

	message, err := normalizeInput(input)

	if err != nil {
		return nil, errors.ErrInvalidParams.WithMessagef(
			"cannot serialize input for capability %s: %v", capability, err)
	}

	if len(callContext) > 0 {
		ctxJSON, err := json.Marshal(callContext)
		if err != nil {
			return nil, errors.ErrInvalidParams.WithMessagef(
				"cannot serialize context for capability %s: %v", capability, err)
		}
		message = fmt.Sprintf("%s\n\nContext: %s", message, ctxJSON)
	}

	log.Debug("executing capability",
		"agent", adapter.cfg.ID, "capability", capability)

	response, err := adapter.invoker.Invoke(ctx, message)

	if err != nil {
		return nil, fmt.Errorf("agent %s failed to execute %s: %w",
			adapter.cfg.ID, capability, err)
	}

	return &Output{
		Message: response,
		Metadata: map[string]any{
			"capability": capability,
			"agent_id":   adapter.cfg.ID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339),
		},
	}, nil
}

// checkInput validates input against the capability's declared schema when
// one exists. Advisory only: a mismatch is logged, never returned, so the
// declared schemas can never break the protocol contract.
func (adapter *Adapter) checkInput(capability string, input any) {
	schema, ok := adapter.schemas[capability]

	if !ok {
		return
	}

	if err := schema.Validate(input); err != nil {
		log.Warn("input does not match declared schema",
			"agent", adapter.cfg.ID, "capability", capability, "error", err)
	}
}

// normalizeInput flattens the opaque input value into the message string
// the underlying chat-style call expects. Strings pass through untouched,
// everything else is JSON-stringified.
func normalizeInput(input any) (string, error) {
	switch v := input.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	default:
		buf, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(buf), nil
	}
}

// Status reports active between Initialize and Shutdown, inactive outside
// that window.
func (adapter *Adapter) Status() a2a.StatusResult {
	adapter.mu.RLock()
	defer adapter.mu.RUnlock()

	if !adapter.initialized {
		return a2a.StatusResult{
			Status:  a2a.StatusInactive,
			Message: fmt.Sprintf("agent %s is not initialized", adapter.cfg.ID),
		}
	}

	return a2a.StatusResult{
		Status: a2a.StatusActive,
		Load:   placeholderLoad,
	}
}

// Initialize marks the adapter ready. Safe to call more than once.
func (adapter *Adapter) Initialize(ctx context.Context) error {
	adapter.mu.Lock()
	defer adapter.mu.Unlock()

	if adapter.initialized {
		return nil
	}

	adapter.initialized = true
	log.Info("agent initialized", "agent", adapter.cfg.ID)
	return nil
}

// Shutdown marks the adapter inactive. Safe to call more than once.
func (adapter *Adapter) Shutdown(ctx context.Context) error {
	adapter.mu.Lock()
	defer adapter.mu.Unlock()

	if !adapter.initialized {
		return nil
	}

	adapter.initialized = false
	log.Info("agent shut down", "agent", adapter.cfg.ID)
	return nil
}
