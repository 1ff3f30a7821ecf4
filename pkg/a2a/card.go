package a2a

import (
	"strings"

	v "github.com/cohesivestack/valgo"
)

// ProtocolVersion identifies the A2A wire protocol revision spoken by this
// implementation. It is published in every AgentCard and is unrelated to the
// version of the agent itself.
const ProtocolVersion = "1.0.0"

// CapabilityType classifies how a capability exchanges data.
type CapabilityType string

const (
	CapabilityTypeText      CapabilityType = "text"
	CapabilityTypeForm      CapabilityType = "form"
	CapabilityTypeMedia     CapabilityType = "media"
	CapabilityTypeStreaming CapabilityType = "streaming"
)

// EndpointType identifies the transport an endpoint speaks. Only "http" is
// implemented by this package; the other values are declared for forward
// compatibility with transports the protocol reserves.
type EndpointType string

const (
	EndpointTypeHTTP      EndpointType = "http"
	EndpointTypeSSE       EndpointType = "sse"
	EndpointTypeWebSocket EndpointType = "websocket"
)

// AuthType identifies the authentication scheme an endpoint expects.
type AuthType string

const (
	AuthTypeNone   AuthType = "none"
	AuthTypeBearer AuthType = "bearer"
	AuthTypeBasic  AuthType = "basic"
	AuthTypeCustom AuthType = "custom"
)

// AgentCapability describes one invocable unit an agent offers.
type AgentCapability struct {
	// Type classifies the capability's interaction style
	Type CapabilityType `json:"type"`
	// Name is unique within the owning agent
	Name string `json:"name"`
	// Description is a human-readable summary of what the capability does
	Description string `json:"description"`
	// InputSchema is an advisory JSON-Schema-shaped descriptor of the input
	InputSchema map[string]any `json:"inputSchema,omitempty"`
	// OutputSchema is an advisory JSON-Schema-shaped descriptor of the output
	OutputSchema map[string]any `json:"outputSchema,omitempty"`
}

// Authentication describes how to authenticate against an endpoint.
type Authentication struct {
	Type AuthType `json:"type"`
	// Details carries scheme-specific settings, e.g. a header map for custom
	Details map[string]any `json:"details,omitempty"`
}

// AgentEndpoint describes how to reach the owning agent over the wire.
type AgentEndpoint struct {
	Type EndpointType `json:"type"`
	URL  string       `json:"url"`
	// Methods optionally restricts which A2A methods the endpoint serves
	Methods        []string        `json:"methods,omitempty"`
	Authentication *Authentication `json:"authentication,omitempty"`
}

/*
AgentCard is the self-description an agent publishes. Cards are produced on
demand by an adapter and consumed by discovery; they are a snapshot, never a
live-synced view.
*/
type AgentCard struct {
	// ID is the unique, stable identifier of the agent
	ID string `json:"id"`
	// Name is the human-readable name of the agent
	Name string `json:"name"`
	// Description summarises what the agent does
	Description string `json:"description"`
	// Version is the A2A protocol version, not the agent version
	Version string `json:"version"`
	// Capabilities lists the invocable units, in declaration order
	Capabilities []AgentCapability `json:"capabilities"`
	// Endpoints lists how to reach the agent
	Endpoints []AgentEndpoint `json:"endpoints"`
	// Metadata is a free-form annotation map
	Metadata map[string]any `json:"metadata,omitempty"`
}

// HasCapability reports whether the card declares a capability by name.
func (card *AgentCard) HasCapability(name string) bool {
	return card.Capability(name) != nil
}

// Capability returns the declared capability with the given name, or nil.
func (card *AgentCard) Capability(name string) *AgentCapability {
	for i := range card.Capabilities {
		if card.Capabilities[i].Name == name {
			return &card.Capabilities[i]
		}
	}

	return nil
}

// Matches reports whether the card matches any of the filter terms. A term
// matches on exact agent id or case-insensitive substring of the name. An
// empty filter matches everything.
func (card *AgentCard) Matches(filters []string) bool {
	if len(filters) == 0 {
		return true
	}

	name := strings.ToLower(card.Name)

	for _, filter := range filters {
		if card.ID == filter {
			return true
		}
		if strings.Contains(name, strings.ToLower(filter)) {
			return true
		}
	}

	return false
}

// Validate checks the structural invariants of the card: non-blank identity
// fields and known capability/endpoint type values. An empty capability list
// is legal (if useless), so it is not rejected here.
func (card *AgentCard) Validate() error {
	val := v.Is(
		v.String(card.ID, "id").Not().Blank(),
		v.String(card.Name, "name").Not().Blank(),
		v.String(card.Version, "version").Not().Blank(),
	)

	for _, capability := range card.Capabilities {
		val.Is(
			v.String(capability.Name, "capability.name").Not().Blank(),
			v.String(string(capability.Type), "capability.type").InSlice([]string{
				string(CapabilityTypeText),
				string(CapabilityTypeForm),
				string(CapabilityTypeMedia),
				string(CapabilityTypeStreaming),
			}),
		)
	}

	for _, endpoint := range card.Endpoints {
		val.Is(
			v.String(endpoint.URL, "endpoint.url").Not().Blank(),
			v.String(string(endpoint.Type), "endpoint.type").InSlice([]string{
				string(EndpointTypeHTTP),
				string(EndpointTypeSSE),
				string(EndpointTypeWebSocket),
			}),
		)
	}

	if !val.Valid() {
		return val.Error()
	}

	return nil
}
