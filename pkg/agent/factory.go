package agent

import "github.com/travelmesh/a2a-go/pkg/a2a"

// Canned capability templates for the travel-planning roles. Each
// constructor binds the declarative template to a supplied Invoker; the
// optional baseURL lets the card self-describe its own endpoint.

// NewTriageAgent routes an incoming travel query to the specialist that
// should handle it.
func NewTriageAgent(invoker Invoker, baseURL string) (*Adapter, error) {
	return NewAdapter(Config{
		ID:          "triage-agent",
		Name:        "Triage Agent",
		Description: "Routes travel queries to the appropriate specialized agent",
		BaseURL:     baseURL,
		Capabilities: []a2a.AgentCapability{{
			Type:        a2a.CapabilityTypeText,
			Name:        "triage",
			Description: "Classify a travel query and select the agent to handle it",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"query": map[string]any{
						"type":        "string",
						"description": "The user's travel query",
					},
				},
				"required": []any{"query"},
			},
			OutputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"message": map[string]any{"type": "string"},
				},
			},
		}},
	}, invoker)
}

// NewCustomerQueryAgent extracts structured travel preferences from
// free-form customer text.
func NewCustomerQueryAgent(invoker Invoker, baseURL string) (*Adapter, error) {
	return NewAdapter(Config{
		ID:          "customer-query-agent",
		Name:        "Customer Query Agent",
		Description: "Extracts structured travel preferences from customer messages",
		BaseURL:     baseURL,
		Capabilities: []a2a.AgentCapability{{
			Type:        a2a.CapabilityTypeText,
			Name:        "extract_preferences",
			Description: "Pull destination, budget, dates and interests out of a customer message",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"query": map[string]any{
						"type":        "string",
						"description": "The customer's message",
					},
				},
				"required": []any{"query"},
			},
			OutputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"message": map[string]any{"type": "string"},
				},
			},
		}},
	}, invoker)
}

// NewDestinationRecommendationAgent suggests destinations matching the
// customer's stated preferences.
func NewDestinationRecommendationAgent(invoker Invoker, baseURL string) (*Adapter, error) {
	return NewAdapter(Config{
		ID:          "destination-recommendation-agent",
		Name:        "Destination Recommendation Agent",
		Description: "Recommends travel destinations based on customer preferences",
		BaseURL:     baseURL,
		Capabilities: []a2a.AgentCapability{{
			Type:        a2a.CapabilityTypeText,
			Name:        "recommend_destinations",
			Description: "Suggest destinations for a set of travel preferences",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"preferences": map[string]any{
						"type":        "object",
						"description": "Extracted travel preferences",
					},
				},
			},
			OutputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"message": map[string]any{"type": "string"},
				},
			},
		}},
	}, invoker)
}

// NewItineraryPlanningAgent builds a day-by-day itinerary for a chosen
// destination.
func NewItineraryPlanningAgent(invoker Invoker, baseURL string) (*Adapter, error) {
	return NewAdapter(Config{
		ID:          "itinerary-planning-agent",
		Name:        "Itinerary Planning Agent",
		Description: "Plans detailed day-by-day travel itineraries",
		BaseURL:     baseURL,
		Capabilities: []a2a.AgentCapability{{
			Type:        a2a.CapabilityTypeText,
			Name:        "plan_itinerary",
			Description: "Produce a day-by-day itinerary for a destination and date range",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"destination": map[string]any{"type": "string"},
					"days":        map[string]any{"type": "integer", "minimum": 1},
					"interests": map[string]any{
						"type":  "array",
						"items": map[string]any{"type": "string"},
					},
				},
				"required": []any{"destination"},
			},
			OutputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"message": map[string]any{"type": "string"},
				},
			},
		}},
	}, invoker)
}

// NewWebSearchAgent answers travel questions that need live information
// from the web.
func NewWebSearchAgent(invoker Invoker, baseURL string) (*Adapter, error) {
	return NewAdapter(Config{
		ID:          "web-search-agent",
		Name:        "Web Search Agent",
		Description: "Looks up live travel information on the web",
		BaseURL:     baseURL,
		Capabilities: []a2a.AgentCapability{{
			Type:        a2a.CapabilityTypeText,
			Name:        "web_search",
			Description: "Search the web for up-to-date travel information",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"query": map[string]any{"type": "string"},
				},
				"required": []any{"query"},
			},
			OutputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"message": map[string]any{"type": "string"},
				},
			},
		}},
	}, invoker)
}
