package catalog

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/travelmesh/a2a-go/pkg/a2a"
	"github.com/travelmesh/a2a-go/pkg/client"
	"github.com/travelmesh/a2a-go/pkg/errors"
)

// Entry pairs a discovered card with the client that can reach it.
type Entry struct {
	Client *client.Client
	Card   a2a.AgentCard
}

/*
Registry maintains a merged directory of agents discovered across any
number of independently registered A2A servers, so a caller can address an
agent by id without knowing which server hosts it. Cards are a
discovery-time snapshot; staleness is accepted until the next Refresh.
*/
type Registry struct {
	mu sync.RWMutex
	// servers maps a registered name to its client; append-only
	servers map[string]*client.Client
	// directory maps agent id to its last-known entry; swapped wholesale
	// on Refresh, never mutated in place during one
	directory map[string]Entry
}

func NewRegistry() *Registry {
	return &Registry{
		servers:   make(map[string]*client.Client),
		directory: make(map[string]Entry),
	}
}

// RegisterServer adds a server under the given name and discovers its
// agents once. A discovery failure is logged but does not abort the
// registration: the server stays registered with zero known agents until
// the next Refresh.
func (registry *Registry) RegisterServer(ctx context.Context, name string, cfg client.Config) error {
	registry.mu.Lock()

	if _, exists := registry.servers[name]; exists {
		registry.mu.Unlock()
		return fmt.Errorf("server %s is already registered", name)
	}

	conn := client.New(cfg)
	registry.servers[name] = conn
	registry.mu.Unlock()

	cards, err := conn.Discover(ctx)

	if err != nil {
		log.Warn("discovery failed during server registration",
			"server", name, "url", cfg.BaseURL, "error", err)
		return nil
	}

	registry.mu.Lock()
	for _, card := range cards {
		registry.directory[card.ID] = Entry{Client: conn, Card: card}
	}
	registry.mu.Unlock()

	log.Info("server registered", "server", name, "agents", len(cards))
	return nil
}

// FindAgent returns the last-known entry for the agent id.
func (registry *Registry) FindAgent(agentID string) (Entry, bool) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	entry, ok := registry.directory[agentID]
	return entry, ok
}

// Execute resolves the agent and delegates to the client that discovered
// it. An unknown id is fatal to the call: there is no agent to route to.
func (registry *Registry) Execute(
	ctx context.Context,
	agentID string,
	capability string,
	input any,
	callContext map[string]any,
) (*a2a.ExecuteResult, error) {
	entry, ok := registry.FindAgent(agentID)

	if !ok {
		return nil, &NotFoundError{AgentID: agentID}
	}

	return entry.Client.Execute(ctx, agentID, capability, input, callContext, nil)
}

// Refresh rebuilds the whole directory by re-running discovery against
// every registered server. Individual server failures are logged and
// skipped. The new directory is built in a scratch map and swapped in at
// the end, so a concurrent FindAgent never observes a half-built state.
func (registry *Registry) Refresh(ctx context.Context) error {
	registry.mu.RLock()
	servers := make(map[string]*client.Client, len(registry.servers))
	for name, conn := range registry.servers {
		servers[name] = conn
	}
	registry.mu.RUnlock()

	scratch := make(map[string]Entry)
	failures := make([]any, 0)

	for name, conn := range servers {
		cards, err := conn.Discover(ctx)

		if err != nil {
			log.Warn("skipping server during refresh", "server", name, "error", err)
			failures = append(failures, fmt.Errorf("server %s: %w", name, err))
			continue
		}

		for _, card := range cards {
			scratch[card.ID] = Entry{Client: conn, Card: card}
		}
	}

	registry.mu.Lock()
	registry.directory = scratch
	registry.mu.Unlock()

	log.Info("registry refreshed", "agents", len(scratch), "failures", len(failures))

	// Non-fatal by contract: the refresh completed, the error only reports
	// which servers were skipped.
	return errors.NewError(failures...)
}

// ListAllAgents returns a flattened snapshot of all known cards, sorted by
// agent id.
func (registry *Registry) ListAllAgents() []a2a.AgentCard {
	registry.mu.RLock()

	cards := make([]a2a.AgentCard, 0, len(registry.directory))

	for _, entry := range registry.directory {
		cards = append(cards, entry.Card)
	}

	registry.mu.RUnlock()

	sort.Slice(cards, func(i, j int) bool {
		return cards[i].ID < cards[j].ID
	})

	return cards
}

// ServerNames returns the registered server names, sorted.
func (registry *Registry) ServerNames() []string {
	registry.mu.RLock()

	names := make([]string, 0, len(registry.servers))

	for name := range registry.servers {
		names = append(names, name)
	}

	registry.mu.RUnlock()

	sort.Strings(names)
	return names
}
