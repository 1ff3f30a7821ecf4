package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/travelmesh/a2a-go/pkg/a2a"
	"github.com/travelmesh/a2a-go/pkg/agent"
	"github.com/travelmesh/a2a-go/pkg/auth"
)

// Config holds the server's listening address and optional guards on the
// RPC endpoint.
type Config struct {
	Host string
	Port int
	// Auth, when set, must approve every RPC request
	Auth Checker
	// RateLimit caps RPC requests per minute; zero disables the limiter
	RateLimit int64
}

/*
Server hosts a set of agent adapters behind a single JSON-RPC endpoint.
It dispatches the three A2A methods, exposes a small REST side channel for
tooling that does not speak JSON-RPC, and manages agent lifecycle: every
agent is initialized before the listening socket binds and shut down after
it closes.
*/
type Server struct {
	cfg     Config
	app     *fiber.App
	limiter *auth.RateLimiter

	mu      sync.RWMutex
	agents  map[string]agent.Agent
	running bool
}

// NewServer creates a server hosting the given agents. Agents can also be
// added and removed at runtime.
func NewServer(cfg Config, agents ...agent.Agent) *Server {
	srv := &Server{
		cfg: cfg,
		app: fiber.New(fiber.Config{
			AppName:      "travelmesh-a2a",
			ServerHeader: "A2A-Server",
		}),
		agents: make(map[string]agent.Agent),
	}

	if cfg.RateLimit > 0 {
		srv.limiter = auth.NewRateLimiter(cfg.RateLimit, rateLimitInterval)
	}

	for _, ag := range agents {
		srv.agents[ag.ID()] = ag
	}

	srv.app.Use(logger.New(logger.Config{
		Next: func(c fiber.Ctx) bool {
			return c.Path() == "/health"
		},
	}))

	srv.app.Post(a2a.EndpointPath, srv.handleRPC)
	srv.app.Get(a2a.EndpointPath, srv.handleRPCGet)
	srv.app.Get("/health", srv.handleHealth)
	srv.app.Get("/agents", srv.handleAgents)

	return srv
}

// Addr returns the host:port the server binds to.
func (srv *Server) Addr() string {
	return fmt.Sprintf("%s:%d", srv.cfg.Host, srv.cfg.Port)
}

// App exposes the underlying fiber application, mainly for tests that
// drive handlers without a real socket.
func (srv *Server) App() *fiber.App {
	return srv.app
}

// Start initializes every registered agent and then binds the listening
// socket. It blocks until the listener closes. If any agent fails to
// initialize, the ones already initialized are shut down again and the
// socket is never bound.
func (srv *Server) Start(ctx context.Context) error {
	srv.mu.Lock()

	initialized := make([]agent.Agent, 0, len(srv.agents))

	for _, ag := range srv.agents {
		if err := ag.Initialize(ctx); err != nil {
			for _, done := range initialized {
				if shutdownErr := done.Shutdown(ctx); shutdownErr != nil {
					log.Error("failed to shut down agent during aborted start",
						"agent", done.ID(), "error", shutdownErr)
				}
			}
			srv.mu.Unlock()
			return fmt.Errorf("failed to initialize agent %s: %w", ag.ID(), err)
		}
		initialized = append(initialized, ag)
	}

	srv.running = true
	srv.mu.Unlock()

	log.Info("a2a server listening", "addr", srv.Addr(), "agents", len(initialized))

	return srv.app.Listen(srv.Addr(), fiber.ListenConfig{
		DisableStartupMessage: true,
	})
}

// Stop closes the listener and then shuts down every registered agent.
func (srv *Server) Stop(ctx context.Context) error {
	if err := srv.app.ShutdownWithContext(ctx); err != nil {
		return err
	}

	srv.mu.Lock()
	defer srv.mu.Unlock()

	srv.running = false

	for _, ag := range srv.agents {
		if err := ag.Shutdown(ctx); err != nil {
			log.Error("failed to shut down agent", "agent", ag.ID(), "error", err)
		}
	}

	log.Info("a2a server stopped", "addr", srv.Addr())
	return nil
}

// AddAgent registers an agent at runtime. It affects subsequent discover
// and execute calls immediately; when the server is already running the
// agent is initialized here.
func (srv *Server) AddAgent(ctx context.Context, ag agent.Agent) error {
	srv.mu.Lock()
	defer srv.mu.Unlock()

	if _, exists := srv.agents[ag.ID()]; exists {
		return fmt.Errorf("agent %s is already registered", ag.ID())
	}

	if srv.running {
		if err := ag.Initialize(ctx); err != nil {
			return fmt.Errorf("failed to initialize agent %s: %w", ag.ID(), err)
		}
	}

	srv.agents[ag.ID()] = ag
	log.Info("agent registered", "agent", ag.ID())
	return nil
}

// RemoveAgent deregisters an agent at runtime, shutting it down when the
// server is running.
func (srv *Server) RemoveAgent(ctx context.Context, id string) error {
	srv.mu.Lock()
	defer srv.mu.Unlock()

	ag, exists := srv.agents[id]

	if !exists {
		return fmt.Errorf("agent %s is not registered", id)
	}

	delete(srv.agents, id)

	if srv.running {
		if err := ag.Shutdown(ctx); err != nil {
			log.Error("failed to shut down removed agent", "agent", id, "error", err)
		}
	}

	log.Info("agent deregistered", "agent", id)
	return nil
}

// findAgent returns the registered agent with the given id.
func (srv *Server) findAgent(id string) (agent.Agent, bool) {
	srv.mu.RLock()
	defer srv.mu.RUnlock()

	ag, ok := srv.agents[id]
	return ag, ok
}

// cards returns a snapshot of all registered agents' cards, sorted by id
// for stable output.
func (srv *Server) cards() []a2a.AgentCard {
	srv.mu.RLock()

	cards := make([]a2a.AgentCard, 0, len(srv.agents))

	for _, ag := range srv.agents {
		cards = append(cards, ag.Card())
	}

	srv.mu.RUnlock()

	sort.Slice(cards, func(i, j int) bool {
		return cards[i].ID < cards[j].ID
	})

	return cards
}

// agentCount returns the number of registered agents.
func (srv *Server) agentCount() int {
	srv.mu.RLock()
	defer srv.mu.RUnlock()

	return len(srv.agents)
}
