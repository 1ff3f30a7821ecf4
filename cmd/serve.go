package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/travelmesh/a2a-go/pkg/agent"
	"github.com/travelmesh/a2a-go/pkg/service"
)

var (
	portFlag int
	hostFlag string

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve the travel agents over A2A",
		Long:  longServe,
		RunE: func(cmd *cobra.Command, args []string) error {
			host := hostFlag
			if host == "" {
				host = viper.GetString("server.host")
			}

			port := portFlag
			if port == 0 {
				port = viper.GetInt("server.port")
			}

			baseURL := fmt.Sprintf("http://%s:%d", host, port)

			agents, err := buildAgents(baseURL)
			if err != nil {
				return err
			}

			cfg := service.Config{
				Host:      host,
				Port:      port,
				RateLimit: viper.GetInt64("server.rate_limit"),
			}

			if token := viper.GetString("server.auth_token"); token != "" {
				cfg.Auth = service.BearerAuth{Token: token}
			}

			srv := service.NewServer(cfg, agents...)

			errChan := make(chan error, 1)

			go func() {
				errChan <- srv.Start(cmd.Context())
			}()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errChan:
				return err
			case sig := <-sigChan:
				log.Info("shutting down", "signal", sig)
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return srv.Stop(ctx)
			}
		},
	}
)

// buildAgents wires one adapter per configured role. The demo binary backs
// every role with an echo invoker; a real deployment passes the invoker of
// whichever orchestration framework is active.
func buildAgents(baseURL string) ([]agent.Agent, error) {
	roles := viper.GetStringSlice("agents")

	agents := make([]agent.Agent, 0, len(roles))

	for _, role := range roles {
		invoker := &agent.EchoInvoker{Prefix: role}

		adapter, err := buildRole(role, invoker, baseURL)

		if err != nil {
			return nil, fmt.Errorf("failed to build agent for role %s: %w", role, err)
		}

		agents = append(agents, adapter)
	}

	return agents, nil
}

func buildRole(role string, invoker agent.Invoker, baseURL string) (*agent.Adapter, error) {
	switch role {
	case "triage":
		return agent.NewTriageAgent(invoker, baseURL)
	case "customer-query":
		return agent.NewCustomerQueryAgent(invoker, baseURL)
	case "destination-recommendation":
		return agent.NewDestinationRecommendationAgent(invoker, baseURL)
	case "itinerary-planning":
		return agent.NewItineraryPlanningAgent(invoker, baseURL)
	case "web-search":
		return agent.NewWebSearchAgent(invoker, baseURL)
	default:
		return nil, fmt.Errorf("unknown agent role: %s", role)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVarP(&portFlag, "port", "p", 0, "Port to serve on (overrides config)")
	serveCmd.Flags().StringVarP(&hostFlag, "host", "H", "", "Host address to bind to (overrides config)")
}

var longServe = `
Serve the configured travel agents behind a single A2A JSON-RPC endpoint.

Examples:
  # Serve on the configured port
  a2a-go serve

  # Serve on port 8080
  a2a-go serve --port 8080
`
