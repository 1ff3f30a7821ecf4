package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/travelmesh/a2a-go/pkg/a2a"
	"github.com/travelmesh/a2a-go/pkg/catalog"
	"github.com/travelmesh/a2a-go/pkg/client"
)

var (
	serverFlags    []string
	tokenFlag      string
	filterFlags    []string
	agentFlag      string
	capabilityFlag string
	inputFlag      string

	clientCmd = &cobra.Command{
		Use:   "client",
		Short: "Call remote A2A servers",
		Long:  longClient,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	discoverCmd = &cobra.Command{
		Use:   "discover",
		Short: "List the agents a server (or set of servers) publishes",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := buildRegistry(cmd)
			if err != nil {
				return err
			}

			cards := registry.ListAllAgents()

			filtered := make([]a2a.AgentCard, 0, len(cards))
			for _, card := range cards {
				if card.Matches(filterFlags) {
					filtered = append(filtered, card)
				}
			}

			return printJSON(filtered)
		},
	}

	executeCmd = &cobra.Command{
		Use:   "execute",
		Short: "Invoke one capability on one remote agent",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := buildRegistry(cmd)
			if err != nil {
				return err
			}

			result, err := registry.Execute(
				cmd.Context(),
				agentFlag,
				capabilityFlag,
				inputFlag,
				map[string]any{"session_id": uuid.NewString()},
			)

			if err != nil {
				return err
			}

			return printJSON(result)
		},
	}

	statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Report the status of an agent or server",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn := client.New(clientConfig(serverFlags[0]))

			status, err := conn.Status(cmd.Context(), agentFlag)

			if err != nil {
				return err
			}

			return printJSON(status)
		},
	}
)

// buildRegistry registers every --server URL under a generated name so the
// subcommands can address agents without knowing which server hosts them.
func buildRegistry(cmd *cobra.Command) (*catalog.Registry, error) {
	registry := catalog.NewRegistry()

	for i, url := range serverFlags {
		name := fmt.Sprintf("server-%d", i+1)

		if err := registry.RegisterServer(cmd.Context(), name, clientConfig(url)); err != nil {
			return nil, err
		}
	}

	return registry, nil
}

func clientConfig(baseURL string) client.Config {
	cfg := client.Config{
		BaseURL: baseURL,
		Timeout: viper.GetDuration("client.timeout"),
		Retries: viper.GetInt("client.retries"),
	}

	if tokenFlag != "" {
		cfg.Auth = &client.AuthConfig{
			Type:  a2a.AuthTypeBearer,
			Token: tokenFlag,
		}
	}

	return cfg
}

func printJSON(v any) error {
	buf, err := json.MarshalIndent(v, "", "  ")

	if err != nil {
		return err
	}

	fmt.Println(string(buf))
	return nil
}

func init() {
	rootCmd.AddCommand(clientCmd)
	clientCmd.AddCommand(discoverCmd)
	clientCmd.AddCommand(executeCmd)
	clientCmd.AddCommand(statusCmd)

	clientCmd.PersistentFlags().StringSliceVarP(&serverFlags, "server", "s",
		[]string{"http://localhost:3210"}, "Base URL of an A2A server (repeatable)")
	clientCmd.PersistentFlags().StringVar(&tokenFlag, "token", "",
		"Bearer token attached to every request")

	discoverCmd.Flags().StringSliceVarP(&filterFlags, "filter", "f", nil,
		"Filter terms (agent id or name substring)")

	executeCmd.Flags().StringVarP(&agentFlag, "agent", "a", "", "Agent id")
	executeCmd.Flags().StringVarP(&capabilityFlag, "capability", "c", "", "Capability name")
	executeCmd.Flags().StringVarP(&inputFlag, "input", "i", "", "Input passed to the capability")
	_ = executeCmd.MarkFlagRequired("agent")
	_ = executeCmd.MarkFlagRequired("capability")

	statusCmd.Flags().StringVarP(&agentFlag, "agent", "a", "",
		"Agent id (omit for the server aggregate)")
}

var longClient = `
Call remote A2A servers: discover agents, invoke capabilities and poll
status. Multiple --server flags register every server in a client-side
registry, so agents can be addressed by id across servers.

Examples:
  a2a-go client discover --server http://localhost:3210
  a2a-go client execute --agent triage-agent --capability triage --input "Plan a trip to Tokyo"
  a2a-go client status --agent triage-agent
`
