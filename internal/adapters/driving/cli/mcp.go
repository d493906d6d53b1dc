package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/foodsync/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Model Context Protocol integration",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose the catalog to MCP clients",
	Long: `Serve the catalog over the Model Context Protocol. Clients can look up and
list products, read the import history and start an import.

Without --port the server speaks JSON-RPC on stdio, which is what desktop
assistants expect. With --port it serves streamable HTTP on --host.

Examples:
  foodsync mcp serve
  foodsync mcp serve --port 8081
  foodsync mcp serve --host 0.0.0.0 --port 8081`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "serve streamable HTTP on this port instead of stdio")
	mcpServeCmd.Flags().String("host", "localhost", "interface to bind in HTTP mode")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

// mcpRunner is the part of mcp.Server the command drives.
type mcpRunner interface {
	Run(ctx context.Context) error
	RunHTTP(ctx context.Context, addr string) error
}

// newMCPServer is replaced in tests.
var newMCPServer = func(ports *mcp.Ports) (mcpRunner, error) {
	return mcp.NewServer(ports, version)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return err
	}
	host, err := cmd.Flags().GetString("host")
	if err != nil {
		return err
	}
	if port < 0 || port > 65535 {
		return fmt.Errorf("invalid port %d", port)
	}
	if productService == nil {
		return errors.New("product service not configured")
	}

	server, err := newMCPServer(&mcp.Ports{
		Products: productService,
		Runs:     runHistory,
		Sync:     syncOrchestrator,
	})
	if err != nil {
		return err
	}

	if port == 0 {
		return server.Run(cmd.Context())
	}
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://%s\n", addr)
	return server.RunHTTP(cmd.Context(), addr)
}
