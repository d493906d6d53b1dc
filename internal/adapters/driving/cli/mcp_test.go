package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/foodsync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/foodsync/internal/adapters/driving/mcp"
	"github.com/custodia-labs/foodsync/internal/core/services"
)

// mockMCPServer records how the command started the server.
type mockMCPServer struct {
	ports *mcp.Ports
	mode  string
	addr  string
}

func (m *mockMCPServer) Run(_ context.Context) error {
	m.mode = "stdio"
	return nil
}

func (m *mockMCPServer) RunHTTP(_ context.Context, addr string) error {
	m.mode = "http"
	m.addr = addr
	return nil
}

func useMCPServer(t *testing.T) *mockMCPServer {
	t.Helper()
	server := &mockMCPServer{}
	orig := newMCPServer
	newMCPServer = func(ports *mcp.Ports) (mcpRunner, error) {
		server.ports = ports
		return server, nil
	}
	t.Cleanup(func() { newMCPServer = orig })
	return server
}

func TestMCPServeCmd_Stdio(t *testing.T) {
	sync := &mockSyncOrchestrator{}
	useServices(t, &Services{
		Products: services.NewProductService(memory.NewProductStore()),
		Runs:     services.NewRunHistoryService(memory.NewRunLedger()),
		Sync:     sync,
	})
	server := useMCPServer(t)

	_, err := execute("mcp", "serve")

	require.NoError(t, err)
	assert.Equal(t, "stdio", server.mode)
	require.NotNil(t, server.ports)
	assert.NotNil(t, server.ports.Products)
	assert.NotNil(t, server.ports.Runs)
	assert.Same(t, sync, server.ports.Sync)
}

func TestMCPServeCmd_HTTP(t *testing.T) {
	useServices(t, &Services{Products: services.NewProductService(memory.NewProductStore())})
	server := useMCPServer(t)

	out, err := execute("mcp", "serve", "--port", "8081")

	require.NoError(t, err)
	assert.Equal(t, "http", server.mode)
	assert.Equal(t, "localhost:8081", server.addr)
	assert.Contains(t, out, "MCP server listening on http://localhost:8081")
}

func TestMCPServeCmd_HTTPHost(t *testing.T) {
	useServices(t, &Services{Products: services.NewProductService(memory.NewProductStore())})
	server := useMCPServer(t)

	_, err := execute("mcp", "serve", "--host", "::1", "-p", "9000")

	require.NoError(t, err)
	assert.Equal(t, "[::1]:9000", server.addr)
}

func TestMCPServeCmd_InvalidPort(t *testing.T) {
	useServices(t, &Services{Products: services.NewProductService(memory.NewProductStore())})
	server := useMCPServer(t)

	_, err := execute("mcp", "serve", "--port", "70000")

	assert.EqualError(t, err, "invalid port 70000")
	assert.Empty(t, server.mode)
}

func TestMCPServeCmd_NotConfigured(t *testing.T) {
	useServices(t, &Services{})
	useMCPServer(t)

	_, err := execute("mcp", "serve")

	assert.EqualError(t, err, "product service not configured")
}

func TestNewMCPServer(t *testing.T) {
	server, err := newMCPServer(&mcp.Ports{Products: services.NewProductService(memory.NewProductStore())})

	require.NoError(t, err)
	assert.NotNil(t, server)
}
