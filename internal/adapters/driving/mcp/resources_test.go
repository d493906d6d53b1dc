package mcp

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/foodsync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/foodsync/internal/core/domain"
	"github.com/custodia-labs/foodsync/internal/core/services"
)

func TestExtractProductCode(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected domain.ProductCode
		ok       bool
	}{
		{
			name:     "valid product URI",
			uri:      "foodsync://products/3017620422003",
			expected: 3017620422003,
			ok:       true,
		},
		{
			name: "invalid prefix",
			uri:  "file://products/123",
		},
		{
			name: "not a number",
			uri:  "foodsync://products/abc",
		},
		{
			name: "empty URI",
			uri:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, ok := extractProductCode(tt.uri)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, code)
		})
	}
}

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleRunsResource(t *testing.T) {
	ctx := context.Background()

	t.Run("nil run history returns empty list", func(t *testing.T) {
		server, err := NewServer(&Ports{Products: services.NewProductService(memory.NewProductStore())}, "test")
		require.NoError(t, err)

		result, err := server.handleRunsResource(ctx, makeReadResourceRequest("foodsync://runs"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})

	t.Run("returns ledger entries", func(t *testing.T) {
		ledger := memory.NewRunLedger()
		ok := domain.StartRun("run-1", "products_01.json", epoch)
		id, err := ledger.Append(ctx, ok)
		require.NoError(t, err)
		ok.ID = id
		done, err := ok.Complete(12, epoch.Add(time.Second))
		require.NoError(t, err)
		require.NoError(t, ledger.UpdateByID(ctx, done))

		bad := domain.StartRun("run-1", "products_02.json", epoch.Add(time.Minute))
		id, err = ledger.Append(ctx, bad)
		require.NoError(t, err)
		bad.ID = id
		failed, err := bad.Fail("status 503", epoch.Add(2*time.Minute))
		require.NoError(t, err)
		require.NoError(t, ledger.UpdateByID(ctx, failed))

		server, err := NewServer(&Ports{
			Products: services.NewProductService(memory.NewProductStore()),
			Runs:     services.NewRunHistoryService(ledger),
		}, "test")
		require.NoError(t, err)

		result, err := server.handleRunsResource(ctx, makeReadResourceRequest("foodsync://runs"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		text := result.Contents[0].Text
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)
		assert.Contains(t, text, `"filename": "products_01.json"`)
		assert.Contains(t, text, `"products_imported": 12`)
		assert.Contains(t, text, `"state": "failed"`)
		assert.Contains(t, text, `"error": "status 503"`)
		assert.Less(t, strings.Index(text, "products_02.json"), strings.Index(text, "products_01.json"))
	})
}

func TestServer_handleProductResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the product", func(t *testing.T) {
		server := newTestServer(t, 1, nil)

		result, err := server.handleProductResource(ctx, makeReadResourceRequest("foodsync://products/1"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Contains(t, result.Contents[0].Text, `"code": 1`)
		assert.Contains(t, result.Contents[0].Text, `"product_name": "Product"`)
	})

	t.Run("unknown product is not found", func(t *testing.T) {
		server := newTestServer(t, 1, nil)

		_, err := server.handleProductResource(ctx, makeReadResourceRequest("foodsync://products/2"))

		require.Error(t, err)
	})

	t.Run("invalid URI is not found", func(t *testing.T) {
		server := newTestServer(t, 1, nil)

		_, err := server.handleProductResource(ctx, makeReadResourceRequest("foodsync://products/x"))

		require.Error(t, err)
	})
}
