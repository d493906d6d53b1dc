package cli

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/foodsync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/foodsync/internal/core/domain"
	"github.com/custodia-labs/foodsync/internal/core/services"
)

func writeSeedFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "products.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestSeedCmd_Text(t *testing.T) {
	store := memory.NewProductStore()
	require.NoError(t, store.Insert(context.Background(), domain.NewDraftProduct(2, domain.ProductAttributes{}, epoch)))
	useServices(t, &Services{Seeder: services.NewSeeder(store)})
	path := writeSeedFile(t, `[
		{"code": 1, "product_name": "Oat Milk"},
		{"code": 2, "product_name": "Rye Bread"},
		{"product_name": "No code"},
		{"code": "abc"}
	]`)

	out, err := execute("seed", path)

	require.NoError(t, err)
	assert.Contains(t, out, "Loading sample products from "+path)
	assert.Contains(t, out, "  + 1 Oat Milk\n")
	assert.Contains(t, out, "  = 2 already exists\n")
	assert.Contains(t, out, "  ! ")
	assert.Contains(t, out, "Seed complete: 1 product imported (1 existing, 1 failed)\n")

	exists, err := store.Exists(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestSeedCmd_JSON(t *testing.T) {
	useServices(t, &Services{Seeder: services.NewSeeder(memory.NewProductStore())})
	path := writeSeedFile(t, `[{"code": 7}, {"code": 8}]`)

	out, err := execute("seed", path, "--output", "json")
	require.NoError(t, err)

	var report domain.SeedReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 2, report.Imported)
	assert.Len(t, report.Outcomes, 2)
}

func TestSeedCmd_Errors(t *testing.T) {
	valid := writeSeedFile(t, `[]`)
	tests := []struct {
		name     string
		services *Services
		args     []string
		wantErr  string
	}{
		{"no file", &Services{Seeder: services.NewSeeder(memory.NewProductStore())}, []string{"seed"}, "accepts 1 arg(s), received 0"},
		{"not configured", &Services{}, []string{"seed", valid}, "seed service not configured"},
		{"bad format", &Services{}, []string{"seed", valid, "-o", "xml"}, `unknown output format "xml" (valid: text, json, yaml)`},
		{"missing file", &Services{Seeder: services.NewSeeder(memory.NewProductStore())}, []string{"seed", filepath.Join(t.TempDir(), "nope.json")}, "read seed file"},
		{"not an array", &Services{Seeder: services.NewSeeder(memory.NewProductStore())}, []string{"seed", writeSeedFile(t, `{"code": 1}`)}, "decode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			useServices(t, tt.services)

			_, err := execute(tt.args...)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
