package migrations

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUp(t *testing.T) {
	ms, err := Up()
	require.NoError(t, err)
	require.NotEmpty(t, ms)

	assert.Equal(t, 1, ms[0].Version)
	assert.Equal(t, "001_initial", ms[0].Name)
	assert.Contains(t, ms[0].SQL, "CREATE TABLE IF NOT EXISTS products")
	assert.NotContains(t, ms[0].SQL, "schema_migrations")
}

func TestLoad_OrdersByVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"010_later.up.sql":    {Data: []byte("SELECT 10;")},
		"002_second.up.sql":   {Data: []byte("SELECT 2;")},
		"002_second.down.sql": {Data: []byte("SELECT -2;")},
		"notes.up.sql":        {Data: []byte("ignored")},
		"README.md":           {Data: []byte("ignored")},
	}

	ms, err := load(fsys)
	require.NoError(t, err)

	require.Len(t, ms, 2)
	assert.Equal(t, Migration{Version: 2, Name: "002_second", SQL: "SELECT 2;"}, ms[0])
	assert.Equal(t, 10, ms[1].Version)
}

func TestLoad_DuplicateVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"003_a.up.sql": {Data: []byte("SELECT 1;")},
		"003_b.up.sql": {Data: []byte("SELECT 2;")},
	}

	_, err := load(fsys)
	assert.ErrorContains(t, err, "migration version 3")
}
