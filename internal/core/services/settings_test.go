package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/foodsync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/foodsync/internal/core/domain"
)

func noEnv(string) (string, bool) { return "", false }

func newTestSettingsService(store *memory.ConfigStore) *SettingsService {
	service := NewSettingsService(store)
	service.lookupEnv = noEnv
	return service
}

func TestNewSettingsService(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())
	require.NotNil(t, service)
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service := newTestSettingsService(memory.NewConfigStore())

	settings, err := service.Get()
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultAppSettings(), *settings)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set(KeyRemoteBaseURL, "http://localhost:9000/data")
	_ = store.Set(KeyRemoteTimeout, 5)
	_ = store.Set(KeyRemoteRequestsPerS, 0.5)
	_ = store.Set(KeyImportLimit, 10)
	_ = store.Set(KeyImportInterval, 60)
	_ = store.Set(KeyImportEnabled, false)
	_ = store.Set(KeyAPIKey, "secret")
	_ = store.Set(KeyAPIAddr, "127.0.0.1:9090")

	settings, err := newTestSettingsService(store).Get()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9000/data", settings.Remote.BaseURL)
	assert.Equal(t, 5*time.Second, settings.Remote.Timeout)
	assert.InDelta(t, 0.5, settings.Remote.RequestsPerSecond, 0.0001)
	assert.Equal(t, 10, settings.Import.LimitPerFile)
	assert.Equal(t, time.Hour, settings.Import.Interval)
	assert.False(t, settings.Import.Enabled)
	assert.Equal(t, "secret", settings.API.Key)
	assert.Equal(t, "127.0.0.1:9090", settings.API.Addr)
}

func TestSettingsService_Get_NonPositiveValuesUseDefaults(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set(KeyImportLimit, 0)
	_ = store.Set(KeyRemoteTimeout, -1)

	settings, err := newTestSettingsService(store).Get()
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultLimitPerFile, settings.Import.LimitPerFile)
	assert.Equal(t, domain.DefaultRemoteTimeout, settings.Remote.Timeout)
}

func TestSettingsService_Get_EnvironmentOverrides(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set(KeyAPIKey, "from-file")

	service := NewSettingsService(store)
	service.lookupEnv = func(key string) (string, bool) {
		switch key {
		case EnvAPIKey:
			return "from-env", true
		case EnvBaseURL:
			return "http://mirror.example/json", true
		}
		return "", false
	}

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, "from-env", settings.API.Key)
	assert.Equal(t, "http://mirror.example/json", settings.Remote.BaseURL)
}

func TestSettingsService_Set(t *testing.T) {
	store := memory.NewConfigStore()
	service := newTestSettingsService(store)

	require.NoError(t, service.Set(KeyImportLimit, "25"))
	require.NoError(t, service.Set(KeyRemoteRequestsPerS, "1.5"))
	require.NoError(t, service.Set(KeyImportEnabled, "false"))
	require.NoError(t, service.Set(KeyRemoteBaseURL, "https://example.com/json/"))
	require.NoError(t, service.Set(KeyAPIKey, "k"))

	assert.Equal(t, 25, store.GetInt(KeyImportLimit))
	assert.InDelta(t, 1.5, store.GetFloat(KeyRemoteRequestsPerS), 0.0001)
	assert.False(t, store.GetBool(KeyImportEnabled))
	assert.Equal(t, "https://example.com/json", store.GetString(KeyRemoteBaseURL))
	assert.Equal(t, "k", store.GetString(KeyAPIKey))
}

func TestSettingsService_Set_Invalid(t *testing.T) {
	service := newTestSettingsService(memory.NewConfigStore())

	tests := []struct {
		key   string
		value string
	}{
		{"unknown.key", "x"},
		{KeyImportLimit, "abc"},
		{KeyImportLimit, "0"},
		{KeyRemoteRequestsPerS, "-1"},
		{KeyImportEnabled, "maybe"},
		{KeyRemoteBaseURL, "not a url"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			err := service.Set(tt.key, tt.value)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

// Mock config store that always fails on Set
type failingConfigStore struct {
	*memory.ConfigStore
}

func (f *failingConfigStore) Set(_ string, _ any) error {
	return assert.AnError
}

func TestSettingsService_Set_StoreError(t *testing.T) {
	service := NewSettingsService(&failingConfigStore{ConfigStore: memory.NewConfigStore()})

	err := service.Set(KeyAPIKey, "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "save api.key")
}

func TestSettingsService_Keys(t *testing.T) {
	keys := newTestSettingsService(memory.NewConfigStore()).Keys()
	assert.Len(t, keys, len(settingKinds))
	assert.IsIncreasing(t, keys)
	for _, k := range keys {
		_, ok := settingKinds[k]
		assert.True(t, ok, k)
	}
}

func TestSettingsService_GetDefaults(t *testing.T) {
	service := newTestSettingsService(memory.NewConfigStore())
	assert.Equal(t, domain.DefaultAppSettings(), service.GetDefaults())
}

func TestSettingsService_GetSchedulerConfig(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set(KeyImportInterval, 30)

	cfg := newTestSettingsService(store).GetSchedulerConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 30*time.Minute, cfg.GetTaskConfig(domain.TaskIDProductImport).Interval)
}

func TestSettingsService_Values(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set(KeyImportLimit, 250)
	_ = store.Set(KeyRemoteRequestsPerS, 0.5)
	_ = store.Set(KeyDatabaseDir, "/var/lib/foodsync")

	values, err := newTestSettingsService(store).Values()
	require.NoError(t, err)

	assert.Len(t, values, len(settingKinds))
	assert.Equal(t, "250", values[KeyImportLimit])
	assert.Equal(t, "0.5", values[KeyRemoteRequestsPerS])
	assert.Equal(t, "30", values[KeyRemoteTimeout])
	assert.Equal(t, "1440", values[KeyImportInterval])
	assert.Equal(t, "true", values[KeyImportEnabled])
	assert.Equal(t, domain.DefaultRemoteBaseURL, values[KeyRemoteBaseURL])
	assert.Equal(t, "/var/lib/foodsync", values[KeyDatabaseDir])
	assert.Equal(t, "", values[KeyAPIKey])
}

func TestSettingsService_Values_RoundTripThroughSet(t *testing.T) {
	service := newTestSettingsService(memory.NewConfigStore())
	values, err := service.Values()
	require.NoError(t, err)

	for key, value := range values {
		if value == "" {
			continue
		}
		assert.NoError(t, service.Set(key, value), key)
	}
}
