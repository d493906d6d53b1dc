package services

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/foodsync/internal/core/domain"
	"github.com/custodia-labs/foodsync/internal/core/ports/driven"
	"github.com/custodia-labs/foodsync/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	KeyRemoteBaseURL      = "remote.base_url"
	KeyRemoteTimeout      = "remote.timeout_seconds"
	KeyRemoteRequestsPerS = "remote.requests_per_second"
	KeyImportLimit        = "import.limit_per_file"
	KeyImportInterval     = "import.interval_minutes"
	KeyImportEnabled      = "import.enabled"
	KeyAPIKey             = "api.key"
	KeyAPIAddr            = "api.addr"
	KeyDatabaseDir        = "database.dir"
)

// Environment variables that override the config file.
//
//nolint:gosec // G101: variable names, not credentials.
const (
	EnvAPIKey  = "FOODSYNC_API_KEY"
	EnvBaseURL = "FOODSYNC_BASE_URL"
)

type settingKind int

const (
	kindString settingKind = iota
	kindInt
	kindFloat
	kindBool
)

// settingKinds lists every recognised key and how its value is parsed.
var settingKinds = map[string]settingKind{
	KeyRemoteBaseURL:      kindString,
	KeyRemoteTimeout:      kindInt,
	KeyRemoteRequestsPerS: kindFloat,
	KeyImportLimit:        kindInt,
	KeyImportInterval:     kindInt,
	KeyImportEnabled:      kindBool,
	KeyAPIKey:             kindString,
	KeyAPIAddr:            kindString,
	KeyDatabaseDir:        kindString,
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	lookupEnv   func(string) (string, bool)
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		lookupEnv:   os.LookupEnv,
	}
}

// Get retrieves current application settings with defaults and
// environment overrides applied.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Remote: domain.RemoteSettings{
			BaseURL:           s.getString(KeyRemoteBaseURL, defaults.Remote.BaseURL),
			Timeout:           time.Duration(s.getInt(KeyRemoteTimeout, int(defaults.Remote.Timeout/time.Second))) * time.Second,
			RequestsPerSecond: s.getFloat(KeyRemoteRequestsPerS, defaults.Remote.RequestsPerSecond),
			RetryAttempts:     defaults.Remote.RetryAttempts,
			BackoffBase:       defaults.Remote.BackoffBase,
			BackoffUnit:       defaults.Remote.BackoffUnit,
		},
		Import: domain.ImportSettings{
			LimitPerFile: s.getInt(KeyImportLimit, defaults.Import.LimitPerFile),
			Enabled:      s.getBool(KeyImportEnabled, defaults.Import.Enabled),
			Interval:     time.Duration(s.getInt(KeyImportInterval, int(defaults.Import.Interval/time.Minute))) * time.Minute,
		},
		API: domain.APISettings{
			Key:  s.configStore.GetString(KeyAPIKey),
			Addr: s.getString(KeyAPIAddr, defaults.API.Addr),
		},
		Database: domain.DatabaseSettings{
			Dir: s.configStore.GetString(KeyDatabaseDir),
		},
	}

	if v, ok := s.lookupEnv(EnvAPIKey); ok && v != "" {
		settings.API.Key = v
	}
	if v, ok := s.lookupEnv(EnvBaseURL); ok && v != "" {
		settings.Remote.BaseURL = v
	}

	return settings, nil
}

// Set validates and stores a single setting by key.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settingKinds[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	var parsed any
	switch kind {
	case kindString:
		if key == KeyRemoteBaseURL {
			u, err := url.Parse(value)
			if err != nil || u.Scheme == "" || u.Host == "" {
				return fmt.Errorf("%w: %s must be an absolute URL", domain.ErrInvalidInput, key)
			}
			value = strings.TrimRight(value, "/")
		}
		parsed = value
	case kindInt:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n < 1 {
			return fmt.Errorf("%w: %s must be a positive integer", domain.ErrInvalidInput, key)
		}
		parsed = n
	case kindFloat:
		f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || f <= 0 {
			return fmt.Errorf("%w: %s must be a positive number", domain.ErrInvalidInput, key)
		}
		parsed = f
	case kindBool:
		b, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%w: %s must be true or false", domain.ErrInvalidInput, key)
		}
		parsed = b
	}

	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Keys returns the recognised setting keys in sorted order.
func (s *SettingsService) Keys() []string {
	return []string{
		KeyAPIAddr,
		KeyAPIKey,
		KeyDatabaseDir,
		KeyImportEnabled,
		KeyImportInterval,
		KeyImportLimit,
		KeyRemoteBaseURL,
		KeyRemoteRequestsPerS,
		KeyRemoteTimeout,
	}
}

// Values returns the effective value of every recognised key, formatted
// the way Set accepts it.
func (s *SettingsService) Values() (map[string]string, error) {
	settings, err := s.Get()
	if err != nil {
		return nil, err
	}
	return map[string]string{
		KeyRemoteBaseURL:      settings.Remote.BaseURL,
		KeyRemoteTimeout:      strconv.Itoa(int(settings.Remote.Timeout / time.Second)),
		KeyRemoteRequestsPerS: strconv.FormatFloat(settings.Remote.RequestsPerSecond, 'f', -1, 64),
		KeyImportLimit:        strconv.Itoa(settings.Import.LimitPerFile),
		KeyImportInterval:     strconv.Itoa(int(settings.Import.Interval / time.Minute)),
		KeyImportEnabled:      strconv.FormatBool(settings.Import.Enabled),
		KeyAPIKey:             settings.API.Key,
		KeyAPIAddr:            settings.API.Addr,
		KeyDatabaseDir:        settings.Database.Dir,
	}, nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// GetSchedulerConfig returns the scheduler configuration derived from the
// import settings.
func (s *SettingsService) GetSchedulerConfig() domain.SchedulerConfig {
	settings, err := s.Get()
	if err != nil {
		return domain.DefaultSchedulerConfig()
	}
	return domain.SchedulerConfigFromSettings(settings.Import)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	val := s.configStore.GetFloat(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}
