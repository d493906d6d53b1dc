package domain

import "time"

// Defaults for the remote bulk source and the import job.
const (
	DefaultRemoteBaseURL      = "https://challenges.coode.sh/food/data/json"
	DefaultRemoteTimeout      = 30 * time.Second
	DefaultRequestsPerSecond  = 2.0
	DefaultRetryAttempts      = 3
	DefaultBackoffBase        = 2
	DefaultBackoffUnit        = time.Second
	DefaultLimitPerFile       = 100
	DefaultImportInterval     = 24 * time.Hour
	DefaultAPIAddr            = ":8080"
	DefaultPageSize           = 20
	MaxPageSize               = 100
	DefaultRunHistoryRetained = 500
)

// RemoteSettings configures the remote catalog source.
type RemoteSettings struct {
	// BaseURL is the directory holding index.txt and the data files.
	BaseURL string

	// Timeout bounds a single HTTP request.
	Timeout time.Duration

	// RequestsPerSecond throttles requests to the remote host.
	RequestsPerSecond float64

	// RetryAttempts is the total number of attempts per request.
	RetryAttempts int

	// BackoffBase is the exponential base between attempts.
	BackoffBase int

	// BackoffUnit is the wait before the first retry.
	BackoffUnit time.Duration
}

// ImportSettings configures the import job.
type ImportSettings struct {
	// LimitPerFile caps the records taken from one remote file.
	LimitPerFile int

	// Enabled controls whether the scheduler runs the import.
	Enabled bool

	// Interval is the time between scheduled imports.
	Interval time.Duration
}

// APISettings configures the HTTP API.
type APISettings struct {
	// Key is required on every request except the health check.
	// An empty key rejects every protected request.
	Key string

	// Addr is the listen address.
	Addr string
}

// DatabaseSettings configures local storage.
type DatabaseSettings struct {
	// Dir holds the SQLite database. Empty means the data directory.
	Dir string
}

// AppSettings holds all application settings.
type AppSettings struct {
	Remote   RemoteSettings
	Import   ImportSettings
	API      APISettings
	Database DatabaseSettings
}

// DefaultAppSettings returns settings with sensible defaults.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Remote: RemoteSettings{
			BaseURL:           DefaultRemoteBaseURL,
			Timeout:           DefaultRemoteTimeout,
			RequestsPerSecond: DefaultRequestsPerSecond,
			RetryAttempts:     DefaultRetryAttempts,
			BackoffBase:       DefaultBackoffBase,
			BackoffUnit:       DefaultBackoffUnit,
		},
		Import: ImportSettings{
			LimitPerFile: DefaultLimitPerFile,
			Enabled:      true,
			Interval:     DefaultImportInterval,
		},
		API: APISettings{
			Addr: DefaultAPIAddr,
		},
	}
}
