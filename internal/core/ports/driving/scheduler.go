package driving

import "context"

// Scheduler runs the catalog import on a fixed interval while foodsync serve
// is up.
type Scheduler interface {
	// Start runs due imports until ctx is done or Stop is called.
	// Calling Start on a running scheduler returns nil at once.
	Start(ctx context.Context) error

	// Stop ends the loop and waits for an import in flight to finish.
	Stop() error
}
