package cli

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/foodsync/internal/core/domain"
	"github.com/custodia-labs/foodsync/internal/core/ports/driving"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// mockSyncOrchestrator implements driving.SyncOrchestrator for testing.
type mockSyncOrchestrator struct {
	result *domain.ImportResult
	err    error
	calls  int
}

func (m *mockSyncOrchestrator) Run(_ context.Context) (*domain.ImportResult, error) {
	m.calls++
	return m.result, m.err
}

func (m *mockSyncOrchestrator) LastRunStartedAt(_ context.Context) (*time.Time, error) {
	return nil, nil
}

func (m *mockSyncOrchestrator) Status(_ context.Context) (*driving.SyncStatus, error) {
	return &driving.SyncStatus{}, nil
}

// mockSource implements SourceChecker.
type mockSource struct {
	err error
}

func (m *mockSource) Ping(_ context.Context) error { return m.err }

// mockAPIServer blocks until its context is cancelled.
type mockAPIServer struct {
	mu      sync.Mutex
	addr    string
	keys    []string
	started chan struct{}
}

func newMockAPIServer() *mockAPIServer {
	return &mockAPIServer{started: make(chan struct{})}
}

func (m *mockAPIServer) ListenAndServe(ctx context.Context, addr string) error {
	m.mu.Lock()
	m.addr = addr
	m.mu.Unlock()
	close(m.started)
	<-ctx.Done()
	return nil
}

func (m *mockAPIServer) SetAPIKey(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys = append(m.keys, key)
}

func (m *mockAPIServer) snapshot() (string, []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.addr, append([]string(nil), m.keys...)
}

// mockScheduler blocks until its context is cancelled.
type mockScheduler struct {
	mu      sync.Mutex
	started bool
	stopped bool
}

func (m *mockScheduler) Start(ctx context.Context) error {
	m.mu.Lock()
	m.started = true
	m.mu.Unlock()
	<-ctx.Done()
	return ctx.Err()
}

func (m *mockScheduler) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = true
	return nil
}

// mockWatcher reports one change and then waits.
type mockWatcher struct {
	fired chan struct{}
}

func (m *mockWatcher) Watch(ctx context.Context, onChange func()) error {
	onChange()
	close(m.fired)
	<-ctx.Done()
	return nil
}

// useServices installs services for one test.
func useServices(t *testing.T, s *Services) {
	t.Helper()
	SetServices(s)
	t.Cleanup(func() { SetServices(nil) })
}

// resetFlags restores every flag to its default so earlier runs do not leak.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func executeContext(ctx context.Context, args ...string) (string, error) {
	resetFlags(rootCmd)
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := Execute(ctx)
	return buf.String(), err
}

func execute(args ...string) (string, error) {
	return executeContext(context.Background(), args...)
}
