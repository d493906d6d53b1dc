package services

import (
	"context"
	"errors"
	"fmt"
	stdsync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/foodsync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/foodsync/internal/core/domain"
	"github.com/custodia-labs/foodsync/internal/core/ports/driven"
)

// --- Fakes for sync testing ---

// fakeCatalogSource implements driven.CatalogSource for testing.
type fakeCatalogSource struct {
	mu        stdsync.Mutex
	files     []string
	listErr   error
	records   map[string][]domain.FeedRecord
	fetchErr  map[string]error
	limits    []int
	fetched   []string
	listEnter chan struct{}
	listGate  chan struct{}
}

func newFakeCatalogSource(files ...string) *fakeCatalogSource {
	return &fakeCatalogSource{
		files:    files,
		records:  make(map[string][]domain.FeedRecord),
		fetchErr: make(map[string]error),
	}
}

func (f *fakeCatalogSource) ListFiles(_ context.Context) ([]string, error) {
	if f.listEnter != nil {
		close(f.listEnter)
	}
	if f.listGate != nil {
		<-f.listGate
	}
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.files, nil
}

func (f *fakeCatalogSource) FetchRecords(_ context.Context, name string, limit int) ([]domain.FeedRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.limits = append(f.limits, limit)
	f.fetched = append(f.fetched, name)
	if err := f.fetchErr[name]; err != nil {
		return nil, err
	}
	recs := f.records[name]
	if len(recs) > limit {
		recs = recs[:limit]
	}
	return recs, nil
}

func (f *fakeCatalogSource) Ping(_ context.Context) error {
	return f.listErr
}

var _ driven.CatalogSource = (*fakeCatalogSource)(nil)

// failingLedger wraps the memory ledger with injectable failures.
type failingLedger struct {
	*memory.RunLedger
	appendErr error
	updateErr error
}

func (l *failingLedger) Append(ctx context.Context, entry domain.RunEntry) (int64, error) {
	if l.appendErr != nil {
		return 0, l.appendErr
	}
	return l.RunLedger.Append(ctx, entry)
}

func (l *failingLedger) UpdateByID(ctx context.Context, entry domain.RunEntry) error {
	if l.updateErr != nil {
		return l.updateErr
	}
	return l.RunLedger.UpdateByID(ctx, entry)
}

// fixedClock returns a clock that advances one second per call.
func fixedClock() func() time.Time {
	var mu stdsync.Mutex
	t := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

type syncFixture struct {
	source   *fakeCatalogSource
	products *memory.ProductStore
	ledger   *memory.RunLedger
	orch     *SyncOrchestrator
}

func newSyncFixture(source *fakeCatalogSource, limit int) *syncFixture {
	products := memory.NewProductStore()
	ledger := memory.NewRunLedger()
	orch := NewSyncOrchestrator(source, products, ledger, limit)
	orch.now = fixedClock()
	orch.newRunID = func() string { return "run-1" }
	return &syncFixture{source: source, products: products, ledger: ledger, orch: orch}
}

func rec(kv ...any) domain.FeedRecord {
	r := domain.FeedRecord{}
	for i := 0; i+1 < len(kv); i += 2 {
		r[kv[i].(string)] = kv[i+1]
	}
	return r
}

// ==================== SyncOrchestrator Tests ====================

func TestNewSyncOrchestrator_DefaultLimit(t *testing.T) {
	orch := NewSyncOrchestrator(newFakeCatalogSource(), memory.NewProductStore(), memory.NewRunLedger(), 0)
	assert.Equal(t, domain.DefaultLimitPerFile, orch.limitPerFile)
}

func TestSyncOrchestrator_Run_OneFileFailsOneSucceeds(t *testing.T) {
	source := newFakeCatalogSource("a.json", "b.json")
	source.records["a.json"] = []domain.FeedRecord{rec("code", 1, "product_name", "Bar")}
	source.fetchErr["b.json"] = fmt.Errorf("%w: GET b.json: status 503 after 3 attempts", domain.ErrTransport)
	f := newSyncFixture(source, 100)
	ctx := context.Background()

	result, err := f.orch.Run(ctx)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, "run-1", result.RunID)
	assert.Equal(t, 1, result.FilesProcessed)
	assert.Equal(t, 1, result.RecordsImported)
	assert.Equal(t, 1, result.RecordsCreated)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "b.json", result.Errors[0].FileName)
	assert.Contains(t, result.Errors[0].Error, "transport error")

	product, err := f.products.FindByCode(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Bar", *product.ProductName)
	assert.Equal(t, domain.ProductStatusDraft, product.Status)

	entries := f.ledger.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "a.json", entries[0].SourceName)
	assert.Equal(t, domain.RunStateCompleted, entries[0].State)
	assert.Equal(t, 1, entries[0].RecordsImported)
	require.NotNil(t, entries[0].CompletedAt)
	assert.Equal(t, "b.json", entries[1].SourceName)
	assert.Equal(t, domain.RunStateFailed, entries[1].State)
	assert.Contains(t, entries[1].ErrorDetail, "status 503")
	assert.Equal(t, 0, entries[1].RecordsImported)
	for _, e := range entries {
		assert.Equal(t, "run-1", e.RunID)
	}
}

func TestSyncOrchestrator_Run_ListingFailure(t *testing.T) {
	source := newFakeCatalogSource()
	source.listErr = fmt.Errorf("%w: GET index.txt: connection refused", domain.ErrTransport)
	f := newSyncFixture(source, 100)

	result, err := f.orch.Run(context.Background())
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, 0, result.FilesProcessed)
	assert.Equal(t, 0, result.RecordsImported)
	require.Len(t, result.Errors, 1)
	assert.Empty(t, result.Errors[0].FileName)
	assert.Contains(t, result.Errors[0].Error, "connection refused")
	assert.Empty(t, f.ledger.Entries())
	assert.Empty(t, source.fetched)
}

func TestSyncOrchestrator_Run_EmptyListing(t *testing.T) {
	f := newSyncFixture(newFakeCatalogSource(), 100)

	result, err := f.orch.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 0, result.FilesProcessed)
	assert.Empty(t, result.Errors)
	assert.Empty(t, f.ledger.Entries())
}

func TestSyncOrchestrator_Run_EmptyFileCompletesWithZero(t *testing.T) {
	source := newFakeCatalogSource("empty.json")
	f := newSyncFixture(source, 100)

	result, err := f.orch.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.FilesProcessed)
	assert.Equal(t, 0, result.RecordsImported)
	entries := f.ledger.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, domain.RunStateCompleted, entries[0].State)
	assert.Equal(t, 0, entries[0].RecordsImported)
}

func TestSyncOrchestrator_Run_SkipsRecordsWithoutCode(t *testing.T) {
	source := newFakeCatalogSource("a.json")
	source.records["a.json"] = []domain.FeedRecord{
		rec("product_name", "no code"),
		rec("code", nil, "product_name", "null code"),
		rec("code", 5, "product_name", "ok"),
	}
	f := newSyncFixture(source, 100)

	result, err := f.orch.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.RecordsImported)
	assert.Equal(t, 2, result.RecordsSkipped)
	assert.Empty(t, result.Errors)
	count, _ := f.products.Count(context.Background())
	assert.Equal(t, 1, count)
}

func TestSyncOrchestrator_Run_RejectsMalformedRecords(t *testing.T) {
	source := newFakeCatalogSource("a.json")
	source.records["a.json"] = []domain.FeedRecord{
		rec("code", "abc"),
		rec("code", -4),
		rec("code", 6, "nutriscore_score", "high"),
		rec("code", 7),
	}
	f := newSyncFixture(source, 100)

	result, err := f.orch.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.RecordsImported)
	assert.Equal(t, 3, result.RecordsRejected)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 1, f.ledger.Entries()[0].RecordsImported)
}

func TestSyncOrchestrator_Run_PassesLimitPerFile(t *testing.T) {
	source := newFakeCatalogSource("a.json", "b.json")
	for i := 1; i <= 5; i++ {
		source.records["a.json"] = append(source.records["a.json"], rec("code", i))
	}
	f := newSyncFixture(source, 3)

	result, err := f.orch.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int{3, 3}, source.limits)
	assert.Equal(t, 3, result.RecordsImported)
}

func TestSyncOrchestrator_Run_Idempotent(t *testing.T) {
	source := newFakeCatalogSource("a.json")
	source.records["a.json"] = []domain.FeedRecord{
		rec("code", 1, "product_name", "One"),
		rec("code", 2, "product_name", "Two"),
	}
	f := newSyncFixture(source, 100)
	ctx := context.Background()

	first, err := f.orch.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, first.RecordsCreated)
	firstOne, err := f.products.FindByCode(ctx, 1)
	require.NoError(t, err)

	second, err := f.orch.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, second.RecordsImported)
	assert.Equal(t, 0, second.RecordsCreated)
	assert.Equal(t, 2, second.RecordsUpdated)

	count, err := f.products.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	secondOne, err := f.products.FindByCode(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, *firstOne, *secondOne)
	assert.Len(t, f.ledger.Entries(), 2)
}

func TestSyncOrchestrator_Run_PartialUpdateLaw(t *testing.T) {
	ctx := context.Background()
	source := newFakeCatalogSource("a.json")
	f := newSyncFixture(source, 100)

	source.records["a.json"] = []domain.FeedRecord{
		rec("code", 9, "product_name", "Original", "brands", "Acme", "nutriscore_score", 3),
	}
	_, err := f.orch.Run(ctx)
	require.NoError(t, err)

	// Brands absent and score null: both kept. Name supplied: overwritten.
	source.records["a.json"] = []domain.FeedRecord{
		rec("code", 9, "product_name", "Renamed", "nutriscore_score", nil),
	}
	_, err = f.orch.Run(ctx)
	require.NoError(t, err)

	got, err := f.products.FindByCode(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", *got.ProductName)
	require.NotNil(t, got.Brands)
	assert.Equal(t, "Acme", *got.Brands)
	require.NotNil(t, got.NutriscoreScore)
	assert.Equal(t, int64(3), *got.NutriscoreScore)
}

func TestSyncOrchestrator_Run_KeepsEditedStatus(t *testing.T) {
	ctx := context.Background()
	source := newFakeCatalogSource("a.json")
	source.records["a.json"] = []domain.FeedRecord{rec("code", 3, "product_name", "x")}
	f := newSyncFixture(source, 100)

	_, err := f.orch.Run(ctx)
	require.NoError(t, err)
	stored, _ := f.products.FindByCode(ctx, 3)
	require.NoError(t, f.products.Update(ctx, stored.WithStatus(domain.ProductStatusPublished)))

	_, err = f.orch.Run(ctx)
	require.NoError(t, err)
	got, _ := f.products.FindByCode(ctx, 3)
	assert.Equal(t, domain.ProductStatusPublished, got.Status)
	assert.Equal(t, stored.ImportedAt, got.ImportedAt)
}

func TestSyncOrchestrator_Run_ContinuesAfterFailedFile(t *testing.T) {
	source := newFakeCatalogSource("a.json", "b.json", "c.json")
	source.fetchErr["a.json"] = fmt.Errorf("%w: bad json", domain.ErrDecode)
	source.records["c.json"] = []domain.FeedRecord{rec("code", 1)}
	f := newSyncFixture(source, 100)

	result, err := f.orch.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"a.json", "b.json", "c.json"}, source.fetched)
	assert.Equal(t, 2, result.FilesProcessed)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "a.json", result.Errors[0].FileName)
}

func TestSyncOrchestrator_Run_LedgerAppendFailure(t *testing.T) {
	source := newFakeCatalogSource("a.json")
	source.records["a.json"] = []domain.FeedRecord{rec("code", 1)}
	ledger := &failingLedger{RunLedger: memory.NewRunLedger(), appendErr: errors.New("disk full")}
	orch := NewSyncOrchestrator(source, memory.NewProductStore(), ledger, 100)

	result, err := orch.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 0, result.FilesProcessed)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0].Error, "open run entry: disk full")
	assert.Empty(t, source.fetched)
}

func TestSyncOrchestrator_Run_LedgerCloseFailure(t *testing.T) {
	source := newFakeCatalogSource("a.json")
	source.records["a.json"] = []domain.FeedRecord{rec("code", 1)}
	ledger := &failingLedger{RunLedger: memory.NewRunLedger(), updateErr: errors.New("locked")}
	orch := NewSyncOrchestrator(source, memory.NewProductStore(), ledger, 100)

	result, err := orch.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.FilesProcessed)
	assert.Equal(t, 1, result.RecordsImported)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "a.json", result.Errors[0].FileName)
	assert.Contains(t, result.Errors[0].Error, "close run entry: locked")
}

func TestSyncOrchestrator_Run_CancelledBetweenFiles(t *testing.T) {
	source := newFakeCatalogSource("a.json", "b.json")
	f := newSyncFixture(source, 100)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := f.orch.Run(ctx)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Empty(t, source.fetched)
	require.Len(t, result.Errors, 1)
	assert.Empty(t, result.Errors[0].FileName)
	assert.Contains(t, result.Errors[0].Error, "import interrupted")
}

func TestSyncOrchestrator_Run_RejectsConcurrentRun(t *testing.T) {
	source := newFakeCatalogSource()
	source.listEnter = make(chan struct{})
	source.listGate = make(chan struct{})
	f := newSyncFixture(source, 100)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = f.orch.Run(context.Background())
	}()
	<-source.listEnter

	status, err := f.orch.Status(context.Background())
	require.NoError(t, err)
	assert.True(t, status.Running)
	assert.Equal(t, "run-1", status.RunID)

	_, err = f.orch.Run(context.Background())
	assert.ErrorIs(t, err, domain.ErrSyncInProgress)

	close(source.listGate)
	<-done

	status, err = f.orch.Status(context.Background())
	require.NoError(t, err)
	assert.False(t, status.Running)
}

func TestSyncOrchestrator_LastRunStartedAt(t *testing.T) {
	source := newFakeCatalogSource("a.json", "b.json")
	f := newSyncFixture(source, 100)
	ctx := context.Background()

	last, err := f.orch.LastRunStartedAt(ctx)
	require.NoError(t, err)
	assert.Nil(t, last)

	_, err = f.orch.Run(ctx)
	require.NoError(t, err)

	last, err = f.orch.LastRunStartedAt(ctx)
	require.NoError(t, err)
	require.NotNil(t, last)
	entries := f.ledger.Entries()
	assert.Equal(t, entries[len(entries)-1].StartedAt, *last)
}
