package marketsync

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/tennotools/platwatch-backend/internal/catalog"
	"github.com/tennotools/platwatch-backend/pkg/db/models"
	pkgerrors "github.com/tennotools/platwatch-backend/pkg/errors"
	"github.com/tennotools/platwatch-backend/pkg/logger"
	"github.com/tennotools/platwatch-backend/pkg/wfmarket"
)

type fakeFeed struct {
	records []wfmarket.ItemRecord
	err     error
	calls   int
}

func (f *fakeFeed) ListItems(ctx context.Context) ([]wfmarket.ItemRecord, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

type fakeCatalog struct {
	seen    map[string]bool
	syncErr error
	writes  int
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{seen: map[string]bool{}}
}

func (f *fakeCatalog) Sync(ctx context.Context, items []models.CatalogItem) (catalog.SyncResult, error) {
	if f.syncErr != nil {
		return catalog.SyncResult{}, f.syncErr
	}
	var result catalog.SyncResult
	for _, item := range items {
		f.writes++
		if f.seen[item.ID] {
			continue
		}
		f.seen[item.ID] = true
		result.New++
	}
	return result, nil
}

type fakeCache struct {
	data   map[string]string
	getErr error
	setErr error
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string]string{}}
}

func (f *fakeCache) Get(ctx context.Context, key string) (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}
	value, ok := f.data[key]
	if !ok {
		return "", errNilKey
	}
	return value, nil
}

func (f *fakeCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.data[key], _ = value.(string)
	return nil
}

func (f *fakeCache) FeedSnapshotKey(scope string) string {
	return "pw:feed:" + scope
}

// redis.IsNil checks for redis.Nil specifically, so the fake's miss error must
// not satisfy it. Being treated as an unexpected read failure still falls
// through to the upstream fetch, which is what these tests rely on.
var errNilKey = errors.New("key not found")

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: &bytes.Buffer{}})
}

func feedRecords() []wfmarket.ItemRecord {
	return []wfmarket.ItemRecord{
		{ID: "A", ItemName: "Widget", URLName: "widget", Thumb: "a.png"},
		{ID: "B", ItemName: "Gadget", URLName: "gadget", Thumb: "b.png"},
	}
}

func newSyncService(t *testing.T, feed FeedSource, cat CatalogSyncer, opts ...Option) Service {
	t.Helper()
	svc, err := NewService(feed, cat, testLogger(), opts...)
	if err != nil {
		t.Fatalf("unexpected construction error: %v", err)
	}
	return svc
}

func TestService_RunSyncsFeed(t *testing.T) {
	feed := &fakeFeed{records: feedRecords()}
	cat := newFakeCatalog()
	svc := newSyncService(t, feed, cat)

	result, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.Total != 2 || result.New != 2 || result.Skipped != 0 {
		t.Fatalf("unexpected result %+v", result)
	}
	if result.Cached {
		t.Fatal("first run cannot be served from cache")
	}

	result, err = svc.Run(context.Background())
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if result.New != 0 || result.Skipped != 2 {
		t.Fatalf("expected rerun to skip everything, got %+v", result)
	}
}

func TestService_RunUpstreamFailureWritesNothing(t *testing.T) {
	feed := &fakeFeed{err: pkgerrors.New(pkgerrors.CodeUpstream, "feed down")}
	cat := newFakeCatalog()
	svc := newSyncService(t, feed, cat)

	_, err := svc.Run(context.Background())
	if !pkgerrors.IsCode(err, pkgerrors.CodeUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if cat.writes != 0 {
		t.Fatalf("expected no catalog writes after upstream failure, got %d", cat.writes)
	}
}

func TestService_RunPropagatesStorageFailure(t *testing.T) {
	boom := errors.New("disk on fire")
	feed := &fakeFeed{records: feedRecords()}
	cat := newFakeCatalog()
	cat.syncErr = boom
	svc := newSyncService(t, feed, cat)

	_, err := svc.Run(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected storage failure to surface, got %v", err)
	}
}

func TestService_RunServesCachedSnapshot(t *testing.T) {
	cache := newFakeCache()
	payload, err := json.Marshal(feedRecords())
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	cache.data[cache.FeedSnapshotKey("items")] = string(payload)

	feed := &fakeFeed{err: errors.New("should not be called")}
	cat := newFakeCatalog()
	svc := newSyncService(t, feed, cat, WithSnapshotCache(cache, time.Minute))

	result, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !result.Cached {
		t.Fatal("expected snapshot to come from cache")
	}
	if feed.calls != 0 {
		t.Fatalf("expected no upstream fetch, got %d calls", feed.calls)
	}
	if result.New != 2 {
		t.Fatalf("expected cached records to sync, got %+v", result)
	}
}

func TestService_RunPopulatesCacheAfterFetch(t *testing.T) {
	cache := newFakeCache()
	feed := &fakeFeed{records: feedRecords()}
	svc := newSyncService(t, feed, newFakeCatalog(), WithSnapshotCache(cache, time.Minute))

	if _, err := svc.Run(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	stored, ok := cache.data[cache.FeedSnapshotKey("items")]
	if !ok {
		t.Fatal("expected snapshot to be cached")
	}
	var records []wfmarket.ItemRecord
	if err := json.Unmarshal([]byte(stored), &records); err != nil {
		t.Fatalf("cached snapshot is not valid json: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 cached records, got %d", len(records))
	}
}

func TestService_RunCacheWriteFailureIsNonFatal(t *testing.T) {
	cache := newFakeCache()
	cache.setErr = errors.New("cache down")
	feed := &fakeFeed{records: feedRecords()}
	svc := newSyncService(t, feed, newFakeCatalog(), WithSnapshotCache(cache, time.Minute))

	result, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("run must survive a cache write failure: %v", err)
	}
	if result.New != 2 {
		t.Fatalf("unexpected result %+v", result)
	}
}
