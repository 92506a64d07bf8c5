// Package marketsync pulls the marketplace item feed and reconciles it into
// the local catalog.
package marketsync

import (
	"context"
	"encoding/json"
	"time"

	"github.com/tennotools/platwatch-backend/internal/catalog"
	"github.com/tennotools/platwatch-backend/pkg/db/models"
	pkgerrors "github.com/tennotools/platwatch-backend/pkg/errors"
	"github.com/tennotools/platwatch-backend/pkg/logger"
	"github.com/tennotools/platwatch-backend/pkg/metrics"
	"github.com/tennotools/platwatch-backend/pkg/redis"
	"github.com/tennotools/platwatch-backend/pkg/wfmarket"
)

const (
	feedSourceLabel = "warframe-market"
	snapshotScope   = "items"
	defaultCacheTTL = 5 * time.Minute
)

// FeedSource is the upstream marketplace feed.
type FeedSource interface {
	ListItems(ctx context.Context) ([]wfmarket.ItemRecord, error)
}

// SnapshotCache holds recent feed snapshots so back-to-back syncs skip the
// upstream round trip. A nil cache disables this entirely.
type SnapshotCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	FeedSnapshotKey(scope string) string
}

// CatalogSyncer is the slice of the catalog the orchestrator writes through.
type CatalogSyncer interface {
	Sync(ctx context.Context, items []models.CatalogItem) (catalog.SyncResult, error)
}

// Result reports one sync run.
type Result struct {
	Total   int  `json:"total"`
	New     int  `json:"new"`
	Skipped int  `json:"skipped"`
	Cached  bool `json:"cached"`
}

// Service runs feed syncs.
type Service interface {
	Run(ctx context.Context) (Result, error)
}

type service struct {
	feed     FeedSource
	catalog  CatalogSyncer
	cache    SnapshotCache
	metrics  *metrics.SyncMetrics
	logg     *logger.Logger
	cacheTTL time.Duration
}

// Option configures optional orchestrator behavior.
type Option func(*service)

// WithSnapshotCache enables read-through caching of feed snapshots.
func WithSnapshotCache(cache SnapshotCache, ttl time.Duration) Option {
	return func(s *service) {
		s.cache = cache
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithMetrics wires sync run counters.
func WithMetrics(m *metrics.SyncMetrics) Option {
	return func(s *service) {
		s.metrics = m
	}
}

// NewService wires the sync orchestrator.
func NewService(feed FeedSource, catalogSvc CatalogSyncer, logg *logger.Logger, opts ...Option) (Service, error) {
	if feed == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "feed source required")
	}
	if catalogSvc == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "catalog service required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	svc := &service{
		feed:     feed,
		catalog:  catalogSvc,
		logg:     logg,
		cacheTTL: defaultCacheTTL,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc, nil
}

// Run fetches the feed snapshot and writes new items into the catalog. An
// upstream failure surfaces before any write happens; a storage failure
// partway through leaves earlier inserts in place.
func (s *service) Run(ctx context.Context) (Result, error) {
	started := time.Now()

	records, cached, err := s.loadSnapshot(ctx)
	if err != nil {
		s.metrics.IncFailure(feedSourceLabel)
		return Result{}, err
	}

	items := make([]models.CatalogItem, 0, len(records))
	for _, record := range records {
		items = append(items, models.CatalogItem{
			ID:       record.ID,
			ItemName: record.ItemName,
			URLName:  record.URLName,
			Thumb:    record.Thumb,
		})
	}

	syncResult, err := s.catalog.Sync(ctx, items)
	if err != nil {
		s.metrics.IncFailure(feedSourceLabel)
		return Result{}, err
	}

	result := Result{
		Total:   len(items),
		New:     syncResult.New,
		Skipped: len(items) - syncResult.New,
		Cached:  cached,
	}

	s.metrics.ObserveDuration(feedSourceLabel, time.Since(started))
	s.metrics.IncSuccess(feedSourceLabel)
	s.metrics.AddItems(feedSourceLabel, "new", result.New)
	s.metrics.AddItems(feedSourceLabel, "skipped", result.Skipped)

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"total":   result.Total,
		"new":     result.New,
		"skipped": result.Skipped,
		"cached":  result.Cached,
	})
	s.logg.Info(logCtx, "catalog sync finished")
	return result, nil
}

func (s *service) loadSnapshot(ctx context.Context) ([]wfmarket.ItemRecord, bool, error) {
	if s.cache != nil {
		key := s.cache.FeedSnapshotKey(snapshotScope)
		raw, err := s.cache.Get(ctx, key)
		switch {
		case err == nil:
			var records []wfmarket.ItemRecord
			if unmarshalErr := json.Unmarshal([]byte(raw), &records); unmarshalErr == nil {
				return records, true, nil
			}
			s.logg.Warn(s.logg.WithField(ctx, "key", key), "discarding malformed feed snapshot")
		case !redis.IsNil(err):
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "feed cache read failed")
		}
	}

	records, err := s.feed.ListItems(ctx)
	if err != nil {
		return nil, false, err
	}

	if s.cache != nil {
		if payload, marshalErr := json.Marshal(records); marshalErr == nil {
			key := s.cache.FeedSnapshotKey(snapshotScope)
			if setErr := s.cache.Set(ctx, key, string(payload), s.cacheTTL); setErr != nil {
				s.logg.Warn(s.logg.WithField(ctx, "error", setErr.Error()), "feed cache write failed")
			}
		}
	}
	return records, false, nil
}
