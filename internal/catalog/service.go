package catalog

import (
	"context"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/tennotools/platwatch-backend/pkg/db/models"
	pkgerrors "github.com/tennotools/platwatch-backend/pkg/errors"
)

// Service exposes the catalog operations consumed by the HTTP layer and the
// sync orchestrator.
type Service interface {
	Sync(ctx context.Context, items []models.CatalogItem) (SyncResult, error)
	List(ctx context.Context) ([]models.CatalogItem, error)
	Get(ctx context.Context, id string) (*models.CatalogItem, error)
	FindByFuzzyName(ctx context.Context, query string) (*models.CatalogItem, error)
}

// SyncResult reports how a feed snapshot reconciled against local storage.
type SyncResult struct {
	New int `json:"new"`
}

type service struct {
	repo Repository
}

// NewService wires catalog dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "catalog repository required")
	}
	return &service{repo: repo}, nil
}

// Sync inserts each record, skipping ids that already exist. Records are
// committed one by one, so a failure partway leaves earlier inserts in place
// and the next sync picks up where this one stopped.
func (s *service) Sync(ctx context.Context, items []models.CatalogItem) (SyncResult, error) {
	var result SyncResult
	for i := range items {
		inserted, err := s.repo.InsertIgnoreExisting(ctx, &items[i])
		if err != nil {
			return result, err
		}
		if inserted {
			result.New++
		}
	}
	return result, nil
}

func (s *service) List(ctx context.Context) ([]models.CatalogItem, error) {
	return s.repo.List(ctx)
}

func (s *service) Get(ctx context.Context, id string) (*models.CatalogItem, error) {
	if strings.TrimSpace(id) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "catalog item not found")
	}
	return item, nil
}

// FindByFuzzyName returns the best approximate match for query against item
// display names. Items are ranked by match score; equal scores keep insertion
// order because the ranking sort is stable.
func (s *service) FindByFuzzyName(ctx context.Context, query string) (*models.CatalogItem, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "search query required")
	}

	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(items))
	for i, item := range items {
		names[i] = item.ItemName
	}

	matches := fuzzy.Find(trimmed, names)
	if len(matches) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no catalog item matched the search")
	}

	best := items[matches[0].Index]
	return &best, nil
}
