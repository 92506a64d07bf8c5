package catalog

import (
	"context"

	"gorm.io/gorm"

	"github.com/tennotools/platwatch-backend/internal/repo"
	"github.com/tennotools/platwatch-backend/pkg/db/models"
)

// Repository persists catalog items mirrored from the market feed.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	InsertIgnoreExisting(ctx context.Context, item *models.CatalogItem) (bool, error)
	List(ctx context.Context) ([]models.CatalogItem, error)
	GetByID(ctx context.Context, id string) (*models.CatalogItem, error)
	Exists(ctx context.Context, id string) (bool, error)
}

type repositoryImpl struct {
	store repo.Store[models.CatalogItem]
}

// NewRepository returns a catalog repository bound to the provided database.
func NewRepository(conn *gorm.DB) Repository {
	return &repositoryImpl{store: repo.NewStore[models.CatalogItem](conn)}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{store: r.store.WithTx(tx)}
}

// InsertIgnoreExisting inserts one feed record and reports whether the row is
// new. A uniqueness conflict means another sync (or an earlier run) already
// stored the id, which is not an error here.
func (r *repositoryImpl) InsertIgnoreExisting(ctx context.Context, item *models.CatalogItem) (bool, error) {
	if _, err := r.store.Create(ctx, item); err != nil {
		if repo.IsConflict(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *repositoryImpl) List(ctx context.Context) ([]models.CatalogItem, error) {
	return r.store.Find(ctx, nil, 0, 0)
}

func (r *repositoryImpl) GetByID(ctx context.Context, id string) (*models.CatalogItem, error) {
	return r.store.FindByID(ctx, id)
}

func (r *repositoryImpl) Exists(ctx context.Context, id string) (bool, error) {
	item, err := r.store.FindByID(ctx, id)
	if err != nil {
		return false, err
	}
	return item != nil, nil
}
