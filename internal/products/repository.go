package products

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/soukly/soukly-backend/pkg/db/models"
)

// Repository reads catalog snapshots for cart reconciliation.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a products repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByIDs batch-loads product snapshots. Ids with no row are simply absent
// from the result; callers decide how to treat the gap.
func (r *Repository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	distinct := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		distinct = append(distinct, id)
	}

	var snapshots []models.Product
	err := r.db.WithContext(ctx).
		Where("id IN ?", distinct).
		Find(&snapshots).Error
	if err != nil {
		return nil, err
	}
	return snapshots, nil
}

// FindByID loads a single product snapshot.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var snapshot models.Product
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&snapshot).Error
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}
