package accountcart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/soukly/soukly-backend/pkg/db/models"
)

// Repository reads the server-side cart rows of authenticated users.
// Mutation of those rows belongs to the commerce API.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds an account cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListByUser returns the user's cart lines in insertion order.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.AccountCartItem, error) {
	var items []models.AccountCartItem
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
