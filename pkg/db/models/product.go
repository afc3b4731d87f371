package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/soukly/soukly-backend/pkg/enums"
)

// Product is the catalog read model consumed during cart reconciliation.
// Catalog CRUD is owned elsewhere; this service only reads snapshots.
type Product struct {
	ID        uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title     string              `gorm:"column:title;not null"`
	Price     decimal.Decimal     `gorm:"column:price;type:numeric(12,2);not null"`
	Stock     int                 `gorm:"column:stock;not null;default:0"`
	Status    enums.ProductStatus `gorm:"column:status;not null;default:'available'"`
	ImageURL  *string             `gorm:"column:image_url"`
	CreatedAt time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// Purchasable reports whether the product may appear in a canonical cart.
func (p Product) Purchasable() bool {
	return p.Status == enums.ProductStatusAvailable
}
