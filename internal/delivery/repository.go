package delivery

import (
	"context"

	"gorm.io/gorm"

	"github.com/soukly/soukly-backend/pkg/db/models"
)

// Repository reads the carrier price book.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a delivery repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindCompany loads a carrier by id.
func (r *Repository) FindCompany(ctx context.Context, companyID int64) (*models.DeliveryCompany, error) {
	var company models.DeliveryCompany
	err := r.db.WithContext(ctx).
		Where("id = ?", companyID).
		First(&company).Error
	if err != nil {
		return nil, err
	}
	return &company, nil
}

// ListCities returns the carrier's priced cities sorted by name.
func (r *Repository) ListCities(ctx context.Context, companyID int64) ([]models.DeliveryCity, error) {
	var cities []models.DeliveryCity
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("name ASC").
		Find(&cities).Error
	if err != nil {
		return nil, err
	}
	return cities, nil
}

// FindCity loads a priced city by id.
func (r *Repository) FindCity(ctx context.Context, cityID int64) (*models.DeliveryCity, error) {
	var city models.DeliveryCity
	err := r.db.WithContext(ctx).
		Where("id = ?", cityID).
		First(&city).Error
	if err != nil {
		return nil, err
	}
	return &city, nil
}

// ListRegions returns a city's regions sorted by name.
func (r *Repository) ListRegions(ctx context.Context, cityID int64) ([]models.DeliveryRegion, error) {
	var regions []models.DeliveryRegion
	err := r.db.WithContext(ctx).
		Where("city_id = ?", cityID).
		Order("name ASC").
		Find(&regions).Error
	if err != nil {
		return nil, err
	}
	return regions, nil
}

// FindRegion loads a region by id.
func (r *Repository) FindRegion(ctx context.Context, regionID int64) (*models.DeliveryRegion, error) {
	var region models.DeliveryRegion
	err := r.db.WithContext(ctx).
		Where("id = ?", regionID).
		First(&region).Error
	if err != nil {
		return nil, err
	}
	return &region, nil
}
