package delivery

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/soukly/soukly-backend/pkg/db/models"
	pkgerrors "github.com/soukly/soukly-backend/pkg/errors"
)

// CityDTO is a city row of the carrier price book as served to the UI.
type CityDTO struct {
	ID    int64           `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// RegionDTO is a region row; a nil price means "city price applies".
type RegionDTO struct {
	ID    int64            `json:"id"`
	Name  string           `json:"name"`
	Price *decimal.Decimal `json:"price,omitempty"`
}

// Service serves delivery price lookups and shipping resolution.
type Service interface {
	ListCities(ctx context.Context, companyID int64) ([]CityDTO, error)
	ListRegions(ctx context.Context, cityID int64) ([]RegionDTO, error)
	ResolveShipping(ctx context.Context, cityID int64, regionID *int64) (decimal.Decimal, error)
}

type service struct {
	repo *Repository
}

// NewService wires the delivery service.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("delivery repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListCities(ctx context.Context, companyID int64) ([]CityDTO, error) {
	company, err := s.repo.FindCompany(ctx, companyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "delivery company not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load delivery company")
	}
	if !company.Active {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "delivery company not found")
	}
	cities, err := s.repo.ListCities(ctx, companyID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list delivery cities")
	}
	out := make([]CityDTO, 0, len(cities))
	for _, city := range cities {
		out = append(out, CityDTO{ID: city.ID, Name: city.Name, Price: city.Price})
	}
	return out, nil
}

func (s *service) ListRegions(ctx context.Context, cityID int64) ([]RegionDTO, error) {
	if _, err := s.cityByID(ctx, cityID); err != nil {
		return nil, err
	}
	regions, err := s.repo.ListRegions(ctx, cityID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list delivery regions")
	}
	out := make([]RegionDTO, 0, len(regions))
	for _, region := range regions {
		out = append(out, RegionDTO{ID: region.ID, Name: region.Name, Price: region.Price})
	}
	return out, nil
}

// ResolveShipping returns the advisory delivery fee for a city, optionally
// narrowed to a region. A region price replaces the city price only when it
// is positive; a zero or missing region price keeps the city price.
func (s *service) ResolveShipping(ctx context.Context, cityID int64, regionID *int64) (decimal.Decimal, error) {
	city, err := s.cityByID(ctx, cityID)
	if err != nil {
		return decimal.Zero, err
	}
	shipping := city.Price
	if regionID == nil {
		return shipping, nil
	}
	region, err := s.repo.FindRegion(ctx, *regionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return shipping, nil
		}
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load delivery region")
	}
	if region.CityID != cityID {
		return shipping, nil
	}
	if region.Price != nil && region.Price.IsPositive() {
		shipping = *region.Price
	}
	return shipping, nil
}

func (s *service) cityByID(ctx context.Context, cityID int64) (*models.DeliveryCity, error) {
	city, err := s.repo.FindCity(ctx, cityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "delivery city not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load delivery city")
	}
	return city, nil
}
