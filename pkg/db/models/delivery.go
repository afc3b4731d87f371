package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DeliveryCompany is a carrier whose city/region price book this service reads.
type DeliveryCompany struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Name      string    `gorm:"column:name;not null"`
	Active    bool      `gorm:"column:active;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// DeliveryCity carries the carrier's delivery fee for a city.
type DeliveryCity struct {
	ID        int64           `gorm:"column:id;primaryKey;autoIncrement"`
	CompanyID int64           `gorm:"column:company_id;not null;index"`
	Name      string          `gorm:"column:name;not null"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null;default:0"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// DeliveryRegion is a sub-area of a city. Price is optional; a missing price
// means the city price applies.
type DeliveryRegion struct {
	ID        int64            `gorm:"column:id;primaryKey;autoIncrement"`
	CityID    int64            `gorm:"column:city_id;not null;index"`
	Name      string           `gorm:"column:name;not null"`
	Price     *decimal.Decimal `gorm:"column:price;type:numeric(12,2)"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
