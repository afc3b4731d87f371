package products

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/soukly/soukly-backend/pkg/db/models"
	"github.com/soukly/soukly-backend/pkg/enums"
)

func setupProductsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  price NUMERIC NOT NULL DEFAULT 0,
  stock INTEGER NOT NULL DEFAULT 0,
  status TEXT NOT NULL DEFAULT 'available',
  image_url TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, title string, price int64, stock int, status enums.ProductStatus) models.Product {
	t.Helper()
	product := models.Product{
		ID:     uuid.New(),
		Title:  title,
		Price:  decimal.NewFromInt(price),
		Stock:  stock,
		Status: status,
	}
	require.NoError(t, db.Create(&product).Error)
	return product
}

func TestFindByIDsReturnsOnlyExistingRows(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	kept := seedProduct(t, db, "Argan oil", 18, 12, enums.ProductStatusAvailable)
	soldOut := seedProduct(t, db, "Saffron box", 42, 0, enums.ProductStatusUnavailable)
	missing := uuid.New()

	snapshots, err := repo.FindByIDs(ctx, []uuid.UUID{kept.ID, missing, soldOut.ID, kept.ID})
	require.NoError(t, err)
	require.Len(t, snapshots, 2)

	byID := make(map[uuid.UUID]models.Product, len(snapshots))
	for _, snapshot := range snapshots {
		byID[snapshot.ID] = snapshot
	}
	require.Contains(t, byID, kept.ID)
	require.Contains(t, byID, soldOut.ID)
	assert.True(t, byID[kept.ID].Price.Equal(decimal.NewFromInt(18)))
	assert.False(t, byID[soldOut.ID].Purchasable())
}

func TestFindByIDsEmptyInput(t *testing.T) {
	repo := NewRepository(setupProductsTestDB(t))

	snapshots, err := repo.FindByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, snapshots)
}

func TestFindByID(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)

	product := seedProduct(t, db, "Mint tea set", 25, 3, enums.ProductStatusAvailable)

	found, err := repo.FindByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, product.ID, found.ID)

	_, err = repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
