package wallet

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
)

func setupWalletTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS wallets (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL UNIQUE,
  balance NUMERIC NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func TestBalanceByUser(t *testing.T) {
	db := setupWalletTestDB(t)
	repo := NewRepository(db)

	userID := uuid.New()
	row := models.Wallet{ID: uuid.New(), UserID: userID, Balance: decimal.RequireFromString("50.00")}
	require.NoError(t, db.Create(&row).Error)

	balance, err := repo.BalanceByUser(context.Background(), userID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(50)))
}

func TestBalanceByUserMissingWalletIsZero(t *testing.T) {
	repo := NewRepository(setupWalletTestDB(t))

	balance, err := repo.BalanceByUser(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.True(t, balance.IsZero())
}
