package wallet

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/soukly/soukly-backend/pkg/db/models"
)

// Repository reads stored wallet balances. Balance mutation happens in the
// commerce API when it settles an order.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a wallet repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// BalanceByUser returns the user's balance, zero when no wallet row exists.
func (r *Repository) BalanceByUser(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	var wallet models.Wallet
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&wallet).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return wallet.Balance, nil
}
