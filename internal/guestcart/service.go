package guestcart

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/soukly/soukly-backend/pkg/db/models"
	pkgerrors "github.com/soukly/soukly-backend/pkg/errors"
)

type productReader interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
}

// Service exposes guest cart operations with the stock guard applied.
type Service interface {
	Items(ctx context.Context, deviceToken string) ([]Line, error)
	AddItem(ctx context.Context, deviceToken string, productID uuid.UUID, quantity int) error
	UpdateQuantity(ctx context.Context, deviceToken string, productID uuid.UUID, quantity int) error
	RemoveItem(ctx context.Context, deviceToken string, productID uuid.UUID) error
	Clear(ctx context.Context, deviceToken string) error
	ProductQuantity(ctx context.Context, deviceToken string, productID uuid.UUID) (int, error)
}

type service struct {
	store    Store
	products productReader
}

// NewService wires the guest cart store with the catalog reader.
func NewService(store Store, products productReader) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("guest cart store required")
	}
	if products == nil {
		return nil, fmt.Errorf("product reader required")
	}
	return &service{store: store, products: products}, nil
}

func (s *service) Items(ctx context.Context, deviceToken string) ([]Line, error) {
	return s.store.Items(ctx, deviceToken)
}

// AddItem rejects additions that would push the cart quantity past the known
// stock. The cart line is left untouched on rejection.
func (s *service) AddItem(ctx context.Context, deviceToken string, productID uuid.UUID, quantity int) error {
	if productID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if quantity < 1 {
		quantity = 1
	}
	snapshots, err := s.products.FindByIDs(ctx, []uuid.UUID{productID})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if len(snapshots) == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	product := snapshots[0]
	current, err := s.store.ProductQuantity(ctx, deviceToken, productID)
	if err != nil {
		return err
	}
	if current+quantity > product.Stock {
		return pkgerrors.New(pkgerrors.CodeStockExceeded, "requested quantity exceeds available stock").
			WithDetails(map[string]any{
				"product_id": productID.String(),
				"in_cart":    current,
				"requested":  quantity,
				"stock":      product.Stock,
			})
	}
	return s.store.AddItem(ctx, deviceToken, productID, quantity)
}

func (s *service) UpdateQuantity(ctx context.Context, deviceToken string, productID uuid.UUID, quantity int) error {
	return s.store.UpdateQuantity(ctx, deviceToken, productID, quantity)
}

func (s *service) RemoveItem(ctx context.Context, deviceToken string, productID uuid.UUID) error {
	return s.store.RemoveItem(ctx, deviceToken, productID)
}

func (s *service) Clear(ctx context.Context, deviceToken string) error {
	return s.store.Clear(ctx, deviceToken)
}

func (s *service) ProductQuantity(ctx context.Context, deviceToken string, productID uuid.UUID) (int, error) {
	return s.store.ProductQuantity(ctx, deviceToken, productID)
}
