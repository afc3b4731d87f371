package pricing

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/soukly/soukly-backend/internal/cartview"
	"github.com/soukly/soukly-backend/pkg/enums"
	pkgerrors "github.com/soukly/soukly-backend/pkg/errors"
	"github.com/soukly/soukly-backend/pkg/types"
)

type cartLoader interface {
	Load(ctx context.Context, identity types.Identity) (*cartview.Cart, error)
}

type walletReader interface {
	BalanceByUser(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error)
}

type shippingResolver interface {
	ResolveShipping(ctx context.Context, cityID int64, regionID *int64) (decimal.Decimal, error)
}

// QuoteParams are the shopper's current checkout selections.
type QuoteParams struct {
	DeliveryMode enums.DeliveryMode
	CityID       *int64
	RegionID     *int64
	UseWallet    bool
}

// Quote pairs the derived breakdown with the cart it was computed from.
type Quote struct {
	Cart   *cartview.Cart `json:"cart"`
	Result Result         `json:"pricing"`
}

// Service produces provisional quotes over the selected cart subset.
type Service interface {
	Quote(ctx context.Context, identity types.Identity, params QuoteParams) (*Quote, error)
}

type service struct {
	carts    cartLoader
	wallets  walletReader
	shipping shippingResolver
}

// NewService wires the quote service.
func NewService(carts cartLoader, wallets walletReader, shipping shippingResolver) (Service, error) {
	if carts == nil {
		return nil, fmt.Errorf("cart loader required")
	}
	if wallets == nil {
		return nil, fmt.Errorf("wallet reader required")
	}
	if shipping == nil {
		return nil, fmt.Errorf("shipping resolver required")
	}
	return &service{carts: carts, wallets: wallets, shipping: shipping}, nil
}

// Quote recomputes the breakdown from the cart's selected subset. Wallet
// balances only exist for accounts; a guest quote never deducts.
func (s *service) Quote(ctx context.Context, identity types.Identity, params QuoteParams) (*Quote, error) {
	mode := params.DeliveryMode
	if mode == "" {
		mode = enums.DeliveryModeDelivery
	}
	if !mode.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown delivery mode").
			WithDetails(map[string]any{"delivery_mode": string(params.DeliveryMode)})
	}

	cart, err := s.carts.Load(ctx, identity)
	if err != nil {
		return nil, err
	}

	lines := make([]Line, 0, len(cart.SelectedIDs))
	for _, entry := range cart.SelectedEntries() {
		lines = append(lines, Line{UnitPrice: entry.Product.Price, Quantity: entry.Quantity})
	}

	shipping := decimal.Zero
	if mode == enums.DeliveryModeDelivery && params.CityID != nil {
		resolved, err := s.shipping.ResolveShipping(ctx, *params.CityID, params.RegionID)
		if err != nil {
			// An unresolved city leaves shipping at zero; the quote is
			// advisory and must not block on price book gaps.
			var typed *pkgerrors.Error
			if !errors.As(err, &typed) || typed.Code() != pkgerrors.CodeNotFound {
				return nil, err
			}
		} else {
			shipping = resolved
		}
	}

	balance := decimal.Zero
	useWallet := params.UseWallet && identity.IsAccount()
	if useWallet {
		balance, err = s.wallets.BalanceByUser(ctx, identity.UserID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wallet balance")
		}
	}

	result := Compute(Input{
		Lines:         lines,
		DeliveryMode:  mode,
		Shipping:      shipping,
		WalletBalance: balance,
		UseWallet:     useWallet,
	})
	return &Quote{Cart: cart, Result: result}, nil
}
