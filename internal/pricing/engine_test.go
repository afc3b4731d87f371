package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/soukly/soukly-backend/pkg/enums"
)

func lines(prices ...int64) []Line {
	out := make([]Line, 0, len(prices))
	for _, price := range prices {
		out = append(out, Line{UnitPrice: decimal.NewFromInt(price), Quantity: 1})
	}
	return out
}

func TestTotalEqualsSubtotalForEveryDeliveryMode(t *testing.T) {
	for _, mode := range []enums.DeliveryMode{enums.DeliveryModeDelivery, enums.DeliveryModePickup} {
		result := Compute(Input{
			Lines:        lines(40, 80),
			DeliveryMode: mode,
			Shipping:     decimal.NewFromInt(35),
		})
		assert.True(t, result.Total.Equal(result.Subtotal), "mode %s: shipping must stay out of the total", mode)
		assert.True(t, result.Subtotal.Equal(decimal.NewFromInt(120)))
	}
}

func TestShippingAdvisoryAndZeroOnPickup(t *testing.T) {
	delivered := Compute(Input{
		Lines:        lines(100),
		DeliveryMode: enums.DeliveryModeDelivery,
		Shipping:     decimal.NewFromInt(35),
	})
	assert.True(t, delivered.Shipping.Equal(decimal.NewFromInt(35)))

	picked := Compute(Input{
		Lines:        lines(100),
		DeliveryMode: enums.DeliveryModePickup,
		Shipping:     decimal.NewFromInt(35),
	})
	assert.True(t, picked.Shipping.IsZero())
}

func TestPartialWalletDeduction(t *testing.T) {
	result := Compute(Input{
		Lines:         lines(120),
		DeliveryMode:  enums.DeliveryModeDelivery,
		WalletBalance: decimal.NewFromInt(50),
		UseWallet:     true,
	})
	assert.True(t, result.WalletDeduction.Equal(decimal.NewFromInt(50)))
	assert.True(t, result.RemainingTotal.Equal(decimal.NewFromInt(70)))
	assert.False(t, result.FullyCovered)
}

func TestWalletCoversFullTotal(t *testing.T) {
	result := Compute(Input{
		Lines:         lines(120),
		DeliveryMode:  enums.DeliveryModeDelivery,
		WalletBalance: decimal.NewFromInt(200),
		UseWallet:     true,
	})
	assert.True(t, result.WalletDeduction.Equal(decimal.NewFromInt(120)), "deduction caps at the total")
	assert.True(t, result.RemainingTotal.IsZero())
	assert.True(t, result.FullyCovered)
}

func TestWalletDisabledMeansNoDeduction(t *testing.T) {
	result := Compute(Input{
		Lines:         lines(120),
		DeliveryMode:  enums.DeliveryModeDelivery,
		WalletBalance: decimal.NewFromInt(200),
	})
	assert.True(t, result.WalletDeduction.IsZero())
	assert.True(t, result.RemainingTotal.Equal(decimal.NewFromInt(120)))
	assert.False(t, result.FullyCovered)
}

func TestQuantitiesMultiplyIntoSubtotal(t *testing.T) {
	result := Compute(Input{
		Lines: []Line{
			{UnitPrice: decimal.RequireFromString("19.99"), Quantity: 3},
			{UnitPrice: decimal.NewFromInt(5), Quantity: 0},
		},
		DeliveryMode: enums.DeliveryModeDelivery,
	})
	assert.True(t, result.Subtotal.Equal(decimal.RequireFromString("59.97")), "zero-quantity lines contribute nothing")
}
