package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/soukly/soukly-backend/pkg/enums"
)

// Line is one priced cart line entering the computation.
type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// Input carries everything the engine needs; it never reaches out itself.
type Input struct {
	Lines         []Line
	DeliveryMode  enums.DeliveryMode
	Shipping      decimal.Decimal
	WalletBalance decimal.Decimal
	UseWallet     bool
}

// Result is the provisional price breakdown shown before order creation.
// The commerce API remains authoritative once an order exists.
type Result struct {
	Subtotal        decimal.Decimal `json:"subtotal"`
	Shipping        decimal.Decimal `json:"shipping"`
	Total           decimal.Decimal `json:"total"`
	WalletDeduction decimal.Decimal `json:"wallet_deduction"`
	RemainingTotal  decimal.Decimal `json:"remaining_total"`
	FullyCovered    bool            `json:"fully_covered"`
}

// Compute derives the price breakdown. Shipping stays advisory: the carrier
// collects it on delivery, so it is reported but never added to the total.
func Compute(in Input) Result {
	subtotal := decimal.Zero
	for _, line := range in.Lines {
		if line.Quantity < 1 {
			continue
		}
		subtotal = subtotal.Add(in.lineTotal(line))
	}

	shipping := in.Shipping
	if in.DeliveryMode == enums.DeliveryModePickup || shipping.IsNegative() {
		shipping = decimal.Zero
	}

	total := subtotal

	deduction := decimal.Zero
	if in.UseWallet {
		balance := in.WalletBalance
		if balance.IsNegative() {
			balance = decimal.Zero
		}
		deduction = decimal.Min(balance, total)
	}

	remaining := total.Sub(deduction)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}

	return Result{
		Subtotal:        subtotal,
		Shipping:        shipping,
		Total:           total,
		WalletDeduction: deduction,
		RemainingTotal:  remaining,
		FullyCovered:    in.UseWallet && remaining.IsZero(),
	}
}

func (in Input) lineTotal(line Line) decimal.Decimal {
	return line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
}
