package checkout

import (
	"github.com/shopspring/decimal"

	"github.com/soukly/soukly-backend/pkg/commerce"
)

// AmountToPay normalizes the created order into the authoritative payable
// amount. Precedence: the server-computed remaining amount wins outright;
// the local wallet math is only a fallback for response lag, and the plain
// total applies when no wallet use was requested.
func AmountToPay(order *commerce.Order, walletEnabled bool, walletBalance decimal.Decimal) decimal.Decimal {
	if order == nil {
		return decimal.Zero
	}
	if order.PaymentDetails != nil {
		return order.PaymentDetails.RemainingAmount
	}
	if walletEnabled {
		balance := walletBalance
		if balance.IsNegative() {
			balance = decimal.Zero
		}
		deduction := decimal.Min(balance, order.TotalAmount)
		remaining := order.TotalAmount.Sub(deduction)
		if remaining.IsNegative() {
			return decimal.Zero
		}
		return remaining
	}
	return order.TotalAmount
}
