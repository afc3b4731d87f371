package enums

import "fmt"

// PaymentState tracks a payment session through the settlement protocol.
type PaymentState string

const (
	PaymentStateCreated             PaymentState = "created"
	PaymentStateCashConfirmed       PaymentState = "cash_confirmed"
	PaymentStateGatewayInitiating   PaymentState = "gateway_initiating"
	PaymentStateGatewayAwaitingUser PaymentState = "gateway_awaiting_user"
	PaymentStateGatewayConfirming   PaymentState = "gateway_confirming"
	PaymentStateQRDisplayed         PaymentState = "qr_displayed"
	PaymentStateCompleted           PaymentState = "completed"
	PaymentStateCancelled           PaymentState = "cancelled"
	PaymentStateFailed              PaymentState = "failed"
)

var validPaymentStates = []PaymentState{
	PaymentStateCreated,
	PaymentStateCashConfirmed,
	PaymentStateGatewayInitiating,
	PaymentStateGatewayAwaitingUser,
	PaymentStateGatewayConfirming,
	PaymentStateQRDisplayed,
	PaymentStateCompleted,
	PaymentStateCancelled,
	PaymentStateFailed,
}

// String implements fmt.Stringer.
func (p PaymentState) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentState.
func (p PaymentState) IsValid() bool {
	for _, candidate := range validPaymentStates {
		if candidate == p {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition may leave this state.
func (p PaymentState) IsTerminal() bool {
	switch p {
	case PaymentStateCashConfirmed, PaymentStateCompleted, PaymentStateCancelled, PaymentStateFailed:
		return true
	}
	return false
}

// ParsePaymentState converts raw input into a PaymentState.
func ParsePaymentState(value string) (PaymentState, error) {
	for _, candidate := range validPaymentStates {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment state %q", value)
}
