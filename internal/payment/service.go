package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"github.com/shopspring/decimal"

	"github.com/soukly/soukly-backend/pkg/config"
	"github.com/soukly/soukly-backend/pkg/enums"
	pkgerrors "github.com/soukly/soukly-backend/pkg/errors"
	"github.com/soukly/soukly-backend/pkg/gateway"
	"github.com/soukly/soukly-backend/pkg/logger"
	"github.com/soukly/soukly-backend/pkg/metrics"
)

type gatewayClient interface {
	InitSession(ctx context.Context, orderID string, amount decimal.Decimal) (*gateway.SessionDescriptor, error)
	Confirm(ctx context.Context, orderID string, transaction json.RawMessage) error
}

// StartInput begins the payment protocol for a freshly created order. The
// amount is the authoritative amount from checkout; the orchestrator never
// recomputes it.
type StartInput struct {
	OrderID uuid.UUID
	Method  enums.PaymentMethod
	Amount  decimal.Decimal
}

// StartResult tells the UI what to do next: show a gateway descriptor, show
// a QR code, or follow the redirect for an already-settled method.
type StartResult struct {
	Session     *Session                   `json:"session"`
	Descriptor  *gateway.SessionDescriptor `json:"descriptor,omitempty"`
	QRCode      string                     `json:"qr_code,omitempty"`
	RedirectURL string                     `json:"redirect_url,omitempty"`
}

// CallbackResult is the state after consuming a gateway callback or a QR
// confirmation. RedirectURL is set only when the protocol completed.
type CallbackResult struct {
	Session     *Session `json:"session"`
	RedirectURL string   `json:"redirect_url,omitempty"`
}

// Service drives the per-order payment state machine.
type Service interface {
	Start(ctx context.Context, input StartInput) (*StartResult, error)
	HandleCallback(ctx context.Context, orderID uuid.UUID, event CallbackEvent) (*CallbackResult, error)
	ConfirmQR(ctx context.Context, orderID uuid.UUID) (*CallbackResult, error)
	Session(ctx context.Context, orderID uuid.UUID) (*Session, error)
}

// ServiceParams groups dependencies for the payment orchestrator.
type ServiceParams struct {
	Sessions   SessionStore
	Gateway    gatewayClient
	Logger     *logger.Logger
	Metrics    *metrics.CheckoutMetrics
	Payment    config.PaymentConfig
	GatewayCfg config.GatewayConfig
}

type service struct {
	sessions        SessionStore
	gateway         gatewayClient
	logger          *logger.Logger
	metrics         *metrics.CheckoutMetrics
	qrCode          string
	confirmAttempts int
	now             func() time.Time
}

// NewService wires the payment orchestrator.
func NewService(params ServiceParams) (Service, error) {
	if params.Sessions == nil {
		return nil, fmt.Errorf("session store required")
	}
	if params.Gateway == nil {
		return nil, fmt.Errorf("gateway client required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	attempts := params.GatewayCfg.ConfirmMaxAttempts
	if attempts <= 0 {
		attempts = 3
	}
	return &service{
		sessions:        params.Sessions,
		gateway:         params.Gateway,
		logger:          params.Logger,
		metrics:         params.Metrics,
		qrCode:          params.Payment.QRCodeText,
		confirmAttempts: attempts,
		now:             time.Now,
	}, nil
}

// allowedTransitions is the full protocol; anything else is a state conflict.
var allowedTransitions = map[enums.PaymentState][]enums.PaymentState{
	enums.PaymentStateCreated: {
		enums.PaymentStateCashConfirmed,
		enums.PaymentStateGatewayInitiating,
		enums.PaymentStateQRDisplayed,
	},
	enums.PaymentStateGatewayInitiating: {
		enums.PaymentStateGatewayAwaitingUser,
		enums.PaymentStateFailed,
	},
	enums.PaymentStateGatewayAwaitingUser: {
		enums.PaymentStateGatewayConfirming,
		enums.PaymentStateCancelled,
		enums.PaymentStateFailed,
	},
	enums.PaymentStateGatewayConfirming: {
		enums.PaymentStateCompleted,
	},
	enums.PaymentStateQRDisplayed: {
		enums.PaymentStateCompleted,
	},
}

func redirectFor(orderID uuid.UUID) string {
	return fmt.Sprintf("/order-confirmation/%s", orderID)
}

// Start opens a session for the order and runs the method's opening moves.
// An existing non-terminal session blocks the start: a retry first needs the
// previous attempt to finish one way or another.
func (s *service) Start(ctx context.Context, input StartInput) (*StartResult, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if !input.Method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method").
			WithDetails(map[string]any{"payment_method": string(input.Method)})
	}
	if input.Amount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must not be negative")
	}

	ctx = s.logger.WithOrderID(ctx, input.OrderID.String())

	session := &Session{
		OrderID:   input.OrderID,
		Method:    input.Method,
		State:     enums.PaymentStateCreated,
		Amount:    input.Amount,
		CreatedAt: s.now(),
		UpdatedAt: s.now(),
	}
	stored, err := s.sessions.PutIfAbsent(ctx, session)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment session")
	}
	if !stored {
		existing, found, err := s.sessions.Get(ctx, input.OrderID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment session")
		}
		if found && !existing.State.IsTerminal() {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "a payment session is already active for this order").
				WithDetails(map[string]any{"state": existing.State.String()})
		}
		// The previous attempt ended; replace it with a fresh session.
		if err := s.sessions.Save(ctx, session); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace payment session")
		}
	}

	switch input.Method {
	case enums.PaymentMethodCash:
		return s.startCash(ctx, session)
	case enums.PaymentMethodGateway:
		return s.startGateway(ctx, session)
	default:
		return s.startQR(ctx, session)
	}
}

func (s *service) startCash(ctx context.Context, session *Session) (*StartResult, error) {
	if err := s.transition(ctx, session, enums.PaymentStateCashConfirmed); err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "cash payment confirmed")
	return &StartResult{Session: session, RedirectURL: redirectFor(session.OrderID)}, nil
}

func (s *service) startGateway(ctx context.Context, session *Session) (*StartResult, error) {
	if err := s.transition(ctx, session, enums.PaymentStateGatewayInitiating); err != nil {
		return nil, err
	}
	descriptor, err := s.gateway.InitSession(ctx, session.OrderID.String(), session.Amount)
	if err != nil {
		// The order survives; a retry reuses the same order id on a new
		// session once this one is terminal.
		if transitionErr := s.transition(ctx, session, enums.PaymentStateFailed); transitionErr != nil {
			s.logger.Error(ctx, "mark payment session failed", transitionErr)
		}
		return nil, err
	}
	session.Descriptor = descriptor
	if err := s.transition(ctx, session, enums.PaymentStateGatewayAwaitingUser); err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "gateway session handed to user")
	return &StartResult{Session: session, Descriptor: descriptor}, nil
}

func (s *service) startQR(ctx context.Context, session *Session) (*StartResult, error) {
	if err := s.transition(ctx, session, enums.PaymentStateQRDisplayed); err != nil {
		return nil, err
	}
	return &StartResult{Session: session, QRCode: s.qrCode}, nil
}

// HandleCallback consumes one normalized gateway event. Only a session that
// is waiting on the user can accept one.
func (s *service) HandleCallback(ctx context.Context, orderID uuid.UUID, event CallbackEvent) (*CallbackResult, error) {
	if !event.Kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown callback kind").
			WithDetails(map[string]any{"kind": string(event.Kind)})
	}
	ctx = s.logger.WithOrderID(ctx, orderID.String())

	session, err := s.activeSession(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if session.State != enums.PaymentStateGatewayAwaitingUser {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "session is not awaiting the user").
			WithDetails(map[string]any{"state": session.State.String()})
	}

	switch event.Kind {
	case CallbackComplete:
		return s.completeGateway(ctx, session, event.Transaction)
	case CallbackError:
		if err := s.transition(ctx, session, enums.PaymentStateFailed); err != nil {
			return nil, err
		}
		s.logger.Warn(ctx, fmt.Sprintf("gateway reported payment error: %s", event.Reason))
		return &CallbackResult{Session: session}, nil
	default:
		if err := s.transition(ctx, session, enums.PaymentStateCancelled); err != nil {
			return nil, err
		}
		s.logger.Info(ctx, "gateway payment cancelled by user")
		return &CallbackResult{Session: session}, nil
	}
}

// completeGateway records the charge. The charge already happened on the
// gateway's side, so a confirm failure is reported but never rolls the
// session back.
func (s *service) completeGateway(ctx context.Context, session *Session, transaction json.RawMessage) (*CallbackResult, error) {
	if err := s.transition(ctx, session, enums.PaymentStateGatewayConfirming); err != nil {
		return nil, err
	}

	backoff := retry.WithMaxRetries(uint64(s.confirmAttempts-1), retry.NewExponential(200*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := s.gateway.Confirm(ctx, session.OrderID.String(), transaction); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error(ctx, "gateway confirm failed after retries", err)
	}

	if err := s.transition(ctx, session, enums.PaymentStateCompleted); err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "gateway payment completed")
	return &CallbackResult{Session: session, RedirectURL: redirectFor(session.OrderID)}, nil
}

// ConfirmQR completes the QR branch on the shopper's say-so. There is no
// machine verification of the transfer; the storefront reconciles offline.
func (s *service) ConfirmQR(ctx context.Context, orderID uuid.UUID) (*CallbackResult, error) {
	ctx = s.logger.WithOrderID(ctx, orderID.String())

	session, err := s.activeSession(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if session.State != enums.PaymentStateQRDisplayed {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "session is not showing a payment code").
			WithDetails(map[string]any{"state": session.State.String()})
	}
	if err := s.transition(ctx, session, enums.PaymentStateCompleted); err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "qr payment asserted complete")
	return &CallbackResult{Session: session, RedirectURL: redirectFor(session.OrderID)}, nil
}

// Session returns the current session for an order.
func (s *service) Session(ctx context.Context, orderID uuid.UUID) (*Session, error) {
	return s.activeSession(ctx, orderID)
}

func (s *service) activeSession(ctx context.Context, orderID uuid.UUID) (*Session, error) {
	session, found, err := s.sessions.Get(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment session")
	}
	if !found {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no payment session for this order")
	}
	return session, nil
}

func (s *service) transition(ctx context.Context, session *Session, to enums.PaymentState) error {
	if !allowed(session.State, to) {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "state transition disallowed").
			WithDetails(map[string]any{"from": session.State.String(), "to": to.String()})
	}
	session.State = to
	session.UpdatedAt = s.now()
	if err := s.sessions.Save(ctx, session); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save payment session")
	}
	s.metrics.IncTransition(session.Method.String(), to.String())
	return nil
}

func allowed(from, to enums.PaymentState) bool {
	for _, candidate := range allowedTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}
