package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soukly/soukly-backend/pkg/config"
	"github.com/soukly/soukly-backend/pkg/enums"
	pkgerrors "github.com/soukly/soukly-backend/pkg/errors"
	"github.com/soukly/soukly-backend/pkg/gateway"
	"github.com/soukly/soukly-backend/pkg/logger"
)

type stubGateway struct {
	descriptor   *gateway.SessionDescriptor
	initErr      error
	confirmErr   error
	confirmCalls int
	lastTrx      json.RawMessage
}

func (s *stubGateway) InitSession(_ context.Context, orderID string, amount decimal.Decimal) (*gateway.SessionDescriptor, error) {
	if s.initErr != nil {
		return nil, s.initErr
	}
	if s.descriptor != nil {
		return s.descriptor, nil
	}
	return &gateway.SessionDescriptor{
		MerchantID:        "M-100",
		TerminalID:        "T-200",
		AmountTrxn:        amount.StringFixed(2),
		MerchantReference: orderID,
	}, nil
}

func (s *stubGateway) Confirm(_ context.Context, _ string, transaction json.RawMessage) error {
	s.confirmCalls++
	s.lastTrx = transaction
	return s.confirmErr
}

func newOrchestrator(t *testing.T, gw *stubGateway) (Service, *MemorySessionStore) {
	t.Helper()
	store := NewMemorySessionStore()
	logg := logger.New(logger.Options{ServiceName: "test", Output: &bytes.Buffer{}})
	svc, err := NewService(ServiceParams{
		Sessions:   store,
		Gateway:    gw,
		Logger:     logg,
		Payment:    config.PaymentConfig{QRCodeText: "soukly-pay-0630"},
		GatewayCfg: config.GatewayConfig{ConfirmMaxAttempts: 3},
	})
	require.NoError(t, err)
	return svc, store
}

func startGatewaySession(t *testing.T, svc Service) uuid.UUID {
	t.Helper()
	orderID := uuid.New()
	result, err := svc.Start(context.Background(), StartInput{
		OrderID: orderID,
		Method:  enums.PaymentMethodGateway,
		Amount:  decimal.NewFromInt(70),
	})
	require.NoError(t, err)
	require.Equal(t, enums.PaymentStateGatewayAwaitingUser, result.Session.State)
	require.NotNil(t, result.Descriptor)
	return orderID
}

func TestStartCashCompletesImmediately(t *testing.T) {
	svc, _ := newOrchestrator(t, &stubGateway{})
	orderID := uuid.New()

	result, err := svc.Start(context.Background(), StartInput{
		OrderID: orderID,
		Method:  enums.PaymentMethodCash,
		Amount:  decimal.NewFromInt(120),
	})
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStateCashConfirmed, result.Session.State)
	assert.True(t, result.Session.State.IsTerminal())
	assert.Equal(t, "/order-confirmation/"+orderID.String(), result.RedirectURL)
}

func TestStartQRShowsStaticCode(t *testing.T) {
	svc, _ := newOrchestrator(t, &stubGateway{})

	result, err := svc.Start(context.Background(), StartInput{
		OrderID: uuid.New(),
		Method:  enums.PaymentMethodQR,
		Amount:  decimal.NewFromInt(120),
	})
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStateQRDisplayed, result.Session.State)
	assert.Equal(t, "soukly-pay-0630", result.QRCode)
	assert.Empty(t, result.RedirectURL)
}

func TestStartGatewayInitFailureIsTerminal(t *testing.T) {
	gw := &stubGateway{initErr: pkgerrors.New(pkgerrors.CodeGatewayInit, "session init failed")}
	svc, store := newOrchestrator(t, gw)
	orderID := uuid.New()

	_, err := svc.Start(context.Background(), StartInput{
		OrderID: orderID,
		Method:  enums.PaymentMethodGateway,
		Amount:  decimal.NewFromInt(70),
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeGatewayInit, typed.Code())

	session, found, err := store.Get(context.Background(), orderID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, enums.PaymentStateFailed, session.State, "init failure never reaches awaiting-user")
}

func TestStartBlocksSecondActiveSession(t *testing.T) {
	svc, _ := newOrchestrator(t, &stubGateway{})
	orderID := startGatewaySession(t, svc)

	_, err := svc.Start(context.Background(), StartInput{
		OrderID: orderID,
		Method:  enums.PaymentMethodGateway,
		Amount:  decimal.NewFromInt(70),
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())
}

func TestStartAllowsRetryAfterTerminalSession(t *testing.T) {
	svc, _ := newOrchestrator(t, &stubGateway{})
	orderID := startGatewaySession(t, svc)

	_, err := svc.HandleCallback(context.Background(), orderID, CallbackEvent{Kind: CallbackCancel})
	require.NoError(t, err)

	result, err := svc.Start(context.Background(), StartInput{
		OrderID: orderID,
		Method:  enums.PaymentMethodGateway,
		Amount:  decimal.NewFromInt(70),
	})
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStateGatewayAwaitingUser, result.Session.State)
}

func TestCallbackCancelStaysOnCheckout(t *testing.T) {
	svc, _ := newOrchestrator(t, &stubGateway{})
	orderID := startGatewaySession(t, svc)

	result, err := svc.HandleCallback(context.Background(), orderID, CallbackEvent{Kind: CallbackCancel})
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStateCancelled, result.Session.State)
	assert.Empty(t, result.RedirectURL, "cancel never navigates away")
}

func TestCallbackErrorFailsWithoutRedirect(t *testing.T) {
	svc, _ := newOrchestrator(t, &stubGateway{})
	orderID := startGatewaySession(t, svc)

	result, err := svc.HandleCallback(context.Background(), orderID, CallbackEvent{
		Kind:   CallbackError,
		Reason: "card declined",
	})
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStateFailed, result.Session.State)
	assert.Empty(t, result.RedirectURL)
}

func TestCallbackCompleteConfirmsAndRedirects(t *testing.T) {
	gw := &stubGateway{}
	svc, _ := newOrchestrator(t, gw)
	orderID := startGatewaySession(t, svc)

	trx := json.RawMessage(`{"approvalCode":"A1"}`)
	result, err := svc.HandleCallback(context.Background(), orderID, CallbackEvent{
		Kind:        CallbackComplete,
		Transaction: trx,
	})
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStateCompleted, result.Session.State)
	assert.Equal(t, "/order-confirmation/"+orderID.String(), result.RedirectURL)
	assert.Equal(t, 1, gw.confirmCalls)
	assert.JSONEq(t, string(trx), string(gw.lastTrx))
}

func TestCallbackCompleteSurvivesConfirmFailure(t *testing.T) {
	gw := &stubGateway{confirmErr: errors.New("confirm endpoint down")}
	svc, _ := newOrchestrator(t, gw)
	orderID := startGatewaySession(t, svc)

	result, err := svc.HandleCallback(context.Background(), orderID, CallbackEvent{
		Kind:        CallbackComplete,
		Transaction: json.RawMessage(`{}`),
	})
	require.NoError(t, err, "the charge already happened; confirm failure is non-fatal")
	assert.Equal(t, enums.PaymentStateCompleted, result.Session.State)
	assert.Equal(t, "/order-confirmation/"+orderID.String(), result.RedirectURL)
	assert.Equal(t, 3, gw.confirmCalls, "confirm is retried up to the configured attempts")
}

func TestCallbackRequiresAwaitingUser(t *testing.T) {
	svc, _ := newOrchestrator(t, &stubGateway{})
	orderID := uuid.New()

	_, err := svc.Start(context.Background(), StartInput{
		OrderID: orderID,
		Method:  enums.PaymentMethodCash,
		Amount:  decimal.NewFromInt(10),
	})
	require.NoError(t, err)

	_, err = svc.HandleCallback(context.Background(), orderID, CallbackEvent{Kind: CallbackComplete})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())
}

func TestCallbackUnknownOrder(t *testing.T) {
	svc, _ := newOrchestrator(t, &stubGateway{})

	_, err := svc.HandleCallback(context.Background(), uuid.New(), CallbackEvent{Kind: CallbackCancel})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestConfirmQRCompletes(t *testing.T) {
	svc, _ := newOrchestrator(t, &stubGateway{})
	orderID := uuid.New()

	_, err := svc.Start(context.Background(), StartInput{
		OrderID: orderID,
		Method:  enums.PaymentMethodQR,
		Amount:  decimal.NewFromInt(10),
	})
	require.NoError(t, err)

	result, err := svc.ConfirmQR(context.Background(), orderID)
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStateCompleted, result.Session.State)
	assert.Equal(t, "/order-confirmation/"+orderID.String(), result.RedirectURL)

	_, err = svc.ConfirmQR(context.Background(), orderID)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code(), "a completed session cannot be confirmed twice")
}
