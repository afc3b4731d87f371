package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/soukly/soukly-backend/pkg/config"
	pkgerrors "github.com/soukly/soukly-backend/pkg/errors"
	"github.com/soukly/soukly-backend/pkg/logger"
)

var (
	errBaseURLRequired    = errors.New("gateway base url is required")
	errMerchantIDRequired = errors.New("gateway merchant id is required")
	errTerminalIDRequired = errors.New("gateway terminal id is required")
	errHashKeyRequired    = errors.New("gateway secure hash key is required")
	errLoggerRequired     = errors.New("gateway logger is required")
)

// Client talks to the hosted payment gateway provider. The provider controls
// the shopper-facing card UI; this client only opens sessions and records
// completed transactions.
type Client struct {
	httpClient *http.Client
	baseURL    string
	merchantID string
	terminalID string
	hashKey    []byte
	logger     *logger.Logger
	now        func() time.Time
}

// NewClient initializes the gateway wrapper and validates the merchant credentials.
func NewClient(cfg config.GatewayConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errBaseURLRequired
	}
	merchantID := strings.TrimSpace(cfg.MerchantID)
	if merchantID == "" {
		return nil, errMerchantIDRequired
	}
	terminalID := strings.TrimSpace(cfg.TerminalID)
	if terminalID == "" {
		return nil, errTerminalIDRequired
	}
	hashKey := strings.TrimSpace(cfg.SecureHashKey)
	if hashKey == "" {
		return nil, errHashKeyRequired
	}
	key, err := hex.DecodeString(hashKey)
	if err != nil {
		return nil, fmt.Errorf("gateway secure hash key must be hex: %w", err)
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    baseURL,
		merchantID: merchantID,
		terminalID: terminalID,
		hashKey:    key,
		logger:     logg,
		now:        time.Now,
	}, nil
}

// SessionDescriptor is handed verbatim to the provider's embedded script
// configuration object; the field names are part of the provider contract.
type SessionDescriptor struct {
	MerchantID        string `json:"merchantId"`
	TerminalID        string `json:"terminalId"`
	AmountTrxn        string `json:"amountTrxn"`
	MerchantReference string `json:"merchantReference"`
	TrxDateTime       string `json:"trxDateTime"`
	SecureHash        string `json:"secureHash"`
}

type sessionRequest struct {
	MerchantID        string `json:"merchantId"`
	TerminalID        string `json:"terminalId"`
	AmountTrxn        string `json:"amountTrxn"`
	MerchantReference string `json:"merchantReference"`
	TrxDateTime       string `json:"trxDateTime"`
	SecureHash        string `json:"secureHash"`
}

// InitSession opens a payment session for the order and returns the
// descriptor the embedded script needs.
func (c *Client) InitSession(ctx context.Context, orderID string, amount decimal.Decimal) (*SessionDescriptor, error) {
	if strings.TrimSpace(orderID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if amount.IsNegative() || amount.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session amount must be positive")
	}

	trxDateTime := c.now().UTC().Format("2006-01-02T15:04:05Z")
	amountTrxn := amount.StringFixed(2)
	req := sessionRequest{
		MerchantID:        c.merchantID,
		TerminalID:        c.terminalID,
		AmountTrxn:        amountTrxn,
		MerchantReference: orderID,
		TrxDateTime:       trxDateTime,
	}
	req.SecureHash = c.SecureHash(amountTrxn, orderID, trxDateTime)

	c.log(ctx, "request", "init_session", map[string]any{
		"order_id": orderID,
		"amount":   amountTrxn,
	})

	var desc SessionDescriptor
	if err := c.post(ctx, "/v1/sessions", req, &desc); err != nil {
		c.log(ctx, "error", "init_session", map[string]any{"error": err.Error()})
		return nil, pkgerrors.Wrap(pkgerrors.CodeGatewayInit, err, "gateway session init failed")
	}

	c.log(ctx, "response", "init_session", map[string]any{
		"merchant_reference": desc.MerchantReference,
	})
	return &desc, nil
}

// Confirm records a transaction reported by the provider's complete callback.
// The payload is opaque to this service and forwarded untouched.
func (c *Client) Confirm(ctx context.Context, orderID string, transaction json.RawMessage) error {
	if strings.TrimSpace(orderID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}

	payload := map[string]any{
		"orderId":     orderID,
		"transaction": transaction,
	}

	c.log(ctx, "request", "confirm_payment", map[string]any{"order_id": orderID})

	if err := c.post(ctx, "/v1/payments/confirm", payload, nil); err != nil {
		c.log(ctx, "error", "confirm_payment", map[string]any{"error": err.Error()})
		return pkgerrors.Wrap(pkgerrors.CodeGatewayConfirm, err, "gateway confirm failed")
	}

	c.log(ctx, "response", "confirm_payment", map[string]any{"order_id": orderID})
	return nil
}

// SecureHash signs the session fields with the merchant's shared key.
func (c *Client) SecureHash(amountTrxn, merchantReference, trxDateTime string) string {
	mac := hmac.New(sha256.New, c.hashKey)
	fmt.Fprintf(mac, "%s|%s|%s|%s|%s", c.merchantID, c.terminalID, amountTrxn, merchantReference, trxDateTime)
	return hex.EncodeToString(mac.Sum(nil))
}

func (c *Client) post(ctx context.Context, path string, body any, dest any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("gateway returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) log(ctx context.Context, phase, op string, fields map[string]any) {
	if c == nil || c.logger == nil {
		return
	}
	logFields := map[string]any{
		"operation": op,
		"phase":     phase,
	}
	for k, v := range fields {
		logFields[k] = v
	}
	ctx = c.logger.WithFields(ctx, logFields)
	switch phase {
	case "error":
		c.logger.Error(ctx, fmt.Sprintf("gateway %s", op), errors.New(fmt.Sprint(fields["error"])))
	default:
		c.logger.Info(ctx, fmt.Sprintf("gateway %s", phase))
	}
}
