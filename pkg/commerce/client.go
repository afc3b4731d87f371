package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/soukly/soukly-backend/pkg/config"
	"github.com/soukly/soukly-backend/pkg/enums"
	pkgerrors "github.com/soukly/soukly-backend/pkg/errors"
	"github.com/soukly/soukly-backend/pkg/logger"
)

var (
	errBaseURLRequired = errors.New("commerce base url is required")
	errLoggerRequired  = errors.New("commerce logger is required")
)

// Client talks to the storefront commerce API that owns order creation.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiToken   string
	logger     *logger.Logger
}

// NewClient initializes the commerce API wrapper.
func NewClient(cfg config.CommerceConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errBaseURLRequired
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    baseURL,
		apiToken:   strings.TrimSpace(cfg.APIToken),
		logger:     logg,
	}, nil
}

// OrderItem is one purchased line in the order-creation request.
type OrderItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

// CreateOrderRequest is the order-creation payload. Contact and address
// fields are only populated for guest identities; the server resolves them
// from the stored profile otherwise.
type CreateOrderRequest struct {
	Items             []OrderItem         `json:"items"`
	PaymentMethod     enums.PaymentMethod `json:"payment_method"`
	Notes             *string             `json:"notes,omitempty"`
	UseWalletPartial  bool                `json:"use_wallet_partial"`
	DeliveryCompanyID *int64              `json:"delivery_company_id,omitempty"`
	CustomerName      *string             `json:"customer_name,omitempty"`
	CustomerEmail     *string             `json:"customer_email,omitempty"`
	CustomerPhone     *string             `json:"customer_phone,omitempty"`
	CustomerAddress   *string             `json:"customer_address,omitempty"`
	CityID            *int64              `json:"city_id,omitempty"`
	Area              *string             `json:"area,omitempty"`
}

// PaymentDetails carries the server-computed wallet settlement breakdown.
type PaymentDetails struct {
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
}

// Order is the authoritative order as created by the commerce API.
type Order struct {
	ID             uuid.UUID           `json:"id"`
	OrderNumber    string              `json:"order_number"`
	TotalAmount    decimal.Decimal     `json:"total_amount"`
	Status         string              `json:"status"`
	PaymentMethod  enums.PaymentMethod `json:"payment_method"`
	PaymentDetails *PaymentDetails     `json:"payment_details,omitempty"`
}

// CreateOrder submits the order and returns the created order.
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	c.log(ctx, "request", "create_order", map[string]any{
		"items":          len(req.Items),
		"payment_method": req.PaymentMethod.String(),
		"wallet_partial": req.UseWalletPartial,
	})

	body, err := json.Marshal(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode order request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build order request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiToken)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.log(ctx, "error", "create_order", map[string]any{"error": err.Error()})
		return nil, pkgerrors.Wrap(pkgerrors.CodeOrderCreation, err, "order creation call failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := readSnippet(resp.Body)
		c.log(ctx, "error", "create_order", map[string]any{"status": resp.StatusCode, "body": snippet})
		return nil, pkgerrors.New(pkgerrors.CodeOrderCreation, fmt.Sprintf("order creation returned status %d", resp.StatusCode)).
			WithDetails(map[string]any{"status": resp.StatusCode})
	}

	var order Order
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeOrderCreation, err, "decode order response")
	}

	c.log(ctx, "response", "create_order", map[string]any{
		"order_id":     order.ID.String(),
		"order_number": order.OrderNumber,
		"total":        order.TotalAmount.String(),
	})
	return &order, nil
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
		logFields[k] = c.redact(k, v)
	}
	ctx = c.logger.WithFields(ctx, logFields)
	switch phase {
	case "error":
		c.logger.Error(ctx, fmt.Sprintf("commerce %s", op), errors.New(fmt.Sprint(fields["error"])))
	default:
		c.logger.Info(ctx, fmt.Sprintf("commerce %s", phase))
	}
}

func (c *Client) redact(key string, value any) any {
	lower := strings.ToLower(key)
	for _, sensitive := range []string{"token", "secret", "email", "phone", "address"} {
		if strings.Contains(lower, sensitive) {
			return "[REDACTED]"
		}
	}
	return value
}

func readSnippet(r io.Reader) string {
	b, err := io.ReadAll(io.LimitReader(r, 512))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}
