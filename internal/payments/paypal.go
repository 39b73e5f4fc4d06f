package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/wavelet/internal/pricing"
	"github.com/desertthunder/wavelet/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// PayPal order statuses.
const (
	OrderCreated   = "CREATED"
	OrderApproved  = "APPROVED"
	OrderCompleted = "COMPLETED"
)

// PayPalOpts configures a [PayPalClient].
type PayPalOpts struct {
	ClientID     string
	ClientSecret string
	APIBaseURL   string
	ReturnURL    string
	CancelURL    string
	HTTPClient   *http.Client
	Logger       *log.Logger
}

// Link is a HATEOAS link on an order.
type Link struct {
	Href   string `json:"href"`
	Rel    string `json:"rel"`
	Method string `json:"method"`
}

// Order is the subset of a PayPal order the checkout flow needs.
type Order struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Links  []Link `json:"links"`
}

// ApprovalURL is where the buyer approves the order.
func (o *Order) ApprovalURL() string {
	for _, l := range o.Links {
		if l.Rel == "approve" || l.Rel == "payer-action" {
			return l.Href
		}
	}
	return ""
}

// PayPalClient creates and captures orders.
type PayPalClient struct {
	baseURL    string
	returnURL  string
	cancelURL  string
	httpClient *http.Client
	logger     *log.Logger
}

func NewPayPalClient(opts PayPalOpts) (*PayPalClient, error) {
	if opts.ClientID == "" || opts.ClientSecret == "" {
		return nil, fmt.Errorf("%w: paypal client_id and client_secret", shared.ErrMissingCredentials)
	}
	if opts.APIBaseURL == "" {
		opts.APIBaseURL = "https://api-m.sandbox.paypal.com"
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	base := strings.TrimRight(opts.APIBaseURL, "/")

	ctx := context.Background()
	if opts.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, opts.HTTPClient)
	}
	cc := clientcredentials.Config{
		ClientID:     opts.ClientID,
		ClientSecret: opts.ClientSecret,
		TokenURL:     base + "/v1/oauth2/token",
		AuthStyle:    oauth2.AuthStyleInHeader,
	}

	return &PayPalClient{
		baseURL:    base,
		returnURL:  opts.ReturnURL,
		cancelURL:  opts.CancelURL,
		httpClient: cc.Client(ctx),
		logger:     opts.Logger.With("provider", "paypal"),
	}, nil
}

// ReturnURL is the approval redirect target configured for new orders.
func (c *PayPalClient) ReturnURL() string { return c.returnURL }

type amount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type purchaseUnit struct {
	Description string `json:"description,omitempty"`
	Amount      amount `json:"amount"`
}

type orderRequest struct {
	Intent             string         `json:"intent"`
	PurchaseUnits      []purchaseUnit `json:"purchase_units"`
	ApplicationContext map[string]any `json:"application_context,omitempty"`
}

// CreateOrder opens an order for the quote's discounted price.
func (c *PayPalClient) CreateOrder(ctx context.Context, quote pricing.PricingQuote, label string) (*Order, error) {
	body := orderRequest{
		Intent: "CAPTURE",
		PurchaseUnits: []purchaseUnit{{
			Description: label,
			Amount:      amount{CurrencyCode: quote.Currency, Value: fmt.Sprintf("%.2f", quote.Discounted)},
		}},
	}
	if c.returnURL != "" || c.cancelURL != "" {
		body.ApplicationContext = map[string]any{
			"return_url":  c.returnURL,
			"cancel_url":  c.cancelURL,
			"user_action": "PAY_NOW",
		}
	}

	var order Order
	if err := c.doJSON(ctx, http.MethodPost, "/v2/checkout/orders", body, &order); err != nil {
		return nil, err
	}
	c.logger.Info("order created", "order", order.ID, "currency", quote.Currency)
	return &order, nil
}

// CaptureOrder captures an approved order. An order that does not complete yields [shared.ErrPaymentRejected].
func (c *PayPalClient) CaptureOrder(ctx context.Context, orderID string) (*Order, error) {
	if orderID == "" {
		return nil, fmt.Errorf("%w: order id", shared.ErrMissingArgument)
	}

	var order Order
	if err := c.doJSON(ctx, http.MethodPost, "/v2/checkout/orders/"+url.PathEscape(orderID)+"/capture", struct{}{}, &order); err != nil {
		return nil, err
	}
	if order.Status != OrderCompleted {
		return &order, fmt.Errorf("%w: order %s is %s", shared.ErrPaymentRejected, order.ID, order.Status)
	}
	c.logger.Info("order captured", "order", order.ID)
	return &order, nil
}

func (c *PayPalClient) doJSON(ctx context.Context, method, endpoint string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: paypal status %d: %s", shared.ErrAPIRequest, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
