package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/wavelet/internal/pricing"
	"github.com/desertthunder/wavelet/internal/shared"
	"golang.org/x/oauth2"
)

// DefaultTolerance is the maximum age of a webhook timestamp.
const DefaultTolerance = 300 * time.Second

// SignatureHeader is the webhook header carrying the signature.
const SignatureHeader = "Stripe-Signature"

var (
	ErrInvalidSignatureHeader    = fmt.Errorf("%w: malformed signature header", shared.ErrInvalidWebhook)
	ErrNoValidSignature          = fmt.Errorf("%w: no valid signature", shared.ErrInvalidWebhook)
	ErrTimestampOutsideTolerance = fmt.Errorf("%w: timestamp outside tolerance", shared.ErrInvalidWebhook)
)

// ComputeSignature returns the v1 signature of payload signed at t.
func ComputeSignature(t time.Time, payload []byte, secret string) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(t.Unix(), 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	return mac.Sum(nil)
}

// SignatureHeaderValue formats a header for payload signed at t, as Stripe sends it.
func SignatureHeaderValue(t time.Time, payload []byte, secret string) string {
	return fmt.Sprintf("t=%d,v1=%s", t.Unix(), hex.EncodeToString(ComputeSignature(t, payload, secret)))
}

type signedHeader struct {
	timestamp  time.Time
	signatures [][]byte
}

func parseSignatureHeader(header string) (*signedHeader, error) {
	if header == "" {
		return nil, ErrInvalidSignatureHeader
	}

	h := &signedHeader{}
	for _, pair := range strings.Split(header, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			return nil, ErrInvalidSignatureHeader
		}
		switch k {
		case "t":
			ts, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return nil, ErrInvalidSignatureHeader
			}
			h.timestamp = time.Unix(ts, 0)
		case "v1":
			sig, err := hex.DecodeString(v)
			if err != nil {
				continue
			}
			h.signatures = append(h.signatures, sig)
		}
	}

	if h.timestamp.IsZero() {
		return nil, ErrInvalidSignatureHeader
	}
	if len(h.signatures) == 0 {
		return nil, ErrNoValidSignature
	}
	return h, nil
}

// VerifySignature checks a webhook header against payload. A non-positive tolerance disables the age check.
func VerifySignature(payload []byte, header, secret string, tolerance time.Duration, now time.Time) error {
	if secret == "" {
		return fmt.Errorf("%w: webhook secret", shared.ErrMissingCredentials)
	}

	h, err := parseSignatureHeader(header)
	if err != nil {
		return err
	}

	expected := ComputeSignature(h.timestamp, payload, secret)
	matched := false
	for _, sig := range h.signatures {
		if hmac.Equal(expected, sig) {
			matched = true
			break
		}
	}
	if !matched {
		return ErrNoValidSignature
	}

	if tolerance > 0 {
		age := now.Sub(h.timestamp)
		if age > tolerance || age < -tolerance {
			return ErrTimestampOutsideTolerance
		}
	}
	return nil
}

// Event is a webhook event envelope.
type Event struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Created int64  `json:"created"`
	Data    struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// ParseEvent verifies and decodes a webhook delivery.
func ParseEvent(payload []byte, header, secret string, tolerance time.Duration, now time.Time) (*Event, error) {
	if err := VerifySignature(payload, header, secret, tolerance, now); err != nil {
		return nil, err
	}
	var ev Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidWebhook, err)
	}
	if ev.Type == "" {
		return nil, fmt.Errorf("%w: missing event type", shared.ErrInvalidWebhook)
	}
	return &ev, nil
}

// CheckoutSession is the subset of a checkout session the server stores.
type CheckoutSession struct {
	ID            string `json:"id"`
	URL           string `json:"url"`
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
	Currency      string `json:"currency"`
	AmountTotal   int64  `json:"amount_total"`
}

// CheckoutSession decodes the event object as a checkout session.
func (e *Event) CheckoutSession() (*CheckoutSession, error) {
	var s CheckoutSession
	if err := json.Unmarshal(e.Data.Object, &s); err != nil {
		return nil, fmt.Errorf("%w: checkout session: %v", shared.ErrInvalidWebhook, err)
	}
	return &s, nil
}

// StripeOpts configures a [StripeClient].
type StripeOpts struct {
	SecretKey  string
	APIBaseURL string
	SuccessURL string
	CancelURL  string
	HTTPClient *http.Client
	Logger     *log.Logger
}

// StripeClient creates checkout sessions.
type StripeClient struct {
	baseURL    string
	successURL string
	cancelURL  string
	httpClient *http.Client
	logger     *log.Logger
}

func NewStripeClient(opts StripeOpts) (*StripeClient, error) {
	if opts.SecretKey == "" {
		return nil, fmt.Errorf("%w: stripe secret_key", shared.ErrMissingCredentials)
	}
	if opts.APIBaseURL == "" {
		opts.APIBaseURL = "https://api.stripe.com"
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	ctx := context.Background()
	if opts.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, opts.HTTPClient)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.SecretKey, TokenType: "Bearer"})

	return &StripeClient{
		baseURL:    strings.TrimRight(opts.APIBaseURL, "/"),
		successURL: opts.SuccessURL,
		cancelURL:  opts.CancelURL,
		httpClient: oauth2.NewClient(ctx, ts),
		logger:     opts.Logger.With("provider", "stripe"),
	}, nil
}

type stripeError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// CreateCheckoutSession opens a one-item hosted checkout for the quote's discounted price.
func (c *StripeClient) CreateCheckoutSession(ctx context.Context, quote pricing.PricingQuote, label string) (*CheckoutSession, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", c.successURL)
	form.Set("cancel_url", c.cancelURL)
	form.Set("line_items[0][quantity]", "1")
	form.Set("line_items[0][price_data][currency]", strings.ToLower(quote.Currency))
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(quote.DiscountedMinor(), 10))
	form.Set("line_items[0][price_data][product_data][name]", label)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var se stripeError
		if json.Unmarshal(body, &se) == nil && se.Error.Message != "" {
			return nil, fmt.Errorf("%w: stripe %s: %s", shared.ErrAPIRequest, se.Error.Type, se.Error.Message)
		}
		return nil, fmt.Errorf("%w: stripe status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	var session CheckoutSession
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if session.ID == "" {
		return nil, errors.New("stripe returned a session without id")
	}
	c.logger.Info("checkout session created", "session", session.ID, "currency", quote.Currency)
	return &session, nil
}
