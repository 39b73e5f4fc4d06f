package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/wavelet/internal/pricing"
	"github.com/desertthunder/wavelet/internal/shared"
)

const (
	secret  = "whsec_test"
	payload = `{"id":"evt_1","type":"checkout.session.completed","created":1700000000,"data":{"object":{"id":"cs_1","status":"complete","payment_status":"paid","currency":"gbp","amount_total":99}}}`
)

var signedAt = time.Unix(1700000000, 0)

func quiet() *log.Logger { return log.New(io.Discard) }

func TestVerifySignature(t *testing.T) {
	good := SignatureHeaderValue(signedAt, []byte(payload), secret)

	t.Run("valid signature", func(t *testing.T) {
		if err := VerifySignature([]byte(payload), good, secret, DefaultTolerance, signedAt.Add(time.Minute)); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("any of several v1 signatures", func(t *testing.T) {
		header := fmt.Sprintf("t=%d,v1=%s,%s", signedAt.Unix(), strings.Repeat("ab", 32), strings.SplitN(good, ",", 2)[1])
		if err := VerifySignature([]byte(payload), header, secret, DefaultTolerance, signedAt); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("ignores unknown schemes", func(t *testing.T) {
		header := good + ",v0=deadbeef"
		if err := VerifySignature([]byte(payload), header, secret, DefaultTolerance, signedAt); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	tests := []struct {
		name    string
		payload string
		header  string
		secret  string
		now     time.Time
		want    error
	}{
		{"tampered payload", payload + " ", good, secret, signedAt, ErrNoValidSignature},
		{"wrong secret", payload, good, "whsec_other", signedAt, ErrNoValidSignature},
		{"too old", payload, good, secret, signedAt.Add(6 * time.Minute), ErrTimestampOutsideTolerance},
		{"from the future", payload, good, secret, signedAt.Add(-6 * time.Minute), ErrTimestampOutsideTolerance},
		{"empty header", payload, "", secret, signedAt, ErrInvalidSignatureHeader},
		{"missing timestamp", payload, "v1=abcd", secret, signedAt, ErrInvalidSignatureHeader},
		{"bad timestamp", payload, "t=soon,v1=abcd", secret, signedAt, ErrInvalidSignatureHeader},
		{"no signatures", payload, fmt.Sprintf("t=%d", signedAt.Unix()), secret, signedAt, ErrNoValidSignature},
		{"garbage pair", payload, "nonsense", secret, signedAt, ErrInvalidSignatureHeader},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := VerifySignature([]byte(tt.payload), tt.header, tt.secret, DefaultTolerance, tt.now)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
			if !errors.Is(err, shared.ErrInvalidWebhook) {
				t.Errorf("expected error to match ErrInvalidWebhook, got %v", err)
			}
		})
	}

	t.Run("zero tolerance skips age check", func(t *testing.T) {
		if err := VerifySignature([]byte(payload), good, secret, 0, signedAt.Add(24*time.Hour)); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("missing secret", func(t *testing.T) {
		if err := VerifySignature([]byte(payload), good, "", DefaultTolerance, signedAt); !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})
}

func TestParseEvent(t *testing.T) {
	t.Run("decodes checkout session", func(t *testing.T) {
		header := SignatureHeaderValue(signedAt, []byte(payload), secret)
		ev, err := ParseEvent([]byte(payload), header, secret, DefaultTolerance, signedAt)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ev.Type != "checkout.session.completed" || ev.ID != "evt_1" {
			t.Errorf("unexpected event %+v", ev)
		}
		s, err := ev.CheckoutSession()
		if err != nil {
			t.Fatalf("CheckoutSession: %v", err)
		}
		if s.ID != "cs_1" || s.AmountTotal != 99 || s.PaymentStatus != "paid" {
			t.Errorf("unexpected session %+v", s)
		}
	})

	t.Run("signed but not json", func(t *testing.T) {
		body := []byte("not json")
		header := SignatureHeaderValue(signedAt, body, secret)
		if _, err := ParseEvent(body, header, secret, DefaultTolerance, signedAt); !errors.Is(err, shared.ErrInvalidWebhook) {
			t.Errorf("expected ErrInvalidWebhook, got %v", err)
		}
	})

	t.Run("missing type", func(t *testing.T) {
		body := []byte(`{"id":"evt_2"}`)
		header := SignatureHeaderValue(signedAt, body, secret)
		if _, err := ParseEvent(body, header, secret, DefaultTolerance, signedAt); !errors.Is(err, shared.ErrInvalidWebhook) {
			t.Errorf("expected ErrInvalidWebhook, got %v", err)
		}
	})
}

func TestStripeClient(t *testing.T) {
	quote := pricing.Quote(pricing.Environment{Locale: "en-GB"})

	t.Run("requires secret key", func(t *testing.T) {
		if _, err := NewStripeClient(StripeOpts{}); !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("CreateCheckoutSession posts form with bearer key", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/v1/checkout/sessions" || r.Method != http.MethodPost {
				t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			}
			if got := r.Header.Get("Authorization"); got != "Bearer sk_test" {
				t.Errorf("unexpected auth %q", got)
			}
			if err := r.ParseForm(); err != nil {
				t.Errorf("ParseForm: %v", err)
			}
			if r.PostForm.Get("line_items[0][price_data][currency]") != "gbp" {
				t.Errorf("unexpected currency %q", r.PostForm.Get("line_items[0][price_data][currency]"))
			}
			if r.PostForm.Get("line_items[0][price_data][unit_amount]") != "99" {
				t.Errorf("unexpected amount %q", r.PostForm.Get("line_items[0][price_data][unit_amount]"))
			}
			if r.PostForm.Get("success_url") != "http://localhost/ok" {
				t.Errorf("unexpected success_url %q", r.PostForm.Get("success_url"))
			}
			w.Write([]byte(`{"id":"cs_123","url":"https://checkout.stripe.com/c/cs_123","status":"open","currency":"gbp","amount_total":99}`))
		}))
		defer srv.Close()

		c, err := NewStripeClient(StripeOpts{SecretKey: "sk_test", APIBaseURL: srv.URL, SuccessURL: "http://localhost/ok", CancelURL: "http://localhost/no", Logger: quiet()})
		if err != nil {
			t.Fatalf("NewStripeClient: %v", err)
		}
		s, err := c.CreateCheckoutSession(context.Background(), quote, "Premium")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.ID != "cs_123" || s.URL == "" {
			t.Errorf("unexpected session %+v", s)
		}
	})

	t.Run("provider error message", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"No such price"}}`))
		}))
		defer srv.Close()

		c, _ := NewStripeClient(StripeOpts{SecretKey: "sk_test", APIBaseURL: srv.URL, Logger: quiet()})
		_, err := c.CreateCheckoutSession(context.Background(), quote, "Premium")
		if !errors.Is(err, shared.ErrAPIRequest) || !strings.Contains(err.Error(), "No such price") {
			t.Errorf("expected provider message in ErrAPIRequest, got %v", err)
		}
	})
}

func newPayPalServer(t *testing.T, captureStatus string) (*httptest.Server, *int32) {
	t.Helper()
	var tokenCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&tokenCalls, 1)
		user, pass, ok := r.BasicAuth()
		if !ok || user != "client" || pass != "secret" {
			http.Error(w, "bad client", http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"A21","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("POST /v2/checkout/orders", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer A21" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		var req orderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.Intent != "CAPTURE" || req.PurchaseUnits[0].Amount.Value != "1.29" || req.PurchaseUnits[0].Amount.CurrencyCode != "USD" {
			http.Error(w, "unexpected order", http.StatusUnprocessableEntity)
			return
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"ORDER-1","status":"CREATED","links":[{"href":"https://www.sandbox.paypal.com/checkoutnow?token=ORDER-1","rel":"approve","method":"GET"}]}`))
	})
	mux.HandleFunc("POST /v2/checkout/orders/{id}/capture", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"id":%q,"status":%q}`, r.PathValue("id"), captureStatus)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &tokenCalls
}

func TestPayPalClient(t *testing.T) {
	quote := pricing.Quote(pricing.Environment{Locale: "en-US"})

	t.Run("requires credentials", func(t *testing.T) {
		if _, err := NewPayPalClient(PayPalOpts{ClientID: "x"}); !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("create then capture reuses the token", func(t *testing.T) {
		srv, tokenCalls := newPayPalServer(t, OrderCompleted)
		c, err := NewPayPalClient(PayPalOpts{ClientID: "client", ClientSecret: "secret", APIBaseURL: srv.URL, ReturnURL: "http://127.0.0.1:3000/paypal/return", Logger: quiet()})
		if err != nil {
			t.Fatalf("NewPayPalClient: %v", err)
		}

		order, err := c.CreateOrder(context.Background(), quote, "Premium")
		if err != nil {
			t.Fatalf("CreateOrder: %v", err)
		}
		if order.ID != "ORDER-1" || !strings.Contains(order.ApprovalURL(), "token=ORDER-1") {
			t.Errorf("unexpected order %+v", order)
		}

		captured, err := c.CaptureOrder(context.Background(), order.ID)
		if err != nil {
			t.Fatalf("CaptureOrder: %v", err)
		}
		if captured.Status != OrderCompleted {
			t.Errorf("expected COMPLETED, got %s", captured.Status)
		}
		if n := atomic.LoadInt32(tokenCalls); n != 1 {
			t.Errorf("expected one token request, got %d", n)
		}
	})

	t.Run("capture not completed", func(t *testing.T) {
		srv, _ := newPayPalServer(t, "VOIDED")
		c, _ := NewPayPalClient(PayPalOpts{ClientID: "client", ClientSecret: "secret", APIBaseURL: srv.URL, Logger: quiet()})
		order, err := c.CaptureOrder(context.Background(), "ORDER-9")
		if !errors.Is(err, shared.ErrPaymentRejected) {
			t.Errorf("expected ErrPaymentRejected, got %v", err)
		}
		if order == nil || order.Status != "VOIDED" {
			t.Errorf("expected order returned with status, got %+v", order)
		}
	})

	t.Run("bad client credentials", func(t *testing.T) {
		srv, _ := newPayPalServer(t, OrderCompleted)
		c, _ := NewPayPalClient(PayPalOpts{ClientID: "client", ClientSecret: "wrong", APIBaseURL: srv.URL, Logger: quiet()})
		if _, err := c.CreateOrder(context.Background(), quote, "Premium"); !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})

	t.Run("capture requires id", func(t *testing.T) {
		srv, _ := newPayPalServer(t, OrderCompleted)
		c, _ := NewPayPalClient(PayPalOpts{ClientID: "client", ClientSecret: "secret", APIBaseURL: srv.URL, Logger: quiet()})
		if _, err := c.CaptureOrder(context.Background(), ""); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})
}
