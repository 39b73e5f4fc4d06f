package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/desertthunder/wavelet/internal/payments"
)

// OrderCapturer captures an approved PayPal order.
type OrderCapturer interface {
	CaptureOrder(ctx context.Context, orderID string) (*payments.Order, error)
}

// ApprovalResult contains the outcome of a PayPal approval.
type ApprovalResult struct {
	Order *payments.Order
	err   error
}

func (a *ApprovalResult) Error() error {
	return a.err
}

// ApprovalHandler handles the PayPal return and cancel redirects for a single order.
// Implements the Handler interface for registration with a Router.
type ApprovalHandler struct {
	capturer    OrderCapturer
	orderID     string
	timeout     time.Duration
	resultChan  chan ApprovalResult
	once        sync.Once
	callbackHit bool
	mu          sync.Mutex
}

// NewApprovalHandler waits for the buyer to approve orderID, then captures it with capturer.
func NewApprovalHandler(capturer OrderCapturer, orderID string) *ApprovalHandler {
	return &ApprovalHandler{
		capturer:   capturer,
		orderID:    orderID,
		timeout:    30 * time.Second,
		resultChan: make(chan ApprovalResult, 1),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *ApprovalHandler) Routes() []string {
	return []string{"/paypal/return", "/paypal/cancel"}
}

// ServeHTTP handles the redirect. PayPal appends token (the order id) and PayerID to the return URL.
func (h *ApprovalHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.callbackHit {
		h.mu.Unlock()
		http.Error(w, "Approval already processed", http.StatusBadRequest)
		return
	}
	h.callbackHit = true
	h.mu.Unlock()

	token := r.URL.Query().Get("token")
	if token != h.orderID {
		h.Send(ApprovalResult{err: fmt.Errorf("order token mismatch")})
		http.Error(w, "Invalid order token", http.StatusBadRequest)
		return
	}

	if r.URL.Path == "/paypal/cancel" {
		h.Send(ApprovalResult{err: fmt.Errorf("payment cancelled by buyer")})
		writePage(w, http.StatusOK, "Payment cancelled", "No charge was made. You can close this window.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	order, err := h.capturer.CaptureOrder(ctx, token)
	if err != nil {
		h.Send(ApprovalResult{Order: order, err: fmt.Errorf("capture failed: %w", err)})
		http.Error(w, "Capture failed", http.StatusBadGateway)
		return
	}

	h.Send(ApprovalResult{Order: order})
	writePage(w, http.StatusOK, "✓ Payment complete", "You can close this window and return to the terminal.")
}

// Send sends the result through the channel (only once).
func (h *ApprovalHandler) Send(result ApprovalResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the result channel for receiving approval completion.
//
// Channel will receive exactly one result and then be closed.
func (h *ApprovalHandler) Result() <-chan ApprovalResult {
	return h.resultChan
}

func writePage(w http.ResponseWriter, status int, title, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head>
    <title>%[1]s</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #111827; }
        .container { text-align: center; background: #1F2937; padding: 2rem; border-radius: 8px; }
        h1 { color: #8B5CF6; margin: 0 0 1rem 0; }
        p { color: #D1D5DB; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>%[1]s</h1>
        <p>%[2]s</p>
    </div>
</body>
</html>
`, title, message)
}
