package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/desertthunder/wavelet/internal/models"
	"github.com/desertthunder/wavelet/internal/payments"
	"github.com/desertthunder/wavelet/internal/pricing"
	"github.com/desertthunder/wavelet/internal/repositories"
	"github.com/desertthunder/wavelet/internal/server"
	"github.com/desertthunder/wavelet/internal/shared"
	"github.com/urfave/cli/v3"
)

const approvalTimeout = 2 * time.Minute

// CheckoutPayPal prices the offer, creates a PayPal order and waits for the buyer to approve it in the browser.
//
// The approval redirect lands on a local server that captures the order; the purchase is recorded as
// pending when the order is created and completed once captured.
func (r *Runner) CheckoutPayPal(ctx context.Context, cmd *cli.Command) error {
	client := r.paypalClient()
	if client == nil {
		return fmt.Errorf("%w: payments.paypal client_id and client_secret must be set", shared.ErrMissingCredentials)
	}

	db, err := r.database()
	if err != nil {
		return err
	}
	purchases := repositories.NewPurchaseRepository(db)

	quote := pricing.Quote(environment(cmd))
	r.writePlain("Premium: %s (was %s, save %d%%)\n", quote.DiscountedFormatted, quote.OriginalFormatted, quote.SavingsPercentage)

	order, err := client.CreateOrder(ctx, quote, "Wavelet Premium")
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	r.recordPurchase(purchases, order.ID, quote, models.PurchasePending)

	captured, err := r.doApproval(order, client)
	if err != nil {
		r.recordPurchase(purchases, order.ID, quote, models.PurchaseFailed)
		return err
	}

	r.recordPurchase(purchases, captured.ID, quote, models.PurchaseCompleted)
	r.writePlainln("✓ Payment captured")
	return r.writePlain("Order: %s (%s)\n", captured.ID, captured.Status)
}

func (r *Runner) recordPurchase(repo *repositories.PurchaseRepository, id string, quote pricing.PricingQuote, status string) {
	p := models.NewPurchase(0, models.ProviderPayPal, id, quote.Currency, quote.DiscountedMinor(), status)
	if err := repo.Record(p); err != nil {
		r.logger.Warn("failed to record purchase", "order", id, "status", status, "error", err)
	}
}

// doApproval serves the PayPal return route until the order is approved and captured, cancelled or times out.
func (r *Runner) doApproval(order *payments.Order, capturer server.OrderCapturer) (*payments.Order, error) {
	approvalURL := order.ApprovalURL()
	if approvalURL == "" {
		return nil, fmt.Errorf("%w: order %s has no approval link", shared.ErrAPIRequest, order.ID)
	}

	handler := server.NewApprovalHandler(capturer, order.ID)
	router := server.NewBasicRouter()
	router.Use(server.Logging(r.logger))
	router.Handler(handler)

	serverAddr := r.config.Server.Addr()
	httpServer := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("starting approval server for order %s at %v", order.ID, serverAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	time.Sleep(100 * time.Millisecond)

	r.writePlain("→ Opening browser for PayPal approval...\n")
	if err := shared.OpenBrowser(approvalURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", approvalURL)
	}

	r.writePlain("→ Waiting for approval (2 minute timeout)...\n")

	timeout := time.NewTimer(approvalTimeout)
	defer timeout.Stop()

	var result server.ApprovalResult

	select {
	case result = <-handler.Result():
	case err := <-serverErrors:
		return nil, fmt.Errorf("server error: %w", err)
	case <-timeout.C:
		return nil, fmt.Errorf("%w: approval timed out after 2 minutes", shared.ErrTimeout)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		r.logger.Warn("error shutting down server", "error", err)
	}

	if result.Error() != nil {
		return nil, fmt.Errorf("approval failed: %w", result.Error())
	}
	if result.Order == nil {
		return nil, fmt.Errorf("%w: no order captured", shared.ErrPaymentRejected)
	}
	return result.Order, nil
}
