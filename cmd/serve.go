package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/desertthunder/wavelet/internal/payments"
	"github.com/desertthunder/wavelet/internal/repositories"
	"github.com/desertthunder/wavelet/internal/server"
	"github.com/desertthunder/wavelet/internal/shared"
	"github.com/desertthunder/wavelet/internal/tasks"
	"github.com/desertthunder/wavelet/internal/web"
	"github.com/urfave/cli/v3"
)

// stripeClient returns nil when no secret key is configured.
func (r *Runner) stripeClient() *payments.StripeClient {
	cfg := r.config.Payments.Stripe
	if cfg.SecretKey == "" {
		return nil
	}
	client, err := payments.NewStripeClient(payments.StripeOpts{
		SecretKey:  cfg.SecretKey,
		APIBaseURL: cfg.APIBaseURL,
		SuccessURL: cfg.SuccessURL,
		CancelURL:  cfg.CancelURL,
		HTTPClient: r.httpClient,
		Logger:     r.logger,
	})
	if err != nil {
		r.logger.Warn("stripe checkout disabled", "error", err)
		return nil
	}
	return client
}

// paypalClient returns nil when PayPal credentials are missing.
func (r *Runner) paypalClient() *payments.PayPalClient {
	cfg := r.config.Payments.PayPal
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil
	}
	client, err := payments.NewPayPalClient(payments.PayPalOpts{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		APIBaseURL:   cfg.APIBaseURL,
		ReturnURL:    cfg.ReturnURL,
		CancelURL:    cfg.CancelURL,
		HTTPClient:   r.httpClient,
		Logger:       r.logger,
	})
	if err != nil {
		r.logger.Warn("paypal checkout disabled", "error", err)
		return nil
	}
	return client
}

// newAPI wires configured providers and the purchase ledger into a router.
func (r *Runner) newAPI() (*server.BasicRouter, error) {
	db, err := r.database()
	if err != nil {
		return nil, err
	}

	opts := server.APIOpts{
		Purchases:        repositories.NewPurchaseRepository(db),
		WebhookSecret:    r.config.Payments.Stripe.WebhookSecret,
		WebhookTolerance: time.Duration(r.config.Payments.Stripe.ToleranceSeconds) * time.Second,
		Logger:           shared.WithLogger(r.logger, "component", "api"),
	}
	if c := r.stripeClient(); c != nil {
		opts.Stripe = c
	}
	if c := r.paypalClient(); c != nil {
		opts.PayPal = c
	}
	if opts.WebhookSecret == "" {
		r.logger.Warn("stripe webhook secret not set, every webhook will be rejected")
	}

	router := server.NewBasicRouter()
	router.Use(server.Recover(r.logger), server.Logging(r.logger))
	server.NewAPI(opts).Register(router)

	if r.catalog != nil {
		engine := tasks.NewCatalogEngine(r.catalog, repositories.NewTrackCacheAdapter(repositories.NewTrackRepository(db)))
		router.Handler(web.NewSyncStream(engine, r.config.Catalog.Statuses, r.logger))
	}
	return router, nil
}

// Serve runs the HTTP API until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	router, err := r.newAPI()
	if err != nil {
		return err
	}

	addr := cmd.String("addr")
	if addr == "" {
		addr = r.config.Server.Addr()
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	for _, route := range router.Routes() {
		r.logger.Debug("route", "pattern", route)
	}
	r.writePlain("→ Serving on http://%s (Ctrl+C to stop)\n", addr)
	if err := server.Serve(ctx, srv, r.logger); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return r.writePlain("✓ Server stopped\n")
}
