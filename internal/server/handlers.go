package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/wavelet/internal/models"
	"github.com/desertthunder/wavelet/internal/payments"
	"github.com/desertthunder/wavelet/internal/pricing"
	"github.com/desertthunder/wavelet/internal/shared"
	"github.com/desertthunder/wavelet/internal/waveform"
	"golang.org/x/text/language"
)

const (
	maxWebhookBytes  = 64 << 10
	maxWaveformWidth = 4096
	checkoutLabel    = "Wavelet Premium"
)

// CheckoutCreator opens a hosted card checkout.
type CheckoutCreator interface {
	CreateCheckoutSession(ctx context.Context, quote pricing.PricingQuote, label string) (*payments.CheckoutSession, error)
}

// OrderCreator opens a PayPal order.
type OrderCreator interface {
	CreateOrder(ctx context.Context, quote pricing.PricingQuote, label string) (*payments.Order, error)
}

// PurchaseRecorder stores purchases idempotently by provider reference.
type PurchaseRecorder interface {
	Record(p *models.Purchase) error
}

// APIOpts configures [API]. Nil providers disable their checkout route.
type APIOpts struct {
	Stripe           CheckoutCreator
	PayPal           OrderCreator
	Purchases        PurchaseRecorder
	WebhookSecret    string
	WebhookTolerance time.Duration
	Now              func() time.Time
	Logger           *log.Logger
}

// API serves pricing, checkout, webhooks and waveform images.
type API struct {
	stripe    CheckoutCreator
	paypal    OrderCreator
	purchases PurchaseRecorder
	secret    string
	tolerance time.Duration
	now       func() time.Time
	logger    *log.Logger
}

// NewAPI creates an [API].
func NewAPI(opts APIOpts) *API {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.WebhookTolerance <= 0 {
		opts.WebhookTolerance = payments.DefaultTolerance
	}
	return &API{
		stripe:    opts.Stripe,
		paypal:    opts.PayPal,
		purchases: opts.Purchases,
		secret:    opts.WebhookSecret,
		tolerance: opts.WebhookTolerance,
		now:       opts.Now,
		logger:    opts.Logger,
	}
}

// Register mounts every route on r.
func (a *API) Register(r *BasicRouter) {
	r.HandleFunc(http.MethodGet, "/pricing", a.pricing)
	r.HandleFunc(http.MethodGet, "/waveform.png", a.waveformPNG)
	r.HandleFunc(http.MethodPost, "/checkout/stripe", a.checkoutStripe)
	r.HandleFunc(http.MethodPost, "/checkout/paypal", a.checkoutPayPal)
	r.HandleFunc(http.MethodPost, "/webhooks/stripe", a.stripeWebhook)
}

type checkoutResponse struct {
	Provider string               `json:"provider"`
	ID       string               `json:"id"`
	URL      string               `json:"url"`
	Quote    pricing.PricingQuote `json:"quote"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// environment reads the locale and timezone from the query string, a JSON body, or Accept-Language.
func environment(r *http.Request) pricing.Environment {
	env := pricing.Environment{
		Locale:   r.URL.Query().Get("locale"),
		Timezone: r.URL.Query().Get("timezone"),
	}
	if r.Method == http.MethodPost && r.Body != nil {
		var body pricing.Environment
		if err := json.NewDecoder(io.LimitReader(r.Body, 4096)).Decode(&body); err == nil {
			if body.Locale != "" {
				env.Locale = body.Locale
			}
			if body.Timezone != "" {
				env.Timezone = body.Timezone
			}
		}
	}
	if env.Locale == "" {
		if tags, _, err := language.ParseAcceptLanguage(r.Header.Get("Accept-Language")); err == nil && len(tags) > 0 {
			env.Locale = tags[0].String()
		}
	}
	return env
}

func (a *API) pricing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, pricing.Quote(environment(r)))
}

func (a *API) checkoutStripe(w http.ResponseWriter, r *http.Request) {
	if a.stripe == nil {
		writeError(w, http.StatusNotImplemented, "stripe checkout is not configured")
		return
	}
	quote := pricing.Quote(environment(r))
	session, err := a.stripe.CreateCheckoutSession(r.Context(), quote, checkoutLabel)
	if err != nil {
		a.logger.Error("stripe checkout failed", "error", err)
		writeError(w, http.StatusBadGateway, "checkout unavailable")
		return
	}
	a.record(models.ProviderStripe, session.ID, quote, models.PurchasePending)
	writeJSON(w, http.StatusCreated, checkoutResponse{Provider: models.ProviderStripe, ID: session.ID, URL: session.URL, Quote: quote})
}

func (a *API) checkoutPayPal(w http.ResponseWriter, r *http.Request) {
	if a.paypal == nil {
		writeError(w, http.StatusNotImplemented, "paypal checkout is not configured")
		return
	}
	quote := pricing.Quote(environment(r))
	order, err := a.paypal.CreateOrder(r.Context(), quote, checkoutLabel)
	if err != nil {
		a.logger.Error("paypal order failed", "error", err)
		writeError(w, http.StatusBadGateway, "checkout unavailable")
		return
	}
	a.record(models.ProviderPayPal, order.ID, quote, models.PurchasePending)
	writeJSON(w, http.StatusCreated, checkoutResponse{Provider: models.ProviderPayPal, ID: order.ID, URL: order.ApprovalURL(), Quote: quote})
}

func (a *API) record(provider, id string, quote pricing.PricingQuote, status string) {
	if a.purchases == nil {
		return
	}
	p := models.NewPurchase(0, provider, id, quote.Currency, quote.DiscountedMinor(), status)
	if err := a.purchases.Record(p); err != nil {
		a.logger.Error("failed to record purchase", "provider", provider, "id", id, "error", err)
	}
}

func (a *API) stripeWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "payload too large")
		return
	}

	ev, err := payments.ParseEvent(payload, r.Header.Get(payments.SignatureHeader), a.secret, a.tolerance, a.now())
	if err != nil {
		a.logger.Warn("rejected webhook", "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	switch ev.Type {
	case "checkout.session.completed", "checkout.session.async_payment_succeeded":
		if err := a.recordSession(ev, models.PurchaseCompleted); err != nil {
			a.logger.Error("failed to record checkout", "event", ev.ID, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to record purchase")
			return
		}
	case "checkout.session.async_payment_failed", "checkout.session.expired":
		if err := a.recordSession(ev, models.PurchaseFailed); err != nil {
			a.logger.Error("failed to record checkout", "event", ev.ID, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to record purchase")
			return
		}
	default:
		a.logger.Debug("ignoring webhook", "type", ev.Type)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) recordSession(ev *payments.Event, status string) error {
	session, err := ev.CheckoutSession()
	if err != nil {
		return err
	}
	if session.ID == "" {
		return errors.New("checkout session without id")
	}
	if a.purchases == nil {
		return nil
	}
	currency := strings.ToUpper(session.Currency)
	return a.purchases.Record(models.NewPurchase(0, models.ProviderStripe, session.ID, currency, session.AmountTotal, status))
}

func (a *API) waveformPNG(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	surface := waveform.Surface{Width: 600, Height: 80, PixelRatio: 1}

	var err error
	var progress float64
	if v := q.Get("progress"); v != "" {
		if progress, err = strconv.ParseFloat(v, 64); err != nil {
			writeError(w, http.StatusBadRequest, "invalid progress")
			return
		}
	}
	if v := q.Get("width"); v != "" {
		if surface.Width, err = strconv.Atoi(v); err != nil || surface.Width <= 0 || surface.Width > maxWaveformWidth {
			writeError(w, http.StatusBadRequest, "invalid width")
			return
		}
	}
	if v := q.Get("height"); v != "" {
		if surface.Height, err = strconv.Atoi(v); err != nil || surface.Height <= 0 || surface.Height > maxWaveformWidth {
			writeError(w, http.StatusBadRequest, "invalid height")
			return
		}
	}
	if v := q.Get("ratio"); v != "" {
		if surface.PixelRatio, err = strconv.ParseFloat(v, 64); err != nil || surface.PixelRatio > 4 {
			writeError(w, http.StatusBadRequest, "invalid ratio")
			return
		}
	}
	seed := time.Now().UnixNano()
	if v := q.Get("seed"); v != "" {
		if seed, err = strconv.ParseInt(v, 10, 64); err != nil {
			writeError(w, http.StatusBadRequest, "invalid seed")
			return
		}
	}
	playing, _ := strconv.ParseBool(q.Get("playing"))

	samples := waveform.Generate(waveform.DefaultSamples, rand.New(rand.NewSource(seed)))
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if err := waveform.EncodePNG(w, samples, shared.Clamp(progress, 0, 100), playing, surface); err != nil {
		a.logger.Error("failed to encode waveform", "error", err)
	}
}
