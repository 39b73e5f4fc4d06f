// Package server provides HTTP routing, middleware, and the payment and media endpoints.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
// [Logging] records method, path, status and duration; [Recover] turns panics into 500s.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # API
//
// [API] serves:
//
//	GET  /pricing          regional quote for ?locale=&timezone= or Accept-Language
//	GET  /waveform.png     rendered waveform for ?progress=&width=&height=&ratio=&seed=&playing=
//	POST /checkout/stripe  hosted checkout session for the caller's quote
//	POST /checkout/paypal  PayPal order and approval link for the caller's quote
//	POST /webhooks/stripe  signed Stripe events; completed sessions are recorded as purchases
//
// # PayPal Approval Handler
//
// [ApprovalHandler] is the one-shot return URL for a PayPal order started from the CLI. It checks the returned
// order token, captures the order and sends the outcome through a channel exactly once.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
