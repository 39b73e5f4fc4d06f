// Package payments talks to the two checkout providers.
//
// # Stripe
//
// [VerifySignature] checks the Stripe-Signature header of a webhook delivery: the header carries a unix timestamp
// (t=) and one or more v1= signatures, each a hex HMAC-SHA256 of "<t>.<payload>" keyed by the endpoint secret.
// A delivery is accepted when any v1 signature matches in constant time and the timestamp is within tolerance.
// [ParseEvent] verifies and decodes in one step.
//
// [StripeClient] creates hosted checkout sessions through the form-encoded REST API, authenticating with the
// secret key as a bearer token.
//
// # PayPal
//
// [PayPalClient] creates and captures orders through the v2 Orders API. Access tokens come from the client
// credentials grant and are cached and refreshed by the oauth2 transport.
package payments
