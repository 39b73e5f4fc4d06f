// Package services defines the [Catalog] interface for the hosted music catalog and implements it over REST.
//
// # Catalog Interface
//
// The player and sync task only need two reads: list playable tracks filtered by publication
// status, and resolve a set of track ids in order. Everything else the backend offers (uploads,
// releases, tips, admin tables) is outside this client.
//
// # REST Implementation
//
// [CatalogService] speaks the PostgREST dialect exposed by the hosted backend:
//
//	GET /tracks?select=...&status=in.(ready,live)&order=created_at.desc
//	GET /tracks?select=...&id=in.("a","b")
//
// Requests carry the project key twice: as the apikey header and as a bearer token supplied by an
// [oauth2.StaticTokenSource], so a later switch to user sessions only swaps the token source.
//
// Requests are paced by a [rate.Limiter] and bounded by a per-request timeout.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrMissingCredentials] : no API key configured
//   - [shared.ErrAPIRequest] : transport failure or non-2xx status
//   - [shared.ErrTimeout] : request exceeded its deadline
package services
