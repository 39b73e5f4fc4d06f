// Package models defines domain entities and persistence interfaces for wavelet.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): Lightweight values flowing from the hosted catalog into the player
//   - [Track] : Playable audio item with metadata, immutable once loaded into the player
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [PersistedTrack] : Cached catalog track
//   - [Purchase] : Completed or pending payment from Stripe or PayPal
//
// All persistent entities implement the [Entity] interface providing ID generation, timestamps and validation.
// The [Repository] interface defines standard CRUD operations for database access.
package models
