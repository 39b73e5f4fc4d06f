// Package tasks keeps the local catalog cache in step with the hosted catalog, reporting progress as it goes.
//
// # Core Operation
//
// [CatalogEngine.Sync] runs one pass:
//
//  1. Fetch: one [services.Catalog.ListTracks] call per status, concurrently (errgroup)
//  2. Dedupe: merge the per-status results by track id, keeping first-seen order
//  3. Cache: upsert every track through the [TrackCacher]
//
// The returned [SyncResult] counts fetched, inserted, updated and failed tracks.
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for UI rendering.
// Updates use select with default to prevent blocking; a full channel drops the update.
//
// # Track Caching
//
// A cache failure for one track is recorded in [SyncResult.Failed] and does not stop the pass.
package tasks
