// Package repositories provides sqlite persistence for the catalog cache, liked songs and purchases.
//
// Each entity repository implements [models.Repository] for its model type,
// handling CRUD operations, soft deletes, and sequence generation.
//
// [LikeRepository] is not a [models.Repository]: liked songs are a set of catalog
// ids, loaded once at startup and flipped one row at a time.
package repositories
