// Package repositories provides persistence layer implementations for all model types.
//
// Each repository implements models.Repository[T] for a specific entity type,
// handling CRUD operations, soft deletes, and sequence generation. The vote
// repository additionally implements the transactional vote protocol that
// keeps the denormalized soundtrack tallies consistent under concurrent
// access.
package repositories
