// Package models defines domain entities and persistence interfaces for the comictracks service.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): lightweight structs passed between layers
//   - [Track] : A single soundtrack entry (YouTube URL, optional page range, play order)
//
// 2. Persistent Entities: database-backed models with full lifecycle management
//   - [Issue] : Local record for an external Comic Vine issue id
//   - [Soundtrack] : Community playlist for an issue with denormalized vote tallies
//   - [User] : Local accounts for sign-in and soundtrack authorship
//
// All persistent entities implement the Model interface providing ID generation, timestamps, validation, and soft delete support.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
