// Package models defines domain entities and persistence interfaces for the lowtide curation batch.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): Lightweight structs representing Tidal API data
//   - [Playlist] : Basic playlist metadata
//   - [Track] : Song metadata with lazily resolved genres
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [RunRecord] : One curation batch run with its outcome counters
//
// All persistent entities implement the [Model] interface providing ID generation, timestamps, and validation.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
