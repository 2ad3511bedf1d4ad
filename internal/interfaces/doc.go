// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Store Interfaces
//
// Each service declares the narrow store it needs. Both document store backends
// implement all of them:
//
//   - library.Store, library.CounterStore: shelf entries and counters (internal/library)
//   - ratings.Store: reviews (internal/ratings)
//   - social.ProfileStore, social.FriendStore: profiles and friend links (internal/social)
//
// The sqlite backend lives in internal/database/{shelves,reviews,users,friends};
// the Firestore backend is internal/firestore. Only sqlite keeps shelf counters.
//
// ## Service Interfaces
//
// HTTP controllers depend on service interfaces declared next to them in
// internal/http (ShelfService, ReviewService, SocialService, ProfileViews, ...),
// and the aggregation facade reads through profile.ShelfReader, ReviewReader and
// ProfileReader.
//
// ## Background Work
//
//   - library.CoverQueue: schedules cover downloads after a shelf add
//   - tasks.CounterReconciler, scheduler.ReconcileEnqueuer: counter reconciliation
//
// # Adding a New Store Backend
//
//  1. Implement the store interfaces of the services you need.
//  2. Return absence as an error wrapping errors.ErrNotFound.
//  3. Select it in entrypoint.OpenBackend.
//  4. Add compile-time checks to checks.go:
//
//     var _ library.Store = (*MyStore)(nil)
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for the full list.
package interfaces
