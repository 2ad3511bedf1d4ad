package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/bookshelf/internal/catalog"
	"github.com/mrlokans/bookshelf/internal/covers"
	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/database/friends"
	"github.com/mrlokans/bookshelf/internal/database/reviews"
	"github.com/mrlokans/bookshelf/internal/database/shelves"
	"github.com/mrlokans/bookshelf/internal/database/users"
	"github.com/mrlokans/bookshelf/internal/demo"
	"github.com/mrlokans/bookshelf/internal/firestore"
	"github.com/mrlokans/bookshelf/internal/http"
	"github.com/mrlokans/bookshelf/internal/library"
	"github.com/mrlokans/bookshelf/internal/profile"
	"github.com/mrlokans/bookshelf/internal/ratings"
	"github.com/mrlokans/bookshelf/internal/scheduler"
	"github.com/mrlokans/bookshelf/internal/social"
	"github.com/mrlokans/bookshelf/internal/tasks"
)

// =============================================================================
// Document Store: sqlite
// =============================================================================

var _ library.Store = (*shelves.Repository)(nil)
var _ library.CounterStore = (*shelves.Repository)(nil)
var _ ratings.Store = (*reviews.Repository)(nil)
var _ social.ProfileStore = (*users.Repository)(nil)
var _ social.FriendStore = (*friends.Repository)(nil)
var _ http.Pinger = (*database.Database)(nil)

// =============================================================================
// Document Store: Firestore
// =============================================================================

var _ library.Store = (*firestore.Store)(nil)
var _ ratings.Store = (*firestore.Store)(nil)
var _ social.ProfileStore = (*firestore.Store)(nil)
var _ social.FriendStore = (*firestore.Store)(nil)
var _ http.Pinger = (*firestore.Store)(nil)

// =============================================================================
// Services
// =============================================================================

var _ http.ShelfService = (*library.Service)(nil)
var _ http.EntryGetter = (*library.Service)(nil)
var _ http.ReviewService = (*ratings.Service)(nil)
var _ http.SocialService = (*social.Service)(nil)
var _ http.ProfileViews = (*profile.Facade)(nil)
var _ http.CardRater = (*profile.Facade)(nil)
var _ profile.ShelfReader = (*library.Service)(nil)
var _ profile.ReviewReader = (*ratings.Service)(nil)
var _ profile.ProfileReader = (*social.Service)(nil)
var _ demo.Shelver = (*library.Service)(nil)
var _ demo.Reviewer = (*ratings.Service)(nil)
var _ demo.Befriender = (*social.Service)(nil)

// =============================================================================
// External Services
// =============================================================================

var _ http.CatalogSearcher = (*catalog.Client)(nil)
var _ catalog.Cache = (*catalog.RedisCache)(nil)
var _ http.Pinger = (*catalog.RedisCache)(nil)
var _ http.CoverCache = (*covers.Cache)(nil)

// =============================================================================
// Background Work
// =============================================================================

var _ library.CoverQueue = (*tasks.Client)(nil)
var _ http.ReconcileEnqueuer = (*tasks.Client)(nil)
var _ http.TaskStatuser = (*tasks.Client)(nil)
var _ scheduler.ReconcileEnqueuer = (*tasks.Client)(nil)
var _ tasks.CounterReconciler = (*library.Service)(nil)
var _ tasks.CoverFetcher = (*covers.Cache)(nil)
