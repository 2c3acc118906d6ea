// Package store defines the persistence contracts of the listing service.
// Implementations live in internal/storeinfra.
package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/goliatone/go-property-listing/model"
	"github.com/goliatone/go-property-listing/query"
)

var (
	// ErrNotFound is returned when a lookup matches nothing.
	ErrNotFound = errors.New("store: not found")
	// ErrDuplicate is returned when a write violates a uniqueness constraint.
	ErrDuplicate = errors.New("store: duplicate")
)

// PropertyStore persists listings keyed by Property.PropertyID.
type PropertyStore interface {
	Filter(ctx context.Context, f query.Filter) (query.Result, error)
	FindByID(ctx context.Context, id string) (model.Property, error)
	Exists(ctx context.Context, id string) (bool, error)
	Insert(ctx context.Context, p model.Property) (model.Property, error)
	Update(ctx context.Context, id string, patch model.PropertyPatch) (model.Property, error)
	Delete(ctx context.Context, id string) error
}

// FavouriteStore persists favourites. Every lookup is scoped to the owner.
type FavouriteStore interface {
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]model.Favourite, error)
	Get(ctx context.Context, userID, id primitive.ObjectID) (model.Favourite, error)
	Exists(ctx context.Context, userID primitive.ObjectID, propertyID string) (bool, error)
	Insert(ctx context.Context, f model.Favourite) (model.Favourite, error)
	UpdateProperty(ctx context.Context, userID, id primitive.ObjectID, propertyID string, now time.Time) (model.Favourite, error)
	Delete(ctx context.Context, userID, id primitive.ObjectID) error
}

// RecommendationStore persists recommendations.
type RecommendationStore interface {
	Exists(ctx context.Context, from, to primitive.ObjectID, featureID string) (bool, error)
	Insert(ctx context.Context, r model.Recommendation) (model.Recommendation, error)
	// ListForUser returns recommendations sent or received by userID, newest
	// first.
	ListForUser(ctx context.Context, userID primitive.ObjectID) ([]model.Recommendation, error)
}

// UserStore persists accounts.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (model.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (model.User, error)
	Insert(ctx context.Context, u model.User) (model.User, error)
	// SearchByEmail returns up to limit users whose email contains term,
	// ignoring case.
	SearchByEmail(ctx context.Context, term string, limit int) ([]model.UserSummary, error)
}

// UserSearchLimit caps SearchByEmail results.
const UserSearchLimit = 15
