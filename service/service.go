// Package service holds the business rules of the listing API. Every error
// it returns is a *goerrors.Error carrying an HTTP status code; cache
// trouble never reaches this layer.
package service

import (
	"context"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/goliatone/go-property-listing/model"
	"github.com/goliatone/go-property-listing/query"
	"github.com/goliatone/go-property-listing/repositorycache"
)

// PropertyRepository is the cached listing repository.
type PropertyRepository interface {
	Search(ctx context.Context, params url.Values) (query.Result, bool, error)
	Get(ctx context.Context, id string) (model.Property, bool, error)
	Lookup(ctx context.Context, id string) (model.Property, error)
	Exists(ctx context.Context, id string) (bool, error)
	Create(ctx context.Context, p model.Property) (model.Property, error)
	Update(ctx context.Context, id string, patch model.PropertyPatch) (model.Property, error)
	Delete(ctx context.Context, id string) error
}

// FavouriteRepository is the cached favourites repository.
type FavouriteRepository interface {
	List(ctx context.Context, userID primitive.ObjectID) (model.FavouriteList, bool, error)
	Get(ctx context.Context, userID, id primitive.ObjectID) (model.Favourite, bool, error)
	Exists(ctx context.Context, userID primitive.ObjectID, propertyID string) (bool, error)
	Create(ctx context.Context, f model.Favourite) (model.Favourite, error)
	Update(ctx context.Context, userID, id primitive.ObjectID, propertyID string, now time.Time) (model.Favourite, error)
	Delete(ctx context.Context, userID, id primitive.ObjectID) error
}

// RecommendationRepository is the cached recommendations repository.
type RecommendationRepository interface {
	List(ctx context.Context, userID primitive.ObjectID) (model.RecommendationList, bool, error)
	Exists(ctx context.Context, from, to primitive.ObjectID, featureID string) (bool, error)
	Create(ctx context.Context, r model.Recommendation) (model.Recommendation, error)
}

// UserDirectory is the cached account directory.
type UserDirectory interface {
	Search(ctx context.Context, term string) ([]model.UserSummary, bool, error)
	FindByEmail(ctx context.Context, email string) (model.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (model.User, error)
	Create(ctx context.Context, u model.User) (model.User, error)
}

var (
	_ PropertyRepository       = (*repositorycache.CachedPropertyRepository)(nil)
	_ FavouriteRepository      = (*repositorycache.CachedFavouriteRepository)(nil)
	_ RecommendationRepository = (*repositorycache.CachedRecommendationRepository)(nil)
	_ UserDirectory            = (*repositorycache.CachedUserDirectory)(nil)
)

type options struct {
	logger zerolog.Logger
	now    func() time.Time
}

// Option customises a service.
type Option func(*options)

// WithLogger sets the logger store failures are reported on.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithClock overrides the clock used for created and updated stamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: zerolog.Nop(), now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
