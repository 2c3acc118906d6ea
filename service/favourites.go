package service

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/goliatone/go-property-listing/model"
)

// Favourites manages a user's saved listings. A user only ever sees their
// own favourites.
type Favourites struct {
	repo FavouriteRepository
	options
}

// NewFavourites builds the favourites service over repo.
func NewFavourites(repo FavouriteRepository, opts ...Option) *Favourites {
	return &Favourites{repo: repo, options: buildOptions(opts)}
}

// Add saves propertyID for actor.
func (s *Favourites) Add(ctx context.Context, actor primitive.ObjectID, propertyID string) (model.Favourite, error) {
	propertyID = strings.TrimSpace(propertyID)
	if propertyID == "" {
		return model.Favourite{}, badRequest("PropertyId is required")
	}

	exists, err := s.repo.Exists(ctx, actor, propertyID)
	if err != nil {
		return model.Favourite{}, s.fail(err)
	}
	if exists {
		return model.Favourite{}, conflict("Property already in favourites")
	}

	now := s.now()
	created, err := s.repo.Create(ctx, model.Favourite{
		UserID:     actor,
		PropertyID: propertyID,
		CreatedAt:  now,
		UpdatedAt:  &now,
	})
	if err != nil {
		return model.Favourite{}, s.fail(err)
	}
	return created, nil
}

// List returns actor's favourites, newest first.
func (s *Favourites) List(ctx context.Context, actor primitive.ObjectID) (model.FavouriteList, bool, error) {
	list, hit, err := s.repo.List(ctx, actor)
	if err != nil {
		return model.FavouriteList{}, false, s.fail(err)
	}
	if list.Favourites == nil {
		list = model.NewFavouriteList(nil)
	}
	return list, hit, nil
}

// Get returns one of actor's favourites.
func (s *Favourites) Get(ctx context.Context, actor primitive.ObjectID, favouriteID string) (model.Favourite, bool, error) {
	id, err := parseFavouriteID(favouriteID)
	if err != nil {
		return model.Favourite{}, false, err
	}

	fav, hit, err := s.repo.Get(ctx, actor, id)
	if err != nil {
		return model.Favourite{}, false, s.fail(err)
	}
	return fav, hit, nil
}

// Update points one of actor's favourites at another listing.
func (s *Favourites) Update(ctx context.Context, actor primitive.ObjectID, favouriteID, propertyID string) (model.Favourite, error) {
	id, err := parseFavouriteID(favouriteID)
	if err != nil {
		return model.Favourite{}, err
	}
	propertyID = strings.TrimSpace(propertyID)
	if propertyID == "" {
		return model.Favourite{}, badRequest("PropertyId is required")
	}

	updated, err := s.repo.Update(ctx, actor, id, propertyID, s.now())
	if err != nil {
		return model.Favourite{}, s.fail(err)
	}
	return updated, nil
}

// Remove deletes one of actor's favourites.
func (s *Favourites) Remove(ctx context.Context, actor primitive.ObjectID, favouriteID string) error {
	id, err := parseFavouriteID(favouriteID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, actor, id); err != nil {
		return s.fail(err)
	}
	return nil
}

func (s *Favourites) fail(err error) error {
	if !isNotFound(err) && !isDuplicate(err) {
		s.logger.Error().Err(err).Msg("favourite store failed")
	}
	return storeError(err, "Favourite not found", "Property already in favourites", "Internal server error")
}

func parseFavouriteID(raw string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(raw))
	if err != nil {
		return primitive.NilObjectID, badRequest("Invalid favourite ID")
	}
	return id, nil
}
