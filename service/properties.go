package service

import (
	"context"
	"net/url"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/goliatone/go-property-listing/model"
	"github.com/goliatone/go-property-listing/query"
)

// Properties manages listings. Only the creator of a listing may change or
// remove it.
type Properties struct {
	repo PropertyRepository
	options
}

// NewProperties builds the listing service over repo.
func NewProperties(repo PropertyRepository, opts ...Option) *Properties {
	return &Properties{repo: repo, options: buildOptions(opts)}
}

// Search runs a filtered search. The boolean reports a cache hit.
func (s *Properties) Search(ctx context.Context, params url.Values) (query.Result, bool, error) {
	res, hit, err := s.repo.Search(ctx, params)
	if err != nil {
		s.logger.Error().Err(err).Msg("property search failed")
		return query.Result{}, false, internal(err, "Internal server error")
	}
	return res, hit, nil
}

// Get returns one listing.
func (s *Properties) Get(ctx context.Context, id string) (model.Property, bool, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return model.Property{}, false, badRequest("Property ID is required")
	}

	p, hit, err := s.repo.Get(ctx, id)
	if err != nil {
		return model.Property{}, false, s.fail(err, "Error fetching property")
	}
	return p, hit, nil
}

// Create validates in and stores a new listing owned by actor.
func (s *Properties) Create(ctx context.Context, actor primitive.ObjectID, in model.PropertyInput) (model.Property, error) {
	if err := in.ValidateCreate(); err != nil {
		return model.Property{}, invalid(err, "Invalid property")
	}

	p := in.ToProperty(actor, s.now())

	exists, err := s.repo.Exists(ctx, p.PropertyID)
	if err != nil {
		return model.Property{}, s.fail(err, "Error creating property")
	}
	if exists {
		return model.Property{}, conflict("Property with this ID already exists")
	}

	created, err := s.repo.Create(ctx, p)
	if err != nil {
		return model.Property{}, s.fail(err, "Error creating property")
	}
	return created, nil
}

// Update applies the supplied fields of in to a listing owned by actor.
func (s *Properties) Update(ctx context.Context, actor primitive.ObjectID, id string, in model.PropertyInput) (model.Property, error) {
	if _, err := s.owned(ctx, actor, id, "update"); err != nil {
		return model.Property{}, err
	}
	if err := in.ValidateUpdate(); err != nil {
		return model.Property{}, invalid(err, "Invalid property")
	}

	updated, err := s.repo.Update(ctx, strings.TrimSpace(id), in.Patch(s.now()))
	if err != nil {
		return model.Property{}, s.fail(err, "Error updating property")
	}
	return updated, nil
}

// Delete removes a listing owned by actor.
func (s *Properties) Delete(ctx context.Context, actor primitive.ObjectID, id string) error {
	if _, err := s.owned(ctx, actor, id, "delete"); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, strings.TrimSpace(id)); err != nil {
		if isNotFound(err) {
			return notFound("Property not found or already deleted")
		}
		return s.fail(err, "Error deleting property")
	}
	return nil
}

// owned loads the listing from the store and checks actor created it.
func (s *Properties) owned(ctx context.Context, actor primitive.ObjectID, id, verb string) (model.Property, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return model.Property{}, badRequest("Property ID is required")
	}

	p, err := s.repo.Lookup(ctx, id)
	if err != nil {
		return model.Property{}, s.fail(err, "Error fetching property")
	}
	if !p.OwnedBy(actor) {
		return model.Property{}, forbidden("You are not authorized to " + verb + " this property. Only the creator can " + verb + " it.")
	}
	return p, nil
}

func (s *Properties) fail(err error, message string) error {
	if !isNotFound(err) && !isDuplicate(err) {
		s.logger.Error().Err(err).Msg(strings.ToLower(message))
	}
	return storeError(err, "Property not found", "Property with this ID already exists", message)
}
