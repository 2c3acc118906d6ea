package storeinfra

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/goliatone/go-property-listing/model"
	"github.com/goliatone/go-property-listing/query"
	"github.com/goliatone/go-property-listing/store"
)

// MongoPropertyStore implements store.PropertyStore on the Properties
// collection.
type MongoPropertyStore struct {
	coll *mongo.Collection
}

var _ store.PropertyStore = (*MongoPropertyStore)(nil)

type facetResult struct {
	TotalCount          int              `bson:"totalCount"`
	PaginatedProperties []model.Property `bson:"paginatedProperties"`
}

// Filter runs the aggregation built by f.
func (s *MongoPropertyStore) Filter(ctx context.Context, f query.Filter) (query.Result, error) {
	cursor, err := s.coll.Aggregate(ctx, f.Pipeline())
	if err != nil {
		return query.Result{}, err
	}

	if !f.Paginated() {
		var props []model.Property
		if err := cursor.All(ctx, &props); err != nil {
			return query.Result{}, err
		}
		return query.NewResult(props, 0), nil
	}

	var facets []facetResult
	if err := cursor.All(ctx, &facets); err != nil {
		return query.Result{}, err
	}
	if len(facets) == 0 {
		return query.NewResult(nil, 0), nil
	}
	return query.NewResult(facets[0].PaginatedProperties, query.MaxPages(facets[0].TotalCount)), nil
}

// FindByID implements store.PropertyStore.
func (s *MongoPropertyStore) FindByID(ctx context.Context, id string) (model.Property, error) {
	var p model.Property
	err := s.coll.FindOne(ctx, bson.D{{Key: "id", Value: id}}).Decode(&p)
	if isNoDocuments(err) {
		return model.Property{}, store.ErrNotFound
	}
	return p, err
}

// Exists implements store.PropertyStore.
func (s *MongoPropertyStore) Exists(ctx context.Context, id string) (bool, error) {
	n, err := s.coll.CountDocuments(ctx, bson.D{{Key: "id", Value: id}}, options.Count().SetLimit(1))
	return n > 0, err
}

// Insert implements store.PropertyStore.
func (s *MongoPropertyStore) Insert(ctx context.Context, p model.Property) (model.Property, error) {
	res, err := s.coll.InsertOne(ctx, p)
	if isDuplicate(err) {
		return model.Property{}, store.ErrDuplicate
	}
	if err != nil {
		return model.Property{}, err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		p.ID = oid
	}
	return p, nil
}

// Update implements store.PropertyStore and returns the updated listing.
func (s *MongoPropertyStore) Update(ctx context.Context, id string, patch model.PropertyPatch) (model.Property, error) {
	var p model.Property
	err := s.coll.FindOneAndUpdate(ctx,
		bson.D{{Key: "id", Value: id}},
		bson.D{{Key: "$set", Value: patch.Fields()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&p)
	if isNoDocuments(err) {
		return model.Property{}, store.ErrNotFound
	}
	return p, err
}

// Delete implements store.PropertyStore.
func (s *MongoPropertyStore) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.D{{Key: "id", Value: id}})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
