package storeinfra

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/goliatone/go-property-listing/model"
	"github.com/goliatone/go-property-listing/store"
)

// MongoRecommendationStore implements store.RecommendationStore on the
// Recommendations collection.
type MongoRecommendationStore struct {
	coll *mongo.Collection
}

var _ store.RecommendationStore = (*MongoRecommendationStore)(nil)

// Exists implements store.RecommendationStore.
func (s *MongoRecommendationStore) Exists(ctx context.Context, from, to primitive.ObjectID, featureID string) (bool, error) {
	n, err := s.coll.CountDocuments(ctx, bson.D{
		{Key: "userId", Value: from},
		{Key: "recommendedToUserId", Value: to},
		{Key: "featureId", Value: featureID},
	}, options.Count().SetLimit(1))
	return n > 0, err
}

// Insert implements store.RecommendationStore.
func (s *MongoRecommendationStore) Insert(ctx context.Context, r model.Recommendation) (model.Recommendation, error) {
	res, err := s.coll.InsertOne(ctx, r)
	if isDuplicate(err) {
		return model.Recommendation{}, store.ErrDuplicate
	}
	if err != nil {
		return model.Recommendation{}, err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		r.ID = oid
	}
	return r, nil
}

// ListForUser implements store.RecommendationStore.
func (s *MongoRecommendationStore) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]model.Recommendation, error) {
	cursor, err := s.coll.Find(ctx,
		bson.D{{Key: "$or", Value: bson.A{
			bson.D{{Key: "userId", Value: userID}},
			bson.D{{Key: "recommendedToUserId", Value: userID}},
		}}},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}

	var recs []model.Recommendation
	if err := cursor.All(ctx, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}
