package storeinfra

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/goliatone/go-property-listing/model"
	"github.com/goliatone/go-property-listing/store"
)

// MongoFavouriteStore implements store.FavouriteStore on the Favourites
// collection.
type MongoFavouriteStore struct {
	coll *mongo.Collection
}

var _ store.FavouriteStore = (*MongoFavouriteStore)(nil)

func ownedBy(userID, id primitive.ObjectID) bson.D {
	return bson.D{{Key: "_id", Value: id}, {Key: "userId", Value: userID}}
}

// ListByUser implements store.FavouriteStore.
func (s *MongoFavouriteStore) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]model.Favourite, error) {
	cursor, err := s.coll.Find(ctx,
		bson.D{{Key: "userId", Value: userID}},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}

	favs := []model.Favourite{}
	if err := cursor.All(ctx, &favs); err != nil {
		return nil, err
	}
	return favs, nil
}

// Get implements store.FavouriteStore.
func (s *MongoFavouriteStore) Get(ctx context.Context, userID, id primitive.ObjectID) (model.Favourite, error) {
	var f model.Favourite
	err := s.coll.FindOne(ctx, ownedBy(userID, id)).Decode(&f)
	if isNoDocuments(err) {
		return model.Favourite{}, store.ErrNotFound
	}
	return f, err
}

// Exists implements store.FavouriteStore.
func (s *MongoFavouriteStore) Exists(ctx context.Context, userID primitive.ObjectID, propertyID string) (bool, error) {
	n, err := s.coll.CountDocuments(ctx,
		bson.D{{Key: "userId", Value: userID}, {Key: "propertyId", Value: propertyID}},
		options.Count().SetLimit(1),
	)
	return n > 0, err
}

// Insert implements store.FavouriteStore.
func (s *MongoFavouriteStore) Insert(ctx context.Context, f model.Favourite) (model.Favourite, error) {
	res, err := s.coll.InsertOne(ctx, f)
	if isDuplicate(err) {
		return model.Favourite{}, store.ErrDuplicate
	}
	if err != nil {
		return model.Favourite{}, err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		f.ID = oid
	}
	return f, nil
}

// UpdateProperty implements store.FavouriteStore.
func (s *MongoFavouriteStore) UpdateProperty(ctx context.Context, userID, id primitive.ObjectID, propertyID string, now time.Time) (model.Favourite, error) {
	var f model.Favourite
	err := s.coll.FindOneAndUpdate(ctx,
		ownedBy(userID, id),
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "propertyId", Value: propertyID},
			{Key: "updatedAt", Value: now},
		}}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&f)
	if isNoDocuments(err) {
		return model.Favourite{}, store.ErrNotFound
	}
	if isDuplicate(err) {
		return model.Favourite{}, store.ErrDuplicate
	}
	return f, err
}

// Delete implements store.FavouriteStore.
func (s *MongoFavouriteStore) Delete(ctx context.Context, userID, id primitive.ObjectID) error {
	res, err := s.coll.DeleteOne(ctx, ownedBy(userID, id))
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
