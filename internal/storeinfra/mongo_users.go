package storeinfra

import (
	"context"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/goliatone/go-property-listing/model"
	"github.com/goliatone/go-property-listing/store"
)

// MongoUserStore implements store.UserStore on the Users collection.
type MongoUserStore struct {
	coll *mongo.Collection
}

var _ store.UserStore = (*MongoUserStore)(nil)

func (s *MongoUserStore) findOne(ctx context.Context, filter bson.D) (model.User, error) {
	var u model.User
	err := s.coll.FindOne(ctx, filter).Decode(&u)
	if isNoDocuments(err) {
		return model.User{}, store.ErrNotFound
	}
	return u, err
}

// FindByEmail implements store.UserStore.
func (s *MongoUserStore) FindByEmail(ctx context.Context, email string) (model.User, error) {
	return s.findOne(ctx, bson.D{{Key: "email", Value: model.NormalizeEmail(email)}})
}

// FindByID implements store.UserStore.
func (s *MongoUserStore) FindByID(ctx context.Context, id primitive.ObjectID) (model.User, error) {
	return s.findOne(ctx, bson.D{{Key: "_id", Value: id}})
}

// Insert implements store.UserStore.
func (s *MongoUserStore) Insert(ctx context.Context, u model.User) (model.User, error) {
	u.Email = model.NormalizeEmail(u.Email)
	res, err := s.coll.InsertOne(ctx, u)
	if isDuplicate(err) {
		return model.User{}, store.ErrDuplicate
	}
	if err != nil {
		return model.User{}, err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		u.ID = oid
	}
	return u, nil
}

// SearchByEmail implements store.UserStore. term is matched literally.
func (s *MongoUserStore) SearchByEmail(ctx context.Context, term string, limit int) ([]model.UserSummary, error) {
	cursor, err := s.coll.Find(ctx,
		bson.D{{Key: "email", Value: primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}}},
		options.Find().
			SetProjection(bson.D{{Key: "name", Value: 1}, {Key: "email", Value: 1}}).
			SetLimit(int64(limit)),
	)
	if err != nil {
		return nil, err
	}

	users := []model.UserSummary{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}
