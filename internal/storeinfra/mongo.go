package storeinfra

import (
	"context"
	"errors"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names.
const (
	PropertiesCollection      = "Properties"
	FavouritesCollection      = "Favourites"
	RecommendationsCollection = "Recommendations"
	UsersCollection           = "Users"
)

// MongoConfig configures the document store connection.
type MongoConfig struct {
	URL              string        `koanf:"url"`
	Database         string        `koanf:"database"`
	ConnectTimeout   time.Duration `koanf:"connect_timeout"`
	OperationTimeout time.Duration `koanf:"operation_timeout"`
	MaxPoolSize      uint64        `koanf:"max_pool_size"`
	EnsureIndexes    bool          `koanf:"ensure_indexes"`
}

// DefaultMongoConfig returns local development defaults.
func DefaultMongoConfig() MongoConfig {
	return MongoConfig{
		URL:              "mongodb://localhost:27017",
		Database:         "property_listing",
		ConnectTimeout:   10 * time.Second,
		OperationTimeout: 10 * time.Second,
		MaxPoolSize:      50,
		EnsureIndexes:    true,
	}
}

// Validate checks that a connection can be attempted.
func (c MongoConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.URL, validation.Required),
		validation.Field(&c.Database, validation.Required),
	)
}

// Mongo owns the client and hands out the collection backed stores.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
	logger zerolog.Logger
}

// Connect opens the client and pings the primary. Reconnection after a
// dropped connection is handled by the driver's pool.
func Connect(ctx context.Context, cfg MongoConfig, logger zerolog.Logger) (*Mongo, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts := options.Client().
		ApplyURI(cfg.URL).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetServerSelectionTimeout(cfg.ConnectTimeout)
	if cfg.OperationTimeout > 0 {
		opts.SetTimeout(cfg.OperationTimeout)
	}
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(cfg.MaxPoolSize)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	logger.Info().Str("database", cfg.Database).Msg("mongo connected")

	return &Mongo{
		client: client,
		db:     client.Database(cfg.Database),
		logger: logger,
	}, nil
}

// Properties returns the listing store.
func (m *Mongo) Properties() *MongoPropertyStore {
	return &MongoPropertyStore{coll: m.db.Collection(PropertiesCollection)}
}

// Favourites returns the favourite store.
func (m *Mongo) Favourites() *MongoFavouriteStore {
	return &MongoFavouriteStore{coll: m.db.Collection(FavouritesCollection)}
}

// Recommendations returns the recommendation store.
func (m *Mongo) Recommendations() *MongoRecommendationStore {
	return &MongoRecommendationStore{coll: m.db.Collection(RecommendationsCollection)}
}

// Users returns the account store.
func (m *Mongo) Users() *MongoUserStore {
	return &MongoUserStore{coll: m.db.Collection(UsersCollection)}
}

// Ping checks the connection.
func (m *Mongo) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, nil)
}

// Close disconnects the client.
func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// IndexPlan lists the indexes EnsureIndexes creates, by collection.
func IndexPlan() map[string][]mongo.IndexModel {
	single := func(field string) mongo.IndexModel {
		return mongo.IndexModel{Keys: bson.D{{Key: field, Value: 1}}}
	}

	return map[string][]mongo.IndexModel{
		PropertiesCollection: {
			{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
			single("type"),
			single("state"),
			single("city"),
			single("price"),
			single("areaSqFt"),
			single("bedrooms"),
			single("bathrooms"),
			single("furnished"),
			single("availableFrom"),
			single("listedBy"),
			single("rating"),
			single("isVerified"),
			single("listingType"),
			single("colorTheme"),
			single("createdBy"),
			{Keys: bson.D{{Key: "city", Value: 1}, {Key: "price", Value: 1}}},
			{Keys: bson.D{{Key: "type", Value: 1}, {Key: "listingType", Value: 1}}},
			{Keys: bson.D{{Key: "state", Value: 1}, {Key: "city", Value: 1}}},
			{Keys: bson.D{{Key: "title", Value: "text"}}},
		},
		UsersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		FavouritesCollection: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "propertyId", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		RecommendationsCollection: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "recommendedToUserId", Value: 1}, {Key: "featureId", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "recommendedToUserId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
	}
}

// EnsureIndexes creates every index in IndexPlan. Existing indexes with the
// same keys are left untouched by the server.
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	for name, models := range IndexPlan() {
		created, err := m.db.Collection(name).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("ensure indexes on %s: %w", name, err)
		}
		m.logger.Debug().Str("collection", name).Strs("indexes", created).Msg("indexes ensured")
	}
	return nil
}

func isDuplicate(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}

func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}
