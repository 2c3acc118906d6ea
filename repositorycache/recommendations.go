package repositorycache

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/goliatone/go-property-listing/model"
	"github.com/goliatone/go-property-listing/store"
)

// CachedRecommendationRepository caches each user's received and sent
// recommendations.
type CachedRecommendationRepository struct {
	base  store.RecommendationStore
	users store.UserStore
	cache *Cache
}

// NewCachedRecommendationRepository decorates base with c. users resolves
// the counterparty of each recommendation.
func NewCachedRecommendationRepository(base store.RecommendationStore, users store.UserStore, c *Cache) *CachedRecommendationRepository {
	return &CachedRecommendationRepository{base: base, users: users, cache: c}
}

// List returns userID's recommendations split by direction.
func (r *CachedRecommendationRepository) List(ctx context.Context, userID primitive.ObjectID) (model.RecommendationList, bool, error) {
	key := r.cache.keys.Recommendations(userID)
	return GetOrFetch(ctx, r.cache, ResourceRecommendations, key, r.cache.recommendationsTTL, func(ctx context.Context) (model.RecommendationList, error) {
		return r.build(ctx, userID)
	})
}

// Exists reports whether the exact recommendation was already made.
func (r *CachedRecommendationRepository) Exists(ctx context.Context, from, to primitive.ObjectID, featureID string) (bool, error) {
	return r.base.Exists(ctx, from, to, featureID)
}

// Create stores rec and drops the lists of both participants.
func (r *CachedRecommendationRepository) Create(ctx context.Context, rec model.Recommendation) (model.Recommendation, error) {
	created, err := r.base.Insert(ctx, rec)
	if err != nil {
		return created, err
	}
	r.cache.Invalidate(ctx,
		Key(r.cache.keys.Recommendations(created.UserID)),
		Key(r.cache.keys.Recommendations(created.RecommendedToUserID)),
	)
	return created, nil
}

func (r *CachedRecommendationRepository) build(ctx context.Context, userID primitive.ObjectID) (model.RecommendationList, error) {
	recs, err := r.base.ListForUser(ctx, userID)
	if err != nil {
		return model.RecommendationList{}, err
	}

	list := model.RecommendationList{
		Received: []model.RecommendationEntry{},
		Sent:     []model.RecommendationEntry{},
	}
	summaries := map[primitive.ObjectID]*model.UserSummary{}

	for _, rec := range recs {
		entry := model.RecommendationEntry{
			ID:        rec.ID,
			FeatureID: rec.FeatureID,
			CreatedAt: rec.CreatedAt,
			Status:    rec.Status,
		}

		if rec.RecommendedToUserID == userID {
			if entry.RecommendedBy, err = r.summary(ctx, summaries, rec.UserID); err != nil {
				return model.RecommendationList{}, err
			}
			entry.Type = model.DirectionReceived
			list.Received = append(list.Received, entry)
			continue
		}

		if entry.RecommendedTo, err = r.summary(ctx, summaries, rec.RecommendedToUserID); err != nil {
			return model.RecommendationList{}, err
		}
		entry.Type = model.DirectionSent
		list.Sent = append(list.Sent, entry)
	}

	list.TotalReceived = len(list.Received)
	list.TotalSent = len(list.Sent)
	return list, nil
}

// summary resolves a participant once per build. Deleted accounts render as
// nil.
func (r *CachedRecommendationRepository) summary(ctx context.Context, seen map[primitive.ObjectID]*model.UserSummary, id primitive.ObjectID) (*model.UserSummary, error) {
	if s, ok := seen[id]; ok {
		return s, nil
	}

	u, err := r.users.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		seen[id] = nil
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	s := u.Summary()
	seen[id] = &s
	return &s, nil
}
