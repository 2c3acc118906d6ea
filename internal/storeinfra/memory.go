package storeinfra

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/goliatone/go-property-listing/model"
	"github.com/goliatone/go-property-listing/query"
	"github.com/goliatone/go-property-listing/store"
)

// Memory holds in-process stores sharing the same semantics as the document
// store. Search is evaluated with query.Filter.Apply.
type Memory struct {
	properties      *MemoryPropertyStore
	favourites      *MemoryFavouriteStore
	recommendations *MemoryRecommendationStore
	users           *MemoryUserStore
}

// NewMemory returns empty stores.
func NewMemory() *Memory {
	return &Memory{
		properties:      &MemoryPropertyStore{items: xsync.NewMapOf[string, model.Property]()},
		favourites:      &MemoryFavouriteStore{items: xsync.NewMapOf[primitive.ObjectID, model.Favourite]()},
		recommendations: &MemoryRecommendationStore{items: xsync.NewMapOf[primitive.ObjectID, model.Recommendation]()},
		users: &MemoryUserStore{
			items:   xsync.NewMapOf[primitive.ObjectID, model.User](),
			byEmail: xsync.NewMapOf[string, primitive.ObjectID](),
		},
	}
}

func (m *Memory) Properties() *MemoryPropertyStore           { return m.properties }
func (m *Memory) Favourites() *MemoryFavouriteStore           { return m.favourites }
func (m *Memory) Recommendations() *MemoryRecommendationStore { return m.recommendations }
func (m *Memory) Users() *MemoryUserStore                     { return m.users }

// MemoryPropertyStore implements store.PropertyStore.
type MemoryPropertyStore struct {
	items *xsync.MapOf[string, model.Property]
}

var _ store.PropertyStore = (*MemoryPropertyStore)(nil)

// Filter implements store.PropertyStore.
func (s *MemoryPropertyStore) Filter(ctx context.Context, f query.Filter) (query.Result, error) {
	if err := ctx.Err(); err != nil {
		return query.Result{}, err
	}
	props := make([]model.Property, 0, s.items.Size())
	s.items.Range(func(_ string, p model.Property) bool {
		props = append(props, p)
		return true
	})
	// Range order is random; settle ties deterministically before the
	// stable sort in Apply.
	sort.Slice(props, func(i, j int) bool { return props[i].PropertyID < props[j].PropertyID })
	return f.Apply(props), nil
}

// FindByID implements store.PropertyStore.
func (s *MemoryPropertyStore) FindByID(_ context.Context, id string) (model.Property, error) {
	p, ok := s.items.Load(id)
	if !ok {
		return model.Property{}, store.ErrNotFound
	}
	return p, nil
}

// Exists implements store.PropertyStore.
func (s *MemoryPropertyStore) Exists(_ context.Context, id string) (bool, error) {
	_, ok := s.items.Load(id)
	return ok, nil
}

// Insert implements store.PropertyStore.
func (s *MemoryPropertyStore) Insert(_ context.Context, p model.Property) (model.Property, error) {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if _, loaded := s.items.LoadOrStore(p.PropertyID, p); loaded {
		return model.Property{}, store.ErrDuplicate
	}
	return p, nil
}

// Update implements store.PropertyStore.
func (s *MemoryPropertyStore) Update(_ context.Context, id string, patch model.PropertyPatch) (model.Property, error) {
	updated, ok := s.items.Compute(id, func(old model.Property, loaded bool) (model.Property, bool) {
		if !loaded {
			return old, true
		}
		patch.Apply(&old)
		return old, false
	})
	if !ok {
		return model.Property{}, store.ErrNotFound
	}
	return updated, nil
}

// Delete implements store.PropertyStore.
func (s *MemoryPropertyStore) Delete(_ context.Context, id string) error {
	if _, ok := s.items.LoadAndDelete(id); !ok {
		return store.ErrNotFound
	}
	return nil
}

// MemoryFavouriteStore implements store.FavouriteStore.
type MemoryFavouriteStore struct {
	items *xsync.MapOf[primitive.ObjectID, model.Favourite]
}

var _ store.FavouriteStore = (*MemoryFavouriteStore)(nil)

// ListByUser implements store.FavouriteStore.
func (s *MemoryFavouriteStore) ListByUser(_ context.Context, userID primitive.ObjectID) ([]model.Favourite, error) {
	favs := []model.Favourite{}
	s.items.Range(func(_ primitive.ObjectID, f model.Favourite) bool {
		if f.UserID == userID {
			favs = append(favs, f)
		}
		return true
	})
	sort.SliceStable(favs, func(i, j int) bool { return favs[i].CreatedAt.After(favs[j].CreatedAt) })
	return favs, nil
}

// Get implements store.FavouriteStore.
func (s *MemoryFavouriteStore) Get(_ context.Context, userID, id primitive.ObjectID) (model.Favourite, error) {
	f, ok := s.items.Load(id)
	if !ok || f.UserID != userID {
		return model.Favourite{}, store.ErrNotFound
	}
	return f, nil
}

// Exists implements store.FavouriteStore.
func (s *MemoryFavouriteStore) Exists(_ context.Context, userID primitive.ObjectID, propertyID string) (bool, error) {
	found := false
	s.items.Range(func(_ primitive.ObjectID, f model.Favourite) bool {
		found = f.UserID == userID && f.PropertyID == propertyID
		return !found
	})
	return found, nil
}

// Insert implements store.FavouriteStore.
func (s *MemoryFavouriteStore) Insert(_ context.Context, f model.Favourite) (model.Favourite, error) {
	if f.ID.IsZero() {
		f.ID = primitive.NewObjectID()
	}
	if _, loaded := s.items.LoadOrStore(f.ID, f); loaded {
		return model.Favourite{}, store.ErrDuplicate
	}
	return f, nil
}

// UpdateProperty implements store.FavouriteStore.
func (s *MemoryFavouriteStore) UpdateProperty(_ context.Context, userID, id primitive.ObjectID, propertyID string, now time.Time) (model.Favourite, error) {
	updated, ok := s.items.Compute(id, func(old model.Favourite, loaded bool) (model.Favourite, bool) {
		if !loaded || old.UserID != userID {
			return old, !loaded
		}
		old.PropertyID = propertyID
		old.UpdatedAt = &now
		return old, false
	})
	if !ok || updated.UserID != userID {
		return model.Favourite{}, store.ErrNotFound
	}
	return updated, nil
}

// Delete implements store.FavouriteStore.
func (s *MemoryFavouriteStore) Delete(_ context.Context, userID, id primitive.ObjectID) error {
	f, ok := s.items.Load(id)
	if !ok || f.UserID != userID {
		return store.ErrNotFound
	}
	s.items.Delete(id)
	return nil
}

// MemoryRecommendationStore implements store.RecommendationStore.
type MemoryRecommendationStore struct {
	items *xsync.MapOf[primitive.ObjectID, model.Recommendation]
}

var _ store.RecommendationStore = (*MemoryRecommendationStore)(nil)

// Exists implements store.RecommendationStore.
func (s *MemoryRecommendationStore) Exists(_ context.Context, from, to primitive.ObjectID, featureID string) (bool, error) {
	found := false
	s.items.Range(func(_ primitive.ObjectID, r model.Recommendation) bool {
		found = r.UserID == from && r.RecommendedToUserID == to && r.FeatureID == featureID
		return !found
	})
	return found, nil
}

// Insert implements store.RecommendationStore.
func (s *MemoryRecommendationStore) Insert(_ context.Context, r model.Recommendation) (model.Recommendation, error) {
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	if _, loaded := s.items.LoadOrStore(r.ID, r); loaded {
		return model.Recommendation{}, store.ErrDuplicate
	}
	return r, nil
}

// ListForUser implements store.RecommendationStore.
func (s *MemoryRecommendationStore) ListForUser(_ context.Context, userID primitive.ObjectID) ([]model.Recommendation, error) {
	var recs []model.Recommendation
	s.items.Range(func(_ primitive.ObjectID, r model.Recommendation) bool {
		if r.UserID == userID || r.RecommendedToUserID == userID {
			recs = append(recs, r)
		}
		return true
	})
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].CreatedAt.After(recs[j].CreatedAt) })
	return recs, nil
}

// MemoryUserStore implements store.UserStore with a unique email index.
type MemoryUserStore struct {
	items   *xsync.MapOf[primitive.ObjectID, model.User]
	byEmail *xsync.MapOf[string, primitive.ObjectID]
}

var _ store.UserStore = (*MemoryUserStore)(nil)

// FindByEmail implements store.UserStore.
func (s *MemoryUserStore) FindByEmail(ctx context.Context, email string) (model.User, error) {
	id, ok := s.byEmail.Load(model.NormalizeEmail(email))
	if !ok {
		return model.User{}, store.ErrNotFound
	}
	return s.FindByID(ctx, id)
}

// FindByID implements store.UserStore.
func (s *MemoryUserStore) FindByID(_ context.Context, id primitive.ObjectID) (model.User, error) {
	u, ok := s.items.Load(id)
	if !ok {
		return model.User{}, store.ErrNotFound
	}
	return u, nil
}

// Insert implements store.UserStore.
func (s *MemoryUserStore) Insert(_ context.Context, u model.User) (model.User, error) {
	u.Email = model.NormalizeEmail(u.Email)
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if _, loaded := s.byEmail.LoadOrStore(u.Email, u.ID); loaded {
		return model.User{}, store.ErrDuplicate
	}
	s.items.Store(u.ID, u)
	return u, nil
}

// SearchByEmail implements store.UserStore.
func (s *MemoryUserStore) SearchByEmail(_ context.Context, term string, limit int) ([]model.UserSummary, error) {
	term = strings.ToLower(term)
	users := []model.UserSummary{}
	s.items.Range(func(_ primitive.ObjectID, u model.User) bool {
		if strings.Contains(u.Email, term) {
			users = append(users, u.Summary())
		}
		return true
	})
	sort.Slice(users, func(i, j int) bool { return users[i].Email < users[j].Email })
	if limit > 0 && len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}
