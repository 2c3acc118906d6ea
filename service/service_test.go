package service

import (
	"context"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/goliatone/go-property-listing/cache"
	"github.com/goliatone/go-property-listing/internal/auth"
	"github.com/goliatone/go-property-listing/internal/storeinfra"
	"github.com/goliatone/go-property-listing/model"
	"github.com/goliatone/go-property-listing/pkg/testsupport"
	"github.com/goliatone/go-property-listing/repositorycache"
)

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type harness struct {
	stores          *storeinfra.Memory
	properties      *Properties
	favourites      *Favourites
	recommendations *Recommendations
	auth            *Auth
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	stores := storeinfra.NewMemory()
	c := repositorycache.NewCache(testsupport.NewMemoryCache(t), cache.DefaultConfig())

	users := repositorycache.NewCachedUserDirectory(stores.Users(), c)
	tokens, err := auth.NewTokens(auth.Config{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     auth.DefaultAccessTTL,
		RefreshTTL:    auth.DefaultRefreshTTL,
	}, auth.WithClock(func() time.Time { return testNow }))
	if err != nil {
		t.Fatalf("NewTokens() error = %v", err)
	}

	clock := WithClock(func() time.Time { return testNow })
	return &harness{
		stores:     stores,
		properties: NewProperties(repositorycache.NewCachedPropertyRepository(stores.Properties(), c), clock),
		favourites: NewFavourites(repositorycache.NewCachedFavouriteRepository(stores.Favourites(), c), clock),
		recommendations: NewRecommendations(
			repositorycache.NewCachedRecommendationRepository(stores.Recommendations(), stores.Users(), c),
			users,
			clock,
		),
		auth: NewAuth(users, tokens, clock),
	}
}

func (h *harness) user(t *testing.T, name, email string) model.User {
	t.Helper()
	u, err := h.stores.Users().Insert(context.Background(), model.User{Name: name, Email: email})
	if err != nil {
		t.Fatalf("insert user: %v", err)
	}
	return u
}

// assertStatus checks err is a service error with the given code and
// message. An empty message is not compared.
func assertStatus(t *testing.T, err error, code int, message string) *goerrors.Error {
	t.Helper()

	if err == nil {
		t.Fatalf("expected %d error, got nil", code)
	}
	var svcErr *goerrors.Error
	if !goerrors.As(err, &svcErr) {
		t.Fatalf("expected *goerrors.Error, got %T: %v", err, err)
	}
	if svcErr.Code != code {
		t.Errorf("code = %d, want %d (%s)", svcErr.Code, code, svcErr.Message)
	}
	if message != "" && svcErr.Message != message {
		t.Errorf("message = %q, want %q", svcErr.Message, message)
	}
	return svcErr
}

func newID() primitive.ObjectID { return primitive.NewObjectID() }
