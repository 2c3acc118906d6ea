package testsupport

import (
	"context"
	"fmt"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/goliatone/go-property-listing/model"
	"github.com/goliatone/go-property-listing/store"
)

// Listing returns a valid listing with the given id. Mutators run in order.
func Listing(id string, owner primitive.ObjectID, mutate ...func(*model.Property)) model.Property {
	p := model.Property{
		PropertyID:    id,
		Title:         "Listing " + id,
		Type:          model.TypeApartment,
		Price:         100000,
		State:         "Maharashtra",
		City:          "Pune",
		AreaSqFt:      900,
		Bedrooms:      2,
		Bathrooms:     2,
		Amenities:     "gym|pool",
		Furnished:     model.FurnishedSemi,
		AvailableFrom: "2024-01-01",
		ListedBy:      model.ListedByOwner,
		Tags:          "family",
		ColorTheme:    model.DefaultColorTheme,
		ListingType:   model.ListingSale,
		CreatedBy:     owner,
	}
	for _, m := range mutate {
		m(&p)
	}
	return p
}

// SeedListings inserts n listings with ids PROP1001, PROP1002, ... and
// returns them.
func SeedListings(t *testing.T, s store.PropertyStore, owner primitive.ObjectID, n int, mutate ...func(*model.Property)) []model.Property {
	t.Helper()

	out := make([]model.Property, 0, n)
	for i := 0; i < n; i++ {
		p, err := s.Insert(context.Background(), Listing(fmt.Sprintf("PROP%d", 1001+i), owner, mutate...))
		if err != nil {
			t.Fatalf("failed to seed listing %d: %v", i, err)
		}
		out = append(out, p)
	}
	return out
}

// PropertyInput returns a create request that passes validation.
func PropertyInput(id string) model.PropertyInput {
	ext := model.ExternalID(id)
	return model.PropertyInput{
		ID:            &ext,
		Title:         Ptr("Sea facing villa"),
		Type:          Ptr(model.TypeVilla),
		Price:         Ptr(2500000.0),
		State:         Ptr("Goa"),
		City:          Ptr("Panaji"),
		AreaSqFt:      Ptr(1800.0),
		Bedrooms:      Ptr(3),
		Bathrooms:     Ptr(2),
		Amenities:     Ptr("gym,pool"),
		Furnished:     Ptr(model.FurnishedSemi),
		AvailableFrom: Ptr("2024-06-01"),
		ListedBy:      Ptr(model.ListedByOwner),
		Tags:          Ptr("sea view,gated"),
		ListingType:   Ptr(model.ListingSale),
	}
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }
