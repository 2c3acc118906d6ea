package service

import (
	"context"
	"net/url"
	"testing"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-property-listing/model"
	"github.com/goliatone/go-property-listing/pkg/testsupport"
)

func TestProperties_Create(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	owner := newID()

	created, err := h.properties.Create(ctx, owner, testsupport.PropertyInput("PROP1001"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.PropertyID != "PROP1001" || !created.OwnedBy(owner) {
		t.Errorf("Create() = %+v", created)
	}
	if created.Amenities != "gym|pool" || created.Tags != "sea view|gated" {
		t.Errorf("lists stored as %q and %q", created.Amenities, created.Tags)
	}
	if created.IsVerified {
		t.Error("new listing is verified")
	}
	if created.ColorTheme != model.DefaultColorTheme {
		t.Errorf("ColorTheme = %v, want %v", created.ColorTheme, model.DefaultColorTheme)
	}
	if !created.CreatedAt.Equal(testNow) {
		t.Errorf("CreatedAt = %v, want %v", created.CreatedAt, testNow)
	}

	_, err = h.properties.Create(ctx, newID(), testsupport.PropertyInput("PROP1001"))
	assertStatus(t, err, goerrors.CodeConflict, "Property with this ID already exists")
}

func TestProperties_CreateValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.PropertyInput)
		field  string
	}{
		{
			name:   "missing id",
			mutate: func(in *model.PropertyInput) { in.ID = nil },
			field:  "id",
		},
		{
			name:   "rating above five",
			mutate: func(in *model.PropertyInput) { in.Rating = testsupport.Ptr(5.5) },
			field:  "rating",
		},
		{
			name:   "negative rating",
			mutate: func(in *model.PropertyInput) { in.Rating = testsupport.Ptr(-1.0) },
			field:  "rating",
		},
		{
			name:   "unknown type",
			mutate: func(in *model.PropertyInput) { in.Type = testsupport.Ptr("Castle") },
			field:  "type",
		},
		{
			name:   "zero price",
			mutate: func(in *model.PropertyInput) { in.Price = testsupport.Ptr(0.0) },
			field:  "price",
		},
		{
			name:   "bad date",
			mutate: func(in *model.PropertyInput) { in.AvailableFrom = testsupport.Ptr("next week") },
			field:  "availableFrom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			in := testsupport.PropertyInput("PROP1001")
			tt.mutate(&in)

			_, err := h.properties.Create(context.Background(), newID(), in)
			svcErr := assertStatus(t, err, goerrors.CodeBadRequest, "")
			if _, ok := svcErr.ValidationMap()[tt.field]; !ok {
				t.Errorf("validation errors = %v, want entry for %s", svcErr.ValidationMap(), tt.field)
			}

			if ok, _ := h.stores.Properties().Exists(context.Background(), "PROP1001"); ok {
				t.Error("invalid listing was stored")
			}
		})
	}
}

func TestProperties_RatingBoundsAccepted(t *testing.T) {
	for _, rating := range []float64{0, 5} {
		h := newHarness(t)
		in := testsupport.PropertyInput("PROP1001")
		in.Rating = testsupport.Ptr(rating)

		if _, err := h.properties.Create(context.Background(), newID(), in); err != nil {
			t.Errorf("Create() with rating %v error = %v", rating, err)
		}
	}
}

func TestProperties_Get(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	testsupport.SeedListings(t, h.stores.Properties(), newID(), 1)

	p, hit, err := h.properties.Get(ctx, "PROP1001")
	if err != nil || hit {
		t.Fatalf("Get() = %v, %v, want miss without error", hit, err)
	}
	if p.PropertyID != "PROP1001" {
		t.Errorf("Get() = %+v", p)
	}

	if _, hit, _ := h.properties.Get(ctx, "PROP1001"); !hit {
		t.Error("second Get() was not served from cache")
	}

	_, _, err = h.properties.Get(ctx, "PROP9999")
	assertStatus(t, err, goerrors.CodeNotFound, "Property not found")

	_, _, err = h.properties.Get(ctx, "  ")
	assertStatus(t, err, goerrors.CodeBadRequest, "Property ID is required")
}

func TestProperties_Search(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	testsupport.SeedListings(t, h.stores.Properties(), newID(), 3)
	testsupport.SeedListings(t, h.stores.Properties(), newID(), 1, func(p *model.Property) {
		p.PropertyID = "PROP9001"
		p.City = "Goa"
	})

	res, hit, err := h.properties.Search(ctx, url.Values{"cities": {"Pune"}})
	if err != nil || hit {
		t.Fatalf("Search() = %v, %v", hit, err)
	}
	if len(res.Properties) != 3 {
		t.Errorf("Search() returned %d listings, want 3", len(res.Properties))
	}

	if _, hit, _ := h.properties.Search(ctx, url.Values{"cities": {"Pune"}}); !hit {
		t.Error("repeated Search() was not served from cache")
	}
}

func TestProperties_UpdateRequiresOwner(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	owner := newID()
	testsupport.SeedListings(t, h.stores.Properties(), owner, 1)

	in := model.PropertyInput{Title: testsupport.Ptr("Hijacked")}
	_, err := h.properties.Update(ctx, newID(), "PROP1001", in)
	assertStatus(t, err, goerrors.CodeForbidden,
		"You are not authorized to update this property. Only the creator can update it.")

	stored, _ := h.stores.Properties().FindByID(ctx, "PROP1001")
	if stored.Title != "Listing PROP1001" {
		t.Errorf("listing changed by a non-owner: %q", stored.Title)
	}

	updated, err := h.properties.Update(ctx, owner, "PROP1001", model.PropertyInput{
		Title:     testsupport.Ptr("Renovated"),
		Amenities: testsupport.Ptr("lift,parking"),
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Title != "Renovated" || updated.Amenities != "lift|parking" {
		t.Errorf("Update() = %+v", updated)
	}
	if updated.City != "Pune" {
		t.Errorf("Update() touched an unsupplied field: City = %q", updated.City)
	}
	if updated.UpdatedAt == nil || !updated.UpdatedAt.Equal(testNow) {
		t.Errorf("UpdatedAt = %v, want %v", updated.UpdatedAt, testNow)
	}

	_, err = h.properties.Update(ctx, owner, "PROP1001", model.PropertyInput{Rating: testsupport.Ptr(9.0)})
	assertStatus(t, err, goerrors.CodeBadRequest, "")

	_, err = h.properties.Update(ctx, owner, "PROP404", in)
	assertStatus(t, err, goerrors.CodeNotFound, "Property not found")
}

func TestProperties_UpdateIsVisibleThroughCache(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	owner := newID()
	testsupport.SeedListings(t, h.stores.Properties(), owner, 1)

	if _, _, err := h.properties.Get(ctx, "PROP1001"); err != nil {
		t.Fatal(err)
	}
	if _, err := h.properties.Update(ctx, owner, "PROP1001", model.PropertyInput{Price: testsupport.Ptr(42.0)}); err != nil {
		t.Fatal(err)
	}

	p, hit, err := h.properties.Get(ctx, "PROP1001")
	if err != nil {
		t.Fatal(err)
	}
	if hit {
		t.Error("Get() after Update() was served from a stale entry")
	}
	if p.Price != 42 {
		t.Errorf("Price = %v, want 42", p.Price)
	}
}

func TestProperties_Delete(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	owner := newID()
	testsupport.SeedListings(t, h.stores.Properties(), owner, 1)

	err := h.properties.Delete(ctx, newID(), "PROP1001")
	assertStatus(t, err, goerrors.CodeForbidden,
		"You are not authorized to delete this property. Only the creator can delete it.")

	if err := h.properties.Delete(ctx, owner, "PROP1001"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	err = h.properties.Delete(ctx, owner, "PROP1001")
	assertStatus(t, err, goerrors.CodeNotFound, "")

	_, _, err = h.properties.Get(ctx, "PROP1001")
	assertStatus(t, err, goerrors.CodeNotFound, "")
}
