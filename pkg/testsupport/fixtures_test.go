package testsupport

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/goliatone/go-property-listing/internal/storeinfra"
	"github.com/goliatone/go-property-listing/model"
)

func TestFixture(t *testing.T) {
	t.Chdir(t.TempDir())
	if err := os.Mkdir("testdata", 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join("testdata", "raw.txt"), []byte("fixture content"), 0o644); err != nil {
		t.Fatal(err)
	}

	if got := Fixture(t, "raw.txt"); string(got) != "fixture content" {
		t.Errorf("Fixture() = %q, want %q", got, "fixture content")
	}
}

func TestListingFixture(t *testing.T) {
	owner := primitive.NewObjectID()
	p := ListingFixture(t, "listing.json", owner)

	if p.PropertyID != "PROP2001" {
		t.Errorf("PropertyID = %v, want PROP2001", p.PropertyID)
	}
	if got := p.AmenityList(); len(got) != 3 || got[1] != "garden" {
		t.Errorf("AmenityList() = %v", got)
	}
	if p.Rating == nil || *p.Rating != 4.5 {
		t.Errorf("Rating = %v, want 4.5", p.Rating)
	}
	if !p.OwnedBy(owner) {
		t.Errorf("CreatedBy = %v, want %v", p.CreatedBy, owner)
	}
}

func TestFixturePath(t *testing.T) {
	if got, want := FixturePath("listing.json"), filepath.Join("testdata", "listing.json"); got != want {
		t.Errorf("FixturePath() = %v, want %v", got, want)
	}
}

func TestPropertyInput_IsValid(t *testing.T) {
	if err := PropertyInput("PROP1001").ValidateCreate(); err != nil {
		t.Errorf("ValidateCreate() error = %v", err)
	}
}

func TestSeedListings(t *testing.T) {
	s := storeinfra.NewMemory().Properties()
	owner := primitive.NewObjectID()

	seeded := SeedListings(t, s, owner, 3, func(p *model.Property) { p.City = "Goa" })
	if len(seeded) != 3 || seeded[2].PropertyID != "PROP1003" {
		t.Fatalf("SeedListings() = %+v", seeded)
	}

	got, err := s.FindByID(context.Background(), "PROP1002")
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if got.City != "Goa" || !got.OwnedBy(owner) {
		t.Errorf("seeded listing = %+v", got)
	}
}

func TestNewRedis(t *testing.T) {
	ctx := context.Background()
	mr, client := NewRedis(t)

	if err := client.Set(ctx, "property:PROP1001", "{}", time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if !mr.Exists("property:PROP1001") {
		t.Error("key not written to the server")
	}
}
