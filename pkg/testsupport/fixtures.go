package testsupport

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/goliatone/go-property-listing/model"
)

// FixturePath returns the path of name under the calling package's testdata
// directory.
func FixturePath(name string) string {
	return filepath.Join("testdata", name)
}

// Fixture reads testdata/name.
func Fixture(t *testing.T, name string) []byte {
	t.Helper()

	data, err := os.ReadFile(FixturePath(name))
	if err != nil {
		t.Fatalf("read fixture %s: %v", name, err)
	}
	return data
}

// FixtureJSON decodes testdata/name into dest. Unknown fields fail the test
// so fixtures cannot drift from the types they describe.
func FixtureJSON(t *testing.T, name string, dest any) {
	t.Helper()

	dec := json.NewDecoder(bytes.NewReader(Fixture(t, name)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		t.Fatalf("decode fixture %s: %v", name, err)
	}
}

// ListingFixture loads a stored listing from testdata/name and assigns it to
// owner.
func ListingFixture(t *testing.T, name string, owner primitive.ObjectID) model.Property {
	t.Helper()

	var p model.Property
	FixtureJSON(t, name, &p)
	p.CreatedBy = owner
	return p
}
