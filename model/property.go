package model

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Property types.
const (
	TypeApartment = "Apartment"
	TypeVilla     = "Villa"
	TypeBungalow  = "Bungalow"
	TypePlot      = "Plot"
	TypeStudio    = "Studio"
)

// Furnishing levels.
const (
	FurnishedFull = "Furnished"
	FurnishedSemi = "Semi"
	Unfurnished   = "Unfurnished"
)

// Lister kinds.
const (
	ListedByOwner   = "Owner"
	ListedByAgent   = "Agent"
	ListedByBuilder = "Builder"
)

// Listing types.
const (
	ListingSale = "sale"
	ListingRent = "rent"
)

// DefaultColorTheme is applied when a listing is created without a theme.
const DefaultColorTheme = "#ffffff"

// DateLayout is the storage format of AvailableFrom. Dates in this layout
// sort lexically, which the search filters rely on.
const DateLayout = "2006-01-02"

// ListSeparator delimits the stored Amenities and Tags values.
const ListSeparator = "|"

var (
	PropertyTypes  = []any{TypeApartment, TypeVilla, TypeBungalow, TypePlot, TypeStudio}
	FurnishedTypes = []any{FurnishedFull, FurnishedSemi, Unfurnished}
	ListedByTypes  = []any{ListedByOwner, ListedByAgent, ListedByBuilder}
	ListingTypes   = []any{ListingSale, ListingRent}
)

// Property is a listing. PropertyID is the caller supplied identifier used in
// routes and cache keys; ID is the store's own identity.
type Property struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	PropertyID    string             `bson:"id" json:"id"`
	Title         string             `bson:"title" json:"title"`
	Type          string             `bson:"type" json:"type"`
	Price         float64            `bson:"price" json:"price"`
	State         string             `bson:"state" json:"state"`
	City          string             `bson:"city" json:"city"`
	AreaSqFt      float64            `bson:"areaSqFt" json:"areaSqFt"`
	Bedrooms      int                `bson:"bedrooms" json:"bedrooms"`
	Bathrooms     int                `bson:"bathrooms" json:"bathrooms"`
	Amenities     string             `bson:"amenities" json:"amenities"`
	Furnished     string             `bson:"furnished" json:"furnished"`
	AvailableFrom string             `bson:"availableFrom" json:"availableFrom"`
	ListedBy      string             `bson:"listedBy" json:"listedBy"`
	Tags          string             `bson:"tags" json:"tags"`
	ColorTheme    string             `bson:"colorTheme" json:"colorTheme"`
	Rating        *float64           `bson:"rating,omitempty" json:"rating,omitempty"`
	IsVerified    bool               `bson:"isVerified" json:"isVerified"`
	ListingType   string             `bson:"listingType" json:"listingType"`
	CreatedBy     primitive.ObjectID `bson:"createdBy" json:"createdBy"`
	CreatedAt     time.Time          `bson:"createdAt,omitempty" json:"createdAt"`
	UpdatedAt     *time.Time         `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// AmenityList returns the amenities as a trimmed slice.
func (p Property) AmenityList() []string {
	return SplitList(p.Amenities)
}

// TagList returns the tags as a trimmed slice.
func (p Property) TagList() []string {
	return SplitList(p.Tags)
}

// OwnedBy reports whether userID created the listing.
func (p Property) OwnedBy(userID primitive.ObjectID) bool {
	return !p.CreatedBy.IsZero() && p.CreatedBy == userID
}

// SplitList splits a stored '|' delimited value, trimming each element and
// dropping empty ones.
func SplitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ListSeparator)
	out := parts[:0]
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// JoinInputList converts a comma delimited request value into the stored
// '|' delimited form.
func JoinInputList(value string) string {
	return strings.ReplaceAll(value, ",", ListSeparator)
}

// NormalizeDate parses a date in one of the accepted layouts and returns it
// in DateLayout.
func NormalizeDate(value string) (string, error) {
	value = strings.TrimSpace(value)
	layouts := []string{DateLayout, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04:05.000Z"}

	var err error
	for _, layout := range layouts {
		var t time.Time
		if t, err = time.Parse(layout, value); err == nil {
			return t.Format(DateLayout), nil
		}
	}
	return "", err
}

// PropertyPatch is a normalised partial update. Nil fields are left alone.
type PropertyPatch struct {
	Title         *string
	Type          *string
	Price         *float64
	State         *string
	City          *string
	AreaSqFt      *float64
	Bedrooms      *int
	Bathrooms     *int
	Amenities     *string
	Furnished     *string
	AvailableFrom *string
	ListedBy      *string
	Tags          *string
	ColorTheme    *string
	Rating        *float64
	IsVerified    *bool
	ListingType   *string
	UpdatedAt     time.Time
}

// Fields renders the patch as a $set document.
func (p PropertyPatch) Fields() bson.D {
	var doc bson.D
	add := func(key string, set bool, value any) {
		if set {
			doc = append(doc, bson.E{Key: key, Value: value})
		}
	}

	add("title", p.Title != nil, deref(p.Title))
	add("type", p.Type != nil, deref(p.Type))
	add("price", p.Price != nil, deref(p.Price))
	add("state", p.State != nil, deref(p.State))
	add("city", p.City != nil, deref(p.City))
	add("areaSqFt", p.AreaSqFt != nil, deref(p.AreaSqFt))
	add("bedrooms", p.Bedrooms != nil, deref(p.Bedrooms))
	add("bathrooms", p.Bathrooms != nil, deref(p.Bathrooms))
	add("amenities", p.Amenities != nil, deref(p.Amenities))
	add("furnished", p.Furnished != nil, deref(p.Furnished))
	add("availableFrom", p.AvailableFrom != nil, deref(p.AvailableFrom))
	add("listedBy", p.ListedBy != nil, deref(p.ListedBy))
	add("tags", p.Tags != nil, deref(p.Tags))
	add("colorTheme", p.ColorTheme != nil, deref(p.ColorTheme))
	add("rating", p.Rating != nil, deref(p.Rating))
	add("isVerified", p.IsVerified != nil, deref(p.IsVerified))
	add("listingType", p.ListingType != nil, deref(p.ListingType))
	doc = append(doc, bson.E{Key: "updatedAt", Value: p.UpdatedAt})

	return doc
}

// Apply writes the patch onto prop.
func (p PropertyPatch) Apply(prop *Property) {
	assign(&prop.Title, p.Title)
	assign(&prop.Type, p.Type)
	assign(&prop.Price, p.Price)
	assign(&prop.State, p.State)
	assign(&prop.City, p.City)
	assign(&prop.AreaSqFt, p.AreaSqFt)
	assign(&prop.Bedrooms, p.Bedrooms)
	assign(&prop.Bathrooms, p.Bathrooms)
	assign(&prop.Amenities, p.Amenities)
	assign(&prop.Furnished, p.Furnished)
	assign(&prop.AvailableFrom, p.AvailableFrom)
	assign(&prop.ListedBy, p.ListedBy)
	assign(&prop.Tags, p.Tags)
	assign(&prop.ColorTheme, p.ColorTheme)
	assign(&prop.IsVerified, p.IsVerified)
	assign(&prop.ListingType, p.ListingType)
	if p.Rating != nil {
		rating := *p.Rating
		prop.Rating = &rating
	}
	updated := p.UpdatedAt
	prop.UpdatedAt = &updated
}

func deref[T any](v *T) any {
	if v == nil {
		return nil
	}
	return *v
}

func assign[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
