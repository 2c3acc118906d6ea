package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExternalID accepts either a JSON string or a JSON number.
type ExternalID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *ExternalID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ExternalID(strings.TrimSpace(s))
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return errors.New("id must be a string or a number")
	}
	*id = ExternalID(n.String())
	return nil
}

// PropertyInput is the request body for creating or updating a listing.
// Amenities and Tags arrive comma delimited.
type PropertyInput struct {
	ID            *ExternalID `json:"id"`
	Title         *string     `json:"title"`
	Type          *string     `json:"type"`
	Price         *float64    `json:"price"`
	State         *string     `json:"state"`
	City          *string     `json:"city"`
	AreaSqFt      *float64    `json:"areaSqFt"`
	Bedrooms      *int        `json:"bedrooms"`
	Bathrooms     *int        `json:"bathrooms"`
	Amenities     *string     `json:"amenities"`
	Furnished     *string     `json:"furnished"`
	AvailableFrom *string     `json:"availableFrom"`
	ListedBy      *string     `json:"listedBy"`
	Tags          *string     `json:"tags"`
	ColorTheme    *string     `json:"colorTheme"`
	Rating        *float64    `json:"rating"`
	IsVerified    *bool       `json:"isVerified"`
	ListingType   *string     `json:"listingType"`
}

// ValidateCreate checks that every required field is present and that all
// supplied values are in range.
func (in PropertyInput) ValidateCreate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.ID, validation.Required),
		validation.Field(&in.Title, validation.Required),
		validation.Field(&in.Type, validation.Required, validation.In(PropertyTypes...)),
		validation.Field(&in.Price, validation.NotNil, validation.By(positive)),
		validation.Field(&in.State, validation.Required),
		validation.Field(&in.City, validation.Required),
		validation.Field(&in.AreaSqFt, validation.NotNil, validation.By(positive)),
		validation.Field(&in.Bedrooms, validation.NotNil, validation.Min(0)),
		validation.Field(&in.Bathrooms, validation.NotNil, validation.Min(0)),
		validation.Field(&in.Furnished, validation.Required, validation.In(FurnishedTypes...)),
		validation.Field(&in.AvailableFrom, validation.Required, validation.By(date)),
		validation.Field(&in.ListedBy, validation.Required, validation.In(ListedByTypes...)),
		validation.Field(&in.Rating, validation.Min(0.0), validation.Max(5.0)),
		validation.Field(&in.ListingType, validation.Required, validation.In(ListingTypes...)),
	)
}

// ValidateUpdate checks only the fields that were supplied.
func (in PropertyInput) ValidateUpdate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.NilOrNotEmpty),
		validation.Field(&in.Type, validation.NilOrNotEmpty, validation.In(PropertyTypes...)),
		validation.Field(&in.Price, validation.By(positive)),
		validation.Field(&in.State, validation.NilOrNotEmpty),
		validation.Field(&in.City, validation.NilOrNotEmpty),
		validation.Field(&in.AreaSqFt, validation.By(positive)),
		validation.Field(&in.Bedrooms, validation.Min(0)),
		validation.Field(&in.Bathrooms, validation.Min(0)),
		validation.Field(&in.Furnished, validation.NilOrNotEmpty, validation.In(FurnishedTypes...)),
		validation.Field(&in.AvailableFrom, validation.NilOrNotEmpty, validation.By(date)),
		validation.Field(&in.ListedBy, validation.NilOrNotEmpty, validation.In(ListedByTypes...)),
		validation.Field(&in.Rating, validation.Min(0.0), validation.Max(5.0)),
		validation.Field(&in.ListingType, validation.NilOrNotEmpty, validation.In(ListingTypes...)),
	)
}

// ToProperty builds a new listing from a validated input. New listings are
// never verified.
func (in PropertyInput) ToProperty(createdBy primitive.ObjectID, now time.Time) Property {
	p := Property{
		PropertyID:  string(*in.ID),
		Title:       strings.TrimSpace(*in.Title),
		Type:        *in.Type,
		Price:       *in.Price,
		State:       strings.TrimSpace(*in.State),
		City:        strings.TrimSpace(*in.City),
		AreaSqFt:    *in.AreaSqFt,
		Bedrooms:    *in.Bedrooms,
		Bathrooms:   *in.Bathrooms,
		Furnished:   *in.Furnished,
		ListedBy:    *in.ListedBy,
		ColorTheme:  DefaultColorTheme,
		ListingType: *in.ListingType,
		CreatedBy:   createdBy,
		CreatedAt:   now,
	}

	p.AvailableFrom, _ = NormalizeDate(*in.AvailableFrom)
	if in.Amenities != nil {
		p.Amenities = JoinInputList(*in.Amenities)
	}
	if in.Tags != nil {
		p.Tags = JoinInputList(*in.Tags)
	}
	if in.ColorTheme != nil && *in.ColorTheme != "" {
		p.ColorTheme = *in.ColorTheme
	}
	if in.Rating != nil {
		rating := *in.Rating
		p.Rating = &rating
	}

	return p
}

// Patch builds the partial update for a validated input. The identifier and
// ownership fields are never part of an update.
func (in PropertyInput) Patch(now time.Time) PropertyPatch {
	patch := PropertyPatch{
		Title:       in.Title,
		Type:        in.Type,
		Price:       in.Price,
		State:       in.State,
		City:        in.City,
		AreaSqFt:    in.AreaSqFt,
		Bedrooms:    in.Bedrooms,
		Bathrooms:   in.Bathrooms,
		Furnished:   in.Furnished,
		ListedBy:    in.ListedBy,
		ColorTheme:  in.ColorTheme,
		Rating:      in.Rating,
		IsVerified:  in.IsVerified,
		ListingType: in.ListingType,
		UpdatedAt:   now,
	}

	if in.Amenities != nil {
		amenities := JoinInputList(*in.Amenities)
		patch.Amenities = &amenities
	}
	if in.Tags != nil {
		tags := JoinInputList(*in.Tags)
		patch.Tags = &tags
	}
	if in.AvailableFrom != nil {
		if d, err := NormalizeDate(*in.AvailableFrom); err == nil {
			patch.AvailableFrom = &d
		}
	}

	return patch
}

func positive(value any) error {
	v, ok := value.(*float64)
	if !ok || v == nil {
		return nil
	}
	if *v <= 0 {
		return errors.New("must be greater than 0")
	}
	return nil
}

func date(value any) error {
	v, ok := value.(*string)
	if !ok || v == nil || *v == "" {
		return nil
	}
	if _, err := NormalizeDate(*v); err != nil {
		return errors.New("must be a valid date (yyyy-mm-dd)")
	}
	return nil
}
