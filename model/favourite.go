package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Favourite marks a listing a user wants to keep track of. PropertyID refers
// to Property.PropertyID.
type Favourite struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID     primitive.ObjectID `bson:"userId" json:"userId"`
	PropertyID string             `bson:"propertyId" json:"propertyId"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  *time.Time         `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// FavouriteList is a user's favourites, newest first.
type FavouriteList struct {
	Count      int         `json:"count"`
	Favourites []Favourite `json:"favourites"`
}

// NewFavouriteList wraps items, never returning a nil slice.
func NewFavouriteList(items []Favourite) FavouriteList {
	if items == nil {
		items = []Favourite{}
	}
	return FavouriteList{Count: len(items), Favourites: items}
}
