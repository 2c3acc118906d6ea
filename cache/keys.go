package cache

import (
	"net/url"
	"strings"
)

// Resource kinds used as key prefixes.
const (
	KindProperty           = "property"
	KindFilteredProperties = "properties:filtered"
	KindUserFavourites     = "favourites:user"
	KindFavourite          = "favourite"
	KindRecommendations    = "recommendations"
	KindUserSearch         = "search_users"
)

// Keys builds every cache key the listing service reads or invalidates.
type Keys struct {
	serializer KeySerializer
}

// NewKeys returns a key builder. A nil serializer uses the default one.
func NewKeys(serializer KeySerializer) Keys {
	if serializer == nil {
		serializer = NewDefaultKeySerializer()
	}
	return Keys{serializer: serializer}
}

// Property is the key of a single listing.
func (k Keys) Property(id string) string {
	return k.serializer.SerializeKey(KindProperty, id)
}

// FilteredProperties is the key of a search result for the given query.
func (k Keys) FilteredProperties(params url.Values) string {
	if params == nil {
		params = url.Values{}
	}
	return k.serializer.SerializeKey(KindFilteredProperties, params)
}

// FilteredPropertiesPattern matches every cached search result.
func (k Keys) FilteredPropertiesPattern() string {
	return Pattern(KindFilteredProperties + KeySeparator)
}

// UserFavourites is the key of a user's favourites list.
func (k Keys) UserFavourites(userID any) string {
	return k.serializer.SerializeKey(KindUserFavourites, userID)
}

// Favourite is the key of a single favourite scoped to its owner.
func (k Keys) Favourite(userID, favouriteID any) string {
	return k.serializer.SerializeKey(KindFavourite, userID, favouriteID)
}

// Recommendations is the key of a user's received and sent recommendations.
func (k Keys) Recommendations(userID any) string {
	return k.serializer.SerializeKey(KindRecommendations, userID)
}

// UserSearch is the key of a user lookup by email fragment. Terms are
// compared case insensitively.
func (k Keys) UserSearch(term string) string {
	return k.serializer.SerializeKey(KindUserSearch, strings.ToLower(term))
}

// UserSearchPattern matches every cached user lookup.
func (k Keys) UserSearchPattern() string {
	return Pattern(KindUserSearch + KeySeparator)
}

// Pattern turns a key prefix into a glob that matches everything below it.
func Pattern(prefix string) string {
	return prefix + "*"
}
