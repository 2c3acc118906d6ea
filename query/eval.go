package query

import (
	"slices"
	"sort"
	"strings"

	"github.com/goliatone/go-property-listing/model"
)

// Matches evaluates the filter against a single listing in process. It
// mirrors Match so that stores without an aggregation engine agree with the
// document store.
func (f Filter) Matches(p model.Property) bool {
	if f.AvailableFrom != "" && p.AvailableFrom < f.AvailableFrom {
		return false
	}
	if f.IsVerified != nil && p.IsVerified != *f.IsVerified {
		return false
	}
	if !member(f.PropertyTypes, p.Type) ||
		!member(f.FurnishedTypes, p.Furnished) ||
		!member(f.ColorThemes, p.ColorTheme) ||
		!member(f.ListedBy, p.ListedBy) ||
		!member(f.Cities, p.City) ||
		!member(f.States, p.State) {
		return false
	}
	if f.ListingType != "" && p.ListingType != f.ListingType {
		return false
	}
	if f.BathRooms != nil && p.Bathrooms != *f.BathRooms {
		return false
	}
	if f.BedRooms != nil && p.Bedrooms != *f.BedRooms {
		return false
	}
	if !containsAll(p.TagList(), f.Tags) || !containsAll(p.AmenityList(), f.Amenities) {
		return false
	}
	if f.Rating != nil && (p.Rating == nil || *p.Rating < *f.Rating) {
		return false
	}
	if !within(p.Price, f.PriceFrom, f.PriceTo) || !within(p.AreaSqFt, f.AreaSqFtFrom, f.AreaSqFtTo) {
		return false
	}
	if f.Title != "" && !strings.Contains(strings.ToLower(p.Title), strings.ToLower(f.Title)) {
		return false
	}
	return true
}

// SortProperties orders listings in place the way Sort does. Listings
// without a rating sort before rated ones in ascending order.
func (f Filter) SortProperties(props []model.Property) {
	asc := f.Ascending()

	var less func(a, b model.Property) bool
	switch f.SortBy {
	case SortPriceLowToHigh:
		less = func(a, b model.Property) bool { return a.Price < b.Price }
	case SortRating:
		less = func(a, b model.Property) bool { return ratingOf(a) < ratingOf(b) }
	case SortArea:
		less = func(a, b model.Property) bool { return a.AreaSqFt < b.AreaSqFt }
	default:
		less = func(a, b model.Property) bool { return a.AvailableFrom < b.AvailableFrom }
	}

	sort.SliceStable(props, func(i, j int) bool {
		if asc {
			return less(props[i], props[j])
		}
		return less(props[j], props[i])
	})
}

// Apply filters, sorts and pages props, producing the same Result the
// aggregation pipeline yields.
func (f Filter) Apply(props []model.Property) Result {
	matched := make([]model.Property, 0, len(props))
	for _, p := range props {
		if f.Matches(p) {
			matched = append(matched, p)
		}
	}
	f.SortProperties(matched)

	if !f.Paginated() {
		return NewResult(matched, 0)
	}

	total := len(matched)
	start := min(f.Skip(), total)
	end := min(start+PageSize, total)
	return NewResult(matched[start:end], MaxPages(total))
}

func member(set []string, value string) bool {
	return len(set) == 0 || slices.Contains(set, value)
}

func containsAll(have, want []string) bool {
	for _, w := range want {
		if !slices.Contains(have, w) {
			return false
		}
	}
	return true
}

func within(v float64, from, to *float64) bool {
	if from != nil && v < *from {
		return false
	}
	if to != nil && v > *to {
		return false
	}
	return true
}

func ratingOf(p model.Property) float64 {
	if p.Rating == nil {
		return -1
	}
	return *p.Rating
}
