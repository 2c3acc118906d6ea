package query

import (
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Derived fields added before matching on tags and amenities.
const (
	tagsField      = "tagsArray"
	amenitiesField = "amenitiesArray"
)

// Match builds the $match document. Every supplied filter is ANDed.
func (f Filter) Match() bson.D {
	var m bson.D
	in := func(field string, values []string) {
		if len(values) > 0 {
			m = append(m, bson.E{Key: field, Value: bson.D{{Key: "$in", Value: values}}})
		}
	}

	if f.AvailableFrom != "" {
		m = append(m, bson.E{Key: "availableFrom", Value: bson.D{{Key: "$gte", Value: f.AvailableFrom}}})
	}
	if f.IsVerified != nil {
		m = append(m, bson.E{Key: "isVerified", Value: bson.D{{Key: "$eq", Value: *f.IsVerified}}})
	}
	in("type", f.PropertyTypes)
	in("furnished", f.FurnishedTypes)
	in("colorTheme", f.ColorThemes)
	if f.ListingType != "" {
		m = append(m, bson.E{Key: "listingType", Value: bson.D{{Key: "$eq", Value: f.ListingType}}})
	}
	in("listedBy", f.ListedBy)
	in("city", f.Cities)
	if f.BathRooms != nil {
		m = append(m, bson.E{Key: "bathrooms", Value: bson.D{{Key: "$eq", Value: *f.BathRooms}}})
	}
	if f.BedRooms != nil {
		m = append(m, bson.E{Key: "bedrooms", Value: bson.D{{Key: "$eq", Value: *f.BedRooms}}})
	}
	if len(f.Tags) > 0 {
		m = append(m, bson.E{Key: tagsField, Value: bson.D{{Key: "$all", Value: f.Tags}}})
	}
	if len(f.Amenities) > 0 {
		m = append(m, bson.E{Key: amenitiesField, Value: bson.D{{Key: "$all", Value: f.Amenities}}})
	}
	if f.Rating != nil {
		m = append(m, bson.E{Key: "rating", Value: bson.D{{Key: "$gte", Value: *f.Rating}}})
	}
	in("state", f.States)
	if r := rangeDoc(f.PriceFrom, f.PriceTo); r != nil {
		m = append(m, bson.E{Key: "price", Value: r})
	}
	if r := rangeDoc(f.AreaSqFtFrom, f.AreaSqFtTo); r != nil {
		m = append(m, bson.E{Key: "areaSqFt", Value: r})
	}
	if f.Title != "" {
		m = append(m, bson.E{Key: "title", Value: primitive.Regex{Pattern: regexp.QuoteMeta(f.Title), Options: "i"}})
	}

	return m
}

// Sort builds the $sort document.
func (f Filter) Sort() bson.D {
	dir := -1
	if f.Ascending() {
		dir = 1
	}

	switch f.SortBy {
	case SortPriceLowToHigh:
		return bson.D{{Key: "price", Value: dir}}
	case SortRating:
		return bson.D{{Key: "rating", Value: dir}}
	case SortArea:
		return bson.D{{Key: "areaSqFt", Value: dir}}
	default:
		return bson.D{{Key: "availableFrom", Value: 1}}
	}
}

// Pipeline builds the full aggregation. The $facet and $project stages are
// only added when a page was requested, in which case the pipeline yields a
// single document with totalCount and paginatedProperties.
func (f Filter) Pipeline() mongo.Pipeline {
	var p mongo.Pipeline

	if len(f.Amenities) > 0 {
		p = append(p, splitStage(amenitiesField, "$amenities", "amenity"))
	}
	if len(f.Tags) > 0 {
		p = append(p, splitStage(tagsField, "$tags", "tag"))
	}
	if match := f.Match(); len(match) > 0 {
		p = append(p, bson.D{{Key: "$match", Value: match}})
	}
	p = append(p, bson.D{{Key: "$sort", Value: f.Sort()}})

	if f.Paginated() {
		p = append(p,
			bson.D{{Key: "$facet", Value: bson.D{
				{Key: "totalCount", Value: bson.A{bson.D{{Key: "$count", Value: "count"}}}},
				{Key: "paginatedProperties", Value: bson.A{
					bson.D{{Key: "$skip", Value: f.Skip()}},
					bson.D{{Key: "$limit", Value: PageSize}},
				}},
			}}},
			bson.D{{Key: "$project", Value: bson.D{
				{Key: "totalCount", Value: bson.D{{Key: "$arrayElemAt", Value: bson.A{"$totalCount.count", 0}}}},
				{Key: "paginatedProperties", Value: 1},
			}}},
		)
	}

	return p
}

// splitStage derives a trimmed array field from a '|' delimited string.
func splitStage(field, source, as string) bson.D {
	return bson.D{{Key: "$addFields", Value: bson.D{
		{Key: field, Value: bson.D{{Key: "$map", Value: bson.D{
			{Key: "input", Value: bson.D{{Key: "$split", Value: bson.A{source, "|"}}}},
			{Key: "as", Value: as},
			{Key: "in", Value: bson.D{{Key: "$trim", Value: bson.D{{Key: "input", Value: "$$" + as}}}}},
		}}}},
	}}}
}

func rangeDoc(from, to *float64) bson.D {
	var r bson.D
	if from != nil {
		r = append(r, bson.E{Key: "$gte", Value: *from})
	}
	if to != nil {
		r = append(r, bson.E{Key: "$lte", Value: *to})
	}
	return r
}
