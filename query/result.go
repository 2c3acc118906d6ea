package query

import "github.com/goliatone/go-property-listing/model"

// Result is the search response. MaxPaginatedPages is zero for unpaginated
// searches and for searches with no matches.
type Result struct {
	Properties        []model.Property `json:"properties"`
	MaxPaginatedPages int              `json:"maxPaginatedPages"`
}

// NewResult wraps properties, never returning a nil slice.
func NewResult(properties []model.Property, maxPages int) Result {
	if properties == nil {
		properties = []model.Property{}
	}
	return Result{Properties: properties, MaxPaginatedPages: maxPages}
}
