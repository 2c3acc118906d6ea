package query

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/goliatone/go-property-listing/model"
)

// PageSize is the number of listings per page.
const PageSize = 10

// Sort keys accepted in the sortBy parameter.
const (
	SortPriceLowToHigh = "priceLowToHigh"
	SortRating         = "rating"
	SortArea           = "area"
)

// Filter is the typed form of a search request. Empty slices and nil
// pointers mean the filter was not supplied.
type Filter struct {
	PropertyTypes  []string
	States         []string
	Cities         []string
	ListedBy       []string
	FurnishedTypes []string
	ColorThemes    []string

	ListingType string
	BathRooms   *int
	BedRooms    *int
	Rating      *float64
	Title       string
	IsVerified  *bool

	Tags      []string
	Amenities []string

	AvailableFrom string

	PriceFrom    *float64
	PriceTo      *float64
	AreaSqFtFrom *float64
	AreaSqFtTo   *float64

	SortBy    string
	SortOrder string

	// Page is zero when pagination was not requested.
	Page int
}

// ParseFilter converts raw query parameters into a Filter. It never fails:
// values that do not parse are dropped.
func ParseFilter(params url.Values) Filter {
	f := Filter{
		PropertyTypes:  list(params, "propertyTypes"),
		States:         list(params, "states"),
		Cities:         list(params, "cities"),
		ListedBy:       list(params, "listedBy"),
		FurnishedTypes: list(params, "furnishedTypes"),
		ColorThemes:    list(params, "colorThemes"),
		ListingType:    strings.TrimSpace(params.Get("listingType")),
		BathRooms:      intParam(params, "bathRooms"),
		BedRooms:       intParam(params, "bedRooms"),
		Rating:         floatParam(params, "rating"),
		Title:          strings.TrimSpace(params.Get("title")),
		IsVerified:     boolParam(params, "isVerified"),
		Tags:           list(params, "tags"),
		Amenities:      list(params, "amenities"),
		PriceFrom:      floatParam(params, "priceFrom"),
		PriceTo:        floatParam(params, "priceTo"),
		AreaSqFtFrom:   floatParam(params, "areaSqFtFrom"),
		AreaSqFtTo:     floatParam(params, "areaSqFtTo"),
		SortBy:         strings.TrimSpace(params.Get("sortBy")),
		SortOrder:      strings.ToLower(strings.TrimSpace(params.Get("sortOrder"))),
	}

	if raw := params.Get("availableFrom"); raw != "" {
		if d, err := model.NormalizeDate(raw); err == nil {
			f.AvailableFrom = d
		}
	}

	if raw, ok := pageParam(params); ok {
		f.Page = 1
		if n, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil && n > 1 {
			f.Page = n
		}
	}

	return f
}

// Paginated reports whether a page was requested.
func (f Filter) Paginated() bool {
	return f.Page > 0
}

// Skip is the number of matching listings before the requested page.
func (f Filter) Skip() int {
	if f.Page <= 1 {
		return 0
	}
	return (f.Page - 1) * PageSize
}

// Ascending reports the effective direction of the sort.
func (f Filter) Ascending() bool {
	switch f.SortBy {
	case SortPriceLowToHigh, SortRating, SortArea:
		return f.SortOrder == "asc"
	default:
		return true
	}
}

// MaxPages is the number of pages needed for total listings.
func MaxPages(total int) int {
	if total <= 0 {
		return 0
	}
	return (total + PageSize - 1) / PageSize
}

func pageParam(params url.Values) (string, bool) {
	for _, name := range []string{"Page", "page"} {
		if v := params.Get(name); v != "" {
			return v, true
		}
	}
	return "", false
}

func list(params url.Values, name string) []string {
	raw := params.Get(name)
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func intParam(params url.Values, name string) *int {
	raw := strings.TrimSpace(params.Get(name))
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &n
}

func floatParam(params url.Values, name string) *float64 {
	raw := strings.TrimSpace(params.Get(name))
	if raw == "" {
		return nil
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &n
}

func boolParam(params url.Values, name string) *bool {
	switch strings.ToLower(strings.TrimSpace(params.Get(name))) {
	case "true":
		v := true
		return &v
	case "false":
		v := false
		return &v
	default:
		return nil
	}
}
