package client

import (
	"net/url"
	"strconv"

	"portfolio-backend/internal/domain"
)

// FilterController round-trips review filter state through URL query
// parameters. Changing anything except the page resets the page to 1.
type FilterController struct {
	state    domain.CommentFilter
	onChange func(domain.CommentFilter)
}

func NewFilterController(onChange func(domain.CommentFilter)) *FilterController {
	fc := &FilterController{onChange: onChange}
	fc.state.Normalize()
	return fc
}

// ParseQuery decodes filter state from URL parameters. rating and package
// are repeatable; malformed values are ignored.
func ParseQuery(values url.Values) domain.CommentFilter {
	filter := domain.CommentFilter{
		Sort: values.Get("sort"),
	}

	for _, v := range values["rating"] {
		if rating, err := strconv.Atoi(v); err == nil {
			filter.Rating = append(filter.Rating, rating)
		}
	}
	filter.PackageType = append(filter.PackageType, values["package"]...)

	if page, err := strconv.Atoi(values.Get("page")); err == nil {
		filter.Page = page
	}

	filter.Normalize()
	return filter
}

// EncodeQuery is the inverse of ParseQuery.
func EncodeQuery(filter domain.CommentFilter) url.Values {
	filter.Normalize()
	values := url.Values{}

	for _, rating := range filter.Rating {
		values.Add("rating", strconv.Itoa(rating))
	}
	for _, pkg := range filter.PackageType {
		values.Add("package", pkg)
	}
	if filter.Sort != domain.DefaultReviewSort {
		values.Set("sort", filter.Sort)
	}
	if filter.Page > 1 {
		values.Set("page", strconv.Itoa(filter.Page))
	}

	return values
}

func (fc *FilterController) State() domain.CommentFilter {
	return fc.state
}

func (fc *FilterController) Query() url.Values {
	return EncodeQuery(fc.state)
}

// Load replaces the whole state, e.g. from the current URL on navigation.
func (fc *FilterController) Load(values url.Values) {
	fc.state = ParseQuery(values)
	fc.changed()
}

func (fc *FilterController) SetSort(sort string) {
	fc.state.Sort = sort
	fc.state.Page = 1
	fc.state.Normalize()
	fc.changed()
}

func (fc *FilterController) SetRating(rating []int) {
	fc.state.Rating = rating
	fc.state.Page = 1
	fc.changed()
}

func (fc *FilterController) SetPackages(packages []string) {
	fc.state.PackageType = packages
	fc.state.Page = 1
	fc.changed()
}

// SetPage is the one transition that keeps the rest of the state intact
// without resetting the page.
func (fc *FilterController) SetPage(page int) {
	fc.state.Page = page
	fc.state.Normalize()
	fc.changed()
}

func (fc *FilterController) changed() {
	if fc.onChange != nil {
		fc.onChange(fc.state)
	}
}
