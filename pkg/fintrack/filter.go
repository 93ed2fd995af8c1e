package fintrack

import (
	"net/url"
	"strconv"
	"time"

	"github.com/harishram/fintrack-backend/internal/domain/timerange"
)

// Filter defaults.
const (
	AllCategories   = "All Categories"
	DefaultPageSize = 5
)

// FilterState holds the current filter, sort, and pagination selection.
// Changing any field other than the page resets the page to 1.
type FilterState struct {
	Category  string
	Search    string
	Type      string
	MinAmount *float64
	MaxAmount *float64
	Starred   bool
	StartDate *time.Time
	EndDate   *time.Time
	SortField string
	SortOrder string
	Page      int
	PageSize  int

	now func() time.Time
}

// Patch is a partial filter update. Nil fields are left unchanged.
type Patch struct {
	Category  *string
	Search    *string
	Type      *string
	MinAmount **float64
	MaxAmount **float64
	Starred   *bool
	StartDate **time.Time
	EndDate   **time.Time
	SortField *string
	SortOrder *string
	Page      *int
	PageSize  *int
}

// NewFilterState creates a filter state with default values.
func NewFilterState() *FilterState {
	return &FilterState{
		Category:  AllCategories,
		SortField: "date",
		SortOrder: "desc",
		Page:      1,
		PageSize:  DefaultPageSize,
		now:       time.Now,
	}
}

// ApplyPartial merges the defined fields of the patch into the state. Any
// change to a non-page field resets the page to 1.
func (f *FilterState) ApplyPartial(patch Patch) {
	changed := false

	if patch.Category != nil && *patch.Category != f.Category {
		f.Category = *patch.Category
		changed = true
	}
	if patch.Search != nil && *patch.Search != f.Search {
		f.Search = *patch.Search
		changed = true
	}
	if patch.Type != nil && *patch.Type != f.Type {
		f.Type = *patch.Type
		changed = true
	}
	if patch.MinAmount != nil {
		f.MinAmount = *patch.MinAmount
		changed = true
	}
	if patch.MaxAmount != nil {
		f.MaxAmount = *patch.MaxAmount
		changed = true
	}
	if patch.Starred != nil && *patch.Starred != f.Starred {
		f.Starred = *patch.Starred
		changed = true
	}
	if patch.StartDate != nil {
		f.StartDate = *patch.StartDate
		changed = true
	}
	if patch.EndDate != nil {
		f.EndDate = *patch.EndDate
		changed = true
	}
	if patch.SortField != nil && *patch.SortField != f.SortField {
		f.SortField = *patch.SortField
		changed = true
	}
	if patch.SortOrder != nil && *patch.SortOrder != f.SortOrder {
		f.SortOrder = *patch.SortOrder
		changed = true
	}
	if patch.PageSize != nil && *patch.PageSize != f.PageSize {
		f.PageSize = *patch.PageSize
		changed = true
	}

	if changed {
		f.Page = 1
	} else if patch.Page != nil {
		f.Page = *patch.Page
	}
}

// SetTimeRange expands a time-range shortcut into concrete start and end
// dates. "Custom range" and unknown shortcuts clear the bounds so they can be
// set explicitly.
func (f *FilterState) SetTimeRange(shortcut string) {
	start, end, ok := timerange.Expand(shortcut, f.now())
	patch := Patch{}
	if ok {
		patch.StartDate = datePtr(&start)
		patch.EndDate = datePtr(&end)
	} else {
		patch.StartDate = datePtr(nil)
		patch.EndDate = datePtr(nil)
	}
	f.ApplyPartial(patch)
}

// Params derives the query parameters for the listing endpoint. Default or
// empty selections are omitted.
func (f *FilterState) Params() url.Values {
	params := url.Values{}
	params.Set("page", strconv.Itoa(f.Page))
	params.Set("limit", strconv.Itoa(f.PageSize))

	if f.Category != "" && f.Category != AllCategories {
		params.Set("category", f.Category)
	}
	if f.Search != "" {
		params.Set("search", f.Search)
	}
	// The starred pseudo-type maps onto the starred flag.
	switch f.Type {
	case "starred":
		params.Set("starred", "true")
	case "":
	default:
		params.Set("type", f.Type)
	}
	if f.Starred {
		params.Set("starred", "true")
	}
	if f.MinAmount != nil {
		params.Set("minAmount", strconv.FormatFloat(*f.MinAmount, 'f', -1, 64))
	}
	if f.MaxAmount != nil {
		params.Set("maxAmount", strconv.FormatFloat(*f.MaxAmount, 'f', -1, 64))
	}
	if f.StartDate != nil && f.EndDate != nil {
		params.Set("startDate", f.StartDate.Format("2006-01-02"))
		params.Set("endDate", f.EndDate.Format("2006-01-02"))
	}
	if f.SortField != "" {
		params.Set("sortField", f.SortField)
	}
	if f.SortOrder != "" {
		params.Set("sortOrder", f.SortOrder)
	}

	return params
}

// Pointer helpers for building patches.

// String wraps a string for use in a Patch.
func String(s string) *string { return &s }

// Int wraps an int for use in a Patch.
func Int(i int) *int { return &i }

// Bool wraps a bool for use in a Patch.
func Bool(b bool) *bool { return &b }

// Float wraps an amount bound for use in a Patch.
func Float(v float64) **float64 {
	p := &v
	return &p
}

// NoFloat clears an amount bound in a Patch.
func NoFloat() **float64 {
	var p *float64
	return &p
}

func datePtr(t *time.Time) **time.Time { return &t }

// Date wraps a date bound for use in a Patch.
func Date(t time.Time) **time.Time {
	p := &t
	return &p
}

// NoDate clears a date bound in a Patch.
func NoDate() **time.Time {
	var p *time.Time
	return &p
}
