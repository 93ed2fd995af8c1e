// Package query translates a normalized filter/sort/page specification into
// a store predicate, a sort key, and a limit/offset pair.
package query

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// AllCategories is the sentinel category meaning "no category filter".
const AllCategories = "All Categories"

// DefaultPageSize is used when the caller does not specify a page size.
const DefaultPageSize = 5

// Transaction type filter values. Any other value applies no type clause.
const (
	TypeIncome  = "income"
	TypeExpense = "expense"
)

// Supported sort fields.
const (
	SortByDate     = "date"
	SortByAmount   = "amount"
	SortByTitle    = "title"
	SortByCategory = "category"
)

// Sort orders.
const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// ErrInvalidRange is returned when minAmount exceeds maxAmount. The caller
// must not issue a store call in that case.
var ErrInvalidRange = errors.New("minAmount cannot be greater than maxAmount")

// Spec is a normalized filter/sort/pagination specification.
// Optional numeric and date bounds are pointers to distinguish "not set"
// from zero values.
type Spec struct {
	Category   string   // exact match; AllCategories or empty means no filter
	Categories []string // multi-category filter (the /filter endpoint); empty means no filter
	Search     string   // case-insensitive substring match on title or note
	Type       string   // TypeIncome, TypeExpense, or anything else for no clause
	MinAmount  *float64 // inclusive lower bound
	MaxAmount  *float64 // inclusive upper bound
	Starred    bool     // true restricts to starred transactions
	StartDate  *time.Time
	EndDate    *time.Time
	SortField  string // defaults to date
	SortOrder  string // defaults to desc
	Page       int    // 1-based; defaults to 1
	PageSize   int    // defaults to DefaultPageSize
}

// Validate checks the spec for inconsistencies that must fail the request
// before any store call is issued.
func (s Spec) Validate() error {
	if s.MinAmount != nil && s.MaxAmount != nil && *s.MinAmount > *s.MaxAmount {
		return ErrInvalidRange
	}
	return nil
}

// Query is a composed store query: an AND-combined predicate with bound
// arguments, an ORDER BY expression, and a limit/offset window.
type Query struct {
	Where   string // empty when no filters apply
	Args    []any
	OrderBy string
	Limit   int
	Offset  int
}

// Build composes a Query from the spec. All optional clauses are
// AND-combined. The type filter and the explicit amount bounds compose by
// intersection: when both are present, both clauses apply.
func Build(s Spec) (Query, error) {
	if err := s.Validate(); err != nil {
		return Query{}, err
	}

	var clauses []string
	var args []any

	if len(s.Categories) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(s.Categories)), ", ")
		clauses = append(clauses, "category IN ("+placeholders+")")
		for _, c := range s.Categories {
			args = append(args, c)
		}
	} else if s.Category != "" && s.Category != AllCategories {
		clauses = append(clauses, "category = ?")
		args = append(args, s.Category)
	}

	if s.Search != "" {
		clauses = append(clauses, "(LOWER(title) LIKE '%' || LOWER(?) || '%' OR LOWER(note) LIKE '%' || LOWER(?) || '%')")
		args = append(args, s.Search, s.Search)
	}

	switch s.Type {
	case TypeIncome:
		clauses = append(clauses, "amount > 0")
	case TypeExpense:
		clauses = append(clauses, "amount < 0")
	}

	if s.MinAmount != nil {
		clauses = append(clauses, "amount >= ?")
		args = append(args, *s.MinAmount)
	}
	if s.MaxAmount != nil {
		clauses = append(clauses, "amount <= ?")
		args = append(args, *s.MaxAmount)
	}

	if s.Starred {
		clauses = append(clauses, "starred = 1")
	}

	// Date bounds apply only when both ends are present.
	if s.StartDate != nil && s.EndDate != nil {
		clauses = append(clauses, "date >= ? AND date <= ?")
		args = append(args, s.StartDate.Format("2006-01-02"), s.EndDate.Format("2006-01-02"))
	}

	page := s.Page
	if page < 1 {
		page = 1
	}
	pageSize := s.PageSize
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}

	q := Query{
		Args:    args,
		OrderBy: orderBy(s.SortField, s.SortOrder),
		Limit:   pageSize,
		Offset:  (page - 1) * pageSize,
	}
	if len(clauses) > 0 {
		q.Where = strings.Join(clauses, " AND ")
	}
	return q, nil
}

// orderBy maps a sort field and order to an ORDER BY expression. Fields
// outside the whitelist fall back to the default date sort so user input
// never reaches the SQL text. Title sorting is case-insensitive.
func orderBy(field, order string) string {
	dir := "DESC"
	if order == OrderAsc {
		dir = "ASC"
	}

	var col string
	switch field {
	case SortByAmount:
		col = "amount"
	case SortByTitle:
		col = "title COLLATE NOCASE"
	case SortByCategory:
		col = "category"
	case SortByDate, "":
		col = "date"
	default:
		col = "date"
	}

	return fmt.Sprintf("%s %s, created_at DESC", col, dir)
}
