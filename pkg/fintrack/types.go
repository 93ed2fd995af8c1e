// Package fintrack is the Go client for the fintrack API. It provides a
// typed HTTP client, a filter state manager that derives request parameters,
// and an optimistic mutation coordinator with delete-undo support.
package fintrack

// Transaction is a transaction record as returned by the API.
type Transaction struct {
	ID                string      `json:"id"`
	Title             string      `json:"title"`
	Amount            float64     `json:"amount"`
	Category          string      `json:"category"`
	Date              string      `json:"date"`
	Time              string      `json:"time"`
	Note              string      `json:"note"`
	Starred           bool        `json:"starred"`
	Split             bool        `json:"split"`
	SplitTransactions []SplitItem `json:"splitTransactions"`
	CreatedAt         string      `json:"createdAt"`
	UpdatedAt         string      `json:"updatedAt"`
}

// SplitItem is one sub-allocation of a split transaction.
type SplitItem struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

// ListResult is one page of transactions with pagination metadata.
type ListResult struct {
	Transactions []Transaction
	CurrentPage  int
	TotalPages   int
	TotalItems   int
}

// CreateRequest holds the fields for creating a transaction.
type CreateRequest struct {
	Title    string  `json:"title"`
	Amount   float64 `json:"amount"`
	Category string  `json:"category"`
	Date     string  `json:"date,omitempty"`
	Time     string  `json:"time,omitempty"`
	Note     string  `json:"note,omitempty"`
}

// UpdateRequest holds the fields for a partial update. Nil fields are left
// unchanged.
type UpdateRequest struct {
	Title    *string  `json:"title,omitempty"`
	Amount   *float64 `json:"amount,omitempty"`
	Category *string  `json:"category,omitempty"`
	Date     *string  `json:"date,omitempty"`
	Time     *string  `json:"time,omitempty"`
	Note     *string  `json:"note,omitempty"`
}

// DefaultCategories are the category options every client starts with; the
// server's most-used list is merged on top of these.
var DefaultCategories = []string{"All Categories", "Income", "Expense"}
