package storage

import "time"

// SplitItem is a sub-allocation of a transaction's amount to a category.
type SplitItem struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

// Transaction is one financial record. The sign of Amount encodes direction:
// positive is income, negative is expense. Date is a calendar date; Time is a
// display-only short time string.
type Transaction struct {
	ID         string
	Title      string
	Amount     float64
	Category   string
	Date       time.Time
	Time       string
	Note       string
	Starred    bool
	Split      bool
	SplitItems []SplitItem
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TransactionPatch describes a partial update. Nil fields are left untouched.
type TransactionPatch struct {
	Title      *string
	Amount     *float64
	Category   *string
	Date       *time.Time
	Time       *string
	Note       *string
	Starred    *bool
	Split      *bool
	SplitItems *[]SplitItem
}

// TransactionPage is one page of a filtered listing together with the total
// number of matching records.
type TransactionPage struct {
	Transactions []*Transaction
	TotalItems   int
}

// CategoryCount is a category with its usage frequency.
type CategoryCount struct {
	Category string
	Count    int
}
