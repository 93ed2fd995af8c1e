package dto

// CreateTransactionRequest is the body of POST /api/transactions. Amount is
// signed: clients negate expenses after validating positivity on their side.
type CreateTransactionRequest struct {
	Title    string   `json:"title"`
	Amount   *float64 `json:"amount"`
	Category string   `json:"category"`
	Date     string   `json:"date,omitempty"` // 2006-01-02; defaults to today
	Time     string   `json:"time,omitempty"`
	Note     string   `json:"note,omitempty"`
}

// UpdateTransactionRequest is the body of PUT /api/transactions/{id}.
// Absent fields are preserved.
type UpdateTransactionRequest struct {
	Title    *string  `json:"title,omitempty"`
	Amount   *float64 `json:"amount,omitempty"`
	Category *string  `json:"category,omitempty"`
	Date     *string  `json:"date,omitempty"`
	Time     *string  `json:"time,omitempty"`
	Note     *string  `json:"note,omitempty"`
}

// NoteRequest is the body of PATCH /api/transactions/{id}/note.
type NoteRequest struct {
	Note string `json:"note"`
}

// SplitItemRequest is one sub-allocation in a split request.
type SplitItemRequest struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

// SplitRequest is the body of PATCH /api/transactions/{id}/split. The list
// replaces any previous split items wholesale.
type SplitRequest struct {
	SplitTransactions []SplitItemRequest `json:"splitTransactions"`
}
