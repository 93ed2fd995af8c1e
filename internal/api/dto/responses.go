package dto

import (
	"time"

	"github.com/harishram/fintrack-backend/internal/infrastructure/storage"
)

// TransactionResponse represents a transaction in API responses.
type TransactionResponse struct {
	ID                string              `json:"id"`
	Title             string              `json:"title"`
	Amount            float64             `json:"amount"`
	Category          string              `json:"category"`
	Date              string              `json:"date"`
	Time              string              `json:"time"`
	Note              string              `json:"note"`
	Starred           bool                `json:"starred"`
	Split             bool                `json:"split"`
	SplitTransactions []SplitItemResponse `json:"splitTransactions"`
	CreatedAt         string              `json:"createdAt"`
	UpdatedAt         string              `json:"updatedAt"`
}

// SplitItemResponse represents one split sub-allocation.
type SplitItemResponse struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

// ListData is the payload of a successful listing.
type ListData struct {
	Transactions []TransactionResponse `json:"transactions"`
	CurrentPage  int                   `json:"currentPage"`
	TotalPages   int                   `json:"totalPages"`
	TotalItems   int                   `json:"totalItems"`
}

// ListResponse is the envelope for list endpoints.
type ListResponse struct {
	Success bool      `json:"success"`
	Data    *ListData `json:"data,omitempty"`
	Error   string    `json:"error,omitempty"`
}

// CategoriesResponse carries the most-used category names.
type CategoriesResponse struct {
	Success    bool     `json:"success"`
	Categories []string `json:"categories"`
}

// UpdateResponse wraps the record returned by the generic update.
type UpdateResponse struct {
	Success bool                `json:"success"`
	Data    TransactionResponse `json:"data"`
}

// MessageResponse carries a bare message, used by 404 responses and the
// delete confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the generic failure envelope.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// BadRequestResponse carries a validation message with a 400 status.
type BadRequestResponse struct {
	Error string `json:"error"`
}

// HealthResponse is returned by the health check endpoint.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// NewHealthResponse creates a health response with current timestamp.
func NewHealthResponse() HealthResponse {
	return HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// ToTransactionResponse converts a stored transaction to its wire form.
func ToTransactionResponse(txn *storage.Transaction) TransactionResponse {
	response := TransactionResponse{
		ID:                txn.ID,
		Title:             txn.Title,
		Amount:            txn.Amount,
		Category:          txn.Category,
		Date:              txn.Date.Format("2006-01-02"),
		Time:              txn.Time,
		Note:              txn.Note,
		Starred:           txn.Starred,
		Split:             txn.Split,
		SplitTransactions: make([]SplitItemResponse, 0, len(txn.SplitItems)),
		CreatedAt:         txn.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:         txn.UpdatedAt.UTC().Format(time.RFC3339),
	}

	for _, item := range txn.SplitItems {
		response.SplitTransactions = append(response.SplitTransactions, SplitItemResponse{
			Category: item.Category,
			Amount:   item.Amount,
		})
	}

	return response
}
