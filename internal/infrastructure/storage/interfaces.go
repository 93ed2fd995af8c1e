package storage

import (
	"errors"

	"github.com/harishram/fintrack-backend/internal/domain/query"
)

// ErrNotFound is returned when no transaction matches the given id.
var ErrNotFound = errors.New("transaction not found")

// Repository defines the complete storage interface. It allows swapping
// implementations (SQLite, in-memory) and makes testing with mocks
// straightforward.
type Repository interface {
	TransactionRepository
	Close() error
}

// TransactionRepository handles transaction record operations.
type TransactionRepository interface {
	// ListTransactions returns one page of transactions matching the spec,
	// plus the total match count. Fails with query.ErrInvalidRange before
	// touching the store when the spec's amount bounds are inverted.
	ListTransactions(spec query.Spec) (*TransactionPage, error)

	// GetTransaction retrieves a transaction by id. Returns ErrNotFound
	// when no record matches.
	GetTransaction(id string) (*Transaction, error)

	// CreateTransaction inserts a new record, assigning its id and the
	// created/updated timestamps, and returns the stored record.
	CreateTransaction(t *Transaction) (*Transaction, error)

	// UpdateTransaction applies a partial update and returns the updated
	// record. Returns ErrNotFound when no record matches.
	UpdateTransaction(id string, patch TransactionPatch) (*Transaction, error)

	// DeleteTransaction removes a record permanently. Returns ErrNotFound
	// when no record matches.
	DeleteTransaction(id string) error

	// TopCategories returns the most-used categories by descending
	// frequency, excluding the given reserved names.
	TopCategories(limit int, exclude []string) ([]CategoryCount, error)
}
