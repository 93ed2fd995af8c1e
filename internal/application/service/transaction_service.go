// Package service implements the transaction operations: validated creation
// and mutation, filtered listing, and category aggregation.
package service

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/harishram/fintrack-backend/internal/domain/query"
	"github.com/harishram/fintrack-backend/internal/infrastructure/storage"
)

// Reserved categories excluded from the most-used aggregation.
var reservedCategories = []string{"Income", "Expense"}

// topCategoryLimit bounds the most-used category aggregation.
const topCategoryLimit = 5

// TransactionService owns validation and orchestration of transaction
// mutations over the repository.
type TransactionService struct {
	repo   storage.Repository
	logger *slog.Logger
	now    func() time.Time
}

// NewTransactionService creates a service backed by the given repository.
func NewTransactionService(repo storage.Repository, logger *slog.Logger) *TransactionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TransactionService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// SetClock overrides the service clock. Used by tests to pin "today".
func (s *TransactionService) SetClock(now func() time.Time) {
	s.now = now
}

// Page is a filtered transaction listing with pagination metadata.
type Page struct {
	Transactions []*storage.Transaction
	CurrentPage  int
	TotalPages   int
	TotalItems   int
}

// List returns one page of transactions matching the spec. It fails with
// query.ErrInvalidRange before any store call when the amount bounds are
// inverted.
func (s *TransactionService) List(spec query.Spec) (*Page, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	result, err := s.repo.ListTransactions(spec)
	if err != nil {
		return nil, s.storeErr("list transactions", err)
	}

	page := spec.Page
	if page < 1 {
		page = 1
	}
	pageSize := spec.PageSize
	if pageSize < 1 {
		pageSize = query.DefaultPageSize
	}

	return &Page{
		Transactions: result.Transactions,
		CurrentPage:  page,
		TotalPages:   int(math.Ceil(float64(result.TotalItems) / float64(pageSize))),
		TotalItems:   result.TotalItems,
	}, nil
}

// Get fetches a single transaction by id.
func (s *TransactionService) Get(id string) (*storage.Transaction, error) {
	txn, err := s.repo.GetTransaction(id)
	if err != nil {
		return nil, s.storeErr("get transaction", err)
	}
	return txn, nil
}

// CreateInput carries the fields accepted by Create. Amount is signed: the
// caller applies the expense sign after validating positivity on its side.
type CreateInput struct {
	Title    string
	Amount   float64
	Category string
	Date     time.Time // zero value defaults to today
	Time     string    // defaults to the creation time
	Note     string
}

// Create validates the input and inserts a new transaction. New records are
// never starred or split.
func (s *TransactionService) Create(in CreateInput) (*storage.Transaction, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, validationf("title is required")
	}
	if in.Amount == 0 {
		return nil, validationf("amount must be a nonzero number")
	}
	if strings.TrimSpace(in.Category) == "" {
		return nil, validationf("category is required")
	}

	now := s.now()
	date := in.Date
	if date.IsZero() {
		date = now
	}
	if startOfDay(date).After(startOfDay(now)) {
		return nil, validationf("date cannot be in the future")
	}

	display := in.Time
	if display == "" {
		display = now.Format("03:04 PM")
	}

	created, err := s.repo.CreateTransaction(&storage.Transaction{
		Title:      title,
		Amount:     in.Amount,
		Category:   in.Category,
		Date:       date,
		Time:       display,
		Note:       in.Note,
		Starred:    false,
		Split:      false,
		SplitItems: []storage.SplitItem{},
	})
	if err != nil {
		return nil, s.storeErr("create transaction", err)
	}

	s.logger.Info("transaction created", "id", created.ID, "category", created.Category)
	return created, nil
}

// UpdateInput carries the fields accepted by the generic partial update.
// Nil fields are preserved.
type UpdateInput struct {
	Title    *string
	Amount   *float64
	Category *string
	Date     *time.Time
	Time     *string
	Note     *string
}

// Update merges the given fields into an existing transaction.
func (s *TransactionService) Update(id string, in UpdateInput) (*storage.Transaction, error) {
	if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
		return nil, validationf("title cannot be empty")
	}
	if in.Amount != nil && *in.Amount == 0 {
		return nil, validationf("amount must be a nonzero number")
	}
	if in.Category != nil && strings.TrimSpace(*in.Category) == "" {
		return nil, validationf("category cannot be empty")
	}
	if in.Date != nil && startOfDay(*in.Date).After(startOfDay(s.now())) {
		return nil, validationf("date cannot be in the future")
	}

	updated, err := s.repo.UpdateTransaction(id, storage.TransactionPatch{
		Title:    in.Title,
		Amount:   in.Amount,
		Category: in.Category,
		Date:     in.Date,
		Time:     in.Time,
		Note:     in.Note,
	})
	if err != nil {
		return nil, s.storeErr("update transaction", err)
	}
	return updated, nil
}

// Delete removes a transaction permanently.
func (s *TransactionService) Delete(id string) error {
	if err := s.repo.DeleteTransaction(id); err != nil {
		return s.storeErr("delete transaction", err)
	}
	s.logger.Info("transaction deleted", "id", id)
	return nil
}

// ToggleStar flips the starred flag and returns the updated record.
func (s *TransactionService) ToggleStar(id string) (*storage.Transaction, error) {
	txn, err := s.repo.GetTransaction(id)
	if err != nil {
		return nil, s.storeErr("get transaction", err)
	}

	starred := !txn.Starred
	updated, err := s.repo.UpdateTransaction(id, storage.TransactionPatch{Starred: &starred})
	if err != nil {
		return nil, s.storeErr("toggle star", err)
	}
	return updated, nil
}

// SetNote replaces the note and returns the updated record.
func (s *TransactionService) SetNote(id, note string) (*storage.Transaction, error) {
	updated, err := s.repo.UpdateTransaction(id, storage.TransactionPatch{Note: &note})
	if err != nil {
		return nil, s.storeErr("set note", err)
	}
	return updated, nil
}

// ReplaceSplit replaces the split items wholesale and marks the transaction
// as split. Item sums are not required to equal the parent amount.
func (s *TransactionService) ReplaceSplit(id string, items []storage.SplitItem) (*storage.Transaction, error) {
	for i, item := range items {
		if strings.TrimSpace(item.Category) == "" {
			return nil, validationf("split item %d: category is required", i+1)
		}
		if item.Amount == 0 {
			return nil, validationf("split item %d: amount must be a nonzero number", i+1)
		}
	}

	split := true
	if items == nil {
		items = []storage.SplitItem{}
	}
	updated, err := s.repo.UpdateTransaction(id, storage.TransactionPatch{
		Split:      &split,
		SplitItems: &items,
	})
	if err != nil {
		return nil, s.storeErr("replace split", err)
	}
	return updated, nil
}

// TopCategories returns the five most-used categories, excluding the
// reserved Income/Expense defaults.
func (s *TransactionService) TopCategories() ([]string, error) {
	counts, err := s.repo.TopCategories(topCategoryLimit, reservedCategories)
	if err != nil {
		return nil, s.storeErr("aggregate categories", err)
	}

	categories := make([]string, 0, len(counts))
	for _, cc := range counts {
		categories = append(categories, cc.Category)
	}
	return categories, nil
}

// storeErr maps repository failures into the service error taxonomy.
func (s *TransactionService) storeErr(op string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, query.ErrInvalidRange) {
		return err
	}
	s.logger.Error("store call failed", "op", op, "error", err)
	return fmt.Errorf("%w: %s: %v", ErrStoreUnavailable, op, err)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
