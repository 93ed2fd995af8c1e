package storage

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/harishram/fintrack-backend/internal/domain/query"
)

// MockRepository is an in-memory implementation of Repository for testing.
// It applies the same filter, sort, and pagination semantics as the SQLite
// implementation, making handler and service tests fast and isolated.
type MockRepository struct {
	transactions map[string]*Transaction
	order        []string // insertion order, used to synthesize created_at ties
	nextSeq      int

	// Hooks for test assertions
	ListCalled   bool
	CreateCalled bool
	UpdateCalled bool
	DeleteCalled bool
	DeletedIDs   []string

	// Error injection for testing error paths
	ListErr   error
	GetErr    error
	CreateErr error
	UpdateErr error
	DeleteErr error
}

// Compile-time check that MockRepository implements Repository
var _ Repository = (*MockRepository)(nil)

// NewMockRepository creates a new mock repository for testing.
func NewMockRepository() *MockRepository {
	return &MockRepository{
		transactions: make(map[string]*Transaction),
	}
}

// Close does nothing for mock.
func (m *MockRepository) Close() error {
	return nil
}

// AddTransaction seeds a record directly, bypassing create-side defaults.
// A missing id or timestamps are filled in.
func (m *MockRepository) AddTransaction(t *Transaction) *Transaction {
	copied := *t
	m.nextSeq++
	if copied.ID == "" {
		copied.ID = fmt.Sprintf("txn-%d", m.nextSeq)
	}
	if copied.CreatedAt.IsZero() {
		copied.CreatedAt = time.Now().UTC().Add(time.Duration(m.nextSeq) * time.Millisecond)
	}
	if copied.UpdatedAt.IsZero() {
		copied.UpdatedAt = copied.CreatedAt
	}
	if copied.SplitItems == nil {
		copied.SplitItems = []SplitItem{}
	}
	m.transactions[copied.ID] = &copied
	m.order = append(m.order, copied.ID)
	return &copied
}

// ListTransactions filters, sorts, and paginates the in-memory records.
func (m *MockRepository) ListTransactions(spec query.Spec) (*TransactionPage, error) {
	m.ListCalled = true
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	matched := make([]*Transaction, 0)
	for _, id := range m.order {
		t, ok := m.transactions[id]
		if !ok {
			continue
		}
		if matches(spec, t) {
			matched = append(matched, t)
		}
	}

	sortTransactions(matched, spec.SortField, spec.SortOrder)

	total := len(matched)
	page := spec.Page
	if page < 1 {
		page = 1
	}
	pageSize := spec.PageSize
	if pageSize < 1 {
		pageSize = query.DefaultPageSize
	}

	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	pageItems := make([]*Transaction, 0, end-start)
	for _, t := range matched[start:end] {
		copied := *t
		pageItems = append(pageItems, &copied)
	}

	return &TransactionPage{Transactions: pageItems, TotalItems: total}, nil
}

// GetTransaction retrieves a record by id.
func (m *MockRepository) GetTransaction(id string) (*Transaction, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	t, ok := m.transactions[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *t
	return &copied, nil
}

// CreateTransaction inserts a record, assigning id and timestamps.
func (m *MockRepository) CreateTransaction(t *Transaction) (*Transaction, error) {
	m.CreateCalled = true
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	return m.AddTransaction(t), nil
}

// UpdateTransaction applies a partial update.
func (m *MockRepository) UpdateTransaction(id string, patch TransactionPatch) (*Transaction, error) {
	m.UpdateCalled = true
	if m.UpdateErr != nil {
		return nil, m.UpdateErr
	}
	t, ok := m.transactions[id]
	if !ok {
		return nil, ErrNotFound
	}

	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Amount != nil {
		t.Amount = *patch.Amount
	}
	if patch.Category != nil {
		t.Category = *patch.Category
	}
	if patch.Date != nil {
		t.Date = *patch.Date
	}
	if patch.Time != nil {
		t.Time = *patch.Time
	}
	if patch.Note != nil {
		t.Note = *patch.Note
	}
	if patch.Starred != nil {
		t.Starred = *patch.Starred
	}
	if patch.Split != nil {
		t.Split = *patch.Split
	}
	if patch.SplitItems != nil {
		t.SplitItems = append([]SplitItem{}, (*patch.SplitItems)...)
	}
	t.UpdatedAt = time.Now().UTC()

	copied := *t
	return &copied, nil
}

// DeleteTransaction removes a record.
func (m *MockRepository) DeleteTransaction(id string) error {
	m.DeleteCalled = true
	m.DeletedIDs = append(m.DeletedIDs, id)
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	if _, ok := m.transactions[id]; !ok {
		return ErrNotFound
	}
	delete(m.transactions, id)
	return nil
}

// TopCategories counts category usage, excluding reserved names.
func (m *MockRepository) TopCategories(limit int, exclude []string) ([]CategoryCount, error) {
	excluded := make(map[string]bool, len(exclude))
	for _, name := range exclude {
		excluded[name] = true
	}

	counts := make(map[string]int)
	for _, t := range m.transactions {
		if !excluded[t.Category] {
			counts[t.Category]++
		}
	}

	result := make([]CategoryCount, 0, len(counts))
	for category, count := range counts {
		result = append(result, CategoryCount{Category: category, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Category < result[j].Category
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// matches reports whether a transaction satisfies every clause of the spec.
func matches(spec query.Spec, t *Transaction) bool {
	if len(spec.Categories) > 0 {
		found := false
		for _, c := range spec.Categories {
			if t.Category == c {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	} else if spec.Category != "" && spec.Category != query.AllCategories {
		if t.Category != spec.Category {
			return false
		}
	}

	if spec.Search != "" {
		needle := strings.ToLower(spec.Search)
		if !strings.Contains(strings.ToLower(t.Title), needle) &&
			!strings.Contains(strings.ToLower(t.Note), needle) {
			return false
		}
	}

	switch spec.Type {
	case query.TypeIncome:
		if t.Amount <= 0 {
			return false
		}
	case query.TypeExpense:
		if t.Amount >= 0 {
			return false
		}
	}

	if spec.MinAmount != nil && t.Amount < *spec.MinAmount {
		return false
	}
	if spec.MaxAmount != nil && t.Amount > *spec.MaxAmount {
		return false
	}

	if spec.Starred && !t.Starred {
		return false
	}

	if spec.StartDate != nil && spec.EndDate != nil {
		day := t.Date.Format("2006-01-02")
		if day < spec.StartDate.Format("2006-01-02") || day > spec.EndDate.Format("2006-01-02") {
			return false
		}
	}

	return true
}

// sortTransactions orders records by the requested field, newest-created
// first on ties, mirroring the SQL ORDER BY.
func sortTransactions(items []*Transaction, field, order string) {
	desc := order != query.OrderAsc

	less := func(a, b *Transaction) int {
		switch field {
		case query.SortByAmount:
			switch {
			case a.Amount < b.Amount:
				return -1
			case a.Amount > b.Amount:
				return 1
			}
			return 0
		case query.SortByTitle:
			return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		case query.SortByCategory:
			return strings.Compare(a.Category, b.Category)
		default:
			return strings.Compare(a.Date.Format("2006-01-02"), b.Date.Format("2006-01-02"))
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		cmp := less(items[i], items[j])
		if cmp == 0 {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		if desc {
			return cmp > 0
		}
		return cmp < 0
	})
}
