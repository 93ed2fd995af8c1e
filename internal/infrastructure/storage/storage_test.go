package storage_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harishram/fintrack-backend/internal/domain/query"
	"github.com/harishram/fintrack-backend/internal/infrastructure/storage"
)

func newTestStorage(t *testing.T) *storage.Storage {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "fintrack_test.db")
	store, err := storage.NewStorage(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func day(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", value)
	require.NoError(t, err)
	return parsed
}

func seed(t *testing.T, store *storage.Storage, title string, amount float64, category, date string) *storage.Transaction {
	t.Helper()
	created, err := store.CreateTransaction(&storage.Transaction{
		Title:    title,
		Amount:   amount,
		Category: category,
		Date:     day(t, date),
		Time:     "09:30 AM",
	})
	require.NoError(t, err)
	return created
}

func TestStorage_CreateAndGet(t *testing.T) {
	store := newTestStorage(t)

	created := seed(t, store, "Salary", 2500, "Income", "2025-03-01")
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := store.GetTransaction(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Salary", got.Title)
	assert.Equal(t, 2500.0, got.Amount)
	assert.Equal(t, "2025-03-01", got.Date.Format("2006-01-02"))
	assert.False(t, got.Starred)
	assert.False(t, got.Split)
	assert.Empty(t, got.SplitItems)
}

func TestStorage_GetMissing(t *testing.T) {
	store := newTestStorage(t)

	_, err := store.GetTransaction("no-such-id")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStorage_ListFilters(t *testing.T) {
	store := newTestStorage(t)

	seed(t, store, "Rent", -1200, "Housing", "2025-03-01")
	seed(t, store, "Groceries", -84.20, "Groceries", "2025-03-05")
	seed(t, store, "Salary", 2500, "Income", "2025-03-10")
	noted, err := store.UpdateTransaction(
		seed(t, store, "Coffee", -4.5, "Restaurant", "2025-03-12").ID,
		storage.TransactionPatch{Note: ptr("paid rent share back")},
	)
	require.NoError(t, err)

	t.Run("by category", func(t *testing.T) {
		page, err := store.ListTransactions(query.Spec{Category: "Housing"})
		require.NoError(t, err)
		assert.Equal(t, 1, page.TotalItems)
		assert.Equal(t, "Rent", page.Transactions[0].Title)
	})

	t.Run("search matches title or note case-insensitively", func(t *testing.T) {
		page, err := store.ListTransactions(query.Spec{Search: "rent"})
		require.NoError(t, err)
		require.Equal(t, 2, page.TotalItems)

		titles := []string{page.Transactions[0].Title, page.Transactions[1].Title}
		assert.Contains(t, titles, "Rent")
		assert.Contains(t, titles, noted.Title)
	})

	t.Run("type income", func(t *testing.T) {
		page, err := store.ListTransactions(query.Spec{Type: query.TypeIncome})
		require.NoError(t, err)
		assert.Equal(t, 1, page.TotalItems)
		assert.Equal(t, "Salary", page.Transactions[0].Title)
	})

	t.Run("amount bounds intersect with type", func(t *testing.T) {
		page, err := store.ListTransactions(query.Spec{
			Type:      query.TypeExpense,
			MinAmount: ptrF(-100),
			MaxAmount: ptrF(0),
		})
		require.NoError(t, err)
		assert.Equal(t, 2, page.TotalItems) // groceries and coffee, not rent
	})

	t.Run("date range needs both ends", func(t *testing.T) {
		start := day(t, "2025-03-04")
		end := day(t, "2025-03-11")

		page, err := store.ListTransactions(query.Spec{StartDate: &start, EndDate: &end})
		require.NoError(t, err)
		assert.Equal(t, 2, page.TotalItems)

		page, err = store.ListTransactions(query.Spec{StartDate: &start})
		require.NoError(t, err)
		assert.Equal(t, 4, page.TotalItems)
	})

	t.Run("invalid range issues no query", func(t *testing.T) {
		_, err := store.ListTransactions(query.Spec{MinAmount: ptrF(10), MaxAmount: ptrF(5)})
		assert.ErrorIs(t, err, query.ErrInvalidRange)
	})
}

func TestStorage_ListSorting(t *testing.T) {
	store := newTestStorage(t)

	seed(t, store, "Banana", -2, "Groceries", "2025-03-02")
	seed(t, store, "apple", -1, "Groceries", "2025-03-01")
	seed(t, store, "Cherry", -3, "Groceries", "2025-03-03")

	t.Run("title ascending is case-insensitive", func(t *testing.T) {
		page, err := store.ListTransactions(query.Spec{SortField: query.SortByTitle, SortOrder: query.OrderAsc})
		require.NoError(t, err)
		require.Len(t, page.Transactions, 3)
		assert.Equal(t, "apple", page.Transactions[0].Title)
		assert.Equal(t, "Banana", page.Transactions[1].Title)
		assert.Equal(t, "Cherry", page.Transactions[2].Title)
	})

	t.Run("default sort is date descending", func(t *testing.T) {
		page, err := store.ListTransactions(query.Spec{})
		require.NoError(t, err)
		require.Len(t, page.Transactions, 3)
		assert.Equal(t, "Cherry", page.Transactions[0].Title)
		assert.Equal(t, "apple", page.Transactions[2].Title)
	})
}

func TestStorage_ListPagination(t *testing.T) {
	store := newTestStorage(t)

	for i := 1; i <= 12; i++ {
		seed(t, store, "Item", -1, "Misc", time.Date(2025, 3, i, 0, 0, 0, 0, time.UTC).Format("2006-01-02"))
	}

	page, err := store.ListTransactions(query.Spec{Page: 3, PageSize: 5})
	require.NoError(t, err)
	assert.Equal(t, 12, page.TotalItems)
	assert.Len(t, page.Transactions, 2)
}

func TestStorage_UpdatePatch(t *testing.T) {
	store := newTestStorage(t)

	created := seed(t, store, "Dinner", -45, "Restaurant", "2025-03-08")

	updated, err := store.UpdateTransaction(created.ID, storage.TransactionPatch{
		Starred: ptrB(true),
		Note:    ptr("team dinner"),
	})
	require.NoError(t, err)
	assert.True(t, updated.Starred)
	assert.Equal(t, "team dinner", updated.Note)
	assert.Equal(t, "Dinner", updated.Title) // untouched fields preserved

	_, err = store.UpdateTransaction("missing", storage.TransactionPatch{Note: ptr("x")})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStorage_SplitItemsRoundTrip(t *testing.T) {
	store := newTestStorage(t)

	created := seed(t, store, "Supermarket", -120, "Groceries", "2025-03-09")
	items := []storage.SplitItem{
		{Category: "Groceries", Amount: -80},
		{Category: "Household", Amount: -40},
	}

	updated, err := store.UpdateTransaction(created.ID, storage.TransactionPatch{
		Split:      ptrB(true),
		SplitItems: &items,
	})
	require.NoError(t, err)
	assert.True(t, updated.Split)
	assert.Equal(t, items, updated.SplitItems)

	got, err := store.GetTransaction(created.ID)
	require.NoError(t, err)
	assert.Equal(t, items, got.SplitItems)
}

func TestStorage_Delete(t *testing.T) {
	store := newTestStorage(t)

	created := seed(t, store, "Refund", 30, "Income", "2025-03-10")
	require.NoError(t, store.DeleteTransaction(created.ID))

	_, err := store.GetTransaction(created.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	assert.ErrorIs(t, store.DeleteTransaction(created.ID), storage.ErrNotFound)
}

func TestStorage_TopCategories(t *testing.T) {
	store := newTestStorage(t)

	for i := 0; i < 3; i++ {
		seed(t, store, "g", -1, "Groceries", "2025-03-01")
	}
	for i := 0; i < 2; i++ {
		seed(t, store, "t", -1, "Transport", "2025-03-01")
	}
	seed(t, store, "s", 100, "Income", "2025-03-01")
	seed(t, store, "e", -5, "Expense", "2025-03-01")

	counts, err := store.TopCategories(5, []string{"Income", "Expense"})
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, storage.CategoryCount{Category: "Groceries", Count: 3}, counts[0])
	assert.Equal(t, storage.CategoryCount{Category: "Transport", Count: 2}, counts[1])
}

func ptr(s string) *string     { return &s }
func ptrF(v float64) *float64  { return &v }
func ptrB(v bool) *bool        { return &v }
