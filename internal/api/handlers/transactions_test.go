package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harishram/fintrack-backend/internal/api/dto"
	"github.com/harishram/fintrack-backend/internal/api/handlers"
	"github.com/harishram/fintrack-backend/internal/application/service"
	"github.com/harishram/fintrack-backend/internal/infrastructure/storage"
)

func newHandler(repo storage.Repository) *handlers.TransactionsHandler {
	return handlers.NewTransactionsHandler(service.NewTransactionService(repo, nil), nil)
}

func setChiURLParam(ctx context.Context, key, value string) context.Context {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return context.WithValue(ctx, chi.RouteCtxKey, rctx)
}

func seedTxn(repo *storage.MockRepository, title string, amount float64, category, date string) *storage.Transaction {
	parsed, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return repo.AddTransaction(&storage.Transaction{
		Title:    title,
		Amount:   amount,
		Category: category,
		Date:     parsed,
	})
}

func TestTransactionsHandler_List(t *testing.T) {
	t.Run("returns envelope with pagination metadata", func(t *testing.T) {
		repo := storage.NewMockRepository()
		for i := 1; i <= 12; i++ {
			seedTxn(repo, "Item", -1, "Misc", time.Date(2025, 3, i, 0, 0, 0, 0, time.UTC).Format("2006-01-02"))
		}
		handler := newHandler(repo)

		req := httptest.NewRequest(http.MethodGet, "/api/transactions?page=3&limit=5", nil)
		rec := httptest.NewRecorder()

		handler.List(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var response dto.ListResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))

		assert.True(t, response.Success)
		require.NotNil(t, response.Data)
		assert.Equal(t, 3, response.Data.CurrentPage)
		assert.Equal(t, 3, response.Data.TotalPages)
		assert.Equal(t, 12, response.Data.TotalItems)
		assert.Len(t, response.Data.Transactions, 2)
	})

	t.Run("empty store returns empty list", func(t *testing.T) {
		handler := newHandler(storage.NewMockRepository())

		req := httptest.NewRequest(http.MethodGet, "/api/transactions", nil)
		rec := httptest.NewRecorder()

		handler.List(rec, req)

		var response dto.ListResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		assert.True(t, response.Success)
		assert.Empty(t, response.Data.Transactions)
		assert.Equal(t, 0, response.Data.TotalItems)
	})

	t.Run("invalid amount range fails with 400", func(t *testing.T) {
		repo := storage.NewMockRepository()
		handler := newHandler(repo)

		req := httptest.NewRequest(http.MethodGet, "/api/transactions?minAmount=100&maxAmount=50", nil)
		rec := httptest.NewRecorder()

		handler.List(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.False(t, repo.ListCalled)

		var response dto.ErrorResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		assert.False(t, response.Success)
		assert.NotEmpty(t, response.Error)
	})

	t.Run("search filters by title or note", func(t *testing.T) {
		repo := storage.NewMockRepository()
		seedTxn(repo, "Rent", -1200, "Housing", "2025-03-01")
		coffee := seedTxn(repo, "Coffee", -4, "Restaurant", "2025-03-02")
		_, err := repo.UpdateTransaction(coffee.ID, storage.TransactionPatch{Note: strPtr("paid rent back")})
		require.NoError(t, err)
		seedTxn(repo, "Salary", 2500, "Income", "2025-03-03")
		handler := newHandler(repo)

		req := httptest.NewRequest(http.MethodGet, "/api/transactions?search=RENT", nil)
		rec := httptest.NewRecorder()

		handler.List(rec, req)

		var response dto.ListResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		assert.Equal(t, 2, response.Data.TotalItems)
	})

	t.Run("store failure returns 500 with generic message", func(t *testing.T) {
		repo := storage.NewMockRepository()
		repo.ListErr = assert.AnError
		handler := newHandler(repo)

		req := httptest.NewRequest(http.MethodGet, "/api/transactions", nil)
		rec := httptest.NewRecorder()

		handler.List(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)

		var response dto.ErrorResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		assert.Equal(t, "Error fetching transactions", response.Error)
	})
}

func TestTransactionsHandler_Filter(t *testing.T) {
	repo := storage.NewMockRepository()
	seedTxn(repo, "Shirt", -30, "Shopping", "2025-03-01")
	seedTxn(repo, "Bus", -3, "Transport", "2025-03-02")
	seedTxn(repo, "Rent", -1200, "Housing", "2025-03-03")
	handler := newHandler(repo)

	req := httptest.NewRequest(http.MethodGet, "/api/transactions/filter?categories=Shopping,Transport", nil)
	rec := httptest.NewRecorder()

	handler.Filter(rec, req)

	var response dto.ListResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	require.NotNil(t, response.Data)
	assert.Equal(t, 2, response.Data.TotalItems)
	// Fixed sort: date descending.
	assert.Equal(t, "Bus", response.Data.Transactions[0].Title)
}

func TestTransactionsHandler_Categories(t *testing.T) {
	repo := storage.NewMockRepository()
	seedTxn(repo, "a", -1, "Groceries", "2025-03-01")
	seedTxn(repo, "b", -1, "Groceries", "2025-03-02")
	seedTxn(repo, "c", 10, "Income", "2025-03-03")
	handler := newHandler(repo)

	req := httptest.NewRequest(http.MethodGet, "/api/transactions/categories", nil)
	rec := httptest.NewRecorder()

	handler.Categories(rec, req)

	var response dto.CategoriesResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	assert.True(t, response.Success)
	assert.Equal(t, []string{"Groceries"}, response.Categories)
}

func TestTransactionsHandler_Get(t *testing.T) {
	repo := storage.NewMockRepository()
	txn := seedTxn(repo, "Rent", -1200, "Housing", "2025-03-01")
	handler := newHandler(repo)

	t.Run("found", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/transactions/"+txn.ID, nil)
		req = req.WithContext(setChiURLParam(req.Context(), "id", txn.ID))
		rec := httptest.NewRecorder()

		handler.Get(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var response dto.TransactionResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		assert.Equal(t, "Rent", response.Title)
		assert.Equal(t, "2025-03-01", response.Date)
	})

	t.Run("missing id returns 404 message", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/transactions/nope", nil)
		req = req.WithContext(setChiURLParam(req.Context(), "id", "nope"))
		rec := httptest.NewRecorder()

		handler.Get(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)

		var response dto.MessageResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		assert.Equal(t, "Transaction not found", response.Message)
	})
}

func TestTransactionsHandler_Create(t *testing.T) {
	t.Run("valid request inserts and returns 201", func(t *testing.T) {
		repo := storage.NewMockRepository()
		handler := newHandler(repo)

		body := `{"title":"Salary","amount":2500,"category":"Income","date":"2025-03-01"}`
		req := httptest.NewRequest(http.MethodPost, "/api/transactions", strings.NewReader(body))
		rec := httptest.NewRecorder()

		handler.Create(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)

		var response dto.TransactionResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		assert.NotEmpty(t, response.ID)
		assert.Equal(t, "Salary", response.Title)
		assert.False(t, response.Starred)
	})

	t.Run("validation failures write nothing", func(t *testing.T) {
		bodies := map[string]string{
			"empty title": `{"title":"  ","amount":10,"category":"Income"}`,
			"zero amount": `{"title":"Salary","amount":0,"category":"Income"}`,
			"no amount":   `{"title":"Salary","category":"Income"}`,
			"future date": `{"title":"Salary","amount":10,"category":"Income","date":"2999-01-01"}`,
		}

		for name, body := range bodies {
			t.Run(name, func(t *testing.T) {
				repo := storage.NewMockRepository()
				handler := newHandler(repo)

				req := httptest.NewRequest(http.MethodPost, "/api/transactions", strings.NewReader(body))
				rec := httptest.NewRecorder()

				handler.Create(rec, req)

				assert.Equal(t, http.StatusBadRequest, rec.Code)
				assert.False(t, repo.CreateCalled)

				var response dto.BadRequestResponse
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
				assert.NotEmpty(t, response.Error)
			})
		}
	})
}

func TestTransactionsHandler_Update(t *testing.T) {
	repo := storage.NewMockRepository()
	txn := seedTxn(repo, "Rent", -1200, "Housing", "2025-03-01")
	handler := newHandler(repo)

	body := `{"note":"march rent"}`
	req := httptest.NewRequest(http.MethodPut, "/api/transactions/"+txn.ID, strings.NewReader(body))
	req = req.WithContext(setChiURLParam(req.Context(), "id", txn.ID))
	rec := httptest.NewRecorder()

	handler.Update(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response dto.UpdateResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	assert.True(t, response.Success)
	assert.Equal(t, "march rent", response.Data.Note)
	assert.Equal(t, "Rent", response.Data.Title)
}

func TestTransactionsHandler_ToggleStar(t *testing.T) {
	repo := storage.NewMockRepository()
	txn := seedTxn(repo, "Dinner", -45, "Restaurant", "2025-03-08")
	handler := newHandler(repo)

	star := func() dto.TransactionResponse {
		req := httptest.NewRequest(http.MethodPatch, "/api/transactions/"+txn.ID+"/star", nil)
		req = req.WithContext(setChiURLParam(req.Context(), "id", txn.ID))
		rec := httptest.NewRecorder()
		handler.ToggleStar(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var response dto.TransactionResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		return response
	}

	assert.True(t, star().Starred)
	assert.False(t, star().Starred) // toggling twice restores the original
}

func TestTransactionsHandler_SetNote(t *testing.T) {
	repo := storage.NewMockRepository()
	txn := seedTxn(repo, "Rent", -1200, "Housing", "2025-03-01")
	handler := newHandler(repo)

	body := `{"note":"shared with flatmate"}`
	req := httptest.NewRequest(http.MethodPatch, "/api/transactions/"+txn.ID+"/note", strings.NewReader(body))
	req = req.WithContext(setChiURLParam(req.Context(), "id", txn.ID))
	rec := httptest.NewRecorder()

	handler.SetNote(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response dto.TransactionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	assert.Equal(t, "shared with flatmate", response.Note)
}

func TestTransactionsHandler_ReplaceSplit(t *testing.T) {
	repo := storage.NewMockRepository()
	txn := seedTxn(repo, "Supermarket", -120, "Groceries", "2025-03-09")
	handler := newHandler(repo)

	body := `{"splitTransactions":[{"category":"Groceries","amount":-80},{"category":"Household","amount":-40}]}`
	req := httptest.NewRequest(http.MethodPatch, "/api/transactions/"+txn.ID+"/split", strings.NewReader(body))
	req = req.WithContext(setChiURLParam(req.Context(), "id", txn.ID))
	rec := httptest.NewRecorder()

	handler.ReplaceSplit(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response dto.TransactionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	assert.True(t, response.Split)
	require.Len(t, response.SplitTransactions, 2)
	assert.Equal(t, "Household", response.SplitTransactions[1].Category)
}

func TestTransactionsHandler_Delete(t *testing.T) {
	repo := storage.NewMockRepository()
	txn := seedTxn(repo, "Refund", 30, "Income", "2025-03-10")
	handler := newHandler(repo)

	req := httptest.NewRequest(http.MethodDelete, "/api/transactions/"+txn.ID, nil)
	req = req.WithContext(setChiURLParam(req.Context(), "id", txn.ID))
	rec := httptest.NewRecorder()

	handler.Delete(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{txn.ID}, repo.DeletedIDs)

	_, err := repo.GetTransaction(txn.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func strPtr(s string) *string { return &s }
