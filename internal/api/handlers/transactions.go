package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/harishram/fintrack-backend/internal/api/dto"
	"github.com/harishram/fintrack-backend/internal/application/service"
	"github.com/harishram/fintrack-backend/internal/domain/query"
	"github.com/harishram/fintrack-backend/internal/infrastructure/storage"
)

// TransactionsHandler handles transaction-related HTTP requests.
type TransactionsHandler struct {
	svc    *service.TransactionService
	logger *slog.Logger
}

// NewTransactionsHandler creates a new transactions handler.
func NewTransactionsHandler(svc *service.TransactionService, logger *slog.Logger) *TransactionsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TransactionsHandler{svc: svc, logger: logger}
}

// List handles GET /api/transactions - paginated, filtered, sorted listing.
func (h *TransactionsHandler) List(w http.ResponseWriter, r *http.Request) {
	spec := query.Spec{
		Category:  queryParam(r, "category"),
		Search:    queryParam(r, "search"),
		Type:      queryParam(r, "type"),
		MinAmount: parseFloatParam(r, "minAmount"),
		MaxAmount: parseFloatParam(r, "maxAmount"),
		Starred:   parseBoolParam(r, "starred"),
		StartDate: parseDateParam(r, "startDate"),
		EndDate:   parseDateParam(r, "endDate"),
		SortField: queryParam(r, "sortField"),
		SortOrder: queryParam(r, "sortOrder"),
		Page:      parseIntParam(r, "page", 1),
		PageSize:  parseIntParam(r, "limit", query.DefaultPageSize),
	}

	h.writeListing(w, spec)
}

// Filter handles GET /api/transactions/filter - the advanced filter surface
// with a multi-category list and a fixed date-descending sort.
func (h *TransactionsHandler) Filter(w http.ResponseWriter, r *http.Request) {
	spec := query.Spec{
		Type:      queryParam(r, "type"),
		MinAmount: parseFloatParam(r, "minAmount"),
		MaxAmount: parseFloatParam(r, "maxAmount"),
		Starred:   parseBoolParam(r, "starred"),
		StartDate: parseDateParam(r, "startDate"),
		EndDate:   parseDateParam(r, "endDate"),
		SortField: query.SortByDate,
		SortOrder: query.OrderDesc,
		Page:      parseIntParam(r, "page", 1),
		PageSize:  parseIntParam(r, "limit", query.DefaultPageSize),
	}

	if raw := queryParam(r, "categories"); raw != "" {
		categories := strings.Split(raw, ",")
		if len(categories) > 0 && categories[0] != query.AllCategories {
			spec.Categories = categories
		}
	}

	h.writeListing(w, spec)
}

func (h *TransactionsHandler) writeListing(w http.ResponseWriter, spec query.Spec) {
	page, err := h.svc.List(spec)
	if err != nil {
		if errors.Is(err, query.ErrInvalidRange) {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
			return
		}
		h.logger.Error("list transactions failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Error fetching transactions"})
		return
	}

	data := &dto.ListData{
		Transactions: make([]dto.TransactionResponse, 0, len(page.Transactions)),
		CurrentPage:  page.CurrentPage,
		TotalPages:   page.TotalPages,
		TotalItems:   page.TotalItems,
	}
	for _, txn := range page.Transactions {
		data.Transactions = append(data.Transactions, dto.ToTransactionResponse(txn))
	}

	writeJSON(w, http.StatusOK, dto.ListResponse{Success: true, Data: data})
}

// Categories handles GET /api/transactions/categories - the top five
// most-used non-default categories.
func (h *TransactionsHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.svc.TopCategories()
	if err != nil {
		h.logger.Error("category aggregation failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Error fetching categories"})
		return
	}

	if categories == nil {
		categories = []string{}
	}
	writeJSON(w, http.StatusOK, dto.CategoriesResponse{Success: true, Categories: categories})
}

// Get handles GET /api/transactions/{id}.
func (h *TransactionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	txn, err := h.svc.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.writeMutationError(w, err, "Error fetching transaction")
		return
	}
	writeJSON(w, http.StatusOK, dto.ToTransactionResponse(txn))
}

// Create handles POST /api/transactions.
func (h *TransactionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.BadRequestResponse{Error: "invalid request body"})
		return
	}
	if req.Amount == nil {
		writeJSON(w, http.StatusBadRequest, dto.BadRequestResponse{Error: "amount is required"})
		return
	}

	input := service.CreateInput{
		Title:    req.Title,
		Amount:   *req.Amount,
		Category: req.Category,
		Time:     req.Time,
		Note:     req.Note,
	}
	if req.Date != "" {
		date, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, dto.BadRequestResponse{Error: "date must be formatted as YYYY-MM-DD"})
			return
		}
		input.Date = date
	}

	created, err := h.svc.Create(input)
	if err != nil {
		h.writeMutationError(w, err, "Error creating transaction")
		return
	}

	writeJSON(w, http.StatusCreated, dto.ToTransactionResponse(created))
}

// Update handles PUT /api/transactions/{id} - generic partial update.
func (h *TransactionsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.BadRequestResponse{Error: "invalid request body"})
		return
	}

	input := service.UpdateInput{
		Title:    req.Title,
		Amount:   req.Amount,
		Category: req.Category,
		Time:     req.Time,
		Note:     req.Note,
	}
	if req.Date != nil {
		date, err := time.Parse("2006-01-02", *req.Date)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, dto.BadRequestResponse{Error: "date must be formatted as YYYY-MM-DD"})
			return
		}
		input.Date = &date
	}

	updated, err := h.svc.Update(chi.URLParam(r, "id"), input)
	if err != nil {
		h.writeMutationError(w, err, "Error updating transaction")
		return
	}

	writeJSON(w, http.StatusOK, dto.UpdateResponse{Success: true, Data: dto.ToTransactionResponse(updated)})
}

// Delete handles DELETE /api/transactions/{id} - permanent removal.
func (h *TransactionsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(chi.URLParam(r, "id")); err != nil {
		h.writeMutationError(w, err, "Error deleting transaction")
		return
	}
	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "Transaction removed successfully"})
}

// ToggleStar handles PATCH /api/transactions/{id}/star.
func (h *TransactionsHandler) ToggleStar(w http.ResponseWriter, r *http.Request) {
	updated, err := h.svc.ToggleStar(chi.URLParam(r, "id"))
	if err != nil {
		h.writeMutationError(w, err, "Error toggling star status")
		return
	}
	writeJSON(w, http.StatusOK, dto.ToTransactionResponse(updated))
}

// SetNote handles PATCH /api/transactions/{id}/note.
func (h *TransactionsHandler) SetNote(w http.ResponseWriter, r *http.Request) {
	var req dto.NoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.BadRequestResponse{Error: "invalid request body"})
		return
	}

	updated, err := h.svc.SetNote(chi.URLParam(r, "id"), req.Note)
	if err != nil {
		h.writeMutationError(w, err, "Error adding note to transaction")
		return
	}
	writeJSON(w, http.StatusOK, dto.ToTransactionResponse(updated))
}

// ReplaceSplit handles PATCH /api/transactions/{id}/split - wholesale
// replacement of the split items.
func (h *TransactionsHandler) ReplaceSplit(w http.ResponseWriter, r *http.Request) {
	var req dto.SplitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.BadRequestResponse{Error: "invalid request body"})
		return
	}

	items := make([]storage.SplitItem, 0, len(req.SplitTransactions))
	for _, item := range req.SplitTransactions {
		items = append(items, storage.SplitItem{Category: item.Category, Amount: item.Amount})
	}

	updated, err := h.svc.ReplaceSplit(chi.URLParam(r, "id"), items)
	if err != nil {
		h.writeMutationError(w, err, "Error splitting transaction")
		return
	}
	writeJSON(w, http.StatusOK, dto.ToTransactionResponse(updated))
}

// writeMutationError maps service errors onto the wire: validation failures
// carry their message with a 400, unknown ids a 404, and store failures a
// logged 500 with a generic message.
func (h *TransactionsHandler) writeMutationError(w http.ResponseWriter, err error, generic string) {
	var vErr *service.ValidationError
	switch {
	case errors.As(err, &vErr):
		writeJSON(w, http.StatusBadRequest, dto.BadRequestResponse{Error: vErr.Message})
	case errors.Is(err, service.ErrNotFound):
		writeJSON(w, http.StatusNotFound, dto.MessageResponse{Message: "Transaction not found"})
	default:
		h.logger.Error("transaction operation failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: generic})
	}
}
