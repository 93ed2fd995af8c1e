package fintrack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrNotFound is returned when the API reports an unknown transaction id.
var ErrNotFound = errors.New("transaction not found")

// APIError is a non-2xx response carrying the server's message.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.StatusCode, e.Message)
}

// Client is an HTTP client for the fintrack API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a client for the API at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type listEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Data    *struct {
		Transactions []Transaction `json:"transactions"`
		CurrentPage  int           `json:"currentPage"`
		TotalPages   int           `json:"totalPages"`
		TotalItems   int           `json:"totalItems"`
	} `json:"data"`
}

type categoriesEnvelope struct {
	Success    bool     `json:"success"`
	Categories []string `json:"categories"`
}

type updateEnvelope struct {
	Success bool        `json:"success"`
	Data    Transaction `json:"data"`
}

// ListTransactions fetches one page of transactions using the given query
// parameters, typically produced by FilterState.Params.
func (c *Client) ListTransactions(ctx context.Context, params url.Values) (*ListResult, error) {
	return c.listing(ctx, "/api/transactions", params)
}

// FilterTransactions fetches the alternate filtered listing, which accepts a
// comma-separated category list and always sorts by date descending.
func (c *Client) FilterTransactions(ctx context.Context, params url.Values) (*ListResult, error) {
	return c.listing(ctx, "/api/transactions/filter", params)
}

func (c *Client) listing(ctx context.Context, path string, params url.Values) (*ListResult, error) {
	target := c.baseURL + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	body, err := c.do(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}

	var envelope listEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decoding listing: %w", err)
	}
	if envelope.Data == nil {
		return nil, fmt.Errorf("listing response missing data")
	}

	return &ListResult{
		Transactions: envelope.Data.Transactions,
		CurrentPage:  envelope.Data.CurrentPage,
		TotalPages:   envelope.Data.TotalPages,
		TotalItems:   envelope.Data.TotalItems,
	}, nil
}

// Categories fetches the most-used category names merged with the defaults.
func (c *Client) Categories(ctx context.Context) ([]string, error) {
	body, err := c.do(ctx, http.MethodGet, c.baseURL+"/api/transactions/categories", nil)
	if err != nil {
		return nil, err
	}

	var envelope categoriesEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decoding categories: %w", err)
	}

	merged := append([]string{}, DefaultCategories...)
	seen := make(map[string]bool, len(merged))
	for _, category := range merged {
		seen[category] = true
	}
	for _, category := range envelope.Categories {
		if !seen[category] {
			merged = append(merged, category)
			seen[category] = true
		}
	}
	return merged, nil
}

// GetTransaction fetches one transaction by id.
func (c *Client) GetTransaction(ctx context.Context, id string) (*Transaction, error) {
	body, err := c.do(ctx, http.MethodGet, c.transactionURL(id), nil)
	if err != nil {
		return nil, err
	}
	return decodeTransaction(body)
}

// CreateTransaction creates a transaction with the amount exactly as given.
func (c *Client) CreateTransaction(ctx context.Context, req CreateRequest) (*Transaction, error) {
	body, err := c.do(ctx, http.MethodPost, c.baseURL+"/api/transactions", req)
	if err != nil {
		return nil, err
	}
	return decodeTransaction(body)
}

// AddIncome creates an income entry. The amount must be a positive magnitude.
func (c *Client) AddIncome(ctx context.Context, req CreateRequest) (*Transaction, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("income amount must be positive, got %v", req.Amount)
	}
	return c.CreateTransaction(ctx, req)
}

// AddExpense creates an expense entry. The amount must be a positive
// magnitude; the sign is applied here.
func (c *Client) AddExpense(ctx context.Context, req CreateRequest) (*Transaction, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("expense amount must be positive, got %v", req.Amount)
	}
	req.Amount = -req.Amount
	return c.CreateTransaction(ctx, req)
}

// UpdateTransaction applies a partial update.
func (c *Client) UpdateTransaction(ctx context.Context, id string, req UpdateRequest) (*Transaction, error) {
	body, err := c.do(ctx, http.MethodPut, c.transactionURL(id), req)
	if err != nil {
		return nil, err
	}

	var envelope updateEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decoding update response: %w", err)
	}
	return &envelope.Data, nil
}

// DeleteTransaction permanently deletes a transaction.
func (c *Client) DeleteTransaction(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, c.transactionURL(id), nil)
	return err
}

// ToggleStar flips the starred flag and returns the updated record.
func (c *Client) ToggleStar(ctx context.Context, id string) (*Transaction, error) {
	body, err := c.do(ctx, http.MethodPatch, c.transactionURL(id)+"/star", nil)
	if err != nil {
		return nil, err
	}
	return decodeTransaction(body)
}

// SetNote replaces the transaction's note.
func (c *Client) SetNote(ctx context.Context, id, note string) (*Transaction, error) {
	body, err := c.do(ctx, http.MethodPatch, c.transactionURL(id)+"/note", map[string]string{"note": note})
	if err != nil {
		return nil, err
	}
	return decodeTransaction(body)
}

// ReplaceSplit replaces the transaction's split items wholesale.
func (c *Client) ReplaceSplit(ctx context.Context, id string, items []SplitItem) (*Transaction, error) {
	payload := map[string][]SplitItem{"splitTransactions": items}
	body, err := c.do(ctx, http.MethodPatch, c.transactionURL(id)+"/split", payload)
	if err != nil {
		return nil, err
	}
	return decodeTransaction(body)
}

func (c *Client) transactionURL(id string) string {
	return c.baseURL + "/api/transactions/" + url.PathEscape(id)
}

func decodeTransaction(body []byte) (*Transaction, error) {
	var txn Transaction
	if err := json.Unmarshal(body, &txn); err != nil {
		return nil, fmt.Errorf("decoding transaction: %w", err)
	}
	return &txn, nil
}

// do performs the request and returns the response body, mapping non-2xx
// statuses onto typed errors.
func (c *Client) do(ctx context.Context, method, target string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, nil
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}

	// Error payloads carry either {"error": ...} or {"message": ...}.
	var failure struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	message := http.StatusText(resp.StatusCode)
	if err := json.Unmarshal(body, &failure); err == nil {
		if failure.Error != "" {
			message = failure.Error
		} else if failure.Message != "" {
			message = failure.Message
		}
	}

	return nil, &APIError{StatusCode: resp.StatusCode, Message: message}
}
