package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/harishram/fintrack-backend/internal/domain/query"
)

// dateLayout is the canonical storage format for calendar dates. Storing
// dates as ISO text keeps range comparisons lexicographic.
const dateLayout = "2006-01-02"

const transactionColumns = "id, title, amount, category, date, time, note, starred, split, split_items, created_at, updated_at"

// Storage provides SQLite database access for transaction records.
// It implements the Repository interface.
type Storage struct {
	db *sql.DB
}

// Compile-time check that Storage implements Repository
var _ Repository = (*Storage)(nil)

// NewStorage opens the SQLite database at the given path and brings the
// schema up to date.
func NewStorage(dbPath string) (*Storage, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Storage{db: db}, nil
}

// Close closes the database connection.
func (s *Storage) Close() error {
	return s.db.Close()
}

// ListTransactions returns one page of transactions matching the spec.
func (s *Storage) ListTransactions(spec query.Spec) (*TransactionPage, error) {
	q, err := query.Build(spec)
	if err != nil {
		return nil, err
	}

	where := ""
	if q.Where != "" {
		where = " WHERE " + q.Where
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM transactions" + where
	if err := s.db.QueryRow(countQuery, q.Args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count transactions: %w", err)
	}

	listQuery := fmt.Sprintf(
		"SELECT %s FROM transactions%s ORDER BY %s LIMIT ? OFFSET ?",
		transactionColumns, where, q.OrderBy,
	)
	args := append(append([]any{}, q.Args...), q.Limit, q.Offset)

	rows, err := s.db.Query(listQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	transactions := make([]*Transaction, 0)
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &TransactionPage{Transactions: transactions, TotalItems: total}, nil
}

// GetTransaction retrieves a transaction by id.
func (s *Storage) GetTransaction(id string) (*Transaction, error) {
	row := s.db.QueryRow(
		fmt.Sprintf("SELECT %s FROM transactions WHERE id = ?", transactionColumns), id,
	)

	txn, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// CreateTransaction inserts a new record, assigning its id and timestamps.
func (s *Storage) CreateTransaction(t *Transaction) (*Transaction, error) {
	stored := *t
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	if stored.SplitItems == nil {
		stored.SplitItems = []SplitItem{}
	}

	itemsJSON, err := json.Marshal(stored.SplitItems)
	if err != nil {
		return nil, fmt.Errorf("failed to encode split items: %w", err)
	}

	insert := fmt.Sprintf(
		"INSERT INTO transactions (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		transactionColumns,
	)
	_, err = s.db.Exec(insert,
		stored.ID,
		stored.Title,
		stored.Amount,
		stored.Category,
		stored.Date.Format(dateLayout),
		stored.Time,
		stored.Note,
		stored.Starred,
		stored.Split,
		string(itemsJSON),
		stored.CreatedAt,
		stored.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert transaction: %w", err)
	}

	return &stored, nil
}

// UpdateTransaction applies a partial update and returns the updated record.
func (s *Storage) UpdateTransaction(id string, patch TransactionPatch) (*Transaction, error) {
	var sets []string
	var args []any

	set := func(column string, value any) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}

	if patch.Title != nil {
		set("title", *patch.Title)
	}
	if patch.Amount != nil {
		set("amount", *patch.Amount)
	}
	if patch.Category != nil {
		set("category", *patch.Category)
	}
	if patch.Date != nil {
		set("date", patch.Date.Format(dateLayout))
	}
	if patch.Time != nil {
		set("time", *patch.Time)
	}
	if patch.Note != nil {
		set("note", *patch.Note)
	}
	if patch.Starred != nil {
		set("starred", *patch.Starred)
	}
	if patch.Split != nil {
		set("split", *patch.Split)
	}
	if patch.SplitItems != nil {
		itemsJSON, err := json.Marshal(*patch.SplitItems)
		if err != nil {
			return nil, fmt.Errorf("failed to encode split items: %w", err)
		}
		set("split_items", string(itemsJSON))
	}
	set("updated_at", time.Now().UTC())

	updateQuery := "UPDATE transactions SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	args = append(args, id)

	result, err := s.db.Exec(updateQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrNotFound
	}

	return s.GetTransaction(id)
}

// DeleteTransaction removes a record permanently.
func (s *Storage) DeleteTransaction(id string) error {
	result, err := s.db.Exec("DELETE FROM transactions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// TopCategories returns the most-used categories by descending frequency,
// excluding the given reserved names.
func (s *Storage) TopCategories(limit int, exclude []string) ([]CategoryCount, error) {
	var args []any
	notIn := ""
	if len(exclude) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(exclude)), ", ")
		notIn = " WHERE category NOT IN (" + placeholders + ")"
		for _, name := range exclude {
			args = append(args, name)
		}
	}
	args = append(args, limit)

	rows, err := s.db.Query(
		"SELECT category, COUNT(*) AS freq FROM transactions"+notIn+
			" GROUP BY category ORDER BY freq DESC, category ASC LIMIT ?",
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var counts []CategoryCount
	for rows.Next() {
		var cc CategoryCount
		if err := rows.Scan(&cc.Category, &cc.Count); err != nil {
			return nil, err
		}
		counts = append(counts, cc)
	}
	return counts, rows.Err()
}

// rowScanner abstracts *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*Transaction, error) {
	txn := &Transaction{}
	var date string
	var itemsJSON string

	err := row.Scan(
		&txn.ID,
		&txn.Title,
		&txn.Amount,
		&txn.Category,
		&date,
		&txn.Time,
		&txn.Note,
		&txn.Starred,
		&txn.Split,
		&itemsJSON,
		&txn.CreatedAt,
		&txn.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	txn.Date, err = time.Parse(dateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("failed to parse stored date %q: %w", date, err)
	}

	txn.SplitItems = []SplitItem{}
	if itemsJSON != "" {
		if err := json.Unmarshal([]byte(itemsJSON), &txn.SplitItems); err != nil {
			return nil, fmt.Errorf("failed to decode split items: %w", err)
		}
	}

	return txn, nil
}
