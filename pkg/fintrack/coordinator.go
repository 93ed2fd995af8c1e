package fintrack

import (
	"context"
	"sync"
	"time"
)

// DefaultGracePeriod is how long a delete stays undoable before the store
// call is issued.
const DefaultGracePeriod = 10 * time.Second

// Coordinator applies mutations to a local transaction list immediately and
// reconciles them with the API afterwards. Deletes are deferred by a grace
// window during which they can be undone without any store call.
type Coordinator struct {
	client *Client
	grace  time.Duration

	mu      sync.Mutex
	visible []Transaction
	pending map[string]*pendingDelete

	onError func(id string, err error)
}

type pendingDelete struct {
	txn   Transaction
	index int
	timer *time.Timer
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithGracePeriod overrides the delete-undo grace window.
func WithGracePeriod(d time.Duration) CoordinatorOption {
	return func(c *Coordinator) { c.grace = d }
}

// WithErrorHandler sets the callback invoked when a deferred delete fails
// after its grace window expires.
func WithErrorHandler(fn func(id string, err error)) CoordinatorOption {
	return func(c *Coordinator) { c.onError = fn }
}

// NewCoordinator creates a coordinator over the given visible transactions.
func NewCoordinator(client *Client, transactions []Transaction, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		client:  client,
		grace:   DefaultGracePeriod,
		visible: append([]Transaction{}, transactions...),
		pending: make(map[string]*pendingDelete),
		onError: func(string, error) {},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Transactions returns a copy of the currently visible transactions.
func (c *Coordinator) Transactions() []Transaction {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Transaction{}, c.visible...)
}

// SetTransactions replaces the visible list, typically after a fresh fetch.
// Pending deletes stay armed.
func (c *Coordinator) SetTransactions(transactions []Transaction) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.visible = append([]Transaction{}, transactions...)
}

// PendingDeletes returns the ids with an armed delete timer.
func (c *Coordinator) PendingDeletes() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]string, 0, len(c.pending))
	for id := range c.pending {
		ids = append(ids, id)
	}
	return ids
}

// Delete removes the transaction from the visible list and arms the grace
// timer. The store call is only issued when the timer expires without an
// undo. A second delete for an id already pending replaces the prior timer.
// Returns false when the id is not visible.
func (c *Coordinator) Delete(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if prior, ok := c.pending[id]; ok {
		prior.timer.Stop()
		prior.timer = c.armTimer(id)
		return true
	}

	index := c.indexOf(id)
	if index < 0 {
		return false
	}

	entry := &pendingDelete{txn: c.visible[index], index: index}
	c.visible = append(c.visible[:index], c.visible[index+1:]...)
	entry.timer = c.armTimer(id)
	c.pending[id] = entry
	return true
}

// Undo cancels a pending delete and restores the record at its original
// position. No store call is ever issued. Returns false when nothing is
// pending for the id.
func (c *Coordinator) Undo(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.pending[id]
	if !ok {
		return false
	}
	entry.timer.Stop()
	delete(c.pending, id)
	c.restoreLocked(entry)
	return true
}

// armTimer must be called with the mutex held.
func (c *Coordinator) armTimer(id string) *time.Timer {
	return time.AfterFunc(c.grace, func() { c.commitDelete(id) })
}

func (c *Coordinator) commitDelete(id string) {
	c.mu.Lock()
	entry, ok := c.pending[id]
	if !ok {
		// Undone between expiry and acquiring the lock.
		c.mu.Unlock()
		return
	}
	delete(c.pending, id)
	c.mu.Unlock()

	if err := c.client.DeleteTransaction(context.Background(), id); err != nil {
		c.mu.Lock()
		c.restoreLocked(entry)
		c.mu.Unlock()
		c.onError(id, err)
	}
}

// ToggleStar flips the starred flag locally, then confirms with the API. On
// failure the local record is rolled back to its prior state.
func (c *Coordinator) ToggleStar(ctx context.Context, id string) error {
	c.mu.Lock()
	index := c.indexOf(id)
	if index < 0 {
		c.mu.Unlock()
		return ErrNotFound
	}
	snapshot := c.visible[index]
	c.visible[index].Starred = !c.visible[index].Starred
	c.mu.Unlock()

	updated, err := c.client.ToggleStar(ctx, id)
	if err != nil {
		c.rollback(id, snapshot)
		return err
	}

	c.replace(id, *updated)
	return nil
}

// SetNote sets the note locally, then confirms with the API. On failure the
// local record is rolled back.
func (c *Coordinator) SetNote(ctx context.Context, id, note string) error {
	c.mu.Lock()
	index := c.indexOf(id)
	if index < 0 {
		c.mu.Unlock()
		return ErrNotFound
	}
	snapshot := c.visible[index]
	c.visible[index].Note = note
	c.mu.Unlock()

	updated, err := c.client.SetNote(ctx, id, note)
	if err != nil {
		c.rollback(id, snapshot)
		return err
	}

	c.replace(id, *updated)
	return nil
}

// Close cancels all pending delete timers without issuing store calls. The
// removed records stay hidden.
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, entry := range c.pending {
		entry.timer.Stop()
		delete(c.pending, id)
	}
}

// indexOf must be called with the mutex held.
func (c *Coordinator) indexOf(id string) int {
	for i, txn := range c.visible {
		if txn.ID == id {
			return i
		}
	}
	return -1
}

// restoreLocked re-inserts a removed record at its original position. Must be
// called with the mutex held.
func (c *Coordinator) restoreLocked(entry *pendingDelete) {
	index := entry.index
	if index > len(c.visible) {
		index = len(c.visible)
	}
	c.visible = append(c.visible[:index], append([]Transaction{entry.txn}, c.visible[index:]...)...)
}

func (c *Coordinator) rollback(id string, snapshot Transaction) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if index := c.indexOf(id); index >= 0 {
		c.visible[index] = snapshot
	}
}

func (c *Coordinator) replace(id string, txn Transaction) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if index := c.indexOf(id); index >= 0 {
		c.visible[index] = txn
	}
}
