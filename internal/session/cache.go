// Package session keeps per-user ephemeral browsing state: the product
// selection messages currently on screen and their pending quantities. It is
// the in-memory staging area drained into the persisted cart on confirmation.
// Nothing here survives a restart, by contract.
package session

import "sync"

// Entry ties one outgoing product message to a product and its staged
// quantity. MessageID is the dedup key: at most one entry exists per message.
type Entry struct {
	MessageID int
	ProductID int64
	Quantity  int
}

type userState struct {
	mu      sync.Mutex
	entries []Entry
	// pendingPrompt is the message id of the outstanding confirmation
	// prompt, zero when none.
	pendingPrompt int
}

// Cache stores selection state per user. All operations on a single user are
// serialized by that user's lock; different users never contend.
type Cache struct {
	mu    sync.Mutex
	users map[int64]*userState
}

// NewCache constructs an empty session cache.
func NewCache() *Cache {
	return &Cache{users: make(map[int64]*userState)}
}

func (c *Cache) user(userID int64) *userState {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, ok := c.users[userID]
	if !ok {
		st = &userState{}
		c.users[userID] = st
	}
	return st
}

// RecordSelection registers an outgoing product message. A second record for
// the same message id is ignored so redraws cannot duplicate entries.
func (c *Cache) RecordSelection(userID int64, messageID int, productID int64, quantity int) {
	st := c.user(userID)
	st.mu.Lock()
	defer st.mu.Unlock()
	for _, e := range st.entries {
		if e.MessageID == messageID {
			return
		}
	}
	if quantity < 0 {
		quantity = 0
	}
	st.entries = append(st.entries, Entry{MessageID: messageID, ProductID: productID, Quantity: quantity})
}

// AdjustQuantity applies a stepper action to the entry behind messageID. A
// missing entry is treated as quantity zero and materialized. It returns the
// resulting quantity and whether it differs from the previous one; callers
// skip the keyboard redraw when nothing changed.
func (c *Cache) AdjustQuantity(userID int64, messageID int, productID int64, action Action) (int, bool) {
	st := c.user(userID)
	st.mu.Lock()
	defer st.mu.Unlock()

	for i := range st.entries {
		if st.entries[i].MessageID != messageID {
			continue
		}
		next := Apply(action, st.entries[i].Quantity)
		changed := next != st.entries[i].Quantity
		st.entries[i].Quantity = next
		st.entries[i].ProductID = productID
		return next, changed
	}

	next := Apply(action, 0)
	st.entries = append(st.entries, Entry{MessageID: messageID, ProductID: productID, Quantity: next})
	return next, next != 0
}

// Quantity returns the staged quantity for a message, zero when unknown.
func (c *Cache) Quantity(userID int64, messageID int) int {
	st := c.user(userID)
	st.mu.Lock()
	defer st.mu.Unlock()
	for _, e := range st.entries {
		if e.MessageID == messageID {
			return e.Quantity
		}
	}
	return 0
}

// SetPendingPrompt remembers the confirmation prompt message shown below the
// product list, replacing any previous one.
func (c *Cache) SetPendingPrompt(userID int64, messageID int) {
	st := c.user(userID)
	st.mu.Lock()
	defer st.mu.Unlock()
	st.pendingPrompt = messageID
}

// Restore puts drained entries back so the next confirm retries them, used
// when the flush behind a drain fails. Entries staged since the drain win on
// message id collisions, and a prompt set since the drain is kept.
func (c *Cache) Restore(userID int64, entries []Entry, prompt int) {
	st := c.user(userID)
	st.mu.Lock()
	defer st.mu.Unlock()

	merged := make([]Entry, 0, len(entries)+len(st.entries))
	for _, e := range entries {
		stale := false
		for _, cur := range st.entries {
			if cur.MessageID == e.MessageID {
				stale = true
				break
			}
		}
		if !stale {
			merged = append(merged, e)
		}
	}
	st.entries = append(merged, st.entries...)
	if st.pendingPrompt == 0 {
		st.pendingPrompt = prompt
	}
}

// Drain atomically returns all staged entries plus the pending prompt id and
// resets the user's session. A concurrent second drain observes an empty
// result, which makes confirm flows naturally idempotent.
func (c *Cache) Drain(userID int64) ([]Entry, int) {
	st := c.user(userID)
	st.mu.Lock()
	defer st.mu.Unlock()
	entries := st.entries
	prompt := st.pendingPrompt
	st.entries = nil
	st.pendingPrompt = 0
	return entries, prompt
}
