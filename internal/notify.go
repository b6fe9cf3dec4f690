package internal

import (
	"sync"
	"time"
)

// DefaultToastTTL is how long a toast stays visible unless dismissed.
const DefaultToastTTL = 3500 * time.Millisecond

// Toast is a transient user-facing notification. The id is the creation
// time in unix milliseconds; same-millisecond collisions are tolerated
// (dismissal then removes all matching toasts).
type Toast struct {
	ID   int64
	Text string
}

// Notifier is a self-expiring notification queue. Every push schedules a
// cancellable removal timer; Close cancels all outstanding timers so no
// callback fires after teardown.
type Notifier struct {
	mu       sync.Mutex
	ttl      time.Duration
	toasts   []Toast
	timers   map[int64]*time.Timer
	onChange func()
	closed   bool
}

// NewNotifier creates a notifier. A non-positive ttl selects the default.
func NewNotifier(ttl time.Duration) *Notifier {
	if ttl <= 0 {
		ttl = DefaultToastTTL
	}
	return &Notifier{
		ttl:    ttl,
		timers: make(map[int64]*time.Timer),
	}
}

// OnChange registers a callback fired after every queue change. The
// callback runs without the notifier lock held.
func (n *Notifier) OnChange(fn func()) {
	n.mu.Lock()
	n.onChange = fn
	n.mu.Unlock()
}

// Push appends a toast and schedules its removal. Returns the toast id.
func (n *Notifier) Push(text string) int64 {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return 0
	}
	id := time.Now().UnixMilli()
	n.toasts = append(n.toasts, Toast{ID: id, Text: text})
	if _, exists := n.timers[id]; !exists {
		n.timers[id] = time.AfterFunc(n.ttl, func() {
			n.Dismiss(id)
		})
	}
	fn := n.onChange
	n.mu.Unlock()

	if fn != nil {
		fn()
	}
	return id
}

// Dismiss removes the toast(s) with the given id and cancels their timer.
func (n *Notifier) Dismiss(id int64) {
	n.mu.Lock()
	if t, ok := n.timers[id]; ok {
		t.Stop()
		delete(n.timers, id)
	}
	kept := n.toasts[:0]
	removed := false
	for _, t := range n.toasts {
		if t.ID == id {
			removed = true
			continue
		}
		kept = append(kept, t)
	}
	n.toasts = kept
	fn := n.onChange
	n.mu.Unlock()

	if removed && fn != nil {
		fn()
	}
}

// Active returns the live toasts in insertion order.
func (n *Notifier) Active() []Toast {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Toast(nil), n.toasts...)
}

// Close cancels all pending expiry timers and drops the queue. Further
// pushes are ignored.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	for id, t := range n.timers {
		t.Stop()
		delete(n.timers, id)
	}
	n.toasts = nil
	n.closed = true
}
