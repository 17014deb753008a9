package database

import "sync"

// Notifier fans out table-changed events to live-query subscribers.
// Events are coalescing and at-least-once: a subscriber that hasn't
// drained its pending event won't queue a second one, it simply
// re-snapshots once and observes both writes.
type Notifier struct {
	mu   sync.Mutex
	next int
	subs map[int]subscriber
}

type subscriber struct {
	table string
	ch    chan struct{}
}

func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[int]subscriber)}
}

// Subscribe registers for change events on a table. The returned cancel
// func must be called when the subscriber goes away.
func (n *Notifier) Subscribe(table string) (<-chan struct{}, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.next
	n.next++
	ch := make(chan struct{}, 1)
	n.subs[id] = subscriber{table: table, ch: ch}

	cancel := func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.subs, id)
	}
	return ch, cancel
}

// Publish signals that rows in a table changed. Never blocks the writer.
func (n *Notifier) Publish(table string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, sub := range n.subs {
		if sub.table != table {
			continue
		}
		select {
		case sub.ch <- struct{}{}:
		default:
			// Event already pending, coalesce.
		}
	}
}
