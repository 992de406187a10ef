package cache

import "sync"

// notifier fans change notifications out to subscribers. Callbacks run
// synchronously on the mutating goroutine, one subscriber at a time, in
// registration order. Subscription and cancellation are safe for
// concurrent use.
type notifier struct {
	mu      sync.Mutex
	nextID  int
	loading map[int]func(bool)
	data    map[int]func(Family)
	errors  map[int]func(error)
}

func newNotifier() *notifier {
	return &notifier{
		loading: make(map[int]func(bool)),
		data:    make(map[int]func(Family)),
		errors:  make(map[int]func(error)),
	}
}

func (n *notifier) onLoading(fn func(bool)) (cancel func()) {
	n.mu.Lock()
	defer n.mu.Unlock()
	id := n.nextID
	n.nextID++
	n.loading[id] = fn
	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.loading, id)
	}
}

func (n *notifier) onData(fn func(Family)) (cancel func()) {
	n.mu.Lock()
	defer n.mu.Unlock()
	id := n.nextID
	n.nextID++
	n.data[id] = fn
	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.data, id)
	}
}

func (n *notifier) onError(fn func(error)) (cancel func()) {
	n.mu.Lock()
	defer n.mu.Unlock()
	id := n.nextID
	n.nextID++
	n.errors[id] = fn
	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.errors, id)
	}
}

func (n *notifier) notifyLoading(loading bool) {
	for _, fn := range n.loadingSnapshot() {
		fn(loading)
	}
}

func (n *notifier) notifyData(family Family) {
	for _, fn := range n.dataSnapshot() {
		fn(family)
	}
}

func (n *notifier) notifyError(err error) {
	for _, fn := range n.errorSnapshot() {
		fn(err)
	}
}

// Snapshots are taken under the lock but callbacks run outside it, so a
// subscriber may re-subscribe or cancel from within its callback without
// deadlocking.

func (n *notifier) loadingSnapshot() []func(bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fns := make([]func(bool), 0, len(n.loading))
	for _, fn := range n.loading {
		fns = append(fns, fn)
	}
	return fns
}

func (n *notifier) dataSnapshot() []func(Family) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fns := make([]func(Family), 0, len(n.data))
	for _, fn := range n.data {
		fns = append(fns, fn)
	}
	return fns
}

func (n *notifier) errorSnapshot() []func(error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fns := make([]func(error), 0, len(n.errors))
	for _, fn := range n.errors {
		fns = append(fns, fn)
	}
	return fns
}
