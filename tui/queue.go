package tui

import "sync"

// updateQueue hands view mutations to apply in the order they were pushed.
// push never blocks, so it is safe to call from the tview event loop itself;
// apply runs on the queue's own goroutine and may block.
type updateQueue struct {
	apply func(func())

	mu      sync.Mutex
	pending []func()
	wake    chan struct{}
	done    chan struct{}
	once    sync.Once
}

func newUpdateQueue(apply func(func())) *updateQueue {
	q := &updateQueue{
		apply: apply,
		wake:  make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
	go q.run()
	return q
}

func (q *updateQueue) push(f func()) {
	q.mu.Lock()
	q.pending = append(q.pending, f)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *updateQueue) run() {
	for {
		select {
		case <-q.done:
			return
		case <-q.wake:
		}

		q.mu.Lock()
		batch := q.pending
		q.pending = nil
		q.mu.Unlock()

		if len(batch) == 0 {
			continue
		}
		q.apply(func() {
			for _, f := range batch {
				f()
			}
		})
	}
}

// close stops the queue. Updates still pending are dropped.
func (q *updateQueue) close() {
	q.once.Do(func() {
		close(q.done)
	})
}
