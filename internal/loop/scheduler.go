package loop

import "sync"

// Scheduler runs a callback on the next display refresh.
type Scheduler interface {
	// ScheduleFrame queues fn for the next frame. The returned cancel
	// function removes fn if it has not run yet.
	ScheduleFrame(fn func()) (cancel func())
}

// FrameQueue is a Scheduler driven by a host render loop: callbacks queued
// during one frame run on the host's next call to RunPending.
type FrameQueue struct {
	mu      sync.Mutex
	pending map[uint64]func()
	order   []uint64
	nextID  uint64
}

var _ Scheduler = (*FrameQueue)(nil)

// NewFrameQueue creates an empty queue.
func NewFrameQueue() *FrameQueue {
	return &FrameQueue{pending: make(map[uint64]func())}
}

// ScheduleFrame queues fn for the next RunPending.
func (q *FrameQueue) ScheduleFrame(fn func()) func() {
	q.mu.Lock()
	q.nextID++
	id := q.nextID
	q.pending[id] = fn
	q.order = append(q.order, id)
	q.mu.Unlock()

	return func() {
		q.mu.Lock()
		delete(q.pending, id)
		q.mu.Unlock()
	}
}

// RunPending runs every callback queued before the call, in order, and
// returns how many ran. Callbacks scheduled while running wait for the
// next call. Callbacks are invoked without holding the queue lock.
func (q *FrameQueue) RunPending() int {
	q.mu.Lock()
	order := q.order
	pending := q.pending
	q.order = nil
	q.pending = make(map[uint64]func(), len(pending))
	q.mu.Unlock()

	ran := 0
	for _, id := range order {
		fn, ok := pending[id]
		if !ok {
			continue // cancelled
		}
		fn()
		ran++
	}
	return ran
}

// Len returns the number of queued callbacks.
func (q *FrameQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
