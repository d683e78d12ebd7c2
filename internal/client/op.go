package client

import "sync"

// Phase is where an operation is in its request lifecycle.
type Phase int

const (
	Idle Phase = iota
	Pending
	Succeeded
	Failed
)

func (p Phase) String() string {
	switch p {
	case Pending:
		return "pending"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	}
	return "idle"
}

// Op records the state of one kind of request independently of the others,
// so a failed delete never masks a loaded list.
type Op[T any] struct {
	mu    sync.Mutex
	phase Phase
	data  T
	err   error
}

// Run moves the op to Pending, calls fn and records the outcome. Data from
// the last success is kept when fn fails.
func (o *Op[T]) Run(fn func() (T, error)) (T, error) {
	o.mu.Lock()
	o.phase = Pending
	o.err = nil
	o.mu.Unlock()

	v, err := fn()

	o.mu.Lock()
	defer o.mu.Unlock()
	if err != nil {
		o.phase, o.err = Failed, err
		return v, err
	}
	o.phase, o.data = Succeeded, v
	return v, nil
}

// State returns the current phase, last data and last error.
func (o *Op[T]) State() (Phase, T, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.phase, o.data, o.err
}

// Reset returns the op to Idle.
func (o *Op[T]) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	var zero T
	o.phase, o.data, o.err = Idle, zero, nil
}
