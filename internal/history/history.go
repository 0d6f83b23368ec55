// Package history keeps a bounded linear undo/redo history over a document value.
//
// A Manager holds three stacks: past values, the present value, and values
// undone since the last edit. Pushing a new value clears everything that
// could be redone; there is no branching.
//
// Manager is not safe for concurrent use. Callers sharing one across
// goroutines must serialize push, undo and redo themselves.
package history

import "github.com/google/go-cmp/cmp"

// DefaultLimit is the number of past values kept unless WithLimit says otherwise.
const DefaultLimit = 50

// State is what every operation reports back to the caller.
type State[T any] struct {
	Present T    `json:"present"`
	CanUndo bool `json:"can_undo"`
	CanRedo bool `json:"can_redo"`
}

// Option configures a Manager.
type Option[T any] func(*Manager[T])

// WithLimit sets the maximum number of past values. Values below 1 are ignored.
func WithLimit[T any](n int) Option[T] {
	return func(m *Manager[T]) {
		if n > 0 {
			m.limit = n
		}
	}
}

// WithEqual replaces the structural comparison used to detect no-op pushes.
func WithEqual[T any](eq func(a, b T) bool) Option[T] {
	return func(m *Manager[T]) {
		if eq != nil {
			m.equal = eq
		}
	}
}

// Manager tracks past, present and future values of a document.
type Manager[T any] struct {
	past    []T
	present T
	future  []T // future[0] is the next value Redo restores
	limit   int
	equal   func(a, b T) bool
}

// New creates a Manager whose present value is initial and whose stacks are empty.
//
// By default values are compared with cmp.Equal, a deep comparison of
// exported fields; types with unexported fields need WithEqual.
func New[T any](initial T, opts ...Option[T]) *Manager[T] {
	m := &Manager[T]{
		present: initial,
		limit:   DefaultLimit,
		equal:   func(a, b T) bool { return cmp.Equal(a, b) },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns the present value and what can be undone or redone.
func (m *Manager[T]) State() State[T] {
	return State[T]{
		Present: m.present,
		CanUndo: len(m.past) > 0,
		CanRedo: len(m.future) > 0,
	}
}

// Present returns the current value.
func (m *Manager[T]) Present() T {
	return m.present
}

// Past returns a copy of the past stack, oldest first.
func (m *Manager[T]) Past() []T {
	return append([]T(nil), m.past...)
}

// Future returns a copy of the future stack, next redo first.
func (m *Manager[T]) Future() []T {
	return append([]T(nil), m.future...)
}

// Limit returns the maximum number of past values kept.
func (m *Manager[T]) Limit() int {
	return m.limit
}

// Push makes v the present value. The previous present moves onto the past
// stack, dropping the oldest entry beyond the limit, and the future is
// cleared. Pushing a value equal to the present changes nothing.
func (m *Manager[T]) Push(v T) State[T] {
	if m.equal(v, m.present) {
		return m.State()
	}

	m.past = append(m.past, m.present)
	if over := len(m.past) - m.limit; over > 0 {
		m.past = append(m.past[:0:0], m.past[over:]...)
	}
	m.present = v
	m.future = nil
	return m.State()
}

// Update pushes the result of applying fn to the present value.
func (m *Manager[T]) Update(fn func(T) T) State[T] {
	return m.Push(fn(m.present))
}

// Undo restores the most recent past value. The replaced present becomes the
// first entry of the future. Does nothing when there is no past.
func (m *Manager[T]) Undo() State[T] {
	if len(m.past) == 0 {
		return m.State()
	}

	last := len(m.past) - 1
	previous := m.past[last]
	var zero T
	m.past[last] = zero
	m.past = m.past[:last]

	m.future = append([]T{m.present}, m.future...)
	m.present = previous
	return m.State()
}

// Redo restores the first future value. The replaced present goes back onto
// the past stack. Does nothing when there is no future.
func (m *Manager[T]) Redo() State[T] {
	if len(m.future) == 0 {
		return m.State()
	}

	next := m.future[0]
	m.future = append(m.future[:0:0], m.future[1:]...)

	m.past = append(m.past, m.present)
	m.present = next
	return m.State()
}

// Reset discards all history and makes v the present value.
func (m *Manager[T]) Reset(v T) State[T] {
	m.past = nil
	m.future = nil
	m.present = v
	return m.State()
}
