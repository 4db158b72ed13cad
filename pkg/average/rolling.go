package average

import "errors"

var ErrInvalidSize = errors.New("rolling average size must be positive")

// Number is any sample type a Rolling average can hold.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Rolling is a fixed-window moving average kept in a circular buffer with a
// running sum, so each Update costs O(1) regardless of the window size.
//
// Rolling is not safe for concurrent use.
type Rolling[T Number] struct {
	buf    []T
	cursor int // Next slot to overwrite
	sum    T
}

// New creates a window of size slots, every one seeded with first. The first
// size-1 averages after New are therefore biased toward first.
func New[T Number](size int, first T) (*Rolling[T], error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}

	r := &Rolling[T]{
		buf: make([]T, size),
	}
	for i := range r.buf {
		r.buf[i] = first
	}
	r.sum = first * T(size)

	return r, nil
}

// Update replaces the oldest sample with v and returns the new average.
// For integer T the average is truncated like any integer division.
func (r *Rolling[T]) Update(v T) T {
	r.sum -= r.buf[r.cursor]
	r.buf[r.cursor] = v
	r.sum += v

	r.cursor++
	if r.cursor == len(r.buf) {
		r.cursor = 0
		// Once per lap, so floating point drift never outlives one window.
		r.Resync()
	}

	return r.Average()
}

// Average returns the mean of the window.
func (r *Rolling[T]) Average() T {
	return r.sum / T(len(r.buf))
}

// Sum returns the running sum of the window.
func (r *Rolling[T]) Sum() T {
	return r.sum
}

// Len returns the window size.
func (r *Rolling[T]) Len() int {
	return len(r.buf)
}

// Values returns a copy of the window ordered oldest first.
func (r *Rolling[T]) Values() []T {
	out := make([]T, 0, len(r.buf))
	out = append(out, r.buf[r.cursor:]...)
	out = append(out, r.buf[:r.cursor]...)
	return out
}

// Resync recomputes the running sum from the buffer.
func (r *Rolling[T]) Resync() {
	var sum T
	for _, v := range r.buf {
		sum += v
	}
	r.sum = sum
}
