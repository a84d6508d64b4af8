package fterm

import (
	"iter"
	"slices"
)

// History stores a chronological series of values, each associated with a specific date.
// It ensures that dates are unique and the series is always sorted.
type History[T any] struct {
	days   []Date
	values []T
}

// Latest returns the latest date and value in the history.
// If the history is empty, it returns zero value.
func (h *History[T]) Latest() (day Date, value T) {
	last := len(h.days) - 1
	if last < 0 {
		return Date{}, *new(T)
	}
	return h.days[last], h.values[last]
}

// First returns the earliest date and value in the history.
func (h *History[T]) First() (day Date, value T) {
	if len(h.days) == 0 {
		return Date{}, *new(T)
	}
	return h.days[0], h.values[0]
}

// Len returns the number of items in the history.
func (h *History[T]) Len() int { return len(h.days) }

// Append adds a point to the history.
//
// Existing value at that date is overwritten. Appending in chronological
// order is constant time, an earlier date is inserted in place.
func (h *History[T]) Append(on Date, v T) *History[T] {
	if n := len(h.days); n == 0 || h.days[n-1].Before(on) {
		h.days, h.values = append(h.days, on), append(h.values, v)
		return h
	}
	i, found := slices.BinarySearchFunc(h.days, on, Date.Compare)
	if found {
		// last write wins
		h.values[i] = v
		return h
	}
	h.days = slices.Insert(h.days, i, on)
	h.values = slices.Insert(h.values, i, v)
	return h
}

// Values returns an iterator over all date/value pairs in the history, in chronological order.
func (h *History[T]) Values() iter.Seq2[Date, T] {
	return func(yield func(Date, T) bool) {
		for i, on := range h.days {
			if !yield(on, h.values[i]) {
				return
			}
		}
	}
}

// Get returns the value at 'day' and true or zero value and false.
func (h *History[T]) Get(day Date) (T, bool) {
	if i, found := slices.BinarySearchFunc(h.days, day, Date.Compare); found {
		return h.values[i], true
	}
	var zero T
	return zero, false
}

// ValueAsOf returns the value on a given day, or the most recent value before it.
// It returns the value and true if found, otherwise it returns the zero value and false.
func (h *History[T]) ValueAsOf(day Date) (T, bool) {
	i, found := slices.BinarySearchFunc(h.days, day, Date.Compare)
	if found {
		return h.values[i], true
	}
	// i is the insertion index, the last entry before day is at i-1.
	if i == 0 {
		var zero T
		return zero, false
	}
	return h.values[i-1], true
}

// Tail returns the last n points, or all of them when n <= 0 or n > Len().
func (h *History[T]) Tail(n int) *History[T] {
	if n <= 0 || n > len(h.days) {
		n = len(h.days)
	}
	start := len(h.days) - n
	return &History[T]{
		days:   slices.Clone(h.days[start:]),
		values: slices.Clone(h.values[start:]),
	}
}

// Between returns the points within r, bounds included.
func (h *History[T]) Between(r Range) *History[T] {
	res := new(History[T])
	for i, d := range h.days {
		if r.Contains(d) {
			res.days = append(res.days, d)
			res.values = append(res.values, h.values[i])
		}
	}
	return res
}
