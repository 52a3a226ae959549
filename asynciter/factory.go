package asynciter

import "github.com/asynciter/asynciter/internal/sched"

// Every public factory function in this package runs its iterator on the
// shared default scheduler; none of them accepts another one. Transform,
// Multi, and Clone run on their source's scheduler, which is what lets them
// bypass the dispatching public API when talking to their own upstream (see
// internalSource in base.go).

// NewScheduler returns a fresh, independent scheduler. No factory function
// in this package accepts one: every iterator they build runs on the
// package default (sched.Default).
func NewScheduler() *sched.Scheduler { return sched.New() }

// Empty returns an iterator that yields nothing and is already ENDED.
func Empty[T any]() Iterator[T] {
	return newEmpty[T](sched.Default())
}

// Single returns an iterator yielding exactly one item, then closing.
func Single[T any](item T) Iterator[T] {
	return newSingle[T](sched.Default(), item, true)
}

// SingletonEmpty returns an iterator holding no value that still reaches
// ENDED via the ordinary close-then-defer path, unlike Empty, which starts
// out already ENDED.
func SingletonEmpty[T any]() Iterator[T] {
	var zero T
	return newSingle[T](sched.Default(), zero, false)
}

// FromSlice returns an iterator yielding every element of items, in order.
// items is copied; mutating the caller's slice afterward has no effect.
func FromSlice[T any](items []T) Iterator[T] {
	return newFromSlice[T](sched.Default(), items)
}

// IntegerRange returns an iterator yielding start, start+step, ..., up to
// and including end.
func IntegerRange(start, end, step int) Iterator[int] {
	return newIntegerRange(sched.Default(), start, end, step, true)
}

// IntegerRangeFrom returns an unbounded iterator yielding start, start+step,
// start+2*step, ... forever.
func IntegerRangeFrom(start, step int) Iterator[int] {
	return newIntegerRange(sched.Default(), start, 0, step, false)
}

// Count is shorthand for IntegerRangeFrom(0, 1): 0, 1, 2, 3, ...
func Count() Iterator[int] {
	return IntegerRangeFrom(0, 1)
}

// FromFunc adapts an arbitrary synchronous Go generator function into an
// Iterator: next must return (item, true) while items remain and (zero,
// false) exactly once, after which it is never called again.
func FromFunc[T any](next func() (T, bool)) Iterator[T] {
	return newFromFunc[T](sched.Default(), next)
}

// FromChannel adapts a receive-only channel into an Iterator, closing once
// ch is closed. bufferSize bounds how many received-but-unread items are
// held at once (0 means use the package default).
func FromChannel[T any](ch <-chan T, bufferSize int) Iterator[T] {
	o := Options{MaxBufferSize: bufferSize, AutoStart: true}.withDefaults()
	return newFromChannel[T](sched.Default(), ch, o.MaxBufferSize, o.AutoStart)
}

// WrapTransform builds a Transform from raw TransformOptions, for callers
// that need offset/limit/prepend/append/async composed together in a single
// stage rather than chaining Map/Filter/Skip/Take/Prepend/Append (each of
// which allocates its own Transform).
func WrapTransform[S, D any](source Iterator[S], opts TransformOptions[S, D]) Iterator[D] {
	return newTransform(asInternalSource(source), opts)
}

// MultiTransform expands every item of source into its own sub-iterator via
// createTransformer, flattening the results in source order. See Multi's doc
// comment for the constraint that createTransformer's sub-iterators must
// share source's scheduler.
func MultiTransform[S, D any](source Iterator[S], createTransformer func(S) Iterator[D], opts ...Option) Iterator[D] {
	o := resolveOptions(opts...)
	return newMulti(asInternalSource(source), MultiOptions[S, D]{
		MaxBufferSize:     o.MaxBufferSize,
		AutoStart:         o.AutoStart,
		CreateTransformer: createTransformer,
		DestroySource:     true,
	})
}
