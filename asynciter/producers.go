package asynciter

import "github.com/asynciter/asynciter/internal/sched"

// The producers below are thin, synchronous item sources that sit at the
// leaves of a pipeline. None of these need the Buffered core's async fill
// loop — their Read() is cheap enough to run inline on the scheduler
// goroutine.

// Empty is an iterator that is already ENDED at construction; it never
// yields an item. Listeners attached synchronously after construction still
// observe the (deferred) `end` event.
type Empty[T any] struct {
	*Base[T]
}

func newEmpty[T any](sch *sched.Scheduler) *Empty[T] {
	e := &Empty[T]{Base: newBase[T](sch)}
	e.readFn = func() (T, bool) { var zero T; return zero, false }
	e.changeState(StateEnded)
	recordTerminated("ended")
	e.schedule(func() {
		e.bus.Emit("end")
		e.bus.Release()
	})
	return e
}

// Single yields exactly one item, if any, then closes. A Single constructed
// with has=false behaves like Empty but reaches ENDED via the normal
// close-then-defer path rather than jumping straight there.
type Single[T any] struct {
	*Base[T]
	item T
	has  bool
}

func newSingle[T any](sch *sched.Scheduler, item T, has bool) *Single[T] {
	s := &Single[T]{Base: newBase[T](sch), item: item, has: has}
	s.readFn = s.readRaw
	if !has {
		s.close_()
	} else {
		s.setReadable_(true)
	}
	return s
}

func (s *Single[T]) readRaw() (T, bool) {
	if s.done_() || !s.has {
		var zero T
		return zero, false
	}
	item := s.item
	s.has = false
	var zero T
	s.item = zero
	s.close_()
	return item, true
}

// FromSlice yields every element of a copy of items, in order, then closes.
type FromSlice[T any] struct {
	*Base[T]
	buf []T
}

func newFromSlice[T any](sch *sched.Scheduler, items []T) *FromSlice[T] {
	a := &FromSlice[T]{Base: newBase[T](sch)}
	if len(items) == 0 {
		a.close_()
	} else {
		a.buf = append([]T(nil), items...)
		a.setReadable_(true)
	}
	a.readFn = a.readRaw
	a.destroyFn = func(_ error, done func()) {
		a.buf = nil
		done()
	}
	return a
}

func (a *FromSlice[T]) readRaw() (T, bool) {
	if a.done_() || len(a.buf) == 0 {
		var zero T
		return zero, false
	}
	item := a.buf[0]
	a.buf = a.buf[1:]
	if len(a.buf) == 0 {
		a.buf = nil
		a.close_()
	}
	return item, true
}

// IntegerRange yields start, start+step, start+2*step, ... When hasEnd is
// false the range is unbounded in the direction of step; a range that is
// already empty at construction (hasEnd and past end) closes immediately.
type IntegerRange struct {
	*Base[int]
	current int
	end     int
	step    int
	hasEnd  bool
}

func newIntegerRange(sch *sched.Scheduler, start, end, step int, hasEnd bool) *IntegerRange {
	if step == 0 {
		step = 1
	}
	r := &IntegerRange{Base: newBase[int](sch), current: start, end: end, step: step, hasEnd: hasEnd}
	r.readFn = r.readRaw
	if hasEnd && rangeEmpty(start, end, step) {
		r.close_()
	} else {
		r.setReadable_(true)
	}
	return r
}

func rangeEmpty(current, end, step int) bool {
	if step > 0 {
		return current > end
	}
	return current < end
}

func (r *IntegerRange) readRaw() (int, bool) {
	if r.done_() {
		return 0, false
	}
	item := r.current
	next := r.current + r.step
	if r.hasEnd && rangeEmpty(next, r.end, r.step) {
		r.current = next
		r.close_()
		return item, true
	}
	r.current = next
	return item, true
}

// FromFunc wraps an arbitrary synchronous Go generator function: next
// returns (item, true) for each available item and (zero, false) once
// exhausted, exactly the shape of a map iteration or a bufio.Scanner-style
// pull loop adapted to return a value instead of a bool.
type FromFunc[T any] struct {
	*Base[T]
	next func() (T, bool)
	done bool
}

func newFromFunc[T any](sch *sched.Scheduler, next func() (T, bool)) *FromFunc[T] {
	f := &FromFunc[T]{Base: newBase[T](sch), next: next}
	f.readFn = f.readRaw
	f.setReadable_(true)
	return f
}

func (f *FromFunc[T]) readRaw() (T, bool) {
	if f.done_() || f.done {
		var zero T
		return zero, false
	}
	item, ok := f.next()
	if !ok {
		f.done = true
		f.close_()
		var zero T
		return zero, false
	}
	return item, true
}

// FromChannel adapts a Go channel into an Iterator. Each buffer refill spawns
// one helper goroutine that may block receiving from ch; results are handed
// back to the owning scheduler's worker goroutine via Schedule, never
// mutating iterator state off that goroutine.
type FromChannel[T any] struct {
	*Buffered[T]
}

func newFromChannel[T any](sch *sched.Scheduler, ch <-chan T, maxBufferSize int, autoStart bool) *FromChannel[T] {
	fc := &FromChannel[T]{}
	hooks := BufferedHooks[T]{
		Begin: func(done func(error)) { done(nil) },
		Produce: func(count int, push func(T), done func()) {
			go func() {
				got := make([]T, 0, count)
				closed := false
				// Block for the first item (there is nothing else useful to
				// do), then opportunistically drain anything already
				// buffered on ch without waiting for a full batch — a slow
				// sender should not delay items that already arrived.
				if v, ok := <-ch; ok {
					got = append(got, v)
				drain:
					for len(got) < count {
						select {
						case v, ok := <-ch:
							if !ok {
								closed = true
								break drain
							}
							got = append(got, v)
						default:
							break drain
						}
					}
				} else {
					closed = true
				}
				sch.Schedule(func() {
					for _, v := range got {
						push(v)
					}
					if closed {
						fc.closeFn()
					}
					done()
				})
			}()
		},
	}
	fc.Buffered = newBuffered[T](sch, maxBufferSize, autoStart, hooks)
	return fc
}
