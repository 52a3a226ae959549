package asynciter

import (
	"math"

	"github.com/asynciter/asynciter/cmn/cos"
	"github.com/asynciter/asynciter/cmn/nlog"
	"github.com/asynciter/asynciter/internal/sched"
)

// unboundedCap stands in for "no configured maximum" so the fill-loop's
// arithmetic (cap - len(buf)) never needs a separate branch for it.
const unboundedCap = math.MaxInt32

// maxFillPerTick bounds how many items a single Produce call is asked to
// push, so an unbounded buffer can't monopolize the scheduler goroutine
// refilling itself in one pass: unbounded buffers fill 128 items at a time
// rather than attempting to satisfy the whole cap.
const maxFillPerTick = 128

// BufferedHooks lets a concrete producer or transform plug its own
// production logic into the shared bounded-buffer engine, the same
// function-field substitute for virtual dispatch used by Base.
type BufferedHooks[T any] struct {
	// Begin runs once, before the buffer ever starts filling. done must be
	// invoked exactly once; a non-nil error destroys the iterator with that
	// cause instead of opening it.
	Begin func(done func(error))
	// Produce is asked to push up to count items via push, then call done
	// exactly once. It may push fewer than count (including zero) if no more
	// items are available right now; fillBuffer will ask again later.
	Produce func(count int, push func(T), done func())
	// Flush runs once, when the buffer is told to close, before any
	// already-buffered items are drained to readers. done must be invoked
	// exactly once.
	Flush func(done func())
	// Destroy releases resources on the destroy path. May be nil.
	Destroy func(cause error, done func())
}

// Buffered is the bounded-buffer + async fill-loop core shared by every
// producer and transform that can't answer Read() synchronously: items
// accumulate in an internal slice that Produce refills asynchronously, one
// "reading" operation at a time, with simple backpressure (refill once the
// buffer drops under half its cap).
type Buffered[T any] struct {
	*Base[T]

	buf           []T
	maxBufferSize int
	autoStart     bool

	reading      bool
	flushStarted bool
	pushedCount  int

	hooks BufferedHooks[T]
}

func newBuffered[T any](sch *sched.Scheduler, maxBufferSize int, autoStart bool, hooks BufferedHooks[T]) *Buffered[T] {
	bf := &Buffered[T]{
		Base:          newBase[T](sch),
		maxBufferSize: maxBufferSize,
		autoStart:     autoStart,
		hooks:         hooks,
		reading:       true,
	}
	bf.readFn = bf.readRaw
	bf.closeFn = bf.closeOverride
	bf.destroyFn = bf.destroyOverride
	bf.schedule(func() { bf.init(autoStart) })
	return bf
}

func (bf *Buffered[T]) cap() int {
	if bf.maxBufferSize <= 0 {
		return unboundedCap
	}
	return bf.maxBufferSize
}

// init runs Begin exactly once, then either starts filling immediately
// (autoStart) or simply marks the buffer readable-when-read, deferring the
// first fill to the first Read() miss.
func (bf *Buffered[T]) init(autoStart bool) {
	called := false
	bf.hooks.Begin(func(err error) {
		if called {
			panic(cos.NewErrProgramming("Buffered.init: begin callback invoked twice"))
		}
		called = true
		bf.reading = false
		if err != nil {
			bf.destroy_(err)
			return
		}
		bf.changeState(StateOpen)
		nlog.Infof("iterator %s: opened", bf.id)
		if autoStart {
			bf.schedule(bf.fillBuffer)
		} else {
			bf.setReadable_(true)
		}
	})
}

// readRaw pops one item off the buffer if present, and — unless a fill or
// flush is already in flight — schedules whichever follow-up the current
// state calls for: refill if still open and under cap, or the final end_ if
// closed and now empty.
func (bf *Buffered[T]) readRaw() (T, bool) {
	if bf.done_() {
		var zero T
		return zero, false
	}
	var item T
	var ok bool
	if len(bf.buf) > 0 {
		item = bf.buf[0]
		var zero T
		bf.buf[0] = zero
		bf.buf = bf.buf[1:]
		ok = true
	}
	if len(bf.buf) == 0 {
		bf.setReadable_(false)
	}
	if !bf.reading {
		if bf.closed_() {
			if len(bf.buf) == 0 {
				bf.schedule(bf.completeClose)
			}
		} else if len(bf.buf) < bf.cap() {
			bf.schedule(bf.fillBuffer)
		}
	}
	return item, ok
}

// push appends one produced item to the buffer and marks the buffer
// readable; called synchronously by Produce, possibly many times per call.
func (bf *Buffered[T]) push(item T) {
	if bf.done_() {
		return
	}
	bf.pushedCount++
	bf.buf = append(bf.buf, item)
	bf.setReadable_(true)
	recordPushed(1)
}

// fillBuffer asks Produce for up to maxFillPerTick items, single-flight
// (reading guards re-entrancy: a Read() that races a fill in progress just
// waits for the next readRaw to decide whether to schedule another).
func (bf *Buffered[T]) fillBuffer() {
	if bf.reading || bf.closed_() {
		return
	}
	needed := bf.cap() - len(bf.buf)
	if needed <= 0 {
		return
	}
	if needed > maxFillPerTick {
		needed = maxFillPerTick
	}

	bf.pushedCount = 0
	bf.reading = true
	called := false
	bf.hooks.Produce(needed, bf.push, func() {
		if called {
			panic(cos.NewErrProgramming("Buffered.fillBuffer: produce callback invoked twice"))
		}
		called = true
		bf.reading = false
		if bf.closed_() {
			if len(bf.buf) == 0 {
				bf.completeClose()
			}
			return
		}
		if bf.pushedCount > 0 && len(bf.buf) < bf.cap()/2 {
			bf.schedule(bf.fillBuffer)
		}
	})
}

// closeOverride defers to completeClose immediately if no fill is in
// flight, or marks CLOSING and waits for the in-flight fill's done callback
// to notice: close must never interrupt an outstanding Produce.
func (bf *Buffered[T]) closeOverride() {
	if bf.closed_() {
		return
	}
	if bf.reading {
		bf.changeState(StateClosing)
		nlog.Infof("iterator %s: closing (fill in flight)", bf.id)
		return
	}
	bf.completeClose()
}

// completeClose transitions CLOSING/OPEN -> CLOSED and runs Flush exactly
// once; every subsequent call (readRaw calls this again whenever a read
// leaves the buffer empty) just re-checks whether the buffer has emptied out
// yet. Safe to invoke redundantly from readRaw, fillBuffer's done callback,
// and closeOverride all racing the same close.
func (bf *Buffered[T]) completeClose() {
	if bf.flushStarted {
		bf.finishClose()
		return
	}
	bf.flushStarted = true
	bf.changeState(StateClosed)
	nlog.Infof("iterator %s: closed, flushing", bf.id)

	if bf.hooks.Flush == nil {
		bf.finishClose()
		return
	}
	bf.reading = true
	called := false
	bf.hooks.Flush(func() {
		if called {
			panic(cos.NewErrProgramming("Buffered.completeClose: flush callback invoked twice"))
		}
		called = true
		bf.reading = false
		bf.finishClose()
	})
}

// finishClose schedules the final CLOSED->ENDED transition once the buffer
// has drained to empty; a no-op while items remain to be read.
func (bf *Buffered[T]) finishClose() {
	if len(bf.buf) == 0 {
		bf.schedule(bf.end_)
	}
}

func (bf *Buffered[T]) destroyOverride(cause error, done func()) {
	bf.buf = nil
	if bf.hooks.Destroy != nil {
		bf.hooks.Destroy(cause, done)
		return
	}
	done()
}
